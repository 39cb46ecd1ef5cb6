// Package model defines the core data structures used throughout
// the suno-downloader application.
//
// # Clip
//
// Clip is the local representation of one generated song as listed by the
// remote service:
//
//	clip := &model.Clip{ID: id, Title: "Midnight Run", AudioURL: url}
//	fmt.Println(clip.IsStem())     // stem detection from type and title
//	fmt.Println(clip.LyricsText()) // lyrics with prompt fallback
//
// # Filter
//
// Filter decides which listed clips are accepted for download:
//
//	f := &model.Filter{LikedOnly: true, HideStems: true}
//	if f.Matches(clip) { ... }
//
// # Path layout
//
// PathConfig computes where a clip lands on disk, including the dated
// YYYY-MM folders and the per-song stem folders:
//
//	cfg := &model.PathConfig{Directory: "/music", OrganizeByMonth: true}
//	path := filepath.Join(cfg.TargetDir(clip), cfg.FileName(clip, ".mp3"))
package model
