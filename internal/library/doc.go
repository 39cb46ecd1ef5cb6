// Package library indexes the downloaded files in the output directory.
//
// A Library walks the directory tree, reads the embedded tags of each
// MP3 and WAV file and exposes entries for browsing, lyrics access and
// playlist generation. The generation UUID stored in each file's tags
// drives duplicate detection between runs:
//
//	lib := library.New(settings.Directory, cache)
//	ids, err := lib.ClipIDs()
//	if _, ok := ids[clip.ID]; ok {
//	    // already downloaded
//	}
//
// # Metadata Cache
//
// Probing a file means opening it and parsing tags, which is slow on
// large libraries. OpenCache provides a SQLite-backed cache keyed by
// path, size and modification time so unchanged files are not re-read.
//
// # Playlists
//
// Generate playlists over library entries in various formats:
//
//	creator := library.NewPlaylistCreator(library.FormatM3U, true)
//	content := creator.CreatePlaylist("All songs", entries)
//	os.WriteFile("all" + library.FormatM3U.Ext(), []byte(content), 0644)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package library
