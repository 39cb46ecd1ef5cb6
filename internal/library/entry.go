package library

import "time"

// Entry is one audio file in the local library.
type Entry struct {
	// Path is the absolute location of the audio file.
	Path string

	// ClipID is the generation UUID read from the file's tags. Empty for
	// files downloaded by other tools.
	ClipID string

	// Title is the track title from the file's tags, falling back to the
	// file name.
	Title string

	// Artist is the artist name from the file's tags.
	Artist string

	// Duration is the playing time in seconds. For MP3 files this is an
	// estimate based on the first frame's bitrate.
	Duration float64

	// HasLyrics reports whether a sidecar lyrics file exists next to the
	// audio file.
	HasLyrics bool

	// Size and ModTime identify the file version for cache lookups.
	Size    int64
	ModTime time.Time

	// UserTags is the locally applied tag overlay for the entry's clip.
	UserTags UserTags
}

// UserTags are flags the user applies locally, independent of the
// reactions stored on the service. They persist in the metadata cache
// keyed by clip ID, so they survive re-downloads and file moves.
type UserTags struct {
	Liked   bool
	Starred bool
	Trashed bool
}
