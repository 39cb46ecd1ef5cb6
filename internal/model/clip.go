package model

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// stemIndicators are title suffixes the service appends to generated stems.
var stemIndicators = []string{
	"(bass)", "(drums)", "(backing vocal)", "(backing vocals)", "(vocals)",
	"(instrumental)", "(woodwinds)", "(brass)", "(fx)", "(synth)",
	"(strings)", "(percussion)", "(keyboard)", "(guitar)",
}

// Clip represents a single generated song as reported by the remote service.
//
// A Clip is immutable once fetched: everything here mirrors the service's
// listing response, with the audio URLs and text metadata needed to download
// and tag the file locally.
//
// Example:
//
//	clip := &model.Clip{ID: "2f1c...", Title: "Midnight Run", AudioURL: url}
//	if clip.IsStem() {
//	    fmt.Println(clip.BaseTitle()) // "Midnight Run" without the stem suffix
//	}
type Clip struct {
	// ID is the service's opaque identifier (a UUID string).
	ID string

	// Title is the song title as shown in the service UI.
	Title string

	// DisplayName is the creator's display name, used as the artist tag.
	DisplayName string

	// CreatedAt is when the clip was generated.
	CreatedAt time.Time

	// AudioURL is the MP3 stream URL. Empty if the clip has no audio yet.
	AudioURL string

	// WAVURL is a direct WAV stream URL when the listing already carries one.
	WAVURL string

	// ImageURL is the generated cover art URL.
	ImageURL string

	// Prompt is the generation prompt text.
	Prompt string

	// Tags is the comma-separated style tag string, used as the genre tag.
	Tags string

	// Lyrics is the song text. For this service the prompt doubles as
	// lyrics when no explicit lyrics field is present.
	Lyrics string

	// Type is the clip type reported in metadata ("gen", "gen_stem",
	// "upload", "studio_clip", ...).
	Type string

	// Liked reports whether the user reacted positively to the clip.
	Liked bool

	// Disliked reports a negative reaction.
	Disliked bool

	// Trashed reports whether the clip was moved to the trash.
	Trashed bool

	// Public reports whether the clip is published to the public feed.
	Public bool
}

// IsStem reports whether the clip is a generated stem rather than a full mix.
//
// A clip counts as a stem when its metadata type says so, or when its title
// carries one of the service's stem suffixes like "(drums)" or "(vocals)".
func (c *Clip) IsStem() bool {
	if strings.Contains(c.Type, "stem") {
		return true
	}
	title := strings.ToLower(c.Title)
	for _, ind := range stemIndicators {
		if strings.Contains(title, ind) {
			return true
		}
	}
	return false
}

// BaseTitle returns the title with stem suffixes stripped, so stems of the
// same song can be grouped into one folder.
func (c *Clip) BaseTitle() string {
	title := c.Title
	for _, ind := range stemIndicators {
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(ind))
		title = re.ReplaceAllString(title, "")
	}
	return strings.TrimSpace(title)
}

// LyricsText returns the best available song text: explicit lyrics first,
// the prompt as a fallback.
func (c *Clip) LyricsText() string {
	if c.Lyrics != "" {
		return c.Lyrics
	}
	return c.Prompt
}

// Year returns the four-digit creation year, or "" when unknown.
func (c *Clip) Year() string {
	if c.CreatedAt.IsZero() {
		return ""
	}
	return c.CreatedAt.Format("2006")
}

// PathConfig holds the folder layout settings used to place downloaded clips.
type PathConfig struct {
	// Directory is the output root.
	Directory string

	// OrganizeByMonth places files under a YYYY-MM subfolder of the
	// clip's creation date.
	OrganizeByMonth bool

	// OrganizeByTrack groups stem clips into a subfolder named after the
	// stripped base title.
	OrganizeByTrack bool
}

// TargetDir computes the folder a clip should be saved into.
//
// With OrganizeByMonth the clip's creation month forms a dated subfolder;
// clips without a creation date fall back to the root. With OrganizeByTrack
// stems get a further subfolder named after the base title.
//
// Example:
//
//	cfg := &PathConfig{Directory: "/music", OrganizeByMonth: true}
//	dir := cfg.TargetDir(clip) // "/music/2025-11"
func (p *PathConfig) TargetDir(c *Clip) string {
	dir := p.Directory
	if p.OrganizeByMonth && !c.CreatedAt.IsZero() {
		dir = filepath.Join(dir, c.CreatedAt.Format("2006-01"))
	}
	if p.OrganizeByTrack && c.IsStem() {
		if base := SanitizeFileName(c.BaseTitle()); base != "" {
			dir = filepath.Join(dir, base)
		}
	}
	return dir
}

// FileName computes the sanitized file name for a clip, without directory.
// Clips without a title fall back to the clip ID.
func (p *PathConfig) FileName(c *Clip, ext string) string {
	name := c.Title
	if name == "" {
		name = c.ID
	}
	return SanitizeFileName(name) + ext
}

// maxFileNameLen keeps sanitized names under common filesystem limits.
const maxFileNameLen = 200

// SanitizeFileName removes or replaces characters that are invalid in
// file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Leading/trailing dots and spaces are removed (Windows limitation)
//   - Multiple whitespace is collapsed to single space
//   - Names longer than 200 characters are truncated
func SanitizeFileName(name string) string {
	invalidChars := regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	name = invalidChars.ReplaceAllString(name, "_")

	name = regexp.MustCompile(`\s+`).ReplaceAllString(name, " ")
	name = strings.Trim(name, " .")

	if len(name) > maxFileNameLen {
		name = name[:maxFileNameLen]
	}

	return name
}
