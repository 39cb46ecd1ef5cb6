package model

import "strings"

// Filter selects which clips from a listing are accepted for download.
//
// The zero value accepts every clip except trashed ones, matching the
// service's default library view.
type Filter struct {
	// LikedOnly keeps only clips the user reacted positively to.
	LikedOnly bool

	// IncludeTrashed keeps trashed clips instead of skipping them.
	IncludeTrashed bool

	// HideStems skips generated stems.
	HideStems bool

	// StemsOnly keeps only generated stems. Overrides HideStems.
	StemsOnly bool

	// HideDisliked skips clips with a negative reaction.
	HideDisliked bool

	// PublicOnly keeps only published clips.
	PublicOnly bool

	// UploadsOnly keeps only uploaded (not generated) clips.
	UploadsOnly bool

	// Search keeps only clips whose title, tags or prompt contain the
	// text (case-insensitive). Empty means no text filter.
	Search string
}

// Matches reports whether a clip passes the filter.
func (f *Filter) Matches(c *Clip) bool {
	if !f.IncludeTrashed && c.Trashed {
		return false
	}
	if f.StemsOnly {
		if !c.IsStem() {
			return false
		}
	} else if f.HideStems && c.IsStem() {
		return false
	}
	if f.LikedOnly && !c.Liked {
		return false
	}
	if f.HideDisliked && c.Disliked {
		return false
	}
	if f.PublicOnly && !c.Public {
		return false
	}
	if f.UploadsOnly && c.Type != "upload" {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(strings.TrimSpace(f.Search))
		haystack := strings.ToLower(c.Title + " " + c.Tags + " " + c.Prompt)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
