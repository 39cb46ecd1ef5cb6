package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mwinther/suno-downloader/internal/model"
)

// ClipTime is a custom time type tolerant of the service's timestamp formats.
type ClipTime struct {
	time.Time
}

// UnmarshalJSON parses the creation timestamp. The service mixes RFC 3339
// with fractional-second variants depending on endpoint.
func (ct *ClipTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	if s == "" {
		ct.Time = time.Time{}
		return nil
	}

	formats := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			ct.Time = t
			return nil
		}
	}

	return fmt.Errorf("unable to parse timestamp: %s", s)
}

// JSONReaction is the nested reaction object on listing responses.
type JSONReaction struct {
	ReactionType string `json:"reaction_type"`
}

// JSONClipMetadata is the metadata block of a clip.
type JSONClipMetadata struct {
	Prompt string `json:"prompt"`
	Tags   string `json:"tags"`
	Lyrics string `json:"lyrics"`
	Text   string `json:"text"`
	Type   string `json:"type"`
	Vote   string `json:"vote"`
}

// JSONClip represents one clip as returned by the listing and detail
// endpoints. The same shape appears bare, under "clips", and wrapped as
// {"clip": {...}} inside project listings.
type JSONClip struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	DisplayName string            `json:"display_name"`
	CreatedAt   *ClipTime         `json:"created_at"`
	AudioURL    string            `json:"audio_url"`
	AudioURLWAV string            `json:"audio_url_wav"`
	WAVURL      string            `json:"wav_url"`
	WAVAudioURL string            `json:"wav_audio_url"`
	ImageURL    string            `json:"image_url"`
	Metadata    *JSONClipMetadata `json:"metadata"`
	IsLiked     bool              `json:"is_liked"`
	IsTrashed   bool              `json:"is_trashed"`
	IsPublic    bool              `json:"is_public"`
	Vote        string            `json:"vote"`
	Reaction    *JSONReaction     `json:"reaction"`
	Type        string            `json:"type"`
}

// ToClip converts the wire representation to a model.Clip.
//
// Reaction state is folded from the three places the service reports it:
// the is_liked boolean, the reaction object ("L"/"D") and the vote string
// ("up"/"down"), whichever is present.
func (jc *JSONClip) ToClip() *model.Clip {
	clip := &model.Clip{
		ID:          jc.ID,
		Title:       jc.Title,
		DisplayName: jc.DisplayName,
		AudioURL:    jc.AudioURL,
		ImageURL:    jc.ImageURL,
		Trashed:     jc.IsTrashed,
		Public:      jc.IsPublic,
		Type:        jc.Type,
	}

	if jc.CreatedAt != nil {
		clip.CreatedAt = jc.CreatedAt.Time
	}

	// Listings sometimes already carry a rendered WAV; the key name varies
	// by endpoint.
	for _, u := range []string{jc.AudioURLWAV, jc.WAVURL, jc.WAVAudioURL} {
		if u != "" {
			clip.WAVURL = u
			break
		}
	}

	vote := jc.Vote
	if jc.Metadata != nil {
		clip.Prompt = jc.Metadata.Prompt
		clip.Tags = jc.Metadata.Tags
		if jc.Metadata.Lyrics != "" {
			clip.Lyrics = jc.Metadata.Lyrics
		} else {
			clip.Lyrics = jc.Metadata.Text
		}
		if clip.Type == "" {
			clip.Type = jc.Metadata.Type
		}
		if vote == "" {
			vote = jc.Metadata.Vote
		}
	}

	reaction := ""
	if jc.Reaction != nil {
		reaction = jc.Reaction.ReactionType
	}
	clip.Liked = jc.IsLiked || reaction == "L" || vote == "up"
	clip.Disliked = reaction == "D" || vote == "down"

	return clip
}

// JSONClipWrapper handles the {"clip": {...}} wrapping used by project
// listings. Fields of a bare clip are inlined so both shapes decode.
type JSONClipWrapper struct {
	Clip *JSONClip `json:"clip"`
	JSONClip
}

// Unwrap returns the wrapped clip when present, otherwise the inline one.
func (w *JSONClipWrapper) Unwrap() *JSONClip {
	if w.Clip != nil {
		return w.Clip
	}
	return &w.JSONClip
}

// pageKeys are the envelope keys a listing response may carry its clip
// list under, in precedence order:
//
//  1. Project listing: {"project_clips": [{"clip": {...}}, ...]}
//  2. Playlist detail: {"playlist_clips": [{"clip": {...}}, ...]}
//  3. Library feed:    {"clips": [...]} (or a bare JSON array)
var pageKeys = []string{"project_clips", "playlist_clips", "clips"}

// UnmarshalPage decodes a listing response body in any of the supported
// envelope shapes and returns the contained clips.
//
// An object with none of the known envelope keys is an error rather than
// an empty page, so error payloads like {"detail": "..."} cannot silently
// terminate pagination.
func UnmarshalPage(data []byte) ([]*model.Clip, error) {
	// Bare array form first.
	var bare []JSONClipWrapper
	if err := json.Unmarshal(data, &bare); err == nil {
		return wrappersToClips(bare), nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}

	for _, key := range pageKeys {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		var wrappers []JSONClipWrapper
		if err := json.Unmarshal(raw, &wrappers); err != nil {
			return nil, fmt.Errorf("parse %s list: %w", key, err)
		}
		return wrappersToClips(wrappers), nil
	}

	return nil, fmt.Errorf("listing page carries no clip list")
}

func wrappersToClips(wrappers []JSONClipWrapper) []*model.Clip {
	clips := make([]*model.Clip, 0, len(wrappers))
	for i := range wrappers {
		jc := wrappers[i].Unwrap()
		if jc.ID == "" {
			continue
		}
		clips = append(clips, jc.ToClip())
	}
	return clips
}

// JSONProject is one workspace entry from the project listing endpoint.
type JSONProject struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   *ClipTime `json:"created_at"`
}

// JSONProjectList is the envelope of the project listing endpoint.
type JSONProjectList struct {
	Projects []JSONProject `json:"projects"`
}

// JSONPlaylist is one playlist entry from the playlist listing endpoint.
type JSONPlaylist struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	NumClips int    `json:"num_total_results"`
}

// JSONPlaylistList is the envelope of the playlist listing endpoint.
type JSONPlaylistList struct {
	Playlists []JSONPlaylist `json:"playlists"`
}
