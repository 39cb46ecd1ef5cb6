package audio

import (
	"fmt"
	"os"

	"github.com/bogem/id3v2"
	"github.com/mwinther/suno-downloader/internal/model"
)

// ClipIDDescriptor is the description of the TXXX frame carrying the
// generation UUID. Files tagged with it are recognized on later runs and
// never downloaded twice.
const ClipIDDescriptor = "SUNO_UUID"

// TagEditAction defines how to handle individual ID3 tags.
//
// Each tag field can be configured independently to determine whether
// it should be modified, cleared, or left unchanged.
type TagEditAction int

const (
	// TagEmpty clears the tag value (sets to empty string).
	TagEmpty TagEditAction = iota

	// TagModify updates the tag with the clip's value.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field.
//
// This allows fine-grained control over which tags are modified
// when processing downloaded files.
//
// Example:
//
//	cfg := &TagConfig{
//	    ModifyTags: true,
//	    Artist:     TagModify,      // Update artist from the clip
//	    Title:      TagModify,      // Update title from the clip
//	    Genre:      TagModify,      // Update genre from the style tags
//	    Year:       TagModify,      // Update year from the creation date
//	    Lyrics:     TagModify,      // Add lyrics if available
//	    Comments:   TagDoNotModify, // Keep existing comments
//	}
type TagConfig struct {
	// ModifyTags is a master switch. If false, no string tags are modified.
	// The clip ID frame is always written so duplicate detection keeps
	// working.
	ModifyTags bool

	// Artist controls the TPE1 (Lead artist) frame.
	Artist TagEditAction

	// Title controls the TIT2 (Title) frame.
	Title TagEditAction

	// Genre controls the TCON (Content type) frame, filled from the
	// clip's style tags.
	Genre TagEditAction

	// Year controls the TYER (Year) frame.
	Year TagEditAction

	// Date controls the TDRC (Recording time) frame (ID3v2.4).
	Date TagEditAction

	// Lyrics controls the USLT (Unsynchronized lyrics) frame.
	Lyrics TagEditAction

	// Comments controls the COMM (Comments) frame, filled from the
	// generation prompt.
	Comments TagEditAction
}

// DefaultTagConfig returns the default tag configuration.
//
// By default every tag is set to TagModify, which fills it with clip data.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags: true,
		Artist:     TagModify,
		Title:      TagModify,
		Genre:      TagModify,
		Year:       TagModify,
		Date:       TagModify,
		Lyrics:     TagModify,
		Comments:   TagModify,
	}
}

// Tagger writes ID3 tags to downloaded audio files.
//
// Tagger uses the id3v2 library to modify file metadata including:
//   - Artist, Title, Genre, Year
//   - Generation prompt (comment)
//   - Lyrics (unsynchronized)
//   - Clip UUID (user defined text frame)
//   - Cover Art (attached picture)
//
// MP3 files carry the tag natively. WAV files store the same tag inside
// a RIFF "id3 " chunk, see SaveWAVTags.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//
//	// After downloading a clip
//	err := tagger.SaveTags(path, clip, artworkBytes)
//	if err != nil {
//	    log.Printf("Failed to tag %s: %v", path, err)
//	}
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes ID3 tags to the clip's MP3 file.
//
// This method:
//  1. Opens the existing MP3 file (or creates empty tags if none exist)
//  2. Updates string tags based on TagConfig settings
//  3. Writes the clip UUID frame used for duplicate detection
//  4. Embeds cover art if artwork bytes are provided
//  5. Saves the modified tags to the file
//
// Parameters:
//   - path: The file being tagged
//   - clip: The clip (provides title, artist, lyrics, prompt, UUID)
//   - artwork: JPEG image bytes for cover art (nil to skip artwork)
//
// Returns an error if the file cannot be opened or saved.
func (t *Tagger) SaveTags(path string, clip *model.Clip, artwork []byte) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		// If file doesn't have tags, create new
		if os.IsNotExist(err) {
			tag = id3v2.NewEmptyTag()
		} else {
			return fmt.Errorf("open tags of %s: %w", path, err)
		}
	}
	defer tag.Close()

	t.ApplyTags(tag, clip, artwork)

	return tag.Save()
}

// ApplyTags fills an in-memory tag from a clip. SaveTags and SaveWAVTags
// both route through it.
func (t *Tagger) ApplyTags(tag *id3v2.Tag, clip *model.Clip, artwork []byte) {
	if t.config.ModifyTags {
		t.updateStringTags(tag, clip)
	}

	t.setClipID(tag, clip.ID)

	if artwork != nil {
		t.updateArtwork(tag, artwork)
	}
}

// updateStringTags updates text-based ID3 frames based on configuration.
func (t *Tagger) updateStringTags(tag *id3v2.Tag, clip *model.Clip) {
	// Title (TIT2)
	switch t.config.Title {
	case TagEmpty:
		tag.SetTitle("")
	case TagModify:
		tag.SetTitle(clip.Title)
	}

	// Artist (TPE1)
	switch t.config.Artist {
	case TagEmpty:
		tag.SetArtist("")
	case TagModify:
		tag.SetArtist(clip.DisplayName)
	}

	// Genre (TCON) - the comma separated style tags
	switch t.config.Genre {
	case TagEmpty:
		tag.SetGenre("")
	case TagModify:
		if clip.Tags != "" {
			tag.SetGenre(clip.Tags)
		}
	}

	// Year (TYER) - ID3v2.3
	switch t.config.Year {
	case TagEmpty:
		tag.DeleteFrames("TYER")
	case TagModify:
		if !clip.CreatedAt.IsZero() {
			tag.AddTextFrame("TYER", id3v2.EncodingUTF8, clip.CreatedAt.Format("2006"))
		}
	}

	// Date (TDRC) - ID3v2.4
	switch t.config.Date {
	case TagEmpty:
		tag.DeleteFrames("TDRC")
	case TagModify:
		if !clip.CreatedAt.IsZero() {
			tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, clip.CreatedAt.Format("2006-01-02"))
		}
	}

	// Comments (COMM) - the generation prompt
	switch t.config.Comments {
	case TagEmpty:
		tag.DeleteFrames(tag.CommonID("Comments"))
	case TagModify:
		if clip.Prompt != "" {
			comment := id3v2.CommentFrame{
				Encoding:    id3v2.EncodingUTF8,
				Language:    "eng",
				Description: "",
				Text:        clip.Prompt,
			}
			tag.AddCommentFrame(comment)
		}
	}

	// Lyrics (USLT)
	switch t.config.Lyrics {
	case TagEmpty:
		tag.DeleteFrames(tag.CommonID("Unsynchronised lyrics/text transcription"))
	case TagModify:
		if lyrics := clip.LyricsText(); lyrics != "" {
			uslf := id3v2.UnsynchronisedLyricsFrame{
				Encoding:          id3v2.EncodingUTF8,
				Language:          "eng",
				ContentDescriptor: "",
				Lyrics:            lyrics,
			}
			tag.AddUnsynchronisedLyricsFrame(uslf)
		}
	}
}

// setClipID writes the TXXX frame carrying the generation UUID.
func (t *Tagger) setClipID(tag *id3v2.Tag, clipID string) {
	if clipID == "" {
		return
	}
	frame := id3v2.UserDefinedTextFrame{
		Encoding:    id3v2.EncodingUTF8,
		Description: ClipIDDescriptor,
		Value:       clipID,
	}
	tag.AddUserDefinedTextFrame(frame)
}

// updateArtwork embeds cover art as an attached picture frame.
func (t *Tagger) updateArtwork(tag *id3v2.Tag, artwork []byte) {
	// Remove any existing cover pictures
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	// Add new artwork as front cover (APIC frame)
	pic := id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	}
	tag.AddAttachedPicture(pic)
}

// ClipID extracts the generation UUID from a parsed tag. Returns an empty
// string when the file carries no UUID frame.
func ClipID(tag *id3v2.Tag) string {
	frames := tag.GetFrames(tag.CommonID("User defined text information frame"))
	for _, f := range frames {
		udf, ok := f.(id3v2.UserDefinedTextFrame)
		if !ok {
			continue
		}
		if udf.Description == ClipIDDescriptor {
			return udf.Value
		}
	}
	return ""
}

// ReadClipID opens an MP3 file and extracts the generation UUID from its
// tags. Returns an empty string when the file has no tags or no UUID frame.
func ReadClipID(path string) (string, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return "", fmt.Errorf("open tags of %s: %w", path, err)
	}
	defer tag.Close()

	return ClipID(tag), nil
}
