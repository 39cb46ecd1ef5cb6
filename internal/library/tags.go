package library

import (
	"github.com/bogem/id3v2"
)

func openMP3Tag(path string) (*id3v2.Tag, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// setTaggedLyrics replaces the tag's USLT frames with the given text.
func setTaggedLyrics(tag *id3v2.Tag, text string) {
	tag.DeleteFrames(tag.CommonID("Unsynchronised lyrics/text transcription"))
	tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
		Encoding: id3v2.EncodingUTF8,
		Language: "eng",
		Lyrics:   text,
	})
}

// taggedLyrics extracts the text of the first USLT frame.
func taggedLyrics(tag *id3v2.Tag) string {
	frames := tag.GetFrames(tag.CommonID("Unsynchronised lyrics/text transcription"))
	for _, f := range frames {
		if uslf, ok := f.(id3v2.UnsynchronisedLyricsFrame); ok {
			return uslf.Lyrics
		}
	}
	return ""
}
