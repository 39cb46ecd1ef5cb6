package audio

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bogem/id3v2"
	"github.com/mwinther/suno-downloader/internal/model"
)

func testClip() *model.Clip {
	return &model.Clip{
		ID:          "0a1b2c3d-4e5f-6789-abcd-ef0123456789",
		Title:       "Midnight Run",
		DisplayName: "someone",
		CreatedAt:   time.Date(2025, 7, 14, 10, 0, 0, 0, time.UTC),
		Prompt:      "synthwave chase scene",
		Tags:        "synthwave, retro",
		Lyrics:      "city lights below",
	}
}

func TestTagger_ApplyTags(t *testing.T) {
	tagger := NewTagger(DefaultTagConfig())
	tag := id3v2.NewEmptyTag()

	tagger.ApplyTags(tag, testClip(), []byte{0xff, 0xd8, 0xff})

	if got := tag.Title(); got != "Midnight Run" {
		t.Errorf("Title = %q", got)
	}
	if got := tag.Artist(); got != "someone" {
		t.Errorf("Artist = %q", got)
	}
	if got := tag.Genre(); got != "synthwave, retro" {
		t.Errorf("Genre = %q", got)
	}
	if got := tag.GetTextFrame("TYER").Text; got != "2025" {
		t.Errorf("TYER = %q", got)
	}
	if got := tag.GetTextFrame("TDRC").Text; got != "2025-07-14" {
		t.Errorf("TDRC = %q", got)
	}

	comments := tag.GetFrames(tag.CommonID("Comments"))
	if len(comments) != 1 {
		t.Fatalf("got %d comment frames, want 1", len(comments))
	}
	if cf := comments[0].(id3v2.CommentFrame); cf.Text != "synthwave chase scene" {
		t.Errorf("comment = %q", cf.Text)
	}

	lyrics := tag.GetFrames(tag.CommonID("Unsynchronised lyrics/text transcription"))
	if len(lyrics) != 1 {
		t.Fatalf("got %d lyrics frames, want 1", len(lyrics))
	}
	if lf := lyrics[0].(id3v2.UnsynchronisedLyricsFrame); lf.Lyrics != "city lights below" {
		t.Errorf("lyrics = %q", lf.Lyrics)
	}

	if got := ClipID(tag); got != "0a1b2c3d-4e5f-6789-abcd-ef0123456789" {
		t.Errorf("ClipID = %q", got)
	}

	pictures := tag.GetFrames(tag.CommonID("Attached picture"))
	if len(pictures) != 1 {
		t.Fatalf("got %d picture frames, want 1", len(pictures))
	}
}

func TestTagger_ApplyTags_MasterSwitch(t *testing.T) {
	tagger := NewTagger(&TagConfig{ModifyTags: false})
	tag := id3v2.NewEmptyTag()

	tagger.ApplyTags(tag, testClip(), nil)

	if got := tag.Title(); got != "" {
		t.Errorf("Title = %q, want empty", got)
	}
	// Duplicate detection must survive the master switch.
	if got := ClipID(tag); got == "" {
		t.Error("clip ID frame missing")
	}
}

func TestTagger_ApplyTags_EmptyFields(t *testing.T) {
	tagger := NewTagger(DefaultTagConfig())
	tag := id3v2.NewEmptyTag()

	clip := &model.Clip{ID: "id-only", Title: "Untitled"}
	tagger.ApplyTags(tag, clip, nil)

	if frames := tag.GetFrames("TYER"); len(frames) != 0 {
		t.Error("year frame written for clip without creation date")
	}
	if frames := tag.GetFrames(tag.CommonID("Comments")); len(frames) != 0 {
		t.Error("comment frame written for clip without prompt")
	}
	if frames := tag.GetFrames(tag.CommonID("Unsynchronised lyrics/text transcription")); len(frames) != 0 {
		t.Error("lyrics frame written for clip without lyrics")
	}
}

func TestClipID_NoFrame(t *testing.T) {
	tag := id3v2.NewEmptyTag()
	tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
		Encoding:    id3v2.EncodingUTF8,
		Description: "SOMETHING_ELSE",
		Value:       "irrelevant",
	})

	if got := ClipID(tag); got != "" {
		t.Errorf("ClipID = %q, want empty", got)
	}
}

// makeWAV builds a minimal RIFF/WAVE file with the given byte rate and
// data chunk size.
func makeWAV(byteRate uint32, dataSize int) []byte {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	buf.Write([]byte{0, 0, 0, 0})
	buf.WriteString("WAVE")

	fmtChunk := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtChunk[0:2], 1)     // PCM
	binary.LittleEndian.PutUint16(fmtChunk[2:4], 2)     // channels
	binary.LittleEndian.PutUint32(fmtChunk[4:8], 44100) // sample rate
	binary.LittleEndian.PutUint32(fmtChunk[8:12], byteRate)
	binary.LittleEndian.PutUint16(fmtChunk[12:14], 4)
	binary.LittleEndian.PutUint16(fmtChunk[14:16], 16)
	writeChunk(&buf, "fmt ", fmtChunk)

	writeChunk(&buf, "data", make([]byte, dataSize))

	out := buf.Bytes()
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)-8))
	return out
}

func TestTagger_SaveWAVTags_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, makeWAV(1000, 100), 0644); err != nil {
		t.Fatal(err)
	}

	tagger := NewTagger(DefaultTagConfig())
	clip := testClip()
	if err := tagger.SaveWAVTags(path, clip, nil); err != nil {
		t.Fatalf("SaveWAVTags() error = %v", err)
	}

	id, err := ReadWAVClipID(path)
	if err != nil {
		t.Fatalf("ReadWAVClipID() error = %v", err)
	}
	if id != clip.ID {
		t.Errorf("clip ID = %q, want %q", id, clip.ID)
	}

	tag, err := ReadWAVTags(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := tag.Title(); got != "Midnight Run" {
		t.Errorf("Title = %q", got)
	}

	// Audio data must survive tagging.
	if got := WAVDuration(path); got != 0.1 {
		t.Errorf("WAVDuration() = %v, want 0.1", got)
	}
}

func TestTagger_SaveWAVTags_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, makeWAV(1000, 100), 0644); err != nil {
		t.Fatal(err)
	}

	tagger := NewTagger(DefaultTagConfig())

	first := testClip()
	if err := tagger.SaveWAVTags(path, first, nil); err != nil {
		t.Fatal(err)
	}

	second := testClip()
	second.ID = "ffffffff-0000-0000-0000-000000000000"
	second.Title = "Retagged"
	if err := tagger.SaveWAVTags(path, second, nil); err != nil {
		t.Fatal(err)
	}

	tag, err := ReadWAVTags(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := tag.Title(); got != "Retagged" {
		t.Errorf("Title = %q", got)
	}
	if got := ClipID(tag); got != second.ID {
		t.Errorf("clip ID = %q, want %q", got, second.ID)
	}
}

func TestReadWAVTags_Untagged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, makeWAV(1000, 100), 0644); err != nil {
		t.Fatal(err)
	}

	tag, err := ReadWAVTags(path)
	if err != nil {
		t.Fatalf("ReadWAVTags() error = %v", err)
	}
	if tag != nil {
		t.Error("expected nil tag for untagged file")
	}
}

func TestSaveWAVTags_NotWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.wav")
	if err := os.WriteFile(path, []byte("not a wave file at all"), 0644); err != nil {
		t.Fatal(err)
	}

	tagger := NewTagger(DefaultTagConfig())
	if err := tagger.SaveWAVTags(path, testClip(), nil); err == nil {
		t.Error("expected error for non-RIFF file")
	}
}

func TestWAVDuration(t *testing.T) {
	tests := []struct {
		name     string
		byteRate uint32
		dataSize int
		want     float64
	}{
		{"one second", 1000, 1000, 1.0},
		{"half second", 2000, 1000, 0.5},
		{"zero byte rate", 0, 1000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "probe.wav")
			if err := os.WriteFile(path, makeWAV(tt.byteRate, tt.dataSize), 0644); err != nil {
				t.Fatal(err)
			}
			if got := WAVDuration(path); got != tt.want {
				t.Errorf("WAVDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMP3Duration(t *testing.T) {
	// MPEG 1 Layer III header at 128 kbit/s.
	frame := []byte{0xff, 0xfb, 0x90, 0x00}

	data := make([]byte, 16000)
	copy(data, frame)

	path := filepath.Join(t.TempDir(), "clip.mp3")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	// 16000 bytes at 128 kbit/s is exactly one second.
	if got := MP3Duration(path); got != 1.0 {
		t.Errorf("MP3Duration() = %v, want 1.0", got)
	}
}

func TestMP3Duration_NoFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "silent.mp3")
	if err := os.WriteFile(path, make([]byte, 512), 0644); err != nil {
		t.Fatal(err)
	}

	if got := MP3Duration(path); got != 0 {
		t.Errorf("MP3Duration() = %v, want 0", got)
	}
}
