package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/mwinther/suno-downloader/internal/audio"
	"github.com/mwinther/suno-downloader/internal/model"
)

func newTestApp(t *testing.T) (*cli.Command, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer
	runner := NewRunner(RunnerOpts{
		Logger: log.New(io.Discard),
		Output: &out,
	})
	return &cli.Command{Name: "suno-dl", Commands: runner.register()}, &out
}

func writeTaggedMP3(t *testing.T, path string, clip *model.Clip) {
	t.Helper()

	data := make([]byte, 4096)
	copy(data, []byte{0xff, 0xfb, 0x90, 0x00})
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	tagger := audio.NewTagger(audio.DefaultTagConfig())
	if err := tagger.SaveTags(path, clip, nil); err != nil {
		t.Fatal(err)
	}
}

func TestLyricsCommand_Print(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Song.mp3")
	writeTaggedMP3(t, path, &model.Clip{
		ID:     "11111111-2222-3333-4444-555555555555",
		Title:  "Song",
		Lyrics: "verse one\nverse two",
	})

	app, out := newTestApp(t)
	if err := app.Run(t.Context(), []string{"suno-dl", "lyrics", path}); err != nil {
		t.Fatalf("lyrics command error: %v", err)
	}
	if !strings.Contains(out.String(), "verse one") {
		t.Errorf("output = %q, want embedded lyrics", out.String())
	}
}

func TestLyricsCommand_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Song.mp3")
	writeTaggedMP3(t, path, &model.Clip{
		ID:    "11111111-2222-3333-4444-555555555555",
		Title: "Song",
	})

	source := filepath.Join(dir, "new.txt")
	if err := os.WriteFile(source, []byte("rewritten words"), 0644); err != nil {
		t.Fatal(err)
	}

	app, _ := newTestApp(t)
	if err := app.Run(t.Context(), []string{"suno-dl", "lyrics", "--from-file", source, path}); err != nil {
		t.Fatalf("lyrics command error: %v", err)
	}

	sidecar, err := os.ReadFile(filepath.Join(dir, "Song.txt"))
	if err != nil {
		t.Fatalf("sidecar missing: %v", err)
	}
	if string(sidecar) != "rewritten words" {
		t.Errorf("sidecar = %q", sidecar)
	}

	// The replacement is readable back through the print path.
	app2, out := newTestApp(t)
	if err := app2.Run(t.Context(), []string{"suno-dl", "lyrics", path}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "rewritten words") {
		t.Errorf("output = %q, want replaced lyrics", out.String())
	}
}

func TestTagCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Song.mp3")
	writeTaggedMP3(t, path, &model.Clip{
		ID:    "11111111-2222-3333-4444-555555555555",
		Title: "Song",
	})

	missingConfig := filepath.Join(dir, "no-settings.json")

	app, out := newTestApp(t)
	args := []string{"suno-dl", "tag", "-c", missingConfig, "-o", dir, "--liked", "--starred", path}
	if err := app.Run(t.Context(), args); err != nil {
		t.Fatalf("tag command error: %v", err)
	}
	if !strings.Contains(out.String(), "+") || !strings.Contains(out.String(), "*") {
		t.Errorf("output = %q, want liked and starred markers", out.String())
	}

	// The overlay shows up in the library listing.
	app2, listing := newTestApp(t)
	if err := app2.Run(t.Context(), []string{"suno-dl", "library", "-c", missingConfig, "-o", dir}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(listing.String(), "+*") {
		t.Errorf("listing = %q, want tag markers", listing.String())
	}

	// Untracked files are rejected.
	app3, _ := newTestApp(t)
	err := app3.Run(t.Context(), []string{"suno-dl", "tag", "-c", missingConfig, "-o", dir, "--liked", filepath.Join(dir, "nope.mp3")})
	if err == nil {
		t.Error("expected error for file outside the library")
	}
}
