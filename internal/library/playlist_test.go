package library

import (
	"strings"
	"testing"
)

func createTestEntries() []*Entry {
	return []*Entry{
		{Path: "/music/2025-07/track1.mp3", Title: "track1", Artist: "someone", Duration: 180},
		{Path: "/music/2025-07/track2.wav", Title: "track2", Artist: "someone", Duration: 200},
	}
}

func TestPlaylistCreator_M3U(t *testing.T) {
	creator := NewPlaylistCreator(FormatM3U, false)

	content := creator.CreatePlaylist("batch", createTestEntries())

	// Check basic format
	if !strings.Contains(content, "track1.mp3") {
		t.Error("M3U should contain entry filename")
	}
	if strings.Contains(content, "#EXTM3U") {
		t.Error("plain M3U should not contain header")
	}
}

func TestPlaylistCreator_M3UExtended(t *testing.T) {
	creator := NewPlaylistCreator(FormatM3U, true)

	content := creator.CreatePlaylist("batch", createTestEntries())

	if !strings.HasPrefix(content, "#EXTM3U") {
		t.Error("Extended M3U should start with #EXTM3U")
	}
	if !strings.Contains(content, "#EXTINF:180,someone - track1") {
		t.Error("Extended M3U should contain #EXTINF line")
	}
}

func TestPlaylistCreator_M3URelativePaths(t *testing.T) {
	creator := NewPlaylistCreator(FormatM3U, false)
	creator.SetBaseDir("/music")

	content := creator.CreatePlaylist("batch", createTestEntries())

	if !strings.Contains(content, "2025-07/track1.mp3") {
		t.Errorf("M3U should reference entries relative to the base dir, got:\n%s", content)
	}
}

func TestPlaylistCreator_PLS(t *testing.T) {
	creator := NewPlaylistCreator(FormatPLS, false)

	content := creator.CreatePlaylist("batch", createTestEntries())

	if !strings.HasPrefix(content, "[playlist]") {
		t.Error("PLS should start with [playlist]")
	}
	if !strings.Contains(content, "File1=") {
		t.Error("PLS should contain File1=")
	}
	if !strings.Contains(content, "NumberOfEntries=2") {
		t.Error("PLS should contain NumberOfEntries")
	}
}

func TestPlaylistCreator_WPL(t *testing.T) {
	creator := NewPlaylistCreator(FormatWPL, false)

	content := creator.CreatePlaylist("batch", createTestEntries())

	if !strings.Contains(content, "<?wpl") {
		t.Error("WPL should contain XML declaration")
	}
	if !strings.Contains(content, "<smil>") {
		t.Error("WPL should contain smil element")
	}
	if !strings.Contains(content, "<media src=") {
		t.Error("WPL should contain media elements")
	}
	if !strings.Contains(content, "<title>batch</title>") {
		t.Error("WPL should contain playlist title")
	}
}

func TestPlaylistCreator_ZPL(t *testing.T) {
	creator := NewPlaylistCreator(FormatZPL, false)

	content := creator.CreatePlaylist("batch", createTestEntries())

	if !strings.Contains(content, "<?zpl") {
		t.Error("ZPL should contain XML declaration")
	}
	if !strings.Contains(content, "trackTitle=") {
		t.Error("ZPL should contain trackTitle attribute")
	}
	if !strings.Contains(content, "duration=\"180000\"") {
		t.Error("ZPL should contain duration in milliseconds")
	}
}

func TestPlaylistCreator_XMLEscape(t *testing.T) {
	entries := []*Entry{
		{Path: "/music/Track & \"Quote\".mp3", Title: "Track <Special>", Artist: "Artist & Co", Duration: 180},
	}

	creator := NewPlaylistCreator(FormatWPL, false)
	content := creator.CreatePlaylist("Mix & Match", entries)

	if strings.Contains(content, "<Special>") {
		t.Error("WPL should escape < and >")
	}
	if !strings.Contains(content, "&amp;") {
		t.Error("WPL should escape & as &amp;")
	}
}

func TestPlaylistFormat_Ext(t *testing.T) {
	tests := []struct {
		format PlaylistFormat
		want   string
	}{
		{FormatM3U, ".m3u"},
		{FormatPLS, ".pls"},
		{FormatWPL, ".wpl"},
		{FormatZPL, ".zpl"},
	}

	for _, tt := range tests {
		if got := tt.format.Ext(); got != tt.want {
			t.Errorf("Ext() = %q, want %q", got, tt.want)
		}
	}
}
