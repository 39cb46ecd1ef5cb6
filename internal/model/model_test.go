package model

import (
	"path/filepath"
	"testing"
	"time"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"normal-file.mp3", "normal-file.mp3"},
		{"file:with:colons", "file_with_colons"},
		{"file<with>brackets", "file_with_brackets"},
		{"file/with\\slashes", "file_with_slashes"},
		{"file|with|pipes", "file_with_pipes"},
		{"file?with*wildcards", "file_with_wildcards"},
		{"trailing dots...", "trailing dots"},
		{"multiple   spaces", "multiple spaces"},
		{"  padded  ", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeFileName(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeFileName_Truncates(t *testing.T) {
	long := ""
	for i := 0; i < 300; i++ {
		long += "a"
	}
	if got := SanitizeFileName(long); len(got) != maxFileNameLen {
		t.Errorf("len = %d, want %d", len(got), maxFileNameLen)
	}
}

func TestClip_IsStem(t *testing.T) {
	tests := []struct {
		name string
		clip Clip
		want bool
	}{
		{"plain clip", Clip{Title: "Midnight Run", Type: "gen"}, false},
		{"stem type", Clip{Title: "Midnight Run", Type: "gen_stem"}, true},
		{"stem title suffix", Clip{Title: "Midnight Run (Drums)", Type: "gen"}, true},
		{"vocals suffix", Clip{Title: "midnight run (vocals)"}, true},
		{"upload", Clip{Title: "Demo", Type: "upload"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.clip.IsStem(); got != tt.want {
				t.Errorf("IsStem() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClip_BaseTitle(t *testing.T) {
	clip := Clip{Title: "Midnight Run (Drums)"}
	if got := clip.BaseTitle(); got != "Midnight Run" {
		t.Errorf("BaseTitle() = %q, want %q", got, "Midnight Run")
	}

	clip = Clip{Title: "Plain Song"}
	if got := clip.BaseTitle(); got != "Plain Song" {
		t.Errorf("BaseTitle() = %q, want %q", got, "Plain Song")
	}
}

func TestClip_LyricsText(t *testing.T) {
	clip := Clip{Lyrics: "la la la", Prompt: "a song about rain"}
	if got := clip.LyricsText(); got != "la la la" {
		t.Errorf("LyricsText() = %q, want lyrics", got)
	}

	clip = Clip{Prompt: "a song about rain"}
	if got := clip.LyricsText(); got != "a song about rain" {
		t.Errorf("LyricsText() = %q, want prompt fallback", got)
	}
}

func TestPathConfig_TargetDir(t *testing.T) {
	created := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cfg  PathConfig
		clip Clip
		want string
	}{
		{
			name: "flat",
			cfg:  PathConfig{Directory: "/music"},
			clip: Clip{Title: "Song", CreatedAt: created},
			want: "/music",
		},
		{
			name: "dated folder",
			cfg:  PathConfig{Directory: "/music", OrganizeByMonth: true},
			clip: Clip{Title: "Song", CreatedAt: created},
			want: filepath.Join("/music", "2025-11"),
		},
		{
			name: "no date falls back to root",
			cfg:  PathConfig{Directory: "/music", OrganizeByMonth: true},
			clip: Clip{Title: "Song"},
			want: "/music",
		},
		{
			name: "stem grouped by base title",
			cfg:  PathConfig{Directory: "/music", OrganizeByMonth: true, OrganizeByTrack: true},
			clip: Clip{Title: "Song (Drums)", Type: "gen_stem", CreatedAt: created},
			want: filepath.Join("/music", "2025-11", "Song"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.TargetDir(&tt.clip); got != tt.want {
				t.Errorf("TargetDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPathConfig_FileName(t *testing.T) {
	cfg := PathConfig{Directory: "/music"}

	clip := Clip{ID: "abc-123", Title: "Song: Part 1"}
	if got := cfg.FileName(&clip, ".mp3"); got != "Song_ Part 1.mp3" {
		t.Errorf("FileName() = %q", got)
	}

	clip = Clip{ID: "abc-123"}
	if got := cfg.FileName(&clip, ".wav"); got != "abc-123.wav" {
		t.Errorf("FileName() = %q, want ID fallback", got)
	}
}

func TestFilter_Matches(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		clip   Clip
		want   bool
	}{
		{"default accepts plain clip", Filter{}, Clip{Title: "Song"}, true},
		{"default skips trashed", Filter{}, Clip{Title: "Song", Trashed: true}, false},
		{"include trashed", Filter{IncludeTrashed: true}, Clip{Title: "Song", Trashed: true}, true},
		{"liked only rejects unliked", Filter{LikedOnly: true}, Clip{Title: "Song"}, false},
		{"liked only accepts liked", Filter{LikedOnly: true}, Clip{Title: "Song", Liked: true}, true},
		{"hide stems", Filter{HideStems: true}, Clip{Title: "Song (Drums)"}, false},
		{"stems only rejects full mix", Filter{StemsOnly: true}, Clip{Title: "Song"}, false},
		{"stems only overrides hide stems", Filter{StemsOnly: true, HideStems: true}, Clip{Title: "Song (Drums)"}, true},
		{"hide disliked", Filter{HideDisliked: true}, Clip{Title: "Song", Disliked: true}, false},
		{"public only", Filter{PublicOnly: true}, Clip{Title: "Song"}, false},
		{"uploads only", Filter{UploadsOnly: true}, Clip{Title: "Song", Type: "gen"}, false},
		{"uploads only accepts upload", Filter{UploadsOnly: true}, Clip{Title: "Song", Type: "upload"}, true},
		{"search matches prompt", Filter{Search: "rain"}, Clip{Title: "Song", Prompt: "about Rain"}, true},
		{"search misses", Filter{Search: "rain"}, Clip{Title: "Song", Prompt: "about sun"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(&tt.clip); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
