package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/mwinther/suno-downloader/internal/library"
	"github.com/mwinther/suno-downloader/internal/model"
)

// Settings holds all configuration options.
type Settings struct {
	// Account settings
	Token string `json:"token"`

	// BaseURL overrides the API host. Empty means the production service.
	BaseURL string `json:"base_url,omitempty"`

	// Download settings
	Directory              string  `json:"directory"`
	PreferWAV              bool    `json:"prefer_wav"`
	MaxConcurrentDownloads int     `json:"max_concurrent_downloads"`
	DownloadMaxRetries     int     `json:"download_max_retries"`
	DownloadRetryCooldown  float64 `json:"download_retry_cooldown"`
	DownloadRetryExponent  float64 `json:"download_retry_exponent"`
	DownloadDelay          float64 `json:"download_delay"`

	// WAV conversion polling, in seconds. Zero keeps the client defaults
	// (120s deadline, 2s interval).
	WAVConvertTimeout float64 `json:"wav_convert_timeout,omitempty"`
	WAVPollInterval   float64 `json:"wav_poll_interval,omitempty"`

	// Fetch settings
	StartPage   int  `json:"start_page"`
	MaxPages    int  `json:"max_pages"`
	SmartResume bool `json:"smart_resume"`

	// File organization
	OrganizeByMonth bool `json:"organize_by_month"`
	OrganizeByTrack bool `json:"organize_by_track"`

	// Filter settings
	LikedOnly      bool   `json:"liked_only"`
	IncludeTrashed bool   `json:"include_trashed"`
	HideStems      bool   `json:"hide_stems"`
	StemsOnly      bool   `json:"stems_only"`
	HideDisliked   bool   `json:"hide_disliked"`
	PublicOnly     bool   `json:"public_only"`
	UploadsOnly    bool   `json:"uploads_only"`
	Search         string `json:"search"`

	// Metadata settings
	EmbedMetadata     bool `json:"embed_metadata"`
	EmbedArtwork      bool `json:"embed_artwork"`
	ArtworkResize     bool `json:"artwork_resize"`
	ArtworkMaxSize    int  `json:"artwork_max_size"`
	SaveLyricsSidecar bool `json:"save_lyrics_sidecar"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist"`
	PlaylistFormat string `json:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `json:"m3u_extended"`

	// Library cache
	CachePath string `json:"cache_path"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		Directory:              filepath.Join(homeDir, "Music", "Suno"),
		PreferWAV:              false,
		MaxConcurrentDownloads: 10,
		DownloadMaxRetries:     7,
		DownloadRetryCooldown:  0.2,
		DownloadRetryExponent:  4.0,
		DownloadDelay:          0,

		StartPage:   1,
		MaxPages:    0,
		SmartResume: true,

		OrganizeByMonth: true,
		OrganizeByTrack: false,

		HideDisliked: true,

		EmbedMetadata:     true,
		EmbedArtwork:      true,
		ArtworkResize:     true,
		ArtworkMaxSize:    1000,
		SaveLyricsSidecar: true,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,
	}
}

// DefaultPath returns the default settings file location under the
// user's configuration directory.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "settings.json"
	}
	return filepath.Join(configDir, "suno-downloader", "settings.json")
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ToPathConfig converts settings to PathConfig.
func (s *Settings) ToPathConfig() *model.PathConfig {
	return &model.PathConfig{
		Directory:       s.Directory,
		OrganizeByMonth: s.OrganizeByMonth,
		OrganizeByTrack: s.OrganizeByTrack,
	}
}

// ToFilter converts settings to a clip filter.
func (s *Settings) ToFilter() *model.Filter {
	return &model.Filter{
		LikedOnly:      s.LikedOnly,
		IncludeTrashed: s.IncludeTrashed,
		HideStems:      s.HideStems,
		StemsOnly:      s.StemsOnly,
		HideDisliked:   s.HideDisliked,
		PublicOnly:     s.PublicOnly,
		UploadsOnly:    s.UploadsOnly,
		Search:         s.Search,
	}
}

// ToPlaylistFormat converts the playlist format name to its type.
func (s *Settings) ToPlaylistFormat() library.PlaylistFormat {
	switch s.PlaylistFormat {
	case "pls":
		return library.FormatPLS
	case "wpl":
		return library.FormatWPL
	case "zpl":
		return library.FormatZPL
	default:
		return library.FormatM3U
	}
}
