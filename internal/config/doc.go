// Package config provides configuration management for suno-downloader.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Conversion to PathConfig and Filter for other packages
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Downloads to ~/Music/Suno/YYYY-MM/
//	// 10 concurrent downloads
//	// Metadata embedding enabled
//
// # Loading from File
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Saving Settings
//
//	settings.Directory = "/custom/path"
//	err := settings.Save(config.DefaultPath())
//
// # Configuration Options
//
// Settings includes options for:
//   - Output directory and organization
//   - Concurrent download limits
//   - Retry behavior and request pacing
//   - Page range and smart resume
//   - Clip filters
//   - Metadata and artwork embedding
//   - Playlist generation
package config
