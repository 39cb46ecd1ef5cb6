package ioutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates a directory and all parent directories if they don't exist.
//
// Directories are created with mode 0755 (rwxr-xr-x).
// If the directory already exists, no error is returned.
//
// Example:
//
//	err := EnsureDir("/music/2025-11")
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// WriteFile writes data to a file with mode 0644, truncating any existing
// content. Used for sidecar lyrics files and playlist exports.
func WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

// UniqueFileName returns a path that does not collide with an existing file.
//
// If path is free it is returned unchanged; otherwise a " v2", " v3", ...
// suffix is inserted before the extension until a free name is found.
//
// Example:
//
//	name := UniqueFileName("/music/Song.mp3")
//	// "/music/Song.mp3" if free, otherwise "/music/Song v2.mp3"
func UniqueFileName(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for counter := 2; ; counter++ {
		candidate := fmt.Sprintf("%s v%d%s", base, counter, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
