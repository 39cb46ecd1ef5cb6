// Package ioutils provides file system and image processing utilities.
//
// # File Operations
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/music/2025-11")
//
//	// Write sidecar files
//	err := ioutils.WriteFile("/music/2025-11/Song.txt", []byte(lyrics))
//
//	// Resolve filename collisions with " v2", " v3" suffixes
//	path := ioutils.UniqueFileName("/music/2025-11/Song.mp3")
//
// # Image Processing
//
// The ImageService normalizes cover art before tag embedding:
//
//	svc := ioutils.NewImageService()
//	resized, _ := svc.ResizeImage(imageData, 1000, 1000)
//	jpeg, _ := svc.ConvertToJPEG(pngData)
package ioutils
