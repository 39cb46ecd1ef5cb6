// Package suno provides the REST client for the music generation service.
//
// The package handles three concerns:
//
//  1. Paginated clip listings from the library feed, the public feed,
//     workspaces (projects) and playlists
//  2. Clip detail refetches for records the listing views truncate
//  3. Server-side WAV conversion: trigger plus status polling
//
// # Listing
//
// Listings are addressed by a Source and a 1-based page number:
//
//	client := suno.NewClient(httpClient, "")
//	clips, err := client.ListPage(ctx, suno.Source{Kind: suno.SourceLibrary}, 1)
//
// An empty page means the listing is exhausted. Playlist detail pages fall
// back to the legacy plural endpoint when the current one answers 404.
//
// # WAV conversion
//
// WAV variants are rendered server-side on demand:
//
//	if err := client.RequestWAV(ctx, clip.ID); err == nil {
//	    wavURL, err := client.AwaitWAV(ctx, clip.ID)
//	    ...
//	}
//
// AwaitWAV polls every 2 seconds for up to 120 seconds and returns
// ErrConversionTimeout when the service never finishes, at which point the
// caller falls back to the MP3 stream.
//
// # Errors
//
// A 401 from any endpoint surfaces as ErrTokenExpired: the short-lived
// bearer token has to be refreshed by the user.
package suno
