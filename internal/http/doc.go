// Package http provides an HTTP client configured for the remote music
// service's API.
//
// The Client in this package handles:
//   - Bearer token authorization headers
//   - JSON request/response helpers
//   - File downloads with progress tracking
//   - File size retrieval via HEAD requests
//
// # Basic Usage
//
//	client := http.NewClient(token)
//
//	var page feedPage
//	err := client.GetJSON(ctx, listURL, &page)
//
//	client.DownloadFile(ctx, audioURL, "/music/song.mp3", func(written, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	})
//
// # Status errors
//
// Non-2xx responses surface as *StatusError so callers can branch on the
// code, e.g. treating 401 as an expired token or 404 as "not ready yet"
// while polling.
package http
