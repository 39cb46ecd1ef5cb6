// Package download provides the orchestration logic for fetching song
// listings and downloading audio files.
//
// # Manager
//
// The Manager coordinates the entire pipeline:
//
//  1. Scan the local library for already-downloaded songs
//  2. Fetch the clip listing page by page, stopping early once only
//     known songs keep appearing (smart resume)
//  3. Download new clips concurrently, preferring WAV when configured
//  4. Embed metadata, lyrics and cover art
//  5. Write sidecar lyrics files and an optional playlist
//
// # Basic Usage
//
//	manager := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
//	err := manager.Initialize(ctx, suno.Source{Kind: suno.SourceLibrary})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = manager.StartDownloads(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
// Clips are downloaded by a worker pool bounded by
// settings.MaxConcurrentDownloads. Per-clip failures are counted and
// logged; only an expired token or a cancelled context aborts the run.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// # Retry Logic
//
// Failed requests are retried with exponential backoff, configurable via
// settings.DownloadMaxRetries, DownloadRetryCooldown and
// DownloadRetryExponent. An optional inter-request delay
// (settings.DownloadDelay) paces traffic against the service.
package download
