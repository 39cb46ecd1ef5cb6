package download

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/mwinther/suno-downloader/internal/model"
	"github.com/mwinther/suno-downloader/internal/suno"
)

const (
	// Smart resume stops after this many consecutive pages without a new
	// clip; the window grows with the library so reordered feeds on large
	// accounts still converge.
	resumeWindowMin = 2
	resumeWindowMax = 20

	// Pages that keep failing after retries are skipped; this many skipped
	// pages in a row abort the fetch.
	maxConsecutivePageFailures = 3
)

// Initialize scans the local library and fetches the clip listing for a
// source, collecting the clips that pass the filters and are not present
// locally. Must be called before StartDownloads.
func (m *Manager) Initialize(ctx context.Context, source suno.Source) error {
	known, err := m.lib.ClipIDs()
	if err != nil {
		return fmt.Errorf("scan library: %w", err)
	}
	m.mu.Lock()
	m.known = known
	m.clips = nil
	m.mu.Unlock()

	m.progress(ProgressEvent{Message: fmt.Sprintf("Found %d songs in library", len(known)), Level: LevelInfo})

	window := m.resumeWindow(len(known))

	page := m.settings.StartPage
	if page < 1 {
		page = 1
	}

	var (
		requests      int
		knownStreak   int
		failureStreak int
		seen          = make(map[string]bool)
		skippedClips  int
		filteredClips int
	)

	for {
		if m.settings.MaxPages > 0 && requests >= m.settings.MaxPages {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Reached page limit of %d", m.settings.MaxPages), Level: LevelVerbose})
			break
		}

		if err := m.limiter.Wait(ctx); err != nil {
			return err
		}

		clips, err := m.listPage(ctx, source, page)
		requests++
		if err != nil {
			if errors.Is(err, suno.ErrTokenExpired) || errors.Is(err, context.Canceled) {
				return err
			}
			failureStreak++
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error fetching page %d: %v", page, err), Level: LevelError})
			if failureStreak >= maxConsecutivePageFailures {
				return fmt.Errorf("giving up after %d failed pages: %w", failureStreak, err)
			}
			page++
			continue
		}
		failureStreak = 0

		if len(clips) == 0 {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Page %d is empty, done", page), Level: LevelVerbose})
			break
		}

		newOnPage := 0
		for _, clip := range clips {
			if seen[clip.ID] {
				continue
			}
			seen[clip.ID] = true

			if _, ok := known[clip.ID]; ok {
				skippedClips++
				continue
			}
			newOnPage++

			if !m.filter.Matches(clip) {
				filteredClips++
				continue
			}

			m.mu.Lock()
			m.clips = append(m.clips, clip)
			m.mu.Unlock()
		}

		m.progress(ProgressEvent{Message: fmt.Sprintf("Page %d: %d songs, %d new", page, len(clips), newOnPage), Level: LevelVerbose})

		if m.settings.SmartResume && len(known) > 0 {
			if newOnPage == 0 {
				knownStreak++
				if knownStreak >= window {
					m.progress(ProgressEvent{Message: fmt.Sprintf("No new songs in %d pages, stopping", knownStreak), Level: LevelInfo})
					break
				}
			} else {
				knownStreak = 0
			}
		}

		page++
	}

	atomic.StoreInt32(&m.skippedKnown, int32(skippedClips))
	atomic.StoreInt32(&m.totalFiles, int32(len(m.Clips())))

	m.progress(ProgressEvent{Message: fmt.Sprintf("Queued %d songs (%d already downloaded, %d filtered out)",
		len(m.Clips()), skippedClips, filteredClips), Level: LevelInfo})

	return nil
}

// listPage fetches one listing page with bounded retries for transient
// errors.
func (m *Manager) listPage(ctx context.Context, source suno.Source, page int) ([]*model.Clip, error) {
	attempts := m.settings.DownloadMaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for tries := 0; tries < attempts; tries++ {
		clips, err := m.client.ListPage(ctx, source, page)
		if err == nil {
			return clips, nil
		}
		if errors.Is(err, suno.ErrTokenExpired) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		lastErr = err
		m.waitForRetry(ctx, tries)
	}
	return nil, lastErr
}

// resumeWindow returns the smart-resume lookback in pages, scaled with
// the library size.
func (m *Manager) resumeWindow(knownCount int) int {
	window := knownCount / 100
	if window < resumeWindowMin {
		window = resumeWindowMin
	}
	if window > resumeWindowMax {
		window = resumeWindowMax
	}
	return window
}
