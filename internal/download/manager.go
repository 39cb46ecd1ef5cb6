package download

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mwinther/suno-downloader/internal/audio"
	"github.com/mwinther/suno-downloader/internal/config"
	httpx "github.com/mwinther/suno-downloader/internal/http"
	ioutils "github.com/mwinther/suno-downloader/internal/io"
	"github.com/mwinther/suno-downloader/internal/library"
	"github.com/mwinther/suno-downloader/internal/model"
	"github.com/mwinther/suno-downloader/internal/suno"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a download progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Manager coordinates the fetch and download pipeline for one source.
type Manager struct {
	settings     *config.Settings
	client       *suno.Client
	httpClient   *httpx.Client
	tagger       *audio.Tagger
	imageService *ioutils.ImageService
	lib          *library.Library
	cache        *library.Cache
	limiter      *rate.Limiter

	pathCfg *model.PathConfig
	filter  *model.Filter

	clips []*model.Clip
	known map[string]string

	totalFiles      int32
	downloadedFiles int32
	failedFiles     int32
	skippedKnown    int32

	onProgress func(ProgressEvent)
	mu         sync.Mutex
}

// NewManager creates a new download Manager.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent)) *Manager {
	httpClient := httpx.NewClient(settings.Token)

	var cache *library.Cache
	if settings.CachePath != "" {
		var err error
		cache, err = OpenLibraryCache(settings.CachePath)
		if err != nil && onProgress != nil {
			onProgress(ProgressEvent{
				Message: fmt.Sprintf("Error opening cache %s, scanning without it: %v", settings.CachePath, err),
				Level:   LevelWarning,
			})
		}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if settings.DownloadDelay > 0 {
		interval := time.Duration(settings.DownloadDelay * float64(time.Second))
		limiter = rate.NewLimiter(rate.Every(interval), 1)
	}

	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = suno.DefaultBaseURL
	}

	client := suno.NewClient(httpClient, baseURL)
	client.SetWAVPolling(
		time.Duration(settings.WAVConvertTimeout*float64(time.Second)),
		time.Duration(settings.WAVPollInterval*float64(time.Second)),
	)

	return &Manager{
		settings:     settings,
		client:       client,
		httpClient:   httpClient,
		tagger:       audio.NewTagger(audio.DefaultTagConfig()),
		imageService: ioutils.NewImageService(),
		lib:          library.New(settings.Directory, cache),
		cache:        cache,
		limiter:      limiter,
		pathCfg:      settings.ToPathConfig(),
		filter:       settings.ToFilter(),
		known:        make(map[string]string),
		onProgress:   onProgress,
	}
}

// OpenLibraryCache opens the metadata cache, creating parent directories
// as needed. Errors are non-fatal for the pipeline, scanning just gets
// slower without a cache.
func OpenLibraryCache(path string) (*library.Cache, error) {
	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return library.OpenCache(path)
}

// Close releases the metadata cache. Safe to call when no cache opened.
func (m *Manager) Close() error {
	if m.cache == nil {
		return nil
	}
	return m.cache.Close()
}

// Clips returns the clips accepted for download during Initialize.
func (m *Manager) Clips() []*model.Clip {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clips
}

// GetProgress returns current pipeline progress.
func (m *Manager) GetProgress() (downloaded, failed, skipped, total int32) {
	return atomic.LoadInt32(&m.downloadedFiles),
		atomic.LoadInt32(&m.failedFiles),
		atomic.LoadInt32(&m.skippedKnown),
		atomic.LoadInt32(&m.totalFiles)
}

// StartDownloads downloads every clip collected by Initialize.
//
// Clips are processed by a bounded worker pool. A failed clip is logged
// and counted, the batch continues. Only an expired token or context
// cancellation aborts the run.
func (m *Manager) StartDownloads(ctx context.Context) error {
	clips := m.Clips()
	if len(clips) == 0 {
		m.progress(ProgressEvent{Message: "Nothing to download", Level: LevelInfo})
		return nil
	}

	var downloaded []*library.Entry
	var downloadedMu sync.Mutex

	workers := m.settings.MaxConcurrentDownloads
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, clip := range clips {
		clip := clip // capture
		g.Go(func() error {
			entry, err := m.downloadClip(ctx, clip)
			if err != nil {
				if errors.Is(err, suno.ErrTokenExpired) || errors.Is(err, context.Canceled) {
					return err
				}
				atomic.AddInt32(&m.failedFiles, 1)
				m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", clip.Title, err), Level: LevelError})
				return nil // Continue with other clips
			}
			atomic.AddInt32(&m.downloadedFiles, 1)
			downloadedMu.Lock()
			downloaded = append(downloaded, entry)
			downloadedMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if m.settings.CreatePlaylist && len(downloaded) > 0 {
		m.writePlaylist(downloaded)
	}

	done, failed, _, total := m.GetProgress()
	if failed == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Successfully downloaded %d songs", done), Level: LevelSuccess})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Finished: %d of %d songs downloaded, %d failed", done, total, failed), Level: LevelWarning})
	}

	return nil
}

// downloadClip fetches one clip's audio, writes it to the target path and
// embeds metadata, lyrics and artwork.
func (m *Manager) downloadClip(ctx context.Context, clip *model.Clip) (*library.Entry, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// List views omit the prompt; refetch the detail before embedding.
	if m.settings.EmbedMetadata && clip.Prompt == "" && clip.Lyrics == "" {
		if detail, err := m.client.ClipDetail(ctx, clip.ID); err == nil {
			clip.Prompt = detail.Prompt
			if clip.Lyrics == "" {
				clip.Lyrics = detail.Lyrics
			}
			if clip.Tags == "" {
				clip.Tags = detail.Tags
			}
		} else if errors.Is(err, suno.ErrTokenExpired) {
			return nil, err
		}
	}

	audioURL, ext, err := m.resolveAudio(ctx, clip)
	if err != nil {
		return nil, err
	}

	dir := m.pathCfg.TargetDir(clip)
	if err := ioutils.EnsureDir(dir); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, m.pathCfg.FileName(clip, ext))
	path = ioutils.UniqueFileName(path)

	attempts := m.settings.DownloadMaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var downloadErr error
	for tries := 0; tries < attempts; tries++ {
		downloadErr = m.httpClient.DownloadFile(ctx, audioURL, path, nil)
		if downloadErr == nil {
			break
		}
		if errors.Is(downloadErr, context.Canceled) {
			return nil, downloadErr
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Retry %d/%d for %s", tries+1, attempts, clip.Title), Level: LevelWarning})
		m.waitForRetry(ctx, tries)
	}
	if downloadErr != nil {
		return nil, downloadErr
	}

	if m.settings.EmbedMetadata {
		artwork := m.fetchArtwork(ctx, clip)
		m.embedTags(path, ext, clip, artwork)
	}

	if m.settings.SaveLyricsSidecar {
		if lyrics := clip.LyricsText(); lyrics != "" {
			sidecar := strings.TrimSuffix(path, ext) + ".txt"
			if err := ioutils.WriteFile(sidecar, []byte(lyrics)); err != nil {
				m.progress(ProgressEvent{Message: fmt.Sprintf("Error writing lyrics for %s: %v", clip.Title, err), Level: LevelWarning})
			}
		}
	}

	m.mu.Lock()
	m.known[clip.ID] = path
	m.mu.Unlock()

	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", filepath.Base(path)), Level: LevelVerbose})

	return &library.Entry{
		Path:   path,
		ClipID: clip.ID,
		Title:  clip.Title,
		Artist: clip.DisplayName,
	}, nil
}

// resolveAudio picks the source URL and extension for a clip. When WAV is
// preferred, a conversion is requested and polled; a conversion timeout
// fails the clip for this run, other conversion errors fall back to MP3.
func (m *Manager) resolveAudio(ctx context.Context, clip *model.Clip) (string, string, error) {
	if !m.settings.PreferWAV {
		return clip.AudioURL, ".mp3", nil
	}

	if clip.WAVURL != "" {
		return clip.WAVURL, ".wav", nil
	}

	if err := m.client.RequestWAV(ctx, clip.ID); err != nil {
		if errors.Is(err, suno.ErrTokenExpired) {
			return "", "", err
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("WAV conversion request failed for %s, using MP3: %v", clip.Title, err), Level: LevelWarning})
		return clip.AudioURL, ".mp3", nil
	}

	wavURL, err := m.client.AwaitWAV(ctx, clip.ID)
	if err != nil {
		if errors.Is(err, suno.ErrConversionTimeout) || errors.Is(err, suno.ErrTokenExpired) {
			return "", "", err
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("WAV conversion failed for %s, using MP3: %v", clip.Title, err), Level: LevelWarning})
		return clip.AudioURL, ".mp3", nil
	}

	return wavURL, ".wav", nil
}

// fetchArtwork downloads and prepares the cover image for embedding.
// Artwork failures are logged and downgrade the clip to untagged artwork.
func (m *Manager) fetchArtwork(ctx context.Context, clip *model.Clip) []byte {
	if !m.settings.EmbedArtwork || clip.ImageURL == "" {
		return nil
	}

	var artwork []byte
	var err error
	for tries := 0; tries < m.settings.DownloadMaxRetries; tries++ {
		artwork, err = m.httpClient.DownloadBytes(ctx, clip.ImageURL)
		if err == nil {
			break
		}
		m.waitForRetry(ctx, tries)
	}
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading artwork for %s: %v", clip.Title, err), Level: LevelWarning})
		return nil
	}

	if m.settings.ArtworkResize {
		if resized, err := m.imageService.ResizeImage(artwork, m.settings.ArtworkMaxSize, m.settings.ArtworkMaxSize); err == nil {
			artwork = resized
		}
	}
	if converted, err := m.imageService.ConvertToJPEG(artwork); err == nil {
		artwork = converted
	}

	return artwork
}

// embedTags writes clip metadata into the downloaded file. Tagging
// failures are logged, the file itself is kept.
func (m *Manager) embedTags(path, ext string, clip *model.Clip, artwork []byte) {
	var err error
	switch ext {
	case ".wav":
		err = m.tagger.SaveWAVTags(path, clip, artwork)
	default:
		err = m.tagger.SaveTags(path, clip, artwork)
	}
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error tagging %s: %v", clip.Title, err), Level: LevelWarning})
	}
}

// writePlaylist generates a playlist over this run's downloads in the
// output directory.
func (m *Manager) writePlaylist(entries []*library.Entry) {
	creator := library.NewPlaylistCreator(m.settings.ToPlaylistFormat(), m.settings.M3UExtended)
	creator.SetBaseDir(m.settings.Directory)

	name := "suno " + time.Now().Format("2006-01-02")
	content := creator.CreatePlaylist(name, entries)
	path := filepath.Join(m.settings.Directory, model.SanitizeFileName(name)+m.settings.ToPlaylistFormat().Ext())

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		return
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist %s", filepath.Base(path)), Level: LevelSuccess})
}

func (m *Manager) waitForRetry(ctx context.Context, tries int) {
	cooldown := m.settings.DownloadRetryCooldown * math.Pow(m.settings.DownloadRetryExponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
