package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/mwinther/suno-downloader/internal/config"
	"github.com/mwinther/suno-downloader/internal/download"
	httpx "github.com/mwinther/suno-downloader/internal/http"
	"github.com/mwinther/suno-downloader/internal/library"
	"github.com/mwinther/suno-downloader/internal/suno"
)

// Runner holds the dependencies for CLI commands and provides a method
// per command action.
type Runner struct {
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Runner{logger: opts.Logger, output: opts.Output}
}

func (r *Runner) writePlainln(format string, args ...any) {
	fmt.Fprintf(r.output, format+"\n", args...)
}

// loadSettings reads the configuration file and applies command line
// overrides.
func (r *Runner) loadSettings(cmd *cli.Command) (*config.Settings, error) {
	path := cmd.String("config")
	if path == "" {
		path = config.DefaultPath()
	}

	settings, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if token := cmd.String("token"); token != "" {
		settings.Token = token
	}
	if output := cmd.String("output"); output != "" {
		settings.Directory = output
	}
	if cmd.Bool("wav") {
		settings.PreferWAV = true
	}
	if cmd.Bool("liked") {
		settings.LikedOnly = true
	}
	if cmd.Bool("stems-only") {
		settings.StemsOnly = true
	}
	if cmd.Bool("hide-stems") {
		settings.HideStems = true
	}
	if cmd.Bool("include-trashed") {
		settings.IncludeTrashed = true
	}
	if search := cmd.String("search"); search != "" {
		settings.Search = search
	}
	if page := cmd.Int("start-page"); page > 0 {
		settings.StartPage = page
	}
	if pages := cmd.Int("max-pages"); pages > 0 {
		settings.MaxPages = pages
	}
	if cmd.Bool("no-smart-resume") {
		settings.SmartResume = false
	}
	if n := cmd.Int("concurrency"); n > 0 {
		settings.MaxConcurrentDownloads = n
	}
	if cmd.Bool("playlist") {
		settings.CreatePlaylist = true
	}
	if settings.CachePath == "" && settings.Directory != "" {
		settings.CachePath = filepath.Join(settings.Directory, ".suno-cache.db")
	}

	if settings.Token == "" {
		return nil, fmt.Errorf("no token configured; pass --token, set SUNO_TOKEN or add it to %s", path)
	}

	return settings, nil
}

// source builds the listing source from command line flags.
func (r *Runner) source(cmd *cli.Command, settings *config.Settings) suno.Source {
	src := suno.Source{Kind: suno.SourceLibrary}

	switch {
	case cmd.String("project") != "":
		src = suno.Source{Kind: suno.SourceProject, ID: cmd.String("project")}
	case cmd.String("playlist-id") != "":
		src = suno.Source{Kind: suno.SourcePlaylist, ID: cmd.String("playlist-id")}
	case cmd.Bool("public"):
		src = suno.Source{Kind: suno.SourcePublic}
	}

	src.Liked = settings.LikedOnly
	src.Trashed = settings.IncludeTrashed
	return src
}

// newManager builds a download Manager that forwards progress events to
// the logger.
func (r *Runner) newManager(settings *config.Settings, verbose bool) *download.Manager {
	return download.NewManager(settings, func(event download.ProgressEvent) {
		switch event.Level {
		case download.LevelVerbose:
			if verbose {
				r.logger.Info(event.Message)
			} else {
				r.logger.Debug(event.Message)
			}
		case download.LevelWarning:
			r.logger.Warn(event.Message)
		case download.LevelError:
			r.logger.Error(event.Message)
		default:
			r.logger.Info(event.Message)
		}
	})
}

// Download runs the full fetch and download pipeline.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	settings, err := r.loadSettings(cmd)
	if err != nil {
		return err
	}

	manager := r.newManager(settings, cmd.Bool("verbose"))
	defer manager.Close()

	if err := manager.Initialize(ctx, r.source(cmd, settings)); err != nil {
		return fmt.Errorf("fetch listing: %w", err)
	}

	if err := manager.StartDownloads(ctx); err != nil {
		return fmt.Errorf("download: %w", err)
	}

	done, failed, skipped, total := manager.GetProgress()
	r.writePlainln("Downloaded %d/%d songs (%d already present, %d failed)", done, total, skipped, failed)
	return nil
}

// Scan lists what a download run would fetch without downloading.
func (r *Runner) Scan(ctx context.Context, cmd *cli.Command) error {
	settings, err := r.loadSettings(cmd)
	if err != nil {
		return err
	}

	manager := r.newManager(settings, cmd.Bool("verbose"))
	defer manager.Close()

	if err := manager.Initialize(ctx, r.source(cmd, settings)); err != nil {
		return fmt.Errorf("fetch listing: %w", err)
	}

	clips := manager.Clips()
	for _, clip := range clips {
		kind := ""
		if clip.IsStem() {
			kind = " [stem]"
		}
		r.writePlainln("%s  %s%s", clip.ID, clip.Title, kind)
	}
	r.writePlainln("%d songs would be downloaded", len(clips))
	return nil
}

// Projects lists the account's workspaces.
func (r *Runner) Projects(ctx context.Context, cmd *cli.Command) error {
	settings, err := r.loadSettings(cmd)
	if err != nil {
		return err
	}

	client := suno.NewClient(httpx.NewClient(settings.Token), settings.BaseURL)
	projects, err := client.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("list workspaces: %w", err)
	}

	for _, project := range projects {
		r.writePlainln("%s  %s", project.ID, project.Name)
	}
	r.writePlainln("%d workspaces", len(projects))
	return nil
}

// Playlists lists the account's playlists.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	settings, err := r.loadSettings(cmd)
	if err != nil {
		return err
	}

	client := suno.NewClient(httpx.NewClient(settings.Token), settings.BaseURL)

	page := 1
	total := 0
	for {
		playlists, err := client.ListPlaylists(ctx, page)
		if err != nil {
			return fmt.Errorf("list playlists: %w", err)
		}
		if len(playlists) == 0 {
			break
		}
		for _, playlist := range playlists {
			r.writePlainln("%s  %s (%d songs)", playlist.ID, playlist.Name, playlist.NumClips)
		}
		total += len(playlists)
		page++
	}
	r.writePlainln("%d playlists", total)
	return nil
}

// openLibrary loads settings and opens the local library with its
// metadata cache. A cache that fails to open degrades to cache-less
// scanning.
func (r *Runner) openLibrary(cmd *cli.Command) (*config.Settings, *library.Library, func(), error) {
	path := cmd.String("config")
	if path == "" {
		path = config.DefaultPath()
	}
	settings, err := config.Load(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if output := cmd.String("output"); output != "" {
		settings.Directory = output
	}

	cachePath := settings.CachePath
	if cachePath == "" {
		cachePath = filepath.Join(settings.Directory, ".suno-cache.db")
	}

	closeCache := func() {}
	var cache *library.Cache
	if c, err := download.OpenLibraryCache(cachePath); err == nil {
		cache = c
		closeCache = func() { c.Close() }
	} else {
		r.logger.Warn("cache unavailable, scanning without it", "path", cachePath, "err", err)
	}

	return settings, library.New(settings.Directory, cache), closeCache, nil
}

// entryFlags renders the per-entry marker column for library listings.
func entryFlags(entry *library.Entry) string {
	flags := []byte("    ")
	if entry.HasLyrics {
		flags[0] = 'L'
	}
	if entry.UserTags.Liked {
		flags[1] = '+'
	}
	if entry.UserTags.Starred {
		flags[2] = '*'
	}
	if entry.UserTags.Trashed {
		flags[3] = 'T'
	}
	return string(flags)
}

// Library prints the local index.
func (r *Runner) Library(ctx context.Context, cmd *cli.Command) error {
	settings, lib, closeCache, err := r.openLibrary(cmd)
	if err != nil {
		return err
	}
	defer closeCache()

	entries, err := lib.Entries()
	if err != nil {
		return fmt.Errorf("scan library: %w", err)
	}

	for _, entry := range entries {
		r.writePlainln("%s %6.0fs  %-40s %s", entryFlags(entry), entry.Duration, entry.Title, entry.Path)
	}
	r.writePlainln("%d songs in %s", len(entries), settings.Directory)
	return nil
}

// Lyrics prints a file's lyrics, or replaces them from a text file.
func (r *Runner) Lyrics(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: lyrics <audio-file> [--from-file lyrics.txt]")
	}

	lib := library.New(filepath.Dir(path), nil)
	entry := &library.Entry{Path: path}

	if from := cmd.String("from-file"); from != "" {
		data, err := os.ReadFile(from)
		if err != nil {
			return fmt.Errorf("read lyrics file: %w", err)
		}
		if err := lib.SaveLyrics(entry, string(data)); err != nil {
			return fmt.Errorf("save lyrics: %w", err)
		}
		r.writePlainln("Lyrics written to %s", path)
		return nil
	}

	text, err := lib.Lyrics(entry)
	if err != nil {
		return fmt.Errorf("read lyrics: %w", err)
	}
	if text == "" {
		r.writePlainln("No lyrics for %s", path)
		return nil
	}
	fmt.Fprintln(r.output, text)
	return nil
}

// Tag applies local liked/starred/trashed flags to a downloaded file.
func (r *Runner) Tag(ctx context.Context, cmd *cli.Command) error {
	target := cmd.Args().First()
	if target == "" {
		return fmt.Errorf("usage: tag <audio-file> [--liked] [--starred] [--trashed] [--clear]")
	}

	_, lib, closeCache, err := r.openLibrary(cmd)
	if err != nil {
		return err
	}
	defer closeCache()

	entries, err := lib.Entries()
	if err != nil {
		return fmt.Errorf("scan library: %w", err)
	}

	absTarget, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	var entry *library.Entry
	for _, e := range entries {
		abs, err := filepath.Abs(e.Path)
		if err == nil && abs == absTarget {
			entry = e
			break
		}
	}
	if entry == nil {
		return fmt.Errorf("%s is not in the library", target)
	}

	tags := entry.UserTags
	if cmd.Bool("clear") {
		tags = library.UserTags{}
	}
	if cmd.Bool("liked") {
		tags.Liked = true
	}
	if cmd.Bool("starred") {
		tags.Starred = true
	}
	if cmd.Bool("trashed") {
		tags.Trashed = true
	}

	if err := lib.SetUserTags(entry, tags); err != nil {
		return fmt.Errorf("store tags: %w", err)
	}
	r.writePlainln("%s %s", entryFlags(entry), entry.Title)
	return nil
}

func downloadFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "Bearer token for the service",
			Sources: cli.EnvVars("SUNO_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output directory (overrides config)",
		},
		&cli.BoolFlag{Name: "wav", Usage: "Prefer WAV downloads (requests conversion)"},
		&cli.BoolFlag{Name: "liked", Usage: "Only liked songs"},
		&cli.BoolFlag{Name: "stems-only", Usage: "Only stems"},
		&cli.BoolFlag{Name: "hide-stems", Usage: "Skip stems"},
		&cli.BoolFlag{Name: "include-trashed", Usage: "Include trashed songs"},
		&cli.BoolFlag{Name: "public", Usage: "Use the public feed instead of the library"},
		&cli.StringFlag{Name: "search", Usage: "Only songs matching this text"},
		&cli.StringFlag{Name: "project", Usage: "Download one workspace by ID"},
		&cli.StringFlag{Name: "playlist-id", Usage: "Download one playlist by ID"},
		&cli.IntFlag{Name: "start-page", Usage: "First page to fetch"},
		&cli.IntFlag{Name: "max-pages", Usage: "Never request more than this many pages"},
		&cli.BoolFlag{Name: "no-smart-resume", Usage: "Always walk all pages"},
		&cli.IntFlag{Name: "concurrency", Usage: "Parallel downloads"},
		&cli.BoolFlag{Name: "playlist", Usage: "Write a playlist of this run's downloads"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Show verbose output"},
	}
}

// register builds the command tree.
func (r *Runner) register() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "download",
			Usage:  "Fetch the song listing and download new songs",
			Flags:  downloadFlags(),
			Action: r.Download,
		},
		{
			Name:   "scan",
			Usage:  "List songs a download run would fetch, without downloading",
			Flags:  downloadFlags(),
			Action: r.Scan,
		},
		{
			Name:   "projects",
			Usage:  "List workspaces",
			Flags:  downloadFlags(),
			Action: r.Projects,
		},
		{
			Name:   "playlists",
			Usage:  "List playlists",
			Flags:  downloadFlags(),
			Action: r.Playlists,
		},
		{
			Name:   "library",
			Usage:  "Print the local song index",
			Flags:  libraryFlags(),
			Action: r.Library,
		},
		{
			Name:  "lyrics",
			Usage: "Print a song's lyrics, or replace them from a text file",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "from-file", Usage: "Write lyrics from this text file into the song"},
			},
			Action: r.Lyrics,
		},
		{
			Name:  "tag",
			Usage: "Apply local liked/starred/trashed flags to a song",
			Flags: append(libraryFlags(),
				&cli.BoolFlag{Name: "liked", Usage: "Mark the song liked"},
				&cli.BoolFlag{Name: "starred", Usage: "Mark the song starred"},
				&cli.BoolFlag{Name: "trashed", Usage: "Mark the song trashed"},
				&cli.BoolFlag{Name: "clear", Usage: "Drop existing flags first"},
			),
			Action: r.Tag,
		},
	}
}

func libraryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Library directory (overrides config)",
		},
	}
}
