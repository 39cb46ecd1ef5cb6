// Package tui provides a Bubble Tea terminal user interface for
// suno-downloader.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwinther/suno-downloader/internal/config"
	"github.com/mwinther/suno-downloader/internal/download"
	"github.com/mwinther/suno-downloader/internal/library"
	"github.com/mwinther/suno-downloader/internal/suno"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	songStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateScanning
	StateDownloading
	StateComplete
	StateError
	StateLibrary
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	err       error

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	// Download manager reference
	manager *download.Manager

	// Progress counters
	totalFiles      int32
	downloadedFiles int32
	failedFiles     int32
	skippedFiles    int32
	queued          int

	// Library browser
	entries []*library.Entry

	// Options
	preferWAV bool
	likedOnly bool
	stemsOnly bool
	playlist  bool
	verbose   bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel() Model {
	settings, err := config.Load(config.DefaultPath())
	if err != nil {
		settings = config.DefaultSettings()
	}

	ti := textinput.New()
	ti.Placeholder = "Paste your bearer token"
	ti.EchoMode = textinput.EchoPassword
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60
	if settings.Token != "" {
		ti.SetValue(settings.Token)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logs:      make([]LogEntry, 0),
		preferWAV: settings.PreferWAV,
		likedOnly: settings.LikedOnly,
		stemsOnly: settings.StemsOnly,
		playlist:  settings.CreatePlaylist,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent when download progress updates.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// ScanDoneMsg is sent when the listing fetch completes.
	ScanDoneMsg struct {
		Queued  int
		Manager *download.Manager
		Err     error
	}

	// DownloadDoneMsg is sent when all downloads complete.
	DownloadDoneMsg struct {
		Downloaded int32
		Failed     int32
		Skipped    int32
		Total      int32
		Err        error
	}

	// LibraryMsg carries the local index for the library view.
	LibraryMsg struct {
		Entries []*library.Entry
		Err     error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateLibrary {
				m.state = StateInput
				m.textInput.Focus()
				return m, nil
			}
			if m.state == StateDownloading || m.state == StateScanning {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateInput && m.textInput.Value() != "" {
				m.state = StateScanning
				return m, tea.Batch(m.startScan(), m.spinner.Tick)
			}

		case "w":
			if m.state == StateInput {
				m.preferWAV = !m.preferWAV
			}

		case "l":
			if m.state == StateInput {
				m.likedOnly = !m.likedOnly
			}

		case "s":
			if m.state == StateInput {
				m.stemsOnly = !m.stemsOnly
			}

		case "p":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}

		case "v":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "b":
			if m.state == StateInput {
				m.state = StateLibrary
				return m, tea.Batch(m.loadLibrary(), m.spinner.Tick)
			}

		case "q":
			if m.state == StateComplete || m.state == StateError || m.state == StateLibrary {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new run
				m.state = StateInput
				m.logs = nil
				m.err = nil
				m.downloadedFiles = 0
				m.failedFiles = 0
				m.skippedFiles = 0
				m.totalFiles = 0
				m.queued = 0
				m.manager = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.Focus()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			return m, nil
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		// Keep only last 10 logs
		if len(m.logs) > 10 {
			m.logs = m.logs[len(m.logs)-10:]
		}

	case ScanDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.queued = msg.Queued
			m.manager = msg.Manager
			m.state = StateDownloading
			cmds = append(cmds, m.startDownload(), m.tickProgress())
		}

	case DownloadDoneMsg:
		m.downloadedFiles = msg.Downloaded
		m.failedFiles = msg.Failed
		m.skippedFiles = msg.Skipped
		m.totalFiles = msg.Total
		if m.manager != nil {
			m.manager.Close()
		}
		if msg.Err != nil && m.ctx.Err() == nil {
			m.state = StateError
			m.err = msg.Err
		} else if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else {
			m.state = StateComplete
		}

	case LibraryMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.entries = msg.Entries
		}

	case TickMsg:
		// Update progress from manager
		if m.manager != nil && m.state == StateDownloading {
			downloaded, failed, skipped, total := m.manager.GetProgress()
			m.downloadedFiles = downloaded
			m.failedFiles = failed
			m.skippedFiles = skipped
			m.totalFiles = total

			var percent float64
			if total > 0 {
				percent = float64(downloaded+failed) / float64(total)
			}
			progressCmd := m.progress.SetPercent(percent)
			cmds = append(cmds, progressCmd, m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("♪ Suno Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Bulk download your generated songs"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateScanning:
		b.WriteString(m.viewScanning())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	case StateLibrary:
		b.WriteString(m.viewLibrary())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter your token:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	check := func(on bool) string {
		if on {
			return "[×]"
		}
		return "[ ]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Prefer WAV (w)\n", check(m.preferWAV)))
	b.WriteString(fmt.Sprintf("  %s Liked only (l)\n", check(m.likedOnly)))
	b.WriteString(fmt.Sprintf("  %s Stems only (s)\n", check(m.stemsOnly)))
	b.WriteString(fmt.Sprintf("  %s Create playlist (p)\n", check(m.playlist)))
	b.WriteString(fmt.Sprintf("  %s Verbose/debug output (v)\n", check(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download path: %s", m.settings.Directory)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewScanning() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Scanning library and fetching song list..."))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	if m.queued > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Downloading %d new songs", m.queued)))
		b.WriteString("\n\n")
	}

	var percent float64
	if m.totalFiles > 0 {
		percent = float64(m.downloadedFiles+m.failedFiles) / float64(m.totalFiles)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Songs: %d/%d | Failed: %d | Already present: %d",
		m.downloadedFiles,
		m.totalFiles,
		m.failedFiles,
		m.skippedFiles,
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	box := boxStyle.Render(fmt.Sprintf(
		"✨ Download Complete!\n\n"+
			"Downloaded: %d\n"+
			"Failed: %d\n"+
			"Already present: %d",
		m.downloadedFiles,
		m.failedFiles,
		m.skippedFiles,
	))
	b.WriteString(box)

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) viewLibrary() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Library: %s", m.settings.Directory)))
	b.WriteString("\n\n")

	if m.entries == nil {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(dimStyle.Render("Scanning..."))
		b.WriteString("\n")
		return b.String()
	}

	limit := m.height - 8
	if limit < 5 {
		limit = 5
	}

	for i, entry := range m.entries {
		if i >= limit {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  ... and %d more", len(m.entries)-limit)))
			b.WriteString("\n")
			break
		}
		lyrics := " "
		if entry.HasLyrics {
			lyrics = "♪"
		}
		liked := " "
		if entry.UserTags.Liked {
			liked = "♥"
		}
		starred := " "
		if entry.UserTags.Starred {
			starred = "★"
		}
		line := fmt.Sprintf("  %s%s%s %-40s %5.0fs  %s",
			lyrics, liked, starred, entry.Title, entry.Duration, filepath.Base(entry.Path))
		b.WriteString(songStyle.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("%d songs", len(m.entries))))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, entry := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch entry.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + entry.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • w: wav • l: liked • s: stems • p: playlist • v: verbose • b: library • esc: quit"
	case StateScanning, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new run • q: quit"
	case StateLibrary:
		return "esc: back • q: quit"
	}
	return ""
}

// runSettings applies the toggled options on top of the loaded settings.
func (m *Model) runSettings() *config.Settings {
	settings := *m.settings
	settings.Token = m.textInput.Value()
	settings.PreferWAV = m.preferWAV
	settings.LikedOnly = m.likedOnly
	settings.StemsOnly = m.stemsOnly
	settings.CreatePlaylist = m.playlist
	if settings.CachePath == "" && settings.Directory != "" {
		settings.CachePath = filepath.Join(settings.Directory, ".suno-cache.db")
	}
	return &settings
}

// startScan scans the library and fetches the song listing.
func (m *Model) startScan() tea.Cmd {
	return func() tea.Msg {
		settings := m.runSettings()

		// Progress is polled via TickMsg, events are not forwarded from
		// the worker goroutines.
		manager := download.NewManager(settings, nil)

		source := suno.Source{
			Kind:  suno.SourceLibrary,
			Liked: settings.LikedOnly,
		}

		if err := manager.Initialize(m.ctx, source); err != nil {
			return ScanDoneMsg{Err: err}
		}

		return ScanDoneMsg{
			Queued:  len(manager.Clips()),
			Manager: manager,
		}
	}
}

// startDownload starts the actual download in background.
func (m *Model) startDownload() tea.Cmd {
	return func() tea.Msg {
		if m.manager == nil {
			return DownloadDoneMsg{Err: fmt.Errorf("no manager")}
		}

		err := m.manager.StartDownloads(m.ctx)
		downloaded, failed, skipped, total := m.manager.GetProgress()

		return DownloadDoneMsg{
			Downloaded: downloaded,
			Failed:     failed,
			Skipped:    skipped,
			Total:      total,
			Err:        err,
		}
	}
}

// loadLibrary scans the local index for the library view.
func (m *Model) loadLibrary() tea.Cmd {
	return func() tea.Msg {
		cachePath := m.settings.CachePath
		if cachePath == "" && m.settings.Directory != "" {
			cachePath = filepath.Join(m.settings.Directory, ".suno-cache.db")
		}

		var cache *library.Cache
		if c, err := download.OpenLibraryCache(cachePath); err == nil {
			cache = c
			defer c.Close()
		}

		lib := library.New(m.settings.Directory, cache)
		entries, err := lib.Entries()
		if err != nil {
			return LibraryMsg{Err: err}
		}
		return LibraryMsg{Entries: entries}
	}
}

// Run starts the TUI application.
func Run() error {
	p := tea.NewProgram(NewModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
