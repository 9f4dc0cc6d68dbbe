// Package tui provides a Bubble Tea terminal user interface for audiobook-downloader.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/audiobook-downloader/internal/audio"
	"github.com/handiism/audiobook-downloader/internal/config"
	"github.com/handiism/audiobook-downloader/internal/download"
	"github.com/handiism/audiobook-downloader/internal/model"
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

	bookStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

const maxLogLines = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateRunning
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	urlInput  textinput.Model
	nameInput textinput.Model
	focus     int
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager
	events  chan download.ProgressEvent
	book    string
	output  string
	empty   bool

	stage           download.Stage
	totalFiles      int32
	downloadedFiles int32
	totalBytes      int64
	receivedBytes   int64

	// Options
	playlist bool
	keep     bool
	concat   bool
	verbose  bool

	width  int
	height int
}

// NewModel creates a new TUI model. A nil settings means DefaultSettings().
func NewModel(settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	urlInput := textinput.New()
	urlInput.Placeholder = "https://host/path/Book"
	urlInput.Focus()
	urlInput.CharLimit = 500
	urlInput.Width = 60

	nameInput := textinput.New()
	nameInput.Placeholder = "derived from the URL"
	nameInput.CharLimit = 200
	nameInput.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		urlInput:  urlInput,
		nameInput: nameInput,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
		playlist:  settings.CreatePlaylist,
		keep:      settings.KeepTracks,
		concat:    strings.EqualFold(settings.Merger, audio.MergerConcat),
		verbose:   settings.Verbose,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one event emitted by the manager.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// StartedMsg is sent once the manager for a run exists.
	StartedMsg struct {
		Manager *download.Manager
		Book    *model.Audiobook
		Events  chan download.ProgressEvent
	}

	// RunDoneMsg is sent when the pipeline finishes.
	RunDoneMsg struct {
		Result *download.Result
		Err    error
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
		m.progress.Width = min(max(msg.Width-20, 20), 80)
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
			if m.state == StateRunning {
				m.cancel()
			}
			return m, nil

		case "tab", "shift+tab":
			if m.state == StateInput {
				m.toggleFocus()
				return m, nil
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.urlInput.Value()) != "" {
				m.state = StateRunning
				m.stage = download.StageDiscovering
				return m, tea.Batch(m.start(), m.spinner.Tick)
			}
			return m, nil

		case "ctrl+p":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}
			return m, nil

		case "ctrl+t":
			if m.state == StateInput {
				m.keep = !m.keep
			}
			return m, nil

		case "ctrl+g":
			if m.state == StateInput {
				m.concat = !m.concat
			}
			return m, nil

		case "ctrl+o":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}
			return m, nil

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.reset()
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case StartedMsg:
		m.manager = msg.Manager
		m.book = msg.Book.Name
		m.events = msg.Events
		cmds = append(cmds, m.run(msg.Manager, msg.Book, msg.Events), waitForEvent(m.events), m.tickProgress())

	case ProgressMsg:
		cmds = append(cmds, waitForEvent(m.events))
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}

	case RunDoneMsg:
		m.refreshProgress()
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
			if msg.Result != nil {
				m.empty = msg.Result.Empty
				m.output = msg.Result.OutputPath
			}
		}

	case TickMsg:
		if m.manager != nil && m.state == StateRunning {
			m.refreshProgress()
			var percent float64
			if m.totalFiles > 0 {
				percent = float64(m.downloadedFiles) / float64(m.totalFiles)
			}
			cmds = append(cmds, m.progress.SetPercent(percent))
			if !m.stage.Finished() {
				cmds = append(cmds, m.tickProgress())
			}
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		if m.focus == 0 {
			m.urlInput, cmd = m.urlInput.Update(msg)
		} else {
			m.nameInput, cmd = m.nameInput.Update(msg)
		}
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) toggleFocus() {
	if m.focus == 0 {
		m.focus = 1
		m.urlInput.Blur()
		m.nameInput.Focus()
	} else {
		m.focus = 0
		m.nameInput.Blur()
		m.urlInput.Focus()
	}
}

func (m *Model) refreshProgress() {
	if m.manager == nil {
		return
	}
	m.stage = m.manager.Stage()
	m.receivedBytes, m.totalBytes, m.downloadedFiles, m.totalFiles = m.manager.GetProgress()
}

func (m *Model) reset() {
	m.state = StateInput
	m.logs = nil
	m.err = nil
	m.manager = nil
	m.events = nil
	m.book = ""
	m.output = ""
	m.empty = false
	m.stage = download.StageIdle
	m.downloadedFiles = 0
	m.totalFiles = 0
	m.receivedBytes = 0
	m.totalBytes = 0
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.urlInput.SetValue("")
	m.nameInput.SetValue("")
	m.focus = 1
	m.toggleFocus()
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent reads the next manager event. It yields nil once the run
// has closed the channel.
func waitForEvent(events <-chan download.ProgressEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🎧 Audiobook Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download numbered audio tracks and merge them into one file"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateRunning:
		b.WriteString(m.viewRunning())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Base URL:"))
	b.WriteString("\n")
	b.WriteString(m.urlInput.View())
	b.WriteString("\n\n")
	b.WriteString(subtitleStyle.Render("Name (optional):"))
	b.WriteString("\n")
	b.WriteString(m.nameInput.View())
	b.WriteString("\n\n")

	merger := audio.MergerFFmpeg
	if m.concat {
		merger = audio.MergerConcat
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Create playlist (ctrl+p)\n", checkbox(m.playlist)))
	b.WriteString(fmt.Sprintf("  %s Keep track files (ctrl+t)\n", checkbox(m.keep)))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+o)\n", checkbox(m.verbose)))
	b.WriteString(fmt.Sprintf("  Merger: %s (ctrl+g)\n", merger))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Downloads: %s  Output: %s", m.settings.DownloadDir, m.settings.OutputDir)))
	b.WriteString("\n")

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewRunning() string {
	var b strings.Builder

	if m.book != "" {
		b.WriteString(bookStyle.Render("♪ " + m.book))
		b.WriteString("\n\n")
	}

	if m.stage == download.StageDownloading {
		var percent float64
		if m.totalFiles > 0 {
			percent = float64(m.downloadedFiles) / float64(m.totalFiles)
		}
		b.WriteString(m.progress.ViewAs(percent))
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(fmt.Sprintf(
			"Files: %d/%d | Downloaded: %.2f MB",
			m.downloadedFiles,
			m.totalFiles,
			float64(m.receivedBytes)/1024/1024,
		)))
	} else {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render(stageTitle(m.stage)))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func stageTitle(s download.Stage) string {
	switch s {
	case download.StageMerging:
		return "Merging tracks..."
	case download.StageTagging:
		return "Writing tags..."
	case download.StageCleaning:
		return "Deleting temporary files..."
	default:
		return "Discovering tracks..."
	}
}

func (m Model) viewComplete() string {
	if m.empty {
		return warningStyle.Render("No audio files found.") + "\n"
	}

	return boxStyle.Render(fmt.Sprintf(
		"✨ Download Complete!\n\n"+
			"Output: %s\n"+
			"Tracks: %d\n"+
			"Size: %.2f MB",
		m.output,
		m.downloadedFiles,
		float64(m.receivedBytes)/1024/1024,
	))
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
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
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • tab: switch field • esc: quit"
	case StateRunning:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

// runSettings copies the base settings and applies the toggled options.
func (m Model) runSettings() *config.Settings {
	settings := *m.settings
	settings.CreatePlaylist = m.playlist
	settings.KeepTracks = m.keep
	settings.Verbose = m.verbose
	if m.concat {
		settings.Merger = audio.MergerConcat
	} else {
		settings.Merger = audio.MergerFFmpeg
	}
	return &settings
}

// start creates the manager for a run. Events are forwarded through a
// channel that is closed when the run ends.
func (m Model) start() tea.Cmd {
	settings := m.runSettings()
	baseURL := strings.TrimSpace(m.urlInput.Value())
	name := strings.TrimSpace(m.nameInput.Value())
	ctx := m.ctx

	return func() tea.Msg {
		events := make(chan download.ProgressEvent, 64)
		manager, err := download.NewManager(settings, func(event download.ProgressEvent) {
			select {
			case events <- event:
			case <-ctx.Done():
			}
		})
		if err != nil {
			return RunDoneMsg{Err: err}
		}

		return StartedMsg{
			Manager: manager,
			Book:    manager.NewAudiobook(baseURL, name),
			Events:  events,
		}
	}
}

// run executes the pipeline in the background.
func (m Model) run(manager *download.Manager, book *model.Audiobook, events chan download.ProgressEvent) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		result, err := manager.Run(ctx, book)
		close(events)
		return RunDoneMsg{Result: result, Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
