package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/dropzone/internal/droptarget"
	"github.com/desertthunder/dropzone/internal/models"
	"github.com/desertthunder/dropzone/internal/tasks"
)

const (
	dropMessage   = "Drop a file onto this window to upload it"
	minTerminal   = 3
	defaultWidth  = 80
	defaultHeight = 24
)

// Dropper runs the pipeline for the paths of one drop gesture.
type Dropper interface {
	Drop(ctx context.Context, events chan<- tasks.Event, paths []string) error
}

// ModelOpts configures a [Model].
type ModelOpts struct {
	Dropper Dropper
	Server  string      // Shown in the title
	Paths   []string    // Dropped on startup when non-empty
	Logger  *log.Logger // Must not write to the terminal the program renders to
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	dropper Dropper
	server  string
	initial []string
	logger  *log.Logger

	screen   *Screen
	viewport viewport.Model
	progress progress.Model
	help     help.Model
	keys     keyMap
	width    int
	height   int

	run     int
	cancel  context.CancelFunc
	events  chan tasks.Event
	done    chan error
	lastErr error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	m := &Model{
		ctx:      ctx,
		dropper:  opts.Dropper,
		server:   opts.Server,
		initial:  opts.Paths,
		logger:   logger.WithPrefix("ui"),
		screen:   NewScreen(),
		viewport: viewport.New(defaultWidth, minTerminal),
		progress: progress.New(progress.WithDefaultGradient()),
		help:     help.New(),
		keys:     newKeyMap(),
		width:    defaultWidth,
		height:   defaultHeight,
	}
	m.layout()
	return m
}

// Screen exposes the current display state.
func (m *Model) Screen() *Screen { return m.screen }

// Err returns the error of the most recent finished run.
func (m *Model) Err() error { return m.lastErr }

// Init drops the startup paths, if any.
func (m *Model) Init() tea.Cmd {
	if len(m.initial) == 0 {
		return nil
	}
	return m.startDrop(m.initial)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.FocusMsg:
		m.apply(tasks.DragOverEvent())
		return m, nil

	case tea.BlurMsg:
		m.apply(tasks.DragLeaveEvent())
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Paste {
		paths := droptarget.ParsePayload(string(msg.Runes))
		m.logger.Debug("paste received", "paths", len(paths))
		return m, m.startDrop(paths)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		m.stop()
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgPipelineEvent:
		data := msg.data.(runEvent)
		if data.run != m.run {
			return m, nil
		}
		m.apply(data.event)
		return m, m.waitForEvent(data.run, m.events, m.done)

	case MsgRunFinished:
		data := msg.data.(runResult)
		if data.run != m.run {
			return m, nil
		}
		m.lastErr = data.err
		m.events = nil
		m.done = nil
		if data.err != nil {
			m.logger.Debug("run finished with error", "error", data.err)
		}
		return m, nil
	}
	return m, nil
}

// apply forwards ev to the screen and syncs the viewport with the transcript.
func (m *Model) apply(ev tasks.Event) {
	m.screen.Apply(ev)

	switch ev.Kind {
	case tasks.Drop, tasks.StreamClosed:
		m.layout()
	case tasks.UploadProgress, tasks.UploadFailed:
		m.viewport.SetContent(m.screen.Transcript())
	case tasks.LogLine:
		m.viewport.SetContent(m.screen.Transcript())
		m.viewport.GotoBottom()
	}
}

// startDrop cancels the run in flight, if any, and starts the pipeline for paths.
func (m *Model) startDrop(paths []string) tea.Cmd {
	if m.dropper == nil {
		return nil
	}
	m.stop()

	ctx, cancel := context.WithCancel(m.ctx)
	m.run++
	m.cancel = cancel
	m.events = make(chan tasks.Event)
	m.done = make(chan error, 1)

	go func(events chan tasks.Event, done chan error) {
		err := m.dropper.Drop(ctx, events, paths)
		done <- err
		close(events)
	}(m.events, m.done)

	return m.waitForEvent(m.run, m.events, m.done)
}

func (m *Model) stop() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) waitForEvent(run int, events <-chan tasks.Event, done <-chan error) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return runFinishedMsg(run, <-done)
		}
		return pipelineEventMsg(run, ev)
	}
}

// layout sizes the terminal area: half the free rows while active, all of them once expanded.
func (m *Model) layout() {
	m.progress.Width = max(m.width-4, 10)
	m.viewport.Width = max(m.width-4, 10)

	free := m.height - lipgloss.Height(m.renderHeader()) - lipgloss.Height(m.renderFooter()) - 2
	if m.screen.MessageVisible {
		free -= lipgloss.Height(m.renderMessage())
	}
	if !m.screen.TerminalExpanded {
		free /= 2
	}
	m.viewport.Height = max(free, minTerminal)
	m.viewport.SetContent(m.screen.Transcript())
	m.viewport.GotoBottom()
}

// View renders the drop message, the terminal area and the status line.
func (m *Model) View() string {
	parts := []string{m.renderHeader()}
	if m.screen.MessageVisible {
		parts = append(parts, m.renderMessage())
	}
	if m.screen.TerminalActive {
		parts = append(parts, styles.terminalStyle(m.screen).Render(m.viewport.View()))
	}
	parts = append(parts, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) renderHeader() string {
	if m.server == "" {
		return styles.title.Render("dropzone")
	}
	return styles.title.Render(fmt.Sprintf("dropzone → %s", m.server))
}

func (m *Model) renderMessage() string {
	return styles.messageStyle(m.screen.MessageDimmed).Render(dropMessage)
}

func (m *Model) renderFooter() string {
	var b strings.Builder
	if m.screen.State == models.UploadPending {
		b.WriteString(m.progress.ViewAs(float64(m.screen.Progress.Percent()) / 100))
		b.WriteString("\n")
	}
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderStatus() string {
	status := m.screen.State.String()
	switch m.screen.State {
	case models.Streaming:
		return styles.ok.Render(fmt.Sprintf("%s • task %s • %d lines", status, m.screen.Handle, m.screen.Lines))
	case models.StreamEnded:
		return styles.warn.Render(fmt.Sprintf("%s • task %s • %d lines", status, m.screen.Handle, m.screen.Lines))
	}
	if m.screen.Err != nil {
		return styles.err.Render(fmt.Sprintf("%s • %v", status, m.screen.Err))
	}
	return styles.help.Render(status)
}
