package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kozaktomas/face-insight/internal/ai"
	"github.com/kozaktomas/face-insight/internal/imaging"
	"github.com/kozaktomas/face-insight/internal/session"
)

// Options configures the UI.
type Options struct {
	Context     context.Context
	Session     *session.Session
	Locale      ai.Locale
	InitialPath string
	ThemeName   string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx     context.Context
	session *session.Session
	locale  ai.Locale
	keys    keyMap

	// UI state
	theme   Theme
	width   int
	input   textinput.Model
	spinner spinner.Model

	// Data state
	state       session.State
	initialPath string
	imagePath   string
	notice      string
}

type acquiredMsg struct {
	path  string
	state session.State
}

type acquireFailedMsg struct {
	path string
	err  error
}

type analysisDoneMsg struct {
	attemptID string
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	locale := opts.Locale
	if locale.Prompt == "" {
		locale = ai.LocaleFor("")
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}

	input := textinput.New()
	input.Placeholder = "/path/to/photo.jpg"
	input.Prompt = "› "
	input.CharLimit = 4096
	if opts.InitialPath == "" {
		input.Focus()
	} else {
		input.SetValue(opts.InitialPath)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model{
		ctx:         ctx,
		session:     opts.Session,
		locale:      locale,
		keys:        defaultKeyMap(),
		theme:       GetTheme(themeName),
		input:       input,
		spinner:     s,
		state:       opts.Session.Snapshot(),
		initialPath: opts.InitialPath,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.initialPath != "" {
		return acquireCmd(m.session, m.initialPath)
	}
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-6, 10)
		return m, nil

	case acquiredMsg:
		m.state = msg.state
		m.imagePath = msg.path
		m.notice = ""
		return m, nil

	case acquireFailedMsg:
		m.notice = describeAcquireError(msg.path, msg.err)
		return m, nil

	case analysisDoneMsg:
		// Stale attempts are already ignored by the session; the snapshot
		// is the only source of truth.
		m.state = m.session.Snapshot()
		return m, nil

	case spinner.TickMsg:
		if m.state.Phase != session.PhaseAnalyzing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.input.Focused() {
		switch {
		case key.Matches(msg, m.keys.Load):
			path := cleanPath(m.input.Value())
			if path == "" {
				return m, nil
			}
			m.input.Blur()
			return m, acquireCmd(m.session, path)
		case key.Matches(msg, m.keys.Cancel):
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.EditPath):
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Analyze):
		return m.startAnalysis()

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		return m, nil
	}
	return m, nil
}

// startAnalysis begins one attempt. It does nothing without an image or
// while an attempt is already running.
func (m Model) startAnalysis() (tea.Model, tea.Cmd) {
	attempt, err := m.session.Begin()
	if err != nil || attempt == nil {
		return m, nil
	}
	m.state = m.session.Snapshot()
	m.notice = ""
	return m, tea.Batch(m.spinner.Tick, analyzeCmd(m.ctx, attempt))
}

func acquireCmd(s *session.Session, path string) tea.Cmd {
	return func() tea.Msg {
		img, err := imaging.AcquireFile(path)
		if err != nil {
			return acquireFailedMsg{path: path, err: err}
		}
		return acquiredMsg{path: path, state: s.Acquire(img)}
	}
}

func analyzeCmd(ctx context.Context, attempt *session.Attempt) tea.Cmd {
	return func() tea.Msg {
		// The outcome is recorded in the session; the error kind only matters for logs.
		_, _ = attempt.Run(ctx)
		return analysisDoneMsg{attemptID: attempt.ID}
	}
}

// cleanPath trims whitespace and the quotes terminals add when a file is dropped in.
func cleanPath(raw string) string {
	path := strings.TrimSpace(raw)
	path = strings.Trim(path, `"'`)
	return path
}

func describeAcquireError(path string, err error) string {
	name := filepath.Base(path)
	switch {
	case errors.Is(err, imaging.ErrUnsupportedMIME):
		return name + ": unsupported image format"
	case errors.Is(err, imaging.ErrEmptyImage):
		return name + ": file is empty"
	case errors.Is(err, imaging.ErrInvalidImage):
		return name + ": file is not a readable image"
	}
	return name + ": " + err.Error()
}

// Run starts the UI and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Session == nil {
		return errors.New("ui requires a session")
	}
	opts.Context = ctx
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
