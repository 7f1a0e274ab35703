package model

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mxnstrexgl/cyberdark/internal/background"
	"github.com/mxnstrexgl/cyberdark/internal/cli/styles"
)

// statusRefreshInterval is how often the watch view re-polls.
const statusRefreshInterval = time.Second

// StatusFetch loads one status snapshot plus a line describing its source.
type StatusFetch func(ctx context.Context) (background.StatusResponse, string, error)

// StatusModel is the live status view driven by --watch.
type StatusModel struct {
	fetch   StatusFetch
	spinner spinner.Model
	status  background.StatusResponse
	source  string
	loaded  bool
	err     error

	theme    *styles.Theme
	renderer *styles.StatusRenderer
}

// NewStatusModel creates a new live status model.
func NewStatusModel(theme *styles.Theme, fetch StatusFetch) StatusModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.Accent)

	return StatusModel{
		fetch:    fetch,
		spinner:  s,
		theme:    theme,
		renderer: styles.NewStatusRenderer(theme),
	}
}

// statusLoadedMsg is sent when a status snapshot arrives.
type statusLoadedMsg struct {
	status background.StatusResponse
	source string
	err    error
}

// statusTickMsg schedules the next refresh.
type statusTickMsg time.Time

// Init implements tea.Model.
func (m StatusModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load)
}

// load fetches one snapshot.
func (m StatusModel) load() tea.Msg {
	status, source, err := m.fetch(context.Background())
	return statusLoadedMsg{status: status, source: source, err: err}
}

func nextRefresh() tea.Cmd {
	return tea.Tick(statusRefreshInterval, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}

// Update implements tea.Model.
func (m StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusLoadedMsg:
		m.loaded = true
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.status
			m.source = msg.source
		}
		return m, nextRefresh()

	case statusTickMsg:
		return m, m.load
	}

	return m, nil
}

// View implements tea.Model.
func (m StatusModel) View() string {
	t := m.theme

	if !m.loaded {
		return "\n  " + m.spinner.View() + t.Subtle.Render(" Contacting daemon...") + "\n"
	}

	help := "  " + t.HelpKey.Render("q") + t.HelpDesc.Render(" quit") +
		t.HelpDesc.Render("  refreshes every second")

	if m.err != nil {
		return m.renderer.RenderError(m.err) + help + "\n"
	}
	return m.renderer.RenderStatus(m.status, m.source) + help + "\n"
}

// Ensure interface compliance.
var _ tea.Model = (*StatusModel)(nil)
