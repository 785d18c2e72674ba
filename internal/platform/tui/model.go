package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/snakenet/internal/core"
	"github.com/vovakirdan/snakenet/internal/games/snake"
	"github.com/vovakirdan/snakenet/internal/multiplayer"
	"github.com/vovakirdan/snakenet/internal/wire"
)

// Controller is the session surface the UI drives.
// *multiplayer.Session implements it.
type Controller interface {
	Begin() error
	Reset() error
	ReviveLocal() error
	Steer(dir core.Direction) error
	Disconnect() error
	Events() <-chan multiplayer.SessionEvent
	Done() <-chan struct{}
	Latest() (wire.Snapshot, bool)
	Status() multiplayer.Status
	Role() multiplayer.Role
	LocalID() string
}

var _ Controller = (*multiplayer.Session)(nil)

type eventMsg struct{ evt multiplayer.SessionEvent }

type sessionDoneMsg struct{}

func waitForEvent(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		select {
		case evt := <-ctrl.Events():
			return eventMsg{evt: evt}
		case <-ctrl.Done():
			return sessionDoneMsg{}
		}
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model is the Bubble Tea model for a snake session.
type Model struct {
	ctrl   Controller
	keys   KeyMap
	help   help.Model
	screen *core.Screen

	width  int
	height int

	snap     wire.Snapshot
	hasSnap  bool
	status   multiplayer.Status
	state    snake.State
	notice   string
	lastErr  error
	quitting bool
}

// NewModel creates a model for a width x height world.
func NewModel(ctrl Controller, width, height int) Model {
	sw, sh := BoardSize(width, height)
	m := Model{
		ctrl:   ctrl,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		screen: core.NewScreen(sw, sh),
		width:  width,
		height: height,
		status: ctrl.Status(),
	}
	m.snap, m.hasSnap = ctrl.Latest()
	return m
}

// Init starts listening for session events.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.ctrl)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case eventMsg:
		m.handleEvent(msg.evt)
		return m, waitForEvent(m.ctrl)

	case sessionDoneMsg:
		m.status = m.ctrl.Status()
		return m, nil
	}

	return m, nil
}

func (m *Model) handleEvent(evt multiplayer.SessionEvent) {
	switch e := evt.(type) {
	case multiplayer.SnapshotEvent:
		m.snap = e.Snapshot
		m.hasSnap = true
	case multiplayer.StatusEvent:
		m.status = e.Status
		if e.Err != nil {
			m.lastErr = e.Err
		}
	case multiplayer.StateChangedEvent:
		m.state = e.State
		m.notice = "game " + e.State.String()
	case multiplayer.DeathEvent:
		if e.ID == m.ctrl.LocalID() {
			m.notice = fmt.Sprintf("you died at length %d, press v to revive", e.Length)
		} else {
			m.notice = fmt.Sprintf("%s died at length %d", e.ID, e.Length)
		}
	case multiplayer.PeerJoinedEvent:
		m.notice = e.ID + " joined"
	case multiplayer.PeerLeftEvent:
		m.notice = e.ID + " left"
	}
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Help) {
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	action := m.keys.Action(msg)
	if dir, ok := action.Direction(); ok {
		m.setErr(m.ctrl.Steer(dir))
		return m, nil
	}

	switch action {
	case core.ActionQuit:
		m.quitting = true
		m.setErr(m.ctrl.Disconnect())
		return m, tea.Quit
	case core.ActionDisconnect:
		m.setErr(m.ctrl.Disconnect())
		m.notice = "disconnected"
	case core.ActionStart:
		if m.setErr(m.ctrl.Begin()) {
			m.state = snake.StateRunning
		}
	case core.ActionReset:
		if m.setErr(m.ctrl.Reset()) {
			m.state = snake.StateIdle
		}
	case core.ActionRevive:
		m.setErr(m.ctrl.ReviveLocal())
	}
	return m, nil
}

// setErr records err for the status line and reports whether it was nil.
func (m *Model) setErr(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, multiplayer.ErrNotHost) {
		m.notice = "only the host can do that"
		return false
	}
	m.lastErr = err
	return false
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("SNAKENET"))
	b.WriteString(helpStyle.Render(fmt.Sprintf("  %s · %s", m.ctrl.Role(), m.status)))
	if m.ctrl.Role() != multiplayer.RoleClient {
		b.WriteString(helpStyle.Render(" · " + m.state.String()))
	}
	b.WriteString("\n")

	DrawWorld(m.screen, m.snap, m.width, m.height)
	b.WriteString(RenderScreen(m.screen))
	b.WriteString("\n")

	if m.hasSnap {
		b.WriteString(fmt.Sprintf("tick %d  ", m.snap.Tick))
		b.WriteString(Scoreline(m.snap, m.ctrl.LocalID()))
	} else {
		b.WriteString(helpStyle.Render("waiting for the host..."))
	}
	b.WriteString("\n")

	switch {
	case m.lastErr != nil:
		b.WriteString(errorStyle.Render(m.lastErr.Error()))
	case m.notice != "":
		b.WriteString(noticeStyle.Render(m.notice))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// Run starts the Bubble Tea program for ctrl and returns when the user quits.
func Run(ctrl Controller, width, height int) error {
	p := tea.NewProgram(
		NewModel(ctrl, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
