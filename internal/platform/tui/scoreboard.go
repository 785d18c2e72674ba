package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/snakenet/internal/storage"
)

// Scoreboard layout constants
const (
	tableMinWidth = 50  // Minimum table width
	maxRows       = 100 // Max rows to load per tab
)

// ScoreSource is the read side of the score store.
type ScoreSource interface {
	TopScores(playerID string, limit int) ([]storage.ScoreEntry, error)
	RecentSessions(limit int) ([]storage.SessionEntry, error)
}

var _ ScoreSource = (*storage.Store)(nil)

type scoreTab int

const (
	tabScores scoreTab = iota
	tabSessions
)

func (t scoreTab) title() string {
	if t == tabSessions {
		return "Recent sessions"
	}
	return "Top lengths"
}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextTab, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab, k.PrevTab},
		{k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev tab"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel is the Bubble Tea model for the scoreboard screen.
type ScoreboardModel struct {
	source   ScoreSource
	playerID string // empty shows every player
	tab      scoreTab
	table    table.Model
	help     help.Model
	keys     ScoreboardKeyMap
	rows     int
	loadErr  error
	width    int
	height   int
	quitting bool
}

// NewScoreboardModel creates a new scoreboard model.
func NewScoreboardModel(source ScoreSource, playerID string, width, height int) ScoreboardModel {
	m := ScoreboardModel{
		source:   source,
		playerID: playerID,
		keys:     DefaultScoreboardKeyMap(),
		help:     help.New(),
		width:    width,
		height:   height,
	}
	m.load()
	return m
}

func (m *ScoreboardModel) columns() []table.Column {
	tableWidth := max(m.width-6, tableMinWidth)
	if m.tab == tabSessions {
		return []table.Column{
			{Title: "Role", Width: 8},
			{Title: "Players", Width: 8},
			{Title: "Ticks", Width: 8},
			{Title: "Duration", Width: 10},
			{Title: "Ended", Width: min(tableWidth-34, 18)},
		}
	}
	return []table.Column{
		{Title: "Rank", Width: 6},
		{Title: "Player", Width: 14},
		{Title: "Length", Width: 8},
		{Title: "Tick", Width: 8},
		{Title: "Date", Width: min(tableWidth-36, 18)},
	}
}

// load rebuilds the table for the current tab.
func (m *ScoreboardModel) load() {
	var rows []table.Row
	m.loadErr = nil
	if m.source != nil {
		rows, m.loadErr = m.fetchRows()
	}

	t := table.New(
		table.WithColumns(m.columns()),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m.table = t
	m.rows = len(rows)
}

func (m *ScoreboardModel) fetchRows() ([]table.Row, error) {
	if m.tab == tabSessions {
		sessions, err := m.source.RecentSessions(maxRows)
		if err != nil {
			return nil, err
		}
		rows := make([]table.Row, len(sessions))
		for i, s := range sessions {
			rows[i] = table.Row{
				s.Role,
				fmt.Sprintf("%d", s.Players),
				fmt.Sprintf("%d", s.Ticks),
				s.EndedAt.Sub(s.StartedAt).Round(time.Second).String(),
				s.EndedAt.Format("Jan 02 15:04"),
			}
		}
		return rows, nil
	}

	scores, err := m.source.TopScores(m.playerID, maxRows)
	if err != nil {
		return nil, err
	}
	rows := make([]table.Row, len(scores))
	for i, s := range scores {
		rows[i] = table.Row{
			fmt.Sprintf("#%d", i+1),
			s.PlayerID,
			fmt.Sprintf("%d", s.Length),
			fmt.Sprintf("%d", s.Tick),
			s.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	return rows, nil
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextTab), key.Matches(msg, m.keys.PrevTab):
			if m.tab == tabScores {
				m.tab = tabSessions
			} else {
				m.tab = tabScores
			}
			m.load()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.load()
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := "SNAKENET SCORES"
	if m.playerID != "" {
		title += " - " + m.playerID
	}
	b.WriteString(centerText(titleStyle.Render(title), m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(m.renderTabs(), m.width))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(centerText(tableStyle.Render(m.renderTableContent()), m.width))

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m ScoreboardModel) renderTabs() string {
	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)

	tabs := make([]string, 0, 2)
	for _, t := range []scoreTab{tabScores, tabSessions} {
		if t == m.tab {
			tabs = append(tabs, activeTabStyle.Render(t.title()))
		} else {
			tabs = append(tabs, tabStyle.Render(t.title()))
		}
	}
	return strings.Join(tabs, " ")
}

// renderTableContent renders the table or empty message.
func (m ScoreboardModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.loadErr != nil:
		return errorStyle.Render(m.loadErr.Error())
	case m.rows == 0 && m.tab == tabSessions:
		return emptyStyle.Render("No sessions recorded yet.")
	case m.rows == 0:
		return emptyStyle.Render("No scores recorded yet.\nGo grow a snake!")
	}
	return m.table.View()
}

// centerText pads each line of text to center it in width columns.
func centerText(text string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, text)
}

// RunScoreboard runs the scoreboard screen.
func RunScoreboard(source ScoreSource, playerID string, width, height int) error {
	p := tea.NewProgram(
		NewScoreboardModel(source, playerID, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
