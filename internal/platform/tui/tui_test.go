package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/snakenet/internal/core"
	"github.com/vovakirdan/snakenet/internal/games/snake"
	"github.com/vovakirdan/snakenet/internal/multiplayer"
	"github.com/vovakirdan/snakenet/internal/storage"
	"github.com/vovakirdan/snakenet/internal/wire"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDrawWorldFlipsRows(t *testing.T) {
	snap := wire.Snapshot{
		Tick: 1,
		Players: []wire.PlayerState{{
			ID:    "a",
			Color: "red",
			Body:  []core.Point{{X: 0, Y: 0}, {X: 1, Y: 0}},
			Alive: true,
		}},
		Food: core.Point{X: 2, Y: 2},
	}
	w, h := BoardSize(3, 3)
	s := core.NewScreen(w, h)
	DrawWorld(s, snap, 3, 3)

	if got := s.GetCell(1, 3); got.Rune != headRune || got.Color != core.ColorWhite {
		t.Errorf("head cell = %+v", got)
	}
	if got := s.GetCell(3, 3); got.Rune != bodyRune || got.Color != core.ColorRed {
		t.Errorf("body cell = %+v", got)
	}
	if got := s.GetCell(5, 1); got.Rune != foodRune {
		t.Errorf("food cell = %+v", got)
	}
	if got := s.Get(0, 0); got != '┌' {
		t.Errorf("corner = %q", got)
	}
}

func TestDrawWorldDeadPlayerGray(t *testing.T) {
	snap := wire.Snapshot{
		Players: []wire.PlayerState{{
			ID:    "a",
			Color: "blue",
			Body:  []core.Point{{X: 1, Y: 1}},
		}},
		Food: snake.NoFood,
	}
	w, h := BoardSize(3, 3)
	s := core.NewScreen(w, h)
	DrawWorld(s, snap, 3, 3)

	if got := s.GetCell(3, 2); got.Rune != deadRune || got.Color != core.ColorGray {
		t.Errorf("dead cell = %+v", got)
	}
}

func TestKeyMapActions(t *testing.T) {
	keys := DefaultKeyMap()
	tests := []struct {
		msg  tea.KeyMsg
		want core.Action
	}{
		{tea.KeyMsg{Type: tea.KeyUp}, core.ActionUp},
		{runes("w"), core.ActionUp},
		{runes("s"), core.ActionDown},
		{runes("h"), core.ActionLeft},
		{tea.KeyMsg{Type: tea.KeyRight}, core.ActionRight},
		{tea.KeyMsg{Type: tea.KeyEnter}, core.ActionStart},
		{runes("r"), core.ActionReset},
		{runes("v"), core.ActionRevive},
		{runes("x"), core.ActionDisconnect},
		{runes("q"), core.ActionQuit},
		{runes("z"), core.ActionNone},
	}
	for _, tt := range tests {
		if got := keys.Action(tt.msg); got != tt.want {
			t.Errorf("Action(%q) = %v, want %v", tt.msg.String(), got, tt.want)
		}
	}
}

type fakeController struct {
	role        multiplayer.Role
	steered     []core.Direction
	begun       int
	disconnects int
	events      chan multiplayer.SessionEvent
	done        chan struct{}
}

func newFakeController(role multiplayer.Role) *fakeController {
	return &fakeController{
		role:   role,
		events: make(chan multiplayer.SessionEvent, 4),
		done:   make(chan struct{}),
	}
}

func (f *fakeController) Begin() error {
	if f.role == multiplayer.RoleClient {
		return multiplayer.ErrNotHost
	}
	f.begun++
	return nil
}

func (f *fakeController) Reset() error { return nil }

func (f *fakeController) ReviveLocal() error { return nil }

func (f *fakeController) Steer(dir core.Direction) error {
	f.steered = append(f.steered, dir)
	return nil
}

func (f *fakeController) Disconnect() error {
	f.disconnects++
	return nil
}

func (f *fakeController) Events() <-chan multiplayer.SessionEvent { return f.events }

func (f *fakeController) Done() <-chan struct{} { return f.done }

func (f *fakeController) Latest() (wire.Snapshot, bool) { return wire.Snapshot{}, false }

func (f *fakeController) Status() multiplayer.Status { return multiplayer.StatusOpen }

func (f *fakeController) Role() multiplayer.Role { return f.role }

func (f *fakeController) LocalID() string { return "me" }

func TestModelKeysDriveController(t *testing.T) {
	ctrl := newFakeController(multiplayer.RoleHost)
	var m tea.Model = NewModel(ctrl, 10, 6)

	m, _ = m.Update(runes("d"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd := m.Update(runes("q"))

	if len(ctrl.steered) != 1 || ctrl.steered[0] != core.DirRight {
		t.Errorf("steered = %v", ctrl.steered)
	}
	if ctrl.begun != 1 {
		t.Errorf("begun = %d", ctrl.begun)
	}
	if ctrl.disconnects != 1 {
		t.Errorf("disconnects = %d", ctrl.disconnects)
	}
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit did not return tea.Quit")
	}
	if m.View() != "" {
		t.Error("view not empty after quit")
	}
}

func TestModelClientCannotBegin(t *testing.T) {
	ctrl := newFakeController(multiplayer.RoleClient)
	var m tea.Model = NewModel(ctrl, 10, 6)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.View(), "only the host") {
		t.Error("client begin not refused in view")
	}
}

func TestModelEventsUpdateView(t *testing.T) {
	ctrl := newFakeController(multiplayer.RoleClient)
	var m tea.Model = NewModel(ctrl, 10, 6)

	ctrl.events <- multiplayer.SnapshotEvent{Snapshot: wire.Snapshot{
		Tick: 42,
		Players: []wire.PlayerState{{
			ID: "me", Color: "green", Body: []core.Point{{X: 1, Y: 1}}, Alive: true,
		}},
		Food: core.Point{X: 5, Y: 5},
	}}
	msg := waitForEvent(ctrl)()
	m, cmd := m.Update(msg)
	if cmd == nil {
		t.Error("event loop not re-armed")
	}
	view := m.View()
	if !strings.Contains(view, "tick 42") {
		t.Errorf("view missing tick: %q", view)
	}

	close(ctrl.done)
	if _, ok := waitForEvent(ctrl)().(sessionDoneMsg); !ok {
		t.Error("closed controller did not end the event loop")
	}
}

func TestPlayerIDBounded(t *testing.T) {
	if got := playerID("alice", 3); got != "alice-3" {
		t.Errorf("playerID = %q", got)
	}
	if got := playerID("", 1); got != "ssh-1" {
		t.Errorf("playerID = %q", got)
	}
	long := strings.Repeat("x", 100)
	if got := playerID(long, 12); len(got) != wire.MaxClientIDLen || !strings.HasSuffix(got, "-12") {
		t.Errorf("playerID = %q (len %d)", got, len(got))
	}
}

type fakeSource struct {
	scores   []storage.ScoreEntry
	sessions []storage.SessionEntry
	err      error
	askedFor string
}

func (f *fakeSource) TopScores(playerID string, limit int) ([]storage.ScoreEntry, error) {
	f.askedFor = playerID
	return f.scores, f.err
}

func (f *fakeSource) RecentSessions(limit int) ([]storage.SessionEntry, error) {
	return f.sessions, f.err
}

func TestScoreboardTabs(t *testing.T) {
	src := &fakeSource{
		scores: []storage.ScoreEntry{{PlayerID: "bob", Length: 9}},
	}
	var m tea.Model = NewScoreboardModel(src, "bob", 80, 24)
	if src.askedFor != "bob" {
		t.Errorf("asked for %q", src.askedFor)
	}
	if v := m.View(); !strings.Contains(v, "bob") {
		t.Errorf("scores view missing player: %q", v)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if v := m.View(); !strings.Contains(v, "No sessions recorded yet.") {
		t.Errorf("sessions view = %q", v)
	}
}

func TestScoreboardShowsLoadError(t *testing.T) {
	src := &fakeSource{err: errors.New("database is locked")}
	m := NewScoreboardModel(src, "", 80, 24)
	if v := m.View(); !strings.Contains(v, "database is locked") {
		t.Errorf("view = %q", v)
	}
}
