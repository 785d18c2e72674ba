package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/snakenet/internal/multiplayer"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	for _, e := range []ScoreEntry{
		{SessionID: "s1", PlayerID: "alice", Color: "red", Length: 5},
		{SessionID: "s1", PlayerID: "bob", Color: "blue", Length: 12},
		{SessionID: "s2", PlayerID: "alice", Color: "red", Length: 9, Tick: 40},
	} {
		if _, err := store.SaveScore(e); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}

	all, err := store.TopScores("", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 scores, got %d", len(all))
	}
	if all[0].PlayerID != "bob" || all[0].Length != 12 {
		t.Errorf("Expected bob first with 12, got %+v", all[0])
	}

	mine, err := store.TopScores("alice", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(mine) != 2 || mine[0].Length != 9 || mine[0].Tick != 40 {
		t.Errorf("Unexpected alice scores %+v", mine)
	}
}

func TestStoreTopScoresLimit(t *testing.T) {
	store := openTestStore(t)

	for i := range 5 {
		if _, err := store.SaveScore(ScoreEntry{SessionID: "s", PlayerID: "p", Color: "green", Length: 3 + i}); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}

	scores, err := store.TopScores("", 3)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Errorf("Expected 3 scores (limit), got %d", len(scores))
	}
}

func TestStoreHighScore(t *testing.T) {
	store := openTestStore(t)

	// No scores yet
	high, err := store.HighScore("")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("Expected 0 for empty store, got %d", high)
	}

	_, _ = store.SaveScore(ScoreEntry{SessionID: "s", PlayerID: "a", Color: "red", Length: 7})
	_, _ = store.SaveScore(ScoreEntry{SessionID: "s", PlayerID: "b", Color: "red", Length: 4})

	if high, _ := store.HighScore(""); high != 7 {
		t.Errorf("Expected overall high 7, got %d", high)
	}
	if high, _ := store.HighScore("b"); high != 4 {
		t.Errorf("Expected b high 4, got %d", high)
	}
}

func TestStoreSessions(t *testing.T) {
	store := openTestStore(t)

	start := time.Unix(1_700_000_000, 0)
	if err := store.SaveSession(SessionEntry{SessionID: "old", Role: "solo", Ticks: 10, Players: 1, StartedAt: start, EndedAt: start.Add(time.Minute)}); err != nil {
		t.Fatalf("SaveSession() failed: %v", err)
	}
	if err := store.SaveSession(SessionEntry{SessionID: "new", Role: "host", Ticks: 99, Players: 3, StartedAt: start, EndedAt: start.Add(time.Hour)}); err != nil {
		t.Fatalf("SaveSession() failed: %v", err)
	}

	recent, err := store.RecentSessions(10)
	if err != nil {
		t.Fatalf("RecentSessions() failed: %v", err)
	}
	if len(recent) != 2 || recent[0].SessionID != "new" {
		t.Fatalf("Unexpected order %+v", recent)
	}
	if recent[0].Ticks != 99 || recent[0].Players != 3 || !recent[0].EndedAt.Equal(start.Add(time.Hour)) {
		t.Errorf("Unexpected session %+v", recent[0])
	}

	// Saving again replaces.
	if err := store.SaveSession(SessionEntry{SessionID: "old", Role: "solo", Ticks: 11, StartedAt: start, EndedAt: start}); err != nil {
		t.Fatalf("SaveSession() failed: %v", err)
	}
	got, err := store.SessionByID("old")
	if err != nil || got == nil || got.Ticks != 11 {
		t.Errorf("SessionByID = %+v, %v", got, err)
	}

	missing, err := store.SessionByID("nope")
	if err != nil || missing != nil {
		t.Errorf("Expected nil for unknown session, got %+v, %v", missing, err)
	}
}

func TestStoreImplementsResultSaver(t *testing.T) {
	store := openTestStore(t)

	var saver multiplayer.ResultSaver = store
	if err := saver.SaveDeath(multiplayer.DeathData{SessionID: "s", PlayerID: "alice", Color: "cyan", Length: 6, Tick: 3}); err != nil {
		t.Fatalf("SaveDeath() failed: %v", err)
	}
	if err := saver.SaveSessionResult(multiplayer.SessionData{SessionID: "s", Role: "host", Ticks: 3, Players: 1, StartedAt: 1, EndedAt: 2}); err != nil {
		t.Fatalf("SaveSessionResult() failed: %v", err)
	}

	scores, _ := store.TopScores("alice", 1)
	if len(scores) != 1 || scores[0].Color != "cyan" {
		t.Errorf("death not stored: %+v", scores)
	}
	sess, _ := store.SessionByID("s")
	if sess == nil || sess.Role != "host" {
		t.Errorf("session not stored: %+v", sess)
	}
}
