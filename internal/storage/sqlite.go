// Package storage provides SQLite-based persistence for snake scores and
// session history. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
// dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/snakenet/internal/multiplayer"
)

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// ScoreEntry is the final length of one snake when it died.
type ScoreEntry struct {
	ID        int64
	SessionID string
	PlayerID  string
	Color     string
	Length    int
	Tick      uint64
	CreatedAt time.Time
}

// SessionEntry is one finished hosted or solo session.
type SessionEntry struct {
	ID        int64
	SessionID string
	Role      string
	Ticks     uint64
	Players   int
	StartedAt time.Time
	EndedAt   time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// Deaths are saved from background goroutines; one connection keeps
	// SQLite writers from tripping over each other.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			player_id TEXT NOT NULL,
			color TEXT NOT NULL,
			length INTEGER NOT NULL,
			tick INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(length DESC);
		CREATE INDEX IF NOT EXISTS idx_scores_player ON scores(player_id, length DESC);

		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL UNIQUE,
			role TEXT NOT NULL,
			ticks INTEGER NOT NULL DEFAULT 0,
			players INTEGER NOT NULL DEFAULT 0,
			started_at INTEGER NOT NULL,
			ended_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_ended ON sessions(ended_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveScore records a death. Returns the ID of the inserted record.
func (s *Store) SaveScore(e ScoreEntry) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO scores (session_id, player_id, color, length, tick) VALUES (?, ?, ?, ?, ?)",
		e.SessionID, e.PlayerID, e.Color, e.Length, int64(e.Tick), //nolint:gosec // tick counts stay far below 2^63
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save score: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// TopScores retrieves the longest snakes, optionally for one player.
// An empty playerID covers everyone.
func (s *Store) TopScores(playerID string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, session_id, player_id, color, length, tick, created_at
		 FROM scores
		 WHERE ? = '' OR player_id = ?
		 ORDER BY length DESC, id ASC
		 LIMIT ?`,
		playerID, playerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var tick int64
		var createdAt any
		if err := rows.Scan(&e.ID, &e.SessionID, &e.PlayerID, &e.Color, &e.Length, &tick, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Tick = uint64(tick) //nolint:gosec // stored from a uint64
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// HighScore returns the longest snake for the player, or overall for an
// empty playerID. Returns 0 if no scores exist.
func (s *Store) HighScore(playerID string) (int, error) {
	var length sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(length) FROM scores WHERE ? = '' OR player_id = ?",
		playerID, playerID,
	).Scan(&length)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !length.Valid {
		return 0, nil
	}
	return int(length.Int64), nil
}

// SaveSession records a finished session. Saving the same session id twice
// replaces the earlier row.
func (s *Store) SaveSession(e SessionEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (session_id, role, ticks, players, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
		   role = excluded.role, ticks = excluded.ticks, players = excluded.players,
		   started_at = excluded.started_at, ended_at = excluded.ended_at`,
		e.SessionID, e.Role, int64(e.Ticks), e.Players, e.StartedAt.Unix(), e.EndedAt.Unix(), //nolint:gosec // tick counts stay far below 2^63
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save session: %w", err)
	}
	return nil
}

// RecentSessions retrieves the most recently ended sessions.
func (s *Store) RecentSessions(limit int) ([]SessionEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, session_id, role, ticks, players, started_at, ended_at
		 FROM sessions
		 ORDER BY ended_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var entries []SessionEntry
	for rows.Next() {
		var e SessionEntry
		var ticks, started, ended int64
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Role, &ticks, &e.Players, &started, &ended); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Ticks = uint64(ticks) //nolint:gosec // stored from a uint64
		e.StartedAt = time.Unix(started, 0)
		e.EndedAt = time.Unix(ended, 0)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// SessionByID retrieves one session, or nil if it was never saved.
func (s *Store) SessionByID(sessionID string) (*SessionEntry, error) {
	var e SessionEntry
	var ticks, started, ended int64
	err := s.db.QueryRow(
		`SELECT id, session_id, role, ticks, players, started_at, ended_at
		 FROM sessions WHERE session_id = ?`,
		sessionID,
	).Scan(&e.ID, &e.SessionID, &e.Role, &ticks, &e.Players, &started, &ended)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query session: %w", err)
	}
	e.Ticks = uint64(ticks) //nolint:gosec // stored from a uint64
	e.StartedAt = time.Unix(started, 0)
	e.EndedAt = time.Unix(ended, 0)
	return &e, nil
}

// SaveDeath implements multiplayer.ResultSaver.
func (s *Store) SaveDeath(data multiplayer.DeathData) error {
	_, err := s.SaveScore(ScoreEntry{
		SessionID: data.SessionID,
		PlayerID:  data.PlayerID,
		Color:     data.Color,
		Length:    data.Length,
		Tick:      data.Tick,
	})
	return err
}

// SaveSessionResult implements multiplayer.ResultSaver.
func (s *Store) SaveSessionResult(data multiplayer.SessionData) error {
	return s.SaveSession(SessionEntry{
		SessionID: data.SessionID,
		Role:      data.Role,
		Ticks:     data.Ticks,
		Players:   data.Players,
		StartedAt: time.Unix(data.StartedAt, 0),
		EndedAt:   time.Unix(data.EndedAt, 0),
	})
}

// Ensure Store implements ResultSaver
var _ multiplayer.ResultSaver = (*Store)(nil)

// parseTime handles both time.Time and the string form SQLite may return.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
