// Package storage provides SQLite-based persistence for finished runs and
// online matches. Uses the pure-Go modernc.org/sqlite driver to avoid CGO
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

	"github.com/vovakirdan/blockfall/internal/multiplayer"
)

const timeLayout = "2006-01-02 15:04:05"

// Store manages the SQLite database connection.
type Store struct {
	db *sql.DB
}

// ScoreEntry is one finished singleplayer run.
type ScoreEntry struct {
	ID        int64
	Player    string
	Score     int
	Lines     int
	Level     int
	CreatedAt time.Time
}

// OnlineMatchResult is the local view of a finished online match.
type OnlineMatchResult struct {
	ID            int64
	MatchID       string
	Peer          string
	Result        string // "won", "lost", "disconnected"
	EndReason     string // "completed", "disconnect"
	Duration      int    // seconds
	LinesSent     int
	LinesReceived int
	CreatedAt     time.Time
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
			player TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL,
			lines INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(score DESC);

		CREATE TABLE IF NOT EXISTS online_matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			peer TEXT NOT NULL,
			result TEXT NOT NULL,
			end_reason TEXT NOT NULL,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			lines_sent INTEGER NOT NULL DEFAULT 0,
			lines_received INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_online_matches_peer ON online_matches(peer);
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

// parseTimestamp handles both time.Time and string values from the driver.
func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(timeLayout, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// SaveScore records a finished run.
// Returns the ID of the inserted record.
func (s *Store) SaveScore(e ScoreEntry) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO scores (player, score, lines, level) VALUES (?, ?, ?, ?)",
		e.Player, e.Score, e.Lines, e.Level,
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

// TopScores retrieves the best limit runs, highest score first.
func (s *Store) TopScores(limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryScores(
		`SELECT id, player, score, lines, level, created_at
		 FROM scores
		 ORDER BY score DESC, lines DESC
		 LIMIT ?`,
		limit,
	)
}

// AllScores retrieves every run (no limit).
func (s *Store) AllScores() ([]ScoreEntry, error) {
	return s.queryScores(
		`SELECT id, player, score, lines, level, created_at
		 FROM scores
		 ORDER BY score DESC, lines DESC`,
	)
}

func (s *Store) queryScores(query string, args ...any) ([]ScoreEntry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Player, &e.Score, &e.Lines, &e.Level, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTimestamp(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// HighScore returns the best score, or 0 when nothing was saved.
func (s *Store) HighScore() (int, error) {
	var score sql.NullInt64
	if err := s.db.QueryRow("SELECT MAX(score) FROM scores").Scan(&score); err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}
	if !score.Valid {
		return 0, nil
	}
	return int(score.Int64), nil
}

// ClearScores deletes every saved run.
func (s *Store) ClearScores() error {
	if _, err := s.db.Exec("DELETE FROM scores"); err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// SaveOnlineMatch records the result of an online match.
// Returns the ID of the inserted record.
func (s *Store) SaveOnlineMatch(result OnlineMatchResult) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO online_matches
		 (match_id, peer, result, end_reason, duration_secs, lines_sent, lines_received)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.MatchID,
		result.Peer,
		result.Result,
		result.EndReason,
		result.Duration,
		result.LinesSent,
		result.LinesReceived,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save online match: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

const onlineColumns = `id, match_id, peer, result, end_reason, duration_secs, lines_sent, lines_received, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanOnline(row scanner) (OnlineMatchResult, error) {
	var r OnlineMatchResult
	var createdAt any
	err := row.Scan(
		&r.ID,
		&r.MatchID,
		&r.Peer,
		&r.Result,
		&r.EndReason,
		&r.Duration,
		&r.LinesSent,
		&r.LinesReceived,
		&createdAt,
	)
	r.CreatedAt = parseTimestamp(createdAt)
	return r, err
}

// OnlineMatchByID retrieves an online match by its match ID.
// Returns nil when no such match exists.
func (s *Store) OnlineMatchByID(matchID string) (*OnlineMatchResult, error) {
	r, err := scanOnline(s.db.QueryRow(
		`SELECT `+onlineColumns+` FROM online_matches WHERE match_id = ?`,
		matchID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query online match: %w", err)
	}
	return &r, nil
}

// RecentOnlineMatches retrieves the most recent online matches.
func (s *Store) RecentOnlineMatches(limit int) ([]OnlineMatchResult, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+onlineColumns+`
		 FROM online_matches
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query online matches: %w", err)
	}
	defer rows.Close()

	var results []OnlineMatchResult
	for rows.Next() {
		r, err := scanOnline(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return results, nil
}

// SaveMatchResult implements multiplayer.MatchResultSaver.
func (s *Store) SaveMatchResult(data multiplayer.MatchResultData) error {
	_, err := s.SaveOnlineMatch(OnlineMatchResult{
		MatchID:       data.MatchID,
		Peer:          data.Peer,
		Result:        data.Result,
		EndReason:     data.EndReason,
		Duration:      int(data.Duration / time.Second),
		LinesSent:     data.LinesSent,
		LinesReceived: data.LinesReceived,
	})
	return err
}

// Ensure Store implements MatchResultSaver
var _ multiplayer.MatchResultSaver = (*Store)(nil)

// Stats contains aggregated statistics over all saved runs and matches.
type Stats struct {
	GamesCount int
	HighScore  int
	AvgScore   float64
	TotalLines int64
	LastPlayed time.Time
	Wins       int
	Losses     int
}

// GetStats retrieves aggregated statistics.
func (s *Store) GetStats() (*Stats, error) {
	stats := &Stats{}
	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0), COALESCE(SUM(lines), 0), MAX(created_at)
		 FROM scores`,
	).Scan(&stats.GamesCount, &stats.HighScore, &stats.AvgScore, &stats.TotalLines, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	stats.LastPlayed = parseTimestamp(lastPlayed)

	err = s.db.QueryRow(
		`SELECT
		   COALESCE(SUM(CASE WHEN result = 'won' THEN 1 ELSE 0 END), 0),
		   COALESCE(SUM(CASE WHEN result = 'lost' THEN 1 ELSE 0 END), 0)
		 FROM online_matches`,
	).Scan(&stats.Wins, &stats.Losses)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get match stats: %w", err)
	}

	return stats, nil
}
