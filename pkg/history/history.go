// Package history persists finalized run outcomes to a SQLite database so
// past diagnostics can be reviewed after the session ends.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"momo/pkg/runner"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	test_name   TEXT NOT NULL,
	status      TEXT NOT NULL,
	exit_code   INTEGER NOT NULL DEFAULT 0,
	log_path    TEXT NOT NULL DEFAULT '',
	line_count  INTEGER NOT NULL DEFAULT 0,
	started_at  TIMESTAMP NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

// Entry is one recorded run.
type Entry struct {
	ID        string
	TestName  string
	Status    string
	ExitCode  int
	LogPath   string
	LineCount int
	StartedAt time.Time
	Duration  time.Duration
}

// Store records and queries run history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path with WAL mode and a
// busy timeout, and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode on %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout on %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close history db: %w", err)
	}
	return nil
}

// Record inserts a finalized outcome. Implements runner.Recorder.
func (s *Store) Record(ctx context.Context, o runner.Outcome) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, test_name, status, exit_code, log_path, line_count, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.RunID, o.Test, o.Status.String(), o.ExitCode, o.LogPath, o.Lines,
		o.StartedAt.UTC(), o.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("insert run %s: %w", o.RunID, err)
	}
	return nil
}

// Recent returns the most recent entries, newest first. limit <= 0 means a
// default of 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, test_name, status, exit_code, log_path, line_count, started_at, duration_ms
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ByTest returns entries for one test name, newest first.
func (s *Store) ByTest(ctx context.Context, testName string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, test_name, status, exit_code, log_path, line_count, started_at, duration_ms
		 FROM runs WHERE test_name = ? ORDER BY started_at DESC, id LIMIT ?`, testName, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs for %s: %w", testName, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var durationMS int64
		if err := rows.Scan(&e.ID, &e.TestName, &e.Status, &e.ExitCode,
			&e.LogPath, &e.LineCount, &e.StartedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return entries, nil
}
