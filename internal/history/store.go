// Package history persists per-build execution records in SQLite so the
// report command can show the latest build and per-script trends.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// BuildRecord summarizes one gallery build.
type BuildRecord struct {
	ID       string
	Started  time.Time
	Duration time.Duration
	Outcome  string
}

// RunRecord is one script's execution inside a build.
type RunRecord struct {
	BuildID  string
	Script   string
	Duration time.Duration
	MemoryMB float64
	Outcome  string
}

// Store is a SQLite-backed build history.
// Use ":memory:" for an in-memory database, or a file path for persistent
// storage.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (creating if needed) the history database.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		outcome TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS script_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL REFERENCES builds(id),
		script TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		memory_mb REAL NOT NULL,
		outcome TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_build ON script_runs(build_id);
	CREATE INDEX IF NOT EXISTS idx_runs_script ON script_runs(script);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordBuild stores a build and its script runs in one transaction.
func (s *Store) RecordBuild(ctx context.Context, build BuildRecord, runs []RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO builds (id, started_at, duration_ms, outcome) VALUES (?, ?, ?, ?)",
		build.ID, build.Started.Unix(), build.Duration.Milliseconds(), build.Outcome,
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	for _, run := range runs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO script_runs (build_id, script, duration_ms, memory_mb, outcome) VALUES (?, ?, ?, ?, ?)",
			build.ID, run.Script, run.Duration.Milliseconds(), run.MemoryMB, run.Outcome,
		)
		if err != nil {
			return fmt.Errorf("insert run for %s: %w", run.Script, err)
		}
	}
	return tx.Commit()
}

// LatestBuild returns the most recent build, or sql.ErrNoRows when the
// history is empty.
func (s *Store) LatestBuild(ctx context.Context) (BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, started_at, duration_ms, outcome FROM builds ORDER BY started_at DESC, id DESC LIMIT 1")
	var b BuildRecord
	var started, durMS int64
	if err := row.Scan(&b.ID, &started, &durMS, &b.Outcome); err != nil {
		return BuildRecord{}, err
	}
	b.Started = time.Unix(started, 0)
	b.Duration = time.Duration(durMS) * time.Millisecond
	return b, nil
}

// RunsForBuild returns the runs of one build, slowest first.
func (s *Store) RunsForBuild(ctx context.Context, buildID string) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT build_id, script, duration_ms, memory_mb, outcome FROM script_runs "+
			"WHERE build_id = ? ORDER BY duration_ms DESC, memory_mb DESC, script",
		buildID,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// ScriptTrend returns up to limit past runs of one script, newest first.
func (s *Store) ScriptTrend(ctx context.Context, script string, limit int) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT r.build_id, r.script, r.duration_ms, r.memory_mb, r.outcome "+
			"FROM script_runs r JOIN builds b ON b.id = r.build_id "+
			"WHERE r.script = ? ORDER BY b.started_at DESC LIMIT ?",
		script, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query trend: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]RunRecord, error) {
	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var durMS int64
		if err := rows.Scan(&r.BuildID, &r.Script, &durMS, &r.MemoryMB, &r.Outcome); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Duration = time.Duration(durMS) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
