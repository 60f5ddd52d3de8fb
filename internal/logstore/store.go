// Package logstore persists finished simulation runs to SQLite so they can be
// listed and replayed later. The database is append-only from the runner's
// perspective: one row per run plus one row per log entry, in submission
// order.
package logstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kingrea/tidewatch/internal/sim"
)

// Store wraps the SQLite handle.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("logstore: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("logstore: migrate: %w", err)
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		scenario   TEXT NOT NULL,
		created_at TEXT NOT NULL,
		elapsed    REAL NOT NULL,
		entries    INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS entries (
		run_id   TEXT NOT NULL REFERENCES runs(id),
		seq      INTEGER NOT NULL,
		time     REAL NOT NULL,
		level    TEXT NOT NULL,
		agent    TEXT NOT NULL,
		action   TEXT NOT NULL,
		duration REAL NOT NULL,
		extra    TEXT,
		PRIMARY KEY (run_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_entries_run ON entries(run_id, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Run summarizes one stored simulation run.
type Run struct {
	ID        string
	Scenario  string
	CreatedAt time.Time
	Elapsed   float64
	Entries   int
}

// SaveRun stores the full log of a finished run and returns its identifier.
func (s *Store) SaveRun(scenario string, elapsed float64, entries []sim.Entry) (string, error) {
	id := uuid.NewString()
	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("logstore: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, scenario, created_at, elapsed, entries) VALUES (?, ?, ?, ?, ?)`,
		id, scenario, time.Now().UTC().Format(time.RFC3339), elapsed, len(entries),
	)
	if err != nil {
		return "", fmt.Errorf("logstore: insert run: %w", err)
	}
	for seq, entry := range entries {
		var extra any
		if len(entry.Extra) > 0 {
			encoded, err := json.Marshal(entry.Extra)
			if err != nil {
				return "", fmt.Errorf("logstore: encode extras: %w", err)
			}
			extra = string(encoded)
		}
		_, err = tx.Exec(
			`INSERT INTO entries (run_id, seq, time, level, agent, action, duration, extra)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, seq, entry.Time, string(entry.Level), entry.Agent, entry.Action, entry.Duration, extra,
		)
		if err != nil {
			return "", fmt.Errorf("logstore: insert entry %d: %w", seq, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("logstore: commit: %w", err)
	}
	return id, nil
}

// ListRuns returns stored runs, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, scenario, created_at, elapsed, entries FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("logstore: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var created string
		if err := rows.Scan(&run.ID, &run.Scenario, &created, &run.Elapsed, &run.Entries); err != nil {
			return nil, fmt.Errorf("logstore: scan run: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, created); err == nil {
			run.CreatedAt = ts
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Entries returns a run's log in submission order.
func (s *Store) Entries(runID string) ([]sim.Entry, error) {
	rows, err := s.db.Query(
		`SELECT time, level, agent, action, duration, extra FROM entries WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("logstore: entries for %s: %w", runID, err)
	}
	defer rows.Close()

	var entries []sim.Entry
	for rows.Next() {
		var entry sim.Entry
		var level string
		var extra sql.NullString
		if err := rows.Scan(&entry.Time, &level, &entry.Agent, &entry.Action, &entry.Duration, &extra); err != nil {
			return nil, fmt.Errorf("logstore: scan entry: %w", err)
		}
		entry.Level = sim.Level(level)
		if extra.Valid && extra.String != "" {
			decoded := map[string]any{}
			if err := json.Unmarshal([]byte(extra.String), &decoded); err != nil {
				return nil, fmt.Errorf("logstore: decode extras: %w", err)
			}
			entry.Extra = decoded
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
