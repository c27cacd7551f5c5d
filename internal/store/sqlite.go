/*
PURPOSE:
  SQLite-backed run index: every result record of a batch is appended to
  <output>/runs.db so past batches can be inspected without re-parsing the
  artifact tree.

REQUIREMENTS:
  User-specified:
  - Append-only; queryable by solver; newest first.

  Implementation-discovered:
  - modernc.org/sqlite is the pure-Go driver used elsewhere in the stack;
    SQLite works best with a single writer, so the pool is capped at one
    connection.

ARCHITECTURE INTEGRATION:
  - Called by: internal/harness/batch.go (inserts),
    internal/cli/history.go (queries)
  - Consumes: internal/model.ResultRecord

ERROR HANDLING:
  - All methods return explicit errors; the batch coordinator treats index
    failures as warnings, never as run failures.

IMPLEMENTATION RULES:
  - Schema is initialized on open (CREATE TABLE IF NOT EXISTS).
  - Metrics are stored as a JSON column; the index is for browsing, the
    artifacts remain the source of truth.

USAGE:
  idx, err := store.Open(filepath.Join(outDir, store.DBName))
  err = idx.Insert(ctx, rec)
  entries, err := idx.History(ctx, "OORAA_Solver", 20)

RELATED FILES:
  - internal/harness/batch.go
  - internal/cli/history.go

MAINTENANCE:
  - Add columns via new CREATE statements guarded by IF NOT EXISTS.
*/

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/vecsim/experiment-runner/internal/model"
)

// DBName is the run index file name under the batch output root.
const DBName = "runs.db"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	solver     TEXT    NOT NULL,
	run        INTEGER NOT NULL,
	slots      INTEGER NOT NULL,
	status     TEXT    NOT NULL,
	metrics    TEXT    NOT NULL,
	created_at TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_solver ON runs(solver);
`

// RunIndex is an append-only SQLite index of executed runs.
type RunIndex struct {
	db *sql.DB
}

// Entry is one indexed run, as returned by History.
type Entry struct {
	Solver    string
	Run       int
	Slots     int
	Status    string
	Metrics   map[string]float64
	CreatedAt time.Time
}

// Open opens (creating if needed) the run index at path.
func Open(path string) (*RunIndex, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open run index %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with a single writer

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize run index schema: %w", err)
	}
	return &RunIndex{db: db}, nil
}

// Insert appends one result record to the index.
func (ix *RunIndex) Insert(ctx context.Context, rec *model.ResultRecord) error {
	metrics, err := json.Marshal(rec.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}
	_, err = ix.db.ExecContext(ctx,
		`INSERT INTO runs (solver, run, slots, status, metrics, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Solver, rec.Run, rec.Slots, string(rec.Status), string(metrics),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert run record: %w", err)
	}
	return nil
}

// History returns indexed runs, newest first. solver filters by exact
// solver name when non-empty (fully-qualified or short, as stored); limit
// caps the result count when positive.
func (ix *RunIndex) History(ctx context.Context, solver string, limit int) ([]Entry, error) {
	query := `SELECT solver, run, slots, status, metrics, created_at FROM runs`
	args := []any{}
	if solver != "" {
		query += ` WHERE solver = ? OR solver LIKE ?`
		args = append(args, solver, "%."+solver)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query run index: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var metrics, created string
		if err := rows.Scan(&e.Solver, &e.Run, &e.Slots, &e.Status, &metrics, &created); err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		if err := json.Unmarshal([]byte(metrics), &e.Metrics); err != nil {
			return nil, fmt.Errorf("failed to decode metrics column: %w", err)
		}
		if ts, perr := time.Parse(time.RFC3339, created); perr == nil {
			e.CreatedAt = ts
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (ix *RunIndex) Close() error {
	return ix.db.Close()
}
