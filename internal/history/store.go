package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"mdprep/internal/pipeline"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users delete the database to adopt the new schema.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Run is one recorded batch run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	TablePath  string
	Total      int
	Completed  int
	Failed     int
	Skipped    int
}

// Summary carries the final counters of a run.
type Summary struct {
	Total     int
	Completed int
	Failed    int
	Skipped   int
}

// Store persists batch run outcomes in SQLite. It is an audit ledger only:
// the completion probe over sample directories stays the source of truth for
// what gets skipped on re-runs.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	dbPath := filepath.Join(dir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to recreate)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// BeginRun inserts the run row at batch start.
func (s *Store) BeginRun(ctx context.Context, runID, tablePath string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, table_path) VALUES (?, ?, ?)`,
		runID, startedAt.UTC().Format(time.RFC3339Nano), tablePath,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordOutcome appends one sample outcome to the run.
func (s *Store) RecordOutcome(ctx context.Context, runID string, outcome pipeline.Outcome) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outcomes (run_id, sample_id, success, error_message, elapsed_seconds)
         VALUES (?, ?, ?, ?, ?)`,
		runID, outcome.SampleID, boolToInt(outcome.Success), outcome.ErrorMessage, outcome.Elapsed.Seconds(),
	)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// FinishRun stamps the final counters and finish time on the run row.
func (s *Store) FinishRun(ctx context.Context, runID string, summary Summary, finishedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, total = ?, completed = ?, failed = ?, skipped = ? WHERE id = ?`,
		finishedAt.UTC().Format(time.RFC3339Nano),
		summary.Total, summary.Completed, summary.Failed, summary.Skipped,
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run: unknown run id %q", runID)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, COALESCE(finished_at, ''), table_path, total, completed, failed, skipped
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(&run.ID, &started, &finished, &run.TablePath,
			&run.Total, &run.Completed, &run.Failed, &run.Skipped); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = parseTimestamp(started); err != nil {
			return nil, err
		}
		if finished != "" {
			if run.FinishedAt, err = parseTimestamp(finished); err != nil {
				return nil, err
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Outcomes returns the per-sample outcomes of one run in insertion order.
func (s *Store) Outcomes(ctx context.Context, runID string) ([]pipeline.Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sample_id, success, error_message, elapsed_seconds
         FROM outcomes WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []pipeline.Outcome
	for rows.Next() {
		var outcome pipeline.Outcome
		var success int
		var elapsedSeconds float64
		if err := rows.Scan(&outcome.SampleID, &success, &outcome.ErrorMessage, &elapsedSeconds); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		outcome.Success = success != 0
		outcome.Elapsed = time.Duration(elapsedSeconds * float64(time.Second))
		outcomes = append(outcomes, outcome)
	}
	return outcomes, rows.Err()
}

func parseTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return ts, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
