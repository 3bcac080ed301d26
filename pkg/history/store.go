// Package history keeps the outcomes of past runs in a SQLite
// database so trends of individual tests can be queried.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"digital.vasic.verify/pkg/testcase"
)

//go:embed schema.sql
var schemaSQL string

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// RunRecord is one stored run.
type RunRecord struct {
	ID               int64
	RunID            string
	Name             string
	StartedAt        time.Time
	Duration         time.Duration
	Total            int
	Passed           int
	Failed           int
	Excepted         int
	Crashed          int
	TimedOut         int
	Skipped          int
	AssertionsPassed int
	AssertionsFailed int
	Interrupted      bool
	Aborted          bool
}

// Succeeded returns true if every test of the run passed.
func (r RunRecord) Succeeded() bool {
	return r.Passed == r.Total
}

// TestRecord is one stored test outcome.
type TestRecord struct {
	RunID            string
	Name             string
	File             string
	Line             int
	Status           testcase.Status
	Signal           string
	Error            string
	Duration         time.Duration
	AssertionsPassed int
	AssertionsFailed int
	StartedAt        time.Time
}

// Store manages the run history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens the database at dbPath, creating it and its
// parent directory when needed.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != MemoryPath {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == MemoryPath {
		// Every connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA journal_mode=WAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun stores a finished run and every test outcome in
// one transaction.
func (s *Store) RecordRun(ctx context.Context, sum *testcase.Summary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(run_id, name, started_at, duration_ns, total, passed, failed,
		 excepted, crashed, timed_out, skipped, assertions_passed,
		 assertions_failed, interrupted, aborted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sum.RunID,
		sum.Name,
		sum.StartTime.UTC(),
		int64(sum.Duration),
		sum.Total,
		sum.Passed,
		sum.Failed,
		sum.Excepted,
		sum.Crashed,
		sum.TimedOut,
		sum.Skipped,
		sum.AssertionsPassed,
		sum.AssertionsFailed,
		sum.Interrupted,
		sum.Aborted,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO test_results
		(run_id, name, file, line, status, signal, error_message,
		 duration_ns, assertions_passed, assertions_failed, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare test insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range sum.Results {
		started := r.StartTime
		if started.IsZero() {
			started = sum.StartTime
		}
		if _, err := stmt.ExecContext(ctx,
			sum.RunID,
			r.Name,
			r.File,
			r.Line,
			string(r.Status),
			r.Signal,
			r.Error,
			int64(r.Duration),
			r.AssertionsPassed,
			r.AssertionsFailed,
			started.UTC(),
		); err != nil {
			return fmt.Errorf("insert test %q: %w", r.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, most recent first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, run_id, name,
		started_at, duration_ns, total, passed, failed, excepted,
		crashed, timed_out, skipped, assertions_passed,
		assertions_failed, interrupted, aborted
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var durationNs int64
		if err := rows.Scan(
			&r.ID,
			&r.RunID,
			&r.Name,
			&r.StartedAt,
			&durationNs,
			&r.Total,
			&r.Passed,
			&r.Failed,
			&r.Excepted,
			&r.Crashed,
			&r.TimedOut,
			&r.Skipped,
			&r.AssertionsPassed,
			&r.AssertionsFailed,
			&r.Interrupted,
			&r.Aborted,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		r.Duration = time.Duration(durationNs)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

// TestTrend returns up to limit outcomes of the named test,
// most recent first.
func (s *Store) TestTrend(
	ctx context.Context,
	name string,
	limit int,
) ([]TestRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, name, file,
		line, status, signal, error_message, duration_ns,
		assertions_passed, assertions_failed, started_at
		FROM test_results
		WHERE name = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, name, limit)
	if err != nil {
		return nil, fmt.Errorf("query test trend: %w", err)
	}
	defer rows.Close()

	var trend []TestRecord
	for rows.Next() {
		var r TestRecord
		var status string
		var durationNs int64
		if err := rows.Scan(
			&r.RunID,
			&r.Name,
			&r.File,
			&r.Line,
			&status,
			&r.Signal,
			&r.Error,
			&durationNs,
			&r.AssertionsPassed,
			&r.AssertionsFailed,
			&r.StartedAt,
		); err != nil {
			return nil, fmt.Errorf("scan test row: %w", err)
		}
		r.Status = testcase.Status(status)
		r.Duration = time.Duration(durationNs)
		trend = append(trend, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate test rows: %w", err)
	}
	return trend, nil
}

// PassRate returns the fraction of recorded outcomes of the
// named test that passed, and the number of outcomes.
func (s *Store) PassRate(ctx context.Context, name string) (float64, int, error) {
	var total, passed int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM test_results WHERE name = ?`,
		string(testcase.StatusPassed), name,
	).Scan(&total, &passed)
	if err != nil {
		return 0, 0, fmt.Errorf("query pass rate: %w", err)
	}
	if total == 0 {
		return 0, 0, nil
	}
	return float64(passed) / float64(total), total, nil
}
