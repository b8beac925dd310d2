package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound is returned by GetRun for unknown IDs.
var ErrRunNotFound = errors.New("run not found")

// Run is one annotated document.
type Run struct {
	RunID          int64
	CreatedAt      time.Time
	Source         string // URL or file path
	Domain         string
	Mode           string
	FoundCount     int
	AnnotatedCount int
	FailedCount    int
	Salary         string
	Currency       string
}

// InsertRun records a run and returns its run_id.
func (db *DB) InsertRun(r Run) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO annotation_runs (source, domain, mode, found_count, annotated_count,
		                             failed_count, salary, currency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.Source, r.Domain, r.Mode, r.FoundCount, r.AnnotatedCount, r.FailedCount, r.Salary, r.Currency)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return runID, nil
}

const runColumns = `run_id, created_at, source, COALESCE(domain, ''), mode, found_count,
	annotated_count, failed_count, COALESCE(salary, ''), COALESCE(currency, '')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (Run, error) {
	var r Run
	err := s.Scan(&r.RunID, &r.CreatedAt, &r.Source, &r.Domain, &r.Mode, &r.FoundCount,
		&r.AnnotatedCount, &r.FailedCount, &r.Salary, &r.Currency)
	return r, err
}

// GetRun retrieves a run by ID.
func (db *DB) GetRun(runID int64) (*Run, error) {
	r, err := scanRun(db.QueryRow("SELECT "+runColumns+" FROM annotation_runs WHERE run_id = ?", runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &r, nil
}

// ListRuns retrieves runs ordered by most recent first.
// A domain filter of "" matches every run.
func (db *DB) ListRuns(domain string, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM annotation_runs"
	var args []any
	if domain != "" {
		query += " WHERE domain = ?"
		args = append(args, domain)
	}
	query += " ORDER BY created_at DESC, run_id DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
