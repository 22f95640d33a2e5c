package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var _ RunRepository = (*SQLRunRepository)(nil)

// SQLRunRepository keeps a ledger of validation runs and the feeds each
// run removed.
type SQLRunRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *SQLRunRepository {
	return &SQLRunRepository{db: db}
}

func (r *SQLRunRepository) RecordRun(run Run) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO runs (started_at, team, dry_run, total, valid, removed, errored)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.StartedAt.UTC().Format(time.RFC3339), run.Team, run.DryRun,
		run.Total, run.Valid, run.Removed, run.Errored)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	for _, removal := range run.Removals {
		_, err := tx.Exec(`
			INSERT INTO removals (run_id, nick, name, url, reason)
			VALUES (?, ?, ?, ?, ?)
		`, runID, removal.Nick, removal.Name, removal.URL, removal.Reason)
		if err != nil {
			return 0, fmt.Errorf("failed to insert removal: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

// GetLastRun returns the most recent run, or nil when the ledger is empty.
func (r *SQLRunRepository) GetLastRun() (*Run, error) {
	var run Run
	var startedAt string

	err := r.db.QueryRow(`
		SELECT id, started_at, team, dry_run, total, valid, removed, errored
		FROM runs
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&run.ID, &startedAt, &run.Team, &run.DryRun,
		&run.Total, &run.Valid, &run.Removed, &run.Errored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last run: %w", err)
	}

	run.StartedAt, err = time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run timestamp: %w", err)
	}

	run.Removals, err = r.GetRemovals(run.ID)
	if err != nil {
		return nil, err
	}

	return &run, nil
}

func (r *SQLRunRepository) GetRemovals(runID int64) ([]Removal, error) {
	rows, err := r.db.Query(`
		SELECT nick, name, url, reason
		FROM removals
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query removals: %w", err)
	}
	defer rows.Close()

	var removals []Removal
	for rows.Next() {
		var removal Removal
		if err := rows.Scan(&removal.Nick, &removal.Name, &removal.URL, &removal.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan removal: %w", err)
		}
		removals = append(removals, removal)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate removals: %w", err)
	}

	return removals, nil
}
