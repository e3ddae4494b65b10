package store

import (
	"database/sql"
	"time"

	"github.com/lox/asosingest/internal/models"
)

const (
	OutcomeRunning = "running"
	OutcomeWritten = "written"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// StartRun records the start of an ingestion run for a slot.
func (s *Store) StartRun(date, hour, objectKey string) (*models.IngestRun, error) {
	run := &models.IngestRun{
		Date:      date,
		Hour:      hour,
		ObjectKey: objectKey,
		StartedAt: time.Now().UTC(),
		Outcome:   OutcomeRunning,
	}

	result, err := s.db.Exec(`
		INSERT INTO ingest_runs (date, hour, object_key, started_at, outcome)
		VALUES (?, ?, ?, ?, ?)
	`, run.Date, run.Hour, run.ObjectKey, run.StartedAt, run.Outcome)
	if err != nil {
		return nil, err
	}

	run.ID, err = result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return run, nil
}

// CompleteRun stores the final counters and outcome of a run.
func (s *Store) CompleteRun(run *models.IngestRun) error {
	if run == nil {
		return nil
	}

	run.FinishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}

	_, err := s.db.Exec(`
		UPDATE ingest_runs SET
			finished_at = ?,
			stations_fetched = ?,
			rows_written = ?,
			outcome = ?,
			error_message = ?
		WHERE id = ?
	`, run.FinishedAt, run.StationsFetched, run.RowsWritten, run.Outcome, run.ErrorMessage, run.ID)
	return err
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]models.IngestRun, error) {
	rows, err := s.db.Query(`
		SELECT id, date, hour, object_key, started_at, finished_at,
		       stations_fetched, rows_written, outcome, error_message
		FROM ingest_runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.IngestRun
	for rows.Next() {
		var r models.IngestRun
		if err := rows.Scan(&r.ID, &r.Date, &r.Hour, &r.ObjectKey, &r.StartedAt, &r.FinishedAt,
			&r.StationsFetched, &r.RowsWritten, &r.Outcome, &r.ErrorMessage); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
