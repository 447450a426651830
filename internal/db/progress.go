package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-tailor/internal/progress"
)

// ProgressStore is the PostgreSQL-backed progress.Store. One row per
// (job_id, user_id); the orchestrator upserts it as the job advances.
type ProgressStore struct {
	db *DB
}

// Progress returns a progress.Store backed by this database
func (db *DB) Progress() *ProgressStore {
	return &ProgressStore{db: db}
}

// Start creates or resets the progress row for a job
func (s *ProgressStore) Start(ctx context.Context, jobID, ownerID uuid.UUID, maxAttempts int) error {
	_, err := s.db.pool.Exec(ctx,
		`INSERT INTO tailoring_progress (job_id, user_id, status, progress, current_attempt, max_attempts, updated_at)
		 VALUES ($1, $2, $3, $4, 0, $5, NOW())
		 ON CONFLICT (job_id, user_id) DO UPDATE
		 SET status = $3, progress = $4, current_attempt = 0, max_attempts = $5, updated_at = NOW()`,
		jobID, ownerID, string(progress.StatusStarted), 5, maxAttempts,
	)
	if err != nil {
		return fmt.Errorf("failed to start progress: %w", err)
	}
	return nil
}

// Update upserts the progress row; the attempt counter moves only when
// currentAttempt is not progress.AttemptUnchanged.
func (s *ProgressStore) Update(ctx context.Context, jobID, ownerID uuid.UUID, status progress.Status, progressPct, currentAttempt int) error {
	var err error
	if currentAttempt == progress.AttemptUnchanged {
		_, err = s.db.pool.Exec(ctx,
			`INSERT INTO tailoring_progress (job_id, user_id, status, progress, current_attempt, max_attempts, updated_at)
			 VALUES ($1, $2, $3, $4, 0, 0, NOW())
			 ON CONFLICT (job_id, user_id) DO UPDATE
			 SET status = $3, progress = $4, updated_at = NOW()`,
			jobID, ownerID, string(status), progressPct,
		)
	} else {
		_, err = s.db.pool.Exec(ctx,
			`INSERT INTO tailoring_progress (job_id, user_id, status, progress, current_attempt, max_attempts, updated_at)
			 VALUES ($1, $2, $3, $4, $5, 0, NOW())
			 ON CONFLICT (job_id, user_id) DO UPDATE
			 SET status = $3, progress = $4, current_attempt = $5, updated_at = NOW()`,
			jobID, ownerID, string(status), progressPct, currentAttempt,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return nil
}

// Read returns the current progress record, or the not_started default when
// no row exists yet.
func (s *ProgressStore) Read(ctx context.Context, jobID, ownerID uuid.UUID) (progress.Record, error) {
	var rec progress.Record
	var status string
	err := s.db.pool.QueryRow(ctx,
		`SELECT status, progress, current_attempt, max_attempts, updated_at
		 FROM tailoring_progress WHERE job_id = $1 AND user_id = $2`,
		jobID, ownerID,
	).Scan(&status, &rec.Progress, &rec.CurrentAttempt, &rec.MaxAttempts, &rec.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return progress.Record{Status: progress.StatusNotStarted}, nil
		}
		return progress.Record{}, fmt.Errorf("failed to read progress: %w", err)
	}
	rec.Status = progress.Status(status)
	return rec, nil
}
