package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/resume-tailor/internal/types"
)

// AppendAttempt records one tailoring iteration for a resume. Attempts are
// append-only; a rerun of the same resume continues the numbering within
// its own job.
func (db *DB) AppendAttempt(ctx context.Context, resumeID uuid.UUID, attempt types.Attempt) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO tailoring_attempts
		   (resume_id, number, ats_score, jd_score, golden_passed,
		    ats_feedback, jd_feedback, golden_feedback, sections_sent, sections_changed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		resumeID, attempt.Number, attempt.ATSScore, attempt.JDScore, attempt.GoldenPassed,
		attempt.ATSFeedback, attempt.JDFeedback, attempt.GoldenFeedback,
		attempt.SectionsSent, attempt.SectionsChanged,
	)
	if err != nil {
		return fmt.Errorf("failed to append attempt %d: %w", attempt.Number, err)
	}
	return nil
}

// ListAttempts retrieves a resume's attempts in attempt-number order
func (db *DB) ListAttempts(ctx context.Context, resumeID uuid.UUID) ([]types.Attempt, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT number, ats_score, jd_score, golden_passed,
		        ats_feedback, jd_feedback, golden_feedback, sections_sent, sections_changed
		 FROM tailoring_attempts WHERE resume_id = $1 ORDER BY number ASC, created_at ASC`,
		resumeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []types.Attempt
	for rows.Next() {
		var a types.Attempt
		if err := rows.Scan(&a.Number, &a.ATSScore, &a.JDScore, &a.GoldenPassed,
			&a.ATSFeedback, &a.JDFeedback, &a.GoldenFeedback, &a.SectionsSent, &a.SectionsChanged); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, nil
}
