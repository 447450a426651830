package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Resume represents a stored resume and its latest tailoring outcome.
// Tailoring columns are nullable until the first run completes.
type Resume struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	OriginalText     string     `json:"original_text"`
	ModifiedText     *string    `json:"modified_text,omitempty"`
	JobDescription   string     `json:"job_description"`
	Mode             string     `json:"mode"`
	ATSScore         *int       `json:"ats_score,omitempty"`
	JDScore          *int       `json:"jd_score,omitempty"`
	GoldenPassed     *bool      `json:"golden_passed,omitempty"`
	ModifiedSections []string   `json:"modified_sections,omitempty"`
	Version          int        `json:"version"`
	CreatedAt        time.Time  `json:"created_at"`
	TailoredAt       *time.Time `json:"tailored_at,omitempty"`
}

// CreateResume stores a new resume and returns its ID
func (db *DB) CreateResume(ctx context.Context, userID uuid.UUID, originalText, jobDescription, mode string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO resumes (user_id, original_text, job_description, mode, version)
		 VALUES ($1, $2, $3, $4, 1)
		 RETURNING id`,
		userID, originalText, jobDescription, mode,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create resume: %w", err)
	}
	return id, nil
}

// GetResume retrieves a resume by ID scoped to its owner. Returns nil when
// no matching row exists.
func (db *DB) GetResume(ctx context.Context, id, userID uuid.UUID) (*Resume, error) {
	var r Resume
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, original_text, modified_text, job_description, mode,
		        ats_score, jd_score, golden_passed, modified_sections, version,
		        created_at, tailored_at
		 FROM resumes WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&r.ID, &r.UserID, &r.OriginalText, &r.ModifiedText, &r.JobDescription, &r.Mode,
		&r.ATSScore, &r.JDScore, &r.GoldenPassed, &r.ModifiedSections, &r.Version,
		&r.CreatedAt, &r.TailoredAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}
	return &r, nil
}

// UpdateTailoredResume persists a completed tailoring result
func (db *DB) UpdateTailoredResume(ctx context.Context, id, userID uuid.UUID,
	modifiedText string, atsScore, jdScore int, goldenPassed bool,
	modifiedSections []string, version int) error {

	result, err := db.pool.Exec(ctx,
		`UPDATE resumes
		 SET modified_text = $1, ats_score = $2, jd_score = $3, golden_passed = $4,
		     modified_sections = $5, version = $6, tailored_at = NOW()
		 WHERE id = $7 AND user_id = $8`,
		modifiedText, atsScore, jdScore, goldenPassed, modifiedSections, version, id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tailored resume: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("resume not found: %s", id)
	}
	return nil
}
