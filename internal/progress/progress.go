// Package progress provides durable, queryable tailoring job progress:
// written by the orchestrator, polled by external callers.
package progress

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status tags a tailoring job's position in the state machine.
type Status string

// Lifecycle statuses. attempt_k and scoring_k are produced by AttemptStatus
// and ScoringStatus for k = 1..MaxAttempts.
const (
	StatusNotStarted  Status = "not_started"
	StatusStarted     Status = "started"
	StatusAnalyzing   Status = "analyzing"
	StatusAnalyzingJD Status = "analyzing_jd"
	StatusProcessing  Status = "processing"
	StatusCompleted   Status = "completed"
	StatusError       Status = "error"
)

// AttemptStatus returns the status tag for generation attempt k.
func AttemptStatus(k int) Status {
	return Status(fmt.Sprintf("attempt_%d", k))
}

// ScoringStatus returns the status tag for scoring attempt k.
func ScoringStatus(k int) Status {
	return Status(fmt.Sprintf("scoring_%d", k))
}

// Terminal reports whether a job in this status will not advance further.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// IsAttempt reports whether the status is an attempt_k or scoring_k tag.
func (s Status) IsAttempt() bool {
	return strings.HasPrefix(string(s), "attempt_") || strings.HasPrefix(string(s), "scoring_")
}

// Record describes where a tailoring job currently is.
type Record struct {
	Status         Status    `json:"status"`
	Progress       int       `json:"progress"`
	CurrentAttempt int       `json:"current_attempt"`
	MaxAttempts    int       `json:"max_attempts"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AttemptUnchanged passed as the currentAttempt argument of Update leaves
// the stored attempt counter as is.
const AttemptUnchanged = -1

// Store is the progress persistence contract. Update is an upsert and must
// be safe to call repeatedly without external locking; last write wins.
type Store interface {
	// Start creates or resets the record for a job.
	Start(ctx context.Context, jobID, ownerID uuid.UUID, maxAttempts int) error
	// Update overwrites status/progress, and the attempt counter unless
	// currentAttempt is AttemptUnchanged.
	Update(ctx context.Context, jobID, ownerID uuid.UUID, status Status, progress, currentAttempt int) error
	// Read returns the current record, or a default not_started record if
	// none exists yet.
	Read(ctx context.Context, jobID, ownerID uuid.UUID) (Record, error)
}

// startProgress is the percent a freshly started job reports.
const startProgress = 5
