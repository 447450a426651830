package progress

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for CLI runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory progress store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		now:     time.Now,
	}
}

func key(jobID, ownerID uuid.UUID) string {
	return jobID.String() + "|" + ownerID.String()
}

// Start creates or resets the record for a job.
func (s *MemoryStore) Start(_ context.Context, jobID, ownerID uuid.UUID, maxAttempts int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key(jobID, ownerID)] = Record{
		Status:      StatusStarted,
		Progress:    startProgress,
		MaxAttempts: maxAttempts,
		UpdatedAt:   s.now(),
	}
	return nil
}

// Update upserts the record; last write wins.
func (s *MemoryStore) Update(_ context.Context, jobID, ownerID uuid.UUID, status Status, progressPct, currentAttempt int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.records[key(jobID, ownerID)]
	rec.Status = status
	rec.Progress = progressPct
	if currentAttempt != AttemptUnchanged {
		rec.CurrentAttempt = currentAttempt
	}
	rec.UpdatedAt = s.now()
	s.records[key(jobID, ownerID)] = rec
	return nil
}

// Read returns the stored record or the not_started default.
func (s *MemoryStore) Read(_ context.Context, jobID, ownerID uuid.UUID) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[key(jobID, ownerID)]; ok {
		return rec, nil
	}
	return Record{Status: StatusNotStarted, Progress: 0}, nil
}
