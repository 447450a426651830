package progress

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ReadDefault(t *testing.T) {
	s := NewMemoryStore()

	rec, err := s.Read(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, StatusNotStarted, rec.Status)
	assert.Equal(t, 0, rec.Progress)
}

func TestMemoryStore_StartThenRead(t *testing.T) {
	s := NewMemoryStore()
	jobID, ownerID := uuid.New(), uuid.New()

	require.NoError(t, s.Start(context.Background(), jobID, ownerID, 3))

	rec, err := s.Read(context.Background(), jobID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, StatusStarted, rec.Status)
	assert.Equal(t, 5, rec.Progress)
	assert.Equal(t, 0, rec.CurrentAttempt)
	assert.Equal(t, 3, rec.MaxAttempts)
}

func TestMemoryStore_UpdateUpsertsWithoutStart(t *testing.T) {
	s := NewMemoryStore()
	jobID, ownerID := uuid.New(), uuid.New()

	require.NoError(t, s.Update(context.Background(), jobID, ownerID, StatusAnalyzing, 10, AttemptUnchanged))

	rec, err := s.Read(context.Background(), jobID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, StatusAnalyzing, rec.Status)
	assert.Equal(t, 10, rec.Progress)
}

func TestMemoryStore_AttemptCounterOnlyMovesWhenGiven(t *testing.T) {
	s := NewMemoryStore()
	jobID, ownerID := uuid.New(), uuid.New()
	ctx := context.Background()

	require.NoError(t, s.Start(ctx, jobID, ownerID, 3))
	require.NoError(t, s.Update(ctx, jobID, ownerID, AttemptStatus(1), 20, 1))
	require.NoError(t, s.Update(ctx, jobID, ownerID, ScoringStatus(1), 30, AttemptUnchanged))

	rec, err := s.Read(ctx, jobID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, ScoringStatus(1), rec.Status)
	assert.Equal(t, 1, rec.CurrentAttempt)
}

func TestMemoryStore_OwnerScoping(t *testing.T) {
	s := NewMemoryStore()
	jobID := uuid.New()
	ownerA, ownerB := uuid.New(), uuid.New()
	ctx := context.Background()

	require.NoError(t, s.Start(ctx, jobID, ownerA, 3))

	rec, err := s.Read(ctx, jobID, ownerB)
	require.NoError(t, err)
	assert.Equal(t, StatusNotStarted, rec.Status)
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusError.Terminal())
	assert.False(t, StatusStarted.Terminal())
	assert.False(t, AttemptStatus(2).Terminal())
}

func TestAttemptStatusTags(t *testing.T) {
	assert.Equal(t, Status("attempt_2"), AttemptStatus(2))
	assert.Equal(t, Status("scoring_3"), ScoringStatus(3))
	assert.True(t, AttemptStatus(1).IsAttempt())
	assert.True(t, ScoringStatus(1).IsAttempt())
	assert.False(t, StatusAnalyzing.IsAttempt())
}
