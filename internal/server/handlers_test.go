package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/progress"
	"github.com/jonathan/resume-tailor/internal/server/middleware"
	"github.com/jonathan/resume-tailor/internal/tailoring"
	"github.com/jonathan/resume-tailor/internal/types"
)

type fakeResumes struct {
	byID map[uuid.UUID]*db.Resume
}

func (f *fakeResumes) GetResume(_ context.Context, id, userID uuid.UUID) (*db.Resume, error) {
	r, ok := f.byID[id]
	if !ok || r.UserID != userID {
		return nil, nil
	}
	return r, nil
}

type fakeAttempts struct {
	attempts []types.Attempt
}

func (f *fakeAttempts) ListAttempts(_ context.Context, _ uuid.UUID) ([]types.Attempt, error) {
	return f.attempts, nil
}

type fakeRunner struct {
	mu   sync.Mutex
	jobs []tailoring.Job
	ran  chan struct{}
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{ran: make(chan struct{}, 8)}
}

func (f *fakeRunner) Run(_ context.Context, job tailoring.Job) (tailoring.Result, error) {
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	f.mu.Unlock()
	f.ran <- struct{}{}
	return tailoring.Result{}, nil
}

func (f *fakeRunner) waitForRun(t *testing.T) tailoring.Job {
	t.Helper()
	select {
	case <-f.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("tailoring job was never started")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs[len(f.jobs)-1]
}

func testServer(resumes *fakeResumes, attempts *fakeAttempts, store progress.Store, runner TailorRunner) *Server {
	return &Server{
		logger:   zap.NewNop(),
		resumes:  resumes,
		attempts: attempts,
		progress: store,
		runner:   runner,
		validate: validator.New(),
	}
}

func authedRequest(method, target string, body []byte, resumeID, userID uuid.UUID) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewReader(body))
	r.SetPathValue("id", resumeID.String())
	return r.WithContext(middleware.WithUserID(r.Context(), userID))
}

func storedResume(userID uuid.UUID) *db.Resume {
	return &db.Resume{
		ID:             uuid.New(),
		UserID:         userID,
		OriginalText:   "SUMMARY\nAn engineer.\n\nEXPERIENCE\n- Did things.",
		JobDescription: "We need an engineer.",
		Mode:           "personalized",
		Version:        1,
	}
}

func TestStartTailoring(t *testing.T) {
	userID := uuid.New()
	resume := storedResume(userID)
	runner := newFakeRunner()
	s := testServer(&fakeResumes{byID: map[uuid.UUID]*db.Resume{resume.ID: resume}},
		&fakeAttempts{}, progress.NewMemoryStore(), runner)

	w := httptest.NewRecorder()
	s.handleStartTailoring(w, authedRequest(http.MethodPost, "/resumes/"+resume.ID.String()+"/tailor",
		[]byte(`{"mode":"aggressive"}`), resume.ID, userID))

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp tailorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, resume.ID, resp.JobID)
	assert.Equal(t, "started", resp.Status)

	job := runner.waitForRun(t)
	assert.Equal(t, resume.ID, job.ID)
	assert.Equal(t, userID, job.OwnerID)
	assert.Equal(t, types.ModeAggressive, job.Mode)
	assert.Equal(t, resume.OriginalText, job.ResumeText)
}

func TestStartTailoring_DefaultsToStoredMode(t *testing.T) {
	userID := uuid.New()
	resume := storedResume(userID)
	runner := newFakeRunner()
	s := testServer(&fakeResumes{byID: map[uuid.UUID]*db.Resume{resume.ID: resume}},
		&fakeAttempts{}, progress.NewMemoryStore(), runner)

	w := httptest.NewRecorder()
	s.handleStartTailoring(w, authedRequest(http.MethodPost, "/resumes/"+resume.ID.String()+"/tailor",
		nil, resume.ID, userID))

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, types.ModePersonalized, runner.waitForRun(t).Mode)
}

func TestStartTailoring_ResumeNotFound(t *testing.T) {
	s := testServer(&fakeResumes{byID: map[uuid.UUID]*db.Resume{}},
		&fakeAttempts{}, progress.NewMemoryStore(), newFakeRunner())

	resumeID := uuid.New()
	w := httptest.NewRecorder()
	s.handleStartTailoring(w, authedRequest(http.MethodPost, "/resumes/"+resumeID.String()+"/tailor",
		nil, resumeID, uuid.New()))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStartTailoring_OtherUsersResumeIsNotFound(t *testing.T) {
	owner := uuid.New()
	resume := storedResume(owner)
	s := testServer(&fakeResumes{byID: map[uuid.UUID]*db.Resume{resume.ID: resume}},
		&fakeAttempts{}, progress.NewMemoryStore(), newFakeRunner())

	w := httptest.NewRecorder()
	s.handleStartTailoring(w, authedRequest(http.MethodPost, "/resumes/"+resume.ID.String()+"/tailor",
		nil, resume.ID, uuid.New()))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStartTailoring_ConflictWhileRunning(t *testing.T) {
	userID := uuid.New()
	resume := storedResume(userID)
	store := progress.NewMemoryStore()
	require.NoError(t, store.Start(context.Background(), resume.ID, userID, 3))
	require.NoError(t, store.Update(context.Background(), resume.ID, userID, progress.AttemptStatus(1), 26, 1))

	s := testServer(&fakeResumes{byID: map[uuid.UUID]*db.Resume{resume.ID: resume}},
		&fakeAttempts{}, store, newFakeRunner())

	w := httptest.NewRecorder()
	s.handleStartTailoring(w, authedRequest(http.MethodPost, "/resumes/"+resume.ID.String()+"/tailor",
		nil, resume.ID, userID))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStartTailoring_CompletedRunCanBeRerun(t *testing.T) {
	userID := uuid.New()
	resume := storedResume(userID)
	store := progress.NewMemoryStore()
	require.NoError(t, store.Update(context.Background(), resume.ID, userID, progress.StatusCompleted, 100, progress.AttemptUnchanged))

	runner := newFakeRunner()
	s := testServer(&fakeResumes{byID: map[uuid.UUID]*db.Resume{resume.ID: resume}},
		&fakeAttempts{}, store, runner)

	w := httptest.NewRecorder()
	s.handleStartTailoring(w, authedRequest(http.MethodPost, "/resumes/"+resume.ID.String()+"/tailor",
		nil, resume.ID, userID))

	assert.Equal(t, http.StatusAccepted, w.Code)
	runner.waitForRun(t)
}

func TestStartTailoring_InvalidMode(t *testing.T) {
	userID := uuid.New()
	resume := storedResume(userID)
	s := testServer(&fakeResumes{byID: map[uuid.UUID]*db.Resume{resume.ID: resume}},
		&fakeAttempts{}, progress.NewMemoryStore(), newFakeRunner())

	w := httptest.NewRecorder()
	s.handleStartTailoring(w, authedRequest(http.MethodPost, "/resumes/"+resume.ID.String()+"/tailor",
		[]byte(`{"mode":"extreme"}`), resume.ID, userID))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStartTailoring_InvalidResumeID(t *testing.T) {
	s := testServer(&fakeResumes{}, &fakeAttempts{}, progress.NewMemoryStore(), newFakeRunner())

	r := httptest.NewRequest(http.MethodPost, "/resumes/not-a-uuid/tailor", nil)
	r.SetPathValue("id", "not-a-uuid")
	r = r.WithContext(middleware.WithUserID(r.Context(), uuid.New()))

	w := httptest.NewRecorder()
	s.handleStartTailoring(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProgress(t *testing.T) {
	userID := uuid.New()
	resumeID := uuid.New()
	store := progress.NewMemoryStore()
	require.NoError(t, store.Start(context.Background(), resumeID, userID, 3))
	require.NoError(t, store.Update(context.Background(), resumeID, userID, progress.ScoringStatus(2), 61, 2))

	s := testServer(&fakeResumes{}, &fakeAttempts{}, store, newFakeRunner())

	w := httptest.NewRecorder()
	s.handleGetProgress(w, authedRequest(http.MethodGet, "/resumes/"+resumeID.String()+"/tailoring-progress",
		nil, resumeID, userID))

	require.Equal(t, http.StatusOK, w.Code)

	var rec progress.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, progress.ScoringStatus(2), rec.Status)
	assert.Equal(t, 61, rec.Progress)
	assert.Equal(t, 2, rec.CurrentAttempt)
}

func TestGetProgress_UnknownJobIsNotStarted(t *testing.T) {
	s := testServer(&fakeResumes{}, &fakeAttempts{}, progress.NewMemoryStore(), newFakeRunner())

	resumeID := uuid.New()
	w := httptest.NewRecorder()
	s.handleGetProgress(w, authedRequest(http.MethodGet, "/resumes/"+resumeID.String()+"/tailoring-progress",
		nil, resumeID, uuid.New()))

	require.Equal(t, http.StatusOK, w.Code)

	var rec progress.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, progress.StatusNotStarted, rec.Status)
}

func TestListAttempts(t *testing.T) {
	userID := uuid.New()
	resume := storedResume(userID)
	attempts := &fakeAttempts{attempts: []types.Attempt{
		{Number: 1, ATSScore: 78, JDScore: 82},
		{Number: 2, ATSScore: 90, JDScore: 88, GoldenPassed: true},
	}}
	s := testServer(&fakeResumes{byID: map[uuid.UUID]*db.Resume{resume.ID: resume}},
		attempts, progress.NewMemoryStore(), newFakeRunner())

	w := httptest.NewRecorder()
	s.handleListAttempts(w, authedRequest(http.MethodGet, "/resumes/"+resume.ID.String()+"/attempts",
		nil, resume.ID, userID))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Attempts []types.Attempt `json:"attempts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Attempts, 2)
	assert.Equal(t, 90, resp.Attempts[1].ATSScore)
}

func TestListAttempts_EmptyIsNotNull(t *testing.T) {
	userID := uuid.New()
	resume := storedResume(userID)
	s := testServer(&fakeResumes{byID: map[uuid.UUID]*db.Resume{resume.ID: resume}},
		&fakeAttempts{}, progress.NewMemoryStore(), newFakeRunner())

	w := httptest.NewRecorder()
	s.handleListAttempts(w, authedRequest(http.MethodGet, "/resumes/"+resume.ID.String()+"/attempts",
		nil, resume.ID, userID))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"attempts":[]`)
}
