package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/progress"
	"github.com/jonathan/resume-tailor/internal/server/middleware"
	"github.com/jonathan/resume-tailor/internal/tailoring"
	"github.com/jonathan/resume-tailor/internal/types"
)

// tailorRequest is the optional body of POST /resumes/{id}/tailor. An
// absent body runs with the mode stored on the resume.
type tailorRequest struct {
	Mode string `json:"mode" validate:"omitempty,oneof=basic personalized aggressive conservative balanced"`
}

type tailorResponse struct {
	JobID  uuid.UUID `json:"job_id"`
	Status string    `json:"status"`
}

// handleStartTailoring kicks off a tailoring job for a resume. The request
// returns immediately; callers poll the progress endpoint.
func (s *Server) handleStartTailoring(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	resumeID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid resume ID")
		return
	}

	resume, err := s.resumes.GetResume(r.Context(), resumeID, userID)
	if err != nil {
		s.logger.Error("failed to load resume", zap.String("resume_id", resumeID.String()), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to load resume")
		return
	}
	if resume == nil {
		notFound := &ErrResumeNotFound{ResumeID: resumeID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	var req tailorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.progress.Read(r.Context(), resumeID, userID)
	if err != nil {
		s.logger.Error("failed to read progress", zap.String("resume_id", resumeID.String()), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to read progress")
		return
	}
	if rec.Status != "" && rec.Status != progress.StatusNotStarted && !rec.Status.Terminal() {
		inProgress := &ErrTailoringInProgress{ResumeID: resumeID}
		s.errorResponse(w, HTTPStatus(inProgress), inProgress.Error())
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = resume.Mode
	}

	job := tailoring.Job{
		ID:             resume.ID,
		OwnerID:        userID,
		ResumeText:     resume.OriginalText,
		JobDescription: resume.JobDescription,
		Mode:           types.NormalizeMode(mode),
		Version:        resume.Version,
	}

	// The job outlives the request; it runs on a background context and
	// reports through the progress store.
	go func() {
		if _, err := s.runner.Run(context.Background(), job); err != nil {
			s.logger.Error("tailoring job failed",
				zap.String("job_id", job.ID.String()),
				zap.Error(err))
		}
	}()

	s.jsonResponse(w, http.StatusAccepted, tailorResponse{JobID: resume.ID, Status: "started"})
}

// handleGetProgress returns the current progress record for a resume's
// tailoring job.
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	resumeID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid resume ID")
		return
	}

	rec, err := s.progress.Read(r.Context(), resumeID, userID)
	if err != nil {
		s.logger.Error("failed to read progress", zap.String("resume_id", resumeID.String()), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to read progress")
		return
	}

	s.jsonResponse(w, http.StatusOK, rec)
}

// handleListAttempts returns the recorded attempts of a resume's runs.
func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	resumeID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid resume ID")
		return
	}

	resume, err := s.resumes.GetResume(r.Context(), resumeID, userID)
	if err != nil {
		s.logger.Error("failed to load resume", zap.String("resume_id", resumeID.String()), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to load resume")
		return
	}
	if resume == nil {
		notFound := &ErrResumeNotFound{ResumeID: resumeID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	attempts, err := s.attempts.ListAttempts(r.Context(), resumeID)
	if err != nil {
		s.logger.Error("failed to list attempts", zap.String("resume_id", resumeID.String()), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "failed to list attempts")
		return
	}
	if attempts == nil {
		attempts = []types.Attempt{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"attempts": attempts})
}
