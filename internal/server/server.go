// Package server provides the HTTP REST API for the resume tailor.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/progress"
	"github.com/jonathan/resume-tailor/internal/server/middleware"
	"github.com/jonathan/resume-tailor/internal/tailoring"
	"github.com/jonathan/resume-tailor/internal/types"
)

// ResumeStore is the resume read access the handlers need.
type ResumeStore interface {
	GetResume(ctx context.Context, id, userID uuid.UUID) (*db.Resume, error)
}

// AttemptLister lists the recorded attempts of a resume.
type AttemptLister interface {
	ListAttempts(ctx context.Context, resumeID uuid.UUID) ([]types.Attempt, error)
}

// TailorRunner executes one tailoring job to completion.
type TailorRunner interface {
	Run(ctx context.Context, job tailoring.Job) (tailoring.Result, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	resumes    ResumeStore
	attempts   AttemptLister
	progress   progress.Store
	runner     TailorRunner
	validate   *validator.Validate
	jwtService *JWTService
}

// Config holds server configuration
type Config struct {
	Port int
}

// Deps holds the already-wired components the server serves.
type Deps struct {
	Resumes    ResumeStore
	Attempts   AttemptLister
	Progress   progress.Store
	Runner     TailorRunner
	JWTService *JWTService
	Logger     *zap.Logger
}

// New creates a new server instance
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		logger:     deps.Logger,
		resumes:    deps.Resumes,
		attempts:   deps.Attempts,
		progress:   deps.Progress,
		runner:     deps.Runner,
		validate:   validator.New(),
		jwtService: deps.JWTService,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	authed := middleware.Auth(s.jwtService.AsTokenValidator())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("POST /resumes/{id}/tailor", authed(http.HandlerFunc(s.handleStartTailoring)))
	mux.Handle("GET /resumes/{id}/tailoring-progress", authed(http.HandlerFunc(s.handleGetProgress)))
	mux.Handle("GET /resumes/{id}/attempts", authed(http.HandlerFunc(s.handleListAttempts)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for requests and blocks until shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-stop
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
