package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// ErrResumeNotFound indicates the resume does not exist or belongs to
// another user.
type ErrResumeNotFound struct {
	ResumeID uuid.UUID
}

func (e *ErrResumeNotFound) Error() string {
	return fmt.Sprintf("resume not found: %s", e.ResumeID)
}

// ErrTailoringInProgress indicates a tailoring job for the resume is
// already running.
type ErrTailoringInProgress struct {
	ResumeID uuid.UUID
}

func (e *ErrTailoringInProgress) Error() string {
	return fmt.Sprintf("tailoring already in progress for resume: %s", e.ResumeID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrResumeNotFound:
		return http.StatusNotFound
	case *ErrTailoringInProgress:
		return http.StatusConflict
	case *ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
