package usecase

import (
	"errors"
	"fmt"
)

// Sentinel outcomes of the synchronous request path. Busy conditions
// are retryable signals, not failures; nothing is mutated when they
// are returned.
var (
	// ErrNotFound marks a referenced entity that does not exist or is
	// soft-deleted.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyRunning is returned when a process is already in the
	// processing state.
	ErrAlreadyRunning = errors.New("evaluation is still running")

	// ErrSystemBusy is returned when the admission ceiling is reached.
	ErrSystemBusy = errors.New("system is busy, try again later")
)

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ExtractionError reports that a file could not be converted to text.
// It is surfaced to the submitting request and leaves the process
// untouched.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return "failed to extract text from file: " + e.Err.Error()
}

func (e *ExtractionError) Unwrap() error { return e.Err }
