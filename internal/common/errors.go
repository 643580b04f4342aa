package common

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

// Pipeline error taxonomy. None of these is fatal to a batch.
var (
	// ErrDocumentMissing: no source document at the expected location; treated as empty text.
	ErrDocumentMissing = errors.New("document missing")
	// ErrExtractionFailure: the text adapter failed or produced unusable output; treated as empty text.
	ErrExtractionFailure = errors.New("text extraction failed")
	// ErrFieldNotFound: no rule matched or every match was rejected; recorded as a sentinel.
	ErrFieldNotFound = errors.New("field not found")
	// ErrCandidateTask: a candidate's unit of work failed; the candidate gets a FAILED record.
	ErrCandidateTask = errors.New("candidate task failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ErrorCode classifies err for logs. Only sentinels and stdlib error types are
// inspected, never message text.
func ErrorCode(err error) string {
	var appErr *AppError
	var pathErr *os.PathError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &appErr):
		return appErr.Code
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "CANCELED"
	case errors.Is(err, ErrDocumentMissing):
		return "DOCUMENT_MISSING"
	case errors.Is(err, ErrExtractionFailure):
		return "EXTRACTION_FAILURE"
	case errors.Is(err, ErrFieldNotFound):
		return "FIELD_NOT_FOUND"
	case errors.Is(err, ErrCandidateTask):
		return "CANDIDATE_TASK_FAILURE"
	case errors.As(err, &pathErr):
		return "IO"
	default:
		return "UNKNOWN"
	}
}
