package study

import (
	"errors"
	"fmt"
)

// Common error types for the study service
var (
	// ErrCardNotFound indicates that the card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrInvalidAttempt indicates that the attempt outcome is malformed.
	ErrInvalidAttempt = errors.New("invalid attempt")

	// ErrInvalidRequest indicates a missing learner or card ID.
	ErrInvalidRequest = errors.New("invalid request")
)

// ServiceError wraps errors from the study service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "record_attempt", "select_session")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewRecordAttemptError returns a new ServiceError for the record_attempt operation.
func NewRecordAttemptError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "record_attempt",
		Message:   message,
		Err:       err,
	}
}

// NewSelectSessionError returns a new ServiceError for the select_session operation.
func NewSelectSessionError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "select_session",
		Message:   message,
		Err:       err,
	}
}
