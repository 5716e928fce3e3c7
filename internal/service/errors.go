// Package service holds the application services that sit between the HTTP
// handlers (or background tasks) and the stores: transcript ingestion and
// card creation.
package service

import (
	"errors"
	"fmt"
)

// Common sentinel errors for the service layer
var (
	// ErrTranscriptNotFound indicates that the transcript does not exist
	ErrTranscriptNotFound = errors.New("transcript not found")

	// ErrCardNotFound indicates that the card does not exist
	ErrCardNotFound = errors.New("card not found")
)

// Error wraps service-layer failures with the operation that produced them,
// so consumers can branch with errors.As instead of string matching.
type Error struct {
	// Operation is the operation that failed (e.g., "create_transcript")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}
