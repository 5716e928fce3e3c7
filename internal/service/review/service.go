package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lecturelab/study-api/internal/domain"
)

// ReviewService provides the operations of a review session: fetching the
// next due card, grading it, and managing a card's place in the schedule.
type ReviewService interface {
	// GetNextCard retrieves the next card due for review for a user, ordered
	// by due date. Returns ErrNoCardsDue when nothing is due.
	GetNextCard(ctx context.Context, userID uuid.UUID) (*domain.Card, error)

	// GradeCard records a quality grade (0-5) for a card and advances its
	// schedule. The scheduling update is computed exactly once per call and
	// persisted transactionally; the review history entry is appended
	// best-effort afterwards and never fails the grading.
	//
	// Returns the updated scheduling state on success. Failures of the
	// primary scheduling write are wrapped in *ScheduleWriteError so callers
	// can distinguish retryable persistence faults from terminal errors such
	// as ErrCardNotFound or ErrCardNotOwned.
	GradeCard(
		ctx context.Context,
		userID uuid.UUID,
		cardID uuid.UUID,
		quality int,
	) (*domain.SchedulingState, error)

	// PostponeCard pushes a card's due date forward by the given number of
	// days without touching its interval, ease factor, or repetition count.
	PostponeCard(
		ctx context.Context,
		userID uuid.UUID,
		cardID uuid.UUID,
		days int,
	) (*domain.SchedulingState, error)

	// DeleteCard removes a card the user owns. Scheduling state and review
	// history go with it.
	DeleteCard(ctx context.Context, userID uuid.UUID, cardID uuid.UUID) error
}

// Common error types for ReviewService
var (
	// ErrNoCardsDue indicates that the user has no cards due for review.
	ErrNoCardsDue = errors.New("no cards due for review")

	// ErrCardNotFound indicates that the card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrCardNotOwned indicates that the user does not own the card.
	ErrCardNotOwned = errors.New("unauthorized access: card not owned by user")

	// ErrInvalidGrade indicates a quality grade outside the 0-5 range.
	ErrInvalidGrade = errors.New("invalid quality grade")

	// ErrInvalidPostponeDays indicates a non-positive postpone length.
	ErrInvalidPostponeDays = errors.New("postpone days must be positive")
)

// ServiceError wraps errors from the review service with additional context,
// letting consumers differentiate failures with errors.As instead of string
// matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "grade_card")
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

// ScheduleWriteError indicates the primary scheduling-state write failed.
// The grading computation itself succeeded; the same computed state can be
// retried safely, so callers should treat this as retryable.
type ScheduleWriteError struct {
	CardID uuid.UUID
	Err    error
}

// Error implements the error interface for ScheduleWriteError.
func (e *ScheduleWriteError) Error() string {
	return fmt.Sprintf("failed to persist scheduling state for card %s: %v", e.CardID, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ScheduleWriteError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the error is a transient persistence fault
// that callers may retry.
func IsRetryable(err error) bool {
	var writeErr *ScheduleWriteError
	return errors.As(err, &writeErr)
}
