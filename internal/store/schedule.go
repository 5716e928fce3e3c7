package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/lecturelab/study-api/internal/domain"
)

// ScheduleStore defines the interface for scheduling-state persistence.
// There is exactly one SchedulingState per (user, card) pair; it is created
// when the card enters the review system and mutated once per grading event.
type ScheduleStore interface {
	// Create saves a new scheduling state entry.
	// Returns an error if the entry already exists.
	Create(ctx context.Context, state *domain.SchedulingState) error

	// Get retrieves the scheduling state for a user and card without any
	// row locking. Returns ErrScheduleNotFound if the entry does not exist.
	Get(ctx context.Context, userID, cardID uuid.UUID) (*domain.SchedulingState, error)

	// GetForUpdate retrieves the scheduling state with a row-level lock
	// (SELECT ... FOR UPDATE). Use it inside the grading transaction so
	// concurrent sessions on other devices cannot interleave updates.
	// Returns ErrScheduleNotFound if the entry does not exist.
	GetForUpdate(ctx context.Context, userID, cardID uuid.UUID) (*domain.SchedulingState, error)

	// Update modifies an existing scheduling state entry, identified by its
	// UserID and CardID fields.
	// Returns ErrScheduleNotFound if the entry does not exist.
	Update(ctx context.Context, state *domain.SchedulingState) error

	// WithTx returns a ScheduleStore bound to the provided transaction.
	WithTx(tx *sql.Tx) ScheduleStore
}
