package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/lecturelab/study-api/internal/domain"
)

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// CreateMultiple saves multiple cards to the store. Run it within a
	// transaction (WithTx + RunInTransaction) so card creation stays atomic.
	// Returns validation errors if any card data is invalid.
	CreateMultiple(ctx context.Context, cards []*domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetNextDue retrieves the user's card with the earliest scheduling due
	// date at or before now. Returns ErrCardNotFound when nothing is due.
	GetNextDue(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.Card, error)

	// Delete removes a card from the store by its ID. Associated scheduling
	// state and review events are removed by ON DELETE CASCADE constraints.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a CardStore bound to the provided transaction.
	WithTx(tx *sql.Tx) CardStore
}
