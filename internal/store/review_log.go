package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/lecturelab/study-api/internal/domain"
)

// ReviewLogStore defines the interface for the append-only review history.
// Appends are best-effort from the caller's point of view: a failed append
// must never abort a grading operation, so this store is deliberately kept
// outside the grading transaction.
type ReviewLogStore interface {
	// Append records a grading event.
	Append(ctx context.Context, event *domain.ReviewEvent) error

	// ListByCard returns the recorded grading events for a card, newest
	// first, up to limit entries.
	ListByCard(ctx context.Context, userID, cardID uuid.UUID, limit int) ([]*domain.ReviewEvent, error)
}
