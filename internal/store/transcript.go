package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/lecturelab/study-api/internal/domain"
)

// TranscriptStore defines the interface for transcript data persistence.
type TranscriptStore interface {
	// Create saves a new transcript.
	// Returns validation errors from the domain Transcript if data is invalid.
	Create(ctx context.Context, transcript *domain.Transcript) error

	// GetByID retrieves a transcript by its unique ID.
	// Returns ErrTranscriptNotFound if the transcript does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transcript, error)

	// UpdateStatus sets the card-generation status of a transcript.
	// Returns ErrTranscriptNotFound if the transcript does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TranscriptStatus) error

	// WithTx returns a TranscriptStore bound to the provided transaction.
	WithTx(tx *sql.Tx) TranscriptStore
}
