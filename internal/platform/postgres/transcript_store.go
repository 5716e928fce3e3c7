package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lecturelab/study-api/internal/domain"
	"github.com/lecturelab/study-api/internal/store"
)

// TranscriptStore implements the store.TranscriptStore interface using a
// PostgreSQL database as the storage backend.
type TranscriptStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTranscriptStore creates a new PostgreSQL implementation of the
// TranscriptStore interface. If logger is nil, the default logger is used.
func NewTranscriptStore(db store.DBTX, logger *slog.Logger) *TranscriptStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &TranscriptStore{
		db:     db,
		logger: logger.With(slog.String("component", "transcript_store")),
	}
}

// Ensure TranscriptStore implements store.TranscriptStore
var _ store.TranscriptStore = (*TranscriptStore)(nil)

// WithTx implements store.TranscriptStore.WithTx.
func (s *TranscriptStore) WithTx(tx *sql.Tx) store.TranscriptStore {
	return &TranscriptStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TranscriptStore.Create.
func (s *TranscriptStore) Create(ctx context.Context, transcript *domain.Transcript) error {
	if err := transcript.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO transcripts (id, user_id, title, text, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.ExecContext(ctx, query,
		transcript.ID, transcript.UserID, transcript.Title, transcript.Text,
		transcript.Status, transcript.CreatedAt, transcript.UpdatedAt)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// GetByID implements store.TranscriptStore.GetByID.
func (s *TranscriptStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transcript, error) {
	query := `
		SELECT id, user_id, title, text, status, created_at, updated_at
		FROM transcripts
		WHERE id = $1`

	var transcript domain.Transcript
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&transcript.ID, &transcript.UserID, &transcript.Title, &transcript.Text,
		&transcript.Status, &transcript.CreatedAt, &transcript.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTranscriptNotFound
		}
		return nil, MapError(err)
	}

	return &transcript, nil
}

// UpdateStatus implements store.TranscriptStore.UpdateStatus.
func (s *TranscriptStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.TranscriptStatus,
) error {
	query := `
		UPDATE transcripts
		SET status = $1, updated_at = $2
		WHERE id = $3`

	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "transcript")
}
