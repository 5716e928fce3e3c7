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

// CardStore implements the store.CardStore interface using a PostgreSQL
// database as the storage backend.
type CardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewCardStore creates a new PostgreSQL implementation of the CardStore
// interface. It accepts a database connection or transaction managed by the
// caller. If logger is nil, the default logger is used.
func NewCardStore(db store.DBTX, logger *slog.Logger) *CardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &CardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure CardStore implements store.CardStore
var _ store.CardStore = (*CardStore)(nil)

// WithTx implements store.CardStore.WithTx.
func (s *CardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &CardStore{
		db:     tx,
		logger: s.logger,
	}
}

// CreateMultiple implements store.CardStore.CreateMultiple.
// Cards are inserted one by one; run within a transaction for atomicity.
func (s *CardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	query := `
		INSERT INTO cards (id, user_id, transcript_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, card := range cards {
		if err := card.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}

		_, err := s.db.ExecContext(ctx, query,
			card.ID, card.UserID, card.TranscriptID, card.Content,
			card.CreatedAt, card.UpdatedAt)
		if err != nil {
			return MapError(err)
		}
	}

	s.logger.Debug("created cards", slog.Int("count", len(cards)))
	return nil
}

// GetByID implements store.CardStore.GetByID.
func (s *CardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := `
		SELECT id, user_id, transcript_id, content, created_at, updated_at
		FROM cards
		WHERE id = $1`

	return s.scanCard(s.db.QueryRowContext(ctx, query, id))
}

// GetNextDue implements store.CardStore.GetNextDue.
// The next card is the one with the earliest due date at or before now;
// ties are broken by card ID for a stable order.
func (s *CardStore) GetNextDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (*domain.Card, error) {
	query := `
		SELECT c.id, c.user_id, c.transcript_id, c.content, c.created_at, c.updated_at
		FROM cards c
		JOIN scheduling_states s ON s.card_id = c.id AND s.user_id = c.user_id
		WHERE c.user_id = $1 AND s.due_at <= $2
		ORDER BY s.due_at ASC, c.id ASC
		LIMIT 1`

	return s.scanCard(s.db.QueryRowContext(ctx, query, userID, now))
}

// Delete implements store.CardStore.Delete. Scheduling state and review
// events are removed by the schema's ON DELETE CASCADE constraints.
func (s *CardStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "card")
}

func (s *CardStore) scanCard(row *sql.Row) (*domain.Card, error) {
	var card domain.Card
	err := row.Scan(&card.ID, &card.UserID, &card.TranscriptID, &card.Content,
		&card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		return nil, MapError(err)
	}

	return &card, nil
}
