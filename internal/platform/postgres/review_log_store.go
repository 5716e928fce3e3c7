package postgres

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lecturelab/study-api/internal/domain"
	"github.com/lecturelab/study-api/internal/store"
)

// ReviewLogStore implements the store.ReviewLogStore interface using a
// PostgreSQL database as the storage backend. The table is append-only.
type ReviewLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReviewLogStore creates a new PostgreSQL implementation of the
// ReviewLogStore interface. If logger is nil, the default logger is used.
func NewReviewLogStore(db store.DBTX, logger *slog.Logger) *ReviewLogStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ReviewLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_log_store")),
	}
}

// Ensure ReviewLogStore implements store.ReviewLogStore
var _ store.ReviewLogStore = (*ReviewLogStore)(nil)

// Append implements store.ReviewLogStore.Append.
func (s *ReviewLogStore) Append(ctx context.Context, event *domain.ReviewEvent) error {
	query := `
		INSERT INTO review_events
			(id, user_id, card_id, quality,
			 prev_interval_days, next_interval_days,
			 prev_ease_factor, next_ease_factor,
			 prev_repetitions, next_repetitions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.db.ExecContext(ctx, query,
		event.ID, event.UserID, event.CardID, event.Quality,
		event.PrevIntervalDays, event.NextIntervalDays,
		event.PrevEaseFactor, event.NextEaseFactor,
		event.PrevRepetitions, event.NextRepetitions, event.CreatedAt)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// ListByCard implements store.ReviewLogStore.ListByCard.
func (s *ReviewLogStore) ListByCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	limit int,
) ([]*domain.ReviewEvent, error) {
	query := `
		SELECT id, user_id, card_id, quality,
		       prev_interval_days, next_interval_days,
		       prev_ease_factor, next_ease_factor,
		       prev_repetitions, next_repetitions, created_at
		FROM review_events
		WHERE user_id = $1 AND card_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3`

	rows, err := s.db.QueryContext(ctx, query, userID, cardID, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var events []*domain.ReviewEvent
	for rows.Next() {
		var event domain.ReviewEvent
		err := rows.Scan(
			&event.ID, &event.UserID, &event.CardID, &event.Quality,
			&event.PrevIntervalDays, &event.NextIntervalDays,
			&event.PrevEaseFactor, &event.NextEaseFactor,
			&event.PrevRepetitions, &event.NextRepetitions, &event.CreatedAt)
		if err != nil {
			return nil, MapError(err)
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return events, nil
}
