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
	"github.com/lecturelab/study-api/internal/domain/srs"
	"github.com/lecturelab/study-api/internal/store"
)

// ScheduleStore implements the store.ScheduleStore interface using a
// PostgreSQL database as the storage backend.
//
// Scheduling rows are read with FOR UPDATE inside the grading transaction;
// the database serializes concurrent sessions for the same (user, card)
// pair so the scheduler itself never has to coordinate.
type ScheduleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewScheduleStore creates a new PostgreSQL implementation of the
// ScheduleStore interface. If logger is nil, the default logger is used.
func NewScheduleStore(db store.DBTX, logger *slog.Logger) *ScheduleStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ScheduleStore{
		db:     db,
		logger: logger.With(slog.String("component", "schedule_store")),
	}
}

// Ensure ScheduleStore implements store.ScheduleStore
var _ store.ScheduleStore = (*ScheduleStore)(nil)

// WithTx implements store.ScheduleStore.WithTx.
func (s *ScheduleStore) WithTx(tx *sql.Tx) store.ScheduleStore {
	return &ScheduleStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.ScheduleStore.Create.
func (s *ScheduleStore) Create(ctx context.Context, state *domain.SchedulingState) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO scheduling_states
			(user_id, card_id, interval_days, ease_factor, repetitions,
			 last_reviewed_at, due_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.db.ExecContext(ctx, query,
		state.UserID, state.CardID, state.IntervalDays, state.EaseFactor,
		state.Repetitions, nullableTime(state.LastReviewedAt), state.DueAt,
		state.CreatedAt, state.UpdatedAt)
	if err != nil {
		return MapError(err)
	}

	return nil
}

// Get implements store.ScheduleStore.Get.
func (s *ScheduleStore) Get(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.SchedulingState, error) {
	return s.get(ctx, userID, cardID, false)
}

// GetForUpdate implements store.ScheduleStore.GetForUpdate.
func (s *ScheduleStore) GetForUpdate(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.SchedulingState, error) {
	return s.get(ctx, userID, cardID, true)
}

func (s *ScheduleStore) get(
	ctx context.Context,
	userID, cardID uuid.UUID,
	forUpdate bool,
) (*domain.SchedulingState, error) {
	query := `
		SELECT user_id, card_id, interval_days, ease_factor, repetitions,
		       last_reviewed_at, due_at, created_at, updated_at
		FROM scheduling_states
		WHERE user_id = $1 AND card_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var (
		raw            srs.RawState
		intervalDays   int
		easeFactor     float64
		repetitions    int
		lastReviewedAt sql.NullTime
		createdAt      time.Time
		updatedAt      time.Time
	)
	err := s.db.QueryRowContext(ctx, query, userID, cardID).Scan(
		&raw.UserID, &raw.CardID, &intervalDays, &easeFactor,
		&repetitions, &lastReviewedAt, &raw.DueAt,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrScheduleNotFound
		}
		return nil, MapError(err)
	}

	if lastReviewedAt.Valid {
		raw.LastReviewedAt = lastReviewedAt.Time
	}
	raw.IntervalDays = intervalDays
	raw.EaseFactor = easeFactor
	raw.Repetitions = repetitions

	// ease_factor is DOUBLE PRECISION, which admits NaN and Infinity;
	// malformed rows are repaired on read rather than reaching the scheduler.
	state := srs.Normalize(raw)
	state.CreatedAt = createdAt
	state.UpdatedAt = updatedAt

	return &state, nil
}

// Update implements store.ScheduleStore.Update.
func (s *ScheduleStore) Update(ctx context.Context, state *domain.SchedulingState) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE scheduling_states
		SET interval_days = $1, ease_factor = $2, repetitions = $3,
		    last_reviewed_at = $4, due_at = $5, updated_at = $6
		WHERE user_id = $7 AND card_id = $8`

	result, err := s.db.ExecContext(ctx, query,
		state.IntervalDays, state.EaseFactor, state.Repetitions,
		nullableTime(state.LastReviewedAt), state.DueAt, state.UpdatedAt,
		state.UserID, state.CardID)
	if err != nil {
		return MapError(err)
	}

	return CheckRowsAffected(result, "scheduling state")
}

// nullableTime converts a zero time.Time into a SQL NULL so "never
// reviewed" is stored as NULL rather than the zero timestamp.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
