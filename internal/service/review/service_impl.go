package review

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
	"github.com/lecturelab/study-api/internal/platform/logger"
	"github.com/lecturelab/study-api/internal/store"
)

// scheduleWriteAttempts is how many times the primary scheduling write is
// attempted before giving up. The scheduler output is computed once and every
// attempt persists the same state.
const scheduleWriteAttempts = 3

// Verify interface compliance at compile time
var _ ReviewService = (*reviewServiceImpl)(nil)

// txRunner matches store.RunInTransaction. Injectable for testing.
type txRunner func(ctx context.Context, db *sql.DB, fn store.TxFn) error

// reviewServiceImpl implements the ReviewService interface.
type reviewServiceImpl struct {
	db            *sql.DB
	cardStore     store.CardStore
	scheduleStore store.ScheduleStore
	reviewLog     store.ReviewLogStore
	timeFunc      func() time.Time // Injectable for testing
	runTx         txRunner
	logger        *slog.Logger
}

// NewReviewService creates a new ReviewService implementation.
func NewReviewService(
	db *sql.DB,
	cardStore store.CardStore,
	scheduleStore store.ScheduleStore,
	reviewLog store.ReviewLogStore,
	logger *slog.Logger,
) ReviewService {
	if db == nil {
		panic("db cannot be nil")
	}
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if scheduleStore == nil {
		panic("scheduleStore cannot be nil")
	}
	if reviewLog == nil {
		panic("reviewLog cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &reviewServiceImpl{
		db:            db,
		cardStore:     cardStore,
		scheduleStore: scheduleStore,
		reviewLog:     reviewLog,
		timeFunc:      time.Now,
		runTx:         store.RunInTransaction,
		logger:        logger.With(slog.String("component", "review_service")),
	}
}

// GetNextCard implements ReviewService.GetNextCard.
func (s *reviewServiceImpl) GetNextCard(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.cardStore.GetNextDue(ctx, userID, s.timeFunc().UTC())
	if err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			log.Debug("no cards due for review", slog.String("user_id", userID.String()))
			return nil, ErrNoCardsDue
		}

		log.Error("failed to get next due card",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, &ServiceError{
			Operation: "get_next_card",
			Message:   "failed to get next due card",
			Err:       err,
		}
	}

	return card, nil
}

// GradeCard implements ReviewService.GradeCard.
//
// The scheduling update is computed exactly once: a retried write persists
// the state from the first computation rather than re-running the scheduler
// with a later clock reading.
func (s *reviewServiceImpl) GradeCard(
	ctx context.Context,
	userID uuid.UUID,
	cardID uuid.UUID,
	quality int,
) (*domain.SchedulingState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if quality < srs.MinQuality || quality > srs.MaxQuality {
		log.Warn("invalid quality grade",
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()),
			slog.Int("quality", quality))
		return nil, ErrInvalidGrade
	}

	now := s.timeFunc().UTC()

	// Computed once on the first attempt, reused on write retries.
	var prev, next *domain.SchedulingState
	var createState bool

	var lastErr error
	for attempt := 1; attempt <= scheduleWriteAttempts; attempt++ {
		err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
			card, err := s.cardStore.WithTx(tx).GetByID(ctx, cardID)
			if err != nil {
				if errors.Is(err, store.ErrCardNotFound) {
					return ErrCardNotFound
				}
				return fmt.Errorf("failed to get card: %w", err)
			}
			if card.UserID != userID {
				return ErrCardNotOwned
			}

			schedules := s.scheduleStore.WithTx(tx)

			if next == nil {
				prior, err := schedules.GetForUpdate(ctx, userID, cardID)
				if err != nil {
					if !errors.Is(err, store.ErrScheduleNotFound) {
						return fmt.Errorf("failed to get scheduling state: %w", err)
					}
					// First review of a card that never got an initial
					// schedule row; grade from the default state.
					prior, err = domain.NewSchedulingState(userID, cardID)
					if err != nil {
						return fmt.Errorf("failed to build default scheduling state: %w", err)
					}
					createState = true
				}

				prev = prior
				computed := srs.ComputeNextState(*prior, quality, now)
				next = &computed
			} else if !createState {
				// Retry: reacquire the row lock, keep the computed state.
				if _, err := schedules.GetForUpdate(ctx, userID, cardID); err != nil {
					return fmt.Errorf("failed to relock scheduling state: %w", err)
				}
			}

			if createState {
				return schedules.Create(ctx, next)
			}
			return schedules.Update(ctx, next)
		})

		if err == nil {
			lastErr = nil
			break
		}

		// Terminal outcomes are not persistence faults; surface them as is.
		if errors.Is(err, ErrCardNotFound) || errors.Is(err, ErrCardNotOwned) {
			return nil, err
		}

		lastErr = err
		log.Warn("scheduling state write failed",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()),
			slog.Int("attempt", attempt))
	}

	if lastErr != nil {
		log.Error("giving up on scheduling state write",
			slog.String("error", lastErr.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, &ScheduleWriteError{CardID: cardID, Err: lastErr}
	}

	// Best-effort history append: a failure here never fails the grading.
	event := domain.NewReviewEvent(quality, prev, next)
	if err := s.reviewLog.Append(ctx, event); err != nil {
		log.Warn("failed to append review event, continuing",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
	}

	log.Debug("graded card",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.Int("quality", quality),
		slog.Int("interval_days", next.IntervalDays),
		slog.Float64("ease_factor", next.EaseFactor),
		slog.Int("repetitions", next.Repetitions),
		slog.Time("due_at", next.DueAt))

	return next, nil
}

// PostponeCard implements ReviewService.PostponeCard.
func (s *reviewServiceImpl) PostponeCard(
	ctx context.Context,
	userID uuid.UUID,
	cardID uuid.UUID,
	days int,
) (*domain.SchedulingState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if days <= 0 {
		return nil, ErrInvalidPostponeDays
	}

	now := s.timeFunc().UTC()

	var updated *domain.SchedulingState
	err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		card, err := s.cardStore.WithTx(tx).GetByID(ctx, cardID)
		if err != nil {
			if errors.Is(err, store.ErrCardNotFound) {
				return ErrCardNotFound
			}
			return fmt.Errorf("failed to get card: %w", err)
		}
		if card.UserID != userID {
			return ErrCardNotOwned
		}

		schedules := s.scheduleStore.WithTx(tx)
		state, err := schedules.GetForUpdate(ctx, userID, cardID)
		if err != nil {
			if errors.Is(err, store.ErrScheduleNotFound) {
				return ErrCardNotFound
			}
			return fmt.Errorf("failed to get scheduling state: %w", err)
		}

		state.DueAt = state.DueAt.Add(time.Duration(days) * 24 * time.Hour)
		state.UpdatedAt = now

		if err := schedules.Update(ctx, state); err != nil {
			return fmt.Errorf("failed to update scheduling state: %w", err)
		}

		updated = state
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCardNotFound) || errors.Is(err, ErrCardNotOwned) {
			return nil, err
		}
		log.Error("failed to postpone card",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, &ServiceError{
			Operation: "postpone_card",
			Message:   "failed to postpone card",
			Err:       err,
		}
	}

	log.Debug("postponed card",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.Int("days", days),
		slog.Time("due_at", updated.DueAt))

	return updated, nil
}

// DeleteCard implements ReviewService.DeleteCard.
func (s *reviewServiceImpl) DeleteCard(
	ctx context.Context,
	userID uuid.UUID,
	cardID uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		cards := s.cardStore.WithTx(tx)

		card, err := cards.GetByID(ctx, cardID)
		if err != nil {
			if errors.Is(err, store.ErrCardNotFound) {
				return ErrCardNotFound
			}
			return fmt.Errorf("failed to get card: %w", err)
		}
		if card.UserID != userID {
			return ErrCardNotOwned
		}

		return cards.Delete(ctx, cardID)
	})
	if err != nil {
		if errors.Is(err, ErrCardNotFound) || errors.Is(err, ErrCardNotOwned) {
			return err
		}
		log.Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return &ServiceError{
			Operation: "delete_card",
			Message:   "failed to delete card",
			Err:       err,
		}
	}

	log.Info("deleted card",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()))
	return nil
}
