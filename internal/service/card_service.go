package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lecturelab/study-api/internal/domain"
	"github.com/lecturelab/study-api/internal/store"
)

// CardService provides card creation and lookup. Grading and scheduling
// live in the review service; this service owns getting generated cards
// into the system.
type CardService interface {
	// CreateCards stores the given cards together with their initial
	// scheduling states in a single transaction. New cards are immediately
	// due for review.
	CreateCards(ctx context.Context, cards []*domain.Card) error

	// GetCard retrieves a card by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetCard(ctx context.Context, cardID uuid.UUID) (*domain.Card, error)
}

// cardServiceImpl implements the CardService interface.
type cardServiceImpl struct {
	db            *sql.DB
	cardStore     store.CardStore
	scheduleStore store.ScheduleStore
	runTx         func(ctx context.Context, db *sql.DB, fn store.TxFn) error
	logger        *slog.Logger
}

// Ensure cardServiceImpl implements CardService
var _ CardService = (*cardServiceImpl)(nil)

// NewCardService creates a new CardService.
func NewCardService(
	db *sql.DB,
	cardStore store.CardStore,
	scheduleStore store.ScheduleStore,
	logger *slog.Logger,
) (CardService, error) {
	if db == nil {
		return nil, &Error{Operation: "create_service", Message: "db cannot be nil"}
	}
	if cardStore == nil {
		return nil, &Error{Operation: "create_service", Message: "cardStore cannot be nil"}
	}
	if scheduleStore == nil {
		return nil, &Error{Operation: "create_service", Message: "scheduleStore cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &cardServiceImpl{
		db:            db,
		cardStore:     cardStore,
		scheduleStore: scheduleStore,
		runTx:         store.RunInTransaction,
		logger:        logger.With(slog.String("component", "card_service")),
	}, nil
}

// CreateCards implements CardService.CreateCards.
// Cards and their scheduling states land atomically: either every card is
// reviewable or none were created.
func (s *cardServiceImpl) CreateCards(ctx context.Context, cards []*domain.Card) error {
	if len(cards) == 0 {
		return nil
	}

	err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.cardStore.WithTx(tx).CreateMultiple(ctx, cards); err != nil {
			return fmt.Errorf("failed to create cards: %w", err)
		}

		schedules := s.scheduleStore.WithTx(tx)
		for _, card := range cards {
			state, err := domain.NewSchedulingState(card.UserID, card.ID)
			if err != nil {
				return fmt.Errorf("failed to build scheduling state: %w", err)
			}
			if err := schedules.Create(ctx, state); err != nil {
				return fmt.Errorf("failed to create scheduling state: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to create cards with scheduling states",
			slog.String("error", err.Error()),
			slog.Int("card_count", len(cards)))
		return &Error{
			Operation: "create_cards",
			Message:   "failed to create cards with scheduling states",
			Err:       err,
		}
	}

	s.logger.Info("created cards with scheduling states",
		slog.Int("card_count", len(cards)))
	return nil
}

// GetCard implements CardService.GetCard.
func (s *cardServiceImpl) GetCard(ctx context.Context, cardID uuid.UUID) (*domain.Card, error) {
	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, &Error{
			Operation: "get_card",
			Message:   "failed to retrieve card",
			Err:       err,
		}
	}

	return card, nil
}
