package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for SchedulingState
var (
	ErrEmptyScheduleUserID = errors.New("scheduling state user ID cannot be empty")
	ErrEmptyScheduleCardID = errors.New("scheduling state card ID cannot be empty")
	ErrNegativeInterval    = errors.New("interval must be greater than or equal to 0")
	ErrNegativeRepetitions = errors.New("repetitions must be greater than or equal to 0")
)

// DefaultEaseFactor is the ease factor assigned to a card before any review
// history exists, and substituted when a stored ease factor is unusable.
const DefaultEaseFactor = 2.0

// MinEaseFactor is the hard floor the ease factor can never drop below.
const MinEaseFactor = 1.3

// SchedulingState tracks a user's spaced-repetition schedule for a single
// card. The fields follow the SM-2 family of algorithms: IntervalDays and
// EaseFactor drive interval growth, Repetitions counts consecutive
// successful recalls since the last failure.
type SchedulingState struct {
	UserID         uuid.UUID `json:"user_id"`
	CardID         uuid.UUID `json:"card_id"`
	IntervalDays   int       `json:"interval_days"`    // Days until the next review
	EaseFactor     float64   `json:"ease_factor"`      // Growth multiplier, floored at 1.3
	Repetitions    int       `json:"repetitions"`      // Consecutive successful reviews
	LastReviewedAt time.Time `json:"last_reviewed_at"` // Zero value means never reviewed
	DueAt          time.Time `json:"due_at"`           // When the card becomes reviewable
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewSchedulingState creates the initial scheduling state for a user and card.
// New cards are immediately due with no review history.
func NewSchedulingState(userID, cardID uuid.UUID) (*SchedulingState, error) {
	now := time.Now().UTC()
	state := &SchedulingState{
		UserID:       userID,
		CardID:       cardID,
		IntervalDays: 0,
		EaseFactor:   DefaultEaseFactor,
		Repetitions:  0,
		DueAt:        now, // Available for review immediately
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// Validate checks if the SchedulingState has valid data.
// Returns an error if any field fails validation.
func (s *SchedulingState) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyScheduleUserID
	}

	if s.CardID == uuid.Nil {
		return ErrEmptyScheduleCardID
	}

	if s.IntervalDays < 0 {
		return ErrNegativeInterval
	}

	if s.Repetitions < 0 {
		return ErrNegativeRepetitions
	}

	return nil
}
