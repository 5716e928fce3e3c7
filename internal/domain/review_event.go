package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReviewEvent is an append-only record of a single grading event, capturing
// the scheduling values before and after the update. It exists for history
// and analytics only; the scheduler never reads it back.
type ReviewEvent struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	CardID           uuid.UUID `json:"card_id"`
	Quality          int       `json:"quality"`
	PrevIntervalDays int       `json:"prev_interval_days"`
	NextIntervalDays int       `json:"next_interval_days"`
	PrevEaseFactor   float64   `json:"prev_ease_factor"`
	NextEaseFactor   float64   `json:"next_ease_factor"`
	PrevRepetitions  int       `json:"prev_repetitions"`
	NextRepetitions  int       `json:"next_repetitions"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewReviewEvent builds a ReviewEvent from the states surrounding a grading.
func NewReviewEvent(quality int, prev, next *SchedulingState) *ReviewEvent {
	return &ReviewEvent{
		ID:               uuid.New(),
		UserID:           next.UserID,
		CardID:           next.CardID,
		Quality:          quality,
		PrevIntervalDays: prev.IntervalDays,
		NextIntervalDays: next.IntervalDays,
		PrevEaseFactor:   prev.EaseFactor,
		NextEaseFactor:   next.EaseFactor,
		PrevRepetitions:  prev.Repetitions,
		NextRepetitions:  next.Repetitions,
		CreatedAt:        next.LastReviewedAt,
	}
}
