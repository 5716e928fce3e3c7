// Package srs implements the spaced-repetition scheduler used on the review
// screen. It is an SM-2 variant: given a card's prior scheduling state and a
// recall-quality grade from 0 (total failure) to 5 (perfect recall), it
// computes the next interval, ease factor, repetition count and due date.
//
// The computation is a pure function of its inputs plus an explicit "now"
// argument; it performs no I/O and never fails. Persisting the result and
// recording the review event are the caller's concern.
package srs

import (
	"math"
	"time"

	"github.com/lecturelab/study-api/internal/domain"
)

// Grade bounds accepted by the scheduler.
const (
	MinQuality = 0
	MaxQuality = 5
)

// PassingQuality is the lowest grade counted as a successful recall.
// Anything below it resets the repetition streak and the interval.
const PassingQuality = 3

// ComputeNextState computes the scheduling state that follows a review graded
// with the given quality at the given time.
//
// The ease factor is adjusted on every review, pass or fail, by
//
//	ef + (0.1 - (5-q)*(0.08 + (5-q)*0.02))
//
// and floored at domain.MinEaseFactor. Note that adjusting the ease factor on
// failed reviews too is intentional: it matches the shipped behavior of the
// review screen, not the textbook SM-2 formulation.
//
// Failed recalls (quality < 3) reset the repetition streak and schedule the
// card one day out regardless of its prior interval. Successful recalls walk
// the 1-day, 6-day, then interval*easeFactor progression.
//
// Prior states with out-of-range fields are repaired rather than rejected:
// a non-positive or NaN ease factor becomes domain.DefaultEaseFactor, and
// negative intervals or repetition counts become 0. Quality is clamped into
// [MinQuality, MaxQuality]. ComputeNextState therefore cannot fail.
func ComputeNextState(prior domain.SchedulingState, quality int, now time.Time) domain.SchedulingState {
	prevInterval := prior.IntervalDays
	if prevInterval < 0 {
		prevInterval = 0
	}

	ef := prior.EaseFactor
	if math.IsNaN(ef) || ef <= 0 {
		ef = domain.DefaultEaseFactor
	}

	reps := prior.Repetitions
	if reps < 0 {
		reps = 0
	}

	if quality < MinQuality {
		quality = MinQuality
	}
	if quality > MaxQuality {
		quality = MaxQuality
	}

	newEF := nextEaseFactor(ef, quality)

	var newInterval, newReps int
	if quality < PassingQuality {
		// Failed recall: streak over, see the card again tomorrow.
		newReps = 0
		newInterval = 1
	} else {
		switch {
		case reps <= 0:
			newInterval = 1
		case reps == 1:
			newInterval = 6
		default:
			newInterval = int(math.Round(float64(prevInterval) * newEF))
			if newInterval < 1 {
				// A zero prior interval rounds to zero; never schedule
				// a card for "right now".
				newInterval = 1
			}
		}
		newReps = reps + 1
	}

	next := domain.SchedulingState{
		UserID:         prior.UserID,
		CardID:         prior.CardID,
		IntervalDays:   newInterval,
		EaseFactor:     newEF,
		Repetitions:    newReps,
		LastReviewedAt: now,
		DueAt:          now.Add(time.Duration(newInterval) * 24 * time.Hour),
		CreatedAt:      prior.CreatedAt,
		UpdatedAt:      now,
	}

	return next
}

// nextEaseFactor applies the SM-2 ease-factor update for the given quality
// and clamps the result to the configured floor.
func nextEaseFactor(ef float64, quality int) float64 {
	miss := float64(MaxQuality - quality)
	newEF := ef + (0.1 - miss*(0.08+miss*0.02))
	if newEF < domain.MinEaseFactor {
		newEF = domain.MinEaseFactor
	}
	return newEF
}
