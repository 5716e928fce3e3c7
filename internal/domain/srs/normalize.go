package srs

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lecturelab/study-api/internal/domain"
)

// RawState carries scheduling fields as they arrive from a loosely typed
// store payload, where numbers may come back as strings, json.Number,
// floats, or be absent entirely. Normalize repairs them in one place so
// the scheduler arithmetic never has to.
type RawState struct {
	UserID         uuid.UUID
	CardID         uuid.UUID
	IntervalDays   any
	EaseFactor     any
	Repetitions    any
	LastReviewedAt time.Time
	DueAt          time.Time
}

// Normalize coerces a RawState into a well-formed SchedulingState.
//
// Coercion rules, applied per field:
//   - IntervalDays: non-numeric, non-finite or negative values become 0.
//   - EaseFactor: non-numeric, non-finite or non-positive values become
//     domain.DefaultEaseFactor.
//   - Repetitions: non-numeric, non-finite or negative values become 0.
//
// Normalization never fails; malformed upstream data degrades to the
// documented defaults.
func Normalize(raw RawState) domain.SchedulingState {
	state := domain.SchedulingState{
		UserID:         raw.UserID,
		CardID:         raw.CardID,
		IntervalDays:   0,
		EaseFactor:     domain.DefaultEaseFactor,
		Repetitions:    0,
		LastReviewedAt: raw.LastReviewedAt,
		DueAt:          raw.DueAt,
	}

	if v, ok := toFloat(raw.IntervalDays); ok && v >= 0 {
		state.IntervalDays = int(math.Round(v))
	}

	if v, ok := toFloat(raw.EaseFactor); ok && v > 0 {
		state.EaseFactor = v
	}

	if v, ok := toFloat(raw.Repetitions); ok && v >= 0 {
		state.Repetitions = int(math.Round(v))
	}

	return state
}

// toFloat attempts to interpret an arbitrary store value as a finite float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		f := float64(n)
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return 0, false
	}
}
