package srs

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lecturelab/study-api/internal/domain"
)

// fixedNow keeps due-date assertions deterministic.
var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func priorState(interval int, ease float64, reps int) domain.SchedulingState {
	return domain.SchedulingState{
		UserID:       uuid.New(),
		CardID:       uuid.New(),
		IntervalDays: interval,
		EaseFactor:   ease,
		Repetitions:  reps,
	}
}

func TestComputeNextState(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name             string
		interval         int
		ease             float64
		reps             int
		quality          int
		expectedInterval int
		expectedEase     float64
		expectedReps     int
	}{
		{
			name:     "first successful review of a new card",
			interval: 0, ease: 2.0, reps: 0, quality: 4,
			expectedInterval: 1,
			expectedEase:     2.0, // 2.0 + (0.1 - 1*(0.08+0.02))
			expectedReps:     1,
		},
		{
			name:     "second successful review jumps to six days",
			interval: 1, ease: 2.0, reps: 1, quality: 4,
			expectedInterval: 6,
			expectedEase:     2.0,
			expectedReps:     2,
		},
		{
			name:     "third review multiplies by the new ease factor",
			interval: 6, ease: 2.0, reps: 2, quality: 5,
			expectedInterval: 13, // round(6 * 2.1)
			expectedEase:     2.1,
			expectedReps:     3,
		},
		{
			name:     "total failure resets streak and hits the ease floor",
			interval: 13, ease: 2.1, reps: 3, quality: 0,
			expectedInterval: 1,
			expectedEase:     1.3, // 2.1 + (0.1 - 5*(0.08+5*0.02)) = 1.3 exactly
			expectedReps:     0,
		},
		{
			name:     "borderline pass clamps ease to the floor",
			interval: 100, ease: 1.3, reps: 5, quality: 3,
			expectedInterval: 130, // round(100 * 1.3), not 100 * 1.16
			expectedEase:     1.3, // 1.3 + (0.1 - 2*(0.08+2*0.02)) = 1.16 -> clamped
			expectedReps:     6,
		},
		{
			name:     "failure with quality two also resets",
			interval: 20, ease: 2.5, reps: 4, quality: 2,
			expectedInterval: 1,
			expectedEase:     2.5 + (0.1 - 3*(0.08+3*0.02)),
			expectedReps:     0,
		},
		{
			name:     "perfect recall on a long interval",
			interval: 30, ease: 2.5, reps: 6, quality: 5,
			expectedInterval: 78, // round(30 * 2.6)
			expectedEase:     2.6,
			expectedReps:     7,
		},
		{
			name:     "zero prior interval with established streak floors at one day",
			interval: 0, ease: 2.0, reps: 3, quality: 4,
			expectedInterval: 1, // round(0 * 2.0) = 0, substituted with 1
			expectedEase:     2.0,
			expectedReps:     4,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			prior := priorState(tc.interval, tc.ease, tc.reps)
			next := ComputeNextState(prior, tc.quality, fixedNow)

			assert.Equal(t, tc.expectedInterval, next.IntervalDays, "interval")
			assert.InDelta(t, tc.expectedEase, next.EaseFactor, 1e-9, "ease factor")
			assert.Equal(t, tc.expectedReps, next.Repetitions, "repetitions")
			assert.Equal(t, fixedNow, next.LastReviewedAt, "last reviewed at")
			assert.Equal(t,
				fixedNow.Add(time.Duration(tc.expectedInterval)*24*time.Hour),
				next.DueAt, "due at")
			assert.Equal(t, prior.UserID, next.UserID)
			assert.Equal(t, prior.CardID, next.CardID)
		})
	}
}

func TestComputeNextStateRepairsInvalidPriors(t *testing.T) {
	t.Parallel()

	t.Run("non-positive ease factor falls back to the default", func(t *testing.T) {
		t.Parallel()

		// A broken ease factor with an established streak: the card must be
		// scheduled as if the ease factor had been 2.0 all along.
		prior := priorState(10, 0, 2)
		next := ComputeNextState(prior, 5, fixedNow)

		assert.InDelta(t, 2.1, next.EaseFactor, 1e-9)
		assert.Equal(t, 21, next.IntervalDays) // round(10 * 2.1)
		assert.Equal(t, 3, next.Repetitions)
	})

	t.Run("NaN ease factor falls back to the default", func(t *testing.T) {
		t.Parallel()

		prior := priorState(10, math.NaN(), 2)
		next := ComputeNextState(prior, 5, fixedNow)

		assert.InDelta(t, 2.1, next.EaseFactor, 1e-9)
		assert.Equal(t, 21, next.IntervalDays)
	})

	t.Run("defaulted ease equals explicit default ease", func(t *testing.T) {
		t.Parallel()

		explicit := priorState(4, domain.DefaultEaseFactor, 2)
		broken := explicit
		broken.EaseFactor = -3

		assert.Equal(t,
			ComputeNextState(explicit, 4, fixedNow),
			ComputeNextState(broken, 4, fixedNow))
	})

	t.Run("negative interval and repetitions are treated as zero", func(t *testing.T) {
		t.Parallel()

		prior := priorState(-5, 2.0, -2)
		next := ComputeNextState(prior, 4, fixedNow)

		assert.Equal(t, 1, next.IntervalDays)
		assert.Equal(t, 1, next.Repetitions)
	})

	t.Run("out-of-range quality is clamped", func(t *testing.T) {
		t.Parallel()

		prior := priorState(10, 2.0, 3)

		assert.Equal(t,
			ComputeNextState(prior, 0, fixedNow),
			ComputeNextState(prior, -4, fixedNow))
		assert.Equal(t,
			ComputeNextState(prior, 5, fixedNow),
			ComputeNextState(prior, 9, fixedNow))
	})
}

func TestComputeNextStateProperties(t *testing.T) {
	t.Parallel()

	priors := []domain.SchedulingState{
		priorState(0, 2.0, 0),
		priorState(1, 1.3, 1),
		priorState(6, 2.5, 2),
		priorState(13, 2.1, 3),
		priorState(100, 1.3, 5),
		priorState(365, 3.0, 12),
	}

	t.Run("failures always reset repetitions and interval", func(t *testing.T) {
		t.Parallel()

		for _, prior := range priors {
			for quality := 0; quality < PassingQuality; quality++ {
				next := ComputeNextState(prior, quality, fixedNow)
				assert.Equal(t, 0, next.Repetitions,
					"prior=%+v quality=%d", prior, quality)
				assert.Equal(t, 1, next.IntervalDays,
					"prior=%+v quality=%d", prior, quality)
			}
		}
	})

	t.Run("ease factor never drops below the floor", func(t *testing.T) {
		t.Parallel()

		for _, prior := range priors {
			for quality := MinQuality; quality <= MaxQuality; quality++ {
				next := ComputeNextState(prior, quality, fixedNow)
				assert.GreaterOrEqual(t, next.EaseFactor, domain.MinEaseFactor,
					"prior=%+v quality=%d", prior, quality)
			}
		}
	})

	t.Run("interval is always at least one day", func(t *testing.T) {
		t.Parallel()

		for _, prior := range priors {
			for quality := MinQuality; quality <= MaxQuality; quality++ {
				next := ComputeNextState(prior, quality, fixedNow)
				assert.GreaterOrEqual(t, next.IntervalDays, 1,
					"prior=%+v quality=%d", prior, quality)
			}
		}
	})

	t.Run("due date is exactly interval days after the review", func(t *testing.T) {
		t.Parallel()

		for _, prior := range priors {
			for quality := MinQuality; quality <= MaxQuality; quality++ {
				next := ComputeNextState(prior, quality, fixedNow)
				want := next.LastReviewedAt.Add(
					time.Duration(next.IntervalDays) * 24 * time.Hour)
				assert.Equal(t, want, next.DueAt,
					"prior=%+v quality=%d", prior, quality)
			}
		}
	})

	t.Run("established streaks multiply by the new ease factor", func(t *testing.T) {
		t.Parallel()

		for _, prior := range priors {
			if prior.Repetitions < 2 {
				continue
			}
			for quality := PassingQuality; quality <= MaxQuality; quality++ {
				next := ComputeNextState(prior, quality, fixedNow)
				expected := int(math.Round(float64(prior.IntervalDays) * next.EaseFactor))
				if expected < 1 {
					expected = 1
				}
				assert.Equal(t, expected, next.IntervalDays,
					"prior=%+v quality=%d", prior, quality)
			}
		}
	})

	t.Run("longer priors never shrink the next interval", func(t *testing.T) {
		t.Parallel()

		last := 0
		for interval := 1; interval <= 200; interval++ {
			next := ComputeNextState(priorState(interval, 2.0, 2), 5, fixedNow)
			require.GreaterOrEqual(t, next.IntervalDays, last,
				"interval=%d", interval)
			last = next.IntervalDays
		}
	})
}

func TestComputeNextStateIsDeterministic(t *testing.T) {
	t.Parallel()

	prior := priorState(6, 2.0, 2)
	first := ComputeNextState(prior, 5, fixedNow)
	second := ComputeNextState(prior, 5, fixedNow)

	assert.Equal(t, first, second)
}
