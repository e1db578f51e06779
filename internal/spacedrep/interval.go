// Package spacedrep estimates how likely an item has been forgotten and turns
// that into a scheduling priority.
package spacedrep

import (
	"math"
	"time"
)

// BaseIntervals is the review interval in days for correct streaks 0-3.
// Longer streaks grow geometrically by the easiness factor.
var BaseIntervals = []float64{0, 1, 3, 7}

// DefaultEasiness is the growth factor for streaks beyond BaseIntervals.
const DefaultEasiness = 2.5

// MaxRisk caps the forgetting risk score.
const MaxRisk = 200

const (
	lowAccuracy        = 0.5
	highAccuracy       = 0.8
	lowAccuracyFactor  = 1.5
	highAccuracyFactor = 0.7
)

// OptimalInterval returns the ideal days between reviews for a correct
// streak. A non-positive easiness uses DefaultEasiness.
func OptimalInterval(streak int, easiness float64) float64 {
	if streak <= 0 {
		return 0
	}
	last := len(BaseIntervals) - 1
	if streak <= last {
		return BaseIntervals[streak]
	}
	if easiness <= 0 {
		easiness = DefaultEasiness
	}
	return BaseIntervals[last] * math.Pow(easiness, float64(streak-last))
}

// ForgettingRisk scores elapsed time against the interval, in [0, MaxRisk].
// 100 means the item is exactly due. accuracy is a fraction in [0,1].
// Items never studied, or with a zero interval, have no risk.
func ForgettingRisk(lastStudied, now time.Time, intervalDays, accuracy float64) int {
	if lastStudied.IsZero() || intervalDays <= 0 {
		return 0
	}
	days := now.Sub(lastStudied).Hours() / 24
	if days <= 0 {
		return 0
	}

	risk := days / intervalDays * 100
	switch {
	case accuracy < lowAccuracy:
		risk *= lowAccuracyFactor
	case accuracy >= highAccuracy:
		risk *= highAccuracyFactor
	}
	return min(MaxRisk, int(math.Round(risk)))
}
