package spacedrep

import (
	"sort"
	"time"

	"github.com/abhisek/lexiq/internal/mastery"
)

// Priority values in relative units. Lower is presented sooner.
const (
	PriorityIncorrectUrgent = 1.0 // three or more wrong in a row
	PriorityIncorrectHigh   = 1.5 // two wrong in a row
	PriorityIncorrect       = 2.0
	PriorityStillLearning   = 2.5
	PriorityMasteredAtRisk  = 2.8
	PriorityNew             = 3.5
	PriorityMastered        = 4.0
)

// Config tunes risk and priority.
type Config struct {
	Easiness        float64 // interval growth beyond a 3-streak
	AtRiskThreshold int     // mastered items at or above this risk are pulled forward
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Easiness:        DefaultEasiness,
		AtRiskThreshold: 50,
	}
}

// Scored is an item with everything the schedulers sort and classify by.
type Scored struct {
	ID       string
	Priority float64
	Risk     int
	Band     mastery.Band
	Position int
	Attempts int
}

// Risk returns the forgetting risk of p at now.
func Risk(p mastery.ItemProgress, now time.Time, cfg Config) int {
	interval := OptimalInterval(p.ConsecutiveCorrect, cfg.Easiness)
	return ForgettingRisk(p.LastStudied, now, interval, p.Accuracy())
}

// Priority maps p to its scheduling priority.
func Priority(p mastery.ItemProgress, now time.Time, cfg Config) float64 {
	p = mastery.Clamp(p)
	return priorityFor(p, Risk(p, now, cfg), cfg)
}

func priorityFor(p mastery.ItemProgress, risk int, cfg Config) float64 {
	attempts := p.Attempts()
	if attempts == 0 {
		return PriorityNew
	}
	switch p.Band() {
	case mastery.BandIncorrect:
		switch wrong := attempts - p.CorrectCount; {
		case wrong >= 3:
			return PriorityIncorrectUrgent
		case wrong == 2:
			return PriorityIncorrectHigh
		default:
			return PriorityIncorrect
		}
	case mastery.BandStillLearning:
		return PriorityStillLearning
	case mastery.BandMastered:
		if risk >= cfg.AtRiskThreshold {
			return PriorityMasteredAtRisk
		}
		return PriorityMastered
	default:
		return PriorityNew
	}
}

// Score computes the Scored form of p.
func Score(p mastery.ItemProgress, now time.Time, cfg Config) Scored {
	p = mastery.Clamp(p)
	risk := Risk(p, now, cfg)
	return Scored{
		ID:       p.ID,
		Priority: priorityFor(p, risk, cfg),
		Risk:     risk,
		Band:     p.Band(),
		Position: p.Position,
		Attempts: p.Attempts(),
	}
}

// SortByPriority sorts ascending by priority. Equal priorities keep their
// input order.
func SortByPriority(items []Scored) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Priority < items[j].Priority
	})
}
