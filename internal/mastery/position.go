package mastery

import "time"

// Position calibration values. Other engines read persisted positions, so
// these literals are part of the storage contract.
const (
	MasteredPerfect      = 10
	MasteredAlmost       = 15
	OneShotCorrect       = 18
	NearMastery          = 25
	NewNearMastery       = 30
	NewDefault           = 35
	StillLearningLow     = 45
	StillLearningDefault = 50
	IncorrectLight       = 55
	IncorrectMedium      = 70
	IncorrectHigh        = 75
	IncorrectUrgent      = 85
)

// Position deltas. Each consecutive answer in a streak adds streakStep to the
// base, up to maxStreakSteps steps.
const (
	correctBaseDecrease  = 10
	wrongBaseIncrease    = 15
	dontKnowBaseIncrease = 20
	streakStep           = 5
	maxStreakSteps       = 3
)

// RecordAnswer applies one answer to p and returns the updated record.
// p itself is not modified.
func RecordAnswer(p ItemProgress, correct, isDontKnow bool, now time.Time) ItemProgress {
	p = Clamp(p)
	prevBand := p.Band()
	next := p

	if correct {
		next.CorrectCount++
		next.ConsecutiveCorrect++
		next.ConsecutiveIncorrect = 0

		pos := p.Position - (correctBaseDecrease + streakBonus(next.ConsecutiveCorrect))
		next.Position = clampPosition(min(pos, correctAnchor(next, prevBand)))
	} else {
		next.IncorrectCount++
		next.ConsecutiveIncorrect++
		next.ConsecutiveCorrect = 0

		base := wrongBaseIncrease
		if isDontKnow {
			base = dontKnowBaseIncrease
		}
		pos := p.Position + base + streakBonus(next.ConsecutiveIncorrect)
		next.Position = clampPosition(max(pos, incorrectFloor(next, isDontKnow)))
	}

	next.LastStudied = now
	return next
}

// Boost places an unattempted item in the StillLearning band so it competes
// for injection slots alongside struggling items. Attempted items are
// returned unchanged.
func Boost(p ItemProgress) ItemProgress {
	if p.Attempts() > 0 {
		return p
	}
	p.Position = StillLearningDefault
	return p
}

func streakBonus(consecutive int) int {
	steps := min(max(consecutive-1, 0), maxStreakSteps)
	return steps * streakStep
}

// correctAnchor is the highest position an item may hold right after a
// correct answer.
func correctAnchor(next ItemProgress, prevBand Band) int {
	switch {
	case next.ConsecutiveCorrect >= 3 && next.IncorrectCount == 0:
		return MasteredPerfect
	case next.ConsecutiveCorrect >= 3:
		return MasteredAlmost
	case next.IsOneShot():
		return OneShotCorrect
	case next.ConsecutiveCorrect == 2:
		return NearMastery
	}
	switch prevBand {
	case BandIncorrect:
		return StillLearningDefault
	case BandStillLearning:
		return StillLearningLow
	case BandNew:
		return NewNearMastery
	default:
		return MaxPosition
	}
}

// incorrectFloor is the lowest position an item may hold right after a
// wrong answer.
func incorrectFloor(next ItemProgress, isDontKnow bool) int {
	switch {
	case next.ConsecutiveIncorrect >= 3:
		return IncorrectUrgent
	case next.ConsecutiveIncorrect == 2:
		return IncorrectHigh
	case isDontKnow:
		return IncorrectMedium
	default:
		return IncorrectLight
	}
}
