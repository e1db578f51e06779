package mastery

import "time"

// ItemProgress holds one learner's answer history for a single catalog item.
type ItemProgress struct {
	ID                   string
	CorrectCount         int
	IncorrectCount       int
	ConsecutiveCorrect   int
	ConsecutiveIncorrect int
	Position             int
	LastStudied          time.Time // zero means never studied
}

// NewItemProgress returns the default record for an item that has never
// been answered.
func NewItemProgress(id string) ItemProgress {
	return ItemProgress{ID: id, Position: NewDefault}
}

// Attempts returns the total number of answers recorded.
func (p ItemProgress) Attempts() int {
	return p.CorrectCount + p.IncorrectCount
}

// Accuracy returns the correct ratio, or 0 when there are no attempts.
func (p ItemProgress) Accuracy() float64 {
	attempts := p.Attempts()
	if attempts == 0 {
		return 0.0
	}
	return float64(p.CorrectCount) / float64(attempts)
}

// Studied reports whether the item has ever been answered.
func (p ItemProgress) Studied() bool {
	return !p.LastStudied.IsZero()
}

// Level derives the mastery level from the counters.
func (p ItemProgress) Level() Level {
	return LevelFor(p.CorrectCount, p.IncorrectCount, p.ConsecutiveCorrect)
}

// Band returns the position band of the (clamped) position.
func (p ItemProgress) Band() Band {
	return BandOf(p.Position)
}

// IsOneShot reports a single correct answer with no mistakes.
func (p ItemProgress) IsOneShot() bool {
	return p.CorrectCount == 1 && p.IncorrectCount == 0
}

// LevelFor is the pure function behind ItemProgress.Level. An item is
// mastered after three consecutive correct answers, or when its only answer
// so far was correct.
func LevelFor(correct, incorrect, consecutiveCorrect int) Level {
	switch {
	case consecutiveCorrect >= 3:
		return LevelMastered
	case correct == 1 && incorrect == 0:
		return LevelMastered
	case correct+incorrect == 0:
		return LevelNew
	default:
		return LevelLearning
	}
}

// Clamp repairs a record loaded from untrusted storage: the position is
// clamped to [0,100], negative counters become zero and conflicting
// consecutive counters keep only the larger one.
func Clamp(p ItemProgress) ItemProgress {
	p.Position = clampPosition(p.Position)
	p.CorrectCount = max(p.CorrectCount, 0)
	p.IncorrectCount = max(p.IncorrectCount, 0)
	p.ConsecutiveCorrect = max(p.ConsecutiveCorrect, 0)
	p.ConsecutiveIncorrect = max(p.ConsecutiveIncorrect, 0)
	if p.ConsecutiveCorrect > 0 && p.ConsecutiveIncorrect > 0 {
		if p.ConsecutiveCorrect >= p.ConsecutiveIncorrect {
			p.ConsecutiveIncorrect = 0
		} else {
			p.ConsecutiveCorrect = 0
		}
	}
	return p
}

func clampPosition(v int) int {
	if v < MinPosition {
		return MinPosition
	}
	if v > MaxPosition {
		return MaxPosition
	}
	return v
}
