package mastery

// Level is an item's place in the mastery lifecycle. It is always derived
// from the answer counters, never stored.
type Level string

const (
	LevelNew      Level = "new"
	LevelLearning Level = "learning"
	LevelMastered Level = "mastered"
)

// Band is the position band an item currently falls in.
type Band string

const (
	BandMastered      Band = "mastered"
	BandNew           Band = "new"
	BandStillLearning Band = "still_learning"
	BandIncorrect     Band = "incorrect"
)

// Band upper bounds (inclusive). Evaluated in order Mastered -> New ->
// StillLearning -> Incorrect, so a boundary value belongs to the lower band.
const (
	MasteredBandMax      = 20
	NewBandMax           = 40
	StillLearningBandMax = 70
	MaxPosition          = 100
	MinPosition          = 0
)

// BandOf maps a position to its band. Out-of-range input is clamped first.
func BandOf(position int) Band {
	position = clampPosition(position)
	switch {
	case position <= MasteredBandMax:
		return BandMastered
	case position <= NewBandMax:
		return BandNew
	case position <= StillLearningBandMax:
		return BandStillLearning
	default:
		return BandIncorrect
	}
}

// Transition records a level change caused by an answer.
type Transition struct {
	ItemID  string
	From    Level
	To      Level
	Trigger string // "first-attempt", "one-shot", "streak", "lapse"
}
