package mastery

import (
	"time"

	"github.com/abhisek/lexiq/internal/store"
)

// FromRecord converts a persisted record. The result is clamped, so
// corrupted rows never reach the scheduler out of range.
func FromRecord(rec store.ProgressRecord) ItemProgress {
	p := ItemProgress{
		ID:                   rec.ItemID,
		CorrectCount:         rec.CorrectCount,
		IncorrectCount:       rec.IncorrectCount,
		ConsecutiveCorrect:   rec.ConsecutiveCorrect,
		ConsecutiveIncorrect: rec.ConsecutiveIncorrect,
		Position:             rec.Position,
	}
	if rec.LastStudied > 0 {
		p.LastStudied = time.UnixMilli(rec.LastStudied)
	}
	return Clamp(p)
}

// ToRecord converts progress to its persisted shape.
func ToRecord(p ItemProgress) store.ProgressRecord {
	rec := store.ProgressRecord{
		ItemID:               p.ID,
		CorrectCount:         p.CorrectCount,
		IncorrectCount:       p.IncorrectCount,
		ConsecutiveCorrect:   p.ConsecutiveCorrect,
		ConsecutiveIncorrect: p.ConsecutiveIncorrect,
		Position:             p.Position,
	}
	if !p.LastStudied.IsZero() {
		rec.LastStudied = p.LastStudied.UnixMilli()
	}
	return rec
}

// FromRecords converts a loaded progress map.
func FromRecords(recs map[string]store.ProgressRecord) map[string]ItemProgress {
	out := make(map[string]ItemProgress, len(recs))
	for id, rec := range recs {
		if rec.ItemID == "" {
			rec.ItemID = id
		}
		out[id] = FromRecord(rec)
	}
	return out
}
