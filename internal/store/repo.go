package store

import (
	"context"
	"time"
)

// ProgressRecord is the persisted shape of one item's progress.
// LastStudied is unix milliseconds; 0 means never studied.
type ProgressRecord struct {
	ItemID               string `json:"item_id"`
	CorrectCount         int    `json:"correct_count"`
	IncorrectCount       int    `json:"incorrect_count"`
	ConsecutiveCorrect   int    `json:"consecutive_correct"`
	ConsecutiveIncorrect int    `json:"consecutive_incorrect"`
	Position             int    `json:"position"`
	LastStudied          int64  `json:"last_studied"`
}

// ProgressRepo loads and saves the learner's progress map.
type ProgressRepo interface {
	// Load returns every stored record keyed by item ID.
	Load(ctx context.Context) (map[string]ProgressRecord, error)

	// Save upserts one record.
	Save(ctx context.Context, rec ProgressRecord) error

	// Reset deletes the record for a single item.
	Reset(ctx context.Context, itemID string) error

	// ResetAll deletes every record.
	ResetAll(ctx context.Context) error
}

// DebugRecord is a stored scheduling debug snapshot. Data is opaque JSON.
type DebugRecord struct {
	Mode      string
	SessionID string
	Data      []byte
	CreatedAt time.Time
}

// DebugRepo keeps the latest debug snapshot per scheduling mode.
type DebugRepo interface {
	// Save replaces the snapshot stored for rec.Mode.
	Save(ctx context.Context, rec DebugRecord) error

	// Latest returns the snapshot for mode, or nil if none exists.
	Latest(ctx context.Context, mode string) (*DebugRecord, error)
}

// AnswerEventData captures a single recorded answer.
type AnswerEventData struct {
	ItemID        string
	Correct       bool
	DontKnow      bool
	PositionAfter int
	Timestamp     time.Time
}

// AnswerEventRecord is an answer event read back with its sequence number.
type AnswerEventRecord struct {
	Sequence int64
	AnswerEventData
}

// AnswerStats summarizes recorded answers.
type AnswerStats struct {
	Total   int
	Correct int
}

// Accuracy returns the correct ratio, or 0 when nothing was recorded.
func (a AnswerStats) Accuracy() float64 {
	if a.Total == 0 {
		return 0
	}
	return float64(a.Correct) / float64(a.Total)
}

// EventRepo provides append and query access to answer events.
type EventRepo interface {
	// AppendAnswer records an answer event.
	AppendAnswer(ctx context.Context, data AnswerEventData) error

	// RecentAnswers returns the last limit answers for an item, newest first.
	RecentAnswers(ctx context.Context, itemID string, limit int) ([]AnswerEventRecord, error)

	// AnswerStats summarizes all answers recorded at or after since.
	// A zero since covers the full history.
	AnswerStats(ctx context.Context, since time.Time) (AnswerStats, error)
}
