package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter hands out the global monotonic sequence number stamped on
// every answer event. Events are append-only and ordered by this number, so
// a progress snapshot can name the last event it includes.
//
// Uses raw SQL outside the ent builder because the increment must be a
// single atomic UPDATE ... RETURNING. The mutex serializes within the process.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventRepo implements EventRepo using the ent SQL driver.
type eventRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *eventRepo) AppendAnswer(ctx context.Context, data AnswerEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}
	ts := data.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query, args := builder().Insert(answerTable).
		Columns("sequence", "item_id", "correct", "dont_know", "position_after", "timestamp").
		Values(seqNum, data.ItemID, boolToInt(data.Correct), boolToInt(data.DontKnow), data.PositionAfter, ts.UnixMilli()).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) RecentAnswers(ctx context.Context, itemID string, limit int) ([]AnswerEventRecord, error) {
	b := builder()
	sel := b.Select("sequence", "item_id", "correct", "dont_know", "position_after", "timestamp").
		From(b.Table(answerTable)).
		Where(entsql.EQ("item_id", itemID)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	defer rows.Close()

	var events []AnswerEventRecord
	for rows.Next() {
		var (
			ev                AnswerEventRecord
			correct, dontKnow int
			ts                int64
		)
		if err := rows.Scan(&ev.Sequence, &ev.ItemID, &correct, &dontKnow, &ev.PositionAfter, &ts); err != nil {
			return nil, fmt.Errorf("scan answer event: %w", err)
		}
		ev.Correct = correct != 0
		ev.DontKnow = dontKnow != 0
		ev.Timestamp = time.UnixMilli(ts)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answer events: %w", err)
	}
	return events, nil
}

func (r *eventRepo) AnswerStats(ctx context.Context, since time.Time) (AnswerStats, error) {
	b := builder()
	sel := b.Select(entsql.Count("*"), entsql.Sum("correct")).
		From(b.Table(answerTable))
	if !since.IsZero() {
		sel.Where(entsql.GTE("timestamp", since.UnixMilli()))
	}
	query, args := sel.Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return AnswerStats{}, fmt.Errorf("query answer stats: %w", err)
	}
	defer rows.Close()

	var (
		stats   AnswerStats
		correct sql.NullInt64
	)
	if rows.Next() {
		if err := rows.Scan(&stats.Total, &correct); err != nil {
			return AnswerStats{}, fmt.Errorf("scan answer stats: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return AnswerStats{}, fmt.Errorf("iterate answer stats: %w", err)
	}
	stats.Correct = int(correct.Int64)
	return stats, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
