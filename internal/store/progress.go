package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var progressColumns = []string{
	"item_id",
	"correct_count",
	"incorrect_count",
	"consecutive_correct",
	"consecutive_incorrect",
	"position",
	"last_studied",
}

// progressRepo implements ProgressRepo using the ent SQL driver.
type progressRepo struct {
	drv *entsql.Driver
}

func (r *progressRepo) Load(ctx context.Context) (map[string]ProgressRecord, error) {
	b := builder()
	query, args := b.Select(progressColumns...).
		From(b.Table(progressTable)).
		OrderBy("item_id").
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	result := make(map[string]ProgressRecord)
	for rows.Next() {
		var rec ProgressRecord
		if err := rows.Scan(
			&rec.ItemID,
			&rec.CorrectCount,
			&rec.IncorrectCount,
			&rec.ConsecutiveCorrect,
			&rec.ConsecutiveIncorrect,
			&rec.Position,
			&rec.LastStudied,
		); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		result[rec.ItemID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress: %w", err)
	}
	return result, nil
}

func (r *progressRepo) Save(ctx context.Context, rec ProgressRecord) error {
	if rec.ItemID == "" {
		return fmt.Errorf("save progress: empty item id")
	}
	query, args := builder().Insert(progressTable).
		Columns(append(progressColumns, "updated_at")...).
		Values(
			rec.ItemID,
			rec.CorrectCount,
			rec.IncorrectCount,
			rec.ConsecutiveCorrect,
			rec.ConsecutiveIncorrect,
			rec.Position,
			rec.LastStudied,
			time.Now().UnixMilli(),
		).
		OnConflict(
			entsql.ConflictColumns("item_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save progress %q: %w", rec.ItemID, err)
	}
	return nil
}

func (r *progressRepo) Reset(ctx context.Context, itemID string) error {
	query, args := builder().Delete(progressTable).
		Where(entsql.EQ("item_id", itemID)).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("reset progress %q: %w", itemID, err)
	}
	return nil
}

func (r *progressRepo) ResetAll(ctx context.Context) error {
	query, args := builder().Delete(progressTable).Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("reset all progress: %w", err)
	}
	return nil
}
