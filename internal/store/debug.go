package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// debugRepo implements DebugRepo using the ent SQL driver.
type debugRepo struct {
	drv *entsql.Driver
}

func (r *debugRepo) Save(ctx context.Context, rec DebugRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	query, args := builder().Insert(debugTable).
		Columns("mode", "session_id", "data", "created_at").
		Values(rec.Mode, rec.SessionID, string(rec.Data), createdAt.UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("mode"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save debug snapshot %q: %w", rec.Mode, err)
	}
	return nil
}

func (r *debugRepo) Latest(ctx context.Context, mode string) (*DebugRecord, error) {
	b := builder()
	query, args := b.Select("mode", "session_id", "data", "created_at").
		From(b.Table(debugTable)).
		Where(entsql.EQ("mode", mode)).
		Limit(1).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query debug snapshot: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var (
		rec       DebugRecord
		data      string
		createdAt int64
	)
	if err := rows.Scan(&rec.Mode, &rec.SessionID, &data, &createdAt); err != nil {
		return nil, fmt.Errorf("scan debug snapshot: %w", err)
	}
	rec.Data = []byte(data)
	rec.CreatedAt = time.UnixMilli(createdAt)
	return &rec, nil
}
