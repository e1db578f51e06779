package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/lexiq/internal/relgraph"
)

// relationBatchSize bounds the rows per INSERT to stay under SQLite's
// bound-parameter limit.
const relationBatchSize = 500

// RelationRepo stores precomputed relation lists per dataset key.
// It implements relgraph.RelationCache.
type RelationRepo struct {
	drv *entsql.Driver
}

var _ relgraph.RelationCache = (*RelationRepo)(nil)

// LoadRelations returns the relations saved under key in their saved order.
// The boolean is false when nothing was saved for key. A saved empty list is
// a hit.
func (r *RelationRepo) LoadRelations(ctx context.Context, key string) ([]relgraph.Relation, bool, error) {
	saved, err := r.saved(ctx, key)
	if err != nil || !saved {
		return nil, false, err
	}

	b := builder()
	query, args := b.Select("from_id", "to_id", "relation_type", "strength").
		From(b.Table(relationTable)).
		Where(entsql.EQ("dataset", key)).
		OrderBy("ord").
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, false, fmt.Errorf("query relations: %w", err)
	}
	defer rows.Close()

	var rels []relgraph.Relation
	for rows.Next() {
		var (
			rel     relgraph.Relation
			relType string
		)
		if err := rows.Scan(&rel.From, &rel.To, &relType, &rel.Strength); err != nil {
			return nil, false, fmt.Errorf("scan relation: %w", err)
		}
		rel.Type = relgraph.RelationType(relType)
		rels = append(rels, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate relations: %w", err)
	}
	return rels, true, nil
}

func (r *RelationRepo) saved(ctx context.Context, key string) (bool, error) {
	b := builder()
	query, args := b.Select("size").
		From(b.Table(relationSets)).
		Where(entsql.EQ("dataset", key)).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return false, fmt.Errorf("query relation set: %w", err)
	}
	defer rows.Close()
	found := rows.Next()
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterate relation set: %w", err)
	}
	return found, nil
}

func clearRelations(ctx context.Context, ex dialect.ExecQuerier, key string) error {
	for _, table := range []string{relationTable, relationSets} {
		query, args := builder().Delete(table).
			Where(entsql.EQ("dataset", key)).
			Query()
		if err := ex.Exec(ctx, query, args, nil); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// SaveRelations replaces everything stored under key with rels.
func (r *RelationRepo) SaveRelations(ctx context.Context, key string, rels []relgraph.Relation) (err error) {
	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin relations tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = clearRelations(ctx, tx, key); err != nil {
		return err
	}
	query, args := builder().Insert(relationSets).
		Columns("dataset", "size").
		Values(key, len(rels)).
		Query()
	if err = tx.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("mark relation set: %w", err)
	}

	for start := 0; start < len(rels); start += relationBatchSize {
		end := min(start+relationBatchSize, len(rels))
		ins := builder().Insert(relationTable).
			Columns("dataset", "ord", "from_id", "to_id", "relation_type", "strength")
		for i := start; i < end; i++ {
			rel := rels[i]
			ins.Values(key, i, rel.From, rel.To, string(rel.Type), rel.Strength)
		}
		query, args := ins.Query()
		if err = tx.Exec(ctx, query, args, nil); err != nil {
			return fmt.Errorf("insert relations: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit relations: %w", err)
	}
	return nil
}

// DeleteRelations drops everything stored under key.
func (r *RelationRepo) DeleteRelations(ctx context.Context, key string) (err error) {
	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin relations tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = clearRelations(ctx, tx, key); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit relations: %w", err)
	}
	return nil
}
