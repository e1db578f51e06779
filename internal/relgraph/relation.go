// Package relgraph computes weighted relations between catalog items and
// groups them into category clusters.
package relgraph

import "context"

// RelationType names the signal that produced a relation.
type RelationType string

const (
	RelationCategory   RelationType = "category"
	RelationDerivation RelationType = "derivation"
	RelationContext    RelationType = "context"
)

// Relation is a directed, weighted edge between two items.
type Relation struct {
	From     string       `json:"from"`
	To       string       `json:"to"`
	Type     RelationType `json:"type"`
	Strength int          `json:"strength"`
}

// RelationCache persists precomputed relations per dataset key.
type RelationCache interface {
	// LoadRelations returns the relations stored under key. The boolean
	// reports whether a set was saved, even an empty one.
	LoadRelations(ctx context.Context, key string) ([]Relation, bool, error)

	// SaveRelations replaces the relations stored under key.
	SaveRelations(ctx context.Context, key string, rels []Relation) error
}
