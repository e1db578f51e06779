package relgraph

import (
	"slices"
	"sort"

	"github.com/abhisek/lexiq/internal/catalog"
)

// MaxRelationsPerItem caps each item's stored relation list.
const MaxRelationsPerItem = 20

// Graph holds each item's strongest relations with a strength index.
// A nil *Graph is valid and reports zero strength for every pair.
type Graph struct {
	order    []string
	byWord   map[string][]Relation
	strength map[string]map[string]int
}

// Build computes relations for every ordered pair of distinct items.
// It compares all pairs and should run once per catalog version.
func Build(items []catalog.Item) *Graph {
	index := make(map[string]int, len(items))
	for i, it := range items {
		index[it.Word] = i
	}

	var rels []Relation
	for i := range items {
		var list []Relation
		for j := range items {
			if i == j {
				continue
			}
			if rel, ok := strongest(items[i], items[j]); ok {
				list = append(list, rel)
			}
		}
		// Descending by strength, then catalog order of the target.
		sort.SliceStable(list, func(x, y int) bool {
			if list[x].Strength != list[y].Strength {
				return list[x].Strength > list[y].Strength
			}
			return index[list[x].To] < index[list[y].To]
		})
		if len(list) > MaxRelationsPerItem {
			list = list[:MaxRelationsPerItem]
		}
		rels = append(rels, list...)
	}
	return FromRelations(rels)
}

// FromRelations indexes precomputed relations. Relations keep their given
// order within each source item.
func FromRelations(rels []Relation) *Graph {
	g := &Graph{
		byWord:   make(map[string][]Relation),
		strength: make(map[string]map[string]int),
	}
	for _, rel := range rels {
		if rel.From == "" || rel.To == "" || rel.From == rel.To {
			continue
		}
		row, ok := g.strength[rel.From]
		if !ok {
			row = make(map[string]int)
			g.strength[rel.From] = row
			g.order = append(g.order, rel.From)
		}
		if _, dup := row[rel.To]; dup {
			continue
		}
		row[rel.To] = clampStrength(rel.Strength)
		rel.Strength = row[rel.To]
		g.byWord[rel.From] = append(g.byWord[rel.From], rel)
	}
	return g
}

// Strength returns the stored strength from a to b, or 0 when absent.
func (g *Graph) Strength(a, b string) int {
	if g == nil {
		return 0
	}
	return g.strength[a][b]
}

// Related returns a copy of word's relation list, strongest first.
func (g *Graph) Related(word string) []Relation {
	if g == nil {
		return nil
	}
	return slices.Clone(g.byWord[word])
}

// Relations flattens the graph in source order, suitable for FromRelations.
func (g *Graph) Relations() []Relation {
	if g == nil {
		return nil
	}
	var out []Relation
	for _, w := range g.order {
		out = append(out, g.byWord[w]...)
	}
	return out
}

// Len returns the number of stored relations.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	n := 0
	for _, list := range g.byWord {
		n += len(list)
	}
	return n
}

// Empty reports whether the graph holds no relations.
func (g *Graph) Empty() bool {
	return g.Len() == 0
}

func clampStrength(s int) int {
	return max(0, min(maxStrength, s))
}
