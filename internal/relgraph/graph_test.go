package relgraph

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lexiq/internal/catalog"
)

func TestCategoryRelation(t *testing.T) {
	items := []catalog.Item{
		{Word: "zebra", RelatedFields: []string{"Animals", "Africa"}},
		{Word: "mouse", RelatedFields: []string{"Animals", "Computers"}},
	}
	g := Build(items)

	assert.Equal(t, 65, g.Strength("zebra", "mouse"))
	assert.Equal(t, 65, g.Strength("mouse", "zebra"))

	rel := g.Related("zebra")
	require.Len(t, rel, 1)
	assert.Equal(t, RelationCategory, rel[0].Type)
}

func TestCategoryStrengthCapped(t *testing.T) {
	fields := []string{"a", "b", "c", "d", "e"}
	a := catalog.Item{Word: "x", RelatedFields: fields}
	b := catalog.Item{Word: "y", RelatedFields: fields}
	assert.Equal(t, 100, categoryStrength(a, b))
}

func TestDerivationStrength(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"unhappy", "undo", 30},
		{"unhappy", "unhappiness", 70}, // prefix + stem
		{"running", "jumping", 20},     // suffix
		{"Preview", "prepared", 30},    // prefix, case-insensitive
		{"garden", "gardening", 40},    // stem only
		{"cat", "dog", 0},
		{"reheating", "rehearing", 90}, // prefix + stem + suffix
		{"happiness", "sadness", 20},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, derivationStrength(tt.a, tt.b))
		})
	}
}

func TestDerivationRelationInGraph(t *testing.T) {
	g := Build([]catalog.Item{{Word: "unhappy"}, {Word: "undo"}})
	assert.GreaterOrEqual(t, g.Strength("unhappy", "undo"), 30)
	assert.Equal(t, RelationDerivation, g.Related("undo")[0].Type)
}

func TestContextStrength(t *testing.T) {
	a := catalog.Item{Word: "a", Meaning: "a large wild animal living in forests"}
	b := catalog.Item{Word: "b", Meaning: "a large wild animal living in deserts"}
	// Tokens > 2 chars: {large wild animal living forests} vs {... deserts}:
	// 4 shared of 6 total, 0.6 * 4/6 = 0.4.
	assert.Equal(t, 40, contextStrength(a, b))

	weak := catalog.Item{Word: "c", Meaning: "large ships"}
	// {large wild animal living forests} vs {large ships}: 1/6 * 0.6 = 10.
	assert.Equal(t, 0, contextStrength(a, weak), "scores at or below 30 are dropped")

	ety1 := catalog.Item{Word: "d", Etymology: "from latin aqua water"}
	ety2 := catalog.Item{Word: "e", Etymology: "from latin aqua water"}
	assert.Equal(t, 50, contextStrength(ety1, ety2), "etymology used when it beats meaning")
}

func TestStrongestSignalWins(t *testing.T) {
	a := catalog.Item{Word: "unhappy", RelatedFields: []string{"Emotions"}}
	b := catalog.Item{Word: "undo", RelatedFields: []string{"Emotions"}}
	rel, ok := strongest(a, b)
	require.True(t, ok)
	assert.Equal(t, RelationCategory, rel.Type)
	assert.Equal(t, 65, rel.Strength)
}

func TestStrengthMissing(t *testing.T) {
	var nilGraph *Graph
	assert.Equal(t, 0, nilGraph.Strength("a", "b"))
	assert.True(t, nilGraph.Empty())

	g := Build(nil)
	assert.Equal(t, 0, g.Strength("a", "b"))
	assert.Nil(t, g.Related("a"))
}

func TestTopRelationsCapped(t *testing.T) {
	items := []catalog.Item{{Word: "hub", RelatedFields: []string{"x"}}}
	for i := range 30 {
		items = append(items, catalog.Item{
			Word:          fmt.Sprintf("w%02d", i),
			RelatedFields: []string{"x"},
		})
	}
	g := Build(items)

	rel := g.Related("hub")
	require.Len(t, rel, MaxRelationsPerItem)
	// Equal strengths keep catalog order.
	assert.Equal(t, "w00", rel[0].To)
	assert.Equal(t, "w19", rel[MaxRelationsPerItem-1].To)
	assert.Equal(t, 0, g.Strength("hub", "w25"))
}

func TestRelationsSortedDescending(t *testing.T) {
	items := []catalog.Item{
		{Word: "unhappy", RelatedFields: []string{"Emotions"}},
		{Word: "undo"},
		{Word: "sad", RelatedFields: []string{"Emotions", "Mood"}},
		{Word: "glum", RelatedFields: []string{"Emotions"}},
	}
	g := Build(items)
	rel := g.Related("unhappy")
	for i := 1; i < len(rel); i++ {
		assert.GreaterOrEqual(t, rel[i-1].Strength, rel[i].Strength)
	}
}

func TestFromRelationsRoundTrip(t *testing.T) {
	items := []catalog.Item{
		{Word: "cat", RelatedFields: []string{"Animals"}},
		{Word: "dog", RelatedFields: []string{"Animals"}},
		{Word: "undo"},
		{Word: "unhappy"},
	}
	g := Build(items)
	again := FromRelations(g.Relations())
	assert.Equal(t, g.Relations(), again.Relations())
	assert.Equal(t, g.Strength("cat", "dog"), again.Strength("cat", "dog"))
}

func TestFromRelationsSkipsBadEntries(t *testing.T) {
	g := FromRelations([]Relation{
		{From: "a", To: "a", Strength: 50},
		{From: "", To: "b", Strength: 50},
		{From: "a", To: "b", Strength: 150},
		{From: "a", To: "b", Strength: 10},
	})
	assert.Equal(t, 1, g.Len())
	assert.Equal(t, 100, g.Strength("a", "b"))
}

func TestClusters(t *testing.T) {
	var items []catalog.Item
	for i := range 5 {
		fields := []string{"Animals"}
		if i == 2 {
			fields = append(fields, "Pets", "Farm")
		}
		items = append(items, catalog.Item{Word: fmt.Sprintf("a%d", i), RelatedFields: fields})
	}
	items = append(items, catalog.Item{Word: "lonely", RelatedFields: []string{"Pets"}})

	clusters := Clusters(items)
	require.Len(t, clusters, 1, "labels with fewer than 5 members are skipped")

	c := clusters[0]
	assert.Equal(t, "Animals", c.Name)
	assert.Equal(t, "cluster-animals", c.ID)
	assert.Equal(t, []string{"a0", "a1", "a2", "a3", "a4"}, c.Words)
	assert.Equal(t, "a2", c.CenterWord)
	// Every pair shares exactly one label.
	assert.Equal(t, 30, c.Cohesion)
}

func TestClustersCohesionCapped(t *testing.T) {
	fields := []string{"a", "b", "c", "d"}
	var items []catalog.Item
	for i := range 6 {
		items = append(items, catalog.Item{Word: fmt.Sprintf("w%d", i), RelatedFields: fields})
	}
	clusters := Clusters(items)
	require.Len(t, clusters, 4)
	assert.Equal(t, 100, clusters[0].Cohesion)
	assert.Equal(t, "w0", clusters[0].CenterWord, "first member wins ties")
	assert.Equal(t, []string{"a", "b", "c", "d"}, []string{
		clusters[0].Name, clusters[1].Name, clusters[2].Name, clusters[3].Name,
	})
}

func TestClustersEmpty(t *testing.T) {
	assert.Empty(t, Clusters(nil))
	assert.Empty(t, Clusters([]catalog.Item{{Word: "a"}, {Word: "b"}}))
}

type memCache struct {
	data    map[string][]Relation
	loads   int
	saves   int
	loadErr error
	saveErr error
}

func (m *memCache) LoadRelations(_ context.Context, key string) ([]Relation, bool, error) {
	m.loads++
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	rels, ok := m.data[key]
	return rels, ok, nil
}

func (m *memCache) SaveRelations(_ context.Context, key string, rels []Relation) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.data == nil {
		m.data = make(map[string][]Relation)
	}
	m.data[key] = rels
	return nil
}

func testCatalog(t *testing.T, items ...catalog.Item) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New("test", "1.0.0", items)
	require.NoError(t, err)
	return c
}

func TestGraphContextCaches(t *testing.T) {
	ctx := context.Background()
	c := testCatalog(t,
		catalog.Item{Word: "cat", RelatedFields: []string{"Animals"}},
		catalog.Item{Word: "dog", RelatedFields: []string{"Animals"}},
	)
	cache := &memCache{}
	gc := NewGraphContext(c, cache, nil)

	g1, err := gc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 65, g1.Strength("cat", "dog"))
	assert.Equal(t, 1, cache.saves)

	g2, err := gc.Load(ctx)
	require.NoError(t, err)
	assert.Same(t, g1, g2, "second load reuses the graph")
	assert.Equal(t, 1, cache.loads)

	// A fresh context for the same catalog reads the cache instead of building.
	other := NewGraphContext(c, cache, nil)
	g3, err := other.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 65, g3.Strength("cat", "dog"))
	assert.Equal(t, 1, cache.saves)
}

func TestGraphContextInvalidate(t *testing.T) {
	ctx := context.Background()
	c := testCatalog(t, catalog.Item{Word: "undo"}, catalog.Item{Word: "unhappy"})
	gc := NewGraphContext(c, nil, nil)

	g1, err := gc.Load(ctx)
	require.NoError(t, err)
	gc.Invalidate()
	g2, err := gc.Load(ctx)
	require.NoError(t, err)
	assert.NotSame(t, g1, g2)
	assert.Equal(t, g1.Relations(), g2.Relations())
}

func TestGraphContextSetCatalog(t *testing.T) {
	ctx := context.Background()
	c := testCatalog(t, catalog.Item{Word: "undo"}, catalog.Item{Word: "unhappy"})
	gc := NewGraphContext(c, nil, nil)

	g1, err := gc.Load(ctx)
	require.NoError(t, err)

	same := testCatalog(t, catalog.Item{Word: "undo"}, catalog.Item{Word: "unhappy"})
	gc.SetCatalog(same)
	g2, err := gc.Load(ctx)
	require.NoError(t, err)
	assert.Same(t, g1, g2, "identical contents keep the graph")

	changed := testCatalog(t, catalog.Item{Word: "cat"}, catalog.Item{Word: "dog"})
	gc.SetCatalog(changed)
	g3, err := gc.Load(ctx)
	require.NoError(t, err)
	assert.True(t, g3.Empty())
}

func TestGraphContextCacheFailure(t *testing.T) {
	ctx := context.Background()
	c := testCatalog(t, catalog.Item{Word: "undo"}, catalog.Item{Word: "unhappy"})
	cache := &memCache{loadErr: errors.New("down"), saveErr: errors.New("down")}
	gc := NewGraphContext(c, cache, nil)

	g, err := gc.Load(ctx)
	require.NoError(t, err, "cache errors never fail a load")
	assert.Equal(t, 30, g.Strength("undo", "unhappy"))
}

func TestGraphContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gc := NewGraphContext(testCatalog(t, catalog.Item{Word: "a"}), nil, nil)
	_, err := gc.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
