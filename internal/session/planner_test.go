package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lexiq/internal/catalog"
	"github.com/abhisek/lexiq/internal/interleave"
	"github.com/abhisek/lexiq/internal/mastery"
	"github.com/abhisek/lexiq/internal/relgraph"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func mustCatalog(t *testing.T, items ...catalog.Item) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New("test", "v1.0.0", items)
	require.NoError(t, err)
	return c
}

func words(ws ...string) []catalog.Item {
	items := make([]catalog.Item, len(ws))
	for i, w := range ws {
		items[i] = catalog.Item{Word: w}
	}
	return items
}

func strugglingProgress(id string) mastery.ItemProgress {
	return mastery.ItemProgress{
		ID:                   id,
		CorrectCount:         1,
		IncorrectCount:       1,
		ConsecutiveIncorrect: 1,
		Position:             55,
		LastStudied:          now.Add(-time.Hour),
	}
}

func masteredProgress(id string) mastery.ItemProgress {
	return mastery.ItemProgress{
		ID:                 id,
		CorrectCount:       3,
		ConsecutiveCorrect: 3,
		Position:           mastery.MasteredPerfect,
		LastStudied:        now,
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModePriority, false},
		{"priority", ModePriority, false},
		{" Chain ", ModeChain, false},
		{"random", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownMode, "ParseMode(%q)", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func priorityFixture(t *testing.T) (*catalog.Catalog, map[string]mastery.ItemProgress) {
	t.Helper()
	var ws []string
	progress := make(map[string]mastery.ItemProgress)
	for i := range 8 {
		id := fmt.Sprintf("s%d", i)
		ws = append(ws, id)
		progress[id] = strugglingProgress(id)
	}
	for i := range 4 {
		ws = append(ws, fmt.Sprintf("n%d", i))
	}
	ws = append(ws, "x0", "m0")
	progress["x0"] = mastery.ItemProgress{
		ID:                   "x0",
		IncorrectCount:       3,
		ConsecutiveIncorrect: 3,
		Position:             mastery.IncorrectUrgent,
		LastStudied:          now.Add(-time.Hour),
	}
	progress["m0"] = masteredProgress("m0")
	return mustCatalog(t, words(ws...)...), progress
}

func TestBuildPriority(t *testing.T) {
	c, progress := priorityFixture(t)
	p := NewPlanner(nil, DefaultConfig())

	q, err := p.Build(context.Background(), Input{Catalog: c, Progress: progress, Mode: ModePriority, Now: now})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"x0",
		"s0", "s1", "s2", "s3", "n0",
		"s4", "s5", "s6", "s7", "n1",
		"n2", "n3", "m0",
	}, q.Items)
	assert.Equal(t, ModePriority, q.Mode)
	assert.NotEmpty(t, q.SessionID)

	_, touched := progress["n0"]
	assert.False(t, touched, "progress input must not be modified")
}

func TestBuildBoostDebugEntries(t *testing.T) {
	c, progress := priorityFixture(t)
	p := NewPlanner(nil, DefaultConfig())

	q, err := p.Build(context.Background(), Input{Catalog: c, Progress: progress, Now: now})
	require.NoError(t, err)

	require.Len(t, q.Debug.TopN, DefaultDebugTopN)
	assert.Equal(t, ModePriority, q.Debug.Mode)

	first := q.Debug.TopN[0]
	assert.Equal(t, DebugEntry{Rank: 1, Word: "x0", Position: mastery.IncorrectUrgent, Attempts: 3, Category: "incorrect"}, first)

	boosted := q.Debug.TopN[5]
	assert.Equal(t, "n0", boosted.Word)
	assert.Equal(t, mastery.StillLearningDefault, boosted.Position)
	assert.Equal(t, 0, boosted.Attempts)
	assert.Equal(t, string(mastery.BandStillLearning), boosted.Category)
}

func TestBuildBoostRespectsCap(t *testing.T) {
	c, progress := priorityFixture(t)
	cfg := DefaultConfig()
	cfg.MaxNewPerSession = 1
	p := NewPlanner(nil, cfg)

	q, err := p.Build(context.Background(), Input{Catalog: c, Progress: progress, Now: now})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"x0",
		"s0", "s1", "s2", "s3", "n0",
		"s4", "s5", "s6", "s7",
		"n1", "n2", "n3", "m0",
	}, q.Items)
}

func TestBuildReproducible(t *testing.T) {
	c, progress := priorityFixture(t)
	p := NewPlanner(nil, DefaultConfig())
	in := Input{Catalog: c, Progress: progress, Now: now}

	a, err := p.Build(context.Background(), in)
	require.NoError(t, err)
	b, err := p.Build(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, a.Items, b.Items)
	assert.Equal(t, a.Debug, b.Debug)
	assert.NotEqual(t, a.SessionID, b.SessionID)
}

func TestBuildClampsCorruptedProgress(t *testing.T) {
	c := mustCatalog(t, words("a", "b")...)
	progress := map[string]mastery.ItemProgress{
		"b": {ID: "b", IncorrectCount: 1, ConsecutiveIncorrect: 1, Position: 150},
	}

	q, err := NewPlanner(nil, DefaultConfig()).Build(context.Background(), Input{Catalog: c, Progress: progress, Now: now})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, q.Items)
	assert.Equal(t, mastery.MaxPosition, q.Debug.TopN[0].Position)
}

func TestBuildEmptyCatalog(t *testing.T) {
	c := mustCatalog(t)
	for _, mode := range []Mode{ModePriority, ModeChain} {
		q, err := NewPlanner(nil, DefaultConfig()).Build(context.Background(), Input{Catalog: c, Mode: mode, Now: now})
		require.NoError(t, err)
		assert.Empty(t, q.Items)
		assert.Empty(t, q.Debug.TopN)
	}
}

func TestBuildUnknownMode(t *testing.T) {
	c := mustCatalog(t, words("a")...)
	_, err := NewPlanner(nil, DefaultConfig()).Build(context.Background(), Input{Catalog: c, Mode: "random"})
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestBuildRatioLaw(t *testing.T) {
	var ws []string
	progress := make(map[string]mastery.ItemProgress)
	for i := range 20 {
		id := fmt.Sprintf("s%02d", i)
		ws = append(ws, id)
		progress[id] = strugglingProgress(id)
	}
	for i := range 12 {
		ws = append(ws, fmt.Sprintf("n%02d", i))
	}
	c := mustCatalog(t, words(ws...)...)
	cfg := DefaultConfig()

	q, err := NewPlanner(nil, cfg).Build(context.Background(), Input{Catalog: c, Progress: progress, Now: now})
	require.NoError(t, err)

	// 20 struggling items at 4 per slot boost n00..n04.
	classOf := func(id string) interleave.Class {
		switch {
		case strings.HasPrefix(id, "s"):
			return interleave.ClassStruggling
		case id <= "n04":
			return interleave.ClassBoostedNew
		default:
			return interleave.ClassOther
		}
	}
	ratio := interleave.CycleRatio(q.Items, classOf, cfg.Interleave)
	assert.InDelta(t, 0.2, ratio, 1e-9)
	assert.True(t, cfg.Interleave.InBand(interleave.WindowRatio(q.Items, classOf, cfg.Interleave.Window)))
}

func TestBuildRatioLawAfterIncorrectPrefix(t *testing.T) {
	var ws []string
	progress := make(map[string]mastery.ItemProgress)
	for i := range 10 {
		id := fmt.Sprintf("x%02d", i)
		ws = append(ws, id)
		progress[id] = mastery.ItemProgress{
			ID:                   id,
			IncorrectCount:       3,
			ConsecutiveIncorrect: 3,
			Position:             mastery.IncorrectUrgent,
			LastStudied:          now.Add(-time.Hour),
		}
	}
	for i := range 20 {
		id := fmt.Sprintf("s%02d", i)
		ws = append(ws, id)
		progress[id] = strugglingProgress(id)
	}
	for i := range 12 {
		ws = append(ws, fmt.Sprintf("n%02d", i))
	}
	c := mustCatalog(t, words(ws...)...)
	cfg := DefaultConfig()

	q, err := NewPlanner(nil, cfg).Build(context.Background(), Input{Catalog: c, Progress: progress, Now: now})
	require.NoError(t, err)

	for i := range 10 {
		assert.True(t, strings.HasPrefix(q.Items[i], "x"), "item %d = %s, want the Incorrect band first", i, q.Items[i])
	}

	classOf := func(id string) interleave.Class {
		switch {
		case strings.HasPrefix(id, "s"):
			return interleave.ClassStruggling
		case strings.HasPrefix(id, "n") && id <= "n04":
			return interleave.ClassBoostedNew
		default:
			return interleave.ClassOther
		}
	}
	tail := q.Items[10:]
	assert.InDelta(t, 0.2, interleave.CycleRatio(tail, classOf, cfg.Interleave), 1e-9)
	assert.True(t, cfg.Interleave.InBand(interleave.WindowRatio(tail, classOf, cfg.Interleave.Window)))

	// Over the whole queue the prefix counts as plain items.
	assert.Less(t, interleave.WindowRatio(q.Items, classOf, cfg.Interleave.Window), 0.2)
}

func chainFixture(t *testing.T) (*catalog.Catalog, map[string]mastery.ItemProgress) {
	t.Helper()
	c := mustCatalog(t,
		catalog.Item{Word: "cat", RelatedFields: []string{"Animals"}},
		catalog.Item{Word: "happy", Difficulty: 3},
		catalog.Item{Word: "unhappy", Difficulty: 1},
		catalog.Item{Word: "tiger", RelatedFields: []string{"Animals"}},
		catalog.Item{Word: "lion", RelatedFields: []string{"Animals"}},
	)
	progress := map[string]mastery.ItemProgress{
		"cat": {ID: "cat", CorrectCount: 1, Position: mastery.OneShotCorrect, LastStudied: now},
	}
	return c, progress
}

func TestBuildChainWithoutGraph(t *testing.T) {
	c, progress := chainFixture(t)
	q, err := NewPlanner(nil, DefaultConfig()).Build(context.Background(), Input{Catalog: c, Progress: progress, Mode: ModeChain, Now: now})
	require.NoError(t, err)

	// No relations: priority order, then sorted by difficulty inside the
	// first window, with the mastered item appended as review.
	assert.Equal(t, []string{"tiger", "lion", "unhappy", "happy", "cat"}, q.Items)
	assert.Equal(t, ModeChain, q.Debug.Mode)
}

func TestBuildChainFollowsRelations(t *testing.T) {
	c, progress := chainFixture(t)
	cfg := DefaultConfig()
	cfg.Chain.DifficultyWindow = 1
	graphs := relgraph.NewGraphContext(c, nil, nil)

	q, err := NewPlanner(graphs, cfg).Build(context.Background(), Input{Catalog: c, Progress: progress, Mode: ModeChain, Now: now})
	require.NoError(t, err)

	assert.Equal(t, []string{"tiger", "lion"}, q.Items[:2], "items related to the known cat come first")
	assert.ElementsMatch(t, c.Words(), q.Items)
	assert.Equal(t, "cat", q.Items[len(q.Items)-1])
}

func TestBuildChainCancelled(t *testing.T) {
	c, progress := chainFixture(t)
	graphs := relgraph.NewGraphContext(c, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPlanner(graphs, DefaultConfig()).Build(ctx, Input{Catalog: c, Progress: progress, Mode: ModeChain, Now: now})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestVerify(t *testing.T) {
	items := words("a", "b", "c")
	assert.NoError(t, verify([]string{"c", "a", "b"}, items))
	assert.ErrorIs(t, verify([]string{"a", "b", "a"}, items), ErrDuplicateItem)
	assert.ErrorIs(t, verify([]string{"a", "b"}, items), ErrIncompleteQueue)
	assert.ErrorIs(t, verify([]string{"a", "b", "c", "d"}, items), ErrIncompleteQueue)
}
