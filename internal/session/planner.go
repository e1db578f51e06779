package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/lexiq/internal/catalog"
	"github.com/abhisek/lexiq/internal/chain"
	"github.com/abhisek/lexiq/internal/interleave"
	"github.com/abhisek/lexiq/internal/mastery"
	"github.com/abhisek/lexiq/internal/relgraph"
	"github.com/abhisek/lexiq/internal/spacedrep"
)

// difficultyPerAttempt weighs prior attempts against authored difficulty
// when ordering items inside a chain window.
const difficultyPerAttempt = 5

// Planner builds a session queue from the current learner state.
type Planner interface {
	// Build orders every catalog item for one session.
	Build(ctx context.Context, in Input) (*Queue, error)
}

// Input is one scheduling pass. Progress is read, never modified.
type Input struct {
	Catalog  *catalog.Catalog
	Progress map[string]mastery.ItemProgress
	Mode     Mode
	Now      time.Time
}

// Config collects the tunables of every scheduling stage.
type Config struct {
	Priority         spacedrep.Config
	Interleave       interleave.Config
	Chain            chain.Config
	MaxNewPerSession int
	DebugTopN        int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Priority:         spacedrep.DefaultConfig(),
		Interleave:       interleave.DefaultConfig(),
		Chain:            chain.DefaultConfig(),
		MaxNewPerSession: DefaultMaxNewPerSession,
		DebugTopN:        DefaultDebugTopN,
	}
}

// DefaultPlanner implements priority and chain scheduling.
type DefaultPlanner struct {
	// Graphs supplies the relationship graph for chain mode. When nil,
	// every relation strength is 0 and chain mode keeps priority order.
	Graphs *relgraph.GraphContext
	Config Config
}

// NewPlanner creates a DefaultPlanner.
func NewPlanner(graphs *relgraph.GraphContext, cfg Config) *DefaultPlanner {
	return &DefaultPlanner{Graphs: graphs, Config: cfg}
}

// Build runs one scheduling pass over a snapshot of in.Progress.
func (p *DefaultPlanner) Build(ctx context.Context, in Input) (*Queue, error) {
	mode := in.Mode
	if mode == "" {
		mode = ModePriority
	}
	if mode != ModePriority && mode != ModeChain {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	var items []catalog.Item
	if in.Catalog != nil {
		items = in.Catalog.Items
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	snap := snapshot(items, in.Progress)
	p.boost(items, snap)

	scored := make([]spacedrep.Scored, len(items))
	for i, it := range items {
		scored[i] = spacedrep.Score(snap[it.Word], now, p.Config.Priority)
	}
	spacedrep.SortByPriority(scored)

	var (
		order []string
		err   error
	)
	switch mode {
	case ModeChain:
		order, err = p.chainOrder(ctx, items, snap, scored)
		if err != nil {
			return nil, err
		}
	default:
		order = p.priorityOrder(scored)
	}

	if err := verify(order, items); err != nil {
		return nil, err
	}

	return &Queue{
		SessionID: uuid.NewString(),
		Mode:      mode,
		Items:     order,
		Debug:     p.debug(mode, order, snap),
	}, nil
}

// snapshot copies progress for every catalog item, synthesizing defaults
// and clamping corrupted records.
func snapshot(items []catalog.Item, progress map[string]mastery.ItemProgress) map[string]mastery.ItemProgress {
	snap := make(map[string]mastery.ItemProgress, len(items))
	for _, it := range items {
		pr, ok := progress[it.Word]
		if !ok {
			pr = mastery.NewItemProgress(it.Word)
		}
		pr.ID = it.Word
		snap[it.Word] = mastery.Clamp(pr)
	}
	return snap
}

// boost moves enough unattempted New-band items into the StillLearning band
// to fill one injection slot per struggling cycle.
func (p *DefaultPlanner) boost(items []catalog.Item, snap map[string]mastery.ItemProgress) {
	per := p.Config.Interleave.StrugglingPerNew()
	struggling := 0
	for _, pr := range snap {
		if interleave.Classify(pr.Position, pr.Attempts()) == interleave.ClassStruggling {
			struggling++
		}
	}
	want := (struggling + per - 1) / per
	if p.Config.MaxNewPerSession > 0 {
		want = min(want, p.Config.MaxNewPerSession)
	}

	for _, it := range items {
		if want == 0 {
			return
		}
		pr := snap[it.Word]
		if pr.Attempts() == 0 && pr.Band() == mastery.BandNew {
			snap[it.Word] = mastery.Boost(pr)
			want--
		}
	}
}

// priorityOrder puts the Incorrect band first, then interleaves the rest.
// The injection ratio applies to the tail after the Incorrect-band prefix;
// measured over the whole queue it is diluted by that prefix.
func (p *DefaultPlanner) priorityOrder(scored []spacedrep.Scored) []string {
	var (
		urgent []string
		rest   []spacedrep.Scored
	)
	for _, s := range scored {
		if s.Band == mastery.BandIncorrect {
			urgent = append(urgent, s.ID)
		} else {
			rest = append(rest, s)
		}
	}
	return append(urgent, interleave.Merge(rest, p.Config.Interleave)...)
}

// chainOrder sequences non-mastered items along the relationship graph and
// splices mastered items back in as reviews.
func (p *DefaultPlanner) chainOrder(ctx context.Context, items []catalog.Item, snap map[string]mastery.ItemProgress, scored []spacedrep.Scored) ([]string, error) {
	var g *relgraph.Graph
	if p.Graphs != nil {
		var err error
		if g, err = p.Graphs.Load(ctx); err != nil {
			return nil, fmt.Errorf("load relationship graph: %w", err)
		}
	}

	var review, candidates []string
	for _, s := range scored {
		if snap[s.ID].Level() == mastery.LevelMastered {
			review = append(review, s.ID)
		} else {
			candidates = append(candidates, s.ID)
		}
	}

	cfg := p.Config.Chain
	seq := chain.GenerateChainedSequence(chain.Request{
		Known:      review,
		Candidates: candidates,
		Graph:      g,
		Config:     cfg,
	})

	difficulty := make(map[string]float64, len(items))
	for _, it := range items {
		difficulty[it.Word] = it.Difficulty
	}
	seq = chain.OptimizeByDifficulty(seq, func(w string) float64 {
		return difficulty[w] + float64(snap[w].Attempts()*difficultyPerAttempt)
	}, cfg.DifficultyWindow)

	return chain.InsertReviewWords(seq, review, cfg.ReviewInterval), nil
}

func (p *DefaultPlanner) debug(mode Mode, order []string, snap map[string]mastery.ItemProgress) DebugSnapshot {
	n := p.Config.DebugTopN
	if n <= 0 {
		n = DefaultDebugTopN
	}
	n = min(n, len(order))

	d := DebugSnapshot{Mode: mode, TopN: make([]DebugEntry, 0, n)}
	for i, id := range order[:n] {
		pr := snap[id]
		d.TopN = append(d.TopN, DebugEntry{
			Rank:     i + 1,
			Word:     id,
			Position: pr.Position,
			Attempts: pr.Attempts(),
			Category: string(pr.Band()),
		})
	}
	return d
}

// verify checks that order lists every catalog item exactly once.
func verify(order []string, items []catalog.Item) error {
	want := make(map[string]bool, len(items))
	for _, it := range items {
		want[it.Word] = true
	}

	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if seen[id] {
			return fmt.Errorf("%w: %q", ErrDuplicateItem, id)
		}
		if !want[id] {
			return fmt.Errorf("%w: unexpected item %q", ErrIncompleteQueue, id)
		}
		seen[id] = true
	}
	if len(seen) != len(want) {
		for _, it := range items {
			if !seen[it.Word] {
				return fmt.Errorf("%w: %q", ErrIncompleteQueue, it.Word)
			}
		}
	}
	return nil
}
