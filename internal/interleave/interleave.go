// Package interleave merges struggling and boosted-new items so new material
// enters a session at a bounded rate.
package interleave

import (
	"errors"
	"fmt"
	"math"

	"github.com/abhisek/lexiq/internal/spacedrep"
)

// ErrInvalidConfig is returned (wrapped) by Config.Validate.
var ErrInvalidConfig = errors.New("interleave: invalid config")

// Position window shared by struggling and boosted-new items.
const (
	windowLow  = 40
	windowHigh = 70
)

// Class is an item's role in the merge.
type Class int

const (
	ClassOther Class = iota
	ClassStruggling
	ClassBoostedNew
)

func (c Class) String() string {
	switch c {
	case ClassStruggling:
		return "struggling"
	case ClassBoostedNew:
		return "boosted-new"
	default:
		return "other"
	}
}

// Classify assigns the merge class. The window is [40,70): a position of 70
// is not struggling even though it is in the StillLearning band.
func Classify(position, attempts int) Class {
	if position < windowLow || position >= windowHigh {
		return ClassOther
	}
	if attempts > 0 {
		return ClassStruggling
	}
	return ClassBoostedNew
}

// Config controls the injection ratio.
type Config struct {
	TargetRatio float64 // boosted-new share per cycle
	MinRatio    float64 // lower bound of the acceptable band
	MaxRatio    float64 // upper bound of the acceptable band
	Window      int     // items measured by WindowRatio
}

// DefaultConfig returns a 4:1 cycle with a [0.10, 0.30] band over 25 items.
func DefaultConfig() Config {
	return Config{
		TargetRatio: 0.20,
		MinRatio:    0.10,
		MaxRatio:    0.30,
		Window:      25,
	}
}

// Validate reports an inconsistent ratio band.
func (c Config) Validate() error {
	if !(0 < c.MinRatio && c.MinRatio <= c.TargetRatio && c.TargetRatio <= c.MaxRatio && c.MaxRatio < 1) {
		return fmt.Errorf("%w: need 0 < min (%g) <= target (%g) <= max (%g) < 1",
			ErrInvalidConfig, c.MinRatio, c.TargetRatio, c.MaxRatio)
	}
	if c.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %d", ErrInvalidConfig, c.Window)
	}
	return nil
}

// StrugglingPerNew is the number of struggling items emitted before each
// boosted-new item. A 0.20 target gives 4.
func (c Config) StrugglingPerNew() int {
	if c.TargetRatio <= 0 {
		return DefaultConfig().StrugglingPerNew()
	}
	return max(1, int(math.Round(1/c.TargetRatio))-1)
}

// InBand reports whether ratio lies within [MinRatio, MaxRatio].
func (c Config) InBand(ratio float64) bool {
	return ratio >= c.MinRatio && ratio <= c.MaxRatio
}

// Merge orders items, which must already be in priority order. It emits
// StrugglingPerNew struggling items, then one boosted-new item, and repeats.
// Once struggling items run out the remaining items follow in their input
// order.
func Merge(items []spacedrep.Scored, cfg Config) []string {
	per := cfg.StrugglingPerNew()

	var struggling, boosted []int
	rest := make(map[int]bool)
	for i, it := range items {
		switch Classify(it.Position, it.Attempts) {
		case ClassStruggling:
			struggling = append(struggling, i)
		case ClassBoostedNew:
			boosted = append(boosted, i)
		default:
			rest[i] = true
		}
	}

	out := make([]string, 0, len(items))
	si, bi := 0, 0
	for si < len(struggling) {
		n := 0
		for ; n < per && si < len(struggling); n++ {
			out = append(out, items[struggling[si]].ID)
			si++
		}
		if n == per && bi < len(boosted) {
			out = append(out, items[boosted[bi]].ID)
			bi++
		}
	}

	for _, i := range boosted[bi:] {
		rest[i] = true
	}
	for i, it := range items {
		if rest[i] {
			out = append(out, it.ID)
		}
	}
	return out
}

// CycleRatio measures the boosted-new share over the longest prefix of queue
// made of complete cycles, where each boosted-new item is preceded by
// StrugglingPerNew struggling items. The prefix ends on the last boosted-new
// item of a complete cycle. It returns 0 when no cycle completes.
func CycleRatio(queue []string, classOf func(string) Class, cfg Config) float64 {
	per := cfg.StrugglingPerNew()
	struggling, boosted := 0, 0
	bestLen, bestBoosted := 0, 0
	for i, id := range queue {
		switch classOf(id) {
		case ClassStruggling:
			struggling++
		case ClassBoostedNew:
			boosted++
			// A cycle completes on its boosted-new item.
			if struggling == per*boosted {
				bestLen, bestBoosted = i+1, boosted
			}
		}
	}
	if bestLen == 0 {
		return 0
	}
	return float64(bestBoosted) / float64(bestLen)
}

// WindowRatio measures the boosted-new share of the first n items.
func WindowRatio(queue []string, classOf func(string) Class, n int) float64 {
	n = min(n, len(queue))
	if n <= 0 {
		return 0
	}
	boosted := 0
	for _, id := range queue[:n] {
		if classOf(id) == ClassBoostedNew {
			boosted++
		}
	}
	return float64(boosted) / float64(n)
}

// ClassOf builds a classifier over scored items for the ratio functions.
func ClassOf(items []spacedrep.Scored) func(string) Class {
	classes := make(map[string]Class, len(items))
	for _, it := range items {
		classes[it.ID] = Classify(it.Position, it.Attempts)
	}
	return func(id string) Class {
		return classes[id]
	}
}
