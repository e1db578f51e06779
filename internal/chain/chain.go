// Package chain sequences new items next to items the learner already knows,
// walking relation strengths greedily.
package chain

import (
	"slices"
	"sort"
)

// Strengths looks up directed relation strength in [0,100]. Missing pairs
// report 0. *relgraph.Graph satisfies it, including a nil graph.
type Strengths interface {
	Strength(a, b string) int
}

type noStrengths struct{}

func (noStrengths) Strength(string, string) int { return 0 }

func orNone(g Strengths) Strengths {
	if g == nil {
		return noStrengths{}
	}
	return g
}

// Config holds the sequencing limits.
type Config struct {
	ClusterMaxSize     int // cap for BuildLearningCluster
	SequenceClusterMax int // cap per cluster inside GenerateChainedSequence
	StrengthCutoff     int // minimum average strength to join a cluster
	DifficultyWindow   int // window size for OptimizeByDifficulty
	ReviewInterval     int // main items between review insertions
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		ClusterMaxSize:     10,
		SequenceClusterMax: 5,
		StrengthCutoff:     30,
		DifficultyWindow:   5,
		ReviewInterval:     5,
	}
}

// FindBestUnknown picks the candidate most strongly related to any known
// item. Without known items the first candidate is the seed. Ties go to the
// earlier candidate. The boolean is false when there are no candidates.
func FindBestUnknown(known, candidates []string, g Strengths) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	if len(known) == 0 {
		return candidates[0], true
	}
	g = orNone(g)

	best, bestScore := candidates[0], -1
	for _, c := range candidates {
		score := 0
		for _, k := range known {
			score = max(score, g.Strength(k, c))
		}
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, true
}

// BuildLearningCluster grows a cluster from seed. Each step adds the pool
// item with the highest average strength from the current members; growth
// stops at maxSize or when no item averages at least cutoff.
func BuildLearningCluster(seed string, pool []string, g Strengths, maxSize, cutoff int) []string {
	g = orNone(g)
	cluster := []string{seed}
	in := map[string]bool{seed: true}

	var rest []string
	for _, w := range pool {
		if !in[w] {
			in[w] = true
			rest = append(rest, w)
		}
	}

	for len(cluster) < maxSize && len(rest) > 0 {
		bestIdx, bestAvg := -1, 0.0
		for i, cand := range rest {
			if avg := averageStrength(cluster, cand, g); bestIdx < 0 || avg > bestAvg {
				bestIdx, bestAvg = i, avg
			}
		}
		if bestAvg < float64(cutoff) {
			break
		}
		cluster = append(cluster, rest[bestIdx])
		rest = slices.Delete(rest, bestIdx, bestIdx+1)
	}
	return cluster
}

func averageStrength(members []string, cand string, g Strengths) float64 {
	if len(members) == 0 {
		return 0
	}
	sum := 0
	for _, m := range members {
		sum += g.Strength(m, cand)
	}
	return float64(sum) / float64(len(members))
}

// Request describes one chained sequencing pass.
type Request struct {
	// Known holds the mastered items, in a stable order.
	Known []string
	// Candidates are the items to sequence, most urgent first.
	Candidates []string
	// Target limits the sequence length. Zero means len(Candidates).
	Target int
	Graph  Strengths
	Config Config
}

// GenerateChainedSequence repeatedly seeds at the best unknown candidate and
// appends a cluster grown around it, until candidates run out or the target
// length is reached.
func GenerateChainedSequence(req Request) []string {
	cfg := req.Config
	target := req.Target
	if target <= 0 || target > len(req.Candidates) {
		target = len(req.Candidates)
	}

	mastered := make(map[string]bool, len(req.Known))
	for _, k := range req.Known {
		mastered[k] = true
	}

	used := make(map[string]bool, target)
	seq := make([]string, 0, target)
	for len(seq) < target {
		var remaining []string
		for _, c := range req.Candidates {
			if !used[c] {
				remaining = append(remaining, c)
			}
		}
		if len(remaining) == 0 {
			break
		}

		known := slices.Clone(req.Known)
		for _, w := range seq {
			if mastered[w] {
				known = append(known, w)
			}
		}

		seed, ok := FindBestUnknown(known, remaining, req.Graph)
		if !ok {
			break
		}
		size := min(cfg.SequenceClusterMax, target-len(seq))
		for _, w := range BuildLearningCluster(seed, remaining, req.Graph, max(size, 1), cfg.StrengthCutoff) {
			if !used[w] {
				used[w] = true
				seq = append(seq, w)
			}
		}
	}
	return seq
}

// OptimizeByDifficulty sorts each consecutive window of seq by key,
// ascending and stable, keeping the coarse order between windows.
func OptimizeByDifficulty(seq []string, key func(string) float64, window int) []string {
	out := slices.Clone(seq)
	if window <= 1 {
		return out
	}
	for start := 0; start < len(out); start += window {
		w := out[start:min(start+window, len(out))]
		sort.SliceStable(w, func(i, j int) bool {
			return key(w[i]) < key(w[j])
		})
	}
	return out
}

// InsertReviewWords splices one review item after every interval-th main
// item and appends the unused review items at the end. Review items that
// already appear in main are skipped.
func InsertReviewWords(main, review []string, interval int) []string {
	if interval <= 0 {
		interval = DefaultConfig().ReviewInterval
	}

	seen := make(map[string]bool, len(main)+len(review))
	for _, w := range main {
		seen[w] = true
	}
	var queue []string
	for _, w := range review {
		if !seen[w] {
			seen[w] = true
			queue = append(queue, w)
		}
	}

	out := make([]string, 0, len(main)+len(queue))
	for i, w := range main {
		out = append(out, w)
		if (i+1)%interval == 0 && len(queue) > 0 {
			out = append(out, queue[0])
			queue = queue[1:]
		}
	}
	return append(out, queue...)
}
