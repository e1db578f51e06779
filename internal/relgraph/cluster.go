package relgraph

import (
	"math"
	"strings"

	"github.com/abhisek/lexiq/internal/catalog"
)

const (
	// MinClusterSize is the smallest category that forms a cluster.
	MinClusterSize = 5

	cohesionPerCommon = 30
)

// Cluster is a group of items sharing a category label.
type Cluster struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Words      []string `json:"words"`
	CenterWord string   `json:"centerWord"`
	Cohesion   int      `json:"cohesion"`
}

// Clusters groups items by category label. Labels appear in first-seen
// order and members in catalog order; labels with fewer than
// MinClusterSize members are skipped.
func Clusters(items []catalog.Item) []Cluster {
	var labels []string
	members := make(map[string][]int)
	for i, it := range items {
		seen := make(map[string]bool, len(it.RelatedFields))
		for _, label := range it.RelatedFields {
			if seen[label] {
				continue
			}
			seen[label] = true
			if _, ok := members[label]; !ok {
				labels = append(labels, label)
			}
			members[label] = append(members[label], i)
		}
	}

	var clusters []Cluster
	for _, label := range labels {
		idx := members[label]
		if len(idx) < MinClusterSize {
			continue
		}

		c := Cluster{
			ID:   clusterID(label),
			Name: label,
		}
		best := -1
		for _, i := range idx {
			c.Words = append(c.Words, items[i].Word)
			if n := len(items[i].RelatedFields); n > best {
				best = n
				c.CenterWord = items[i].Word
			}
		}
		c.Cohesion = cohesion(items, idx)
		clusters = append(clusters, c)
	}
	return clusters
}

func cohesion(items []catalog.Item, idx []int) int {
	pairs, total := 0, 0
	for x := 0; x < len(idx); x++ {
		for y := x + 1; y < len(idx); y++ {
			total += commonCount(items[idx[x]].RelatedFields, items[idx[y]].RelatedFields)
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	avg := float64(total) / float64(pairs)
	return min(maxStrength, int(math.Round(cohesionPerCommon*avg)))
}

func clusterID(label string) string {
	return "cluster-" + strings.Join(strings.Fields(strings.ToLower(label)), "-")
}
