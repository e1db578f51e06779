package relgraph

import (
	"context"
	"sync"

	"github.com/abhisek/lexiq/internal/catalog"
	"github.com/abhisek/lexiq/internal/logger"
)

// GraphContext owns the relationship graph for one dataset. The graph is
// built on the first Load and reused until Invalidate or a catalog change.
type GraphContext struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	cache   RelationCache
	log     *logger.Logger

	graph    *Graph
	clusters []Cluster
}

// NewGraphContext creates a context for c. cache and log may be nil.
func NewGraphContext(c *catalog.Catalog, cache RelationCache, log *logger.Logger) *GraphContext {
	return &GraphContext{
		catalog: c,
		cache:   cache,
		log:     logger.OrNop(log),
	}
}

// Key is the cache key of the current catalog.
func (gc *GraphContext) Key() string {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.catalog.Fingerprint()
}

// Load returns the graph, reading it from the cache or building it when
// nothing is loaded yet. Cache failures are logged and fall back to a build.
func (gc *GraphContext) Load(ctx context.Context) (*Graph, error) {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	if gc.graph != nil {
		return gc.graph, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := gc.catalog.Fingerprint()
	log := gc.log.With("dataset", gc.catalog.Name, "key", key)

	if gc.cache != nil {
		rels, ok, err := gc.cache.LoadRelations(ctx, key)
		switch {
		case err != nil:
			log.Warn("load cached relations", "error", err)
		case ok:
			gc.graph = FromRelations(rels)
			log.Debug("relations loaded from cache", "count", len(rels))
			return gc.graph, nil
		}
	}

	g := Build(gc.catalog.Items)
	log.Info("relations built", "items", len(gc.catalog.Items), "count", g.Len())

	if gc.cache != nil {
		if err := gc.cache.SaveRelations(ctx, key, g.Relations()); err != nil {
			log.Warn("save relations", "error", err)
		}
	}
	gc.graph = g
	return g, nil
}

// Clusters returns the category clusters of the current catalog.
func (gc *GraphContext) Clusters() []Cluster {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if gc.clusters == nil {
		gc.clusters = Clusters(gc.catalog.Items)
	}
	return gc.clusters
}

// Invalidate drops the loaded graph so the next Load rebuilds or reloads it.
func (gc *GraphContext) Invalidate() {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.graph = nil
	gc.clusters = nil
}

// SetCatalog swaps the catalog, invalidating only when its contents differ.
func (gc *GraphContext) SetCatalog(c *catalog.Catalog) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if c.Fingerprint() == gc.catalog.Fingerprint() {
		gc.catalog = c
		return
	}
	gc.catalog = c
	gc.graph = nil
	gc.clusters = nil
}
