// Package relcache stores computed relationship graphs in Redis so several
// processes serving the same catalog share one build.
package relcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/abhisek/lexiq/internal/logger"
	"github.com/abhisek/lexiq/internal/relgraph"
)

const (
	keyPrefix = "lexiq:relations:"

	// DefaultTTL bounds how long an unused graph stays in Redis.
	DefaultTTL = 24 * time.Hour
)

// Cache implements relgraph.RelationCache on a Redis client.
type Cache struct {
	rdb *goredis.Client
	ttl time.Duration
	log *logger.Logger
}

var _ relgraph.RelationCache = (*Cache)(nil)

// New wraps an existing client. A non-positive ttl uses DefaultTTL.
func New(rdb *goredis.Client, ttl time.Duration, log *logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		rdb: rdb,
		ttl: ttl,
		log: logger.OrNop(log).With("service", "RelationCache"),
	}
}

// Dial connects to addr and pings it before returning.
func Dial(ctx context.Context, addr string, ttl time.Duration, log *logger.Logger) (*Cache, error) {
	if addr == "" {
		return nil, errors.New("relcache: missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(rdb, ttl, log), nil
}

// Close closes the underlying client.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

// Key returns the Redis key for a catalog fingerprint.
func Key(fingerprint string) string {
	return keyPrefix + fingerprint
}

// LoadRelations implements relgraph.RelationCache. A missing key is a miss,
// not an error.
func (c *Cache) LoadRelations(ctx context.Context, key string) ([]relgraph.Relation, bool, error) {
	raw, err := c.rdb.Get(ctx, Key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get relations: %w", err)
	}

	rels, err := decode(raw)
	if err != nil {
		return nil, false, err
	}
	c.log.Debug("relations cache hit", "key", key, "relations", len(rels))
	return rels, true, nil
}

// SaveRelations implements relgraph.RelationCache. Saving refreshes the TTL.
func (c *Cache) SaveRelations(ctx context.Context, key string, rels []relgraph.Relation) error {
	raw, err := encode(rels)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, Key(key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set relations: %w", err)
	}
	return nil
}

// DeleteRelations drops the cached graph for key.
func (c *Cache) DeleteRelations(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, Key(key)).Err(); err != nil {
		return fmt.Errorf("delete relations: %w", err)
	}
	return nil
}

func encode(rels []relgraph.Relation) ([]byte, error) {
	if rels == nil {
		rels = []relgraph.Relation{}
	}
	raw, err := json.Marshal(rels)
	if err != nil {
		return nil, fmt.Errorf("encode relations: %w", err)
	}
	return raw, nil
}

func decode(raw []byte) ([]relgraph.Relation, error) {
	var rels []relgraph.Relation
	if err := json.Unmarshal(raw, &rels); err != nil {
		return nil, fmt.Errorf("decode relations: %w", err)
	}
	return rels, nil
}
