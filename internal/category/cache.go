package category

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix = "category_slug:"
	cacheTTL       = time.Hour
)

// slugCache memoizes slug → taxonomy id so the resolver does not hit
// storage for every record of a 300k item run.
type slugCache interface {
	get(ctx context.Context, slug string) (int64, bool)
	put(ctx context.Context, slug string, id int64)
}

type memCache struct {
	mu sync.RWMutex
	m  map[string]int64
}

func newMemCache() *memCache {
	return &memCache{m: make(map[string]int64)}
}

func (c *memCache) get(_ context.Context, slug string) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.m[slug]
	return id, ok
}

func (c *memCache) put(_ context.Context, slug string, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[slug] = id
}

type redisCache struct {
	client *redis.Client
}

func (c *redisCache) get(ctx context.Context, slug string) (int64, bool) {
	id, err := c.client.Get(ctx, cacheKeyPrefix+slug).Int64()
	if err != nil {
		return 0, false
	}
	return id, true
}

func (c *redisCache) put(ctx context.Context, slug string, id int64) {
	c.client.Set(ctx, cacheKeyPrefix+slug, id, cacheTTL)
}
