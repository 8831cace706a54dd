package enrich

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/turtacn/sentinel-risk/internal/infrastructure/database/redis"
	"github.com/turtacn/sentinel-risk/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/sentinel-risk/internal/intelligence"
)

// Cache stores at most one narrative brief per country.  Sub-scores and ML
// metadata are never cached; only the narrative is.  Implementations are
// last-write-wins under concurrent Set calls.
type Cache interface {
	Get(ctx context.Context, code string) (*intelligence.Brief, bool)
	Set(ctx context.Context, code string, brief *intelligence.Brief)
}

type memoryEntry struct {
	brief     *intelligence.Brief
	expiresAt time.Time
}

// MemoryCache is the in-process TTL cache used when Redis is not configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache returns a cache holding each brief for ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached brief for code when present and unexpired.  Expired
// entries are removed on access.
func (c *MemoryCache) Get(_ context.Context, code string) (*intelligence.Brief, bool) {
	c.mu.RLock()
	e, ok := c.entries[code]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have
		// refreshed the entry.
		if cur, ok := c.entries[code]; ok && c.now().After(cur.expiresAt) {
			delete(c.entries, code)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.brief, true
}

// Set stores the brief with a fresh expiry, replacing any existing entry.
func (c *MemoryCache) Set(_ context.Context, code string, brief *intelligence.Brief) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[code] = memoryEntry{brief: brief, expiresAt: c.now().Add(c.ttl)}
}

// RedisCache adapts the Redis brief store to the Cache contract, serializing
// briefs as JSON.  Backend failures degrade to a miss on read and a no-op on
// write; the caller regenerates the brief either way.
type RedisCache struct {
	store  *redis.BriefStore
	ttl    time.Duration
	logger logging.Logger
}

// NewRedisCache wraps an already-connected brief store.
func NewRedisCache(store *redis.BriefStore, ttl time.Duration, logger logging.Logger) *RedisCache {
	return &RedisCache{store: store, ttl: ttl, logger: logger.Named("brief-cache")}
}

func (c *RedisCache) Get(ctx context.Context, code string) (*intelligence.Brief, bool) {
	payload, err := c.store.Get(ctx, code)
	if err != nil {
		if err != redis.ErrCacheMiss {
			c.logger.Warn("brief cache read failed", logging.String("country", code), logging.Err(err))
		}
		return nil, false
	}
	var brief intelligence.Brief
	if err := json.Unmarshal(payload, &brief); err != nil {
		c.logger.Warn("stored brief is malformed, discarding", logging.String("country", code), logging.Err(err))
		return nil, false
	}
	return &brief, true
}

func (c *RedisCache) Set(ctx context.Context, code string, brief *intelligence.Brief) {
	payload, err := json.Marshal(brief)
	if err != nil {
		c.logger.Warn("failed to encode brief", logging.String("country", code), logging.Err(err))
		return
	}
	if err := c.store.Set(ctx, code, payload, c.ttl); err != nil {
		c.logger.Warn("brief cache write failed", logging.String("country", code), logging.Err(err))
	}
}
