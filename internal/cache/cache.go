package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tournament-tracker/internal/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes computed values under canonical request signatures. Entries
// are valid while now < insertedAt+ttl; a forced refresh bypasses validity
// and overwrites the entry. Concurrent computations for the same key collapse
// into a single flight, and a failed computation leaves no entry behind.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  zerolog.Logger

	now func() time.Time
}

type entry struct {
	value      any
	insertedAt time.Time
	ttl        time.Duration
}

func New(m *metrics.Metrics, logger zerolog.Logger) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.insertedAt.Add(e.ttl)) {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) store(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, insertedAt: c.now(), ttl: ttl}
}

// Invalidate drops an entry regardless of freshness.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetOrCompute returns the cached value for key when valid and not bypassed,
// otherwise computes it through a per-key single flight and stores the
// result. All concurrent callers for one key share one computation and its
// outcome.
func GetOrCompute[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fresh bool, compute func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if !fresh {
		if v, ok := c.lookup(key); ok {
			c.metrics.CacheHits.Inc()
			typed, ok := v.(T)
			if !ok {
				return zero, fmt.Errorf("cache entry for %q has unexpected type %T", key, v)
			}
			c.logger.Debug().Str("key", key).Msg("cache hit")
			return typed, nil
		}
		c.metrics.CacheMisses.Inc()
	} else {
		c.metrics.CacheBypass.Inc()
		c.logger.Debug().Str("key", key).Msg("cache bypass requested")
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		// another caller may have completed a flight between our lookup
		// and joining the group
		if !fresh {
			if v, ok := c.lookup(key); ok {
				return v, nil
			}
		}
		value, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, value, ttl)
		return value, nil
	})
	if shared {
		c.metrics.FlightShared.Inc()
	}
	if err != nil {
		return zero, err
	}

	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache entry for %q has unexpected type %T", key, v)
	}
	return typed, nil
}
