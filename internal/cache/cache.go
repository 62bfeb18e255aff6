// Package cache provides a bounded, least recently used cache for built plot
// panels.
package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxEntries is used when a non-positive capacity is given.
const DefaultMaxEntries = 32

// Cache is a fixed-capacity LRU keyed by string. It is safe for concurrent use.
type Cache[V any] struct {
	entries *lru.Cache[string, V]
	size    int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache holding at most size entries.
func New[V any](size int) (*Cache[V], error) {
	if size <= 0 {
		size = DefaultMaxEntries
	}
	c := &Cache[V]{size: size}

	entries, err := lru.NewWithEvict[string, V](size, func(string, V) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return c, nil
}

// Get retrieves a value and marks it most recently used.
func (c *Cache[V]) Get(key string) (V, bool) {
	v, ok := c.entries.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Set stores a value, evicting the least recently used entry when full.
func (c *Cache[V]) Set(key string, value V) {
	c.entries.Add(key, value)
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	return c.entries.Len()
}

// Stats returns cache statistics
func (c *Cache[V]) Stats() map[string]interface{} {
	hits, misses := c.hits.Load(), c.misses.Load()
	ratio := 0.0
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}

	return map[string]interface{}{
		"total_entries": c.entries.Len(),
		"max_entries":   c.size,
		"hits":          hits,
		"misses":        misses,
		"evictions":     c.evictions.Load(),
		"hit_ratio":     ratio,
	}
}
