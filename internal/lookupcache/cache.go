// Package lookupcache is a read-through memoization layer sitting in
// front of a B+-tree's point lookups. It is strictly an optimization:
// it never holds the buffer pool's pin/eviction invariants, and a
// miss always falls through to the tree. Any successful insert
// invalidates the affected key so a stale cached value is never
// returned.
package lookupcache

import (
	"encoding/hex"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache wraps a ristretto hash cache keyed by the index name and the
// looked-up key, so one process-wide cache can safely serve several
// trees without cross-index collisions.
type Cache struct {
	c *ristretto.Cache[string, []byte]
}

// New creates a cache that tracks roughly maxEntries recently-looked-up
// values. Cost is counted per entry (1), not per byte, since index
// values are typically small and uniform.
func New(maxEntries int64) (*Cache, error) {
	if maxEntries <= 0 {
		maxEntries = 10_000
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
		// Without this ristretto adds its own per-item storage overhead
		// to every Set's cost, so MaxCost would no longer count entries.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

func cacheKey(indexName string, key []byte) string {
	return indexName + ":" + hex.EncodeToString(key)
}

// Get returns the cached value for (indexName, key), if present.
func (lc *Cache) Get(indexName string, key []byte) ([]byte, bool) {
	if lc == nil {
		return nil, false
	}
	return lc.c.Get(cacheKey(indexName, key))
}

// Put records value as the cached result for (indexName, key).
func (lc *Cache) Put(indexName string, key, value []byte) {
	if lc == nil {
		return
	}
	lc.c.Set(cacheKey(indexName, key), value, 1)
}

// Invalidate removes any cached entry for (indexName, key), called
// after a successful insert so a future Get can't return a stale miss
// (the key used to not exist) or stale value.
func (lc *Cache) Invalidate(indexName string, key []byte) {
	if lc == nil {
		return
	}
	lc.c.Del(cacheKey(indexName, key))
}

// Close releases the cache's background goroutines.
func (lc *Cache) Close() {
	if lc == nil {
		return
	}
	lc.c.Close()
}
