// Package storage loads an ERP's embedded knowledge set (operations,
// flows, enums, error catalogs) from a manifest-indexed fs.FS and serves
// it through per-document caches with sliding expiration.
package storage

import (
	"sync"
	"time"
)

// DefaultCacheTTL is the idle period after which a cached document is
// reloaded from its source. The TTL slides on every access, so steady
// traffic never re-parses; an idle gap picks up edited knowledge files
// without a process restart.
const DefaultCacheTTL = 10 * time.Minute

// Cache is a thread-safe get-or-compute cache keyed by logical document
// name. Concurrent misses for the same key coalesce into one load: the
// per-cell mutex serializes loading while leaving other keys untouched.
type Cache[T any] struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	cells map[string]*cacheCell[T]
}

type cacheCell[T any] struct {
	mu         sync.Mutex
	loaded     bool
	value      T
	lastAccess time.Time
}

// NewCache creates a Cache with the given sliding TTL. A zero or negative
// ttl falls back to DefaultCacheTTL.
func NewCache[T any](ttl time.Duration) *Cache[T] {
	return newCacheWithClock[T](ttl, time.Now)
}

func newCacheWithClock[T any](ttl time.Duration, now func() time.Time) *Cache[T] {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache[T]{
		ttl:   ttl,
		now:   now,
		cells: make(map[string]*cacheCell[T]),
	}
}

// Get returns the cached value for key, calling load on a miss or after
// the sliding TTL has elapsed since the last access. A load error is
// returned without caching, so the next Get retries.
func (c *Cache[T]) Get(key string, load func() (T, error)) (T, error) {
	c.mu.Lock()
	cell, ok := c.cells[key]
	if !ok {
		cell = &cacheCell[T]{}
		c.cells[key] = cell
	}
	c.mu.Unlock()

	cell.mu.Lock()
	defer cell.mu.Unlock()

	now := c.now()
	if cell.loaded && now.Sub(cell.lastAccess) < c.ttl {
		cell.lastAccess = now
		return cell.value, nil
	}

	value, err := load()
	if err != nil {
		var zero T
		return zero, err
	}

	cell.loaded = true
	cell.value = value
	cell.lastAccess = now
	return value, nil
}

// Invalidate drops the cell for key, forcing a reload on the next Get.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cells, key)
}
