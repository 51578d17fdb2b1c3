// Package assets caches values loaded from package parts.
package assets

import (
	"sync"
	"sync/atomic"

	"github.com/Faultbox/threemf/pkg/opc"
)

// Manager loads parts on first use and serves later requests from its
// cache. Parts are keyed by opc.PartKey, so spellings differing only in
// case share one entry.
type Manager[V any] struct {
	load  func(part string) (V, error)
	cache *Cache[V]
	mu    sync.Mutex // serializes loads
}

// NewManager creates a manager that loads missing parts with load.
func NewManager[V any](load func(part string) (V, error)) *Manager[V] {
	return &Manager[V]{
		load:  load,
		cache: NewCache[V](),
	}
}

// Load returns the value for a part, loading it if not cached. Failed
// loads are not cached.
func (m *Manager[V]) Load(part string) (V, error) {
	key := opc.PartKey(part)
	if v, ok := m.cache.Get(key); ok {
		return v, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another caller may have finished the load while we waited.
	if v, ok := m.cache.peek(key); ok {
		return v, nil
	}
	v, err := m.load(opc.NormalizePath(part))
	if err != nil {
		var zero V
		return zero, err
	}
	m.cache.Set(key, v)
	return v, nil
}

// Preload stores an already loaded value.
func (m *Manager[V]) Preload(part string, v V) {
	m.cache.Set(opc.PartKey(part), v)
}

// Cache exposes the underlying cache.
func (m *Manager[V]) Cache() *Cache[V] {
	return m.cache
}

// Close drops every cached value.
func (m *Manager[V]) Close() {
	m.cache.Clear()
}

// Cache is a concurrency-safe in-memory map with hit statistics.
type Cache[V any] struct {
	data map[string]V
	mu   sync.RWMutex

	// Stats
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache creates a new cache.
func NewCache[V any]() *Cache[V] {
	return &Cache[V]{
		data: make(map[string]V),
	}
}

// Get retrieves an item from cache.
func (c *Cache[V]) Get(key string) (V, bool) {
	v, ok := c.peek(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

func (c *Cache[V]) peek(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[key]
	return v, ok
}

// Set stores an item in cache.
func (c *Cache[V]) Set(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = v
}

// Len returns the number of cached items.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]V)
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns cache statistics.
func (c *Cache[V]) Stats() (hits, misses int) {
	return int(c.hits.Load()), int(c.misses.Load())
}
