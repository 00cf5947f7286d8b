package handlecache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// ErrInvalidCapacity is returned by New for a non-positive capacity.
var ErrInvalidCapacity = errors.New("cache capacity must be positive")

// DefaultCapacity is the number of handles kept when no capacity is configured.
const DefaultCapacity = 10000

// EvictFunc is called with the entry pushed out by a Put at capacity.
// It runs while the cache lock is held and must not call back into the cache.
type EvictFunc func(handle uint64, path string)

// Option configures a Cache.
type Option func(*Cache)

// WithOnEvict registers a callback for capacity evictions.
func WithOnEvict(fn EvictFunc) Option {
	return func(c *Cache) {
		c.onEvict = fn
	}
}

// Cache is a bounded handle -> path map with least-recently-written eviction.
type Cache struct {
	mu       sync.Mutex
	lru      *simplelru.LRU[uint64, string]
	capacity int
	onEvict  EvictFunc
}

// New creates a cache holding at most capacity handles.
func New(capacity int, opts ...Option) (*Cache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	c := &Cache{capacity: capacity}
	for _, opt := range opts {
		opt(c)
	}

	lru, err := simplelru.NewLRU[uint64, string](capacity, c.evicted)
	if err != nil {
		return nil, fmt.Errorf("creating LRU: %w", err)
	}
	c.lru = lru

	return c, nil
}

func (c *Cache) evicted(handle uint64, path string) {
	if c.onEvict != nil {
		c.onEvict(handle, path)
	}
}

// Put stores path for handle. An existing handle has its path replaced and
// becomes the most recently used entry. A new handle at capacity first
// pushes out the least recently used entry.
func (c *Cache) Put(handle uint64, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(handle, path)
}

// Get returns the path stored for handle. It does not change recency.
func (c *Cache) Get(handle uint64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Peek(handle)
}

// Len returns the number of cached handles.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Capacity returns the maximum number of cached handles.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Keys returns the cached handles from least to most recently used.
func (c *Cache) Keys() []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Keys()
}
