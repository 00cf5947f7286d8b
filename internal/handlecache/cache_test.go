package handlecache

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T, capacity int, opts ...Option) *Cache {
	t.Helper()
	c, err := New(capacity, opts...)
	require.NoError(t, err)
	return c
}

func TestNew_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		_, err := New(capacity)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidCapacity))
	}
}

func TestCache_PutAndGet(t *testing.T) {
	c := newCache(t, 4)

	c.Put(0xABCD, `D:\foo.txt`)

	got, ok := c.Get(0xABCD)
	require.True(t, ok)
	assert.Equal(t, `D:\foo.txt`, got)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 4, c.Capacity())
}

func TestCache_GetMissing(t *testing.T) {
	c := newCache(t, 2)
	c.Put(1, "a")
	c.Put(2, "b")
	before := c.Keys()

	got, ok := c.Get(99)

	assert.False(t, ok)
	assert.Empty(t, got)
	assert.Equal(t, before, c.Keys(), "a miss must not touch the cache")
	assert.Equal(t, 2, c.Len())
}

func TestCache_PromoteOnWrite(t *testing.T) {
	c := newCache(t, 2)

	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(1, "c")
	c.Put(3, "d")

	_, ok := c.Get(2)
	assert.False(t, ok, "key 2 was least recently written")

	got, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, "c", got)

	got, ok = c.Get(3)
	require.True(t, ok)
	assert.Equal(t, "d", got)

	assert.Equal(t, []uint64{1, 3}, c.Keys())
}

func TestCache_OverwriteDoesNotDuplicate(t *testing.T) {
	c := newCache(t, 3)

	c.Put(7, "a")
	c.Put(7, "b")
	c.Put(7, "c")

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []uint64{7}, c.Keys())
}

func TestCache_GetDoesNotPromote(t *testing.T) {
	c := newCache(t, 2)

	c.Put(1, "a")
	c.Put(2, "b")

	// Reading key 1 leaves it the oldest entry.
	_, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, []uint64{1, 2}, c.Keys())

	c.Put(3, "c")

	_, ok = c.Get(1)
	assert.False(t, ok, "Get must not protect an entry from eviction")
	_, ok = c.Get(2)
	assert.True(t, ok)
}

func TestCache_NeverExceedsCapacity(t *testing.T) {
	const capacity = 8
	var evicted []uint64
	c := newCache(t, capacity, WithOnEvict(func(handle uint64, _ string) {
		evicted = append(evicted, handle)
	}))

	for i := uint64(0); i < 100; i++ {
		c.Put(i%13, fmt.Sprintf("path-%d", i))
		assert.LessOrEqual(t, c.Len(), capacity)
		assert.Len(t, c.Keys(), c.Len(), "recency order and key set must agree")
	}

	assert.Equal(t, capacity, c.Len())
	assert.NotEmpty(t, evicted)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []uint64
	c := newCache(t, 3, WithOnEvict(func(handle uint64, _ string) {
		evicted = append(evicted, handle)
	}))

	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(3, "c")
	c.Put(4, "d")

	assert.Equal(t, []uint64{1}, evicted)
	_, ok := c.Get(1)
	assert.False(t, ok)
	assert.Equal(t, []uint64{2, 3, 4}, c.Keys())
}

func TestCache_OverwriteAtCapacityDoesNotEvict(t *testing.T) {
	evictions := 0
	c := newCache(t, 2, WithOnEvict(func(uint64, string) { evictions++ }))

	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(2, "b2")

	assert.Zero(t, evictions)
	assert.Equal(t, []uint64{1, 2}, c.Keys())
}

func TestCache_Concurrent(t *testing.T) {
	const capacity = 64
	c := newCache(t, capacity)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				handle := uint64(worker*1000 + i%200)
				c.Put(handle, fmt.Sprintf("w%d-%d", worker, i))
				_, _ = c.Get(handle)
				_ = c.Len()
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, capacity, c.Len())
	keys := c.Keys()
	assert.Len(t, keys, capacity)

	seen := make(map[uint64]bool, len(keys))
	for _, k := range keys {
		assert.False(t, seen[k], "handle %d appears twice", k)
		seen[k] = true
	}
}
