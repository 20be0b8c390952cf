package session

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Cache is a concurrent compute-if-absent map. Concurrent callers for the
// same key share one computation; callers for other keys never wait on it.
// A computation that fails or panics stores nothing.
type Cache[V any] struct {
	m      sync.Map // string -> V
	group  singleflight.Group
	epoch  atomic.Uint64
	misses atomic.Int64
}

// Get returns the cached value for key or computes it.
func (c *Cache[V]) Get(key string, compute func() (V, error)) (V, error) {
	if v, ok := c.m.Load(key); ok {
		return v.(V), nil
	}
	epoch := c.epoch.Load()
	res, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.m.Load(key); ok {
			return v, nil
		}
		c.misses.Add(1)
		v, err := compute()
		if err != nil {
			return nil, err
		}
		// a reset during compute means the value belongs to a dead generation
		if c.epoch.Load() == epoch {
			c.m.Store(key, v)
		}
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Peek returns the cached value without computing.
func (c *Cache[V]) Peek(key string) (V, bool) {
	if v, ok := c.m.Load(key); ok {
		return v.(V), true
	}
	var zero V
	return zero, false
}

// Len counts the stored entries.
func (c *Cache[V]) Len() int {
	n := 0
	c.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Misses reports how many computations ran.
func (c *Cache[V]) Misses() int64 { return c.misses.Load() }

func (c *Cache[V]) reset() {
	c.epoch.Add(1)
	c.m.Clear()
}
