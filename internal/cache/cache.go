// Package cache provides a thread-safe generic map.
package cache

import "sync"

type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.items[key]
	return val, ok
}

// GetOrCreate returns the value stored under key, calling create and storing
// its result when there is none. create runs at most once per missing key.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	if val, ok := c.Get(key); ok {
		return val
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if val, ok := c.items[key]; ok {
		return val
	}
	val := create()
	c.items[key] = val
	return val
}

// DeleteFunc removes every entry for which del returns true.
func (c *Cache[K, V]) DeleteFunc(del func(K, V) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, v := range c.items {
		if del(k, v) {
			delete(c.items, k)
			n++
		}
	}
	return n
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
