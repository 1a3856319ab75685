// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package cache provides a fixed-capacity LRU used for pure memoization
// caches. Eviction drops recomputable results only, never state.
package cache

import (
	"container/list"
	"sync"
)

type entry struct {
	key     string
	value   any
	element *list.Element
}

// LRU is a bounded, concurrency-safe least-recently-used cache keyed by
// string.
type LRU struct {
	mu       sync.Mutex
	items    map[string]*entry
	order    *list.List
	capacity int

	hits   uint64
	misses uint64
}

// NewLRU creates an LRU holding at most capacity entries. A capacity of
// zero or less disables caching (every Get misses, Set is a no-op).
func NewLRU(capacity int) *LRU {
	return &LRU{
		items:    make(map[string]*entry),
		order:    list.New(),
		capacity: capacity,
	}
}

// Get returns the cached value for key, if present.
func (c *LRU) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.order.MoveToFront(item.element)
	c.hits++
	return item.value, true
}

// Set stores value under key, evicting the least recently used entry
// when the cache is full.
func (c *LRU) Set(key string, value any) {
	if c.capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if item, ok := c.items[key]; ok {
		item.value = value
		c.order.MoveToFront(item.element)
		return
	}

	if len(c.items) >= c.capacity {
		if back := c.order.Back(); back != nil {
			evicted := back.Value.(*entry)
			delete(c.items, evicted.key)
			c.order.Remove(back)
		}
	}

	item := &entry{key: key, value: value}
	item.element = c.order.PushFront(item)
	c.items[key] = item
}

// Len returns the current number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns cumulative hit and miss counts.
func (c *LRU) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
