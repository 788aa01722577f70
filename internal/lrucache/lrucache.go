// Package lrucache memoises derived values (parsed colours, terminal styles)
// keyed by their source string.
package lrucache

import (
	"container/list"
	"sync"
)

type Cache[K comparable, V any] struct {
	mu  sync.Mutex
	cap int
	ll  *list.List
	m   map[K]*list.Element
}

type entry[K comparable, V any] struct {
	key K
	val V
}

func New[K comparable, V any](capacity int) *Cache[K, V] {
	return &Cache[K, V]{cap: max(1, capacity), ll: list.New(), m: make(map[K]*list.Element)}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.m[key]; ok {
		c.ll.MoveToFront(ele)
		return ele.Value.(entry[K, V]).val, true
	}
	return *new(V), false
}

func (c *Cache[K, V]) Add(key K, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.add(key, val)
}

// GetOrCompute returns the cached value of key, computing and storing it on
// a miss. fn runs under the cache lock.
func (c *Cache[K, V]) GetOrCompute(key K, fn func(K) V) V {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.m[key]; ok {
		c.ll.MoveToFront(ele)
		return ele.Value.(entry[K, V]).val
	}
	val := fn(key)
	c.add(key, val)
	return val
}

func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *Cache[K, V]) add(key K, val V) {
	if ele, ok := c.m[key]; ok {
		ele.Value = entry[K, V]{key: key, val: val}
		c.ll.MoveToFront(ele)
		return
	}
	c.m[key] = c.ll.PushFront(entry[K, V]{key: key, val: val})
	if c.ll.Len() > c.cap {
		if tail := c.ll.Back(); tail != nil {
			c.ll.Remove(tail)
			delete(c.m, tail.Value.(entry[K, V]).key)
		}
	}
}
