package router

import (
	"container/list"
	"sync"
)

// BoundedLRUCache is a thread-safe bounded LRU cache with generic key-value types
type BoundedLRUCache[K comparable, V any] struct {
	mu      sync.Mutex
	cache   map[K]*list.Element
	lru     *list.List
	maxSize int
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// NewBoundedLRUCache creates a new bounded LRU cache. A non-positive maxSize
// yields a cache that stores nothing.
func NewBoundedLRUCache[K comparable, V any](maxSize int) *BoundedLRUCache[K, V] {
	return &BoundedLRUCache[K, V]{
		cache:   make(map[K]*list.Element, max(maxSize, 0)),
		lru:     list.New(),
		maxSize: maxSize,
	}
}

// Get retrieves a value from the cache and moves it to front (most recently used)
func (c *BoundedLRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.cache[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.lru.MoveToFront(elem)
	return elem.Value.(*lruEntry[K, V]).value, true
}

// Set adds or updates a value in the cache
func (c *BoundedLRUCache[K, V]) Set(key K, value V) {
	if c.maxSize <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.cache[key]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*lruEntry[K, V]).value = value
		return
	}

	for len(c.cache) >= c.maxSize {
		c.evictLRU()
	}

	elem := c.lru.PushFront(&lruEntry[K, V]{key: key, value: value})
	c.cache[key] = elem
}

// evictLRU removes the least recently used entry
// Must be called with mu held
func (c *BoundedLRUCache[K, V]) evictLRU() {
	back := c.lru.Back()
	if back == nil {
		return
	}
	entry := back.Value.(*lruEntry[K, V])
	c.lru.Remove(back)
	delete(c.cache, entry.key)
}

// Size returns current cache size
func (c *BoundedLRUCache[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

// Clear removes all entries from the cache
func (c *BoundedLRUCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[K]*list.Element, c.maxSize)
	c.lru.Init()
}
