package lrucache

import (
	"sync"
)

type cacheEntry[K comparable, V any] struct {
	key   K
	value V
	prev  *cacheEntry[K, V]
	next  *cacheEntry[K, V]
}

// Cache is a fixed size, least recently used cache safe for concurrent use.
type Cache[K comparable, V any] struct {
	entries map[K]*cacheEntry[K, V]
	head    *cacheEntry[K, V]
	tail    *cacheEntry[K, V]
	maxSize int
	mu      sync.Mutex
}

func New[K comparable, V any](maxSize int) *Cache[K, V] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Cache[K, V]{
		entries: make(map[K]*cacheEntry[K, V], maxSize),
		maxSize: maxSize,
	}
}

// Get returns the cached value and marks it as most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(entry)
	return entry.value, true
}

// Put stores the value, evicting the least recently used entry when full.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		entry.value = value
		c.moveToFront(entry)
		return
	}

	entry := &cacheEntry[K, V]{
		key:   key,
		value: value,
	}
	c.entries[key] = entry
	c.addToFront(entry)

	if len(c.entries) > c.maxSize {
		c.evictLRU()
	}
}

func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[K, V]) moveToFront(entry *cacheEntry[K, V]) {
	if entry == c.head {
		return
	}
	c.unlink(entry)
	c.addToFront(entry)
}

func (c *Cache[K, V]) unlink(entry *cacheEntry[K, V]) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	}
	if entry.next != nil {
		entry.next.prev = entry.prev
	}
	if entry == c.head {
		c.head = entry.next
	}
	if entry == c.tail {
		c.tail = entry.prev
	}
	entry.prev, entry.next = nil, nil
}

func (c *Cache[K, V]) addToFront(entry *cacheEntry[K, V]) {
	entry.next = c.head
	entry.prev = nil

	if c.head != nil {
		c.head.prev = entry
	}
	c.head = entry

	if c.tail == nil {
		c.tail = entry
	}
}

func (c *Cache[K, V]) evictLRU() {
	if c.tail == nil {
		return
	}
	oldTail := c.tail
	c.unlink(oldTail)
	delete(c.entries, oldTail.key)
}
