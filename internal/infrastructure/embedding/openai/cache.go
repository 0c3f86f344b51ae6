package openai

import (
	"container/list"
	"sync"
	"time"
)

// Cache is a small LRU with per-entry TTL for query embeddings. Knowledge
// queries repeat heavily inside a shift, so even a few hundred entries cut
// most provider calls.
type Cache struct {
	mu      sync.Mutex
	max     int
	ttl     time.Duration
	order   *list.List
	entries map[string]*list.Element

	hits   uint64
	misses uint64

	now func() time.Time
}

type cacheEntry struct {
	key       string
	vector    []float32
	expiresAt time.Time
}

func NewCache(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = 512
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Cache{
		max:     maxEntries,
		ttl:     ttl,
		order:   list.New(),
		entries: make(map[string]*list.Element),
		now:     time.Now,
	}
}

func (c *Cache) Get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	entry := element.Value.(*cacheEntry)
	if c.now().After(entry.expiresAt) {
		c.order.Remove(element)
		delete(c.entries, key)
		c.misses++
		return nil, false
	}
	c.order.MoveToFront(element)
	c.hits++

	out := make([]float32, len(entry.vector))
	copy(out, entry.vector)
	return out, true
}

func (c *Cache) Put(key string, vector []float32) {
	if key == "" || len(vector) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]float32, len(vector))
	copy(stored, vector)

	if element, ok := c.entries[key]; ok {
		entry := element.Value.(*cacheEntry)
		entry.vector = stored
		entry.expiresAt = c.now().Add(c.ttl)
		c.order.MoveToFront(element)
		return
	}

	element := c.order.PushFront(&cacheEntry{
		key:       key,
		vector:    stored,
		expiresAt: c.now().Add(c.ttl),
	})
	c.entries[key] = element

	for c.order.Len() > c.max {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats reports lifetime hit and miss counts. Clear does not reset them.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
