package filter

import (
	"container/list"
	"sync"
)

// verdictCache is a mutex-guarded LRU keyed by exact lowercase title.
// It is shared across every goroutine classifying titles during a run;
// config is immutable while a run is live, so entries never go stale.
type verdictCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recent
	entries  map[string]*list.Element
	hits     uint64
	misses   uint64
}

type cacheEntry struct {
	key     string
	verdict Verdict
}

func newVerdictCache(capacity int) *verdictCache {
	return &verdictCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

func (c *verdictCache) get(key string) (Verdict, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses++
		return Verdict{}, false
	}
	c.order.MoveToFront(el)
	c.hits++
	return el.Value.(*cacheEntry).verdict, true
}

func (c *verdictCache) put(key string, v Verdict) {
	if c.capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).verdict = v
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&cacheEntry{key: key, verdict: v})
	c.entries[key] = el

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *verdictCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element)
	c.hits = 0
	c.misses = 0
}

func (c *verdictCache) stats() (hits, misses uint64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, c.order.Len()
}
