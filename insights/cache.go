/*
cache.go - Bounded LRU of recently served insights

Insights are ephemeral per run, but a caller that just listed them needs
a short window in which an id still resolves - that is how promotion to
an action item works. The cache is process-local and bounded; eviction
is least-recently-used. Multi-process deployments need a shared store
instead, or ids minted by one process will not resolve in another.
*/
package insights

import (
	"container/list"
	"sync"
	"time"
)

// DefaultCacheSize bounds the recent-insight window.
const DefaultCacheSize = 20

// Served is an insight as handed to a caller: same finding, plus the
// reference id and serving context.
type Served struct {
	ID         string
	Insight    Insight
	SourceFile string
	CreatedAt  time.Time
}

// Cache is a thread-safe bounded LRU keyed by served-insight id.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List // front = least recently used
	entries map[string]*list.Element
}

func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	return &Cache{
		maxSize: maxSize,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

// Add inserts or refreshes an entry, evicting the least recently used
// entry when over capacity.
func (c *Cache) Add(s Served) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[s.ID]; ok {
		el.Value = s
		c.order.MoveToBack(el)
		return
	}
	c.entries[s.ID] = c.order.PushBack(s)
	if c.order.Len() > c.maxSize {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(Served).ID)
	}
}

// AddMany inserts in order, so the last insight is the most recent.
func (c *Cache) AddMany(served []Served) {
	for _, s := range served {
		c.Add(s)
	}
}

// Get returns the entry for id if it has not been evicted.
func (c *Cache) Get(id string) (Served, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[id]
	if !ok {
		return Served{}, false
	}
	return el.Value.(Served), true
}

// Len reports the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
