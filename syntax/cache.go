package syntax

import "sync"

// DefaultCacheSize is the number of parsed templates kept by NewCache when
// size is not positive.
const DefaultCacheSize = 256

type cacheEntry struct {
	tree *Tree
	errs []*Error
}

// Cache keeps parsed trees keyed by source text. When full, the oldest entry
// is evicted. It is safe for concurrent use.
type Cache struct {
	d    Delimiters
	size int

	mu      sync.Mutex
	entries map[string]cacheEntry
	order   []string
}

// NewCache creates a cache parsing with the given delimiters.
func NewCache(d Delimiters, size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{d: d.OrDefault(), size: size, entries: make(map[string]cacheEntry)}
}

// Delimiters returns the delimiters the cache parses with.
func (c *Cache) Delimiters() Delimiters { return c.d }

// Parse returns the cached tree for text, parsing it on a miss. Trees are
// shared and must not be modified.
func (c *Cache) Parse(text string) (*Tree, []*Error) {
	c.mu.Lock()
	if e, ok := c.entries[text]; ok {
		c.mu.Unlock()
		return e.tree, e.errs
	}
	c.mu.Unlock()

	tree, errs := Parse(text, c.d)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[text]; !ok {
		if len(c.order) >= c.size {
			delete(c.entries, c.order[0])
			c.order = c.order[1:]
		}
		c.order = append(c.order, text)
	}
	c.entries[text] = cacheEntry{tree: tree, errs: errs}
	return tree, errs
}

// Len returns the number of cached trees.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
