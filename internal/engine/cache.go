package engine

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// maxCachedRules caps each compile cache. Least recently used entries are
// evicted first.
const maxCachedRules = 4096

// compileCache memoizes a pure compile step keyed by rule text. Cached values
// are never mutated after compile returns.
type compileCache[V any] struct {
	mu      sync.Mutex
	entries *lru.Cache
}

func newCompileCache[V any](size int) *compileCache[V] {
	return &compileCache[V]{entries: lru.New(size)}
}

func (c *compileCache[V]) get(key string, compile func(string) V) V {
	c.mu.Lock()
	if v, ok := c.entries.Get(key); ok {
		c.mu.Unlock()
		return v.(V)
	}
	c.mu.Unlock()

	v := compile(key)

	c.mu.Lock()
	c.entries.Add(key, v)
	c.mu.Unlock()
	return v
}

func (c *compileCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}
