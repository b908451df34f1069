package analysis

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/xxh3"

	"github.com/versed/versed/internal/diagnostic"
)

// DefaultCacheSize is the number of analysed schemas a Cache keeps.
const DefaultCacheSize = 128

type cacheKey struct {
	file string
	hash uint64
}

type cacheEntry struct {
	schema *Schema
	diags  *diagnostic.Collector
}

// Cache memoizes Analyze by file name and content hash, so that watch
// mode only re-analyses the files that changed. Cached diagnostics are
// replayed into the caller's collector on every hit. A Cache is safe for
// concurrent use.
type Cache struct {
	lru    *lru.Cache[cacheKey, cacheEntry]
	strict bool
	quiet  bool

	mu           sync.Mutex // guards hits and misses
	hits, misses int
}

// NewCache creates a cache holding up to size schemas. strict and quiet
// configure the collectors the analyses run with.
func NewCache(size int, strict, quiet bool) (*Cache, error) {
	l, err := lru.New[cacheKey, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("creating analysis cache: %w", err)
	}
	return &Cache{lru: l, strict: strict, quiet: quiet}, nil
}

// Analyze returns the analysis of src, computing it on a miss.
func (c *Cache) Analyze(file, src string, diags *diagnostic.Collector) *Schema {
	key := cacheKey{file: file, hash: xxh3.HashString(src)}
	e, ok := c.lru.Get(key)
	c.mu.Lock()
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()
	if !ok {
		local := diagnostic.NewCollector(c.strict, c.quiet)
		e = cacheEntry{schema: Analyze(file, src, local), diags: local}
		c.lru.Add(key, e)
	}
	diags.Merge(e.diags)
	return e.schema
}

// Stats returns the number of hits and misses so far.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Len returns the number of cached schemas.
func (c *Cache) Len() int {
	return c.lru.Len()
}
