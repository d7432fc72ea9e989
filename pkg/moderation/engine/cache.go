package engine

import (
	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"mercator-hq/vesta/pkg/moderation"
)

type cacheEntry struct {
	text   string
	result *moderation.AnalysisResult
}

// resultCache memoizes analyses by text. A nil *resultCache is a valid,
// always-missing cache.
type resultCache struct {
	entries *lru.Cache[uint64, cacheEntry]
}

func newResultCache(size int, onEvict func()) (*resultCache, error) {
	if size <= 0 {
		return nil, nil
	}
	var evicted func(uint64, cacheEntry)
	if onEvict != nil {
		evicted = func(uint64, cacheEntry) { onEvict() }
	}
	entries, err := lru.NewWithEvict[uint64, cacheEntry](size, evicted)
	if err != nil {
		return nil, err
	}
	return &resultCache{entries: entries}, nil
}

func (c *resultCache) get(text string) (*moderation.AnalysisResult, bool) {
	if c == nil {
		return nil, false
	}
	e, ok := c.entries.Get(xxhash.Sum64String(text))
	// the stored text guards against 64-bit hash collisions
	if !ok || e.text != text {
		return nil, false
	}
	return e.result, true
}

func (c *resultCache) add(text string, result *moderation.AnalysisResult) {
	if c == nil {
		return
	}
	c.entries.Add(xxhash.Sum64String(text), cacheEntry{text: text, result: result})
}

func (c *resultCache) len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
