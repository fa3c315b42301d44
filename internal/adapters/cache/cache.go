// Package cache memoizes similarity results per population generation.
package cache

import (
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/okian/scout/internal/domain/similarity"
	"github.com/okian/scout/pkg/metrics"
)

// Key identifies one similarity query against one snapshot. Two requests
// that differ only in snapshot generation never share an entry.
type Key struct {
	Generation  uint64
	ReferenceID int
	Attributes  string
	Weights     string
	Limit       int
}

// KeyFor builds the cache key of req against generation. limit must already
// be resolved so an omitted limit and an explicit default hit the same entry.
func KeyFor(generation uint64, req similarity.Request, limit int) Key {
	k := Key{
		Generation:  generation,
		ReferenceID: req.ReferenceID,
		Attributes:  strings.Join(req.Attributes, ","),
		Limit:       limit,
	}
	if req.Weights != nil {
		parts := make([]string, len(req.Weights))
		for i, w := range req.Weights {
			parts[i] = strconv.FormatFloat(w, 'g', -1, 64)
		}
		k.Weights = strings.Join(parts, ",")
	}
	return k
}

// ResultCache is a bounded LRU of similarity results. A nil or disabled
// cache misses every lookup and drops every store.
type ResultCache struct {
	lru *lru.Cache[Key, []similarity.Result]
}

// New creates a cache holding up to capacity result sets. A capacity of zero
// or less returns a disabled cache.
func New(capacity int) (*ResultCache, error) {
	if capacity <= 0 {
		return &ResultCache{}, nil
	}
	c, err := lru.New[Key, []similarity.Result](capacity)
	if err != nil {
		return nil, err
	}
	return &ResultCache{lru: c}, nil
}

// Enabled reports whether the cache stores anything.
func (c *ResultCache) Enabled() bool { return c != nil && c.lru != nil }

// Get returns a copy of the cached results for k.
func (c *ResultCache) Get(k Key) ([]similarity.Result, bool) {
	if !c.Enabled() {
		return nil, false
	}
	res, ok := c.lru.Get(k)
	if !ok {
		metrics.RecordCacheLookup(false)
		return nil, false
	}
	metrics.RecordCacheLookup(true)
	out := make([]similarity.Result, len(res))
	copy(out, res)
	return out, true
}

// Add stores results under k.
func (c *ResultCache) Add(k Key, results []similarity.Result) {
	if !c.Enabled() {
		return
	}
	stored := make([]similarity.Result, len(results))
	copy(stored, results)
	c.lru.Add(k, stored)
}

// Purge drops every entry. Called when a new snapshot is published.
func (c *ResultCache) Purge() {
	if c.Enabled() {
		c.lru.Purge()
	}
}

// Len returns the number of cached result sets.
func (c *ResultCache) Len() int {
	if !c.Enabled() {
		return 0
	}
	return c.lru.Len()
}
