package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/FocuswithJustin/TabletATF/internal/lookup"
)

// glossEntry remembers misses as well as hits.
type glossEntry struct {
	gloss string
	found bool
}

// CachedGlossary memoizes a lookup.Glossary by key. Lookup keys come from a
// deterministic normalizer, so a key always names the same dictionary entry.
// Store errors are never cached.
type CachedGlossary struct {
	next  lookup.Glossary
	cache *TTLCache[string, glossEntry]

	hits   atomic.Int64
	misses atomic.Int64
}

var _ lookup.Glossary = (*CachedGlossary)(nil)

// NewCachedGlossary wraps next with a cache of at most maxEntries keys.
func NewCachedGlossary(next lookup.Glossary, ttl time.Duration, maxEntries int) *CachedGlossary {
	return &CachedGlossary{
		next:  next,
		cache: NewWithLimit[string, glossEntry](ttl, maxEntries),
	}
}

// Gloss implements lookup.Glossary.
func (g *CachedGlossary) Gloss(ctx context.Context, key string) (string, bool, error) {
	if e, ok := g.cache.Get(key); ok {
		g.hits.Add(1)
		return e.gloss, e.found, nil
	}
	g.misses.Add(1)

	gloss, found, err := g.next.Gloss(ctx, key)
	if err != nil {
		return "", false, err
	}
	g.cache.Set(key, glossEntry{gloss: gloss, found: found})
	return gloss, found, nil
}

// Invalidate drops every cached key, e.g. after a glossary import.
func (g *CachedGlossary) Invalidate() {
	g.cache.Invalidate()
}

// Stats reports cache hits and misses since creation.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// Stats returns the current counters.
func (g *CachedGlossary) Stats() Stats {
	return Stats{
		Hits:    g.hits.Load(),
		Misses:  g.misses.Load(),
		Entries: g.cache.Len(),
	}
}
