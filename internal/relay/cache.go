package relay

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type cacheKey struct {
	text string
	from string
	to   string
}

// CachedProvider memoizes successful translations. Failures are not cached.
type CachedProvider struct {
	next    Provider
	entries *expirable.LRU[cacheKey, Result]
	metrics *Metrics
}

// NewCachedProvider wraps next with an LRU of size entries. A ttl of zero
// keeps entries until they are evicted by size.
func NewCachedProvider(next Provider, size int, ttl time.Duration, metrics *Metrics) *CachedProvider {
	return &CachedProvider{
		next:    next,
		entries: expirable.NewLRU[cacheKey, Result](size, nil, ttl),
		metrics: metrics,
	}
}

func (c *CachedProvider) Name() string { return c.next.Name() }

func (c *CachedProvider) Translate(ctx context.Context, req Request) (Result, error) {
	key := cacheKey{text: req.Text, from: req.From, to: req.To}
	if cached, ok := c.entries.Get(key); ok {
		c.metrics.cacheLookup(ctx, true)
		return cached, nil
	}
	c.metrics.cacheLookup(ctx, false)

	result, err := c.next.Translate(ctx, req)
	if err != nil {
		return Result{}, err
	}
	c.entries.Add(key, result)
	return result, nil
}

// Len reports the number of cached translations.
func (c *CachedProvider) Len() int {
	return c.entries.Len()
}
