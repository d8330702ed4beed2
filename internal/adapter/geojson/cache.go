package geojson

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/accident-dashboard/internal/cache"
)

// Source supplies a boundary document.
type Source interface {
	Boundaries(ctx context.Context) ([]byte, error)
}

type cached struct {
	doc     []byte
	fetched time.Time
}

// CachedSource keeps the last good document for ttl. Failed fetches are not
// cached, so the next request retries.
type CachedSource struct {
	inner Source
	ttl   time.Duration
	clock clockwork.Clock
	cache *cache.LRU[string, cached]
}

const cacheKey = "boundaries"

// NewCachedSource wraps inner. A ttl of zero or less keeps documents forever.
func NewCachedSource(inner Source, ttl time.Duration, clock clockwork.Clock) *CachedSource {
	return &CachedSource{
		inner: inner,
		ttl:   ttl,
		clock: clock,
		cache: cache.NewLRU[string, cached](1),
	}
}

func (c *CachedSource) Boundaries(ctx context.Context) ([]byte, error) {
	if e, ok := c.cache.Get(cacheKey); ok && (c.ttl <= 0 || c.clock.Since(e.fetched) < c.ttl) {
		return e.doc, nil
	}
	doc, err := c.inner.Boundaries(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Put(cacheKey, cached{doc: doc, fetched: c.clock.Now()})
	return doc, nil
}
