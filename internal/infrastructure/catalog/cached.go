package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Cloud-payto/optical-sub005/internal/domain"
)

// inflightLookup serializes concurrent lookups for the same term so the
// upstream source sees at most one call per term.
type inflightLookup struct {
	once   sync.Once
	result domain.CatalogResult
}

// CachedClient wraps a CatalogClient with a case-insensitive term cache
// and in-flight de-duplication. Workers inside one batch frequently share
// a search term; a plain get-then-set cache would still race two misses
// into two upstream calls, so concurrent identical lookups join the same
// in-flight call instead.
type CachedClient struct {
	inner domain.CatalogClient
	store domain.CacheRepository
	ttl   time.Duration

	mu       sync.Mutex
	inflight map[string]*inflightLookup
}

// NewCachedClient wraps inner with the given cache store. A zero ttl
// keeps entries for the store's lifetime, the normal per-run mode.
func NewCachedClient(inner domain.CatalogClient, store domain.CacheRepository, ttl time.Duration) *CachedClient {
	return &CachedClient{
		inner:    inner,
		store:    store,
		ttl:      ttl,
		inflight: make(map[string]*inflightLookup),
	}
}

// Lookup returns the cached result for the term or issues exactly one
// upstream call. Failed lookups are cached too: the term's result for
// this run is the failure, and re-dialing a dead upstream per item would
// defeat the retry budget already spent.
func (c *CachedClient) Lookup(ctx context.Context, searchTerm string) domain.CatalogResult {
	key := strings.ToLower(strings.TrimSpace(searchTerm))

	if cached, err := c.store.Get(ctx, key); err == nil {
		return cached
	}

	c.mu.Lock()
	entry, ok := c.inflight[key]
	if !ok {
		entry = &inflightLookup{}
		c.inflight[key] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.result = c.inner.Lookup(ctx, searchTerm)
		_ = c.store.Set(ctx, key, entry.result, c.ttl)
	})
	return entry.result
}
