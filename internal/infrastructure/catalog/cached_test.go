package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cloud-payto/optical-sub005/internal/domain"
	"github.com/Cloud-payto/optical-sub005/internal/infrastructure/cache"
)

// countingClient records how many upstream calls it receives per term.
type countingClient struct {
	mu     sync.Mutex
	calls  map[string]int
	result domain.CatalogResult
	delay  chan struct{} // when non-nil, Lookup blocks until closed
}

func (c *countingClient) Lookup(ctx context.Context, searchTerm string) domain.CatalogResult {
	c.mu.Lock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[searchTerm]++
	c.mu.Unlock()
	if c.delay != nil {
		<-c.delay
	}
	return c.result
}

func (c *countingClient) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

func TestCachedClient_SecondLookupHitsCache(t *testing.T) {
	upstream := &countingClient{result: domain.CatalogResult{Found: true, Brand: "CARRERA"}}
	cached := NewCachedClient(upstream, cache.NewMemory(), 0)
	ctx := context.Background()

	first := cached.Lookup(ctx, "CARRERA VICTORY LANE")
	second := cached.Lookup(ctx, "CARRERA VICTORY LANE")

	assert.Equal(t, first, second)
	assert.Equal(t, 1, upstream.total())
}

func TestCachedClient_KeysAreCaseInsensitive(t *testing.T) {
	upstream := &countingClient{result: domain.CatalogResult{Found: true, Brand: "CARRERA"}}
	cached := NewCachedClient(upstream, cache.NewMemory(), 0)
	ctx := context.Background()

	cached.Lookup(ctx, "Carrera Victory Lane")
	cached.Lookup(ctx, "CARRERA VICTORY LANE")
	cached.Lookup(ctx, "  carrera victory lane ")

	assert.Equal(t, 1, upstream.total())
}

func TestCachedClient_FailuresAreCached(t *testing.T) {
	upstream := &countingClient{result: domain.CatalogResult{Found: false, Err: "status 503"}}
	cached := NewCachedClient(upstream, cache.NewMemory(), 0)
	ctx := context.Background()

	first := cached.Lookup(ctx, "DEAD UPSTREAM")
	second := cached.Lookup(ctx, "DEAD UPSTREAM")

	assert.False(t, second.Found)
	assert.Equal(t, first.Err, second.Err)
	assert.Equal(t, 1, upstream.total(), "failed lookups must not re-dial upstream")
}

func TestCachedClient_ConcurrentIdenticalTermsShareOneCall(t *testing.T) {
	release := make(chan struct{})
	upstream := &countingClient{
		result: domain.CatalogResult{Found: true, Brand: "CARRERA"},
		delay:  release,
	}
	cached := NewCachedClient(upstream, cache.NewMemory(), 0)
	ctx := context.Background()

	const workers = 16
	var started, done sync.WaitGroup
	var found int32
	started.Add(workers)
	done.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer done.Done()
			started.Done()
			if cached.Lookup(ctx, "carrera victory lane").Found {
				atomic.AddInt32(&found, 1)
			}
		}()
	}

	started.Wait()
	close(release)
	done.Wait()

	require.EqualValues(t, workers, found, "every caller gets the shared result")
	assert.Equal(t, 1, upstream.total(), "concurrent identical lookups must share one upstream call")
}

func TestCachedClient_DistinctTermsCallSeparately(t *testing.T) {
	upstream := &countingClient{result: domain.CatalogResult{Found: true}}
	cached := NewCachedClient(upstream, cache.NewMemory(), 0)
	ctx := context.Background()

	cached.Lookup(ctx, "CARRERA VICTORY LANE")
	cached.Lookup(ctx, "RAY-BAN 2140")

	assert.Equal(t, 2, upstream.total())
}
