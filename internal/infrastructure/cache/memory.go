package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Cloud-payto/optical-sub005/internal/domain"
)

// cacheItem represents a single cached catalog result with expiration
type cacheItem struct {
	Value      domain.CatalogResult
	Expiration time.Time
}

// Memory is a thread-safe in-memory catalog result cache with TTL
// support. It is scoped to one pipeline run: the orchestrator constructs
// a fresh instance per run, so expired entries are dropped on read
// instead of by a background sweeper.
type Memory struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
}

// NewMemory creates a new in-memory cache
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]cacheItem),
	}
}

// normalizeKey makes cache keys case-insensitive
func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Get retrieves a catalog result from the cache
func (c *Memory) Get(ctx context.Context, key string) (domain.CatalogResult, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[normalizeKey(key)]
	if !exists {
		return domain.CatalogResult{}, domain.ErrCacheMiss
	}
	if !item.Expiration.IsZero() && time.Now().After(item.Expiration) {
		return domain.CatalogResult{}, domain.ErrCacheMiss
	}
	return item.Value, nil
}

// Set stores a catalog result. A zero ttl means no expiry, which is the
// normal mode for a per-run cache.
func (c *Memory) Set(ctx context.Context, key string, value domain.CatalogResult, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	item := cacheItem{Value: value}
	if ttl > 0 {
		item.Expiration = time.Now().Add(ttl)
	}
	c.data[normalizeKey(key)] = item
	return nil
}

// Delete removes a cached result
func (c *Memory) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, normalizeKey(key))
	return nil
}

// Exists checks if a key exists in the cache and is not expired
func (c *Memory) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[normalizeKey(key)]
	if !exists {
		return false, nil
	}
	if !item.Expiration.IsZero() && time.Now().After(item.Expiration) {
		return false, nil
	}
	return true, nil
}

// Size returns the current number of items in the cache
func (c *Memory) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all items from the cache
func (c *Memory) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]cacheItem)
}
