package domain

import (
	"context"
	"time"
)

// LayoutExtractor turns raw document text into an order header and
// candidate line-item records. Implementations are pure and synchronous.
type LayoutExtractor interface {
	Vendor() string
	Extract(content string) (OrderHeader, []ExtractedLineItem, error)
}

// CatalogClient queries an external authoritative product source for
// variants matching a search term. Lookup failures are reported inside
// the CatalogResult, not as errors.
type CatalogClient interface {
	Lookup(ctx context.Context, searchTerm string) CatalogResult
}

// CacheRepository defines the interface for catalog result caching
type CacheRepository interface {
	Get(ctx context.Context, key string) (CatalogResult, error)
	Set(ctx context.Context, key string, value CatalogResult, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// DocumentDecoder converts a binary payload (PDF attachment) into plain
// text suitable for a LayoutExtractor.
type DocumentDecoder interface {
	Decode(ctx context.Context, payload []byte) (string, error)
}
