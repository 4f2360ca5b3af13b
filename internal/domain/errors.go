package domain

import "errors"

var (
	// ErrVendorNotFound is returned when no strategy is registered for a vendor hint
	ErrVendorNotFound = errors.New("no strategy registered for vendor")

	// ErrStructuralExtraction is returned when a document cannot be parsed into lines at all
	ErrStructuralExtraction = errors.New("document could not be structurally parsed")

	// ErrCatalogUnavailable is returned when the catalog source request fails
	ErrCatalogUnavailable = errors.New("catalog source request failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
