package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Cloud-payto/optical-sub005/internal/domain"
	"github.com/Cloud-payto/optical-sub005/internal/vendors"
	"github.com/google/uuid"
)

// PipelineConfig holds run configuration for the orchestrator
type PipelineConfig struct {
	BatchSize           int
	BatchPause          time.Duration
	ConfidenceThreshold float64
	LookupTimeout       time.Duration
	CacheTTL            time.Duration
	EnableDebugLogging  bool
}

// CatalogClientFactory builds a fresh catalog client for one pipeline
// run. The caching wrapper inside it is the run's only shared mutable
// state, so each run gets its own.
type CatalogClientFactory func() domain.CatalogClient

// Orchestrator drives one document through extraction, enrichment, and
// validation. State machine:
//
//	Received -> Extracted -> Enriching -> Completed
//
// Failed is terminal and reachable only from Received (structural
// extraction failure); after extraction succeeds every failure is
// per-item, never run-fatal.
type Orchestrator struct {
	registry         *vendors.Registry
	newCatalogClient CatalogClientFactory
	decoder          domain.DocumentDecoder
	validator        *Validator
	cfg              PipelineConfig
}

// NewOrchestrator creates a pipeline orchestrator with its dependencies
func NewOrchestrator(
	registry *vendors.Registry,
	factory CatalogClientFactory,
	decoder domain.DocumentDecoder,
	cfg PipelineConfig,
) *Orchestrator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.BatchPause == 0 {
		cfg.BatchPause = 250 * time.Millisecond
	}
	if cfg.BatchPause < 0 {
		// Negative disables the pause (tests)
		cfg.BatchPause = 0
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = 10 * time.Second
	}

	validator := NewValidator(cfg.ConfidenceThreshold)
	validator.SetDebug(cfg.EnableDebugLogging)

	return &Orchestrator{
		registry:         registry,
		newCatalogClient: factory,
		decoder:          decoder,
		validator:        validator,
		cfg:              cfg,
	}
}

// ProcessDocument runs the full pipeline for one raw document.
// Only a structural extraction failure returns an error; an unknown
// vendor or unmatched items complete normally with the condition recorded
// in the statistics.
func (o *Orchestrator) ProcessDocument(ctx context.Context, doc domain.RawDocument) (*domain.PipelineResult, error) {
	stats := domain.RunStatistics{
		RunID:      uuid.NewString(),
		VendorHint: doc.VendorHint,
		StartedAt:  time.Now(),
	}
	result := &domain.PipelineResult{
		RunID: stats.RunID,
		State: domain.StateReceived,
	}

	strategy, ok := o.registry.Resolve(doc.VendorHint)
	if !ok {
		// Unknown vendor: empty fallback record set, a human still
		// reviews the raw document downstream
		if o.cfg.EnableDebugLogging {
			log.Printf("[PIPELINE] run=%s no strategy for vendor hint %q", stats.RunID, doc.VendorHint)
		}
		stats.Reason = domain.ErrVendorNotFound.Error()
		result.State = domain.StateCompleted
		result.Items = []domain.EnrichedItem{}
		result.Stats = freezeStats(stats, 0)
		return result, nil
	}

	content, err := o.documentText(ctx, doc, strategy)
	if err != nil {
		result.State = domain.StateFailed
		return nil, err
	}

	header, items, err := strategy.Extractor.Extract(content)
	if err != nil {
		result.State = domain.StateFailed
		return nil, fmt.Errorf("extraction failed for vendor %s: %w", strategy.Vendor, err)
	}
	result.State = domain.StateExtracted
	result.Header = header
	stats.TotalItems = len(items)

	if o.cfg.EnableDebugLogging {
		log.Printf("[PIPELINE] run=%s vendor=%s extracted %d items", stats.RunID, strategy.Vendor, len(items))
	}

	result.State = domain.StateEnriching
	enriched, apiErrors := o.enrichAll(ctx, strategy, items)

	for _, e := range enriched {
		if e.Match.Validated {
			stats.ValidatedItems++
		} else {
			stats.FailedItems++
		}
	}
	stats.APIErrors = apiErrors

	result.Items = enriched
	result.State = domain.StateCompleted
	result.Stats = freezeStats(stats, len(enriched))

	if o.cfg.EnableDebugLogging {
		log.Printf("[PIPELINE] run=%s completed: %d validated / %d failed / %d api errors in %s",
			stats.RunID, result.Stats.ValidatedItems, result.Stats.FailedItems,
			result.Stats.APIErrors, result.Stats.Duration)
	}
	return result, nil
}

// documentText resolves the extractor input: binary payloads decode
// through the document decoder, text passes through.
func (o *Orchestrator) documentText(ctx context.Context, doc domain.RawDocument, strategy vendors.Strategy) (string, error) {
	if doc.Kind != domain.KindBinary && strategy.DocumentKind != domain.KindBinary {
		return string(doc.Content), nil
	}
	if o.decoder == nil {
		return "", fmt.Errorf("no decoder for binary document: %w", domain.ErrStructuralExtraction)
	}
	return o.decoder.Decode(ctx, doc.Content)
}

// enrichAll processes items in fixed-size batches: batches sequentially,
// items within a batch concurrently. Results land in an index-addressed
// slice so output order equals extraction order regardless of completion
// order.
func (o *Orchestrator) enrichAll(ctx context.Context, strategy vendors.Strategy, items []domain.ExtractedLineItem) ([]domain.EnrichedItem, int64) {
	enriched := make([]domain.EnrichedItem, len(items))
	if len(items) == 0 {
		return enriched, 0
	}

	client := o.newCatalogClient()
	var apiErrors int64

	for start := 0; start < len(items); start += o.cfg.BatchSize {
		end := start + o.cfg.BatchSize
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for idx := start; idx < end; idx++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				enriched[i] = o.enrichItem(ctx, client, strategy, items[i], &apiErrors)
			}(idx)
		}
		wg.Wait()

		// A short pause between batches keeps external-call pressure
		// polite; no pause after the final batch
		if end < len(items) && o.cfg.BatchPause > 0 {
			select {
			case <-ctx.Done():
				return enriched, atomic.LoadInt64(&apiErrors)
			case <-time.After(o.cfg.BatchPause):
			}
		}
	}

	return enriched, atomic.LoadInt64(&apiErrors)
}

// enrichItem looks up the catalog with each search-term variation in
// order, validates against the first hit, and denormalizes the chosen
// variant. A lookup failure counts once per item no matter how many
// variations or retries were spent.
func (o *Orchestrator) enrichItem(
	ctx context.Context,
	client domain.CatalogClient,
	strategy vendors.Strategy,
	item domain.ExtractedLineItem,
	apiErrors *int64,
) domain.EnrichedItem {
	terms := BuildSearchTerms(item, strategy.Abbreviations)

	var catalogResult domain.CatalogResult
	lookupErr := ""
	for _, term := range terms {
		lookupCtx, cancel := context.WithTimeout(ctx, o.cfg.LookupTimeout)
		res := client.Lookup(lookupCtx, term)
		cancel()

		if res.Err != "" && lookupErr == "" {
			lookupErr = res.Err
		}
		catalogResult = res
		if res.Found {
			break
		}
	}

	if !catalogResult.Found && lookupErr != "" {
		catalogResult.Err = lookupErr
		atomic.AddInt64(apiErrors, 1)
	}

	match := o.validator.Validate(ctx, item, catalogResult)

	out := domain.EnrichedItem{
		ExtractedLineItem: item,
		Match:             match,
	}
	// Catalog brand is authoritative over the document-guessed brand,
	// but only once the match is validated
	if match.Validated && catalogResult.Brand != "" {
		out.Brand = catalogResult.Brand
	}
	if bv := match.BestVariant; bv != nil {
		out.UPC = bv.UPC
		out.SKU = bv.SKU
		out.Wholesale = bv.Wholesale
		out.SuggestedRetail = bv.SuggestedRetail
		out.InStock = bv.InStock
	}
	return out
}

// freezeStats finalizes the run counters.
func freezeStats(stats domain.RunStatistics, itemCount int) domain.RunStatistics {
	stats.Duration = time.Since(stats.StartedAt)
	if secs := stats.Duration.Seconds(); secs > 0 {
		stats.ItemsPerSecond = float64(itemCount) / secs
	}
	return stats
}
