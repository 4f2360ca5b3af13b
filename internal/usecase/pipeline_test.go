package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Cloud-payto/optical-sub005/internal/domain"
	"github.com/Cloud-payto/optical-sub005/internal/vendors"
)

// stubExtractor returns canned extraction output.
type stubExtractor struct {
	header domain.OrderHeader
	items  []domain.ExtractedLineItem
	err    error
}

func (s *stubExtractor) Vendor() string { return "stub" }

func (s *stubExtractor) Extract(content string) (domain.OrderHeader, []domain.ExtractedLineItem, error) {
	if s.err != nil {
		return domain.OrderHeader{}, nil, s.err
	}
	return s.header, s.items, nil
}

// fakeCatalogClient answers lookups from a function and records call order.
type fakeCatalogClient struct {
	mu    sync.Mutex
	calls []string
	fn    func(term string) domain.CatalogResult
}

func (f *fakeCatalogClient) Lookup(ctx context.Context, term string) domain.CatalogResult {
	f.mu.Lock()
	f.calls = append(f.calls, term)
	f.mu.Unlock()
	return f.fn(term)
}

func (f *fakeCatalogClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type stubDecoder struct {
	text string
	err  error
}

func (d *stubDecoder) Decode(ctx context.Context, content []byte) (string, error) {
	return d.text, d.err
}

func stubRegistry(ext domain.LayoutExtractor, kind domain.DocumentKind, abbr map[string]string) *vendors.Registry {
	r := vendors.NewRegistry()
	r.Register("stub.com", vendors.Strategy{
		Vendor:        "stub",
		DocumentKind:  kind,
		Extractor:     ext,
		Abbreviations: abbr,
	})
	return r
}

func testConfig() PipelineConfig {
	return PipelineConfig{
		BatchSize:     3,
		BatchPause:    -1, // disabled
		LookupTimeout: time.Second,
	}
}

func textDoc(content string) domain.RawDocument {
	return domain.RawDocument{
		VendorHint: "stub.com",
		Kind:       domain.KindText,
		Content:    []byte(content),
		ReceivedAt: time.Now(),
	}
}

func TestProcessDocument_OutputOrderMatchesExtractionOrder(t *testing.T) {
	const n = 11
	items := make([]domain.ExtractedLineItem, n)
	for i := range items {
		items[i] = domain.ExtractedLineItem{
			SourceLineNumber: i + 1,
			Brand:            "ACME",
			Model:            fmt.Sprintf("M%02d", i),
			ColorCode:        "C1",
		}
	}

	// Later items answer faster, so completion order inverts within a
	// batch; the output must still follow extraction order.
	client := &fakeCatalogClient{fn: func(term string) domain.CatalogResult {
		idx, _ := strconv.Atoi(strings.TrimPrefix(term, "M"))
		time.Sleep(time.Duration(n-idx) * time.Millisecond)
		return domain.CatalogResult{
			Found: true,
			Brand: "ACME",
			Model: term,
			Variants: []domain.CatalogVariant{
				{ColorCode: "C1", UPC: "upc-" + term},
			},
		}
	}}

	for _, batchSize := range []int{1, 3, 5, 20} {
		t.Run(fmt.Sprintf("batch size %d", batchSize), func(t *testing.T) {
			cfg := testConfig()
			cfg.BatchSize = batchSize
			o := NewOrchestrator(
				stubRegistry(&stubExtractor{items: items}, domain.KindText, nil),
				func() domain.CatalogClient { return client },
				nil,
				cfg,
			)

			result, err := o.ProcessDocument(context.Background(), textDoc("body"))
			if err != nil {
				t.Fatalf("ProcessDocument() error = %v", err)
			}
			if result.State != domain.StateCompleted {
				t.Fatalf("State = %q, want completed", result.State)
			}
			if len(result.Items) != n {
				t.Fatalf("len(Items) = %d, want %d", len(result.Items), n)
			}
			for i, item := range result.Items {
				want := fmt.Sprintf("M%02d", i)
				if item.Model != want {
					t.Errorf("Items[%d].Model = %q, want %q", i, item.Model, want)
				}
			}
			if result.Stats.ValidatedItems != n {
				t.Errorf("ValidatedItems = %d, want %d", result.Stats.ValidatedItems, n)
			}
		})
	}
}

func TestProcessDocument_APIErrorCountsOncePerItem(t *testing.T) {
	item := domain.ExtractedLineItem{Brand: "CA", Model: "8035", ColorCode: "0R80"}
	client := &fakeCatalogClient{fn: func(term string) domain.CatalogResult {
		return domain.CatalogResult{Found: false, Err: "status 503"}
	}}

	o := NewOrchestrator(
		stubRegistry(&stubExtractor{items: []domain.ExtractedLineItem{item}}, domain.KindText,
			map[string]string{"CA": "CARRERA"}),
		func() domain.CatalogClient { return client },
		nil,
		testConfig(),
	)

	result, err := o.ProcessDocument(context.Background(), textDoc("body"))
	if err != nil {
		t.Fatalf("ProcessDocument() error = %v", err)
	}

	// Three term variations all failed, one logical failure
	if client.callCount() != 3 {
		t.Errorf("upstream calls = %d, want 3 (all variations tried)", client.callCount())
	}
	if result.Stats.APIErrors != 1 {
		t.Errorf("APIErrors = %d, want 1 (counted once per item)", result.Stats.APIErrors)
	}
	if result.Stats.FailedItems != 1 {
		t.Errorf("FailedItems = %d, want 1", result.Stats.FailedItems)
	}
	if got := result.Items[0].Match.Reason; got != "lookup failed: status 503" {
		t.Errorf("Reason = %q, want lookup failed: status 503", got)
	}
}

func TestProcessDocument_UnknownVendorCompletesEmpty(t *testing.T) {
	o := NewOrchestrator(
		stubRegistry(&stubExtractor{}, domain.KindText, nil),
		func() domain.CatalogClient { return &fakeCatalogClient{fn: nil} },
		nil,
		testConfig(),
	)

	doc := textDoc("body")
	doc.VendorHint = "totally-unknown.example"
	result, err := o.ProcessDocument(context.Background(), doc)
	if err != nil {
		t.Fatalf("ProcessDocument() error = %v, want nil for unknown vendor", err)
	}
	if result.State != domain.StateCompleted {
		t.Errorf("State = %q, want completed", result.State)
	}
	if result.Items == nil || len(result.Items) != 0 {
		t.Errorf("Items = %v, want empty non-nil slice", result.Items)
	}
	if result.Stats.Reason != "no strategy registered for vendor" {
		t.Errorf("Stats.Reason = %q, want no strategy registered for vendor", result.Stats.Reason)
	}
	if result.RunID == "" {
		t.Error("RunID empty, want generated id")
	}
}

func TestProcessDocument_StructuralFailure(t *testing.T) {
	t.Run("extractor failure fails the run", func(t *testing.T) {
		ext := &stubExtractor{err: fmt.Errorf("stub: %w", domain.ErrStructuralExtraction)}
		o := NewOrchestrator(
			stubRegistry(ext, domain.KindText, nil),
			func() domain.CatalogClient { return &fakeCatalogClient{fn: nil} },
			nil,
			testConfig(),
		)

		result, err := o.ProcessDocument(context.Background(), textDoc("garbage"))
		if result != nil {
			t.Errorf("result = %+v, want nil on structural failure", result)
		}
		if !errors.Is(err, domain.ErrStructuralExtraction) {
			t.Errorf("error = %v, want ErrStructuralExtraction", err)
		}
	})

	t.Run("decoder failure fails the run", func(t *testing.T) {
		dec := &stubDecoder{err: fmt.Errorf("unreadable pdf: %w", domain.ErrStructuralExtraction)}
		o := NewOrchestrator(
			stubRegistry(&stubExtractor{}, domain.KindBinary, nil),
			func() domain.CatalogClient { return &fakeCatalogClient{fn: nil} },
			dec,
			testConfig(),
		)

		doc := textDoc("")
		doc.Kind = domain.KindBinary
		doc.Content = []byte{0x25, 0x50, 0x44, 0x46}
		_, err := o.ProcessDocument(context.Background(), doc)
		if !errors.Is(err, domain.ErrStructuralExtraction) {
			t.Errorf("error = %v, want ErrStructuralExtraction", err)
		}
	})
}

func TestProcessDocument_CatalogBrandOverridesOnValidation(t *testing.T) {
	items := []domain.ExtractedLineItem{
		{Brand: "CA", Model: "8035", ColorCode: "0R80"},
		{Brand: "CA", Model: "9999", ColorCode: "XXX"},
	}
	client := &fakeCatalogClient{fn: func(term string) domain.CatalogResult {
		if term == "8035" {
			return domain.CatalogResult{
				Found: true,
				Brand: "CARRERA",
				Model: "8035",
				Variants: []domain.CatalogVariant{
					{ColorCode: "0R80", UPC: "716736000001", SKU: "CAR-8035", Wholesale: 58.50, InStock: true},
				},
			}
		}
		// Found but nothing matches: stays below threshold
		return domain.CatalogResult{
			Found:    true,
			Brand:    "SOMETHING ELSE",
			Model:    "OTHER",
			Variants: []domain.CatalogVariant{{ColorCode: "ZZZ"}},
		}
	}}

	o := NewOrchestrator(
		stubRegistry(&stubExtractor{items: items}, domain.KindText, nil),
		func() domain.CatalogClient { return client },
		nil,
		testConfig(),
	)

	result, err := o.ProcessDocument(context.Background(), textDoc("body"))
	if err != nil {
		t.Fatalf("ProcessDocument() error = %v", err)
	}

	t.Run("validated item takes the catalog brand and variant data", func(t *testing.T) {
		got := result.Items[0]
		if !got.Match.Validated {
			t.Fatalf("Validated = false (score %.0f), want true", got.Match.ConfidenceScore)
		}
		if got.Brand != "CARRERA" {
			t.Errorf("Brand = %q, want CARRERA (catalog is authoritative)", got.Brand)
		}
		if got.UPC != "716736000001" || got.SKU != "CAR-8035" {
			t.Errorf("identifiers = %s/%s, want denormalized from best variant", got.UPC, got.SKU)
		}
		if !got.InStock || got.Wholesale != 58.50 {
			t.Errorf("availability = %v/%.2f, want denormalized from best variant", got.InStock, got.Wholesale)
		}
	})

	t.Run("unvalidated item keeps its document brand", func(t *testing.T) {
		got := result.Items[1]
		if got.Match.Validated {
			t.Fatal("Validated = true, want false")
		}
		if got.Brand != "CA" {
			t.Errorf("Brand = %q, want CA (document brand untouched)", got.Brand)
		}
	})

	t.Run("statistics reflect the split", func(t *testing.T) {
		if result.Stats.TotalItems != 2 || result.Stats.ValidatedItems != 1 || result.Stats.FailedItems != 1 {
			t.Errorf("stats = %d/%d/%d, want 2 total, 1 validated, 1 failed",
				result.Stats.TotalItems, result.Stats.ValidatedItems, result.Stats.FailedItems)
		}
		if result.Stats.APIErrors != 0 {
			t.Errorf("APIErrors = %d, want 0 (misses are not errors)", result.Stats.APIErrors)
		}
	})
}

func TestProcessDocument_FreshClientPerRun(t *testing.T) {
	var factoryCalls int
	client := &fakeCatalogClient{fn: func(term string) domain.CatalogResult {
		return domain.CatalogResult{Found: false}
	}}
	o := NewOrchestrator(
		stubRegistry(&stubExtractor{items: []domain.ExtractedLineItem{{Model: "M1"}}}, domain.KindText, nil),
		func() domain.CatalogClient {
			factoryCalls++
			return client
		},
		nil,
		testConfig(),
	)

	for i := 0; i < 3; i++ {
		if _, err := o.ProcessDocument(context.Background(), textDoc("body")); err != nil {
			t.Fatalf("ProcessDocument() error = %v", err)
		}
	}
	if factoryCalls != 3 {
		t.Errorf("factory calls = %d, want one per run", factoryCalls)
	}
}

func TestProcessDocument_HeaderPassesThrough(t *testing.T) {
	header := domain.OrderHeader{OrderNumber: "7004512", CustomerName: "EYECARE ASSOCIATES"}
	o := NewOrchestrator(
		stubRegistry(&stubExtractor{header: header}, domain.KindText, nil),
		func() domain.CatalogClient { return &fakeCatalogClient{fn: nil} },
		nil,
		testConfig(),
	)

	result, err := o.ProcessDocument(context.Background(), textDoc("body"))
	if err != nil {
		t.Fatalf("ProcessDocument() error = %v", err)
	}
	if result.Header != header {
		t.Errorf("Header = %+v, want %+v", result.Header, header)
	}
	if result.Stats.TotalItems != 0 {
		t.Errorf("TotalItems = %d, want 0", result.Stats.TotalItems)
	}
}
