// Package vendors maps vendor identifiers to their extraction and
// enrichment strategies.
package vendors

import (
	"strings"

	"github.com/Cloud-payto/optical-sub005/internal/domain"
	"github.com/Cloud-payto/optical-sub005/internal/extract"
)

// Strategy pairs a vendor's layout extractor with its declared document
// kind and brand-abbreviation expansions.
type Strategy struct {
	Vendor        string
	DocumentKind  domain.DocumentKind
	Extractor     domain.LayoutExtractor
	Abbreviations map[string]string
}

// Registry resolves a vendor hint to a Strategy. It is an explicit value
// constructed once at process start and passed by reference; there is no
// package-level singleton. Registration is static configuration, used
// only for enabling new vendors.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// Default builds the production registry with the shipped vendor
// strategies.
func Default() *Registry {
	r := NewRegistry()
	r.Register("safilo.com", Strategy{
		Vendor:        "safilo",
		DocumentKind:  domain.KindText,
		Extractor:     extract.NewSafiloExtractor(),
		Abbreviations: extract.SafiloAbbreviations,
	})
	r.Register("luxottica.com", Strategy{
		Vendor:        "luxottica",
		DocumentKind:  domain.KindText,
		Extractor:     extract.NewLuxotticaExtractor(),
		Abbreviations: extract.LuxotticaAbbreviations,
	})
	r.Register("europaeye.com", Strategy{
		Vendor:        "europa",
		DocumentKind:  domain.KindBinary,
		Extractor:     extract.NewEuropaExtractor(),
		Abbreviations: extract.EuropaAbbreviations,
	})
	return r
}

// Register adds or replaces the strategy for a vendor domain.
func (r *Registry) Register(vendorDomain string, s Strategy) {
	r.strategies[normalizeHint(vendorDomain)] = s
}

// Resolve returns the strategy for a vendor hint. The hint may be a bare
// domain or a full sender address; subdomains resolve to their registered
// parent domain ("orders@mail.safilo.com" -> "safilo.com"). A miss is not
// an error: the orchestrator produces an empty fallback record set so a
// human can still review the raw document.
func (r *Registry) Resolve(vendorHint string) (Strategy, bool) {
	hint := normalizeHint(vendorHint)
	if hint == "" {
		return Strategy{}, false
	}
	if s, ok := r.strategies[hint]; ok {
		return s, true
	}
	for d, s := range r.strategies {
		if strings.HasSuffix(hint, "."+d) {
			return s, true
		}
	}
	return Strategy{}, false
}

// Vendors lists the registered vendor domains.
func (r *Registry) Vendors() []string {
	out := make([]string, 0, len(r.strategies))
	for d := range r.strategies {
		out = append(out, d)
	}
	return out
}

// normalizeHint lower-cases the hint and strips it to a bare domain when
// an address was supplied.
func normalizeHint(hint string) string {
	h := strings.ToLower(strings.TrimSpace(hint))
	h = strings.TrimPrefix(h, "mailto:")
	if at := strings.LastIndexByte(h, '@'); at >= 0 {
		h = h[at+1:]
	}
	h = strings.Trim(h, "<> ")
	return h
}
