package extract

import (
	"fmt"
	"log"

	"github.com/Cloud-payto/optical-sub005/internal/domain"
)

// europaBrands are the house brands Europa prints on its PDF
// confirmations.
var europaBrands = []string{
	"STATE OPTICAL", "STATE",
	"SCOTT HARRIS", "SH",
	"CINZIA", "CZ",
	"MICHAEL RYEN", "MR",
	"EUROPA",
}

// EuropaAbbreviations expands Europa's short brand codes to full brand
// names for catalog search.
var EuropaAbbreviations = map[string]string{
	"SH": "SCOTT HARRIS",
	"CZ": "CINZIA",
	"MR": "MICHAEL RYEN",
}

// EuropaExtractor parses Europa order confirmations. These arrive as PDF
// attachments; the orchestrator decodes the PDF to text first, so this
// extractor only sees the flattened column layout. pdftotext-style output
// keeps one item per line but long style names spill onto a second line.
type EuropaExtractor struct {
	norm               *Normalizer
	scanner            recordScanner
	rules              headerRules
	enableDebugLogging bool
}

// NewEuropaExtractor creates the Europa layout extractor
func NewEuropaExtractor() *EuropaExtractor {
	return &EuropaExtractor{
		norm: NewNormalizer(europaBrands),
		scanner: recordScanner{
			brands:    brandPrefixes(europaBrands),
			sentinel:  "Style Description",
			lookahead: 4,
		},
		rules: headerRules{
			orderLabels:    []string{"Order #", "Order No"},
			accountLabels:  []string{"Acct #", "Account #"},
			customerLabels: []string{"Bill To", "Sold To"},
			dateLabels:     []string{"Ordered", "Order Date"},
		},
	}
}

// SetDebug enables per-record debug logging
func (e *EuropaExtractor) SetDebug(enabled bool) {
	e.enableDebugLogging = enabled
	e.norm.SetDebug(enabled)
}

// Vendor returns the vendor family identifier
func (e *EuropaExtractor) Vendor() string { return "europa" }

// Extract parses the decoded PDF text into an order header and line items.
func (e *EuropaExtractor) Extract(content string) (domain.OrderHeader, []domain.ExtractedLineItem, error) {
	lines := splitLines(content)
	if !hasText(lines) {
		return domain.OrderHeader{}, nil, fmt.Errorf("europa: %w", domain.ErrStructuralExtraction)
	}

	order, account, customer, date := extractHeader(lines, e.rules)
	header := domain.OrderHeader{
		OrderNumber:   order,
		AccountNumber: account,
		CustomerName:  customer,
		OrderDate:     date,
	}

	var items []domain.ExtractedLineItem
	for _, rec := range e.scanner.scan(lines) {
		item := e.norm.Normalize(rec.text)
		if item == nil {
			continue
		}
		item.SourceLineNumber = rec.lineNumber
		items = append(items, *item)
	}

	if e.enableDebugLogging {
		log.Printf("[EXTRACT] europa: order=%q items=%d", header.OrderNumber, len(items))
	}
	return header, items, nil
}
