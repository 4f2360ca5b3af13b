package extract

import (
	"fmt"
	"log"

	"github.com/Cloud-payto/optical-sub005/internal/domain"
)

// safiloBrands are the brand prefixes Safilo prints at the start of each
// item line, including the two-letter house abbreviations.
var safiloBrands = []string{
	"CARRERA", "CA",
	"POLAROID", "PLD",
	"KATE SPADE", "KS",
	"BOSS", "HUGO", "HG",
	"TOMMY HILFIGER", "TH",
	"SAFILO",
}

// SafiloAbbreviations expands Safilo's two-letter brand codes to their
// full brand names for catalog search.
var SafiloAbbreviations = map[string]string{
	"CA":  "CARRERA",
	"PLD": "POLAROID",
	"KS":  "KATE SPADE",
	"HG":  "HUGO",
	"TH":  "TOMMY HILFIGER",
}

// SafiloExtractor parses Safilo order-confirmation e-mails. The body
// arrives as HTML or plain text; items sit under an "Item Description"
// heading, one record spanning one to three physical lines.
type SafiloExtractor struct {
	norm               *Normalizer
	scanner            recordScanner
	rules              headerRules
	enableDebugLogging bool
}

// NewSafiloExtractor creates the Safilo layout extractor
func NewSafiloExtractor() *SafiloExtractor {
	return &SafiloExtractor{
		norm: NewNormalizer(safiloBrands),
		scanner: recordScanner{
			brands:    brandPrefixes(safiloBrands),
			sentinel:  "Item Description",
			lookahead: 4,
		},
		rules: headerRules{
			orderLabels:    []string{"Order Number", "Order No", "Order #"},
			accountLabels:  []string{"Account Number", "Account No", "Account #"},
			customerLabels: []string{"Customer Name", "Customer"},
			dateLabels:     []string{"Order Date"},
		},
	}
}

// SetDebug enables per-record debug logging
func (e *SafiloExtractor) SetDebug(enabled bool) {
	e.enableDebugLogging = enabled
	e.norm.SetDebug(enabled)
}

// Vendor returns the vendor family identifier
func (e *SafiloExtractor) Vendor() string { return "safilo" }

// Extract parses the document into an order header and line items.
func (e *SafiloExtractor) Extract(content string) (domain.OrderHeader, []domain.ExtractedLineItem, error) {
	if LooksLikeHTML(content) {
		content = HTMLToText(content)
	}

	lines := splitLines(content)
	if !hasText(lines) {
		return domain.OrderHeader{}, nil, fmt.Errorf("safilo: %w", domain.ErrStructuralExtraction)
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
		log.Printf("[EXTRACT] safilo: order=%q items=%d", header.OrderNumber, len(items))
	}
	return header, items, nil
}

// hasText reports whether any line carries non-whitespace content.
func hasText(lines []string) bool {
	for _, line := range lines {
		if !isBlank(line) {
			return true
		}
	}
	return false
}
