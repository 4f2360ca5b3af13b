package extract

import (
	"fmt"
	"log"

	"github.com/Cloud-payto/optical-sub005/internal/domain"
)

// luxotticaBrands are the brand prefixes Luxottica prints per item line.
// The two-letter codes are the house style codes used on wholesale
// confirmations.
var luxotticaBrands = []string{
	"RAY-BAN", "RAY BAN", "RB",
	"OAKLEY", "OO", "OX",
	"VOGUE", "VO",
	"PERSOL", "PO",
	"ARNETTE", "AN",
	"OLIVER PEOPLES", "OV",
}

// LuxotticaAbbreviations expands Luxottica style-code prefixes to full
// brand names for catalog search.
var LuxotticaAbbreviations = map[string]string{
	"RB": "RAY-BAN",
	"OO": "OAKLEY",
	"OX": "OAKLEY",
	"VO": "VOGUE",
	"PO": "PERSOL",
	"AN": "ARNETTE",
	"OV": "OLIVER PEOPLES",
}

// LuxotticaExtractor parses Luxottica order confirmations. These arrive
// as plain-text e-mail with a "Model Description" table; records are
// usually single lines but wrap when the color name is long.
type LuxotticaExtractor struct {
	norm               *Normalizer
	scanner            recordScanner
	rules              headerRules
	enableDebugLogging bool
}

// NewLuxotticaExtractor creates the Luxottica layout extractor
func NewLuxotticaExtractor() *LuxotticaExtractor {
	return &LuxotticaExtractor{
		norm: NewNormalizer(luxotticaBrands),
		scanner: recordScanner{
			brands:    brandPrefixes(luxotticaBrands),
			sentinel:  "Model Description",
			lookahead: 4,
		},
		rules: headerRules{
			orderLabels:    []string{"PO Number", "Order Number", "Order #"},
			accountLabels:  []string{"Account Number", "Account"},
			customerLabels: []string{"Ship To", "Customer"},
			dateLabels:     []string{"Order Date", "Date"},
		},
	}
}

// SetDebug enables per-record debug logging
func (e *LuxotticaExtractor) SetDebug(enabled bool) {
	e.enableDebugLogging = enabled
	e.norm.SetDebug(enabled)
}

// Vendor returns the vendor family identifier
func (e *LuxotticaExtractor) Vendor() string { return "luxottica" }

// Extract parses the document into an order header and line items.
func (e *LuxotticaExtractor) Extract(content string) (domain.OrderHeader, []domain.ExtractedLineItem, error) {
	if LooksLikeHTML(content) {
		content = HTMLToText(content)
	}

	lines := splitLines(content)
	if !hasText(lines) {
		return domain.OrderHeader{}, nil, fmt.Errorf("luxottica: %w", domain.ErrStructuralExtraction)
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
		log.Printf("[EXTRACT] luxottica: order=%q items=%d", header.OrderNumber, len(items))
	}
	return header, items, nil
}
