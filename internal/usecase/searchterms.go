package usecase

import (
	"strings"

	"github.com/Cloud-payto/optical-sub005/internal/domain"
)

// BuildSearchTerms produces the ordered list of catalog search-term
// variations for an item. The catalog is tried in order and stops at the
// first hit, so the most specific spellings come first:
//
//  1. bare model
//  2. document brand + model
//  3. abbreviation-expanded brand + model ("CA" -> "CARRERA")
//  4. model with embedded spaces removed, for catalogs that index
//     "VICTORYLANE" style keys
//
// Duplicates (case-insensitive) collapse to their first occurrence.
func BuildSearchTerms(item domain.ExtractedLineItem, abbreviations map[string]string) []string {
	model := strings.TrimSpace(item.Model)
	if model == "" {
		return nil
	}
	brand := strings.TrimSpace(item.Brand)

	var candidates []string
	candidates = append(candidates, model)

	if brand != "" {
		candidates = append(candidates, brand+" "+model)
		if expanded, ok := abbreviations[strings.ToUpper(brand)]; ok && !strings.EqualFold(expanded, brand) {
			candidates = append(candidates, expanded+" "+model)
		}
	}

	if strings.Contains(model, " ") {
		candidates = append(candidates, strings.ReplaceAll(model, " ", ""))
	}

	seen := make(map[string]bool, len(candidates))
	terms := make([]string, 0, len(candidates))
	for _, c := range candidates {
		key := strings.ToLower(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		terms = append(terms, c)
	}
	return terms
}
