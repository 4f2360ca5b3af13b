package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Cloud-payto/optical-sub005/internal/domain"
)

// Field weights for the confidence score. Model and color carry the most
// identifying power; sizes are partial credit because vendor documents
// frequently omit or abbreviate sizing while catalog sizing is reliable.
// Maximum 95: a perfect record lands near, not at, 100.
const (
	weightBrand     = 20.0
	weightModel     = 25.0
	weightColorCode = 20.0
	weightEyeSize   = 10.0
	weightBridge    = 10.0
	weightTemple    = 10.0

	defaultConfidenceThreshold = 50.0
)

// Validator cross-references an extracted item against catalog candidates
// and assigns a confidence verdict.
type Validator struct {
	threshold          float64
	enableDebugLogging bool
}

// NewValidator creates a validator with the given confidence threshold
func NewValidator(threshold float64) *Validator {
	if threshold <= 0 {
		threshold = defaultConfidenceThreshold
	}
	return &Validator{threshold: threshold}
}

// SetDebug enables per-candidate debug logging
func (v *Validator) SetDebug(enabled bool) {
	v.enableDebugLogging = enabled
}

// Threshold returns the configured confidence threshold
func (v *Validator) Threshold() float64 {
	return v.threshold
}

// Validate scores the extracted item against every catalog candidate and
// selects the best variant. "No match" and "low confidence" are ordinary
// data values on the MatchResult, never errors.
func (v *Validator) Validate(ctx context.Context, item domain.ExtractedLineItem, catalog domain.CatalogResult) domain.MatchResult {
	if catalog.Err != "" {
		return domain.MatchResult{
			Validated: false,
			Reason:    fmt.Sprintf("lookup failed: %s", catalog.Err),
		}
	}
	if !catalog.Found || len(catalog.Variants) == 0 {
		return domain.MatchResult{
			Validated: false,
			Reason:    "no catalog result",
		}
	}

	var best *domain.CatalogVariant
	var bestScore float64 = -1
	var bestFields []string

	for i := range catalog.Variants {
		select {
		case <-ctx.Done():
			return domain.MatchResult{Validated: false, Reason: fmt.Sprintf("lookup failed: %v", ctx.Err())}
		default:
		}

		variant := &catalog.Variants[i]
		score, fields := scoreVariant(item, catalog, variant)

		if v.enableDebugLogging {
			log.Printf("[VALIDATE] %s %s vs variant %s/%s | score=%.0f matched=%v",
				item.Brand, item.Model, variant.ColorCode, variant.ColorName, score, fields)
		}

		if score > bestScore {
			bestScore = score
			best = variant
			bestFields = fields
		}
	}

	result := domain.MatchResult{
		ConfidenceScore: bestScore,
		MatchedFields:   bestFields,
		BestVariant:     best,
		Validated:       bestScore >= v.threshold,
	}
	if result.Validated {
		result.Reason = "validated"
	} else {
		// The rejected best candidate is retained for human review
		result.Reason = "below threshold"
	}
	return result
}

// scoreVariant computes the weighted field-match score for one candidate.
// Adding a true field match never lowers the score.
func scoreVariant(item domain.ExtractedLineItem, catalog domain.CatalogResult, variant *domain.CatalogVariant) (float64, []string) {
	var score float64
	var matched []string

	if looseMatch(item.Brand, catalog.Brand) {
		score += weightBrand
		matched = append(matched, "brand")
	}
	if looseMatch(item.Model, catalog.Model) {
		score += weightModel
		matched = append(matched, "model")
	}
	if looseMatch(item.ColorCode, variant.ColorCode) {
		score += weightColorCode
		matched = append(matched, "colorCode")
	}
	if exactMatch(item.EyeSize, variant.EyeSize) {
		score += weightEyeSize
		matched = append(matched, "eyeSize")
	}
	if exactMatch(item.Bridge, variant.Bridge) {
		score += weightBridge
		matched = append(matched, "bridge")
	}
	if exactMatch(item.TempleLength, variant.TempleLength) {
		score += weightTemple
		matched = append(matched, "templeLength")
	}

	return score, matched
}

// looseMatch is case-insensitive equality or substring containment in
// either direction. Both sides must be non-empty; an absent field earns
// no credit.
func looseMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

// exactMatch is trimmed string equality for size fields.
func exactMatch(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	return a != "" && a == b
}
