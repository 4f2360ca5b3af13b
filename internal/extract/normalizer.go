package extract

import (
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Cloud-payto/optical-sub005/internal/domain"
)

// Package-level compiled regex patterns for performance
var (
	// Matches the size triplet "NN/NN NNN" (eye/bridge temple)
	sizePattern = regexp.MustCompile(`\b(\d{2})/(\d{2})\s+(\d{3})\b`)

	// Model-only token shapes: leading-zero codes ("0R80" is not one of
	// these — it has a letter), exact 4-digit style numbers, tokens with an
	// internal slash, and single digits
	zeroPrefixPattern = regexp.MustCompile(`^0\d+$`)
	fourDigitPattern  = regexp.MustCompile(`^\d{4}$`)
	singleDigitPattern = regexp.MustCompile(`^\d$`)

	// Candidate color codes: 3-4 alphanumeric characters
	colorCodeShapePattern = regexp.MustCompile(`^[A-Za-z0-9]{3,4}$`)

	quantityPattern = regexp.MustCompile(`^\d{1,2}$`)

	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// Normalizer splits a reconstructed multi-line record into
// brand/model/color/size fields using per-vendor brand prefixes.
type Normalizer struct {
	brands             []string // upper-case, longest first
	enableDebugLogging bool
}

// NewNormalizer creates a normalizer for the given brand prefix set.
// Prefixes are matched case-insensitively, longest first, so multi-word
// brands ("KATE SPADE") win over shorter ones.
func NewNormalizer(brands []string) *Normalizer {
	return &Normalizer{brands: brandPrefixes(brands)}
}

// brandPrefixes upper-cases and orders brand prefixes longest first.
func brandPrefixes(brands []string) []string {
	upper := make([]string, len(brands))
	for i, b := range brands {
		upper[i] = strings.ToUpper(strings.TrimSpace(b))
	}
	sort.Slice(upper, func(i, j int) bool { return len(upper[i]) > len(upper[j]) })
	return upper
}

// SetDebug enables per-record debug logging
func (n *Normalizer) SetDebug(enabled bool) {
	n.enableDebugLogging = enabled
}

// Normalize turns a reconstructed record line into an ExtractedLineItem.
// Records that never resolve a recognizable size pattern are discarded
// (nil return) so table artifacts never reach the item list.
func (n *Normalizer) Normalize(reconstructed string) *domain.ExtractedLineItem {
	flat := strings.TrimSpace(multiSpacePattern.ReplaceAllString(reconstructed, " "))
	if flat == "" {
		return nil
	}

	loc := sizePattern.FindStringSubmatchIndex(flat)
	if loc == nil {
		if n.enableDebugLogging {
			log.Printf("[NORMALIZE] No size pattern, discarding: %q", flat)
		}
		return nil
	}

	eye := flat[loc[2]:loc[3]]
	bridge := flat[loc[4]:loc[5]]
	temple := flat[loc[6]:loc[7]]

	before := strings.TrimSpace(flat[:loc[0]])
	after := strings.TrimSpace(flat[loc[1]:])

	brand, rest := n.splitBrand(before)
	model, colorCode, colorName := splitModelColor(strings.Fields(rest))

	item := &domain.ExtractedLineItem{
		RawText:      reconstructed,
		Brand:        brand,
		Model:        StripVariantSuffix(model),
		ColorCode:    colorCode,
		ColorName:    colorName,
		EyeSize:      eye,
		Bridge:       bridge,
		TempleLength: temple,
		Quantity:     parseQuantity(after),
	}

	if n.enableDebugLogging {
		log.Printf("[NORMALIZE] %q -> brand=%q model=%q color=%q/%q size=%s/%s %s qty=%d",
			flat, item.Brand, item.Model, item.ColorCode, item.ColorName,
			item.EyeSize, item.Bridge, item.TempleLength, item.Quantity)
	}

	return item
}

// splitBrand removes a known brand prefix from the start of the record
// text and returns (brand, remainder).
func (n *Normalizer) splitBrand(s string) (string, string) {
	upper := strings.ToUpper(s)
	for _, brand := range n.brands {
		if !strings.HasPrefix(upper, brand) {
			continue
		}
		rest := s[len(brand):]
		// Require a word boundary so "CA" does not eat "CARRERA"... the
		// longest-first ordering handles the containment direction, this
		// handles "CAT EYE" style collisions.
		if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
			continue
		}
		return brand, strings.TrimSpace(rest)
	}
	return "", s
}

// splitModelColor decides which tokens belong to the model and which
// single token is the color code.
//
// Priority rules:
//  1. Leading-zero numbers, exact 4-digit numbers, tokens with an internal
//     slash, and single digits always belong to the model (manufacturer
//     numbering convention).
//  2. The first remaining 3-4 character alphanumeric token containing at
//     least one digit is the color-code boundary. A purely alphabetic
//     4-letter token is never a color code even though it fits the length
//     rule; it is almost certainly a model-name word.
//  3. If no boundary is found: first two tokens are the model, the third
//     is the color code, the remainder is the color name.
//
// This heuristic has known false positives (a short model word containing
// a digit reads as a color code); it is preserved as the documented
// behavior of the upstream vendors' numbering conventions.
func splitModelColor(tokens []string) (model, colorCode, colorName string) {
	boundary := -1
	for i, tok := range tokens {
		if isModelToken(tok) {
			continue
		}
		if isColorCodeToken(tok) {
			boundary = i
			break
		}
	}

	if boundary >= 0 {
		model = strings.Join(tokens[:boundary], " ")
		colorCode = tokens[boundary]
		colorName = strings.Join(tokens[boundary+1:], " ")
		return model, colorCode, colorName
	}

	// Fallback: accept the loss of precision
	switch {
	case len(tokens) >= 3:
		model = strings.Join(tokens[:2], " ")
		colorCode = tokens[2]
		colorName = strings.Join(tokens[3:], " ")
	case len(tokens) == 2:
		model = tokens[0]
		colorCode = tokens[1]
	case len(tokens) == 1:
		model = tokens[0]
	}
	return model, colorCode, colorName
}

// isModelToken reports whether the token is part of the model by
// manufacturer numbering convention, never a color code.
func isModelToken(tok string) bool {
	if zeroPrefixPattern.MatchString(tok) {
		return true
	}
	if fourDigitPattern.MatchString(tok) {
		return true
	}
	if strings.Contains(tok, "/") {
		return true
	}
	return singleDigitPattern.MatchString(tok)
}

// isColorCodeToken reports whether the token can act as the color-code
// boundary: 3-4 alphanumerics with at least one digit, excluding purely
// alphabetic 4-letter words.
func isColorCodeToken(tok string) bool {
	if !colorCodeShapePattern.MatchString(tok) {
		return false
	}
	hasDigit := false
	alphaCount := 0
	for _, r := range tok {
		if r >= '0' && r <= '9' {
			hasDigit = true
		} else {
			alphaCount++
		}
	}
	if !hasDigit {
		return false
	}
	if len(tok) == 4 && alphaCount == 4 {
		return false
	}
	return true
}

// StripVariantSuffix removes a trailing slash-delimited variant suffix
// from a model ("CHERETTE2/US" -> "CHERETTE2", "8035/G/S" -> "8035").
// These are packaging/lens variants, not part of the canonical model
// identity, and they break catalog matching. Idempotent.
func StripVariantSuffix(model string) string {
	if i := strings.IndexByte(model, '/'); i > 0 {
		return strings.TrimSpace(model[:i])
	}
	return model
}

// parseQuantity reads a bare 1-2 digit quantity immediately following the
// size triplet; everything else defaults to 1.
func parseQuantity(after string) int {
	fields := strings.Fields(after)
	if len(fields) == 0 {
		return 1
	}
	if !quantityPattern.MatchString(fields[0]) {
		return 1
	}
	qty, err := strconv.Atoi(fields[0])
	if err != nil || qty < 1 {
		return 1
	}
	return qty
}
