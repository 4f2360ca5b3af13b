package domain

// CatalogVariant is one candidate match returned by a catalog source.
// Read-only; sourced externally and cached by search term.
type CatalogVariant struct {
	UPC             string  `json:"upc,omitempty"`
	EAN             string  `json:"ean,omitempty"`
	SKU             string  `json:"sku,omitempty"`
	ColorCode       string  `json:"colorCode,omitempty"`
	ColorName       string  `json:"colorName,omitempty"`
	EyeSize         string  `json:"eyeSize,omitempty"`
	Bridge          string  `json:"bridge,omitempty"`
	TempleLength    string  `json:"templeLength,omitempty"`
	Wholesale       float64 `json:"wholesale,omitempty"`
	SuggestedRetail float64 `json:"suggestedRetail,omitempty"`
	InStock         bool    `json:"inStock"`
	Availability    string  `json:"availability,omitempty"`
	Material        string  `json:"material,omitempty"`
	Gender          string  `json:"gender,omitempty"`
	Description     string  `json:"description,omitempty"`
}

// CatalogResult is the outcome of one catalog lookup. A failed or empty
// lookup is ordinary data (Found=false, Err set), never a Go error.
type CatalogResult struct {
	Found    bool             `json:"found"`
	Brand    string           `json:"brand,omitempty"`
	Model    string           `json:"model,omitempty"`
	Variants []CatalogVariant `json:"variants,omitempty"`
	Err      string           `json:"error,omitempty"`
}

// MatchResult is the validator's verdict for one extracted item.
// Created once per item, never mutated.
type MatchResult struct {
	ConfidenceScore float64         `json:"confidenceScore"`
	MatchedFields   []string        `json:"matchedFields,omitempty"`
	BestVariant     *CatalogVariant `json:"bestVariant,omitempty"`
	Validated       bool            `json:"validated"`
	Reason          string          `json:"reason"`
}
