package usecase

import (
	"context"
	"testing"

	"github.com/Cloud-payto/optical-sub005/internal/domain"
)

func fullItem() domain.ExtractedLineItem {
	return domain.ExtractedLineItem{
		Brand:        "CARRERA",
		Model:        "VICTORY LANE",
		ColorCode:    "807",
		ColorName:    "BLACK",
		EyeSize:      "54",
		Bridge:       "17",
		TempleLength: "140",
	}
}

func fullCatalog() domain.CatalogResult {
	return domain.CatalogResult{
		Found: true,
		Brand: "CARRERA",
		Model: "VICTORY LANE",
		Variants: []domain.CatalogVariant{
			{UPC: "716736229041", ColorCode: "807", ColorName: "BLACK", EyeSize: "54", Bridge: "17", TempleLength: "140"},
		},
	}
}

func TestValidate(t *testing.T) {
	v := NewValidator(50)
	ctx := context.Background()

	t.Run("perfect record scores 95 and validates", func(t *testing.T) {
		match := v.Validate(ctx, fullItem(), fullCatalog())

		if !match.Validated {
			t.Fatalf("Validated = false, want true (score %.0f)", match.ConfidenceScore)
		}
		if match.ConfidenceScore != 95 {
			t.Errorf("ConfidenceScore = %.0f, want 95", match.ConfidenceScore)
		}
		if match.Reason != "validated" {
			t.Errorf("Reason = %q, want validated", match.Reason)
		}
		if len(match.MatchedFields) != 6 {
			t.Errorf("MatchedFields = %v, want all 6", match.MatchedFields)
		}
		if match.BestVariant == nil || match.BestVariant.UPC != "716736229041" {
			t.Errorf("BestVariant = %+v, want the catalog variant", match.BestVariant)
		}
	})

	t.Run("lookup error becomes a reason string", func(t *testing.T) {
		match := v.Validate(ctx, fullItem(), domain.CatalogResult{Found: false, Err: "status 503"})

		if match.Validated {
			t.Error("Validated = true, want false")
		}
		if match.Reason != "lookup failed: status 503" {
			t.Errorf("Reason = %q, want lookup failed: status 503", match.Reason)
		}
	})

	t.Run("catalog miss becomes no catalog result", func(t *testing.T) {
		match := v.Validate(ctx, fullItem(), domain.CatalogResult{Found: false})

		if match.Reason != "no catalog result" {
			t.Errorf("Reason = %q, want no catalog result", match.Reason)
		}
		if match.BestVariant != nil {
			t.Errorf("BestVariant = %+v, want nil", match.BestVariant)
		}
	})

	t.Run("weak match stays below threshold but keeps its best candidate", func(t *testing.T) {
		catalog := domain.CatalogResult{
			Found: true,
			Brand: "OTHER BRAND",
			Model: "OTHER MODEL",
			Variants: []domain.CatalogVariant{
				{ColorCode: "ZZZ", EyeSize: "54", Bridge: "17", TempleLength: "999"},
			},
		}
		match := v.Validate(ctx, fullItem(), catalog)

		if match.Validated {
			t.Errorf("Validated = true for score %.0f, want false", match.ConfidenceScore)
		}
		if match.ConfidenceScore != 20 {
			t.Errorf("ConfidenceScore = %.0f, want 20 (eye + bridge only)", match.ConfidenceScore)
		}
		if match.Reason != "below threshold" {
			t.Errorf("Reason = %q, want below threshold", match.Reason)
		}
		if match.BestVariant == nil {
			t.Error("BestVariant = nil, want rejected candidate retained for review")
		}
	})

	t.Run("selects the highest scoring variant", func(t *testing.T) {
		catalog := fullCatalog()
		catalog.Variants = []domain.CatalogVariant{
			{UPC: "weak", ColorCode: "086", EyeSize: "52", Bridge: "19", TempleLength: "145"},
			{UPC: "strong", ColorCode: "807", EyeSize: "54", Bridge: "17", TempleLength: "140"},
		}
		match := v.Validate(ctx, fullItem(), catalog)

		if match.BestVariant == nil || match.BestVariant.UPC != "strong" {
			t.Errorf("BestVariant = %+v, want the 807 variant", match.BestVariant)
		}
	})

	t.Run("adding a matching field never lowers the score", func(t *testing.T) {
		item := fullItem()
		item.EyeSize = ""
		partial := v.Validate(ctx, item, fullCatalog())
		full := v.Validate(ctx, fullItem(), fullCatalog())

		if full.ConfidenceScore < partial.ConfidenceScore {
			t.Errorf("score dropped from %.0f to %.0f after adding a match",
				partial.ConfidenceScore, full.ConfidenceScore)
		}
	})
}

func TestNewValidatorThreshold(t *testing.T) {
	if got := NewValidator(0).Threshold(); got != 50 {
		t.Errorf("Threshold() = %.0f, want default 50", got)
	}
	if got := NewValidator(75).Threshold(); got != 75 {
		t.Errorf("Threshold() = %.0f, want 75", got)
	}
}

func TestLooseMatch(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"CARRERA", "carrera", true},
		{"VICTORY LANE", "VICTORY LANE/S", true}, // containment either way
		{"LANE/S", "victory lane/s", true},
		{"807", "086", false},
		{"", "CARRERA", false},
		{"CARRERA", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		if got := looseMatch(tc.a, tc.b); got != tc.want {
			t.Errorf("looseMatch(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestExactMatch(t *testing.T) {
	if !exactMatch(" 54", "54") {
		t.Error("exactMatch should trim whitespace")
	}
	if exactMatch("", "") {
		t.Error("empty fields earn no credit")
	}
	if exactMatch("54", "540") {
		t.Error("sizes must not match by containment")
	}
}
