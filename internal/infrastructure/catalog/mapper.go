package catalog

import "github.com/Cloud-payto/optical-sub005/internal/domain"

// searchResponse is the wire shape of the frames search endpoint
type searchResponse struct {
	Brand     string         `json:"brand"`
	Model     string         `json:"model"`
	TotalHits int            `json:"totalHits"`
	Frames    []frameVariant `json:"frames"`
}

// frameVariant is one variant row in the API response
type frameVariant struct {
	UPC             string  `json:"upc"`
	EAN             string  `json:"ean"`
	SKU             string  `json:"sku"`
	ColorCode       string  `json:"colorCode"`
	ColorName       string  `json:"colorName"`
	EyeSize         string  `json:"eye"`
	Bridge          string  `json:"bridge"`
	TempleLength    string  `json:"temple"`
	WholesalePrice  float64 `json:"wholesalePrice"`
	SuggestedRetail float64 `json:"suggestedRetail"`
	InStock         bool    `json:"inStock"`
	Availability    string  `json:"availability"`
	Material        string  `json:"material"`
	Gender          string  `json:"gender"`
	StyleName       string  `json:"styleName"`
}

// mapSearchResponse converts the API payload to the domain CatalogResult
func mapSearchResponse(resp *searchResponse) domain.CatalogResult {
	result := domain.CatalogResult{
		Found:    true,
		Brand:    resp.Brand,
		Model:    resp.Model,
		Variants: make([]domain.CatalogVariant, 0, len(resp.Frames)),
	}
	for _, f := range resp.Frames {
		result.Variants = append(result.Variants, mapVariant(f))
	}
	return result
}

// mapVariant converts one API variant row to the domain model
func mapVariant(f frameVariant) domain.CatalogVariant {
	return domain.CatalogVariant{
		UPC:             f.UPC,
		EAN:             f.EAN,
		SKU:             f.SKU,
		ColorCode:       f.ColorCode,
		ColorName:       f.ColorName,
		EyeSize:         f.EyeSize,
		Bridge:          f.Bridge,
		TempleLength:    f.TempleLength,
		Wholesale:       f.WholesalePrice,
		SuggestedRetail: f.SuggestedRetail,
		InStock:         f.InStock,
		Availability:    f.Availability,
		Material:        f.Material,
		Gender:          f.Gender,
		Description:     f.StyleName,
	}
}
