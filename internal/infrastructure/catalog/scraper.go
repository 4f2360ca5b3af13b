package catalog

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Cloud-payto/optical-sub005/internal/domain"
	"golang.org/x/net/html"
)

var scrapedSizePattern = regexp.MustCompile(`(\d{2})[/-](\d{2})[\s-]+(\d{3})`)

// PageScraper is an alternate catalog source that reads a vendor's public
// catalog page instead of a JSON API. Some upstream brands expose no API
// at all; their product pages render one table row per variant, which is
// enough to satisfy the CatalogClient contract.
type PageScraper struct {
	httpClient *http.Client
	baseURL    string
	debug      bool
}

// NewPageScraper creates a scraped-page catalog source
func NewPageScraper(baseURL string, timeout time.Duration) *PageScraper {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &PageScraper{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// SetDebug enables scrape debug logging
func (s *PageScraper) SetDebug(enabled bool) {
	s.debug = enabled
}

// Lookup fetches and parses the catalog page for the search term.
func (s *PageScraper) Lookup(ctx context.Context, searchTerm string) domain.CatalogResult {
	reqURL := fmt.Sprintf("%s/catalog/search?q=%s", s.baseURL, url.QueryEscape(searchTerm))

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return domain.CatalogResult{Found: false, Err: fmt.Sprintf("create request: %v", err)}
	}
	req.Header.Set("User-Agent", "OpticalPipeline/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.CatalogResult{Found: false, Err: fmt.Sprintf("%v: %v", domain.ErrCatalogUnavailable, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.CatalogResult{Found: false}
	}
	if resp.StatusCode != http.StatusOK {
		return domain.CatalogResult{Found: false, Err: fmt.Sprintf("%v: status %d", domain.ErrCatalogUnavailable, resp.StatusCode)}
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return domain.CatalogResult{Found: false, Err: fmt.Sprintf("parse page: %v", err)}
	}

	result := parseCatalogPage(doc)
	if s.debug {
		log.Printf("[SCRAPER] term=%q found=%v variants=%d", searchTerm, result.Found, len(result.Variants))
	}
	return result
}

// parseCatalogPage walks the page: the style heading carries "BRAND MODEL"
// and each row of the variants table carries
// sku | upc | color code | color name | size | wholesale | retail | availability.
func parseCatalogPage(doc *html.Node) domain.CatalogResult {
	var result domain.CatalogResult

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "h1":
				if result.Brand == "" {
					heading := strings.TrimSpace(nodeText(n))
					if i := strings.IndexByte(heading, ' '); i > 0 {
						result.Brand = heading[:i]
						result.Model = strings.TrimSpace(heading[i+1:])
					} else {
						result.Model = heading
					}
				}
			case "tr":
				if v, ok := parseVariantRow(n); ok {
					result.Variants = append(result.Variants, v)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	result.Found = len(result.Variants) > 0
	return result
}

// parseVariantRow reads one table row into a variant; header rows and
// short rows are skipped.
func parseVariantRow(tr *html.Node) (domain.CatalogVariant, bool) {
	var cells []string
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "td" {
			cells = append(cells, strings.TrimSpace(nodeText(c)))
		}
	}
	if len(cells) < 5 {
		return domain.CatalogVariant{}, false
	}

	v := domain.CatalogVariant{
		SKU:       cells[0],
		UPC:       cells[1],
		ColorCode: cells[2],
		ColorName: cells[3],
	}
	if m := scrapedSizePattern.FindStringSubmatch(cells[4]); m != nil {
		v.EyeSize, v.Bridge, v.TempleLength = m[1], m[2], m[3]
	}
	if len(cells) > 5 {
		v.Wholesale = parsePrice(cells[5])
	}
	if len(cells) > 6 {
		v.SuggestedRetail = parsePrice(cells[6])
	}
	if len(cells) > 7 {
		v.Availability = cells[7]
		v.InStock = strings.EqualFold(cells[7], "in stock")
	}
	return v, true
}

// nodeText concatenates the text content of a node's subtree.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// parsePrice reads a "$64.00" style cell.
func parsePrice(s string) float64 {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
