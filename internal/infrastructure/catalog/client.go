// Package catalog implements clients for external authoritative product
// data sources: the frames REST API and a scraped catalog page fallback,
// plus a caching wrapper shared by both.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/Cloud-payto/optical-sub005/internal/domain"
	"golang.org/x/time/rate"
)

// ClientConfig holds tunables for the REST catalog client
type ClientConfig struct {
	APIKey            string
	BaseURL           string
	RequestTimeout    time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
	RequestsPerSecond float64
}

// Client handles communication with the frames catalog API
type Client struct {
	httpClient   *http.Client
	apiKey       string
	baseURL      string
	rateLimiter  *rate.Limiter
	maxRetries   int
	retryBackoff time.Duration
	debug        bool
}

// NewClient creates a new catalog API client
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		// Upstream allows 5 requests/sec per account key
		rps = 5
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		rateLimiter:  rate.NewLimiter(rate.Limit(rps), 10),
		maxRetries:   retries,
		retryBackoff: backoff,
	}
}

// SetDebug enables request/response debug logging
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

// doRequest executes an HTTP GET request with proper headers
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "OpticalPipeline/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	return resp, nil
}

// Lookup queries the catalog API for variants matching the search term.
// Failures after the final retry and timeouts come back as
// Found:false with Err set; a lookup is never fatal to the run.
func (c *Client) Lookup(ctx context.Context, searchTerm string) domain.CatalogResult {
	if c.debug {
		log.Printf("[CATALOG] Lookup called with term: %q", searchTerm)
	}

	endpoint := fmt.Sprintf("%s/v1/frames/search", c.baseURL)
	params := url.Values{}
	params.Add("query", searchTerm)
	params.Add("api_key", c.apiKey)
	params.Add("pageSize", "10")
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return domain.CatalogResult{Found: false, Err: fmt.Sprintf("rate limiter: %v", err)}
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if c.debug {
				log.Printf("[CATALOG] Request error (attempt %d): %v", attempt, err)
			}
			lastErr = err
			if !sleepCtx(ctx, time.Duration(attempt)*c.retryBackoff) {
				break
			}
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			// Genuine miss, not an error
			return domain.CatalogResult{Found: false}
		}
		if resp.StatusCode != http.StatusOK {
			if c.debug {
				log.Printf("[CATALOG] API error (attempt %d) - Status: %d, Body: %s", attempt, resp.StatusCode, string(body))
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrCatalogUnavailable, resp.StatusCode)
			if !sleepCtx(ctx, time.Duration(attempt)*c.retryBackoff) {
				break
			}
			continue
		}

		var searchResp searchResponse
		if err := json.Unmarshal(body, &searchResp); err != nil {
			return domain.CatalogResult{Found: false, Err: fmt.Sprintf("decode response: %v", err)}
		}
		if len(searchResp.Frames) == 0 {
			if c.debug {
				log.Printf("[CATALOG] No frames found for term: %q", searchTerm)
			}
			return domain.CatalogResult{Found: false}
		}

		if c.debug {
			log.Printf("[CATALOG] Found %d variants for term: %q", len(searchResp.Frames), searchTerm)
		}
		return mapSearchResponse(&searchResp)
	}

	if lastErr == nil {
		lastErr = domain.ErrCatalogUnavailable
	}
	if c.debug {
		log.Printf("[CATALOG] All retries failed for term: %q: %v", searchTerm, lastErr)
	}
	return domain.CatalogResult{Found: false, Err: lastErr.Error()}
}

// sleepCtx sleeps for d unless the context finishes first; returns false
// when the context is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
