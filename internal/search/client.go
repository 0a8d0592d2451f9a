// Package search fetches raw job postings from the external search provider.
//
// The adapter never propagates provider failures: transport errors, non-2xx
// statuses, and malformed payloads are logged and reported as "no postings",
// so the ingestion pipeline degrades instead of failing the request path.
package search

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonathan/job-radar/internal/cache"
	"github.com/jonathan/job-radar/internal/types"
)

// DefaultBaseURL is the search provider endpoint.
const DefaultBaseURL = "https://serpapi.com/search.json"

// DefaultTimeout is the HTTP request timeout for provider calls.
const DefaultTimeout = 30 * time.Second

// DefaultCacheTTL is how long a provider response stays cached.
const DefaultCacheTTL = 6 * time.Hour

// Options configures the search client.
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	CacheTTL       time.Duration
	RequestsPerMin int // provider rate limit; 0 uses the default
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() *Options {
	return &Options{
		BaseURL:        DefaultBaseURL,
		Timeout:        DefaultTimeout,
		CacheTTL:       DefaultCacheTTL,
		RequestsPerMin: 20,
	}
}

// Client retrieves job postings for a (query, location) pair, read-through and
// write-through against the cache facade.
type Client struct {
	apiKey   string
	baseURL  string
	http     *http.Client
	cache    *cache.Cache
	cacheTTL time.Duration
	limiter  *rate.Limiter
}

// NewClient creates a search client. The API key is required; the cache may be
// nil to disable caching (used in tests).
func NewClient(apiKey string, store *cache.Cache, opts *Options) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("search API key is required")
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.RequestsPerMin <= 0 {
		opts.RequestsPerMin = 20
	}

	return &Client{
		apiKey:   apiKey,
		baseURL:  opts.BaseURL,
		http:     &http.Client{Timeout: opts.Timeout},
		cache:    store,
		cacheTTL: opts.CacheTTL,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMin)), 1),
	}, nil
}

// FetchJobs returns the postings for a (query, location) pair. It returns an
// empty slice, never an error: any provider failure is logged and swallowed.
func (c *Client) FetchJobs(ctx context.Context, query, location string) []types.JobPosting {
	key := cache.Key("search", query, location)

	body, ok := c.cachedBody(ctx, key)
	if !ok {
		var err error
		body, err = c.fetch(ctx, query, location)
		if err != nil {
			log.Printf("search: fetch failed for %q in %q: %v", query, location, err)
			return nil
		}
		if c.cache != nil {
			// Cache the full provider response, not the extracted postings.
			c.cache.Set(ctx, key, body, c.cacheTTL)
		}
	}

	postings, err := parseResponse(body)
	if err != nil {
		log.Printf("search: malformed response for %q in %q: %v", query, location, err)
		return nil
	}
	return postings
}

func (c *Client) cachedBody(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	return c.cache.Get(ctx, key)
}

func (c *Client) fetch(ctx context.Context, query, location string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("engine", "google_jobs")
	params.Set("q", query)
	params.Set("location", location)
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response body")
	}
	return body, nil
}
