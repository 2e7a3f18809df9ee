// Package serpapi provides a web SearchProvider backed by SerpAPI's
// Google engine.
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/custodia-labs/sercha-agents/internal/adapters/driven/search"
	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.SearchProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://serpapi.com/search"
	DefaultTimeout = 30 * time.Second
	DefaultEngine  = "google"
)

// Config holds configuration for the SerpAPI provider.
type Config struct {
	// APIKey is the SerpAPI key (required).
	APIKey string

	// BaseURL is the search endpoint (default: https://serpapi.com/search).
	BaseURL string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Provider queries SerpAPI.
type Provider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *search.RateLimiter
}

type searchResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"organic_results"`
	Error string `json:"error,omitempty"`
}

// New creates a SerpAPI provider.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: serpapi API key is required", domain.ErrProviderUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Provider{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		limiter: search.NewRateLimiter(search.SerpAPILimit),
	}, nil
}

// Name returns "serpapi".
func (p *Provider) Name() string {
	return "serpapi"
}

// Search returns the first limit organic results.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.ResultItem, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", p.apiKey)
	params.Set("engine", DefaultEngine)
	if limit > 0 {
		params.Set("num", strconv.Itoa(limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: serpapi: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		p.limiter.Backoff(search.RetryAfter(resp.Header.Get("Retry-After")))
		return nil, fmt.Errorf("serpapi: %w", domain.ErrRateLimited)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != "" {
		// SerpAPI reports "no results" as an error string on a 200.
		if resp.StatusCode == http.StatusOK {
			return []domain.ResultItem{}, nil
		}
		return nil, fmt.Errorf("serpapi error (status %d): %s", resp.StatusCode, parsed.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi error (status %d)", resp.StatusCode)
	}

	n := len(parsed.OrganicResults)
	if limit > 0 && n > limit {
		n = limit
	}
	items := make([]domain.ResultItem, 0, n)
	for _, r := range parsed.OrganicResults[:n] {
		items = append(items, domain.ResultItem{
			ID:        r.Link,
			Title:     r.Title,
			Content:   r.Snippet,
			SourceRef: r.Link,
		})
	}
	return items, nil
}
