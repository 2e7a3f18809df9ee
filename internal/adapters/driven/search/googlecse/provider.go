// Package googlecse provides a web SearchProvider backed by the Google
// Programmable Search (Custom Search JSON) API.
package googlecse

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/sercha-agents/internal/adapters/driven/search"
	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.SearchProvider = (*Provider)(nil)

// MaxResults is the most results the API returns per request.
const MaxResults = 10

// Config holds configuration for the Custom Search provider.
type Config struct {
	// APIKey is the Google API key (required).
	APIKey string

	// EngineID is the Programmable Search Engine ID, the "cx" parameter (required).
	EngineID string

	// ClientOptions are appended after the API key, e.g. option.WithEndpoint.
	ClientOptions []option.ClientOption
}

// Provider queries the Custom Search JSON API.
type Provider struct {
	svc      *customsearch.Service
	engineID string
	limiter  *search.RateLimiter
}

// New creates a Custom Search provider.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.APIKey == "" || cfg.EngineID == "" {
		return nil, fmt.Errorf("%w: google custom search needs an API key and engine ID", domain.ErrProviderUnavailable)
	}

	opts := append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, cfg.ClientOptions...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create custom search service: %w", err)
	}

	return &Provider{
		svc:      svc,
		engineID: cfg.EngineID,
		limiter:  search.NewRateLimiter(search.GoogleCSELimit),
	}, nil
}

// Name returns "googlecse".
func (p *Provider) Name() string {
	return "googlecse"
}

// Search returns up to limit results (at most MaxResults).
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.ResultItem, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}

	res, err := p.svc.Cse.List().Q(query).Cx(p.engineID).Num(int64(limit)).Context(ctx).Do()
	if err != nil {
		return nil, p.classify(err)
	}

	items := make([]domain.ResultItem, 0, len(res.Items))
	for _, r := range res.Items {
		if len(items) == limit {
			break
		}
		items = append(items, domain.ResultItem{
			ID:        r.Link,
			Title:     r.Title,
			Content:   r.Snippet,
			SourceRef: r.Link,
		})
	}
	return items, nil
}

func (p *Provider) classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusTooManyRequests {
			p.limiter.Backoff(search.RetryAfter(gerr.Header.Get("Retry-After")))
			return fmt.Errorf("google custom search: %w", domain.ErrRateLimited)
		}
		return fmt.Errorf("google custom search error (status %d): %s", gerr.Code, gerr.Message)
	}
	return fmt.Errorf("%w: google custom search: %w", domain.ErrProviderUnavailable, err)
}
