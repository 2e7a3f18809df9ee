// Package arxiv provides a paper SearchProvider backed by the arXiv
// export API (Atom feed).
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-agents/internal/adapters/driven/search"
	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.SearchProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://export.arxiv.org/api/query"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the arXiv provider.
type Config struct {
	// BaseURL is the query endpoint (default: http://export.arxiv.org/api/query).
	BaseURL string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// RateLimit overrides search.ArxivLimit.
	RateLimit *search.RateLimitConfig
}

// Provider queries arXiv.
type Provider struct {
	client  *http.Client
	baseURL string
	limiter *search.RateLimiter
}

// Paper is one arXiv entry.
type Paper struct {
	EntryID   string
	Title     string
	Summary   string
	Authors   []string
	Published time.Time
}

type feed struct {
	XMLName xml.Name `xml:"feed"`
	Entries []entry  `xml:"entry"`
}

type entry struct {
	ID        string   `xml:"id"`
	Title     string   `xml:"title"`
	Summary   string   `xml:"summary"`
	Published string   `xml:"published"`
	Authors   []author `xml:"author"`
}

type author struct {
	Name string `xml:"name"`
}

// New creates an arXiv provider.
func New(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	limit := search.ArxivLimit
	if cfg.RateLimit != nil {
		limit = *cfg.RateLimit
	}

	return &Provider{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		limiter: search.NewRateLimiter(limit),
	}
}

// Name returns "arxiv".
func (p *Provider) Name() string {
	return "arxiv"
}

// Search returns up to limit papers sorted by relevance.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.ResultItem, error) {
	papers, err := p.Papers(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	items := make([]domain.ResultItem, 0, len(papers))
	for _, paper := range papers {
		items = append(items, domain.ResultItem{
			ID:        paper.EntryID,
			Title:     paper.Title,
			Content:   paper.Summary,
			SourceRef: paper.EntryID,
		})
	}
	return items, nil
}

// Papers returns full entries, including authors and publication dates.
func (p *Provider) Papers(ctx context.Context, query string, limit int) ([]Paper, error) {
	if limit <= 0 {
		limit = domain.DefaultArxivMaxResults
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(limit))
	params.Set("sortBy", "relevance")
	params.Set("sortOrder", "descending")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: arxiv: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		p.limiter.Backoff(search.RetryAfter(resp.Header.Get("Retry-After")))
		return nil, fmt.Errorf("arxiv (status %d): %w", resp.StatusCode, domain.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("arxiv error (status %d)", resp.StatusCode)
	}

	var f feed
	if err := xml.NewDecoder(resp.Body).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode arxiv feed: %w", err)
	}

	papers := make([]Paper, 0, len(f.Entries))
	for _, e := range f.Entries {
		if len(papers) == limit {
			break
		}
		// The API answers errors with a single entry whose id is the error page.
		if strings.Contains(e.ID, "/api/errors") {
			return nil, fmt.Errorf("arxiv error: %s", collapse(e.Summary))
		}
		paper := Paper{
			EntryID: strings.TrimSpace(e.ID),
			Title:   collapse(e.Title),
			Summary: collapse(e.Summary),
		}
		for _, a := range e.Authors {
			paper.Authors = append(paper.Authors, strings.TrimSpace(a.Name))
		}
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published)); err == nil {
			paper.Published = t
		}
		papers = append(papers, paper)
	}
	return papers, nil
}

// collapse folds the feed's hard-wrapped text onto one line.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
