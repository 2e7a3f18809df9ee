package driven

import (
	"context"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
)

// SearchProvider is an external search backend (web or academic papers)
// returning ranked snippets. Implementations should wrap transport failures
// with domain.ErrProviderUnavailable.
type SearchProvider interface {
	// Name identifies the provider in logs and cache keys.
	Name() string

	// Search returns up to limit results, best first.
	Search(ctx context.Context, query string, limit int) ([]domain.ResultItem, error)
}
