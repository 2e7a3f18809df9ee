package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driving"
)

// Agent answers a question from one source.
type Agent interface {
	// ID identifies the agent in decisions and logs.
	ID() domain.AgentID

	// Run searches for the question. Errors are turned into
	// error-flavoured results by the orchestrator.
	Run(ctx context.Context, q domain.Question) (domain.AgentResult, error)
}

// Ensure agents implement the interface.
var (
	_ Agent = (*RetrievalAgent)(nil)
	_ Agent = (*PaperAgent)(nil)
	_ Agent = (*WebAgent)(nil)
)

// Summary shape: how many items are quoted and how much of each.
const (
	summaryItems        = 2
	retrievalSnippetLen = 200
	paperSnippetLen     = 150
	webSnippetLen       = 100
)

// NoDocumentsSummary is the retrieval agent's summary for an empty result.
const NoDocumentsSummary = "No relevant documents found."

// RetrievalAgent searches the local retrieval index.
type RetrievalAgent struct {
	index driving.RetrievalService
	topK  int
}

// NewRetrievalAgent creates a retrieval agent returning topK chunks.
func NewRetrievalAgent(index driving.RetrievalService, topK int) *RetrievalAgent {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &RetrievalAgent{index: index, topK: topK}
}

// ID returns pdf_rag.
func (a *RetrievalAgent) ID() domain.AgentID { return domain.AgentRetrieval }

// Run searches the index and quotes the top chunks.
func (a *RetrievalAgent) Run(ctx context.Context, q domain.Question) (domain.AgentResult, error) {
	hits, err := a.index.Search(ctx, q.SearchText(), a.topK)
	if err != nil {
		return domain.AgentResult{}, err
	}

	items := make([]domain.ResultItem, 0, len(hits))
	for _, h := range hits {
		items = append(items, h.Item())
	}

	parts := make([]string, 0, summaryItems)
	for _, item := range firstN(items, summaryItems) {
		parts = append(parts, truncateRunes(item.Content, retrievalSnippetLen)+"...")
	}
	summary := strings.Join(parts, " ")
	if summary == "" {
		summary = NoDocumentsSummary
	}

	return domain.AgentResult{ProviderID: a.ID(), Summary: summary, Items: items}, nil
}

// PaperAgent searches academic papers.
type PaperAgent struct {
	provider   driven.SearchProvider
	maxResults int
}

// NewPaperAgent creates a paper agent.
func NewPaperAgent(provider driven.SearchProvider, maxResults int) *PaperAgent {
	if maxResults <= 0 {
		maxResults = domain.DefaultArxivMaxResults
	}
	return &PaperAgent{provider: provider, maxResults: maxResults}
}

// ID returns arxiv.
func (a *PaperAgent) ID() domain.AgentID { return domain.AgentPapers }

// Run queries the paper provider.
func (a *PaperAgent) Run(ctx context.Context, q domain.Question) (domain.AgentResult, error) {
	return runProvider(ctx, a.ID(), a.provider, q, a.maxResults, paperSnippetLen,
		"No ArXiv papers found for query: ")
}

// WebAgent searches the public web.
type WebAgent struct {
	provider   driven.SearchProvider
	maxResults int
}

// NewWebAgent creates a web agent.
func NewWebAgent(provider driven.SearchProvider, maxResults int) *WebAgent {
	if maxResults <= 0 {
		maxResults = domain.DefaultWebMaxResults
	}
	return &WebAgent{provider: provider, maxResults: maxResults}
}

// ID returns web_search.
func (a *WebAgent) ID() domain.AgentID { return domain.AgentWeb }

// Run queries the web provider.
func (a *WebAgent) Run(ctx context.Context, q domain.Question) (domain.AgentResult, error) {
	return runProvider(ctx, a.ID(), a.provider, q, a.maxResults, webSnippetLen,
		"No web results found for query: ")
}

func runProvider(
	ctx context.Context,
	id domain.AgentID,
	provider driven.SearchProvider,
	q domain.Question,
	limit, snippetLen int,
	emptyPrefix string,
) (domain.AgentResult, error) {
	if provider == nil {
		return domain.AgentResult{}, fmt.Errorf("%w: no %s provider configured", domain.ErrProviderUnavailable, id)
	}

	items, err := provider.Search(ctx, q.SearchText(), limit)
	if err != nil {
		return domain.AgentResult{}, err
	}
	items = firstN(items, limit)

	parts := make([]string, 0, summaryItems)
	for _, item := range firstN(items, summaryItems) {
		parts = append(parts, fmt.Sprintf("%s: %s...", item.Title, truncateRunes(item.Content, snippetLen)))
	}
	summary := strings.Join(parts, " ")
	if summary == "" {
		summary = emptyPrefix + q.Text
	}

	return domain.AgentResult{ProviderID: id, Summary: summary, Items: items}, nil
}

func firstN(items []domain.ResultItem, n int) []domain.ResultItem {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// truncateRunes returns the first n runes of s.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
