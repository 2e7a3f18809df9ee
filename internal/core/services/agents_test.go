package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
)

func TestRetrievalAgent_Run(t *testing.T) {
	long := strings.Repeat("a", 300)
	index := &mockRetrieval{hits: []domain.SearchHit{
		{Chunk: domain.Chunk{ID: "c1", Text: long, SourceTitle: "a.pdf"}, Distance: 0.1},
		{Chunk: domain.Chunk{ID: "c2", Text: "short", SourceTitle: "b.pdf"}, Distance: 0.2},
		{Chunk: domain.Chunk{ID: "c3", Text: "ignored", SourceTitle: "c.pdf"}, Distance: 0.3},
	}}

	result, err := NewRetrievalAgent(index, 0).Run(context.Background(), domain.Question{Text: "q"})
	require.NoError(t, err)

	assert.Equal(t, 3, index.lastK)
	assert.Equal(t, domain.AgentRetrieval, result.ProviderID)
	assert.Equal(t, strings.Repeat("a", 200)+"... short...", result.Summary)
	require.Len(t, result.Items, 3)
	assert.Equal(t, "c1", result.Items[0].ID)
	assert.InDelta(t, 0.1, result.Items[0].Distance, 1e-9)
}

func TestRetrievalAgent_Empty(t *testing.T) {
	result, err := NewRetrievalAgent(&mockRetrieval{}, 3).Run(context.Background(), domain.Question{Text: "q"})
	require.NoError(t, err)
	assert.Equal(t, NoDocumentsSummary, result.Summary)
	assert.Empty(t, result.Items)
}

func TestRetrievalAgent_Error(t *testing.T) {
	_, err := NewRetrievalAgent(&mockRetrieval{searchErr: errBoom}, 3).Run(context.Background(), domain.Question{Text: "q"})
	assert.ErrorIs(t, err, errBoom)
}

func TestPaperAgent_Run(t *testing.T) {
	provider := &mockSearchProvider{name: "arxiv", items: []domain.ResultItem{
		{ID: "p1", Title: "Diffusion", Content: strings.Repeat("d", 200)},
		{ID: "p2", Title: "Transformers", Content: "attention"},
		{ID: "p3", Title: "Third", Content: "x"},
	}}

	result, err := NewPaperAgent(provider, 7).Run(context.Background(), domain.Question{Text: "diffusion"})
	require.NoError(t, err)

	assert.Equal(t, []int{7}, provider.limits)
	assert.Equal(t, "Diffusion: "+strings.Repeat("d", 150)+"... Transformers: attention...", result.Summary)
	assert.Len(t, result.Items, 3)
}

func TestPaperAgent_Empty(t *testing.T) {
	result, err := NewPaperAgent(&mockSearchProvider{}, 0).Run(context.Background(), domain.Question{Text: "quantum"})
	require.NoError(t, err)
	assert.Equal(t, "No ArXiv papers found for query: quantum", result.Summary)
}

func TestWebAgent_Run(t *testing.T) {
	provider := &mockSearchProvider{name: "serpapi", items: []domain.ResultItem{
		{ID: "https://a", Title: "A", Content: strings.Repeat("w", 120)},
	}}

	result, err := NewWebAgent(provider, 0).Run(context.Background(), domain.Question{Text: "news"})
	require.NoError(t, err)

	assert.Equal(t, []int{domain.DefaultWebMaxResults}, provider.limits)
	assert.Equal(t, "A: "+strings.Repeat("w", 100)+"...", result.Summary)
	assert.Equal(t, domain.AgentWeb, result.ProviderID)
}

func TestWebAgent_EmptyAndMissingProvider(t *testing.T) {
	result, err := NewWebAgent(&mockSearchProvider{}, 5).Run(context.Background(), domain.Question{Text: "news"})
	require.NoError(t, err)
	assert.Equal(t, "No web results found for query: news", result.Summary)

	_, err = NewWebAgent(nil, 5).Run(context.Background(), domain.Question{Text: "news"})
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héll", truncateRunes("héllo", 4))
	assert.Equal(t, "hi", truncateRunes("hi", 10))
}
