package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Each text maps to a vector whose first component is its length in words.
type mockEmbeddingService struct {
	dims     int
	embedErr error
	calls    int
	mu       sync.Mutex
}

func newMockEmbedder(dims int) *mockEmbeddingService {
	return &mockEmbeddingService{dims: dims}
}

func (m *mockEmbeddingService) vector(text string) []float32 {
	v := make([]float32, m.dims)
	v[0] = float32(len(strings.Fields(text)))
	return v
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int            { return m.dims }
func (m *mockEmbeddingService) ModelName() string          { return "mock-embed" }
func (m *mockEmbeddingService) Ping(context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error               { return nil }

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response string
	err      error
	prompts  []string
	opts     []driven.GenerateOptions
	mu       sync.Mutex
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()
	return m.response, m.err
}

func (m *mockLLMService) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return m.response, m.err
}

func (m *mockLLMService) ModelName() string          { return "mock-llm" }
func (m *mockLLMService) Ping(context.Context) error { return nil }
func (m *mockLLMService) Close() error               { return nil }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}

// mockSearchProvider implements driven.SearchProvider for testing.
type mockSearchProvider struct {
	name   string
	items  []domain.ResultItem
	err    error
	block  bool
	panics bool
	limits []int
	mu     sync.Mutex
}

func (m *mockSearchProvider) Name() string { return m.name }

func (m *mockSearchProvider) Search(ctx context.Context, _ string, limit int) ([]domain.ResultItem, error) {
	m.mu.Lock()
	m.limits = append(m.limits, limit)
	m.mu.Unlock()
	if m.panics {
		panic("provider exploded")
	}
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

// mockRetrieval implements driving.RetrievalService for testing.
type mockRetrieval struct {
	hits      []domain.SearchHit
	searchErr error
	ingested  []string
	result    domain.IngestResult
	lastK     int
}

func (m *mockRetrieval) Ingest(_ context.Context, text, source string) domain.IngestResult {
	m.ingested = append(m.ingested, source+"|"+text)
	if m.result.Status == "" {
		return domain.IngestResult{Status: domain.IngestStatusSuccess, Message: "Processed 1 chunks from " + source, ChunksProcessed: 1}
	}
	return m.result
}

func (m *mockRetrieval) Search(_ context.Context, _ string, k int) ([]domain.SearchHit, error) {
	m.lastK = k
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k < len(m.hits) {
		return m.hits[:k], nil
	}
	return m.hits, nil
}

func (m *mockRetrieval) Size() int { return len(m.hits) }

// mockLogStore implements driven.LogStore for testing.
type mockLogStore struct {
	entries   []domain.LogEntry
	appendErr error
	mu        sync.Mutex
}

func (m *mockLogStore) Append(_ context.Context, entry domain.LogEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockLogStore) ListAll(_ context.Context) ([]domain.LogEntry, error) {
	if m.appendErr != nil {
		return nil, m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.LogEntry(nil), m.entries...), nil
}

// mockExtractor implements driven.TextExtractor for testing.
type mockExtractor struct {
	exts  []string
	text  string
	title string
	err   error
}

func (m *mockExtractor) SupportedExtensions() []string { return m.exts }

func (m *mockExtractor) Extract(_ context.Context, _ string) (*driven.ExtractedText, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &driven.ExtractedText{Title: m.title, Text: m.text}, nil
}

// mockUploadStore implements driven.UploadStore for testing.
type mockUploadStore struct {
	dir   string
	saved map[string][]byte
	err   error
}

func (m *mockUploadStore) Save(_ context.Context, filename string, content []byte, maxBytes int64) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if int64(len(content)) > maxBytes {
		return "", domain.ErrFileTooLarge
	}
	if m.saved == nil {
		m.saved = make(map[string][]byte)
	}
	path := m.dir + "/" + filename
	m.saved[path] = content
	return path, nil
}

// mockVectorIndex implements driven.VectorIndex with a fixed length and
// configurable failures.
type mockVectorIndex struct {
	dims   int
	length int
	added  int
	addErr error
}

func (m *mockVectorIndex) Add(_ context.Context, vectors [][]float32) (int, error) {
	if m.addErr != nil {
		return 0, m.addErr
	}
	start := m.length
	m.length += len(vectors)
	m.added += len(vectors)
	return start, nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, _ int) ([]driven.VectorHit, error) {
	return nil, nil
}

func (m *mockVectorIndex) Len(context.Context) (int, error) { return m.length, nil }
func (m *mockVectorIndex) Dimensions() int                  { return m.dims }
func (m *mockVectorIndex) Close() error                     { return nil }

// failingChunkStore fails Append and records deleted IDs.
type failingChunkStore struct {
	appendErr error
	deleted   []string
}

func (m *failingChunkStore) Append(context.Context, []domain.Chunk, [][]float32) error {
	return m.appendErr
}

func (m *failingChunkStore) List(context.Context) ([]driven.StoredChunk, error) { return nil, nil }
func (m *failingChunkStore) Count(context.Context) (int, error)                 { return 0, nil }

func (m *failingChunkStore) Delete(_ context.Context, ids []string) error {
	m.deleted = append(m.deleted, ids...)
	return nil
}

var errBoom = errors.New("boom")
