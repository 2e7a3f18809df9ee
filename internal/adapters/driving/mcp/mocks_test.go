package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driving"
)

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer *domain.FinalAnswer
	err    error
	last   domain.Question
}

func (m *mockAskService) Ask(_ context.Context, q domain.Question) (*domain.FinalAnswer, error) {
	m.last = q
	return m.answer, m.err
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	hits      []domain.SearchHit
	err       error
	lastQuery string
	lastK     int
}

func (m *mockRetrievalService) Ingest(context.Context, string, string) domain.IngestResult {
	return domain.IngestResult{}
}

func (m *mockRetrievalService) Search(_ context.Context, query string, k int) ([]domain.SearchHit, error) {
	m.lastQuery = query
	m.lastK = k
	return m.hits, m.err
}

func (m *mockRetrievalService) Size() int { return len(m.hits) }

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result   domain.IngestResult
	lastPath string
}

func (m *mockIngestService) IngestFile(_ context.Context, path string) domain.IngestResult {
	m.lastPath = path
	return m.result
}

func (m *mockIngestService) IngestUpload(context.Context, string, []byte) (domain.IngestResult, error) {
	return m.result, nil
}

func (m *mockIngestService) IngestDir(context.Context, string) ([]driving.FileIngestResult, error) {
	return nil, nil
}

func (m *mockIngestService) Supports(string) bool { return true }

// mockLogService is a mock implementation of driving.LogService.
type mockLogService struct {
	entries []domain.LogEntry
	err     error
	lastN   int
}

func (m *mockLogService) List(context.Context) ([]domain.LogEntry, error) {
	return m.entries, m.err
}

func (m *mockLogService) Recent(_ context.Context, n int) ([]domain.LogEntry, error) {
	m.lastN = n
	if n < len(m.entries) {
		return m.entries[len(m.entries)-n:], m.err
	}
	return m.entries, m.err
}
