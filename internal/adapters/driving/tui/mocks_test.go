package tui

import (
	"context"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
)

// MockAskService implements driving.AskService for testing.
type MockAskService struct {
	AskFunc func(ctx context.Context, q domain.Question) (*domain.FinalAnswer, error)
}

func (m *MockAskService) Ask(ctx context.Context, q domain.Question) (*domain.FinalAnswer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, q)
	}
	return &domain.FinalAnswer{Answer: "ok"}, nil
}

// MockRetrievalService implements driving.RetrievalService for testing.
type MockRetrievalService struct {
	SearchFunc func(ctx context.Context, query string, k int) ([]domain.SearchHit, error)
	size       int
}

func (m *MockRetrievalService) Ingest(_ context.Context, _, _ string) domain.IngestResult {
	return domain.IngestResult{Status: domain.IngestStatusSuccess}
}

func (m *MockRetrievalService) Search(ctx context.Context, query string, k int) ([]domain.SearchHit, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, k)
	}
	return nil, nil
}

func (m *MockRetrievalService) Size() int { return m.size }

// MockLogService implements driving.LogService for testing.
type MockLogService struct {
	Entries []domain.LogEntry
	Err     error
}

func (m *MockLogService) List(_ context.Context) ([]domain.LogEntry, error) {
	return m.Entries, m.Err
}

func (m *MockLogService) Recent(_ context.Context, n int) ([]domain.LogEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if n <= 0 || n >= len(m.Entries) {
		return m.Entries, nil
	}
	return m.Entries[len(m.Entries)-n:], nil
}
