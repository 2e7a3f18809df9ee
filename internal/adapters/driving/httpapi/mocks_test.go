package httpapi

import (
	"context"
	"errors"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driving"
)

// mockAskService records the last question.
type mockAskService struct {
	answer *domain.FinalAnswer
	err    error
	last   domain.Question
}

func (m *mockAskService) Ask(_ context.Context, q domain.Question) (*domain.FinalAnswer, error) {
	m.last = q
	if m.err != nil {
		return nil, m.err
	}
	if m.answer == nil {
		return &domain.FinalAnswer{Answer: "ok"}, nil
	}
	return m.answer, nil
}

// mockIngestService records uploads.
type mockIngestService struct {
	result   domain.IngestResult
	err      error
	filename string
	content  []byte
}

func (m *mockIngestService) IngestFile(context.Context, string) domain.IngestResult {
	return m.result
}

func (m *mockIngestService) IngestUpload(_ context.Context, filename string, content []byte) (domain.IngestResult, error) {
	m.filename = filename
	m.content = content
	return m.result, m.err
}

func (m *mockIngestService) IngestDir(context.Context, string) ([]driving.FileIngestResult, error) {
	return nil, nil
}

func (m *mockIngestService) Supports(string) bool { return true }

type mockLogService struct {
	entries []domain.LogEntry
	err     error
}

func (m *mockLogService) List(context.Context) ([]domain.LogEntry, error) {
	return m.entries, m.err
}

func (m *mockLogService) Recent(_ context.Context, n int) ([]domain.LogEntry, error) {
	if n < len(m.entries) {
		return m.entries[len(m.entries)-n:], m.err
	}
	return m.entries, m.err
}

type mockRetrieval struct {
	size int
}

func (m *mockRetrieval) Ingest(context.Context, string, string) domain.IngestResult {
	return domain.IngestResult{}
}

func (m *mockRetrieval) Search(context.Context, string, int) ([]domain.SearchHit, error) {
	return nil, nil
}

func (m *mockRetrieval) Size() int { return m.size }

var errBoom = errors.New("boom")
