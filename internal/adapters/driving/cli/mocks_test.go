package cli

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driving"
)

type mockAskService struct {
	got    domain.Question
	answer *domain.FinalAnswer
	err    error
}

func (m *mockAskService) Ask(_ context.Context, q domain.Question) (*domain.FinalAnswer, error) {
	m.got = q
	return m.answer, m.err
}

type mockLogService struct {
	entries []domain.LogEntry
	lastN   int
	err     error
}

func (m *mockLogService) List(context.Context) ([]domain.LogEntry, error) {
	return m.entries, m.err
}

func (m *mockLogService) Recent(_ context.Context, n int) ([]domain.LogEntry, error) {
	m.lastN = n
	return m.entries, m.err
}

type mockRetrievalService struct {
	query string
	k     int
	hits  []domain.SearchHit
	size  int
	err   error
}

func (m *mockRetrievalService) Ingest(context.Context, string, string) domain.IngestResult {
	return domain.IngestResult{Status: domain.IngestStatusSuccess}
}

func (m *mockRetrievalService) Search(_ context.Context, query string, k int) ([]domain.SearchHit, error) {
	m.query, m.k = query, k
	return m.hits, m.err
}

func (m *mockRetrievalService) Size() int { return m.size }

// mockIngestService succeeds for every file except those containing "bad".
type mockIngestService struct {
	mu    sync.Mutex
	files []string
	dirs  []string
}

func (m *mockIngestService) IngestFile(_ context.Context, path string) domain.IngestResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = append(m.files, path)
	return resultFor(path)
}

func (m *mockIngestService) IngestUpload(_ context.Context, filename string, _ []byte) (domain.IngestResult, error) {
	return resultFor(filename), nil
}

func (m *mockIngestService) IngestDir(_ context.Context, dir string) ([]driving.FileIngestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs = append(m.dirs, dir)
	path := filepath.Join(dir, "found.txt")
	return []driving.FileIngestResult{{Path: path, Result: resultFor(path)}}, nil
}

func (m *mockIngestService) Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt", ".md":
		return true
	}
	return false
}

func resultFor(path string) domain.IngestResult {
	if strings.Contains(path, "bad") {
		return domain.IngestResult{Status: domain.IngestStatusError, Message: "no text extracted"}
	}
	return domain.IngestResult{Status: domain.IngestStatusSuccess, Message: "ok", ChunksProcessed: 3}
}

var (
	_ driving.AskService       = (*mockAskService)(nil)
	_ driving.LogService       = (*mockLogService)(nil)
	_ driving.RetrievalService = (*mockRetrievalService)(nil)
	_ driving.IngestService    = (*mockIngestService)(nil)
)
