package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
)

// Ensure LogStore implements the interface.
var _ driven.LogStore = (*LogStore)(nil)

// LogStore is an in-memory append-only interaction log.
// Entries are lost when the process exits.
type LogStore struct {
	mu      sync.RWMutex
	entries []domain.LogEntry
}

// NewLogStore creates a new in-memory log store.
func NewLogStore() *LogStore {
	return &LogStore{}
}

// Append adds one entry.
func (s *LogStore) Append(_ context.Context, entry domain.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, copyEntry(entry))
	return nil
}

// ListAll returns every entry in insertion order.
func (s *LogStore) ListAll(_ context.Context) ([]domain.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.LogEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, copyEntry(e))
	}
	return out, nil
}

func copyEntry(e domain.LogEntry) domain.LogEntry {
	e.AgentsCalled = append([]string(nil), e.AgentsCalled...)
	e.DocumentsRetrieved = append([]string(nil), e.DocumentsRetrieved...)
	return e
}
