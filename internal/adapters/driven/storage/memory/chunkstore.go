package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore keeps ingested chunks in memory.
// It satisfies the port when durability is not needed.
type ChunkStore struct {
	mu     sync.RWMutex
	chunks []driven.StoredChunk
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{}
}

// Append stores chunks and their embeddings in order.
func (s *ChunkStore) Append(_ context.Context, chunks []domain.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("%w: %d chunks but %d embeddings", domain.ErrInvalidInput, len(chunks), len(embeddings))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range chunks {
		s.chunks = append(s.chunks, driven.StoredChunk{
			Chunk:     c,
			Embedding: append([]float32(nil), embeddings[i]...),
		})
	}
	return nil
}

// List returns every stored chunk in insertion order.
func (s *ChunkStore) List(_ context.Context) ([]driven.StoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]driven.StoredChunk(nil), s.chunks...), nil
}

// Count returns the number of stored chunks.
func (s *ChunkStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// Delete removes the chunks with the given IDs.
func (s *ChunkStore) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = slices.DeleteFunc(s.chunks, func(sc driven.StoredChunk) bool {
		return slices.Contains(ids, sc.Chunk.ID)
	})
	return nil
}
