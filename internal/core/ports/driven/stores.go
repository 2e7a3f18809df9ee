package driven

import (
	"context"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
)

// ChunkStore persists ingested chunks, with their embeddings, in insertion
// order so the retrieval index can be rebuilt after a restart.
type ChunkStore interface {
	// Append stores chunks and their embeddings. len(chunks) must equal
	// len(embeddings).
	Append(ctx context.Context, chunks []domain.Chunk, embeddings [][]float32) error

	// List returns every stored chunk in insertion order.
	List(ctx context.Context) ([]StoredChunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// Delete removes the chunks with the given IDs. Unknown IDs are ignored.
	Delete(ctx context.Context, ids []string) error
}

// StoredChunk pairs a persisted chunk with its embedding.
type StoredChunk struct {
	Chunk     domain.Chunk
	Embedding []float32
}

// LogStore is the append-only interaction log.
type LogStore interface {
	// Append adds one entry. Concurrent appends never interleave.
	Append(ctx context.Context, entry domain.LogEntry) error

	// ListAll returns every entry in insertion order.
	ListAll(ctx context.Context) ([]domain.LogEntry, error)
}

// UploadStore keeps uploaded files on durable storage.
type UploadStore interface {
	// Save writes the upload and returns its stored path.
	// Returns domain.ErrFileTooLarge when the content exceeds maxBytes.
	Save(ctx context.Context, filename string, content []byte, maxBytes int64) (string, error)
}
