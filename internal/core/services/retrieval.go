package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-agents/internal/logger"
)

// Ensure RetrievalIndex implements the interface.
var _ driving.RetrievalService = (*RetrievalIndex)(nil)

// Splitter cuts document text into chunks.
type Splitter interface {
	Split(text, sourceTitle string) []domain.Chunk
}

// RetrievalIndex chunks, embeds and searches ingested documents.
// Chunk N in memory always corresponds to vector N in the index.
type RetrievalIndex struct {
	splitter   Splitter
	embedder   driven.EmbeddingService
	vectors    driven.VectorIndex
	chunkStore driven.ChunkStore

	ingestMu sync.Mutex

	mu     sync.RWMutex
	chunks []domain.Chunk
}

// NewRetrievalIndex creates a retrieval index. The embedder and vector
// index must agree on dimensions.
func NewRetrievalIndex(
	splitter Splitter,
	embedder driven.EmbeddingService,
	vectors driven.VectorIndex,
	chunkStore driven.ChunkStore,
) (*RetrievalIndex, error) {
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if vectors == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if embedder.Dimensions() != vectors.Dimensions() {
		return nil, fmt.Errorf("%w: embedder %s produces %d dimensions, vector index has %d",
			domain.ErrDimensionMismatch, embedder.ModelName(), embedder.Dimensions(), vectors.Dimensions())
	}

	return &RetrievalIndex{
		splitter:   splitter,
		embedder:   embedder,
		vectors:    vectors,
		chunkStore: chunkStore,
	}, nil
}

// Restore reloads persisted chunks. Stored embeddings of the right size
// are reused; others are re-embedded. A vector index that already holds
// exactly the stored chunks (pgvector) is left untouched. Any other vector
// count, including vectors with no stored chunks, is ErrIndexOutOfSync.
func (r *RetrievalIndex) Restore(ctx context.Context) (int, error) {
	r.ingestMu.Lock()
	defer r.ingestMu.Unlock()

	existing, err := r.vectors.Len(ctx)
	if err != nil {
		return 0, fmt.Errorf("vector index size: %w", err)
	}

	var stored []driven.StoredChunk
	if r.chunkStore != nil {
		stored, err = r.chunkStore.List(ctx)
		if err != nil {
			return 0, fmt.Errorf("list stored chunks: %w", err)
		}
	}

	switch {
	case existing == len(stored):
		if existing == 0 {
			return 0, nil
		}
		logger.Debug("Vector index already holds %d chunks", existing)
	case existing == 0:
		vecs, err := r.restoreVectors(ctx, stored)
		if err != nil {
			return 0, err
		}
		if _, err := r.vectors.Add(ctx, vecs); err != nil {
			return 0, fmt.Errorf("restore vectors: %w", err)
		}
	default:
		return 0, fmt.Errorf("%w: index has %d vectors, store has %d chunks",
			domain.ErrIndexOutOfSync, existing, len(stored))
	}

	chunks := make([]domain.Chunk, len(stored))
	for i, sc := range stored {
		chunks[i] = sc.Chunk
	}

	r.mu.Lock()
	r.chunks = chunks
	r.mu.Unlock()

	logger.Info("Restored %d chunks", len(chunks))
	return len(chunks), nil
}

func (r *RetrievalIndex) restoreVectors(ctx context.Context, stored []driven.StoredChunk) ([][]float32, error) {
	dims := r.vectors.Dimensions()
	vecs := make([][]float32, len(stored))

	var missing []int
	for i, sc := range stored {
		if len(sc.Embedding) == dims {
			vecs[i] = sc.Embedding
			continue
		}
		missing = append(missing, i)
	}
	if len(missing) == 0 {
		return vecs, nil
	}

	logger.Info("Re-embedding %d stored chunks", len(missing))
	texts := make([]string, len(missing))
	for j, i := range missing {
		texts[j] = stored[i].Chunk.Text
	}
	embedded, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("re-embed stored chunks: %w", err)
	}
	for j, i := range missing {
		vecs[i] = embedded[j]
	}
	return vecs, nil
}

// Ingest splits, embeds and appends a document read from source. Chunks
// are titled with the source's file name. Failures are reported in the
// result and leave the index unchanged.
func (r *RetrievalIndex) Ingest(ctx context.Context, text, source string) domain.IngestResult {
	chunks := r.splitter.Split(text, DocumentTitle(source))
	logger.Debug("Split %q into %d chunks", source, len(chunks))

	if len(chunks) == 0 {
		return processed(0, source)
	}
	for i := range chunks {
		chunks[i].Source = source
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	embeddings, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return ingestError(err)
	}
	if len(embeddings) != len(chunks) {
		return ingestError(fmt.Errorf("embedder returned %d vectors for %d chunks", len(embeddings), len(chunks)))
	}

	r.ingestMu.Lock()
	defer r.ingestMu.Unlock()

	existing, err := r.vectors.Len(ctx)
	if err != nil {
		return ingestError(fmt.Errorf("vector index size: %w", err))
	}
	if size := r.Size(); existing != size {
		return ingestError(fmt.Errorf("%w: index has %d vectors, %d chunks loaded",
			domain.ErrIndexOutOfSync, existing, size))
	}

	if r.chunkStore != nil {
		if err := r.chunkStore.Append(ctx, chunks, embeddings); err != nil {
			logger.Error("Persist chunks for %s: %v", source, err)
			return ingestError(fmt.Errorf("persist chunks: %w", err))
		}
	}

	// Searches wait here so no position is visible without its chunk.
	r.mu.Lock()
	start, err := r.vectors.Add(ctx, embeddings)
	if err == nil && start != len(r.chunks) {
		err = fmt.Errorf("%w: vectors appended at %d, expected %d", domain.ErrIndexOutOfSync, start, len(r.chunks))
	}
	if err == nil {
		r.chunks = append(r.chunks, chunks...)
	}
	r.mu.Unlock()

	if err != nil {
		r.forget(ctx, chunks)
		return ingestError(err)
	}

	logger.Info("Ingested %d chunks from %s", len(chunks), source)
	return processed(len(chunks), source)
}

// forget removes chunks persisted for a batch whose vectors were not added.
func (r *RetrievalIndex) forget(ctx context.Context, chunks []domain.Chunk) {
	if r.chunkStore == nil {
		return
	}
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}
	if err := r.chunkStore.Delete(context.WithoutCancel(ctx), ids); err != nil {
		logger.Error("Roll back %d persisted chunks: %v", len(ids), err)
	}
}

// Search embeds the query and returns up to k nearest chunks.
func (r *RetrievalIndex) Search(ctx context.Context, query string, k int) ([]domain.SearchHit, error) {
	if k <= 0 || r.Size() == 0 {
		return []domain.SearchHit{}, nil
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	hits, err := r.vectors.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	out := make([]domain.SearchHit, 0, len(hits))
	for _, h := range hits {
		if h.Position < 0 || h.Position >= len(r.chunks) {
			logger.Warn("Vector position %d has no chunk", h.Position)
			continue
		}
		out = append(out, domain.SearchHit{Chunk: r.chunks[h.Position], Distance: h.Distance})
	}
	return out, nil
}

// Size returns the number of chunks in the index.
func (r *RetrievalIndex) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chunks)
}

// DocumentTitle returns the file name of source with any upload ID prefix
// ("<uuid>_") removed.
func DocumentTitle(source string) string {
	if source == "" {
		return ""
	}
	name := filepath.Base(source)
	if id, rest, ok := strings.Cut(name, "_"); ok && rest != "" && len(id) == 36 {
		if _, err := uuid.Parse(id); err == nil {
			return rest
		}
	}
	return name
}

func processed(n int, source string) domain.IngestResult {
	return domain.IngestResult{
		Status:          domain.IngestStatusSuccess,
		Message:         fmt.Sprintf("Processed %d chunks from %s", n, source),
		ChunksProcessed: n,
	}
}

func ingestError(err error) domain.IngestResult {
	return domain.IngestResult{
		Status:  domain.IngestStatusError,
		Message: fmt.Sprintf("Error processing document: %v", err),
	}
}
