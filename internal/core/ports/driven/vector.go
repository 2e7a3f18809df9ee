package driven

import "context"

// VectorIndex stores embeddings in an append-only sequence and answers
// nearest-neighbour queries. A vector's position in the sequence is its
// key: the retrieval index maps position N back to chunk N.
type VectorIndex interface {
	// Add appends vectors in order and returns the position of the first.
	// The batch is appended atomically.
	Add(ctx context.Context, vectors [][]float32) (int, error)

	// Search returns up to k nearest vectors by L2 distance, closest first.
	// An empty index returns no hits and no error.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of stored vectors.
	Len(ctx context.Context) (int, error)

	// Dimensions returns the vector size the index was created with.
	Dimensions() int

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Position is the index of the vector in insertion order.
	Position int

	// Distance is the Euclidean distance to the query.
	Distance float64
}
