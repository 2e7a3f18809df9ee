// Package flat provides an exact, in-process vector index.
//
// Vectors are stored contiguously and searched by brute force, so every
// query compares against every stored vector. Results are exact L2
// distances; there is no approximation and no training step.
package flat

import (
	"container/heap"
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an append-only flat L2 index.
type Index struct {
	mu   sync.RWMutex
	dims int
	data []float32 // len(data) == count*dims
}

// New creates an empty index for vectors of the given size.
func New(dims int) (*Index, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %d", domain.ErrInvalidInput, dims)
	}
	return &Index{dims: dims}, nil
}

// Add appends vectors atomically and returns the position of the first.
func (x *Index) Add(_ context.Context, vectors [][]float32) (int, error) {
	for i, v := range vectors {
		if len(v) != x.dims {
			return 0, fmt.Errorf("%w: vector %d has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, i, len(v), x.dims)
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	start := len(x.data) / x.dims
	for _, v := range vectors {
		x.data = append(x.data, v...)
	}
	return start, nil
}

// Search returns up to k nearest vectors, closest first.
// Ties are broken by insertion order.
func (x *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != x.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), x.dims)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	n := len(x.data) / x.dims
	if k > n {
		k = n
	}
	if k <= 0 {
		return []driven.VectorHit{}, nil
	}

	h := make(maxHeap, 0, k)
	for pos := 0; pos < n; pos++ {
		d := squaredL2(query, x.data[pos*x.dims:(pos+1)*x.dims])
		if len(h) < k {
			heap.Push(&h, candidate{pos: pos, dist: d})
			continue
		}
		if d < h[0].dist {
			h[0] = candidate{pos: pos, dist: d}
			heap.Fix(&h, 0)
		}
	}

	hits := make([]driven.VectorHit, len(h))
	for i := len(h) - 1; i >= 0; i-- {
		c := heap.Pop(&h).(candidate)
		hits[i] = driven.VectorHit{Position: c.pos, Distance: math.Sqrt(c.dist)}
	}
	return hits, nil
}

// Len returns the number of stored vectors.
func (x *Index) Len(_ context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.data) / x.dims, nil
}

// Dimensions returns the vector size.
func (x *Index) Dimensions() int {
	return x.dims
}

// Close releases the stored vectors.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.data = nil
	return nil
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

type candidate struct {
	pos  int
	dist float64
}

// maxHeap keeps the k best candidates with the worst on top.
// Among equal distances the later insertion is considered worse.
type maxHeap []candidate

func (h maxHeap) Len() int { return len(h) }
func (h maxHeap) Less(i, j int) bool {
	if h[i].dist == h[j].dist {
		return h[i].pos > h[j].pos
	}
	return h[i].dist > h[j].dist
}
func (h maxHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *maxHeap) Push(v any) { *h = append(*h, v.(candidate)) }

func (h *maxHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
