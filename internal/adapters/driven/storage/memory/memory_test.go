package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
)

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("s", "value"))
	require.NoError(t, store.Set("i", 42))
	require.NoError(t, store.Set("i64", int64(7)))
	require.NoError(t, store.Set("istr", "12"))
	require.NoError(t, store.Set("b", true))
	require.NoError(t, store.Set("d", "30s"))
	require.NoError(t, store.Set("bad", "soon"))

	assert.Equal(t, "value", store.GetString("s"))
	assert.Equal(t, "", store.GetString("i"))
	assert.Equal(t, 42, store.GetInt("i"))
	assert.Equal(t, 7, store.GetInt("i64"))
	assert.Equal(t, 12, store.GetInt("istr"))
	assert.True(t, store.GetBool("b"))
	assert.False(t, store.GetBool("s"))
	assert.Equal(t, 30*time.Second, store.GetDuration("d"))
	assert.Zero(t, store.GetDuration("bad"))
	assert.Zero(t, store.GetDuration("missing"))
	assert.Equal(t, []string{"b", "bad", "d", "i", "i64", "istr", "s"}, store.Keys())
}

func TestConfigStore_SeededCopy(t *testing.T) {
	seed := map[string]any{"retrieval.top_k": int64(5)}
	store := NewConfigStoreFrom(seed)
	seed["retrieval.top_k"] = int64(9)

	assert.Equal(t, 5, store.GetInt("retrieval.top_k"))
	require.NoError(t, store.Set("web.provider", "serpapi"))
	_, leaked := seed["web.provider"]
	assert.False(t, leaked)
}

func TestConfigStore_SaveIsCounted(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Save())
	require.NoError(t, store.Save())
	assert.Equal(t, 2, store.Saves())
	assert.Equal(t, ":memory:", store.Path())
}

func TestLogStore_AppendAndListInOrder(t *testing.T) {
	ctx := context.Background()
	store := NewLogStore()

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Append(ctx, domain.LogEntry{
			Input:        fmt.Sprintf("q%d", i),
			AgentsCalled: []string{"web_search"},
		}))
	}

	entries, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "q0", entries[0].Input)
	assert.Equal(t, "q2", entries[2].Input)

	entries[0].AgentsCalled[0] = "mutated"
	again, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "web_search", again[0].AgentsCalled[0])
}

func TestLogStore_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	store := NewLogStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Append(ctx, domain.LogEntry{Input: fmt.Sprintf("q%d", i)})
		}(i)
	}
	wg.Wait()

	entries, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 50)
}

func TestChunkStore_AppendListCount(t *testing.T) {
	ctx := context.Background()
	store := NewChunkStore()

	chunks := []domain.Chunk{{ID: "a", Text: "one"}, {ID: "b", Text: "two"}}
	vectors := [][]float32{{1, 0}, {0, 1}}
	require.NoError(t, store.Append(ctx, chunks, vectors))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	stored, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "b", stored[1].Chunk.ID)
	assert.Equal(t, []float32{0, 1}, stored[1].Embedding)
}

func TestChunkStore_LengthMismatch(t *testing.T) {
	store := NewChunkStore()
	err := store.Append(context.Background(), []domain.Chunk{{ID: "a"}}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChunkStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewChunkStore()

	chunks := []domain.Chunk{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	require.NoError(t, store.Append(ctx, chunks, [][]float32{nil, nil, nil}))
	require.NoError(t, store.Delete(ctx, []string{"b", "zzz"}))

	stored, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "a", stored[0].Chunk.ID)
	assert.Equal(t, "c", stored[1].Chunk.ID)
}
