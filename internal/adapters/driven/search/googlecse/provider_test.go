package googlecse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := New(context.Background(), Config{
		APIKey:        "key",
		EngineID:      "engine",
		ClientOptions: []option.ClientOption{option.WithEndpoint(srv.URL + "/")},
	})
	require.NoError(t, err)
	return p
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{APIKey: "key"})
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestSearch_Maps(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "rust async", q.Get("q"))
		assert.Equal(t, "engine", q.Get("cx"))
		assert.Equal(t, "3", q.Get("num"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"title":"A","snippet":"first","link":"https://a.example"},
			{"title":"B","snippet":"second","link":"https://b.example"}
		]}`))
	})
	assert.Equal(t, "googlecse", p.Name())

	items, err := p.Search(context.Background(), "rust async", 3)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "https://a.example", items[0].ID)
	assert.Equal(t, "first", items[0].Content)
}

func TestSearch_NoItems(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	items, err := p.Search(context.Background(), "x", 5)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearch_RateLimited(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota"}}`))
	})

	_, err := p.Search(context.Background(), "x", 5)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}
