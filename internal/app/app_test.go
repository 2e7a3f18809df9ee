package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
)

func offlineSettings(t *testing.T) domain.AppSettings {
	t.Helper()
	settings := domain.DefaultAppSettings()
	settings.Embedding = domain.EmbeddingSettings{
		Provider:   domain.AIProviderHashing,
		Model:      "hashing",
		Dimensions: domain.DefaultDimensions,
	}
	settings.Server.UploadDir = filepath.Join(t.TempDir(), "uploads")
	settings.Server.LogBackend = domain.LogBackendMemory
	settings.Search.WebAPIKey = ""
	return settings
}

func TestBuild_Offline(t *testing.T) {
	app, err := Build(context.Background(), Options{Settings: offlineSettings(t)})
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.Ask)
	assert.NotNil(t, app.Logs)
	assert.Equal(t, 0, app.Retrieval.Size())
	assert.True(t, app.Providers["pdf_rag"])
	assert.True(t, app.Providers["arxiv"])
	assert.False(t, app.Providers["web_search"])
	assert.False(t, app.Providers["llm"])
	assert.NotEmpty(t, app.Warnings)
}

func TestBuild_AnswersFromIngestedDocument(t *testing.T) {
	ctx := context.Background()
	app, err := Build(ctx, Options{Settings: offlineSettings(t)})
	require.NoError(t, err)
	defer app.Close()

	path := filepath.Join(t.TempDir(), "crypto.txt")
	text := "AES encryption uses symmetric keys. " + strings.Repeat("Block ciphers encrypt fixed size blocks. ", 20)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	result := app.Ingest.IngestFile(ctx, path)
	require.True(t, result.OK(), result.Message)
	assert.Equal(t, 1, result.ChunksProcessed)

	answer, err := app.Ask.Ask(ctx, domain.Question{Text: "What does the document say about AES encryption?"})
	require.NoError(t, err)
	assert.Equal(t, []domain.AgentID{domain.AgentRetrieval}, answer.Decision.Agents)
	assert.True(t, strings.HasPrefix(answer.Answer, "From PDF documents: AES encryption"))
	require.Len(t, answer.Items, 1)

	entries, err := app.Logs.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, answer.ItemIDs(), entries[0].DocumentsRetrieved)
}

func TestBuild_DefaultQuestionWithoutWebProvider(t *testing.T) {
	ctx := context.Background()
	app, err := Build(ctx, Options{Settings: offlineSettings(t)})
	require.NoError(t, err)
	defer app.Close()

	answer, err := app.Ask.Ask(ctx, domain.Question{Text: "Tell me a joke"})
	require.NoError(t, err)
	assert.Equal(t, []domain.AgentID{domain.AgentWeb}, answer.Decision.Agents)
	require.Len(t, answer.Results, 1)
	assert.True(t, answer.Results[0].Failed())
	assert.Contains(t, answer.Answer, "Error during web search")
}

func TestBuild_SQLitePersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	settings := offlineSettings(t)
	settings.Server.LogBackend = domain.LogBackendSQLite
	dataDir := t.TempDir()

	first, err := Build(ctx, Options{Settings: settings, DataDir: dataDir})
	require.NoError(t, err)
	result := first.Retrieval.Ingest(ctx, "retrieval survives a restart", "notes")
	require.True(t, result.OK())
	_, err = first.Ask.Ask(ctx, domain.Question{Text: "Tell me about the document"})
	require.NoError(t, err)
	first.Close()

	second, err := Build(ctx, Options{Settings: settings, DataDir: dataDir})
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, 1, second.Retrieval.Size())
	entries, err := second.Logs.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestBuild_JSONFileLogs(t *testing.T) {
	ctx := context.Background()
	settings := offlineSettings(t)
	settings.Server.LogBackend = domain.LogBackendJSONFile
	settings.Server.LogFile = filepath.Join(t.TempDir(), "logs", "system_logs.json")

	app, err := Build(ctx, Options{Settings: settings, DataDir: t.TempDir()})
	require.NoError(t, err)
	defer app.Close()

	_, err = app.Ask.Ask(ctx, domain.Question{Text: "Tell me a joke"})
	require.NoError(t, err)

	data, err := os.ReadFile(settings.Server.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Tell me a joke")
}

func TestBuild_Errors(t *testing.T) {
	t.Run("unknown log backend", func(t *testing.T) {
		settings := offlineSettings(t)
		settings.Server.LogBackend = "carrier-pigeon"

		_, err := Build(context.Background(), Options{Settings: settings, DataDir: t.TempDir()})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("embedding not configured", func(t *testing.T) {
		settings := offlineSettings(t)
		settings.Embedding.Provider = domain.AIProviderOpenAI
		settings.Embedding.APIKey = ""

		_, err := Build(context.Background(), Options{Settings: settings})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}

func TestBuild_EmbedderDimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/embed" {
			_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{{0.1, 0.2, 0.3}}})
			return
		}
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	settings := offlineSettings(t)
	settings.Embedding = domain.EmbeddingSettings{
		Provider:   domain.AIProviderOllama,
		BaseURL:    srv.URL,
		Model:      "all-minilm",
		Dimensions: domain.DefaultDimensions,
	}

	app, err := Build(context.Background(), Options{Settings: settings})
	require.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Nil(t, app)
}
