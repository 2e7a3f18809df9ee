package hugot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelPath(t *testing.T) {
	got := ModelPath("sentence-transformers/all-MiniLM-L6-v2", "models")
	assert.Equal(t, filepath.Join("models", "sentence-transformers_all-MiniLM-L6-v2"), got)
}

func TestPrepareModel_UsesExistingDirectory(t *testing.T) {
	dir := t.TempDir()
	existing := ModelPath("org/model", dir)
	require.NoError(t, os.MkdirAll(existing, 0o755))

	got, err := PrepareModel("org/model", dir)
	require.NoError(t, err)
	assert.Equal(t, existing, got)
}

func TestEmbeddingService_ClosedPing(t *testing.T) {
	svc := &EmbeddingService{model: DefaultModel, dimensions: 384}

	assert.Error(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
	assert.Equal(t, 384, svc.Dimensions())
	assert.Equal(t, DefaultModel, svc.ModelName())

	_, err := svc.Embed(context.Background(), "text")
	assert.Error(t, err)
}

// TestEmbeddingService_RealModel needs the model on disk (or network
// access to download it) and is skipped unless HUGOT_TEST_MODEL_DIR is set.
func TestEmbeddingService_RealModel(t *testing.T) {
	dir := os.Getenv("HUGOT_TEST_MODEL_DIR")
	if dir == "" {
		t.Skip("HUGOT_TEST_MODEL_DIR not set, skipping hugot model test")
	}

	svc, err := NewEmbeddingService(Config{ModelDir: dir})
	require.NoError(t, err)
	defer svc.Close()

	vecs, err := svc.EmbedBatch(context.Background(), []string{"vector search", "baking bread"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Len(t, vecs[0], 384)
}
