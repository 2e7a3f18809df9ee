package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
)

func TestNewConfigValidator(t *testing.T) {
	require.NotNil(t, NewConfigValidator())
}

func TestConfigValidator_ValidateEmbedding(t *testing.T) {
	v := NewConfigValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateEmbedding(ctx, nil))
	assert.NoError(t, v.ValidateEmbedding(ctx, &domain.EmbeddingSettings{
		Provider: domain.AIProviderHashing, Dimensions: 16,
	}))

	err := v.ValidateEmbedding(ctx, &domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama, BaseURL: "http://127.0.0.1:1", Dimensions: 16,
	})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestConfigValidator_ValidateLLM(t *testing.T) {
	v := NewConfigValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateLLM(ctx, &domain.LLMSettings{Provider: domain.AIProviderNone}))

	err := v.ValidateLLM(ctx, &domain.LLMSettings{
		Provider: domain.AIProviderOllama, BaseURL: "http://127.0.0.1:1",
	})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestConfigValidator_ValidateWebSearch(t *testing.T) {
	v := NewConfigValidator()
	ctx := context.Background()

	assert.ErrorIs(t, v.ValidateWebSearch(ctx, nil), domain.ErrInvalidInput)

	err := v.ValidateWebSearch(ctx, &domain.SearchProviderSettings{WebProvider: domain.WebProviderSerpAPI})
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)

	err = v.ValidateWebSearch(ctx, &domain.SearchProviderSettings{
		WebProvider: domain.WebProviderGoogleCSE, WebAPIKey: "key",
	})
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)

	assert.NoError(t, v.ValidateWebSearch(ctx, &domain.SearchProviderSettings{
		WebProvider: domain.WebProviderSerpAPI, WebAPIKey: "key",
	}))
	assert.NoError(t, v.ValidateWebSearch(ctx, &domain.SearchProviderSettings{
		WebProvider: domain.WebProviderGoogleCSE, WebAPIKey: "key", WebCSEID: "cx",
	}))

	err = v.ValidateWebSearch(ctx, &domain.SearchProviderSettings{WebProvider: "bing"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
