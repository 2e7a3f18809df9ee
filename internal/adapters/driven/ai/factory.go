// Package ai provides factory functions for creating AI service adapters
// and the vector index they feed.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	hashingembed "github.com/custodia-labs/sercha-agents/internal/adapters/driven/embedding/hashing"
	hugotembed "github.com/custodia-labs/sercha-agents/internal/adapters/driven/embedding/hugot"
	ollamaembed "github.com/custodia-labs/sercha-agents/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/sercha-agents/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/sercha-agents/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/sercha-agents/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/sercha-agents/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/sercha-agents/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driven/search/googlecse"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driven/search/serpapi"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driven/vectorindex/pgvector"
	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-agents/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// dimensionCheckText is embedded once at startup to measure the model's
// real output size.
const dimensionCheckText = "dimension check"

// InitResult contains the AI services built from settings.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	VectorIndex      driven.VectorIndex
	Warnings         []string // Non-fatal issues that caused fallback.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		_ = r.EmbeddingService.Close()
	}
	if r.VectorIndex != nil {
		_ = r.VectorIndex.Close()
	}
	if r.LLMService != nil {
		_ = r.LLMService.Close()
	}
}

// Initialise builds the embedder, vector index and optional LLM.
// The embedder and index are required; an LLM that cannot be reached is
// dropped with a warning so routing and synthesis fall back to rules.
func Initialise(ctx context.Context, settings domain.AppSettings) (*InitResult, error) {
	result := &InitResult{}

	embedder, err := CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		return nil, err
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: provider %q is not configured",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	result.EmbeddingService = embedder

	index, err := CreateVectorIndex(ctx, settings.Retrieval, embedder.Dimensions())
	if err != nil {
		result.Close()
		return nil, err
	}
	result.VectorIndex = index

	llm, err := CreateAndValidateLLMService(ctx, &settings.LLM)
	if err != nil {
		logger.Warn("LLM disabled: %v", err)
		result.Warnings = append(result.Warnings, err.Error())
	}
	result.LLMService = llm

	return result, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'sercha-agents settings' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'sercha-agents settings' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	vec, err := svc.Embed(pingCtx, dimensionCheckText)
	if err != nil {
		_ = svc.Close()
		if errors.Is(err, domain.ErrDimensionMismatch) {
			return nil, fmt.Errorf("%w. Run 'sercha-agents settings' to fix", err)
		}
		return nil, fmt.Errorf("%w: test embedding failed (%w). Run 'sercha-agents settings' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	if len(vec) != svc.Dimensions() {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: %s returned %d dimensions, configured for %d. Run 'sercha-agents settings' to fix",
			domain.ErrDimensionMismatch, svc.ModelName(), len(vec), svc.Dimensions())
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns nil and no error when no LLM is configured.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := svc.Ping(pingCtx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// CreateEmbeddingService creates the embedding service named by settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	dims := settings.Dimensions
	if dims == 0 {
		dims = domain.EmbeddingDimensions()[settings.Model]
	}

	switch settings.Provider {
	case domain.AIProviderHugot:
		return hugotembed.NewEmbeddingService(hugotembed.Config{
			Model:      settings.Model,
			ModelDir:   settings.ModelDir,
			Dimensions: dims,
		})

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dims,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dims,
		})

	case domain.AIProviderHashing:
		return hashingembed.NewEmbeddingService(dims), nil

	default:
		return nil, fmt.Errorf("%s does not support embeddings, use hugot, ollama, openai or hashing", settings.Provider)
	}
}

// CreateLLMService creates the LLM service named by settings.
// Returns nil if the provider is not configured.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderGroq:
		if settings.BaseURL != "" {
			return openaillm.NewLLMService(openaillm.LLMConfig{
				APIKey: settings.APIKey, BaseURL: settings.BaseURL, Model: settings.Model, Name: "groq",
			})
		}
		return openaillm.NewGroqService(settings.APIKey, settings.Model)

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGemini:
		return geminillm.NewLLMService(ctx, geminillm.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateVectorIndex creates the vector index for the configured backend.
func CreateVectorIndex(ctx context.Context, settings domain.RetrievalSettings, dims int) (driven.VectorIndex, error) {
	switch settings.Backend {
	case domain.VectorBackendMemory, "":
		return flat.New(dims)

	case domain.VectorBackendPgvector:
		if settings.PgvectorDSN == "" {
			return nil, fmt.Errorf("%w: pgvector backend needs a DSN", domain.ErrVectorIndexUnavailable)
		}
		return pgvector.Open(ctx, pgvector.Config{DSN: settings.PgvectorDSN, Dimensions: dims})

	default:
		return nil, fmt.Errorf("%w: unknown vector backend %q", domain.ErrVectorIndexUnavailable, settings.Backend)
	}
}

// CreateWebSearchProvider builds the configured web search backend. An
// empty provider selects SerpAPI.
func CreateWebSearchProvider(ctx context.Context, cfg *domain.SearchProviderSettings) (driven.SearchProvider, error) {
	switch cfg.WebProvider {
	case domain.WebProviderGoogleCSE:
		return googlecse.New(ctx, googlecse.Config{APIKey: cfg.WebAPIKey, EngineID: cfg.WebCSEID})
	case domain.WebProviderSerpAPI, "":
		return serpapi.New(serpapi.Config{APIKey: cfg.WebAPIKey})
	default:
		return nil, fmt.Errorf("%w: unknown web provider %q", domain.ErrInvalidInput, cfg.WebProvider)
	}
}
