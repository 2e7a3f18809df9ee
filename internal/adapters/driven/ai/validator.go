package ai

import (
	"context"
	"errors"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
)

// ConfigValidator builds each configured provider once to prove it works.
// The settings wizard runs it after every step.
type ConfigValidator struct{}

// NewConfigValidator creates a new config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding builds the embedder and pings it. A nil config means
// the built-in default and is accepted.
func (v *ConfigValidator) ValidateEmbedding(ctx context.Context, config *domain.EmbeddingSettings) error {
	svc, err := CreateAndValidateEmbeddingService(ctx, config)
	if svc != nil {
		return errors.Join(err, svc.Close())
	}
	return err
}

// ValidateLLM builds the LLM client and pings it. AIProviderNone is valid:
// the router falls back to keyword rules.
func (v *ConfigValidator) ValidateLLM(ctx context.Context, config *domain.LLMSettings) error {
	svc, err := CreateAndValidateLLMService(ctx, config)
	if svc != nil {
		return errors.Join(err, svc.Close())
	}
	return err
}

// ValidateWebSearch checks that the web search backend can be built from
// config. No query is sent, so no quota is spent.
func (v *ConfigValidator) ValidateWebSearch(ctx context.Context, config *domain.SearchProviderSettings) error {
	if config == nil {
		return domain.ErrInvalidInput
	}
	_, err := CreateWebSearchProvider(ctx, config)
	return err
}
