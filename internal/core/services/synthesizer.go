package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-agents/internal/logger"
)

// Synthesizer merges agent results into one answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, q domain.Question, results []domain.AgentResult) string
}

// Ensure synthesizers implement the interface.
var (
	_ Synthesizer = (*ConcatSynthesizer)(nil)
	_ Synthesizer = (*ModelSynthesizer)(nil)
)

// ConcatSynthesizer joins labelled summaries in dispatch order.
type ConcatSynthesizer struct{}

// NewConcatSynthesizer creates a concatenating synthesizer.
func NewConcatSynthesizer() *ConcatSynthesizer {
	return &ConcatSynthesizer{}
}

// Synthesize returns "From <source>: <summary>" parts joined by ". ".
func (s *ConcatSynthesizer) Synthesize(_ context.Context, _ domain.Question, results []domain.AgentResult) string {
	if allSummariesEmpty(results) {
		return domain.NoInformationAnswer
	}
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.ProviderID.AnswerLabel()+r.Summary)
	}
	return strings.Join(parts, ". ")
}

// Sampling parameters for synthesis.
const (
	synthesizeTemperature = 0.3
	synthesizeMaxTokens   = 500
)

// ModelSynthesizer asks an LLM to write the answer and falls back to
// concatenation on failure or an empty reply.
type ModelSynthesizer struct {
	llm      driven.LLMService
	prompts  driven.PromptStore
	fallback *ConcatSynthesizer
}

// NewModelSynthesizer creates an LLM synthesizer. The prompts parameter is
// optional (can be nil).
func NewModelSynthesizer(llm driven.LLMService, prompts driven.PromptStore) *ModelSynthesizer {
	return &ModelSynthesizer{llm: llm, prompts: prompts, fallback: NewConcatSynthesizer()}
}

// NewSynthesizer returns a ModelSynthesizer when llm is set, otherwise a
// ConcatSynthesizer.
func NewSynthesizer(llm driven.LLMService, prompts driven.PromptStore) Synthesizer {
	if llm == nil {
		return NewConcatSynthesizer()
	}
	return NewModelSynthesizer(llm, prompts)
}

// Synthesize prompts the model with the question and labelled summaries.
func (s *ModelSynthesizer) Synthesize(ctx context.Context, q domain.Question, results []domain.AgentResult) string {
	if allSummariesEmpty(results) {
		return domain.NoInformationAnswer
	}
	if s.llm == nil {
		return s.fallback.Synthesize(ctx, q, results)
	}

	sections := make([]string, 0, len(results))
	for _, r := range results {
		sections = append(sections, r.ProviderID.ContextLabel()+" "+r.Summary)
	}

	question := q.Text
	if strings.TrimSpace(q.Context) != "" {
		question += "\n\nContext: " + q.Context
	}

	prompt := fmt.Sprintf(loadPrompt(s.prompts, driven.PromptSynthesizeAnswer, DefaultSynthesizePrompt),
		question, strings.Join(sections, "\n\n"))

	answer, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   synthesizeMaxTokens,
		Temperature: synthesizeTemperature,
	})
	if err != nil {
		logger.Debug("Model synthesis failed, concatenating: %v", err)
		return s.fallback.Synthesize(ctx, q, results)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		logger.Debug("Model synthesis returned an empty reply, concatenating")
		return s.fallback.Synthesize(ctx, q, results)
	}
	return answer
}

func allSummariesEmpty(results []domain.AgentResult) bool {
	for _, r := range results {
		if strings.TrimSpace(r.Summary) != "" {
			return false
		}
	}
	return true
}
