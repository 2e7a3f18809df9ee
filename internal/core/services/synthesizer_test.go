package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
)

func sampleResults() []domain.AgentResult {
	return []domain.AgentResult{
		{ProviderID: domain.AgentRetrieval, Summary: "A"},
		{ProviderID: domain.AgentWeb, Summary: "B"},
	}
}

func TestConcatSynthesizer(t *testing.T) {
	answer := NewConcatSynthesizer().Synthesize(context.Background(), domain.Question{Text: "q"}, sampleResults())
	assert.Equal(t, "From PDF documents: A. From web search: B", answer)
}

func TestConcatSynthesizer_NoInformation(t *testing.T) {
	s := NewConcatSynthesizer()
	assert.Equal(t, domain.NoInformationAnswer, s.Synthesize(context.Background(), domain.Question{}, nil))
	assert.Equal(t, domain.NoInformationAnswer, s.Synthesize(context.Background(), domain.Question{},
		[]domain.AgentResult{{ProviderID: domain.AgentWeb, Summary: "  "}}))
}

func TestModelSynthesizer_Prompt(t *testing.T) {
	llm := &mockLLMService{response: "  merged answer \n"}
	results := []domain.AgentResult{
		{ProviderID: domain.AgentRetrieval, Summary: "doc facts"},
		{ProviderID: domain.AgentPapers, Summary: "paper facts"},
	}

	answer := NewModelSynthesizer(llm, nil).Synthesize(context.Background(),
		domain.Question{Text: "what is rag?", Context: "for a talk"}, results)

	assert.Equal(t, "merged answer", answer)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "Question: what is rag?\n\nContext: for a talk")
	assert.Contains(t, llm.prompts[0], "PDF Document Information: doc facts\n\nArXiv Papers: paper facts")
	assert.Equal(t, 500, llm.opts[0].MaxTokens)
	assert.InDelta(t, 0.3, llm.opts[0].Temperature, 1e-9)
}

func TestModelSynthesizer_FallsBackToConcat(t *testing.T) {
	for name, llm := range map[string]*mockLLMService{
		"error":       {err: errBoom},
		"empty reply": {response: "   "},
	} {
		t.Run(name, func(t *testing.T) {
			answer := NewModelSynthesizer(llm, nil).Synthesize(context.Background(), domain.Question{Text: "q"}, sampleResults())
			assert.Equal(t, "From PDF documents: A. From web search: B", answer)
		})
	}
}

func TestModelSynthesizer_SkipsModelWithoutInformation(t *testing.T) {
	llm := &mockLLMService{response: "hallucination"}
	answer := NewModelSynthesizer(llm, nil).Synthesize(context.Background(), domain.Question{Text: "q"}, nil)

	assert.Equal(t, domain.NoInformationAnswer, answer)
	assert.Empty(t, llm.prompts)
}

func TestNewSynthesizer(t *testing.T) {
	assert.IsType(t, &ConcatSynthesizer{}, NewSynthesizer(nil, nil))
	assert.IsType(t, &ModelSynthesizer{}, NewSynthesizer(&mockLLMService{}, nil))
}
