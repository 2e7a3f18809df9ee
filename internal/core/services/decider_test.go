package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
)

func TestRuleBasedDecider(t *testing.T) {
	tests := []struct {
		question string
		expected []domain.AgentID
	}{
		{"What does this PDF say about encryption?", []domain.AgentID{domain.AgentRetrieval}},
		{"Find recent papers on diffusion models", []domain.AgentID{domain.AgentPapers}},
		{"What's in the news today?", []domain.AgentID{domain.AgentWeb}},
		{"Tell me a joke", []domain.AgentID{domain.AgentWeb}},
		{"Compare my DOCUMENT with ArXiv research from today", []domain.AgentID{domain.AgentRetrieval, domain.AgentPapers, domain.AgentWeb}},
	}

	decider := NewRuleBasedDecider()
	for _, tc := range tests {
		t.Run(tc.question, func(t *testing.T) {
			decision := decider.Decide(context.Background(), domain.Question{Text: tc.question})
			assert.Equal(t, tc.expected, decision.Agents)
		})
	}
}

func TestRuleBasedDecider_Rationales(t *testing.T) {
	decision := NewRuleBasedDecider().Decide(context.Background(), domain.Question{Text: "Tell me a joke"})
	assert.Equal(t, "{web_search: Default agent for general questions}", decision.String())

	decision = NewRuleBasedDecider().Decide(context.Background(), domain.Question{Text: "summarise the pdf"})
	assert.Equal(t, RationaleDocuments, decision.Rationale[domain.AgentRetrieval])
}

func TestModelAssistedDecider_UsesModelChoice(t *testing.T) {
	llm := &mockLLMService{response: "```json\n{\"agent\": \"arxiv\", \"rationale\": \"asks about research\"}\n```"}
	decider := NewModelAssistedDecider(llm, nil)

	decision := decider.Decide(context.Background(), domain.Question{Text: "what does the pdf say"})

	assert.Equal(t, []domain.AgentID{domain.AgentPapers}, decision.Agents)
	assert.Equal(t, "LLM determined ArXiv agent is relevant: asks about research", decision.Rationale[domain.AgentPapers])

	require.Len(t, llm.opts, 1)
	assert.True(t, llm.opts[0].JSON)
	assert.InDelta(t, 0.1, llm.opts[0].Temperature, 1e-9)
	assert.Contains(t, llm.prompts[0], "what does the pdf say")
}

func TestModelAssistedDecider_FallsBackToRules(t *testing.T) {
	tests := []struct {
		name string
		llm  *mockLLMService
	}{
		{name: "transport error", llm: &mockLLMService{err: domain.ErrLLMUnavailable}},
		{name: "malformed json", llm: &mockLLMService{response: "{agent: arxiv"}},
		{name: "no json", llm: &mockLLMService{response: "web search please"}},
		{name: "unknown agent", llm: &mockLLMService{response: `{"agent": "wikipedia"}`}},
		{name: "empty reply", llm: &mockLLMService{response: ""}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision := NewModelAssistedDecider(tc.llm, nil).Decide(context.Background(),
				domain.Question{Text: "What does this PDF say?"})
			assert.Equal(t, []domain.AgentID{domain.AgentRetrieval}, decision.Agents)
			assert.Equal(t, RationaleDocuments, decision.Rationale[domain.AgentRetrieval])
		})
	}
}

func TestModelAssistedDecider_NoModelRationale(t *testing.T) {
	llm := &mockLLMService{response: `{"agent": "WEB_SEARCH"}`}
	decision := NewModelAssistedDecider(llm, nil).Decide(context.Background(), domain.Question{Text: "hi"})
	assert.Equal(t, "LLM determined Web Search agent is relevant", decision.Rationale[domain.AgentWeb])
}

func TestModelAssistedDecider_UsesStoredPrompt(t *testing.T) {
	llm := &mockLLMService{response: `{"agent": "pdf_rag"}`}
	prompts := &mockPromptStore{prompts: map[string]string{driven.PromptDecideAgent: "ROUTE: %s"}}

	NewModelAssistedDecider(llm, prompts).Decide(context.Background(), domain.Question{Text: "q"})
	assert.Equal(t, []string{"ROUTE: q"}, llm.prompts)
}

func TestNewDecider(t *testing.T) {
	assert.IsType(t, &RuleBasedDecider{}, NewDecider(nil, nil))
	assert.IsType(t, &ModelAssistedDecider{}, NewDecider(&mockLLMService{}, nil))
}
