package services

import (
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
)

// DefaultDecidePrompt is used when no PromptStore is configured.
const DefaultDecidePrompt = `Analyze the following question and decide which single agent should answer it.
Available agents:
1. pdf_rag: questions about specific documents or uploaded PDF content
2. web_search: general questions, current events, or information that needs up-to-date data
3. arxiv: academic questions, research papers, or scientific topics

Question: "%s"

Respond with a JSON object in this format:
{"agent": "pdf_rag|web_search|arxiv", "rationale": "one sentence explaining the choice"}`

// DefaultSynthesizePrompt is used when no PromptStore is configured.
const DefaultSynthesizePrompt = `Based on the following information, provide a comprehensive answer to the question.

Question: %s

Information:
%s

Please synthesize a clear, concise, and helpful response based on the provided information.`

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func loadPrompt(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	prompt, err := store.Load(name)
	if err != nil || prompt == "" {
		return fallback
	}
	return prompt
}
