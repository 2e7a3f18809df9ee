package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-agents/internal/logger"
)

// Decider picks the agents a question is routed to.
type Decider interface {
	Decide(ctx context.Context, q domain.Question) domain.Decision
}

// Ensure deciders implement the interface.
var (
	_ Decider = (*RuleBasedDecider)(nil)
	_ Decider = (*ModelAssistedDecider)(nil)
)

// Rationales recorded by the rule-based decider.
const (
	RationaleDocuments = "Question relates to PDF/document content"
	RationalePapers    = "Question specifically asks for recent papers or arxiv content"
	RationaleNews      = "Question asks for latest news or recent developments"
	RationaleDefault   = "Default agent for general questions"
)

type routingRule struct {
	keywords  []string
	agent     domain.AgentID
	rationale string
}

var routingRules = []routingRule{
	{keywords: []string{"pdf", "document"}, agent: domain.AgentRetrieval, rationale: RationaleDocuments},
	{keywords: []string{"recent papers", "arxiv", "paper", "research"}, agent: domain.AgentPapers, rationale: RationalePapers},
	{keywords: []string{"latest news", "recent developments", "current events", "today"}, agent: domain.AgentWeb, rationale: RationaleNews},
}

// RuleBasedDecider routes by case-insensitive keyword rules. Every
// matching rule adds its agent; web search is the default.
type RuleBasedDecider struct{}

// NewRuleBasedDecider creates a keyword decider.
func NewRuleBasedDecider() *RuleBasedDecider {
	return &RuleBasedDecider{}
}

// Decide applies the keyword rules to the question text.
func (d *RuleBasedDecider) Decide(_ context.Context, q domain.Question) domain.Decision {
	text := strings.ToLower(q.Text)
	decision := domain.NewDecision()

	for _, rule := range routingRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				decision.Add(rule.agent, rule.rationale)
				break
			}
		}
	}

	if decision.IsEmpty() {
		decision.Add(domain.AgentWeb, RationaleDefault)
	}
	return decision
}

// Sampling parameters for routing.
const (
	decideTemperature = 0.1
	decideMaxTokens   = 200
)

// ModelAssistedDecider asks an LLM to pick exactly one agent and falls
// back to the rules on any failure.
type ModelAssistedDecider struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	rules   *RuleBasedDecider
}

// NewModelAssistedDecider creates an LLM decider. The prompts parameter is
// optional (can be nil).
func NewModelAssistedDecider(llm driven.LLMService, prompts driven.PromptStore) *ModelAssistedDecider {
	return &ModelAssistedDecider{llm: llm, prompts: prompts, rules: NewRuleBasedDecider()}
}

// NewDecider returns a ModelAssistedDecider when llm is set, otherwise a
// RuleBasedDecider.
func NewDecider(llm driven.LLMService, prompts driven.PromptStore) Decider {
	if llm == nil {
		return NewRuleBasedDecider()
	}
	return NewModelAssistedDecider(llm, prompts)
}

type agentChoice struct {
	Agent     string `json:"agent"`
	Rationale string `json:"rationale"`
}

// Decide returns the model's single choice, or the rule decision.
func (d *ModelAssistedDecider) Decide(ctx context.Context, q domain.Question) domain.Decision {
	decision, err := d.decide(ctx, q)
	if err != nil {
		logger.Debug("Model routing failed, using rules: %v", err)
		return d.rules.Decide(ctx, q)
	}
	return decision
}

func (d *ModelAssistedDecider) decide(ctx context.Context, q domain.Question) (domain.Decision, error) {
	if d.llm == nil {
		return domain.Decision{}, domain.ErrLLMUnavailable
	}

	prompt := fmt.Sprintf(loadPrompt(d.prompts, driven.PromptDecideAgent, DefaultDecidePrompt), q.Text)
	reply, err := d.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   decideMaxTokens,
		Temperature: decideTemperature,
		JSON:        true,
	})
	if err != nil {
		return domain.Decision{}, err
	}

	choice, err := parseAgentChoice(reply)
	if err != nil {
		return domain.Decision{}, err
	}

	agent := domain.AgentID(strings.ToLower(strings.TrimSpace(choice.Agent)))
	if !agent.IsValid() {
		return domain.Decision{}, fmt.Errorf("%w: unknown agent %q", domain.ErrMalformedReply, choice.Agent)
	}

	rationale := fmt.Sprintf("LLM determined %s agent is relevant", agent.DisplayName())
	if r := strings.TrimSpace(choice.Rationale); r != "" {
		rationale += ": " + r
	}

	decision := domain.NewDecision()
	decision.Add(agent, rationale)
	return decision, nil
}

// parseAgentChoice extracts the JSON object from a reply, tolerating code
// fences and surrounding prose.
func parseAgentChoice(reply string) (agentChoice, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return agentChoice{}, fmt.Errorf("%w: no JSON object in %q", domain.ErrMalformedReply, reply)
	}

	var choice agentChoice
	if err := json.Unmarshal([]byte(reply[start:end+1]), &choice); err != nil {
		return agentChoice{}, fmt.Errorf("%w: %w", domain.ErrMalformedReply, err)
	}
	return choice, nil
}
