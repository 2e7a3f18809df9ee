package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptDecideAgent asks the model to pick one agent for a question.
	// The template expects a single %s placeholder for the question.
	PromptDecideAgent = "decide_agent"

	// PromptSynthesizeAnswer asks the model to merge agent summaries.
	// The template expects %s (question) and %s (labelled summaries).
	PromptSynthesizeAnswer = "synthesize_answer"
)
