package domain

import (
	"strings"
	"time"
)

// NoInformationAnswer is returned when no agent produced anything usable.
const NoInformationAnswer = "No relevant information found."

// Question is a user's free-text query.
type Question struct {
	Text string

	// Context is optional background supplied with the question. It is
	// used for retrieval and synthesis but never logged as the input.
	Context string
}

// IsBlank returns true if the question has no text.
func (q Question) IsBlank() bool {
	return strings.TrimSpace(q.Text) == ""
}

// SearchText returns the text agents should search with.
func (q Question) SearchText() string {
	if strings.TrimSpace(q.Context) == "" {
		return q.Text
	}
	return q.Text + "\n" + q.Context
}

// FinalAnswer is the synthesised response to a question.
type FinalAnswer struct {
	Answer    string
	Decision  Decision
	Results   []AgentResult
	Items     []ResultItem
	Timestamp time.Time
}

// ItemIDs returns the IDs of every retrieved item, in order.
func (a FinalAnswer) ItemIDs() []string {
	ids := make([]string, 0, len(a.Items))
	for _, item := range a.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

// LogEntry is the append-only audit record of one question.
type LogEntry struct {
	Input              string    `json:"input"`
	Decision           string    `json:"decision"`
	AgentsCalled       []string  `json:"agents_called"`
	DocumentsRetrieved []string  `json:"documents_retrieved"`
	FinalAnswer        string    `json:"final_answer"`
	Timestamp          time.Time `json:"timestamp"`
}

// NewLogEntry builds the log record for an answered question.
func NewLogEntry(q Question, answer FinalAnswer) LogEntry {
	agents := make([]string, 0, len(answer.Decision.Agents))
	for _, a := range answer.Decision.Agents {
		agents = append(agents, string(a))
	}
	return LogEntry{
		Input:              q.Text,
		Decision:           answer.Decision.String(),
		AgentsCalled:       agents,
		DocumentsRetrieved: answer.ItemIDs(),
		FinalAnswer:        answer.Answer,
		Timestamp:          answer.Timestamp,
	}
}
