package domain

import (
	"strings"
)

// AgentID identifies one of the agents a question can be routed to.
type AgentID string

// Available agents.
const (
	// AgentRetrieval searches the local retrieval index of ingested documents.
	AgentRetrieval AgentID = "pdf_rag"

	// AgentPapers searches academic papers on arXiv.
	AgentPapers AgentID = "arxiv"

	// AgentWeb searches the public web.
	AgentWeb AgentID = "web_search"
)

// AllAgents returns every agent in canonical order.
func AllAgents() []AgentID {
	return []AgentID{AgentRetrieval, AgentPapers, AgentWeb}
}

// IsValid returns true if the agent is recognised.
func (a AgentID) IsValid() bool {
	switch a {
	case AgentRetrieval, AgentPapers, AgentWeb:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (a AgentID) String() string {
	return string(a)
}

// DisplayName returns a short human-readable name.
func (a AgentID) DisplayName() string {
	switch a {
	case AgentRetrieval:
		return "PDF RAG"
	case AgentPapers:
		return "ArXiv"
	case AgentWeb:
		return "Web Search"
	default:
		return string(a)
	}
}

// SearchName names the agent's search in error summaries,
// e.g. "Error during web search: timeout".
func (a AgentID) SearchName() string {
	switch a {
	case AgentRetrieval:
		return "document"
	case AgentPapers:
		return "ArXiv"
	case AgentWeb:
		return "web"
	default:
		return string(a)
	}
}

// AnswerLabel is the prefix used when an agent's summary is quoted
// verbatim in a concatenated answer.
func (a AgentID) AnswerLabel() string {
	switch a {
	case AgentRetrieval:
		return "From PDF documents: "
	case AgentPapers:
		return "From ArXiv papers: "
	case AgentWeb:
		return "From web search: "
	default:
		return "From " + string(a) + ": "
	}
}

// ContextLabel is the heading used when an agent's summary is handed
// to a language model as context.
func (a AgentID) ContextLabel() string {
	switch a {
	case AgentRetrieval:
		return "PDF Document Information:"
	case AgentPapers:
		return "ArXiv Papers:"
	case AgentWeb:
		return "Web Search Results:"
	default:
		return string(a) + ":"
	}
}

// Decision records which agents a question is routed to, in selection
// order, and the rationale for each. It is built once per question.
type Decision struct {
	Agents    []AgentID
	Rationale map[AgentID]string
}

// NewDecision creates an empty decision.
func NewDecision() Decision {
	return Decision{Rationale: make(map[AgentID]string)}
}

// Add selects an agent. Selecting the same agent twice keeps the first
// position and rationale.
func (d *Decision) Add(agent AgentID, rationale string) {
	if d.Rationale == nil {
		d.Rationale = make(map[AgentID]string)
	}
	if _, ok := d.Rationale[agent]; ok {
		return
	}
	d.Agents = append(d.Agents, agent)
	d.Rationale[agent] = rationale
}

// Has returns true if the agent was selected.
func (d Decision) Has(agent AgentID) bool {
	_, ok := d.Rationale[agent]
	return ok
}

// IsEmpty returns true if no agent was selected.
func (d Decision) IsEmpty() bool {
	return len(d.Agents) == 0
}

// String renders the rationale mapping in selection order,
// e.g. "{pdf_rag: Question relates to PDF/document content}".
func (d Decision) String() string {
	parts := make([]string, 0, len(d.Agents))
	for _, a := range d.Agents {
		parts = append(parts, string(a)+": "+d.Rationale[a])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ResultItem is one ranked snippet returned by an agent.
type ResultItem struct {
	// ID is stable for the item: a chunk ID, a paper ID or a URL.
	ID string `json:"id"`

	Title   string `json:"title"`
	Content string `json:"content"`

	// SourceRef points back to the origin (URL or source title).
	SourceRef string `json:"source_ref,omitempty"`

	// Distance is set for retrieval index hits only.
	Distance float64 `json:"distance,omitempty"`
}

// Item converts a search hit into a result item.
func (h SearchHit) Item() ResultItem {
	ref := h.Chunk.Source
	if ref == "" {
		ref = h.Chunk.SourceTitle
	}
	return ResultItem{
		ID:        h.Chunk.ID,
		Title:     h.Chunk.SourceTitle,
		Content:   h.Chunk.Text,
		SourceRef: ref,
		Distance:  h.Distance,
	}
}

// AgentResult is the normalised output of one agent for one question.
type AgentResult struct {
	ProviderID AgentID
	Summary    string
	Items      []ResultItem

	// Err is set when the agent failed. Summary then carries the
	// error-flavoured text shown to the user.
	Err error
}

// Failed returns true if the agent reported an error.
func (r AgentResult) Failed() bool {
	return r.Err != nil
}
