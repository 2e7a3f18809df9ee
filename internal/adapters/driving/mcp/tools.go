package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
)

// Default tool limits.
const (
	defaultSearchLimit = domain.DefaultTopK
	maxSearchLimit     = 50
	defaultLogLimit    = 20
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer"`
	Context  string `json:"context,omitempty" jsonschema:"optional background used for retrieval and synthesis"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string            `json:"answer"`
	Agents    []AgentOutput     `json:"agents"`
	Documents []ItemOutput      `json:"documents"`
	Errors    map[string]string `json:"errors,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// AgentOutput names a selected agent and why.
type AgentOutput struct {
	Name      string `json:"name"`
	Rationale string `json:"rationale"`
}

// ItemOutput is one retrieved item.
type ItemOutput struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Source   string  `json:"source,omitempty"`
	Distance float64 `json:"distance,omitempty"`
}

// SearchInput is the input schema for the search_documents tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the text to search ingested documents for"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of chunks to return (default 3)"`
}

// SearchOutput is the output schema for the search_documents tool.
type SearchOutput struct {
	Results []ItemOutput `json:"results"`
	Count   int          `json:"count"`
}

// IngestInput is the input schema for the ingest_file tool.
type IngestInput struct {
	Path string `json:"path" jsonschema:"absolute path of a local PDF, markdown or text file"`
}

// IngestOutput is the output schema for the ingest_file tool.
type IngestOutput struct {
	Status          string `json:"status"`
	Message         string `json:"message"`
	ChunksProcessed int    `json:"chunks_processed"`
}

// LogsInput is the input schema for the list_logs tool.
type LogsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"number of most recent entries to return (default 20)"`
}

// LogsOutput is the output schema for the list_logs tool.
type LogsOutput struct {
	Logs  []domain.LogEntry `json:"logs"`
	Count int               `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question by routing it to document retrieval, arXiv and web search agents",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Search ingested documents by semantic similarity",
	}, s.handleSearch)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_file",
			Description: "Extract, chunk and index a local document",
		}, s.handleIngest)
	}

	if s.ports.Logs != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_logs",
			Description: "List the most recent question and answer log entries",
		}, s.handleLogs)
	}
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Ask.Ask(ctx, domain.Question{Text: input.Question, Context: input.Context})
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:    answer.Answer,
		Agents:    make([]AgentOutput, 0, len(answer.Decision.Agents)),
		Documents: make([]ItemOutput, 0, len(answer.Items)),
		Timestamp: answer.Timestamp,
	}
	for _, id := range answer.Decision.Agents {
		output.Agents = append(output.Agents, AgentOutput{Name: string(id), Rationale: answer.Decision.Rationale[id]})
	}
	for i := range answer.Items {
		output.Documents = append(output.Documents, toItemOutput(answer.Items[i]))
	}
	for _, r := range answer.Results {
		if r.Failed() {
			if output.Errors == nil {
				output.Errors = make(map[string]string)
			}
			output.Errors[string(r.ProviderID)] = r.Err.Error()
		}
	}

	return nil, output, nil
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	hits, err := s.ports.Retrieval.Search(ctx, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]ItemOutput, len(hits)),
		Count:   len(hits),
	}
	for i := range hits {
		output.Results[i] = ItemOutput{
			ID:       hits[i].Chunk.ID,
			Title:    hits[i].Chunk.SourceTitle,
			Content:  hits[i].Chunk.Text,
			Distance: hits[i].Distance,
		}
	}

	return nil, output, nil
}

func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingest == nil {
		return nil, IngestOutput{}, errIngestDisabled
	}

	result := s.ports.Ingest.IngestFile(ctx, input.Path)
	return nil, IngestOutput{
		Status:          string(result.Status),
		Message:         result.Message,
		ChunksProcessed: result.ChunksProcessed,
	}, nil
}

func (s *Server) handleLogs(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LogsInput,
) (*mcp.CallToolResult, LogsOutput, error) {
	if s.ports.Logs == nil {
		return nil, LogsOutput{}, errLogsDisabled
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultLogLimit
	}

	entries, err := s.ports.Logs.Recent(ctx, limit)
	if err != nil {
		return nil, LogsOutput{}, err
	}
	return nil, LogsOutput{Logs: entries, Count: len(entries)}, nil
}

func toItemOutput(item domain.ResultItem) ItemOutput {
	return ItemOutput{
		ID:       item.ID,
		Title:    item.Title,
		Content:  item.Content,
		Source:   item.SourceRef,
		Distance: item.Distance,
	}
}
