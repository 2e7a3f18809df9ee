package mcp

import (
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Ask routes a question through the agents.
	Ask driving.AskService

	// Retrieval searches ingested documents directly.
	Retrieval driving.RetrievalService

	// Ingest adds local files to the index. Optional.
	Ingest driving.IngestService

	// Logs reads the interaction log. Optional.
	Logs driving.LogService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Ask == nil {
		return ErrMissingAskService
	}
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
