// Package tui provides an interactive terminal user interface for asking
// questions, searching ingested documents and browsing the interaction log.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
type Ports struct {
	// Ask routes questions through the agents.
	Ask driving.AskService

	// Retrieval searches ingested documents directly.
	Retrieval driving.RetrievalService

	// Logs reads the interaction log. Optional.
	Logs driving.LogService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(ask driving.AskService, retrieval driving.RetrievalService, logs driving.LogService) *Ports {
	return &Ports{
		Ask:       ask,
		Retrieval: retrieval,
		Logs:      logs,
	}
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
