// Package httpapi serves the question answering system over HTTP with gin.
package httpapi

import (
	"errors"

	"github.com/custodia-labs/sercha-agents/internal/core/ports/driving"
)

// Errors returned by NewServer.
var (
	ErrMissingAskService    = errors.New("httpapi: ask service is required")
	ErrMissingIngestService = errors.New("httpapi: ingest service is required")
	ErrMissingLogService    = errors.New("httpapi: log service is required")
)

// Ports aggregates the driving ports the HTTP API needs.
type Ports struct {
	Ask    driving.AskService
	Ingest driving.IngestService
	Logs   driving.LogService

	// Retrieval reports the index size on /healthz. Optional.
	Retrieval driving.RetrievalService

	// Providers reports which external providers are configured. Optional.
	Providers map[string]bool
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	switch {
	case p == nil || p.Ask == nil:
		return ErrMissingAskService
	case p.Ingest == nil:
		return ErrMissingIngestService
	case p.Logs == nil:
		return ErrMissingLogService
	}
	return nil
}
