// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants ask questions, search ingested documents and read
// the interaction log.
package mcp

import "errors"

// Errors returned when required ports are missing.
var (
	ErrMissingAskService       = errors.New("mcp: ask service is required")
	ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
)

// errIngestDisabled is returned by ingest_file when no ingest service is wired.
var errIngestDisabled = errors.New("mcp: ingestion is not enabled")

// errLogsDisabled is returned by list_logs when no log service is wired.
var errLogsDisabled = errors.New("mcp: interaction log is not enabled")
