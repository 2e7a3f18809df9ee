package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-agents/internal/core/domain"
)

// uriScheme is the custom URI scheme for resources.
const uriScheme = "sercha-agents://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "agents",
		Name:        "agents",
		Description: "Agents a question can be routed to",
		MIMEType:    "application/json",
	}, s.handleAgentsResource)

	if s.ports.Logs == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "logs",
		Name:        "logs",
		Description: "Every logged question and answer, oldest first",
		MIMEType:    "application/json",
	}, s.handleLogsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "logs/recent/{count}",
		Name:        "recent-logs",
		Description: "The most recent logged questions and answers",
		MIMEType:    "application/json",
	}, s.handleRecentLogsResource)
}

func (s *Server) handleAgentsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type agentInfo struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	agents := domain.AllAgents()
	infos := make([]agentInfo, len(agents))
	for i, a := range agents {
		infos[i] = agentInfo{ID: string(a), Name: a.DisplayName()}
	}
	return jsonResource(req.Params.URI, infos)
}

func (s *Server) handleLogsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Logs == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	entries, err := s.ports.Logs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing logs: %w", err)
	}
	return jsonResource(req.Params.URI, entries)
}

func (s *Server) handleRecentLogsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Logs == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// sercha-agents://logs/recent/{count}
	count := extractCount(req.Params.URI)
	if count <= 0 {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	entries, err := s.ports.Logs.Recent(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("listing recent logs: %w", err)
	}
	return jsonResource(req.Params.URI, entries)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCount parses the count from a URI like sercha-agents://logs/recent/{count}.
// Returns 0 if the URI does not match.
func extractCount(uri string) int {
	const prefix = uriScheme + "logs/recent/"

	if !strings.HasPrefix(uri, prefix) {
		return 0
	}

	n, err := strconv.Atoi(strings.TrimPrefix(uri, prefix))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
