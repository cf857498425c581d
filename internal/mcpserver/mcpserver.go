// Package mcpserver exposes the ViewModel analysis as MCP tools over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server and registers the vmsweep tools.
type Server struct {
	server *mcp.Server
}

// NewServer creates a new MCP server with all vmsweep tools registered.
func NewServer(version string) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "vmsweep",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_unused_viewmodels",
		Description: describeFindUnused(),
	}, handleFindUnused)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "explain_viewmodel",
		Description: describeExplain(),
	}, handleExplain)
}
