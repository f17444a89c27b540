package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/docchat-dev/docchat/internal/config"
	"github.com/docchat-dev/docchat/internal/embeddings"
	"github.com/docchat-dev/docchat/internal/pipeline"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes document question answering
// tools over stdio.
type Server struct {
	registry *embeddings.Registry
	answerer *pipeline.Answerer
	app      *config.Config
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(registry *embeddings.Registry, answerer *pipeline.Answerer, app *config.Config) *Server {
	s := &Server{
		registry: registry,
		answerer: answerer,
		app:      app,
	}

	s.mcp = server.NewMCPServer(
		"docchat",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(askDocumentTool, s.handleAskDocument)
	s.mcp.AddTool(searchDocumentTool, s.handleSearchDocument)
	s.mcp.AddTool(listModelsTool, s.handleListModels)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
