// Package mcp exposes the log-analysis pipeline to MCP-compatible AI
// agents over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"rca-agent/internal/pipeline"
	"rca-agent/internal/storage"
)

// NewServer creates an MCP server with the analysis and history tools.
func NewServer(analyzer *pipeline.Analyzer, repo *storage.Repository) *server.MCPServer {
	s := server.NewMCPServer(
		"rca-agent",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	registerAnalyzeLogTool(s, analyzer)
	registerQueryAnalysesTool(s, repo)
	registerGetAnalysisTool(s, repo)
	registerSubmitFeedbackTool(s, repo)

	return s
}

// Serve starts the MCP server using stdio transport.
func Serve(analyzer *pipeline.Analyzer, repo *storage.Repository) error {
	return server.ServeStdio(NewServer(analyzer, repo))
}
