// Package mcpserver exposes the task store as Model Context Protocol tools
// served over stdio.
package mcpserver

import (
	"context"
	"io"

	"github.com/mark3labs/mcp-go/server"
	"github.com/xiaoyuanzhu-com/tasktree/core"
	"github.com/xiaoyuanzhu-com/tasktree/log"
)

const serverName = "tasktree"

// Version is reported to MCP clients during initialize
var Version = "dev"

// Server wraps an MCP server with the task tools registered
type Server struct {
	core *core.Service
	mcp  *server.MCPServer
}

// New creates an MCP server backed by svc with all tools registered
func New(svc *core.Service) *Server {
	s := &Server{
		core: svc,
		mcp: server.NewMCPServer(
			serverName,
			Version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying server, e.g. for in-process message handling
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Run serves newline-delimited JSON-RPC from in to out until in is exhausted
// or ctx is cancelled.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(log.StdErrorLogger())

	log.Info().Str("server", serverName).Msg("mcp server listening on stdio")
	return stdio.Listen(ctx, in, out)
}
