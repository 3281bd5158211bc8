// ABOUTME: MCP server setup for the workout tracker.
// ABOUTME: Wraps the MCP server with a storage Repository and the default weight unit.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/models"
	"github.com/prodigy803-dusra/Workout-Tracker-sub000/internal/storage"
)

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer *mcp.Server
	repo      storage.Repository
	unit      models.Unit
}

// NewServer creates a new MCP server with the given storage. The unit is
// used for warm-up plate rounding when a tool call does not name one.
func NewServer(repo storage.Repository, unit models.Unit) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "workout",
			Version: "1.0.0",
		},
		nil,
	)

	if unit == "" {
		unit = models.UnitKg
	}

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		unit:      unit,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
