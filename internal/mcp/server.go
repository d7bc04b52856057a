package mcp

import (
	"context"

	"clinic-funnel/internal/config"
	"clinic-funnel/internal/sheet"

	"github.com/go-playground/validator/v10"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "clinic-funnel"

// Server exposes the funnel analytics as MCP tools.
type Server struct {
	cfg      *config.AppConfig
	sources  *sheet.Registry
	validate *validator.Validate
	server   *mcpsdk.Server
}

// NewServer wires the sheet sources and registers every tool.
func NewServer(cfg *config.AppConfig, version string) *Server {
	s := &Server{
		cfg:      cfg,
		sources:  sheet.NewRegistry(cfg.Sheet, sheet.NewSnapshotStore(cfg.CacheDir)),
		validate: validator.New(),
		server:   mcpsdk.NewServer(&mcpsdk.Implementation{Name: ServerName, Version: version}, nil),
	}
	s.registerTools()
	return s
}

// Serve runs the MCP session over stdin/stdout until the client disconnects or ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	log.Info().Str("cache", s.cfg.CacheDir).Msg("Starting MCP server on stdio")
	return s.Run(ctx, &mcpsdk.StdioTransport{})
}

// Run serves a single session over t.
func (s *Server) Run(ctx context.Context, t mcpsdk.Transport) error {
	return s.server.Run(ctx, t)
}
