// Package mcp exposes a project's books to AI tooling over the Model Context
// Protocol: tables of contents, flattened page lists, source search and
// background builds.
package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/xmark/pkg/config"
)

const (
	serverName    = "xmark"
	serverVersion = "0.4.0"
)

// ServerConfig holds configuration for the MCP server
type ServerConfig struct {
	AppConfig  *config.AppConfig
	ConfigPath string
	ProjectDir string // Books and out_dir are resolved against it
	Transport  string // "stdio" or "sse"
	Port       int
	Logger     *logrus.Logger
}

// Server wraps the MCP server with book specific tools
type Server struct {
	mcpServer  *server.MCPServer
	cfg        *ServerConfig
	log        *logrus.Entry
	jobManager *JobManager
}

// NewServer creates a new MCP server instance
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg.AppConfig == nil {
		return nil, fmt.Errorf("AppConfig is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.ProjectDir == "" {
		cfg.ProjectDir = "."
	}

	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithLogging(),
	)

	s := &Server{
		mcpServer:  mcpServer,
		cfg:        cfg,
		log:        cfg.Logger.WithField("component", "mcp"),
		jobManager: NewJobManager(),
	}

	s.registerTools()

	return s, nil
}

func (s *Server) registerTools() {
	bookParam := mcp.WithString("book",
		mcp.Required(),
		mcp.Description("Book name from the config file"),
	)

	s.mcpServer.AddTool(mcp.NewTool("list_books",
		mcp.WithDescription("List all configured books with their title and last build"),
	), s.handleListBooks)

	s.mcpServer.AddTool(mcp.NewTool("get_summary",
		mcp.WithDescription("Parse a book's SUMMARY.md and return its table of contents with section numbers"),
		bookParam,
	), s.handleGetSummary)

	s.mcpServer.AddTool(mcp.NewTool("get_pages",
		mcp.WithDescription("Return the flattened page list of a book: output paths, URLs, breadcrumbs and prev/next links"),
		bookParam,
	), s.handleGetPages)

	s.mcpServer.AddTool(mcp.NewTool("search_book",
		mcp.WithDescription("Search the markdown sources of the books' chapters"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query (case-insensitive substring match)"),
		),
		mcp.WithString("book",
			mcp.Description("Limit search to one book (optional)"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results to return (default: 10, max: 100)"),
		),
	), s.handleSearchBook)

	s.mcpServer.AddTool(mcp.NewTool("build_book",
		mcp.WithDescription("Start a background build of one book. Returns immediately with a job ID."),
		bookParam,
	), s.handleBuildBook)

	s.mcpServer.AddTool(mcp.NewTool("get_job_status",
		mcp.WithDescription("Get the status of a build job"),
		mcp.WithString("job_id",
			mcp.Required(),
			mcp.Description("The job ID returned by build_book"),
		),
	), s.handleGetJobStatus)

	s.log.Infof("Registered %d MCP tools", 6)
}

// Run starts the MCP server with the configured transport
func (s *Server) Run() error {
	switch s.cfg.Transport {
	case "stdio":
		s.log.Info("Starting MCP server with stdio transport")
		return server.ServeStdio(s.mcpServer)
	case "sse":
		addr := fmt.Sprintf(":%d", s.cfg.Port)
		s.log.Infof("Starting MCP server with SSE transport on %s", addr)
		sseServer := server.NewSSEServer(s.mcpServer)
		return sseServer.Start(addr)
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio, sse)", s.cfg.Transport)
	}
}

// Shutdown cancels running build jobs.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down MCP server...")
	s.jobManager.CancelAll()
	return nil
}
