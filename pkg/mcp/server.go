// Package mcp exposes the rutas compiler to LLM agents over the Model
// Context Protocol.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdul-hamid-achik/rutas/internal/version"
)

// Server answers MCP tool calls for the Go module containing workdir.
type Server struct {
	workdir    string
	configFile string
	mcpServer  *server.MCPServer
}

// NewServer creates a Server with every rutas tool registered. configFile
// may be empty, in which case rutas.yaml is looked up at the module root.
func NewServer(workdir, configFile string) *Server {
	s := &Server{
		workdir:    workdir,
		configFile: configFile,
		mcpServer: server.NewMCPServer(
			"rutas",
			version.GetVersion(),
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}
	s.registerTools()
	return s
}

// ServeStdio serves requests on stdin and stdout until stdin closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("rutas_list_routes",
		mcp.WithDescription("List every route in dispatch order with its methods, handler, source location, captures, query and form fields"),
		mcp.WithString("prefix",
			mcp.Description("Only list routes whose path starts with this prefix, e.g. /api"),
		),
	), s.handleListRoutes)

	s.mcpServer.AddTool(mcp.NewTool("rutas_check",
		mcp.WithDescription("Compile the route directives without writing files and report warnings, path conflicts and shadowed routes"),
	), s.handleCheck)

	s.mcpServer.AddTool(mcp.NewTool("rutas_generate",
		mcp.WithDescription("Generate the dispatcher and the per-package handler wrappers"),
		mcp.WithBoolean("dry_run",
			mcp.Description("Report the files that would be written without touching the disk"),
		),
	), s.handleGenerate)

	s.mcpServer.AddTool(mcp.NewTool("rutas_openapi",
		mcp.WithDescription("Return the OpenAPI document describing the compiled routes"),
		mcp.WithString("format",
			mcp.Description("Document format"),
			mcp.Enum("json", "yaml"),
		),
		mcp.WithString("title",
			mcp.Description("API title, defaults to the openapi.title setting"),
		),
	), s.handleOpenAPI)

	s.mcpServer.AddTool(mcp.NewTool("rutas_info",
		mcp.WithDescription("Describe the module, the effective configuration and the rutas version"),
	), s.handleInfo)
}
