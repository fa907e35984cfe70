package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/rutas/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve rutas tools to LLM agents over MCP",
	Long: `Start a Model Context Protocol server on stdin and stdout.

Agents can list routes, check directives, generate the dispatcher and
fetch the OpenAPI document of the module containing --dir.

Tools:
  rutas_list_routes    Routes in dispatch order
  rutas_check          Warnings, conflicts and shadowed routes
  rutas_generate       Generate the dispatcher (dry_run supported)
  rutas_openapi        OpenAPI document as JSON or YAML
  rutas_info           Module, configuration and version

Example client configuration:
  {"command": "rutas", "args": ["mcp", "--dir", "/path/to/module"]}`,
	Run: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) {
	// stdout carries the protocol, so nothing else may be printed there.
	if err := mcp.NewServer(workDir, configFile).ServeStdio(); err != nil {
		fmt.Fprintf(os.Stderr, "rutas mcp: %v\n", err)
		exit(1)
	}
}
