package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/rutas/internal/config"
	"github.com/abdul-hamid-achik/rutas/pkg/openapi"
	"github.com/abdul-hamid-achik/rutas/pkg/session"
)

var openapiCmd = &cobra.Command{
	Use:   "openapi",
	Short: "Generate and serve OpenAPI specifications",
	Long: `Generate OpenAPI 3.1 specifications from the compiled routes.

Path captures, query strings and post forms become parameters and request
bodies; declared response kinds become responses.

Examples:
  rutas openapi generate
  rutas openapi generate --format yaml --output openapi.yaml
  rutas openapi serve --port 9000`,
}

var openapiGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate OpenAPI specification file",
	Long: `Generate an OpenAPI specification from the route directives.

Defaults come from the openapi section of rutas.yaml.

Examples:
  rutas openapi generate
  rutas openapi generate --output api.yaml --format yaml
  rutas openapi generate --title "Blog" --api-version 2.0.0
  rutas openapi generate --openapi30`,
	Run: runOpenAPIGenerate,
}

var openapiServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve OpenAPI spec with Swagger UI",
	Long: `Start a local server with Swagger UI at /docs and the raw spec at
/openapi.json.

Examples:
  rutas openapi serve
  rutas openapi serve --port 9000
  rutas openapi serve --open`,
	Run: runOpenAPIServe,
}

// Flags
var (
	openapiOutput     string
	openapiFormat     string
	openapiTitle      string
	openapiAPIVersion string
	openapiDesc       string
	openapiServerURL  string
	openapiOpenAPI30  bool
	openapiPort       string
	openapiOpen       bool
)

func init() {
	rootCmd.AddCommand(openapiCmd)
	openapiCmd.AddCommand(openapiGenerateCmd)
	openapiCmd.AddCommand(openapiServeCmd)

	for _, c := range []*cobra.Command{openapiGenerateCmd, openapiServeCmd} {
		c.Flags().StringVar(&openapiTitle, "title", "", "API title (default from rutas.yaml)")
		c.Flags().StringVar(&openapiAPIVersion, "api-version", "", "API version (default from rutas.yaml)")
		c.Flags().StringVar(&openapiDesc, "description", "", "API description")
		c.Flags().StringVar(&openapiServerURL, "server", "", "Server URL (e.g., http://localhost:8080)")
		c.Flags().BoolVar(&openapiOpenAPI30, "openapi30", false, "Use OpenAPI 3.0.3 instead of 3.1.0")
	}

	openapiGenerateCmd.Flags().StringVarP(&openapiOutput, "output", "o", "", "Output file path (default from rutas.yaml)")
	openapiGenerateCmd.Flags().StringVarP(&openapiFormat, "format", "f", "", "Output format (json|yaml)")

	openapiServeCmd.Flags().StringVarP(&openapiPort, "port", "p", "8080", "Port to serve on")
	openapiServeCmd.Flags().BoolVar(&openapiOpen, "open", false, "Open Swagger UI in the default browser")
}

// openapiConfig merges rutas.yaml settings with command-line flags.
func openapiConfig(cfg *config.Config) openapi.Config {
	c := openapi.Config{
		Title:       cfg.OpenAPI.Title,
		Version:     cfg.OpenAPI.Version,
		Description: openapiDesc,
	}
	if openapiTitle != "" {
		c.Title = openapiTitle
	}
	if openapiAPIVersion != "" {
		c.Version = openapiAPIVersion
	}
	if openapiOpenAPI30 {
		c.OpenAPIVersion = "3.0.3"
	}
	if openapiServerURL != "" {
		c.Servers = []openapi.Server{{URL: openapiServerURL}}
	}
	return c
}

// compileForExport loads the config and compiles routes without generating code.
func compileForExport(cmd *cobra.Command) (*config.Config, *session.Result) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fail("failed to load config", err)
	}
	result, err := newSession(cfg, true).Compile(context.Background())
	if err != nil {
		fail("compile failed", err)
	}
	return cfg, result
}

func runOpenAPIGenerate(cmd *cobra.Command, args []string) {
	green := color.New(color.FgGreen).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	header("OpenAPI Generator")

	cfg, result := compileForExport(cmd)

	output := cfg.OpenAPI.Output
	if openapiOutput != "" {
		output = openapiOutput
	}
	if !filepath.IsAbs(output) {
		output = filepath.Join(result.ModuleRoot, output)
	}
	format := cfg.OpenAPI.Format
	if openapiFormat != "" {
		format = openapiFormat
	}

	c := openapiConfig(cfg)
	if err := openapi.New(c).WriteToFile(result.Tree, output, format); err != nil {
		fail("failed to generate spec", err)
	}

	if jsonOutput {
		printSuccess(ExportOutput{Path: output, Format: format, Routes: len(result.Routes)})
		return
	}

	version := c.OpenAPIVersion
	if version == "" {
		version = "3.1.0"
	}
	fmt.Printf("  %s Spec generated\n\n", green("✓"))
	fmt.Printf("  Output:  %s\n", green(relToModule(result.ModuleRoot, output)))
	fmt.Printf("  Format:  OpenAPI %s (%s)\n", version, format)
	fmt.Printf("  Routes:  %d\n", len(result.Routes))
	fmt.Printf("  Size:    %s\n\n", dim(fileSize(output)))
}

func runOpenAPIServe(cmd *cobra.Command, args []string) {
	cyan := color.New(color.FgCyan).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	header("OpenAPI Server")

	cfg, result := compileForExport(cmd)
	spec, err := openapi.New(openapiConfig(cfg)).GenerateJSON(result.Tree)
	if err != nil {
		fail("failed to generate spec", err)
	}
	fmt.Printf("  %s Spec generated for %d routes\n\n", green("✓"), len(result.Routes))

	addr := ":" + openapiPort
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fail("failed to listen", err)
	}
	docsURL := fmt.Sprintf("http://localhost%s/docs", addr)
	fmt.Printf("  %s Swagger UI:    %s\n", green("➜"), cyan(docsURL))
	fmt.Printf("  %s OpenAPI JSON:  %s\n\n", green("➜"), dim(fmt.Sprintf("http://localhost%s/openapi.json", addr)))
	if openapiOpen {
		if err := browser.OpenURL(docsURL); err != nil {
			fmt.Printf("  %s Could not open browser: %v\n\n", yellow("!"), err)
		}
	}
	fmt.Printf("  Press %s to stop\n\n", yellow("Ctrl+C"))

	server := &http.Server{
		Handler:           docsRouter(spec),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fail("server error", err)
	}
}

// docsRouter serves spec at /openapi.json and Swagger UI at /docs.
func docsRouter(spec []byte) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		_, _ = w.Write(spec)
	})
	docs := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, swaggerUIHTML("/openapi.json"))
	}
	r.Get("/docs", docs)
	r.Get("/docs/", docs)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs", http.StatusFound)
	})
	return r
}

// swaggerUIHTML returns the HTML for Swagger UI
func swaggerUIHTML(specURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
    <style>
        body { margin: 0; padding: 0; }
        .swagger-ui .topbar { display: none; }
    </style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: "%s",
                dom_id: '#swagger-ui',
                deepLinking: true,
                displayRequestDuration: true
            });
        };
    </script>
</body>
</html>`, specURL)
}

// fileSize formats the size of path for display.
func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "?"
	}
	const unit = 1024
	b := info.Size()
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
