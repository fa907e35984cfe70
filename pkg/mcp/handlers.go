package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/abdul-hamid-achik/rutas/internal/config"
	"github.com/abdul-hamid-achik/rutas/internal/version"
	"github.com/abdul-hamid-achik/rutas/pkg/collector"
	"github.com/abdul-hamid-achik/rutas/pkg/manifest"
	"github.com/abdul-hamid-achik/rutas/pkg/openapi"
	"github.com/abdul-hamid-achik/rutas/pkg/session"
)

type listRoutesResult struct {
	Routes []manifest.Entry `json:"routes"`
	Total  int              `json:"total"`
}

type checkResult struct {
	Valid    bool     `json:"valid"`
	Routes   int      `json:"routes"`
	Warnings []string `json:"warnings"`
	Findings []string `json:"findings"`
}

type generateResult struct {
	Success  bool     `json:"success"`
	DryRun   bool     `json:"dry_run"`
	Routes   int      `json:"routes"`
	Files    []string `json:"files"`
	Written  []string `json:"written"`
	Removed  []string `json:"removed"`
	Problems int      `json:"problems"`
	Error    string   `json:"error,omitempty"`
}

type infoResult struct {
	Version    string        `json:"version"`
	Schema     int           `json:"schema"`
	ModuleRoot string        `json:"module_root,omitempty"`
	ModulePath string        `json:"module_path,omitempty"`
	HasGoMod   bool          `json:"has_go_mod"`
	HasConfig  bool          `json:"has_config"`
	ConfigFile string        `json:"config_file,omitempty"`
	Config     config.Config `json:"config"`
}

// loadConfig reads rutas.yaml from the module root, or from workdir when
// workdir is outside a module.
func (s *Server) loadConfig() (*config.Config, error) {
	dir := s.workdir
	if root, _, err := collector.FindModule(s.workdir); err == nil {
		dir = root
	}
	return config.Load(dir, s.configFile, nil)
}

func (s *Server) session(cfg *config.Config, dryRun bool) *session.Session {
	return session.New(session.Options{Dir: s.workdir, Config: *cfg, DryRun: dryRun})
}

func (s *Server) compile(ctx context.Context) (*config.Config, *session.Result, error) {
	cfg, err := s.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	result, err := s.session(cfg, true).Compile(ctx)
	if err != nil {
		return nil, nil, err
	}
	return cfg, result, nil
}

func (s *Server) handleListRoutes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, result, err := s.compile(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	prefix := request.GetString("prefix", "")
	out := listRoutesResult{Routes: []manifest.Entry{}}
	for _, e := range manifest.New(result.Tree, result.ModuleRoot).Routes {
		if strings.HasPrefix(e.Path, prefix) {
			out.Routes = append(out.Routes, e)
		}
	}
	out.Total = len(out.Routes)
	return jsonResult(out)
}

func (s *Server) handleCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, result, err := s.compile(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := checkResult{
		Routes:   len(result.Routes),
		Warnings: []string{},
		Findings: []string{},
	}
	for _, w := range result.Warnings {
		out.Warnings = append(out.Warnings, w.Error())
	}
	for _, f := range result.Findings {
		out.Findings = append(out.Findings, f.String())
	}
	out.Valid = result.Problems() == 0 || !cfg.Strict
	return jsonResult(out)
}

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := s.loadConfig()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dryRun := request.GetBool("dry_run", false)

	result, err := s.session(cfg, dryRun).Run(ctx)
	var strict *session.StrictError
	switch {
	case errors.As(err, &strict):
		return jsonResult(generateResult{
			DryRun:   dryRun,
			Routes:   len(result.Routes),
			Files:    []string{},
			Written:  []string{},
			Removed:  []string{},
			Problems: strict.Problems,
			Error:    err.Error(),
		})
	case err != nil:
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := generateResult{
		Success:  true,
		DryRun:   dryRun,
		Routes:   len(result.Routes),
		Files:    make([]string, 0, len(result.Files)),
		Written:  append([]string{}, result.Written...),
		Removed:  append([]string{}, result.Removed...),
		Problems: result.Problems(),
	}
	for _, f := range result.Files {
		out.Files = append(out.Files, f.Path)
	}
	return jsonResult(out)
}

func (s *Server) handleOpenAPI(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, result, err := s.compile(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	gen := openapi.New(openapi.Config{
		Title:   request.GetString("title", cfg.OpenAPI.Title),
		Version: cfg.OpenAPI.Version,
	})
	var data []byte
	switch format := request.GetString("format", "json"); format {
	case "json":
		data, err = gen.GenerateJSON(result.Tree)
	case "yaml":
		data, err = gen.GenerateYAML(result.Tree)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format: %s (use json or yaml)", format)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := infoResult{
		Version: version.GetVersion(),
		Schema:  version.GeneratorSchemaVersion,
	}
	if root, path, err := collector.FindModule(s.workdir); err == nil {
		out.ModuleRoot, out.ModulePath, out.HasGoMod = root, path, true
	}
	cfg, err := s.loadConfig()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out.Config = *cfg
	out.ConfigFile = cfg.File
	out.HasConfig = cfg.File != ""
	return jsonResult(out)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
