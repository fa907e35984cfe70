package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/rutas/pkg/manifest"
	"github.com/abdul-hamid-achik/rutas/pkg/session"
)

// jsonOutput is the global flag for JSON output mode
var jsonOutput bool

// JSONResponse is the standard response wrapper for JSON output
type JSONResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// GenerateOutput represents the JSON output for the generate command
type GenerateOutput struct {
	Module   string   `json:"module"`
	Routes   int      `json:"routes"`
	Files    []string `json:"files"`
	Written  []string `json:"written"`
	Removed  []string `json:"removed,omitempty"`
	DryRun   bool     `json:"dry_run,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Findings []string `json:"findings,omitempty"`
	Outdated []string `json:"outdated,omitempty"`
}

// RoutesOutput represents the JSON output for the routes command
type RoutesOutput struct {
	Routes      []manifest.Entry `json:"routes"`
	TotalRoutes int              `json:"total_routes"`
}

// CheckOutput represents the JSON output for the check command
type CheckOutput struct {
	Valid      bool     `json:"valid"`
	RouteCount int      `json:"route_count"`
	Warnings   []string `json:"warnings,omitempty"`
	Findings   []string `json:"findings,omitempty"`
	Outdated   []string `json:"outdated,omitempty"`
}

// ExportOutput represents the JSON output for the openapi and manifest commands
type ExportOutput struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Routes int    `json:"routes"`
}

// InitOutput represents the JSON output for the init command
type InitOutput struct {
	Path      string   `json:"path"`
	NextSteps []string `json:"next_steps"`
}

// WatchOutput is one line of JSON output per watch rebuild
type WatchOutput struct {
	Time    string   `json:"time"`
	Trigger string   `json:"trigger,omitempty"`
	Routes  int      `json:"routes"`
	Written []string `json:"written,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// VersionOutput represents the JSON output for the version command
type VersionOutput struct {
	Version string `json:"version"`
	Schema  int    `json:"schema"`
}

// printJSON outputs data as formatted JSON
func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
	}
}

// printSuccess outputs a successful JSON response
func printSuccess(data any) {
	printJSON(JSONResponse{Success: true, Data: data})
}

// printJSONError outputs an error as JSON
func printJSONError(err error) {
	printJSON(JSONResponse{Success: false, Error: err.Error()})
}

// problems renders the warnings and lint findings of a run as strings.
func problems(result *session.Result) (warnings, findings []string) {
	for _, w := range result.Warnings {
		warnings = append(warnings, w.Error())
	}
	for _, f := range result.Findings {
		findings = append(findings, f.String())
	}
	return warnings, findings
}

func newGenerateOutput(result *session.Result, dryRun bool) GenerateOutput {
	out := GenerateOutput{
		Module:  result.ModulePath,
		Routes:  len(result.Routes),
		Files:   make([]string, 0, len(result.Files)),
		Written: result.Written,
		Removed: result.Removed,
		DryRun:  dryRun,
	}
	if out.Written == nil {
		out.Written = []string{}
	}
	for _, f := range result.Files {
		out.Files = append(out.Files, relToModule(result.ModuleRoot, f.Path))
	}
	out.Warnings, out.Findings = problems(result)
	out.Outdated = outdated(result)
	return out
}

// outdated lists generated files written by another generator schema.
func outdated(result *session.Result) []string {
	var out []string
	for _, f := range result.Outdated {
		out = append(out, relToModule(result.ModuleRoot, f.Path))
	}
	return out
}
