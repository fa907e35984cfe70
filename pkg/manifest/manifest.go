// Package manifest exports the compiled route table for tooling. A
// manifest lists every route in dispatch order with its handler, declared
// fields and response kinds, and can be written as JSON, YAML or a SQLite
// database.
package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/rutas/internal/version"
	"github.com/abdul-hamid-achik/rutas/pkg/route"
	"github.com/abdul-hamid-achik/rutas/pkg/trie"
)

// Formats accepted by Write and WriteFile.
const (
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatSQLite = "sqlite"
)

// Manifest is the exported route table.
type Manifest struct {
	Generator string  `json:"generator" yaml:"generator"`
	Schema    int     `json:"schema" yaml:"schema"`
	Routes    []Entry `json:"routes" yaml:"routes"`
}

// Entry describes one route.
type Entry struct {
	Methods      []string `json:"methods" yaml:"methods"`
	Path         string   `json:"path" yaml:"path"`
	Handler      string   `json:"handler" yaml:"handler"`
	Source       string   `json:"source" yaml:"source"`
	Responses    []string `json:"responses" yaml:"responses"`
	Capabilities []string `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	Captures     []Field  `json:"captures,omitempty" yaml:"captures,omitempty"`
	Query        []Field  `json:"query,omitempty" yaml:"query,omitempty"`
	Form         []Field  `json:"form,omitempty" yaml:"form,omitempty"`
	Debug        bool     `json:"debug,omitempty" yaml:"debug,omitempty"`
	Doc          string   `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// Field is a path capture or a query/form field.
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Shape string `json:"shape,omitempty" yaml:"shape,omitempty"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
}

// New builds the manifest of a route trie. Source locations are made
// relative to moduleRoot when possible.
func New(root *trie.Node, moduleRoot string) Manifest {
	m := Manifest{
		Generator: "rutas " + version.GetVersion(),
		Schema:    version.GeneratorSchemaVersion,
		Routes:    []Entry{},
	}
	for _, t := range root.Flatten() {
		m.Routes = append(m.Routes, newEntry(*t.Route, moduleRoot))
	}
	return m
}

func newEntry(r route.Route, moduleRoot string) Entry {
	e := Entry{
		Methods:      r.Spec.MethodStrings(),
		Path:         r.Spec.Path.String(),
		Handler:      r.Handler.ID(),
		Source:       relative(r.Location, moduleRoot),
		Capabilities: r.Signature.Capabilities(),
		Debug:        r.Spec.Debug,
		Doc:          r.Handler.Doc,
	}
	for _, k := range r.Spec.Responses {
		e.Responses = append(e.Responses, k.String())
	}
	for _, c := range r.Spec.Path.Captures() {
		e.Captures = append(e.Captures, Field{Name: c.Name, Type: c.Type.String()})
	}
	e.Query = fields(r.Spec.Query)
	e.Form = fields(r.Spec.Form)
	return e
}

func fields(schema route.Schema) []Field {
	var out []Field
	for _, f := range schema {
		field := Field{Name: f.Name, Shape: f.Shape.String()}
		if f.Shape != route.Flag {
			field.Type = f.Type.String()
		}
		out = append(out, field)
	}
	return out
}

func relative(loc route.Location, moduleRoot string) string {
	file := loc.File
	if moduleRoot != "" && filepath.IsAbs(file) {
		if rel, err := filepath.Rel(moduleRoot, file); err == nil {
			file = filepath.ToSlash(rel)
		}
	}
	return route.Location{File: file, Line: loc.Line}.String()
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatJSON
	}
}

// Write encodes m as JSON or YAML.
func (m Manifest) Write(w io.Writer, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	case FormatSQLite:
		return fmt.Errorf("format %s needs a file, use WriteFile", format)
	default:
		return fmt.Errorf("unsupported format: %s (use json, yaml or sqlite)", format)
	}
}

// WriteFile writes m to path. An empty format is derived from the file
// extension.
func (m Manifest) WriteFile(path, format string) error {
	if format == "" {
		format = FormatFromPath(path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if format == FormatSQLite {
		return m.WriteSQLite(path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.Write(f, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
