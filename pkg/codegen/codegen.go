// Package codegen lowers a route trie into Go source.
//
// Two kinds of files are produced. Every package holding handlers gets a
// zz_rutas_<package>.go file with the Path, Query and Form structs of its
// routes, their field parsers and one exported wrapper per handler. The
// output package gets dispatcher.go, whose Dispatch function walks the
// request path segment by segment and calls the wrappers.
package codegen

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"mvdan.cc/gofumpt/format"

	"github.com/abdul-hamid-achik/rutas/internal/version"
	"github.com/abdul-hamid-achik/rutas/pkg/route"
	"github.com/abdul-hamid-achik/rutas/pkg/trie"
)

// DefaultRuntimeImport is the import path of the runtime package generated
// code calls into.
const DefaultRuntimeImport = "github.com/abdul-hamid-achik/rutas/pkg/rutas"

// GeneratedFilePrefix starts the name of every per-package file.
const GeneratedFilePrefix = "zz_rutas_"

// DispatcherFileName is the name of the dispatcher file.
const DispatcherFileName = "dispatcher.go"

// Config holds configuration for code generation.
type Config struct {
	// ModuleRoot is the directory holding go.mod; source locations in the
	// route table are made relative to it
	ModuleRoot string
	// OutputDir is where dispatcher.go is written
	OutputDir string
	// OutputPackage is the package name of dispatcher.go (default: routes)
	OutputPackage string
	// OutputImport is the import path of OutputDir
	OutputImport string
	// RuntimeImport overrides DefaultRuntimeImport
	RuntimeImport string
}

// File is one generated Go file.
type File struct {
	Path    string
	Package string
	Content []byte
}

// Generator generates dispatcher code from a route trie.
type Generator struct {
	config Config
}

// New creates a Generator with the given config.
func New(config Config) *Generator {
	if config.OutputPackage == "" {
		config.OutputPackage = "routes"
	}
	if config.RuntimeImport == "" {
		config.RuntimeImport = DefaultRuntimeImport
	}
	return &Generator{config: config}
}

// Generate returns the per-package files, sorted by path, followed by the
// dispatcher.
func (g *Generator) Generate(root *trie.Node) ([]File, error) {
	terminals := root.Flatten()

	byPackage := make(map[string][]*route.Route)
	var packages []string
	for _, t := range terminals {
		id := t.Route.Handler.ImportPath
		if _, ok := byPackage[id]; !ok {
			packages = append(packages, id)
		}
		byPackage[id] = append(byPackage[id], t.Route)
	}
	slices.Sort(packages)

	var files []File
	for _, id := range packages {
		f, err := g.packageFile(byPackage[id])
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	dispatcher, err := g.dispatcherFile(root, terminals)
	if err != nil {
		return nil, err
	}
	return append(files, dispatcher), nil
}

// PackageFileName is the name of the generated file of a handler package.
func PackageFileName(pkg string) string {
	return GeneratedFilePrefix + pkg + ".go"
}

// WriteFiles writes files whose content changed and returns their paths.
func WriteFiles(files []File) ([]string, error) {
	var written []string
	for _, f := range files {
		if existing, err := os.ReadFile(f.Path); err == nil && bytes.Equal(existing, f.Content) {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
			return written, fmt.Errorf("failed to create output dir: %w", err)
		}
		if err := os.WriteFile(f.Path, f.Content, 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", f.Path, err)
		}
		written = append(written, f.Path)
	}
	return written, nil
}

// Header is the first line of every generated file.
const Header = "// Code generated by rutas. DO NOT EDIT."

// render fills the file skeleton and formats the result. A formatting
// failure means the generator emitted invalid Go.
func render(path, pkg string, imports *importSet, body string) (File, error) {
	var buf bytes.Buffer
	err := fileTemplate.Execute(&buf, map[string]any{
		"Header":     Header,
		"SchemaLine": version.SchemaLine(),
		"Package":    pkg,
		"Std":        imports.lines(true),
		"ThirdParty": imports.lines(false),
		"Body":       body,
	})
	if err != nil {
		return File{}, err
	}

	src, err := format.Source(buf.Bytes(), format.Options{})
	if err != nil {
		return File{}, fmt.Errorf("generated invalid code for %s: %w", path, err)
	}
	return File{Path: path, Package: pkg, Content: src}, nil
}
