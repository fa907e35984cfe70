// Package session runs one compilation: discover sources, collect routes,
// build the trie and generate the dispatcher. All state of a run lives in
// the Session value.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/rutas/internal/config"
	"github.com/abdul-hamid-achik/rutas/internal/version"
	"github.com/abdul-hamid-achik/rutas/pkg/codegen"
	"github.com/abdul-hamid-achik/rutas/pkg/collector"
	"github.com/abdul-hamid-achik/rutas/pkg/route"
	"github.com/abdul-hamid-achik/rutas/pkg/trie"
)

// Options configures a Session.
type Options struct {
	// Dir is where the module lookup starts (default: current directory)
	Dir string
	// Config is the project configuration
	Config config.Config
	// Logger receives diagnostics; nil discards them
	Logger *log.Logger
	// Verbose logs every route and file
	Verbose bool
	// DryRun generates files in memory without writing or pruning
	DryRun bool
}

// Result is the outcome of a run.
type Result struct {
	ModuleRoot string
	ModulePath string
	// Routes are in dispatch order
	Routes   []route.Route
	Tree     *trie.Node
	Files    []codegen.File
	Warnings []collector.Warning
	Findings []trie.Finding
	// Written lists files whose content changed on disk
	Written []string
	// Removed lists stale generated files that were deleted
	Removed []string
	// Outdated lists generated files written by another generator schema
	Outdated []OutdatedFile
}

// OutdatedFile is a generated file whose schema line does not match the
// running generator. Schema is 0 when the line is missing or unreadable.
type OutdatedFile struct {
	Path   string
	Schema int
}

func (f OutdatedFile) String() string {
	return fmt.Sprintf("%s: generator schema %d, want %d, run rutas generate", f.Path, f.Schema, version.GeneratorSchemaVersion)
}

// Problems is the number of warnings and lint findings.
func (r *Result) Problems() int {
	return len(r.Warnings) + len(r.Findings)
}

// StrictError is returned in strict mode when a run produced problems.
type StrictError struct {
	Problems int
}

func (e *StrictError) Error() string {
	return fmt.Sprintf("strict mode: %d problem(s) found", e.Problems)
}

// Session holds one compilation.
type Session struct {
	opts   Options
	logger *log.Logger
}

// New creates a Session.
func New(opts Options) *Session {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Session{opts: opts, logger: logger}
}

// Compile discovers and collects routes and builds the trie without
// generating code.
func (s *Session) Compile(ctx context.Context) (*Result, error) {
	root, modulePath, err := collector.FindModule(s.opts.Dir)
	if err != nil {
		return nil, err
	}
	result := &Result{ModuleRoot: root, ModulePath: modulePath}

	sources, err := collector.Discover(collector.DiscoverOptions{
		ModuleRoot: root,
		ModulePath: modulePath,
		SourceDir:  s.opts.Config.SourceDir,
		Exclude:    s.opts.Config.Exclude,
	})
	if err != nil {
		return nil, err
	}
	if s.opts.Verbose {
		s.logger.Printf("discovered %d source file(s) under %s", len(sources), root)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := collector.New(s.logger)
	c.SetVerbose(s.opts.Verbose)
	collected, err := c.Collect(sources)
	if err != nil {
		return nil, err
	}
	result.Warnings = collected.Warnings
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree, err := trie.Build(collected.Routes)
	if err != nil {
		return nil, err
	}
	result.Tree = tree
	result.Routes = tree.Routes()

	result.Findings = trie.Lint(tree)
	result.Outdated, err = s.outdated(result.ModuleRoot)
	if err != nil {
		return nil, err
	}
	yellow := color.New(color.FgYellow).SprintFunc()
	for _, w := range result.Warnings {
		s.logger.Printf("%s %s", yellow("⚠"), w)
	}
	for _, f := range result.Findings {
		s.logger.Printf("%s %s", yellow("⚠"), f)
	}
	for _, f := range result.Outdated {
		s.logger.Printf("%s %s", yellow("⚠"), f)
	}

	return result, nil
}

// Run compiles, generates the dispatcher and, unless DryRun is set, writes
// changed files and removes generated files no route needs anymore.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	result, err := s.Compile(ctx)
	if err != nil {
		return nil, err
	}
	if s.opts.Config.Strict && result.Problems() > 0 {
		return result, &StrictError{Problems: result.Problems()}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outputDir := s.opts.Config.OutputDir
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(result.ModuleRoot, outputDir)
	}
	outputImport, err := importPathOf(result.ModuleRoot, result.ModulePath, outputDir)
	if err != nil {
		return nil, err
	}

	gen := codegen.New(codegen.Config{
		ModuleRoot:    result.ModuleRoot,
		OutputDir:     outputDir,
		OutputPackage: s.opts.Config.OutputPackage,
		OutputImport:  outputImport,
		RuntimeImport: s.opts.Config.RuntimeImport,
	})
	result.Files, err = gen.Generate(result.Tree)
	if err != nil {
		return nil, fmt.Errorf("generate failed: %w", err)
	}

	if s.opts.DryRun {
		return result, nil
	}

	result.Written, err = codegen.WriteFiles(result.Files)
	if err != nil {
		return nil, err
	}
	if s.opts.Verbose {
		for _, p := range result.Written {
			s.logger.Printf("wrote %s", p)
		}
	}

	result.Removed, err = s.prune(result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// prune deletes generated per-package files that the current run did not
// produce. Only files starting with the generated-code header are touched.
func (s *Session) prune(result *Result) ([]string, error) {
	keep := make(map[string]bool, len(result.Files))
	for _, f := range result.Files {
		keep[filepath.Clean(f.Path)] = true
	}

	dir := s.opts.Config.SourceDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(result.ModuleRoot, dir)
	}

	var removed []string
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && collector.IsSkippedFolder(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if !strings.HasPrefix(name, codegen.GeneratedFilePrefix) || !strings.HasSuffix(name, ".go") || keep[filepath.Clean(p)] {
			return nil
		}
		generated, err := hasHeader(p)
		if err != nil || !generated {
			return err
		}
		if err := os.Remove(p); err != nil {
			return err
		}
		if s.opts.Verbose {
			s.logger.Printf("removed stale %s", p)
		}
		removed = append(removed, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("prune failed: %w", err)
	}
	return removed, nil
}

func hasHeader(p string) (bool, error) {
	generated, _, err := readHeader(p)
	return generated, err
}

// readHeader reports whether p starts with the generated-code header and
// the schema its second line declares, 0 when that line is unreadable.
func readHeader(p string) (bool, int, error) {
	f, err := os.Open(p)
	if err != nil {
		return false, 0, err
	}
	defer func() { _ = f.Close() }()

	r := bufio.NewReader(f)
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, 0, err
	}
	if strings.TrimSpace(line) != codegen.Header {
		return false, 0, nil
	}
	line, err = r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return true, 0, err
	}
	schema, err := version.ParseSchemaLine(line)
	if err != nil {
		return true, 0, nil
	}
	return true, schema, nil
}

// outdated finds generated files under the source and output directories
// whose schema differs from the running generator.
func (s *Session) outdated(moduleRoot string) ([]OutdatedFile, error) {
	var dirs []string
	for _, d := range []string{s.opts.Config.SourceDir, s.opts.Config.OutputDir} {
		if d == "" {
			continue
		}
		if !filepath.IsAbs(d) {
			d = filepath.Join(moduleRoot, d)
		}
		dirs = append(dirs, filepath.Clean(d))
	}

	seen := make(map[string]bool)
	var out []OutdatedFile
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				if p != dir && collector.IsSkippedFolder(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			name := d.Name()
			if seen[p] || !strings.HasSuffix(name, ".go") {
				return nil
			}
			if !strings.HasPrefix(name, codegen.GeneratedFilePrefix) && name != codegen.DispatcherFileName {
				return nil
			}
			seen[p] = true
			generated, schema, err := readHeader(p)
			if err != nil {
				return err
			}
			if generated && schema != version.GeneratorSchemaVersion {
				out = append(out, OutdatedFile{Path: p, Schema: schema})
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("schema check failed: %w", err)
		}
	}
	return out, nil
}

// importPathOf returns the import path of dir inside the module.
func importPathOf(moduleRoot, modulePath, dir string) (string, error) {
	rel, err := filepath.Rel(moduleRoot, dir)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("output directory %s is outside module %s", dir, moduleRoot)
	}
	if rel == "." {
		return modulePath, nil
	}
	return path.Join(modulePath, rel), nil
}
