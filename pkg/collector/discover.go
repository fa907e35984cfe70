package collector

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// knownSkippedFolders are never searched for handlers
var knownSkippedFolders = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"testdata":     true,
	".git":         true,
}

// GeneratedFilePrefix marks files written by the code generator.
const GeneratedFilePrefix = "zz_rutas_"

// DiscoverOptions configures Discover.
type DiscoverOptions struct {
	// ModuleRoot is the directory holding go.mod
	ModuleRoot string
	// ModulePath is the module path declared in go.mod
	ModulePath string
	// SourceDir is the directory to search, relative to ModuleRoot unless absolute
	SourceDir string
	// Exclude holds slash-separated glob patterns matched against paths
	// relative to ModuleRoot
	Exclude []string
}

// IsSkippedFolder reports whether a directory should not be searched.
func IsSkippedFolder(name string) bool {
	if knownSkippedFolders[name] {
		return true
	}
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// Discover walks the source directory and returns every Go file that
// contains a route directive, in lexical path order.
func Discover(opts DiscoverOptions) ([]Source, error) {
	root, err := filepath.Abs(opts.ModuleRoot)
	if err != nil {
		return nil, err
	}
	dir := opts.SourceDir
	if dir == "" {
		dir = "."
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("source directory %s does not exist", dir)
	}

	var sources []Source
	err = filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if p != dir && IsSkippedFolder(info.Name()) {
				return filepath.SkipDir
			}
			if excluded(rel, opts.Exclude) {
				return filepath.SkipDir
			}
			return nil
		}

		name := info.Name()
		if !strings.HasSuffix(name, ".go") ||
			strings.HasSuffix(name, "_test.go") ||
			strings.HasPrefix(name, GeneratedFilePrefix) ||
			excluded(rel, opts.Exclude) {
			return nil
		}

		content, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if !bytes.Contains(content, []byte(DirectivePrefix)) {
			return nil
		}

		sources = append(sources, Source{
			Path:       p,
			Identifier: importPath(opts.ModulePath, rel),
			Content:    content,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover failed: %w", err)
	}
	return sources, nil
}

func excluded(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// importPath derives the package import path of a file. It returns ""
// when the file lies outside the module.
func importPath(modulePath, relFile string) string {
	if modulePath == "" || strings.HasPrefix(relFile, "../") {
		return ""
	}
	dir := path.Dir(relFile)
	if dir == "." {
		return modulePath
	}
	return modulePath + "/" + dir
}

// FindModule walks up from dir to the nearest go.mod and returns the
// module root and module path.
func FindModule(dir string) (root, modulePath string, err error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", "", err
	}
	for {
		gomod := filepath.Join(abs, "go.mod")
		if _, err := os.Stat(gomod); err == nil {
			modulePath, err := ReadModulePath(gomod)
			if err != nil {
				return "", "", err
			}
			return abs, modulePath, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", "", fmt.Errorf("go.mod not found in %s or any parent directory", dir)
		}
		abs = parent
	}
}

// ReadModulePath returns the module path declared in a go.mod file.
func ReadModulePath(gomod string) (string, error) {
	content, err := os.ReadFile(gomod)
	if err != nil {
		return "", err
	}

	lines := strings.Split(string(content), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			return strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "module ")), `"`), nil
		}
	}

	return "", fmt.Errorf("module name not found in %s", gomod)
}
