package codegen

import (
	"fmt"
	pathpkg "path"
	"slices"
	"strconv"
	"strings"
)

// importSet tracks the imports of one generated file by name.
type importSet struct {
	byName map[string]string
	byPath map[string]string
	// reserved names are locals of generated code
	reserved map[string]bool
}

func newImportSet(reserved ...string) *importSet {
	s := &importSet{
		byName:   make(map[string]string),
		byPath:   make(map[string]string),
		reserved: make(map[string]bool),
	}
	for _, r := range reserved {
		s.reserved[r] = true
	}
	return s
}

// add imports path under name. It fails when name is taken by another
// path or by a generated local.
func (s *importSet) add(name, path string) error {
	if existing, ok := s.byName[name]; ok {
		if existing != path {
			return fmt.Errorf("import name %q is used for both %s and %s", name, existing, path)
		}
		return nil
	}
	if s.reserved[name] || isGeneratedLocal(name) {
		return fmt.Errorf("import name %q collides with a name used by generated code, rename the import", name)
	}
	s.byName[name] = path
	s.byPath[path] = name
	return nil
}

// alias imports path under a fresh name derived from base and returns it.
func (s *importSet) alias(base, path string) string {
	if name, ok := s.byPath[path]; ok {
		return name
	}
	name := base
	for i := 2; ; i++ {
		if _, taken := s.byName[name]; !taken && !s.reserved[name] && !isGeneratedLocal(name) {
			break
		}
		name = base + strconv.Itoa(i)
	}
	s.byName[name] = path
	s.byPath[path] = name
	return name
}

// lines renders the standard library or the other imports, sorted.
func (s *importSet) lines(std bool) []string {
	var out []string
	for name, path := range s.byName {
		if isStd(path) != std {
			continue
		}
		if name == pathpkg.Base(path) {
			out = append(out, strconv.Quote(path))
			continue
		}
		out = append(out, name+" "+strconv.Quote(path))
	}
	slices.Sort(out)
	return out
}

func isStd(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}

// isGeneratedLocal matches the numbered locals of generated code: argN,
// cN, sN and fN.
func isGeneratedLocal(name string) bool {
	for _, prefix := range []string{"arg", "c", "s", "f"} {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok || rest == "" {
			continue
		}
		if _, err := strconv.Atoi(rest); err == nil {
			return true
		}
	}
	return false
}
