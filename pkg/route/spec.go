package route

import (
	"fmt"
	"strings"
)

// Spec is the parsed form of one route directive.
type Spec struct {
	// Methods is non-empty and duplicate-free, in declared order
	Methods []Method
	// Path has at least one part
	Path Path
	// Query is the query-string schema; HasQuery distinguishes an absent
	// clause from an empty one
	Query    Schema
	HasQuery bool
	// Form is the post-body schema declared by the `form` instruction
	Form    Schema
	HasForm bool
	// Responses is the permitted response kind set, in declared order
	Responses []ResponseKind
	// Debug makes generated structs implement fmt.Stringer
	Debug bool
}

// RouteLine renders the method list, path and query clause.
func (s Spec) RouteLine() string {
	var sb strings.Builder
	for i, m := range s.Methods {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(string(m))
	}
	sb.WriteByte(' ')
	sb.WriteString(s.Path.String())
	if s.HasQuery {
		sb.WriteByte('?')
		sb.WriteString(s.Query.String())
	}
	sb.WriteByte(';')
	return sb.String()
}

// String renders the full directive in canonical form. Parsing the result
// yields an equal Spec.
func (s Spec) String() string {
	var sb strings.Builder
	sb.WriteString(s.RouteLine())
	if s.HasForm {
		sb.WriteString(" form ")
		sb.WriteString(s.Form.String())
		sb.WriteByte(';')
	}
	if s.Debug {
		sb.WriteString(" debug;")
	}
	if len(s.Responses) > 0 {
		sb.WriteString(" return ")
		for i, k := range s.Responses {
			if i > 0 {
				sb.WriteByte('|')
			}
			sb.WriteString(k.String())
		}
		sb.WriteByte(';')
	}
	return sb.String()
}

// Allows reports whether the route accepts method m.
func (s Spec) Allows(m string) bool {
	for _, allowed := range s.Methods {
		if string(allowed) == m {
			return true
		}
	}
	return false
}

// Permits reports whether k is a declared response kind.
func (s Spec) Permits(k ResponseKind) bool {
	for _, declared := range s.Responses {
		if declared == k {
			return true
		}
	}
	return false
}

// MethodStrings returns the methods as plain strings.
func (s Spec) MethodStrings() []string {
	out := make([]string, len(s.Methods))
	for i, m := range s.Methods {
		out[i] = string(m)
	}
	return out
}

// Location is where a route directive was written.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.Line == 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Handler identifies the Go function a route dispatches to.
type Handler struct {
	// Name is the function name (e.g., "UserEdit")
	Name string
	// Package is the Go package name
	Package string
	// ImportPath is the full import path of the package
	ImportPath string
	// Dir is the directory holding the package sources
	Dir string
	// Doc is the function doc comment with route directives removed
	Doc string
}

// ID is the globally unique handler reference.
func (h Handler) ID() string {
	return h.ImportPath + "." + h.Name
}

func (h Handler) String() string {
	return h.Package + "." + h.Name
}

// Route pairs a parsed directive with its handler.
type Route struct {
	Spec      Spec
	Signature Signature
	Handler   Handler
	Location  Location
}
