package route

import (
	"strings"
	"unicode"
)

// ParamKind classifies a handler parameter by what the dispatcher passes.
type ParamKind int

const (
	ParamContext ParamKind = iota
	ParamApp
	ParamDocument
	ParamDatabase
	ParamCache
	ParamRequest
	ParamPath
	ParamQuery
	ParamQueryOptional
	ParamForm
	ParamFormOptional
	// ParamOptional is any other pointer parameter; it is always passed nil
	ParamOptional
)

var paramKindNames = map[ParamKind]string{
	ParamContext:       "context",
	ParamApp:           "app",
	ParamDocument:      "document",
	ParamDatabase:      "database",
	ParamCache:         "cache",
	ParamRequest:       "request",
	ParamPath:          "path",
	ParamQuery:         "query string",
	ParamQueryOptional: "query string",
	ParamForm:          "post form",
	ParamFormOptional:  "post form",
	ParamOptional:      "optional",
}

func (k ParamKind) String() string {
	return paramKindNames[k]
}

// Param is one handler parameter.
type Param struct {
	Name string
	Kind ParamKind
	// Type is the type expression as written (e.g., "*app.App")
	Type string
	// Import is the import path of the type's package qualifier, if any
	Import string
}

// Qualifier returns the package qualifier of the parameter type.
func (p Param) Qualifier() string {
	t := strings.TrimPrefix(p.Type, "*")
	if i := strings.IndexByte(t, '.'); i >= 0 {
		return t[:i]
	}
	return ""
}

// ReturnShape says whether a handler can fail.
type ReturnShape int

const (
	// ReturnBare is `rutas.Response`
	ReturnBare ReturnShape = iota
	// ReturnFallible is `(rutas.Response, error)`
	ReturnFallible
)

func (r ReturnShape) String() string {
	if r == ReturnFallible {
		return "(Response, error)"
	}
	return "Response"
}

// Signature is the parsed parameter list and result of a handler.
type Signature struct {
	Params []Param
	Return ReturnShape
}

// Find returns the first parameter of kind k.
func (s Signature) Find(kinds ...ParamKind) (Param, bool) {
	for _, p := range s.Params {
		for _, k := range kinds {
			if p.Kind == k {
				return p, true
			}
		}
	}
	return Param{}, false
}

// Has reports whether any parameter has one of kinds.
func (s Signature) Has(kinds ...ParamKind) bool {
	_, ok := s.Find(kinds...)
	return ok
}

// Capabilities lists the application providers the handler needs.
func (s Signature) Capabilities() []string {
	var out []string
	for _, p := range s.Params {
		switch p.Kind {
		case ParamDocument, ParamDatabase, ParamCache:
			out = append(out, p.Kind.String())
		}
	}
	return out
}

// GoName converts a route identifier (snake_case, kebab-case or plain) into
// an exported Go identifier: user_id -> UserID, page -> Page.
func GoName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	var sb strings.Builder
	for _, part := range parts {
		if upper := strings.ToUpper(part); commonInitialisms[upper] {
			sb.WriteString(upper)
			continue
		}
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		sb.WriteString(string(runes))
	}
	if sb.Len() == 0 {
		return "X"
	}
	out := sb.String()
	if unicode.IsDigit([]rune(out)[0]) {
		return "X" + out
	}
	return out
}

var commonInitialisms = map[string]bool{
	"ID":   true,
	"URL":  true,
	"URI":  true,
	"API":  true,
	"HTML": true,
	"HTTP": true,
	"JSON": true,
	"UUID": true,
	"IP":   true,
}
