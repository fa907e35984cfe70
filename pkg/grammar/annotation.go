package grammar

import (
	"strings"

	"github.com/abdul-hamid-achik/rutas/pkg/lexer"
	"github.com/abdul-hamid-achik/rutas/pkg/route"
)

// Instruction keywords that may follow the route line.
const (
	instrReturn = "return"
	instrForm   = "form"
	instrDebug  = "debug"
)

// ParseAnnotation parses a full route directive: the route line followed
// by `return`, `form` and `debug` instructions. Exactly one `return`
// instruction is required.
func ParseAnnotation(spans []lexer.Span) (route.Spec, error) {
	c, err := lexer.ParseSpans(spans)
	if err != nil {
		return route.Spec{}, err
	}
	return parseAnnotation(c)
}

// ParseAnnotationString is ParseAnnotation for a single piece of text.
func ParseAnnotationString(text string, origin lexer.Pos) (route.Spec, error) {
	return ParseAnnotation([]lexer.Span{{Text: text, Pos: origin}})
}

func parseAnnotation(c *lexer.Cursor) (route.Spec, error) {
	line, err := ParseRouteLine(c)
	if err != nil {
		return route.Spec{}, err
	}
	spec := route.Spec{
		Methods:  line.Methods,
		Path:     line.Path,
		Query:    line.Query,
		HasQuery: line.HasQuery,
	}

	seen := make(map[string]bool)
	var debugPos lexer.Pos
	for !c.AtEnd() {
		name, err := c.ExpectIdent()
		if err != nil {
			return route.Spec{}, c.Error("expected instruction (return, form, or debug)")
		}
		if seen[name] {
			return route.Spec{}, c.Errorf("duplicate `%s` instruction", name)
		}

		switch name {
		case instrReturn:
			c.Step()
			kinds, err := ParseResponseKinds(c)
			if err != nil {
				return route.Spec{}, err
			}
			spec.Responses = kinds

		case instrForm:
			c.Step()
			form, err := ParseFieldSchema(c)
			if err != nil {
				return route.Spec{}, err
			}
			if err := c.TakePunct(lexer.ClassSemicolon); err != nil {
				return route.Spec{}, c.Error(errTerminator)
			}
			spec.Form = form
			spec.HasForm = true

		case instrDebug:
			debugPos = c.Pos()
			c.Step()
			if err := c.TakePunct(lexer.ClassSemicolon); err != nil {
				return route.Spec{}, c.Error(errTerminator)
			}
			spec.Debug = true

		default:
			return route.Spec{}, c.Errorf("invalid instruction: `%s`", name)
		}
		seen[name] = true
	}

	if !seen[instrReturn] {
		return route.Spec{}, c.Error("missing `return` instruction")
	}
	if spec.Debug {
		if name, ok := stringerClash(spec); ok {
			return route.Spec{}, lexer.Errorf(debugPos, "`debug` conflicts with field `%s`: its Go name collides with the String method", name)
		}
	}
	return spec, nil
}

// stringerClash finds a capture or field whose Go name is String, which
// the structs generated for `debug` cannot hold next to their String method.
func stringerClash(spec route.Spec) (string, bool) {
	var names []string
	for _, p := range spec.Path {
		if p.Kind == route.PartCapture {
			names = append(names, p.Name)
		}
	}
	for _, f := range spec.Query {
		names = append(names, f.Name)
	}
	for _, f := range spec.Form {
		names = append(names, f.Name)
	}
	for _, name := range names {
		if route.GoName(name) == "String" {
			return name, true
		}
	}
	return "", false
}

// ParseResponseKinds parses `Kind ('|' Kind)* ';'` after the `return`
// keyword.
func ParseResponseKinds(c *lexer.Cursor) ([]route.ResponseKind, error) {
	var kinds []route.ResponseKind
	for {
		name, err := c.ExpectIdent()
		if err != nil {
			return nil, c.Error(responseKindError())
		}
		k, ok := route.ParseResponseKind(name)
		if !ok {
			return nil, c.Error(responseKindError())
		}
		for _, seen := range kinds {
			if seen == k {
				return nil, c.Errorf("duplicate `%s` return type", name)
			}
		}
		kinds = append(kinds, k)
		c.Step()

		switch c.Class() {
		case lexer.ClassPipe:
			c.Step()
		case lexer.ClassSemicolon:
			c.Step()
			return kinds, nil
		default:
			return nil, c.Error("expected `|`, or `;`")
		}
	}
}

func responseKindError() string {
	names := make([]string, 0, len(route.ResponseKinds()))
	for _, k := range route.ResponseKinds() {
		names = append(names, k.String())
	}
	return "expected response kind (" + strings.Join(names, ", ") + ")"
}
