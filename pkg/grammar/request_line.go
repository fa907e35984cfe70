// Package grammar parses route directives and handler signatures.
//
// The route-line grammar:
//
//	route-line   := method-list path query-string? ';'
//	method-list  := METHOD ('|' METHOD)*
//	path         := '/' segment ('/' segment)* ('/')? ('?' | ';')
//	segment      := literal-seg | capture-seg
//	literal-seg  := IDENT (('-'|'.'|'_') IDENT)*
//	capture-seg  := '{' IDENT ':' TYPE_NAME '}'
//	query-string := part ('&' part)*
//	part         := IDENT ('=' value-shape)?
//	value-shape  := TYPE | 'Option<' TYPE '>' | 'Vec<' TYPE '>' | 'HashSet<' TYPE '>'
//
// A bare '/' and a trailing '/' both produce an index part.
package grammar

import (
	"github.com/abdul-hamid-achik/rutas/pkg/lexer"
	"github.com/abdul-hamid-achik/rutas/pkg/route"
)

const (
	errMethod        = "expected http method (GET, POST, PUT, DELETE, PATCH)"
	errDupMethod     = "duplicate http method"
	errAfterMethod   = "expected `|` to add another http method, or `/` to start the path"
	errSegment       = "expected path segment, `?`, or `;`"
	errAfterSegment  = "expected `/`, `?`, or `;`"
	errCaptureType   = "expected `int8`, `uint8`, `int32`, `uint32`, `int64`, `uint64`, `uint`, or `string`"
	errCaptureEnd    = "expected end of path component"
	errTerminator    = "expected `;`"
	errDupCapture    = "duplicate capture name `%s`"
	errCaptureColon  = "expected `:`"
	errCaptureName   = "expected capture name"
	errSegmentIdents = "expected Ident after `%s`"
)

// RouteLine is the result of parsing a route line on its own.
type RouteLine struct {
	Methods  []route.Method
	Path     route.Path
	Query    route.Schema
	HasQuery bool
}

// ParseRouteLine parses a route line, consuming its terminating `;`.
func ParseRouteLine(c *lexer.Cursor) (RouteLine, error) {
	var line RouteLine

	methods, err := parseMethods(c)
	if err != nil {
		return line, err
	}
	line.Methods = methods

	path, err := parsePath(c)
	if err != nil {
		return line, err
	}
	line.Path = path

	if c.Is(lexer.ClassQuestionMark) {
		c.Step()
		query, err := ParseFieldSchema(c)
		if err != nil {
			return line, err
		}
		line.Query = query
		line.HasQuery = true
	}

	if err := c.TakePunct(lexer.ClassSemicolon); err != nil {
		return line, c.Error(errTerminator)
	}
	return line, nil
}

// ParseRouteLineString parses text as a route line and requires that
// nothing follows it.
func ParseRouteLineString(text string, origin lexer.Pos) (RouteLine, error) {
	c, err := lexer.Parse(text, origin)
	if err != nil {
		return RouteLine{}, err
	}
	line, err := ParseRouteLine(c)
	if err != nil {
		return line, err
	}
	if err := c.TakeEnd(); err != nil {
		return line, err
	}
	return line, nil
}

func parseMethods(c *lexer.Cursor) ([]route.Method, error) {
	var methods []route.Method
	for {
		name, err := c.ExpectIdent()
		if err != nil {
			return nil, c.Error(errMethod)
		}
		m, ok := route.ParseMethod(name)
		if !ok {
			return nil, c.Error(errMethod)
		}
		for _, seen := range methods {
			if seen == m {
				return nil, c.Error(errDupMethod)
			}
		}
		methods = append(methods, m)
		c.Step()

		switch c.Class() {
		case lexer.ClassPipe:
			c.Step()
		case lexer.ClassSlash:
			return methods, nil
		default:
			return nil, c.Error(errAfterMethod)
		}
	}
}

// parsePath parses from the leading '/' up to, not including, the '?' or
// ';' that ends the path.
func parsePath(c *lexer.Cursor) (route.Path, error) {
	if err := c.TakePunct(lexer.ClassSlash); err != nil {
		return nil, c.Error(errAfterMethod)
	}

	var path route.Path
	captures := make(map[string]bool)
	for {
		// Directly after a '/'
		switch c.Class() {
		case lexer.ClassQuestionMark, lexer.ClassSemicolon, lexer.ClassEnd:
			return append(path, route.Index()), nil

		case lexer.ClassIdent:
			lit, err := parseLiteralSegment(c)
			if err != nil {
				return nil, err
			}
			path = append(path, route.Literal(lit))

		case lexer.ClassBraceGroup:
			pos := c.Pos()
			part, err := parseCaptureSegment(c)
			if err != nil {
				return nil, err
			}
			key := route.GoName(part.Name)
			if captures[key] {
				return nil, lexer.Errorf(pos, errDupCapture, part.Name)
			}
			captures[key] = true
			path = append(path, part)

		default:
			return nil, c.Error(errSegment)
		}

		switch c.Class() {
		case lexer.ClassSlash:
			c.Step()
		case lexer.ClassQuestionMark, lexer.ClassSemicolon, lexer.ClassEnd:
			return path, nil
		default:
			return nil, c.Error(errAfterSegment)
		}
	}
}

func parseLiteralSegment(c *lexer.Cursor) (string, error) {
	text, err := c.TakeIdent()
	if err != nil {
		return "", err
	}
	for {
		var sep string
		switch c.Class() {
		case lexer.ClassDash:
			sep = "-"
		case lexer.ClassDot:
			sep = "."
		case lexer.ClassUnderscore:
			sep = "_"
		default:
			return text, nil
		}
		c.Step()
		next, err := c.TakeIdent()
		if err != nil {
			return "", c.Errorf(errSegmentIdents, sep)
		}
		text += sep + next
	}
}

func parseCaptureSegment(c *lexer.Cursor) (route.PathPart, error) {
	sub, err := c.TakeBraceGroup()
	if err != nil {
		return route.PathPart{}, err
	}

	name, err := sub.TakeIdent()
	if err != nil {
		return route.PathPart{}, sub.Error(errCaptureName)
	}
	if err := sub.TakePunct(lexer.ClassColon); err != nil {
		return route.PathPart{}, sub.Error(errCaptureColon)
	}

	typeName, err := sub.ExpectIdent()
	if err != nil {
		return route.PathPart{}, sub.Error(errCaptureType)
	}
	t, ok := route.ParseCaptureType(typeName)
	if !ok {
		return route.PathPart{}, sub.Error(errCaptureType)
	}
	sub.Step()

	if !sub.AtEnd() {
		return route.PathPart{}, sub.Error(errCaptureEnd)
	}
	return route.Capture(name, t), nil
}
