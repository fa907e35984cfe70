package collector

import (
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"log"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/rutas/pkg/grammar"
	"github.com/abdul-hamid-achik/rutas/pkg/lexer"
	"github.com/abdul-hamid-achik/rutas/pkg/route"
)

// Collector extracts routes from Go sources.
type Collector struct {
	fset    *token.FileSet
	logger  *log.Logger
	verbose bool
}

// New creates a Collector. A nil logger discards output.
func New(logger *log.Logger) *Collector {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Collector{
		fset:   token.NewFileSet(),
		logger: logger,
	}
}

// SetVerbose enables logging of every route found.
func (c *Collector) SetVerbose(v bool) {
	c.verbose = v
}

// Collect parses every source and returns the routes found. The returned
// error is non-nil only for fatal problems; per-route problems are
// reported as warnings.
func (c *Collector) Collect(sources []Source) (*Result, error) {
	result := &Result{}
	for _, src := range sources {
		if err := c.collectFile(src, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// directive is one `//route:http` directive with its continuation lines.
type directive struct {
	spans     []lexer.Span
	location  route.Location
	// malformed holds `//route:` lines missing the space after the colon
	malformed []route.Location
}

func (c *Collector) collectFile(src Source, result *Result) error {
	file, err := parser.ParseFile(c.fset, src.Path, src.Content, parser.ParseComments)
	if err != nil {
		result.Warnings = append(result.Warnings, Warning{
			Location: route.Location{File: src.Path},
			Message:  "failed to parse: " + err.Error(),
		})
		return nil
	}

	imports := fileImports(file)
	attached := make(map[*ast.CommentGroup]bool)

	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Doc == nil {
			continue
		}

		d, err := c.extractDirective(fn)
		if err != nil {
			return err
		}
		if d == nil {
			continue
		}
		attached[fn.Doc] = true
		for _, loc := range d.malformed {
			result.Warnings = append(result.Warnings, Warning{
				Location: loc,
				Message:  "continuation line ignored: `//route:` must be followed by a space",
			})
		}

		r, warning := c.buildRoute(src, file, fn, d, imports)
		if warning != nil {
			result.Warnings = append(result.Warnings, *warning)
			continue
		}
		if r.Handler.ImportPath == "" {
			return &MissingHandlerError{
				Handler:  r.Handler.String(),
				Location: r.Location,
				Reason:   "file is outside the module, its import path is unknown",
			}
		}

		if c.verbose {
			c.logger.Printf("found %s -> %s (%s)", r.Spec.RouteLine(), r.Handler, r.Location)
		}
		result.Routes = append(result.Routes, r)
	}

	// Directives anywhere else are almost always a mistake.
	for _, group := range file.Comments {
		if attached[group] {
			continue
		}
		for _, comment := range group.List {
			if isDirective(comment.Text) {
				pos := c.fset.Position(comment.Slash)
				result.Warnings = append(result.Warnings, Warning{
					Location: route.Location{File: src.Path, Line: pos.Line, Column: pos.Column},
					Message:  "route directive is not attached to a function declaration",
				})
			}
		}
	}
	return nil
}

func isDirective(text string) bool {
	if !strings.HasPrefix(text, DirectivePrefix) {
		return false
	}
	rest := text[len(DirectivePrefix):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

// isContinuation reports whether text is `//route:` followed by whitespace.
func isContinuation(text string) bool {
	rest, ok := strings.CutPrefix(text, ContinuationPrefix)
	return ok && rest != "" && (rest[0] == ' ' || rest[0] == '\t')
}

func (c *Collector) extractDirective(fn *ast.FuncDecl) (*directive, error) {
	var d *directive
	for _, comment := range fn.Doc.List {
		pos := c.fset.Position(comment.Slash)
		loc := route.Location{File: pos.Filename, Line: pos.Line, Column: pos.Column}

		var prefix string
		switch {
		case isDirective(comment.Text):
			if d != nil {
				return nil, &DuplicateAnnotationError{
					Handler: fn.Name.Name,
					First:   d.location,
					Second:  loc,
				}
			}
			d = &directive{location: loc}
			prefix = DirectivePrefix
		case d != nil && isContinuation(comment.Text):
			prefix = ContinuationPrefix
		case d != nil && strings.HasPrefix(comment.Text, ContinuationPrefix):
			d.malformed = append(d.malformed, loc)
			continue
		default:
			continue
		}

		d.spans = append(d.spans, lexer.Span{
			Text: comment.Text[len(prefix):],
			Pos: lexer.Pos{
				File:   pos.Filename,
				Line:   pos.Line,
				Column: pos.Column + len(prefix),
				Offset: pos.Offset + len(prefix),
			},
		})
	}
	return d, nil
}

func (c *Collector) buildRoute(src Source, file *ast.File, fn *ast.FuncDecl, d *directive, imports map[string]string) (route.Route, *Warning) {
	r := route.Route{
		Location: d.location,
		Handler: route.Handler{
			Name:       fn.Name.Name,
			Package:    file.Name.Name,
			ImportPath: src.Identifier,
			Dir:        filepath.Dir(src.Path),
			Doc:        docText(fn.Doc),
		},
	}
	warn := func(loc route.Location, msg string) (route.Route, *Warning) {
		return r, &Warning{Location: loc, Message: msg}
	}

	if fn.Recv != nil {
		return warn(d.location, "route handler "+fn.Name.Name+" must be a function, not a method")
	}
	if fn.Type.TypeParams != nil && len(fn.Type.TypeParams.List) > 0 {
		return warn(d.location, "route handler "+fn.Name.Name+" must not have type parameters")
	}

	spec, err := grammar.ParseAnnotation(d.spans)
	if err != nil {
		return warn(errorLocation(err, d.location), errorMessage(err))
	}
	r.Spec = spec

	sig, err := grammar.ParseSignature(grammar.SignatureSource{
		Handler: fn.Name.Name,
		Params:  c.span(src.Content, fn.Type.Params.Opening+1, fn.Type.Params.Closing),
		Results: c.results(src.Content, fn.Type),
		Imports: imports,
	})
	if err != nil {
		return warn(errorLocation(err, d.location), errorMessage(err))
	}
	if err := grammar.CheckSignature(spec, sig); err != nil {
		return warn(d.location, fn.Name.Name+": "+err.Error())
	}
	r.Signature = sig
	return r, nil
}

// span returns the source text between two positions of the file.
func (c *Collector) span(content []byte, from, to token.Pos) lexer.Span {
	start := c.fset.Position(from)
	end := c.fset.Position(to)
	return lexer.Span{
		Text: string(content[start.Offset:end.Offset]),
		Pos: lexer.Pos{
			File:   start.Filename,
			Line:   start.Line,
			Column: start.Column,
			Offset: start.Offset,
		},
	}
}

func (c *Collector) results(content []byte, ft *ast.FuncType) lexer.Span {
	if ft.Results == nil {
		return c.span(content, ft.Params.Closing+1, ft.Params.Closing+1)
	}
	return c.span(content, ft.Results.Pos(), ft.Results.End())
}

func errorLocation(err error, fallback route.Location) route.Location {
	var gerr *lexer.GrammarError
	if errors.As(err, &gerr) && gerr.Pos.IsValid() {
		return route.Location{File: gerr.Pos.File, Line: gerr.Pos.Line, Column: gerr.Pos.Column}
	}
	return fallback
}

func errorMessage(err error) string {
	var gerr *lexer.GrammarError
	if errors.As(err, &gerr) {
		return gerr.Message
	}
	return err.Error()
}

// docText returns the doc comment without route directive lines.
func docText(group *ast.CommentGroup) string {
	var lines []string
	for _, comment := range group.List {
		if strings.HasPrefix(comment.Text, ContinuationPrefix) {
			continue
		}
		text := strings.TrimPrefix(comment.Text, "//")
		text = strings.TrimPrefix(text, "/*")
		text = strings.TrimSuffix(text, "*/")
		lines = append(lines, strings.TrimPrefix(text, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

var majorVersionRe = regexp.MustCompile(`^v[0-9]+$`)

// fileImports maps the names a file uses for its imports to import paths.
func fileImports(file *ast.File) map[string]string {
	imports := make(map[string]string)
	for _, spec := range file.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		var name string
		if spec.Name != nil {
			name = spec.Name.Name
		} else {
			parts := strings.Split(p, "/")
			name = parts[len(parts)-1]
			if majorVersionRe.MatchString(name) && len(parts) > 1 {
				name = parts[len(parts)-2]
			}
			name = strings.TrimPrefix(name, "go-")
			name = strings.ReplaceAll(name, "-", "")
		}
		if name == "_" || name == "." {
			continue
		}
		imports[name] = p
	}
	return imports
}
