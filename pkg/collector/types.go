// Package collector finds route directives in Go sources.
//
// A route directive is a `//route:http` comment in the doc comment of a
// top-level function, optionally continued on following `//route:` lines:
//
//	//route:http GET /user/{id:uint32}?tab=Option<string>;
//	//route: return HTML|NotFound;
//	func UserShow(app *App, path UserShowPath, query UserShowQuery) rutas.Response {
//
// The collector parses each directive and the function signature. Broken
// directives become warnings and the route is skipped; duplicate
// directives and unresolvable handlers abort collection.
package collector

import (
	"fmt"

	"github.com/abdul-hamid-achik/rutas/pkg/route"
)

const (
	// DirectivePrefix starts a route directive
	DirectivePrefix = "//route:http"
	// ContinuationPrefix starts a continuation line
	ContinuationPrefix = "//route:"
)

// Source is one Go file handed to the collector.
type Source struct {
	// Path is the file path used in diagnostics
	Path string
	// Identifier is the import path of the file's package
	Identifier string
	// Content is the file text
	Content []byte
}

// Result holds the routes and diagnostics of one collection run.
type Result struct {
	// Routes are in source order
	Routes []route.Route
	// Warnings are non-fatal issues; each one dropped a route
	Warnings []Warning
}

// Warning is a non-fatal issue: the offending route was skipped.
type Warning struct {
	Location route.Location
	Message  string
}

func (w Warning) Error() string {
	return fmt.Sprintf("%s: %s", w.Location, w.Message)
}

// DuplicateAnnotationError reports two directives on one function.
type DuplicateAnnotationError struct {
	Handler string
	First   route.Location
	Second  route.Location
}

func (e *DuplicateAnnotationError) Error() string {
	return fmt.Sprintf("duplicate route directive on %s: %s and %s", e.Handler, e.First, e.Second)
}

// MissingHandlerError reports a handler the dispatcher could not call.
type MissingHandlerError struct {
	Handler  string
	Location route.Location
	Reason   string
}

func (e *MissingHandlerError) Error() string {
	return fmt.Sprintf("%s: cannot reference handler %s: %s", e.Location, e.Handler, e.Reason)
}
