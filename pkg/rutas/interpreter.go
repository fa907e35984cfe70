package rutas

import (
	"context"
	"fmt"

	"github.com/abdul-hamid-achik/rutas/pkg/route"
	"github.com/abdul-hamid-achik/rutas/pkg/trie"
)

// Call carries everything an interpreted handler may ask for.
type Call struct {
	App     any
	Request Request
	Route   *route.Route
	// Captures maps capture names to parsed values (int8 ... string)
	Captures map[string]any
	// Query is nil when the route has no query clause, or when the handler
	// takes an optional query and the request has none
	Query Values
	// Form is nil when the route has no form, or when the handler takes an
	// optional form and the request is not a POST
	Form     Values
	Document Document
	DB       DB
	Cache    Cache
}

// HandlerFunc is an interpreted route handler.
type HandlerFunc func(ctx context.Context, call *Call) (Response, error)

// DispatchFunc is the entry point of a generated or interpreted
// dispatcher.
type DispatchFunc func(ctx context.Context, app any, req Request) (Response, error)

// Interpreter walks a route trie per request. It matches exactly like a
// generated dispatcher.
type Interpreter struct {
	root     *trie.Node
	handlers map[string]HandlerFunc
}

// NewInterpreter binds handlers, keyed by route.Handler.ID, to the routes
// of root. Every terminal route needs a handler.
func NewInterpreter(root *trie.Node, handlers map[string]HandlerFunc) (*Interpreter, error) {
	for _, t := range root.Flatten() {
		if _, ok := handlers[t.Route.Handler.ID()]; !ok {
			return nil, fmt.Errorf("%s: no handler bound for %s", t.Route.Location, t.Route.Handler.ID())
		}
	}
	return &Interpreter{root: root, handlers: handlers}, nil
}

// Match finds the route for path and its captures. It returns ErrNotFound
// when nothing matches. Matching is greedy: the first candidate that
// accepts a segment is never revisited.
func (in *Interpreter) Match(path string) (*route.Route, map[string]any, error) {
	segs := Segments(path)
	node := in.root
	captures := make(map[string]any)

	for d := 0; ; d++ {
		if d == len(segs) {
			if node.Terminal == nil {
				return nil, nil, ErrNotFound
			}
			return node.Terminal, captures, nil
		}
		next := step(node, segs[d], d == len(segs)-1, captures)
		if next == nil {
			return nil, nil, ErrNotFound
		}
		node = next
	}
}

func step(node *trie.Node, seg string, last bool, captures map[string]any) *trie.Node {
	if seg == "" && last {
		if index := node.Index(); index != nil {
			return index
		}
	}
	for _, child := range node.Literals() {
		if child.Part.Text == seg {
			return child
		}
	}
	for _, child := range node.Captures() {
		if v, ok := parseCapture(child.Part.Type, seg); ok {
			captures[child.Part.Name] = v
			return child
		}
	}
	return nil
}

func parseCapture(t route.CaptureType, seg string) (any, bool) {
	switch t {
	case route.CaptureInt8:
		return ParseInt8(seg)
	case route.CaptureUint8:
		return ParseUint8(seg)
	case route.CaptureInt32:
		return ParseInt32(seg)
	case route.CaptureUint32:
		return ParseUint32(seg)
	case route.CaptureInt64:
		return ParseInt64(seg)
	case route.CaptureUint64:
		return ParseUint64(seg)
	case route.CaptureUint:
		return ParseUint(seg)
	default:
		return ParseString(seg)
	}
}

// Dispatch matches the request and calls the bound handler.
func (in *Interpreter) Dispatch(ctx context.Context, app any, req Request) (Response, error) {
	r, captures, err := in.Match(req.Path())
	if err != nil {
		return nil, err
	}
	if err := MethodAllowed(req.Method(), r.Spec.MethodStrings()...); err != nil {
		return nil, err
	}

	name := r.Handler.String()
	call := &Call{App: app, Request: req, Route: r, Captures: captures}
	sig := r.Signature

	// Fields are parsed only for a handler that takes them, as generated
	// wrappers do.
	if sig.Has(route.ParamQuery) || (sig.Has(route.ParamQueryOptional) && req.HasQuery()) {
		if call.Query, err = Assemble(r.Spec.Query, req.QueryPairs()); err != nil {
			return nil, err
		}
	}
	if sig.Has(route.ParamForm) || (sig.Has(route.ParamFormOptional) && req.IsPost()) {
		pairs, err := req.FormPairs(ctx)
		if err != nil {
			return nil, err
		}
		if call.Form, err = Assemble(r.Spec.Form, pairs); err != nil {
			return nil, err
		}
	}

	if sig.Has(route.ParamDocument) {
		if call.Document, err = AcquireDocument(ctx, name, app, req); err != nil {
			return nil, err
		}
	}
	if sig.Has(route.ParamDatabase) {
		if call.DB, err = AcquireDatabase(ctx, name, app); err != nil {
			return nil, err
		}
	}
	if sig.Has(route.ParamCache) {
		if call.Cache, err = AcquireCache(ctx, name, app); err != nil {
			return nil, err
		}
	}

	resp, err := in.handlers[r.Handler.ID()](ctx, call)
	if err != nil {
		return nil, err
	}
	return CheckResponse(name, resp, r.Spec.Responses...)
}
