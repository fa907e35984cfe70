package codegen

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/rutas/pkg/route"
	"github.com/abdul-hamid-achik/rutas/pkg/trie"
)

var dispatcherLocals = []string{"ctx", "app", "req", "segs", "ok", "Dispatch", "Routes"}

// dispatcher lowers the trie into one nested Dispatch function. Each node
// becomes a block that tests, in order: end of path, the index child, the
// literal children and the capture children. A block that enters a child
// returns from inside it, so a choice is never revisited.
type dispatcher struct {
	e        emitter
	handlers map[string]string // handler import path -> qualifier ("" for the output package)
}

func (g *Generator) dispatcherFile(root *trie.Node, terminals []trie.Terminal) (File, error) {
	imports := newImportSet(dispatcherLocals...)
	_ = imports.add("context", "context")
	_ = imports.add("rutas", g.config.RuntimeImport)

	d := &dispatcher{handlers: make(map[string]string)}
	for _, t := range terminals {
		h := t.Route.Handler
		if _, ok := d.handlers[h.ImportPath]; ok {
			continue
		}
		if h.ImportPath == g.config.OutputImport {
			d.handlers[h.ImportPath] = ""
			continue
		}
		d.handlers[h.ImportPath] = imports.alias(h.Package, h.ImportPath)
	}

	e := &d.e
	e.line("// Dispatch routes a request to its handler. It returns rutas.ErrNotFound")
	e.line("// when no route matches the path.")
	e.line("func Dispatch(ctx context.Context, app any, req rutas.Request) (rutas.Response, error) {")
	e.line("segs := rutas.Segments(req.Path())")
	d.node(root, nil)
	e.line("}")
	e.line("")

	g.emitRouteTable(e, terminals)

	path := filepath.Join(g.config.OutputDir, DispatcherFileName)
	return render(path, g.config.OutputPackage, imports, e.String())
}

// node emits the block of n at depth n.Depth. captures holds the names of
// the capture variables bound on the way down.
func (d *dispatcher) node(n *trie.Node, captures []string) {
	e := &d.e
	depth := n.Depth

	e.line("if len(segs) == %d {", depth)
	if n.Terminal != nil {
		d.call(n.Terminal, captures)
	} else {
		e.line("return nil, rutas.ErrNotFound")
	}
	e.line("}")

	if len(n.Children) == 0 {
		e.line("return nil, rutas.ErrNotFound")
		return
	}

	seg := fmt.Sprintf("s%d", depth)
	e.line("%s := segs[%d]", seg, depth)

	index, literals := n.Index(), n.Literals()
	if index != nil || len(literals) > 0 {
		e.line("switch %s {", seg)
		if index != nil {
			e.line(`case "":`)
			e.line("if len(segs) == %d {", depth+1)
			d.node(index, captures)
			e.line("}")
		}
		for _, child := range literals {
			e.line("case %s:", strconv.Quote(child.Part.Text))
			d.node(child, captures)
		}
		e.line("}")
	}

	for _, child := range n.Captures() {
		name := fmt.Sprintf("c%d", depth)
		e.line("// %s", child.Part)
		e.line("if %s, ok := rutas.%s(%s); ok {", name, captureParser(child.Part.Type), seg)
		d.node(child, append(captures[:len(captures):len(captures)], name))
		e.line("}")
	}
	e.line("return nil, rutas.ErrNotFound")
}

func (d *dispatcher) call(r *route.Route, captures []string) {
	fn := WrapperName(r.Handler)
	if q := d.handlers[r.Handler.ImportPath]; q != "" {
		fn = q + "." + fn
	}
	args := append([]string{"ctx", "app", "req"}, captures...)
	d.e.line("// %s", r.Spec.RouteLine())
	d.e.line("return %s(%s)", fn, strings.Join(args, ", "))
}

func captureParser(t route.CaptureType) string {
	switch t {
	case route.CaptureInt8:
		return "ParseInt8"
	case route.CaptureUint8:
		return "ParseUint8"
	case route.CaptureInt32:
		return "ParseInt32"
	case route.CaptureUint32:
		return "ParseUint32"
	case route.CaptureInt64:
		return "ParseInt64"
	case route.CaptureUint64:
		return "ParseUint64"
	case route.CaptureUint:
		return "ParseUint"
	default:
		return "ParseString"
	}
}

func (g *Generator) emitRouteTable(e *emitter, terminals []trie.Terminal) {
	e.line("// Routes lists every route in dispatch order.")
	if len(terminals) == 0 {
		e.line("var Routes = []rutas.RouteInfo{}")
		return
	}
	e.line("var Routes = []rutas.RouteInfo{")
	for _, t := range terminals {
		r := t.Route
		methods := make([]string, len(r.Spec.Methods))
		for i, m := range r.Spec.Methods {
			methods[i] = strconv.Quote(string(m))
		}
		kinds := make([]string, len(r.Spec.Responses))
		for i, k := range r.Spec.Responses {
			kinds[i] = "rutas.Kind" + k.String()
		}
		e.line("{")
		e.line("Methods: []string{%s},", strings.Join(methods, ", "))
		e.line("Path: %s,", strconv.Quote(r.Spec.Path.String()))
		e.line("Handler: %s,", strconv.Quote(r.Handler.ID()))
		e.line("Responses: []rutas.ResponseKind{%s},", strings.Join(kinds, ", "))
		e.line("Source: %s,", strconv.Quote(g.relative(r.Location)))
		e.line("},")
	}
	e.line("}")
}

func (g *Generator) relative(loc route.Location) string {
	file := loc.File
	if g.config.ModuleRoot != "" && filepath.IsAbs(file) {
		if rel, err := filepath.Rel(g.config.ModuleRoot, file); err == nil {
			file = filepath.ToSlash(rel)
		}
	}
	return route.Location{File: file, Line: loc.Line}.String()
}
