package codegen

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/rutas/pkg/route"
)

// Locals of wrapper functions. Handler imports must not use these names.
var wrapperLocals = []string{"ctx", "appAny", "appValue", "req", "resp", "err", "v", "p", "pairs", "ok"}

// WrapperName is the exported wrapper generated for a handler.
func WrapperName(h route.Handler) string {
	return "RutasWrap" + h.Name
}

func (g *Generator) packageFile(routes []*route.Route) (File, error) {
	first := routes[0].Handler
	imports := newImportSet(wrapperLocals...)
	_ = imports.add("context", "context")
	_ = imports.add("rutas", g.config.RuntimeImport)

	var e emitter
	for _, r := range routes {
		if err := g.emitRoute(&e, imports, r); err != nil {
			return File{}, err
		}
	}

	path := filepath.Join(first.Dir, PackageFileName(first.Package))
	return render(path, first.Package, imports, e.String())
}

func (g *Generator) emitRoute(e *emitter, imports *importSet, r *route.Route) error {
	name := r.Handler.Name
	captures := r.Spec.Path.Captures()

	if len(captures) > 0 {
		e.line("// %sPath holds the path captures of %s", name, r.Spec.Path)
		e.line("type %sPath struct {", name)
		for _, c := range captures {
			e.line("%s %s", route.GoName(c.Name), c.Type.GoType())
		}
		e.line("}")
		e.line("")
		if r.Spec.Debug {
			emitCaptureStringer(e, imports, name+"Path", captures)
		}
	}
	if r.Spec.HasQuery {
		emitSchema(e, imports, name+"Query", "query string", r.Spec.Query, r.Spec.Debug)
	}
	if r.Spec.HasForm {
		emitSchema(e, imports, name+"Form", "post form", r.Spec.Form, r.Spec.Debug)
	}
	return g.emitWrapper(e, imports, r)
}

func emitSchema(e *emitter, imports *importSet, typeName, what string, schema route.Schema, debug bool) {
	e.line("// %s holds the %s fields %s", typeName, what, schema)
	e.line("type %s struct {", typeName)
	for _, f := range schema {
		e.line("%s %s", route.GoName(f.Name), f.GoType())
	}
	e.line("}")
	e.line("")
	if debug {
		emitSchemaStringer(e, imports, typeName, schema)
	}
	emitParser(e, typeName, schema)
}

// emitParser writes parse<Type>, which assembles the struct from pairs in
// one pass. Every field gets a slot fN, a parse error fNErr and, when
// required, a presence flag fNSet.
func emitParser(e *emitter, typeName string, schema route.Schema) {
	e.line("func parse%s(pairs []rutas.Pair) (%s, error) {", typeName, typeName)
	if len(schema) == 0 {
		e.line("_ = pairs")
		e.line("return %s{}, nil", typeName)
		e.line("}")
		e.line("")
		return
	}

	e.line("var (")
	for i, f := range schema {
		slot := fmt.Sprintf("f%d", i)
		switch f.Shape {
		case route.Set:
			e.line("%s = %s{}", slot, f.GoType())
		default:
			e.line("%s %s", slot, f.GoType())
		}
		if f.Shape == route.Required {
			e.line("%sSet bool", slot)
		}
		if f.Shape != route.Flag {
			e.line("%sErr error", slot)
		}
	}
	e.line(")")

	e.line("for _, p := range pairs {")
	e.line("switch p.Key {")
	for i, f := range schema {
		slot := fmt.Sprintf("f%d", i)
		e.line("case %s:", strconv.Quote(f.Name))
		if f.Shape == route.Flag {
			e.line("%s = true", slot)
			continue
		}
		e.line("v, err := rutas.%s(p.Value)", fieldParser(f.Type))
		e.line("if err != nil {")
		e.line("if %sErr == nil {", slot)
		e.line("%sErr = rutas.WithField(%s, err)", slot, strconv.Quote(f.Name))
		e.line("}")
		e.line("continue")
		e.line("}")
		switch f.Shape {
		case route.Required:
			e.line("%s, %sSet = v, true", slot, slot)
		case route.Optional:
			e.line("%s = &v", slot)
		case route.List:
			e.line("%s = append(%s, v)", slot, slot)
		case route.Set:
			e.line("%s[v] = struct{}{}", slot)
		}
	}
	e.line("}")
	e.line("}")

	for i, f := range schema {
		slot := fmt.Sprintf("f%d", i)
		if f.Shape != route.Flag {
			e.line("if %sErr != nil {", slot)
			e.line("return %s{}, %sErr", typeName, slot)
			e.line("}")
		}
		if f.Shape == route.Required {
			e.line("if !%sSet {", slot)
			e.line("return %s{}, rutas.MissingField(%s)", typeName, strconv.Quote(f.Name))
			e.line("}")
		}
	}

	e.line("return %s{", typeName)
	for i, f := range schema {
		e.line("%s: f%d,", route.GoName(f.Name), i)
	}
	e.line("}, nil")
	e.line("}")
	e.line("")
}

func fieldParser(t route.FieldType) string {
	switch t {
	case route.FieldInt32:
		return "FieldInt32"
	case route.FieldUint32:
		return "FieldUint32"
	case route.FieldInt64:
		return "FieldInt64"
	case route.FieldUint64:
		return "FieldUint64"
	case route.FieldFloat32:
		return "FieldFloat32"
	case route.FieldFloat64:
		return "FieldFloat64"
	default:
		return "FieldString"
	}
}

func emitCaptureStringer(e *emitter, imports *importSet, typeName string, captures []route.PathPart) {
	_ = imports.add("fmt", "fmt")
	var format, args []string
	for _, c := range captures {
		field := route.GoName(c.Name)
		format = append(format, field+": %v")
		args = append(args, "v."+field)
	}
	emitStringer(e, typeName, format, args)
}

func emitSchemaStringer(e *emitter, imports *importSet, typeName string, schema route.Schema) {
	_ = imports.add("fmt", "fmt")
	var format, args []string
	for _, f := range schema {
		field := route.GoName(f.Name)
		if f.Shape == route.Optional {
			format = append(format, field+": %s")
			args = append(args, "rutas.FormatOptional(v."+field+")")
			continue
		}
		format = append(format, field+": %v")
		args = append(args, "v."+field)
	}
	emitStringer(e, typeName, format, args)
}

func emitStringer(e *emitter, typeName string, format, args []string) {
	e.line("func (v %s) String() string {", typeName)
	if len(args) == 0 {
		e.line("return %s", strconv.Quote(typeName+"{}"))
	} else {
		e.line("return fmt.Sprintf(%s, %s)",
			strconv.Quote(typeName+"{"+strings.Join(format, ", ")+"}"),
			strings.Join(args, ", "))
	}
	e.line("}")
	e.line("")
}

// emitWrapper writes the exported adapter between the dispatcher and a
// handler. Captures arrive as arguments c0, c1, ... in path order.
func (g *Generator) emitWrapper(e *emitter, imports *importSet, r *route.Route) error {
	h := r.Handler
	id := strconv.Quote(h.String())
	captures := r.Spec.Path.Captures()

	params := []string{"ctx context.Context", "appAny any", "req rutas.Request"}
	for i, c := range captures {
		params = append(params, fmt.Sprintf("c%d %s", i, c.Type.GoType()))
	}

	e.line("// %s adapts %s to the dispatcher: %s", WrapperName(h), h.Name, r.Spec.RouteLine())
	e.line("func %s(%s) (rutas.Response, error) {", WrapperName(h), strings.Join(params, ", "))

	methods := make([]string, len(r.Spec.Methods))
	for i, m := range r.Spec.Methods {
		methods[i] = strconv.Quote(string(m))
	}
	e.line("if err := rutas.MethodAllowed(req.Method(), %s); err != nil {", strings.Join(methods, ", "))
	e.line("return nil, err")
	e.line("}")

	args := make([]string, len(r.Signature.Params))
	for i, p := range r.Signature.Params {
		arg := fmt.Sprintf("arg%d", i)
		args[i] = arg

		switch p.Kind {
		case route.ParamContext:
			args[i] = "ctx"

		case route.ParamRequest:
			args[i] = "req"

		case route.ParamOptional:
			args[i] = "nil"

		case route.ParamApp:
			if q := p.Qualifier(); q != "" {
				if p.Import == "" {
					return fmt.Errorf("%s: cannot resolve package %s of parameter %s", r.Location, q, p.Name)
				}
				if err := imports.add(q, p.Import); err != nil {
					return fmt.Errorf("%s: %w", r.Location, err)
				}
			}
			e.line("%s, ok := appAny.(%s)", arg, p.Type)
			e.line("if !ok {")
			e.line("return nil, &rutas.AppTypeError{Handler: %s, Want: %s, Got: appAny}", id, strconv.Quote(p.Type))
			e.line("}")

		case route.ParamPath:
			e.line("%s := %sPath{", arg, h.Name)
			for j, c := range captures {
				e.line("%s: c%d,", route.GoName(c.Name), j)
			}
			e.line("}")

		case route.ParamQuery:
			e.line("%s, err := parse%sQuery(req.QueryPairs())", arg, h.Name)
			e.errCheck()

		case route.ParamQueryOptional:
			e.line("var %s *%sQuery", arg, h.Name)
			e.line("if req.HasQuery() {")
			e.line("v, err := parse%sQuery(req.QueryPairs())", h.Name)
			e.errCheck()
			e.line("%s = &v", arg)
			e.line("}")

		case route.ParamForm:
			e.line("%sPairs, err := req.FormPairs(ctx)", arg)
			e.errCheck()
			e.line("%s, err := parse%sForm(%sPairs)", arg, h.Name, arg)
			e.errCheck()

		case route.ParamFormOptional:
			e.line("var %s *%sForm", arg, h.Name)
			e.line("if req.IsPost() {")
			e.line("pairs, err := req.FormPairs(ctx)")
			e.errCheck()
			e.line("v, err := parse%sForm(pairs)", h.Name)
			e.errCheck()
			e.line("%s = &v", arg)
			e.line("}")

		case route.ParamDocument:
			e.line("%s, err := rutas.AcquireDocument(ctx, %s, appAny, req)", arg, id)
			e.errCheck()

		case route.ParamDatabase:
			e.line("%s, err := rutas.AcquireDatabase(ctx, %s, appAny)", arg, id)
			e.errCheck()

		case route.ParamCache:
			e.line("%s, err := rutas.AcquireCache(ctx, %s, appAny)", arg, id)
			e.errCheck()
		}
	}

	call := fmt.Sprintf("%s(%s)", h.Name, strings.Join(args, ", "))
	if r.Signature.Return == route.ReturnFallible {
		e.line("resp, err := %s", call)
		e.errCheck()
	} else {
		e.line("resp := %s", call)
	}

	kinds := make([]string, len(r.Spec.Responses))
	for i, k := range r.Spec.Responses {
		kinds[i] = "rutas.Kind" + k.String()
	}
	e.line("return rutas.CheckResponse(%s, resp, %s)", id, strings.Join(kinds, ", "))
	e.line("}")
	e.line("")
	return nil
}
