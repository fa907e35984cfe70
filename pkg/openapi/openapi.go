// Package openapi describes a compiled route tree as an OpenAPI 3 document.
package openapi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/rutas/pkg/route"
	"github.com/abdul-hamid-achik/rutas/pkg/trie"
)

// Config configures document generation.
type Config struct {
	// Title is the API title (default: "API").
	Title string

	// Version is the API version (default: "1.0.0").
	Version string

	// Description is the API description.
	Description string

	// Servers are the server URLs.
	Servers []Server

	// OpenAPIVersion is the OpenAPI version ("3.1.0" or "3.0.3", default: "3.1.0").
	OpenAPIVersion string
}

// Server represents a server URL.
type Server struct {
	URL         string
	Description string
}

// Generator builds OpenAPI documents from a route trie.
type Generator struct {
	config Config
}

// New creates a generator, filling in defaults.
func New(config Config) *Generator {
	if config.Version == "" {
		config.Version = "1.0.0"
	}
	if config.OpenAPIVersion == "" {
		config.OpenAPIVersion = "3.1.0"
	}
	if config.Title == "" {
		config.Title = "API"
	}
	return &Generator{config: config}
}

// Generate creates a document with one operation per route and method.
func (g *Generator) Generate(root *trie.Node) (*openapi3.T, error) {
	doc := &openapi3.T{
		OpenAPI: g.config.OpenAPIVersion,
		Info: &openapi3.Info{
			Title:       g.config.Title,
			Version:     g.config.Version,
			Description: g.config.Description,
		},
		Paths: openapi3.NewPaths(),
	}

	if len(g.config.Servers) > 0 {
		doc.Servers = make(openapi3.Servers, 0, len(g.config.Servers))
		for _, srv := range g.config.Servers {
			doc.Servers = append(doc.Servers, &openapi3.Server{
				URL:         srv.URL,
				Description: srv.Description,
			})
		}
	}

	for _, t := range root.Flatten() {
		pattern := Pattern(t.Path)
		item := doc.Paths.Value(pattern)
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths.Set(pattern, item)
		}
		for _, m := range t.Route.Spec.Methods {
			op := g.buildOperation(*t.Route, m)
			if !setOperation(item, m, op) {
				return nil, fmt.Errorf("%s: method %s has no OpenAPI operation", t.Route.Location, m)
			}
		}
	}

	return doc, nil
}

// GenerateJSON returns the document as indented JSON.
func (g *Generator) GenerateJSON(root *trie.Node) ([]byte, error) {
	doc, err := g.Generate(root)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// GenerateYAML returns the document as YAML.
func (g *Generator) GenerateYAML(root *trie.Node) ([]byte, error) {
	data, err := g.GenerateJSON(root)
	if err != nil {
		return nil, err
	}
	// YAML is a superset of JSON
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return yaml.Marshal(v)
}

// WriteToFile writes the document to path as "json" or "yaml".
func (g *Generator) WriteToFile(root *trie.Node, path, format string) error {
	var data []byte
	var err error

	switch strings.ToLower(format) {
	case "yaml", "yml":
		data, err = g.GenerateYAML(root)
	case "json":
		data, err = g.GenerateJSON(root)
	default:
		return fmt.Errorf("unsupported format: %s (use json or yaml)", format)
	}
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Pattern renders a route path as an OpenAPI path template:
// /user/{id:uint32}/edit -> /user/{id}/edit.
func Pattern(p route.Path) string {
	if len(p) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, part := range p {
		sb.WriteByte('/')
		switch part.Kind {
		case route.PartLiteral:
			sb.WriteString(part.Text)
		case route.PartCapture:
			sb.WriteString("{" + part.Name + "}")
		}
	}
	return sb.String()
}

func setOperation(item *openapi3.PathItem, m route.Method, op *openapi3.Operation) bool {
	switch m {
	case route.GET:
		item.Get = op
	case route.POST:
		item.Post = op
	case route.PUT:
		item.Put = op
	case route.PATCH:
		item.Patch = op
	case route.DELETE:
		item.Delete = op
	default:
		return false
	}
	return true
}

func (g *Generator) buildOperation(r route.Route, m route.Method) *openapi3.Operation {
	summary, description := splitDoc(r.Handler.Doc)
	op := &openapi3.Operation{
		OperationID: operationID(r, m),
		Summary:     summary,
		Description: description,
		Tags:        []string{tag(r.Spec.Path)},
		Responses:   openapi3.NewResponses(),
	}

	for _, c := range r.Spec.Path.Captures() {
		op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: &openapi3.Parameter{
			Name:     c.Name,
			In:       openapi3.ParameterInPath,
			Required: true,
			Schema:   captureSchema(c.Type).NewRef(),
		}})
	}
	if r.Spec.HasQuery {
		for _, f := range r.Spec.Query {
			op.Parameters = append(op.Parameters, &openapi3.ParameterRef{Value: &openapi3.Parameter{
				Name:     f.Name,
				In:       openapi3.ParameterInQuery,
				Required: f.Shape == route.Required,
				Schema:   fieldSchema(f).NewRef(),
			}})
		}
	}

	if r.Spec.HasForm && m == route.POST {
		body := openapi3.NewObjectSchema()
		for _, f := range r.Spec.Form {
			body.WithPropertyRef(f.Name, fieldSchema(f).NewRef())
			if f.Shape == route.Required {
				body.Required = append(body.Required, f.Name)
			}
		}
		op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
			WithRequired(len(body.Required) > 0).
			WithContent(openapi3.NewContentWithFormDataSchema(body))}
		op.RequestBody.Value.Content["application/x-www-form-urlencoded"] = openapi3.NewMediaType().WithSchema(body)
	}

	g.addResponses(op, r)
	return op
}

func (g *Generator) addResponses(op *openapi3.Operation, r route.Route) {
	ok := openapi3.NewResponse().WithDescription("Success")
	hasOK := false
	for _, k := range r.Spec.Responses {
		switch k {
		case route.KindEmpty:
			op.Responses.Set("204", &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("No Content")})
		case route.KindRedirect:
			op.Responses.Set("303", &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("See Other")})
		case route.KindNotFound:
			op.Responses.Set("404", &openapi3.ResponseRef{Value: openapi3.NewResponse().
				WithDescription("Not Found").
				WithContent(openapi3.Content{k.ContentType(): openapi3.NewMediaType()})})
		case route.KindWebSocketUpgrade:
			op.Responses.Set("101", &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Switching Protocols")})
		default:
			if ok.Content == nil {
				ok.Content = openapi3.Content{}
			}
			ok.Content[k.ContentType()] = openapi3.NewMediaType()
			hasOK = true
		}
	}
	if hasOK {
		op.Responses.Set("200", &openapi3.ResponseRef{Value: ok})
	}

	if r.Spec.HasQuery || r.Spec.HasForm {
		op.Responses.Set("400", &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Bad Request")})
	}
	if len(r.Spec.Methods) < 5 {
		op.Responses.Set("405", &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Method Not Allowed")})
	}
}

func captureSchema(t route.CaptureType) *openapi3.Schema {
	switch t {
	case route.CaptureInt8:
		return openapi3.NewInt32Schema().WithMin(-128).WithMax(127)
	case route.CaptureUint8:
		return openapi3.NewInt32Schema().WithMin(0).WithMax(255)
	case route.CaptureInt32:
		return openapi3.NewInt32Schema()
	case route.CaptureUint32:
		return openapi3.NewInt64Schema().WithMin(0).WithMax(4294967295)
	case route.CaptureInt64:
		return openapi3.NewInt64Schema()
	case route.CaptureUint64, route.CaptureUint:
		return openapi3.NewInt64Schema().WithMin(0)
	default:
		return openapi3.NewStringSchema().WithMinLength(1)
	}
}

func scalarSchema(t route.FieldType) *openapi3.Schema {
	switch t {
	case route.FieldInt32:
		return openapi3.NewInt32Schema()
	case route.FieldUint32:
		return openapi3.NewInt64Schema().WithMin(0).WithMax(4294967295)
	case route.FieldInt64:
		return openapi3.NewInt64Schema()
	case route.FieldUint64:
		return openapi3.NewInt64Schema().WithMin(0)
	case route.FieldFloat32:
		return openapi3.NewFloat64Schema().WithFormat("float")
	case route.FieldFloat64:
		return openapi3.NewFloat64Schema()
	default:
		return openapi3.NewStringSchema()
	}
}

func fieldSchema(f route.FieldPart) *openapi3.Schema {
	switch f.Shape {
	case route.Flag:
		return openapi3.NewBoolSchema()
	case route.List:
		return openapi3.NewArraySchema().WithItems(scalarSchema(f.Type))
	case route.Set:
		return openapi3.NewArraySchema().WithItems(scalarSchema(f.Type)).WithUniqueItems(true)
	default:
		return scalarSchema(f.Type)
	}
}

// splitDoc uses the first doc line as the summary and the rest as the
// description.
func splitDoc(doc string) (summary, description string) {
	var lines []string
	for _, line := range strings.Split(doc, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "", ""
	}
	return lines[0], strings.Join(lines[1:], "\n")
}

// tag is the first literal segment of the path, or "default".
func tag(p route.Path) string {
	for _, part := range p {
		if part.Kind == route.PartLiteral {
			return part.Text
		}
	}
	return "default"
}

func operationID(r route.Route, m route.Method) string {
	if len(r.Spec.Methods) == 1 {
		return r.Handler.Name
	}
	return r.Handler.Name + strings.ToUpper(string(m[:1])) + strings.ToLower(string(m[1:]))
}
