package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/rutas/pkg/lexer"
	"github.com/abdul-hamid-achik/rutas/pkg/route"
)

var origin = lexer.Pos{File: "routes.go", Line: 1, Column: 1}

func TestParseRouteLine_Valid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		methods []route.Method
		path    route.Path
		query   route.Schema
	}{
		{
			name:    "bare slash is index",
			input:   "GET /;",
			methods: []route.Method{route.GET},
			path:    route.Path{route.Index()},
		},
		{
			name:    "single literal",
			input:   "GET /about;",
			methods: []route.Method{route.GET},
			path:    route.Path{route.Literal("about")},
		},
		{
			name:    "trailing slash adds index at next depth",
			input:   "GET /docs/;",
			methods: []route.Method{route.GET},
			path:    route.Path{route.Literal("docs"), route.Index()},
		},
		{
			name:    "multiple methods",
			input:   "GET|POST|DELETE /a;",
			methods: []route.Method{route.GET, route.POST, route.DELETE},
			path:    route.Path{route.Literal("a")},
		},
		{
			name:    "literal with separators",
			input:   "GET /robots.txt/my-page/snake_case;",
			methods: []route.Method{route.GET},
			path: route.Path{
				route.Literal("robots.txt"),
				route.Literal("my-page"),
				route.Literal("snake_case"),
			},
		},
		{
			name:    "captures",
			input:   "PUT /user/{id:uint32}/file/{name:string};",
			methods: []route.Method{route.PUT},
			path: route.Path{
				route.Literal("user"),
				route.Capture("id", route.CaptureUint32),
				route.Literal("file"),
				route.Capture("name", route.CaptureString),
			},
		},
		{
			name:    "legacy capture alias",
			input:   "GET /n/{n:usize};",
			methods: []route.Method{route.GET},
			path:    route.Path{route.Literal("n"), route.Capture("n", route.CaptureUint)},
		},
		{
			name:    "query string on index",
			input:   "GET /?q=string&page=Option<uint32>;",
			methods: []route.Method{route.GET},
			path:    route.Path{route.Index()},
			query: route.Schema{
				{Name: "q", Shape: route.Required, Type: route.FieldString},
				{Name: "page", Shape: route.Optional, Type: route.FieldUint32},
			},
		},
		{
			name:    "all shapes",
			input:   "GET /s?a=int64&b=Option<float32>&c=Vec<uint64>&d=HashSet<String>&e;",
			methods: []route.Method{route.GET},
			path:    route.Path{route.Literal("s")},
			query: route.Schema{
				{Name: "a", Shape: route.Required, Type: route.FieldInt64},
				{Name: "b", Shape: route.Optional, Type: route.FieldFloat32},
				{Name: "c", Shape: route.List, Type: route.FieldUint64},
				{Name: "d", Shape: route.Set, Type: route.FieldString},
				{Name: "e", Shape: route.Flag},
			},
		},
		{
			name:    "flag first",
			input:   "GET /s?verbose&n=i32;",
			methods: []route.Method{route.GET},
			path:    route.Path{route.Literal("s")},
			query: route.Schema{
				{Name: "verbose", Shape: route.Flag},
				{Name: "n", Shape: route.Required, Type: route.FieldInt32},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := ParseRouteLineString(tt.input, origin)
			require.NoError(t, err)
			assert.Equal(t, tt.methods, line.Methods)
			assert.Equal(t, tt.path, line.Path)
			assert.Equal(t, tt.query, line.Query)
			assert.Equal(t, tt.query != nil, line.HasQuery)
		})
	}
}

func TestParseRouteLine_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
		column  int
	}{
		{"unknown method", "FETCH /a;", errMethod, 1},
		{"lowercase method", "get /a;", errMethod, 1},
		{"duplicate method", "GET|POST|PUT|POST /a;", errDupMethod, 14},
		{"missing slash", "GET a;", errAfterMethod, 5},
		{"dangling pipe", "GET| /a;", errMethod, 6},
		{"double slash", "GET /a//b;", errSegment, 8},
		{"trailing separator", "GET /a-/b;", "expected Ident after `-`", 8},
		{"unknown capture type", "GET /{id:float64};", errCaptureType, 10},
		{"missing capture colon", "GET /{id uint32};", errCaptureColon, 10},
		{"capture residue", "GET /{id:uint32 x};", errCaptureEnd, 17},
		{"bad token after segment", "GET /a=b;", errAfterSegment, 7},
		{"missing terminator", "GET /a", errTerminator, 6},
		{"missing query name", "GET /a?=int32;", errFieldName, 8},
		{"bad token after name", "GET /a?x|y;", errAfterName, 9},
		{"unknown field type", "GET /a?x=bool;", errFieldType, 10},
		{"missing open angle", "GET /a?x=Option int32;", errOpenAngle, 17},
		{"missing close angle", "GET /a?x=Vec<int32;", errCloseAngle, 19},
		{"bad token after shape", "GET /a?x=int32|y;", errAfterShape, 15},
		{"duplicate field", "GET /a?x&x;", "duplicate field name `x`", 10},
		{"duplicate capture", "GET /{id:uint32}/{id:string};", "duplicate capture name `id`", 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRouteLineString(tt.input, origin)
			require.Error(t, err)

			var gerr *lexer.GrammarError
			require.ErrorAs(t, err, &gerr)
			assert.Equal(t, tt.message, gerr.Message)
			assert.Equal(t, tt.column, gerr.Pos.Column, "column")
			assert.Equal(t, "routes.go", gerr.Pos.File)
		})
	}
}

func TestParseRouteLine_RejectsTrailingInput(t *testing.T) {
	_, err := ParseRouteLineString("GET /a; extra", origin)
	assert.EqualError(t, err, "routes.go:1:9: expected end of input")
}

func TestParseRouteLine_DuplicateMethodPosition(t *testing.T) {
	_, err := ParseRouteLineString("GET|POST|PUT|POST /a;", lexer.Pos{File: "h.go", Line: 12, Column: 16})

	var gerr *lexer.GrammarError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "duplicate http method", gerr.Message)
	assert.Equal(t, 12, gerr.Pos.Line)
	// second POST starts 13 bytes into the line
	assert.Equal(t, 29, gerr.Pos.Column)
}
