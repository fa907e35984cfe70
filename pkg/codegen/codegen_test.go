package codegen

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/rutas/pkg/collector"
	"github.com/abdul-hamid-achik/rutas/pkg/route"
	"github.com/abdul-hamid-achik/rutas/pkg/trie"
)

const usersSource = `package users

import (
	"context"

	"example.com/blog/internal/app"
	"github.com/abdul-hamid-achik/rutas/pkg/rutas"
)

//route:http GET /user/{id:uint32}?tab=Option<string>; return HTML|NotFound;
func UserShow(ctx context.Context, a *app.App, path UserShowPath, query *UserShowQuery) (rutas.Response, error) {
	return nil, nil
}

//route:http GET /user/add; return HTML;
func UserAdd(a *app.App, doc rutas.Document) rutas.Response {
	return nil
}

//route:http GET|POST /user/{id:uint32}/edit;
//route: form name=string&age=Option<uint32>&tags=Vec<string>&ids=HashSet<int64>&subscribe;
//route: debug;
//route: return HTML|Redirect;
func UserEdit(req rutas.Request, path UserEditPath, form *UserEditForm, db rutas.DB) (rutas.Response, error) {
	return nil, nil
}

//route:http GET /user/{slug:string}/; return HTML;
func UserBySlug(path UserBySlugPath, extra *string) rutas.Response {
	return nil
}
`

const homeSource = `package blog

import "github.com/abdul-hamid-achik/rutas/pkg/rutas"

//route:http GET /; return HTML;
func Home() rutas.Response {
	return nil
}
`

func buildTrie(t *testing.T) *trie.Node {
	t.Helper()
	result, err := collector.New(nil).Collect([]collector.Source{
		{Path: "/mod/home.go", Identifier: "example.com/blog", Content: []byte(homeSource)},
		{Path: "/mod/users/users.go", Identifier: "example.com/blog/users", Content: []byte(usersSource)},
	})
	require.NoError(t, err)
	require.Empty(t, result.Warnings)
	require.Len(t, result.Routes, 5)

	root, err := trie.Build(result.Routes)
	require.NoError(t, err)
	return root
}

func generate(t *testing.T) map[string]string {
	t.Helper()
	files, err := New(Config{
		ModuleRoot:   "/mod",
		OutputDir:    "/mod/internal/routes",
		OutputImport: "example.com/blog/internal/routes",
	}).Generate(buildTrie(t))
	require.NoError(t, err)

	out := make(map[string]string)
	for _, f := range files {
		_, err := parser.ParseFile(token.NewFileSet(), f.Path, f.Content, parser.ParseComments)
		require.NoError(t, err, f.Path)
		out[f.Path] = string(f.Content)
	}
	return out
}

func TestGenerate_Files(t *testing.T) {
	files := generate(t)
	require.Len(t, files, 3)
	assert.Contains(t, files, "/mod/zz_rutas_blog.go")
	assert.Contains(t, files, "/mod/users/zz_rutas_users.go")
	assert.Contains(t, files, "/mod/internal/routes/dispatcher.go")

	for path, src := range files {
		assert.True(t, strings.HasPrefix(src, Header+"\n// rutas generator schema "), path)
	}
}

func TestGenerate_DispatcherCandidateOrder(t *testing.T) {
	src := generate(t)["/mod/internal/routes/dispatcher.go"]

	assert.Contains(t, src, "package routes\n")
	assert.Contains(t, src, "\t\"example.com/blog\"\n")
	assert.Contains(t, src, "\t\"example.com/blog/users\"\n")
	assert.Contains(t, src, "func Dispatch(ctx context.Context, app any, req rutas.Request) (rutas.Response, error) {")
	assert.Contains(t, src, "segs := rutas.Segments(req.Path())")

	// Index, then literals, then captures by type rank.
	order := []string{
		`return blog.RutasWrapHome(ctx, app, req)`,
		`case "user":`,
		`case "add":`,
		`return users.RutasWrapUserAdd(ctx, app, req)`,
		`if c1, ok := rutas.ParseUint32(s1); ok {`,
		`return users.RutasWrapUserShow(ctx, app, req, c1)`,
		`case "edit":`,
		`return users.RutasWrapUserEdit(ctx, app, req, c1)`,
		`if c1, ok := rutas.ParseString(s1); ok {`,
		`return users.RutasWrapUserBySlug(ctx, app, req, c1)`,
		`var Routes = []rutas.RouteInfo{`,
	}
	last := -1
	for _, want := range order {
		i := strings.Index(src, want)
		require.GreaterOrEqual(t, i, 0, "missing %q", want)
		assert.Greater(t, i, last, "%q is out of order", want)
		last = i
	}

	assert.Contains(t, src, `Source:    "users/users.go:10",`)
	assert.Contains(t, src, `Handler:   "example.com/blog/users.UserShow",`)
	assert.Contains(t, src, `Responses: []rutas.ResponseKind{rutas.KindHTML, rutas.KindNotFound},`)
}

func TestGenerate_PackageFile(t *testing.T) {
	src := generate(t)["/mod/users/zz_rutas_users.go"]

	assert.Contains(t, src, "package users\n")
	assert.Contains(t, src, "\t\"example.com/blog/internal/app\"\n")
	assert.Contains(t, src, "type UserShowPath struct {\n\tID uint32\n}")
	assert.Contains(t, src, "type UserShowQuery struct {\n\tTab *string\n}")
	assert.Contains(t, src, "func RutasWrapUserShow(ctx context.Context, appAny any, req rutas.Request, c0 uint32) (rutas.Response, error) {")
	assert.Contains(t, src, `if err := rutas.MethodAllowed(req.Method(), "GET"); err != nil {`)
	assert.Contains(t, src, "arg1, ok := appAny.(*app.App)")
	assert.Contains(t, src, `return nil, &rutas.AppTypeError{Handler: "users.UserShow", Want: "*app.App", Got: appAny}`)
	assert.Contains(t, src, "if req.HasQuery() {")
	assert.Contains(t, src, "resp, err := UserShow(ctx, arg1, arg2, arg3)")
	assert.Contains(t, src, `return rutas.CheckResponse("users.UserShow", resp, rutas.KindHTML, rutas.KindNotFound)`)

	assert.Contains(t, src, `arg1, err := rutas.AcquireDocument(ctx, "users.UserAdd", appAny, req)`)
	assert.Contains(t, src, "resp := UserAdd(arg0, arg1)")

	assert.Contains(t, src, `rutas.MethodAllowed(req.Method(), "GET", "POST")`)
	assert.Contains(t, src, "if req.IsPost() {")
	assert.Contains(t, src, `arg3, err := rutas.AcquireDatabase(ctx, "users.UserEdit", appAny)`)
	assert.Contains(t, src, "resp, err := UserEdit(req, arg1, arg2, arg3)")
	assert.Contains(t, src, "func parseUserEditForm(pairs []rutas.Pair) (UserEditForm, error) {")
	assert.Contains(t, src, `return UserEditForm{}, rutas.MissingField("name")`)
	assert.Contains(t, src, `f1Err = rutas.WithField("age", err)`)
	assert.Contains(t, src, "f2 = append(f2, v)")
	assert.Contains(t, src, "f3[v] = struct{}{}")
	assert.Contains(t, src, "f4 = true")
	assert.Contains(t, src, "func (v UserEditForm) String() string {")
	assert.Contains(t, src, `"UserEditForm{Name: %v, Age: %s, Tags: %v, Ids: %v, Subscribe: %v}"`)
	assert.Contains(t, src, "func (v UserEditPath) String() string {")
	assert.Contains(t, src, "\t\"fmt\"\n")

	assert.Contains(t, src, "resp := UserBySlug(arg0, nil)")
	assert.Contains(t, src, "type UserBySlugPath struct {\n\tSlug string\n}")
}

func TestGenerate_HomePackageHasNoFmt(t *testing.T) {
	src := generate(t)["/mod/zz_rutas_blog.go"]
	assert.Contains(t, src, "package blog\n")
	assert.NotContains(t, src, `"fmt"`)
	assert.Contains(t, src, "resp := Home()")
}

func TestGenerate_SamePackageHandlersAreUnqualified(t *testing.T) {
	files, err := New(Config{
		OutputDir:     "/mod",
		OutputPackage: "blog",
		OutputImport:  "example.com/blog",
	}).Generate(buildTrie(t))
	require.NoError(t, err)

	dispatcher := string(files[len(files)-1].Content)
	assert.Contains(t, dispatcher, "return RutasWrapHome(ctx, app, req)")
	assert.Contains(t, dispatcher, "return users.RutasWrapUserAdd(ctx, app, req)")
	assert.NotContains(t, dispatcher, "\"example.com/blog\"\n")
}

func TestGenerate_EmptyTrie(t *testing.T) {
	root, err := trie.Build(nil)
	require.NoError(t, err)

	files, err := New(Config{OutputDir: "out"}).Generate(root)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join("out", "dispatcher.go"), files[0].Path)
	assert.Contains(t, string(files[0].Content), "var Routes = []rutas.RouteInfo{}")
}

func TestGenerate_ImportCollision(t *testing.T) {
	root, err := trie.Build([]route.Route{{
		Spec: route.Spec{
			Methods:   []route.Method{route.GET},
			Path:      route.Path{route.Index()},
			Responses: []route.ResponseKind{route.KindHTML},
		},
		Signature: route.Signature{Params: []route.Param{{
			Name: "a", Kind: route.ParamApp, Type: "*req.App", Import: "example.com/req",
		}}},
		Handler:  route.Handler{Name: "Home", Package: "blog", ImportPath: "example.com/blog", Dir: "/mod"},
		Location: route.Location{File: "/mod/home.go", Line: 3},
	}})
	require.NoError(t, err)

	_, err = New(Config{OutputDir: "/mod/routes"}).Generate(root)
	assert.ErrorContains(t, err, `import name "req" collides`)
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	files := []File{
		{Path: filepath.Join(dir, "a", "x.go"), Content: []byte("package a\n")},
		{Path: filepath.Join(dir, "y.go"), Content: []byte("package b\n")},
	}

	written, err := WriteFiles(files)
	require.NoError(t, err)
	assert.Len(t, written, 2)

	files[1].Content = []byte("package c\n")
	written, err = WriteFiles(files)
	require.NoError(t, err)
	assert.Equal(t, []string{files[1].Path}, written)

	content, err := os.ReadFile(files[1].Path)
	require.NoError(t, err)
	assert.Equal(t, "package c\n", string(content))
}
