package session

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/rutas/internal/config"
	"github.com/abdul-hamid-achik/rutas/internal/version"
	"github.com/abdul-hamid-achik/rutas/pkg/codegen"
	"github.com/abdul-hamid-achik/rutas/pkg/trie"
)

const homeSource = `package blog

import "github.com/abdul-hamid-achik/rutas/pkg/rutas"

//route:http GET /; return HTML;
func Home() rutas.Response {
	return rutas.HTML("home")
}
`

const usersSource = `package users

import "github.com/abdul-hamid-achik/rutas/pkg/rutas"

//route:http GET /user/{id:uint32}; return HTML;
func UserShow(path UserShowPath) rutas.Response {
	return rutas.HTML("user")
}

//route:http GET /user/{n:uint32}/x; return HTML;
func Shadowed(path ShadowedPath) rutas.Response {
	return nil
}
`

func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files["go.mod"] = "module example.com/blog\n\ngo 1.25\n"
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func newSession(dir string, mutate func(*Options)) *Session {
	opts := Options{Dir: dir, Config: config.Default()}
	if mutate != nil {
		mutate(&opts)
	}
	return New(opts)
}

func TestRun_WritesFiles(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"blog.go":        homeSource,
		"users/users.go": usersSource,
	})

	result, err := newSession(dir, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "example.com/blog", result.ModulePath)
	assert.Len(t, result.Routes, 3)
	assert.Empty(t, result.Warnings)
	assert.Len(t, result.Files, 3)
	assert.Len(t, result.Written, 3)

	for _, name := range []string{"zz_rutas_blog.go", "users/zz_rutas_users.go", "internal/routes/dispatcher.go"} {
		content, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.True(t, bytes.HasPrefix(content, []byte(codegen.Header)), name)
	}

	dispatcher, err := os.ReadFile(filepath.Join(dir, "internal/routes/dispatcher.go"))
	require.NoError(t, err)
	assert.Contains(t, string(dispatcher), `"example.com/blog/users"`)

	// Unchanged output is not rewritten.
	result, err = newSession(dir, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Written)
}

func TestRun_PrunesStaleFiles(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"blog.go":                 homeSource,
		"old/zz_rutas_old.go":     codegen.Header + "\n\npackage old\n",
		"keep/zz_rutas_manual.go": "package keep\n",
	})

	result, err := newSession(dir, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "old", "zz_rutas_old.go")}, result.Removed)
	assert.NoFileExists(t, filepath.Join(dir, "old", "zz_rutas_old.go"))
	assert.FileExists(t, filepath.Join(dir, "keep", "zz_rutas_manual.go"))
	assert.FileExists(t, filepath.Join(dir, "zz_rutas_blog.go"))
}

func TestCompile_OutdatedSchema(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"blog.go":                       homeSource,
		"zz_rutas_blog.go":              codegen.Header + "\n// rutas generator schema 0\n\npackage blog\n",
		"internal/routes/dispatcher.go": codegen.Header + "\n" + version.SchemaLine() + "\n\npackage routes\n",
		"legacy/zz_rutas_legacy.go":     codegen.Header + "\n\npackage legacy\n",
		"manual/zz_rutas_manual.go":     "// rutas generator schema 0\npackage manual\n",
	})

	var logs bytes.Buffer
	result, err := newSession(dir, func(o *Options) { o.Logger = log.New(&logs, "", 0) }).Compile(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []OutdatedFile{
		{Path: filepath.Join(dir, "zz_rutas_blog.go"), Schema: 0},
		{Path: filepath.Join(dir, "legacy", "zz_rutas_legacy.go"), Schema: 0},
	}, result.Outdated)
	assert.Contains(t, logs.String(), "zz_rutas_blog.go: generator schema 0, want 1")
	assert.Zero(t, result.Problems())

	// Generating rewrites the outdated file with the current schema line.
	result, err = newSession(dir, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, result.Written, filepath.Join(dir, "zz_rutas_blog.go"))
	result, err = newSession(dir, nil).Compile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Outdated)
}

func TestRun_DryRun(t *testing.T) {
	dir := writeModule(t, map[string]string{"blog.go": homeSource})

	result, err := newSession(dir, func(o *Options) { o.DryRun = true }).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, result.Files, 2)
	assert.Empty(t, result.Written)
	assert.NoFileExists(t, filepath.Join(dir, "zz_rutas_blog.go"))
}

func TestCompile_WarningsAndFindings(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"users/users.go": usersSource,
		"broken.go": `package blog

//route:http GET /broken return HTML;
func Broken() {}
`,
	})

	var logs bytes.Buffer
	s := newSession(dir, func(o *Options) { o.Logger = log.New(&logs, "", 0) })
	result, err := s.Compile(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0].Location.File, "broken.go")
	require.Len(t, result.Findings, 1)
	assert.Contains(t, result.Findings[0].Message, "is shadowed by {id:uint32}")
	assert.Equal(t, 2, result.Problems())
	assert.Contains(t, logs.String(), "broken.go")
	assert.Contains(t, logs.String(), "shadowed")
}

func TestRun_Strict(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"blog.go": homeSource,
		"broken.go": `package blog

//route:http GET /broken;
func Broken() {}
`,
	})

	_, err := newSession(dir, func(o *Options) { o.Config.Strict = true }).Run(context.Background())
	var strict *StrictError
	require.ErrorAs(t, err, &strict)
	assert.Equal(t, 1, strict.Problems)
	assert.NoFileExists(t, filepath.Join(dir, "zz_rutas_blog.go"))
}

func TestRun_Conflict(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"blog.go": homeSource,
		"other/other.go": `package other

import "github.com/abdul-hamid-achik/rutas/pkg/rutas"

//route:http POST /; return HTML;
func Index() rutas.Response {
	return nil
}
`,
	})

	_, err := newSession(dir, nil).Run(context.Background())
	var conflict *trie.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Contains(t, err.Error(), "conflicting routes for /")
}

func TestRun_OutputOutsideModule(t *testing.T) {
	dir := writeModule(t, map[string]string{"blog.go": homeSource})

	_, err := newSession(dir, func(o *Options) { o.Config.OutputDir = "../elsewhere" }).Run(context.Background())
	assert.ErrorContains(t, err, "is outside module")
}

func TestRun_Cancelled(t *testing.T) {
	dir := writeModule(t, map[string]string{"blog.go": homeSource})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newSession(dir, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImportPathOf(t *testing.T) {
	got, err := importPathOf("/mod", "example.com/m", "/mod")
	require.NoError(t, err)
	assert.Equal(t, "example.com/m", got)

	got, err = importPathOf("/mod", "example.com/m", "/mod/internal/routes")
	require.NoError(t, err)
	assert.Equal(t, "example.com/m/internal/routes", got)
}
