package commands

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/abdul-hamid-achik/rutas/internal/config"
)

const blogSource = `package blog

import "github.com/abdul-hamid-achik/rutas/pkg/rutas"

// Home renders the landing page.
//
//route:http GET /; return HTML;
func Home() rutas.Response {
	return rutas.HTML("home")
}

//route:http GET /post/{slug:string}?page=Option<uint32>; return HTML|NotFound;
func PostShow(path PostShowPath, query *PostShowQuery) rutas.Response {
	return rutas.NotFound()
}
`

type exitCode int

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

// resetFlags restores every flag of c and its subcommands to its default.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the CLI with args and returns stdout and the exit code.
func execute(t *testing.T, args ...string) (string, int) {
	t.Helper()
	resetFlags(rootCmd)

	oldStdout, oldExit := os.Stdout, exit
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	exit = func(code int) { panic(exitCode(code)) }

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	code := 0
	func() {
		defer func() {
			if v := recover(); v != nil {
				c, ok := v.(exitCode)
				if !ok {
					panic(v)
				}
				code = int(c)
			}
		}()
		rootCmd.SetArgs(args)
		require.NoError(t, rootCmd.Execute())
	}()

	_ = w.Close()
	os.Stdout, exit = oldStdout, oldExit
	return <-done, code
}

// decode unmarshals a JSONResponse and its data into data.
func decode(t *testing.T, out string, data any) JSONResponse {
	t.Helper()
	var resp struct {
		JSONResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	if data != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
	return resp.JSONResponse
}

func TestGenerate_JSON(t *testing.T) {
	dir := writeModule(t, map[string]string{"blog.go": blogSource})

	out, code := execute(t, "generate", "--json", "-C", dir)
	require.Equal(t, 0, code, out)

	var got GenerateOutput
	resp := decode(t, out, &got)
	assert.True(t, resp.Success)
	assert.Equal(t, "example.com/blog", got.Module)
	assert.Equal(t, 2, got.Routes)
	assert.ElementsMatch(t, []string{"zz_rutas_blog.go", "internal/routes/dispatcher.go"}, got.Files)
	assert.Len(t, got.Written, 2)
	assert.FileExists(t, filepath.Join(dir, "internal", "routes", "dispatcher.go"))
}

func TestGenerate_FlagsOverrideConfig(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"blog.go":    blogSource,
		"rutas.yaml": "output_dir: internal/http\noutput_package: web\n",
	})

	out, code := execute(t, "generate", "--json", "-C", dir, "--output-package", "api", "--dry-run")
	require.Equal(t, 0, code, out)

	var got GenerateOutput
	decode(t, out, &got)
	assert.True(t, got.DryRun)
	assert.Contains(t, got.Files, "internal/http/dispatcher.go")
	assert.Empty(t, got.Written)
	assert.NoFileExists(t, filepath.Join(dir, "internal", "http", "dispatcher.go"))
}

func TestGenerate_Strict(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"blog.go":   blogSource,
		"broken.go": "package blog\n\n//route:http GET /broken;\nfunc Broken() {}\n",
	})

	out, code := execute(t, "generate", "--json", "--strict", "-C", dir)
	assert.Equal(t, 1, code)

	var got GenerateOutput
	resp := decode(t, out, &got)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "strict mode")
	assert.Len(t, got.Warnings, 1)
}

func TestGenerate_NoModule(t *testing.T) {
	out, code := execute(t, "generate", "--json", "-C", t.TempDir())
	assert.Equal(t, 1, code)
	resp := decode(t, out, nil)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "generation failed")
}

func TestRoutes_JSON(t *testing.T) {
	dir := writeModule(t, map[string]string{"blog.go": blogSource})

	out, code := execute(t, "routes", "--json", "-C", dir)
	require.Equal(t, 0, code, out)

	var got RoutesOutput
	decode(t, out, &got)
	require.Equal(t, 2, got.TotalRoutes)
	assert.Equal(t, "/", got.Routes[0].Path)
	assert.Equal(t, "Home renders the landing page.", got.Routes[0].Doc)
	assert.Equal(t, "/post/{slug:string}", got.Routes[1].Path)
	assert.Equal(t, []string{"HTML", "NotFound"}, got.Routes[1].Responses)
	assert.NoFileExists(t, filepath.Join(dir, "zz_rutas_blog.go"))
}

func TestCheck(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"blog.go":   blogSource,
		"broken.go": "package blog\n\n//route:http GET /broken;\nfunc Broken() {}\n",
	})

	out, code := execute(t, "check", "--json", "-C", dir)
	require.Equal(t, 0, code, out)
	var got CheckOutput
	decode(t, out, &got)
	assert.True(t, got.Valid)
	assert.Equal(t, 2, got.RouteCount)
	assert.Len(t, got.Warnings, 1)

	out, code = execute(t, "check", "--json", "--strict", "-C", dir)
	assert.Equal(t, 1, code)
	got = CheckOutput{}
	decode(t, out, &got)
	assert.False(t, got.Valid)
}

func TestCheck_OutdatedGeneratedFile(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"blog.go":          blogSource,
		"zz_rutas_blog.go": "// Code generated by rutas. DO NOT EDIT.\n// rutas generator schema 0\n\npackage blog\n",
	})

	out, code := execute(t, "check", "--json", "-C", dir)
	require.Equal(t, 0, code, out)
	var got CheckOutput
	decode(t, out, &got)
	assert.True(t, got.Valid)
	assert.Equal(t, []string{"zz_rutas_blog.go"}, got.Outdated)

	out, code = execute(t, "check", "--json", "--strict", "-C", dir)
	assert.Equal(t, 1, code, out)

	out, code = execute(t, "generate", "--json", "-C", dir)
	require.Equal(t, 0, code, out)
	var gen GenerateOutput
	decode(t, out, &gen)
	assert.Equal(t, []string{"zz_rutas_blog.go"}, gen.Outdated)

	out, code = execute(t, "check", "--json", "--strict", "-C", dir)
	require.Equal(t, 0, code, out)
	got = CheckOutput{}
	decode(t, out, &got)
	assert.Empty(t, got.Outdated)
}

func TestManifest_Formats(t *testing.T) {
	dir := writeModule(t, map[string]string{"blog.go": blogSource})

	out, code := execute(t, "manifest", "--json", "-C", dir, "--output", "out/routes.yaml")
	require.Equal(t, 0, code, out)
	var got ExportOutput
	decode(t, out, &got)
	assert.Equal(t, "yaml", got.Format)
	assert.Equal(t, 2, got.Routes)

	data, err := os.ReadFile(filepath.Join(dir, "out", "routes.yaml"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Len(t, doc["routes"], 2)

	out, code = execute(t, "manifest", "--json", "-C", dir, "--output", "routes.db")
	require.Equal(t, 0, code, out)
	db, err := sql.Open("sqlite", filepath.Join(dir, "routes.db"))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	var count int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM routes").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestOpenAPIGenerate(t *testing.T) {
	dir := writeModule(t, map[string]string{"blog.go": blogSource})

	out, code := execute(t, "openapi", "generate", "--json", "-C", dir, "--title", "Blog", "--format", "yaml", "-o", "api.yaml")
	require.Equal(t, 0, code, out)

	data, err := os.ReadFile(filepath.Join(dir, "api.yaml"))
	require.NoError(t, err)
	var doc struct {
		Info struct {
			Title string `yaml:"title"`
		} `yaml:"info"`
		Paths map[string]any `yaml:"paths"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "Blog", doc.Info.Title)
	assert.Contains(t, doc.Paths, "/post/{slug}")
}

func TestInit(t *testing.T) {
	dir := writeModule(t, map[string]string{})

	out, code := execute(t, "init", "--json", "-C", dir)
	require.Equal(t, 0, code, out)
	var got InitOutput
	decode(t, out, &got)
	assert.Equal(t, filepath.Join(dir, config.FileName), got.Path)

	cfg, err := config.Load(dir, "", nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default().OutputDir, cfg.OutputDir)

	_, code = execute(t, "init", "--json", "-C", dir)
	assert.Equal(t, 1, code)

	_, code = execute(t, "init", "--json", "--force", "-C", dir)
	assert.Equal(t, 0, code)
}

func TestVersion_JSON(t *testing.T) {
	out, code := execute(t, "version", "--json")
	require.Equal(t, 0, code)
	var got VersionOutput
	decode(t, out, &got)
	assert.Equal(t, "dev", got.Version)
	assert.Equal(t, 1, got.Schema)
}

func TestWatchable(t *testing.T) {
	cfg := config.Default()
	tests := []struct {
		path string
		want bool
	}{
		{"/mod/blog.go", true},
		{"/mod/users/users.go", true},
		{"/mod/rutas.yaml", true},
		{"/mod/blog_test.go", false},
		{"/mod/zz_rutas_blog.go", false},
		{"/mod/internal/routes/dispatcher.go", false},
		{"/mod/other/dispatcher.go", true},
		{"/mod/README.md", false},
		{"/mod/.#blog.go", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, watchable(tt.path, &cfg))
		})
	}
}

func TestDocsRouter(t *testing.T) {
	h := docsRouter([]byte(`{"openapi":"3.1.0"}`))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"openapi":"3.1.0"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	assert.Contains(t, rec.Body.String(), `url: "/openapi.json"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/docs", rec.Header().Get("Location"))
}

func TestPrintSuccess(t *testing.T) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	printSuccess(map[string]string{"result": "ok"})

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	assert.Contains(t, buf.String(), `"success": true`)
	assert.Contains(t, buf.String(), `"result": "ok"`)
}
