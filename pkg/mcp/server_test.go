package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopSource = `package shop

import "github.com/abdul-hamid-achik/rutas/pkg/rutas"

// Index lists products.
//
//route:http GET /; return HTML;
func Index() rutas.Response {
	return rutas.HTML("index")
}

//route:http GET /api/product/{id:uint64}; return JSON|NotFound;
func Product(path ProductPath) rutas.Response {
	return rutas.NotFound()
}

//route:http GET /api/product/{name:string}; return JSON;
func ProductByName(path ProductByNamePath) rutas.Response {
	return rutas.NotFound()
}
`

func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files["go.mod"] = "module example.com/shop\n\ngo 1.25\n"
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "content is %T", result.Content[0])
	return text.Text
}

func decode(t *testing.T, result *mcp.CallToolResult, v any) {
	t.Helper()
	require.False(t, result.IsError, resultText(t, result))
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), v))
}

func TestNewServer(t *testing.T) {
	s := NewServer("./shop", "")
	assert.Equal(t, "./shop", s.workdir)
	assert.NotNil(t, s.mcpServer)
}

func TestHandleListRoutes(t *testing.T) {
	dir := writeModule(t, map[string]string{"shop/shop.go": shopSource})
	s := NewServer(dir, "")

	result, err := s.handleListRoutes(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	var out listRoutesResult
	decode(t, result, &out)
	require.Equal(t, 3, out.Total)
	assert.Equal(t, "/", out.Routes[0].Path)
	assert.Equal(t, "shop/shop.go:7", out.Routes[0].Source)
	assert.Equal(t, "/api/product/{id:uint64}", out.Routes[1].Path)

	result, err = s.handleListRoutes(context.Background(), makeRequest(map[string]any{"prefix": "/api"}))
	require.NoError(t, err)
	decode(t, result, &out)
	assert.Equal(t, 2, out.Total)
}

func TestHandleListRoutes_NoModule(t *testing.T) {
	s := NewServer(t.TempDir(), "")

	result, err := s.handleListRoutes(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "go.mod")
}

func TestHandleCheck(t *testing.T) {
	dir := writeModule(t, map[string]string{"shop/shop.go": shopSource})

	result, err := NewServer(dir, "").handleCheck(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	var out checkResult
	decode(t, result, &out)
	assert.True(t, out.Valid)
	assert.Equal(t, 3, out.Routes)
	assert.Empty(t, out.Warnings)

	// Malformed directives are warnings, which strict mode rejects.
	bad := shopSource + "\n//route:http GET /broken/{x:float}; return HTML;\nfunc Broken() rutas.Response { return nil }\n"
	dir = writeModule(t, map[string]string{
		"shop/shop.go": bad,
		"rutas.yaml":   "strict: true\n",
	})
	result, err = NewServer(dir, "").handleCheck(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	decode(t, result, &out)
	assert.False(t, out.Valid)
	assert.Len(t, out.Warnings, 1)
}

func TestHandleGenerate(t *testing.T) {
	dir := writeModule(t, map[string]string{"shop/shop.go": shopSource})
	s := NewServer(dir, "")

	result, err := s.handleGenerate(context.Background(), makeRequest(map[string]any{"dry_run": true}))
	require.NoError(t, err)
	var out generateResult
	decode(t, result, &out)
	assert.True(t, out.Success)
	assert.True(t, out.DryRun)
	assert.Len(t, out.Files, 2)
	assert.Empty(t, out.Written)
	assert.NoFileExists(t, filepath.Join(dir, "shop", "zz_rutas_shop.go"))

	result, err = s.handleGenerate(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	decode(t, result, &out)
	assert.Len(t, out.Written, 2)
	assert.FileExists(t, filepath.Join(dir, "shop", "zz_rutas_shop.go"))
}

func TestHandleOpenAPI(t *testing.T) {
	dir := writeModule(t, map[string]string{"shop/shop.go": shopSource})
	s := NewServer(dir, "")

	result, err := s.handleOpenAPI(context.Background(), makeRequest(map[string]any{"title": "Shop"}))
	require.NoError(t, err)
	var doc map[string]any
	decode(t, result, &doc)
	assert.Equal(t, "Shop", doc["info"].(map[string]any)["title"])
	assert.Contains(t, doc["paths"], "/api/product/{id}")

	result, err = s.handleOpenAPI(context.Background(), makeRequest(map[string]any{"format": "xml"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleInfo(t *testing.T) {
	dir := writeModule(t, map[string]string{"rutas.yaml": "output_package: web\noutput_dir: web\n"})

	result, err := NewServer(dir, "").handleInfo(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	var out infoResult
	decode(t, result, &out)
	assert.True(t, out.HasGoMod)
	assert.True(t, out.HasConfig)
	assert.Equal(t, "example.com/shop", out.ModulePath)
	assert.Equal(t, "web", out.Config.OutputPackage)

	result, err = NewServer(t.TempDir(), "").handleInfo(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	decode(t, result, &out)
	assert.False(t, out.HasGoMod)
	assert.False(t, out.HasConfig)
}
