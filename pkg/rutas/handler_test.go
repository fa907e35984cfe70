package rutas

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_StatusMapping(t *testing.T) {
	in := newTestInterpreter(t, userRoutes(t), nil)
	h := Handler(in.Dispatch, nil)

	rec := serve(t, h, "GET", "/user/42", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "UserShow map[id:42]", rec.Body.String())

	rec = serve(t, h, "GET", "/user/abc", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, h, "DELETE", "/user/add", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, POST", rec.Header().Get("Allow"))
}

func TestHandler_SchemaErrorIsBadRequest(t *testing.T) {
	dispatch := func(ctx context.Context, app any, req Request) (Response, error) {
		pairs, err := req.FormPairs(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := FieldUint32(pairs[0].Value); err != nil {
			return nil, WithField(pairs[0].Key, err)
		}
		return Empty{}, nil
	}

	rec := serve(t, Handler(dispatch, nil), "POST", "/", strings.NewReader("age=old"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `field "age": expected uint32, got "old"`)

	rec = serve(t, Handler(dispatch, nil), "POST", "/", strings.NewReader("age=7"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_InternalError(t *testing.T) {
	dispatch := func(context.Context, any, Request) (Response, error) {
		return nil, errors.New("boom")
	}
	var gotStatus int
	h := Handler(dispatch, nil, WithErrorHandler(func(w http.ResponseWriter, r *http.Request, status int, err error) {
		gotStatus = status
		w.WriteHeader(status)
	}))

	rec := serve(t, h, "GET", "/", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, http.StatusInternalServerError, gotStatus)
}

func TestHandler_LoggerAndMetrics(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(WithRegistry(registry), WithNamespace("test"))

	in := newTestInterpreter(t, userRoutes(t), nil)
	h := Handler(in.Dispatch, nil,
		WithLogger(log.New(&buf, "", 0)),
		WithSkipPaths("/user/add"),
		WithMetrics(metrics),
	)

	serve(t, h, "GET", "/user/7", nil)
	serve(t, h, "GET", "/user/add", nil)
	serve(t, h, "GET", "/missing", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "200 GET     /user/7 "), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "404 GET     /missing "), lines[1])
	assert.True(t, strings.HasSuffix(lines[1], "rutas: not found"), lines[1])

	families, err := registry.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "test_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			var outcome string
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" {
					outcome = l.GetValue()
				}
			}
			counts[outcome] += m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"ok": 2, "not_found": 1}, counts)
}

func TestMount(t *testing.T) {
	in := newTestInterpreter(t, userRoutes(t), nil)

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	Mount(r, Handler(in.Dispatch, nil))

	rec := serve(t, r, "GET", "/healthz", nil)
	assert.Equal(t, "ok", rec.Body.String())

	rec = serve(t, r, "GET", "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Home map[]", rec.Body.String())

	rec = serve(t, r, "GET", "/user/add", nil)
	assert.Equal(t, "UserAdd map[]", rec.Body.String())
}

func TestHTTPRequest(t *testing.T) {
	r := httptest.NewRequest("POST", "/p/?b=2&a=1", strings.NewReader("x=1&y=2&x=3"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	req := NewHTTPRequest(r)

	assert.Equal(t, "POST", req.Method())
	assert.Equal(t, "/p/", req.Path())
	assert.True(t, req.HasQuery())
	assert.True(t, req.IsPost())
	assert.Equal(t, []Pair{{"b", "2"}, {"a", "1"}}, req.QueryPairs())

	pairs, err := req.FormPairs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Pair{{"x", "1"}, {"y", "2"}, {"x", "3"}}, pairs)

	again, err := req.FormPairs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pairs, again)

	plain := NewHTTPRequest(httptest.NewRequest("GET", "/", nil))
	assert.False(t, plain.HasQuery())
	pairs, err = plain.FormPairs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestResponses(t *testing.T) {
	tests := []struct {
		name   string
		resp   Response
		status int
		ctype  string
		body   string
	}{
		{"text", Text("hi"), 200, "text/plain; charset=utf-8", "hi"},
		{"json", JSON{Value: map[string]int{"n": 1}, Status: 201}, 201, "application/json", `{"n":1}`},
		{"css", CSS("a{}"), 200, "text/css; charset=utf-8", "a{}"},
		{"svg", SVG("<svg/>"), 200, "image/svg+xml", "<svg/>"},
		{"bytes", Bytes{1, 2}, 200, "application/octet-stream", "\x01\x02"},
		{"not found", NotFound(), 404, "text/html; charset=utf-8", "404 page not found"},
		{"stream", Stream{ContentType: "text/csv", Reader: strings.NewReader("a,b")}, 200, "text/csv", "a,b"},
		{"empty", Empty{}, 204, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, tt.resp.Write(rec))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.ctype, rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}

	rec := httptest.NewRecorder()
	require.NoError(t, Redirect{URL: "/done"}.Write(rec))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/done", rec.Header().Get("Location"))
}

func TestCheckResponse(t *testing.T) {
	resp, err := CheckResponse("h", HTML("x"), KindText, KindHTML)
	require.NoError(t, err)
	assert.Equal(t, HTML("x"), resp)

	_, err = CheckResponse("h", nil, KindHTML)
	assert.ErrorContains(t, err, "nil response")

	assert.NoError(t, MethodAllowed("GET", "GET", "POST"))
	assert.Error(t, MethodAllowed("PUT", "GET"))
}
