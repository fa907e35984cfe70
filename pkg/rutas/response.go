package rutas

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/abdul-hamid-achik/rutas/pkg/route"
)

// ResponseKind is the declared shape of a response.
type ResponseKind = route.ResponseKind

const (
	KindBytes            = route.KindBytes
	KindText             = route.KindText
	KindEmpty            = route.KindEmpty
	KindHTML             = route.KindHTML
	KindJavaScript       = route.KindJavaScript
	KindCSS              = route.KindCSS
	KindJSON             = route.KindJSON
	KindSVG              = route.KindSVG
	KindNotFound         = route.KindNotFound
	KindRedirect         = route.KindRedirect
	KindWebSocketUpgrade = route.KindWebSocketUpgrade
	KindStream           = route.KindStream
)

// Response is a value a handler returns.
type Response interface {
	Kind() ResponseKind
	// Write sends the response. It is called at most once.
	Write(w http.ResponseWriter) error
}

func writeBody(w http.ResponseWriter, kind ResponseKind, status int, body []byte) error {
	if ct := kind.ContentType(); ct != "" && w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(status)
	_, err := w.Write(body)
	return err
}

// HTML is a text/html response.
type HTML string

func (HTML) Kind() ResponseKind { return KindHTML }

func (r HTML) Write(w http.ResponseWriter) error {
	return writeBody(w, KindHTML, http.StatusOK, []byte(r))
}

// Text is a text/plain response.
type Text string

func (Text) Kind() ResponseKind { return KindText }

func (r Text) Write(w http.ResponseWriter) error {
	return writeBody(w, KindText, http.StatusOK, []byte(r))
}

// JavaScript is a text/javascript response.
type JavaScript string

func (JavaScript) Kind() ResponseKind { return KindJavaScript }

func (r JavaScript) Write(w http.ResponseWriter) error {
	return writeBody(w, KindJavaScript, http.StatusOK, []byte(r))
}

// CSS is a text/css response.
type CSS string

func (CSS) Kind() ResponseKind { return KindCSS }

func (r CSS) Write(w http.ResponseWriter) error {
	return writeBody(w, KindCSS, http.StatusOK, []byte(r))
}

// SVG is an image/svg+xml response.
type SVG string

func (SVG) Kind() ResponseKind { return KindSVG }

func (r SVG) Write(w http.ResponseWriter) error {
	return writeBody(w, KindSVG, http.StatusOK, []byte(r))
}

// Bytes is an application/octet-stream response. Set a Content-Type header
// before returning to override the media type.
type Bytes []byte

func (Bytes) Kind() ResponseKind { return KindBytes }

func (r Bytes) Write(w http.ResponseWriter) error {
	return writeBody(w, KindBytes, http.StatusOK, r)
}

// Empty is a 204 No Content response.
type Empty struct{}

func (Empty) Kind() ResponseKind { return KindEmpty }

func (Empty) Write(w http.ResponseWriter) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// JSON encodes Value as the response body.
type JSON struct {
	Value any
	// Status defaults to 200
	Status int
}

func (JSON) Kind() ResponseKind { return KindJSON }

func (r JSON) Write(w http.ResponseWriter) error {
	body, err := json.Marshal(r.Value)
	if err != nil {
		return fmt.Errorf("encode json response: %w", err)
	}
	return writeBody(w, KindJSON, statusOr(r.Status, http.StatusOK), body)
}

// Redirect sends the client to URL.
type Redirect struct {
	URL string
	// Status defaults to 303 See Other
	Status int
}

func (Redirect) Kind() ResponseKind { return KindRedirect }

func (r Redirect) Write(w http.ResponseWriter) error {
	w.Header().Set("Location", r.URL)
	w.WriteHeader(statusOr(r.Status, http.StatusSeeOther))
	return nil
}

// NotFoundResponse is a handler-produced 404 page.
type NotFoundResponse struct {
	Body string
}

// NotFound returns a plain 404 page.
func NotFound() Response {
	return NotFoundResponse{Body: "404 page not found"}
}

func (NotFoundResponse) Kind() ResponseKind { return KindNotFound }

func (r NotFoundResponse) Write(w http.ResponseWriter) error {
	return writeBody(w, KindNotFound, http.StatusNotFound, []byte(r.Body))
}

// Stream copies Reader to the client. A Reader that is also an io.Closer
// is closed afterwards.
type Stream struct {
	ContentType string
	Reader      io.Reader
}

func (Stream) Kind() ResponseKind { return KindStream }

func (r Stream) Write(w http.ResponseWriter) error {
	if c, ok := r.Reader.(io.Closer); ok {
		defer c.Close()
	}
	ct := r.ContentType
	if ct == "" {
		ct = KindStream.ContentType()
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_, err := io.Copy(w, r.Reader)
	return err
}

func statusOr(status, def int) int {
	if status == 0 {
		return def
	}
	return status
}

// CheckResponse verifies that a handler returned one of its declared
// response kinds.
func CheckResponse(handler string, resp Response, declared ...ResponseKind) (Response, error) {
	if resp == nil {
		return nil, fmt.Errorf("%s returned a nil response", handler)
	}
	kind := resp.Kind()
	for _, k := range declared {
		if k == kind {
			return resp, nil
		}
	}
	return nil, &ResponseKindError{Handler: handler, Kind: kind, Declared: declared}
}

// MethodAllowed returns a *MethodNotAllowedError unless method is one of
// allowed.
func MethodAllowed(method string, allowed ...string) error {
	for _, m := range allowed {
		if m == method {
			return nil
		}
	}
	return &MethodNotAllowedError{Method: method, Allowed: allowed}
}

// RouteInfo describes one generated route.
type RouteInfo struct {
	Methods   []string
	Path      string
	Handler   string
	Responses []ResponseKind
	// Source is the directive location relative to the module root
	Source string
}

// FormatOptional renders an optional value for debug output.
func FormatOptional[T any](p *T) string {
	if p == nil {
		return "nil"
	}
	return fmt.Sprint(*p)
}
