// Package rutas is the runtime contract shared by generated dispatchers,
// the trie interpreter and handler code.
//
// A dispatcher takes a Request and an application value and returns a
// Response or an error. ErrNotFound reports that no route matched; a
// *MethodNotAllowedError, a *SchemaError or any other error are request
// failures the host maps to a status code. Handler serves a dispatcher over
// net/http.
package rutas

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
)

// Pair is one key/value pair of a query string or form body.
type Pair struct {
	Key   string
	Value string
}

// Request is the request abstraction a dispatcher reads.
type Request interface {
	// Method is the upper-case HTTP method
	Method() string
	// Path is the decoded request path, starting with "/"
	Path() string
	// QueryPairs returns the query string pairs in arrival order
	QueryPairs() []Pair
	// HasQuery reports whether the request URL carried a query string
	HasQuery() bool
	// FormPairs reads the post body fields in arrival order
	FormPairs(ctx context.Context) ([]Pair, error)
	// IsPost reports whether the request is a POST
	IsPost() bool
}

// ParsePairs splits an application/x-www-form-urlencoded string into
// pairs, keeping arrival order and repeated keys. Pairs with invalid
// escapes are dropped.
func ParsePairs(raw string) []Pair {
	var pairs []Pair
	for raw != "" {
		var part string
		part, raw, _ = strings.Cut(raw, "&")
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(key)
		if err != nil {
			continue
		}
		value, err = url.QueryUnescape(value)
		if err != nil {
			continue
		}
		pairs = append(pairs, Pair{Key: key, Value: value})
	}
	return pairs
}

// MaxFormSize bounds url-encoded post bodies read by HTTP requests.
const MaxFormSize = 10 << 20

// maxMultipartMemory is handed to (*http.Request).ParseMultipartForm.
const maxMultipartMemory = 32 << 20

// ErrFormTooLarge is returned when a post body exceeds MaxFormSize.
var ErrFormTooLarge = errors.New("rutas: form body too large")

type httpRequest struct {
	r     *http.Request
	query []Pair

	formOnce sync.Once
	form     []Pair
	formErr  error
}

// NewHTTPRequest adapts a net/http request.
func NewHTTPRequest(r *http.Request) Request {
	return &httpRequest{r: r, query: ParsePairs(r.URL.RawQuery)}
}

func (h *httpRequest) Method() string {
	return h.r.Method
}

func (h *httpRequest) Path() string {
	if h.r.URL.Path == "" {
		return "/"
	}
	return h.r.URL.Path
}

func (h *httpRequest) QueryPairs() []Pair {
	return h.query
}

func (h *httpRequest) HasQuery() bool {
	return h.r.URL.RawQuery != "" || h.r.URL.ForceQuery
}

func (h *httpRequest) IsPost() bool {
	return h.r.Method == http.MethodPost
}

func (h *httpRequest) FormPairs(ctx context.Context) ([]Pair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.formOnce.Do(func() {
		h.form, h.formErr = readForm(h.r)
	})
	return h.form, h.formErr
}

func readForm(r *http.Request) ([]Pair, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return nil, nil
	}

	switch ct {
	case "application/x-www-form-urlencoded":
		body, err := io.ReadAll(io.LimitReader(r.Body, MaxFormSize+1))
		if err != nil {
			return nil, fmt.Errorf("read form body: %w", err)
		}
		if len(body) > MaxFormSize {
			return nil, ErrFormTooLarge
		}
		return ParsePairs(string(body)), nil

	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, fmt.Errorf("read multipart form: %w", err)
		}
		// Multipart values lose their relative order across keys.
		keys := make([]string, 0, len(r.MultipartForm.Value))
		for k := range r.MultipartForm.Value {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		var pairs []Pair
		for _, k := range keys {
			for _, v := range r.MultipartForm.Value[k] {
				pairs = append(pairs, Pair{Key: k, Value: v})
			}
		}
		return pairs, nil
	}
	return nil, nil
}
