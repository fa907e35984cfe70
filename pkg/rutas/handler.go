package rutas

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5"
)

// Option configures Handler.
type Option func(*handlerConfig)

type handlerConfig struct {
	logger    *log.Logger
	skipPaths map[string]bool
	metrics   *Metrics
	onError   func(w http.ResponseWriter, r *http.Request, status int, err error)
}

// WithLogger logs every request to logger with colored status and method.
func WithLogger(logger *log.Logger) Option {
	return func(c *handlerConfig) {
		c.logger = logger
	}
}

// WithSkipPaths disables request logging for the given paths.
func WithSkipPaths(paths ...string) Option {
	return func(c *handlerConfig) {
		for _, p := range paths {
			c.skipPaths[p] = true
		}
	}
}

// WithMetrics records dispatch outcomes.
func WithMetrics(m *Metrics) Option {
	return func(c *handlerConfig) {
		c.metrics = m
	}
}

// WithErrorHandler replaces the plain-text error pages.
func WithErrorHandler(fn func(w http.ResponseWriter, r *http.Request, status int, err error)) Option {
	return func(c *handlerConfig) {
		c.onError = fn
	}
}

// Handler serves dispatch over net/http. Dispatch errors map to status
// codes: ErrNotFound is 404, *MethodNotAllowedError is 405 with an Allow
// header, *SchemaError is 400 and anything else is 500.
func Handler(dispatch DispatchFunc, app any, opts ...Option) http.Handler {
	cfg := &handlerConfig{
		skipPaths: make(map[string]bool),
		onError:   defaultErrorHandler,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		resp, err := dispatch(r.Context(), app, NewHTTPRequest(r))
		outcome := OutcomeOK
		if err != nil {
			var status int
			status, outcome = classify(err)
			var notAllowed *MethodNotAllowedError
			if errors.As(err, &notAllowed) {
				rec.Header().Set("Allow", strings.Join(notAllowed.Allowed, ", "))
			}
			cfg.onError(rec, r, status, err)
		} else if werr := resp.Write(rec); werr != nil {
			err = fmt.Errorf("write %s response: %w", resp.Kind(), werr)
		}

		latency := time.Since(start)
		if cfg.metrics != nil {
			cfg.metrics.observe(r.Method, outcome, latency)
		}
		if cfg.logger != nil && !cfg.skipPaths[r.URL.Path] {
			logRequest(cfg.logger, r.Method, r.URL.Path, rec.status, latency, err)
		}
	})
}

// Outcome labels a dispatch result.
type Outcome string

const (
	OutcomeOK               Outcome = "ok"
	OutcomeNotFound         Outcome = "not_found"
	OutcomeMethodNotAllowed Outcome = "method_not_allowed"
	OutcomeBadRequest       Outcome = "bad_request"
	OutcomeError            Outcome = "error"
)

func classify(err error) (int, Outcome) {
	var (
		notAllowed *MethodNotAllowedError
		schema     *SchemaError
	)
	switch {
	case IsNotFound(err):
		return http.StatusNotFound, OutcomeNotFound
	case errors.As(err, &notAllowed):
		return http.StatusMethodNotAllowed, OutcomeMethodNotAllowed
	case errors.As(err, &schema):
		return http.StatusBadRequest, OutcomeBadRequest
	default:
		return http.StatusInternalServerError, OutcomeError
	}
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, status int, err error) {
	msg := http.StatusText(status)
	switch status {
	case http.StatusNotFound:
		msg = "404 page not found"
	case http.StatusBadRequest:
		msg = err.Error()
	}
	http.Error(w, msg, status)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func logRequest(logger *log.Logger, method, path string, status int, latency time.Duration, err error) {
	var statusColor func(a ...interface{}) string
	switch {
	case status >= 500:
		statusColor = color.New(color.FgRed).SprintFunc()
	case status >= 400:
		statusColor = color.New(color.FgYellow).SprintFunc()
	case status >= 300:
		statusColor = color.New(color.FgCyan).SprintFunc()
	default:
		statusColor = color.New(color.FgGreen).SprintFunc()
	}

	var methodColor func(a ...interface{}) string
	switch method {
	case http.MethodGet:
		methodColor = color.New(color.FgBlue).SprintFunc()
	case http.MethodPost:
		methodColor = color.New(color.FgGreen).SprintFunc()
	case http.MethodPut:
		methodColor = color.New(color.FgYellow).SprintFunc()
	case http.MethodDelete:
		methodColor = color.New(color.FgRed).SprintFunc()
	case http.MethodPatch:
		methodColor = color.New(color.FgMagenta).SprintFunc()
	default:
		methodColor = color.New(color.FgWhite).SprintFunc()
	}

	line := fmt.Sprintf("%s %s %s %s",
		statusColor(fmt.Sprintf("%d", status)),
		methodColor(fmt.Sprintf("%-7s", method)),
		path,
		color.New(color.Faint).Sprint(latency.Round(time.Microsecond)),
	)
	if err != nil {
		line += " " + err.Error()
	}
	logger.Print(line)
}

// Mount serves h as the catch-all of a chi router. Routes registered on r
// directly still take precedence.
func Mount(r chi.Router, h http.Handler) {
	r.Handle("/*", h)
}
