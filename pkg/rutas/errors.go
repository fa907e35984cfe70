package rutas

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by a dispatcher when no route matches the path.
var ErrNotFound = errors.New("rutas: not found")

// IsNotFound reports whether err means no route matched.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// SchemaError is a query-string or form field that could not be assembled.
type SchemaError struct {
	Field string
	// Value is the offending raw value; empty for missing fields
	Value  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("field %q: %s, got %q", e.Field, e.Reason, e.Value)
	}
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// MissingField reports a required field that never appeared.
func MissingField(name string) error {
	return &SchemaError{Field: name, Reason: "missing required field"}
}

// WithField attaches a field name to an error returned by a field parser.
func WithField(name string, err error) error {
	var se *SchemaError
	if errors.As(err, &se) {
		out := *se
		out.Field = name
		return &out
	}
	return &SchemaError{Field: name, Reason: err.Error()}
}

// MethodNotAllowedError is returned when the path matched a route that
// does not accept the request method.
type MethodNotAllowedError struct {
	Method  string
	Allowed []string
}

func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("method %s not allowed, expected %s", e.Method, strings.Join(e.Allowed, ", "))
}

// ResponseKindError is returned when a handler produced a response kind it
// did not declare.
type ResponseKindError struct {
	Handler  string
	Kind     ResponseKind
	Declared []ResponseKind
}

func (e *ResponseKindError) Error() string {
	names := make([]string, len(e.Declared))
	for i, k := range e.Declared {
		names[i] = k.String()
	}
	return fmt.Sprintf("%s returned %s, declared %s", e.Handler, e.Kind, strings.Join(names, "|"))
}

// AppTypeError is returned when the application value does not have the
// type a handler asks for.
type AppTypeError struct {
	Handler string
	Want    string
	Got     any
}

func (e *AppTypeError) Error() string {
	return fmt.Sprintf("%s needs app of type %s, got %T", e.Handler, e.Want, e.Got)
}

// ProviderError wraps a failure to acquire a document, database or cache.
type ProviderError struct {
	Handler    string
	Capability string
	Err        error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: acquire %s: %v", e.Handler, e.Capability, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ErrNoProvider is wrapped by a ProviderError when the application does
// not implement the provider interface.
var ErrNoProvider = errors.New("app does not implement the provider")
