// Package route holds the compiled representation of route directives:
// methods, path parts, field schemas, response kinds and handler
// signatures. Values are produced once by the grammar layer and never
// mutated afterwards.
package route

import (
	"cmp"
	"fmt"
	"strings"
)

// Method is an HTTP method accepted by the route grammar.
type Method string

const (
	GET    Method = "GET"
	POST   Method = "POST"
	PUT    Method = "PUT"
	DELETE Method = "DELETE"
	PATCH  Method = "PATCH"
)

// ParseMethod returns the Method named by s.
func ParseMethod(s string) (Method, bool) {
	switch m := Method(s); m {
	case GET, POST, PUT, DELETE, PATCH:
		return m, true
	}
	return "", false
}

// PartKind tags a PathPart.
type PartKind int

const (
	// PartIndex matches an empty trailing segment
	PartIndex PartKind = iota
	// PartLiteral matches a fixed segment
	PartLiteral
	// PartCapture binds a typed segment
	PartCapture
)

// CaptureType is the type of a path capture. The declaration order is the
// type rank used when several captures compete at the same depth.
type CaptureType int

const (
	CaptureInt8 CaptureType = iota
	CaptureUint8
	CaptureInt32
	CaptureUint32
	CaptureInt64
	CaptureUint64
	CaptureUint
	CaptureString
)

var captureTypeNames = []string{"int8", "uint8", "int32", "uint32", "int64", "uint64", "uint", "string"}

var captureTypeAliases = map[string]CaptureType{
	"i8":     CaptureInt8,
	"u8":     CaptureUint8,
	"i32":    CaptureInt32,
	"u32":    CaptureUint32,
	"i64":    CaptureInt64,
	"u64":    CaptureUint64,
	"usize":  CaptureUint,
	"String": CaptureString,
}

// ParseCaptureType resolves a capture type name. Short legacy spellings
// (u32, usize, String, ...) are accepted as aliases.
func ParseCaptureType(s string) (CaptureType, bool) {
	for i, name := range captureTypeNames {
		if name == s {
			return CaptureType(i), true
		}
	}
	t, ok := captureTypeAliases[s]
	return t, ok
}

// GoType is the Go type a capture of this type binds to.
func (t CaptureType) GoType() string {
	return t.String()
}

func (t CaptureType) String() string {
	if int(t) < len(captureTypeNames) {
		return captureTypeNames[t]
	}
	return fmt.Sprintf("CaptureType(%d)", int(t))
}

// PathPart is one segment-level unit of a route path.
type PathPart struct {
	Kind PartKind
	// Text is the literal segment (PartLiteral only)
	Text string
	// Name is the capture variable name (PartCapture only)
	Name string
	// Type is the capture type (PartCapture only)
	Type CaptureType
}

// Index returns the index part.
func Index() PathPart {
	return PathPart{Kind: PartIndex}
}

// Literal returns a literal part.
func Literal(text string) PathPart {
	return PathPart{Kind: PartLiteral, Text: text}
}

// Capture returns a typed capture part.
func Capture(name string, t CaptureType) PathPart {
	return PathPart{Kind: PartCapture, Name: name, Type: t}
}

// String renders the part as it appears in a route line. The index part
// renders as the empty string.
func (p PathPart) String() string {
	switch p.Kind {
	case PartLiteral:
		return p.Text
	case PartCapture:
		return "{" + p.Name + ":" + p.Type.String() + "}"
	default:
		return ""
	}
}

// ComparePathParts orders parts Index < Literal < Capture. Literals compare
// lexicographically; captures by type rank, then by name.
func ComparePathParts(a, b PathPart) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	switch a.Kind {
	case PartLiteral:
		return strings.Compare(a.Text, b.Text)
	case PartCapture:
		if c := cmp.Compare(a.Type, b.Type); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	}
	return 0
}

// Path is an ordered list of path parts. The part at index i sits at
// depth i+1.
type Path []PathPart

// String renders the path in canonical form: "/" for a lone index part,
// a trailing "/" for a trailing index part.
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, part := range p {
		sb.WriteByte('/')
		sb.WriteString(part.String())
	}
	return sb.String()
}

// Captures returns the capture parts in path order.
func (p Path) Captures() []PathPart {
	var out []PathPart
	for _, part := range p {
		if part.Kind == PartCapture {
			out = append(out, part)
		}
	}
	return out
}

// Equal reports whether two paths have identical parts.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}
