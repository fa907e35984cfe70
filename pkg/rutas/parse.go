package rutas

import (
	"strconv"
	"strings"
)

// Segments splits a request path into segments. The leading slash is
// dropped and a trailing slash yields a final empty segment, which is what
// an index route matches: "/" is [""], "/a/" is ["a", ""].
func Segments(path string) []string {
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}

// Capture parsers accept a whole segment or nothing.

func ParseInt8(seg string) (int8, bool) {
	v, err := strconv.ParseInt(seg, 10, 8)
	return int8(v), err == nil
}

func ParseUint8(seg string) (uint8, bool) {
	v, err := strconv.ParseUint(seg, 10, 8)
	return uint8(v), err == nil
}

func ParseInt32(seg string) (int32, bool) {
	v, err := strconv.ParseInt(seg, 10, 32)
	return int32(v), err == nil
}

func ParseUint32(seg string) (uint32, bool) {
	v, err := strconv.ParseUint(seg, 10, 32)
	return uint32(v), err == nil
}

func ParseInt64(seg string) (int64, bool) {
	v, err := strconv.ParseInt(seg, 10, 64)
	return v, err == nil
}

func ParseUint64(seg string) (uint64, bool) {
	v, err := strconv.ParseUint(seg, 10, 64)
	return v, err == nil
}

func ParseUint(seg string) (uint, bool) {
	v, err := strconv.ParseUint(seg, 10, strconv.IntSize)
	return uint(v), err == nil
}

// ParseString accepts any non-empty segment.
func ParseString(seg string) (string, bool) {
	return seg, seg != ""
}

// Field parsers convert one raw query-string or form value. Failures are
// *SchemaError values without a field name; see WithField.

func FieldString(v string) (string, error) {
	return v, nil
}

func FieldInt32(v string) (int32, error) {
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return 0, invalid(v, "int32")
	}
	return int32(n), nil
}

func FieldUint32(v string) (uint32, error) {
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, invalid(v, "uint32")
	}
	return uint32(n), nil
}

func FieldInt64(v string) (int64, error) {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, invalid(v, "int64")
	}
	return n, nil
}

func FieldUint64(v string) (uint64, error) {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, invalid(v, "uint64")
	}
	return n, nil
}

func FieldFloat32(v string) (float32, error) {
	n, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return 0, invalid(v, "float32")
	}
	return float32(n), nil
}

func FieldFloat64(v string) (float64, error) {
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, invalid(v, "float64")
	}
	return n, nil
}

func invalid(v, typ string) error {
	if v == "" {
		return &SchemaError{Reason: "expected " + typ + ", got an empty value"}
	}
	return &SchemaError{Value: v, Reason: "expected " + typ}
}
