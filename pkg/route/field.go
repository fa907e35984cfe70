package route

import (
	"fmt"
	"strings"
)

// FieldType is the scalar type of a query-string or form field.
type FieldType int

const (
	FieldString FieldType = iota
	FieldInt32
	FieldUint32
	FieldInt64
	FieldUint64
	FieldFloat32
	FieldFloat64
)

var fieldTypeNames = []string{"string", "int32", "uint32", "int64", "uint64", "float32", "float64"}

var fieldTypeAliases = map[string]FieldType{
	"String": FieldString,
	"i32":    FieldInt32,
	"u32":    FieldUint32,
	"i64":    FieldInt64,
	"u64":    FieldUint64,
	"f32":    FieldFloat32,
	"f64":    FieldFloat64,
}

// ParseFieldType resolves a field type name, accepting legacy aliases.
func ParseFieldType(s string) (FieldType, bool) {
	for i, name := range fieldTypeNames {
		if name == s {
			return FieldType(i), true
		}
	}
	t, ok := fieldTypeAliases[s]
	return t, ok
}

func (t FieldType) String() string {
	if int(t) < len(fieldTypeNames) {
		return fieldTypeNames[t]
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// Shape is the multiplicity and presence policy of a field.
type Shape int

const (
	// Required fields must appear at least once
	Required Shape = iota
	// Optional fields may be absent (Option<T>)
	Optional
	// List fields collect every value in arrival order (Vec<T>)
	List
	// Set fields collect distinct values (HashSet<T>)
	Set
	// Flag fields are true when the key is present at all
	Flag
)

var shapeNames = map[Shape]string{
	Required: "required",
	Optional: "optional",
	List:     "list",
	Set:      "set",
	Flag:     "flag",
}

func (s Shape) String() string {
	return shapeNames[s]
}

// FieldPart is one declared field of a field schema.
type FieldPart struct {
	Name  string
	Shape Shape
	// Type is unused for Flag fields
	Type FieldType
}

// String renders the field in route-line syntax.
func (f FieldPart) String() string {
	switch f.Shape {
	case Required:
		return f.Name + "=" + f.Type.String()
	case Optional:
		return f.Name + "=Option<" + f.Type.String() + ">"
	case List:
		return f.Name + "=Vec<" + f.Type.String() + ">"
	case Set:
		return f.Name + "=HashSet<" + f.Type.String() + ">"
	default:
		return f.Name
	}
}

// GoType is the Go type of the assembled struct field.
func (f FieldPart) GoType() string {
	t := f.Type.String()
	switch f.Shape {
	case Optional:
		return "*" + t
	case List:
		return "[]" + t
	case Set:
		return "map[" + t + "]struct{}"
	case Flag:
		return "bool"
	default:
		return t
	}
}

// Schema is an ordered list of field parts. Names are unique.
type Schema []FieldPart

// String renders the schema as `a=int32&b`.
func (s Schema) String() string {
	parts := make([]string, len(s))
	for i, f := range s {
		parts[i] = f.String()
	}
	return strings.Join(parts, "&")
}

// Lookup returns the field named name.
func (s Schema) Lookup(name string) (FieldPart, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return FieldPart{}, false
}
