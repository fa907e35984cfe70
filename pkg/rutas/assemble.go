package rutas

import (
	"github.com/abdul-hamid-achik/rutas/pkg/route"
)

// Values holds assembled fields by name. Required fields hold T, present
// Optional fields hold T (absent ones have no entry), List fields hold []T,
// Set fields hold map[T]struct{} and Flag fields hold bool.
type Values map[string]any

// Has reports whether name has a value.
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// Flag returns the value of a Flag field.
func (v Values) Flag(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// String returns a string field, or "" when absent.
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// slot accumulates the values of one declared field.
type slot struct {
	field route.FieldPart
	value any
	set   bool
	err   error
}

// Assemble builds the values of a field schema from request pairs in one
// pass. Unknown keys are ignored. Repeated keys keep the last value for
// Required and Optional fields and every value for List fields. A value
// that fails to parse is reported once the pass is over; so is a missing
// Required field.
func Assemble(fields route.Schema, pairs []Pair) (Values, error) {
	slots := make([]slot, len(fields))
	byName := make(map[string]*slot, len(fields))
	for i, f := range fields {
		slots[i] = slot{field: f, value: emptyValue(f)}
		byName[f.Name] = &slots[i]
	}

	for _, p := range pairs {
		s, ok := byName[p.Key]
		if !ok {
			continue
		}
		if s.field.Shape == route.Flag {
			s.value, s.set = true, true
			continue
		}
		v, err := parseField(s.field.Type, p.Value)
		if err != nil {
			if s.err == nil {
				s.err = WithField(s.field.Name, err)
			}
			continue
		}
		switch s.field.Shape {
		case route.Required, route.Optional:
			s.value = v
		case route.List:
			s.value = appendValue(s.value, v)
		case route.Set:
			insertValue(s.value, v)
		}
		s.set = true
	}

	values := make(Values, len(slots))
	for i := range slots {
		s := &slots[i]
		if s.err != nil {
			return nil, s.err
		}
		if !s.set && s.field.Shape == route.Required {
			return nil, MissingField(s.field.Name)
		}
		if !s.set && s.field.Shape == route.Optional {
			continue
		}
		values[s.field.Name] = s.value
	}
	return values, nil
}

func parseField(t route.FieldType, raw string) (any, error) {
	switch t {
	case route.FieldInt32:
		return FieldInt32(raw)
	case route.FieldUint32:
		return FieldUint32(raw)
	case route.FieldInt64:
		return FieldInt64(raw)
	case route.FieldUint64:
		return FieldUint64(raw)
	case route.FieldFloat32:
		return FieldFloat32(raw)
	case route.FieldFloat64:
		return FieldFloat64(raw)
	default:
		return FieldString(raw)
	}
}

func emptyValue(f route.FieldPart) any {
	switch f.Shape {
	case route.Flag:
		return false
	case route.List:
		switch f.Type {
		case route.FieldInt32:
			return []int32{}
		case route.FieldUint32:
			return []uint32{}
		case route.FieldInt64:
			return []int64{}
		case route.FieldUint64:
			return []uint64{}
		case route.FieldFloat32:
			return []float32{}
		case route.FieldFloat64:
			return []float64{}
		default:
			return []string{}
		}
	case route.Set:
		switch f.Type {
		case route.FieldInt32:
			return map[int32]struct{}{}
		case route.FieldUint32:
			return map[uint32]struct{}{}
		case route.FieldInt64:
			return map[int64]struct{}{}
		case route.FieldUint64:
			return map[uint64]struct{}{}
		case route.FieldFloat32:
			return map[float32]struct{}{}
		case route.FieldFloat64:
			return map[float64]struct{}{}
		default:
			return map[string]struct{}{}
		}
	}
	return nil
}

func appendValue(list, v any) any {
	switch l := list.(type) {
	case []int32:
		return append(l, v.(int32))
	case []uint32:
		return append(l, v.(uint32))
	case []int64:
		return append(l, v.(int64))
	case []uint64:
		return append(l, v.(uint64))
	case []float32:
		return append(l, v.(float32))
	case []float64:
		return append(l, v.(float64))
	case []string:
		return append(l, v.(string))
	}
	return list
}

func insertValue(set, v any) {
	switch s := set.(type) {
	case map[int32]struct{}:
		s[v.(int32)] = struct{}{}
	case map[uint32]struct{}:
		s[v.(uint32)] = struct{}{}
	case map[int64]struct{}:
		s[v.(int64)] = struct{}{}
	case map[uint64]struct{}:
		s[v.(uint64)] = struct{}{}
	case map[float32]struct{}:
		s[v.(float32)] = struct{}{}
	case map[float64]struct{}:
		s[v.(float64)] = struct{}{}
	case map[string]struct{}:
		s[v.(string)] = struct{}{}
	}
}
