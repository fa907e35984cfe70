package grammar

import (
	"github.com/abdul-hamid-achik/rutas/pkg/lexer"
	"github.com/abdul-hamid-achik/rutas/pkg/route"
)

const (
	errFieldName  = "expected query string name"
	errAfterName  = "expected `=`, `&`, or `;`"
	errAfterShape = "expected `&`, or `;`"
	errFieldType  = "expected string, int32, uint32, int64, uint64, float32, or float64"
	errOpenAngle  = "expected `<`"
	errCloseAngle = "expected `>`"
	errDupField   = "duplicate field name `%s`"
)

// ParseFieldSchema parses `part ('&' part)*` and stops before the `;` that
// ends the schema. The same grammar serves query strings and post forms.
func ParseFieldSchema(c *lexer.Cursor) (route.Schema, error) {
	var schema route.Schema
	seen := make(map[string]bool)
	for {
		pos := c.Pos()
		name, err := c.TakeIdent()
		if err != nil {
			return nil, c.Error(errFieldName)
		}
		key := route.GoName(name)
		if seen[key] {
			return nil, lexer.Errorf(pos, errDupField, name)
		}
		seen[key] = true

		field := route.FieldPart{Name: name, Shape: route.Flag}
		switch c.Class() {
		case lexer.ClassEqual:
			c.Step()
			shape, t, err := parseValueShape(c)
			if err != nil {
				return nil, err
			}
			field.Shape = shape
			field.Type = t
			schema = append(schema, field)

			switch c.Class() {
			case lexer.ClassAmpersand:
				c.Step()
			case lexer.ClassSemicolon:
				return schema, nil
			default:
				return nil, c.Error(errAfterShape)
			}

		case lexer.ClassAmpersand:
			c.Step()
			schema = append(schema, field)

		case lexer.ClassSemicolon:
			return append(schema, field), nil

		default:
			return nil, c.Error(errAfterName)
		}
	}
}

func parseValueShape(c *lexer.Cursor) (route.Shape, route.FieldType, error) {
	name, err := c.ExpectIdent()
	if err != nil {
		return 0, 0, c.Error(errFieldType)
	}

	var shape route.Shape
	switch name {
	case "Option":
		shape = route.Optional
	case "Vec":
		shape = route.List
	case "HashSet":
		shape = route.Set
	default:
		t, ok := route.ParseFieldType(name)
		if !ok {
			return 0, 0, c.Error(errFieldType)
		}
		c.Step()
		return route.Required, t, nil
	}
	c.Step()

	if err := c.TakePunct(lexer.ClassLessThan); err != nil {
		return 0, 0, c.Error(errOpenAngle)
	}
	inner, err := c.ExpectIdent()
	if err != nil {
		return 0, 0, c.Error(errFieldType)
	}
	t, ok := route.ParseFieldType(inner)
	if !ok {
		return 0, 0, c.Error(errFieldType)
	}
	c.Step()
	if err := c.TakePunct(lexer.ClassGreaterThan); err != nil {
		return 0, 0, c.Error(errCloseAngle)
	}
	return shape, t, nil
}
