package rutas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/rutas/pkg/route"
)

func TestSegments(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"/", []string{""}},
		{"", []string{""}},
		{"/a", []string{"a"}},
		{"/a/", []string{"a", ""}},
		{"/a/b", []string{"a", "b"}},
		{"/a//b", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Segments(tt.path))
		})
	}
}

func TestCaptureParsers(t *testing.T) {
	v8, ok := ParseInt8("-128")
	assert.True(t, ok)
	assert.Equal(t, int8(-128), v8)

	_, ok = ParseInt8("128")
	assert.False(t, ok)

	_, ok = ParseUint8("-1")
	assert.False(t, ok)

	v32, ok := ParseUint32("42")
	assert.True(t, ok)
	assert.Equal(t, uint32(42), v32)

	_, ok = ParseUint32("42x")
	assert.False(t, ok, "residue must reject the segment")

	_, ok = ParseUint32("")
	assert.False(t, ok)

	v64, ok := ParseInt64("-9000000000")
	assert.True(t, ok)
	assert.Equal(t, int64(-9000000000), v64)

	u, ok := ParseUint("7")
	assert.True(t, ok)
	assert.Equal(t, uint(7), u)

	s, ok := ParseString("add")
	assert.True(t, ok)
	assert.Equal(t, "add", s)

	_, ok = ParseString("")
	assert.False(t, ok)
}

func TestFieldParsers(t *testing.T) {
	f, err := FieldFloat64("1.5")
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	_, err = FieldInt32("abc")
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "abc", se.Value)
	assert.Equal(t, "expected int32", se.Reason)

	_, err = FieldUint64("")
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "expected uint64, got an empty value", se.Reason)
}

func TestAssemble_ListKeepsArrivalOrder(t *testing.T) {
	schema := route.Schema{{Name: "a", Shape: route.List, Type: route.FieldUint32}}

	values, err := Assemble(schema, ParsePairs("a=1&a=10&a=100"))
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 10, 100}, values["a"])
}

func TestAssemble_MissingRequired(t *testing.T) {
	schema := route.Schema{{Name: "a", Shape: route.Required, Type: route.FieldString}}

	_, err := Assemble(schema, ParsePairs("b=1"))
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "a", se.Field)
	assert.Equal(t, `field "a": missing required field`, err.Error())
}

func TestAssemble_Shapes(t *testing.T) {
	schema := route.Schema{
		{Name: "name", Shape: route.Required, Type: route.FieldString},
		{Name: "page", Shape: route.Optional, Type: route.FieldUint32},
		{Name: "limit", Shape: route.Optional, Type: route.FieldInt64},
		{Name: "tag", Shape: route.Set, Type: route.FieldString},
		{Name: "ids", Shape: route.List, Type: route.FieldInt64},
		{Name: "draft", Shape: route.Flag},
		{Name: "archived", Shape: route.Flag},
	}

	values, err := Assemble(schema, ParsePairs("name=a&tag=x&name=b+c&page=3&tag=y&tag=x&draft&other=1"))
	require.NoError(t, err)

	assert.Equal(t, "b c", values.String("name"), "last value wins")
	assert.Equal(t, uint32(3), values["page"])
	assert.False(t, values.Has("limit"))
	assert.Equal(t, map[string]struct{}{"x": {}, "y": {}}, values["tag"])
	assert.Equal(t, []int64{}, values["ids"])
	assert.True(t, values.Flag("draft"))
	assert.False(t, values.Flag("archived"))
	assert.True(t, values.Has("archived"))
	assert.False(t, values.Has("other"))
}

func TestAssemble_ParseFailureIsDeferred(t *testing.T) {
	schema := route.Schema{
		{Name: "a", Shape: route.Required, Type: route.FieldString},
		{Name: "n", Shape: route.List, Type: route.FieldUint32},
	}

	// The bad value comes first; the missing field is declared first and
	// is reported first.
	_, err := Assemble(schema, ParsePairs("n=1&n=x"))
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "a", se.Field)

	_, err = Assemble(schema, ParsePairs("n=x&a=ok&n=2"))
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "n", se.Field)
	assert.Equal(t, "x", se.Value)
	assert.Equal(t, `field "n": expected uint32, got "x"`, err.Error())
}

func TestParsePairs(t *testing.T) {
	pairs := ParsePairs("b=2&a=1&&b=3&flag&x=%zz&sp=a+b%21")
	assert.Equal(t, []Pair{
		{Key: "b", Value: "2"},
		{Key: "a", Value: "1"},
		{Key: "b", Value: "3"},
		{Key: "flag", Value: ""},
		{Key: "sp", Value: "a b!"},
	}, pairs)
	assert.Empty(t, ParsePairs(""))
}
