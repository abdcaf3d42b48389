package filter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireLeaf(t *testing.T, r *Row, field, op, value string) {
	t.Helper()
	require.NotNil(t, r)
	require.False(t, r.IsGroup(), "expected a leaf row")
	assert.Equal(t, field, r.Leaf().Field)
	assert.Equal(t, op, r.Leaf().Operator)
	assert.Equal(t, value, r.Leaf().Value)
}

func TestDecode_FlatAnd(t *testing.T) {
	g := decodeJSON(t, "["+jsonA+","+jsonB+","+jsonC+"]")

	require.Equal(t, 3, g.Len())
	requireLeaf(t, g.Row(0), "field1", "=", "h")
	requireLeaf(t, g.Row(1), "field2", "is less than", "x")
	requireLeaf(t, g.Row(2), "field3", "!=", "y")
	for _, r := range g.Rows() {
		assert.False(t, r.IsOr())
	}
}

func TestDecode_NestedGroup(t *testing.T) {
	g := decodeJSON(t, `[[{"x":{"=":"1"}},{"y":{"=":"2"}}]]`)

	require.Equal(t, 1, g.Len())
	row := g.Row(0)
	require.True(t, row.IsGroup())
	assert.Same(t, row, row.Group().Owner())

	set := row.Group()
	require.Equal(t, 2, set.Len())
	requireLeaf(t, set.Row(0), "x", "=", "1")
	requireLeaf(t, set.Row(1), "y", "=", "2")
	assert.False(t, set.Row(0).IsOr())
	assert.False(t, set.Row(1).IsOr())
	assert.Equal(t, 1, set.Depth())
}

func TestDecode_AppendsRows(t *testing.T) {
	g := decodeJSON(t, "["+jsonA+"]")
	nodes, err := Parse([]byte("[" + jsonB + "]"))
	require.NoError(t, err)
	g.Decode(nodes)

	require.Equal(t, 2, g.Len())
	requireLeaf(t, g.Row(0), "field1", "=", "h")
	requireLeaf(t, g.Row(1), "field2", "is less than", "x")
}

func TestDecode_OrMarksEveryOperand(t *testing.T) {
	g := decodeJSON(t, `[{"-or":[[`+jsonA+`],`+jsonB+`]}]`)

	require.Equal(t, 2, g.Len())
	first := g.Row(0)
	require.True(t, first.IsGroup())
	assert.True(t, first.IsOr())
	require.Equal(t, 1, first.Group().Len())
	requireLeaf(t, first.Group().Row(0), "field1", "=", "h")

	requireLeaf(t, g.Row(1), "field2", "is less than", "x")
	assert.True(t, g.Row(1).IsOr())
}

func TestDecode_AndNodeBecomesGroup(t *testing.T) {
	g := decodeJSON(t, `[{"-and":[`+jsonA+`,`+jsonB+`]}]`)

	require.Equal(t, 1, g.Len())
	require.True(t, g.Row(0).IsGroup())
	assert.Equal(t, 2, g.Row(0).Group().Len())
}

func TestDecode_ConcreteScenario(t *testing.T) {
	input := `[{"-or":[[[{"field1":{"=":"fghfgh"}},{"field2":{"!=":"sdfsd"}}]],{"field3":{"is greater than":"dghgh"}}]}]`
	g := decodeJSON(t, input)

	require.Equal(t, 2, g.Len())

	first := g.Row(0)
	require.True(t, first.IsGroup())
	assert.True(t, first.IsOr())
	set := first.Group()
	require.Equal(t, 2, set.Len())
	requireLeaf(t, set.Row(0), "field1", "=", "fghfgh")
	requireLeaf(t, set.Row(1), "field2", "!=", "sdfsd")
	assert.False(t, set.Row(0).IsOr())
	assert.False(t, set.Row(1).IsOr())

	requireLeaf(t, g.Row(1), "field3", "is greater than", "dghgh")
	assert.True(t, g.Row(1).IsOr())

	assert.JSONEq(t, input, encodeJSON(t, g))
}

func TestDecode_EncodeReachesFixedPoint(t *testing.T) {
	trees := []string{
		"[" + jsonA + "," + jsonB + "]",
		`[{"-or":[[` + jsonA + `],` + jsonB + `]}]`,
		`[{"-or":[[{"-or":[[` + jsonA + `],` + jsonB + `]}],` + jsonC + `]}]`,
		`[{"-or":[[` + jsonA + `],{"-and":[` + jsonB + `,` + jsonC + `]}]}]`,
		`[{"-or":[[[{"-or":[[[[{"field1":{"=":"fghfgh"}},{"field2":{"!=":"sdfsd"}}],{"field3":{"is greater than":"dghgh"}}]],{"field2":{"is greater than":" dgdth"}}]}]],{"field3":{"contains":"gggggggggggggggggg"}}]}]`,
		`[{"-not":[` + jsonA + `,` + jsonB + `]},` + jsonC + `]`,
	}

	for _, tree := range trees {
		once := encodeJSON(t, decodeJSON(t, tree))
		twice := encodeJSON(t, decodeJSON(t, once))
		assert.Equal(t, once, twice, "tree %s", tree)
	}
}

func TestDecode_RoundTripOfEditedRows(t *testing.T) {
	g := NewGroup()
	set := g.AddGroupRow().Group()
	addLeaf(set, "field1", "=", "fghfgh", false)
	addLeaf(set, "field2", "!=", "sdfsd", false)
	addLeaf(g, "field3", "is greater than", "dghgh", true)

	encoded := encodeJSON(t, g)
	assert.Equal(t, `[{"-or":[[[{"field1":{"=":"fghfgh"}},{"field2":{"!=":"sdfsd"}}]],{"field3":{"is greater than":"dghgh"}}]}]`, encoded)
	assert.Equal(t, encoded, encodeJSON(t, decodeJSON(t, encoded)))
}

func TestDecode_LabelNormalizedToSymbol(t *testing.T) {
	g := decodeJSON(t, `[{"field1":{"is equal to":"h"}},{"field2":{"!=":"y"}}]`)

	require.Equal(t, 2, g.Len())
	assert.Equal(t, "=", g.Row(0).Leaf().Operator)
	assert.Equal(t, "is equal to", g.Row(0).Leaf().Label())
	assert.Equal(t, "!=", g.Row(1).Leaf().Operator)
	assert.Equal(t, "is not equal to", g.Row(1).Leaf().Label())
}

func TestDecode_Negation(t *testing.T) {
	g := decodeJSON(t, `[{"-not":`+jsonA+`},{"-not":{"-or":[[`+jsonA+`],`+jsonB+`]}}]`)

	require.Equal(t, 2, g.Len())
	assert.True(t, g.Row(0).Negated())
	requireLeaf(t, g.Row(0), "field1", "=", "h")

	second := g.Row(1)
	assert.True(t, second.Negated())
	require.True(t, second.IsGroup())
	assert.Equal(t, 2, second.Group().Len())
}

func TestDecode_PermissiveShapes(t *testing.T) {
	g := decodeJSON(t, `[1, "x", null, {}, {"f1":{"=":"a"},"f2":{"=":"b"}}, {"age":{">":42}}, {"flag":true}]`)

	require.Equal(t, 3, g.Len())
	requireLeaf(t, g.Row(0), "f1", "=", "a")
	requireLeaf(t, g.Row(1), "age", ">", "42")
	requireLeaf(t, g.Row(2), "flag", "=", "true")
}

func TestGroup_UnmarshalJSONAppends(t *testing.T) {
	var g Group
	require.NoError(t, json.Unmarshal([]byte("["+jsonA+"]"), &g))
	require.NoError(t, json.Unmarshal([]byte("["+jsonB+"]"), &g))

	require.Equal(t, 2, g.Len())
	requireLeaf(t, g.Row(0), "field1", "=", "h")
	requireLeaf(t, g.Row(1), "field2", "is less than", "x")
}

func TestCriteria_RoundTrip(t *testing.T) {
	for _, op := range []string{"=", "is equal to", "!=", "is not equal to", "contains", "is greater than"} {
		c := NewCriteria(nil)
		c.Field = "name"
		c.SetOperator(op)
		c.Value = "v"

		decoded := NewCriteria(nil)
		decoded.Decode(c.Encode())
		assert.Equal(t, c.Field, decoded.Field)
		assert.Equal(t, c.Operator, decoded.Operator)
		assert.Equal(t, c.Label(), decoded.Label())
		assert.Equal(t, c.Value, decoded.Value)
	}
}
