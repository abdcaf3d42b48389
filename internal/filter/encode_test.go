package filter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	jsonA = `{"field1":{"=":"h"}}`
	jsonB = `{"field2":{"is less than":"x"}}`
	jsonC = `{"field3":{"!=":"y"}}`
	jsonD = `{"field4":{"contains":"z"}}`
)

func TestEncode_FlatAnd(t *testing.T) {
	g := NewGroup()
	addLeaf(g, "field1", "=", "h", false)
	addLeaf(g, "field2", "is less than", "x", false)
	addLeaf(g, "field3", "!=", "y", false)

	assert.Equal(t, "["+jsonA+","+jsonB+","+jsonC+"]", encodeJSON(t, g))
}

func TestEncode_BinaryOr(t *testing.T) {
	g := NewGroup()
	addLeaf(g, "field1", "=", "h", false)
	addLeaf(g, "field2", "is less than", "x", true)

	assert.Equal(t, `[{"-or":[[`+jsonA+`],`+jsonB+`]}]`, encodeJSON(t, g))
}

func TestEncode_ChainedOrIsLeftAssociative(t *testing.T) {
	g := NewGroup()
	addLeaf(g, "field1", "=", "h", false)
	addLeaf(g, "field2", "is less than", "x", true)
	addLeaf(g, "field3", "!=", "y", true)

	want := `[{"-or":[[{"-or":[[` + jsonA + `],` + jsonB + `]}],` + jsonC + `]}]`
	assert.Equal(t, want, encodeJSON(t, g))
}

func TestEncode_OrThenAnd(t *testing.T) {
	g := NewGroup()
	addLeaf(g, "field1", "=", "h", false)
	addLeaf(g, "field2", "is less than", "x", true)
	addLeaf(g, "field3", "!=", "y", false)

	want := `[{"-or":[[` + jsonA + `],{"-and":[` + jsonB + `,` + jsonC + `]}]}]`
	assert.Equal(t, want, encodeJSON(t, g))
}

func TestEncode_OrThenSeveralAnds(t *testing.T) {
	g := NewGroup()
	addLeaf(g, "field1", "=", "h", false)
	addLeaf(g, "field2", "is less than", "x", true)
	addLeaf(g, "field3", "!=", "y", false)
	addLeaf(g, "field4", "contains", "z", false)

	want := `[{"-or":[[` + jsonA + `],{"-and":[` + jsonB + `,` + jsonC + `,` + jsonD + `]}]}]`
	assert.Equal(t, want, encodeJSON(t, g))
}

func TestEncode_OrAndOr(t *testing.T) {
	g := NewGroup()
	addLeaf(g, "field1", "=", "h", false)
	addLeaf(g, "field2", "is less than", "x", true)
	addLeaf(g, "field3", "!=", "y", false)
	addLeaf(g, "field4", "contains", "z", true)

	want := `[{"-or":[[{"-or":[[` + jsonA + `],{"-and":[` + jsonB + `,` + jsonC + `]}]}],` + jsonD + `]}]`
	assert.Equal(t, want, encodeJSON(t, g))
}

func TestEncode_AndsBeforeOrBecomeLeftOperand(t *testing.T) {
	g := NewGroup()
	addLeaf(g, "field1", "=", "h", false)
	addLeaf(g, "field2", "is less than", "x", false)
	addLeaf(g, "field3", "!=", "y", true)

	want := `[{"-or":[[` + jsonA + `,` + jsonB + `],` + jsonC + `]}]`
	assert.Equal(t, want, encodeJSON(t, g))
}

func TestEncode_NestedGroup(t *testing.T) {
	g := NewGroup()
	set := g.AddGroupRow().Group()
	addLeaf(set, "x", "=", "1", false)
	addLeaf(set, "y", "=", "2", false)

	assert.Equal(t, `[[{"x":{"=":"1"}},{"y":{"=":"2"}}]]`, encodeJSON(t, g))
}

func TestEncode_FirstRowConnectorIsIgnored(t *testing.T) {
	g := NewGroup()
	first := addLeaf(g, "field1", "=", "h", true)
	addLeaf(g, "field2", "is less than", "x", false)

	assert.Equal(t, "["+jsonA+","+jsonB+"]", encodeJSON(t, g))
	assert.True(t, first.IsOr(), "stored flag is left untouched")
}

func TestEncode_EmptyGroup(t *testing.T) {
	g := NewGroup()
	assert.Equal(t, "[]", encodeJSON(t, g))

	g.AddGroupRow()
	assert.Equal(t, "[[]]", encodeJSON(t, g))
}

func TestEncode_LabelStoredAsSymbol(t *testing.T) {
	g := NewGroup()
	r := addLeaf(g, "field1", "is equal to", "h", false)

	assert.Equal(t, "=", r.Leaf().Operator)
	assert.Equal(t, "is equal to", r.Leaf().Label())
	assert.Equal(t, "["+jsonA+"]", encodeJSON(t, g))
}

func TestEncode_Negation(t *testing.T) {
	g := NewGroup()
	addLeaf(g, "field1", "=", "h", false).SetNegated(true)
	addLeaf(g, "field2", "is less than", "x", true)

	assert.Equal(t, `[{"-or":[[{"-not":`+jsonA+`}],`+jsonB+`]}]`, encodeJSON(t, g))
}

func TestGroup_MarshalJSON(t *testing.T) {
	g := NewGroup()
	addLeaf(g, "field1", "=", "h", false)
	addLeaf(g, "field2", "is less than", "x", true)

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"-or":[[`+jsonA+`],`+jsonB+`]}]`, string(data))
}
