package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_KeepsSymbolsReadable(t *testing.T) {
	data, err := Marshal([]*Node{Leaf("age", "<", "5"), Not(Leaf("name", "=", `a"b`))})
	require.NoError(t, err)
	assert.Equal(t, `[{"age":{"<":"5"}},{"-not":{"name":{"=":"a\"b"}}}]`, string(data))
}

func TestMarshal_RejectsMalformedNot(t *testing.T) {
	_, err := Marshal([]*Node{{Kind: KindNot}})
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kinds []Kind
	}{
		{"blank", "  ", nil},
		{"empty array", "[]", nil},
		{"leaves", "[" + jsonA + "," + jsonB + "]", []Kind{KindLeaf, KindLeaf}},
		{"single object", jsonA, []Kind{KindLeaf}},
		{"or wins over and", `[{"-and":[],"-or":[]}]`, []Kind{KindOr}},
		{"list and not", `[[], {"-not":[]}]`, []Kind{KindList, KindNot}},
		{"scalars", `[1, true, null]`, []Kind{KindInvalid, KindInvalid, KindInvalid}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			var kinds []Kind
			for _, n := range nodes {
				kinds = append(kinds, n.Kind)
			}
			assert.Equal(t, tt.kinds, kinds)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, input := range []string{`[{"a":`, `[] []`, `{"a":}`} {
		_, err := Parse([]byte(input))
		assert.Error(t, err, input)
	}
}

func TestParse_KeepsKeyOrder(t *testing.T) {
	nodes, err := Parse([]byte(`[{"zeta":{"!=":"1","=":"2"},"alpha":{"=":"3"}}]`))
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "zeta", nodes[0].Field)
	assert.Equal(t, "!=", nodes[0].Operator)
	assert.Equal(t, "1", nodes[0].Value)
}

func TestNode_UnmarshalJSON(t *testing.T) {
	var n Node
	require.NoError(t, n.UnmarshalJSON([]byte(`{"-or":[[`+jsonA+`],`+jsonB+`]}`)))
	assert.Equal(t, KindOr, n.Kind)
	require.Len(t, n.Children, 2)
	assert.Equal(t, KindList, n.Children[0].Kind)
	assert.Equal(t, "field2", n.Children[1].Field)
}

func TestOperators_PassThrough(t *testing.T) {
	ops := DefaultOperators()

	assert.Equal(t, "=", ops.Symbol("is equal to"))
	assert.Equal(t, "=", ops.Symbol("="))
	assert.Equal(t, "is not equal to", ops.Label("!="))
	assert.Equal(t, "contains", ops.Symbol("contains"))
	assert.Equal(t, "contains", ops.Label("contains"))
	assert.Equal(t, DefaultChoices, ops.Choices())
}
