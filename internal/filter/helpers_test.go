package filter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func addLeaf(g *Group, field, op, value string, or bool) *Row {
	r := g.AddLeafRow()
	r.Leaf().Field = field
	r.Leaf().SetOperator(op)
	r.Leaf().Value = value
	r.SetOr(or)
	return r
}

func encodeJSON(t *testing.T, g *Group) string {
	t.Helper()
	data, err := Marshal(g.Encode())
	require.NoError(t, err)
	return string(data)
}

func decodeJSON(t *testing.T, data string) *Group {
	t.Helper()
	nodes, err := Parse([]byte(data))
	require.NoError(t, err)
	g := NewGroup()
	g.Decode(nodes)
	return g
}
