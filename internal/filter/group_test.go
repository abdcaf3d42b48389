package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(g *Group) []string {
	var out []string
	for _, r := range g.Rows() {
		out = append(out, r.Leaf().Field)
	}
	return out
}

func TestGroup_DisplayEligibility(t *testing.T) {
	g := NewGroup()
	a := addLeaf(g, "a", "=", "1", false)
	b := addLeaf(g, "b", "=", "2", false)
	c := addLeaf(g, "c", "=", "3", false)

	assert.False(t, a.CanMoveUp())
	assert.False(t, a.ShowsConnector())
	assert.True(t, a.CanMoveDown())

	assert.True(t, b.CanMoveUp())
	assert.True(t, b.ShowsConnector())
	assert.True(t, b.CanMoveDown())

	assert.True(t, c.CanMoveUp())
	assert.False(t, c.CanMoveDown())

	g.RemoveRow(a)
	assert.False(t, b.CanMoveUp())
	assert.False(t, b.ShowsConnector())
	assert.False(t, a.CanMoveUp())
	assert.False(t, a.CanMoveDown())
	assert.Nil(t, a.Parent())
}

func TestGroup_SingleRowCannotMove(t *testing.T) {
	g := NewGroup()
	r := g.AddLeafRow()

	assert.False(t, r.CanMoveUp())
	assert.False(t, r.CanMoveDown())
	assert.False(t, g.MoveRow(r, 1))
	assert.False(t, g.MoveRow(r, -1))
}

func TestGroup_MoveBoundaryIsNoop(t *testing.T) {
	g := NewGroup()
	a := addLeaf(g, "a", "=", "1", false)
	addLeaf(g, "b", "=", "2", false)
	c := addLeaf(g, "c", "=", "3", false)

	assert.False(t, g.MoveRow(a, -1))
	assert.False(t, g.MoveRow(c, 1))
	assert.False(t, g.MoveRow(a, 5))
	assert.False(t, g.MoveRow(a, 0))
	assert.Equal(t, []string{"a", "b", "c"}, fields(g))
}

func TestGroup_MoveRow(t *testing.T) {
	g := NewGroup()
	a := addLeaf(g, "a", "=", "1", false)
	addLeaf(g, "b", "=", "2", false)
	c := addLeaf(g, "c", "=", "3", false)

	require.True(t, g.MoveRow(a, 1))
	assert.Equal(t, []string{"b", "a", "c"}, fields(g))
	assert.True(t, a.CanMoveUp())

	require.True(t, g.MoveRow(c, -2))
	assert.Equal(t, []string{"c", "b", "a"}, fields(g))
	assert.False(t, c.CanMoveUp())
	assert.False(t, a.CanMoveDown())
}

func TestGroup_RemoveNonMemberIsNoop(t *testing.T) {
	g := NewGroup()
	addLeaf(g, "a", "=", "1", false)
	other := NewGroup()
	stray := addLeaf(other, "x", "=", "1", false)

	g.RemoveRow(stray)
	g.RemoveRow(nil)
	assert.Equal(t, 1, g.Len())
	assert.Same(t, other, stray.Parent())
}

func TestGroup_InsertRowDetachesFromPreviousGroup(t *testing.T) {
	g := NewGroup()
	addLeaf(g, "a", "=", "1", false)
	addLeaf(g, "b", "=", "2", false)

	other := NewGroup()
	x := addLeaf(other, "x", "=", "1", false)

	g.InsertRow(1, x)
	assert.Equal(t, []string{"a", "x", "b"}, fields(g))
	assert.Equal(t, 0, other.Len())
	assert.Same(t, g, x.Parent())

	g.InsertRow(-3, NewLeafRow(nil))
	assert.Equal(t, "", g.Row(0).Leaf().Field)
	g.InsertRow(99, NewLeafRow(nil))
	assert.Equal(t, 5, g.Len())
}

func TestGroup_InsertIntoOwnDescendantIsIgnored(t *testing.T) {
	g := NewGroup()
	outer := g.AddGroupRow()
	inner := outer.Group().AddGroupRow()

	inner.Group().InsertRow(0, outer)
	outer.Group().InsertRow(0, outer)

	assert.Equal(t, 0, inner.Group().Len())
	assert.Same(t, g, outer.Parent())
	assert.Equal(t, 1, outer.Group().Len())
}

func TestGroup_OnChangeBubbles(t *testing.T) {
	g := NewGroup()
	var changes int
	g.OnChange(func(*Group) { changes++ })

	set := g.AddGroupRow().Group()
	assert.Equal(t, 1, changes)

	r := set.AddLeafRow()
	assert.Equal(t, 2, changes)

	set.RemoveRow(r)
	assert.Equal(t, 3, changes)

	g.MoveRow(g.Row(0), 1)
	assert.Equal(t, 3, changes, "rejected move does not notify")
}

func TestGroup_Clear(t *testing.T) {
	g := NewGroup()
	a := addLeaf(g, "a", "=", "1", false)
	addLeaf(g, "b", "=", "2", false)

	g.Clear()
	assert.Equal(t, 0, g.Len())
	assert.Nil(t, a.Parent())
	assert.Equal(t, "[]", encodeJSON(t, g))
}

func TestGroup_NestedGroupsShareOperators(t *testing.T) {
	ops := NewOperators(map[string]string{"equals": "=="}, []string{"equals"})
	g := NewGroup(WithOperators(ops))
	set := g.AddGroupRow().Group()
	r := set.AddLeafRow()
	r.Leaf().SetOperator("equals")

	assert.Same(t, ops, set.Operators())
	assert.Equal(t, "==", r.Leaf().Operator)
	assert.Equal(t, []string{"equals"}, ops.Choices())
}

func TestGroup_InsertAtPosition(t *testing.T) {
	g := NewGroup()
	addLeaf(g, "a", "=", "1", false)
	addLeaf(g, "c", "=", "3", false)

	b := g.InsertLeafRow(1)
	b.Leaf().Field = "b"
	assert.Equal(t, []string{"a", "b", "c"}, fields(g))

	set := g.InsertGroupRow(0)
	require.True(t, set.IsGroup())
	assert.Equal(t, 0, g.Index(set))
	assert.Same(t, g.Operators(), set.Group().Operators())
	assert.Equal(t, 1, set.Group().Depth())
}

func TestGroup_RowArrivingFirstDropsOr(t *testing.T) {
	g := NewGroup()
	a := addLeaf(g, "a", "=", "1", false)
	b := addLeaf(g, "b", "=", "2", true)

	require.True(t, g.MoveRow(b, -1))
	assert.False(t, b.IsOr())
	require.True(t, g.MoveRow(a, -1))

	assert.False(t, b.IsOr())
	assert.Equal(t, `[{"a":{"=":"1"}},{"b":{"=":"2"}}]`, encodeJSON(t, g))
}

func TestGroup_RemovingFirstRowResetsNewFirst(t *testing.T) {
	g := NewGroup()
	a := addLeaf(g, "a", "=", "1", false)
	b := addLeaf(g, "b", "=", "2", true)
	c := addLeaf(g, "c", "=", "3", true)

	g.RemoveRow(a)
	assert.False(t, b.IsOr())
	assert.True(t, c.IsOr(), "rows below keep their connector")

	// a first row that stays first keeps an explicitly set flag
	b.SetOr(true)
	addLeaf(g, "d", "=", "4", false)
	assert.True(t, b.IsOr())
}
