package filter

import (
	"log/slog"
	"slices"
)

// Group is an ordered collection of rows. Order is evaluation order.
// A Group is not safe for concurrent use.
type Group struct {
	rows      []*Row
	ops       *Operators
	logger    *slog.Logger
	owner     *Row
	listeners []func(*Group)
}

// Option configures a Group
type Option func(*Group)

// WithOperators sets the operator map used for the group's conditions.
// Nested groups inherit it.
func WithOperators(ops *Operators) Option {
	return func(g *Group) {
		if ops != nil {
			g.ops = ops
		}
	}
}

// WithLogger sets the logger used to report skipped nodes while decoding
func WithLogger(logger *slog.Logger) Option {
	return func(g *Group) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGroup creates an empty group
func NewGroup(opts ...Option) *Group {
	g := &Group{
		ops:    DefaultOperators(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Operators returns the operator map shared by the group's conditions
func (g *Group) Operators() *Operators {
	return g.ops
}

// Owner returns the row holding this group, or nil for a top-level group
func (g *Group) Owner() *Row {
	return g.owner
}

// OnChange registers fn to run after every structural change of this group
// or of any group nested in it.
func (g *Group) OnChange(fn func(*Group)) {
	g.listeners = append(g.listeners, fn)
}

// Rows returns the rows in order. The slice is a copy; the rows are not.
func (g *Group) Rows() []*Row {
	return slices.Clone(g.rows)
}

// Len returns the number of rows
func (g *Group) Len() int {
	return len(g.rows)
}

// Row returns the row at index i, or nil when out of range
func (g *Group) Row(i int) *Row {
	if i < 0 || i >= len(g.rows) {
		return nil
	}
	return g.rows[i]
}

// Index returns the position of r, or -1 when r is not a member
func (g *Group) Index(r *Row) int {
	return slices.Index(g.rows, r)
}

// InsertRow inserts r at pos, clamped to [0, Len()]. A row owned by another
// group is detached from it first. Inserting a group row into itself or into
// one of its own descendants is ignored.
func (g *Group) InsertRow(pos int, r *Row) {
	if r == nil {
		return
	}
	if r.group != nil && g.within(r.group) {
		return
	}
	if r.parent != nil {
		r.parent.RemoveRow(r)
	}

	pos = max(0, min(pos, len(g.rows)))
	g.rows = slices.Insert(g.rows, pos, r)
	r.parent = g
	g.changed()
}

// RemoveRow removes r. Removing a row that is not a member is a no-op.
func (g *Group) RemoveRow(r *Row) {
	i := g.Index(r)
	if i < 0 {
		return
	}
	g.rows = slices.Delete(g.rows, i, i+1)
	r.parent = nil
	r.first, r.last = false, false
	g.changed()
}

// MoveRow moves r by offset positions. It reports false, leaving the order
// untouched, when r is not a member or the target index falls outside the
// group or equals the current one.
func (g *Group) MoveRow(r *Row, offset int) bool {
	i := g.Index(r)
	if i < 0 {
		return false
	}
	target := i + offset
	if target < 0 || target >= len(g.rows) || target == i {
		return false
	}

	g.rows = slices.Delete(g.rows, i, i+1)
	g.rows = slices.Insert(g.rows, target, r)
	g.changed()
	return true
}

// AddLeafRow appends a row holding an empty condition and returns it
func (g *Group) AddLeafRow() *Row {
	r := NewLeafRow(g.ops)
	g.InsertRow(len(g.rows), r)
	return r
}

// AddGroupRow appends a row holding a new empty nested group and returns it
func (g *Group) AddGroupRow() *Row {
	r := NewGroupRow(g.child())
	g.InsertRow(len(g.rows), r)
	return r
}

// InsertLeafRow inserts a row holding an empty condition at pos
func (g *Group) InsertLeafRow(pos int) *Row {
	r := NewLeafRow(g.ops)
	g.InsertRow(pos, r)
	return r
}

// InsertGroupRow inserts a row holding a new empty nested group at pos
func (g *Group) InsertGroupRow(pos int) *Row {
	r := NewGroupRow(g.child())
	g.InsertRow(pos, r)
	return r
}

// Clear removes every row
func (g *Group) Clear() {
	if len(g.rows) == 0 {
		return
	}
	for _, r := range g.rows {
		r.parent = nil
		r.first, r.last = false, false
	}
	g.rows = nil
	g.changed()
}

// Depth returns how many groups enclose this one
func (g *Group) Depth() int {
	depth := 0
	for p := g.parentGroup(); p != nil; p = p.parentGroup() {
		depth++
	}
	return depth
}

func (g *Group) child() *Group {
	return NewGroup(WithOperators(g.ops), WithLogger(g.logger))
}

func (g *Group) parentGroup() *Group {
	if g.owner == nil {
		return nil
	}
	return g.owner.parent
}

// within reports whether g is other or nested anywhere inside it
func (g *Group) within(other *Group) bool {
	for p := g; p != nil; p = p.parentGroup() {
		if p == other {
			return true
		}
	}
	return false
}

// changed recomputes display eligibility and notifies listeners up the tree.
// A row arriving at index 0 has its connector reset to AND.
func (g *Group) changed() {
	for i, r := range g.rows {
		if i == 0 && !r.first {
			r.connector = ConnectorAnd
		}
		r.first = i == 0
		r.last = i == len(g.rows)-1
	}
	for p := g; p != nil; p = p.parentGroup() {
		for _, fn := range p.listeners {
			fn(g)
		}
	}
}
