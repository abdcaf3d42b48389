package filter

// Connector relates a row to the row before it in the same group
type Connector int

const (
	ConnectorAnd Connector = iota
	ConnectorOr
)

func (c Connector) String() string {
	if c == ConnectorOr {
		return "or"
	}
	return "and"
}

// Row is one editable unit of a group. Its payload is fixed at construction:
// either a leaf condition or a nested group, never both.
type Row struct {
	connector Connector
	negated   bool
	leaf      *Criteria
	group     *Group
	parent    *Group

	// display eligibility, recomputed by the parent group
	first bool
	last  bool
}

// NewLeafRow creates a detached row holding an empty condition
func NewLeafRow(ops *Operators) *Row {
	return &Row{leaf: NewCriteria(ops)}
}

// NewGroupRow creates a detached row holding the given nested group.
// A nil group is replaced with an empty one.
func NewGroupRow(g *Group) *Row {
	if g == nil {
		g = NewGroup()
	}
	r := &Row{group: g}
	g.owner = r
	return r
}

// IsGroup reports whether the payload is a nested group
func (r *Row) IsGroup() bool {
	return r.group != nil
}

// Leaf returns the leaf payload, or nil for group rows
func (r *Row) Leaf() *Criteria {
	return r.leaf
}

// Group returns the nested group payload, or nil for leaf rows
func (r *Row) Group() *Group {
	return r.group
}

// Parent returns the group that currently owns the row
func (r *Row) Parent() *Group {
	return r.parent
}

// Connector returns the row's connector flag as stored
func (r *Row) Connector() Connector {
	return r.connector
}

// IsOr reports whether the connector flag is OR
func (r *Row) IsOr() bool {
	return r.connector == ConnectorOr
}

// SetOr sets the connector flag
func (r *Row) SetOr(or bool) {
	if or {
		r.connector = ConnectorOr
	} else {
		r.connector = ConnectorAnd
	}
}

// Negated reports whether the row is wrapped in -not when encoded
func (r *Row) Negated() bool {
	return r.negated
}

// SetNegated sets the negation flag
func (r *Row) SetNegated(negated bool) {
	r.negated = negated
}

// CanMoveUp reports whether the row may show an up-move affordance
func (r *Row) CanMoveUp() bool {
	return r.parent != nil && !r.first
}

// CanMoveDown reports whether the row may show a down-move affordance
func (r *Row) CanMoveDown() bool {
	return r.parent != nil && !r.last
}

// ShowsConnector reports whether the connector selector is meaningful here
func (r *Row) ShowsConnector() bool {
	return r.parent != nil && !r.first
}

// Encode returns the payload's tree: a leaf node, or the nested group's
// sequence as a list node.
func (r *Row) Encode() *Node {
	var n *Node
	if r.group != nil {
		n = List(r.group.Encode()...)
	} else {
		n = r.leaf.Encode()
	}
	if r.negated {
		n = Not(n)
	}
	return n
}

// String renders the payload for display
func (r *Row) String() string {
	if r.group != nil {
		return "(group)"
	}
	return r.leaf.String()
}
