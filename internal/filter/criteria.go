package filter

// Criteria is one atomic condition: field, operator and value.
// Operator always holds the stored symbol; Label gives the display form.
type Criteria struct {
	Field    string
	Operator string
	Value    string

	ops *Operators
}

// NewCriteria creates an empty condition translating operators through ops
func NewCriteria(ops *Operators) *Criteria {
	if ops == nil {
		ops = DefaultOperators()
	}
	return &Criteria{ops: ops}
}

// SetOperator accepts either a display label or a symbol
func (c *Criteria) SetOperator(op string) {
	c.Operator = c.ops.Symbol(op)
}

// Label returns the operator as shown to the user
func (c *Criteria) Label() string {
	return c.ops.Label(c.Operator)
}

// Encode returns the leaf node {field: {operator: value}}
func (c *Criteria) Encode() *Node {
	return Leaf(c.Field, c.ops.Symbol(c.Operator), c.Value)
}

// Decode loads field, operator and value from a leaf node.
// Nodes of any other kind are ignored.
func (c *Criteria) Decode(n *Node) {
	if n == nil || n.Kind != KindLeaf {
		return
	}
	c.Field = n.Field
	c.SetOperator(n.Operator)
	c.Value = n.Value
}

// String renders the condition for display
func (c *Criteria) String() string {
	return c.Field + " " + c.Label() + " " + c.Value
}
