package filter

import "encoding/json"

// encodeMode is the state of the encoder between rows
type encodeMode int

const (
	// modePlain appends each item to the current target
	modePlain encodeMode = iota
	// modeInOr means the last item landed as the right operand of an -or
	// node; a following AND row must regroup it under -and first
	modeInOr
)

// encoder folds rows left to right into the nested tree
type encoder struct {
	mode   encodeMode
	root   *Node // list node holding the top-level sequence
	target *Node // node whose Children receive the next item
}

func newEncoder() *encoder {
	root := List()
	return &encoder{mode: modePlain, root: root, target: root}
}

// push adds one row's item. An OR row makes everything accumulated so far
// the left operand of a new -or node; an AND row right after an OR moves the
// OR's right operand into a new -and node and keeps appending there.
func (e *encoder) push(item *Node, or bool) {
	switch {
	case or:
		node := Or(e.root)
		e.root = List(node)
		e.target = node
		e.mode = modeInOr
	case e.mode == modeInOr:
		last := len(e.target.Children) - 1
		and := And(e.target.Children[last])
		e.target.Children[last] = and
		e.target = and
		e.mode = modePlain
	}
	e.target.Children = append(e.target.Children, item)
}

// Encode converts the rows into the serialized tree. The first row's
// connector is never consulted: it always joins as AND.
func (g *Group) Encode() []*Node {
	enc := newEncoder()
	for i, r := range g.rows {
		enc.push(r.Encode(), i > 0 && r.IsOr())
	}
	if enc.root.Children == nil {
		return []*Node{}
	}
	return enc.root.Children
}

// MarshalJSON implements json.Marshaler by encoding the group
func (g *Group) MarshalJSON() ([]byte, error) {
	return Marshal(g.Encode())
}

var _ json.Marshaler = (*Group)(nil)
