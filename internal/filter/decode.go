package filter

import "encoding/json"

// Decode appends rows for every node of a serialized tree. Existing rows are
// kept: loading twice yields both sets of rows. Call Clear first to replace.
func (g *Group) Decode(nodes []*Node) {
	for _, n := range nodes {
		g.addNode(n)
	}
}

// UnmarshalJSON implements json.Unmarshaler with the append semantics of Decode
func (g *Group) UnmarshalJSON(data []byte) error {
	nodes, err := Parse(data)
	if err != nil {
		return err
	}
	if g.ops == nil {
		*g = *NewGroup()
	}
	g.Decode(nodes)
	return nil
}

// addNode appends the rows materialized from n and returns them
func (g *Group) addNode(n *Node) []*Row {
	if n == nil {
		return nil
	}

	switch n.Kind {
	case KindOr:
		var added []*Row
		for _, operand := range n.Children {
			rows := g.addNode(operand)
			for _, r := range rows {
				r.SetOr(true)
			}
			added = append(added, rows...)
		}
		return added
	case KindAnd, KindList:
		return []*Row{g.addList(n.Children)}
	case KindLeaf:
		r := g.AddLeafRow()
		r.Leaf().Decode(n)
		return []*Row{r}
	case KindNot:
		if len(n.Children) == 0 || n.Children[0] == nil {
			g.logger.Debug("skipping empty -not node")
			return nil
		}
		inner := n.Children[0]
		// an -or spreads over several rows and a nested -not already owns the
		// row's flag, so both keep their own group to stay a single operand
		var r *Row
		if inner.Kind == KindOr || inner.Kind == KindNot {
			r = g.AddGroupRow()
			r.Group().addNode(inner)
		} else {
			rows := g.addNode(inner)
			if len(rows) == 0 {
				return nil
			}
			r = rows[0]
		}
		r.SetNegated(true)
		return []*Row{r}
	default:
		g.logger.Debug("skipping unrecognized filter node", "kind", n.Kind.String(), "value", n.Value)
		return nil
	}
}

// addList appends a group row for an AND-sequence. A sequence whose only
// element is itself a sequence is unwrapped one level, undoing the extra
// array the encoder puts around an OR's left operand.
func (g *Group) addList(children []*Node) *Row {
	if len(children) == 1 && children[0] != nil && children[0].Kind == KindList {
		children = children[0].Children
	}
	r := g.AddGroupRow()
	r.Group().Decode(children)
	return r
}

var _ json.Unmarshaler = (*Group)(nil)
