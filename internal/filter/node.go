package filter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rebeliceyang/multifilter/internal/models"
)

// Group markers used on the wire
const (
	keyAnd = "-and"
	keyOr  = "-or"
	keyNot = "-not"
)

// Kind identifies the shape of a serialized tree node
type Kind int

const (
	KindInvalid Kind = iota
	KindLeaf         // {field: {operator: value}}
	KindList         // [node, ...], an AND-sequence evaluated as a nested group
	KindAnd          // {"-and": [node, ...]}
	KindOr           // {"-or": [left, right]}
	KindNot          // {"-not": node}
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindList:
		return "list"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindNot:
		return "not"
	default:
		return "invalid"
	}
}

// Node is one node of the serialized filter tree.
// Field, Operator and Value are only meaningful for KindLeaf;
// Children holds operands for every other kind.
type Node struct {
	Kind     Kind
	Field    string
	Operator string
	Value    string
	Children []*Node
}

// Leaf creates a leaf condition node
func Leaf(field, operator, value string) *Node {
	return &Node{Kind: KindLeaf, Field: field, Operator: operator, Value: value}
}

// List creates a bare array node
func List(children ...*Node) *Node {
	return &Node{Kind: KindList, Children: children}
}

// And creates an -and node
func And(children ...*Node) *Node {
	return &Node{Kind: KindAnd, Children: children}
}

// Or creates an -or node. The encoder always produces exactly two
// operands, the first being a list.
func Or(operands ...*Node) *Node {
	return &Node{Kind: KindOr, Children: operands}
}

// Not creates a -not node
func Not(inner *Node) *Node {
	return &Node{Kind: KindNot, Children: []*Node{inner}}
}

// MarshalJSON implements json.Marshaler
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler using the same permissive
// classification as Parse.
func (n *Node) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := readValue(dec)
	if err != nil {
		return err
	}
	*n = *classify(v)
	return nil
}

func (n *Node) writeJSON(buf *bytes.Buffer) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}

	switch n.Kind {
	case KindLeaf:
		buf.WriteByte('{')
		writeString(buf, n.Field)
		buf.WriteString(":{")
		writeString(buf, n.Operator)
		buf.WriteByte(':')
		writeString(buf, n.Value)
		buf.WriteString("}}")
	case KindList:
		return writeArray(buf, n.Children)
	case KindAnd, KindOr:
		key := keyAnd
		if n.Kind == KindOr {
			key = keyOr
		}
		buf.WriteByte('{')
		writeString(buf, key)
		buf.WriteByte(':')
		if err := writeArray(buf, n.Children); err != nil {
			return err
		}
		buf.WriteByte('}')
	case KindNot:
		if len(n.Children) != 1 {
			return fmt.Errorf("-not node needs exactly one operand, got %d", len(n.Children))
		}
		buf.WriteByte('{')
		writeString(buf, keyNot)
		buf.WriteByte(':')
		if err := n.Children[0].writeJSON(buf); err != nil {
			return err
		}
		buf.WriteByte('}')
	default:
		buf.WriteString("null")
	}
	return nil
}

func writeArray(buf *bytes.Buffer, nodes []*Node) error {
	buf.WriteByte('[')
	for i, child := range nodes {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := child.writeJSON(buf); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

// writeString writes s as a JSON string without HTML escaping, so that
// symbols such as "<" stay readable on the wire.
func writeString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
}

// Marshal serializes a top-level node sequence as a JSON array
func Marshal(nodes []*Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeArray(&buf, nodes); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Parse reads a serialized filter. The top level is expected to be an array;
// a single object is accepted as a one-element sequence. Blank input is an
// empty filter. Only JSON syntax errors are reported.
func Parse(data []byte) ([]*Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []*Node{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := readValue(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse filter: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse filter: trailing data after top-level value")
	}

	if v.kind != rawArray {
		return []*Node{classify(v)}, nil
	}
	return classifyAll(v.items), nil
}

type rawKind int

const (
	rawScalar rawKind = iota
	rawNull
	rawObject
	rawArray
)

// rawValue is a decoded JSON value that keeps object keys in document order
type rawValue struct {
	kind   rawKind
	text   string
	keys   []string
	fields []rawValue
	items  []rawValue
}

func (v rawValue) field(key string) (rawValue, bool) {
	for i, k := range v.keys {
		if k == key {
			return v.fields[i], true
		}
	}
	return rawValue{}, false
}

func readValue(dec *json.Decoder) (rawValue, error) {
	tok, err := dec.Token()
	if err != nil {
		return rawValue{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			v := rawValue{kind: rawObject}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return rawValue{}, err
				}
				key, _ := kt.(string)
				val, err := readValue(dec)
				if err != nil {
					return rawValue{}, err
				}
				v.keys = append(v.keys, key)
				v.fields = append(v.fields, val)
			}
			if _, err := dec.Token(); err != nil {
				return rawValue{}, err
			}
			return v, nil
		case '[':
			v := rawValue{kind: rawArray}
			for dec.More() {
				item, err := readValue(dec)
				if err != nil {
					return rawValue{}, err
				}
				v.items = append(v.items, item)
			}
			if _, err := dec.Token(); err != nil {
				return rawValue{}, err
			}
			return v, nil
		}
		return rawValue{}, fmt.Errorf("unexpected delimiter %q", t)
	case string:
		return rawValue{kind: rawScalar, text: t}, nil
	case json.Number:
		return rawValue{kind: rawScalar, text: t.String()}, nil
	case bool:
		return rawValue{kind: rawScalar, text: strconv.FormatBool(t)}, nil
	case nil:
		return rawValue{kind: rawNull}, nil
	}
	return rawValue{}, fmt.Errorf("unexpected token %v", tok)
}

// classify is the single place where incoming JSON is dispatched on shape.
// "-or" takes precedence over "-and", which takes precedence over "-not";
// any other object is a leaf whose first key is the field and whose first
// nested key is the operator.
func classify(v rawValue) *Node {
	switch v.kind {
	case rawArray:
		return List(classifyAll(v.items)...)
	case rawObject:
		if len(v.keys) == 0 {
			return &Node{Kind: KindInvalid}
		}
		if val, ok := v.field(keyOr); ok {
			return Or(operands(val)...)
		}
		if val, ok := v.field(keyAnd); ok {
			return And(operands(val)...)
		}
		if val, ok := v.field(keyNot); ok {
			return Not(classify(val))
		}
		return classifyLeaf(v.keys[0], v.fields[0])
	default:
		return &Node{Kind: KindInvalid, Value: v.text}
	}
}

func classifyAll(items []rawValue) []*Node {
	nodes := make([]*Node, 0, len(items))
	for _, item := range items {
		nodes = append(nodes, classify(item))
	}
	return nodes
}

func operands(v rawValue) []*Node {
	if v.kind == rawArray {
		return classifyAll(v.items)
	}
	return []*Node{classify(v)}
}

func classifyLeaf(field string, v rawValue) *Node {
	switch v.kind {
	case rawObject:
		if len(v.keys) == 0 {
			return Leaf(field, "", "")
		}
		return Leaf(field, v.keys[0], scalarText(v.fields[0]))
	case rawScalar, rawNull:
		// {field: value} shorthand
		return Leaf(field, string(models.OpEqual), scalarText(v))
	default:
		return Leaf(field, "", "")
	}
}

func scalarText(v rawValue) string {
	if v.kind == rawScalar {
		return v.text
	}
	return ""
}
