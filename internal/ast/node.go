package ast

import (
	"fmt"
	"strings"
)

// Position is an opaque source position carried by a node.
// It is only used for diagnostics.
type Position struct {
	Source string
	Line   int
	Column int
}

func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.IsValid() {
		return ""
	}
	if p.Source != "" {
		return fmt.Sprintf("%s:%d:%d", p.Source, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Node is a tagged tuple: a tag naming the node kind plus its operands.
// Operands are shaped by the tag's schema:
//
//	OpNode, OpOptNode   *Node (nil when absent)
//	OpNodes             []*Node
//	OpString, OpOptString string ("" when absent)
//	OpLiteral           nil, bool, float64 or string
//	OpParts             []Part
type Node struct {
	Tag  Tag
	Args []interface{}
	Pos  Position
}

// Part is one element of a template literal: either cooked text or an expression.
type Part struct {
	Text string
	Expr *Node
}

func (p Part) IsExpr() bool { return p.Expr != nil }

// Node returns operand i as a node, or nil.
func (n *Node) Node(i int) *Node {
	if i >= len(n.Args) {
		return nil
	}
	child, _ := n.Args[i].(*Node)
	return child
}

// Nodes returns operand i as a node list.
func (n *Node) Nodes(i int) []*Node {
	if i >= len(n.Args) {
		return nil
	}
	list, _ := n.Args[i].([]*Node)
	return list
}

// Str returns operand i as a string, or "".
func (n *Node) Str(i int) string {
	if i >= len(n.Args) {
		return ""
	}
	s, _ := n.Args[i].(string)
	return s
}

// Literal returns operand i unchanged.
func (n *Node) Literal(i int) interface{} {
	if i >= len(n.Args) {
		return nil
	}
	return n.Args[i]
}

// Parts returns operand i as template parts.
func (n *Node) Parts(i int) []Part {
	if i >= len(n.Args) {
		return nil
	}
	parts, _ := n.Args[i].([]Part)
	return parts
}

// Inspect renders the node in tuple notation, e.g. ["get",["use","x"],"y"].
func (n *Node) Inspect() string {
	var sb strings.Builder
	writeNode(&sb, n)
	return sb.String()
}

func writeNode(sb *strings.Builder, n *Node) {
	if n == nil {
		sb.WriteString("null")
		return
	}
	sb.WriteString("[")
	fmt.Fprintf(sb, "%q", string(n.Tag))
	for _, arg := range n.Args {
		sb.WriteString(",")
		switch a := arg.(type) {
		case *Node:
			writeNode(sb, a)
		case []*Node:
			sb.WriteString("[")
			for i, child := range a {
				if i > 0 {
					sb.WriteString(",")
				}
				writeNode(sb, child)
			}
			sb.WriteString("]")
		case []Part:
			sb.WriteString("[")
			for i, part := range a {
				if i > 0 {
					sb.WriteString(",")
				}
				if part.IsExpr() {
					writeNode(sb, part.Expr)
				} else {
					fmt.Fprintf(sb, "%q", part.Text)
				}
			}
			sb.WriteString("]")
		case string:
			fmt.Fprintf(sb, "%q", a)
		case nil:
			sb.WriteString("null")
		default:
			fmt.Fprintf(sb, "%v", a)
		}
	}
	sb.WriteString("]")
}
