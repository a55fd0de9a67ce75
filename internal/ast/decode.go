package ast

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/funvibe/jessie/internal/object"
	"gopkg.in/yaml.v3"
)

// New builds a node after checking its operands against the tag's schema.
// Trailing optional operands may be omitted. Integer literals are
// normalised to float64.
func New(tag Tag, args ...interface{}) (*Node, error) {
	schema, ok := Schema(tag)
	if !ok {
		return nil, object.NewError(object.UnknownNodeKind, "unknown node kind %q", tag)
	}
	if len(args) > len(schema) {
		return nil, object.NewError(object.UnknownNodeKind, "%s: expected at most %d operands, got %d", tag, len(schema), len(args))
	}
	node := &Node{Tag: tag, Args: make([]interface{}, len(schema))}
	for i, kind := range schema {
		var arg interface{}
		if i < len(args) {
			arg = args[i]
		}
		val, err := checkOperand(tag, i, kind, arg)
		if err != nil {
			return nil, err
		}
		node.Args[i] = val
	}
	return node, nil
}

// N is like New but panics on malformed input. Intended for tests and
// statically known trees.
func N(tag Tag, args ...interface{}) *Node {
	node, err := New(tag, args...)
	if err != nil {
		panic(err)
	}
	return node
}

// At sets the node position and returns the node.
func (n *Node) At(line, column int) *Node {
	n.Pos.Line = line
	n.Pos.Column = column
	return n
}

func checkOperand(tag Tag, i int, kind OperandKind, arg interface{}) (interface{}, error) {
	bad := func() error {
		return object.NewError(object.UnknownNodeKind, "%s: malformed operand %d (%T)", tag, i, arg)
	}
	switch kind {
	case OpNode:
		n, ok := arg.(*Node)
		if !ok || n == nil {
			return nil, bad()
		}
		return n, nil
	case OpOptNode:
		if arg == nil {
			return (*Node)(nil), nil
		}
		n, ok := arg.(*Node)
		if !ok {
			return nil, bad()
		}
		return n, nil
	case OpNodes:
		switch list := arg.(type) {
		case nil:
			return []*Node{}, nil
		case []*Node:
			return list, nil
		}
		return nil, bad()
	case OpString:
		s, ok := arg.(string)
		if !ok {
			return nil, bad()
		}
		return s, nil
	case OpOptString:
		if arg == nil {
			return "", nil
		}
		s, ok := arg.(string)
		if !ok {
			return nil, bad()
		}
		return s, nil
	case OpLiteral:
		lit, ok := normalizeLiteral(arg)
		if !ok {
			return nil, bad()
		}
		return lit, nil
	case OpParts:
		switch parts := arg.(type) {
		case nil:
			return []Part{}, nil
		case []Part:
			return parts, nil
		}
		return nil, bad()
	}
	return nil, bad()
}

func normalizeLiteral(v interface{}) (interface{}, bool) {
	switch x := v.(type) {
	case nil, bool, string, float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return nil, false
}

// Decode converts a generic tuple tree, as produced by encoding/json or
// yaml.v3 unmarshalling into interface{}, into a node tree.
func Decode(v interface{}) (*Node, error) {
	return decodeNode(v, "$")
}

// ParseJSON decodes a JSON-encoded tuple tree.
func ParseJSON(data []byte) (*Node, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode AST JSON: %w", err)
	}
	return Decode(raw)
}

// ParseYAML decodes a YAML-encoded tuple tree.
func ParseYAML(data []byte) (*Node, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode AST YAML: %w", err)
	}
	return Decode(raw)
}

func decodeNode(v interface{}, path string) (*Node, error) {
	tuple, ok := v.([]interface{})
	if !ok || len(tuple) == 0 {
		return nil, object.NewError(object.UnknownNodeKind, "%s: expected a tagged tuple, got %T", path, v)
	}
	name, ok := tuple[0].(string)
	if !ok {
		return nil, object.NewError(object.UnknownNodeKind, "%s: tuple tag must be a string", path)
	}
	tag := Tag(name)
	schema, ok := Schema(tag)
	if !ok {
		return nil, object.NewError(object.UnknownNodeKind, "%s: unknown node kind %q", path, name)
	}

	operands := tuple[1:]
	var pos Position
	if len(operands) > 0 {
		if p, ok := decodePosition(operands[len(operands)-1]); ok {
			pos = p
			operands = operands[:len(operands)-1]
		}
	}
	if len(operands) > len(schema) {
		return nil, object.NewError(object.UnknownNodeKind, "%s: %s expects at most %d operands, got %d", path, tag, len(schema), len(operands))
	}

	node := &Node{Tag: tag, Args: make([]interface{}, len(schema)), Pos: pos}
	for i, kind := range schema {
		var raw interface{}
		if i < len(operands) {
			raw = operands[i]
		}
		opPath := fmt.Sprintf("%s[%d]", path, i+1)
		val, err := decodeOperand(tag, kind, raw, opPath)
		if err != nil {
			return nil, err
		}
		node.Args[i] = val
	}
	return node, nil
}

func decodeOperand(tag Tag, kind OperandKind, raw interface{}, path string) (interface{}, error) {
	switch kind {
	case OpNode:
		return decodeNode(raw, path)
	case OpOptNode:
		if raw == nil {
			return (*Node)(nil), nil
		}
		return decodeNode(raw, path)
	case OpNodes:
		if raw == nil {
			return []*Node{}, nil
		}
		list, ok := raw.([]interface{})
		if !ok {
			return nil, object.NewError(object.UnknownNodeKind, "%s: %s expects a node list", path, tag)
		}
		nodes := make([]*Node, len(list))
		for i, item := range list {
			n, err := decodeNode(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			nodes[i] = n
		}
		return nodes, nil
	case OpString, OpOptString:
		if raw == nil && kind == OpOptString {
			return "", nil
		}
		s, ok := raw.(string)
		if !ok {
			return nil, object.NewError(object.UnknownNodeKind, "%s: %s expects a string operand", path, tag)
		}
		return s, nil
	case OpLiteral:
		lit, ok := normalizeLiteral(raw)
		if !ok {
			return nil, object.NewError(object.UnknownNodeKind, "%s: %s expects a primitive literal, got %T", path, tag, raw)
		}
		return lit, nil
	case OpParts:
		list, ok := raw.([]interface{})
		if !ok && raw != nil {
			return nil, object.NewError(object.UnknownNodeKind, "%s: %s expects template parts", path, tag)
		}
		parts := make([]Part, 0, len(list))
		for i, item := range list {
			if s, ok := item.(string); ok {
				parts = append(parts, Part{Text: s})
				continue
			}
			n, err := decodeNode(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			parts = append(parts, Part{Expr: n})
		}
		return parts, nil
	}
	return nil, object.NewError(object.UnknownNodeKind, "%s: unsupported operand kind", path)
}

// decodePosition recognises a trailing {line, column, source} mapping.
func decodePosition(v interface{}) (Position, bool) {
	var m map[string]interface{}
	switch x := v.(type) {
	case map[string]interface{}:
		m = x
	case map[interface{}]interface{}:
		m = make(map[string]interface{}, len(x))
		for k, val := range x {
			m[fmt.Sprint(k)] = val
		}
	default:
		return Position{}, false
	}
	var pos Position
	if line, ok := toInt(m["line"]); ok {
		pos.Line = line
	}
	if col, ok := toInt(m["column"]); ok {
		pos.Column = col
	}
	if src, ok := m["source"].(string); ok {
		pos.Source = src
	}
	return pos, true
}

func toInt(v interface{}) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int(x), true
	}
	return 0, false
}

// Encode renders a node back into a generic tuple tree.
func Encode(n *Node) []interface{} {
	if n == nil {
		return nil
	}
	out := make([]interface{}, 0, len(n.Args)+1)
	out = append(out, string(n.Tag))
	for _, arg := range n.Args {
		switch a := arg.(type) {
		case *Node:
			if a == nil {
				out = append(out, nil)
			} else {
				out = append(out, Encode(a))
			}
		case []*Node:
			list := make([]interface{}, len(a))
			for i, child := range a {
				list[i] = Encode(child)
			}
			out = append(out, list)
		case []Part:
			list := make([]interface{}, len(a))
			for i, part := range a {
				if part.IsExpr() {
					list[i] = Encode(part.Expr)
				} else {
					list[i] = part.Text
				}
			}
			out = append(out, list)
		default:
			out = append(out, a)
		}
	}
	if n.Pos.IsValid() {
		pos := map[string]interface{}{"line": n.Pos.Line, "column": n.Pos.Column}
		if n.Pos.Source != "" {
			pos["source"] = n.Pos.Source
		}
		out = append(out, pos)
	}
	return out
}
