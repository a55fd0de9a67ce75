package evaluator

import (
	"github.com/funvibe/jessie/internal/ast"
	"github.com/funvibe/jessie/internal/object"
)

func evalData(e *Evaluator, n *ast.Node) (object.Object, error) {
	return object.FromLiteral(n.Literal(0)), nil
}

func evalArray(e *Evaluator, n *ast.Node) (object.Object, error) {
	elements := make([]object.Object, 0, len(n.Nodes(0)))
	for _, el := range n.Nodes(0) {
		val, err := e.Dispatch(el)
		if err != nil {
			return nil, err
		}
		if el.Tag == ast.Spread {
			items, err := iterate(val)
			if err != nil {
				return nil, err
			}
			elements = append(elements, items...)
			continue
		}
		elements = append(elements, val)
	}
	return object.NewArray(elements...), nil
}

func evalRecord(e *Evaluator, n *ast.Node) (object.Object, error) {
	rec := object.NewRecord()
	for _, p := range n.Nodes(0) {
		val, err := e.Dispatch(p)
		if err != nil {
			return nil, err
		}
		switch p.Tag {
		case ast.SpreadObj:
			if object.IsNullish(val) {
				continue
			}
			for _, entry := range object.OwnEntries(val) {
				if err := e.SetComputedIndex(rec, entry.Key, entry.Value); err != nil {
					return nil, err
				}
			}
		case ast.Prop:
			if err := e.SetComputedIndex(rec, p.Str(0), val); err != nil {
				return nil, err
			}
		default:
			return nil, object.NewError(object.UnknownNodeKind, "unexpected %s in record literal", p.Tag)
		}
	}
	return rec, nil
}

// evalProp yields the value of a record property; the record reads the key.
func evalProp(e *Evaluator, n *ast.Node) (object.Object, error) {
	return e.Dispatch(n.Node(1))
}

// evalSpread yields the spread operand; the enclosing array, record or call
// expands it.
func evalSpread(e *Evaluator, n *ast.Node) (object.Object, error) {
	return e.Dispatch(n.Node(0))
}
