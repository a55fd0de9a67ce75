package evaluator

import (
	"github.com/funvibe/jessie/internal/ast"
	"github.com/funvibe/jessie/internal/object"
)

// catchClause is the value of a catch node: what to bind and what to run.
type catchClause struct {
	pattern *ast.Node
	body    *ast.Node
}

func (c *catchClause) Type() object.ObjectType { return "catch" }
func (c *catchClause) Inspect() string         { return "<catch clause>" }

// evalTry runs the protected block, then the catch clause for guest
// errors, then the finally body. Exit signals and uncatchable faults skip
// the catch clause but still run finally.
func evalTry(e *Evaluator, n *ast.Node) (object.Object, error) {
	_, err := e.Dispatch(n.Node(0))
	if err != nil && n.Node(1) != nil {
		if val, ok := caughtValue(err); ok {
			err = e.runCatch(n.Node(1), val)
		}
	}
	if fin := n.Node(2); fin != nil {
		if _, ferr := e.Dispatch(fin); ferr != nil {
			return nil, ferr
		}
	}
	if err != nil {
		return nil, err
	}
	return object.UNDEFINED, nil
}

func (e *Evaluator) runCatch(n *ast.Node, caught object.Object) error {
	val, err := e.Dispatch(n)
	if err != nil {
		return err
	}
	clause, ok := val.(*catchClause)
	if !ok {
		return e.newError(object.UnknownNodeKind, "malformed catch clause")
	}

	oldEnv := e.env
	defer func() { e.env = oldEnv }()

	if clause.pattern != nil {
		if err := e.BindPattern(clause.pattern, true, caught); err != nil {
			return err
		}
	}
	_, err = e.Dispatch(clause.body)
	return err
}

func evalCatch(e *Evaluator, n *ast.Node) (object.Object, error) {
	return &catchClause{pattern: n.Node(0), body: n.Node(1)}, nil
}

func evalFinally(e *Evaluator, n *ast.Node) (object.Object, error) {
	_, err := e.Dispatch(n.Node(0))
	return object.UNDEFINED, err
}
