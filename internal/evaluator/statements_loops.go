package evaluator

import (
	"github.com/funvibe/jessie/internal/ast"
	"github.com/funvibe/jessie/internal/object"
)

func evalWhile(e *Evaluator, n *ast.Node) (object.Object, error) {
	label := e.takeLabel()
	for {
		cond, err := e.Dispatch(n.Node(0))
		if err != nil {
			return nil, err
		}
		if !object.Truthy(cond) {
			return object.UNDEFINED, nil
		}
		if _, err := e.Dispatch(n.Node(1)); err != nil {
			sig, ok := loopExit(err, label)
			if !ok {
				return nil, err
			}
			if sig.Kind == ExitBreak {
				return object.UNDEFINED, nil
			}
		}
	}
}

// evalFor runs a counted loop. A continue still runs the increment; a break
// does not. Each iteration sees fresh copies of the loop variables.
func evalFor(e *Evaluator, n *ast.Node) (object.Object, error) {
	label := e.takeLabel()
	init, cond, incr, body := n.Node(0), n.Node(1), n.Node(2), n.Node(3)

	oldEnv := e.env
	defer func() { e.env = oldEnv }()

	if init != nil {
		if _, err := e.Dispatch(init); err != nil {
			return nil, err
		}
	}
	for {
		if cond != nil {
			c, err := e.Dispatch(cond)
			if err != nil {
				return nil, err
			}
			if !object.Truthy(c) {
				return object.UNDEFINED, nil
			}
		}
		if _, err := e.Dispatch(body); err != nil {
			sig, ok := loopExit(err, label)
			if !ok {
				return nil, err
			}
			if sig.Kind == ExitBreak {
				return object.UNDEFINED, nil
			}
		}
		e.env = copyScope(e.env, oldEnv)
		if incr != nil {
			if _, err := e.Dispatch(incr); err != nil {
				return nil, err
			}
		}
	}
}

// evalForOf binds each element of an array or string against a pattern.
func evalForOf(e *Evaluator, n *ast.Node) (object.Object, error) {
	label := e.takeLabel()
	mutable := n.Str(0) != string(ast.Const)
	pattern, body := n.Node(1), n.Node(3)

	it, err := e.Dispatch(n.Node(2))
	if err != nil {
		return nil, err
	}
	items, err := iterate(it)
	if err != nil {
		return nil, err
	}

	oldEnv := e.env
	defer func() { e.env = oldEnv }()

	for _, item := range items {
		e.env = oldEnv
		if err := e.BindPattern(pattern, mutable, item); err != nil {
			return nil, err
		}
		if _, err := e.Dispatch(body); err != nil {
			sig, ok := loopExit(err, label)
			if !ok {
				return nil, err
			}
			if sig.Kind == ExitBreak {
				return object.UNDEFINED, nil
			}
		}
	}
	return object.UNDEFINED, nil
}

// copyScope rebuilds the bindings between head and stop with their current
// values, so closures from a finished iteration keep their own copies.
func copyScope(head, stop *Binding) *Binding {
	var links []*Binding
	for b := head; b != nil && b != stop; b = b.parent {
		links = append(links, b)
	}
	out := stop
	for i := len(links) - 1; i >= 0; i-- {
		b := links[i]
		out = Extend(out, b.name, b.get(), b.set != nil)
	}
	return out
}
