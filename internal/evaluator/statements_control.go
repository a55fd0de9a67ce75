package evaluator

import (
	"github.com/funvibe/jessie/internal/ast"
	"github.com/funvibe/jessie/internal/object"
)

// evalModule evaluates the statements of a module and yields its default
// export, or undefined when there is none.
func evalModule(e *Evaluator, n *ast.Node) (object.Object, error) {
	oldEnv := e.env
	defer func() { e.env = oldEnv }()

	exported := object.UNDEFINED
	didExport := false
	for _, stmt := range n.Nodes(0) {
		if stmt.Tag == ast.ExportDefault {
			if didExport {
				return nil, e.newError(object.InvalidModule, "cannot use more than one export default statement")
			}
			val, err := e.Dispatch(stmt)
			if err != nil {
				return nil, err
			}
			exported, didExport = val, true
			continue
		}
		if _, err := e.Dispatch(stmt); err != nil {
			return nil, err
		}
	}
	return exported, nil
}

func evalExportDefault(e *Evaluator, n *ast.Node) (object.Object, error) {
	return e.Dispatch(n.Node(0))
}

// evalBlock runs statements in their own scope. A labelled block is the
// target of a break with its label; continuing it is an error.
func evalBlock(e *Evaluator, n *ast.Node) (object.Object, error) {
	label := e.takeLabel()
	oldEnv := e.env
	defer func() { e.env = oldEnv }()

	for _, stmt := range n.Nodes(0) {
		if _, err := e.Dispatch(stmt); err != nil {
			if sig, ok := asExit(err); ok && label != "" && sig.Label == label {
				switch sig.Kind {
				case ExitBreak:
					return object.UNDEFINED, nil
				case ExitContinue:
					return nil, e.newError(object.ContinueTargetInvalid, "cannot continue block labelled %s", label)
				}
			}
			return nil, err
		}
	}
	return object.UNDEFINED, nil
}

func evalIf(e *Evaluator, n *ast.Node) (object.Object, error) {
	cond, err := e.Dispatch(n.Node(0))
	if err != nil {
		return nil, err
	}
	if object.Truthy(cond) {
		_, err = e.Dispatch(n.Node(1))
	} else if alt := n.Node(2); alt != nil {
		_, err = e.Dispatch(alt)
	}
	return object.UNDEFINED, err
}

// evalLabel consumes only a break aimed at its label. Any other exit is
// passed on.
func evalLabel(e *Evaluator, n *ast.Node) (object.Object, error) {
	label := n.Str(0)
	e.pending = label
	_, err := e.Dispatch(n.Node(1))
	if err != nil {
		if sig, ok := asExit(err); ok && sig.Kind == ExitBreak && sig.Label == label {
			return object.UNDEFINED, nil
		}
		return nil, err
	}
	return object.UNDEFINED, nil
}

func evalBreak(e *Evaluator, n *ast.Node) (object.Object, error) {
	return nil, &ExitSignal{Kind: ExitBreak, Label: n.Str(0)}
}

func evalContinue(e *Evaluator, n *ast.Node) (object.Object, error) {
	return nil, &ExitSignal{Kind: ExitContinue, Label: n.Str(0)}
}

func evalReturn(e *Evaluator, n *ast.Node) (object.Object, error) {
	val := object.UNDEFINED
	if expr := n.Node(0); expr != nil {
		v, err := e.Dispatch(expr)
		if err != nil {
			return nil, err
		}
		val = v
	}
	return nil, &ExitSignal{Kind: ExitReturn, Value: val}
}

func evalThrow(e *Evaluator, n *ast.Node) (object.Object, error) {
	val, err := e.Dispatch(n.Node(0))
	if err != nil {
		return nil, err
	}
	return nil, &object.Thrown{Value: val}
}

// evalSwitch runs the body of the first clause with a case strictly equal
// to the discriminant, or of the default clause. Clauses do not fall
// through; an unlabelled break leaves the switch.
func evalSwitch(e *Evaluator, n *ast.Node) (object.Object, error) {
	label := e.takeLabel()
	val, err := e.Dispatch(n.Node(0))
	if err != nil {
		return nil, err
	}

	oldEnv := e.env
	defer func() { e.env = oldEnv }()

	var chosen, fallback *ast.Node
clauses:
	for _, clause := range n.Nodes(1) {
		if clause.Tag != ast.Clause {
			return nil, e.newError(object.UnknownNodeKind, "unexpected %s in switch", clause.Tag)
		}
		for _, guard := range clause.Nodes(0) {
			switch guard.Tag {
			case ast.Case:
				cv, err := e.Dispatch(guard)
				if err != nil {
					return nil, err
				}
				if object.StrictEquals(val, cv) {
					chosen = clause
					break clauses
				}
			case ast.Default:
				if fallback == nil {
					fallback = clause
				}
			default:
				return nil, e.newError(object.UnknownNodeKind, "unrecognized case expression %s", guard.Tag)
			}
		}
	}
	if chosen == nil {
		chosen = fallback
	}
	if chosen == nil {
		return object.UNDEFINED, nil
	}

	if _, err := e.Dispatch(chosen); err != nil {
		if sig, ok := asExit(err); ok && sig.Kind == ExitBreak && (sig.Label == "" || sig.Label == label) {
			return object.UNDEFINED, nil
		}
		return nil, err
	}
	return object.UNDEFINED, nil
}

// evalClause runs the body of a selected switch clause.
func evalClause(e *Evaluator, n *ast.Node) (object.Object, error) {
	_, err := e.Dispatch(n.Node(1))
	return object.UNDEFINED, err
}

// evalCase yields the value the discriminant is compared against.
func evalCase(e *Evaluator, n *ast.Node) (object.Object, error) {
	return e.Dispatch(n.Node(0))
}

func evalDefault(e *Evaluator, n *ast.Node) (object.Object, error) {
	return object.UNDEFINED, nil
}
