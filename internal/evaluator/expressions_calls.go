package evaluator

import (
	"strings"

	"github.com/funvibe/jessie/internal/ast"
	"github.com/funvibe/jessie/internal/object"
)

func evalCall(e *Evaluator, n *ast.Node) (object.Object, error) {
	this, fn, err := e.evalCallee(n.Node(0))
	if err != nil {
		return nil, err
	}
	args, err := e.evalArgs(n.Nodes(1))
	if err != nil {
		return nil, err
	}
	if !object.IsCallable(fn) {
		return nil, e.newError(object.TypeMismatch, "%s is not a function", describe(n.Node(0)))
	}
	return e.ApplyMethod(this, fn, args)
}

// evalTaggedTemplate calls the tag with the template strings followed by
// the values of the substitutions.
func evalTaggedTemplate(e *Evaluator, n *ast.Node) (object.Object, error) {
	this, fn, err := e.evalCallee(n.Node(0))
	if err != nil {
		return nil, err
	}
	quasi := n.Node(1)
	if quasi.Tag != ast.Quasi {
		return nil, e.newError(object.TypeMismatch, "tagged template expects a template, got %s", quasi.Tag)
	}
	strs, vals, err := e.evalTemplate(quasi.Parts(0))
	if err != nil {
		return nil, err
	}
	if !object.IsCallable(fn) {
		return nil, e.newError(object.TypeMismatch, "%s is not a function", describe(n.Node(0)))
	}
	template := make([]object.Object, len(strs))
	for i, s := range strs {
		template[i] = object.String(s)
	}
	args := append([]object.Object{object.Harden(object.NewArray(template...), nil)}, vals...)
	return e.ApplyMethod(this, fn, args)
}

// evalQuasi renders an untagged template literal.
func evalQuasi(e *Evaluator, n *ast.Node) (object.Object, error) {
	strs, vals, err := e.evalTemplate(n.Parts(0))
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	for i, s := range strs {
		sb.WriteString(s)
		if i < len(vals) {
			sb.WriteString(object.ToString(vals[i]))
		}
	}
	return object.String(sb.String()), nil
}

// evalTemplate splits template parts into the literal strings around the
// substitutions and the substitution values. There is always one more
// string than there are values.
func (e *Evaluator) evalTemplate(parts []ast.Part) ([]string, []object.Object, error) {
	var (
		strs []string
		vals []object.Object
		cur  strings.Builder
	)
	for _, part := range parts {
		if !part.IsExpr() {
			cur.WriteString(part.Text)
			continue
		}
		val, err := e.Dispatch(part.Expr)
		if err != nil {
			return nil, nil, err
		}
		strs = append(strs, cur.String())
		cur.Reset()
		vals = append(vals, val)
	}
	strs = append(strs, cur.String())
	return strs, vals, nil
}

// evalCallee evaluates a call target, keeping the receiver for method calls.
func (e *Evaluator) evalCallee(n *ast.Node) (object.Object, object.Object, error) {
	e.receiver = nil
	fn, err := e.Dispatch(n)
	if err != nil {
		return nil, nil, err
	}
	this := object.UNDEFINED
	if (n.Tag == ast.Get || n.Tag == ast.Index) && e.receiver != nil {
		this = e.receiver
	}
	e.receiver = nil
	return this, fn, nil
}

func (e *Evaluator) evalArgs(nodes []*ast.Node) ([]object.Object, error) {
	args := make([]object.Object, 0, len(nodes))
	for _, a := range nodes {
		val, err := e.Dispatch(a)
		if err != nil {
			return nil, err
		}
		if a.Tag == ast.Spread {
			items, err := iterate(val)
			if err != nil {
				return nil, err
			}
			args = append(args, items...)
			continue
		}
		args = append(args, val)
	}
	return args, nil
}
