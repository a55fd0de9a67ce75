package evaluator

import (
	"github.com/funvibe/jessie/internal/ast"
	"github.com/funvibe/jessie/internal/object"
)

func evalLet(e *Evaluator, n *ast.Node) (object.Object, error) {
	return object.UNDEFINED, e.declare(n.Nodes(0), true)
}

func evalConst(e *Evaluator, n *ast.Node) (object.Object, error) {
	return object.UNDEFINED, e.declare(n.Nodes(0), false)
}

func (e *Evaluator) declare(decls []*ast.Node, mutable bool) error {
	for _, decl := range decls {
		switch decl.Tag {
		case ast.Def:
			name, err := e.Dispatch(decl)
			if err != nil {
				return err
			}
			e.env = Extend(e.env, string(name.(object.String)), object.UNDEFINED, mutable)
		case ast.Bind:
			pattern := decl.Node(0)
			if pattern.Tag == ast.Def && isFunctionLiteral(decl.Node(1)) {
				// Let the function see its own binding.
				var init func(object.Object)
				e.env, init = declareSlot(e.env, pattern.Str(0), mutable)
				val, err := e.Dispatch(decl)
				if err != nil {
					return err
				}
				init(val)
				continue
			}
			val, err := e.Dispatch(decl)
			if err != nil {
				return err
			}
			if err := e.BindPattern(pattern, mutable, val); err != nil {
				return err
			}
		default:
			return e.newError(object.UnknownNodeKind, "unexpected %s in declaration", decl.Tag)
		}
	}
	return nil
}

// evalBind yields the initializer value; the declaration binds the pattern.
func evalBind(e *Evaluator, n *ast.Node) (object.Object, error) {
	return e.Dispatch(n.Node(1))
}

// evalDef yields the declared name.
func evalDef(e *Evaluator, n *ast.Node) (object.Object, error) {
	return object.String(n.Str(0)), nil
}

func isFunctionLiteral(n *ast.Node) bool {
	switch n.Tag {
	case ast.Lambda, ast.Arrow, ast.FunctionExpr:
		return true
	}
	return false
}

// declareSlot binds name to undefined and returns the initializer of the
// new binding, which works even for constants.
func declareSlot(chain *Binding, name string, mutable bool) (*Binding, func(object.Object)) {
	b := Extend(chain, name, object.UNDEFINED, true)
	set := b.set
	if !mutable {
		b.set = nil
	}
	return b, func(v object.Object) { set(v) }
}

func evalFunctionDecl(e *Evaluator, n *ast.Node) (object.Object, error) {
	name, err := e.Dispatch(n.Node(0))
	if err != nil {
		return nil, err
	}
	var init func(object.Object)
	e.env, init = declareSlot(e.env, object.ToString(name), true)
	init(e.closure(object.ToString(name), n.Nodes(1), n.Node(2)))
	return object.UNDEFINED, nil
}

// evalFunctionExpr binds the function's own name in a scope visible only
// to its body.
func evalFunctionExpr(e *Evaluator, n *ast.Node) (object.Object, error) {
	def := n.Node(0)
	if def == nil {
		return e.closure("", n.Nodes(1), n.Node(2)), nil
	}
	name, err := e.Dispatch(def)
	if err != nil {
		return nil, err
	}
	outer := e.env
	scope, init := declareSlot(outer, object.ToString(name), false)
	e.env = scope
	fn := e.closure(object.ToString(name), n.Nodes(1), n.Node(2))
	e.env = outer
	init(fn)
	return fn, nil
}

func evalLambda(e *Evaluator, n *ast.Node) (object.Object, error) {
	return e.closure("", n.Nodes(0), n.Node(1)), nil
}

func evalAssign(e *Evaluator, n *ast.Node) (object.Object, error) {
	ref, err := e.reference(n.Node(0))
	if err != nil {
		return nil, err
	}
	val, err := e.Dispatch(n.Node(1))
	if err != nil {
		return nil, err
	}
	return ref.set(val)
}

func evalCompoundAssign(e *Evaluator, n *ast.Node) (object.Object, error) {
	op, ok := ast.CompoundAssignments[n.Tag]
	if !ok {
		return nil, e.newError(object.UnknownNodeKind, "unknown assignment operator %s", n.Tag)
	}
	ref, err := e.reference(n.Node(0))
	if err != nil {
		return nil, err
	}
	cur, err := ref.get()
	if err != nil {
		return nil, err
	}
	rhs, err := e.Dispatch(n.Node(1))
	if err != nil {
		return nil, err
	}
	val, err := binaryOp(op, cur, rhs)
	if err != nil {
		return nil, err
	}
	return ref.set(val)
}
