package evaluator

import (
	"github.com/funvibe/jessie/internal/ast"
	"github.com/funvibe/jessie/internal/object"
)

// closure creates a function value that captures the current binding chain.
func (e *Evaluator) closure(name string, params []*ast.Node, body *ast.Node) *object.Function {
	captured := e.env
	pattern := &ast.Node{Tag: ast.MatchArray, Args: []interface{}{params}, Pos: body.Pos}
	return object.NewFunction(name, func(this object.Object, args ...object.Object) (object.Object, error) {
		return e.apply(captured, name, pattern, body, args)
	})
}

// apply runs body in a fresh scope on top of captured, with args bound
// mutably against params. It yields the value carried by a return exit,
// or else the value of body itself.
func (e *Evaluator) apply(captured *Binding, name string, params, body *ast.Node, args []object.Object) (object.Object, error) {
	oldEnv, oldPending := e.env, e.pending
	e.env, e.pending = captured, ""
	defer func() {
		e.env, e.pending = oldEnv, oldPending
	}()

	e.PushCall(name)
	defer e.PopCall()

	if err := e.BindPattern(params, true, object.NewArray(args...)); err != nil {
		return nil, err
	}

	res, err := e.Dispatch(body)
	if err != nil {
		if sig, ok := asExit(err); ok {
			if sig.Kind == ExitReturn {
				if sig.Value == nil {
					return object.UNDEFINED, nil
				}
				return sig.Value, nil
			}
			return nil, exitFault(e, sig)
		}
		return nil, err
	}
	return res, nil
}
