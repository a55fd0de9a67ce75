package evaluator

import (
	"github.com/funvibe/jessie/internal/ast"
	"github.com/funvibe/jessie/internal/object"
)

func evalUse(e *Evaluator, n *ast.Node) (object.Object, error) {
	return Lookup(e.env, n.Str(0))
}

func evalGet(e *Evaluator, n *ast.Node) (object.Object, error) {
	obj, err := e.Dispatch(n.Node(0))
	if err != nil {
		return nil, err
	}
	e.receiver = obj
	return object.Get(obj, n.Str(1))
}

// evalNumericIndex is the expression layer index: only numbers may be used.
func evalNumericIndex(e *Evaluator, n *ast.Node) (object.Object, error) {
	obj, key, err := e.evalIndexOperands(n, true)
	if err != nil {
		return nil, err
	}
	e.receiver = obj
	return object.Get(obj, key)
}

// evalIndex is the statement layer index: any value may be used.
func evalIndex(e *Evaluator, n *ast.Node) (object.Object, error) {
	obj, key, err := e.evalIndexOperands(n, false)
	if err != nil {
		return nil, err
	}
	e.receiver = obj
	return object.Get(obj, key)
}

func (e *Evaluator) evalIndexOperands(n *ast.Node, numeric bool) (object.Object, string, error) {
	obj, err := e.Dispatch(n.Node(0))
	if err != nil {
		return nil, "", err
	}
	idx, err := e.Dispatch(n.Node(1))
	if err != nil {
		return nil, "", err
	}
	if _, ok := idx.(object.Number); numeric && !ok {
		return nil, "", object.NewError(object.TypeMismatch, "index value %s is not numeric", idx.Inspect())
	}
	return obj, object.ToString(idx), nil
}

// reference is an assignable location.
type reference struct {
	get func() (object.Object, error)
	set func(object.Object) (object.Object, error)
	// this is the receiver when the location is a property.
	this object.Object
}

// reference evaluates the object and key parts of an assignment target
// without reading the location itself.
func (e *Evaluator) reference(n *ast.Node) (*reference, error) {
	switch n.Tag {
	case ast.Use:
		name := n.Str(0)
		env := e.env
		return &reference{
			get:  func() (object.Object, error) { return Lookup(env, name) },
			set:  func(v object.Object) (object.Object, error) { return Assign(env, name, v) },
			this: object.UNDEFINED,
		}, nil
	case ast.Get:
		obj, err := e.Dispatch(n.Node(0))
		if err != nil {
			return nil, err
		}
		return e.propertyRef(obj, n.Str(1)), nil
	case ast.Index:
		obj, key, err := e.evalIndexOperands(n, e.layer < ast.LayerStatement)
		if err != nil {
			return nil, err
		}
		return e.propertyRef(obj, key), nil
	}
	return nil, e.newError(object.TypeMismatch, "invalid assignment target %s", n.Tag)
}

func (e *Evaluator) propertyRef(obj object.Object, key string) *reference {
	return &reference{
		get: func() (object.Object, error) { return object.Get(obj, key) },
		set: func(v object.Object) (object.Object, error) {
			if err := e.SetComputedIndex(obj, key, v); err != nil {
				return nil, err
			}
			return v, nil
		},
		this: obj,
	}
}
