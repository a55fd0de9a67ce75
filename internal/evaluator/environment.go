package evaluator

import (
	"github.com/funvibe/jessie/internal/object"
)

// Binding is one link of the scope chain. Links never change once created;
// only the slot behind a mutable binding's setter does. A nil *Binding is
// the empty chain.
type Binding struct {
	parent *Binding
	name   string
	get    func() object.Object
	set    func(object.Object) object.Object
}

// Extend returns a new chain head binding name in front of chain.
func Extend(chain *Binding, name string, init object.Object, mutable bool) *Binding {
	if init == nil {
		init = object.UNDEFINED
	}
	slot := init
	b := &Binding{
		parent: chain,
		name:   name,
		get:    func() object.Object { return slot },
	}
	if mutable {
		b.set = func(v object.Object) object.Object {
			slot = v
			return v
		}
	}
	return b
}

// Lookup returns the value of the innermost binding of name.
func Lookup(chain *Binding, name string) (object.Object, error) {
	if b := chain.find(name); b != nil {
		return b.get(), nil
	}
	return nil, object.NewError(object.ReferenceMissing, "%s is not defined", name)
}

// Assign stores val in the innermost binding of name.
func Assign(chain *Binding, name string, val object.Object) (object.Object, error) {
	b := chain.find(name)
	if b == nil {
		return nil, object.NewError(object.ReferenceMissing, "%s is not defined", name)
	}
	if b.set == nil {
		return nil, object.NewError(object.TypeMismatch, "assignment to constant %s", name)
	}
	return b.set(val), nil
}

func (b *Binding) find(name string) *Binding {
	for ; b != nil; b = b.parent {
		if b.name == name {
			return b
		}
	}
	return nil
}

func (b *Binding) Name() string     { return b.name }
func (b *Binding) Parent() *Binding { return b.parent }
func (b *Binding) Mutable() bool    { return b.set != nil }
