// Package insulate makes values safe to pass across the host/guest trust
// boundary. Insulated values are deep-frozen, and every reachable function
// is replaced by a memoised wrapper that insulates its receiver, arguments,
// result and thrown values in turn.
package insulate

import (
	"errors"

	"github.com/funvibe/jessie/internal/object"
)

// Insulator owns a wrapper registry. Insulating the same function twice
// through one Insulator yields the same wrapper, and insulating a wrapper
// returns it unchanged. The registry is safe for concurrent use; freezing
// a value that another goroutine is still mutating is not.
type Insulator struct {
	reg    *registry
	exempt map[*object.Function]struct{}
}

// Option configures an Insulator.
type Option func(*Insulator)

// WithExempt marks host functions that are hardened but never wrapped, for
// capabilities that must see their arguments unfrozen.
func WithExempt(fns ...*object.Function) Option {
	return func(ins *Insulator) {
		for _, fn := range fns {
			ins.exempt[fn] = struct{}{}
		}
	}
}

func New(opts ...Option) *Insulator {
	ins := &Insulator{
		reg:    newRegistry(),
		exempt: make(map[*object.Function]struct{}),
	}
	for _, opt := range opts {
		opt(ins)
	}
	return ins
}

// Insulate deep-freezes v, wrapping v itself and every function reachable
// through its own properties. Property writes that are refused are skipped.
func (ins *Insulator) Insulate(v object.Object) object.Object {
	if v == nil {
		return object.UNDEFINED
	}
	if fn, ok := v.(*object.Function); ok {
		v = ins.wrap(fn)
	}
	return object.Harden(v, ins.tryWrapMethods)
}

// IsWrapper reports whether fn is a wrapper produced by this Insulator.
func (ins *Insulator) IsWrapper(fn *object.Function) bool {
	return ins.reg.isWrapper(fn)
}

// Sealed is a value that has crossed the trust boundary. Only an Insulator
// can produce one.
type Sealed struct {
	v object.Object
}

// Seal insulates v and returns it as a Sealed handle.
func (ins *Insulator) Seal(v object.Object) Sealed {
	return Sealed{v: ins.Insulate(v)}
}

// Value returns the insulated value, or undefined for the zero Sealed.
func (s Sealed) Value() object.Object {
	if s.v == nil {
		return object.UNDEFINED
	}
	return s.v
}

func (ins *Insulator) wrap(fn *object.Function) *object.Function {
	if _, ok := ins.exempt[fn]; ok {
		return fn
	}
	return ins.reg.lookupOrCreate(fn, func() *object.Function {
		w := object.NewFunction(fn.Name, func(this object.Object, args ...object.Object) (object.Object, error) {
			this = ins.Insulate(this)
			in := make([]object.Object, len(args))
			for i, arg := range args {
				in[i] = ins.Insulate(arg)
			}
			res, err := fn.Call(this, in...)
			if err != nil {
				var thrown *object.Thrown
				if errors.As(err, &thrown) {
					return nil, &object.Thrown{Value: ins.Insulate(thrown.Value)}
				}
				return nil, err
			}
			return ins.Insulate(res), nil
		})
		for _, e := range fn.Entries() {
			_ = object.SetComputedIndex(w, e.Key, e.Value)
		}
		return w
	})
}

// tryWrapMethods replaces every function-valued own property of o with its
// wrapper before o is frozen.
func (ins *Insulator) tryWrapMethods(o object.Object) {
	for _, e := range object.OwnEntries(o) {
		fn, ok := e.Value.(*object.Function)
		if !ok {
			continue
		}
		w := ins.wrap(fn)
		if w == fn {
			continue
		}
		_ = object.SetComputedIndex(o, e.Key, w)
	}
}
