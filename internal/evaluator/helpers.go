package evaluator

import (
	"errors"
	"math"

	"github.com/funvibe/jessie/internal/ast"
	"github.com/funvibe/jessie/internal/object"
)

var (
	nan = math.NaN()
	inf = math.Inf(1)
)

// newError creates an error positioned at the innermost node on the
// position stack, carrying the current stack trace.
func (e *Evaluator) newError(kind object.ErrorKind, format string, a ...interface{}) *object.Error {
	err := object.NewError(kind, format, a...)
	for i := len(e.nodes) - 1; i >= 0; i-- {
		if e.nodes[i].Pos.IsValid() {
			stamp(err, e.nodes[i], e.Source)
			break
		}
	}
	if len(e.CallStack) > 0 {
		err.StackTrace = make([]object.StackFrame, len(e.CallStack))
		for i, frame := range e.CallStack {
			err.StackTrace[i] = object.StackFrame{
				Name:   frame.Name,
				Source: frame.Source,
				Line:   frame.Line,
				Column: frame.Column,
			}
		}
	}
	return err
}

// stamp records the position of n on err unless err already has one.
// Sentinels carry no message and are never modified.
func stamp(err *object.Error, n *ast.Node, source string) {
	if err.Line != 0 || err.Message == "" || !n.Pos.IsValid() {
		return
	}
	err.Line = n.Pos.Line
	err.Column = n.Pos.Column
	err.Source = n.Pos.Source
	if err.Source == "" {
		err.Source = source
	}
}

// PushCall adds a call frame to the stack
func (e *Evaluator) PushCall(name string) {
	if name == "" {
		name = "<anonymous>"
	}
	frame := CallFrame{Name: name, Source: e.Source}
	if n := len(e.nodes); n > 0 {
		pos := e.nodes[n-1].Pos
		frame.Line, frame.Column = pos.Line, pos.Column
		if pos.Source != "" {
			frame.Source = pos.Source
		}
	}
	e.CallStack = append(e.CallStack, frame)
}

// PopCall removes the top call frame
func (e *Evaluator) PopCall() {
	if len(e.CallStack) > 0 {
		e.CallStack = e.CallStack[:len(e.CallStack)-1]
	}
}

func defaultApplyMethod(this, fn object.Object, args []object.Object) (object.Object, error) {
	f, ok := fn.(*object.Function)
	if !ok {
		return nil, object.NewError(object.TypeMismatch, "%s is not a function", object.ToString(fn))
	}
	return f.Call(this, args...)
}

// iterate lists the elements a for-of loop or spread visits.
func iterate(v object.Object) ([]object.Object, error) {
	switch it := v.(type) {
	case *object.Array:
		out := make([]object.Object, len(it.Elements))
		copy(out, it.Elements)
		return out, nil
	case object.String:
		runes := []rune(string(it))
		out := make([]object.Object, len(runes))
		for i, r := range runes {
			out[i] = object.String(r)
		}
		return out, nil
	}
	return nil, object.NewError(object.TypeMismatch, "%s is not iterable", object.TypeOf(v))
}

// describe renders a callee expression for error messages.
func describe(n *ast.Node) string {
	switch n.Tag {
	case ast.Use:
		return n.Str(0)
	case ast.Get:
		return describe(n.Node(0)) + "." + n.Str(1)
	case ast.Index:
		return describe(n.Node(0)) + "[...]"
	}
	return "expression"
}

// caughtValue converts err into the value a guest catch clause binds.
// Exit signals and uncatchable faults report false.
func caughtValue(err error) (object.Object, bool) {
	if _, ok := asExit(err); ok {
		return nil, false
	}
	var oe *object.Error
	if errors.As(err, &oe) {
		if !oe.Catchable() {
			return nil, false
		}
		return errorRecord(string(oe.Kind), oe.Message), true
	}
	var thrown *object.Thrown
	if errors.As(err, &thrown) {
		if thrown.Value == nil {
			return object.UNDEFINED, true
		}
		return thrown.Value, true
	}
	return errorRecord("Error", err.Error()), true
}

func errorRecord(name, message string) *object.Record {
	return object.NewRecord(
		object.Entry{Key: "name", Value: object.String(name)},
		object.Entry{Key: "message", Value: object.String(message)},
	)
}

func exitFault(e *Evaluator, sig *ExitSignal) error {
	return e.newError(object.InternalFault, "%s", sig.Error())
}
