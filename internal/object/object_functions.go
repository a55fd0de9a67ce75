package object

import "fmt"

// NativeFunction is the calling convention shared by guest closures,
// host endowments and insulated wrappers.
type NativeFunction func(this Object, args ...Object) (Object, error)

// Function is a callable guest value. Like every guest object it may carry
// own properties.
type Function struct {
	properties
	Name string
	Fn   NativeFunction
}

func NewFunction(name string, fn NativeFunction) *Function {
	return &Function{Name: name, Fn: fn}
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	if f.Name == "" {
		return "[Function (anonymous)]"
	}
	return fmt.Sprintf("[Function %s]", f.Name)
}

// Call invokes f. A nil receiver is passed as undefined.
func (f *Function) Call(this Object, args ...Object) (Object, error) {
	if this == nil {
		this = UNDEFINED
	}
	res, err := f.Fn(this, args...)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return UNDEFINED, nil
	}
	return res, nil
}

// Arg returns args[i], or undefined when the caller supplied fewer arguments.
func Arg(args []Object, i int) Object {
	if i < len(args) {
		return args[i]
	}
	return UNDEFINED
}
