// Package jessie embeds the evaluator in Go programs. Go values bound with
// Bind are converted by reflection and insulated before guest code can see
// them; results are insulated on the way out and can be converted back with
// ToGo.
package jessie

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/funvibe/jessie/internal/ast"
	"github.com/funvibe/jessie/internal/evaluator"
	"github.com/funvibe/jessie/internal/insulate"
	"github.com/funvibe/jessie/internal/modules"
	"github.com/funvibe/jessie/internal/object"
)

// VM holds the endowments and capabilities shared by every evaluation it
// runs. Each Run gets a fresh evaluator, so a VM can be reused; it is not
// safe to Bind while a Run is in progress.
type VM struct {
	insulator  *insulate.Insulator
	marshaller *Marshaller
	bindings   map[string]object.Object
	loader     evaluator.Loader
	logger     *slog.Logger
	maxDepth   int
	layer      ast.Layer
	scriptName string
}

// Option configures a VM.
type Option func(*VM)

// WithLoader sets the capability used to resolve imports.
func WithLoader(l evaluator.Loader) Option {
	return func(v *VM) { v.loader = l }
}

func WithLogger(l *slog.Logger) Option {
	return func(v *VM) { v.logger = l }
}

func WithMaxDepth(depth int) Option {
	return func(v *VM) { v.maxDepth = depth }
}

// WithLayer restricts evaluation to a smaller language layer.
func WithLayer(layer ast.Layer) Option {
	return func(v *VM) { v.layer = layer }
}

// WithScriptName sets the name relative imports are resolved against.
func WithScriptName(name string) Option {
	return func(v *VM) { v.scriptName = name }
}

// WithInsulator shares an insulator, and so its wrapper registry, with the VM.
func WithInsulator(ins *insulate.Insulator) Option {
	return func(v *VM) { v.insulator = ins }
}

// New creates a new VM instance.
func New(opts ...Option) *VM {
	v := &VM{
		marshaller: NewMarshaller(),
		bindings:   make(map[string]object.Object),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.insulator == nil {
		v.insulator = insulate.New()
	}
	return v
}

// Bind converts a Go value and makes it available to guest code under name.
// Functions become callable; pointers stay opaque host objects.
func (v *VM) Bind(name string, val interface{}) error {
	obj, err := v.Insulate(val)
	if err != nil {
		return fmt.Errorf("bind %s: %w", name, err)
	}
	v.bindings[name] = obj
	return nil
}

// Names lists the bound names in order.
func (v *VM) Names() []string {
	names := make([]string, 0, len(v.bindings))
	for name := range v.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Insulate converts a Go value to a guest value and insulates it.
func (v *VM) Insulate(val interface{}) (object.Object, error) {
	obj, err := v.marshaller.ToValue(val)
	if err != nil {
		return nil, err
	}
	return v.insulator.Insulate(obj), nil
}

func (v *VM) options() evaluator.Options {
	return evaluator.Options{
		ScriptName: v.scriptName,
		Layer:      v.layer,
		Loader:     v.loader,
		Insulator:  v.insulator,
		Logger:     v.logger,
		MaxDepth:   v.maxDepth,
	}
}

// Run evaluates a program or module and returns its insulated result: the
// default export for a module.
func (v *VM) Run(ctx context.Context, node *ast.Node) (object.Object, error) {
	return evaluator.Run(ctx, node, v.bindings, v.options())
}

// RunExpression evaluates a single expression.
func (v *VM) RunExpression(ctx context.Context, node *ast.Node) (object.Object, error) {
	return evaluator.RunExpression(ctx, node, v.bindings, v.options())
}

// Eval decodes a JSON encoded AST and runs it, returning the result as a Go
// value.
func (v *VM) Eval(ctx context.Context, src []byte) (interface{}, error) {
	node, err := ast.ParseJSON(src)
	if err != nil {
		return nil, err
	}
	res, err := v.Run(ctx, node)
	if err != nil {
		return nil, err
	}
	return v.ToGo(res)
}

// LoadFile decodes and runs the AST file at path. Relative imports resolve
// against the file's directory.
func (v *VM) LoadFile(ctx context.Context, path string) (object.Object, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	node, err := modules.Decode(path, content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	opts := v.options()
	opts.ScriptName = path
	return evaluator.Run(ctx, node, v.bindings, opts)
}

// Call calls a guest function value with Go arguments.
func (v *VM) Call(fn object.Object, args ...interface{}) (interface{}, error) {
	f, ok := fn.(*object.Function)
	if !ok {
		return nil, fmt.Errorf("%s is not a function", fn.Type())
	}
	guestArgs := make([]object.Object, len(args))
	for i, arg := range args {
		obj, err := v.Insulate(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		guestArgs[i] = obj
	}
	res, err := f.Call(object.UNDEFINED, guestArgs...)
	if err != nil {
		return nil, err
	}
	return v.ToGo(res)
}

// ToGo converts a guest value into plain Go values: nil, bool, float64,
// string, []interface{} and map[string]interface{}. Functions are returned
// as *object.Function.
func (v *VM) ToGo(obj object.Object) (interface{}, error) {
	return v.marshaller.FromValue(obj, nil)
}

// Decode converts a guest value into the Go value pointed to by target.
func (v *VM) Decode(obj object.Object, target interface{}) error {
	return v.marshaller.Into(obj, target)
}
