package evaluator

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/funvibe/jessie/internal/ast"
	"github.com/funvibe/jessie/internal/insulate"
	"github.com/funvibe/jessie/internal/object"
	"github.com/funvibe/jessie/internal/utils"
)

// Options configures a top-level evaluation.
type Options struct {
	// ScriptName fixes the base directory for relative imports.
	ScriptName string
	// Layer selects the dispatch table; the zero value means statement.
	Layer  ast.Layer
	Loader Loader
	// Insulator guards the result; a fresh one is used when nil.
	Insulator *insulate.Insulator
	Logger    *slog.Logger
	// MaxDepth bounds dispatch nesting; zero means the default.
	MaxDepth         int
	ApplyMethod      ApplyMethodFunc
	SetComputedIndex SetComputedIndexFunc
}

// NewFromOptions creates a top-level evaluator with endowments installed as
// constant bindings. Endowments should already be insulated.
func NewFromOptions(ctx context.Context, endowments map[string]object.Object, opts Options) *Evaluator {
	e := New(opts.Layer)
	if ctx != nil {
		e.Context = ctx
	}
	e.Source = opts.ScriptName
	e.Dir = utils.ScriptDir(opts.ScriptName)
	e.Loader = opts.Loader
	e.Logger = opts.Logger
	if opts.Insulator != nil {
		e.Insulator = opts.Insulator
	}
	if opts.MaxDepth > 0 {
		e.MaxDepth = opts.MaxDepth
	}
	if opts.ApplyMethod != nil {
		e.ApplyMethod = opts.ApplyMethod
	}
	if opts.SetComputedIndex != nil {
		e.SetComputedIndex = opts.SetComputedIndex
	}

	names := make([]string, 0, len(endowments))
	for name := range endowments {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e.Endow(name, endowments[name])
	}
	return e
}

// Run evaluates a program or module and returns its insulated result: the
// default export for a module.
func Run(ctx context.Context, node *ast.Node, endowments map[string]object.Object, opts Options) (object.Object, error) {
	return NewFromOptions(ctx, endowments, opts).Run(node)
}

// RunExpression evaluates a single expression and returns its insulated value.
func RunExpression(ctx context.Context, node *ast.Node, endowments map[string]object.Object, opts Options) (object.Object, error) {
	return NewFromOptions(ctx, endowments, opts).RunExpression(node)
}

// Run evaluates node as the root of this evaluation.
func (e *Evaluator) Run(node *ast.Node) (object.Object, error) {
	log := e.logger()
	log.Debug("run", "script", e.Source, "layer", e.layer.String())
	val, err := e.Dispatch(node)
	if err != nil {
		err = e.escape(err)
		log.Debug("run failed", "error", err)
		return nil, err
	}
	return e.Insulator.Insulate(val), nil
}

// RunExpression evaluates node, which must not be a module.
func (e *Evaluator) RunExpression(node *ast.Node) (object.Object, error) {
	if node != nil && node.Tag == ast.Module {
		return nil, object.NewError(object.TypeMismatch, "a module is not an expression")
	}
	val, err := e.Dispatch(node)
	if err != nil {
		return nil, e.escape(err)
	}
	return e.Insulator.Insulate(val), nil
}

// escape prepares an error for the host: exits become faults and thrown
// values are insulated before they leave.
func (e *Evaluator) escape(err error) error {
	if sig, ok := asExit(err); ok {
		return exitFault(e, sig)
	}
	var thrown *object.Thrown
	if errors.As(err, &thrown) {
		return &object.Thrown{Value: e.Insulator.Insulate(thrown.Value)}
	}
	return err
}
