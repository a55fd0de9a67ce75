package evaluator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/funvibe/jessie/internal/ast"
	"github.com/funvibe/jessie/internal/config"
	"github.com/funvibe/jessie/internal/insulate"
	"github.com/funvibe/jessie/internal/object"
	"github.com/google/uuid"
)

// Handler evaluates one node kind.
type Handler func(e *Evaluator, n *ast.Node) (object.Object, error)

// Loader returns the parsed AST of the module at path.
type Loader interface {
	Load(path string) (*ast.Node, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(path string) (*ast.Node, error)

func (f LoaderFunc) Load(path string) (*ast.Node, error) { return f(path) }

// ApplyMethodFunc invokes fn with an explicit receiver.
type ApplyMethodFunc func(this, fn object.Object, args []object.Object) (object.Object, error)

// SetComputedIndexFunc writes obj[key] = val, refusing the inheritance link key.
type SetComputedIndexFunc func(obj object.Object, key string, val object.Object) error

// CallFrame represents a single frame in the call stack
type CallFrame struct {
	Name   string
	Source string
	Line   int
	Column int
}

// Evaluator is the mutable context threaded through every handler. One
// Evaluator exists per top-level run and one more per imported module.
// An Evaluator is not safe for concurrent use.
type Evaluator struct {
	// Context for cancellation
	Context context.Context
	// ID identifies this evaluation in logs
	ID uuid.UUID
	// Dir is the base directory for relative imports
	Dir string
	// Source names the script being evaluated, for diagnostics
	Source string
	// Loader for modules
	Loader Loader
	// ApplyMethod calls a function value with an explicit receiver
	ApplyMethod ApplyMethodFunc
	// SetComputedIndex is the safe indexed write
	SetComputedIndex SetComputedIndexFunc
	// Insulator guards every value leaving this evaluation
	Insulator *insulate.Insulator
	Logger    *slog.Logger
	// MaxDepth bounds the dispatch nesting depth
	MaxDepth int
	// CallStack for stack traces on errors
	CallStack []CallFrame

	layer    ast.Layer
	table    map[ast.Tag]Handler
	root     *Binding
	env      *Binding
	label    string
	pending  string
	nodes    []*ast.Node
	depth    int
	// receiver is the object of the last get or index read, for method calls
	receiver object.Object
	modules  *moduleCache
	parentID uuid.UUID
}

// New creates an evaluator for the given layer, with an empty root scope
// holding only undefined, NaN and Infinity.
func New(layer ast.Layer) *Evaluator {
	if layer == 0 {
		layer = ast.LayerStatement
	}
	e := &Evaluator{
		Context:          context.Background(),
		ID:               uuid.New(),
		Dir:              ".",
		ApplyMethod:      defaultApplyMethod,
		SetComputedIndex: object.SetComputedIndex,
		Insulator:        insulate.New(),
		MaxDepth:         config.DefaultMaxDepth,
		layer:            layer,
		table:            tables[layer],
		modules:          newModuleCache(),
	}
	e.root = seedRoot()
	e.env = e.root
	return e
}

// Endow installs a constant binding visible to this evaluation and to
// every module it imports.
func (e *Evaluator) Endow(name string, val object.Object) {
	e.root = Extend(e.root, name, val, false)
	e.env = e.root
}

// Layer returns the layer whose dispatch table is active.
func (e *Evaluator) Layer() ast.Layer { return e.layer }

// Env returns the current binding chain head.
func (e *Evaluator) Env() *Binding { return e.env }

// Dispatch is the single evaluation entry point: it looks up the handler
// for n.Tag in the active table and runs it with n on the position stack.
func (e *Evaluator) Dispatch(n *ast.Node) (object.Object, error) {
	if n == nil {
		return nil, e.newError(object.UnknownNodeKind, "missing node")
	}
	handler, ok := e.table[n.Tag]
	if !ok {
		err := e.newError(object.UnknownNodeKind, "cannot evaluate %q in the %s layer", n.Tag, e.layer)
		stamp(err, n, e.Source)
		return nil, err
	}

	// Check recursion depth to prevent Go stack overflow
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.maxDepth() {
		return nil, e.newError(object.DepthExceeded, "maximum nesting depth %d exceeded", e.maxDepth())
	}

	// Check for cancellation
	if e.Context != nil {
		select {
		case <-e.Context.Done():
			return nil, object.WrapError(object.Cancelled, e.Context.Err(), "evaluation cancelled")
		default:
		}
	}

	// A pending label applies to the node it was set for only.
	e.label, e.pending = e.pending, ""

	e.nodes = append(e.nodes, n)
	defer func() { e.nodes = e.nodes[:len(e.nodes)-1] }()

	res, err := handler(e, n)
	if err != nil {
		var oe *object.Error
		if errors.As(err, &oe) {
			stamp(oe, n, e.Source)
		}
		return nil, err
	}
	if res == nil {
		return object.UNDEFINED, nil
	}
	return res, nil
}

// takeLabel returns the label set for the statement being dispatched and
// clears it. Breakable statements call it before dispatching anything else.
func (e *Evaluator) takeLabel() string {
	label := e.label
	e.label = ""
	return label
}

func (e *Evaluator) maxDepth() int {
	if e.MaxDepth <= 0 {
		return config.DefaultMaxDepth
	}
	return e.MaxDepth
}

func (e *Evaluator) logger() *slog.Logger {
	l := e.Logger
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	if e.parentID != uuid.Nil {
		return l.With("eval", e.ID.String(), "parent", e.parentID.String())
	}
	return l.With("eval", e.ID.String())
}

// child creates the evaluator for the module at path. It shares endowments,
// capabilities and the module cache, but starts from a fresh scope.
func (e *Evaluator) child(path, dir string) *Evaluator {
	c := &Evaluator{
		Context:          e.Context,
		ID:               uuid.New(),
		Dir:              dir,
		Source:           path,
		Loader:           e.Loader,
		ApplyMethod:      e.ApplyMethod,
		SetComputedIndex: e.SetComputedIndex,
		Insulator:        e.Insulator,
		Logger:           e.Logger,
		MaxDepth:         e.MaxDepth,
		layer:            ast.LayerStatement,
		table:            tables[ast.LayerStatement],
		root:             e.root,
		env:              e.root,
		depth:            e.depth,
		modules:          e.modules,
		parentID:         e.ID,
	}
	return c
}

func seedRoot() *Binding {
	var root *Binding
	root = Extend(root, config.UndefinedName, object.UNDEFINED, false)
	root = Extend(root, config.NaNName, object.Number(nan), false)
	root = Extend(root, config.InfinityName, object.Number(inf), false)
	return root
}
