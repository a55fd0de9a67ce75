package evaluator

import (
	"errors"
	"path/filepath"

	"github.com/funvibe/jessie/internal/ast"
	"github.com/funvibe/jessie/internal/object"
	"github.com/funvibe/jessie/internal/utils"
)

// moduleCache is shared by every evaluator of one top-level run.
type moduleCache struct {
	loaded  map[string]object.Object
	loading map[string]bool
}

func newModuleCache() *moduleCache {
	return &moduleCache{
		loaded:  make(map[string]object.Object),
		loading: make(map[string]bool),
	}
}

func evalImport(e *Evaluator, n *ast.Node) (object.Object, error) {
	pattern, path := n.Node(0), n.Str(1)
	resolved := utils.ResolveImportPath(e.Dir, path)

	val, err := e.importModule(resolved)
	if err != nil {
		return nil, err
	}
	if err := e.BindPattern(pattern, false, val); err != nil {
		return nil, err
	}
	return object.UNDEFINED, nil
}

// importModule evaluates the module at path once per run and returns its
// insulated default export.
func (e *Evaluator) importModule(path string) (object.Object, error) {
	if val, ok := e.modules.loaded[path]; ok {
		return val, nil
	}
	if e.modules.loading[path] {
		return nil, e.newError(object.ImportCycle, "import cycle through %s", path)
	}
	if e.Loader == nil {
		return nil, e.newError(object.ModuleNotFound, "cannot import %s: no loader", path)
	}

	node, err := e.Loader.Load(path)
	if err != nil {
		if errors.Is(err, object.ErrModuleNotFound) {
			return nil, err
		}
		return nil, object.WrapError(object.ModuleNotFound, err, "cannot import %s", path)
	}

	e.modules.loading[path] = true
	defer delete(e.modules.loading, path)

	dir := e.Dir
	if filepath.IsAbs(path) {
		dir = filepath.Dir(path)
	}
	c := e.child(path, dir)
	log := c.logger()
	log.Debug("enter module", "path", path)

	val, err := c.Dispatch(node)
	if err != nil {
		if sig, ok := asExit(err); ok {
			return nil, exitFault(c, sig)
		}
		log.Debug("module failed", "path", path, "error", err)
		return nil, err
	}

	val = e.Insulator.Insulate(val)
	e.modules.loaded[path] = val
	log.Debug("exit module", "path", path)
	return val, nil
}
