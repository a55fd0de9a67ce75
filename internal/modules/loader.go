// Package modules provides the loader capabilities an evaluation uses to
// resolve imports: AST files on disk, a SQLite module store, and chains of
// both.
package modules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/funvibe/jessie/internal/ast"
	"github.com/funvibe/jessie/internal/config"
	"github.com/funvibe/jessie/internal/object"
)

// Loader returns the parsed AST of the module at path.
type Loader interface {
	Load(path string) (*ast.Node, error)
}

// FileLoader reads AST files from disk. Only whitelisted paths may be read;
// an empty whitelist refuses everything.
type FileLoader struct {
	allowed map[string]bool
}

// NewFileLoader creates a loader that may read the given paths. Paths are
// compared after conversion to absolute form.
func NewFileLoader(allowed ...string) *FileLoader {
	l := &FileLoader{allowed: make(map[string]bool)}
	l.Allow(allowed...)
	return l
}

// Allow adds paths to the whitelist.
func (l *FileLoader) Allow(paths ...string) {
	for _, p := range paths {
		l.allowed[absPath(p)] = true
	}
}

// Allowed reports whether path is on the whitelist.
func (l *FileLoader) Allowed(path string) bool {
	return l.allowed[absPath(path)]
}

// Load reads and decodes the module at path. A path without a recognized
// extension is tried with each of config.ModuleFileExtensions in turn.
func (l *FileLoader) Load(path string) (*ast.Node, error) {
	for _, candidate := range candidates(path) {
		if !l.Allowed(candidate) {
			continue
		}
		data, err := os.ReadFile(candidate)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, object.WrapError(object.ModuleNotFound, err, "cannot read %s", candidate)
		}
		node, err := Decode(candidate, data)
		if err != nil {
			return nil, object.WrapError(object.ModuleNotFound, err, "cannot decode %s", candidate)
		}
		return node, nil
	}
	return nil, object.NewError(object.ModuleNotFound, "module %s not found or not allowed", path)
}

// ReadFile returns the contents of a whitelisted file.
func (l *FileLoader) ReadFile(path string) ([]byte, error) {
	if !l.Allowed(path) {
		return nil, fmt.Errorf("%s is not an allowed input", path)
	}
	return os.ReadFile(path)
}

// Decode parses data as a JSON or YAML tuple tree, chosen by the extension
// of name.
func Decode(name string, data []byte) (*ast.Node, error) {
	if config.IsYAML(name) {
		return ast.ParseYAML(data)
	}
	return ast.ParseJSON(data)
}

func candidates(path string) []string {
	if config.HasModuleExt(path) {
		return []string{path}
	}
	out := make([]string, 0, len(config.ModuleFileExtensions))
	for _, ext := range config.ModuleFileExtensions {
		out = append(out, path+ext)
	}
	return out
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// Chain tries each loader in order and returns the first module found. A
// failure other than ModuleNotFound stops the search.
type Chain []Loader

func (c Chain) Load(path string) (*ast.Node, error) {
	var last error
	for _, l := range c {
		node, err := l.Load(path)
		if err == nil {
			return node, nil
		}
		if !errors.Is(err, object.ErrModuleNotFound) {
			return nil, err
		}
		last = err
	}
	if last == nil {
		last = object.NewError(object.ModuleNotFound, "module %s not found", path)
	}
	return nil, last
}
