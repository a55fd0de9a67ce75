package evaluator

import (
	"errors"
	"strconv"

	"github.com/funvibe/jessie/internal/ast"
	"github.com/funvibe/jessie/internal/object"
)

// Pair is one name bound by a pattern.
type Pair struct {
	Name  string
	Value object.Object
}

// BindPattern matches value against pattern and installs the resulting
// bindings. A match failure is not an error here: nothing is bound.
func (e *Evaluator) BindPattern(pattern *ast.Node, mutable bool, value object.Object) error {
	pairs, err := e.Match(pattern, value)
	if err != nil {
		if errors.Is(err, object.ErrMatchFailure) {
			return nil
		}
		return err
	}
	for _, p := range pairs {
		e.env = Extend(e.env, p.Name, p.Value, mutable)
	}
	return nil
}

// Match destructures value against pattern. Default expressions are
// evaluated in the current scope.
func (e *Evaluator) Match(pattern *ast.Node, value object.Object) ([]Pair, error) {
	if value == nil {
		value = object.UNDEFINED
	}
	switch pattern.Tag {
	case ast.Def:
		return []Pair{{Name: pattern.Str(0), Value: value}}, nil

	case ast.MatchData:
		if object.StrictEquals(object.FromLiteral(pattern.Literal(0)), value) {
			return nil, nil
		}
		return nil, e.patternError(pattern, object.MatchFailure, "%s does not match %s", value.Inspect(), object.FromLiteral(pattern.Literal(0)).Inspect())

	case ast.MatchArray:
		var pairs []Pair
		for i, sub := range pattern.Nodes(0) {
			if sub.Tag == ast.Rest {
				items, err := iterate(value)
				if err != nil {
					return nil, e.patternError(sub, object.TypeMismatch, "cannot collect the rest of %s", object.TypeOf(value))
				}
				rest := []object.Object{}
				if i < len(items) {
					rest = items[i:]
				}
				more, err := e.Match(sub.Node(0), object.NewArray(rest...))
				if err != nil {
					return nil, err
				}
				pairs = append(pairs, more...)
				break
			}
			el, err := object.Get(value, strconv.Itoa(i))
			if err != nil {
				return nil, e.patternError(sub, object.TypeMismatch, "cannot destructure %s", object.TypeOf(value))
			}
			more, err := e.Match(sub, el)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, more...)
		}
		return pairs, nil

	case ast.MatchRecord:
		if object.IsNullish(value) {
			return nil, e.patternError(pattern, object.TypeMismatch, "cannot destructure %s", object.ToString(value))
		}
		rest := newRemaining(value)
		var pairs []Pair
		for _, sub := range pattern.Nodes(0) {
			more, err := e.matchProp(sub, rest)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, more...)
		}
		return pairs, nil

	case ast.Optional:
		if _, ok := value.(object.Undefined); ok {
			dflt, err := e.Dispatch(pattern.Node(1))
			if err != nil {
				return nil, err
			}
			value = dflt
		}
		return e.Match(pattern.Node(0), value)
	}
	return nil, e.patternError(pattern, object.UnknownNodeKind, "cannot match %s pattern", pattern.Tag)
}

func (e *Evaluator) matchProp(pattern *ast.Node, rest *remaining) ([]Pair, error) {
	switch pattern.Tag {
	case ast.RestObj:
		rec := object.NewRecord()
		for _, entry := range rest.entries() {
			if err := e.SetComputedIndex(rec, entry.Key, entry.Value); err != nil {
				return nil, err
			}
		}
		return e.Match(pattern.Node(0), rec)

	case ast.MatchProp:
		return e.Match(pattern.Node(1), rest.take(pattern.Str(0)))

	case ast.OptionalProp:
		key := pattern.Str(0)
		var val object.Object
		if rest.has(key) {
			val = rest.take(key)
		} else {
			dflt, err := e.Dispatch(pattern.Node(2))
			if err != nil {
				return nil, err
			}
			val = dflt
		}
		return e.Match(pattern.Node(1), val)
	}
	return nil, e.patternError(pattern, object.UnknownNodeKind, "cannot match property pattern %s", pattern.Tag)
}

func (e *Evaluator) patternError(pattern *ast.Node, kind object.ErrorKind, format string, a ...interface{}) error {
	err := e.newError(kind, format, a...)
	if pattern.Pos.IsValid() {
		err.Line, err.Column = 0, 0
		stamp(err, pattern, e.Source)
	}
	return err
}

// remaining is the working copy of a record's entries that property
// patterns consume from, in their original order.
type remaining struct {
	source object.Object
	keys   []string
	vals   map[string]object.Object
}

func newRemaining(value object.Object) *remaining {
	r := &remaining{source: value, vals: make(map[string]object.Object)}
	for _, entry := range object.OwnEntries(value) {
		r.keys = append(r.keys, entry.Key)
		r.vals[entry.Key] = entry.Value
	}
	return r
}

func (r *remaining) has(key string) bool {
	if _, ok := r.vals[key]; ok {
		return true
	}
	if _, ok := r.source.(*object.HostObject); ok {
		v, err := object.Get(r.source, key)
		return err == nil && v != object.UNDEFINED
	}
	return false
}

// take removes key and returns its value, or undefined.
func (r *remaining) take(key string) object.Object {
	if v, ok := r.vals[key]; ok {
		delete(r.vals, key)
		return v
	}
	if _, ok := r.source.(*object.HostObject); ok {
		if v, err := object.Get(r.source, key); err == nil {
			return v
		}
	}
	return object.UNDEFINED
}

func (r *remaining) entries() []object.Entry {
	var out []object.Entry
	for _, k := range r.keys {
		if v, ok := r.vals[k]; ok {
			out = append(out, object.Entry{Key: k, Value: v})
		}
	}
	return out
}

// evalPatternOutOfPlace rejects a pattern dispatched as if it were an
// expression.
func evalPatternOutOfPlace(e *Evaluator, n *ast.Node) (object.Object, error) {
	return nil, e.newError(object.UnknownNodeKind, "%s is a pattern and cannot be evaluated", n.Tag)
}
