package object

import (
	"strconv"
	"unicode/utf8"

	"github.com/funvibe/jessie/internal/config"
)

func (a *Array) freeze() { a.frozen = true }

// IsFrozen reports whether o rejects writes. Primitives are always frozen;
// host objects are opaque and report false since they were never hardened.
func IsFrozen(o Object) bool {
	switch v := o.(type) {
	case *Array:
		return v.frozen
	case *Record:
		return v.frozen
	case *Function:
		return v.frozen
	case *HostObject:
		return false
	}
	return true
}

// Harden deep-freezes every array, record and function reachable from root.
// prepare, when non-nil, runs on each object before it is frozen and may
// still write to it. Cycles are handled; host objects are not entered.
func Harden(root Object, prepare func(Object)) Object {
	seen := make(map[Object]struct{})
	var walk func(Object)
	walk = func(o Object) {
		switch o.(type) {
		case *Array, *Record, *Function:
		default:
			return
		}
		if _, ok := seen[o]; ok {
			return
		}
		seen[o] = struct{}{}

		if prepare != nil {
			prepare(o)
		}
		switch v := o.(type) {
		case *Array:
			v.freeze()
			for _, el := range v.Elements {
				walk(el)
			}
		case *Record:
			v.freeze()
			for _, k := range v.keys {
				walk(v.vals[k])
			}
		case *Function:
			v.freeze()
			for _, k := range v.keys {
				walk(v.vals[k])
			}
		}
	}
	walk(root)
	return root
}

// ArrayIndex parses a canonical non-negative array index.
func ArrayIndex(key string) (int, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetComputedIndex is the safe indexed write. It refuses the inheritance
// link key, frozen targets and host objects. Writing past the end of an
// array extends it with undefined.
func SetComputedIndex(obj Object, key string, val Object) error {
	if key == ProtoKey {
		return NewError(TypeMismatch, "cannot assign to %s", ProtoKey)
	}
	switch v := obj.(type) {
	case *Record:
		if v.frozen {
			return NewError(TypeMismatch, "cannot assign to %q of frozen object", key)
		}
		v.put(key, val)
		return nil
	case *Function:
		if v.frozen {
			return NewError(TypeMismatch, "cannot assign to %q of frozen function", key)
		}
		v.put(key, val)
		return nil
	case *Array:
		if v.frozen {
			return NewError(TypeMismatch, "cannot assign to %q of frozen array", key)
		}
		i, ok := ArrayIndex(key)
		if !ok {
			return NewError(TypeMismatch, "invalid array index %q", key)
		}
		if i >= config.MaxArrayLength || i-len(v.Elements) > config.MaxArrayGap {
			return NewError(TypeMismatch, "array index %d out of range for length %d", i, len(v.Elements))
		}
		for len(v.Elements) <= i {
			v.Elements = append(v.Elements, UNDEFINED)
		}
		v.Elements[i] = val
		return nil
	case *HostObject:
		return NewError(TypeMismatch, "cannot assign to %q of host object", key)
	}
	return NewError(TypeMismatch, "cannot assign to %q of %s", key, TypeOf(obj))
}

// Get reads property key of obj. Reading from undefined or null fails.
func Get(obj Object, key string) (Object, error) {
	switch v := obj.(type) {
	case nil, Undefined, Null:
		return nil, NewError(TypeMismatch, "cannot read property %q of %s", key, ToString(obj))
	case *Record:
		if val, ok := v.Get(key); ok {
			return val, nil
		}
	case *Array:
		if key == "length" {
			return Number(float64(len(v.Elements))), nil
		}
		if i, ok := ArrayIndex(key); ok {
			return v.At(i), nil
		}
	case String:
		if key == "length" {
			return Number(float64(utf8.RuneCountInString(string(v)))), nil
		}
		if i, ok := ArrayIndex(key); ok {
			runes := []rune(string(v))
			if i < len(runes) {
				return String(runes[i]), nil
			}
		}
	case *Function:
		if val, ok := v.Get(key); ok {
			return val, nil
		}
		if key == "name" {
			return String(v.Name), nil
		}
	case *HostObject:
		return v.Get(key)
	}
	return UNDEFINED, nil
}

// OwnEntries lists the enumerable own properties of obj.
func OwnEntries(obj Object) []Entry {
	switch v := obj.(type) {
	case *Record:
		return v.Entries()
	case *Array:
		return v.Entries()
	case *Function:
		return v.Entries()
	case String:
		runes := []rune(string(v))
		out := make([]Entry, len(runes))
		for i, r := range runes {
			out[i] = Entry{Key: strconv.Itoa(i), Value: String(r)}
		}
		return out
	}
	return nil
}
