package jessie

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/funvibe/jessie/internal/object"
)

var (
	objectType = reflect.TypeOf((*object.Object)(nil)).Elem()
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
	anyType    = reflect.TypeOf((*interface{})(nil)).Elem()
)

// Marshaller handles conversion between Go and guest values.
type Marshaller struct{}

func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

// ToValue converts a Go value to a guest value. Slices become arrays,
// string-keyed maps and structs become records, functions become callable
// guest functions, and pointers stay opaque host objects.
func (m *Marshaller) ToValue(val interface{}) (object.Object, error) {
	if obj, ok := object.PrimitiveFromGo(val); ok {
		return obj, nil
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return object.NULL, nil
		}
		elements := make([]object.Object, v.Len())
		for i := 0; i < v.Len(); i++ {
			el, err := m.ToValue(v.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			elements[i] = el
		}
		return object.NewArray(elements...), nil
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return m.hostObject(val), nil
		}
		return m.mapToRecord(v)
	case reflect.Struct:
		// Struct by value -> Record (copy)
		return m.structToRecord(v)
	case reflect.Func:
		if v.IsNil() {
			return object.NULL, nil
		}
		return m.funcToFunction(v), nil
	}
	return m.hostObject(val), nil
}

func (m *Marshaller) hostObject(val interface{}) *object.HostObject {
	return &object.HostObject{Value: val, Convert: m.ToValue}
}

func (m *Marshaller) mapToRecord(v reflect.Value) (*object.Record, error) {
	keys := make([]string, 0, v.Len())
	values := make(map[string]reflect.Value, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k := iter.Key().String()
		keys = append(keys, k)
		values[k] = iter.Value()
	}
	sort.Strings(keys)

	rec := object.NewRecord()
	for _, k := range keys {
		val, err := m.ToValue(values[k].Interface())
		if err != nil {
			return nil, fmt.Errorf("map value %q: %w", k, err)
		}
		if err := object.SetComputedIndex(rec, k, val); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func (m *Marshaller) structToRecord(v reflect.Value) (*object.Record, error) {
	rec := object.NewRecord()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" { // Skip unexported fields
			continue
		}
		name, skip := fieldName(field)
		if skip {
			continue
		}
		val, err := m.ToValue(v.Field(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		if err := object.SetComputedIndex(rec, name, val); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// fieldName honours a `jessie:"name"` tag; "-" skips the field.
func fieldName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("jessie")
	if tag == "-" {
		return "", true
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, false
	}
	return f.Name, false
}

// funcToFunction exposes a Go function to guest code. Arguments are
// converted to the parameter types; a trailing error result becomes a
// guest error.
func (m *Marshaller) funcToFunction(fn reflect.Value) *object.Function {
	fnType := fn.Type()
	name := fnType.String()
	return object.NewFunction(name, func(this object.Object, args ...object.Object) (object.Object, error) {
		numIn := fnType.NumIn()
		isVariadic := fnType.IsVariadic()

		// Check arg count
		if isVariadic {
			if len(args) < numIn-1 {
				return nil, object.NewError(object.TypeMismatch, "expected at least %d arguments, got %d", numIn-1, len(args))
			}
		} else if len(args) > numIn {
			return nil, object.NewError(object.TypeMismatch, "expected %d arguments, got %d", numIn, len(args))
		}

		n := numIn
		if isVariadic {
			n = max(len(args), numIn-1)
		}
		goArgs := make([]reflect.Value, n)
		for i := range goArgs {
			targetType := fnType.In(min(i, numIn-1))
			if isVariadic && i >= numIn-1 {
				targetType = fnType.In(numIn - 1).Elem()
			}
			if i >= len(args) {
				goArgs[i] = reflect.Zero(targetType)
				continue
			}
			val, err := m.FromValue(args[i], targetType)
			if err != nil {
				return nil, object.WrapError(object.TypeMismatch, err, "argument %d", i)
			}
			if goArgs[i], err = assignable(val, targetType); err != nil {
				return nil, object.WrapError(object.TypeMismatch, err, "argument %d", i)
			}
		}

		results := fn.Call(goArgs)
		if n := len(results); n > 0 && fnType.Out(n-1) == errorType {
			if err, _ := results[n-1].Interface().(error); err != nil {
				return nil, err
			}
			results = results[:n-1]
		}

		switch len(results) {
		case 0:
			return object.UNDEFINED, nil
		case 1:
			return m.ToValue(results[0].Interface())
		}
		// Multiple returns -> Array
		elements := make([]object.Object, len(results))
		for i, res := range results {
			val, err := m.ToValue(res.Interface())
			if err != nil {
				return nil, err
			}
			elements[i] = val
		}
		return object.NewArray(elements...), nil
	})
}

// FromValue converts a guest value to a Go value. targetType is optional; if
// provided, the result is converted to that type.
func (m *Marshaller) FromValue(obj object.Object, targetType reflect.Type) (interface{}, error) {
	if obj == nil {
		obj = object.UNDEFINED
	}
	if targetType == nil {
		targetType = anyType
	}

	// If target type is object.Object, return as is
	if targetType == objectType {
		return obj, nil
	}

	switch o := obj.(type) {
	case object.Undefined, object.Null:
		return nil, nil
	case object.Boolean, object.Number, object.String:
		if targetType.Kind() == reflect.Interface {
			return native(o), nil
		}
		rv, err := object.ToReflect(o, targetType)
		if err != nil {
			return nil, err
		}
		return rv.Interface(), nil
	case *object.Array:
		return m.arrayToSlice(o, targetType)
	case *object.Record:
		if targetType.Kind() == reflect.Struct {
			return m.recordToStruct(o, targetType)
		}
		return m.recordToMap(o, targetType)
	case *object.Function:
		if targetType.Kind() == reflect.Func {
			return m.functionToFunc(o, targetType).Interface(), nil
		}
		if targetType.Kind() == reflect.Interface {
			return o, nil
		}
	case *object.HostObject:
		return o.Value, nil
	}
	return nil, fmt.Errorf("cannot convert %s to %s", obj.Type(), targetType)
}

func native(o object.Object) interface{} {
	switch v := o.(type) {
	case object.Boolean:
		return bool(v)
	case object.Number:
		return float64(v)
	case object.String:
		return string(v)
	}
	return nil
}

func (m *Marshaller) arrayToSlice(a *object.Array, targetType reflect.Type) (interface{}, error) {
	// Default to []interface{}
	elemType := anyType
	if targetType.Kind() == reflect.Slice {
		elemType = targetType.Elem()
	} else if targetType.Kind() != reflect.Interface {
		return nil, fmt.Errorf("cannot convert array to %s", targetType)
	}

	slice := reflect.MakeSlice(reflect.SliceOf(elemType), 0, a.Len())
	for i, el := range a.Elements {
		val, err := m.FromValue(el, elemType)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		rv, err := assignable(val, elemType)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		slice = reflect.Append(slice, rv)
	}
	return slice.Interface(), nil
}

func (m *Marshaller) recordToMap(r *object.Record, targetType reflect.Type) (interface{}, error) {
	mapType := reflect.TypeOf(map[string]interface{}{})
	if targetType.Kind() == reflect.Map {
		if targetType.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("cannot convert record to %s", targetType)
		}
		mapType = targetType
	} else if targetType.Kind() != reflect.Interface {
		return nil, fmt.Errorf("cannot convert record to %s", targetType)
	}

	result := reflect.MakeMapWithSize(mapType, r.Len())
	for _, entry := range r.Entries() {
		val, err := m.FromValue(entry.Value, mapType.Elem())
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", entry.Key, err)
		}
		vv, err := assignable(val, mapType.Elem())
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", entry.Key, err)
		}
		result.SetMapIndex(reflect.ValueOf(entry.Key).Convert(mapType.Key()), vv)
	}
	return result.Interface(), nil
}

func (m *Marshaller) recordToStruct(r *object.Record, targetType reflect.Type) (interface{}, error) {
	out := reflect.New(targetType).Elem()
	for i := 0; i < targetType.NumField(); i++ {
		field := targetType.Field(i)
		if field.PkgPath != "" {
			continue
		}
		name, skip := fieldName(field)
		if skip {
			continue
		}
		el, ok := r.Get(name)
		if !ok {
			continue
		}
		val, err := m.FromValue(el, field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		fv, err := assignable(val, field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		out.Field(i).Set(fv)
	}
	return out.Interface(), nil
}

// functionToFunc lets Go code call a guest function through a typed Go
// function value.
func (m *Marshaller) functionToFunc(fn *object.Function, funcType reflect.Type) reflect.Value {
	return reflect.MakeFunc(funcType, func(in []reflect.Value) []reflect.Value {
		args := make([]object.Object, 0, len(in))
		var convErr error
		for _, v := range in {
			arg, err := m.ToValue(v.Interface())
			if err != nil {
				convErr = err
				break
			}
			args = append(args, arg)
		}

		var res object.Object
		err := convErr
		if err == nil {
			res, err = fn.Call(object.UNDEFINED, args...)
		}
		return m.results(funcType, res, err)
	})
}

func (m *Marshaller) results(funcType reflect.Type, res object.Object, err error) []reflect.Value {
	out := make([]reflect.Value, funcType.NumOut())
	for i := range out {
		out[i] = reflect.Zero(funcType.Out(i))
	}
	n := len(out)
	hasErr := n > 0 && funcType.Out(n-1) == errorType
	if err == nil && n > 0 && !(hasErr && n == 1) {
		val, cerr := m.FromValue(res, funcType.Out(0))
		if cerr == nil {
			var rv reflect.Value
			if rv, cerr = assignable(val, funcType.Out(0)); cerr == nil {
				out[0] = rv
			}
		}
		err = cerr
	}
	if err != nil {
		if !hasErr {
			panic(err)
		}
		out[n-1] = reflect.ValueOf(&err).Elem()
	}
	return out
}

// assignable turns a converted value into a reflect.Value of type t.
func assignable(val interface{}, t reflect.Type) (reflect.Value, error) {
	if val == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use null as %s", t)
	}
	rv := reflect.ValueOf(val)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot convert %s to %s", rv.Type(), t)
}

// Into converts obj into the value target points to.
func (m *Marshaller) Into(obj object.Object, target interface{}) error {
	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", target)
	}
	elem := ptr.Elem()
	val, err := m.FromValue(obj, elem.Type())
	if err != nil {
		return err
	}
	rv, err := assignable(val, elem.Type())
	if err != nil {
		return err
	}
	elem.Set(rv)
	return nil
}
