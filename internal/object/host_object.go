package object

import (
	"fmt"
	"reflect"
	"sync"
)

// HostObject wraps a Go value handed in by the host. Guest code may read its
// exported fields and call its exported methods, but it can never write to
// it, and hardening treats it as opaque.
type HostObject struct {
	Value interface{}
	// Convert turns Go values read from the host object into guest values.
	// When nil only primitive values are converted.
	Convert func(interface{}) (Object, error)

	mu sync.Mutex
	// methods holds bound methods so repeated reads yield the same function.
	methods map[string]*Function
}

func (h *HostObject) Type() ObjectType { return HOST_OBJ }

func (h *HostObject) Inspect() string {
	return fmt.Sprintf("<HostObject: %T>", h.Value)
}

// Get reads an exported field or binds an exported method.
func (h *HostObject) Get(key string) (Object, error) {
	val := reflect.ValueOf(h.Value)
	if !val.IsValid() {
		return UNDEFINED, nil
	}

	if method := val.MethodByName(key); method.IsValid() {
		return h.method(key, method), nil
	}

	elem := val
	for elem.Kind() == reflect.Ptr || elem.Kind() == reflect.Interface {
		if elem.IsNil() {
			return UNDEFINED, nil
		}
		elem = elem.Elem()
	}
	switch elem.Kind() {
	case reflect.Struct:
		field := elem.FieldByName(key)
		if !field.IsValid() || !field.CanInterface() {
			return UNDEFINED, nil
		}
		return h.convert(field.Interface())
	case reflect.Map:
		if elem.Type().Key().Kind() != reflect.String {
			return UNDEFINED, nil
		}
		v := elem.MapIndex(reflect.ValueOf(key).Convert(elem.Type().Key()))
		if !v.IsValid() {
			return UNDEFINED, nil
		}
		return h.convert(v.Interface())
	}
	return UNDEFINED, nil
}

func (h *HostObject) method(name string, method reflect.Value) *Function {
	h.mu.Lock()
	defer h.mu.Unlock()
	if fn, ok := h.methods[name]; ok {
		return fn
	}
	if h.methods == nil {
		h.methods = make(map[string]*Function)
	}
	fn := h.bindMethod(name, method)
	h.methods[name] = fn
	return fn
}

func (h *HostObject) bindMethod(name string, method reflect.Value) *Function {
	return NewFunction(name, func(this Object, args ...Object) (Object, error) {
		mt := method.Type()
		if !mt.IsVariadic() && len(args) != mt.NumIn() {
			return nil, NewError(TypeMismatch, "%s expects %d arguments, got %d", name, mt.NumIn(), len(args))
		}
		in := make([]reflect.Value, 0, len(args))
		for i, arg := range args {
			var target reflect.Type
			if mt.IsVariadic() && i >= mt.NumIn()-1 {
				target = mt.In(mt.NumIn() - 1).Elem()
			} else {
				target = mt.In(i)
			}
			v, err := ToReflect(arg, target)
			if err != nil {
				return nil, WrapError(TypeMismatch, err, "%s argument %d", name, i)
			}
			in = append(in, v)
		}
		out := method.Call(in)
		if len(out) > 0 {
			if errVal, ok := out[len(out)-1].Interface().(error); ok && errVal != nil {
				return nil, errVal
			}
		}
		if len(out) == 0 {
			return UNDEFINED, nil
		}
		return h.convert(out[0].Interface())
	})
}

func (h *HostObject) convert(v interface{}) (Object, error) {
	if h.Convert != nil {
		return h.Convert(v)
	}
	if o, ok := PrimitiveFromGo(v); ok {
		return o, nil
	}
	return &HostObject{Value: v}, nil
}

// PrimitiveFromGo converts Go scalars to guest primitives.
func PrimitiveFromGo(v interface{}) (Object, bool) {
	if v == nil {
		return NULL, true
	}
	if o, ok := v.(Object); ok {
		return o, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return NativeBool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int())), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Number(float64(rv.Uint())), true
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), true
	case reflect.String:
		return String(rv.String()), true
	}
	return nil, false
}

// ToReflect converts a guest value into a Go value assignable to target.
func ToReflect(o Object, target reflect.Type) (reflect.Value, error) {
	if target.Kind() == reflect.Interface {
		if IsNullish(o) {
			return reflect.Zero(target), nil
		}
		if reflect.TypeOf(o).Implements(target) {
			return reflect.ValueOf(o), nil
		}
	}
	switch v := o.(type) {
	case Boolean:
		if target.Kind() == reflect.Bool {
			return reflect.ValueOf(bool(v)).Convert(target), nil
		}
	case Number:
		switch target.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return reflect.ValueOf(float64(v)).Convert(target), nil
		case reflect.Interface:
			return reflect.ValueOf(float64(v)), nil
		}
	case String:
		switch target.Kind() {
		case reflect.String:
			return reflect.ValueOf(string(v)).Convert(target), nil
		case reflect.Interface:
			return reflect.ValueOf(string(v)), nil
		}
	case *HostObject:
		hv := reflect.ValueOf(v.Value)
		if hv.IsValid() && hv.Type().AssignableTo(target) {
			return hv, nil
		}
	case Undefined, Null:
		switch target.Kind() {
		case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(target), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("cannot convert %s to %s", o.Type(), target)
}
