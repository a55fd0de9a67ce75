package object

import "strconv"

type ObjectType string

const (
	UNDEFINED_OBJ = "undefined"
	NULL_OBJ      = "null"
	BOOLEAN_OBJ   = "boolean"
	NUMBER_OBJ    = "number"
	STRING_OBJ    = "string"
	ARRAY_OBJ     = "array"
	RECORD_OBJ    = "record"
	FUNCTION_OBJ  = "function"
	HOST_OBJ      = "host"
)

// Object is a guest value.
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Undefined is the absent value.
type Undefined struct{}

func (Undefined) Type() ObjectType { return UNDEFINED_OBJ }
func (Undefined) Inspect() string  { return "undefined" }

// Null
type Null struct{}

func (Null) Type() ObjectType { return NULL_OBJ }
func (Null) Inspect() string  { return "null" }

// Boolean
type Boolean bool

func (b Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b Boolean) Inspect() string  { return strconv.FormatBool(bool(b)) }

// Number is an IEEE-754 double, like every guest number.
type Number float64

func (n Number) Type() ObjectType { return NUMBER_OBJ }
func (n Number) Inspect() string  { return FormatNumber(float64(n)) }

// String
type String string

func (s String) Type() ObjectType { return STRING_OBJ }
func (s String) Inspect() string  { return strconv.Quote(string(s)) }

var (
	UNDEFINED Object = Undefined{}
	NULL      Object = Null{}
	TRUE      Object = Boolean(true)
	FALSE     Object = Boolean(false)
)

func NativeBool(b bool) Object {
	if b {
		return TRUE
	}
	return FALSE
}

// IsNullish reports whether o is undefined or null.
func IsNullish(o Object) bool {
	switch o.(type) {
	case nil, Undefined, Null:
		return true
	}
	return false
}

// FromLiteral converts a decoded AST literal into a guest value.
func FromLiteral(v interface{}) Object {
	switch x := v.(type) {
	case nil:
		return NULL
	case bool:
		return NativeBool(x)
	case float64:
		return Number(x)
	case string:
		return String(x)
	}
	return UNDEFINED
}
