package object

import (
	"math"
	"strconv"
	"strings"
)

// Truthy implements guest truthiness.
func Truthy(o Object) bool {
	switch v := o.(type) {
	case nil, Undefined, Null:
		return false
	case Boolean:
		return bool(v)
	case Number:
		f := float64(v)
		return f != 0 && !math.IsNaN(f)
	case String:
		return v != ""
	}
	return true
}

// ToNumber converts a guest value to a number.
func ToNumber(o Object) float64 {
	switch v := o.(type) {
	case Null:
		return 0
	case Boolean:
		if v {
			return 1
		}
		return 0
	case Number:
		return float64(v)
	case String:
		s := strings.TrimSpace(string(v))
		if s == "" {
			return 0
		}
		switch s {
		case "Infinity", "+Infinity":
			return math.Inf(1)
		case "-Infinity":
			return math.Inf(-1)
		}
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			if n, err := strconv.ParseUint(s[2:], 16, 64); err == nil {
				return float64(n)
			}
			return math.NaN()
		}
		if strings.ContainsAny(s, "iInN_") {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case *Array:
		switch len(v.Elements) {
		case 0:
			return 0
		case 1:
			return ToNumber(String(ToString(v.Elements[0])))
		}
	}
	return math.NaN()
}

// ToString converts a guest value to its string form.
func ToString(o Object) string {
	switch v := o.(type) {
	case nil, Undefined:
		return "undefined"
	case Null:
		return "null"
	case Boolean:
		return strconv.FormatBool(bool(v))
	case Number:
		return FormatNumber(float64(v))
	case String:
		return string(v)
	case *Array:
		parts := make([]string, len(v.Elements))
		for i, el := range v.Elements {
			if IsNullish(el) {
				continue
			}
			parts[i] = ToString(el)
		}
		return strings.Join(parts, ",")
	case *Record:
		return "[object Object]"
	case *Function:
		return v.Inspect()
	}
	return o.Inspect()
}

// FormatNumber renders a double the way guest code prints numbers.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[0]
		digits := strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mant + "e" + string(sign) + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ToInt32 applies the guest 32-bit signed integer conversion.
func ToInt32(o Object) int32 {
	return int32(ToUint32(o))
}

// ToUint32 applies the guest 32-bit unsigned integer conversion.
func ToUint32(o Object) uint32 {
	f := ToNumber(o)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	f = math.Trunc(f)
	f = math.Mod(f, 4294967296)
	if f < 0 {
		f += 4294967296
	}
	return uint32(f)
}

// StrictEquals implements ===.
func StrictEquals(a, b Object) bool {
	switch x := a.(type) {
	case Number:
		y, ok := b.(Number)
		return ok && float64(x) == float64(y)
	case Undefined, Null, Boolean, String:
		return a == b
	}
	// Reference types compare by identity.
	return a == b
}

// TypeOf returns the guest typeof string.
func TypeOf(o Object) string {
	switch o.(type) {
	case nil, Undefined:
		return "undefined"
	case Null, *Array, *Record, *HostObject:
		return "object"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case *Function:
		return "function"
	}
	return "object"
}

// IsCallable reports whether o can be applied.
func IsCallable(o Object) bool {
	_, ok := o.(*Function)
	return ok
}
