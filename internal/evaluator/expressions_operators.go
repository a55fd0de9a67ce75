package evaluator

import (
	"errors"
	"math"

	"github.com/funvibe/jessie/internal/ast"
	"github.com/funvibe/jessie/internal/object"
)

func evalPrefix(e *Evaluator, n *ast.Node) (object.Object, error) {
	val, err := e.Dispatch(n.Node(0))
	if err != nil {
		return nil, err
	}
	switch n.Tag {
	case ast.PrePlus:
		return object.Number(object.ToNumber(val)), nil
	case ast.PreMinus:
		return object.Number(-object.ToNumber(val)), nil
	case ast.PreBNot:
		return object.Number(float64(^object.ToInt32(val))), nil
	case ast.PreNot:
		return object.NativeBool(!object.Truthy(val)), nil
	}
	return nil, object.NewError(object.UnknownNodeKind, "unknown prefix operator %s", n.Tag)
}

func evalBinary(e *Evaluator, n *ast.Node) (object.Object, error) {
	left, err := e.Dispatch(n.Node(0))
	if err != nil {
		return nil, err
	}
	right, err := e.Dispatch(n.Node(1))
	if err != nil {
		return nil, err
	}
	return binaryOp(n.Tag, left, right)
}

func evalAnd(e *Evaluator, n *ast.Node) (object.Object, error) {
	left, err := e.Dispatch(n.Node(0))
	if err != nil || !object.Truthy(left) {
		return left, err
	}
	return e.Dispatch(n.Node(1))
}

func evalOr(e *Evaluator, n *ast.Node) (object.Object, error) {
	left, err := e.Dispatch(n.Node(0))
	if err != nil || object.Truthy(left) {
		return left, err
	}
	return e.Dispatch(n.Node(1))
}

func evalCond(e *Evaluator, n *ast.Node) (object.Object, error) {
	cond, err := e.Dispatch(n.Node(0))
	if err != nil {
		return nil, err
	}
	if object.Truthy(cond) {
		return e.Dispatch(n.Node(1))
	}
	return e.Dispatch(n.Node(2))
}

func evalTypeOf(e *Evaluator, n *ast.Node) (object.Object, error) {
	val, err := e.Dispatch(n.Node(0))
	if err != nil {
		// A missing name is not an error here.
		if n.Node(0).Tag == ast.Use && errors.Is(err, object.ErrReferenceMissing) {
			return object.String("undefined"), nil
		}
		return nil, err
	}
	return object.String(object.TypeOf(val)), nil
}

func evalVoid(e *Evaluator, n *ast.Node) (object.Object, error) {
	if _, err := e.Dispatch(n.Node(0)); err != nil {
		return nil, err
	}
	return object.UNDEFINED, nil
}

// binaryOp applies a binary operator to evaluated operands. It is shared by
// binary expressions and compound assignments.
func binaryOp(op ast.Tag, left, right object.Object) (object.Object, error) {
	switch op {
	case ast.Add:
		return add(left, right), nil
	case ast.Sub:
		return object.Number(object.ToNumber(left) - object.ToNumber(right)), nil
	case ast.Mul:
		return object.Number(object.ToNumber(left) * object.ToNumber(right)), nil
	case ast.Div:
		return object.Number(object.ToNumber(left) / object.ToNumber(right)), nil
	case ast.Mod:
		return object.Number(math.Mod(object.ToNumber(left), object.ToNumber(right))), nil
	case ast.Pow:
		return object.Number(pow(object.ToNumber(left), object.ToNumber(right))), nil
	case ast.Shl:
		return object.Number(float64(object.ToInt32(left) << (object.ToUint32(right) & 31))), nil
	case ast.Shr:
		return object.Number(float64(object.ToInt32(left) >> (object.ToUint32(right) & 31))), nil
	case ast.UShr:
		return object.Number(float64(object.ToUint32(left) >> (object.ToUint32(right) & 31))), nil
	case ast.BAnd:
		return object.Number(float64(object.ToInt32(left) & object.ToInt32(right))), nil
	case ast.BXor:
		return object.Number(float64(object.ToInt32(left) ^ object.ToInt32(right))), nil
	case ast.BOr:
		return object.Number(float64(object.ToInt32(left) | object.ToInt32(right))), nil
	case ast.StrEq:
		return object.NativeBool(object.StrictEquals(left, right)), nil
	case ast.StrNe:
		return object.NativeBool(!object.StrictEquals(left, right)), nil
	case ast.Lt, ast.Le, ast.Gt, ast.Ge:
		return object.NativeBool(compare(op, left, right)), nil
	}
	return nil, object.NewError(object.UnknownNodeKind, "unknown binary operator %s", op)
}

func isPrimitive(o object.Object) bool {
	switch o.(type) {
	case object.Undefined, object.Null, object.Boolean, object.Number, object.String:
		return true
	}
	return false
}

// add concatenates when either side is a string or an object, and adds
// numerically otherwise.
func add(left, right object.Object) object.Object {
	_, ls := left.(object.String)
	_, rs := right.(object.String)
	if ls || rs || !isPrimitive(left) || !isPrimitive(right) {
		return object.String(object.ToString(left) + object.ToString(right))
	}
	return object.Number(object.ToNumber(left) + object.ToNumber(right))
}

func compare(op ast.Tag, left, right object.Object) bool {
	ls, lok := left.(object.String)
	rs, rok := right.(object.String)
	if lok && rok {
		switch op {
		case ast.Lt:
			return ls < rs
		case ast.Le:
			return ls <= rs
		case ast.Gt:
			return ls > rs
		default:
			return ls >= rs
		}
	}
	// NaN compares false either way.
	l, r := object.ToNumber(left), object.ToNumber(right)
	switch op {
	case ast.Lt:
		return l < r
	case ast.Le:
		return l <= r
	case ast.Gt:
		return l > r
	default:
		return l >= r
	}
}

func pow(x, y float64) float64 {
	if math.IsNaN(y) || (math.Abs(x) == 1 && math.IsInf(y, 0)) {
		return nan
	}
	return math.Pow(x, y)
}
