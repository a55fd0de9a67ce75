package ast

// Equal reports whether two trees have the same tags and operands.
// Positions are ignored.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Tag != b.Tag || len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if !operandEqual(a.Args[i], b.Args[i]) {
			return false
		}
	}
	return true
}

func operandEqual(x, y interface{}) bool {
	switch a := x.(type) {
	case *Node:
		b, ok := y.(*Node)
		return ok && Equal(a, b)
	case []*Node:
		b, ok := y.([]*Node)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !Equal(a[i], b[i]) {
				return false
			}
		}
		return true
	case []Part:
		b, ok := y.([]Part)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i].Text != b[i].Text || !Equal(a[i].Expr, b[i].Expr) {
				return false
			}
		}
		return true
	}
	return x == y
}
