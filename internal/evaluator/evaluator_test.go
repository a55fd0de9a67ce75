package evaluator

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/funvibe/jessie/internal/ast"
	"github.com/funvibe/jessie/internal/object"
)

func parse(t *testing.T, src string) *ast.Node {
	t.Helper()
	n, err := ast.ParseJSON([]byte(src))
	if err != nil {
		t.Fatalf("parse %s: %v", src, err)
	}
	return n
}

func runProgram(t *testing.T, src string, endowments map[string]object.Object, opts Options) (object.Object, error) {
	t.Helper()
	return Run(context.Background(), parse(t, src), endowments, opts)
}

func mustRun(t *testing.T, src string, endowments map[string]object.Object) object.Object {
	t.Helper()
	val, err := runProgram(t, src, endowments, Options{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return val
}

func get(t *testing.T, obj object.Object, key string) object.Object {
	t.Helper()
	val, err := object.Get(obj, key)
	if err != nil {
		t.Fatalf("get %q: %v", key, err)
	}
	return val
}

func expectValues(t *testing.T, got object.Object, want ...object.Object) {
	t.Helper()
	arr, ok := got.(*object.Array)
	if !ok {
		t.Fatalf("result is %s, want an array", got.Inspect())
	}
	if arr.Len() != len(want) {
		t.Fatalf("result = %s, want %d elements", arr.Inspect(), len(want))
	}
	for i, w := range want {
		if !object.StrictEquals(arr.At(i), w) {
			t.Errorf("element %d = %s, want %s", i, arr.At(i).Inspect(), w.Inspect())
		}
	}
}

func TestTablesAreLayered(t *testing.T) {
	layers := []ast.Layer{ast.LayerData, ast.LayerExpression, ast.LayerStatement}
	for _, layer := range layers {
		if err := verifyTable(layer, tables[layer]); err != nil {
			t.Errorf("%v", err)
		}
		for _, other := range layers {
			for _, tag := range ast.TagsOf(other) {
				got := Handles(layer, tag)
				if want := other <= layer; got != want {
					t.Errorf("Handles(%s, %q) = %v, want %v", layer, tag, got, want)
				}
			}
		}
	}
}

func TestVerifyTableRejectsGaps(t *testing.T) {
	partial := extend(tables[ast.LayerExpression], nil)
	delete(partial, ast.Use)
	if err := verifyTable(ast.LayerExpression, partial); err == nil {
		t.Error("missing handler not reported")
	}
	if err := verifyTable(ast.LayerData, tables[ast.LayerExpression]); err == nil {
		t.Error("higher layer handler not reported")
	}
}

func TestDispatchUnknownNodeKind(t *testing.T) {
	tests := []struct {
		name  string
		layer ast.Layer
		node  *ast.Node
	}{
		{"unknown tag", ast.LayerStatement, &ast.Node{Tag: "bogus"}},
		{"expression in data layer", ast.LayerData, ast.N(ast.Use, "x")},
		{"statement in expression layer", ast.LayerExpression, ast.N(ast.Block, []*ast.Node{})},
		{"pattern as expression", ast.LayerStatement, ast.N(ast.MatchRecord, []*ast.Node{})},
		{"nil node", ast.LayerStatement, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.layer).Dispatch(tt.node)
			if !errors.Is(err, object.ErrUnknownNodeKind) {
				t.Errorf("got %v, want UnknownNodeKind", err)
			}
		})
	}
}

func TestDispatchInvokesTableHandler(t *testing.T) {
	e := New(ast.LayerExpression)
	called := 0
	e.table = extend(e.table, map[ast.Tag]Handler{
		ast.Void: func(e *Evaluator, n *ast.Node) (object.Object, error) {
			called++
			return object.String("void handler"), nil
		},
	})
	val, err := e.Dispatch(ast.N(ast.Void, ast.N(ast.Data, 1)))
	if err != nil || val != object.String("void handler") || called != 1 {
		t.Errorf("Dispatch = %v, %v (called %d times)", val, err, called)
	}
	if len(e.nodes) != 0 {
		t.Errorf("position stack not unwound: %d entries", len(e.nodes))
	}
}

func TestExpressions(t *testing.T) {
	double := object.NewFunction("double", func(this object.Object, args ...object.Object) (object.Object, error) {
		return object.Number(2 * object.ToNumber(object.Arg(args, 0))), nil
	})
	endowments := map[string]object.Object{"double": double}

	tests := []struct {
		src      string
		expected object.Object
	}{
		{`["+",["data",1],["data",2]]`, object.Number(3)},
		{`["+",["data","a"],["data",1]]`, object.String("a1")},
		{`["-",["data","5"],["data",2]]`, object.Number(3)},
		{`["%",["data",7],["data",3]]`, object.Number(1)},
		{`["**",["data",2],["data",10]]`, object.Number(1024)},
		{`[">>>",["pre:-",["data",1]],["data",28]]`, object.Number(15)},
		{`["<<",["data",1],["data",33]]`, object.Number(2)},
		{`["pre:~",["data",5]]`, object.Number(-6)},
		{`["pre:!",["data",""]]`, object.TRUE},
		{`["<",["data","a"],["data","b"]]`, object.TRUE},
		{`[">=",["data",1],["data",null]]`, object.TRUE},
		{`["===",["data",1],["data","1"]]`, object.FALSE},
		{`["!==",["data",null],["use","undefined"]]`, object.TRUE},
		{`["typeof",["use","missing"]]`, object.String("undefined")},
		{`["typeof",["use","double"]]`, object.String("function")},
		{`["&&",["data",false],["use","missing"]]`, object.FALSE},
		{`["||",["data",0],["data","x"]]`, object.String("x")},
		{`["cond",["data",""],["data",1],["data",2]]`, object.Number(2)},
		{`["quasi",["a",["+",["data",1],["data",1]],"b"]]`, object.String("a2b")},
		{`["index",["array",[["data",10],["data",20]]],["data",1]]`, object.Number(20)},
		{`["get",["data","hello"],"length"]`, object.Number(5)},
		{`["get",["record",[["prop","a",["data",1]]]],"a"]`, object.Number(1)},
		{`["call",["use","double"],[["spread",["array",[["data",4]]]]]]`, object.Number(8)},
		{`["void",["call",["use","double"],[["data",1]]]]`, object.UNDEFINED},
		{`["use","Infinity"]`, object.Number(math.Inf(1))},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := RunExpression(context.Background(), parse(t, tt.src), endowments, Options{Layer: ast.LayerExpression})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !object.StrictEquals(got, tt.expected) {
				t.Errorf("got %s, want %s", got.Inspect(), tt.expected.Inspect())
			}
		})
	}
}

func TestExpressionErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		layer ast.Layer
		kind  error
	}{
		{"non-numeric index", `["index",["array",[]],["data","0"]]`, ast.LayerExpression, object.ErrTypeMismatch},
		{"missing name", `["use","nope"]`, ast.LayerExpression, object.ErrReferenceMissing},
		{"call non-function", `["call",["data",1],[]]`, ast.LayerExpression, object.ErrTypeMismatch},
		{"property of undefined", `["get",["use","undefined"],"x"]`, ast.LayerExpression, object.ErrTypeMismatch},
		{"spread non-iterable", `["array",[["spread",["data",1]]]]`, ast.LayerExpression, object.ErrTypeMismatch},
		{"use in data layer", `["array",[["use","x"]]]`, ast.LayerData, object.ErrUnknownNodeKind},
		{"proto key", `["record",[["prop","__proto__",["data",1]]]]`, ast.LayerData, object.ErrTypeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RunExpression(context.Background(), parse(t, tt.src), nil, Options{Layer: tt.layer})
			if !errors.Is(err, tt.kind) {
				t.Errorf("got %v, want %v", err, tt.kind)
			}
		})
	}
}

func TestStatementLayerIndexAcceptsAnyKey(t *testing.T) {
	got, err := RunExpression(context.Background(), parse(t, `["index",["record",[["prop","k",["data",7]]]],["data","k"]]`), nil, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != object.Number(7) {
		t.Errorf("got %s, want 7", got.Inspect())
	}
}

func TestDataLayer(t *testing.T) {
	got, err := RunExpression(context.Background(), parse(t, `["record",[["prop","a",["array",[["data",1],["data",null],["data",true]]]]]]`), nil, Options{Layer: ast.LayerData})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !object.IsFrozen(got) {
		t.Error("result is not insulated")
	}
	expectValues(t, get(t, got, "a"), object.Number(1), object.NULL, object.TRUE)
}

func TestTaggedTemplate(t *testing.T) {
	first := object.NewFunction("first", func(this object.Object, args ...object.Object) (object.Object, error) {
		return object.NewArray(object.Arg(args, 0), object.Arg(args, 1)), nil
	})
	got, err := RunExpression(context.Background(), parse(t, `["tag",["use","first"],["quasi",["x",["data",1],"y"]]]`),
		map[string]object.Object{"first": first}, Options{Layer: ast.LayerExpression})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arr := got.(*object.Array)
	expectValues(t, arr.At(0), object.String("x"), object.String("y"))
	if arr.At(1) != object.Number(1) {
		t.Errorf("substitution = %s, want 1", arr.At(1).Inspect())
	}
}

func TestErrorPosition(t *testing.T) {
	_, err := RunExpression(context.Background(), parse(t, `["+",["data",1],["use","nope",{"line":3,"column":5}]]`), nil,
		Options{ScriptName: "main.json"})
	var oe *object.Error
	if !errors.As(err, &oe) {
		t.Fatalf("got %v, want *object.Error", err)
	}
	if oe.Line != 3 || oe.Column != 5 || oe.Source != "main.json" {
		t.Errorf("position = %s:%d:%d, want main.json:3:5", oe.Source, oe.Line, oe.Column)
	}
}

func TestCalleeErrorPosition(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"named callee", `["call",["use","nope",{"line":4,"column":2}],[]]`},
		{"method callee", `["call",["get",["use","nope",{"line":4,"column":2}],"m"],[]]`},
		{"typeof member", `["typeof",["get",["use","nope",{"line":4,"column":2}],"m"]]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RunExpression(context.Background(), parse(t, tt.src), nil, Options{ScriptName: "main.json"})
			var oe *object.Error
			if !errors.As(err, &oe) || !errors.Is(err, object.ErrReferenceMissing) {
				t.Fatalf("got %v, want ReferenceMissing", err)
			}
			if oe.Line != 4 || oe.Column != 2 {
				t.Errorf("position = %d:%d, want 4:2", oe.Line, oe.Column)
			}
		})
	}
}

func TestCalleeReadsCountTowardsDepth(t *testing.T) {
	// One call node and one callee node per level.
	src := `["call",["use","f"],[]]`
	_, err := RunExpression(context.Background(), parse(t, src), nil, Options{MaxDepth: 1})
	if !errors.Is(err, object.ErrDepthExceeded) {
		t.Errorf("got %v, want DepthExceeded", err)
	}
}

func TestBindingShadowing(t *testing.T) {
	var chain *Binding
	chain = Extend(chain, "x", object.Number(1), false)
	outer := chain
	chain = Extend(chain, "x", object.Number(2), true)

	if v, _ := Lookup(chain, "x"); v != object.Number(2) {
		t.Errorf("inner x = %s, want 2", v.Inspect())
	}
	if v, _ := Lookup(outer, "x"); v != object.Number(1) {
		t.Errorf("outer x = %s, want 1", v.Inspect())
	}
	if _, err := Assign(chain, "x", object.Number(3)); err != nil {
		t.Fatalf("assign to mutable binding: %v", err)
	}
	if _, err := Assign(outer, "x", object.Number(3)); !errors.Is(err, object.ErrTypeMismatch) {
		t.Errorf("assign to constant: got %v, want TypeMismatch", err)
	}
	if _, err := Lookup(chain, "y"); !errors.Is(err, object.ErrReferenceMissing) {
		t.Errorf("lookup of missing name: got %v, want ReferenceMissing", err)
	}
}

func TestDepthExceeded(t *testing.T) {
	src := `["module",[
		["functionDecl",["def","f"],[],["block",[["return",["call",["use","f"],[]]]]]],
		["try",["block",[["call",["use","f"],[]]]],["catch",["def","e"],["block",[]]]]
	]]`
	_, err := runProgram(t, src, nil, Options{MaxDepth: 200})
	if !errors.Is(err, object.ErrDepthExceeded) {
		t.Errorf("got %v, want DepthExceeded", err)
	}
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, parse(t, `["module",[["while",["data",true],["block",[]]]]]`), nil, Options{})
	if !errors.Is(err, object.ErrCancelled) {
		t.Errorf("got %v, want Cancelled", err)
	}
}
