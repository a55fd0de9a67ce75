package evaluator

import (
	"context"
	"errors"
	"testing"

	"github.com/funvibe/jessie/internal/ast"
	"github.com/funvibe/jessie/internal/insulate"
	"github.com/funvibe/jessie/internal/object"
)

func TestReentrantInsulatedCall(t *testing.T) {
	ins := insulate.New()
	var inner object.Object
	reenter := object.NewFunction("reenter", func(this object.Object, args ...object.Object) (object.Object, error) {
		fn, ok := object.Arg(args, 0).(*object.Function)
		if !ok {
			return nil, object.NewError(object.TypeMismatch, "reenter needs a function")
		}
		if !ins.IsWrapper(fn) {
			return nil, object.NewError(object.InternalFault, "callback was not insulated")
		}
		res, err := fn.Call(object.UNDEFINED, object.Arg(args, 1), object.Number(0))
		inner = res
		return res, err
	})

	src := `["module",[
		["const",[["bind",["def","g"],["arrow",[["def","n"],["def","d"]],["block",[
			["if",[">",["use","d"],["data",0]],["block",[
				["call",["use","reenter"],[["use","g"],["+",["use","n"],["data",100]]]]
			]]],
			["return",["use","n"]]
		]]]]]],
		["exportDefault",["call",["use","g"],[["data",1],["data",1]]]]
	]]`
	got, err := runProgram(t, src, map[string]object.Object{"reenter": ins.Insulate(reenter)}, Options{Insulator: ins})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got != object.Number(1) {
		t.Errorf("outer activation returned %s, want 1", got.Inspect())
	}
	if inner != object.Number(101) {
		t.Errorf("inner activation returned %v, want 101", inner)
	}
}

func TestEndowmentsAreVisibleAndConstant(t *testing.T) {
	endowments := map[string]object.Object{"limit": object.Number(3)}
	got, err := Run(context.Background(), parse(t, `["module",[["exportDefault",["+",["use","limit"],["data",1]]]]]`), endowments, Options{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got != object.Number(4) {
		t.Errorf("got %s, want 4", got.Inspect())
	}

	_, err = Run(context.Background(), parse(t, `["module",[["=",["use","limit"],["data",1]]]]`), endowments, Options{})
	if !errors.Is(err, object.ErrTypeMismatch) {
		t.Errorf("assign to endowment: got %v, want TypeMismatch", err)
	}
}

func TestRunResultIsInsulated(t *testing.T) {
	ins := insulate.New()
	got, err := Run(context.Background(), parse(t, `["module",[["exportDefault",
		["record",[["prop","f",["arrow",[],["data",1]]]]]]]]`), nil, Options{Insulator: ins})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !object.IsFrozen(got) {
		t.Error("result is not frozen")
	}
	fn, ok := get(t, got, "f").(*object.Function)
	if !ok || !ins.IsWrapper(fn) {
		t.Fatalf("method f is not an insulating wrapper")
	}
	if res, err := fn.Call(nil); err != nil || res != object.Number(1) {
		t.Errorf("f() = %v, %v", res, err)
	}
}

func TestRunExpressionRejectsModule(t *testing.T) {
	_, err := RunExpression(context.Background(), parse(t, `["module",[]]`), nil, Options{})
	if !errors.Is(err, object.ErrTypeMismatch) {
		t.Errorf("got %v, want TypeMismatch", err)
	}
}

func TestModuleWithoutExport(t *testing.T) {
	got := mustRun(t, `["module",[["let",[["def","x"]]]]]`, nil)
	if got != object.UNDEFINED {
		t.Errorf("got %s, want undefined", got.Inspect())
	}
}

func TestNewFromOptionsDefaults(t *testing.T) {
	e := NewFromOptions(context.Background(), nil, Options{})
	if e.Layer() != ast.LayerStatement {
		t.Errorf("layer = %s, want statement", e.Layer())
	}
	if e.Context == nil || e.Insulator == nil || e.ApplyMethod == nil || e.SetComputedIndex == nil {
		t.Error("defaults not installed")
	}
	for _, name := range []string{"undefined", "NaN", "Infinity"} {
		if _, err := Lookup(e.Env(), name); err != nil {
			t.Errorf("root scope lacks %s: %v", name, err)
		}
	}
}

func TestCustomSetComputedIndex(t *testing.T) {
	var writes []string
	set := func(obj object.Object, key string, val object.Object) error {
		writes = append(writes, key)
		return object.SetComputedIndex(obj, key, val)
	}
	mustRunOpts := func(src string) {
		t.Helper()
		if _, err := runProgram(t, src, nil, Options{SetComputedIndex: set}); err != nil {
			t.Fatalf("run failed: %v", err)
		}
	}
	mustRunOpts(`["module",[
		["const",[["bind",["def","r"],["record",[["prop","a",["data",1]]]]]]],
		["=",["get",["use","r"],"b"],["data",2]]
	]]`)
	if len(writes) != 2 || writes[0] != "a" || writes[1] != "b" {
		t.Errorf("writes = %v, want [a b]", writes)
	}
}
