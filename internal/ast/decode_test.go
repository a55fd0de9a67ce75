package ast

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/funvibe/jessie/internal/object"
)

func TestParseJSON(t *testing.T) {
	n, err := ParseJSON([]byte(`["if",["use","x"],["return",["data",1]],{"line":4,"column":2,"source":"m.json"}]`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if n.Tag != If {
		t.Fatalf("tag = %q, want if", n.Tag)
	}
	if n.Node(2) != nil {
		t.Errorf("omitted else branch = %v, want nil", n.Node(2))
	}
	if got := n.Node(1).Node(0).Literal(0); got != float64(1) {
		t.Errorf("literal = %#v, want float64(1)", got)
	}
	if n.Pos.String() != "m.json:4:2" {
		t.Errorf("position = %q, want m.json:4:2", n.Pos.String())
	}
}

func TestParseYAML(t *testing.T) {
	src := `
- quasi
- - "a"
  - [use, x]
  - "b"
- {line: 1, column: 7}
`
	n, err := ParseYAML([]byte(src))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	parts := n.Parts(0)
	if len(parts) != 3 || parts[0].Text != "a" || !parts[1].IsExpr() || parts[2].Text != "b" {
		t.Errorf("parts = %+v", parts)
	}
	if n.Pos.Line != 1 || n.Pos.Column != 7 {
		t.Errorf("position = %v, want 1:7", n.Pos)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"not a tuple", `{"tag":"data"}`},
		{"empty tuple", `[]`},
		{"non-string tag", `[1,2]`},
		{"unknown tag", `["goto","x"]`},
		{"too many operands", `["use","x","y"]`},
		{"missing node", `["typeof"]`},
		{"string expected", `["use",1]`},
		{"composite literal", `["data",[1,2]]`},
		{"node list expected", `["array",["data",1]]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.src))
			if !errors.Is(err, object.ErrUnknownNodeKind) {
				t.Errorf("got %v, want UnknownNodeKind", err)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	original := N(Module, []*Node{
		N(Const, []*Node{N(Bind, N(Def, "f"), N(Arrow, []*Node{N(Def, "x")}, N(Add, N(Use, "x"), N(Data, 1))))}),
		N(ExportDefault, N(Quasi, []Part{{Text: "v="}, {Expr: N(Call, N(Use, "f"), []*Node{N(Data, 2)})}})).At(3, 1),
	})
	data, err := json.Marshal(Encode(original))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON(%s): %v", data, err)
	}
	if !Equal(original, decoded) {
		t.Errorf("decoded tree differs:\n got %s\nwant %s", decoded.Inspect(), original.Inspect())
	}
	if pos := decoded.Nodes(0)[1].Pos; pos.Line != 3 || pos.Column != 1 {
		t.Errorf("position lost: %v", pos)
	}
}

func TestNewRejectsMalformedOperands(t *testing.T) {
	if _, err := New(Get, N(Use, "x"), 3); err == nil {
		t.Error("numeric property name accepted")
	}
	if _, err := New("nope"); !errors.Is(err, object.ErrUnknownNodeKind) {
		t.Errorf("unknown tag: got %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Error("N did not panic on a malformed node")
		}
	}()
	N(Use)
}

func TestEqualIgnoresPositions(t *testing.T) {
	a := N(Use, "x").At(1, 1)
	b := N(Use, "x").At(9, 9)
	if !Equal(a, b) {
		t.Error("positions affect equality")
	}
	if Equal(a, N(Use, "y")) || Equal(a, nil) {
		t.Error("different trees compare equal")
	}
}

func TestLayersNest(t *testing.T) {
	for tag := range kinds {
		layer, _ := LayerOf(tag)
		if layer < LayerData || layer > LayerStatement {
			t.Errorf("%q has no valid layer", tag)
		}
	}
	for tag, op := range CompoundAssignments {
		if l, _ := LayerOf(tag); l != LayerStatement {
			t.Errorf("%q belongs to the %s layer", tag, l)
		}
		if l, _ := LayerOf(op); l != LayerExpression {
			t.Errorf("operator %q of %q belongs to the %s layer", op, tag, l)
		}
	}
}
