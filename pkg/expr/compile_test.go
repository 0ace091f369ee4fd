package expr

import (
	"reflect"
	"testing"

	"github.com/decker502/omagari/internal/particle"
	"github.com/decker502/omagari/pkg/diag"
)

// TestCompile_PostOrder tests that children are appended before their parent
func TestCompile_PostOrder(t *testing.T) {
	m := particle.NewModule()
	h := Compile(RandomNormalizedVector(), m, nil)

	wantKinds := []particle.ExprKind{
		particle.ExprBuiltin, // rand(vec3)
		particle.ExprLiteral, // 2.0
		particle.ExprBinary,  // mul
		particle.ExprLiteral, // 1.0
		particle.ExprBinary,  // sub
		particle.ExprUnary,   // normalize
	}
	if m.Len() != len(wantKinds) {
		t.Fatalf("Expected %d entries, got %d", len(wantKinds), m.Len())
	}
	for i, k := range wantKinds {
		if m.Exprs[i].Kind != k {
			t.Errorf("Entry %d: expected %s, got %s", i+1, k, m.Exprs[i].Kind)
		}
	}
	if int(h) != m.Len() {
		t.Errorf("Expected root to be the last entry, got %d", h)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Compiled module is invalid: %v", err)
	}

	want := "normalize(((rand(vec3) * 2.0) - 1.0))"
	if got := m.Format(h); got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

// TestCompile_Placeholder tests that a placeholder degrades to literal 0.0
func TestCompile_Placeholder(t *testing.T) {
	m := particle.NewModule()
	var sink diag.Collector
	h := Compile(Placeholder(), m, &sink)

	e, ok := m.Get(h)
	if !ok {
		t.Fatal("Placeholder did not produce an entry")
	}
	if e.Kind != particle.ExprLiteral || e.Value == nil || *e.Value != particle.FloatValue(0) {
		t.Errorf("Expected literal 0.0, got %+v", e)
	}
	if sink.Count(diag.KindPlaceholder) != 1 {
		t.Errorf("Expected 1 placeholder hazard, got %d", sink.Count(diag.KindPlaceholder))
	}

	// silent without a sink
	Compile(Add(Placeholder(), Float(1)), m, nil)
}

// TestCompile_MissingOperands tests that short operator children are filled with 0.0
func TestCompile_MissingOperands(t *testing.T) {
	m := particle.NewModule()
	var sink diag.Collector
	h := Compile(Node{Kind: KindAdd, Args: []Node{Float(1)}}, m, &sink)

	e, _ := m.Get(h)
	if len(e.Args) != 2 {
		t.Fatalf("Expected 2 operands, got %d", len(e.Args))
	}
	if sink.Count(diag.KindPlaceholder) != 1 {
		t.Errorf("Expected 1 placeholder hazard, got %d", sink.Count(diag.KindPlaceholder))
	}
	if sink.Hazards[0].Path != "args[1]" {
		t.Errorf("Expected path 'args[1]', got %q", sink.Hazards[0].Path)
	}
}

// TestCompile_DeepTree tests totality on a deeply nested tree
func TestCompile_DeepTree(t *testing.T) {
	n := Float(1)
	const depth = 2000
	for i := 0; i < depth; i++ {
		n = Sin(n)
	}
	m := particle.NewModule()
	h := Compile(n, m, nil)
	if m.Len() != depth+1 {
		t.Errorf("Expected %d entries, got %d", depth+1, m.Len())
	}
	if int(h) != depth+1 {
		t.Errorf("Expected root handle %d, got %d", depth+1, h)
	}
}

// TestCompile_Leaves tests the entry produced by every leaf kind
func TestCompile_Leaves(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want particle.Expr
	}{
		{"age", Age(), particle.Expr{Kind: particle.ExprAttribute, Attr: particle.AttrAge}},
		{"attr", Attr(particle.AttrVelocity), particle.Expr{Kind: particle.ExprAttribute, Attr: particle.AttrVelocity}},
		{"parent attr", ParentAttr(particle.AttrPosition), particle.Expr{Kind: particle.ExprParentAttribute, Attr: particle.AttrPosition}},
		{"time", Time(), particle.Expr{Kind: particle.ExprBuiltin, Builtin: particle.BuiltinTime}},
		{"rand uint", Rand(particle.TypeUint), particle.Expr{Kind: particle.ExprBuiltin, Builtin: particle.BuiltinRand, RandType: particle.TypeUint}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := particle.NewModule()
			e, _ := m.Get(Compile(tt.node, m, nil))
			if !reflect.DeepEqual(e, tt.want) {
				t.Errorf("Got %+v, want %+v", e, tt.want)
			}
		})
	}
}

// TestCompile_MakeVec4 tests that make_vec4 lowers to a single four-operand entry
func TestCompile_MakeVec4(t *testing.T) {
	m := particle.NewModule()
	h := Compile(MakeVec4(Float(1), Float(2), Float(3), Float(4)), m, nil)
	if m.Len() != 5 {
		t.Fatalf("Expected 5 entries, got %d", m.Len())
	}
	e, _ := m.Get(h)
	if e.Kind != particle.ExprQuaternary || e.Op != particle.OpVec4 {
		t.Errorf("Expected quaternary vec4, got %s %s", e.Kind, e.Op)
	}
}

// TestCompile_Deterministic tests that compiling twice produces identical modules
func TestCompile_Deterministic(t *testing.T) {
	n := Uniform(Mul(Time(), Float(0.5)), MakeVec3(Float(1), Age(), Rand(particle.TypeFloat)))
	a, b := particle.NewModule(), particle.NewModule()
	Compile(n, a, nil)
	Compile(n, b, nil)
	if !reflect.DeepEqual(a, b) {
		t.Error("Expected identical modules")
	}
}
