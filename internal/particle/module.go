package particle

import (
	"fmt"
	"strings"
)

// ExprHandle references one entry of a Module. Handles are 1-based so that the
// zero value never refers to a valid entry.
type ExprHandle uint32

// Valid reports whether the handle can refer to a module entry.
func (h ExprHandle) Valid() bool {
	return h != 0
}

// ExprKind tags the variant of a module entry.
type ExprKind string

const (
	ExprLiteral         ExprKind = "literal"
	ExprBuiltin         ExprKind = "builtin"
	ExprAttribute       ExprKind = "attribute"
	ExprParentAttribute ExprKind = "parent_attribute"
	ExprUnary           ExprKind = "unary"
	ExprBinary          ExprKind = "binary"
	ExprTernary         ExprKind = "ternary"
	ExprQuaternary      ExprKind = "quaternary"
)

// Builtin names a runtime-provided quantity.
type Builtin string

const (
	BuiltinTime Builtin = "time"
	BuiltinRand Builtin = "rand"
)

// Op names an operator applied to the operands of an entry.
type Op string

const (
	OpSin          Op = "sin"
	OpCos          Op = "cos"
	OpNormalize    Op = "normalize"
	OpPack4x8Unorm Op = "pack4x8unorm"
	OpAdd          Op = "add"
	OpSub          Op = "sub"
	OpMul          Op = "mul"
	OpDistance     Op = "distance"
	OpUniform      Op = "uniform"
	OpVec3         Op = "vec3"
	OpVec4         Op = "vec4"
)

// Arity returns the number of operands the operator takes, or 0 for an
// unknown operator.
func (op Op) Arity() int {
	switch op {
	case OpSin, OpCos, OpNormalize, OpPack4x8Unorm:
		return 1
	case OpAdd, OpSub, OpMul, OpDistance, OpUniform:
		return 2
	case OpVec3:
		return 3
	case OpVec4:
		return 4
	}
	return 0
}

// Expr is one entry of the expression module. Operands always reference
// entries that were appended earlier, so a module is a DAG in topological
// order.
type Expr struct {
	Kind     ExprKind     `yaml:"kind"`
	Value    *Value       `yaml:"value,omitempty"`
	Builtin  Builtin      `yaml:"builtin,omitempty"`
	RandType ValueType    `yaml:"rand_type,omitempty"`
	Attr     Attribute    `yaml:"attr,omitempty"`
	Op       Op           `yaml:"op,omitempty"`
	Args     []ExprHandle `yaml:"args,flow,omitempty"`
}

// Module is the expression graph shared by every instruction of one effect.
// Entries are only ever appended; a handle stays valid for the lifetime of the
// module.
type Module struct {
	Exprs        []Expr   `yaml:"exprs"`
	TextureSlots []string `yaml:"texture_slots,flow,omitempty"`
}

// NewModule returns an empty module.
func NewModule() *Module {
	return &Module{Exprs: make([]Expr, 0)}
}

func (m *Module) push(e Expr) ExprHandle {
	m.Exprs = append(m.Exprs, e)
	return ExprHandle(len(m.Exprs))
}

// Lit appends a literal entry.
func (m *Module) Lit(v Value) ExprHandle {
	return m.push(Expr{Kind: ExprLiteral, Value: &v})
}

// Time appends the simulation time builtin.
func (m *Module) Time() ExprHandle {
	return m.push(Expr{Kind: ExprBuiltin, Builtin: BuiltinTime})
}

// Rand appends a uniform random value of the given type.
func (m *Module) Rand(t ValueType) ExprHandle {
	return m.push(Expr{Kind: ExprBuiltin, Builtin: BuiltinRand, RandType: t})
}

// Attr appends a read of the particle's own attribute.
func (m *Module) Attr(a Attribute) ExprHandle {
	return m.push(Expr{Kind: ExprAttribute, Attr: a})
}

// ParentAttr appends a read of the parent effect particle's attribute. The
// module does not check that the effect will have a parent at runtime.
func (m *Module) ParentAttr(a Attribute) ExprHandle {
	return m.push(Expr{Kind: ExprParentAttribute, Attr: a})
}

// Unary appends a one-operand operator entry.
func (m *Module) Unary(op Op, x ExprHandle) ExprHandle {
	return m.push(Expr{Kind: ExprUnary, Op: op, Args: []ExprHandle{x}})
}

// Binary appends a two-operand operator entry.
func (m *Module) Binary(op Op, l, r ExprHandle) ExprHandle {
	return m.push(Expr{Kind: ExprBinary, Op: op, Args: []ExprHandle{l, r}})
}

// Ternary appends a three-operand operator entry.
func (m *Module) Ternary(op Op, a, b, c ExprHandle) ExprHandle {
	return m.push(Expr{Kind: ExprTernary, Op: op, Args: []ExprHandle{a, b, c}})
}

// Quaternary appends a four-operand operator entry.
func (m *Module) Quaternary(op Op, a, b, c, d ExprHandle) ExprHandle {
	return m.push(Expr{Kind: ExprQuaternary, Op: op, Args: []ExprHandle{a, b, c, d}})
}

// AddTextureSlot declares a named texture slot and returns its index.
func (m *Module) AddTextureSlot(name string) int {
	m.TextureSlots = append(m.TextureSlots, name)
	return len(m.TextureSlots) - 1
}

// Len returns the number of entries.
func (m *Module) Len() int {
	return len(m.Exprs)
}

// Get returns the entry referenced by h.
func (m *Module) Get(h ExprHandle) (Expr, bool) {
	if !h.Valid() || int(h) > len(m.Exprs) {
		return Expr{}, false
	}
	return m.Exprs[h-1], true
}

// Validate checks that every operand references an earlier entry.
func (m *Module) Validate() error {
	for i, e := range m.Exprs {
		for _, arg := range e.Args {
			if !arg.Valid() || int(arg) > i {
				return fmt.Errorf("expr %d references invalid operand %d", i+1, arg)
			}
		}
		if n := e.Op.Arity(); n != 0 && n != len(e.Args) {
			return fmt.Errorf("expr %d: operator %s takes %d operands, got %d", i+1, e.Op, n, len(e.Args))
		}
	}
	return nil
}

// Format renders the expression rooted at h as shader-like source text.
// It is intended for logs and debugging overlays.
func (m *Module) Format(h ExprHandle) string {
	var b strings.Builder
	m.format(&b, h)
	return b.String()
}

func (m *Module) format(b *strings.Builder, h ExprHandle) {
	e, ok := m.Get(h)
	if !ok {
		fmt.Fprintf(b, "<bad %d>", h)
		return
	}
	switch e.Kind {
	case ExprLiteral:
		if e.Value != nil {
			b.WriteString(e.Value.String())
		}
	case ExprBuiltin:
		if e.Builtin == BuiltinRand {
			fmt.Fprintf(b, "rand(%s)", e.RandType)
		} else {
			b.WriteString(string(e.Builtin))
		}
	case ExprAttribute:
		fmt.Fprintf(b, "particle.%s", e.Attr)
	case ExprParentAttribute:
		fmt.Fprintf(b, "parent.%s", e.Attr)
	case ExprBinary:
		if sym, ok := infix[e.Op]; ok {
			b.WriteString("(")
			m.format(b, e.Args[0])
			b.WriteString(sym)
			m.format(b, e.Args[1])
			b.WriteString(")")
			return
		}
		fallthrough
	case ExprUnary, ExprTernary, ExprQuaternary:
		b.WriteString(string(e.Op))
		b.WriteString("(")
		for i, arg := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			m.format(b, arg)
		}
		b.WriteString(")")
	}
}

var infix = map[Op]string{
	OpAdd: " + ",
	OpSub: " - ",
	OpMul: " * ",
}
