// Package expr implements the editable value-expression tree used by modifier
// fields, and its lowering into a shared particle.Module.
package expr

import (
	"github.com/decker502/omagari/internal/particle"
)

// Kind selects the variant of a Node.
type Kind string

const (
	KindPlaceholder Kind = "placeholder"

	// Leaves
	KindFloat      Kind = "float"
	KindUint       Kind = "uint"
	KindVec3       Kind = "vec3"
	KindVec4       Kind = "vec4"
	KindRand       Kind = "rand"
	KindTime       Kind = "time"
	KindAge        Kind = "age"
	KindAttr       Kind = "attr"
	KindParentAttr Kind = "parent_attr"

	// Operators
	KindSin          Kind = "sin"
	KindCos          Kind = "cos"
	KindNormalize    Kind = "normalize"
	KindPack4x8Unorm Kind = "pack4x8unorm"
	KindAdd          Kind = "add"
	KindSub          Kind = "sub"
	KindMul          Kind = "mul"
	KindDistance     Kind = "distance"
	KindUniform      Kind = "uniform"
	KindMakeVec3     Kind = "make_vec3"
	KindMakeVec4     Kind = "make_vec4"
)

// OperatorKinds lists every operator kind in menu order.
var OperatorKinds = []Kind{
	KindUniform, KindMul, KindSub, KindAdd, KindSin, KindCos, KindDistance,
	KindMakeVec3, KindNormalize, KindMakeVec4, KindPack4x8Unorm,
}

// Arity returns the number of children the kind takes. Leaves and unknown
// kinds return 0.
func (k Kind) Arity() int {
	switch k {
	case KindSin, KindCos, KindNormalize, KindPack4x8Unorm:
		return 1
	case KindAdd, KindSub, KindMul, KindDistance, KindUniform:
		return 2
	case KindMakeVec3:
		return 3
	case KindMakeVec4:
		return 4
	}
	return 0
}

// IsOperator reports whether the kind combines child expressions.
func (k Kind) IsOperator() bool {
	return k.Arity() > 0
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindPlaceholder, KindFloat, KindUint, KindVec3, KindVec4, KindRand,
		KindTime, KindAge, KindAttr, KindParentAttr:
		return true
	}
	return k.IsOperator()
}

var labels = map[Kind]string{
	KindPlaceholder:  "Placeholder",
	KindFloat:        "Float",
	KindUint:         "U32",
	KindVec3:         "Vec3",
	KindVec4:         "Vec4",
	KindTime:         "Time",
	KindAge:          "Age",
	KindAttr:         "Attr",
	KindParentAttr:   "Parent Attr",
	KindSin:          "Sin",
	KindCos:          "Cos",
	KindNormalize:    "Normalized",
	KindPack4x8Unorm: "Pack4x8UNorm",
	KindAdd:          "Add",
	KindSub:          "Subtract",
	KindMul:          "Multiply",
	KindDistance:     "Distance",
	KindUniform:      "Uniform",
	KindMakeVec3:     "Vec3",
	KindMakeVec4:     "Vec4",
}

// Label returns the display label of the kind.
func (k Kind) Label() string {
	if l, ok := labels[k]; ok {
		return l
	}
	return string(k)
}

// Node is one expression tree node. Kind selects which fields are meaningful:
//   - float: Float
//   - uint: Uint
//   - vec3, vec4: Vec (vec3 uses the first three components)
//   - rand: RandType (float, uint or vec3)
//   - attr, parent_attr: Attr
//   - operators: Args, exactly Kind.Arity() children
//
// Children are owned by their parent; use Clone to copy a subtree.
type Node struct {
	Kind     Kind
	Float    float32
	Uint     uint32
	Vec      particle.Vec4
	RandType particle.ValueType
	Attr     particle.Attribute
	Args     []Node
}

// Placeholder returns an unset expression slot.
func Placeholder() Node { return Node{Kind: KindPlaceholder} }

// Float returns a float literal.
func Float(f float32) Node { return Node{Kind: KindFloat, Float: f} }

// Uint returns an unsigned integer literal.
func Uint(u uint32) Node { return Node{Kind: KindUint, Uint: u} }

// Vec3 returns a vec3 literal.
func Vec3(v particle.Vec3) Node {
	return Node{Kind: KindVec3, Vec: particle.Vec4{v[0], v[1], v[2], 0}}
}

// Vec4 returns a vec4 literal.
func Vec4(v particle.Vec4) Node { return Node{Kind: KindVec4, Vec: v} }

// Rand returns a uniform random value of type t.
func Rand(t particle.ValueType) Node { return Node{Kind: KindRand, RandType: t} }

// Time returns the simulation time.
func Time() Node { return Node{Kind: KindTime} }

// Age returns the particle's age.
func Age() Node { return Node{Kind: KindAge} }

// Attr reads one of the particle's own attributes.
func Attr(a particle.Attribute) Node { return Node{Kind: KindAttr, Attr: a} }

// ParentAttr reads an attribute of the parent effect's particle.
func ParentAttr(a particle.Attribute) Node { return Node{Kind: KindParentAttr, Attr: a} }

func op(k Kind, args ...Node) Node { return Node{Kind: k, Args: args} }

func Sin(x Node) Node          { return op(KindSin, x) }
func Cos(x Node) Node          { return op(KindCos, x) }
func Normalize(x Node) Node    { return op(KindNormalize, x) }
func Pack4x8Unorm(x Node) Node { return op(KindPack4x8Unorm, x) }
func Add(a, b Node) Node       { return op(KindAdd, a, b) }
func Sub(a, b Node) Node       { return op(KindSub, a, b) }
func Mul(a, b Node) Node       { return op(KindMul, a, b) }
func Distance(a, b Node) Node  { return op(KindDistance, a, b) }
func Uniform(lo, hi Node) Node { return op(KindUniform, lo, hi) }

// MakeVec3 assembles a vec3 from three scalars.
func MakeVec3(x, y, z Node) Node { return op(KindMakeVec3, x, y, z) }

// MakeVec4 assembles a vec4 from three scalars and a w component.
func MakeVec4(x, y, z, w Node) Node { return op(KindMakeVec4, x, y, z, w) }

// Operator returns an operator of kind k with every child set to Placeholder,
// the way a freshly inserted operator looks in the editor.
func Operator(k Kind) Node {
	n := Node{Kind: k}
	if a := k.Arity(); a > 0 {
		n.Args = make([]Node, a)
		for i := range n.Args {
			n.Args[i] = Placeholder()
		}
	}
	return n
}

// RandomNormalizedVector is the prebuilt normalize((rand(vec3) * 2) - 1).
func RandomNormalizedVector() Node {
	return Normalize(Sub(Mul(Rand(particle.TypeVec3), Float(2)), Float(1)))
}

// Clone returns a deep copy of n.
func (n Node) Clone() Node {
	c := n
	if n.Args != nil {
		c.Args = make([]Node, len(n.Args))
		for i, arg := range n.Args {
			c.Args[i] = arg.Clone()
		}
	}
	return c
}

// IsPlaceholder reports whether n is an unset slot.
func (n Node) IsPlaceholder() bool {
	return n.Kind == KindPlaceholder
}

// HasPlaceholder reports whether any node in the tree is a placeholder.
func (n Node) HasPlaceholder() bool {
	if n.IsPlaceholder() {
		return true
	}
	for _, arg := range n.Args {
		if arg.HasPlaceholder() {
			return true
		}
	}
	return false
}

// Depth returns the height of the tree; a leaf has depth 1.
func (n Node) Depth() int {
	d := 0
	for _, arg := range n.Args {
		if ad := arg.Depth(); ad > d {
			d = ad
		}
	}
	return d + 1
}

// String renders the tree as shader-like source text.
func (n Node) String() string {
	m := particle.NewModule()
	return m.Format(Compile(n, m, nil))
}
