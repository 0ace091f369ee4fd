package particle

import (
	"math"
	"math/rand"
)

// AttributeSet holds one value per catalog attribute, indexed in catalog
// order. The zero set has every attribute at zero of its catalog type.
type AttributeSet [len(Attributes)]Value

var attributeIndex = func() map[Attribute]int {
	idx := make(map[Attribute]int, len(Attributes))
	for i, info := range Attributes {
		idx[info.Attr] = i
	}
	return idx
}()

// NewAttributeSet returns a set with every attribute zeroed at its catalog
// type.
func NewAttributeSet() AttributeSet {
	var s AttributeSet
	for i, info := range Attributes {
		s[i] = Value{Type: info.Type}
	}
	return s
}

// Get returns the value of a. Unknown attributes read as float zero.
func (s *AttributeSet) Get(a Attribute) Value {
	i, ok := attributeIndex[a]
	if !ok {
		return FloatValue(0)
	}
	return s[i]
}

// Set stores v into a, converting it to the attribute's catalog type.
func (s *AttributeSet) Set(a Attribute, v Value) {
	i, ok := attributeIndex[a]
	if !ok {
		return
	}
	s[i] = Convert(v, Attributes[i].Type)
}

// Float returns a float attribute.
func (s *AttributeSet) Float(a Attribute) float32 {
	return Convert(s.Get(a), TypeFloat).Float
}

// Vec3 returns a vector attribute.
func (s *AttributeSet) Vec3(a Attribute) Vec3 {
	return Convert(s.Get(a), TypeVec3).Vec3()
}

// SetFloat stores a float attribute.
func (s *AttributeSet) SetFloat(a Attribute, f float32) {
	s.Set(a, FloatValue(f))
}

// SetVec3 stores a vector attribute.
func (s *AttributeSet) SetVec3(a Attribute, v Vec3) {
	s.Set(a, Vec3Value(v))
}

// Env is what the runtime provides while evaluating a module for one
// particle.
type Env struct {
	Time     float32
	Rand     *rand.Rand
	Particle *AttributeSet
	// Parent is nil for particles that were not spawned by a parent event.
	Parent *AttributeSet
}

// Eval evaluates the entry h for env. Invalid handles evaluate to float zero.
func (m *Module) Eval(h ExprHandle, env *Env) Value {
	e, ok := m.Get(h)
	if !ok {
		return FloatValue(0)
	}

	switch e.Kind {
	case ExprLiteral:
		if e.Value == nil {
			return FloatValue(0)
		}
		return *e.Value
	case ExprBuiltin:
		if e.Builtin == BuiltinTime {
			return FloatValue(env.Time)
		}
		return randValue(env.Rand, e.RandType)
	case ExprAttribute:
		if env.Particle == nil {
			return FloatValue(0)
		}
		return env.Particle.Get(e.Attr)
	case ExprParentAttribute:
		if env.Parent == nil {
			return Convert(FloatValue(0), attributeType(e.Attr))
		}
		return env.Parent.Get(e.Attr)
	}

	args := make([]Value, len(e.Args))
	for i, a := range e.Args {
		args[i] = m.Eval(a, env)
	}
	return apply(e.Op, args, env.Rand)
}

func attributeType(a Attribute) ValueType {
	if info, ok := LookupAttribute(a); ok {
		return info.Type
	}
	return TypeFloat
}

func randValue(r *rand.Rand, t ValueType) Value {
	switch t {
	case TypeUint:
		return UintValue(r.Uint32())
	case TypeVec3:
		return Vec3Value(Vec3{r.Float32(), r.Float32(), r.Float32()})
	case TypeVec4:
		return Vec4Value(Vec4{r.Float32(), r.Float32(), r.Float32(), r.Float32()})
	}
	return FloatValue(r.Float32())
}

// width returns how many float components a value carries.
func width(t ValueType) int {
	switch t {
	case TypeVec2:
		return 2
	case TypeVec3:
		return 3
	case TypeVec4:
		return 4
	}
	return 1
}

// components returns the value as floats, scalars splatted to n components.
func components(v Value, n int) Vec4 {
	switch v.Type {
	case TypeVec2, TypeVec3, TypeVec4:
		return v.Vec
	case TypeUint, TypeInt:
		return Splat4(float32(v.Uint))
	}
	if n > 1 {
		return Splat4(v.Float)
	}
	return Vec4{v.Float}
}

// Convert reinterprets v as type t: scalars splat into vectors, vectors
// truncate or zero-extend, vectors collapse to their first component when a
// scalar is wanted.
func Convert(v Value, t ValueType) Value {
	if v.Type == t {
		return v
	}
	switch t {
	case TypeFloat:
		if v.Type == TypeUint || v.Type == TypeInt {
			return FloatValue(float32(v.Uint))
		}
		return FloatValue(components(v, 1)[0])
	case TypeUint, TypeInt:
		var u uint32
		switch v.Type {
		case TypeFloat:
			u = uint32(max(v.Float, 0))
		case TypeUint, TypeInt:
			u = v.Uint
		default:
			u = uint32(max(v.Vec[0], 0))
		}
		return Value{Type: t, Uint: u}
	}

	out := Value{Type: t}
	if width(v.Type) == 1 {
		out.Vec = components(v, width(t))
	} else {
		out.Vec = v.Vec
	}
	for i := width(t); i < 4; i++ {
		out.Vec[i] = 0
	}
	return out
}

// widest picks the result type of a component-wise operation.
func widest(a, b ValueType) ValueType {
	if width(a) >= width(b) {
		if width(a) == 1 && (a == TypeUint) != (b == TypeUint) {
			return TypeFloat
		}
		return a
	}
	return b
}

func componentwise(a, b Value, f func(x, y float32) float32, fu func(x, y uint32) uint32) Value {
	t := widest(a.Type, b.Type)
	if t == TypeUint && a.Type == TypeUint && b.Type == TypeUint && fu != nil {
		return UintValue(fu(a.Uint, b.Uint))
	}
	if t == TypeUint || t == TypeInt {
		t = TypeFloat
	}
	n := width(t)
	x, y := components(a, n), components(b, n)
	out := Value{Type: t}
	if n == 1 {
		out.Float = f(x[0], y[0])
		return out
	}
	for i := 0; i < n; i++ {
		out.Vec[i] = f(x[i], y[i])
	}
	return out
}

func unary(v Value, f func(float32) float32) Value {
	if v.Type == TypeUint || v.Type == TypeInt {
		v = Convert(v, TypeFloat)
	}
	n := width(v.Type)
	if n == 1 {
		return FloatValue(f(v.Float))
	}
	out := Value{Type: v.Type}
	for i := 0; i < n; i++ {
		out.Vec[i] = f(v.Vec[i])
	}
	return out
}

func apply(op Op, args []Value, r *rand.Rand) Value {
	if len(args) != op.Arity() {
		return FloatValue(0)
	}

	switch op {
	case OpSin:
		return unary(args[0], func(x float32) float32 { return float32(math.Sin(float64(x))) })
	case OpCos:
		return unary(args[0], func(x float32) float32 { return float32(math.Cos(float64(x))) })
	case OpNormalize:
		v := Convert(args[0], TypeVec3)
		if args[0].Type == TypeVec4 {
			v = args[0]
		}
		n := width(v.Type)
		var sum float64
		for i := 0; i < n; i++ {
			sum += float64(v.Vec[i]) * float64(v.Vec[i])
		}
		if sum == 0 {
			return v
		}
		inv := float32(1 / math.Sqrt(sum))
		for i := 0; i < n; i++ {
			v.Vec[i] *= inv
		}
		return v
	case OpPack4x8Unorm:
		return UintValue(Pack4x8Unorm(Convert(args[0], TypeVec4).Vec))
	case OpAdd:
		return componentwise(args[0], args[1], func(x, y float32) float32 { return x + y }, func(x, y uint32) uint32 { return x + y })
	case OpSub:
		return componentwise(args[0], args[1], func(x, y float32) float32 { return x - y }, func(x, y uint32) uint32 { return x - y })
	case OpMul:
		return componentwise(args[0], args[1], func(x, y float32) float32 { return x * y }, func(x, y uint32) uint32 { return x * y })
	case OpDistance:
		d := componentwise(args[0], args[1], func(x, y float32) float32 { return x - y }, nil)
		n := width(d.Type)
		if n == 1 {
			return FloatValue(float32(math.Abs(float64(d.Float))))
		}
		var sum float64
		for i := 0; i < n; i++ {
			sum += float64(d.Vec[i]) * float64(d.Vec[i])
		}
		return FloatValue(float32(math.Sqrt(sum)))
	case OpUniform:
		return componentwise(args[0], args[1], func(lo, hi float32) float32 {
			return lo + (hi-lo)*r.Float32()
		}, nil)
	case OpVec3:
		return Vec3Value(Vec3{
			Convert(args[0], TypeFloat).Float,
			Convert(args[1], TypeFloat).Float,
			Convert(args[2], TypeFloat).Float,
		})
	case OpVec4:
		return Vec4Value(Vec4{
			Convert(args[0], TypeFloat).Float,
			Convert(args[1], TypeFloat).Float,
			Convert(args[2], TypeFloat).Float,
			Convert(args[3], TypeFloat).Float,
		})
	}
	return FloatValue(0)
}

// Pack4x8Unorm packs four 0..1 components into a uint, x in the low byte.
func Pack4x8Unorm(v Vec4) uint32 {
	var out uint32
	for i := 0; i < 4; i++ {
		c := min(max(v[i], 0), 1)
		out |= uint32(math.Round(float64(c)*255)) << (8 * i)
	}
	return out
}

// Unpack4x8Unorm is the inverse of Pack4x8Unorm.
func Unpack4x8Unorm(u uint32) Vec4 {
	var v Vec4
	for i := 0; i < 4; i++ {
		v[i] = float32((u>>(8*i))&0xff) / 255
	}
	return v
}
