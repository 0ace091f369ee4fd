package modifier

import (
	"github.com/decker502/omagari/internal/particle"
	"github.com/decker502/omagari/pkg/expr"
)

// Default returns a freshly added modifier of kind k as the editor creates it.
// It returns false for render kinds and unknown kinds.
func Default(k Kind) (Modifier, bool) {
	switch k {
	case KindSetAttribute:
		return SetAttribute{Attr: particle.AttrID, Value: expr.Float(0)}, true
	case KindInheritAttribute:
		return InheritAttribute{Attr: particle.AttrID}, true
	case KindSetPositionCircle:
		return SetPositionCircle{
			Center:    expr.Vec3(particle.Vec3Zero),
			Axis:      expr.Vec3(particle.Vec3Y),
			Radius:    expr.Float(0.2),
			Dimension: particle.DimensionSurface,
		}, true
	case KindSetPositionSphere:
		return SetPositionSphere{
			Center:    expr.Vec3(particle.Vec3Zero),
			Radius:    expr.Float(0.2),
			Dimension: particle.DimensionSurface,
		}, true
	case KindSetVelocityCircle:
		return SetVelocityCircle{
			Center: expr.Vec3(particle.Vec3Zero),
			Axis:   expr.Vec3(particle.Vec3Y),
			Speed:  expr.Float(0.5),
		}, true
	case KindSetVelocitySphere:
		return SetVelocitySphere{
			Center: expr.Vec3(particle.Vec3Zero),
			Speed:  expr.Float(0.5),
		}, true
	case KindSetVelocityTangent:
		return SetVelocityTangent{
			Origin: expr.Vec3(particle.Vec3Zero),
			Axis:   expr.Vec3(particle.Vec3Y),
			Speed:  expr.Uniform(expr.Float(0.2), expr.Float(1.0)),
		}, true
	case KindAccel:
		return Accel{
			Accel: expr.Sub(
				expr.Mul(expr.Rand(particle.TypeVec3), expr.Vec3(particle.Splat3(2))),
				expr.Vec3(particle.Vec3One),
			),
		}, true
	case KindLinearDrag:
		return LinearDrag{Drag: expr.Placeholder()}, true
	case KindEmitSpawnEvent:
		return EmitSpawnEvent{
			Condition:  particle.EmitOnDie,
			Count:      expr.Uint(0),
			ChildIndex: 0,
		}, true
	case KindConformToSphere:
		return ConformToSphere{
			Origin:             expr.Vec3(particle.Vec3Zero),
			Radius:             expr.Float(1),
			InfluenceDist:      expr.Float(10),
			AttractionAccel:    expr.Float(2),
			MaxAttractionSpeed: expr.Float(2),
		}, true
	}
	return nil, false
}

// DefaultRender returns a freshly added render modifier of kind k.
func DefaultRender(k Kind) (RenderModifier, bool) {
	switch k {
	case KindSizeOverLifetime:
		g := particle.NewGradient[particle.Vec3]()
		g.AddKey(0.3, particle.Splat3(0.1))
		g.AddKey(1.0, particle.Splat3(1.0))
		return SizeOverLifetime{Gradient: g}, true
	case KindColorOverLifetime:
		g := particle.NewGradient[particle.Vec4]()
		g.AddKey(0.0, particle.Vec4{0, 4, 4, 0})
		g.AddKey(0.1, particle.Vec4{0, 4, 4, 1})
		g.AddKey(0.3, particle.Vec4{4, 4, 0, 1})
		g.AddKey(0.6, particle.Vec4{4, 0, 0, 0})
		g.AddKey(1.0, particle.Vec4{4, 0, 0, 0})
		blend := particle.DefaultColorBlendMode
		mask := particle.DefaultColorBlendMask
		return ColorOverLifetime{Gradient: g, Blend: &blend, Mask: &mask}, true
	}
	return nil, false
}

// Clone returns a deep copy of m. Pointer variants are copied into their value
// form; nil stays nil.
func Clone(m Modifier) Modifier {
	nm, ok := Normalize(m)
	if !ok {
		return m
	}
	switch v := nm.(type) {
	case SetAttribute:
		v.Value = v.Value.Clone()
		return v
	case SetPositionCircle:
		v.Center, v.Axis, v.Radius = v.Center.Clone(), v.Axis.Clone(), v.Radius.Clone()
		return v
	case SetPositionSphere:
		v.Center, v.Radius = v.Center.Clone(), v.Radius.Clone()
		return v
	case SetVelocityCircle:
		v.Center, v.Axis, v.Speed = v.Center.Clone(), v.Axis.Clone(), v.Speed.Clone()
		return v
	case SetVelocitySphere:
		v.Center, v.Speed = v.Center.Clone(), v.Speed.Clone()
		return v
	case SetVelocityTangent:
		v.Origin, v.Axis, v.Speed = v.Origin.Clone(), v.Axis.Clone(), v.Speed.Clone()
		return v
	case Accel:
		v.Accel = v.Accel.Clone()
		return v
	case LinearDrag:
		v.Drag = v.Drag.Clone()
		return v
	case EmitSpawnEvent:
		v.Count = v.Count.Clone()
		return v
	case ConformToSphere:
		v.Origin, v.Radius = v.Origin.Clone(), v.Radius.Clone()
		v.InfluenceDist = v.InfluenceDist.Clone()
		v.AttractionAccel = v.AttractionAccel.Clone()
		v.MaxAttractionSpeed = v.MaxAttractionSpeed.Clone()
		return v
	}
	return nm
}

// CloneRender returns a deep copy of r.
func CloneRender(r RenderModifier) RenderModifier {
	nr, ok := NormalizeRender(r)
	if !ok {
		return r
	}
	switch v := nr.(type) {
	case SizeOverLifetime:
		v.Gradient = cloneGradient(v.Gradient)
		return v
	case ColorOverLifetime:
		v.Gradient = cloneGradient(v.Gradient)
		if v.Blend != nil {
			b := *v.Blend
			v.Blend = &b
		}
		if v.Mask != nil {
			m := *v.Mask
			v.Mask = &m
		}
		return v
	}
	return nr
}

func cloneGradient[T any](g particle.Gradient[T]) particle.Gradient[T] {
	keys := make([]particle.GradientKey[T], len(g.Keys))
	copy(keys, g.Keys)
	return particle.Gradient[T]{Keys: keys}
}

// 未填写的形状维度按 surface 处理
func dimensionOrDefault(d particle.ShapeDimension) particle.ShapeDimension {
	if d == "" {
		return particle.DimensionSurface
	}
	return d
}

// 未填写的发射条件按 on_die 处理
func conditionOrDefault(c particle.EventEmitCondition) particle.EventEmitCondition {
	if c == "" {
		return particle.EmitOnDie
	}
	return c
}
