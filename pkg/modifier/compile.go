package modifier

import (
	"fmt"

	"github.com/decker502/omagari/internal/particle"
	"github.com/decker502/omagari/pkg/diag"
	"github.com/decker502/omagari/pkg/expr"
)

// Compile translates m into one runtime instruction. Expression fields are
// compiled into module in field declaration order. sink may be nil.
//
// A nil entry or a type outside the variant set compiles to nothing: Compile
// reports an unknown_modifier hazard and returns nil.
func Compile(m Modifier, module *particle.Module, sink diag.Sink) particle.Instruction {
	field := func(name string, n expr.Node) particle.ExprHandle {
		return expr.Compile(n, module, diag.Prefixed(sink, "", name))
	}

	nm, ok := Normalize(m)
	if !ok {
		diag.Report(sink, diag.Hazard{
			Kind:   diag.KindUnknownModifier,
			Detail: fmt.Sprintf("skipped modifier of type %T", m),
		})
		return nil
	}

	switch v := nm.(type) {
	case SetAttribute:
		return particle.SetAttribute{Attribute: v.Attr, Value: field("value", v.Value)}
	case InheritAttribute:
		return particle.InheritAttribute{Attribute: v.Attr}
	case SetPositionCircle:
		center := field("center", v.Center)
		axis := field("axis", v.Axis)
		radius := field("radius", v.Radius)
		return particle.SetPositionCircle{Center: center, Axis: axis, Radius: radius, Dimension: dimensionOrDefault(v.Dimension)}
	case SetPositionSphere:
		center := field("center", v.Center)
		radius := field("radius", v.Radius)
		return particle.SetPositionSphere{Center: center, Radius: radius, Dimension: dimensionOrDefault(v.Dimension)}
	case SetVelocityCircle:
		center := field("center", v.Center)
		axis := field("axis", v.Axis)
		speed := field("speed", v.Speed)
		return particle.SetVelocityCircle{Center: center, Axis: axis, Speed: speed}
	case SetVelocitySphere:
		center := field("center", v.Center)
		speed := field("speed", v.Speed)
		return particle.SetVelocitySphere{Center: center, Speed: speed}
	case SetVelocityTangent:
		origin := field("origin", v.Origin)
		axis := field("axis", v.Axis)
		speed := field("speed", v.Speed)
		return particle.SetVelocityTangent{Origin: origin, Axis: axis, Speed: speed}
	case Accel:
		return particle.Accel{Accel: field("accel", v.Accel)}
	case LinearDrag:
		return particle.LinearDrag{Drag: field("drag", v.Drag)}
	case EmitSpawnEvent:
		return particle.EmitSpawnEvent{Condition: conditionOrDefault(v.Condition), Count: field("count", v.Count), ChildIndex: v.ChildIndex}
	case ConformToSphere:
		origin := field("origin", v.Origin)
		radius := field("radius", v.Radius)
		influence := field("influence_dist", v.InfluenceDist)
		accel := field("attraction_accel", v.AttractionAccel)
		maxSpeed := field("max_attraction_speed", v.MaxAttractionSpeed)
		return particle.ConformToSphere{
			Origin:             origin,
			Radius:             radius,
			InfluenceDist:      influence,
			AttractionAccel:    accel,
			MaxAttractionSpeed: maxSpeed,
		}
	}
	return nil
}

// CompileRender translates r into one runtime instruction. Gradient keys are
// copied in authored order; keys that go backwards in time are reported to
// sink and kept. Nil or foreign entries return nil like Compile.
func CompileRender(r RenderModifier, sink diag.Sink) particle.Instruction {
	nr, ok := NormalizeRender(r)
	if !ok {
		diag.Report(sink, diag.Hazard{
			Kind:   diag.KindUnknownModifier,
			Detail: fmt.Sprintf("skipped render modifier of type %T", r),
		})
		return nil
	}

	switch v := nr.(type) {
	case SizeOverLifetime:
		checkOrder(v.Gradient, sink)
		return particle.SizeOverLifetime{Gradient: cloneGradient(v.Gradient), ScreenSpaceSize: false}
	case ColorOverLifetime:
		checkOrder(v.Gradient, sink)
		blend := particle.DefaultColorBlendMode
		if v.Blend != nil {
			blend = *v.Blend
		}
		mask := particle.DefaultColorBlendMask
		if v.Mask != nil {
			mask = *v.Mask
		}
		return particle.ColorOverLifetime{Gradient: cloneGradient(v.Gradient), Blend: blend, Mask: mask}
	}
	return nil
}

func checkOrder[T any](g particle.Gradient[T], sink diag.Sink) {
	for i := 1; i < len(g.Keys); i++ {
		if g.Keys[i].Ratio < g.Keys[i-1].Ratio {
			diag.Report(sink, diag.Hazard{
				Kind:   diag.KindGradientOrder,
				Path:   fmt.Sprintf("gradient[%d]", i),
				Detail: fmt.Sprintf("key at %g follows key at %g", g.Keys[i].Ratio, g.Keys[i-1].Ratio),
			})
		}
	}
}
