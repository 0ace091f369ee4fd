package modifier

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/decker502/omagari/internal/particle"
	"github.com/decker502/omagari/pkg/expr"
)

// Record is the file form of an init or update modifier. Kind selects which
// of the optional fields are meaningful. An expression field missing from a
// record decodes as a placeholder.
type Record struct {
	Kind               Kind                        `yaml:"kind" json:"kind"`
	Attr               particle.Attribute          `yaml:"attr,omitempty" json:"attr,omitempty"`
	Value              *expr.Record                `yaml:"value,omitempty" json:"value,omitempty"`
	Center             *expr.Record                `yaml:"center,omitempty" json:"center,omitempty"`
	Origin             *expr.Record                `yaml:"origin,omitempty" json:"origin,omitempty"`
	Axis               *expr.Record                `yaml:"axis,omitempty" json:"axis,omitempty"`
	Radius             *expr.Record                `yaml:"radius,omitempty" json:"radius,omitempty"`
	Speed              *expr.Record                `yaml:"speed,omitempty" json:"speed,omitempty"`
	Dimension          particle.ShapeDimension     `yaml:"dimension,omitempty" json:"dimension,omitempty"`
	Accel              *expr.Record                `yaml:"accel,omitempty" json:"accel,omitempty"`
	Drag               *expr.Record                `yaml:"drag,omitempty" json:"drag,omitempty"`
	Condition          particle.EventEmitCondition `yaml:"condition,omitempty" json:"condition,omitempty"`
	Count              *expr.Record                `yaml:"count,omitempty" json:"count,omitempty"`
	ChildIndex         *uint32                     `yaml:"child_index,omitempty" json:"child_index,omitempty"`
	InfluenceDist      *expr.Record                `yaml:"influence_dist,omitempty" json:"influence_dist,omitempty"`
	AttractionAccel    *expr.Record                `yaml:"attraction_accel,omitempty" json:"attraction_accel,omitempty"`
	MaxAttractionSpeed *expr.Record                `yaml:"max_attraction_speed,omitempty" json:"max_attraction_speed,omitempty"`
}

// KeyRecord is one gradient key in file form. Value holds three components
// for size gradients and four for color gradients.
type KeyRecord struct {
	Ratio float32   `yaml:"ratio" json:"ratio"`
	Value []float32 `yaml:"value,flow" json:"value"`
}

// RenderRecord is the file form of a render modifier.
type RenderRecord struct {
	Kind     Kind                     `yaml:"kind" json:"kind"`
	Gradient []KeyRecord              `yaml:"gradient" json:"gradient"`
	Blend    *particle.ColorBlendMode `yaml:"blend,omitempty" json:"blend,omitempty"`
	Mask     *particle.ColorBlendMask `yaml:"mask,omitempty" json:"mask,omitempty"`
}

func rec(n expr.Node) *expr.Record {
	r := expr.ToRecord(n)
	return &r
}

// ToRecord converts m to its file form. A nil or foreign entry yields an
// empty record; callers drop those with Normalize first.
func ToRecord(m Modifier) Record {
	m, ok := Normalize(m)
	if !ok {
		return Record{}
	}
	r := Record{Kind: m.Kind()}
	switch v := m.(type) {
	case SetAttribute:
		r.Attr, r.Value = v.Attr, rec(v.Value)
	case InheritAttribute:
		r.Attr = v.Attr
	case SetPositionCircle:
		r.Center, r.Axis, r.Radius, r.Dimension = rec(v.Center), rec(v.Axis), rec(v.Radius), dimensionOrDefault(v.Dimension)
	case SetPositionSphere:
		r.Center, r.Radius, r.Dimension = rec(v.Center), rec(v.Radius), dimensionOrDefault(v.Dimension)
	case SetVelocityCircle:
		r.Center, r.Axis, r.Speed = rec(v.Center), rec(v.Axis), rec(v.Speed)
	case SetVelocitySphere:
		r.Center, r.Speed = rec(v.Center), rec(v.Speed)
	case SetVelocityTangent:
		r.Origin, r.Axis, r.Speed = rec(v.Origin), rec(v.Axis), rec(v.Speed)
	case Accel:
		r.Accel = rec(v.Accel)
	case LinearDrag:
		r.Drag = rec(v.Drag)
	case EmitSpawnEvent:
		child := v.ChildIndex
		r.Condition, r.Count, r.ChildIndex = conditionOrDefault(v.Condition), rec(v.Count), &child
	case ConformToSphere:
		r.Origin, r.Radius = rec(v.Origin), rec(v.Radius)
		r.InfluenceDist = rec(v.InfluenceDist)
		r.AttractionAccel = rec(v.AttractionAccel)
		r.MaxAttractionSpeed = rec(v.MaxAttractionSpeed)
	}
	return r
}

// FromRecord converts a file record into a Modifier.
func FromRecord(r Record) (Modifier, error) {
	var err error
	node := func(name string, er *expr.Record) expr.Node {
		if er == nil || err != nil {
			return expr.Placeholder()
		}
		n, e := expr.FromRecord(*er)
		if e != nil {
			err = fmt.Errorf("%s: %w", name, e)
		}
		return n
	}

	var m Modifier
	switch r.Kind {
	case KindSetAttribute:
		if err := checkAttr(r.Attr); err != nil {
			return nil, err
		}
		m = SetAttribute{Attr: r.Attr, Value: node("value", r.Value)}
	case KindInheritAttribute:
		if err := checkAttr(r.Attr); err != nil {
			return nil, err
		}
		m = InheritAttribute{Attr: r.Attr}
	case KindSetPositionCircle:
		m = SetPositionCircle{
			Center:    node("center", r.Center),
			Axis:      node("axis", r.Axis),
			Radius:    node("radius", r.Radius),
			Dimension: dimensionOrDefault(r.Dimension),
		}
	case KindSetPositionSphere:
		m = SetPositionSphere{
			Center:    node("center", r.Center),
			Radius:    node("radius", r.Radius),
			Dimension: dimensionOrDefault(r.Dimension),
		}
	case KindSetVelocityCircle:
		m = SetVelocityCircle{
			Center: node("center", r.Center),
			Axis:   node("axis", r.Axis),
			Speed:  node("speed", r.Speed),
		}
	case KindSetVelocitySphere:
		m = SetVelocitySphere{
			Center: node("center", r.Center),
			Speed:  node("speed", r.Speed),
		}
	case KindSetVelocityTangent:
		m = SetVelocityTangent{
			Origin: node("origin", r.Origin),
			Axis:   node("axis", r.Axis),
			Speed:  node("speed", r.Speed),
		}
	case KindAccel:
		m = Accel{Accel: node("accel", r.Accel)}
	case KindLinearDrag:
		m = LinearDrag{Drag: node("drag", r.Drag)}
	case KindEmitSpawnEvent:
		ev := EmitSpawnEvent{Condition: conditionOrDefault(r.Condition), Count: node("count", r.Count)}
		if r.ChildIndex != nil {
			ev.ChildIndex = *r.ChildIndex
		}
		m = ev
	case KindConformToSphere:
		m = ConformToSphere{
			Origin:             node("origin", r.Origin),
			Radius:             node("radius", r.Radius),
			InfluenceDist:      node("influence_dist", r.InfluenceDist),
			AttractionAccel:    node("attraction_accel", r.AttractionAccel),
			MaxAttractionSpeed: node("max_attraction_speed", r.MaxAttractionSpeed),
		}
	default:
		if r.Kind.IsRender() {
			return nil, fmt.Errorf("%s is a render modifier", r.Kind)
		}
		return nil, fmt.Errorf("unknown modifier kind %q", r.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.Kind, err)
	}
	if err := checkEnums(r); err != nil {
		return nil, fmt.Errorf("%s: %w", r.Kind, err)
	}
	return m, nil
}

func checkAttr(a particle.Attribute) error {
	if !a.Valid() {
		return fmt.Errorf("unknown attribute %q", a)
	}
	return nil
}

// checkEnums rejects enum values outside their set. An absent value reads as
// the default.
func checkEnums(r Record) error {
	switch r.Kind {
	case KindSetPositionCircle, KindSetPositionSphere:
		switch dimensionOrDefault(r.Dimension) {
		case particle.DimensionSurface, particle.DimensionVolume:
		default:
			return fmt.Errorf("unknown shape dimension %q", r.Dimension)
		}
	case KindEmitSpawnEvent:
		switch conditionOrDefault(r.Condition) {
		case particle.EmitAlways, particle.EmitOnDie:
		default:
			return fmt.Errorf("unknown emit condition %q", r.Condition)
		}
	}
	return nil
}

// ToRenderRecord converts r to its file form. Nil or foreign entries yield an
// empty record.
func ToRenderRecord(r RenderModifier) RenderRecord {
	r, ok := NormalizeRender(r)
	if !ok {
		return RenderRecord{}
	}
	out := RenderRecord{Kind: r.Kind()}
	switch v := r.(type) {
	case SizeOverLifetime:
		out.Gradient = make([]KeyRecord, len(v.Gradient.Keys))
		for i, k := range v.Gradient.Keys {
			out.Gradient[i] = KeyRecord{Ratio: k.Ratio, Value: []float32{k.Value[0], k.Value[1], k.Value[2]}}
		}
	case ColorOverLifetime:
		out.Gradient = make([]KeyRecord, len(v.Gradient.Keys))
		for i, k := range v.Gradient.Keys {
			out.Gradient[i] = KeyRecord{Ratio: k.Ratio, Value: []float32{k.Value[0], k.Value[1], k.Value[2], k.Value[3]}}
		}
		out.Blend, out.Mask = v.Blend, v.Mask
	}
	return out
}

// FromRenderRecord converts a file record into a RenderModifier.
func FromRenderRecord(r RenderRecord) (RenderModifier, error) {
	switch r.Kind {
	case KindSizeOverLifetime:
		g := particle.NewGradient[particle.Vec3]()
		for i, k := range r.Gradient {
			if len(k.Value) != 3 {
				return nil, fmt.Errorf("%s: gradient[%d] has %d components, want 3", r.Kind, i, len(k.Value))
			}
			g.AddKey(k.Ratio, particle.Vec3{k.Value[0], k.Value[1], k.Value[2]})
		}
		return SizeOverLifetime{Gradient: g}, nil
	case KindColorOverLifetime:
		g := particle.NewGradient[particle.Vec4]()
		for i, k := range r.Gradient {
			if len(k.Value) != 4 {
				return nil, fmt.Errorf("%s: gradient[%d] has %d components, want 4", r.Kind, i, len(k.Value))
			}
			g.AddKey(k.Ratio, particle.Vec4{k.Value[0], k.Value[1], k.Value[2], k.Value[3]})
		}
		if r.Blend != nil {
			switch *r.Blend {
			case particle.BlendOverwrite, particle.BlendAdd, particle.BlendModulate:
			default:
				return nil, fmt.Errorf("%s: unknown blend mode %q", r.Kind, *r.Blend)
			}
		}
		if r.Mask != nil {
			switch *r.Mask {
			case particle.MaskRGB, particle.MaskA, particle.MaskRGBA:
			default:
				return nil, fmt.Errorf("%s: unknown blend mask %q", r.Kind, *r.Mask)
			}
		}
		return ColorOverLifetime{Gradient: g, Blend: r.Blend, Mask: r.Mask}, nil
	}
	return nil, fmt.Errorf("unknown render modifier kind %q", r.Kind)
}

// UnmarshalYAML rejects unknown modifier kinds.
func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if _, ok := kindLabels[Kind(s)]; !ok {
		return fmt.Errorf("line %d: unknown modifier kind %q", node.Line, s)
	}
	*k = Kind(s)
	return nil
}
