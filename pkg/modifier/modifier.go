// Package modifier defines the editable modifier descriptors an effect is
// authored from, their editor defaults, and their translation into runtime
// instructions.
package modifier

import (
	"github.com/decker502/omagari/internal/particle"
	"github.com/decker502/omagari/pkg/expr"
)

// Kind tags a modifier variant in project files.
type Kind string

const (
	KindSetAttribute       Kind = "set_attribute"
	KindInheritAttribute   Kind = "inherit_attribute"
	KindSetPositionCircle  Kind = "set_position_circle"
	KindSetPositionSphere  Kind = "set_position_sphere"
	KindSetVelocityCircle  Kind = "set_velocity_circle"
	KindSetVelocitySphere  Kind = "set_velocity_sphere"
	KindSetVelocityTangent Kind = "set_velocity_tangent"
	KindAccel              Kind = "accel"
	KindLinearDrag         Kind = "linear_drag"
	KindEmitSpawnEvent     Kind = "emit_spawn_event"
	KindConformToSphere    Kind = "conform_to_sphere"

	KindSizeOverLifetime  Kind = "size_over_lifetime"
	KindColorOverLifetime Kind = "color_over_lifetime"
)

// InitKinds are offered when adding to an effect's init list, in menu order.
var InitKinds = []Kind{
	KindSetAttribute,
	KindSetPositionCircle,
	KindSetPositionSphere,
	KindSetVelocityCircle,
	KindSetVelocitySphere,
	KindSetVelocityTangent,
	KindInheritAttribute,
}

// UpdateKinds are offered when adding to an effect's update list.
var UpdateKinds = []Kind{
	KindAccel,
	KindLinearDrag,
	KindEmitSpawnEvent,
	KindConformToSphere,
}

// RenderKinds are offered when adding to an effect's render list.
var RenderKinds = []Kind{
	KindSizeOverLifetime,
	KindColorOverLifetime,
}

var kindLabels = map[Kind]string{
	KindSetAttribute:       "SetAttributeModifier",
	KindInheritAttribute:   "InheritAttributeModifier",
	KindSetPositionCircle:  "SetPositionCircleModifier",
	KindSetPositionSphere:  "SetPositionSphereModifier",
	KindSetVelocityCircle:  "SetVelocityCircleModifier",
	KindSetVelocitySphere:  "SetVelocitySphereModifier",
	KindSetVelocityTangent: "SetVelocityTangentModifier",
	KindAccel:              "AccelModifier",
	KindLinearDrag:         "LinearDragModifier",
	KindEmitSpawnEvent:     "EmitSpawnEvent",
	KindConformToSphere:    "ConformToSphereModifier",
	KindSizeOverLifetime:   "SizeOverLifetime",
	KindColorOverLifetime:  "ColorOverLifetime",
}

// Label returns the display label of a modifier kind, or the raw tag for an
// unknown kind.
func Label(k Kind) string {
	if l, ok := kindLabels[k]; ok {
		return l
	}
	return string(k)
}

// IsRender reports whether k is a render modifier kind.
func (k Kind) IsRender() bool {
	return k == KindSizeOverLifetime || k == KindColorOverLifetime
}

// Modifier is one init or update modifier descriptor. The set of variants is
// closed.
type Modifier interface {
	Kind() Kind
	modifier()
}

// RenderModifier is one render modifier descriptor.
type RenderModifier interface {
	Kind() Kind
	renderModifier()
}

// SetAttribute initializes Attr from Value.
type SetAttribute struct {
	Attr  particle.Attribute
	Value expr.Node
}

// InheritAttribute copies Attr from the parent particle.
type InheritAttribute struct {
	Attr particle.Attribute
}

// SetPositionCircle spawns particles on a circle around Axis.
type SetPositionCircle struct {
	Center    expr.Node
	Axis      expr.Node
	Radius    expr.Node
	Dimension particle.ShapeDimension
}

// SetPositionSphere spawns particles on a sphere.
type SetPositionSphere struct {
	Center    expr.Node
	Radius    expr.Node
	Dimension particle.ShapeDimension
}

// SetVelocityCircle pushes particles away from Center in the circle plane.
type SetVelocityCircle struct {
	Center expr.Node
	Axis   expr.Node
	Speed  expr.Node
}

// SetVelocitySphere pushes particles radially away from Center.
type SetVelocitySphere struct {
	Center expr.Node
	Speed  expr.Node
}

// SetVelocityTangent spins particles around Axis.
type SetVelocityTangent struct {
	Origin expr.Node
	Axis   expr.Node
	Speed  expr.Node
}

// Accel applies a constant acceleration.
type Accel struct {
	Accel expr.Node
}

// LinearDrag damps velocity.
type LinearDrag struct {
	Drag expr.Node
}

// EmitSpawnEvent spawns particles in the child effect at ChildIndex.
type EmitSpawnEvent struct {
	Condition  particle.EventEmitCondition
	Count      expr.Node
	ChildIndex uint32
}

// ConformToSphere pulls particles onto a sphere shell.
type ConformToSphere struct {
	Origin             expr.Node
	Radius             expr.Node
	InfluenceDist      expr.Node
	AttractionAccel    expr.Node
	MaxAttractionSpeed expr.Node
}

// SizeOverLifetime animates size. Keys are kept as authored.
type SizeOverLifetime struct {
	Gradient particle.Gradient[particle.Vec3]
}

// ColorOverLifetime animates color. A nil Blend or Mask compiles to the
// runtime default.
type ColorOverLifetime struct {
	Gradient particle.Gradient[particle.Vec4]
	Blend    *particle.ColorBlendMode
	Mask     *particle.ColorBlendMask
}

func (SetAttribute) Kind() Kind       { return KindSetAttribute }
func (InheritAttribute) Kind() Kind   { return KindInheritAttribute }
func (SetPositionCircle) Kind() Kind  { return KindSetPositionCircle }
func (SetPositionSphere) Kind() Kind  { return KindSetPositionSphere }
func (SetVelocityCircle) Kind() Kind  { return KindSetVelocityCircle }
func (SetVelocitySphere) Kind() Kind  { return KindSetVelocitySphere }
func (SetVelocityTangent) Kind() Kind { return KindSetVelocityTangent }
func (Accel) Kind() Kind              { return KindAccel }
func (LinearDrag) Kind() Kind         { return KindLinearDrag }
func (EmitSpawnEvent) Kind() Kind     { return KindEmitSpawnEvent }
func (ConformToSphere) Kind() Kind    { return KindConformToSphere }
func (SizeOverLifetime) Kind() Kind   { return KindSizeOverLifetime }
func (ColorOverLifetime) Kind() Kind  { return KindColorOverLifetime }

func (SetAttribute) modifier()       {}
func (InheritAttribute) modifier()   {}
func (SetPositionCircle) modifier()  {}
func (SetPositionSphere) modifier()  {}
func (SetVelocityCircle) modifier()  {}
func (SetVelocitySphere) modifier()  {}
func (SetVelocityTangent) modifier() {}
func (Accel) modifier()              {}
func (LinearDrag) modifier()         {}
func (EmitSpawnEvent) modifier()     {}
func (ConformToSphere) modifier()    {}

func (SizeOverLifetime) renderModifier()  {}
func (ColorOverLifetime) renderModifier() {}

// Normalize returns the value form of m. Pointers to a variant are
// dereferenced; nil entries and types outside the variant set report false.
func Normalize(m Modifier) (Modifier, bool) {
	switch v := m.(type) {
	case SetAttribute, InheritAttribute, SetPositionCircle, SetPositionSphere,
		SetVelocityCircle, SetVelocitySphere, SetVelocityTangent,
		Accel, LinearDrag, EmitSpawnEvent, ConformToSphere:
		return v, true
	case *SetAttribute:
		return deref(v)
	case *InheritAttribute:
		return deref(v)
	case *SetPositionCircle:
		return deref(v)
	case *SetPositionSphere:
		return deref(v)
	case *SetVelocityCircle:
		return deref(v)
	case *SetVelocitySphere:
		return deref(v)
	case *SetVelocityTangent:
		return deref(v)
	case *Accel:
		return deref(v)
	case *LinearDrag:
		return deref(v)
	case *EmitSpawnEvent:
		return deref(v)
	case *ConformToSphere:
		return deref(v)
	}
	return nil, false
}

// NormalizeRender is Normalize for render modifiers.
func NormalizeRender(r RenderModifier) (RenderModifier, bool) {
	switch v := r.(type) {
	case SizeOverLifetime, ColorOverLifetime:
		return v, true
	case *SizeOverLifetime:
		if v == nil {
			return nil, false
		}
		return *v, true
	case *ColorOverLifetime:
		if v == nil {
			return nil, false
		}
		return *v, true
	}
	return nil, false
}

func deref[T Modifier](p *T) (Modifier, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}
