// Package particle provides the compiled, runtime-facing form of a particle
// effect: the per-particle attribute catalog, typed literal values, the shared
// expression module, the instruction set executed by the simulation, and the
// effect asset that bundles them.
//
// Everything in this package is produced by the effect compiler and consumed by
// a separate simulation/rendering runtime. Values here carry no reference back
// to the editable documents they were compiled from.
package particle

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Attribute identifies one per-particle field stored by the simulation.
// The string form is the stable tag written to project and export files.
type Attribute string

// AttributeInfo describes one entry of the attribute catalog.
type AttributeInfo struct {
	Attr  Attribute // Stable tag
	Label string    // Display label used by editing surfaces
	Type  ValueType // Storage type of the attribute
}

// The 39 per-particle attributes, in catalog order.
const (
	AttrID              Attribute = "id"
	AttrParticleCounter Attribute = "particle_counter"
	AttrPosition        Attribute = "position"
	AttrVelocity        Attribute = "velocity"
	AttrAge             Attribute = "age"
	AttrLifetime        Attribute = "lifetime"
	AttrColor           Attribute = "color"
	AttrHDRColor        Attribute = "hdr_color"
	AttrAlpha           Attribute = "alpha"
	AttrSize            Attribute = "size"
	AttrSize2           Attribute = "size2"
	AttrSize3           Attribute = "size3"
	AttrPrev            Attribute = "prev"
	AttrNext            Attribute = "next"
	AttrAxisX           Attribute = "axis_x"
	AttrAxisY           Attribute = "axis_y"
	AttrAxisZ           Attribute = "axis_z"
	AttrSpriteIndex     Attribute = "sprite_index"
	AttrF32_0           Attribute = "f32_0"
	AttrF32_1           Attribute = "f32_1"
	AttrF32_2           Attribute = "f32_2"
	AttrF32_3           Attribute = "f32_3"
	AttrF32x2_0         Attribute = "f32x2_0"
	AttrF32x2_1         Attribute = "f32x2_1"
	AttrF32x2_2         Attribute = "f32x2_2"
	AttrF32x2_3         Attribute = "f32x2_3"
	AttrF32x3_0         Attribute = "f32x3_0"
	AttrF32x3_1         Attribute = "f32x3_1"
	AttrF32x3_2         Attribute = "f32x3_2"
	AttrF32x3_3         Attribute = "f32x3_3"
	AttrF32x4_0         Attribute = "f32x4_0"
	AttrF32x4_1         Attribute = "f32x4_1"
	AttrF32x4_2         Attribute = "f32x4_2"
	AttrF32x4_3         Attribute = "f32x4_3"
	AttrU32_0           Attribute = "u32_0"
	AttrU32_1           Attribute = "u32_1"
	AttrU32_2           Attribute = "u32_2"
	AttrU32_3           Attribute = "u32_3"
	AttrRibbonID        Attribute = "ribbon_id"
)

// Attributes is the fixed attribute catalog. The order matches the order in
// which editing surfaces list the attributes and must not change.
var Attributes = [39]AttributeInfo{
	{AttrID, "ID", TypeUint},
	{AttrParticleCounter, "Particle Counter", TypeUint},
	{AttrPosition, "Position", TypeVec3},
	{AttrVelocity, "Velocity", TypeVec3},
	{AttrAge, "Age", TypeFloat},
	{AttrLifetime, "Lifetime", TypeFloat},
	{AttrColor, "Color", TypeUint},
	{AttrHDRColor, "HDR Color", TypeVec4},
	{AttrAlpha, "Alpha", TypeFloat},
	{AttrSize, "Size", TypeFloat},
	{AttrSize2, "Size2", TypeVec2},
	{AttrSize3, "Size3", TypeVec3},
	{AttrPrev, "Prev", TypeUint},
	{AttrNext, "Next", TypeUint},
	{AttrAxisX, "Axis X", TypeVec3},
	{AttrAxisY, "Axis Y", TypeVec3},
	{AttrAxisZ, "Axis Z", TypeVec3},
	{AttrSpriteIndex, "Sprite Index", TypeInt},
	{AttrF32_0, "F32_0", TypeFloat},
	{AttrF32_1, "F32_1", TypeFloat},
	{AttrF32_2, "F32_2", TypeFloat},
	{AttrF32_3, "F32_3", TypeFloat},
	{AttrF32x2_0, "F32X2_0", TypeVec2},
	{AttrF32x2_1, "F32X2_1", TypeVec2},
	{AttrF32x2_2, "F32X2_2", TypeVec2},
	{AttrF32x2_3, "F32X2_3", TypeVec2},
	{AttrF32x3_0, "F32X3_0", TypeVec3},
	{AttrF32x3_1, "F32X3_1", TypeVec3},
	{AttrF32x3_2, "F32X3_2", TypeVec3},
	{AttrF32x3_3, "F32X3_3", TypeVec3},
	{AttrF32x4_0, "F32X4_0", TypeVec4},
	{AttrF32x4_1, "F32X4_1", TypeVec4},
	{AttrF32x4_2, "F32X4_2", TypeVec4},
	{AttrF32x4_3, "F32X4_3", TypeVec4},
	{AttrU32_0, "U32_0", TypeUint},
	{AttrU32_1, "U32_1", TypeUint},
	{AttrU32_2, "U32_2", TypeUint},
	{AttrU32_3, "U32_3", TypeUint},
	{AttrRibbonID, "Ribbon ID", TypeUint},
}

// LookupAttribute returns the catalog entry for an attribute tag.
func LookupAttribute(a Attribute) (AttributeInfo, bool) {
	for _, info := range Attributes {
		if info.Attr == a {
			return info, true
		}
	}
	return AttributeInfo{}, false
}

// Valid reports whether the attribute is part of the catalog.
func (a Attribute) Valid() bool {
	_, ok := LookupAttribute(a)
	return ok
}

// Label returns the display label of the attribute, or "None" when the
// attribute is not part of the catalog.
func (a Attribute) Label() string {
	if info, ok := LookupAttribute(a); ok {
		return info.Label
	}
	return "None"
}

// UnmarshalYAML rejects tags that are not part of the catalog.
func (a *Attribute) UnmarshalYAML(node *yaml.Node) error {
	var tag string
	if err := node.Decode(&tag); err != nil {
		return err
	}
	if !Attribute(tag).Valid() {
		return fmt.Errorf("line %d: unknown attribute %q", node.Line, tag)
	}
	*a = Attribute(tag)
	return nil
}
