package particle

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValueType is the storage type of an expression result or attribute.
type ValueType string

const (
	TypeFloat ValueType = "float"
	TypeUint  ValueType = "uint"
	TypeInt   ValueType = "int"
	TypeVec2  ValueType = "vec2"
	TypeVec3  ValueType = "vec3"
	TypeVec4  ValueType = "vec4"
)

// Vec3 is a three component float vector.
type Vec3 [3]float32

// Vec4 is a four component float vector.
type Vec4 [4]float32

// Splat3 returns a Vec3 with every component set to v.
func Splat3(v float32) Vec3 {
	return Vec3{v, v, v}
}

// Splat4 returns a Vec4 with every component set to v.
func Splat4(v float32) Vec4 {
	return Vec4{v, v, v, v}
}

// Common vector constants.
var (
	Vec3Zero = Vec3{0, 0, 0}
	Vec3One  = Vec3{1, 1, 1}
	Vec3X    = Vec3{1, 0, 0}
	Vec3Y    = Vec3{0, 1, 0}
	Vec3Z    = Vec3{0, 0, 1}
	Vec4Zero = Vec4{0, 0, 0, 0}
)

// Value is a typed literal. Only the field selected by Type is meaningful;
// vec3 literals use the first three components of Vec.
type Value struct {
	Type  ValueType
	Float float32
	Uint  uint32
	Vec   Vec4
}

// FloatValue returns a float literal.
func FloatValue(f float32) Value {
	return Value{Type: TypeFloat, Float: f}
}

// UintValue returns an unsigned integer literal.
func UintValue(u uint32) Value {
	return Value{Type: TypeUint, Uint: u}
}

// Vec3Value returns a vec3 literal.
func Vec3Value(v Vec3) Value {
	return Value{Type: TypeVec3, Vec: Vec4{v[0], v[1], v[2], 0}}
}

// Vec4Value returns a vec4 literal.
func Vec4Value(v Vec4) Value {
	return Value{Type: TypeVec4, Vec: v}
}

// Vec3 returns the first three components of a vector literal.
func (v Value) Vec3() Vec3 {
	return Vec3{v.Vec[0], v.Vec[1], v.Vec[2]}
}

func formatFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// String renders the literal the way shader code spells it.
func (v Value) String() string {
	switch v.Type {
	case TypeFloat:
		return formatFloat(v.Float)
	case TypeUint:
		return strconv.FormatUint(uint64(v.Uint), 10) + "u"
	case TypeVec3:
		return fmt.Sprintf("vec3<f32>(%s, %s, %s)",
			formatFloat(v.Vec[0]), formatFloat(v.Vec[1]), formatFloat(v.Vec[2]))
	case TypeVec4:
		return fmt.Sprintf("vec4<f32>(%s, %s, %s, %s)",
			formatFloat(v.Vec[0]), formatFloat(v.Vec[1]), formatFloat(v.Vec[2]), formatFloat(v.Vec[3]))
	}
	return "<invalid>"
}

// valueRecord is the file form of a Value: exactly one field is set.
type valueRecord struct {
	Float *float32 `yaml:"float,omitempty"`
	Uint  *uint32  `yaml:"uint,omitempty"`
	Vec3  *Vec3    `yaml:"vec3,flow,omitempty"`
	Vec4  *Vec4    `yaml:"vec4,flow,omitempty"`
}

// MarshalYAML writes the literal as a single-key mapping such as {float: 2}.
func (v Value) MarshalYAML() (interface{}, error) {
	var rec valueRecord
	switch v.Type {
	case TypeFloat:
		rec.Float = &v.Float
	case TypeUint:
		rec.Uint = &v.Uint
	case TypeVec3:
		v3 := v.Vec3()
		rec.Vec3 = &v3
	case TypeVec4:
		rec.Vec4 = &v.Vec
	default:
		return nil, fmt.Errorf("cannot encode literal of type %q", v.Type)
	}
	return rec, nil
}

// UnmarshalYAML reads the single-key mapping written by MarshalYAML.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var rec valueRecord
	if err := node.Decode(&rec); err != nil {
		return err
	}
	set := 0
	if rec.Float != nil {
		*v = FloatValue(*rec.Float)
		set++
	}
	if rec.Uint != nil {
		*v = UintValue(*rec.Uint)
		set++
	}
	if rec.Vec3 != nil {
		*v = Vec3Value(*rec.Vec3)
		set++
	}
	if rec.Vec4 != nil {
		*v = Vec4Value(*rec.Vec4)
		set++
	}
	if set != 1 {
		return fmt.Errorf("line %d: literal must set exactly one of float, uint, vec3, vec4", node.Line)
	}
	return nil
}
