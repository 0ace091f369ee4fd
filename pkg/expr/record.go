package expr

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/decker502/omagari/internal/particle"
)

// Record is the file form of a Node. Kind selects which optional field is
// present.
type Record struct {
	Kind     Kind               `yaml:"kind" json:"kind"`
	Float    *float32           `yaml:"float,omitempty" json:"float,omitempty"`
	Uint     *uint32            `yaml:"uint,omitempty" json:"uint,omitempty"`
	Vec3     *particle.Vec3     `yaml:"vec3,flow,omitempty" json:"vec3,omitempty"`
	Vec4     *particle.Vec4     `yaml:"vec4,flow,omitempty" json:"vec4,omitempty"`
	RandType particle.ValueType `yaml:"rand_type,omitempty" json:"rand_type,omitempty"`
	Attr     particle.Attribute `yaml:"attr,omitempty" json:"attr,omitempty"`
	Args     []Record           `yaml:"args,omitempty" json:"args,omitempty"`
}

// ToRecord converts n to its file form.
func ToRecord(n Node) Record {
	r := Record{Kind: n.Kind}
	switch n.Kind {
	case KindFloat:
		f := n.Float
		r.Float = &f
	case KindUint:
		u := n.Uint
		r.Uint = &u
	case KindVec3:
		v := particle.Vec3{n.Vec[0], n.Vec[1], n.Vec[2]}
		r.Vec3 = &v
	case KindVec4:
		v := n.Vec
		r.Vec4 = &v
	case KindRand:
		r.RandType = n.RandType
	case KindAttr, KindParentAttr:
		r.Attr = n.Attr
	}
	if len(n.Args) > 0 {
		r.Args = make([]Record, len(n.Args))
		for i, arg := range n.Args {
			r.Args[i] = ToRecord(arg)
		}
	}
	return r
}

// FromRecord converts a file record back into a Node, checking that the
// fields required by its kind are present and that operators have the right
// number of children.
func FromRecord(r Record) (Node, error) {
	n := Node{Kind: r.Kind}
	switch r.Kind {
	case KindPlaceholder, KindTime, KindAge:
	case KindFloat:
		if r.Float == nil {
			return n, fmt.Errorf("float expression without float value")
		}
		n.Float = *r.Float
	case KindUint:
		if r.Uint == nil {
			return n, fmt.Errorf("uint expression without uint value")
		}
		n.Uint = *r.Uint
	case KindVec3:
		if r.Vec3 == nil {
			return n, fmt.Errorf("vec3 expression without vec3 value")
		}
		n.Vec = particle.Vec4{r.Vec3[0], r.Vec3[1], r.Vec3[2], 0}
	case KindVec4:
		if r.Vec4 == nil {
			return n, fmt.Errorf("vec4 expression without vec4 value")
		}
		n.Vec = *r.Vec4
	case KindRand:
		switch r.RandType {
		case particle.TypeFloat, particle.TypeUint, particle.TypeVec3:
		default:
			return n, fmt.Errorf("rand of unsupported type %q", r.RandType)
		}
		n.RandType = r.RandType
	case KindAttr, KindParentAttr:
		if !r.Attr.Valid() {
			return n, fmt.Errorf("%s of unknown attribute %q", r.Kind, r.Attr)
		}
		n.Attr = r.Attr
	default:
		if !r.Kind.IsOperator() {
			return n, fmt.Errorf("unknown expression kind %q", r.Kind)
		}
	}

	if want := r.Kind.Arity(); want != len(r.Args) {
		return n, fmt.Errorf("%s takes %d operands, got %d", r.Kind, want, len(r.Args))
	}
	if len(r.Args) > 0 {
		n.Args = make([]Node, len(r.Args))
		for i, ar := range r.Args {
			child, err := FromRecord(ar)
			if err != nil {
				return n, fmt.Errorf("%s operand %d: %w", r.Kind, i, err)
			}
			n.Args[i] = child
		}
	}
	return n, nil
}

// MarshalYAML writes the node as its Record.
func (n Node) MarshalYAML() (interface{}, error) {
	return ToRecord(n), nil
}

// UnmarshalYAML reads a Record and validates it.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	var r Record
	if err := value.Decode(&r); err != nil {
		return err
	}
	node, err := FromRecord(r)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*n = node
	return nil
}
