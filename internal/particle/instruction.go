package particle

// Instruction is one compiled modifier executed by the simulation during the
// init, update or render phase of an effect. The set of instructions is closed;
// the unexported method keeps other packages from adding variants.
type Instruction interface {
	// Kind returns the stable tag of the instruction variant.
	Kind() InstructionKind
	instruction()
}

// InstructionKind tags an instruction variant in export files.
type InstructionKind string

const (
	KindSetAttribute       InstructionKind = "set_attribute"
	KindInheritAttribute   InstructionKind = "inherit_attribute"
	KindSetPositionCircle  InstructionKind = "set_position_circle"
	KindSetPositionSphere  InstructionKind = "set_position_sphere"
	KindSetVelocityCircle  InstructionKind = "set_velocity_circle"
	KindSetVelocitySphere  InstructionKind = "set_velocity_sphere"
	KindSetVelocityTangent InstructionKind = "set_velocity_tangent"
	KindAccel              InstructionKind = "accel"
	KindLinearDrag         InstructionKind = "linear_drag"
	KindEmitSpawnEvent     InstructionKind = "emit_spawn_event"
	KindConformToSphere    InstructionKind = "conform_to_sphere"
	KindSizeOverLifetime   InstructionKind = "size_over_lifetime"
	KindColorOverLifetime  InstructionKind = "color_over_lifetime"
	KindParticleTexture    InstructionKind = "particle_texture"
	KindOrient             InstructionKind = "orient"
)

// ShapeDimension selects whether a shape emits from its surface or its volume.
type ShapeDimension string

const (
	DimensionSurface ShapeDimension = "surface"
	DimensionVolume  ShapeDimension = "volume"
)

// EventEmitCondition selects when a spawn event fires for a child effect.
type EventEmitCondition string

const (
	EmitAlways EventEmitCondition = "always"
	EmitOnDie  EventEmitCondition = "on_die"
)

// ColorBlendMode selects how a color modifier combines with the current color.
type ColorBlendMode string

const (
	BlendOverwrite ColorBlendMode = "overwrite"
	BlendAdd       ColorBlendMode = "add"
	BlendModulate  ColorBlendMode = "modulate"
)

// DefaultColorBlendMode is used when an author leaves the blend mode unset.
const DefaultColorBlendMode = BlendModulate

// ColorBlendMask selects the color channels a color modifier writes.
type ColorBlendMask string

const (
	MaskRGB  ColorBlendMask = "rgb"
	MaskA    ColorBlendMask = "a"
	MaskRGBA ColorBlendMask = "rgba"
)

// DefaultColorBlendMask is used when an author leaves the mask unset.
const DefaultColorBlendMask = MaskRGBA

// ImageSampleMapping selects how a sampled texel modulates the particle.
type ImageSampleMapping string

const (
	SampleModulate             ImageSampleMapping = "modulate"
	SampleModulateRGB          ImageSampleMapping = "modulate_rgb"
	SampleModulateOpacityFromR ImageSampleMapping = "modulate_opacity_from_r"
)

// OrientMode selects how particle quads are oriented.
type OrientMode string

const (
	OrientParallelCameraDepthPlane OrientMode = "parallel_camera_depth_plane"
	OrientFaceCameraPosition       OrientMode = "face_camera_position"
	OrientAlongVelocity            OrientMode = "along_velocity"
)

// SetAttribute initializes an attribute from an expression.
type SetAttribute struct {
	Attribute Attribute
	Value     ExprHandle
}

// InheritAttribute copies an attribute from the parent particle.
type InheritAttribute struct {
	Attribute Attribute
}

// SetPositionCircle places particles on a circle or disc.
type SetPositionCircle struct {
	Center    ExprHandle
	Axis      ExprHandle
	Radius    ExprHandle
	Dimension ShapeDimension
}

// SetPositionSphere places particles on a sphere or ball.
type SetPositionSphere struct {
	Center    ExprHandle
	Radius    ExprHandle
	Dimension ShapeDimension
}

// SetVelocityCircle sets a radial velocity in the plane of a circle.
type SetVelocityCircle struct {
	Center ExprHandle
	Axis   ExprHandle
	Speed  ExprHandle
}

// SetVelocitySphere sets a radial velocity away from a center.
type SetVelocitySphere struct {
	Center ExprHandle
	Speed  ExprHandle
}

// SetVelocityTangent sets a velocity tangent to a rotation around an axis.
type SetVelocityTangent struct {
	Origin ExprHandle
	Axis   ExprHandle
	Speed  ExprHandle
}

// Accel applies a constant acceleration every update.
type Accel struct {
	Accel ExprHandle
}

// LinearDrag damps velocity proportionally every update.
type LinearDrag struct {
	Drag ExprHandle
}

// EmitSpawnEvent emits spawn events consumed by the child effect at
// ChildIndex.
type EmitSpawnEvent struct {
	Condition  EventEmitCondition
	Count      ExprHandle
	ChildIndex uint32
}

// ConformToSphere attracts particles onto a sphere shell.
type ConformToSphere struct {
	Origin             ExprHandle
	Radius             ExprHandle
	InfluenceDist      ExprHandle
	AttractionAccel    ExprHandle
	MaxAttractionSpeed ExprHandle
	ShellHalfThickness *ExprHandle
	StickyFactor       *ExprHandle
}

// SizeOverLifetime animates particle size along a gradient.
type SizeOverLifetime struct {
	Gradient        Gradient[Vec3]
	ScreenSpaceSize bool
}

// ColorOverLifetime animates particle color along a gradient.
type ColorOverLifetime struct {
	Gradient Gradient[Vec4]
	Blend    ColorBlendMode
	Mask     ColorBlendMask
}

// ParticleTexture samples the texture bound to TextureSlot. TextureIndex
// records which entry of the host's texture table the effect was authored
// against, or nil when the effect has no texture.
type ParticleTexture struct {
	TextureSlot   ExprHandle
	TextureIndex  *int
	SampleMapping ImageSampleMapping
}

// Orient orients particle quads.
type Orient struct {
	Mode OrientMode
}

func (SetAttribute) Kind() InstructionKind       { return KindSetAttribute }
func (InheritAttribute) Kind() InstructionKind   { return KindInheritAttribute }
func (SetPositionCircle) Kind() InstructionKind  { return KindSetPositionCircle }
func (SetPositionSphere) Kind() InstructionKind  { return KindSetPositionSphere }
func (SetVelocityCircle) Kind() InstructionKind  { return KindSetVelocityCircle }
func (SetVelocitySphere) Kind() InstructionKind  { return KindSetVelocitySphere }
func (SetVelocityTangent) Kind() InstructionKind { return KindSetVelocityTangent }
func (Accel) Kind() InstructionKind              { return KindAccel }
func (LinearDrag) Kind() InstructionKind         { return KindLinearDrag }
func (EmitSpawnEvent) Kind() InstructionKind     { return KindEmitSpawnEvent }
func (ConformToSphere) Kind() InstructionKind    { return KindConformToSphere }
func (SizeOverLifetime) Kind() InstructionKind   { return KindSizeOverLifetime }
func (ColorOverLifetime) Kind() InstructionKind  { return KindColorOverLifetime }
func (ParticleTexture) Kind() InstructionKind    { return KindParticleTexture }
func (Orient) Kind() InstructionKind             { return KindOrient }

func (SetAttribute) instruction()       {}
func (InheritAttribute) instruction()   {}
func (SetPositionCircle) instruction()  {}
func (SetPositionSphere) instruction()  {}
func (SetVelocityCircle) instruction()  {}
func (SetVelocitySphere) instruction()  {}
func (SetVelocityTangent) instruction() {}
func (Accel) instruction()              {}
func (LinearDrag) instruction()         {}
func (EmitSpawnEvent) instruction()     {}
func (ConformToSphere) instruction()    {}
func (SizeOverLifetime) instruction()   {}
func (ColorOverLifetime) instruction()  {}
func (ParticleTexture) instruction()    {}
func (Orient) instruction()             {}
