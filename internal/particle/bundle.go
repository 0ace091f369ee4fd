package particle

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Bundle is the runtime form of an exported project: every effect already
// compiled, in document order, with its parent linked by name.
type Bundle struct {
	Effects []BundleEffect
}

// BundleEffect is one exported effect.
type BundleEffect struct {
	Name         string
	Parent       *string
	TextureIndex *int
	Asset        *EffectAsset
}

type bundleFile struct {
	Effects []bundleEffectRecord `yaml:"effects"`
}

type bundleEffectRecord struct {
	Name         string      `yaml:"name"`
	Parent       *string     `yaml:"parent"`
	TextureIndex *int        `yaml:"texture_index"`
	EffectAsset  assetRecord `yaml:"effect_asset"`
}

type assetRecord struct {
	Name            string              `yaml:"name"`
	Capacity        uint32              `yaml:"capacity"`
	SpawnerSettings SpawnerSettings     `yaml:"spawner_settings"`
	AlphaMode       AlphaMode           `yaml:"alpha_mode"`
	Module          *Module             `yaml:"module"`
	InitModifiers   []instructionRecord `yaml:"init_modifiers"`
	UpdateModifiers []instructionRecord `yaml:"update_modifiers"`
	RenderModifiers []instructionRecord `yaml:"render_modifiers"`
}

// instructionRecord is the flat file form of an Instruction. Kind selects
// which of the remaining fields are meaningful.
type instructionRecord struct {
	Kind               InstructionKind    `yaml:"kind"`
	Attribute          Attribute          `yaml:"attribute,omitempty"`
	Value              ExprHandle         `yaml:"value,omitempty"`
	Center             ExprHandle         `yaml:"center,omitempty"`
	Origin             ExprHandle         `yaml:"origin,omitempty"`
	Axis               ExprHandle         `yaml:"axis,omitempty"`
	Radius             ExprHandle         `yaml:"radius,omitempty"`
	Speed              ExprHandle         `yaml:"speed,omitempty"`
	Dimension          ShapeDimension     `yaml:"dimension,omitempty"`
	Accel              ExprHandle         `yaml:"accel,omitempty"`
	Drag               ExprHandle         `yaml:"drag,omitempty"`
	Condition          EventEmitCondition `yaml:"condition,omitempty"`
	Count              ExprHandle         `yaml:"count,omitempty"`
	ChildIndex         *uint32            `yaml:"child_index,omitempty"`
	InfluenceDist      ExprHandle         `yaml:"influence_dist,omitempty"`
	AttractionAccel    ExprHandle         `yaml:"attraction_accel,omitempty"`
	MaxAttractionSpeed ExprHandle         `yaml:"max_attraction_speed,omitempty"`
	ShellHalfThickness ExprHandle         `yaml:"shell_half_thickness,omitempty"`
	StickyFactor       ExprHandle         `yaml:"sticky_factor,omitempty"`
	SizeGradient       *Gradient[Vec3]    `yaml:"size_gradient,omitempty"`
	ScreenSpaceSize    bool               `yaml:"screen_space_size,omitempty"`
	ColorGradient      *Gradient[Vec4]    `yaml:"color_gradient,omitempty"`
	Blend              ColorBlendMode     `yaml:"blend,omitempty"`
	Mask               ColorBlendMask     `yaml:"mask,omitempty"`
	TextureSlot        ExprHandle         `yaml:"texture_slot,omitempty"`
	TextureIndex       *int               `yaml:"texture_index,omitempty"`
	SampleMapping      ImageSampleMapping `yaml:"sample_mapping,omitempty"`
	Mode               OrientMode         `yaml:"mode,omitempty"`
}

// MarshalBundle encodes a bundle as YAML with 2-space indentation.
func MarshalBundle(b *Bundle) ([]byte, error) {
	file := bundleFile{Effects: make([]bundleEffectRecord, 0, len(b.Effects))}
	for _, e := range b.Effects {
		if e.Asset == nil {
			return nil, fmt.Errorf("effect %q has no compiled asset", e.Name)
		}
		rec, err := encodeAsset(e.Asset)
		if err != nil {
			return nil, fmt.Errorf("effect %q: %w", e.Name, err)
		}
		file.Effects = append(file.Effects, bundleEffectRecord{
			Name:         e.Name,
			Parent:       e.Parent,
			TextureIndex: e.TextureIndex,
			EffectAsset:  rec,
		})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&file); err != nil {
		return nil, fmt.Errorf("failed to encode bundle: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode bundle: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeBundle decodes an exported bundle and validates every module and
// instruction operand.
func DecodeBundle(data []byte) (*Bundle, error) {
	var file bundleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	b := &Bundle{Effects: make([]BundleEffect, 0, len(file.Effects))}
	for i, rec := range file.Effects {
		asset, err := decodeAsset(rec.EffectAsset)
		if err != nil {
			return nil, fmt.Errorf("effect %d (%q): %w", i, rec.Name, err)
		}
		b.Effects = append(b.Effects, BundleEffect{
			Name:         rec.Name,
			Parent:       rec.Parent,
			TextureIndex: rec.TextureIndex,
			Asset:        asset,
		})
	}
	return b, nil
}

// ParseBundle reads an exported bundle from disk.
//
// Example usage:
//
//	bundle, err := ParseBundle("data/examples/fire.baked.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Loaded %d effects\n", len(bundle.Effects))
func ParseBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle %s: %w", path, err)
	}
	b, err := DecodeBundle(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bundle %s: %w", path, err)
	}
	return b, nil
}

func encodeAsset(a *EffectAsset) (assetRecord, error) {
	rec := assetRecord{
		Name:            a.Name,
		Capacity:        a.Capacity,
		SpawnerSettings: a.Spawner,
		AlphaMode:       a.AlphaMode,
		Module:          a.Module,
	}
	if rec.Module == nil {
		rec.Module = NewModule()
	}
	var err error
	if rec.InitModifiers, err = encodeInstructions(a.Init); err != nil {
		return rec, fmt.Errorf("init: %w", err)
	}
	if rec.UpdateModifiers, err = encodeInstructions(a.Update); err != nil {
		return rec, fmt.Errorf("update: %w", err)
	}
	if rec.RenderModifiers, err = encodeInstructions(a.Render); err != nil {
		return rec, fmt.Errorf("render: %w", err)
	}
	return rec, nil
}

func decodeAsset(rec assetRecord) (*EffectAsset, error) {
	module := rec.Module
	if module == nil {
		module = NewModule()
	}
	if err := module.Validate(); err != nil {
		return nil, fmt.Errorf("module: %w", err)
	}

	a := &EffectAsset{
		Name:      rec.Name,
		Capacity:  rec.Capacity,
		Spawner:   rec.SpawnerSettings,
		Module:    module,
		AlphaMode: rec.AlphaMode,
	}
	var err error
	if a.Init, err = decodeInstructions(rec.InitModifiers, module); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	if a.Update, err = decodeInstructions(rec.UpdateModifiers, module); err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	if a.Render, err = decodeInstructions(rec.RenderModifiers, module); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return a, nil
}

func encodeInstructions(list []Instruction) ([]instructionRecord, error) {
	out := make([]instructionRecord, 0, len(list))
	for i, inst := range list {
		rec, err := encodeInstruction(inst)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func decodeInstructions(recs []instructionRecord, m *Module) ([]Instruction, error) {
	out := make([]Instruction, 0, len(recs))
	for i, rec := range recs {
		inst, err := decodeInstruction(rec)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		if err := checkOperands(rec, m); err != nil {
			return nil, fmt.Errorf("[%d] %s: %w", i, rec.Kind, err)
		}
		out = append(out, inst)
	}
	return out, nil
}

func encodeInstruction(inst Instruction) (instructionRecord, error) {
	rec := instructionRecord{Kind: inst.Kind()}
	switch in := inst.(type) {
	case SetAttribute:
		rec.Attribute, rec.Value = in.Attribute, in.Value
	case InheritAttribute:
		rec.Attribute = in.Attribute
	case SetPositionCircle:
		rec.Center, rec.Axis, rec.Radius, rec.Dimension = in.Center, in.Axis, in.Radius, in.Dimension
	case SetPositionSphere:
		rec.Center, rec.Radius, rec.Dimension = in.Center, in.Radius, in.Dimension
	case SetVelocityCircle:
		rec.Center, rec.Axis, rec.Speed = in.Center, in.Axis, in.Speed
	case SetVelocitySphere:
		rec.Center, rec.Speed = in.Center, in.Speed
	case SetVelocityTangent:
		rec.Origin, rec.Axis, rec.Speed = in.Origin, in.Axis, in.Speed
	case Accel:
		rec.Accel = in.Accel
	case LinearDrag:
		rec.Drag = in.Drag
	case EmitSpawnEvent:
		child := in.ChildIndex
		rec.Condition, rec.Count, rec.ChildIndex = in.Condition, in.Count, &child
	case ConformToSphere:
		rec.Origin, rec.Radius = in.Origin, in.Radius
		rec.InfluenceDist = in.InfluenceDist
		rec.AttractionAccel = in.AttractionAccel
		rec.MaxAttractionSpeed = in.MaxAttractionSpeed
		if in.ShellHalfThickness != nil {
			rec.ShellHalfThickness = *in.ShellHalfThickness
		}
		if in.StickyFactor != nil {
			rec.StickyFactor = *in.StickyFactor
		}
	case SizeOverLifetime:
		g := in.Gradient
		rec.SizeGradient, rec.ScreenSpaceSize = &g, in.ScreenSpaceSize
	case ColorOverLifetime:
		g := in.Gradient
		rec.ColorGradient, rec.Blend, rec.Mask = &g, in.Blend, in.Mask
	case ParticleTexture:
		rec.TextureSlot, rec.TextureIndex, rec.SampleMapping = in.TextureSlot, in.TextureIndex, in.SampleMapping
	case Orient:
		rec.Mode = in.Mode
	default:
		return rec, fmt.Errorf("unknown instruction %T", inst)
	}
	return rec, nil
}

func decodeInstruction(rec instructionRecord) (Instruction, error) {
	switch rec.Kind {
	case KindSetAttribute:
		return SetAttribute{Attribute: rec.Attribute, Value: rec.Value}, nil
	case KindInheritAttribute:
		return InheritAttribute{Attribute: rec.Attribute}, nil
	case KindSetPositionCircle:
		return SetPositionCircle{Center: rec.Center, Axis: rec.Axis, Radius: rec.Radius, Dimension: rec.Dimension}, nil
	case KindSetPositionSphere:
		return SetPositionSphere{Center: rec.Center, Radius: rec.Radius, Dimension: rec.Dimension}, nil
	case KindSetVelocityCircle:
		return SetVelocityCircle{Center: rec.Center, Axis: rec.Axis, Speed: rec.Speed}, nil
	case KindSetVelocitySphere:
		return SetVelocitySphere{Center: rec.Center, Speed: rec.Speed}, nil
	case KindSetVelocityTangent:
		return SetVelocityTangent{Origin: rec.Origin, Axis: rec.Axis, Speed: rec.Speed}, nil
	case KindAccel:
		return Accel{Accel: rec.Accel}, nil
	case KindLinearDrag:
		return LinearDrag{Drag: rec.Drag}, nil
	case KindEmitSpawnEvent:
		inst := EmitSpawnEvent{Condition: rec.Condition, Count: rec.Count}
		if rec.ChildIndex != nil {
			inst.ChildIndex = *rec.ChildIndex
		}
		return inst, nil
	case KindConformToSphere:
		inst := ConformToSphere{
			Origin:             rec.Origin,
			Radius:             rec.Radius,
			InfluenceDist:      rec.InfluenceDist,
			AttractionAccel:    rec.AttractionAccel,
			MaxAttractionSpeed: rec.MaxAttractionSpeed,
		}
		if rec.ShellHalfThickness.Valid() {
			h := rec.ShellHalfThickness
			inst.ShellHalfThickness = &h
		}
		if rec.StickyFactor.Valid() {
			h := rec.StickyFactor
			inst.StickyFactor = &h
		}
		return inst, nil
	case KindSizeOverLifetime:
		inst := SizeOverLifetime{Gradient: NewGradient[Vec3](), ScreenSpaceSize: rec.ScreenSpaceSize}
		if rec.SizeGradient != nil {
			inst.Gradient = *rec.SizeGradient
		}
		return inst, nil
	case KindColorOverLifetime:
		inst := ColorOverLifetime{Gradient: NewGradient[Vec4](), Blend: rec.Blend, Mask: rec.Mask}
		if rec.ColorGradient != nil {
			inst.Gradient = *rec.ColorGradient
		}
		return inst, nil
	case KindParticleTexture:
		return ParticleTexture{TextureSlot: rec.TextureSlot, TextureIndex: rec.TextureIndex, SampleMapping: rec.SampleMapping}, nil
	case KindOrient:
		return Orient{Mode: rec.Mode}, nil
	}
	return nil, fmt.Errorf("unknown instruction kind %q", rec.Kind)
}

// checkOperands verifies that every handle the instruction kind requires is
// set and points into the module.
func checkOperands(rec instructionRecord, m *Module) error {
	var required []ExprHandle
	switch rec.Kind {
	case KindSetAttribute:
		required = []ExprHandle{rec.Value}
	case KindSetPositionCircle:
		required = []ExprHandle{rec.Center, rec.Axis, rec.Radius}
	case KindSetPositionSphere:
		required = []ExprHandle{rec.Center, rec.Radius}
	case KindSetVelocityCircle:
		required = []ExprHandle{rec.Center, rec.Axis, rec.Speed}
	case KindSetVelocitySphere:
		required = []ExprHandle{rec.Center, rec.Speed}
	case KindSetVelocityTangent:
		required = []ExprHandle{rec.Origin, rec.Axis, rec.Speed}
	case KindAccel:
		required = []ExprHandle{rec.Accel}
	case KindLinearDrag:
		required = []ExprHandle{rec.Drag}
	case KindEmitSpawnEvent:
		required = []ExprHandle{rec.Count}
	case KindConformToSphere:
		required = []ExprHandle{rec.Origin, rec.Radius, rec.InfluenceDist, rec.AttractionAccel, rec.MaxAttractionSpeed}
	case KindParticleTexture:
		required = []ExprHandle{rec.TextureSlot}
	}
	for _, h := range required {
		if !h.Valid() || int(h) > m.Len() {
			return fmt.Errorf("operand %d outside module of %d entries", h, m.Len())
		}
	}
	return nil
}
