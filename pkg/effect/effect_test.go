package effect

import (
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/decker502/omagari/internal/particle"
	"github.com/decker502/omagari/pkg/diag"
	"github.com/decker502/omagari/pkg/expr"
	"github.com/decker502/omagari/pkg/modifier"
)

func fire() Descriptor {
	texture := 2
	return Descriptor{
		Name:         "Fire",
		Capacity:     1000,
		Spawner:      particle.Rate(DefaultRate),
		TextureIndex: &texture,
		Init: []modifier.Modifier{
			modifier.SetAttribute{Attr: particle.AttrLifetime, Value: expr.Float(2.0)},
		},
		Update: []modifier.Modifier{},
		Render: []modifier.RenderModifier{},
	}
}

// TestCompile_Fire tests the single-modifier Fire effect
func TestCompile_Fire(t *testing.T) {
	asset := Compile(fire(), nil)

	if asset.Name != "Fire" || asset.Capacity != 1000 {
		t.Errorf("Unexpected name/capacity %q/%d", asset.Name, asset.Capacity)
	}
	if asset.AlphaMode != particle.AlphaBlend {
		t.Errorf("Expected blend alpha mode, got %s", asset.AlphaMode)
	}

	if len(asset.Init) != 1 {
		t.Fatalf("Expected 1 init instruction, got %d", len(asset.Init))
	}
	set, ok := asset.Init[0].(particle.SetAttribute)
	if !ok {
		t.Fatalf("Expected SetAttribute, got %T", asset.Init[0])
	}
	if set.Attribute != particle.AttrLifetime {
		t.Errorf("Expected lifetime, got %s", set.Attribute)
	}
	e, _ := asset.Module.Get(set.Value)
	if e.Kind != particle.ExprLiteral || *e.Value != particle.FloatValue(2.0) {
		t.Errorf("Expected literal 2.0, got %+v", e)
	}

	if len(asset.Update) != 0 {
		t.Errorf("Expected no update instructions, got %d", len(asset.Update))
	}
	if len(asset.Render) != 2 {
		t.Fatalf("Expected 2 render instructions, got %d", len(asset.Render))
	}
	tex, ok := asset.Render[0].(particle.ParticleTexture)
	if !ok {
		t.Fatalf("Expected ParticleTexture, got %T", asset.Render[0])
	}
	if tex.TextureIndex == nil || *tex.TextureIndex != 2 {
		t.Errorf("Expected texture index 2, got %v", tex.TextureIndex)
	}
	if tex.SampleMapping != particle.SampleModulateOpacityFromR {
		t.Errorf("Unexpected sample mapping %s", tex.SampleMapping)
	}
	if o, ok := asset.Render[1].(particle.Orient); !ok || o.Mode != particle.OrientAlongVelocity {
		t.Errorf("Expected Orient along_velocity, got %+v", asset.Render[1])
	}
}

// TestCompile_RenderTail tests that the tail follows authored render modifiers
func TestCompile_RenderTail(t *testing.T) {
	d := New()
	d.TextureIndex = nil
	size, _ := modifier.DefaultRender(modifier.KindSizeOverLifetime)
	color, _ := modifier.DefaultRender(modifier.KindColorOverLifetime)
	d.Render = append(d.Render, size, color)

	asset := Compile(d, nil)
	wantKinds := []particle.InstructionKind{
		particle.KindSizeOverLifetime,
		particle.KindColorOverLifetime,
		particle.KindParticleTexture,
		particle.KindOrient,
	}
	if len(asset.Render) != len(wantKinds) {
		t.Fatalf("Expected %d render instructions, got %d", len(wantKinds), len(asset.Render))
	}
	for i, k := range wantKinds {
		if asset.Render[i].Kind() != k {
			t.Errorf("Render %d: expected %s, got %s", i, k, asset.Render[i].Kind())
		}
	}

	tex := asset.Render[2].(particle.ParticleTexture)
	if tex.TextureIndex != nil {
		t.Errorf("Expected no texture index, got %d", *tex.TextureIndex)
	}
	slot, _ := asset.Module.Get(tex.TextureSlot)
	if slot.Kind != particle.ExprLiteral || *slot.Value != particle.UintValue(0) {
		t.Errorf("Expected literal 0u texture slot, got %+v", slot)
	}
	if !reflect.DeepEqual(asset.Module.TextureSlots, []string{ColorSlot}) {
		t.Errorf("Expected texture slots [color], got %v", asset.Module.TextureSlots)
	}
}

// TestCompile_Order tests that init entries precede update entries in the module
func TestCompile_Order(t *testing.T) {
	d := New()
	d.Init = append(d.Init, modifier.SetAttribute{Attr: particle.AttrAge, Value: expr.Float(1)})
	d.Update = append(d.Update, modifier.Accel{Accel: expr.Vec3(particle.Vec3Y)})

	asset := Compile(d, nil)
	set := asset.Init[0].(particle.SetAttribute)
	acc := asset.Update[0].(particle.Accel)
	if set.Value != 1 || acc.Accel != 2 {
		t.Errorf("Expected handles 1 and 2, got %d and %d", set.Value, acc.Accel)
	}
	if asset.Module.Len() != 3 {
		t.Errorf("Expected 3 module entries, got %d", asset.Module.Len())
	}
}

// TestCompile_Deterministic tests that the same descriptor compiles identically
func TestCompile_Deterministic(t *testing.T) {
	d := New()
	for _, k := range modifier.InitKinds {
		m, _ := modifier.Default(k)
		d.Init = append(d.Init, m)
	}
	for _, k := range modifier.UpdateKinds {
		m, _ := modifier.Default(k)
		d.Update = append(d.Update, m)
	}
	for _, k := range modifier.RenderKinds {
		m, _ := modifier.DefaultRender(k)
		d.Render = append(d.Render, m)
	}

	a, b := Compile(d, nil), Compile(d, nil)
	if !reflect.DeepEqual(a, b) {
		t.Error("Expected identical assets")
	}
	if err := a.Module.Validate(); err != nil {
		t.Errorf("Invalid module: %v", err)
	}
}

// TestCompile_Hazards tests hazards reported for an effect
func TestCompile_Hazards(t *testing.T) {
	d := New()
	d.Name = "Smoke"
	d.Capacity = MaxCapacity + 1
	drag, _ := modifier.Default(modifier.KindLinearDrag)
	d.Update = append(d.Update, drag)

	var sink diag.Collector
	Compile(d, &sink)

	if sink.Count(diag.KindCapacityExceeded) != 1 {
		t.Errorf("Expected capacity hazard, got %+v", sink.Hazards)
	}
	if sink.Count(diag.KindPlaceholder) != 1 {
		t.Fatalf("Expected placeholder hazard, got %+v", sink.Hazards)
	}
	for _, h := range sink.Hazards {
		if h.Kind == diag.KindPlaceholder {
			if h.Effect != "Smoke" || h.Path != "update[0].drag" {
				t.Errorf("Unexpected hazard location %s / %s", h.Effect, h.Path)
			}
		}
	}
}

// TestNew tests editor defaults for a new effect
func TestNew(t *testing.T) {
	d := New()
	if d.Name != DefaultName {
		t.Errorf("Expected default name, got %q", d.Name)
	}
	if d.Capacity != 16384 {
		t.Errorf("Expected capacity 16384, got %d", d.Capacity)
	}
	if d.Spawner.Count != particle.Single(500) || d.Spawner.CycleCount != 0 {
		t.Errorf("Unexpected spawner %+v", d.Spawner)
	}
	if d.TextureIndex == nil || *d.TextureIndex != 0 {
		t.Errorf("Expected texture index 0, got %v", d.TextureIndex)
	}
	if d.Parent != nil {
		t.Error("Expected no parent")
	}
}

// TestRecordRoundTrip tests YAML round trip through the record form
func TestRecordRoundTrip(t *testing.T) {
	d := fire()
	d.SetParent("Smoke")
	accel, _ := modifier.Default(modifier.KindAccel)
	d.Update = append(d.Update, accel)
	color, _ := modifier.DefaultRender(modifier.KindColorOverLifetime)
	d.Render = append(d.Render, color)

	data, err := yaml.Marshal(ToRecord(d))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var r Record
	if err := yaml.Unmarshal(data, &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	got, err := FromRecord(r)
	if err != nil {
		t.Fatalf("FromRecord failed: %v", err)
	}
	if !reflect.DeepEqual(got, d) {
		t.Errorf("Round trip mismatch\nwant: %+v\ngot:  %+v", d, got)
	}
}

// TestClone tests that a clone can be edited independently
func TestClone(t *testing.T) {
	d := fire()
	d.SetParent("Smoke")
	c := d.Clone()
	c.SetParent("Other")
	*c.TextureIndex = 5
	c.Init[0] = modifier.InheritAttribute{Attr: particle.AttrColor}

	if d.ParentName() != "Smoke" || *d.TextureIndex != 2 {
		t.Error("Clone shares parent or texture index with the original")
	}
	if d.Init[0].Kind() != modifier.KindSetAttribute {
		t.Error("Clone shares the init list with the original")
	}
}

// TestCompile_MisplacedModifiers tests that modifiers in the wrong list emit no
// instruction but still write their expressions
func TestCompile_MisplacedModifiers(t *testing.T) {
	d := New()
	d.Name = "Mixed"
	accel, _ := modifier.Default(modifier.KindAccel)
	d.Init = []modifier.Modifier{accel}
	d.Update = []modifier.Modifier{modifier.SetAttribute{Attr: particle.AttrLifetime, Value: expr.Float(2)}}

	var sink diag.Collector
	asset := Compile(d, &sink)

	if len(asset.Init) != 0 {
		t.Errorf("Expected empty init list, got %+v", asset.Init)
	}
	if len(asset.Update) != 0 {
		t.Errorf("Expected empty update list, got %+v", asset.Update)
	}
	if len(asset.Render) != 2 {
		t.Errorf("Expected only the render tail, got %d render instructions", len(asset.Render))
	}
	// rand*2-1 takes 5 entries, the lifetime 1, the texture slot 1
	if asset.Module.Len() != 7 {
		t.Errorf("Expected 7 module entries, got %d", asset.Module.Len())
	}
	if sink.Count(diag.KindMisplacedModifier) != 2 {
		t.Fatalf("Expected 2 misplaced_modifier hazards, got %+v", sink.Hazards)
	}
	if h := sink.Hazards[0]; h.Effect != "Mixed" || h.Path != "init[0]" {
		t.Errorf("Unexpected hazard location %s / %s", h.Effect, h.Path)
	}
}

// TestCompile_PointerAndNilModifiers tests that pointer modifiers compile and
// nil entries are skipped without panicking
func TestCompile_PointerAndNilModifiers(t *testing.T) {
	d := New()
	d.Init = []modifier.Modifier{nil, &modifier.SetAttribute{Attr: particle.AttrLifetime, Value: expr.Float(1)}}
	d.Update = []modifier.Modifier{&modifier.Accel{Accel: expr.Vec3(particle.Vec3Y)}, (*modifier.LinearDrag)(nil)}
	d.Render = []modifier.RenderModifier{nil}

	var sink diag.Collector
	asset := Compile(d, &sink)

	if len(asset.Init) != 1 || asset.Init[0].Kind() != particle.KindSetAttribute {
		t.Errorf("Unexpected init list %+v", asset.Init)
	}
	if len(asset.Update) != 1 || asset.Update[0].Kind() != particle.KindAccel {
		t.Errorf("Unexpected update list %+v", asset.Update)
	}
	if len(asset.Render) != 2 {
		t.Errorf("Expected only the render tail, got %d", len(asset.Render))
	}
	if sink.Count(diag.KindUnknownModifier) != 3 {
		t.Errorf("Expected 3 unknown_modifier hazards, got %+v", sink.Hazards)
	}

	r := ToRecord(d)
	if len(r.InitModifiers) != 1 || len(r.UpdateModifiers) != 1 || len(r.RenderModifiers) != 0 {
		t.Errorf("Expected nil entries dropped from the record, got %d/%d/%d",
			len(r.InitModifiers), len(r.UpdateModifiers), len(r.RenderModifiers))
	}
}
