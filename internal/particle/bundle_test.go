package particle

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func testAsset() *EffectAsset {
	m := NewModule()
	lifetime := m.Lit(FloatValue(1.5))
	center := m.Lit(Vec3Value(Vec3Zero))
	radius := m.Lit(FloatValue(0.2))
	r := m.Rand(TypeVec3)
	two := m.Lit(Vec3Value(Splat3(2)))
	accel := m.Binary(OpSub, m.Binary(OpMul, r, two), m.Lit(Vec3Value(Vec3One)))
	count := m.Lit(UintValue(4))
	slot := m.Lit(UintValue(0))
	m.AddTextureSlot("color")

	size := NewGradient[Vec3]()
	size.AddKey(0.3, Splat3(0.1))
	size.AddKey(1.0, Splat3(1.0))
	color := NewGradient[Vec4]()
	color.AddKey(0.0, Vec4{0, 4, 4, 0})
	color.AddKey(1.0, Vec4{4, 0, 0, 0})

	texture := 2
	return &EffectAsset{
		Name:     "Fire",
		Capacity: 16384,
		Spawner:  Rate(500),
		Module:   m,
		Init: []Instruction{
			SetAttribute{Attribute: AttrLifetime, Value: lifetime},
			SetPositionSphere{Center: center, Radius: radius, Dimension: DimensionSurface},
		},
		Update: []Instruction{
			Accel{Accel: accel},
			EmitSpawnEvent{Condition: EmitOnDie, Count: count, ChildIndex: 0},
		},
		Render: []Instruction{
			SizeOverLifetime{Gradient: size},
			ColorOverLifetime{Gradient: color, Blend: BlendModulate, Mask: MaskRGBA},
			ParticleTexture{TextureSlot: slot, TextureIndex: &texture, SampleMapping: SampleModulateOpacityFromR},
			Orient{Mode: OrientAlongVelocity},
		},
		AlphaMode: AlphaBlend,
	}
}

// TestBundleRoundTrip tests that an encoded bundle decodes to the same assets
func TestBundleRoundTrip(t *testing.T) {
	parent := "Fire"
	texture := 2
	b := &Bundle{Effects: []BundleEffect{
		{Name: "Fire", TextureIndex: &texture, Asset: testAsset()},
		{Name: "Sparks", Parent: &parent, Asset: testAsset()},
	}}

	data, err := MarshalBundle(b)
	if err != nil {
		t.Fatalf("MarshalBundle failed: %v", err)
	}
	if !strings.Contains(string(data), "effect_asset:") {
		t.Errorf("Expected effect_asset key in output:\n%s", data)
	}

	got, err := DecodeBundle(data)
	if err != nil {
		t.Fatalf("DecodeBundle failed: %v", err)
	}
	if !reflect.DeepEqual(got, b) {
		t.Errorf("Round trip mismatch\nwant: %+v\ngot:  %+v", b, got)
	}
}

// TestParseBundle tests reading a bundle file from disk
func TestParseBundle(t *testing.T) {
	data, err := MarshalBundle(&Bundle{Effects: []BundleEffect{{Name: "Fire", Asset: testAsset()}}})
	if err != nil {
		t.Fatalf("MarshalBundle failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "fire.baked.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write bundle: %v", err)
	}

	b, err := ParseBundle(path)
	if err != nil {
		t.Fatalf("ParseBundle failed: %v", err)
	}
	if len(b.Effects) != 1 {
		t.Fatalf("Expected 1 effect, got %d", len(b.Effects))
	}
	if n := b.Effects[0].Asset.InstructionCount(); n != 8 {
		t.Errorf("Expected 8 instructions, got %d", n)
	}

	if _, err := ParseBundle(filepath.Join(t.TempDir(), "missing.baked.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

// TestDecodeBundle_Invalid tests rejection of malformed bundles
func TestDecodeBundle_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "unknown instruction",
			data: "effects:\n  - name: a\n    effect_asset:\n      update_modifiers:\n        - kind: explode\n",
		},
		{
			name: "operand outside module",
			data: "effects:\n  - name: a\n    effect_asset:\n      module:\n        exprs: []\n      update_modifiers:\n        - kind: accel\n          accel: 3\n",
		},
		{
			name: "unknown attribute",
			data: "effects:\n  - name: a\n    effect_asset:\n      module:\n        exprs:\n          - kind: attribute\n            attr: mass\n",
		},
		{
			name: "not yaml",
			data: "effects: [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeBundle([]byte(tt.data)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

// TestAssetsRegistry tests handle issuing and clearing
func TestAssetsRegistry(t *testing.T) {
	r := NewAssets()
	a := r.Add(testAsset())
	b := r.Add(testAsset())
	if a == 0 || b == a {
		t.Fatalf("Expected distinct non-zero handles, got %d and %d", a, b)
	}
	if r.Len() != 2 {
		t.Errorf("Expected 2 assets, got %d", r.Len())
	}

	r.Remove(a)
	if _, ok := r.Get(a); ok {
		t.Error("Removed asset still resolvable")
	}
	if got := r.Handles(); len(got) != 1 || got[0] != b {
		t.Errorf("Unexpected handles after remove: %v", got)
	}

	r.Clear()
	if r.Len() != 0 {
		t.Errorf("Expected empty registry after Clear, got %d", r.Len())
	}
	if c := r.Add(testAsset()); c <= b {
		t.Errorf("Expected handle after clear to exceed %d, got %d", b, c)
	}
}
