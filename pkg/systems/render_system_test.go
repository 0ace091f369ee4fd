package systems

import (
	"image"
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/omagari/internal/particle"
	"github.com/decker502/omagari/pkg/components"
	"github.com/decker502/omagari/pkg/ecs"
)

func renderAsset(render ...particle.Instruction) *particle.EffectAsset {
	return &particle.EffectAsset{Module: particle.NewModule(), Render: render, AlphaMode: particle.AlphaBlend}
}

func approxColor(a, b particle.Vec4) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-5 {
			return false
		}
	}
	return true
}

func TestAppearance_Defaults(t *testing.T) {
	attrs := particle.NewAttributeSet()
	attrs.SetFloat(particle.AttrSize, 0.5)

	app := Appearance(renderAsset(), &attrs)
	if app.Size != (particle.Vec3{0.5, 0.5, 0.5}) {
		t.Errorf("size = %v, want size attribute", app.Size)
	}
	if app.Color != (particle.Vec4{1, 1, 1, 1}) {
		t.Errorf("color = %v, want white", app.Color)
	}

	attrs.Set(particle.AttrColor, particle.UintValue(particle.Pack4x8Unorm(particle.Vec4{1, 0, 0, 1})))
	if app := Appearance(renderAsset(), &attrs); app.Color != (particle.Vec4{1, 0, 0, 1}) {
		t.Errorf("color = %v, want color attribute", app.Color)
	}
}

func TestAppearance_Gradients(t *testing.T) {
	size := particle.NewGradient[particle.Vec3]()
	size.AddKey(0, particle.Vec3{0, 0, 0})
	size.AddKey(1, particle.Vec3{2, 2, 2})

	col := particle.NewGradient[particle.Vec4]()
	col.AddKey(0, particle.Vec4{1, 1, 1, 1})
	col.AddKey(1, particle.Vec4{1, 1, 1, 0})

	attrs := particle.NewAttributeSet()
	attrs.SetFloat(particle.AttrLifetime, 2)
	attrs.SetFloat(particle.AttrAge, 1)

	asset := renderAsset(
		particle.SizeOverLifetime{Gradient: size},
		particle.ColorOverLifetime{Gradient: col, Blend: particle.BlendOverwrite, Mask: particle.MaskRGBA},
	)
	app := Appearance(asset, &attrs)
	if app.Size != (particle.Vec3{1, 1, 1}) {
		t.Errorf("size at half life = %v, want [1 1 1]", app.Size)
	}
	if !approxColor(app.Color, particle.Vec4{1, 1, 1, 0.5}) {
		t.Errorf("color at half life = %v", app.Color)
	}
}

func TestBlendColor(t *testing.T) {
	base := particle.Vec4{0.5, 0.5, 0.5, 1}
	c := particle.Vec4{0.5, 0.25, 1, 0.5}

	tests := []struct {
		name string
		mode particle.ColorBlendMode
		mask particle.ColorBlendMask
		want particle.Vec4
	}{
		{"overwrite rgba", particle.BlendOverwrite, particle.MaskRGBA, c},
		{"overwrite rgb", particle.BlendOverwrite, particle.MaskRGB, particle.Vec4{0.5, 0.25, 1, 1}},
		{"add alpha", particle.BlendAdd, particle.MaskA, particle.Vec4{0.5, 0.5, 0.5, 1.5}},
		{"modulate", particle.BlendModulate, particle.MaskRGBA, particle.Vec4{0.25, 0.125, 0.5, 0.5}},
		{"defaults modulate rgba", "", "", particle.Vec4{0.25, 0.125, 0.5, 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := blendColor(base, c, tt.mode, tt.mask); !approxColor(got, tt.want) {
				t.Errorf("blendColor = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppearance_OrientAlongVelocity(t *testing.T) {
	attrs := particle.NewAttributeSet()
	attrs.SetVec3(particle.AttrVelocity, particle.Vec3{0, 1, 0})

	app := Appearance(renderAsset(particle.Orient{Mode: particle.OrientAlongVelocity}), &attrs)
	if math.Abs(app.Angle+math.Pi/2) > 1e-9 {
		t.Errorf("angle = %v, want -pi/2", app.Angle)
	}

	app = Appearance(renderAsset(particle.Orient{Mode: particle.OrientFaceCameraPosition}), &attrs)
	if app.Angle != 0 {
		t.Errorf("camera-facing quad should not rotate, got %v", app.Angle)
	}
}

func TestBuildQuad(t *testing.T) {
	app := ParticleAppearance{Size: particle.Vec3{1, 0.5, 1}, Color: particle.Vec4{1, 0.5, 0.25, 1}}
	quad := BuildQuad(app, 200, 100, 100, image.Rect(0, 0, 32, 16))

	want := [4][2]float32{{150, 75}, {250, 75}, {150, 125}, {250, 125}}
	for i, v := range quad {
		if v.DstX != want[i][0] || v.DstY != want[i][1] {
			t.Errorf("corner %d = (%v, %v), want %v", i, v.DstX, v.DstY, want[i])
		}
		if v.ColorG != 0.5 || v.ColorB != 0.25 {
			t.Errorf("corner %d color = %+v", i, v)
		}
	}
	if quad[3].SrcX != 32 || quad[3].SrcY != 16 {
		t.Errorf("bottom-right texel = (%v, %v), want (32, 16)", quad[3].SrcX, quad[3].SrcY)
	}

	app.ScreenSpace = true
	quad = BuildQuad(app, 0, 0, 100, image.Rect(0, 0, 1, 1))
	if quad[1].DstX != 0.5 {
		t.Errorf("screen-space half width = %v, want 0.5", quad[1].DstX)
	}
}

func TestParticleRenderSystem_ImageFor(t *testing.T) {
	em := ecs.NewEntityManager()
	tex := ebiten.NewImage(8, 8)
	mask := ebiten.NewImage(8, 8)
	s := NewParticleRenderSystem(em, particle.NewAssets(), []*ebiten.Image{mask})

	plain := em.CreateEntity()
	if got := s.imageFor(plain, renderAsset()); got != s.white {
		t.Error("Effect without material should draw with the white image")
	}

	textured := em.CreateEntity()
	em.AddComponent(textured, &components.MaterialComponent{TextureIndex: 0, Image: tex})
	if got := s.imageFor(textured, renderAsset(particle.ParticleTexture{SampleMapping: particle.SampleModulate})); got != tex {
		t.Error("modulate should sample the texture itself")
	}
	if got := s.imageFor(textured, renderAsset(particle.ParticleTexture{SampleMapping: particle.SampleModulateOpacityFromR})); got != mask {
		t.Error("modulate_opacity_from_r should sample the mask image")
	}
}
