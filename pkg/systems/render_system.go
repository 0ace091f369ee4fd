package systems

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/omagari/internal/particle"
	"github.com/decker502/omagari/pkg/components"
	"github.com/decker502/omagari/pkg/ecs"
)

const (
	// DefaultPixelsPerUnit 世界坐标 1 个单位对应的屏幕像素
	DefaultPixelsPerUnit = 100.0

	// maxQuadsPerBatch 单次 DrawTriangles 的粒子上限（uint16 索引）
	maxQuadsPerBatch = 16383
)

// ParticleAppearance 单个粒子在当前帧的外观
type ParticleAppearance struct {
	Size        particle.Vec3 // 世界单位；ScreenSpace 时为像素
	Color       particle.Vec4 // 非预乘 RGBA
	Angle       float64       // 屏幕空间旋转(弧度)
	ScreenSpace bool
}

// Appearance 按渲染指令计算粒子外观
//
// 基础尺寸取 size 属性，基础颜色取 color 属性（pack4x8unorm），color 为 0 时为白色。
// 渲染指令按顺序覆盖或混合这些值。
func Appearance(asset *particle.EffectAsset, attrs *particle.AttributeSet) ParticleAppearance {
	app := ParticleAppearance{
		Size:  particle.Splat3(attrs.Float(particle.AttrSize)),
		Color: particle.Vec4{1, 1, 1, 1},
	}
	if c := attrs.Get(particle.AttrColor).Uint; c != 0 {
		app.Color = particle.Unpack4x8Unorm(c)
	}

	t := float32(0)
	if lifetime := attrs.Float(particle.AttrLifetime); lifetime > 0 {
		t = min(attrs.Float(particle.AttrAge)/lifetime, 1)
	}

	for _, inst := range asset.Render {
		switch in := inst.(type) {
		case particle.SizeOverLifetime:
			if in.Gradient.Len() > 0 {
				app.Size = particle.SampleVec3(in.Gradient, t)
			}
			app.ScreenSpace = in.ScreenSpaceSize
		case particle.ColorOverLifetime:
			if in.Gradient.Len() > 0 {
				app.Color = blendColor(app.Color, particle.SampleVec4(in.Gradient, t), in.Blend, in.Mask)
			}
		case particle.Orient:
			if in.Mode == particle.OrientAlongVelocity {
				v := attrs.Vec3(particle.AttrVelocity)
				// 屏幕 y 轴向下
				app.Angle = -math.Atan2(float64(v[1]), float64(v[0]))
			}
		}
	}
	return app
}

func blendColor(base, c particle.Vec4, mode particle.ColorBlendMode, mask particle.ColorBlendMask) particle.Vec4 {
	if mode == "" {
		mode = particle.DefaultColorBlendMode
	}
	if mask == "" {
		mask = particle.DefaultColorBlendMask
	}
	first, last := 0, 4
	switch mask {
	case particle.MaskRGB:
		last = 3
	case particle.MaskA:
		first = 3
	}

	out := base
	for i := first; i < last; i++ {
		switch mode {
		case particle.BlendOverwrite:
			out[i] = c[i]
		case particle.BlendAdd:
			out[i] = base[i] + c[i]
		default:
			out[i] = base[i] * c[i]
		}
	}
	return out
}

// ParticleRenderSystem 绘制 ParticleSystem 模拟出的粒子
//
// 投影为正交投影：世界原点位于屏幕中心，y 轴向上。
// 同一贴图、同一混合模式的粒子合并为一次 DrawTriangles。
type ParticleRenderSystem struct {
	EntityManager *ecs.EntityManager
	Assets        *particle.Assets

	// Masks 与纹理表一一对应的遮罩图（alpha = R），供 modulate_opacity_from_r 使用
	Masks []*ebiten.Image

	PixelsPerUnit float64

	white    *ebiten.Image
	vertices []ebiten.Vertex
	indices  []uint16
}

// NewParticleRenderSystem 创建粒子渲染系统
func NewParticleRenderSystem(em *ecs.EntityManager, assets *particle.Assets, masks []*ebiten.Image) *ParticleRenderSystem {
	white := ebiten.NewImage(4, 4)
	white.Fill(color.White)
	return &ParticleRenderSystem{
		EntityManager: em,
		Assets:        assets,
		Masks:         masks,
		PixelsPerUnit: DefaultPixelsPerUnit,
		white:         white,
		vertices:      make([]ebiten.Vertex, 0, 4000), // 预分配 1000 个粒子
		indices:       make([]uint16, 0, 6000),
	}
}

type renderBatch struct {
	image    *ebiten.Image
	additive bool
	quads    [][4]ebiten.Vertex
}

// Draw 绘制所有特效实体的存活粒子
//
// 先绘制普通混合批次，再绘制加法混合批次，保证发光效果叠加在上。
func (s *ParticleRenderSystem) Draw(screen *ebiten.Image) {
	bounds := screen.Bounds()
	cx := float64(bounds.Dx()) / 2
	cy := float64(bounds.Dy()) / 2

	type batchKey struct {
		img      *ebiten.Image
		additive bool
	}
	batches := make(map[batchKey]*renderBatch)
	var order []*renderBatch

	for _, id := range ecs.Query[*components.EmitterStateComponent](s.EntityManager) {
		state, _ := ecs.GetComponent[*components.EmitterStateComponent](s.EntityManager, id)
		if state.Alive() == 0 {
			continue
		}
		effectComp, ok := ecs.GetComponent[*components.ParticleEffectComponent](s.EntityManager, id)
		if !ok {
			continue
		}
		asset, ok := s.Assets.Get(effectComp.Handle)
		if !ok {
			continue
		}

		img := s.imageFor(id, asset)
		key := batchKey{img: img, additive: asset.AlphaMode == particle.AlphaAdd}
		batch, exists := batches[key]
		if !exists {
			batch = &renderBatch{image: img, additive: key.additive}
			batches[key] = batch
			order = append(order, batch)
		}

		for i := range state.Particles {
			p := &state.Particles[i]
			app := Appearance(asset, &p.Attrs)
			pos := p.Attrs.Vec3(particle.AttrPosition)
			x := cx + float64(pos[0])*s.PixelsPerUnit
			y := cy - float64(pos[1])*s.PixelsPerUnit
			batch.quads = append(batch.quads, BuildQuad(app, x, y, s.PixelsPerUnit, img.Bounds()))
		}
	}

	for _, additive := range []bool{false, true} {
		for _, batch := range order {
			if batch.additive == additive {
				s.drawBatch(screen, batch)
			}
		}
	}
}

// imageFor 选择特效使用的贴图：无材质时为白色方块，
// modulate_opacity_from_r 时使用对应的遮罩图。
func (s *ParticleRenderSystem) imageFor(id ecs.EntityID, asset *particle.EffectAsset) *ebiten.Image {
	mat, ok := ecs.GetComponent[*components.MaterialComponent](s.EntityManager, id)
	if !ok || mat.Image == nil {
		return s.white
	}
	for _, inst := range asset.Render {
		tex, ok := inst.(particle.ParticleTexture)
		if !ok || tex.SampleMapping != particle.SampleModulateOpacityFromR {
			continue
		}
		if mat.TextureIndex >= 0 && mat.TextureIndex < len(s.Masks) && s.Masks[mat.TextureIndex] != nil {
			return s.Masks[mat.TextureIndex]
		}
	}
	return mat.Image
}

func (s *ParticleRenderSystem) drawBatch(screen *ebiten.Image, batch *renderBatch) {
	op := &ebiten.DrawTrianglesOptions{}
	op.AntiAlias = true
	if batch.additive {
		op.Blend = ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOne,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOne,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	}

	for start := 0; start < len(batch.quads); start += maxQuadsPerBatch {
		end := min(start+maxQuadsPerBatch, len(batch.quads))

		// 重置顶点数组（保留容量，避免内存分配）
		s.vertices = s.vertices[:0]
		s.indices = s.indices[:0]
		for _, quad := range batch.quads[start:end] {
			base := uint16(len(s.vertices))
			s.vertices = append(s.vertices, quad[:]...)
			s.indices = append(s.indices,
				base+0, base+1, base+2,
				base+1, base+3, base+2,
			)
		}
		screen.DrawTriangles(s.vertices, s.indices, batch.image, op)
	}
}

// BuildQuad 生成一个粒子的 4 个顶点（左上、右上、左下、右下）
//
// (x, y) 为粒子中心的屏幕坐标，src 为贴图的采样区域。
func BuildQuad(app ParticleAppearance, x, y, pixelsPerUnit float64, src image.Rectangle) [4]ebiten.Vertex {
	w := float64(app.Size[0])
	h := float64(app.Size[1])
	if !app.ScreenSpace {
		w *= pixelsPerUnit
		h *= pixelsPerUnit
	}

	corners := [4][2]float64{
		{-w / 2, -h / 2},
		{w / 2, -h / 2},
		{-w / 2, h / 2},
		{w / 2, h / 2},
	}
	x0, y0 := float32(src.Min.X), float32(src.Min.Y)
	x1, y1 := float32(src.Max.X), float32(src.Max.Y)
	texCoords := [4][2]float32{
		{x0, y0},
		{x1, y0},
		{x0, y1},
		{x1, y1},
	}

	cos := math.Cos(app.Angle)
	sin := math.Sin(app.Angle)

	var quad [4]ebiten.Vertex
	for i, c := range corners {
		quad[i] = ebiten.Vertex{
			DstX:   float32(x + c[0]*cos - c[1]*sin),
			DstY:   float32(y + c[0]*sin + c[1]*cos),
			SrcX:   texCoords[i][0],
			SrcY:   texCoords[i][1],
			ColorR: app.Color[0],
			ColorG: app.Color[1],
			ColorB: app.Color[2],
			ColorA: app.Color[3],
		}
	}
	return quad
}
