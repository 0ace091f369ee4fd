package components

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/omagari/internal/particle"
	"github.com/decker502/omagari/pkg/ecs"
)

// NameComponent 存储实体名称（特效名称）
type NameComponent struct {
	Name string
}

// TransformComponent 存储实体的世界坐标变换
//
// 生成的特效实体一律放在原点，由宿主自行移动。
type TransformComponent struct {
	Translation particle.Vec3
	Scale       particle.Vec3
}

// IdentityTransform 返回原点处、缩放为 1 的变换
func IdentityTransform() *TransformComponent {
	return &TransformComponent{
		Translation: particle.Vec3Zero,
		Scale:       particle.Vec3One,
	}
}

// ParticleEffectComponent 引用资源注册表中已编译的特效
type ParticleEffectComponent struct {
	Handle particle.AssetHandle
}

// MaterialComponent 特效使用的纹理
//
// 仅在特效设置了纹理索引时挂载；Image 绑定到编译后模块的 "color" 纹理槽。
type MaterialComponent struct {
	TextureIndex int
	Image        *ebiten.Image
}

// EffectParentComponent 将子特效关联到父特效实体
//
// 父实体的粒子事件（如 EmitSpawnEvent）驱动子特效发射。
type EffectParentComponent struct {
	Parent ecs.EntityID
}
