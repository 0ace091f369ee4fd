package config

// ParticleTexture 内置粒子纹理表中的一项
type ParticleTexture struct {
	Filename string // 纹理目录下的文件名
	Label    string // 编辑器中显示的名称
}

// ParticleTextures 内置纹理表
//
// 特效的 texture_index 是本表的下标，顺序不可调整。
var ParticleTextures = []ParticleTexture{
	{Filename: "cloud.png", Label: "Cloud1"},
	{Filename: "cloud2.png", Label: "Cloud2"},
	{Filename: "spark1.png", Label: "Spark1"},
	{Filename: "spark2.png", Label: "Spark2"},
	{Filename: "spark3.png", Label: "Spark3"},
	{Filename: "glow1.png", Label: "Glow1"},
	{Filename: "splat1.png", Label: "Splat1"},
}

// TextureLabel 返回纹理下标对应的名称，越界时返回空字符串
func TextureLabel(index int) string {
	if index < 0 || index >= len(ParticleTextures) {
		return ""
	}
	return ParticleTextures[index].Label
}
