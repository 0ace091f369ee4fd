package components

import "github.com/decker502/omagari/internal/particle"

// ParticleState 预览模拟中的单个粒子
type ParticleState struct {
	Attrs particle.AttributeSet
	// Parent 由父特效事件生成时的父粒子属性快照，否则为 nil
	Parent *particle.AttributeSet
}

// SpawnEvent 父特效粒子发出的生成事件
type SpawnEvent struct {
	ChildIndex uint32
	Parent     particle.AttributeSet
}

// EmitterStateComponent 特效实体的运行时模拟状态
//
// 由 ParticleSystem 在首次更新时挂载，重新生成场景时随实体一起删除。
type EmitterStateComponent struct {
	Particles []ParticleState

	Time float64 // 特效运行时间(秒)

	// 当前发射周期
	Cycle        uint32  // 已开始的周期数
	CycleElapsed float64 // 当前周期已过时间(秒)
	CycleCount   float64 // 本周期要发射的粒子数
	CycleSpawned float64 // 本周期已发射的粒子数
	CycleSpan    float64 // 本周期的发射时长(秒)
	CyclePeriod  float64 // 本周期的总时长(秒)
	Finished     bool    // CycleCount 个周期已全部完成

	// Events 本帧发出、等待子特效消费的生成事件
	Events []SpawnEvent

	// NextID 下一个粒子的 id 属性
	NextID uint32
}

// Alive 返回存活粒子数量
func (s *EmitterStateComponent) Alive() int {
	return len(s.Particles)
}
