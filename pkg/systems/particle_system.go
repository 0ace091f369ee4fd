package systems

import (
	"log"
	"math"
	"math/rand"
	"reflect"

	"github.com/decker502/omagari/internal/particle"
	"github.com/decker502/omagari/pkg/components"
	"github.com/decker502/omagari/pkg/ecs"
)

var emitterStateType = reflect.TypeOf(&components.EmitterStateComponent{})

// ParticleSystem runs a CPU preview of compiled effects.
//
// Each effect entity gets an EmitterStateComponent holding its live
// particles. Every frame the system:
//  1. Runs the spawner and spawn events consumed from the parent effect
//  2. Runs the init instructions on new particles
//  3. Ages particles, runs the update instructions and integrates velocity
//
// Entities are processed in creation order, so a parent always emits its
// events before its children consume them in the same frame.
type ParticleSystem struct {
	EntityManager *ecs.EntityManager
	Assets        *particle.Assets

	rand *rand.Rand
}

// NewParticleSystem creates a new ParticleSystem. seed makes runs repeatable.
func NewParticleSystem(em *ecs.EntityManager, assets *particle.Assets, seed int64) *ParticleSystem {
	return &ParticleSystem{
		EntityManager: em,
		Assets:        assets,
		rand:          rand.New(rand.NewSource(seed)),
	}
}

// Update advances every effect by dt seconds.
func (ps *ParticleSystem) Update(dt float64) {
	for _, id := range ecs.Query[*components.ParticleEffectComponent](ps.EntityManager) {
		effectComp, _ := ecs.GetComponent[*components.ParticleEffectComponent](ps.EntityManager, id)
		asset, ok := ps.Assets.Get(effectComp.Handle)
		if !ok {
			continue
		}

		state, ok := ecs.GetComponent[*components.EmitterStateComponent](ps.EntityManager, id)
		if !ok {
			state = &components.EmitterStateComponent{}
			ps.EntityManager.AddComponent(id, state)
		}

		state.Events = state.Events[:0]
		state.Time += dt

		ps.updateParticles(asset, state, dt)
		ps.runSpawner(asset, state, dt)
		ps.consumeParentEvents(id, asset, state)
	}
}

// ParticleCount returns the number of live particles over all effects.
func (ps *ParticleSystem) ParticleCount() int {
	n := 0
	for _, id := range ecs.Query[*components.EmitterStateComponent](ps.EntityManager) {
		state, _ := ecs.GetComponent[*components.EmitterStateComponent](ps.EntityManager, id)
		n += state.Alive()
	}
	return n
}

// Reset drops every particle and restarts every spawner.
func (ps *ParticleSystem) Reset() {
	for _, id := range ecs.Query[*components.EmitterStateComponent](ps.EntityManager) {
		ps.EntityManager.RemoveComponent(id, emitterStateType)
	}
}

// runSpawner emits the particles scheduled for this frame.
//
// A cycle emits CycleCount particles spread evenly over CycleSpan seconds
// and lasts CyclePeriod seconds (never less than its span). A span of zero
// emits the whole cycle at once.
func (ps *ParticleSystem) runSpawner(asset *particle.EffectAsset, state *components.EmitterStateComponent, dt float64) {
	settings := asset.Spawner
	if state.Finished {
		return
	}
	restarted := false
	if state.Cycle == 0 {
		ps.startCycle(settings, state)
		restarted = true
	} else {
		state.CycleElapsed += dt
	}

	for {
		target := state.CycleCount
		if state.CycleSpan > 0 && state.CycleElapsed < state.CycleSpan {
			target = math.Floor(state.CycleCount * state.CycleElapsed / state.CycleSpan)
		}
		for state.CycleSpawned < target {
			ps.spawn(asset, state, nil)
			state.CycleSpawned++
		}

		if state.CycleElapsed < state.CyclePeriod {
			return
		}
		if settings.CycleCount != 0 && state.Cycle >= settings.CycleCount {
			state.Finished = true
			return
		}
		if state.CyclePeriod <= 0 && restarted {
			// Zero-length cycles restart at most once per frame.
			return
		}
		overflow := state.CycleElapsed - state.CyclePeriod
		ps.startCycle(settings, state)
		state.CycleElapsed = overflow
		restarted = true
	}
}

func (ps *ParticleSystem) startCycle(settings particle.SpawnerSettings, state *components.EmitterStateComponent) {
	state.Cycle++
	state.CycleElapsed = 0
	state.CycleSpawned = 0
	state.CycleCount = math.Floor(float64(ps.sample(settings.Count)))
	state.CycleSpan = float64(ps.sample(settings.SpawnDuration))
	state.CyclePeriod = math.Max(float64(ps.sample(settings.Period)), state.CycleSpan)
}

func (ps *ParticleSystem) sample(r particle.Range) float32 {
	if r.IsSingle() {
		return r.Min
	}
	return r.Min + (r.Max-r.Min)*ps.rand.Float32()
}

// consumeParentEvents spawns one particle per event the parent addressed to
// this effect. The child index counts the parent's children in creation
// order.
func (ps *ParticleSystem) consumeParentEvents(id ecs.EntityID, asset *particle.EffectAsset, state *components.EmitterStateComponent) {
	link, ok := ecs.GetComponent[*components.EffectParentComponent](ps.EntityManager, id)
	if !ok {
		return
	}
	parentState, ok := ecs.GetComponent[*components.EmitterStateComponent](ps.EntityManager, link.Parent)
	if !ok || len(parentState.Events) == 0 {
		return
	}

	index := ps.childIndex(link.Parent, id)
	for i := range parentState.Events {
		ev := &parentState.Events[i]
		if int(ev.ChildIndex) != index {
			continue
		}
		parent := ev.Parent
		ps.spawn(asset, state, &parent)
	}
}

func (ps *ParticleSystem) childIndex(parent, child ecs.EntityID) int {
	index := 0
	for _, id := range ecs.Query[*components.EffectParentComponent](ps.EntityManager) {
		link, _ := ecs.GetComponent[*components.EffectParentComponent](ps.EntityManager, id)
		if link.Parent != parent {
			continue
		}
		if id == child {
			return index
		}
		index++
	}
	return -1
}

// spawn creates one particle and runs the init instructions on it.
func (ps *ParticleSystem) spawn(asset *particle.EffectAsset, state *components.EmitterStateComponent, parent *particle.AttributeSet) {
	if uint32(len(state.Particles)) >= asset.Capacity {
		return
	}

	p := components.ParticleState{Attrs: particle.NewAttributeSet(), Parent: parent}
	p.Attrs.Set(particle.AttrID, particle.UintValue(state.NextID))
	state.NextID++

	env := &particle.Env{Time: float32(state.Time), Rand: ps.rand, Particle: &p.Attrs, Parent: parent}
	for _, inst := range asset.Init {
		ps.runInit(asset.Module, inst, env)
	}
	state.Particles = append(state.Particles, p)
}

func (ps *ParticleSystem) runInit(m *particle.Module, inst particle.Instruction, env *particle.Env) {
	attrs := env.Particle
	eval3 := func(h particle.ExprHandle) particle.Vec3 {
		return particle.Convert(m.Eval(h, env), particle.TypeVec3).Vec3()
	}
	eval1 := func(h particle.ExprHandle) float32 {
		return particle.Convert(m.Eval(h, env), particle.TypeFloat).Float
	}

	switch in := inst.(type) {
	case particle.SetAttribute:
		attrs.Set(in.Attribute, m.Eval(in.Value, env))
	case particle.InheritAttribute:
		if env.Parent != nil {
			attrs.Set(in.Attribute, env.Parent.Get(in.Attribute))
		}
	case particle.SetPositionCircle:
		u, v := particle.Orthonormal(eval3(in.Axis))
		r := eval1(in.Radius)
		if in.Dimension == particle.DimensionVolume {
			r *= float32(math.Sqrt(ps.rand.Float64()))
		}
		theta := ps.rand.Float64() * 2 * math.Pi
		offset := u.Scale(float32(math.Cos(theta))).Add(v.Scale(float32(math.Sin(theta))))
		attrs.SetVec3(particle.AttrPosition, eval3(in.Center).Add(offset.Scale(r)))
	case particle.SetPositionSphere:
		r := eval1(in.Radius)
		if in.Dimension == particle.DimensionVolume {
			r *= float32(math.Cbrt(ps.rand.Float64()))
		}
		attrs.SetVec3(particle.AttrPosition, eval3(in.Center).Add(ps.randomDirection().Scale(r)))
	case particle.SetVelocityCircle:
		axis := eval3(in.Axis).Normalize()
		radial := attrs.Vec3(particle.AttrPosition).Sub(eval3(in.Center))
		radial = radial.Sub(axis.Scale(radial.Dot(axis))).Normalize()
		attrs.SetVec3(particle.AttrVelocity, radial.Scale(eval1(in.Speed)))
	case particle.SetVelocitySphere:
		dir := attrs.Vec3(particle.AttrPosition).Sub(eval3(in.Center)).Normalize()
		attrs.SetVec3(particle.AttrVelocity, dir.Scale(eval1(in.Speed)))
	case particle.SetVelocityTangent:
		radial := attrs.Vec3(particle.AttrPosition).Sub(eval3(in.Origin))
		dir := eval3(in.Axis).Cross(radial).Normalize()
		attrs.SetVec3(particle.AttrVelocity, dir.Scale(eval1(in.Speed)))
	default:
		if verbose {
			log.Printf("[ParticleSystem] Warning: %s is not an init instruction", inst.Kind())
		}
	}
}

func (ps *ParticleSystem) randomDirection() particle.Vec3 {
	z := ps.rand.Float64()*2 - 1
	theta := ps.rand.Float64() * 2 * math.Pi
	r := math.Sqrt(1 - z*z)
	return particle.Vec3{float32(r * math.Cos(theta)), float32(r * math.Sin(theta)), float32(z)}
}

// updateParticles ages, updates and integrates every live particle, then
// removes the dead ones. A particle whose lifetime is zero never expires.
func (ps *ParticleSystem) updateParticles(asset *particle.EffectAsset, state *components.EmitterStateComponent, dt float64) {
	fdt := float32(dt)
	alive := state.Particles[:0]
	for i := range state.Particles {
		p := state.Particles[i]
		env := &particle.Env{Time: float32(state.Time), Rand: ps.rand, Particle: &p.Attrs, Parent: p.Parent}

		age := p.Attrs.Float(particle.AttrAge) + fdt
		p.Attrs.SetFloat(particle.AttrAge, age)
		lifetime := p.Attrs.Float(particle.AttrLifetime)
		dead := lifetime > 0 && age >= lifetime

		for _, inst := range asset.Update {
			ps.runUpdate(asset.Module, inst, env, state, fdt, dead)
		}
		if dead {
			continue
		}

		pos := p.Attrs.Vec3(particle.AttrPosition)
		vel := p.Attrs.Vec3(particle.AttrVelocity)
		p.Attrs.SetVec3(particle.AttrPosition, pos.Add(vel.Scale(fdt)))
		alive = append(alive, p)
	}
	state.Particles = alive
}

func (ps *ParticleSystem) runUpdate(m *particle.Module, inst particle.Instruction, env *particle.Env, state *components.EmitterStateComponent, dt float32, dead bool) {
	attrs := env.Particle
	eval1 := func(h particle.ExprHandle) float32 {
		return particle.Convert(m.Eval(h, env), particle.TypeFloat).Float
	}

	switch in := inst.(type) {
	case particle.Accel:
		if dead {
			return
		}
		a := particle.Convert(m.Eval(in.Accel, env), particle.TypeVec3).Vec3()
		attrs.SetVec3(particle.AttrVelocity, attrs.Vec3(particle.AttrVelocity).Add(a.Scale(dt)))
	case particle.LinearDrag:
		if dead {
			return
		}
		k := max(0, 1-eval1(in.Drag)*dt)
		attrs.SetVec3(particle.AttrVelocity, attrs.Vec3(particle.AttrVelocity).Scale(k))
	case particle.ConformToSphere:
		if dead {
			return
		}
		ps.conform(m, in, env, dt)
	case particle.EmitSpawnEvent:
		if (in.Condition == particle.EmitOnDie) != dead {
			return
		}
		count := particle.Convert(m.Eval(in.Count, env), particle.TypeUint).Uint
		for i := uint32(0); i < count; i++ {
			state.Events = append(state.Events, components.SpawnEvent{ChildIndex: in.ChildIndex, Parent: *attrs})
		}
	default:
		if verbose {
			log.Printf("[ParticleSystem] Warning: %s is not an update instruction", inst.Kind())
		}
	}
}

// conform pulls particles within InfluenceDist of the sphere shell toward
// the shell, capping their speed at MaxAttractionSpeed.
func (ps *ParticleSystem) conform(m *particle.Module, in particle.ConformToSphere, env *particle.Env, dt float32) {
	attrs := env.Particle
	eval1 := func(h particle.ExprHandle) float32 {
		return particle.Convert(m.Eval(h, env), particle.TypeFloat).Float
	}
	origin := particle.Convert(m.Eval(in.Origin, env), particle.TypeVec3).Vec3()
	radius := eval1(in.Radius)

	toCenter := origin.Sub(attrs.Vec3(particle.AttrPosition))
	dist := toCenter.Length()
	gap := dist - radius
	if dist == 0 || float32(math.Abs(float64(gap))) > eval1(in.InfluenceDist) {
		return
	}

	// Outside the shell pull inward, inside push outward.
	dir := toCenter.Scale(1 / dist)
	if gap < 0 {
		dir = dir.Scale(-1)
	}
	vel := attrs.Vec3(particle.AttrVelocity).Add(dir.Scale(eval1(in.AttractionAccel) * dt))
	if maxSpeed := eval1(in.MaxAttractionSpeed); maxSpeed > 0 {
		if speed := vel.Length(); speed > maxSpeed {
			vel = vel.Scale(maxSpeed / speed)
		}
	}
	attrs.SetVec3(particle.AttrVelocity, vel)
}
