package systems

import (
	"math"
	"testing"

	"github.com/decker502/omagari/internal/particle"
	"github.com/decker502/omagari/pkg/components"
	"github.com/decker502/omagari/pkg/ecs"
)

// testAsset builds an asset whose init sets lifetime; lifetime 0 never expires
func testAsset(spawner particle.SpawnerSettings, capacity uint32, lifetime float32) *particle.EffectAsset {
	m := particle.NewModule()
	return &particle.EffectAsset{
		Name:     "test",
		Capacity: capacity,
		Spawner:  spawner,
		Module:   m,
		Init: []particle.Instruction{
			particle.SetAttribute{Attribute: particle.AttrLifetime, Value: m.Lit(particle.FloatValue(lifetime))},
		},
		AlphaMode: particle.AlphaBlend,
	}
}

func addEffect(em *ecs.EntityManager, assets *particle.Assets, asset *particle.EffectAsset) ecs.EntityID {
	id := em.CreateEntity()
	em.AddComponent(id, &components.ParticleEffectComponent{Handle: assets.Add(asset)})
	return id
}

func emitterState(t *testing.T, em *ecs.EntityManager, id ecs.EntityID) *components.EmitterStateComponent {
	t.Helper()
	state, ok := ecs.GetComponent[*components.EmitterStateComponent](em, id)
	if !ok {
		t.Fatalf("Entity %d has no emitter state", id)
	}
	return state
}

// TestParticleSystem_BurstAndExpire tests a single burst that dies at its lifetime
func TestParticleSystem_BurstAndExpire(t *testing.T) {
	em := ecs.NewEntityManager()
	assets := particle.NewAssets()
	id := addEffect(em, assets, testAsset(particle.Once(10), 100, 1))
	ps := NewParticleSystem(em, assets, 1)

	ps.Update(0.1)
	if got := ps.ParticleCount(); got != 10 {
		t.Fatalf("Expected 10 particles after burst, got %d", got)
	}

	ps.Update(1.0)
	if got := ps.ParticleCount(); got != 0 {
		t.Errorf("Expected all particles dead, got %d", got)
	}
	if !emitterState(t, em, id).Finished {
		t.Error("Single-cycle spawner should be finished")
	}

	ps.Update(1.0)
	if got := ps.ParticleCount(); got != 0 {
		t.Errorf("Finished spawner emitted %d particles", got)
	}
}

// TestParticleSystem_Capacity tests that live particles never exceed capacity
func TestParticleSystem_Capacity(t *testing.T) {
	em := ecs.NewEntityManager()
	assets := particle.NewAssets()
	addEffect(em, assets, testAsset(particle.Once(50), 8, 0))
	ps := NewParticleSystem(em, assets, 1)

	ps.Update(0.1)
	if got := ps.ParticleCount(); got != 8 {
		t.Errorf("Expected capacity-limited 8 particles, got %d", got)
	}
}

// TestParticleSystem_Rate tests a steady stream spread over the cycle
func TestParticleSystem_Rate(t *testing.T) {
	em := ecs.NewEntityManager()
	assets := particle.NewAssets()
	id := addEffect(em, assets, testAsset(particle.Rate(10), 100, 0))
	ps := NewParticleSystem(em, assets, 1)

	ps.Update(0.25)
	ps.Update(0.25)
	ps.Update(0.25)
	if got := ps.ParticleCount(); got != 5 {
		t.Errorf("Expected 5 particles half way through the cycle, got %d", got)
	}

	ps.Update(0.25)
	ps.Update(0.25)
	if got := ps.ParticleCount(); got != 10 {
		t.Errorf("Expected 10 particles after one cycle, got %d", got)
	}
	if got := emitterState(t, em, id).Cycle; got != 2 {
		t.Errorf("Expected the second cycle to have started, got cycle %d", got)
	}
}

// TestParticleSystem_Integrate tests acceleration and velocity integration
func TestParticleSystem_Integrate(t *testing.T) {
	em := ecs.NewEntityManager()
	assets := particle.NewAssets()
	asset := testAsset(particle.Once(1), 4, 0)
	m := asset.Module
	asset.Init = append(asset.Init, particle.SetAttribute{
		Attribute: particle.AttrVelocity,
		Value:     m.Lit(particle.Vec3Value(particle.Vec3{1, 0, 0})),
	})
	asset.Update = []particle.Instruction{
		particle.Accel{Accel: m.Lit(particle.Vec3Value(particle.Vec3{0, -10, 0}))},
	}
	id := addEffect(em, assets, asset)
	ps := NewParticleSystem(em, assets, 1)

	ps.Update(0.5)
	ps.Update(0.5)

	p := emitterState(t, em, id).Particles[0]
	if got := p.Attrs.Vec3(particle.AttrVelocity); got != (particle.Vec3{1, -5, 0}) {
		t.Errorf("velocity = %v, want [1 -5 0]", got)
	}
	if got := p.Attrs.Vec3(particle.AttrPosition); got != (particle.Vec3{0.5, -2.5, 0}) {
		t.Errorf("position = %v, want [0.5 -2.5 0]", got)
	}
	if got := p.Attrs.Float(particle.AttrAge); got != 0.5 {
		t.Errorf("age = %v, want 0.5", got)
	}
}

// TestParticleSystem_SpherePosition tests that surface emission lands on the shell
func TestParticleSystem_SpherePosition(t *testing.T) {
	em := ecs.NewEntityManager()
	assets := particle.NewAssets()
	asset := testAsset(particle.Once(20), 20, 0)
	m := asset.Module
	center := particle.Vec3{1, 1, 0}
	asset.Init = append(asset.Init, particle.SetPositionSphere{
		Center:    m.Lit(particle.Vec3Value(center)),
		Radius:    m.Lit(particle.FloatValue(2)),
		Dimension: particle.DimensionSurface,
	}, particle.SetVelocitySphere{
		Center: m.Lit(particle.Vec3Value(center)),
		Speed:  m.Lit(particle.FloatValue(3)),
	})
	id := addEffect(em, assets, asset)
	ps := NewParticleSystem(em, assets, 7)

	ps.Update(0.1)
	for _, p := range emitterState(t, em, id).Particles {
		r := p.Attrs.Vec3(particle.AttrPosition).Sub(center).Length()
		if math.Abs(float64(r-2)) > 1e-4 {
			t.Errorf("Particle at distance %v from center, want 2", r)
		}
		speed := p.Attrs.Vec3(particle.AttrVelocity).Length()
		if math.Abs(float64(speed-3)) > 1e-4 {
			t.Errorf("Particle speed %v, want 3", speed)
		}
	}
}

// TestParticleSystem_ChildEvents tests that on_die events spawn particles in
// the child at the matching index only
func TestParticleSystem_ChildEvents(t *testing.T) {
	em := ecs.NewEntityManager()
	assets := particle.NewAssets()

	parentAsset := testAsset(particle.Once(3), 10, 0.5)
	pm := parentAsset.Module
	parentAsset.Init = append(parentAsset.Init, particle.SetAttribute{
		Attribute: particle.AttrPosition,
		Value:     pm.Lit(particle.Vec3Value(particle.Vec3{4, 0, 0})),
	})
	parentAsset.Update = []particle.Instruction{
		particle.EmitSpawnEvent{Condition: particle.EmitOnDie, Count: pm.Lit(particle.UintValue(2)), ChildIndex: 0},
	}
	parent := addEffect(em, assets, parentAsset)

	childAsset := testAsset(particle.SpawnerSettings{}, 100, 0)
	childAsset.Init = append(childAsset.Init, particle.InheritAttribute{Attribute: particle.AttrPosition})
	child := addEffect(em, assets, childAsset)
	em.AddComponent(child, &components.EffectParentComponent{Parent: parent})

	other := addEffect(em, assets, testAsset(particle.SpawnerSettings{}, 100, 0))
	em.AddComponent(other, &components.EffectParentComponent{Parent: parent})

	ps := NewParticleSystem(em, assets, 1)
	ps.Update(0.1)
	if got := emitterState(t, em, parent).Alive(); got != 3 {
		t.Fatalf("Expected 3 parent particles, got %d", got)
	}

	ps.Update(0.5)
	if got := emitterState(t, em, parent).Alive(); got != 0 {
		t.Errorf("Expected parent particles dead, got %d", got)
	}
	childState := emitterState(t, em, child)
	if got := childState.Alive(); got != 6 {
		t.Fatalf("Expected 6 child particles, got %d", got)
	}
	for _, p := range childState.Particles {
		if got := p.Attrs.Vec3(particle.AttrPosition); got != (particle.Vec3{4, 0, 0}) {
			t.Errorf("Child did not inherit parent position: %v", got)
		}
		if p.Parent == nil {
			t.Error("Child particle should keep its parent snapshot")
		}
	}
	if got := emitterState(t, em, other).Alive(); got != 0 {
		t.Errorf("Second child received %d events addressed to child 0", got)
	}
}

// TestParticleSystem_Reset tests that reset drops particles and restarts spawners
func TestParticleSystem_Reset(t *testing.T) {
	em := ecs.NewEntityManager()
	assets := particle.NewAssets()
	addEffect(em, assets, testAsset(particle.Once(5), 10, 0))
	ps := NewParticleSystem(em, assets, 1)

	ps.Update(0.1)
	ps.Reset()
	if got := ps.ParticleCount(); got != 0 {
		t.Errorf("Expected 0 particles after reset, got %d", got)
	}
	ps.Update(0.1)
	if got := ps.ParticleCount(); got != 5 {
		t.Errorf("Expected the burst to replay after reset, got %d", got)
	}
}

// TestParticleSystem_InitInstructionInUpdate tests that init instructions in the
// update list do nothing
func TestParticleSystem_InitInstructionInUpdate(t *testing.T) {
	em := ecs.NewEntityManager()
	assets := particle.NewAssets()
	asset := testAsset(particle.Once(1), 4, 0)
	m := asset.Module
	asset.Update = []particle.Instruction{
		particle.SetAttribute{Attribute: particle.AttrVelocity, Value: m.Lit(particle.Vec3Value(particle.Vec3{0, 3, 0}))},
		particle.SetPositionSphere{Center: m.Lit(particle.Vec3Value(particle.Vec3{5, 5, 5})), Radius: m.Lit(particle.FloatValue(1)), Dimension: particle.DimensionSurface},
	}
	id := addEffect(em, assets, asset)
	ps := NewParticleSystem(em, assets, 1)

	ps.Update(0.1)
	ps.Update(0.1)

	p := emitterState(t, em, id).Particles[0]
	if got := p.Attrs.Vec3(particle.AttrVelocity); got != particle.Vec3Zero {
		t.Errorf("velocity = %v, want zero", got)
	}
	if got := p.Attrs.Vec3(particle.AttrPosition); got != particle.Vec3Zero {
		t.Errorf("position = %v, want origin", got)
	}
}

// TestParticleSystem_SelfParent tests that an effect linked to itself consumes
// its own death events
func TestParticleSystem_SelfParent(t *testing.T) {
	em := ecs.NewEntityManager()
	assets := particle.NewAssets()
	asset := testAsset(particle.Once(1), 10, 0.5)
	asset.Update = []particle.Instruction{
		particle.EmitSpawnEvent{Condition: particle.EmitOnDie, Count: asset.Module.Lit(particle.UintValue(1)), ChildIndex: 0},
	}
	id := addEffect(em, assets, asset)
	em.AddComponent(id, &components.EffectParentComponent{Parent: id})
	ps := NewParticleSystem(em, assets, 1)

	ps.Update(0.1)
	ps.Update(0.5)

	state := emitterState(t, em, id)
	if got := state.Alive(); got != 1 {
		t.Fatalf("Expected the dying particle to respawn once, got %d", got)
	}
	if state.Particles[0].Parent == nil {
		t.Error("Respawned particle should keep its parent snapshot")
	}
}
