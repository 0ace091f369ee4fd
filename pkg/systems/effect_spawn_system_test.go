package systems

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/omagari/internal/particle"
	"github.com/decker502/omagari/pkg/components"
	"github.com/decker502/omagari/pkg/diag"
	"github.com/decker502/omagari/pkg/ecs"
	"github.com/decker502/omagari/pkg/effect"
	"github.com/decker502/omagari/pkg/project"
)

func testTextures(n int) []*ebiten.Image {
	out := make([]*ebiten.Image, n)
	for i := range out {
		out[i] = ebiten.NewImage(8, 8)
	}
	return out
}

func namedEffect(name, parent string) effect.Descriptor {
	d := effect.New()
	d.Name = name
	d.SetParent(parent)
	return d
}

func newSpawnSystem() (*EffectSpawnSystem, *ecs.EntityManager) {
	em := ecs.NewEntityManager()
	return NewEffectSpawnSystem(em, particle.NewAssets(), testTextures(7)), em
}

// TestEffectSpawnSystem_ParentBeforeChild tests that a child listed after its
// parent is linked to the parent's entity
func TestEffectSpawnSystem_ParentBeforeChild(t *testing.T) {
	s, em := newSpawnSystem()
	doc := project.New()
	doc.Add(namedEffect("Fire", ""))
	doc.Add(namedEffect("Smoke", "Fire"))

	if err := s.Spawn(doc); err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}

	spawned := s.Spawned()
	if len(spawned) != 2 {
		t.Fatalf("Expected 2 spawned effects, got %d", len(spawned))
	}
	if em.Count() != 2 {
		t.Errorf("Expected 2 entities, got %d", em.Count())
	}

	parent, ok := s.ParentOf(spawned[1].Entity)
	if !ok {
		t.Fatal("Smoke should have a parent")
	}
	if parent != spawned[0].Entity {
		t.Errorf("Smoke parent = %d, want %d", parent, spawned[0].Entity)
	}
	if _, ok := s.ParentOf(spawned[0].Entity); ok {
		t.Error("Fire should have no parent")
	}
}

// TestEffectSpawnSystem_ChildBeforeParent tests that swapping the order leaves
// the child unlinked
func TestEffectSpawnSystem_ChildBeforeParent(t *testing.T) {
	s, _ := newSpawnSystem()
	sink := &diag.Collector{}
	s.Sink = sink

	doc := project.New()
	doc.Add(namedEffect("Smoke", "Fire"))
	doc.Add(namedEffect("Fire", ""))

	if err := s.Spawn(doc); err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}

	for _, sp := range s.Spawned() {
		if _, ok := s.ParentOf(sp.Entity); ok {
			t.Errorf("%s should not be linked", sp.Name)
		}
	}
	if got := s.Spawned()[0].Link.Status; got != project.LinkForward {
		t.Errorf("Smoke link status = %s, want %s", got, project.LinkForward)
	}
	if sink.Count(diag.KindUnresolvedParent) != 1 {
		t.Errorf("Expected 1 unresolved_parent hazard, got %v", sink.Hazards)
	}
}

// TestEffectSpawnSystem_Components tests the components attached to each entity
func TestEffectSpawnSystem_Components(t *testing.T) {
	s, em := newSpawnSystem()
	doc := project.New()
	fire := namedEffect("Fire", "")
	fire.SetTextureIndex(3)
	doc.Add(fire)
	plain := namedEffect("Plain", "")
	plain.TextureIndex = nil
	doc.Add(plain)

	if err := s.Spawn(doc); err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	spawned := s.Spawned()
	id := spawned[0].Entity

	name, ok := ecs.GetComponent[*components.NameComponent](em, id)
	if !ok || name.Name != "Fire" {
		t.Errorf("Unexpected name component %+v", name)
	}

	tr, ok := ecs.GetComponent[*components.TransformComponent](em, id)
	if !ok {
		t.Fatal("Missing transform")
	}
	if tr.Translation != particle.Vec3Zero {
		t.Errorf("Expected origin translation, got %v", tr.Translation)
	}

	pe, ok := ecs.GetComponent[*components.ParticleEffectComponent](em, id)
	if !ok {
		t.Fatal("Missing particle effect")
	}
	asset := s.Assets.MustGet(pe.Handle)
	if asset.Name != "Fire" {
		t.Errorf("Asset name = %q, want Fire", asset.Name)
	}

	mat, ok := ecs.GetComponent[*components.MaterialComponent](em, id)
	if !ok {
		t.Fatal("Missing material")
	}
	if mat.TextureIndex != 3 || mat.Image != s.Textures[3] {
		t.Errorf("Material bound to wrong texture: %+v", mat)
	}

	if ecs.HasComponent[*components.MaterialComponent](em, spawned[1].Entity) {
		t.Error("Effect without texture index should have no material")
	}
}

// TestEffectSpawnSystem_TextureOutOfRange tests that an out-of-range texture
// index aborts the pass and keeps what was already spawned
func TestEffectSpawnSystem_TextureOutOfRange(t *testing.T) {
	s, em := newSpawnSystem()
	doc := project.New()
	doc.Add(namedEffect("Fire", ""))
	bad := namedEffect("Bad", "")
	bad.SetTextureIndex(7)
	doc.Add(bad)
	doc.Add(namedEffect("After", ""))

	err := s.Spawn(doc)
	var texErr *TextureIndexError
	if !errors.As(err, &texErr) {
		t.Fatalf("Expected *TextureIndexError, got %v", err)
	}
	if texErr.Effect != "Bad" || texErr.Index != 7 || texErr.Count != 7 {
		t.Errorf("Unexpected error fields %+v", texErr)
	}

	if em.Count() != 2 {
		t.Errorf("Expected 2 entities left after abort, got %d", em.Count())
	}
	if s.Assets.Len() != 2 {
		t.Errorf("Expected 2 assets left after abort, got %d", s.Assets.Len())
	}
}

// TestEffectSpawnSystem_FullReplace tests that a second spawn removes the
// first pass's entities and assets
func TestEffectSpawnSystem_FullReplace(t *testing.T) {
	s, em := newSpawnSystem()
	doc := project.New()
	doc.Add(namedEffect("A", ""))
	doc.Add(namedEffect("B", "A"))

	if err := s.Spawn(doc); err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	first := s.Spawned()

	doc.Effects = doc.Effects[:1]
	if err := s.Spawn(doc); err != nil {
		t.Fatalf("Second spawn failed: %v", err)
	}

	if em.Count() != 1 {
		t.Errorf("Expected 1 entity after respawn, got %d", em.Count())
	}
	if s.Assets.Len() != 1 {
		t.Errorf("Expected 1 asset after respawn, got %d", s.Assets.Len())
	}
	for _, sp := range first {
		if em.Exists(sp.Entity) {
			t.Errorf("Entity %d from the first pass still exists", sp.Entity)
		}
		if _, ok := s.Assets.Get(sp.Handle); ok {
			t.Errorf("Asset %d from the first pass still registered", sp.Handle)
		}
	}
}

// TestEffectSpawnSystem_DuplicateNames tests that a child links to the nearest
// preceding effect of that name
func TestEffectSpawnSystem_DuplicateNames(t *testing.T) {
	s, _ := newSpawnSystem()
	sink := &diag.Collector{}
	s.Sink = sink

	doc := project.New()
	doc.Add(namedEffect("Spark", ""))
	doc.Add(namedEffect("Spark", ""))
	doc.Add(namedEffect("Trail", "Spark"))

	if err := s.Spawn(doc); err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	spawned := s.Spawned()
	parent, ok := s.ParentOf(spawned[2].Entity)
	if !ok || parent != spawned[1].Entity {
		t.Errorf("Trail parent = %d (%v), want %d", parent, ok, spawned[1].Entity)
	}
	if sink.Count(diag.KindDuplicateName) != 1 {
		t.Errorf("Expected 1 duplicate_name hazard, got %v", sink.Hazards)
	}
}

// TestEffectSpawnSystem_SpawnBundle tests spawning from an exported file
func TestEffectSpawnSystem_SpawnBundle(t *testing.T) {
	doc := project.New()
	doc.Add(namedEffect("Fire", ""))
	doc.Add(namedEffect("Smoke", "Fire"))

	out, err := project.Export(doc, filepath.Join(t.TempDir(), "fire"+project.Suffix))
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	bundle, err := particle.ParseBundle(out)
	if err != nil {
		t.Fatalf("ParseBundle failed: %v", err)
	}

	s, _ := newSpawnSystem()
	if err := s.SpawnBundle(bundle); err != nil {
		t.Fatalf("SpawnBundle failed: %v", err)
	}
	spawned := s.Spawned()
	if len(spawned) != 2 {
		t.Fatalf("Expected 2 spawned effects, got %d", len(spawned))
	}
	parent, ok := s.ParentOf(spawned[1].Entity)
	if !ok || parent != spawned[0].Entity {
		t.Error("Smoke should be linked to Fire")
	}

	want := effect.Compile(doc.Effects[1], nil)
	got := s.Assets.MustGet(spawned[1].Handle)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Bundled asset differs from a fresh compile:\n got %+v\nwant %+v", got, want)
	}
}

// TestEffectSpawnSystem_SelfParent tests that an effect naming itself as parent
// is linked to its own entity
func TestEffectSpawnSystem_SelfParent(t *testing.T) {
	s, _ := newSpawnSystem()
	sink := &diag.Collector{}
	s.Sink = sink

	doc := project.New()
	doc.Add(namedEffect("Loop", "Loop"))
	doc.Add(namedEffect("Spark", ""))
	doc.Add(namedEffect("Spark", "Spark"))

	if err := s.Spawn(doc); err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	spawned := s.Spawned()
	for _, i := range []int{0, 2} {
		parent, ok := s.ParentOf(spawned[i].Entity)
		if !ok || parent != spawned[i].Entity {
			t.Errorf("%s[%d] parent = %d (%v), want itself %d", spawned[i].Name, i, parent, ok, spawned[i].Entity)
		}
		if spawned[i].Link.Status != project.LinkSelf {
			t.Errorf("%s[%d] link status = %s, want %s", spawned[i].Name, i, spawned[i].Link.Status, project.LinkSelf)
		}
	}
	if sink.Count(diag.KindSelfParent) != 2 {
		t.Errorf("Expected 2 self_parent hazards, got %v", sink.Hazards)
	}
}
