package systems

import (
	"log"
	"reflect"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/omagari/internal/particle"
	"github.com/decker502/omagari/pkg/components"
	"github.com/decker502/omagari/pkg/diag"
	"github.com/decker502/omagari/pkg/ecs"
	"github.com/decker502/omagari/pkg/effect"
	"github.com/decker502/omagari/pkg/project"
)

// verbose gates per-effect log lines. The host sets it from config.
var verbose bool

// SetVerbose enables per-effect spawn logging.
func SetVerbose(v bool) {
	verbose = v
}

// TextureIndexError is returned when an effect references a texture outside
// the texture table.
type TextureIndexError = project.TextureIndexError

// SpawnedEffect records one entity created by the last spawn pass.
type SpawnedEffect struct {
	Entity ecs.EntityID
	Name   string
	Handle particle.AssetHandle
	Link   project.Link
}

// EffectSpawnSystem turns a project document (or an exported bundle) into
// scene entities backed by compiled assets.
//
// Every pass is a full replace: entities and assets from the previous pass
// are removed before anything new is created.
type EffectSpawnSystem struct {
	EntityManager *ecs.EntityManager
	Assets        *particle.Assets
	Textures      []*ebiten.Image

	// Sink receives compile and resolution hazards. Nil keeps them silent.
	Sink diag.Sink

	spawned []SpawnedEffect
}

// NewEffectSpawnSystem creates a spawn system over the given entity store,
// asset registry and texture table.
func NewEffectSpawnSystem(em *ecs.EntityManager, assets *particle.Assets, textures []*ebiten.Image) *EffectSpawnSystem {
	if assets == nil {
		assets = particle.NewAssets()
	}
	return &EffectSpawnSystem{
		EntityManager: em,
		Assets:        assets,
		Textures:      textures,
	}
}

// Spawned returns the effects created by the last pass, in document order.
func (s *EffectSpawnSystem) Spawned() []SpawnedEffect {
	out := make([]SpawnedEffect, len(s.spawned))
	copy(out, s.spawned)
	return out
}

// Despawn removes every entity and asset created by the previous pass.
func (s *EffectSpawnSystem) Despawn() {
	for _, sp := range s.spawned {
		s.EntityManager.DestroyEntity(sp.Entity)
		s.Assets.Remove(sp.Handle)
	}
	s.EntityManager.RemoveMarkedEntities()
	if len(s.spawned) > 0 && verbose {
		log.Printf("[EffectSpawnSystem] Despawned %d effects", len(s.spawned))
	}
	s.spawned = nil
}

// Spawn compiles every effect of doc in order and creates its entity.
//
// Parents are linked by name to an effect that appears earlier in the
// document, or to the effect itself when it names itself. An out-of-range texture index returns a *TextureIndexError at
// once; effects spawned before it stay in the scene.
func (s *EffectSpawnSystem) Spawn(doc *project.Document) error {
	s.Despawn()

	links := project.ResolveReport(doc, s.Sink)
	for i := range doc.Effects {
		d := doc.Effects[i]
		asset := effect.Compile(d, s.Sink)
		if err := s.spawnOne(asset, d.TextureIndex, links[i]); err != nil {
			return err
		}
	}

	log.Printf("[EffectSpawnSystem] Spawned %d effects, %d assets registered", len(s.spawned), s.Assets.Len())
	return nil
}

// SpawnBundle performs the same pass as Spawn over an exported bundle whose
// assets are already compiled.
func (s *EffectSpawnSystem) SpawnBundle(b *particle.Bundle) error {
	s.Despawn()

	entries := make([]project.Entry, len(b.Effects))
	for i, e := range b.Effects {
		entries[i] = project.Entry{Name: e.Name, Parent: e.Parent}
	}
	links := project.ResolveEntries(entries, s.Sink)

	for i, e := range b.Effects {
		if err := s.spawnOne(e.Asset, e.TextureIndex, links[i]); err != nil {
			return err
		}
	}

	log.Printf("[EffectSpawnSystem] Spawned %d bundled effects", len(s.spawned))
	return nil
}

func (s *EffectSpawnSystem) spawnOne(asset *particle.EffectAsset, textureIndex *int, link project.Link) error {
	handle := s.Assets.Add(asset)

	id := s.EntityManager.CreateEntity()
	s.EntityManager.AddComponent(id, &components.NameComponent{Name: link.Name})
	s.EntityManager.AddComponent(id, components.IdentityTransform())
	s.EntityManager.AddComponent(id, &components.ParticleEffectComponent{Handle: handle})
	s.spawned = append(s.spawned, SpawnedEffect{
		Entity: id,
		Name:   link.Name,
		Handle: handle,
		Link:   link,
	})

	if err := project.CheckTexture(link.Name, textureIndex, len(s.Textures)); err != nil {
		log.Printf("[EffectSpawnSystem] ERROR: %v", err)
		return err
	}
	if textureIndex != nil {
		s.EntityManager.AddComponent(id, &components.MaterialComponent{
			TextureIndex: *textureIndex,
			Image:        s.Textures[*textureIndex],
		})
	}

	if link.Parent >= 0 {
		parent := s.spawned[link.Parent].Entity
		s.EntityManager.AddComponent(id, &components.EffectParentComponent{Parent: parent})
		if verbose {
			log.Printf("[EffectSpawnSystem] %q -> parent %q (entity %d)", link.Name, link.ParentName, parent)
		}
	} else if verbose && link.Status != project.LinkNone {
		log.Printf("[EffectSpawnSystem] %q: parent %q not linked (%s)", link.Name, link.ParentName, link.Status)
	}

	if verbose {
		log.Printf("[EffectSpawnSystem] Spawned %q: entity=%d handle=%d instructions=%d",
			link.Name, id, handle, asset.InstructionCount())
	}
	return nil
}

// ParentOf returns the parent entity of id, if it has one.
func (s *EffectSpawnSystem) ParentOf(id ecs.EntityID) (ecs.EntityID, bool) {
	comp, ok := s.EntityManager.GetComponent(id, reflect.TypeOf(&components.EffectParentComponent{}))
	if !ok {
		return 0, false
	}
	return comp.(*components.EffectParentComponent).Parent, true
}
