package particle

import "fmt"

// AlphaMode selects how rendered particles combine with the frame.
type AlphaMode string

const (
	AlphaBlend AlphaMode = "blend"
	AlphaAdd   AlphaMode = "add"
)

// EffectAsset is a compiled, runtime-ready effect. It carries no reference to
// the descriptor it was compiled from.
type EffectAsset struct {
	Name      string
	Capacity  uint32
	Spawner   SpawnerSettings
	Module    *Module
	Init      []Instruction
	Update    []Instruction
	Render    []Instruction
	AlphaMode AlphaMode
}

// InstructionCount returns the total number of instructions over all phases.
func (a *EffectAsset) InstructionCount() int {
	return len(a.Init) + len(a.Update) + len(a.Render)
}

// AssetHandle references an effect registered in an Assets registry.
// The zero handle is never issued.
type AssetHandle uint32

// Assets is the registry of compiled effects the simulation reads from.
type Assets struct {
	nextID AssetHandle
	assets map[AssetHandle]*EffectAsset
	order  []AssetHandle
}

// NewAssets returns an empty registry.
func NewAssets() *Assets {
	return &Assets{
		nextID: 1,
		assets: make(map[AssetHandle]*EffectAsset),
	}
}

// Add registers an asset and returns its handle.
func (r *Assets) Add(asset *EffectAsset) AssetHandle {
	h := r.nextID
	r.nextID++
	r.assets[h] = asset
	r.order = append(r.order, h)
	return h
}

// Get returns the asset registered under h.
func (r *Assets) Get(h AssetHandle) (*EffectAsset, bool) {
	a, ok := r.assets[h]
	return a, ok
}

// MustGet returns the asset registered under h or panics.
func (r *Assets) MustGet(h AssetHandle) *EffectAsset {
	a, ok := r.assets[h]
	if !ok {
		panic(fmt.Sprintf("particle: no asset registered for handle %d", h))
	}
	return a
}

// Remove unregisters h. Removing an unknown handle is a no-op.
func (r *Assets) Remove(h AssetHandle) {
	if _, ok := r.assets[h]; !ok {
		return
	}
	delete(r.assets, h)
	for i, id := range r.order {
		if id == h {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Handles returns the registered handles in registration order.
func (r *Assets) Handles() []AssetHandle {
	out := make([]AssetHandle, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered assets.
func (r *Assets) Len() int {
	return len(r.assets)
}

// Clear unregisters every asset. Handles keep increasing across clears so a
// stale handle never aliases a new asset.
func (r *Assets) Clear() {
	r.assets = make(map[AssetHandle]*EffectAsset)
	r.order = nil
}
