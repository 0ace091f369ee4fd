package effect

import (
	"fmt"
	"slices"

	"github.com/decker502/omagari/internal/particle"
	"github.com/decker502/omagari/pkg/diag"
	"github.com/decker502/omagari/pkg/modifier"
)

// ColorSlot is the texture slot every compiled effect samples from.
const ColorSlot = "color"

// Compile builds the runtime asset for d into a fresh module.
//
// Init, update and render lists are compiled in that order, each in authored
// order. A modifier whose kind does not belong to its list still writes its
// expressions into the module but emits no instruction. Every asset then ends with the same render tail: a literal uint 0
// texture slot expression, the "color" texture slot, a ParticleTexture
// sampling it with modulate_opacity_from_r, and Orient along_velocity.
//
// Compile is pure and deterministic. sink may be nil.
func Compile(d Descriptor, sink diag.Sink) *particle.EffectAsset {
	module := particle.NewModule()

	if d.Capacity > MaxCapacity {
		diag.Report(sink, diag.Hazard{
			Kind:   diag.KindCapacityExceeded,
			Effect: d.Name,
			Path:   "capacity",
			Detail: fmt.Sprintf("capacity %d exceeds %d", d.Capacity, MaxCapacity),
		})
	}

	initList := compileList(d.Name, "init", d.Init, modifier.InitKinds, module, sink)
	update := compileList(d.Name, "update", d.Update, modifier.UpdateKinds, module, sink)

	render := make([]particle.Instruction, 0, len(d.Render)+2)
	for i, r := range d.Render {
		if inst := modifier.CompileRender(r, diag.Prefixed(sink, d.Name, fmt.Sprintf("render[%d]", i))); inst != nil {
			render = append(render, inst)
		}
	}

	slot := module.Lit(particle.UintValue(0))
	module.AddTextureSlot(ColorSlot)

	var texture *int
	if d.TextureIndex != nil {
		t := *d.TextureIndex
		texture = &t
	}
	render = append(render,
		particle.ParticleTexture{
			TextureSlot:   slot,
			TextureIndex:  texture,
			SampleMapping: particle.SampleModulateOpacityFromR,
		},
		particle.Orient{Mode: particle.OrientAlongVelocity},
	)

	return &particle.EffectAsset{
		Name:      d.Name,
		Capacity:  d.Capacity,
		Spawner:   d.Spawner,
		Module:    module,
		Init:      initList,
		Update:    update,
		Render:    render,
		AlphaMode: particle.AlphaBlend,
	}
}

// compileList compiles mods in order and keeps the instructions whose kind
// belongs to the list. Expressions of a dropped modifier stay in module.
func compileList(name, list string, mods []modifier.Modifier, allowed []modifier.Kind, module *particle.Module, sink diag.Sink) []particle.Instruction {
	out := make([]particle.Instruction, 0, len(mods))
	for i, m := range mods {
		path := fmt.Sprintf("%s[%d]", list, i)
		inst := modifier.Compile(m, module, diag.Prefixed(sink, name, path))
		if inst == nil {
			continue
		}
		if k := m.Kind(); !slices.Contains(allowed, k) {
			diag.Report(sink, diag.Hazard{
				Kind:   diag.KindMisplacedModifier,
				Effect: name,
				Path:   path,
				Detail: fmt.Sprintf("%s does not belong in the %s list; dropped", modifier.Label(k), list),
			})
			continue
		}
		out = append(out, inst)
	}
	return out
}

// Compiler compiles effects and reports hazards to a shared sink.
type Compiler struct {
	Sink diag.Sink
}

// Compile compiles d, reporting to c.Sink.
func (c *Compiler) Compile(d Descriptor) *particle.EffectAsset {
	return Compile(d, c.Sink)
}
