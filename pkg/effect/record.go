package effect

import (
	"fmt"

	"github.com/decker502/omagari/internal/particle"
	"github.com/decker502/omagari/pkg/modifier"
)

// Record is the file form of a Descriptor.
type Record struct {
	Name            string                   `yaml:"name" json:"name"`
	Parent          *string                  `yaml:"parent,omitempty" json:"parent,omitempty"`
	Capacity        uint32                   `yaml:"capacity" json:"capacity"`
	SpawnerSettings particle.SpawnerSettings `yaml:"spawner_settings" json:"spawner_settings"`
	TextureIndex    *int                     `yaml:"texture_index,omitempty" json:"texture_index,omitempty"`
	InitModifiers   []modifier.Record        `yaml:"init_modifiers" json:"init_modifiers"`
	UpdateModifiers []modifier.Record        `yaml:"update_modifiers" json:"update_modifiers"`
	RenderModifiers []modifier.RenderRecord  `yaml:"render_modifiers" json:"render_modifiers"`
}

// ToRecord converts d to its file form.
func ToRecord(d Descriptor) Record {
	r := Record{
		Name:            d.Name,
		Parent:          d.Parent,
		Capacity:        d.Capacity,
		SpawnerSettings: d.Spawner,
		TextureIndex:    d.TextureIndex,
		InitModifiers:   records(d.Init),
		UpdateModifiers: records(d.Update),
		RenderModifiers: make([]modifier.RenderRecord, 0, len(d.Render)),
	}
	for _, m := range d.Render {
		if _, ok := modifier.NormalizeRender(m); ok {
			r.RenderModifiers = append(r.RenderModifiers, modifier.ToRenderRecord(m))
		}
	}
	return r
}

// records 跳过 nil 和未知条目，保证写出的文件可以重新加载
func records(mods []modifier.Modifier) []modifier.Record {
	out := make([]modifier.Record, 0, len(mods))
	for _, m := range mods {
		if _, ok := modifier.Normalize(m); ok {
			out = append(out, modifier.ToRecord(m))
		}
	}
	return out
}

// FromRecord converts a file record into a Descriptor.
func FromRecord(r Record) (Descriptor, error) {
	d := Descriptor{
		Name:         r.Name,
		Parent:       r.Parent,
		Capacity:     r.Capacity,
		Spawner:      r.SpawnerSettings,
		TextureIndex: r.TextureIndex,
		Init:         make([]modifier.Modifier, 0, len(r.InitModifiers)),
		Update:       make([]modifier.Modifier, 0, len(r.UpdateModifiers)),
		Render:       make([]modifier.RenderModifier, 0, len(r.RenderModifiers)),
	}
	if d.TextureIndex != nil && *d.TextureIndex < 0 {
		return d, fmt.Errorf("effect %q: negative texture_index %d", r.Name, *d.TextureIndex)
	}
	for i, mr := range r.InitModifiers {
		m, err := modifier.FromRecord(mr)
		if err != nil {
			return d, fmt.Errorf("effect %q: init_modifiers[%d]: %w", r.Name, i, err)
		}
		d.Init = append(d.Init, m)
	}
	for i, mr := range r.UpdateModifiers {
		m, err := modifier.FromRecord(mr)
		if err != nil {
			return d, fmt.Errorf("effect %q: update_modifiers[%d]: %w", r.Name, i, err)
		}
		d.Update = append(d.Update, m)
	}
	for i, rr := range r.RenderModifiers {
		m, err := modifier.FromRenderRecord(rr)
		if err != nil {
			return d, fmt.Errorf("effect %q: render_modifiers[%d]: %w", r.Name, i, err)
		}
		d.Render = append(d.Render, m)
	}
	return d, nil
}
