// Package effect defines the editable effect descriptor and compiles it into
// a runtime particle.EffectAsset.
package effect

import (
	"github.com/decker502/omagari/internal/particle"
	"github.com/decker502/omagari/pkg/modifier"
)

const (
	// DefaultName is given to effects created from the editor.
	DefaultName = "Name your effect"
	// MaxCapacity is the upper bound the editor offers for Capacity.
	MaxCapacity uint32 = 16384
	// DefaultRate is the spawn rate, in particles per second, of a new effect.
	DefaultRate float32 = 500
)

// Descriptor is one editable effect.
//
// Name is the identity key other effects reference through Parent. The
// parent reference is resolved by name at spawn time and depends on document
// order; see project.Resolve.
type Descriptor struct {
	Name         string
	Parent       *string
	Capacity     uint32
	Spawner      particle.SpawnerSettings
	TextureIndex *int
	Init         []modifier.Modifier
	Update       []modifier.Modifier
	Render       []modifier.RenderModifier
}

// New returns an effect as the editor creates it.
func New() Descriptor {
	texture := 0
	return Descriptor{
		Name:         DefaultName,
		Capacity:     MaxCapacity,
		Spawner:      particle.Rate(DefaultRate),
		TextureIndex: &texture,
		Init:         []modifier.Modifier{},
		Update:       []modifier.Modifier{},
		Render:       []modifier.RenderModifier{},
	}
}

// ParentName returns the parent name, or "" when none is set.
func (d *Descriptor) ParentName() string {
	if d.Parent == nil {
		return ""
	}
	return *d.Parent
}

// SetParent sets the parent name; an empty name clears it.
func (d *Descriptor) SetParent(name string) {
	if name == "" {
		d.Parent = nil
		return
	}
	d.Parent = &name
}

// SetTextureIndex sets the texture index; a negative index clears it.
func (d *Descriptor) SetTextureIndex(i int) {
	if i < 0 {
		d.TextureIndex = nil
		return
	}
	d.TextureIndex = &i
}

// Clone returns a deep copy of d.
func (d Descriptor) Clone() Descriptor {
	c := d
	if d.Parent != nil {
		p := *d.Parent
		c.Parent = &p
	}
	if d.TextureIndex != nil {
		t := *d.TextureIndex
		c.TextureIndex = &t
	}
	if d.Init != nil {
		c.Init = make([]modifier.Modifier, len(d.Init))
		for i, m := range d.Init {
			c.Init[i] = modifier.Clone(m)
		}
	}
	if d.Update != nil {
		c.Update = make([]modifier.Modifier, len(d.Update))
		for i, m := range d.Update {
			c.Update[i] = modifier.Clone(m)
		}
	}
	if d.Render != nil {
		c.Render = make([]modifier.RenderModifier, len(d.Render))
		for i, r := range d.Render {
			c.Render[i] = modifier.CloneRender(r)
		}
	}
	return c
}
