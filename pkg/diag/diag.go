// Package diag carries non-fatal hazards found while compiling and spawning
// effects. Hazards never become errors; callers that want them pass a Sink,
// everyone else passes nil and the hazard is dropped.
package diag

import "fmt"

// Kind classifies a hazard.
type Kind string

const (
	// KindPlaceholder: an unset expression slot was compiled as literal 0.0.
	KindPlaceholder Kind = "placeholder"
	// KindGradientOrder: gradient keys are not in non-decreasing time order.
	KindGradientOrder Kind = "gradient_order"
	// KindUnresolvedParent: a parent name did not resolve to an earlier effect.
	KindUnresolvedParent Kind = "unresolved_parent"
	// KindDuplicateName: an effect reuses a name already taken earlier in the document.
	KindDuplicateName Kind = "duplicate_name"
	// KindCapacityExceeded: capacity is above the editor bound.
	KindCapacityExceeded Kind = "capacity_exceeded"
	// KindSelfParent: an effect names itself as its parent and is linked to itself.
	KindSelfParent Kind = "self_parent"
	// KindMisplacedModifier: a modifier sits in a list its kind does not belong to and was dropped.
	KindMisplacedModifier Kind = "misplaced_modifier"
	// KindUnknownModifier: a nil or foreign list entry was skipped.
	KindUnknownModifier Kind = "unknown_modifier"
)

// Hazard is one diagnostic.
type Hazard struct {
	Kind   Kind
	Effect string // Effect name, empty when not tied to one effect
	Path   string // Location inside the effect, e.g. "init[0].value"
	Detail string
}

func (h Hazard) String() string {
	loc := h.Effect
	if h.Path != "" {
		if loc != "" {
			loc += "."
		}
		loc += h.Path
	}
	if loc == "" {
		return fmt.Sprintf("%s: %s", h.Kind, h.Detail)
	}
	return fmt.Sprintf("%s at %s: %s", h.Kind, loc, h.Detail)
}

// Sink receives hazards.
type Sink interface {
	Report(h Hazard)
}

// Report forwards h to sink when sink is non-nil.
func Report(sink Sink, h Hazard) {
	if sink != nil {
		sink.Report(h)
	}
}

// Collector is a Sink that keeps hazards in report order.
type Collector struct {
	Hazards []Hazard
}

// Report appends h.
func (c *Collector) Report(h Hazard) {
	c.Hazards = append(c.Hazards, h)
}

// Count returns the number of collected hazards of kind k.
func (c *Collector) Count(k Kind) int {
	n := 0
	for _, h := range c.Hazards {
		if h.Kind == k {
			n++
		}
	}
	return n
}

// Reset drops all collected hazards.
func (c *Collector) Reset() {
	c.Hazards = nil
}

type discard struct{}

func (discard) Report(Hazard) {}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

// Prefixed returns a Sink that fills in Effect and prepends prefix to Path
// before forwarding to sink. It returns nil when sink is nil.
func Prefixed(sink Sink, effect, prefix string) Sink {
	if sink == nil {
		return nil
	}
	return prefixed{sink: sink, effect: effect, prefix: prefix}
}

type prefixed struct {
	sink   Sink
	effect string
	prefix string
}

func (p prefixed) Report(h Hazard) {
	if h.Effect == "" {
		h.Effect = p.effect
	}
	if p.prefix != "" {
		if h.Path == "" {
			h.Path = p.prefix
		} else {
			h.Path = p.prefix + "." + h.Path
		}
	}
	p.sink.Report(h)
}
