package editor

import (
	"reflect"
	"testing"

	"github.com/decker502/omagari/internal/particle"
	"github.com/decker502/omagari/pkg/effect"
	"github.com/decker502/omagari/pkg/expr"
	"github.com/decker502/omagari/pkg/project"
)

func docWith(names ...string) *project.Document {
	doc := project.New()
	for _, n := range names {
		d := effect.New()
		d.Name = n
		doc.Add(d)
	}
	return doc
}

// TestContext_CopyPaste tests that pasted trees are independent deep copies
func TestContext_CopyPaste(t *testing.T) {
	ctx := NewContext("fire" + project.Suffix)
	if _, ok := ctx.Paste(); ok {
		t.Fatal("Empty clipboard should not paste")
	}

	src := expr.Add(expr.Attr(particle.AttrPosition), expr.Vec3(particle.Vec3{0, 1, 0}))
	ctx.Copy(src)
	src.Args[0] = expr.Float(9)

	a, ok := ctx.Paste()
	if !ok {
		t.Fatal("Paste failed")
	}
	b, _ := ctx.Paste()
	if a.Args[0].Kind != expr.KindAttr {
		t.Errorf("Clipboard changed with the source: %v", a)
	}

	a.Args[1] = expr.Placeholder()
	if !reflect.DeepEqual(b, expr.Add(expr.Attr(particle.AttrPosition), expr.Vec3(particle.Vec3{0, 1, 0}))) {
		t.Errorf("Second paste changed with the first: %v", b)
	}

	ctx.ClearClipboard()
	if _, ok := ctx.Paste(); ok {
		t.Error("Cleared clipboard should not paste")
	}
}

// TestContext_ParentCandidates tests that an effect is never offered itself
func TestContext_ParentCandidates(t *testing.T) {
	doc := docWith("Fire", "Smoke", "Sparks")
	ctx := NewContext("")
	ctx.Refresh(doc)

	got := ctx.ParentCandidates(doc, 1)
	want := []string{"Fire", "Sparks"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParentCandidates(1) = %v, want %v", got, want)
	}

	doc.Effects[2].Name = "Embers"
	if got := ctx.ParentCandidates(doc, 0); !reflect.DeepEqual(got, []string{"Smoke", "Sparks"}) {
		t.Errorf("Candidates should use the cached names until Refresh, got %v", got)
	}
	ctx.Refresh(doc)
	if got := ctx.ParentCandidates(doc, 0); !reflect.DeepEqual(got, []string{"Smoke", "Embers"}) {
		t.Errorf("Candidates after Refresh = %v", got)
	}
}
