// Package editor holds the editing state that outlives a single frame of the
// preview host: the expression clipboard, the cached effect names, list
// commands and the persisted session.
package editor

import (
	"github.com/decker502/omagari/pkg/expr"
	"github.com/decker502/omagari/pkg/project"
)

// Context is passed explicitly to every editing operation.
type Context struct {
	// Clipboard holds a copied expression tree, or nil when empty.
	Clipboard *expr.Node
	// Visible caches the document's effect names, refreshed once per frame.
	Visible []string
	// Filename is the project file the document is saved to.
	Filename string
}

// NewContext returns an empty context bound to filename.
func NewContext(filename string) *Context {
	return &Context{Filename: filename}
}

// Copy stores a deep copy of n in the clipboard.
func (c *Context) Copy(n expr.Node) {
	cp := n.Clone()
	c.Clipboard = &cp
}

// Paste returns a deep copy of the clipboard. Pasting twice yields two
// independent trees.
func (c *Context) Paste() (expr.Node, bool) {
	if c.Clipboard == nil {
		return expr.Node{}, false
	}
	return c.Clipboard.Clone(), true
}

// ClearClipboard empties the clipboard.
func (c *Context) ClearClipboard() {
	c.Clipboard = nil
}

// Refresh recomputes the visible names from doc.
func (c *Context) Refresh(doc *project.Document) {
	c.Visible = doc.Names()
}

// ParentCandidates lists the names effect i may pick as its parent: every
// visible name except its own. Names of effects listed after i are offered
// too; picking one leaves the effect unlinked until the order is changed.
func (c *Context) ParentCandidates(doc *project.Document, i int) []string {
	own := ""
	if i >= 0 && i < len(doc.Effects) {
		own = doc.Effects[i].Name
	}
	out := make([]string, 0, len(c.Visible))
	for _, name := range c.Visible {
		if name != own {
			out = append(out, name)
		}
	}
	return out
}
