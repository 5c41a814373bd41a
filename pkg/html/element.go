package html

import (
	"htmlbox/pkg/css"
	"htmlbox/pkg/layout"
)

// element presents a tag-generated box to the selector matcher. Anonymous
// boxes the layout engine inserts are skipped when walking up.
type element struct {
	box *layout.Box
}

func (e element) TagName() string { return e.box.TagName() }

func (e element) Attribute(name string) (string, bool) { return e.box.Attr(name) }

func (e element) Parent() css.Element {
	for p := e.box.Parent(); p != nil; p = p.Parent() {
		if !p.IsAnonymous() {
			return element{box: p}
		}
	}
	return nil
}
