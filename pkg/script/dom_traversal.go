package script

import (
	"github.com/dop251/goja"

	"htmlbox/pkg/layout"
)

func (e *elementAccessor) firstChild() goja.Value {
	children := e.box.Children()
	if len(children) == 0 {
		return goja.Null()
	}
	return e.ctx.elementProxy(children[0])
}

func (e *elementAccessor) lastChild() goja.Value {
	children := e.box.Children()
	if len(children) == 0 {
		return goja.Null()
	}
	return e.ctx.elementProxy(children[len(children)-1])
}

func (e *elementAccessor) firstElementChild() goja.Value {
	for _, c := range e.box.Children() {
		if !c.IsAnonymous() {
			return e.ctx.elementProxy(c)
		}
	}
	return goja.Null()
}

func (e *elementAccessor) lastElementChild() goja.Value {
	children := e.box.Children()
	for i := len(children) - 1; i >= 0; i-- {
		if !children[i].IsAnonymous() {
			return e.ctx.elementProxy(children[i])
		}
	}
	return goja.Null()
}

// sibling steps dir (+1 or -1) through the parent's children, optionally
// skipping text boxes.
func (e *elementAccessor) sibling(dir int, elementsOnly bool) goja.Value {
	parent := e.box.Parent()
	if parent == nil {
		return goja.Null()
	}
	children := parent.Children()
	idx := indexOf(children, e.box)
	if idx < 0 {
		return goja.Null()
	}
	for i := idx + dir; i >= 0 && i < len(children); i += dir {
		if !elementsOnly || !children[i].IsAnonymous() {
			return e.ctx.elementProxy(children[i])
		}
	}
	return goja.Null()
}

// nextSibling returns the first following sibling of b accepted by ok.
func nextSibling(b *layout.Box, ok func(*layout.Box) bool) *layout.Box {
	parent := b.Parent()
	if parent == nil {
		return nil
	}
	children := parent.Children()
	for i := indexOf(children, b) + 1; i > 0 && i < len(children); i++ {
		if ok(children[i]) {
			return children[i]
		}
	}
	return nil
}

func indexOf(boxes []*layout.Box, b *layout.Box) int {
	for i, c := range boxes {
		if c == b {
			return i
		}
	}
	return -1
}
