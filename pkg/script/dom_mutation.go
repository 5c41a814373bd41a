package script

import (
	"github.com/dop251/goja"

	"htmlbox/pkg/layout"
)

// insert moves child under parent before ref, turning tree errors into
// script exceptions.
func (ctx *domContext) insert(method string, parent, child, ref *layout.Box) {
	if parent.HasText() {
		panic(ctx.vm.NewTypeError("Failed to execute '%s': text nodes cannot have children", method))
	}
	if err := child.SetParent(parent, ref); err != nil {
		panic(ctx.vm.NewTypeError("Failed to execute '%s': %v", method, err))
	}
}

func (e *elementAccessor) requireNode(method string, call goja.FunctionCall, i int) *layout.Box {
	if len(call.Arguments) <= i {
		panic(e.ctx.vm.NewTypeError("Failed to execute '%s': %d argument(s) required", method, i+1))
	}
	b := e.ctx.unwrapBox(call.Arguments[i])
	if b == nil {
		panic(e.ctx.vm.NewTypeError("Failed to execute '%s': parameter %d is not a Node", method, i+1))
	}
	return b
}

// optionalNode unwraps a reference argument where null means "at the end".
func (e *elementAccessor) optionalNode(call goja.FunctionCall, i int) *layout.Box {
	if len(call.Arguments) <= i || goja.IsNull(call.Arguments[i]) || goja.IsUndefined(call.Arguments[i]) {
		return nil
	}
	return e.ctx.unwrapBox(call.Arguments[i])
}

func (e *elementAccessor) appendChildFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.requireNode("appendChild", call, 0)
		e.ctx.insert("appendChild", e.box, child, nil)
		return e.ctx.elementProxy(child)
	}
}

func (e *elementAccessor) removeChildFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.requireNode("removeChild", call, 0)
		if child.Parent() != e.box {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'removeChild': The node to be removed is not a child of this node"))
		}
		child.Remove()
		return e.ctx.elementProxy(child)
	}
}

func (e *elementAccessor) insertBeforeFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.requireNode("insertBefore", call, 0)
		ref := e.optionalNode(call, 1)
		if ref == child {
			return e.ctx.elementProxy(child)
		}
		e.ctx.insert("insertBefore", e.box, child, ref)
		return e.ctx.elementProxy(child)
	}
}

func (e *elementAccessor) replaceChildFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.requireNode("replaceChild", call, 0)
		old := e.requireNode("replaceChild", call, 1)
		if old.Parent() != e.box {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'replaceChild': The node to be replaced is not a child of this node"))
		}
		if child != old {
			e.ctx.insert("replaceChild", e.box, child, old)
			old.Remove()
		}
		return e.ctx.elementProxy(old)
	}
}

// nodesArg converts variadic arguments; strings become text boxes.
func (e *elementAccessor) nodesArg(call goja.FunctionCall) []*layout.Box {
	nodes := make([]*layout.Box, 0, len(call.Arguments))
	for _, arg := range call.Arguments {
		nodes = append(nodes, e.ctx.nodeArg(arg))
	}
	return nodes
}

func (e *elementAccessor) appendFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		for _, n := range e.nodesArg(call) {
			e.ctx.insert("append", e.box, n, nil)
		}
		return goja.Undefined()
	}
}

func (e *elementAccessor) prependFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var first *layout.Box
		if children := e.box.Children(); len(children) > 0 {
			first = children[0]
		}
		for _, n := range e.nodesArg(call) {
			if n == first {
				continue
			}
			e.ctx.insert("prepend", e.box, n, first)
		}
		return goja.Undefined()
	}
}

func (e *elementAccessor) beforeFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parent := e.box.Parent()
		if parent == nil {
			return goja.Undefined()
		}
		for _, n := range e.nodesArg(call) {
			if n != e.box {
				e.ctx.insert("before", parent, n, e.box)
			}
		}
		return goja.Undefined()
	}
}

func (e *elementAccessor) afterFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parent := e.box.Parent()
		if parent == nil {
			return goja.Undefined()
		}
		nodes := e.nodesArg(call)
		ref := nextSibling(e.box, func(b *layout.Box) bool {
			for _, n := range nodes {
				if n == b {
					return false
				}
			}
			return true
		})
		for _, n := range nodes {
			if n != e.box {
				e.ctx.insert("after", parent, n, ref)
			}
		}
		return goja.Undefined()
	}
}

func (e *elementAccessor) replaceWithFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parent := e.box.Parent()
		if parent == nil {
			return goja.Undefined()
		}
		keep := false
		for _, n := range e.nodesArg(call) {
			if n == e.box {
				keep = true
				continue
			}
			e.ctx.insert("replaceWith", parent, n, e.box)
		}
		if !keep {
			e.box.Remove()
		}
		return goja.Undefined()
	}
}

func (e *elementAccessor) replaceChildrenFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		nodes := e.nodesArg(call)
		for _, c := range append([]*layout.Box(nil), e.box.Children()...) {
			c.Remove()
		}
		for _, n := range nodes {
			e.ctx.insert("replaceChildren", e.box, n, nil)
		}
		return goja.Undefined()
	}
}
