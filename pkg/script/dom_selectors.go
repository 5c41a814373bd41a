package script

import (
	"github.com/dop251/goja"

	"htmlbox/pkg/css"
	"htmlbox/pkg/html"
	"htmlbox/pkg/layout"
)

// registerQuerySelectors adds querySelector/querySelectorAll to a document object.
func registerQuerySelectors(ctx *domContext, obj *goja.Object, root *layout.Box) {
	obj.Set("querySelector", querySelectorFn(ctx, root))
	obj.Set("querySelectorAll", querySelectorAllFn(ctx, root))
}

func selectorArg(ctx *domContext, method string, call goja.FunctionCall) string {
	if len(call.Arguments) == 0 {
		panic(ctx.vm.NewTypeError("Failed to execute '%s': 1 argument required", method))
	}
	return call.Arguments[0].String()
}

func querySelectorFn(ctx *domContext, root *layout.Box) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		found := queryAll(ctx, "querySelector", root, selectorArg(ctx, "querySelector", call))
		if len(found) == 0 {
			return goja.Null()
		}
		return ctx.elementProxy(found[0])
	}
}

func querySelectorAllFn(ctx *domContext, root *layout.Box) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		return ctx.elementArray(queryAll(ctx, "querySelectorAll", root, selectorArg(ctx, "querySelectorAll", call)))
	}
}

func queryAll(ctx *domContext, method string, root *layout.Box, selectors string) []*layout.Box {
	found, err := html.QuerySelectorAll(root, selectors)
	if err != nil {
		panic(ctx.vm.NewTypeError("Failed to execute '%s': '%s' is not a valid selector", method, selectors))
	}
	return found
}

func matchesFn(ctx *domContext, b *layout.Box) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		sels := selectorList(ctx.vm, "matches", selectorArg(ctx, "matches", call))
		return ctx.vm.ToValue(!b.IsAnonymous() && matchesAny(b, sels))
	}
}

func closestFn(ctx *domContext, b *layout.Box) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		sels := selectorList(ctx.vm, "closest", selectorArg(ctx, "closest", call))
		for cur := b; cur != nil; cur = cur.Parent() {
			if !cur.IsAnonymous() && matchesAny(cur, sels) {
				return ctx.elementProxy(cur)
			}
		}
		return goja.Null()
	}
}

func matchesAny(b *layout.Box, sels []css.Selector) bool {
	for _, sel := range sels {
		if html.MatchSelector(b, sel) {
			return true
		}
	}
	return false
}
