package script

import (
	"slices"
	"strconv"
	"strings"

	"github.com/dop251/goja"

	"htmlbox/pkg/layout"
)

// tokenList is element.classList: a live view of the class attribute.
type tokenList struct {
	ctx *domContext
	box *layout.Box
}

func newClassListProxy(ctx *domContext, b *layout.Box) goja.Value {
	return ctx.vm.NewDynamicObject(&tokenList{ctx: ctx, box: b})
}

// tokenMethods are the classList methods. Each receives the current tokens
// and returns its result plus the tokens to store, or nil to leave the
// attribute alone.
var tokenMethods = map[string]func(vm *goja.Runtime, tokens []string, args []goja.Value) (goja.Value, []string){
	"add": func(vm *goja.Runtime, tokens []string, args []goja.Value) (goja.Value, []string) {
		for _, a := range args {
			if t := a.String(); !slices.Contains(tokens, t) {
				tokens = append(tokens, t)
			}
		}
		return goja.Undefined(), tokens
	},
	"remove": func(vm *goja.Runtime, tokens []string, args []goja.Value) (goja.Value, []string) {
		for _, a := range args {
			t := a.String()
			tokens = slices.DeleteFunc(tokens, func(s string) bool { return s == t })
		}
		return goja.Undefined(), tokens
	},
	"toggle": func(vm *goja.Runtime, tokens []string, args []goja.Value) (goja.Value, []string) {
		if len(args) == 0 {
			panic(vm.NewTypeError("Failed to execute 'toggle' on 'DOMTokenList': 1 argument required"))
		}
		t := args[0].String()
		present := slices.Contains(tokens, t)
		want := !present
		if len(args) > 1 && !goja.IsUndefined(args[1]) {
			want = args[1].ToBoolean()
		}
		switch {
		case want && !present:
			tokens = append(tokens, t)
		case !want && present:
			tokens = slices.DeleteFunc(tokens, func(s string) bool { return s == t })
		}
		return vm.ToValue(want), tokens
	},
	"contains": func(vm *goja.Runtime, tokens []string, args []goja.Value) (goja.Value, []string) {
		return vm.ToValue(len(args) > 0 && slices.Contains(tokens, args[0].String())), nil
	},
	"replace": func(vm *goja.Runtime, tokens []string, args []goja.Value) (goja.Value, []string) {
		if len(args) < 2 {
			panic(vm.NewTypeError("Failed to execute 'replace' on 'DOMTokenList': 2 arguments required"))
		}
		i := slices.Index(tokens, args[0].String())
		if i < 0 {
			return vm.ToValue(false), nil
		}
		tokens[i] = args[1].String()
		return vm.ToValue(true), unique(tokens)
	},
	"item": func(vm *goja.Runtime, tokens []string, args []goja.Value) (goja.Value, []string) {
		if len(args) == 0 {
			return goja.Null(), nil
		}
		if i := int(args[0].ToInteger()); i >= 0 && i < len(tokens) {
			return vm.ToValue(tokens[i]), nil
		}
		return goja.Null(), nil
	},
	"toString": func(vm *goja.Runtime, tokens []string, args []goja.Value) (goja.Value, []string) {
		return vm.ToValue(strings.Join(tokens, " ")), nil
	},
}

// unique drops repeated tokens, keeping the first occurrence.
func unique(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	return slices.DeleteFunc(tokens, func(t string) bool {
		if seen[t] {
			return true
		}
		seen[t] = true
		return false
	})
}

func (l *tokenList) tokens() []string {
	v, _ := l.box.Attr("class")
	return strings.Fields(v)
}

func (l *tokenList) Get(key string) goja.Value {
	vm := l.ctx.vm
	if m, ok := tokenMethods[key]; ok {
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			res, tokens := m(vm, l.tokens(), call.Arguments)
			if tokens != nil && l.box.Tag != nil {
				l.box.Tag.Attrs["class"] = strings.Join(tokens, " ")
			}
			return res
		})
	}

	tokens := l.tokens()
	switch key {
	case "length":
		return vm.ToValue(len(tokens))
	case "value":
		return vm.ToValue(strings.Join(tokens, " "))
	}
	if i, err := strconv.Atoi(key); err == nil && i >= 0 && i < len(tokens) {
		return vm.ToValue(tokens[i])
	}
	return goja.Undefined()
}

func (l *tokenList) Set(key string, val goja.Value) bool {
	if key != "value" || l.box.Tag == nil {
		return false
	}
	l.box.Tag.Attrs["class"] = val.String()
	return true
}

func (l *tokenList) Has(key string) bool {
	if _, ok := tokenMethods[key]; ok || key == "length" || key == "value" {
		return true
	}
	i, err := strconv.Atoi(key)
	return err == nil && i >= 0 && i < len(l.tokens())
}

func (l *tokenList) Delete(string) bool { return false }

func (l *tokenList) Keys() []string {
	keys := make([]string, len(l.tokens()))
	for i := range keys {
		keys[i] = strconv.Itoa(i)
	}
	return keys
}
