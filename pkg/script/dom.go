package script

import (
	"strings"
	"unicode"

	"github.com/dop251/goja"

	"htmlbox/pkg/css"
	"htmlbox/pkg/html"
	"htmlbox/pkg/layout"
)

// domContext holds the bindings of one document. The same JS object is
// returned for the same box so === identity holds.
type domContext struct {
	vm      *goja.Runtime
	doc     *html.Document
	proxies map[*layout.Box]*goja.Object
	boxes   map[*goja.Object]*layout.Box
}

func newDOMContext(vm *goja.Runtime, doc *html.Document) *domContext {
	return &domContext{
		vm:      vm,
		doc:     doc,
		proxies: make(map[*layout.Box]*goja.Object),
		boxes:   make(map[*goja.Object]*layout.Box),
	}
}

// registerDocument sets up the global document object.
func registerDocument(vm *goja.Runtime, doc *html.Document) *domContext {
	ctx := newDOMContext(vm, doc)

	docObj := vm.NewObject()
	docObj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		return ctx.proxyOrNull(doc.ElementByID(call.Arguments[0].String()))
	})
	docObj.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return ctx.elementArray(nil)
		}
		return ctx.elementArray(html.ElementsByTagName(doc.Root, call.Arguments[0].String()))
	})
	docObj.Set("getElementsByClassName", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return ctx.elementArray(nil)
		}
		return ctx.elementArray(html.ElementsByClassName(doc.Root, call.Arguments[0].String()))
	})
	docObj.Set("createElement", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("Failed to execute 'createElement' on 'Document': 1 argument required"))
		}
		b, err := layout.CreateBox(nil, layout.NewTag(call.Arguments[0].String(), nil), nil)
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return ctx.elementProxy(b)
	})
	docObj.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		text := ""
		if len(call.Arguments) > 0 {
			text = call.Arguments[0].String()
		}
		return ctx.elementProxy(html.NewTextBox(text))
	})
	registerQuerySelectors(ctx, docObj, doc.Root)
	registerDocumentProperties(ctx, docObj, doc)

	vm.Set("document", docObj)
	return ctx
}

func registerDocumentProperties(ctx *domContext, docObj *goja.Object, doc *html.Document) {
	getter := func(name string, fn func() goja.Value) {
		_ = docObj.DefineAccessorProperty(name, ctx.vm.ToValue(func(goja.FunctionCall) goja.Value {
			return fn()
		}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	}
	getter("documentElement", func() goja.Value { return ctx.proxyOrNull(doc.Root) })
	getter("body", func() goja.Value { return ctx.proxyOrNull(doc.Body()) })
	getter("head", func() goja.Value {
		for _, c := range doc.Root.Children() {
			if c.TagName() == "head" {
				return ctx.elementProxy(c)
			}
		}
		return goja.Null()
	})
	getter("title", func() goja.Value { return ctx.vm.ToValue(doc.Title) })
}

// elementArray creates a JS array of proxies.
func (ctx *domContext) elementArray(boxes []*layout.Box) goja.Value {
	vals := make([]any, len(boxes))
	for i, b := range boxes {
		vals[i] = ctx.elementProxy(b)
	}
	return ctx.vm.NewArray(vals...)
}

func (ctx *domContext) proxyOrNull(b *layout.Box) goja.Value {
	if b == nil {
		return goja.Null()
	}
	return ctx.elementProxy(b)
}

// elementProxy creates (or retrieves) the JS object wrapping a box.
func (ctx *domContext) elementProxy(b *layout.Box) goja.Value {
	if v, ok := ctx.proxies[b]; ok {
		return v
	}
	obj := ctx.vm.NewDynamicObject(&elementAccessor{ctx: ctx, box: b})
	ctx.proxies[b] = obj
	ctx.boxes[obj] = b
	return obj
}

// unwrapBox returns the box behind a proxy, or nil for any other value.
func (ctx *domContext) unwrapBox(val goja.Value) *layout.Box {
	obj, ok := val.(*goja.Object)
	if !ok {
		return nil
	}
	return ctx.boxes[obj]
}

// nodeArg unwraps a proxy or turns any other value into a text box.
func (ctx *domContext) nodeArg(val goja.Value) *layout.Box {
	if b := ctx.unwrapBox(val); b != nil {
		return b
	}
	return html.NewTextBox(val.String())
}

// elementAccessor intercepts property access on element and text proxies.
type elementAccessor struct {
	ctx *domContext
	box *layout.Box
}

func (e *elementAccessor) isText() bool { return e.box.HasText() }

func (e *elementAccessor) attr(name string) (string, bool) {
	return e.box.Attr(name)
}

func (e *elementAccessor) setAttr(name, val string) {
	if e.box.Tag == nil {
		return
	}
	e.box.Tag.Attrs[strings.ToLower(name)] = val
}

func (e *elementAccessor) removeAttr(name string) {
	if e.box.Tag == nil {
		return
	}
	delete(e.box.Tag.Attrs, strings.ToLower(name))
}

func (e *elementAccessor) Get(key string) goja.Value {
	vm := e.ctx.vm

	switch key {
	case "nodeType":
		if e.isText() {
			return vm.ToValue(3)
		}
		return vm.ToValue(1)
	case "nodeName":
		if e.isText() {
			return vm.ToValue("#text")
		}
		return vm.ToValue(strings.ToUpper(e.box.TagName()))
	case "nodeValue", "data":
		if e.isText() {
			return vm.ToValue(html.TextContent(e.box))
		}
		return goja.Null()
	case "tagName":
		if e.isText() {
			return goja.Undefined()
		}
		return vm.ToValue(strings.ToUpper(e.box.TagName()))
	case "id":
		id, _ := e.attr("id")
		return vm.ToValue(id)
	case "className":
		cls, _ := e.attr("class")
		return vm.ToValue(cls)
	case "textContent":
		return vm.ToValue(html.TextContent(e.box))
	case "getAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return goja.Null()
			}
			val, ok := e.attr(strings.ToLower(call.Arguments[0].String()))
			if !ok {
				return goja.Null()
			}
			return vm.ToValue(val)
		})
	case "setAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 2 {
				panic(vm.NewTypeError("Failed to execute 'setAttribute': 2 arguments required"))
			}
			e.setAttr(call.Arguments[0].String(), call.Arguments[1].String())
			return goja.Undefined()
		})
	case "hasAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return vm.ToValue(false)
			}
			_, ok := e.attr(strings.ToLower(call.Arguments[0].String()))
			return vm.ToValue(ok)
		})
	case "removeAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) > 0 {
				e.removeAttr(call.Arguments[0].String())
			}
			return goja.Undefined()
		})
	case "children":
		return e.ctx.elementArray(elementChildren(e.box))
	case "childNodes":
		return e.ctx.elementArray(e.box.Children())
	case "parentElement", "parentNode":
		return e.ctx.proxyOrNull(e.box.Parent())
	case "style":
		if e.isText() {
			return goja.Undefined()
		}
		return e.ctx.vm.NewDynamicObject(&styleAccessor{ctx: e.ctx, box: e.box})
	case "classList":
		if e.isText() {
			return goja.Undefined()
		}
		return newClassListProxy(e.ctx, e.box)

	case "appendChild":
		return vm.ToValue(e.appendChildFn())
	case "removeChild":
		return vm.ToValue(e.removeChildFn())
	case "insertBefore":
		return vm.ToValue(e.insertBeforeFn())
	case "replaceChild":
		return vm.ToValue(e.replaceChildFn())
	case "innerHTML":
		return vm.ToValue(html.Serialize(e.box))
	case "outerHTML":
		return vm.ToValue(html.SerializeOuter(e.box))

	case "firstChild":
		return e.firstChild()
	case "lastChild":
		return e.lastChild()
	case "firstElementChild":
		return e.firstElementChild()
	case "lastElementChild":
		return e.lastElementChild()
	case "nextSibling":
		return e.sibling(1, false)
	case "previousSibling":
		return e.sibling(-1, false)
	case "nextElementSibling":
		return e.sibling(1, true)
	case "previousElementSibling":
		return e.sibling(-1, true)
	case "childElementCount":
		return vm.ToValue(len(elementChildren(e.box)))

	case "querySelector":
		return vm.ToValue(querySelectorFn(e.ctx, e.box))
	case "querySelectorAll":
		return vm.ToValue(querySelectorAllFn(e.ctx, e.box))
	case "matches":
		return vm.ToValue(matchesFn(e.ctx, e.box))
	case "closest":
		return vm.ToValue(closestFn(e.ctx, e.box))

	case "remove":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			e.box.Remove()
			return goja.Undefined()
		})
	case "append":
		return vm.ToValue(e.appendFn())
	case "prepend":
		return vm.ToValue(e.prependFn())
	case "before":
		return vm.ToValue(e.beforeFn())
	case "after":
		return vm.ToValue(e.afterFn())
	case "replaceWith":
		return vm.ToValue(e.replaceWithFn())
	case "replaceChildren":
		return vm.ToValue(e.replaceChildrenFn())

	case "cloneNode":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			deep := len(call.Arguments) > 0 && call.Arguments[0].ToBoolean()
			return e.ctx.proxyOrNull(html.CloneBox(e.box, deep))
		})
	case "contains":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return vm.ToValue(false)
			}
			other := e.ctx.unwrapBox(call.Arguments[0])
			return vm.ToValue(other != nil && contains(e.box, other))
		})
	case "hasChildNodes":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(len(e.box.Children()) > 0)
		})
	case "getElementsByTagName":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return e.ctx.elementArray(nil)
			}
			return e.ctx.elementArray(html.ElementsByTagName(e.box, call.Arguments[0].String()))
		})
	case "getElementsByClassName":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return e.ctx.elementArray(nil)
			}
			return e.ctx.elementArray(html.ElementsByClassName(e.box, call.Arguments[0].String()))
		})
	}
	return goja.Undefined()
}

func (e *elementAccessor) Set(key string, val goja.Value) bool {
	switch key {
	case "textContent":
		html.SetTextContent(e.box, val.String())
		return true
	case "nodeValue", "data":
		if e.isText() {
			html.SetTextContent(e.box, val.String())
		}
		return true
	case "className":
		e.setAttr("class", val.String())
		return true
	case "id":
		e.setAttr("id", val.String())
		return true
	case "innerHTML":
		if err := e.ctx.doc.ParseFragment(e.box, val.String()); err != nil {
			panic(e.ctx.vm.NewGoError(err))
		}
		return true
	}
	return false
}

var elementKeys = []string{
	"tagName", "nodeName", "nodeType", "nodeValue", "data", "id", "className",
	"textContent", "innerHTML", "outerHTML",
	"getAttribute", "setAttribute", "hasAttribute", "removeAttribute",
	"children", "childNodes", "parentElement", "parentNode", "style", "classList",
	"appendChild", "removeChild", "insertBefore", "replaceChild",
	"firstChild", "lastChild", "firstElementChild", "lastElementChild",
	"nextSibling", "previousSibling", "nextElementSibling", "previousElementSibling",
	"childElementCount",
	"querySelector", "querySelectorAll", "matches", "closest",
	"remove", "append", "prepend", "before", "after", "replaceWith", "replaceChildren",
	"cloneNode", "contains", "hasChildNodes",
	"getElementsByTagName", "getElementsByClassName",
}

var elementKeySet = func() map[string]bool {
	m := make(map[string]bool, len(elementKeys))
	for _, k := range elementKeys {
		m[k] = true
	}
	return m
}()

func (e *elementAccessor) Has(key string) bool { return elementKeySet[key] }

func (e *elementAccessor) Delete(key string) bool { return false }

func (e *elementAccessor) Keys() []string { return elementKeys }

func elementChildren(b *layout.Box) []*layout.Box {
	var out []*layout.Box
	for _, c := range b.Children() {
		if !c.IsAnonymous() {
			out = append(out, c)
		}
	}
	return out
}

func contains(b, other *layout.Box) bool {
	for x := other; x != nil; x = x.Parent() {
		if x == b {
			return true
		}
	}
	return false
}

// styleAccessor maps camelCase property access onto the style attribute.
// Reads see only inline declarations.
type styleAccessor struct {
	ctx *domContext
	box *layout.Box
}

func (s *styleAccessor) Get(key string) goja.Value {
	switch key {
	case "cssText":
		v, _ := s.box.Attr("style")
		return s.ctx.vm.ToValue(v)
	case "getPropertyValue":
		return s.ctx.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return s.ctx.vm.ToValue("")
			}
			return s.ctx.vm.ToValue(s.declared(call.Arguments[0].String()))
		})
	case "setProperty":
		return s.ctx.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) >= 2 {
				s.set(call.Arguments[0].String(), call.Arguments[1].String())
			}
			return goja.Undefined()
		})
	case "removeProperty":
		return s.ctx.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return s.ctx.vm.ToValue("")
			}
			prop := call.Arguments[0].String()
			old := s.declared(prop)
			s.set(prop, "")
			return s.ctx.vm.ToValue(old)
		})
	}
	return s.ctx.vm.ToValue(s.declared(camelToKebab(key)))
}

func (s *styleAccessor) declared(prop string) string {
	v, _ := s.box.Attr("style")
	return parseInlineStyle(v).get(prop)
}

func (s *styleAccessor) set(prop, val string) {
	if s.box.Tag == nil {
		return
	}
	cur, _ := s.box.Attr("style")
	decls := parseInlineStyle(cur)
	decls.set(prop, strings.TrimSpace(val))
	if text := decls.String(); text != "" {
		s.box.Tag.Attrs["style"] = text
	} else {
		delete(s.box.Tag.Attrs, "style")
	}
}

func (s *styleAccessor) Set(key string, val goja.Value) bool {
	if key == "cssText" {
		if s.box.Tag != nil {
			s.box.Tag.Attrs["style"] = val.String()
		}
		return true
	}
	s.set(camelToKebab(key), val.String())
	return true
}

func (s *styleAccessor) Has(key string) bool { return true }

func (s *styleAccessor) Delete(key string) bool {
	s.set(camelToKebab(key), "")
	return true
}

func (s *styleAccessor) Keys() []string {
	v, _ := s.box.Attr("style")
	decls := parseInlineStyle(v)
	keys := make([]string, len(decls))
	for i, d := range decls {
		keys[i] = d.prop
	}
	return keys
}

type declaration struct{ prop, value string }

// declarations keeps the source order of a style attribute.
type declarations []declaration

func parseInlineStyle(s string) declarations {
	var out declarations
	for _, decl := range strings.Split(s, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		out.set(strings.ToLower(strings.TrimSpace(prop)), strings.TrimSpace(val))
	}
	return out
}

func (d declarations) get(prop string) string {
	for _, x := range d {
		if x.prop == prop {
			return x.value
		}
	}
	return ""
}

func (d *declarations) set(prop, val string) {
	for i, x := range *d {
		if x.prop == prop {
			if val == "" {
				*d = append((*d)[:i], (*d)[i+1:]...)
			} else {
				(*d)[i].value = val
			}
			return
		}
	}
	if prop != "" && val != "" {
		*d = append(*d, declaration{prop, val})
	}
}

func (d declarations) String() string {
	parts := make([]string, len(d))
	for i, x := range d {
		parts[i] = x.prop + ": " + x.value
	}
	return strings.Join(parts, "; ")
}

// camelToKebab converts a JS property name to its CSS spelling.
func camelToKebab(s string) string {
	if s == "cssFloat" {
		return "float"
	}
	var sb strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// selectorList parses a comma separated selector group.
func selectorList(vm *goja.Runtime, method, raw string) []css.Selector {
	var sels []css.Selector
	for _, part := range strings.Split(raw, ",") {
		sel, err := css.ParseSelector(part)
		if err != nil {
			panic(vm.NewTypeError("Failed to execute '%s': '%s' is not a valid selector", method, raw))
		}
		sels = append(sels, sel)
	}
	return sels
}
