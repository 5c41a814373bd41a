package html

import (
	"sort"
	"strings"

	xhtml "golang.org/x/net/html"

	"htmlbox/pkg/layout"
)

// Serialize returns the markup of b's children (innerHTML). Anonymous boxes
// the layout engine inserted are transparent.
func Serialize(b *layout.Box) string {
	var sb strings.Builder
	serializeChildren(&sb, b)
	return sb.String()
}

// SerializeOuter returns the markup of b including its own tags (outerHTML).
func SerializeOuter(b *layout.Box) string {
	var sb strings.Builder
	serializeBox(&sb, b)
	return sb.String()
}

func serializeChildren(sb *strings.Builder, b *layout.Box) {
	for _, c := range b.Children() {
		serializeBox(sb, c)
	}
}

func serializeBox(sb *strings.Builder, b *layout.Box) {
	if b.HasText() {
		sb.WriteString(xhtml.EscapeString(xhtml.UnescapeString(b.Text())))
		return
	}
	if b.IsAnonymous() {
		serializeChildren(sb, b)
		return
	}

	name := b.TagName()
	sb.WriteByte('<')
	sb.WriteString(name)
	// Sorted for deterministic output.
	keys := make([]string, 0, len(b.Tag.Attrs))
	for k := range b.Tag.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteString(`="`)
		sb.WriteString(xhtml.EscapeString(b.Tag.Attrs[k]))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	if isVoidElement(name) {
		return
	}
	serializeChildren(sb, b)
	sb.WriteString("</")
	sb.WriteString(name)
	sb.WriteByte('>')
}

func isVoidElement(tag string) bool {
	switch tag {
	case "br", "hr", "img", "input", "meta", "link", "area", "base",
		"col", "embed", "param", "source", "track", "wbr":
		return true
	}
	return false
}

// TextContent returns the concatenated text below b with character
// references expanded.
func TextContent(b *layout.Box) string {
	var sb strings.Builder
	var collect func(*layout.Box)
	collect = func(x *layout.Box) {
		if x.HasText() {
			sb.WriteString(xhtml.UnescapeString(x.Text()))
			return
		}
		if x.TagName() == "br" {
			return
		}
		for _, c := range x.Children() {
			collect(c)
		}
	}
	collect(b)
	return sb.String()
}

// SetTextContent replaces the children of b with a single text box.
func SetTextContent(b *layout.Box, text string) {
	if b.HasText() {
		b.SetText(escapeText(text))
		return
	}
	for _, c := range append([]*layout.Box(nil), b.Children()...) {
		c.Remove()
	}
	if text != "" {
		layout.CreateTextBox(b, escapeText(text))
	}
}

// NewTextBox creates a detached text box for literal text.
func NewTextBox(text string) *layout.Box {
	return layout.CreateTextBox(nil, escapeText(text))
}

// CloneBox copies b and, when deep is set, its descendants. The copy is
// detached and unstyled.
func CloneBox(b *layout.Box, deep bool) *layout.Box {
	if b.HasText() {
		return layout.CreateTextBox(nil, b.Text())
	}
	attrs := make(map[string]string)
	if b.Tag != nil {
		for k, v := range b.Tag.Attrs {
			attrs[k] = v
		}
	}
	clone, err := layout.CreateBox(nil, layout.NewTag(b.TagName(), attrs), nil)
	if err != nil {
		return nil
	}
	if deep {
		cloneChildren(clone, b)
	}
	return clone
}

func cloneChildren(dst, src *layout.Box) {
	for _, c := range src.Children() {
		switch {
		case c.HasText():
			layout.CreateTextBox(dst, c.Text())
		case c.IsAnonymous():
			cloneChildren(dst, c)
		default:
			if cc := CloneBox(c, true); cc != nil {
				_ = cc.SetParent(dst, nil)
			}
		}
	}
}
