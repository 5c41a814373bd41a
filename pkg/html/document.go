package html

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"htmlbox/pkg/css"
	"htmlbox/pkg/layout"
)

// CSSFetcher loads linked style sheets.
type CSSFetcher interface {
	FetchCSS(ctx context.Context, uri string) (string, error)
}

// Options configures parsing.
type Options struct {
	// Fetcher loads <link rel="stylesheet"> targets; nil skips them.
	Fetcher CSSFetcher
	Logger  *zap.Logger
}

// Document is a parsed page: the styled box tree plus what the page
// declared alongside it.
type Document struct {
	Root    *layout.Box
	Title   string
	Scripts []string

	sheets []*css.Stylesheet
	logger *zap.Logger
}

// rawTextElements never contribute text boxes.
var rawTextElements = map[string]bool{
	"style": true, "script": true, "title": true, "template": true,
	"noscript": true, "textarea": true,
}

// Parse reads an HTML document and builds its styled box tree. The root box
// is the <html> element.
func Parse(ctx context.Context, r io.Reader, opts Options) (*Document, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	root, err := xhtml.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	htmlNode := findElement(root, atom.Html)
	if htmlNode == nil {
		return nil, fmt.Errorf("parsing HTML: no root element")
	}

	d := &Document{logger: logger.Named("html")}
	d.collectResources(ctx, root, opts.Fetcher)

	box, err := layout.CreateBox(nil, tagOf(htmlNode), nil)
	if err != nil {
		return nil, err
	}
	d.buildChildren(box, htmlNode)
	d.Root = box
	d.Restyle(box)
	return d, nil
}

// ParseString is Parse over a string.
func ParseString(ctx context.Context, content string, opts Options) (*Document, error) {
	return Parse(ctx, strings.NewReader(content), opts)
}

func findElement(n *xhtml.Node, a atom.Atom) *xhtml.Node {
	if n.Type == xhtml.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// collectResources gathers style sheets, scripts and the title in document
// order.
func (d *Document) collectResources(ctx context.Context, n *xhtml.Node, fetcher CSSFetcher) {
	if n.Type == xhtml.ElementNode {
		switch n.DataAtom {
		case atom.Style:
			d.addStylesheet(textOf(n))
			return
		case atom.Script:
			if src := attrOf(n, "src"); src == "" {
				if text := textOf(n); strings.TrimSpace(text) != "" {
					d.Scripts = append(d.Scripts, text)
				}
			}
			return
		case atom.Title:
			if d.Title == "" {
				d.Title = strings.Join(strings.Fields(textOf(n)), " ")
			}
			return
		case atom.Link:
			d.linkStylesheet(ctx, n, fetcher)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.collectResources(ctx, c, fetcher)
	}
}

func (d *Document) linkStylesheet(ctx context.Context, n *xhtml.Node, fetcher CSSFetcher) {
	rel := strings.Fields(strings.ToLower(attrOf(n, "rel")))
	isSheet := false
	for _, r := range rel {
		if r == "stylesheet" {
			isSheet = true
		}
	}
	href := strings.TrimSpace(attrOf(n, "href"))
	if !isSheet || href == "" || fetcher == nil {
		return
	}
	text, err := fetcher.FetchCSS(ctx, href)
	if err != nil {
		d.logger.Warn("stylesheet unavailable", zap.String("href", href), zap.Error(err))
		return
	}
	d.addStylesheet(text)
}

func (d *Document) addStylesheet(text string) {
	if err := d.AddStylesheet(text); err != nil {
		d.logger.Warn("invalid stylesheet", zap.Error(err))
	}
}

// AddStylesheet appends an author style sheet. Call Restyle afterwards to
// apply it to an existing tree.
func (d *Document) AddStylesheet(text string) error {
	sheet, err := css.ParseStylesheet(text)
	if err != nil {
		return err
	}
	d.sheets = append(d.sheets, sheet)
	return nil
}

// Stylesheets returns the author style sheets in cascade order.
func (d *Document) Stylesheets() []*css.Stylesheet { return d.sheets }

func textOf(n *xhtml.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xhtml.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func attrOf(n *xhtml.Node, name string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val
		}
	}
	return ""
}

func tagOf(n *xhtml.Node) *layout.Tag {
	attrs := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		if a.Namespace == "" {
			attrs[a.Key] = a.Val
		}
	}
	return layout.NewTag(n.Data, attrs)
}

// buildChildren creates boxes for the children of n under parent.
func (d *Document) buildChildren(parent *layout.Box, n *xhtml.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.build(parent, c)
	}
}

func (d *Document) build(parent *layout.Box, n *xhtml.Node) {
	switch n.Type {
	case xhtml.TextNode:
		if rawTextElements[parent.TagName()] {
			return
		}
		layout.CreateTextBox(parent, escapeText(n.Data))
	case xhtml.ElementNode:
		b, err := layout.CreateBox(parent, tagOf(n), nil)
		if err != nil {
			d.logger.Warn("element skipped", zap.String("tag", n.Data), zap.Error(err))
			return
		}
		if n.DataAtom == atom.Br {
			layout.CreateTextBox(b, "\n")
			return
		}
		d.buildChildren(b, n)
	}
}

// escapeText keeps character references unexpanded in box text; the word
// tokenizer expands them.
func escapeText(s string) string {
	return strings.ReplaceAll(s, "&", "&amp;")
}

// StyleFor computes the declared style of a tag-generated box: the UA sheet,
// presentational hints, author rules and finally the style attribute.
func (d *Document) StyleFor(b *layout.Box) *css.Style {
	el := element{box: b}
	defaults := css.ComputeStyle(el, nil, uaSheets)
	defaults.Merge(presentationalHints(b))
	return css.ComputeStyle(el, defaults, d.sheets)
}

// Restyle recomputes the declared style of b and every tag-generated box
// below it.
func (d *Document) Restyle(b *layout.Box) {
	b.Walk(func(x *layout.Box) bool {
		if !x.IsAnonymous() {
			x.ReplaceStyle(d.StyleFor(x))
		}
		return true
	})
}

// ParseFragment replaces the children of parent with the boxes of markup,
// parsed in the context of parent's tag.
func (d *Document) ParseFragment(parent *layout.Box, markup string) error {
	ctxNode := &xhtml.Node{
		Type:     xhtml.ElementNode,
		Data:     parent.TagName(),
		DataAtom: atom.Lookup([]byte(parent.TagName())),
	}
	nodes, err := xhtml.ParseFragment(strings.NewReader(markup), ctxNode)
	if err != nil {
		return fmt.Errorf("parsing fragment: %w", err)
	}
	for _, c := range append([]*layout.Box(nil), parent.Children()...) {
		c.Remove()
	}
	for _, n := range nodes {
		d.build(parent, n)
	}
	d.Restyle(parent)
	return nil
}

// Body returns the <body> box, or nil.
func (d *Document) Body() *layout.Box {
	for _, c := range d.Root.Children() {
		if c.TagName() == "body" {
			return c
		}
	}
	return nil
}

// ElementByID returns the first box whose id attribute is id.
func (d *Document) ElementByID(id string) *layout.Box {
	var found *layout.Box
	d.Root.Walk(func(b *layout.Box) bool {
		if v, ok := b.Attr("id"); ok && v == id {
			found = b
			return false
		}
		return true
	})
	return found
}

// ElementsByTagName returns the tag-generated boxes below root named tag,
// root excluded. "*" matches every tag.
func ElementsByTagName(root *layout.Box, tag string) []*layout.Box {
	tag = strings.ToLower(tag)
	var out []*layout.Box
	root.Walk(func(b *layout.Box) bool {
		if b != root && !b.IsAnonymous() && (tag == "*" || b.TagName() == tag) {
			out = append(out, b)
		}
		return true
	})
	return out
}

// ElementsByClassName returns the boxes below root carrying class.
func ElementsByClassName(root *layout.Box, class string) []*layout.Box {
	var out []*layout.Box
	root.Walk(func(b *layout.Box) bool {
		if b == root || b.IsAnonymous() {
			return true
		}
		if v, ok := b.Attr("class"); ok {
			for _, c := range strings.Fields(v) {
				if c == class {
					out = append(out, b)
					break
				}
			}
		}
		return true
	})
	return out
}

// QuerySelectorAll returns the boxes below root matching any of the comma
// separated selectors, in document order.
func QuerySelectorAll(root *layout.Box, selectors string) ([]*layout.Box, error) {
	var parsed []css.Selector
	for _, raw := range strings.Split(selectors, ",") {
		sel, err := css.ParseSelector(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid selector %q: %w", raw, err)
		}
		parsed = append(parsed, sel)
	}
	var out []*layout.Box
	root.Walk(func(b *layout.Box) bool {
		if b == root || b.IsAnonymous() {
			return true
		}
		for _, sel := range parsed {
			if css.MatchesSelector(element{box: b}, sel) {
				out = append(out, b)
				break
			}
		}
		return true
	})
	return out, nil
}

// Matches reports whether b matches selector.
func Matches(b *layout.Box, selector string) (bool, error) {
	sel, err := css.ParseSelector(selector)
	if err != nil {
		return false, err
	}
	return MatchSelector(b, sel), nil
}

// MatchSelector reports whether b matches a parsed selector.
func MatchSelector(b *layout.Box, sel css.Selector) bool {
	return css.MatchesSelector(element{box: b}, sel)
}
