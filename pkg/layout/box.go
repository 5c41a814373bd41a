package layout

import (
	"strings"

	"go.uber.org/zap"
)

// Kind selects the specialised behaviour of a box.
type Kind int

const (
	KindGeneric Kind = iota
	KindImage
	KindFrame
	KindHorizontalRule
	KindSpacing
	KindListMarker
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindFrame:
		return "frame"
	case KindHorizontalRule:
		return "hr"
	case KindSpacing:
		return "spacing"
	case KindListMarker:
		return "marker"
	}
	return "box"
}

// Tag is the source element a box was generated for.
type Tag struct {
	Name  string
	Attrs map[string]string
}

func NewTag(name string, attrs map[string]string) *Tag {
	if attrs == nil {
		attrs = make(map[string]string)
	}
	return &Tag{Name: strings.ToLower(name), Attrs: attrs}
}

// Attr returns an attribute value.
func (t *Tag) Attr(name string) (string, bool) {
	if t == nil {
		return "", false
	}
	v, ok := t.Attrs[name]
	return v, ok
}

// Box is a node of the CSS box tree. It is either a content leaf holding
// words or a container holding child boxes.
type Box struct {
	Tag      *Tag
	Kind     Kind
	Location Point
	Size     Size

	Words []*Word

	bottom float64

	parent   *Box
	children []*Box
	eng      *Engine
	owner    *Box // list item hosting a marker box

	text       string
	hasText    bool
	wordsStale bool
	measured   bool

	props properties

	// Line boxes this box owns as a formatting context.
	lineBoxes []*LineBox
	// Per-line paint rectangles in line order.
	rects     map[*LineBox]Rect
	rectOrder []*LineBox

	firstHostingLine *LineBox
	lastHostingLine  *LineBox

	collapsedMarginTop    float64
	collapsedMarginBottom float64
	bottomEscapes         bool

	wordSpacing float64
	listMarker  *Box
	image       *imageState
	spacing     *spacingInfo
}

func newBox(tag *Tag, kind Kind) *Box {
	b := &Box{Tag: tag, Kind: kind}
	b.props.init()
	return b
}

// kindForTag picks the box kind a tag generates.
func kindForTag(tag *Tag) Kind {
	if tag == nil {
		return KindGeneric
	}
	switch tag.Name {
	case "img":
		return KindImage
	case "iframe":
		return KindFrame
	case "hr":
		return KindHorizontalRule
	}
	return KindGeneric
}

// CreateBox creates a box for tag and inserts it into parent, at the end or
// before the given sibling. A nil parent creates a detached root.
func CreateBox(parent *Box, tag *Tag, before *Box) (*Box, error) {
	b := newBox(tag, kindForTag(tag))
	switch b.Kind {
	case KindImage, KindFrame:
		b.initImage()
	case KindHorizontalRule:
		b.SetProperty("display", DisplayBlock)
	}
	if parent != nil {
		if err := b.SetParent(parent, before); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// CreateBlock is CreateBox with display:block.
func CreateBlock(parent *Box, tag *Tag, before *Box) (*Box, error) {
	b, err := CreateBox(parent, tag, before)
	if err != nil {
		return nil, err
	}
	b.SetProperty("display", DisplayBlock)
	return b, nil
}

// CreateTextBox appends an anonymous inline box holding text.
func CreateTextBox(parent *Box, text string) *Box {
	b := newBox(nil, KindGeneric)
	b.SetText(text)
	if parent != nil {
		parent.insertChild(b, len(parent.children))
	}
	return b
}

func (b *Box) Parent() *Box { return b.parent }

// Children returns the child boxes. Callers must not modify the slice.
func (b *Box) Children() []*Box { return b.children }

// IsAnonymous reports whether the box was not generated by a source tag.
func (b *Box) IsAnonymous() bool { return b.Tag == nil }

// Attr returns an attribute of the source tag.
func (b *Box) Attr(name string) (string, bool) { return b.Tag.Attr(name) }

// TagName returns the source tag name or "".
func (b *Box) TagName() string {
	if b.Tag == nil {
		return ""
	}
	return b.Tag.Name
}

// Text returns the raw text of a text box.
func (b *Box) Text() string { return b.text }

// SetText replaces the box's text; words are rebuilt on the next layout.
func (b *Box) SetText(text string) {
	b.text = text
	b.hasText = true
	b.wordsStale = true
	b.measured = false
}

// HasText reports whether the box is a text leaf.
func (b *Box) HasText() bool { return b.hasText }

// SetParent detaches b from its current parent and inserts it into parent,
// before the given sibling or at the end when before is nil.
func (b *Box) SetParent(parent *Box, before *Box) error {
	if parent == nil {
		b.Remove()
		return nil
	}
	idx := len(parent.children)
	if before != nil {
		idx = parent.indexOf(before)
		if idx < 0 {
			return ErrSiblingNotFound
		}
	}
	for anc := parent; anc != nil; anc = anc.parent {
		if anc == b {
			return ErrCyclicTree
		}
	}
	if b.parent == parent {
		if cur := parent.indexOf(b); cur < idx {
			idx--
		}
	}
	b.Remove()
	parent.insertChild(b, idx)
	return nil
}

// AdoptChildren moves all children of from to the end of b, keeping order.
func (b *Box) AdoptChildren(from *Box) {
	if from == nil || from == b {
		return
	}
	moved := from.children
	from.children = nil
	for _, c := range moved {
		c.parent = nil
		b.insertChild(c, len(b.children))
	}
}

// Remove detaches b from its parent.
func (b *Box) Remove() {
	p := b.parent
	if p == nil {
		return
	}
	if i := p.indexOf(b); i >= 0 {
		p.children = append(p.children[:i], p.children[i+1:]...)
	}
	b.parent = nil
	b.setEngine(nil)
	b.invalidateInherited()
}

func (b *Box) insertChild(c *Box, idx int) {
	b.children = append(b.children, nil)
	copy(b.children[idx+1:], b.children[idx:])
	b.children[idx] = c
	c.parent = b
	c.setEngine(b.eng)
	c.invalidateInherited()
}

func (b *Box) indexOf(c *Box) int {
	for i, child := range b.children {
		if child == c {
			return i
		}
	}
	return -1
}

func (b *Box) setEngine(e *Engine) {
	b.eng = e
	for _, c := range b.children {
		c.setEngine(e)
	}
	if b.listMarker != nil {
		b.listMarker.eng = e
	}
}

// Engine returns the engine the box tree is attached to, or nil.
func (b *Box) Engine() *Engine { return b.eng }

func (b *Box) logger() *zap.Logger {
	if b.eng != nil {
		return b.eng.logger
	}
	return zap.NewNop()
}

// Walk calls fn for b and every descendant in document order until fn
// returns false.
func (b *Box) Walk(fn func(*Box) bool) bool {
	if !fn(b) {
		return false
	}
	for _, c := range b.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// ListMarker returns the generated marker box of a list item, if built.
func (b *Box) ListMarker() *Box { return b.listMarker }

// LineBoxes returns the line boxes this box owns as a formatting context.
func (b *Box) LineBoxes() []*LineBox { return b.lineBoxes }

// Rectangles returns the box's paint rectangles, one per line it spans.
func (b *Box) Rectangles() []Rect {
	out := make([]Rect, 0, len(b.rectOrder))
	for _, l := range b.rectOrder {
		out = append(out, b.rects[l])
	}
	return out
}

// RectangleOn returns the box's rectangle on line l.
func (b *Box) RectangleOn(l *LineBox) (Rect, bool) {
	r, ok := b.rects[l]
	return r, ok
}

func (b *Box) setRectangle(l *LineBox, r Rect) {
	if b.rects == nil {
		b.rects = make(map[*LineBox]Rect)
	}
	if _, ok := b.rects[l]; !ok {
		b.rectOrder = append(b.rectOrder, l)
	}
	b.rects[l] = r
}

func (b *Box) resetRectangles() {
	b.rects = nil
	b.rectOrder = nil
}

// Bounds is the border box from Location and Size.
func (b *Box) Bounds() Rect {
	return Rect{X: b.Location.X, Y: b.Location.Y, Width: b.Size.Width, Height: b.Size.Height}
}

// ActualRight is the right edge of the border box.
func (b *Box) ActualRight() float64 { return b.Location.X + b.Size.Width }

// SetActualRight moves the right edge, adjusting the width.
func (b *Box) SetActualRight(right float64) { b.Size.Width = right - b.Location.X }

// ClientLeft and friends bound the content box.
func (b *Box) ClientLeft() float64 {
	return b.Location.X + b.ActualBorderLeftWidth() + b.ActualPaddingLeft()
}

func (b *Box) ClientTop() float64 {
	return b.Location.Y + b.ActualBorderTopWidth() + b.ActualPaddingTop()
}

func (b *Box) ClientRight() float64 {
	return b.ActualRight() - b.ActualPaddingRight() - b.ActualBorderRightWidth()
}

func (b *Box) ClientBottom() float64 {
	return b.bottom - b.ActualPaddingBottom() - b.ActualBorderBottomWidth()
}

// ActualBottom is the lowest extent of the border box after layout.
func (b *Box) ActualBottom() float64 { return b.bottom }

// SetActualBottom moves the bottom edge, keeping Size.Height in step.
func (b *Box) SetActualBottom(bottom float64) {
	b.bottom = bottom
	b.Size.Height = bottom - b.Location.Y
}

func (b *Box) ClientRectangle() Rect {
	return RectFromEdges(b.ClientLeft(), b.ClientTop(), b.ClientRight(), b.ClientBottom())
}

// AvailableWidth is the content width left for children.
func (b *Box) AvailableWidth() float64 {
	return b.Size.Width - b.ActualBorderLeftWidth() - b.ActualPaddingLeft() -
		b.ActualPaddingRight() - b.ActualBorderRightWidth()
}

// IsInline reports inline-level boxes that flow inside line boxes.
func (b *Box) IsInline() bool {
	d := b.Display()
	return d == DisplayInline || d == DisplayInlineBlock
}

// IsBlock reports display:block.
func (b *Box) IsBlock() bool { return b.Display() == DisplayBlock }

// IsFixed reports whether the box or an ancestor is position:fixed.
func (b *Box) IsFixed() bool {
	for box := b; box != nil; box = box.parent {
		if box.Position() == PositionFixed {
			return true
		}
	}
	return false
}

// IsSpaceOrEmpty reports whether the subtree paints no visible content.
func (b *Box) IsSpaceOrEmpty() bool {
	if b.Kind == KindImage || b.Kind == KindFrame {
		return false
	}
	if b.hasText && strings.TrimSpace(b.text) != "" {
		return false
	}
	for _, w := range b.Words {
		if !w.IsSpaces() && !w.IsLineBreak() {
			return false
		}
	}
	for _, c := range b.children {
		if !c.IsSpaceOrEmpty() {
			return false
		}
	}
	return true
}

// Dispose releases resources held by the subtree and cancels pending image loads.
func (b *Box) Dispose() {
	if b.image != nil {
		b.image.dispose()
	}
	for _, c := range b.children {
		c.Dispose()
	}
}
