package layout

import (
	"math"

	"htmlbox/pkg/css"
)

var (
	imagePlaceholderColor = css.Color{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff}
	frameBorderColor      = css.Color{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
)

// Paint draws b and its subtree on g at the positions computed by the last
// layout. A fault is reported with kind ErrPaint and returned; the box's
// siblings still paint.
func (b *Box) Paint(g Graphics) error {
	var rel Point
	for box := b.parent; box != nil; box = box.parent {
		r := box.relativeOffset()
		rel.X += r.X
		rel.Y += r.Y
	}
	return b.paint(g, rel)
}

// paint recovers faults per box. rel is the accumulated relative offset of
// the box's ancestors.
func (b *Box) paint(g Graphics, rel Point) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
		if err != nil {
			b.reportError(ErrPaint, "box paint failed", err)
			err = &Error{Kind: ErrPaint, Err: err}
		}
	}()
	if !b.isPainted() {
		return nil
	}
	own := b.relativeOffset()
	rel = Point{X: rel.X + own.X, Y: rel.Y + own.Y}
	b.paintImp(g, rel)
	return nil
}

// isPainted reports whether the box draws anything at all.
func (b *Box) isPainted() bool {
	if b.Display() == DisplayNone || b.Visibility() == "hidden" {
		return false
	}
	if b.Display() == DisplayTableCell && b.EmptyCells() == "hide" && b.IsSpaceOrEmpty() {
		return false
	}
	return !b.IsSpacing()
}

// paintOffset is the translation from layout to surface coordinates.
func (b *Box) paintOffset(rel Point) Point {
	p := rel
	if b.eng != nil && !b.IsFixed() {
		p.X -= b.eng.scroll.X
		p.Y -= b.eng.scroll.Y
	}
	return p
}

func (b *Box) paintImp(g Graphics, rel Point) {
	offset := b.paintOffset(rel)

	clipped := false
	if isBlockLike(b.Display()) && b.Overflow() == "hidden" {
		g.PushClip(b.Bounds().Offset(offset))
		clipped = true
	}

	rects := b.Rectangles()
	if len(rects) == 0 && (isBlockLike(b.Display()) || b.Kind == KindHorizontalRule) {
		rects = []Rect{b.Bounds()}
	}
	for i, r := range rects {
		r = r.Offset(offset)
		if r.IsEmpty() {
			continue
		}
		b.paintBackground(g, r)
		b.paintBorders(g, r, i == 0, i == len(rects)-1)
	}

	b.paintWords(g, offset)
	b.paintDecoration(g, rects, offset)

	// Normal flow first, then absolutely positioned boxes, then fixed ones.
	for pass := 0; pass < 3; pass++ {
		for _, c := range b.children {
			if paintPass(c) != pass {
				continue
			}
			// Faults are reported by the child; its siblings still paint.
			_ = c.paint(g, rel)
		}
	}

	if b.listMarker != nil {
		b.listMarker.paintWords(g, offset)
	}

	if clipped {
		g.PopClip()
	}
}

func paintPass(b *Box) int {
	switch b.Position() {
	case PositionAbsolute:
		return 1
	case PositionFixed:
		return 2
	}
	return 0
}

func (b *Box) paintBackground(g Graphics, r Rect) {
	if bg := b.ActualBackgroundColor(); !bg.IsTransparent() {
		g.FillRect(r, bg)
	}
}

// paintBorders draws the four border strips inside r. An inline box split
// over several lines gets its left border on the first piece only and its
// right border on the last.
func (b *Box) paintBorders(g Graphics, r Rect, first, last bool) {
	top, bottom := b.ActualBorderTopWidth(), b.ActualBorderBottomWidth()
	left, right := b.ActualBorderLeftWidth(), b.ActualBorderRightWidth()
	if !first {
		left = 0
	}
	if !last {
		right = 0
	}
	if top > 0 {
		b.paintBorderStrip(g, "top", Rect{X: r.X, Y: r.Y, Width: r.Width, Height: top})
	}
	if bottom > 0 {
		b.paintBorderStrip(g, "bottom", Rect{X: r.X, Y: r.Bottom() - bottom, Width: r.Width, Height: bottom})
	}
	if left > 0 {
		b.paintBorderStrip(g, "left", Rect{X: r.X, Y: r.Y, Width: left, Height: r.Height})
	}
	if right > 0 {
		b.paintBorderStrip(g, "right", Rect{X: r.Right() - right, Y: r.Y, Width: right, Height: r.Height})
	}
}

func (b *Box) paintBorderStrip(g Graphics, side string, strip Rect) {
	c := b.ActualBorderColor(side)
	if c.IsTransparent() {
		return
	}
	var style LineStyle
	switch b.BorderStyle(side) {
	case "dashed":
		style = LineDashed
	case "dotted":
		style = LineDotted
	default:
		g.FillRect(strip, c)
		return
	}
	if side == "top" || side == "bottom" {
		y := strip.Y + strip.Height/2
		g.DrawLine(strip.X, y, strip.Right(), y, strip.Height, c, style)
		return
	}
	x := strip.X + strip.Width/2
	g.DrawLine(x, strip.Y, x, strip.Bottom(), strip.Width, c, style)
}

// paintWords draws the box's own words, highlighting selected ones.
func (b *Box) paintWords(g Graphics, offset Point) {
	if len(b.Words) == 0 {
		return
	}
	font := b.ActualFont()
	color := b.ActualColor()
	for _, w := range b.Words {
		r := w.Rect().Offset(offset)
		if w.IsImage() {
			b.paintImageWord(g, w, r)
			continue
		}
		if w.IsLineBreak() {
			continue
		}
		if w.Selected() {
			b.paintSelection(g, w, r, font)
		}
		if w.IsSpaces() {
			continue
		}
		g.DrawString(w.Text, font, color, Point{X: r.X, Y: r.Y})
	}
}

func (b *Box) paintSelection(g Graphics, w *Word, r Rect, font Font) {
	color := css.Color{R: 0xa9, G: 0xcd, B: 0xf5, A: 0xff}
	if b.eng != nil {
		color = b.eng.selectionColor
	}
	start, end, partial := w.SelectionRange()
	if partial {
		runes := []rune(w.Text)
		left := g.MeasureString(string(runes[:start]), font).Width
		right := g.MeasureString(string(runes[:end]), font).Width
		r = Rect{X: r.X + left, Y: r.Y, Width: right - left, Height: r.Height}
	} else if w.HasSpaceAfter {
		r.Width += w.SpacingAfter()
	}
	g.FillRect(r, color)
}

// paintImageWord draws an image inside its border and padding, a
// placeholder while loading, or nothing once the load failed; the error
// border is painted as the box border.
func (b *Box) paintImageWord(g Graphics, w *Word, r Rect) {
	content := Rect{
		X:      r.X,
		Y:      r.Y + b.ActualBorderTopWidth() + b.ActualPaddingTop(),
		Width:  r.Width,
		Height: r.Height - b.ActualBorderTopWidth() - b.ActualPaddingTop() - b.ActualBorderBottomWidth() - b.ActualPaddingBottom(),
	}
	if content.IsEmpty() {
		return
	}
	if b.Kind == KindFrame {
		strokeRect(g, content, frameBorderColor)
		return
	}
	if w.Image != nil {
		g.DrawImage(w.Image, content)
		return
	}
	if _, failed := b.ImageLoaded(); !failed {
		strokeRect(g, content, imagePlaceholderColor)
	}
}

func strokeRect(g Graphics, r Rect, c css.Color) {
	g.DrawLine(r.X, r.Y, r.Right(), r.Y, 1, c, LineSolid)
	g.DrawLine(r.Right(), r.Y, r.Right(), r.Bottom(), 1, c, LineSolid)
	g.DrawLine(r.X, r.Bottom(), r.Right(), r.Bottom(), 1, c, LineSolid)
	g.DrawLine(r.X, r.Y, r.X, r.Bottom(), 1, c, LineSolid)
}

// paintDecoration draws underline, line-through and overline across each
// line the box occupies.
func (b *Box) paintDecoration(g Graphics, rects []Rect, offset Point) {
	deco := b.TextDecoration()
	if deco == "" || deco == "none" {
		return
	}
	if isBlockLike(b.Display()) {
		rects = rects[:0:0]
		for _, l := range b.lineBoxes {
			if r := l.bounds(); !r.IsEmpty() {
				rects = append(rects, r)
			}
		}
	}
	font := b.ActualFont()
	color := b.ActualColor()
	for i, r := range rects {
		r = r.Offset(offset)
		bottom := r.Bottom()
		if i == len(rects)-1 && !isBlockLike(b.Display()) {
			bottom -= b.ActualPaddingBottom() + b.ActualBorderBottomWidth()
		}
		baseline := bottom - font.Descent()
		var y float64
		switch deco {
		case "underline":
			y = baseline + 1
		case "line-through":
			y = baseline - font.Ascent()*0.35
		case "overline":
			y = baseline - font.Ascent()
		default:
			continue
		}
		left := r.X
		right := r.Right()
		if !isBlockLike(b.Display()) {
			if i == 0 {
				left += b.ActualBorderLeftWidth() + b.ActualPaddingLeft()
			}
			if i == len(rects)-1 {
				right -= b.ActualBorderRightWidth() + b.ActualPaddingRight()
			}
		}
		y = math.Round(y)
		g.DrawLine(left, y, right, y, 1, color, LineSolid)
	}
}
