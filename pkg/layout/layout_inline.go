package layout

import (
	"math"
	"strings"

	"htmlbox/pkg/css"
)

// lineFlow carries the cursor state while words are flowed into line boxes.
type lineFlow struct {
	block      *Box
	limitRight float64
	startX     float64
	line       *LineBox
	curX       float64
	curY       float64
	maxRight   float64
	maxBottom  float64
}

// createLineBoxes lays out the inline content of a block as a sequence of
// line boxes and derives the block's bottom from the last line.
func (b *Box) createLineBoxes(g Graphics) {
	b.lineBoxes = nil

	startX := b.Location.X + b.ActualPaddingLeft() + b.ActualBorderLeftWidth()
	startY := b.Location.Y + b.ActualPaddingTop() + b.ActualBorderTopWidth()
	f := &lineFlow{
		block:      b,
		limitRight: b.ActualRight() - b.ActualPaddingRight() - b.ActualBorderRightWidth(),
		startX:     startX,
		curX:       startX + b.ActualTextIndent(),
		curY:       startY,
		maxRight:   startX,
		maxBottom:  startY,
	}
	f.line = newLineBox(b)
	f.flowBox(g, b)

	// An unconstrained block shrinks to its content.
	if b.Size.Width >= unboundedThreshold {
		b.SetActualRight(f.maxRight + b.ActualPaddingRight() + b.ActualBorderRightWidth())
	}

	for _, line := range b.lineBoxes {
		line.applyHorizontalAlignment()
		line.bubbleRectangles(b)
		line.applyVerticalAlignment()
		line.assignRectangles()
	}

	b.SetActualBottom(f.maxBottom + b.ActualPaddingBottom() + b.ActualBorderBottomWidth())

	if b.HasExplicitHeight() && b.Overflow() == "hidden" {
		if h := b.ActualHeight(); b.bottom-b.Location.Y > h {
			b.SetActualBottom(b.Location.Y + h)
		}
	}
}

// flowBox places the words of box's descendants, wrapping into new line
// boxes when a word does not fit before limitRight.
func (f *lineFlow) flowBox(g Graphics, box *Box) {
	startX, startY := f.curX, f.curY
	box.firstHostingLine = f.line
	savedX, savedRight, savedBottom := f.curX, f.maxRight, f.maxBottom

	for _, b := range box.children {
		if b.Display() == DisplayNone {
			continue
		}
		var leftSpacing, rightSpacing float64
		if pos := b.Position(); pos != PositionAbsolute && pos != PositionFixed {
			leftSpacing = b.ActualMarginLeft() + b.ActualBorderLeftWidth() + b.ActualPaddingLeft()
			rightSpacing = b.ActualMarginRight() + b.ActualBorderRightWidth() + b.ActualPaddingRight()
		}

		b.resetRectangles()
		b.measureWordsSize(g)

		f.curX += leftSpacing

		if len(b.Words) > 0 {
			f.flowWords(g, box, b, leftSpacing, rightSpacing)
		} else {
			f.flowBox(g, b)
		}

		f.curX += rightSpacing
	}

	// Declared height of an inline box.
	if h := box.ActualHeight(); f.maxBottom-startY < h {
		f.maxBottom += h - f.maxBottom + startY
	}

	// Declared width of an inline box reserves space on the line.
	if box.IsInline() {
		if w, ok := box.ActualWidth(); ok && f.curX-startX >= 0 && f.curX-startX < w {
			f.curX += w - (f.curX - startX)
			if _, exists := f.line.rects[box]; !exists {
				f.line.rectOrder = append(f.line.rectOrder, box)
			}
			f.line.rects[box] = Rect{X: startX, Y: startY, Width: w, Height: box.ActualHeight()}
		}
	}

	// A whitespace-only inline still separates its neighbours.
	if box.hasText && strings.TrimSpace(box.text) == "" && box.IsInline() &&
		box.Kind == KindGeneric && len(box.children) == 0 && len(box.Words) == 0 {
		f.curX += box.wordSpacing
	}

	if box.Position() == PositionAbsolute {
		f.curX, f.maxRight, f.maxBottom = savedX, savedRight, savedBottom
		adjustAbsolutePosition(box, 0, 0)
	}

	box.lastHostingLine = f.line
}

// flowWords places the words of one content box b, a child of box.
func (f *lineFlow) flowWords(g Graphics, box, b *Box, leftSpacing, rightSpacing float64) {
	ws := b.WhiteSpace()

	wrapNoWrap := false
	if ws == WhiteSpaceNoWrap && f.curX > f.startX {
		right := f.curX
		for _, w := range b.Words {
			right += w.FullWidth()
		}
		if right > f.limitRight {
			wrapNoWrap = true
		}
	}

	if hasLeadingWhitespace(b) {
		f.curX += box.wordSpacing
	}

	lineHeight := box.ActualLineHeight()
	eng := f.block.eng
	for i, w := range b.Words {
		if f.maxBottom-f.curY < lineHeight {
			f.maxBottom += lineHeight - (f.maxBottom - f.curY)
		}

		overflow := ws != WhiteSpaceNoWrap && ws != WhiteSpacePre &&
			f.curX+w.Width+rightSpacing > f.limitRight &&
			(ws != WhiteSpacePreWrap || !w.IsSpaces())
		if overflow || w.IsLineBreak() || wrapNoWrap {
			wrapNoWrap = false
			f.curX = f.startX

			// The first text of a wrapped line keeps the parent's left inset.
			if len(box.children) > 0 && b == box.children[0] && !w.IsLineBreak() &&
				(i == 0 || (box.parent != nil && box.parent.IsBlock())) && box != f.block {
				f.curX += box.ActualMarginLeft() + box.ActualBorderLeftWidth() + box.ActualPaddingLeft()
			}

			f.curY = f.maxBottom
			f.line = newLineBox(f.block)

			if w.isImage || i == 0 {
				f.curX += leftSpacing
			}
		}

		f.line.reportWord(w)
		w.Left = f.curX
		w.Top = f.curY

		if eng != nil && !box.IsFixed() && box.PageBreakInside() == "avoid" {
			w.breakPage(eng.pageSize.Height, eng.marginTop)
		}

		f.curX = w.Left + w.FullWidth()
		f.maxRight = math.Max(f.maxRight, w.Right())
		f.maxBottom = math.Max(f.maxBottom, w.Bottom())

		if b.Position() == PositionAbsolute {
			w.Left += box.ActualMarginLeft()
			w.Top += box.ActualMarginTop()
		}
	}
}

// hasLeadingWhitespace reports an inline box whose text starts with
// collapsed whitespace after an inline sibling.
func hasLeadingWhitespace(b *Box) bool {
	if len(b.Words) == 0 || b.Words[0].isImage || !b.Words[0].HasSpaceBefore || !b.IsInline() {
		return false
	}
	sib := b.previousSibling()
	return sib != nil && sib.IsInline()
}

// adjustAbsolutePosition shifts the words of an inline absolute box by its margins.
func adjustAbsolutePosition(box *Box, left, top float64) {
	left += box.ActualMarginLeft()
	top += box.ActualMarginTop()
	if len(box.Words) > 0 {
		for _, w := range box.Words {
			w.Left += left
			w.Top += top
		}
		return
	}
	for _, c := range box.children {
		adjustAbsolutePosition(c, left, top)
	}
}

// measureWordsSize tokenizes stale text and measures every word with the
// box's font.
func (b *Box) measureWordsSize(g Graphics) {
	if b.wordsStale {
		b.ParseToWords()
	}
	if !b.measured {
		font := b.ActualFont()
		b.wordSpacing = g.MeasureString(" ", font).Width
		if ws := b.Property("word-spacing"); ws != "" && ws != "normal" {
			if v, ok := css.ResolveLength(ws, 1, b.EmHeight()); ok {
				b.wordSpacing += v
			}
		}
		for _, w := range b.Words {
			if w.isImage {
				continue
			}
			if w.IsLineBreak() {
				w.Width = 0
			} else {
				w.Width = g.MeasureString(w.Text, font).Width
			}
			w.Height = font.Height()
		}
		b.measured = true
	}
	if b.image != nil {
		b.measureImageSize()
	}
}

// measureWords measures the words of every descendant of b.
func measureWords(g Graphics, b *Box) {
	for _, c := range b.children {
		c.measureWordsSize(g)
		measureWords(g, c)
	}
}

// bubbleRectangles records, for every box with words on the line, the
// union of those words.
func (l *LineBox) bubbleRectangles(box *Box) {
	if len(box.Words) == 0 {
		for _, c := range box.children {
			l.bubbleRectangles(c)
		}
		return
	}
	words := l.wordsOf(box)
	if len(words) == 0 {
		return
	}
	x, y := math.Inf(1), math.Inf(1)
	r, bottom := math.Inf(-1), math.Inf(-1)
	for _, w := range words {
		left := w.Left
		// The wrapped first word of a box still sits inside its parent's inset.
		if p := box.parent; p != nil && len(p.children) > 0 && p.children[0] == box &&
			w == box.Words[0] && w == l.Words[0] && !l.isFirst() && !w.IsLineBreak() && p != l.owner {
			left -= p.ActualMarginLeft() + p.ActualBorderLeftWidth() + p.ActualPaddingLeft()
		}
		x = math.Min(x, left)
		r = math.Max(r, w.Right())
		y = math.Min(y, w.Top)
		bottom = math.Max(bottom, w.Bottom())
	}
	l.updateRectangle(box, x, y, r, bottom)
}

func (l *LineBox) applyHorizontalAlignment() {
	switch l.owner.TextAlign() {
	case "right":
		l.shiftWords(1)
	case "center":
		l.shiftWords(0.5)
	case "justify":
		l.applyJustify()
	}
}

// shiftWords moves the line right by factor of its free space.
func (l *LineBox) shiftWords(factor float64) {
	if len(l.Words) == 0 {
		return
	}
	last := l.Words[len(l.Words)-1]
	right := l.owner.ActualRight() - l.owner.ActualPaddingRight() - l.owner.ActualBorderRightWidth()
	diff := right - last.Right() - last.owner.ActualBorderRightWidth() - last.owner.ActualPaddingRight()
	diff *= factor
	if diff <= 0 {
		return
	}
	for _, w := range l.Words {
		w.Left += diff
	}
	for _, b := range l.rectOrder {
		r := l.rects[b]
		r.X += diff
		l.rects[b] = r
	}
}

// applyJustify spreads the words over the full content width. The last
// line of a paragraph stays left aligned.
func (l *LineBox) applyJustify() {
	if l.isLast() || len(l.Words) == 0 {
		return
	}
	indent := 0.0
	if l.isFirst() {
		indent = l.owner.ActualTextIndent()
	}
	textSum := 0.0
	for _, w := range l.Words {
		textSum += w.Width
	}
	avail := l.owner.ClientRight() - l.owner.ClientLeft() - indent
	spacing := (avail - textSum) / float64(len(l.Words))
	x := l.owner.ClientLeft() + indent
	for i, w := range l.Words {
		w.Left = x
		x = w.Right() + spacing
		if i == len(l.Words)-1 {
			w.Left = l.owner.ClientRight() - w.Width
		}
	}
}

// applyVerticalAlignment puts every box on the line onto a common
// baseline, lowered for sub and raised for super.
func (l *LineBox) applyVerticalAlignment() {
	baseline := math.Inf(-1)
	for _, w := range l.Words {
		if w.isImage {
			baseline = math.Max(baseline, w.Bottom())
		} else if !w.IsLineBreak() {
			baseline = math.Max(baseline, w.Top+w.owner.ActualFont().Ascent())
		}
	}
	if math.IsInf(baseline, -1) {
		return
	}
	for _, box := range l.rectBoxes() {
		words := l.wordsOf(box)
		if len(words) == 0 || words[0].isImage {
			continue
		}
		shift, ok := l.baselineShift(box, words[0].Height)
		if !ok {
			continue
		}
		l.setBaseline(box, baseline-box.ActualFont().Ascent()+shift)
	}
}

// baselineShift adds up the sub and super offsets of box and its inline
// ancestors on the line, since text inherits the raise of its span. It
// reports false when box itself is aligned to the line rather than the
// baseline.
func (l *LineBox) baselineShift(box *Box, h float64) (float64, bool) {
	shift := 0.0
	for b := box; b != nil && b != l.owner; b = b.parent {
		switch b.VerticalAlign() {
		case "sub":
			shift += h * 0.5
		case "super":
			shift -= h * 0.2
		case "top", "text-top", "middle", "bottom", "text-bottom":
			if b == box {
				return 0, false
			}
		}
	}
	return shift, true
}

// applyCellVerticalAlignment moves a table cell's content to its
// vertical-align position within the cell.
func applyCellVerticalAlignment(cell *Box) {
	va := cell.VerticalAlign()
	if va != "middle" && va != "bottom" {
		return
	}
	cellBottom := cell.ClientBottom()
	bottom := cell.maximumBottom(0)
	dist := cellBottom - bottom
	if va == "middle" {
		dist /= 2
	}
	if dist <= 0 {
		return
	}
	for _, c := range cell.children {
		c.offsetTop(dist)
	}
	for _, l := range cell.lineBoxes {
		for _, b := range l.rectOrder {
			r := l.rects[b]
			r.Y += dist
			l.rects[b] = r
		}
	}
}

// maximumBottom is the lowest rectangle, word or child bottom in the subtree.
func (b *Box) maximumBottom(current float64) float64 {
	for _, r := range b.rects {
		current = math.Max(current, r.Bottom())
	}
	for _, w := range b.Words {
		current = math.Max(current, w.Bottom())
	}
	for _, c := range b.children {
		current = math.Max(current, c.maximumBottom(current))
	}
	return current
}

// offsetTop moves the subtree down by amount.
func (b *Box) offsetTop(amount float64) {
	for l, r := range b.rects {
		r.Y += amount
		b.rects[l] = r
	}
	for _, w := range b.Words {
		w.Top += amount
	}
	for _, c := range b.children {
		c.offsetTop(amount)
	}
	if b.listMarker != nil {
		b.listMarker.offsetTop(amount)
	}
	b.Location.Y += amount
	b.bottom += amount
}

// offsetLeft moves the subtree right by amount.
func (b *Box) offsetLeft(amount float64) {
	for l, r := range b.rects {
		r.X += amount
		b.rects[l] = r
	}
	for _, w := range b.Words {
		w.Left += amount
	}
	for _, c := range b.children {
		c.offsetLeft(amount)
	}
	if b.listMarker != nil {
		b.listMarker.offsetLeft(amount)
	}
	b.Location.X += amount
}
