package layout

import "math"

// LineBox holds the words and boxes laid out on one visual line of a
// formatting context, and the rectangle each contributing box occupies on it.
type LineBox struct {
	owner *Box
	Words []*Word

	boxes     []*Box
	rects     map[*Box]Rect
	rectOrder []*Box
}

// newLineBox creates a line box and appends it to the owner's lines.
func newLineBox(owner *Box) *LineBox {
	l := &LineBox{owner: owner, rects: make(map[*Box]Rect)}
	owner.lineBoxes = append(owner.lineBoxes, l)
	return l
}

// Owner returns the formatting-context box owning the line.
func (l *LineBox) Owner() *Box { return l.owner }

// RelatedBoxes returns the distinct boxes with words on the line, in the
// order they first appeared.
func (l *LineBox) RelatedBoxes() []*Box { return l.boxes }

// Rectangle returns the rectangle accumulated for box on this line.
func (l *LineBox) Rectangle(box *Box) (Rect, bool) {
	r, ok := l.rects[box]
	return r, ok
}

// reportWord adds a word to the line and registers its owner.
func (l *LineBox) reportWord(w *Word) {
	l.Words = append(l.Words, w)
	l.addBox(w.owner)
}

func (l *LineBox) addBox(box *Box) {
	for _, b := range l.boxes {
		if b == box {
			return
		}
	}
	l.boxes = append(l.boxes, box)
}

// wordsOf returns the words on the line owned by box.
func (l *LineBox) wordsOf(box *Box) []*Word {
	var out []*Word
	for _, w := range l.Words {
		if w.owner == box {
			out = append(out, w)
		}
	}
	return out
}

// rectBoxes lists the boxes holding a rectangle on this line, in the
// order their rectangles were created.
func (l *LineBox) rectBoxes() []*Box { return l.rectOrder }

// updateRectangle grows box's rectangle on the line to cover the given
// edges. Border and padding widen the left and top edges only on the
// box's first hosting line, and the right and bottom edges only on its
// last, so an inline split over several lines is framed once. The
// rectangle then bubbles into inline ancestors.
func (l *LineBox) updateRectangle(box *Box, x, y, r, bottom float64) {
	leftSpacing := box.ActualBorderLeftWidth() + box.ActualPaddingLeft()
	rightSpacing := box.ActualBorderRightWidth() + box.ActualPaddingRight()
	topSpacing := box.ActualBorderTopWidth() + box.ActualPaddingTop()
	bottomSpacing := box.ActualBorderBottomWidth() + box.ActualPaddingBottom()

	image := box.Kind == KindImage || box.Kind == KindFrame
	first := box.firstHostingLine == l
	last := box.lastHostingLine == l
	if first || image {
		x -= leftSpacing
	}
	if last || image {
		r += rightSpacing
	}
	if first && !image {
		y -= topSpacing
	}
	if last && !image {
		bottom += bottomSpacing
	}

	rect := RectFromEdges(x, y, r, bottom)
	if old, ok := l.rects[box]; ok {
		rect = old.Union(rect)
	} else {
		l.rectOrder = append(l.rectOrder, box)
	}
	l.rects[box] = rect

	if p := box.parent; p != nil && p != l.owner && p.IsInline() {
		l.updateRectangle(p, x, y, r, bottom)
	}
}

// assignRectangles copies the line's rectangles onto their boxes.
func (l *LineBox) assignRectangles() {
	for _, b := range l.rectBoxes() {
		b.setRectangle(l, l.rects[b])
	}
}

// setBaseline moves box's words on this line so their tops sit at top. If
// the box's rectangle is shorter than its parent's rectangle on the line,
// the rectangle and everything registered inside it moves with the words.
func (l *LineBox) setBaseline(box *Box, top float64) {
	r, ok := l.rects[box]
	if !ok {
		return
	}
	words := l.wordsOf(box)
	gap := 0.0
	if len(words) > 0 {
		gap = words[0].Top - r.Y
	} else if w := l.firstWordOf(box); w != nil {
		gap = w.Top - r.Y
	}
	if p := box.parent; p != nil {
		if pr, ok := l.rects[p]; ok && r.Height < pr.Height {
			delta := (top - gap) - r.Y
			l.offsetRectangles(box, delta)
		}
	}
	for _, w := range words {
		if !w.isImage {
			w.Top = top
		}
	}
}

// firstWordOf finds the first word on the line owned by box or a descendant.
func (l *LineBox) firstWordOf(box *Box) *Word {
	for _, w := range l.Words {
		for o := w.owner; o != nil; o = o.parent {
			if o == box {
				return w
			}
			if o == l.owner {
				break
			}
		}
	}
	return nil
}

// offsetRectangles shifts box's rectangle and its descendants' rectangles
// on this line vertically.
func (l *LineBox) offsetRectangles(box *Box, dy float64) {
	if r, ok := l.rects[box]; ok {
		r.Y += dy
		l.rects[box] = r
	}
	for _, c := range box.children {
		l.offsetRectangles(c, dy)
	}
}

// bounds is the union of all word rectangles on the line.
func (l *LineBox) bounds() Rect {
	if len(l.Words) == 0 {
		return Rect{}
	}
	left, top := math.Inf(1), math.Inf(1)
	right, bottom := math.Inf(-1), math.Inf(-1)
	for _, w := range l.Words {
		left = math.Min(left, w.Left)
		top = math.Min(top, w.Top)
		right = math.Max(right, w.Right())
		bottom = math.Max(bottom, w.Bottom())
	}
	return RectFromEdges(left, top, right, bottom)
}

// isLast reports whether l is the owner's final line.
func (l *LineBox) isLast() bool {
	n := len(l.owner.lineBoxes)
	return n > 0 && l.owner.lineBoxes[n-1] == l
}

// isFirst reports whether l is the owner's first line.
func (l *LineBox) isFirst() bool {
	return len(l.owner.lineBoxes) > 0 && l.owner.lineBoxes[0] == l
}
