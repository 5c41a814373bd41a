package layout

import "math"

// layoutHorizontalRule places an hr as a block spanning its containing
// block, or its declared width, but never narrower than its content. A rule
// that would be invisible gets a 1px solid top and bottom border.
func (b *Box) layoutHorizontalRule() {
	b.resetRectangles()

	cb := b.ContainingBlock()
	prev := b.previousSibling()
	left := cb.Location.X + cb.ActualPaddingLeft() + b.ActualMarginLeft() + cb.ActualBorderLeftWidth()
	var top float64
	switch {
	case b.parent == nil:
		top = b.ActualMarginTop()
	case prev == nil:
		top = b.parent.ClientTop() + b.marginTopCollapse(nil)
	default:
		top = prev.bottom + b.marginTopCollapse(prev)
	}
	b.Location = Point{X: left, Y: top}
	b.bottom = top

	minWidth := b.MinimumWidth()
	width := cb.AvailableWidth() - b.ActualMarginLeft() - b.ActualMarginRight() -
		b.ActualBorderLeftWidth() - b.ActualBorderRightWidth()
	if cb == b {
		width = b.containingWidth()
	}
	if w, ok := b.ActualWidth(); ok {
		width = w
	}
	if width < minWidth || width >= unboundedThreshold {
		width = minWidth
	}

	height := b.ActualHeight()
	if height < 1 {
		height = b.ActualBorderTopWidth() + b.ActualBorderBottomWidth()
	}
	if height < 1 {
		height = 2
	}
	if height <= 2 && b.ActualBorderTopWidth() < 1 && b.ActualBorderBottomWidth() < 1 {
		b.SetProperty("border-top", "1px solid")
		b.SetProperty("border-bottom", "1px solid")
	}

	b.Size.Width = math.Max(width, 0)
	b.SetActualBottom(b.Location.Y + b.ActualPaddingTop() + b.ActualPaddingBottom() + height)
}
