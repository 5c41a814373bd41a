package layout

import "math"

// collapseMargins returns the collapsed margin value for two adjoining vertical margins.
// Per CSS 2.1: both positive => max, both negative => most negative, mixed => sum.
func collapseMargins(margin1, margin2 float64) float64 {
	if margin1 >= 0 && margin2 >= 0 {
		return math.Max(margin1, margin2)
	}
	if margin1 < 0 && margin2 < 0 {
		return math.Min(margin1, margin2)
	}
	// Mixed: one positive, one negative
	return margin1 + margin2
}

// marginTopCollapse returns the offset between the previous sibling's
// bottom (or the parent's content top) and this box's top.
func (b *Box) marginTopCollapse(prev *Box) float64 {
	var value float64
	switch {
	case prev != nil:
		value = collapseMargins(prev.effectiveMarginBottom(), b.ActualMarginTop())
		b.collapsedMarginTop = value
	case b.parent != nil && !b.parent.hasTopInset():
		// First child: its margin merges with the parent's.
		value = math.Max(0, b.ActualMarginTop()-math.Max(b.parent.ActualMarginTop(), b.parent.collapsedMarginTop))
	default:
		value = b.ActualMarginTop()
	}

	if value < 0.1 && b.Kind == KindHorizontalRule {
		value = b.EmHeight() * 1.1
	}
	return value
}

// hasTopInset reports top padding or border that separates the box's
// margin from its first child's.
func (b *Box) hasTopInset() bool {
	return b.ActualPaddingTop() >= 0.1 || b.ActualBorderTopWidth() >= 0.1
}

func (b *Box) hasBottomInset() bool {
	return b.ActualPaddingBottom() >= 0.1 || b.ActualBorderBottomWidth() >= 0.1
}

// effectiveMarginBottom is the margin a following sibling collapses with,
// including a last child's margin that escaped through this box.
func (b *Box) effectiveMarginBottom() float64 {
	if b.bottomEscapes {
		return b.collapsedMarginBottom
	}
	return b.ActualMarginBottom()
}

// marginBottomCollapse computes the bottom of a block from its last
// in-flow child. Without bottom padding, border or declared height the
// child's bottom margin escapes and collapses with the block's own.
func (b *Box) marginBottomCollapse() float64 {
	b.bottomEscapes = false
	b.collapsedMarginBottom = 0
	last := b.lastInFlowChild()
	if last == nil {
		return b.bottom
	}
	childMargin := last.effectiveMarginBottom()
	switch b.Display() {
	case DisplayTableCell, DisplayTableCaption:
	default:
		if b.parent != nil && !b.hasBottomInset() && !b.HasExplicitHeight() {
			b.bottomEscapes = true
			b.collapsedMarginBottom = collapseMargins(b.ActualMarginBottom(), childMargin)
			childMargin = 0
		}
	}
	bottom := last.bottom + childMargin + b.ActualPaddingBottom() + b.ActualBorderBottomWidth()
	return math.Max(b.bottom, bottom)
}
