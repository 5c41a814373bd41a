package layout

import "math"

// Intrinsic sizing: the narrowest and widest a subtree can be laid out.

// MinimumWidth returns the widest single word in the subtree plus the
// horizontal padding and border of every box from the word's owner up to b.
func (b *Box) MinimumWidth() float64 {
	var widest *Word
	maxWidth := 0.0
	longestWord(b, &maxWidth, &widest)

	padding := 0.0
	if widest != nil {
		for box := widest.owner; box != nil; box = box.parent {
			padding += box.ActualBorderLeftWidth() + box.ActualPaddingLeft() +
				box.ActualPaddingRight() + box.ActualBorderRightWidth()
			if box == b {
				break
			}
		}
	}
	return maxWidth + padding
}

func longestWord(box *Box, maxWidth *float64, widest **Word) {
	if len(box.Words) > 0 {
		for _, w := range box.Words {
			if w.Width > *maxWidth {
				*maxWidth = w.Width
				*widest = w
			}
		}
		return
	}
	for _, c := range box.children {
		if c.Display() == DisplayNone {
			continue
		}
		longestWord(c, maxWidth, widest)
	}
}

// MinMaxWidth returns the width the subtree needs when every line breaks
// at each opportunity (min) and when no line wraps at all (max). Both
// include the padding and border of the boxes on the way.
func (b *Box) MinMaxWidth() (minWidth, maxWidth float64) {
	var m minMaxSum
	m.walk(b)
	maxWidth = m.padding + m.max
	minWidth = m.padding
	if m.min < unboundedThreshold {
		minWidth += m.min
	}
	return minWidth, maxWidth
}

type minMaxSum struct {
	min     float64
	max     float64
	padding float64
	margin  float64
}

func (m *minMaxSum) walk(box *Box) {
	if box.Display() == DisplayNone {
		return
	}

	// A block-level box starts a new line, so the running line width resets.
	saved, reset := 0.0, false
	if d := box.Display(); d != DisplayInline && d != DisplayTableCell && box.WhiteSpace() != WhiteSpaceNoWrap {
		saved, reset = m.max, true
		m.max = m.margin
	}

	m.padding += box.ActualBorderLeftWidth() + box.ActualBorderRightWidth() +
		box.ActualPaddingLeft() + box.ActualPaddingRight()
	if box.Display() == DisplayTable {
		m.padding += tableSpacing(box)
	}

	if len(box.Words) > 0 {
		for _, w := range box.Words {
			m.max += w.FullWidth()
			if w.HasSpaceBefore {
				m.max += box.wordSpacing
			}
			m.min = math.Max(m.min, w.Width)
		}
		if last := box.Words[len(box.Words)-1]; !last.HasSpaceAfter {
			m.max -= last.SpacingAfter()
		}
	} else {
		for _, c := range box.children {
			margins := c.ActualMarginLeft() + c.ActualMarginRight()
			m.margin += margins
			m.walk(c)
			m.margin -= margins
		}
	}

	if reset {
		m.max = math.Max(m.max, saved)
	}
}

// widthMarginDeep sums the horizontal margins of b and its ancestors when
// b's width is unconstrained.
func widthMarginDeep(b *Box) float64 {
	if b.Size.Width <= unboundedThreshold && (b.parent == nil || b.parent.Size.Width <= unboundedThreshold) {
		return 0
	}
	sum := 0.0
	for box := b; box != nil; box = box.parent {
		sum += box.ActualMarginLeft() + box.ActualMarginRight()
	}
	return sum
}
