package layout

import "htmlbox/pkg/css"

// offsets holds the resolved left/top/right/bottom of a positioned box.
type offsets struct {
	Left, Top, Right, Bottom             float64
	HasLeft, HasTop, HasRight, HasBottom bool
}

func (b *Box) positionOffsets(cbWidth, cbHeight float64) offsets {
	var o offsets
	resolve := func(name string, ref float64) (float64, bool) {
		raw := b.Property(name)
		if raw == "" || raw == "auto" {
			return 0, false
		}
		return css.ResolveLength(raw, ref, b.EmHeight())
	}
	o.Left, o.HasLeft = resolve("left", cbWidth)
	o.Right, o.HasRight = resolve("right", cbWidth)
	o.Top, o.HasTop = resolve("top", cbHeight)
	o.Bottom, o.HasBottom = resolve("bottom", cbHeight)
	return o
}

// applyAbsolutePositioning moves an absolutely positioned box, already laid
// out at its static position, to the place its offsets ask for
// (CSS 2.1 §10.3.7 and §10.6.4). A missing offset on an axis keeps the
// static position on that axis.
func (b *Box) applyAbsolutePositioning() error {
	var cb *Box
	if b.Position() != PositionFixed {
		var err error
		if cb, err = b.positionedContainingBlock(); err != nil {
			return err
		}
	}

	// Positioned relative to the containing block's padding edge, or the viewport.
	var cbX, cbY, cbWidth, cbHeight float64
	if cb == nil {
		if b.eng != nil {
			cbWidth, cbHeight = b.eng.viewport.Width, b.eng.viewport.Height
		}
	} else {
		cbX = cb.Location.X + cb.ActualBorderLeftWidth()
		cbY = cb.Location.Y + cb.ActualBorderTopWidth()
		cbWidth = cb.Size.Width - cb.ActualBorderLeftWidth() - cb.ActualBorderRightWidth()
		cbHeight = cb.Size.Height - cb.ActualBorderTopWidth() - cb.ActualBorderBottomWidth()
	}

	o := b.positionOffsets(cbWidth, cbHeight)
	width := b.Size.Width
	height := b.bottom - b.Location.Y
	marginLeft, marginRight := b.ActualMarginLeft(), b.ActualMarginRight()
	marginTop, marginBottom := b.ActualMarginTop(), b.ActualMarginBottom()

	x, y := b.Location.X, b.Location.Y

	// Both offsets and auto margins centre the box.
	if o.HasLeft && o.HasRight && b.Property("margin-left") == "auto" && b.Property("margin-right") == "auto" {
		free := cbWidth - o.Left - o.Right - width
		if free < 0 {
			free = 0
		}
		x = cbX + o.Left + free/2
	} else if o.HasLeft {
		x = cbX + o.Left + marginLeft
	} else if o.HasRight {
		x = cbX + cbWidth - o.Right - marginRight - width
	}

	if o.HasTop && o.HasBottom && b.Property("margin-top") == "auto" && b.Property("margin-bottom") == "auto" {
		free := cbHeight - o.Top - o.Bottom - height
		if free < 0 {
			free = 0
		}
		y = cbY + o.Top + free/2
	} else if o.HasTop {
		y = cbY + o.Top + marginTop
	} else if o.HasBottom {
		y = cbY + cbHeight - o.Bottom - marginBottom - height
	}

	b.offsetLeft(x - b.Location.X)
	b.offsetTop(y - b.Location.Y)
	return nil
}

// relativeOffset is the paint-time shift of a relatively positioned box.
// It leaves the flow around the box untouched.
func (b *Box) relativeOffset() Point {
	if b.Position() != PositionRelative {
		return Point{}
	}
	cb := b.ContainingBlock()
	o := b.positionOffsets(cb.AvailableWidth(), cb.Size.Height)
	var p Point
	if o.HasLeft {
		p.X = o.Left
	} else if o.HasRight {
		p.X = -o.Right
	}
	if o.HasTop {
		p.Y = o.Top
	} else if o.HasBottom {
		p.Y = -o.Bottom
	}
	return p
}
