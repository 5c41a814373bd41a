package layout

import (
	"math"
)

// Point is a 2D coordinate
type Point struct {
	X float64
	Y float64
}

// Size represents dimensions (width and height)
type Size struct {
	Width  float64
	Height float64
}

// Rect represents a rectangular region
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// RectFromEdges builds a rect from its left, top, right and bottom edges.
func RectFromEdges(left, top, right, bottom float64) Rect {
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// IsEmpty reports whether the rect has no area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Offset returns r moved by p.
func (r Rect) Offset(p Point) Rect {
	r.X += p.X
	r.Y += p.Y
	return r
}

// Union returns the smallest rect containing r and o.
func (r Rect) Union(o Rect) Rect {
	return RectFromEdges(
		math.Min(r.Left(), o.Left()),
		math.Min(r.Top(), o.Top()),
		math.Max(r.Right(), o.Right()),
		math.Max(r.Bottom(), o.Bottom()),
	)
}

// Intersect returns the overlap of r and o, or the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	left := math.Max(r.Left(), o.Left())
	top := math.Max(r.Top(), o.Top())
	right := math.Min(r.Right(), o.Right())
	bottom := math.Min(r.Bottom(), o.Bottom())
	if right <= left || bottom <= top {
		return Rect{}
	}
	return RectFromEdges(left, top, right, bottom)
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return !r.Intersect(o).IsEmpty()
}

// Display values the engine distinguishes.
const (
	DisplayNone             = "none"
	DisplayInline           = "inline"
	DisplayBlock            = "block"
	DisplayInlineBlock      = "inline-block"
	DisplayListItem         = "list-item"
	DisplayTable            = "table"
	DisplayInlineTable      = "inline-table"
	DisplayTableRow         = "table-row"
	DisplayTableRowGroup    = "table-row-group"
	DisplayTableHeaderGroup = "table-header-group"
	DisplayTableFooterGroup = "table-footer-group"
	DisplayTableColumn      = "table-column"
	DisplayTableColumnGroup = "table-column-group"
	DisplayTableCell        = "table-cell"
	DisplayTableCaption     = "table-caption"
)

// White-space modes.
const (
	WhiteSpaceNormal  = "normal"
	WhiteSpaceNoWrap  = "nowrap"
	WhiteSpacePre     = "pre"
	WhiteSpacePreWrap = "pre-wrap"
	WhiteSpacePreLine = "pre-line"
)

// Positioning schemes.
const (
	PositionStatic   = "static"
	PositionRelative = "relative"
	PositionAbsolute = "absolute"
	PositionFixed    = "fixed"
)

// unboundedWidth is the width given to a box whose available width is not
// yet known. Anything at or above unboundedThreshold is treated as unbounded.
const (
	unboundedWidth     = 99999.0
	unboundedThreshold = 90999.0
)

// isBlockLike reports whether boxes with this display establish their own
// block geometry in the generic layout pass.
func isBlockLike(display string) bool {
	switch display {
	case DisplayBlock, DisplayListItem, DisplayTable, DisplayInlineTable, DisplayTableCell, DisplayTableCaption:
		return true
	}
	return false
}
