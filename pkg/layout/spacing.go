package layout

import (
	"strconv"

	"htmlbox/pkg/css"
)

// spacingInfo links a spacing box to the row-spanning cell it reserves
// grid space for.
type spacingInfo struct {
	extended *Box
	startRow int
	endRow   int
}

// newSpacingBox creates the placeholder standing in for extended in a row
// below the one it starts in. It spans as many columns as the cell.
func newSpacingBox(extended *Box, startRow, endRow int) *Box {
	tag := NewTag("none", map[string]string{"colspan": strconv.Itoa(colSpan(extended))})
	b := newBox(tag, KindSpacing)
	b.spacing = &spacingInfo{extended: extended, startRow: startRow, endRow: endRow}
	return b
}

// IsSpacing reports a row-span placeholder.
func (b *Box) IsSpacing() bool { return b.spacing != nil }

// ExtendedBox returns the cell a spacing box stands in for.
func (b *Box) ExtendedBox() *Box {
	if b.spacing == nil {
		return nil
	}
	return b.spacing.extended
}

// StartRow is the row index of the spanning cell.
func (b *Box) StartRow() int {
	if b.spacing == nil {
		return -1
	}
	return b.spacing.startRow
}

// EndRow is the index of the last row the spanning cell covers.
func (b *Box) EndRow() int {
	if b.spacing == nil {
		return -1
	}
	return b.spacing.endRow
}

// colSpan, rowSpan and span read the table attributes, treating anything
// that is not a positive integer as 1.
func colSpan(b *Box) int {
	v, _ := b.Attr("colspan")
	return css.ParseSpan(v, 1)
}

func rowSpan(b *Box) int {
	if b.IsSpacing() {
		return 1
	}
	v, _ := b.Attr("rowspan")
	return css.ParseSpan(v, 1)
}

func span(b *Box) int {
	v, _ := b.Attr("span")
	return css.ParseSpan(v, 1)
}
