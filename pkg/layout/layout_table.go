package layout

import (
	"fmt"
	"math"
	"strconv"

	"htmlbox/pkg/css"
)

// tableLayout is the working set for laying out one table. A new one is
// built on every layout call and dropped afterwards.
type tableLayout struct {
	table *Box

	caption  *Box
	header   *Box
	footer   *Box
	bodyRows []*Box
	columns  []*Box
	allRows  []*Box

	columnCount int
	widths      []float64
	resolved    []bool
	minWidths   []float64

	widthSpecified bool
}

// maxShaveIterations bounds the max-width convergence loops.
const maxShaveIterations = 15

// layoutTable computes column widths and positions every cell of table.
func layoutTable(g Graphics, table *Box) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
		if err != nil {
			err = &Error{Kind: ErrTableLayout, Err: err}
		}
	}()
	t := &tableLayout{table: table}
	return t.layout(g)
}

func (t *tableLayout) layout(g Graphics) error {
	// Stage 1: measure every word so intrinsic widths are known.
	measureWords(g, t.table)

	// Stage 2: classify children into caption, header, body, footer and columns.
	t.assignBoxKinds()

	// Stage 3: reserve grid space below row-spanning cells.
	t.insertSpacingBoxes()

	// Stage 4: column count and explicit widths.
	availCellSpace := t.calculateCountAndWidth()

	// Stage 5: widths of the remaining columns.
	t.determineMissingColumnWidths(availCellSpace)

	// Stage 6 and 7: keep every column between its content minimum and the table width.
	t.enforceMinimumSize()
	if err := t.enforceMaximumSize(); err != nil {
		return err
	}

	// Stage 8: the table's padding becomes cell spacing.
	t.table.SetProperty("padding", "0")

	// Stage 9: place the cells.
	return t.layoutCells(g)
}

func (t *tableLayout) assignBoxKinds() {
	for _, box := range t.table.children {
		switch box.Display() {
		case DisplayTableCaption:
			t.caption = box
		case DisplayTableRow:
			t.bodyRows = append(t.bodyRows, box)
		case DisplayTableRowGroup:
			t.bodyRows = append(t.bodyRows, rowsOf(box)...)
		case DisplayTableHeaderGroup:
			if t.header != nil {
				t.bodyRows = append(t.bodyRows, rowsOf(box)...)
			} else {
				t.header = box
			}
		case DisplayTableFooterGroup:
			if t.footer != nil {
				t.bodyRows = append(t.bodyRows, rowsOf(box)...)
			} else {
				t.footer = box
			}
		case DisplayTableColumn:
			for i := 0; i < span(box); i++ {
				t.columns = append(t.columns, box)
			}
		case DisplayTableColumnGroup:
			if len(box.children) == 0 {
				for i := 0; i < span(box); i++ {
					t.columns = append(t.columns, box)
				}
				continue
			}
			for _, col := range box.children {
				for i := 0; i < span(col); i++ {
					t.columns = append(t.columns, col)
				}
			}
		}
	}

	if t.header != nil {
		t.allRows = append(t.allRows, rowsOf(t.header)...)
	}
	t.allRows = append(t.allRows, t.bodyRows...)
	if t.footer != nil {
		t.allRows = append(t.allRows, rowsOf(t.footer)...)
	}
}

func rowsOf(group *Box) []*Box {
	var rows []*Box
	for _, c := range group.children {
		if c.Display() == DisplayTableRow {
			rows = append(rows, c)
		}
	}
	return rows
}

// cellsOf lists the cells and spacing boxes of a row.
func cellsOf(row *Box) []*Box {
	cells := make([]*Box, 0, len(row.children))
	for _, c := range row.children {
		if c.IsSpacing() || c.Display() == DisplayTableCell {
			cells = append(cells, c)
		}
	}
	return cells
}

// realColumn is the grid column of cell: the colspans of the cells before it.
func realColumn(row, cell *Box) int {
	col := 0
	for _, c := range cellsOf(row) {
		if c == cell {
			break
		}
		col += colSpan(c)
	}
	return col
}

// insertSpacingBoxes puts a spacing box into each row covered by a
// row-spanning cell below its first row, at the cell's grid column.
// Placeholders from an earlier layout are kept when still valid and
// removed otherwise, so repeated layouts never expand a cell twice.
func (t *tableLayout) insertSpacingBoxes() {
	type slot struct {
		cell *Box
		row  int
	}
	wanted := make(map[slot]bool)
	for r, row := range t.allRows {
		for _, cell := range cellsOf(row) {
			if cell.IsSpacing() {
				continue
			}
			for i := r + 1; i < r+rowSpan(cell) && i < len(t.allRows); i++ {
				wanted[slot{cell, i}] = true
			}
		}
	}

	// Drop placeholders whose cell moved, shrank or disappeared.
	for r, row := range t.allRows {
		for _, c := range cellsOf(row) {
			if c.IsSpacing() && !wanted[slot{c.spacing.extended, r}] {
				c.Remove()
			}
		}
	}

	for r, row := range t.allRows {
		for _, cell := range cellsOf(row) {
			if cell.IsSpacing() {
				continue
			}
			rs := rowSpan(cell)
			if rs <= 1 {
				continue
			}
			col := realColumn(row, cell)
			end := min(r+rs-1, len(t.allRows)-1)
			for i := r + 1; i <= end; i++ {
				target := t.allRows[i]
				if sb := spacingFor(target, cell); sb != nil {
					// Rows may have been inserted above since the last layout.
					sb.spacing.startRow, sb.spacing.endRow = r, end
					sb.Tag.Attrs["colspan"] = strconv.Itoa(colSpan(cell))
					continue
				}
				sb := newSpacingBox(cell, r, end)
				target.insertChild(sb, insertionIndex(target, col))
			}
		}
	}
}

func spacingFor(row, cell *Box) *Box {
	for _, c := range row.children {
		if c.IsSpacing() && c.spacing.extended == cell {
			return c
		}
	}
	return nil
}

// insertionIndex finds the child index at which a box lands in grid column col.
func insertionIndex(row *Box, col int) int {
	count := 0
	for i, c := range row.children {
		if !c.IsSpacing() && c.Display() != DisplayTableCell {
			continue
		}
		if count >= col {
			return i
		}
		count += colSpan(c)
	}
	return len(row.children)
}

func (t *tableLayout) horizontalSpacing() float64 { return horizontalSpacing(t.table) }

func (t *tableLayout) verticalSpacing() float64 {
	if t.table.BorderCollapse() == "collapse" {
		return -1
	}
	return t.table.ActualBorderSpacingVertical()
}

// horizontalSpacing is the gap between cells; collapsed borders overlap by one.
func horizontalSpacing(table *Box) float64 {
	if table.BorderCollapse() == "collapse" {
		return -1
	}
	return table.ActualBorderSpacingHorizontal()
}

// tableSpacing is the horizontal space a table spends on cell spacing,
// estimated from its first rows.
func tableSpacing(table *Box) float64 {
	count, columns := 0, 0
	for _, box := range table.children {
		switch box.Display() {
		case DisplayTableColumn:
			columns += span(box)
		case DisplayTableRowGroup, DisplayTableHeaderGroup, DisplayTableFooterGroup:
			for _, row := range rowsOf(box) {
				count++
				columns = max(columns, len(row.children))
			}
		case DisplayTableRow:
			count++
			columns = max(columns, len(box.children))
		}
		// The first rows are representative enough.
		if count > 30 {
			break
		}
	}
	// Spacing also separates the outer cells from the table border.
	return float64(columns+1) * horizontalSpacing(table)
}

// availableTableWidth is the declared table width, or the width its
// containing block offers.
func (t *tableLayout) availableTableWidth() float64 {
	avail := t.table.containingWidth()
	if l, ok := css.ParseLength(t.table.Property("width")); ok && l.Number > 0 {
		t.widthSpecified = true
		return l.Resolve(avail, t.table.EmHeight())
	}
	return avail - t.table.ActualMarginLeft() - t.table.ActualMarginRight()
}

// maxTableWidth is the declared max-width, or effectively unbounded.
func (t *tableLayout) maxTableWidth() float64 {
	if l, ok := css.ParseLength(t.table.Property("max-width")); ok && l.Number > 0 {
		t.widthSpecified = true
		return l.Resolve(t.table.containingWidth(), t.table.EmHeight())
	}
	return unboundedWidth
}

func (t *tableLayout) availableCellWidth() float64 {
	return t.availableTableWidth() - t.horizontalSpacing()*float64(t.columnCount+1) -
		t.table.ActualBorderLeftWidth() - t.table.ActualBorderRightWidth()
}

// widthSum is the table width implied by the column widths. Every column
// must be resolved by now.
func (t *tableLayout) widthSum() (float64, error) {
	sum := 0.0
	for i, w := range t.widths {
		if !t.resolved[i] {
			return 0, fmt.Errorf("column %d: %w", i, ErrUnresolvedColumn)
		}
		sum += w
	}
	sum += t.horizontalSpacing() * float64(len(t.widths)+1)
	sum += t.table.ActualBorderLeftWidth() + t.table.ActualBorderRightWidth()
	return sum, nil
}

func (t *tableLayout) setWidth(i int, w float64) {
	t.widths[i] = w
	t.resolved[i] = true
}

func (t *tableLayout) calculateCountAndWidth() float64 {
	if len(t.columns) > 0 {
		t.columnCount = len(t.columns)
	} else {
		for _, row := range t.allRows {
			n := 0
			for _, c := range cellsOf(row) {
				n += colSpan(c)
			}
			t.columnCount = max(t.columnCount, n)
		}
	}

	t.widths = make([]float64, t.columnCount)
	t.resolved = make([]bool, t.columnCount)

	availCellSpace := t.availableCellWidth()

	if len(t.columns) > 0 {
		for i, col := range t.columns {
			raw := col.Property("width")
			l, ok := css.ParseLength(raw)
			if !ok || l.Number <= 0 {
				continue
			}
			switch {
			case l.IsPercent():
				if w, ok := css.ParseNumber(raw, availCellSpace); ok {
					t.setWidth(i, w)
				}
			case l.Unit == css.UnitPx || l.Unit == css.UnitNone:
				t.setWidth(i, l.Number)
			}
		}
		return availCellSpace
	}

	for _, row := range t.allRows {
		for _, cell := range cellsOf(row) {
			if cell.IsSpacing() {
				continue
			}
			col := realColumn(row, cell)
			if col >= t.columnCount {
				continue
			}
			w, ok := css.ResolveLength(cell.Property("width"), availCellSpace, cell.EmHeight())
			if !ok || w <= 0 {
				continue
			}
			cs := colSpan(cell)
			w /= float64(cs)
			for j := col; j < col+cs && j < t.columnCount; j++ {
				if t.resolved[j] {
					w = math.Max(t.widths[j], w)
				}
				t.setWidth(j, w)
			}
		}
	}
	return availCellSpace
}

// columnsMinMaxByContent returns the content minimum and maximum width per
// column, spreading spanning cells evenly over their columns.
func (t *tableLayout) columnsMinMaxByContent(onlyUnresolved bool) (minWidths, maxWidths []float64) {
	n := len(t.widths)
	minWidths = make([]float64, n)
	maxWidths = make([]float64, n)
	if n == 0 {
		return minWidths, maxWidths
	}
	for _, row := range t.allRows {
		for _, cell := range cellsOf(row) {
			if cell.IsSpacing() {
				continue
			}
			col := min(realColumn(row, cell), n-1)
			if onlyUnresolved && t.resolved[col] {
				continue
			}
			minW, maxW := cell.MinMaxWidth()
			cs := colSpan(cell)
			minW /= float64(cs)
			maxW /= float64(cs)
			for j := col; j < col+cs && j < n; j++ {
				minWidths[j] = math.Max(minWidths[j], minW)
				maxWidths[j] = math.Max(maxWidths[j], maxW)
			}
		}
	}
	return minWidths, maxWidths
}

func (t *tableLayout) determineMissingColumnWidths(availCellSpace float64) {
	n := len(t.widths)
	if n == 0 {
		return
	}
	occupied := 0.0

	if !t.widthSpecified {
		// Start every open column at its minimum and grow it toward its maximum.
		minWidths, maxWidths := t.columnsMinMaxByContent(true)
		for i := range t.widths {
			if !t.resolved[i] {
				t.setWidth(i, minWidths[i])
			}
			occupied += t.widths[i]
		}
		for i := range t.widths {
			if maxWidths[i] > t.widths[i] {
				old := t.widths[i]
				grow := (availCellSpace - occupied) / float64(n-i)
				t.widths[i] = math.Min(t.widths[i]+math.Max(grow, 0), maxWidths[i])
				occupied += t.widths[i] - old
			}
		}
		return
	}

	open := 0
	for i, w := range t.widths {
		if t.resolved[i] {
			occupied += w
		} else {
			open++
		}
	}
	originallyOpen := make([]bool, n)
	for i := range t.widths {
		originallyOpen[i] = !t.resolved[i]
	}
	openAtStart := open

	if open > 0 {
		_, maxWidths := t.columnsMinMaxByContent(true)

		// Columns whose content fits their fair share take exactly their
		// content width; that changes the share, so repeat until stable.
		for {
			before := open
			for i := range t.widths {
				if t.resolved[i] || open == 0 {
					continue
				}
				share := (availCellSpace - occupied) / float64(open)
				if share > maxWidths[i] {
					t.setWidth(i, maxWidths[i])
					open--
					occupied += maxWidths[i]
				}
			}
			if before == open {
				break
			}
		}

		if open > 0 {
			share := (availCellSpace - occupied) / float64(open)
			for i := range t.widths {
				if !t.resolved[i] {
					t.setWidth(i, share)
				}
			}
			occupied = availCellSpace
			open = 0
		}
	}

	if occupied < availCellSpace {
		extra := availCellSpace - occupied
		if openAtStart > 0 {
			for i := range t.widths {
				if originallyOpen[i] {
					t.widths[i] += extra / float64(openAtStart)
				}
			}
		} else if occupied > 0 {
			for i := range t.widths {
				t.widths[i] += extra * (t.widths[i] / occupied)
			}
		}
	}
}

// columnMinWidths is the narrowest each column may get. A spanning cell
// charges what its other columns cannot hold to its last column.
func (t *tableLayout) columnMinWidths() []float64 {
	if t.minWidths != nil {
		return t.minWidths
	}
	n := len(t.widths)
	t.minWidths = make([]float64, n)
	for _, row := range t.allRows {
		for _, cell := range cellsOf(row) {
			if cell.IsSpacing() {
				continue
			}
			cs := colSpan(cell)
			col := realColumn(row, cell)
			if col >= n {
				continue
			}
			last := min(col+cs, n) - 1
			spanned := float64(cs-1) * t.horizontalSpacing()
			for k := col; k < last; k++ {
				spanned += t.minWidths[k]
			}
			t.minWidths[last] = math.Max(t.minWidths[last], cell.MinimumWidth()-spanned)
		}
	}
	return t.minWidths
}

// enforceMinimumSize grows columns narrower than their content minimum,
// taking the difference from the next column.
func (t *tableLayout) enforceMinimumSize() {
	mins := t.columnMinWidths()
	for i := range t.widths {
		if t.widths[i] < mins[i] {
			diff := mins[i] - t.widths[i]
			t.widths[i] = mins[i]
			if i < len(t.widths)-1 {
				t.widths[i+1] -= diff
			}
		}
	}
}

func (t *tableLayout) canReduce(i int) bool {
	mins := t.columnMinWidths()
	return i < len(t.widths) && i < len(mins) && t.widths[i] > mins[i]
}

func (t *tableLayout) canReduceAny() bool {
	for i := range t.widths {
		if t.canReduce(i) {
			return true
		}
	}
	return false
}

// enforceMaximumSize narrows the columns until the table fits, one unit at
// a time round-robin while any column is above its minimum. A declared
// max-width is then honored even at the cost of clipping content.
func (t *tableLayout) enforceMaximumSize() error {
	sum, err := t.widthSum()
	if err != nil {
		return err
	}
	avail := t.availableTableWidth()
	col := 0
	for sum > avail && t.canReduceAny() {
		for !t.canReduce(col) {
			col = (col + 1) % len(t.widths)
		}
		t.widths[col]--
		col = (col + 1) % len(t.widths)
		if sum, err = t.widthSum(); err != nil {
			return err
		}
	}

	maxWidth := t.maxTableWidth()
	if maxWidth >= unboundedThreshold || maxWidth >= sum {
		return nil
	}

	minWidths, maxWidths := t.columnsMinMaxByContent(false)
	copy(t.widths, minWidths)
	if sum, err = t.widthSum(); err != nil {
		return err
	}

	if maxWidth < sum {
		// Shave the widest columns down toward the next widest.
		for a := 0; a < maxShaveIterations && maxWidth < sum-0.1; a++ {
			widest, second := 0.0, 0.0
			count := 0
			for _, w := range t.widths {
				if w > widest+0.1 {
					second = widest
					widest = w
					count = 1
				} else if w > widest-0.1 {
					count++
				}
			}
			decrease := (sum - maxWidth) / float64(len(t.widths))
			if second > 0 {
				decrease = widest - second
			}
			if decrease*float64(count) > sum-maxWidth {
				decrease = (sum - maxWidth) / float64(count)
			}
			for i, w := range t.widths {
				if w > widest-0.1 {
					t.widths[i] -= decrease
				}
			}
			if sum, err = t.widthSum(); err != nil {
				return err
			}
		}
		return nil
	}

	// Slack is left: grow columns that have not reached their content maximum.
	for a := 0; a < maxShaveIterations && maxWidth > sum+0.1; a++ {
		growing := 0
		for i, w := range t.widths {
			if w+1 < maxWidths[i] {
				growing++
			}
		}
		if growing == 0 {
			growing = len(t.widths)
		}
		hit := false
		increment := (maxWidth - sum) / float64(growing)
		for i, w := range t.widths {
			if w+0.1 < maxWidths[i] {
				increment = math.Min(increment, maxWidths[i]-w)
				hit = true
			}
		}
		for i, w := range t.widths {
			if !hit || w+1 < maxWidths[i] {
				t.widths[i] += increment
			}
		}
		if sum, err = t.widthSum(); err != nil {
			return err
		}
	}
	return nil
}

// cellWidth is the width of a cell starting at column col, including the
// spacing between the columns it spans.
func (t *tableLayout) cellWidth(col int, cell *Box) float64 {
	cs := colSpan(cell)
	sum := 0.0
	for i := col; i < col+cs && i < len(t.widths); i++ {
		sum += t.widths[i]
	}
	return sum + float64(cs-1)*t.horizontalSpacing()
}

func (t *tableLayout) layoutCells(g Graphics) error {
	table := t.table
	hs, vs := t.horizontalSpacing(), t.verticalSpacing()
	startX := math.Max(table.ClientLeft()+hs, 0)
	startY := math.Max(table.ClientTop()+vs, 0)

	if t.caption != nil {
		t.caption.Location = Point{X: table.ClientLeft(), Y: table.ClientTop()}
		t.caption.Size.Width = t.availableTableWidth() - table.ActualBorderLeftWidth() - table.ActualBorderRightWidth()
		if err := t.caption.PerformLayout(g); err == nil {
			startY = t.caption.bottom + t.caption.ActualMarginBottom() + vs
		}
	}

	curY := startY
	maxRight := startX
	maxBottom := 0.0

	if align := table.TextAlign(); align == "center" || align == "right" {
		sum, err := t.widthSum()
		if err != nil {
			return err
		}
		free := t.availableTableWidth() - sum
		shift := free / 2
		if align == "right" {
			shift = free
		}
		if shift > 0 {
			startX += shift
			table.Location.X += shift
		}
	}

	eng := table.eng
	avoidBreaks := eng != nil && eng.pageSize.Height > 0 && table.PageBreakInside() == "avoid"
	pushed := make([]bool, len(t.allRows))

	for i := 0; i < len(t.allRows); i++ {
		row := t.allRows[i]
		curX := startX
		rowTop := curY

		for _, cell := range cellsOf(row) {
			col := realColumn(row, cell)
			if col >= len(t.widths) {
				break
			}
			width := t.cellWidth(col, cell)
			cell.Location = Point{X: curX, Y: curY}

			if cell.IsSpacing() {
				cell.Size = Size{}
				cell.bottom = curY
				if cell.spacing.endRow == i {
					maxBottom = math.Max(maxBottom, cell.spacing.extended.bottom)
				}
				curX += width + hs
				continue
			}

			cell.Size = Size{Width: width}
			if err := cell.PerformLayout(g); err != nil {
				cell.SetActualBottom(curY)
			}
			if rowSpan(cell) == 1 {
				maxBottom = math.Max(maxBottom, cell.bottom)
			}
			maxRight = math.Max(maxRight, cell.ActualRight())
			curX = cell.ActualRight() + hs
		}

		breakPage := false
		for _, cell := range cellsOf(row) {
			switch {
			case !cell.IsSpacing() && rowSpan(cell) == 1:
				cell.SetActualBottom(maxBottom)
				applyCellVerticalAlignment(cell)
			case cell.IsSpacing() && cell.spacing.endRow == i:
				ext := cell.spacing.extended
				ext.SetActualBottom(maxBottom)
				applyCellVerticalAlignment(ext)
			}

			if !avoidBreaks || pushed[i] || cell.IsSpacing() {
				continue
			}
			if cell.breakPage(eng.pageSize.Height, eng.marginTop) {
				breakPage = true
				curY = cell.Location.Y
				break
			}
		}

		if breakPage {
			pushed[i] = true
			maxBottom = 0
			// Never strand the first row alone on the previous page.
			if i == 1 {
				i = -1
			} else {
				i--
			}
			continue
		}

		row.Location = Point{X: startX, Y: rowTop}
		row.Size.Width = curX - hs - startX
		row.SetActualBottom(math.Max(maxBottom, rowTop))

		curY = maxBottom + vs
	}

	for _, group := range []*Box{t.header, t.footer} {
		if group != nil {
			fitGroup(group)
		}
	}
	for _, c := range table.children {
		if c.Display() == DisplayTableRowGroup {
			fitGroup(c)
		}
	}

	if w, ok := table.ActualWidth(); ok {
		maxRight = math.Max(maxRight, table.Location.X+w)
	}
	table.SetActualRight(maxRight + hs + table.ActualBorderRightWidth())
	table.SetActualBottom(math.Max(maxBottom, startY) + vs + table.ActualBorderBottomWidth())
	return nil
}

// fitGroup sizes a row group to the union of its rows.
func fitGroup(group *Box) {
	rows := rowsOf(group)
	if len(rows) == 0 {
		return
	}
	r := rows[0].Bounds()
	for _, row := range rows[1:] {
		r = r.Union(row.Bounds())
	}
	group.Location = Point{X: r.X, Y: r.Y}
	group.Size.Width = r.Width
	group.SetActualBottom(r.Bottom())
}

// breakPage moves the box to the next page when it would straddle a page
// boundary, reporting whether it moved.
func (b *Box) breakPage(page, marginTop float64) bool {
	if page <= 0 || b.Size.Height >= page {
		return false
	}
	remTop := modPage(b.Location.Y-marginTop, page)
	remBottom := modPage(b.bottom-marginTop, page)
	if remTop > remBottom {
		b.offsetTop(page - remTop + 1)
		return true
	}
	return false
}
