package layout

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTable creates a table of rows, each cell given as text plus attributes.
type testCell struct {
	text  string
	attrs map[string]string
	style map[string]string
}

func buildTable(t *testing.T, parent *Box, style map[string]string, rows ...[]testCell) (*Box, [][]*Box) {
	t.Helper()
	table := mustBox(t, parent, "table", nil, map[string]string{"display": DisplayTable})
	for k, v := range style {
		table.SetProperty(k, v)
	}
	cells := make([][]*Box, len(rows))
	for i, row := range rows {
		tr := mustBox(t, table, "tr", nil, map[string]string{"display": DisplayTableRow})
		for _, c := range row {
			td := mustBox(t, tr, "td", c.attrs, map[string]string{"display": DisplayTableCell})
			for k, v := range c.style {
				td.SetProperty(k, v)
			}
			CreateTextBox(td, c.text)
			cells[i] = append(cells[i], td)
		}
	}
	return table, cells
}

func TestTableColumnsFollowContent(t *testing.T) {
	eng, root := newTestDocument(t)
	table, cells := buildTable(t, root, nil,
		[]testCell{{text: "aa"}, {text: "bbbb"}},
		[]testCell{{text: "a"}, {text: "bb"}},
	)

	require.NoError(t, eng.PerformLayout(&testGraphics{}))

	assert.Equal(t, 20.0, cells[0][0].Size.Width)
	assert.Equal(t, 40.0, cells[0][1].Size.Width)
	assert.Equal(t, cells[0][1].Location.X, cells[1][1].Location.X, "cells of one column line up")
	assert.Equal(t, 20.0, cells[1][0].Location.Y)
	assert.Equal(t, 60.0, table.Size.Width)
	assert.Equal(t, 40.0, table.Size.Height)
	checkGeometry(t, root)
}

func TestTableNeverNarrowerThanContent(t *testing.T) {
	eng, root := newTestDocument(t)
	table, cells := buildTable(t, root, map[string]string{"width": "10px"},
		[]testCell{{text: "abcde"}},
	)

	require.NoError(t, eng.PerformLayout(&testGraphics{}))

	assert.GreaterOrEqual(t, cells[0][0].Size.Width, 50.0)
	assert.GreaterOrEqual(t, table.Size.Width, 50.0)
	assert.GreaterOrEqual(t, table.Size.Width, table.MinimumWidth())
}

func TestTableSpecifiedWidthDistributesSpace(t *testing.T) {
	eng, root := newTestDocument(t)
	_, cells := buildTable(t, root, map[string]string{"width": "300px"},
		[]testCell{{text: "a"}, {text: "b"}, {text: "c", style: map[string]string{"width": "100px"}}},
	)

	require.NoError(t, eng.PerformLayout(&testGraphics{}))

	var widths []float64
	for _, c := range cells[0] {
		widths = append(widths, c.Size.Width)
	}
	if diff := cmp.Diff([]float64{100, 100, 100}, widths); diff != "" {
		t.Errorf("column widths (-want +got):\n%s", diff)
	}
}

func TestTableRowspanInsertsSpacingBox(t *testing.T) {
	eng, root := newTestDocument(t)
	_, cells := buildTable(t, root, nil,
		[]testCell{{text: "aa", attrs: map[string]string{"rowspan": "2"}}, {text: "bbbb"}},
		[]testCell{{text: "cc"}},
	)
	a, b, c := cells[0][0], cells[0][1], cells[1][0]
	row1 := c.Parent()

	g := &testGraphics{}
	require.NoError(t, eng.PerformLayout(g))

	require.Len(t, row1.Children(), 2)
	sb := row1.Children()[0]
	require.True(t, sb.IsSpacing())
	assert.Same(t, a, sb.ExtendedBox())
	assert.Equal(t, 0, sb.StartRow())
	assert.Equal(t, 1, sb.EndRow())

	assert.Equal(t, b.Location.X, c.Location.X, "the spanned column is skipped in the second row")
	assert.Equal(t, c.ActualBottom(), a.ActualBottom(), "the spanning cell reaches its last row")
	assert.Equal(t, Size{}, sb.Size)

	// A second layout reuses the placeholder.
	require.NoError(t, eng.PerformLayout(g))
	assert.Len(t, row1.Children(), 2)
	assert.Equal(t, b.Location.X, c.Location.X)
	checkGeometry(t, root)
}

func TestTableRowspanShrinkRemovesSpacingBox(t *testing.T) {
	eng, root := newTestDocument(t)
	_, cells := buildTable(t, root, nil,
		[]testCell{{text: "a", attrs: map[string]string{"rowspan": "2"}}, {text: "b"}},
		[]testCell{{text: "c"}},
	)
	g := &testGraphics{}
	require.NoError(t, eng.PerformLayout(g))
	row1 := cells[1][0].Parent()
	require.Len(t, row1.Children(), 2)

	cells[0][0].Tag.Attrs["rowspan"] = "1"
	require.NoError(t, eng.PerformLayout(g))
	assert.Len(t, row1.Children(), 1)
}

func TestTableRowspanBeyondLastRow(t *testing.T) {
	eng, root := newTestDocument(t)
	_, cells := buildTable(t, root, nil,
		[]testCell{{text: "a", attrs: map[string]string{"rowspan": "5"}}, {text: "b"}},
		[]testCell{{text: "c"}},
	)
	require.NoError(t, eng.PerformLayout(&testGraphics{}))

	sb := cells[1][0].Parent().Children()[0]
	require.True(t, sb.IsSpacing())
	assert.Equal(t, 1, sb.EndRow(), "the span is clamped to the rows that exist")
}

func TestTableColspan(t *testing.T) {
	eng, root := newTestDocument(t)
	_, cells := buildTable(t, root, map[string]string{"border-spacing": "4px"},
		[]testCell{{text: "aaaa", attrs: map[string]string{"colspan": "2"}}},
		[]testCell{{text: "bb"}, {text: "cc"}},
	)

	require.NoError(t, eng.PerformLayout(&testGraphics{}))

	wide, left, right := cells[0][0], cells[1][0], cells[1][1]
	assert.Equal(t, left.Location.X, wide.Location.X)
	assert.Equal(t, right.ActualRight(), wide.ActualRight(), "a spanning cell covers the spacing between its columns")
	assert.Equal(t, 4.0, right.Location.X-left.ActualRight())
}

func TestTableBorderSpacing(t *testing.T) {
	eng, root := newTestDocument(t)
	table, cells := buildTable(t, root, map[string]string{"border-spacing": "5px 7px"},
		[]testCell{{text: "a"}},
		[]testCell{{text: "b"}},
	)

	require.NoError(t, eng.PerformLayout(&testGraphics{}))

	assert.Equal(t, 5.0, cells[0][0].Location.X)
	assert.Equal(t, 7.0, cells[0][0].Location.Y)
	assert.Equal(t, 7.0, cells[1][0].Location.Y-cells[0][0].ActualBottom())
	assert.Equal(t, 20.0, table.Size.Width, "spacing on both sides of the single column")
	assert.Equal(t, 61.0, table.Size.Height)
}

func TestTableCollapsedBordersOverlap(t *testing.T) {
	table, _ := CreateBox(nil, NewTag("table", nil), nil)
	table.SetProperty("border-collapse", "collapse")
	table.SetProperty("border-spacing", "10px")
	assert.Equal(t, -1.0, horizontalSpacing(table))
	assert.Equal(t, -1.0, (&tableLayout{table: table}).verticalSpacing())
}

func TestTableCellVerticalAlign(t *testing.T) {
	eng, root := newTestDocument(t)
	_, cells := buildTable(t, root, nil,
		[]testCell{
			{text: "a", style: map[string]string{"vertical-align": "middle"}},
			{text: "bbbb cccc", style: map[string]string{"width": "40px"}},
			{text: "d", style: map[string]string{"vertical-align": "bottom"}},
		},
	)

	require.NoError(t, eng.PerformLayout(&testGraphics{}))

	middle := cells[0][0].Children()[0].Words[0]
	bottom := cells[0][2].Children()[0].Words[0]
	assert.Equal(t, 40.0, cells[0][0].Size.Height)
	assert.Equal(t, 10.0, middle.Top)
	assert.Equal(t, 20.0, bottom.Top)
}

func TestTableCaption(t *testing.T) {
	eng, root := newTestDocument(t)
	table, cells := buildTable(t, root, nil, []testCell{{text: "cell"}})
	caption := mustBox(t, nil, "caption", nil, map[string]string{"display": DisplayTableCaption})
	require.NoError(t, caption.SetParent(table, table.Children()[0]))
	CreateTextBox(caption, "title")

	require.NoError(t, eng.PerformLayout(&testGraphics{}))

	assert.Equal(t, 0.0, caption.Location.Y)
	assert.Equal(t, 20.0, cells[0][0].Location.Y, "the grid starts below the caption")
}

func TestTableMaxWidth(t *testing.T) {
	eng, root := newTestDocument(t)
	table, _ := buildTable(t, root, map[string]string{"max-width": "100px"},
		[]testCell{{text: "aaaa bbbb cccc"}, {text: "dddd eeee ffff"}},
	)

	require.NoError(t, eng.PerformLayout(&testGraphics{}))
	assert.LessOrEqual(t, table.Size.Width, 100.0)
	assert.GreaterOrEqual(t, table.Size.Width, table.MinimumWidth())
}

func TestTableWidthsAreResolvedAndFit(t *testing.T) {
	eng, root := newTestDocument(t)
	table, _ := buildTable(t, root, map[string]string{"width": "200px"},
		[]testCell{{text: "one two"}, {text: "three"}, {text: "x"}},
		[]testCell{{text: "four", attrs: map[string]string{"colspan": "2"}}, {text: "five six"}},
	)
	require.NoError(t, eng.PerformLayout(&testGraphics{}))

	tl := &tableLayout{table: table}
	tl.assignBoxKinds()
	tl.insertSpacingBoxes()
	avail := tl.calculateCountAndWidth()
	tl.determineMissingColumnWidths(avail)
	tl.enforceMinimumSize()
	require.NoError(t, tl.enforceMaximumSize())

	for i, ok := range tl.resolved {
		assert.True(t, ok, "column %d unresolved", i)
	}
	sum, err := tl.widthSum()
	require.NoError(t, err)
	assert.LessOrEqual(t, sum, tl.availableTableWidth()+0.001)
}

func TestTableUnresolvedColumnIsAnError(t *testing.T) {
	tl := &tableLayout{
		table:    newBox(NewTag("table", nil), KindGeneric),
		widths:   []float64{10, 0},
		resolved: []bool{true, false},
	}
	_, err := tl.widthSum()
	assert.ErrorIs(t, err, ErrUnresolvedColumn)
}

func TestTableSpacingEstimate(t *testing.T) {
	_, root := newTestDocument(t)
	table, _ := buildTable(t, root, map[string]string{"border-spacing": "3px"},
		[]testCell{{text: "a"}, {text: "b"}, {text: "c"}},
	)
	assert.Equal(t, 12.0, tableSpacing(table))
}

func TestMalformedSpansFallBackToOne(t *testing.T) {
	for _, v := range []string{"", "0", "-2", "abc", "1.5"} {
		b, _ := CreateBox(nil, NewTag("td", map[string]string{"colspan": v, "rowspan": v}), nil)
		assert.Equal(t, 1, colSpan(b), "colspan %q", v)
		assert.Equal(t, 1, rowSpan(b), "rowspan %q", v)
	}
}

func TestTableWiderThanViewportKeepsContentMinimum(t *testing.T) {
	eng, root := newTestDocument(t)
	_, cells := buildTable(t, root, nil, []testCell{{text: strings.Repeat("w", 1100)}})

	require.NoError(t, eng.PerformLayout(&testGraphics{}))

	cell := cells[0][0]
	assert.GreaterOrEqual(t, cell.Size.Width, 11000.0, "no max-width is declared, so nothing is shaved")
	assert.GreaterOrEqual(t, cell.Size.Width, cell.MinimumWidth())
}

func TestTableRowInsertedAboveRowspan(t *testing.T) {
	eng, root := newTestDocument(t)
	table, cells := buildTable(t, root, nil,
		[]testCell{{text: "a", attrs: map[string]string{"rowspan": "2"}}, {text: "b"}},
		[]testCell{{text: "c"}},
	)
	g := &testGraphics{}
	require.NoError(t, eng.PerformLayout(g))

	a := cells[0][0]
	firstRow := a.Parent()
	lastRow := cells[1][0].Parent()

	top, err := CreateBox(table, NewTag("tr", nil), firstRow)
	require.NoError(t, err)
	top.SetProperty("display", DisplayTableRow)
	td := mustBox(t, top, "td", nil, map[string]string{"display": DisplayTableCell})
	CreateTextBox(td, "new")

	require.NoError(t, eng.PerformLayout(g))

	sb := lastRow.Children()[0]
	require.True(t, sb.IsSpacing())
	assert.Equal(t, 1, sb.StartRow())
	assert.Equal(t, 2, sb.EndRow())
	assert.Equal(t, lastRow.ActualBottom(), a.ActualBottom(), "the spanning cell still reaches its last row")
	assert.Equal(t, 60.0, a.ActualBottom())
	checkGeometry(t, root)
}

func TestTablePageBreakPushesRows(t *testing.T) {
	eng, root := newTestDocument(t)
	eng.SetPageSize(Size{Width: 800, Height: 100})
	mustBlock(t, root, "div", map[string]string{"height": "70px"})
	_, cells := buildTable(t, root, map[string]string{"page-break-inside": "avoid"},
		[]testCell{{text: "a"}},
		[]testCell{{text: "b"}},
		[]testCell{{text: "c"}},
	)

	require.NoError(t, eng.PerformLayout(&testGraphics{}))

	var tops []float64
	for _, row := range cells {
		tops = append(tops, row[0].Parent().Location.Y)
	}
	// The second row straddles the boundary at 100; the first row moves
	// with it rather than being left alone on the first page.
	if diff := cmp.Diff([]float64{101, 121, 141}, tops); diff != "" {
		t.Errorf("row tops (-want +got):\n%s", diff)
	}
}

func TestTableWithoutAvoidIgnoresPages(t *testing.T) {
	eng, root := newTestDocument(t)
	eng.SetPageSize(Size{Width: 800, Height: 100})
	mustBlock(t, root, "div", map[string]string{"height": "70px"})
	_, cells := buildTable(t, root, nil,
		[]testCell{{text: "a"}},
		[]testCell{{text: "b"}},
	)

	require.NoError(t, eng.PerformLayout(&testGraphics{}))
	assert.Equal(t, 70.0, cells[0][0].Location.Y)
	assert.Equal(t, 90.0, cells[1][0].Location.Y)
}
