package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinimumWidthIncludesPaddingChain(t *testing.T) {
	div, _ := CreateBlock(nil, NewTag("div", nil), nil)
	div.SetProperty("padding", "5px")
	span, _ := CreateBox(div, NewTag("span", nil), nil)
	span.SetProperty("border-left-style", "solid")
	span.SetProperty("border-left-width", "2px")
	CreateTextBox(span, "abcdef ab")
	CreateTextBox(div, "abc")

	g := &testGraphics{}
	div.measureWordsSize(g)
	measureWords(g, div)

	assert.Equal(t, 72.0, div.MinimumWidth())
	assert.Equal(t, 62.0, span.MinimumWidth())
}

func TestMinMaxWidth(t *testing.T) {
	tests := []struct {
		name     string
		build    func() *Box
		min, max float64
	}{
		{
			name: "single line",
			build: func() *Box {
				div, _ := CreateBlock(nil, NewTag("div", nil), nil)
				CreateTextBox(div, "aa bbb c")
				return div
			},
			min: 30, max: 80,
		},
		{
			name: "padding on both",
			build: func() *Box {
				div, _ := CreateBlock(nil, NewTag("div", nil), nil)
				div.SetProperty("padding", "4px")
				CreateTextBox(div, "aa bbb c")
				return div
			},
			min: 38, max: 88,
		},
		{
			name: "blocks do not share a line",
			build: func() *Box {
				div, _ := CreateBlock(nil, NewTag("div", nil), nil)
				p1, _ := CreateBlock(div, NewTag("p", nil), nil)
				CreateTextBox(p1, "aaaa bb")
				p2, _ := CreateBlock(div, NewTag("p", nil), nil)
				CreateTextBox(p2, "ccc")
				return div
			},
			min: 40, max: 70,
		},
		{
			name: "inline siblings share a line",
			build: func() *Box {
				div, _ := CreateBlock(nil, NewTag("div", nil), nil)
				CreateTextBox(div, "aaaa")
				CreateTextBox(div, "bb")
				return div
			},
			min: 40, max: 60,
		},
		{
			name: "empty",
			build: func() *Box {
				div, _ := CreateBlock(nil, NewTag("div", nil), nil)
				return div
			},
			min: 0, max: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.build()
			g := &testGraphics{}
			b.measureWordsSize(g)
			measureWords(g, b)
			minW, maxW := b.MinMaxWidth()
			assert.Equal(t, tt.min, minW, "min")
			assert.Equal(t, tt.max, maxW, "max")
			assert.LessOrEqual(t, minW, maxW)
		})
	}
}

func TestWidthMarginDeepOnlyWhenUnbounded(t *testing.T) {
	outer, _ := CreateBlock(nil, NewTag("div", nil), nil)
	outer.SetProperty("margin-left", "7px")
	inner, _ := CreateBlock(outer, NewTag("div", nil), nil)
	inner.SetProperty("margin-right", "3px")

	outer.Size.Width = 500
	inner.Size.Width = 400
	assert.Equal(t, 0.0, widthMarginDeep(inner))

	outer.Size.Width = unboundedWidth
	assert.Equal(t, 10.0, widthMarginDeep(inner))
}
