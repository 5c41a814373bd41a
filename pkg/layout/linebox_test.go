package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerticalAlignSubSuper(t *testing.T) {
	eng, root := newTestDocument(t)
	plain := CreateTextBox(root, "ab ")
	sub := mustBox(t, root, "span", nil, map[string]string{"vertical-align": "sub"})
	subText := CreateTextBox(sub, "cd ")
	sup := mustBox(t, root, "span", nil, map[string]string{"vertical-align": "super"})
	supText := CreateTextBox(sup, "ef")

	require.NoError(t, eng.PerformLayout(&testGraphics{}))
	require.Len(t, root.LineBoxes(), 1)

	assert.Equal(t, 0.0, plain.Words[0].Top, "baseline text stays put")
	assert.Equal(t, 10.0, subText.Words[0].Top, "sub lowers by half the word height")
	assert.Equal(t, -4.0, supText.Words[0].Top, "super raises by a fifth of the word height")
}

func TestBaselineMovesOnlyShorterRectangles(t *testing.T) {
	eng, root := newTestDocument(t)
	same := mustBox(t, root, "span", nil, map[string]string{"vertical-align": "sub"})
	sameText := CreateTextBox(same, "ab ")
	padded := mustBox(t, root, "span", nil, map[string]string{"vertical-align": "sub", "padding-top": "4px"})
	paddedText := CreateTextBox(padded, "cd")

	require.NoError(t, eng.PerformLayout(&testGraphics{}))
	require.Len(t, root.LineBoxes(), 1)
	line := root.LineBoxes()[0]

	assert.Equal(t, 10.0, sameText.Words[0].Top)
	r, ok := line.Rectangle(sameText)
	require.True(t, ok)
	assert.Equal(t, 0.0, r.Y, "as tall as its span: the rectangle stays")

	assert.Equal(t, 10.0, paddedText.Words[0].Top)
	r, ok = line.Rectangle(paddedText)
	require.True(t, ok)
	assert.Equal(t, 10.0, r.Y, "shorter than the padded span: the rectangle follows the words")
	pr, ok := line.Rectangle(padded)
	require.True(t, ok)
	assert.Equal(t, -4.0, pr.Y)
}
