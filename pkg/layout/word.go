package layout

import (
	"image"
	"strings"
)

// Word is one paintable atom on a line: a run of text, a run of preserved
// spaces, an explicit line break or an image placeholder.
type Word struct {
	Text string

	Left   float64
	Top    float64
	Width  float64
	Height float64

	HasSpaceBefore bool
	HasSpaceAfter  bool

	owner   *Box
	isImage bool

	// Image is the decoded payload of an image word, nil until loaded.
	Image image.Image

	selected       bool
	selectionStart int
	selectionEnd   int
}

func newWord(owner *Box, text string, spaceBefore, spaceAfter bool) *Word {
	return &Word{owner: owner, Text: text, HasSpaceBefore: spaceBefore, HasSpaceAfter: spaceAfter}
}

func newImageWord(owner *Box) *Word {
	return &Word{owner: owner, isImage: true}
}

// Owner returns the box the word belongs to.
func (w *Word) Owner() *Box { return w.owner }

func (w *Word) IsImage() bool { return w.isImage }

// IsSpaces reports a word made only of preserved whitespace.
func (w *Word) IsSpaces() bool {
	return !w.isImage && w.Text != "" && strings.TrimSpace(w.Text) == "" && !w.IsLineBreak()
}

// IsLineBreak reports an explicit line break.
func (w *Word) IsLineBreak() bool { return w.Text == "\n" }

func (w *Word) Right() float64  { return w.Left + w.Width }
func (w *Word) Bottom() float64 { return w.Top + w.Height }

// Rect returns the word's rectangle.
func (w *Word) Rect() Rect {
	return Rect{X: w.Left, Y: w.Top, Width: w.Width, Height: w.Height}
}

// SpacingAfter is the gap the owner's word spacing adds after the word.
func (w *Word) SpacingAfter() float64 {
	if w.owner == nil {
		return 0
	}
	s := 0.0
	if w.HasSpaceAfter {
		s += w.owner.wordSpacing
	}
	if w.isImage {
		s += w.owner.wordSpacing
	}
	return s
}

// FullWidth is the width plus trailing word spacing.
func (w *Word) FullWidth() float64 { return w.Width + w.SpacingAfter() }

// Select marks characters [start, end) as selected. A range covering the
// whole word, or start and end both negative, selects the word entirely.
func (w *Word) Select(start, end int) {
	n := len([]rune(w.Text))
	if start < 0 && end < 0 {
		start, end = 0, n
	}
	start = max(0, min(start, n))
	end = max(start, min(end, n))
	w.selected = true
	w.selectionStart = start
	w.selectionEnd = end
}

// ClearSelection removes any selection from the word.
func (w *Word) ClearSelection() {
	w.selected = false
	w.selectionStart = 0
	w.selectionEnd = 0
}

// Selected reports whether any part of the word is selected.
func (w *Word) Selected() bool { return w.selected }

// SelectionRange returns the selected character offsets. partial is false
// when the whole word is selected, in which case the offsets carry no meaning.
func (w *Word) SelectionRange() (start, end int, partial bool) {
	if !w.selected {
		return 0, 0, false
	}
	n := len([]rune(w.Text))
	if w.selectionStart == 0 && w.selectionEnd == n {
		return 0, n, false
	}
	return w.selectionStart, w.selectionEnd, true
}

// breakPage pushes the word to the next page when it straddles a page
// boundary.
func (w *Word) breakPage(page float64, marginTop float64) {
	if page <= 0 || w.Height >= page {
		return
	}
	remTop := modPage(w.Top-marginTop, page)
	remBottom := modPage(w.Bottom()-marginTop, page)
	if remTop > remBottom {
		w.Top += page - remTop + 1
	}
}

func modPage(v, page float64) float64 {
	r := v - page*float64(int(v/page))
	if r < 0 {
		r += page
	}
	return r
}

func (w *Word) String() string {
	if w.isImage {
		return "<img>"
	}
	return w.Text
}
