package layout

import (
	"image"
	"testing"
	"unicode/utf8"

	"htmlbox/pkg/css"
)

// testFont has fixed metrics: every line is 20 high with a 16 ascent.
type testFont struct{ key FontKey }

func (f testFont) Key() FontKey     { return f.key }
func (f testFont) Height() float64  { return 20 }
func (f testFont) Ascent() float64  { return 16 }
func (f testFont) Descent() float64 { return 4 }

type testFonts struct{}

func (testFonts) NewFont(key FontKey) (Font, error) { return testFont{key: key}, nil }

type drawCall struct {
	op   string
	text string
	rect Rect
}

// testGraphics measures every rune as 10 units wide and records drawing.
type testGraphics struct {
	clips []Rect
	calls []drawCall
}

func (g *testGraphics) MeasureString(s string, f Font) Size {
	return Size{Width: float64(utf8.RuneCountInString(s)) * 10, Height: f.Height()}
}

func (g *testGraphics) PushClip(r Rect) {
	if n := len(g.clips); n > 0 {
		r = r.Intersect(g.clips[n-1])
	}
	g.clips = append(g.clips, r)
	g.calls = append(g.calls, drawCall{op: "clip", rect: r})
}

func (g *testGraphics) PopClip() {
	if n := len(g.clips); n > 0 {
		g.clips = g.clips[:n-1]
	}
}

func (g *testGraphics) ClipBounds() Rect {
	if n := len(g.clips); n > 0 {
		return g.clips[n-1]
	}
	return Rect{Width: 1e6, Height: 1e6}
}

func (g *testGraphics) FillRect(r Rect, c css.Color) {
	g.calls = append(g.calls, drawCall{op: "fill", rect: r})
}

func (g *testGraphics) DrawLine(x1, y1, x2, y2, width float64, c css.Color, style LineStyle) {
	g.calls = append(g.calls, drawCall{op: "line", rect: RectFromEdges(x1, y1, x2, y2)})
}

func (g *testGraphics) DrawString(s string, f Font, c css.Color, at Point) {
	g.calls = append(g.calls, drawCall{op: "text", text: s, rect: Rect{X: at.X, Y: at.Y}})
}

func (g *testGraphics) DrawImage(img image.Image, dst Rect) {
	g.calls = append(g.calls, drawCall{op: "image", rect: dst})
}

func (g *testGraphics) ops(op string) []drawCall {
	var out []drawCall
	for _, c := range g.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

// newTestDocument returns an 800x600 engine with an attached root block.
func newTestDocument(t *testing.T) (*Engine, *Box) {
	t.Helper()
	eng := NewEngine(testFonts{}, 800, 600)
	root, err := CreateBlock(nil, NewTag("body", nil), nil)
	if err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}
	if err := eng.SetRoot(root); err != nil {
		t.Fatalf("SetRoot: %v", err)
	}
	return eng, root
}

func mustBlock(t *testing.T, parent *Box, tag string, style map[string]string) *Box {
	t.Helper()
	b, err := CreateBlock(parent, NewTag(tag, nil), nil)
	if err != nil {
		t.Fatalf("CreateBlock(%s): %v", tag, err)
	}
	for k, v := range style {
		b.SetProperty(k, v)
	}
	return b
}

func mustBox(t *testing.T, parent *Box, tag string, attrs map[string]string, style map[string]string) *Box {
	t.Helper()
	b, err := CreateBox(parent, NewTag(tag, attrs), nil)
	if err != nil {
		t.Fatalf("CreateBox(%s): %v", tag, err)
	}
	for k, v := range style {
		b.SetProperty(k, v)
	}
	return b
}

func wordTexts(words []*Word) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w.Text
	}
	return out
}

// checkGeometry asserts the post-layout invariants on every box of the tree.
func checkGeometry(t *testing.T, root *Box) {
	t.Helper()
	root.Walk(func(b *Box) bool {
		if b.Display() == DisplayNone {
			return true
		}
		if b.ActualBottom() < b.Location.Y {
			t.Errorf("%s: bottom %v above top %v", b.TagName(), b.ActualBottom(), b.Location.Y)
		}
		if b.Size.Width < 0 || b.Size.Height < 0 {
			t.Errorf("%s: negative size %+v", b.TagName(), b.Size)
		}
		return true
	})
}
