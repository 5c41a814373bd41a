package render

import (
	"image"
	"image/color"
	"io"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	xdraw "golang.org/x/image/draw"

	"htmlbox/pkg/css"
	"htmlbox/pkg/layout"
)

// Canvas is a raster surface implementing layout.Graphics on a gg context.
type Canvas struct {
	dc     *gg.Context
	fonts  layout.FontFactory
	logger *zap.Logger

	// gg clips are not restored by Pop, so the stack is kept here and the
	// intersection is reapplied whenever it changes.
	clips []layout.Rect

	mu       sync.Mutex
	resolved map[layout.FontKey]*Font
}

var _ layout.Graphics = (*Canvas)(nil)

// NewCanvas creates a white canvas. fonts resolves layout fonts that were not
// produced by a FontLoader, such as fallback metrics fonts.
func NewCanvas(width, height int, fonts layout.FontFactory, logger *zap.Logger) *Canvas {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Canvas{
		dc:       gg.NewContext(width, height),
		fonts:    fonts,
		logger:   logger.Named("canvas"),
		resolved: make(map[layout.FontKey]*Font),
	}
	c.Clear(css.Color{R: 255, G: 255, B: 255, A: 255})
	return c
}

// Width and Height return the surface size in pixels.
func (c *Canvas) Width() int  { return c.dc.Width() }
func (c *Canvas) Height() int { return c.dc.Height() }

// Clear fills the whole surface, ignoring the clip.
func (c *Canvas) Clear(bg css.Color) {
	c.dc.ResetClip()
	c.dc.SetColor(bg.RGBA())
	c.dc.Clear()
	c.applyClip()
}

// Image returns the rendered surface.
func (c *Canvas) Image() image.Image { return c.dc.Image() }

func (c *Canvas) EncodePNG(w io.Writer) error { return c.dc.EncodePNG(w) }

func (c *Canvas) SavePNG(path string) error { return c.dc.SavePNG(path) }

func (c *Canvas) bounds() layout.Rect {
	return layout.Rect{Width: float64(c.dc.Width()), Height: float64(c.dc.Height())}
}

func (c *Canvas) PushClip(r layout.Rect) {
	c.clips = append(c.clips, intersect(c.ClipBounds(), r))
	c.applyClip()
}

func (c *Canvas) PopClip() {
	if len(c.clips) == 0 {
		return
	}
	c.clips = c.clips[:len(c.clips)-1]
	c.applyClip()
}

func (c *Canvas) ClipBounds() layout.Rect {
	if n := len(c.clips); n > 0 {
		return c.clips[n-1]
	}
	return c.bounds()
}

func (c *Canvas) applyClip() {
	c.dc.ResetClip()
	if len(c.clips) == 0 {
		return
	}
	r := c.clips[len(c.clips)-1]
	c.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	c.dc.Clip()
}

func intersect(a, b layout.Rect) layout.Rect {
	x1 := math.Max(a.X, b.X)
	y1 := math.Max(a.Y, b.Y)
	x2 := math.Min(a.X+a.Width, b.X+b.Width)
	y2 := math.Min(a.Y+a.Height, b.Y+b.Height)
	if x2 < x1 {
		x2 = x1
	}
	if y2 < y1 {
		y2 = y1
	}
	return layout.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

func (c *Canvas) FillRect(r layout.Rect, col css.Color) {
	if r.Width <= 0 || r.Height <= 0 || col.IsTransparent() {
		return
	}
	c.dc.SetColor(col.RGBA())
	c.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	c.dc.Fill()
}

func (c *Canvas) DrawLine(x1, y1, x2, y2, width float64, col css.Color, style layout.LineStyle) {
	if width <= 0 || col.IsTransparent() {
		return
	}
	c.dc.SetColor(col.RGBA())
	c.dc.SetLineWidth(width)
	switch style {
	case layout.LineDashed:
		c.dc.SetDash(10, 5)
	case layout.LineDotted:
		c.dc.SetDash(2, 4)
	}
	c.dc.DrawLine(x1, y1, x2, y2)
	c.dc.Stroke()
	c.dc.SetDash()
}

// MeasureString returns the advance width of s and the font height.
func (c *Canvas) MeasureString(s string, f layout.Font) layout.Size {
	ft := c.face(f)
	if ft == nil {
		return layout.Size{Width: float64(len([]rune(s))) * f.Key().Size * css.PixelsPerPoint * 0.6, Height: f.Height()}
	}
	return layout.Size{Width: fixedToFloat(font.MeasureString(ft.face, s)), Height: f.Height()}
}

// DrawString draws s with its top-left corner at at.
func (c *Canvas) DrawString(s string, f layout.Font, col css.Color, at layout.Point) {
	ft := c.face(f)
	if ft == nil || s == "" {
		return
	}
	c.dc.SetFontFace(ft.face)
	c.dc.SetColor(col.RGBA())
	c.dc.DrawString(s, at.X, at.Y+f.Ascent())
}

// DrawImage scales img into dst.
func (c *Canvas) DrawImage(img image.Image, dst layout.Rect) {
	if img == nil {
		return
	}
	w, h := int(math.Round(dst.Width)), int(math.Round(dst.Height))
	if w <= 0 || h <= 0 {
		return
	}
	src := img
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		scaled := image.NewRGBA(image.Rect(0, 0, w, h))
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, b, xdraw.Src, nil)
		src = scaled
	}
	c.dc.DrawImage(src, int(math.Round(dst.X)), int(math.Round(dst.Y)))
}

// face returns a drawable font for f, resolving fonts from other factories
// through the canvas' own factory.
func (c *Canvas) face(f layout.Font) *Font {
	if ft, ok := f.(*Font); ok {
		return ft
	}
	if c.fonts == nil || f == nil {
		return nil
	}
	key := f.Key()
	c.mu.Lock()
	defer c.mu.Unlock()
	if ft, ok := c.resolved[key]; ok {
		return ft
	}
	var ft *Font
	if nf, err := c.fonts.NewFont(key); err != nil {
		c.logger.Debug("no face for font", zap.String("family", key.Family), zap.Error(err))
	} else {
		ft, _ = nf.(*Font)
	}
	c.resolved[key] = ft
	return ft
}

// Pixel returns the color at x, y.
func (c *Canvas) Pixel(x, y int) color.RGBA {
	r, g, b, a := c.dc.Image().At(x, y).RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}
