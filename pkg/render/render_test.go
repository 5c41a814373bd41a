package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"htmlbox/pkg/config"
	"htmlbox/pkg/css"
	"htmlbox/pkg/layout"
)

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	red   = css.Color{R: 255, A: 255}
	blue  = css.Color{B: 255, A: 255}
)

func newFont(t *testing.T, key layout.FontKey) *Font {
	t.Helper()
	f, err := NewFontLoader(config.FontConfig{}, nil).NewFont(key)
	require.NoError(t, err)
	return f.(*Font)
}

func TestFontMetrics(t *testing.T) {
	f := newFont(t, layout.FontKey{Family: "sans-serif", Size: 12})
	assert.Greater(t, f.Ascent(), 0.0)
	assert.Greater(t, f.Descent(), 0.0)
	assert.GreaterOrEqual(t, f.Height(), f.Ascent()+f.Descent())
	// 12pt at 96 DPI is 16px.
	assert.InDelta(t, 16*1.2, f.Height(), 4)

	big := newFont(t, layout.FontKey{Family: "sans-serif", Size: 24})
	assert.InDelta(t, 2*f.Ascent(), big.Ascent(), 1)
}

func TestFontLoaderErrors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	loader := NewFontLoader(config.FontConfig{Regular: filepath.Join(t.TempDir(), "missing.ttf")}, zap.New(core))

	_, err := loader.NewFont(layout.FontKey{Size: 0})
	assert.Error(t, err)

	f, err := loader.NewFont(layout.FontKey{Size: 10})
	require.NoError(t, err, "a missing file falls back to the built-in face")
	assert.NotNil(t, f)
	assert.Equal(t, 1, logs.Len())

	_, err = loader.NewFont(layout.FontKey{Size: 11})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.Len(), "parsed faces are cached")
}

func TestVariantFor(t *testing.T) {
	tests := []struct {
		key  layout.FontKey
		want variant
	}{
		{layout.FontKey{Family: "Arial"}, regular},
		{layout.FontKey{Family: "Arial", Bold: true}, bold},
		{layout.FontKey{Family: "Arial", Italic: true}, italic},
		{layout.FontKey{Family: "Arial", Bold: true, Italic: true}, boldItalic},
		{layout.FontKey{Family: `"Courier New", monospace`}, mono},
		{layout.FontKey{Family: "monospace", Bold: true}, monoBold},
		{layout.FontKey{Family: "serif, monospace"}, regular},
		{layout.FontKey{Family: "DejaVu Sans Mono"}, mono},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, variantFor(tt.key), tt.key.Family)
	}
}

func TestMonospaceMeasure(t *testing.T) {
	c := NewCanvas(10, 10, nil, nil)
	f := newFont(t, layout.FontKey{Family: "monospace", Size: 10})
	assert.InDelta(t, c.MeasureString("iiii", f).Width, c.MeasureString("WWWW", f).Width, 0.01)
	assert.Equal(t, 0.0, c.MeasureString("", f).Width)
	assert.Equal(t, f.Height(), c.MeasureString("x", f).Height)
}

func TestFillRectAndClip(t *testing.T) {
	c := NewCanvas(40, 40, nil, nil)
	assert.Equal(t, layout.Rect{Width: 40, Height: 40}, c.ClipBounds())

	c.PushClip(layout.Rect{X: 10, Y: 10, Width: 20, Height: 20})
	c.PushClip(layout.Rect{X: 0, Y: 0, Width: 15, Height: 15})
	assert.Equal(t, layout.Rect{X: 10, Y: 10, Width: 5, Height: 5}, c.ClipBounds())
	c.FillRect(layout.Rect{Width: 40, Height: 40}, red)
	assert.Equal(t, red.RGBA(), c.Pixel(12, 12))
	assert.Equal(t, white, c.Pixel(20, 20))

	c.PopClip()
	c.FillRect(layout.Rect{Width: 40, Height: 40}, blue)
	assert.Equal(t, blue.RGBA(), c.Pixel(20, 20))
	assert.Equal(t, white, c.Pixel(5, 5))

	c.PopClip()
	c.PopClip()
	c.FillRect(layout.Rect{Width: 10, Height: 10}, blue)
	assert.Equal(t, blue.RGBA(), c.Pixel(5, 5))
}

func TestDrawLine(t *testing.T) {
	c := NewCanvas(40, 10, nil, nil)
	c.DrawLine(0, 5, 40, 5, 2, red, layout.LineSolid)
	assert.Equal(t, red.RGBA(), c.Pixel(20, 5))

	d := NewCanvas(40, 10, nil, nil)
	d.DrawLine(0, 5, 40, 5, 2, red, layout.LineDashed)
	assert.Equal(t, red.RGBA(), d.Pixel(5, 5))
	assert.Equal(t, white, d.Pixel(12, 5), "gap between dashes")
}

func TestDrawString(t *testing.T) {
	loader := NewFontLoader(config.FontConfig{}, nil)
	c := NewCanvas(100, 40, loader, nil)

	// A fallback metrics font is resolved through the canvas' factory.
	f := layout.MetricFont{FontKey: layout.FontKey{Family: "sans-serif", Size: 20}}
	c.DrawString("HHHH", f, css.Color{A: 255}, layout.Point{X: 5, Y: 5})

	inked := false
	for x := 0; x < 100 && !inked; x++ {
		for y := 0; y < 40; y++ {
			if c.Pixel(x, y) != white {
				inked = true
				break
			}
		}
	}
	assert.True(t, inked)
	assert.Greater(t, c.MeasureString("HHHH", f).Width, 0.0)
}

func TestDrawImageScales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			src.Set(x, y, blue.RGBA())
		}
	}
	c := NewCanvas(30, 30, nil, nil)
	c.DrawImage(src, layout.Rect{X: 10, Y: 10, Width: 10, Height: 10})
	assert.Equal(t, blue.RGBA(), c.Pixel(15, 15))
	assert.Equal(t, white, c.Pixel(25, 25))

	c.DrawImage(nil, layout.Rect{Width: 5, Height: 5})
	assert.Equal(t, white, c.Pixel(2, 2))
}

func TestEncodePNG(t *testing.T) {
	c := NewCanvas(8, 6, nil, nil)
	var buf bytes.Buffer
	require.NoError(t, c.EncodePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())

	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, c.SavePNG(path))
}
