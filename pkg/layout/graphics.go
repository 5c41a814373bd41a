package layout

import (
	"image"
	"strings"
	"sync"

	"go.uber.org/zap"

	"htmlbox/pkg/css"
)

// FontKey identifies a concrete font. Size is in points.
type FontKey struct {
	Family string
	Size   float64
	Bold   bool
	Italic bool
}

// Font exposes the metrics layout needs. Heights are in pixels.
type Font interface {
	Key() FontKey
	Height() float64
	Ascent() float64
	Descent() float64
}

// FontFactory resolves a FontKey to a concrete font.
type FontFactory interface {
	NewFont(key FontKey) (Font, error)
}

type LineStyle int

const (
	LineSolid LineStyle = iota
	LineDashed
	LineDotted
)

// Graphics is the drawing surface layout measures against and paint draws on.
// PushClip intersects the given rect with the current clip.
type Graphics interface {
	MeasureString(s string, f Font) Size
	PushClip(r Rect)
	PopClip()
	ClipBounds() Rect
	FillRect(r Rect, c css.Color)
	DrawLine(x1, y1, x2, y2, width float64, c css.Color, style LineStyle)
	DrawString(s string, f Font, c css.Color, at Point)
	DrawImage(img image.Image, dst Rect)
}

// FontCache memoizes fonts per engine, keyed by (family, size, style).
type FontCache struct {
	mu      sync.Mutex
	factory FontFactory
	fonts   map[FontKey]Font
	logger  *zap.Logger
}

func NewFontCache(factory FontFactory, logger *zap.Logger) *FontCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FontCache{
		factory: factory,
		fonts:   make(map[FontKey]Font),
		logger:  logger,
	}
}

// Get returns the cached font for key, creating it on first use. A factory
// failure falls back to a metrics-only font so layout can proceed.
func (c *FontCache) Get(key FontKey) Font {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.fonts[key]; ok {
		return f
	}
	var f Font
	if c.factory != nil {
		var err error
		f, err = c.factory.NewFont(key)
		if err != nil {
			c.logger.Warn("font unavailable, using fallback metrics",
				zap.String("family", key.Family), zap.Float64("size", key.Size), zap.Error(err))
			f = nil
		}
	}
	if f == nil {
		f = MetricFont{FontKey: key}
	}
	c.fonts[key] = f
	return f
}

// Len returns the number of cached fonts.
func (c *FontCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fonts)
}

// MetricFont is a font with metrics derived purely from its size.
type MetricFont struct {
	FontKey
}

func (f MetricFont) Key() FontKey     { return f.FontKey }
func (f MetricFont) Height() float64  { return f.Size * css.PixelsPerPoint * 1.2 }
func (f MetricFont) Ascent() float64  { return f.Size * css.PixelsPerPoint * 0.9 }
func (f MetricFont) Descent() float64 { return f.Height() - f.Ascent() }

// fontKeyFor builds the key from raw declared values.
func fontKeyFor(family string, size float64, weight, style string) FontKey {
	bold := false
	switch strings.TrimSpace(weight) {
	case "bold", "bolder", "600", "700", "800", "900":
		bold = true
	}
	italic := style == "italic" || style == "oblique"
	return FontKey{Family: family, Size: size, Bold: bold, Italic: italic}
}

var fallbackFonts = NewFontCache(nil, nil)
