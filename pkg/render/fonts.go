package render

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"htmlbox/pkg/config"
	"htmlbox/pkg/layout"
)

// DPI converts point sizes to pixels at 96 pixels per inch.
const DPI = 96

// variant selects one face file of a family.
type variant int

const (
	regular variant = iota
	bold
	italic
	boldItalic
	mono
	monoBold
)

var builtinFonts = map[variant][]byte{
	regular:    goregular.TTF,
	bold:       gobold.TTF,
	italic:     goitalic.TTF,
	boldItalic: gobolditalic.TTF,
	mono:       gomono.TTF,
	monoBold:   gomonobold.TTF,
}

// Font is a sized TrueType face. It satisfies layout.Font.
type Font struct {
	key     layout.FontKey
	face    font.Face
	height  float64
	ascent  float64
	descent float64
}

var _ layout.Font = (*Font)(nil)

func (f *Font) Key() layout.FontKey { return f.key }
func (f *Font) Height() float64     { return f.height }
func (f *Font) Ascent() float64     { return f.ascent }
func (f *Font) Descent() float64    { return f.descent }

// Face returns the underlying face for drawing.
func (f *Font) Face() font.Face { return f.face }

// FontLoader builds fonts from configured TrueType files, falling back to
// the Go font family when a file is missing or unset.
type FontLoader struct {
	cfg    config.FontConfig
	logger *zap.Logger

	mu     sync.Mutex
	parsed map[variant]*truetype.Font
}

var _ layout.FontFactory = (*FontLoader)(nil)

func NewFontLoader(cfg config.FontConfig, logger *zap.Logger) *FontLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FontLoader{
		cfg:    cfg,
		logger: logger.Named("fonts"),
		parsed: make(map[variant]*truetype.Font),
	}
}

// NewFont returns a face for key. Sizes are in points.
func (l *FontLoader) NewFont(key layout.FontKey) (layout.Font, error) {
	if key.Size <= 0 {
		return nil, fmt.Errorf("invalid font size %v", key.Size)
	}
	tt, err := l.truetype(variantFor(key))
	if err != nil {
		return nil, err
	}
	face := truetype.NewFace(tt, &truetype.Options{
		Size:    key.Size,
		DPI:     DPI,
		Hinting: font.HintingNone,
	})
	m := face.Metrics()
	f := &Font{
		key:     key,
		face:    face,
		ascent:  fixedToFloat(m.Ascent),
		descent: fixedToFloat(m.Descent),
		height:  fixedToFloat(m.Height),
	}
	if f.height < f.ascent+f.descent {
		f.height = f.ascent + f.descent
	}
	return f, nil
}

func (l *FontLoader) truetype(v variant) (*truetype.Font, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if f, ok := l.parsed[v]; ok {
		return f, nil
	}

	data := builtinFonts[v]
	if path := l.path(v); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			l.logger.Warn("font file unavailable, using built-in face", zap.String("path", path), zap.Error(err))
		} else {
			data = b
		}
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	l.parsed[v] = f
	return f, nil
}

// path mirrors the configured file for a variant. Bold italic and mono bold
// fall back to the nearer configured file.
func (l *FontLoader) path(v variant) string {
	c := l.cfg
	switch v {
	case bold:
		return c.Bold
	case italic:
		return c.Italic
	case boldItalic:
		if c.BoldItalic != "" {
			return c.BoldItalic
		}
		return c.Bold
	case mono:
		return c.Monospace
	case monoBold:
		if c.MonoBold != "" {
			return c.MonoBold
		}
		return c.Monospace
	}
	return c.Regular
}

func variantFor(key layout.FontKey) variant {
	if isMonospace(key.Family) {
		if key.Bold {
			return monoBold
		}
		return mono
	}
	switch {
	case key.Bold && key.Italic:
		return boldItalic
	case key.Bold:
		return bold
	case key.Italic:
		return italic
	}
	return regular
}

// isMonospace reports whether the first recognised family in a font-family
// list is fixed pitch.
func isMonospace(family string) bool {
	for _, name := range strings.Split(family, ",") {
		name = strings.ToLower(strings.Trim(strings.TrimSpace(name), `"'`))
		switch name {
		case "monospace", "courier", "courier new", "consolas", "menlo", "monaco", "go mono":
			return true
		case "serif", "sans-serif", "cursive", "fantasy", "system-ui":
			return false
		}
		if strings.Contains(name, "mono") {
			return true
		}
	}
	return false
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
