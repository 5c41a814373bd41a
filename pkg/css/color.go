package css

import (
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

type Color struct {
	R, G, B, A uint8
}

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{}
)

// RGBA converts to the image/color form used by drawing surfaces.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// IsTransparent reports whether painting c has no visible effect.
func (c Color) IsTransparent() bool { return c.A == 0 }

// ParseColor accepts SVG/CSS named colors, #rgb, #rrggbb, rgb() and rgba().
func ParseColor(colorStr string) (Color, bool) {
	colorStr = strings.ToLower(strings.TrimSpace(colorStr))
	switch {
	case colorStr == "":
		return Color{}, false
	case colorStr == "transparent":
		return Transparent, true
	case strings.HasPrefix(colorStr, "#"):
		return parseHexColor(colorStr[1:])
	case strings.HasPrefix(colorStr, "rgb"):
		return parseRGBFunction(colorStr)
	}
	if c, ok := colornames.Map[colorStr]; ok {
		return Color{c.R, c.G, c.B, 255}, true
	}
	return Color{}, false
}

func parseHexColor(hex string) (Color, bool) {
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return Color{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, true
}

func parseRGBFunction(s string) (Color, bool) {
	open := strings.Index(s, "(")
	end := strings.LastIndex(s, ")")
	if open < 0 || end < open {
		return Color{}, false
	}
	args := strings.Split(s[open+1:end], ",")
	if len(args) != 3 && len(args) != 4 {
		return Color{}, false
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		n, ok := ParseNumber(args[i], 255)
		if !ok {
			return Color{}, false
		}
		ch[i] = clampByte(n)
	}
	alpha := uint8(255)
	if len(args) == 4 {
		a, ok := ParseNumber(args[3], 1)
		if !ok {
			return Color{}, false
		}
		alpha = clampByte(a * 255)
	}
	return Color{ch[0], ch[1], ch[2], alpha}, true
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
