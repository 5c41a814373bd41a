package css

// DefaultFontFamily and DefaultFontSize (points) apply when nothing is declared.
const (
	DefaultFontFamily = "serif"
	DefaultFontSize   = 11.0
)

// Initial lists the initial value of every property the engine reads.
var Initial = map[string]string{
	"display":             "inline",
	"position":            "static",
	"visibility":          "visible",
	"overflow":            "visible",
	"width":               "auto",
	"height":              "auto",
	"max-width":           "none",
	"min-height":          "0",
	"margin-top":          "0",
	"margin-right":        "0",
	"margin-bottom":       "0",
	"margin-left":         "0",
	"padding-top":         "0",
	"padding-right":       "0",
	"padding-bottom":      "0",
	"padding-left":        "0",
	"border-top-width":    "medium",
	"border-right-width":  "medium",
	"border-bottom-width": "medium",
	"border-left-width":   "medium",
	"border-top-style":    "none",
	"border-right-style":  "none",
	"border-bottom-style": "none",
	"border-left-style":   "none",
	"border-top-color":    "currentcolor",
	"border-right-color":  "currentcolor",
	"border-bottom-color": "currentcolor",
	"border-left-color":   "currentcolor",
	"border-collapse":     "separate",
	"border-spacing":      "0",
	"empty-cells":         "show",
	"background-color":    "transparent",
	"color":               "black",
	"font-family":         DefaultFontFamily,
	"font-size":           "medium",
	"font-style":          "normal",
	"font-weight":         "normal",
	"font-variant":        "normal",
	"line-height":         "normal",
	"text-align":          "left",
	"text-indent":         "0",
	"text-decoration":     "none",
	"vertical-align":      "baseline",
	"white-space":         "normal",
	"word-break":          "normal",
	"word-spacing":        "normal",
	"list-style-type":     "disc",
	"list-style-position": "outside",
	"page-break-inside":   "auto",
}

var inherited = map[string]bool{
	"border-collapse":     true,
	"border-spacing":      true,
	"color":               true,
	"empty-cells":         true,
	"font-family":         true,
	"font-size":           true,
	"font-style":          true,
	"font-variant":        true,
	"font-weight":         true,
	"line-height":         true,
	"list-style-position": true,
	"list-style-type":     true,
	"page-break-inside":   true,
	"text-align":          true,
	"text-indent":         true,
	"visibility":          true,
	"white-space":         true,
	"word-break":          true,
	"word-spacing":        true,
}

// IsInherited reports whether the property inherits by default.
func IsInherited(property string) bool {
	return inherited[property]
}

// InheritedProperties returns the names of all inheritable properties.
func InheritedProperties() []string {
	names := make([]string, 0, len(inherited))
	for name := range inherited {
		names = append(names, name)
	}
	return names
}

var fontSizeDeltas = map[string]float64{
	"xx-small": -4,
	"x-small":  -3,
	"small":    -2,
	"medium":   0,
	"large":    2,
	"x-large":  3,
	"xx-large": 4,
}

// IsFontSizeKeyword reports whether v is an absolute or relative size keyword.
func IsFontSizeKeyword(v string) bool {
	_, ok := fontSizeDeltas[v]
	return ok || v == "smaller" || v == "larger"
}

// FontSizeKeyword maps a font-size keyword to points. Absolute keywords are
// deltas from DefaultFontSize, "smaller" and "larger" are deltas from the
// parent size. Sizes that end up at or below one point fall back to the default.
func FontSizeKeyword(keyword string, parentSize float64) (float64, bool) {
	var size float64
	switch keyword {
	case "smaller":
		size = parentSize - 2
	case "larger":
		size = parentSize + 2
	default:
		delta, ok := fontSizeDeltas[keyword]
		if !ok {
			return 0, false
		}
		size = DefaultFontSize + delta
	}
	return ClampFontSize(size), true
}

// ClampFontSize keeps a resolved size positive.
func ClampFontSize(size float64) float64 {
	if size <= 1 {
		return DefaultFontSize
	}
	return size
}
