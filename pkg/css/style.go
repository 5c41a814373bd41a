package css

import (
	"strings"
)

// Style is a raw property map: property name to the declared CSS string.
// Resolution to actual values happens in the layout package.
type Style struct {
	Properties map[string]string
}

func NewStyle() *Style {
	return &Style{Properties: make(map[string]string)}
}

func (s *Style) Get(property string) (string, bool) {
	val, ok := s.Properties[property]
	return val, ok
}

func (s *Style) Set(property, value string) {
	s.Properties[property] = value
}

// Merge copies every property of other over s.
func (s *Style) Merge(other *Style) {
	if other == nil {
		return
	}
	for k, v := range other.Properties {
		s.Properties[k] = v
	}
}

func (s *Style) Clone() *Style {
	c := NewStyle()
	c.Merge(s)
	return c
}

// BoxEdge represents the four sides of a box (top, right, bottom, left)
type BoxEdge struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Horizontal returns left + right.
func (e BoxEdge) Horizontal() float64 { return e.Left + e.Right }

// Vertical returns top + bottom.
func (e BoxEdge) Vertical() float64 { return e.Top + e.Bottom }

// ParseInlineStyle parses a style attribute ("color: red; width: 10px").
func ParseInlineStyle(styleAttr string) *Style {
	style := NewStyle()
	for property, value := range parseDeclarations(styleAttr) {
		style.Set(property, value)
	}
	return style
}

// parseDeclarations splits a declaration block into expanded longhand properties.
func parseDeclarations(declStr string) map[string]string {
	declarations := make(map[string]string)
	style := &Style{Properties: declarations}

	for _, part := range strings.Split(declStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		colonPos := strings.Index(part, ":")
		if colonPos == -1 {
			continue
		}
		property := strings.ToLower(strings.TrimSpace(part[:colonPos]))
		value := strings.TrimSpace(part[colonPos+1:])
		value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		if property == "" || value == "" {
			continue
		}
		expandShorthand(style, property, value)
	}
	return declarations
}

// expandShorthand expands shorthand CSS properties into individual properties
func expandShorthand(style *Style, property, value string) {
	switch property {
	case "margin", "padding":
		expandBoxProperty(style, property, "", value)
	case "border-width", "border-style", "border-color":
		suffix := strings.TrimPrefix(property, "border")
		expandBoxProperty(style, "border", suffix, value)
	case "border":
		for _, side := range []string{"top", "right", "bottom", "left"} {
			expandBorderProperty(style, "border-"+side, value)
		}
	case "border-top", "border-right", "border-bottom", "border-left":
		expandBorderProperty(style, property, value)
	case "background":
		expandBackground(style, value)
	case "list-style":
		expandListStyle(style, value)
	case "font":
		expandFont(style, value)
	default:
		style.Set(property, value)
	}
}

// expandBoxProperty expands four-sided shorthands.
// Supports: "10px" (all), "10px 20px" (vertical horizontal),
// "10px 20px 30px" (top h bottom), "10px 20px 30px 40px" (t r b l).
// Border sub-properties are named prefix-side-suffix (border-top-width).
func expandBoxProperty(style *Style, prefix, suffix, value string) {
	parts := splitValues(value)
	var top, right, bottom, left string

	switch len(parts) {
	case 1:
		top, right, bottom, left = parts[0], parts[0], parts[0], parts[0]
	case 2:
		top, bottom = parts[0], parts[0]
		right, left = parts[1], parts[1]
	case 3:
		top, right, left, bottom = parts[0], parts[1], parts[1], parts[2]
	case 4:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[3]
	default:
		return
	}

	style.Set(prefix+"-top"+suffix, top)
	style.Set(prefix+"-right"+suffix, right)
	style.Set(prefix+"-bottom"+suffix, bottom)
	style.Set(prefix+"-left"+suffix, left)
}

// expandBorderProperty expands "1px solid black" into one side's width/style/color.
func expandBorderProperty(style *Style, side, value string) {
	for _, part := range splitValues(value) {
		switch {
		case IsBorderStyle(part):
			style.Set(side+"-style", part)
		case IsBorderWidth(part):
			style.Set(side+"-width", part)
		default:
			style.Set(side+"-color", part)
		}
	}
}

func expandBackground(style *Style, value string) {
	for _, part := range splitValues(value) {
		if strings.HasPrefix(part, "url(") {
			style.Set("background-image", part)
			continue
		}
		if _, ok := ParseColor(part); ok {
			style.Set("background-color", part)
		}
	}
}

func expandListStyle(style *Style, value string) {
	for _, part := range splitValues(value) {
		switch {
		case part == "inside" || part == "outside":
			style.Set("list-style-position", part)
		case strings.HasPrefix(part, "url("):
			style.Set("list-style-image", part)
		default:
			style.Set("list-style-type", part)
		}
	}
}

// expandFont handles "[style] [weight] size[/line-height] family".
func expandFont(style *Style, value string) {
	parts := splitValues(value)
	for i, part := range parts {
		switch part {
		case "italic", "oblique":
			style.Set("font-style", part)
			continue
		case "bold", "bolder", "lighter":
			style.Set("font-weight", part)
			continue
		case "small-caps":
			style.Set("font-variant", part)
			continue
		case "normal":
			continue
		}
		size := part
		if slash := strings.Index(part, "/"); slash > 0 {
			size = part[:slash]
			style.Set("line-height", part[slash+1:])
		}
		if _, ok := ParseLength(size); ok || IsFontSizeKeyword(size) {
			style.Set("font-size", size)
			if i+1 < len(parts) {
				style.Set("font-family", strings.Join(parts[i+1:], " "))
			}
			return
		}
	}
}

// splitValues splits on whitespace but keeps function arguments together,
// so "1px solid rgb(1, 2, 3)" yields three parts.
func splitValues(value string) []string {
	var parts []string
	depth := 0
	start := -1
	for i, ch := range value {
		switch {
		case ch == '(':
			depth++
		case ch == ')':
			if depth > 0 {
				depth--
			}
		case (ch == ' ' || ch == '\t' || ch == '\n') && depth == 0:
			if start >= 0 {
				parts = append(parts, value[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		parts = append(parts, value[start:])
	}
	return parts
}

// IsBorderStyle reports whether v is a border-style keyword.
func IsBorderStyle(v string) bool {
	switch v {
	case "none", "hidden", "dotted", "dashed", "solid", "double", "groove", "ridge", "inset", "outset":
		return true
	}
	return false
}

// IsBorderWidth reports whether v is a border width keyword or a length.
func IsBorderWidth(v string) bool {
	switch v {
	case "thin", "medium", "thick":
		return true
	}
	_, ok := ParseLength(v)
	return ok
}
