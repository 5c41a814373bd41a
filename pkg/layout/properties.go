package layout

import (
	"strconv"
	"strings"

	"htmlbox/pkg/css"
)

// cachedValue is a resolved numeric property together with the reference
// dimension it was resolved against. A changed reference forces recomputation.
type cachedValue struct {
	value float64
	ref   float64
	valid bool
}

type cachedColor struct {
	color css.Color
	valid bool
}

// properties holds the declared CSS strings of a box and the lazily resolved
// actual values derived from them.
type properties struct {
	raw    map[string]string
	values map[string]cachedValue
	colors map[string]cachedColor

	font      Font
	fontSize  float64
	fontValid bool
}

func (p *properties) init() {
	p.raw = make(map[string]string)
	p.values = make(map[string]cachedValue)
	p.colors = make(map[string]cachedColor)
}

func (p *properties) reset() {
	for k, v := range p.values {
		v.valid = false
		p.values[k] = v
	}
	for k, v := range p.colors {
		v.valid = false
		p.colors[k] = v
	}
	p.fontValid = false
	p.font = nil
}

// SetProperty stores a declared value. Shorthands are expanded; an empty
// value removes the declaration. Derived values are marked stale, never
// recomputed here.
func (b *Box) SetProperty(name, value string) {
	name = strings.ToLower(strings.TrimSpace(name))
	value = strings.TrimSpace(value)
	if value == "" {
		delete(b.props.raw, name)
		b.invalidate(name)
		return
	}
	expanded := css.ParseInlineStyle(name + ":" + value)
	for k, v := range expanded.Properties {
		b.props.raw[k] = v
		b.invalidate(k)
	}
}

// ApplyStyle declares every property of s on the box.
func (b *Box) ApplyStyle(s *css.Style) {
	if s == nil {
		return
	}
	for k, v := range s.Properties {
		b.props.raw[k] = v
		b.invalidate(k)
	}
}

// ReplaceStyle drops every declared property and declares those of s.
func (b *Box) ReplaceStyle(s *css.Style) {
	for k := range b.props.raw {
		delete(b.props.raw, k)
		b.invalidate(k)
	}
	b.ApplyStyle(s)
}

// DeclaredProperty returns the value declared on this box itself.
func (b *Box) DeclaredProperty(name string) (string, bool) {
	v, ok := b.props.raw[name]
	return v, ok
}

// Property returns the specified value: the declared value, the parent's
// value for inherited properties, or the initial value.
func (b *Box) Property(name string) string {
	if v, ok := b.props.raw[name]; ok && v != "inherit" {
		return v
	} else if ok || css.IsInherited(name) {
		if p := b.styleParent(); p != nil {
			return p.Property(name)
		}
	}
	return css.Initial[name]
}

func (b *Box) styleParent() *Box {
	if b.parent != nil {
		return b.parent
	}
	return b.owner
}

// InheritStyle copies properties from source: the inheritable subset, or
// everything source declares when everything is set. The font size is
// copied as source's resolved size so relative sizes do not compound.
func (b *Box) InheritStyle(source *Box, everything bool) {
	if source == nil {
		return
	}
	for _, name := range css.InheritedProperties() {
		b.props.raw[name] = source.Property(name)
	}
	if everything {
		for name, v := range source.props.raw {
			b.props.raw[name] = v
		}
	}
	b.props.raw["font-size"] = strconv.FormatFloat(source.ActualFontSize(), 'f', -1, 64) + "pt"
	b.props.reset()
	b.wordsStale = true
	b.measured = false
}

// invalidate marks the values derived from name as stale on b and, for
// inherited properties, on the whole subtree.
func (b *Box) invalidate(name string) {
	b.markStale(name)
	if css.IsInherited(name) || name == "display" {
		for _, c := range b.children {
			c.invalidateDescendant(name)
		}
		if b.listMarker != nil {
			b.listMarker.invalidateDescendant(name)
		}
	}
}

func (b *Box) invalidateDescendant(name string) {
	b.markStale(name)
	for _, c := range b.children {
		c.invalidateDescendant(name)
	}
}

func (b *Box) markStale(name string) {
	if v, ok := b.props.values[name]; ok {
		v.valid = false
		b.props.values[name] = v
	}
	if c, ok := b.props.colors[name]; ok {
		c.valid = false
		b.props.colors[name] = c
	}
	switch {
	case strings.HasPrefix(name, "font-"):
		// Every em-relative length depends on the font.
		b.props.reset()
		b.measured = false
	case name == "color":
		for _, side := range []string{"top", "right", "bottom", "left"} {
			b.markStale("border-" + side + "-color")
		}
	case strings.HasPrefix(name, "border-") && strings.HasSuffix(name, "-style"):
		b.markStale(strings.TrimSuffix(name, "-style") + "-width")
	case name == "white-space" || name == "word-break":
		b.wordsStale = true
		b.measured = false
	case name == "word-spacing" || name == "width" || name == "height" || name == "max-width":
		b.measured = false
	}
}

// invalidateInherited drops every derived value in the subtree after the
// box moved to a new parent.
func (b *Box) invalidateInherited() {
	b.props.reset()
	b.wordsStale = b.wordsStale || b.hasText
	b.measured = false
	for _, c := range b.children {
		c.invalidateInherited()
	}
}

func (b *Box) cachedLength(name string, ref float64, compute func() float64) float64 {
	if v, ok := b.props.values[name]; ok && v.valid && v.ref == ref {
		return v.value
	}
	val := compute()
	b.props.values[name] = cachedValue{value: val, ref: ref, valid: true}
	return val
}

func (b *Box) cachedColorOf(name string, compute func() css.Color) css.Color {
	if c, ok := b.props.colors[name]; ok && c.valid {
		return c.color
	}
	c := compute()
	b.props.colors[name] = cachedColor{color: c, valid: true}
	return c
}

// containingWidth is the reference for percentages of horizontal lengths.
func (b *Box) containingWidth() float64 {
	cb := b.ContainingBlock()
	if cb == b {
		// The root resolves against the viewport, or is unconstrained.
		if b.eng != nil && b.eng.viewport.Width > 0 {
			return b.eng.viewport.Width
		}
		return unboundedWidth
	}
	return cb.AvailableWidth()
}

// lengthOrZero resolves name against ref; "auto" and junk resolve to zero.
func (b *Box) lengthOrZero(name string, ref float64) float64 {
	return b.cachedLength(name, ref, func() float64 {
		v, ok := css.ResolveLength(b.Property(name), ref, b.EmHeight())
		if !ok {
			return 0
		}
		return v
	})
}

func (b *Box) ActualMarginTop() float64 {
	return b.lengthOrZero("margin-top", b.containingWidth())
}

func (b *Box) ActualMarginRight() float64 {
	return b.lengthOrZero("margin-right", b.containingWidth())
}

func (b *Box) ActualMarginBottom() float64 {
	return b.lengthOrZero("margin-bottom", b.containingWidth())
}

func (b *Box) ActualMarginLeft() float64 {
	return b.lengthOrZero("margin-left", b.containingWidth())
}

func (b *Box) ActualPaddingTop() float64 {
	return b.lengthOrZero("padding-top", b.containingWidth())
}

func (b *Box) ActualPaddingRight() float64 {
	return b.lengthOrZero("padding-right", b.containingWidth())
}

func (b *Box) ActualPaddingBottom() float64 {
	return b.lengthOrZero("padding-bottom", b.containingWidth())
}

func (b *Box) ActualPaddingLeft() float64 {
	return b.lengthOrZero("padding-left", b.containingWidth())
}

// borderWidth resolves a side's width. A side without a visible style has
// zero width whatever its declared width.
func (b *Box) borderWidth(side string) float64 {
	name := "border-" + side + "-width"
	return b.cachedLength(name, 0, func() float64 {
		switch b.Property("border-" + side + "-style") {
		case "", "none", "hidden":
			return 0
		}
		switch raw := b.Property(name); raw {
		case "thin":
			return 1
		case "medium":
			return 2
		case "thick":
			return 4
		default:
			v, ok := css.ResolveLength(raw, 0, b.EmHeight())
			if !ok || v < 0 {
				return 0
			}
			return v
		}
	})
}

func (b *Box) ActualBorderTopWidth() float64    { return b.borderWidth("top") }
func (b *Box) ActualBorderRightWidth() float64  { return b.borderWidth("right") }
func (b *Box) ActualBorderBottomWidth() float64 { return b.borderWidth("bottom") }
func (b *Box) ActualBorderLeftWidth() float64   { return b.borderWidth("left") }

// ActualBorderColor returns a side's color, currentcolor resolving to color.
func (b *Box) ActualBorderColor(side string) css.Color {
	name := "border-" + side + "-color"
	return b.cachedColorOf(name, func() css.Color {
		if c, ok := css.ParseColor(b.Property(name)); ok {
			return c
		}
		return b.ActualColor()
	})
}

func (b *Box) ActualColor() css.Color {
	return b.cachedColorOf("color", func() css.Color {
		if c, ok := css.ParseColor(b.Property("color")); ok {
			return c
		}
		if p := b.styleParent(); p != nil {
			return p.ActualColor()
		}
		return css.Black
	})
}

func (b *Box) ActualBackgroundColor() css.Color {
	return b.cachedColorOf("background-color", func() css.Color {
		if c, ok := css.ParseColor(b.Property("background-color")); ok {
			return c
		}
		return css.Transparent
	})
}

// ActualFontSize returns the font size in points.
func (b *Box) ActualFontSize() float64 {
	if b.props.fontValid {
		return b.props.fontSize
	}
	parentSize := css.DefaultFontSize
	if p := b.styleParent(); p != nil {
		parentSize = p.ActualFontSize()
	}
	size := parentSize
	if raw, ok := b.props.raw["font-size"]; ok && raw != "inherit" {
		if s, ok := css.FontSizeKeyword(raw, parentSize); ok {
			size = s
		} else if l, ok := css.ParseLength(raw); ok {
			switch l.Unit {
			case css.UnitEm:
				size = l.Number * parentSize
			case css.UnitEx:
				size = l.Number * parentSize / 2
			case css.UnitPercent:
				size = l.Number / 100 * parentSize
			case css.UnitPt:
				size = l.Number
			default:
				size = l.Resolve(0, 0) / css.PixelsPerPoint
			}
			size = css.ClampFontSize(size)
		}
	}
	b.props.fontSize = size
	b.props.font = nil
	b.props.fontValid = true
	return size
}

// EmHeight is the size of one em in pixels.
func (b *Box) EmHeight() float64 {
	return b.ActualFontSize() * css.PixelsPerPoint
}

// ActualFont resolves the box's font through the engine's font cache.
func (b *Box) ActualFont() Font {
	size := b.ActualFontSize()
	if b.props.font != nil {
		return b.props.font
	}
	key := fontKeyFor(b.Property("font-family"), size, b.Property("font-weight"), b.Property("font-style"))
	cache := fallbackFonts
	if b.eng != nil {
		cache = b.eng.fonts
	}
	b.props.font = cache.Get(key)
	return b.props.font
}

func (b *Box) ActualLineHeight() float64 {
	return b.cachedLength("line-height", 0, func() float64 {
		raw := b.Property("line-height")
		if raw == "" || raw == "normal" {
			return b.ActualFont().Height()
		}
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n * b.EmHeight()
		}
		if v, ok := css.ResolveLength(raw, b.EmHeight(), b.EmHeight()); ok {
			return v
		}
		return b.ActualFont().Height()
	})
}

func (b *Box) ActualTextIndent() float64 {
	return b.lengthOrZero("text-indent", b.containingWidth())
}

// ActualWordSpacing is the space width plus word-spacing, measured during layout.
func (b *Box) ActualWordSpacing() float64 { return b.wordSpacing }

// ActualBorderSpacingHorizontal and ActualBorderSpacingVertical split
// "border-spacing: h [v]".
func (b *Box) ActualBorderSpacingHorizontal() float64 {
	return b.cachedLength("border-spacing-h", 0, func() float64 {
		parts := strings.Fields(b.Property("border-spacing"))
		if len(parts) == 0 {
			return 0
		}
		v, _ := css.ResolveLength(parts[0], 0, b.EmHeight())
		return v
	})
}

func (b *Box) ActualBorderSpacingVertical() float64 {
	return b.cachedLength("border-spacing-v", 0, func() float64 {
		parts := strings.Fields(b.Property("border-spacing"))
		if len(parts) == 0 {
			return 0
		}
		raw := parts[0]
		if len(parts) > 1 {
			raw = parts[1]
		}
		v, _ := css.ResolveLength(raw, 0, b.EmHeight())
		return v
	})
}

// ActualWidth resolves a declared width; ok is false for auto.
func (b *Box) ActualWidth() (float64, bool) {
	return b.optionalLength("width", b.containingWidth())
}

// ActualHeight resolves a declared height, zero for auto.
func (b *Box) ActualHeight() float64 {
	ref := b.ContainingBlock().Size.Height
	v, _ := b.optionalLength("height", ref)
	return v
}

// ActualMaxWidth resolves max-width; ok is false for none.
func (b *Box) ActualMaxWidth() (float64, bool) {
	return b.optionalLength("max-width", b.containingWidth())
}

func (b *Box) optionalLength(name string, ref float64) (float64, bool) {
	raw := b.Property(name)
	if raw == "" || raw == "auto" || raw == "none" {
		return 0, false
	}
	v := b.cachedLength(name, ref, func() float64 {
		v, ok := css.ResolveLength(raw, ref, b.EmHeight())
		if !ok {
			return -1
		}
		return v
	})
	if v < 0 {
		return 0, false
	}
	return v, true
}

// HasExplicitHeight reports a non-auto height declaration.
func (b *Box) HasExplicitHeight() bool {
	raw := b.Property("height")
	return raw != "" && raw != "auto"
}

func (b *Box) Display() string {
	if b.Kind == KindSpacing {
		return DisplayNone
	}
	return b.Property("display")
}

func (b *Box) Position() string        { return b.Property("position") }
func (b *Box) WhiteSpace() string      { return b.Property("white-space") }
func (b *Box) WordBreak() string       { return b.Property("word-break") }
func (b *Box) TextAlign() string       { return b.Property("text-align") }
func (b *Box) VerticalAlign() string   { return b.Property("vertical-align") }
func (b *Box) Visibility() string      { return b.Property("visibility") }
func (b *Box) Overflow() string        { return b.Property("overflow") }
func (b *Box) BorderCollapse() string  { return b.Property("border-collapse") }
func (b *Box) EmptyCells() string      { return b.Property("empty-cells") }
func (b *Box) ListStyleType() string   { return b.Property("list-style-type") }
func (b *Box) PageBreakInside() string { return b.Property("page-break-inside") }
func (b *Box) TextDecoration() string  { return b.Property("text-decoration") }

// BorderStyle returns the style of one side.
func (b *Box) BorderStyle(side string) string {
	return b.Property("border-" + side + "-style")
}
