package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInlineStyle_SingleProperty(t *testing.T) {
	style := ParseInlineStyle("color: red")
	value, ok := style.Get("color")
	if !ok || value != "red" {
		t.Error("expected color='red'")
	}
}

func TestParseInlineStyle_MultipleProperties(t *testing.T) {
	style := ParseInlineStyle("color: red; width: 100px")
	color, _ := style.Get("color")
	width, _ := style.Get("width")
	if color != "red" || width != "100px" {
		t.Error("expected both properties to parse")
	}
}

func TestParseInlineStyle_IgnoresImportantAndJunk(t *testing.T) {
	style := ParseInlineStyle("color: red !important; ; nonsense; width:")
	assert.Equal(t, map[string]string{"color": "red"}, style.Properties)
}

func TestParseInlineStyle_MarginShorthand(t *testing.T) {
	tests := []struct {
		value                    string
		top, right, bottom, left string
	}{
		{"10px", "10px", "10px", "10px", "10px"},
		{"10px 20px", "10px", "20px", "10px", "20px"},
		{"10px 20px 30px", "10px", "20px", "30px", "20px"},
		{"10px 20px 30px 40px", "10px", "20px", "30px", "40px"},
	}
	for _, tt := range tests {
		style := ParseInlineStyle("margin: " + tt.value)
		got := []string{
			style.Properties["margin-top"], style.Properties["margin-right"],
			style.Properties["margin-bottom"], style.Properties["margin-left"],
		}
		want := []string{tt.top, tt.right, tt.bottom, tt.left}
		assert.Equal(t, want, got, "margin: %s", tt.value)
	}
}

func TestParseInlineStyle_BorderShorthand(t *testing.T) {
	style := ParseInlineStyle("border: 2px solid rgb(1, 2, 3)")

	for _, side := range []string{"top", "right", "bottom", "left"} {
		assert.Equal(t, "2px", style.Properties["border-"+side+"-width"])
		assert.Equal(t, "solid", style.Properties["border-"+side+"-style"])
		assert.Equal(t, "rgb(1, 2, 3)", style.Properties["border-"+side+"-color"])
	}
}

func TestParseInlineStyle_BorderSubShorthands(t *testing.T) {
	style := ParseInlineStyle("border-style: solid none; border-width: thick; border-left: 1px dashed")

	assert.Equal(t, "solid", style.Properties["border-top-style"])
	assert.Equal(t, "none", style.Properties["border-right-style"])
	assert.Equal(t, "thick", style.Properties["border-bottom-width"])
	assert.Equal(t, "1px", style.Properties["border-left-width"])
	assert.Equal(t, "dashed", style.Properties["border-left-style"])
}

func TestParseInlineStyle_FontShorthand(t *testing.T) {
	style := ParseInlineStyle("font: italic bold 12pt/14pt Arial, sans-serif")

	assert.Equal(t, "italic", style.Properties["font-style"])
	assert.Equal(t, "bold", style.Properties["font-weight"])
	assert.Equal(t, "12pt", style.Properties["font-size"])
	assert.Equal(t, "14pt", style.Properties["line-height"])
	assert.Equal(t, "Arial, sans-serif", style.Properties["font-family"])
}

func TestParseInlineStyle_BackgroundAndListStyle(t *testing.T) {
	style := ParseInlineStyle("background: #fff url(a.png); list-style: square inside")

	assert.Equal(t, "#fff", style.Properties["background-color"])
	assert.Equal(t, "url(a.png)", style.Properties["background-image"])
	assert.Equal(t, "square", style.Properties["list-style-type"])
	assert.Equal(t, "inside", style.Properties["list-style-position"])
}

func TestStyleMergeAndClone(t *testing.T) {
	base := ParseInlineStyle("color: red; width: 10px")
	clone := base.Clone()
	clone.Merge(ParseInlineStyle("color: blue"))

	assert.Equal(t, "red", base.Properties["color"])
	assert.Equal(t, "blue", clone.Properties["color"])
	assert.Equal(t, "10px", clone.Properties["width"])
}

func TestFontSizeKeyword(t *testing.T) {
	tests := []struct {
		keyword string
		parent  float64
		want    float64
	}{
		{"medium", 20, DefaultFontSize},
		{"xx-small", 20, DefaultFontSize - 4},
		{"x-large", 20, DefaultFontSize + 3},
		{"smaller", 20, 18},
		{"larger", 20, 22},
		{"smaller", 2, DefaultFontSize},
	}
	for _, tt := range tests {
		got, ok := FontSizeKeyword(tt.keyword, tt.parent)
		if !ok || got != tt.want {
			t.Errorf("FontSizeKeyword(%q, %v) = %v, %v; want %v", tt.keyword, tt.parent, got, ok, tt.want)
		}
	}
	if _, ok := FontSizeKeyword("enormous", 10); ok {
		t.Error("expected unknown keyword to be rejected")
	}
}

func TestInheritedProperties(t *testing.T) {
	assert.True(t, IsInherited("color"))
	assert.True(t, IsInherited("white-space"))
	assert.False(t, IsInherited("margin-top"))
	assert.Contains(t, InheritedProperties(), "font-size")
}
