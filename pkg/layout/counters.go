package layout

import (
	"strconv"
	"strings"
)

// List marker support

// markerGap is the space between a marker and its list item.
const markerGap = 5

// createListMarker builds the marker box of a list item on first layout and
// places it left of the item's first line.
func (b *Box) createListMarker(g Graphics) {
	if b.Display() != DisplayListItem || b.ListStyleType() == "none" {
		b.listMarker = nil
		return
	}
	if b.listMarker == nil {
		m := newBox(nil, KindListMarker)
		m.owner = b
		m.eng = b.eng
		m.InheritStyle(b, false)
		m.SetProperty("display", DisplayInline)
		m.SetText(b.markerText())
		m.ParseToWords()
		m.measureWordsSize(g)
		if len(m.Words) == 0 {
			return
		}
		m.Size = Size{Width: m.Words[0].Width, Height: m.Words[0].Height}
		b.listMarker = m
	}
	m := b.listMarker
	w := m.Words[0]
	w.Left = b.Location.X - m.Size.Width - markerGap
	w.Top = b.Location.Y + b.ActualPaddingTop()
	m.Location = Point{X: w.Left, Y: w.Top}
	m.SetActualBottom(w.Bottom())
}

// markerText returns the glyph or the formatted number for the item.
func (b *Box) markerText() string {
	style := b.ListStyleType()
	switch style {
	case "disc", "":
		return "•"
	case "circle":
		return "o"
	case "square":
		return "♠"
	}
	n := b.listIndex()
	switch style {
	case "decimal":
		return strconv.Itoa(n) + "."
	case "decimal-leading-zero":
		if n >= 0 && n < 10 {
			return "0" + strconv.Itoa(n) + "."
		}
		return strconv.Itoa(n) + "."
	}
	return formatListNumber(n, style) + "."
}

// listIndex numbers the item among its list-item siblings, honoring the
// parent's start and reversed attributes.
func (b *Box) listIndex() int {
	p := b.parent
	if p == nil {
		return 1
	}
	_, reversed := p.Attr("reversed")

	items := 0
	for _, c := range p.children {
		if c.Display() == DisplayListItem {
			items++
		}
	}
	index := 1
	if reversed {
		index = items
	}
	if start, ok := p.Attr("start"); ok {
		index = parseStart(start, index)
	}

	for _, c := range p.children {
		if c == b {
			return index
		}
		if c.Display() == DisplayListItem {
			if reversed {
				index--
			} else {
				index++
			}
		}
	}
	return index
}

// parseStart accepts any integer, including zero and negatives; anything
// else keeps the list default.
func parseStart(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

var greekLetters = []rune("αβγδεζηθικλμνξοπρστυφχψω")

// formatListNumber renders n in an alphabetic, roman or greek list style.
// Styles that cannot express n fall back to decimal.
func formatListNumber(n int, style string) string {
	switch style {
	case "lower-alpha", "lower-latin":
		if n > 0 {
			return alphabetic(n, []rune("abcdefghijklmnopqrstuvwxyz"))
		}
	case "upper-alpha", "upper-latin":
		if n > 0 {
			return alphabetic(n, []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
		}
	case "lower-roman":
		if n > 0 && n < 4000 {
			return strings.ToLower(roman(n))
		}
	case "upper-roman":
		if n > 0 && n < 4000 {
			return roman(n)
		}
	case "lower-greek":
		if n > 0 {
			return alphabetic(n, greekLetters)
		}
	}
	return strconv.Itoa(n)
}

// alphabetic renders n in bijective base len(digits): a..z, aa, ab, ...
func alphabetic(n int, digits []rune) string {
	base := len(digits)
	var out []rune
	for n > 0 {
		n--
		out = append([]rune{digits[n%base]}, out...)
		n /= base
	}
	return string(out)
}

func roman(n int) string {
	values := []int{1000, 900, 500, 400, 100, 90, 50, 40, 10, 9, 5, 4, 1}
	symbols := []string{"M", "CM", "D", "CD", "C", "XC", "L", "XL", "X", "IX", "V", "IV", "I"}
	var sb strings.Builder
	for i, v := range values {
		for n >= v {
			sb.WriteString(symbols[i])
			n -= v
		}
	}
	return sb.String()
}
