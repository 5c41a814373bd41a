package html

import (
	_ "embed"
	"strconv"
	"strings"

	"htmlbox/pkg/css"
	"htmlbox/pkg/layout"
)

//go:embed ua.css
var uaCSS string

// UAStylesheet is the default style sheet every document starts from.
var UAStylesheet = mustParseStylesheet(uaCSS)

var uaSheets = []*css.Stylesheet{UAStylesheet}

func mustParseStylesheet(text string) *css.Stylesheet {
	s, err := css.ParseStylesheet(text)
	if err != nil {
		panic("html: invalid UA stylesheet: " + err.Error())
	}
	return s
}

// presentationalHints maps legacy attributes to declarations. They rank
// above the UA sheet and below every author rule.
func presentationalHints(b *layout.Box) *css.Style {
	s := css.NewStyle()
	tag := b.TagName()
	attr := func(name string) (string, bool) {
		v, ok := b.Attr(name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}

	switch tag {
	case "img", "iframe", "table", "td", "th", "hr", "col", "object", "embed":
		if v, ok := attr("width"); ok {
			setDimension(s, "width", v)
		}
		if v, ok := attr("height"); ok {
			setDimension(s, "height", v)
		}
	case "tr":
		if v, ok := attr("height"); ok {
			setDimension(s, "height", v)
		}
	}

	switch tag {
	case "body", "table", "tr", "td", "th", "thead", "tbody", "tfoot":
		if v, ok := attr("bgcolor"); ok {
			if _, valid := css.ParseColor(v); valid {
				s.Set("background-color", v)
			}
		}
	}
	if tag == "body" {
		if v, ok := attr("text"); ok {
			s.Set("color", v)
		}
	}

	switch tag {
	case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "td", "th", "tr", "caption",
		"thead", "tbody", "tfoot":
		if v, ok := attr("align"); ok {
			switch strings.ToLower(v) {
			case "left", "right", "center", "justify":
				s.Set("text-align", strings.ToLower(v))
			}
		}
	case "table":
		if v, ok := attr("align"); ok && strings.EqualFold(v, "center") {
			s.Set("margin-left", "auto")
			s.Set("margin-right", "auto")
		}
	}

	switch tag {
	case "td", "th", "tr", "thead", "tbody", "tfoot":
		if v, ok := attr("valign"); ok {
			switch strings.ToLower(v) {
			case "top", "middle", "bottom", "baseline":
				s.Set("vertical-align", strings.ToLower(v))
			}
		}
	}

	switch tag {
	case "table":
		if v, ok := attr("cellspacing"); ok {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				s.Set("border-spacing", strconv.Itoa(n)+"px")
			}
		}
		if n, ok := tableBorder(b); ok && n > 0 {
			px := strconv.Itoa(n) + "px"
			for _, side := range []string{"top", "right", "bottom", "left"} {
				s.Set("border-"+side+"-width", px)
				s.Set("border-"+side+"-style", "outset")
				s.Set("border-"+side+"-color", "gray")
			}
		}
	case "td", "th":
		if _, ok := attr("nowrap"); ok {
			s.Set("white-space", "nowrap")
		} else if _, present := b.Attr("nowrap"); present {
			s.Set("white-space", "nowrap")
		}
		if table := enclosingTable(b); table != nil {
			if v, ok := table.Attr("cellpadding"); ok {
				if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
					for _, side := range []string{"top", "right", "bottom", "left"} {
						s.Set("padding-"+side, strconv.Itoa(n)+"px")
					}
				}
			}
			if n, ok := tableBorder(table); ok && n > 0 {
				for _, side := range []string{"top", "right", "bottom", "left"} {
					s.Set("border-"+side+"-width", "1px")
					s.Set("border-"+side+"-style", "inset")
					s.Set("border-"+side+"-color", "gray")
				}
			}
		}
	case "font":
		if v, ok := attr("color"); ok {
			s.Set("color", v)
		}
		if v, ok := attr("face"); ok {
			s.Set("font-family", v)
		}
		if v, ok := attr("size"); ok {
			if size, ok := fontSizeAttr(v); ok {
				s.Set("font-size", size)
			}
		}
	case "ol", "ul", "li":
		if v, ok := attr("type"); ok {
			if style, ok := listTypeAttr(v); ok {
				s.Set("list-style-type", style)
			}
		}
	}
	return s
}

func setDimension(s *css.Style, property, v string) {
	if strings.HasSuffix(v, "%") {
		if _, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64); err == nil {
			s.Set(property, v)
		}
		return
	}
	v = strings.TrimSuffix(v, "px")
	if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 {
		s.Set(property, strconv.FormatFloat(n, 'f', -1, 64)+"px")
	}
}

// tableBorder returns the border attribute of a table; a bare attribute
// means 1.
func tableBorder(table *layout.Box) (int, bool) {
	v, ok := table.Attr("border")
	if !ok {
		return 0, false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return 1, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 1, true
	}
	return n, true
}

func enclosingTable(b *layout.Box) *layout.Box {
	for p := b.Parent(); p != nil; p = p.Parent() {
		if p.TagName() == "table" {
			return p
		}
	}
	return nil
}

var fontSizes = []string{"x-small", "small", "medium", "large", "x-large", "xx-large", "xx-large"}

// fontSizeAttr maps the legacy 1-7 scale, absolute or +/- relative to 3.
func fontSizeAttr(v string) (string, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(v, "+"))
	if err != nil {
		return "", false
	}
	if strings.HasPrefix(v, "+") || strings.HasPrefix(v, "-") {
		n += 3
	}
	n = max(1, min(7, n))
	return fontSizes[n-1], true
}

func listTypeAttr(v string) (string, bool) {
	switch v {
	case "1":
		return "decimal", true
	case "a":
		return "lower-alpha", true
	case "A":
		return "upper-alpha", true
	case "i":
		return "lower-roman", true
	case "I":
		return "upper-roman", true
	}
	switch strings.ToLower(v) {
	case "disc", "circle", "square":
		return strings.ToLower(v), true
	}
	return "", false
}
