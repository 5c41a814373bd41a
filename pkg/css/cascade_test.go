package css

import (
	"testing"
)

type testElement struct {
	tag    string
	attrs  map[string]string
	parent *testElement
}

func (e *testElement) TagName() string { return e.tag }

func (e *testElement) Attribute(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *testElement) Parent() Element {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func mustParse(t *testing.T, css string) []*Stylesheet {
	t.Helper()
	sheet, err := ParseStylesheet(css)
	if err != nil {
		t.Fatalf("ParseStylesheet: %v", err)
	}
	return []*Stylesheet{sheet}
}

func TestComputeStyle_ElementSelector(t *testing.T) {
	node := &testElement{tag: "div"}
	style := ComputeStyle(node, nil, mustParse(t, `div { color: red; }`))

	if color, ok := style.Get("color"); !ok || color != "red" {
		t.Errorf("expected color='red', got '%s'", color)
	}
}

func TestComputeStyle_SpecificityOverride(t *testing.T) {
	sheets := mustParse(t, `
		#main { color: green; }
		.highlight { color: blue; }
		div { color: red; }
	`)
	node := &testElement{tag: "div", attrs: map[string]string{"class": "highlight other"}}
	if color, _ := ComputeStyle(node, nil, sheets).Get("color"); color != "blue" {
		t.Errorf("expected class to override element, got '%s'", color)
	}

	node.attrs["id"] = "main"
	if color, _ := ComputeStyle(node, nil, sheets).Get("color"); color != "green" {
		t.Errorf("expected id to override class, got '%s'", color)
	}
}

func TestComputeStyle_SourceOrderBreaksTies(t *testing.T) {
	node := &testElement{tag: "p"}
	style := ComputeStyle(node, nil, mustParse(t, `p { color: red } p { color: blue }`))
	if color, _ := style.Get("color"); color != "blue" {
		t.Errorf("expected later rule to win, got '%s'", color)
	}
}

func TestComputeStyle_InlineStyleOverridesAll(t *testing.T) {
	node := &testElement{tag: "div", attrs: map[string]string{"id": "x", "style": "color: purple"}}
	style := ComputeStyle(node, nil, mustParse(t, `#x { color: red; width: 5px }`))

	if color, _ := style.Get("color"); color != "purple" {
		t.Errorf("expected inline style to win, got '%s'", color)
	}
	if width, _ := style.Get("width"); width != "5px" {
		t.Errorf("expected width from rule, got '%s'", width)
	}
}

func TestComputeStyle_DefaultsAreOverridden(t *testing.T) {
	defaults := ParseInlineStyle("display: table-cell; padding: 1px")
	node := &testElement{tag: "td"}
	style := ComputeStyle(node, defaults, mustParse(t, `td { padding-left: 7px }`))

	if v, _ := style.Get("display"); v != "table-cell" {
		t.Errorf("expected default display, got %q", v)
	}
	if v, _ := style.Get("padding-left"); v != "7px" {
		t.Errorf("expected rule to override default, got %q", v)
	}
	if v, _ := style.Get("padding-top"); v != "1px" {
		t.Errorf("expected default padding-top, got %q", v)
	}
}

func TestMatchesSelector_Combinators(t *testing.T) {
	table := &testElement{tag: "table", attrs: map[string]string{"class": "grid"}}
	tbody := &testElement{tag: "tbody", parent: table}
	tr := &testElement{tag: "tr", parent: tbody}
	td := &testElement{tag: "td", parent: tr}

	tests := []struct {
		selector string
		want     bool
	}{
		{"td", true},
		{"table td", true},
		{".grid td", true},
		{"table > td", false},
		{"tr > td", true},
		{"tbody > tr > td", true},
		{"ul td", false},
		{"*", true},
	}
	for _, tt := range tests {
		sel, err := ParseSelector(tt.selector)
		if err != nil {
			t.Fatalf("ParseSelector(%q): %v", tt.selector, err)
		}
		if got := MatchesSelector(td, sel); got != tt.want {
			t.Errorf("MatchesSelector(td, %q) = %v; want %v", tt.selector, got, tt.want)
		}
	}
}
