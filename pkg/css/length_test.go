package css

import (
	"math"
	"testing"
)

func TestParseLength(t *testing.T) {
	tests := []struct {
		input string
		want  Length
		ok    bool
	}{
		{"100px", Length{100, UnitPx}, true},
		{" 100 ", Length{100, UnitNone}, true},
		{"1.5em", Length{1.5, UnitEm}, true},
		{"2ex", Length{2, UnitEx}, true},
		{"12pt", Length{12, UnitPt}, true},
		{"50%", Length{50, UnitPercent}, true},
		{"-3mm", Length{-3, UnitMm}, true},
		{"auto", Length{}, false},
		{"", Length{}, false},
		{"px", Length{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseLength(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseLength(%q) = %+v, %v; want %+v, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLengthResolve(t *testing.T) {
	tests := []struct {
		input string
		ref   float64
		em    float64
		want  float64
	}{
		{"10px", 0, 0, 10},
		{"25%", 200, 0, 50},
		{"2em", 0, 16, 32},
		{"2ex", 0, 16, 16},
		{"1in", 0, 0, 96},
		{"72pt", 0, 0, 96},
		{"1pc", 0, 0, 16},
		{"2.54cm", 0, 0, 96},
		{"25.4mm", 0, 0, 96},
	}
	for _, tt := range tests {
		got, ok := ResolveLength(tt.input, tt.ref, tt.em)
		if !ok || math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ResolveLength(%q, %v, %v) = %v; want %v", tt.input, tt.ref, tt.em, got, tt.want)
		}
	}
}

func TestParseSpan(t *testing.T) {
	tests := map[string]int{
		"3":    3,
		" 2 ":  2,
		"0":    1,
		"-4":   1,
		"abc":  1,
		"":     1,
		"2.5":  1,
		"1000": 1000,
	}
	for input, want := range tests {
		if got := ParseSpan(input, 1); got != want {
			t.Errorf("ParseSpan(%q) = %d; want %d", input, got, want)
		}
	}
}

func TestParseNumber(t *testing.T) {
	if n, ok := ParseNumber("50%", 255); !ok || n != 127.5 {
		t.Errorf("expected 127.5, got %v", n)
	}
	if n, ok := ParseNumber("1.25", 0); !ok || n != 1.25 {
		t.Errorf("expected 1.25, got %v", n)
	}
	if _, ok := ParseNumber("x", 0); ok {
		t.Error("expected failure")
	}
}
