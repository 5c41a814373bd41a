package css

import (
	"strconv"
	"strings"
)

// Unit is the unit of a parsed CSS length.
type Unit int

const (
	UnitNone Unit = iota // bare number, treated as pixels
	UnitPx
	UnitEm
	UnitEx
	UnitPt
	UnitPc
	UnitIn
	UnitCm
	UnitMm
	UnitPercent
)

var unitSuffixes = []struct {
	suffix string
	unit   Unit
}{
	{"px", UnitPx},
	{"em", UnitEm},
	{"ex", UnitEx},
	{"pt", UnitPt},
	{"pc", UnitPc},
	{"in", UnitIn},
	{"cm", UnitCm},
	{"mm", UnitMm},
	{"%", UnitPercent},
}

// Pixels per unit at 96 DPI.
const (
	PixelsPerInch  = 96.0
	PixelsPerPoint = PixelsPerInch / 72.0
)

// Length is a parsed CSS length literal.
type Length struct {
	Number float64
	Unit   Unit
}

// IsPercent reports whether the length is relative to a reference dimension.
func (l Length) IsPercent() bool { return l.Unit == UnitPercent }

// IsRelative reports whether the length depends on the font size.
func (l Length) IsRelative() bool { return l.Unit == UnitEm || l.Unit == UnitEx }

// Resolve converts the length to pixels. Percentages resolve against
// reference, em and ex against emSize (pixels per em).
func (l Length) Resolve(reference, emSize float64) float64 {
	switch l.Unit {
	case UnitPercent:
		return l.Number / 100 * reference
	case UnitEm:
		return l.Number * emSize
	case UnitEx:
		return l.Number * emSize / 2
	case UnitPt:
		return l.Number * PixelsPerPoint
	case UnitPc:
		return l.Number * 12 * PixelsPerPoint
	case UnitIn:
		return l.Number * PixelsPerInch
	case UnitCm:
		return l.Number * PixelsPerInch / 2.54
	case UnitMm:
		return l.Number * PixelsPerInch / 25.4
	}
	return l.Number
}

// ParseLength parses a length value (e.g. "100px", "1.5em", "50%" or "100").
func ParseLength(val string) (Length, bool) {
	val = strings.ToLower(strings.TrimSpace(val))
	if val == "" {
		return Length{}, false
	}
	unit := UnitNone
	for _, u := range unitSuffixes {
		if strings.HasSuffix(val, u.suffix) {
			unit = u.unit
			val = strings.TrimSpace(val[:len(val)-len(u.suffix)])
			break
		}
	}
	num, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Number: num, Unit: unit}, true
}

// ResolveLength parses val and resolves it in one step. Unparseable input
// and keywords such as "auto" return ok == false.
func ResolveLength(val string, reference, emSize float64) (float64, bool) {
	l, ok := ParseLength(val)
	if !ok {
		return 0, false
	}
	return l.Resolve(reference, emSize), true
}

// ParseNumber parses a plain number or a percentage of hundredPercent.
func ParseNumber(val string, hundredPercent float64) (float64, bool) {
	val = strings.TrimSpace(val)
	if strings.HasSuffix(val, "%") {
		n, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(val, "%")), 64)
		if err != nil {
			return 0, false
		}
		return n / 100 * hundredPercent, true
	}
	n, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseSpan parses a colspan, rowspan, span or start style integer
// attribute. Non-numeric and non-positive input falls back to def.
func ParseSpan(val string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
