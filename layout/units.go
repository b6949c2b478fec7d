package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for lengths used by label sheets.

// Unit represents the original unit of a length value.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
	UnitPX               // CSS pixels (1/96 in), used by barcode options
)

// Conversion constants between pt, px and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	PxToMm = 25.4 / 96.0
	MmToPx = 1.0 / PxToMm
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	case UnitPX:
		return "px"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// mm returns the length in millimeters; ok is false for unit-less values.
func (l Length) mm() (float64, bool) {
	switch l.Unit {
	case UnitMM:
		return l.Value, true
	case UnitCM:
		return l.Value * 10, true
	case UnitIN:
		return l.Value * 25.4, true
	case UnitPT:
		return l.Value * PtToMm, true
	case UnitPX:
		return l.Value * PxToMm, true
	default:
		return l.Value, false
	}
}

// To converts this length to target unit. Unit-less values are returned as-is,
// so a bare number is read in whatever unit the caller expects.
func (l Length) To(target Unit) float64 {
	mm, ok := l.mm()
	if !ok {
		return l.Value
	}
	switch target {
	case UnitMM, UnitNone:
		return mm
	case UnitCM:
		return mm / 10
	case UnitIN:
		return mm / 25.4
	case UnitPT:
		return mm * MmToPt
	case UnitPX:
		return mm * MmToPx
	}
	return l.Value
}

func (l Length) ToMM() float64 { return l.To(UnitMM) }
func (l Length) ToPT() float64 { return l.To(UnitPT) }
func (l Length) ToPX() float64 { return l.To(UnitPX) }

// ParseLength parses a length string such as "5.5mm", "6.5pt", "20px" or "-0.5".
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}, {"px", UnitPX}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, err
	}
	return Length{Value: f, Unit: unit}, nil
}
