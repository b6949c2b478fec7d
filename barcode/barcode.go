// Package barcode encodes label barcodes into module patterns that renderers
// can draw at any physical size.
package barcode

import (
	"errors"
	"fmt"
	"image/color"

	bc "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
)

// FormatCode128 is the only symbology used on price labels.
const FormatCode128 = "CODE128"

// ErrEmptyText is returned when there is nothing to encode.
var ErrEmptyText = errors.New("barcode: empty text")

// Options mirrors the knobs of a typical barcode drawing library.
// All lengths are millimeters.
type Options struct {
	Format       string  `json:"format"`
	ModuleWidth  float64 `json:"moduleWidth"` // width of one narrow bar
	Height       float64 `json:"height"`      // bar height, excluding the text line
	DisplayValue bool    `json:"displayValue"`
	FontSize     float64 `json:"fontSize"`
	TextMargin   float64 `json:"textMargin"` // gap between bars and text
	Margin       float64 `json:"margin"`     // quiet zone on every side
}

// Symbol is an encoded barcode: a run of dark/light modules plus the
// options it was encoded with.
type Symbol struct {
	Text    string
	Modules []bool
	Options Options
}

// EncodeError wraps a failure to encode text in the requested symbology.
type EncodeError struct {
	Text   string
	Format string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("barcode: cannot encode %q as %s: %v", e.Text, e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Encoder turns text into a Symbol.
type Encoder interface {
	Encode(text string, opts Options) (*Symbol, error)
}

// Code128 encodes with github.com/boombuler/barcode.
type Code128 struct{}

// NewEncoder returns the default CODE128 encoder.
func NewEncoder() Encoder { return Code128{} }

// Encode implements Encoder.
func (Code128) Encode(text string, opts Options) (*Symbol, error) {
	if opts.Format == "" {
		opts.Format = FormatCode128
	}
	if opts.Format != FormatCode128 {
		return nil, &EncodeError{Text: text, Format: opts.Format, Err: errors.New("unsupported format")}
	}
	if text == "" {
		return nil, &EncodeError{Text: text, Format: opts.Format, Err: ErrEmptyText}
	}
	code, err := code128.Encode(text)
	if err != nil {
		return nil, &EncodeError{Text: text, Format: opts.Format, Err: err}
	}
	return &Symbol{Text: text, Modules: modules(code), Options: opts}, nil
}

func modules(code bc.Barcode) []bool {
	b := code.Bounds()
	out := make([]bool, 0, b.Dx())
	for x := b.Min.X; x < b.Max.X; x++ {
		out = append(out, isDark(code.At(x, b.Min.Y)))
	}
	return out
}

func isDark(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r+g+b < 3*0x8000
}

// Bar is one dark run, in millimeters relative to the symbol's left edge.
type Bar struct {
	X     float64
	Width float64
}

// Bars merges adjacent dark modules into bars.
func (s *Symbol) Bars() []Bar {
	var bars []Bar
	w := s.Options.ModuleWidth
	start := -1
	for i := 0; i <= len(s.Modules); i++ {
		dark := i < len(s.Modules) && s.Modules[i]
		switch {
		case dark && start < 0:
			start = i
		case !dark && start >= 0:
			bars = append(bars, Bar{X: s.Options.Margin + float64(start)*w, Width: float64(i-start) * w})
			start = -1
		}
	}
	return bars
}

// Width is the total width including quiet zones.
func (s *Symbol) Width() float64 {
	return float64(len(s.Modules))*s.Options.ModuleWidth + 2*s.Options.Margin
}

// Height is the total height given the height of the human-readable line.
// textHeight is ignored when DisplayValue is false.
func (s *Symbol) Height(textHeight float64) float64 {
	h := s.Options.Height + 2*s.Options.Margin
	if s.Options.DisplayValue {
		h += s.Options.TextMargin + textHeight
	}
	return h
}
