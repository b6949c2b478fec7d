package preview

import (
	"strings"
	"testing"

	"github.com/ByLCY/pricelabel/barcode"
	"github.com/ByLCY/pricelabel/layout"
)

func TestSketchNameCoversBarcode(t *testing.T) {
	box := layout.Rect{X: 0, Y: 0, Width: 10, Height: 10}
	spec := layout.VisualSpec{
		Width:  10,
		Height: 10,
		Zones: []layout.Zone{
			{
				Kind:   layout.ZoneName,
				Layer:  layout.LayerName,
				Bounds: box,
				Text: &layout.TextBox{
					X: 0, Y: 4, Width: 10, LineHeight: 2,
					Lines: []layout.TextLine{{Content: "AB", Height: 2}},
				},
			},
			{
				Kind:   layout.ZoneBarcode,
				Layer:  layout.LayerBarcode,
				Bounds: box,
				Barcode: &layout.BarcodeBox{
					Text:    "1",
					Options: barcode.Options{ModuleWidth: 0.5, Height: 10},
				},
			},
		},
	}
	rows := Sketch(spec, 10, 10)
	if len(rows) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(rows))
	}
	if !strings.Contains(rows[5], "AB") {
		t.Fatalf("name should be painted over the bars, row=%q", rows[5])
	}
	if !strings.ContainsRune(rows[2], barRune) {
		t.Fatalf("expected bars around the name, row=%q", rows[2])
	}
}

func TestSketchRejectsEmptyGrid(t *testing.T) {
	if got := Sketch(layout.VisualSpec{Width: 35, Height: 22}, 0, 5); got != nil {
		t.Fatalf("expected nil for empty grid, got %v", got)
	}
}
