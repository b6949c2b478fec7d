package canvasrenderer

import (
	"bytes"
	"context"
	"errors"
	"image"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/pricelabel/label"
	"github.com/ByLCY/pricelabel/renderer"
)

func instance(name, price, code string) *label.Instance {
	return &label.Instance{Product: label.Product{ID: name, Name: name, Price: price, Barcode: code, Quantity: 1}}
}

func asNRGBA(t *testing.T, img image.Image) *image.NRGBA {
	t.Helper()
	n, ok := img.(*image.NRGBA)
	if !ok {
		t.Fatalf("expected *image.NRGBA, got %T", img)
	}
	return n
}

// region 返回页面中 [x0, x0+w) 列的逐行像素。
func region(img *image.NRGBA, x0, w int) [][]byte {
	b := img.Bounds()
	rows := make([][]byte, 0, b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(x0, y)
		rows = append(rows, img.Pix[off:off+w*4])
	}
	return rows
}

func sameRegion(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func hasInk(rows [][]byte) bool {
	for _, row := range rows {
		for _, v := range row {
			if v < 0x80 {
				return true
			}
		}
	}
	return false
}

func labelWidthPx(t *testing.T, r *Renderer) int {
	t.Helper()
	img, err := r.LabelImage(context.Background(), label.PreviewContent("", "", ""), label.DefaultLayoutConfig())
	if err != nil {
		t.Fatalf("LabelImage error: %v", err)
	}
	return img.Bounds().Dx()
}

func TestRenderPageSize(t *testing.T) {
	r := NewRenderer("")
	group := label.PageGroup{instance("Sữa tươi", "32000", "8935000000017"), nil}
	img, err := r.RenderPage(context.Background(), group, label.DefaultLayoutConfig())
	if err != nil {
		t.Fatalf("RenderPage error: %v", err)
	}
	wantW := pixels(renderer.PageWidth, r.Resolution())
	wantH := pixels(renderer.PageHeight, r.Resolution())
	if img.Bounds().Dx() != wantW || img.Bounds().Dy() != wantH {
		t.Fatalf("page size: got=%v want=%dx%d", img.Bounds().Size(), wantW, wantH)
	}
	if r.Active() != 0 || r.Peak() != 1 {
		t.Fatalf("composition area leaked: active=%d peak=%d", r.Active(), r.Peak())
	}
}

func TestIdenticalLabelsAreByteIdentical(t *testing.T) {
	r := NewRenderer("")
	cfg := label.DefaultLayoutConfig()
	a := instance("Bánh quy bơ Danisa hộp thiếc", "150000", "89312345678")
	b := instance("Bánh quy bơ Danisa hộp thiếc", "150000", "89312345678")
	img, err := r.RenderPage(context.Background(), label.PageGroup{a, b}, cfg)
	if err != nil {
		t.Fatalf("RenderPage error: %v", err)
	}
	page := asNRGBA(t, img)
	lw := labelWidthPx(t, r)
	left := region(page, 0, lw)
	right := region(page, r.slotOffset(1, cfg.Gap), lw)
	if !hasInk(left) {
		t.Fatalf("left label is blank")
	}
	if !sameRegion(left, right) {
		t.Fatalf("identical labels rendered differently")
	}
}

func TestGapMovesRightSlot(t *testing.T) {
	r := NewRenderer("")
	lw := labelWidthPx(t, r)
	item := instance("Cà phê sữa", "25000", "8935001234567")
	def := r.slotOffset(1, label.DefaultLayoutConfig().Gap)
	for _, gap := range []float64{0, 1.5} {
		cfg := label.DefaultLayoutConfig()
		cfg.Gap = gap
		want := int(math.Round((35 + gap) * r.Resolution()))
		off := r.slotOffset(1, gap)
		if off != want {
			t.Fatalf("gap %g: slot 1 offset got=%d want=%d", gap, off, want)
		}
		img, err := r.RenderPage(context.Background(), label.PageGroup{item, item}, cfg)
		if err != nil {
			t.Fatalf("gap %g: RenderPage error: %v", gap, err)
		}
		page := asNRGBA(t, img)
		if !sameRegion(region(page, 0, lw), region(page, off, lw)) {
			t.Fatalf("gap %g: right label not found at x=%d", gap, off)
		}
		if sameRegion(region(page, 0, lw), region(page, def, lw)) {
			t.Fatalf("gap %g: right label still at the default offset x=%d", gap, def)
		}
	}
}

func TestEmptySlotStaysWhite(t *testing.T) {
	r := NewRenderer("")
	cfg := label.DefaultLayoutConfig()
	img, err := r.RenderPage(context.Background(), label.PageGroup{instance("Trà xanh", "10000", "123456"), nil}, cfg)
	if err != nil {
		t.Fatalf("RenderPage error: %v", err)
	}
	page := asNRGBA(t, img)
	if hasInk(region(page, r.slotOffset(1, cfg.Gap), labelWidthPx(t, r))) {
		t.Fatalf("empty slot should be white")
	}
}

func TestBarcodeFailureDegradesOnlyThatSlot(t *testing.T) {
	r := NewRenderer("")
	cfg := label.DefaultLayoutConfig()
	good := instance("Nước mắm", "45000", "8934563138165")

	var buf bytes.Buffer
	logger := log.New(&buf)
	ctx := log.WithContext(context.Background(), logger)

	broken, err := r.RenderPage(ctx, label.PageGroup{instance("Nước mắm", "45000", ""), good}, cfg)
	if err != nil {
		t.Fatalf("RenderPage should not fail on a barcode error: %v", err)
	}
	healthy, err := r.RenderPage(context.Background(), label.PageGroup{good, good}, cfg)
	if err != nil {
		t.Fatalf("RenderPage error: %v", err)
	}

	lw := labelWidthPx(t, r)
	off := r.slotOffset(1, cfg.Gap)
	bp, hp := asNRGBA(t, broken), asNRGBA(t, healthy)
	if !sameRegion(region(bp, off, lw), region(hp, off, lw)) {
		t.Fatalf("the healthy slot must render exactly as usual")
	}
	if sameRegion(region(bp, 0, lw), region(hp, 0, lw)) {
		t.Fatalf("the failing slot should be missing its barcode")
	}
	if !hasInk(region(bp, 0, lw)) {
		t.Fatalf("the failing slot should still show name and price")
	}
	if out := buf.String(); !strings.Contains(out, "slot=0") {
		t.Fatalf("expected a warning for slot 0, got %q", out)
	}
	if r.Active() != 0 {
		t.Fatalf("composition area leaked: %d", r.Active())
	}
}

func TestRenderPageCancelled(t *testing.T) {
	r := NewRenderer("")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.RenderPage(ctx, label.PageGroup{instance("A", "1", "1"), nil}, label.DefaultLayoutConfig())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if r.Active() != 0 {
		t.Fatalf("composition area leaked: %d", r.Active())
	}
}

func TestWritePreview(t *testing.T) {
	r := NewRenderer("")
	content := label.PreviewContent("", "", "")
	cfg := label.DefaultLayoutConfig()

	var png bytes.Buffer
	if err := r.WritePreview(context.Background(), &png, content, cfg, PreviewOptions{Border: true}); err != nil {
		t.Fatalf("png preview error: %v", err)
	}
	if !bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("expected PNG output")
	}
	var pdf bytes.Buffer
	if err := r.WritePreview(context.Background(), &pdf, content, cfg, PreviewOptions{Format: "pdf"}); err != nil {
		t.Fatalf("pdf preview error: %v", err)
	}
	if !bytes.HasPrefix(pdf.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected PDF output")
	}
	if err := r.WritePreview(context.Background(), &pdf, content, cfg, PreviewOptions{Format: "gif"}); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}
