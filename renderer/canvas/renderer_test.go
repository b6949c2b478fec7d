package canvasrenderer

import (
	"math"
	"testing"

	"github.com/ByLCY/pricelabel/layout"
)

func bodyFont() layout.FontResource {
	return layout.FontResource{Name: "Body", Src: "embed:goregular"}
}

func TestLayoutLinesGreedyWrapsText(t *testing.T) {
	r := NewRenderer(".")
	// 这里的宽度/字号/行高均为 mm
	fontSizeMM := 12 * layout.PtToMm
	lineHeightMM := fontSizeMM * 1.2

	lines, err := r.LayoutLines("hello world again", 10, bodyFont(), fontSizeMM, lineHeightMM, "normal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %d", len(lines))
	}
	for i, ln := range lines {
		if ln.Content != "" && ln.Content[0] == ' ' {
			t.Fatalf("line %d starts with whitespace: %q", i, ln.Content)
		}
	}
}

func TestGreedyWrapHonorsNewlines(t *testing.T) {
	r := NewRenderer(".")
	fontSizeMM := 12 * layout.PtToMm
	lineHeightMM := fontSizeMM * 1.2

	lines, err := r.LayoutLines("foo\n\nbar", 100, bodyFont(), fontSizeMM, lineHeightMM, "normal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines including blank, got %d", len(lines))
	}
	if lines[1].Content != "" {
		t.Fatalf("expected middle line to be blank, got %q", lines[1].Content)
	}
}

// 当第一行宽度与容器宽度恰好相等且后面紧跟一个显式换行时，不应产生额外的空行。
func TestNoBlankLineWhenEqualWidthThenNewline(t *testing.T) {
	r := NewRenderer(".")
	fontSizeMM := 12 * layout.PtToMm
	lineHeightMM := fontSizeMM * 1.2

	first := "SAMPLE-A"
	measured, err := r.LayoutLines(first, 0, bodyFont(), fontSizeMM, lineHeightMM, "nowrap")
	if err != nil {
		t.Fatalf("measure error: %v", err)
	}
	if len(measured) != 1 || measured[0].Width <= 0 {
		t.Fatalf("unexpected measurement: %+v", measured)
	}

	lines, err := r.LayoutLines(first+"\nSAMPLE-B", measured[0].Width, bodyFont(), fontSizeMM, lineHeightMM, "normal")
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) != 2 || lines[0].Content != first || lines[1].Content != "SAMPLE-B" {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}

// TestLineHeightsInvariant 验证首行 GapBefore 为 0，其余行 GapBefore ≈ max(lineHeight - textHeight, 0)。
func TestLineHeightsInvariant(t *testing.T) {
	r := NewRenderer(".")
	fontSizeMM := 12 * layout.PtToMm
	lineHeightMM := fontSizeMM * 1.3

	content := "longlonglong longlonglong longlonglong longlonglong longlonglong"
	lines, err := r.LayoutLines(content, 40, bodyFont(), fontSizeMM, lineHeightMM, "normal")
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected multiple lines for invariant test, got %d", len(lines))
	}
	textHeight := lines[0].Height
	if textHeight <= 0 {
		t.Fatalf("invalid text height: %g", textHeight)
	}
	wantLeading := math.Max(lineHeightMM-textHeight, 0)
	if lines[0].GapBefore != 0 {
		t.Fatalf("first line GapBefore must be 0, got %g", lines[0].GapBefore)
	}
	const eps = 1e-6
	for i := 1; i < len(lines); i++ {
		if diff := math.Abs(lines[i].GapBefore - wantLeading); diff > eps {
			t.Fatalf("line %d GapBefore mismatch: got=%g want=%g", i, lines[i].GapBefore, wantLeading)
		}
		if diff := math.Abs(lines[i].Height - textHeight); diff > eps {
			t.Fatalf("line %d Height mismatch: got=%g want=%g", i, lines[i].Height, textHeight)
		}
	}
}

// TestGreedyWrapWidthLimit 验证每行宽度不超过限制（mm）。
func TestGreedyWrapWidthLimit(t *testing.T) {
	r := NewRenderer(".")
	fontSizeMM := 12 * layout.PtToMm
	limit := 30.0
	content := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	lines, err := r.LayoutLines(content, limit, bodyFont(), fontSizeMM, fontSizeMM*1.2, "normal")
	if err != nil {
		t.Fatalf("LayoutLines error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected the long word to be split, got %d lines", len(lines))
	}
	for i, ln := range lines {
		if ln.Width-limit > 1e-6 {
			t.Fatalf("line %d width exceeds limit: width=%g limit=%g", i, ln.Width, limit)
		}
	}
}

func TestUnknownFontFallsBack(t *testing.T) {
	r := NewRenderer("")
	font := layout.FontResource{Name: "Missing", Src: "embed:Inter-Regular"}
	lines, err := r.LayoutLines("abc", 0, font, 3, 3.3, "nowrap")
	if err != nil {
		t.Fatalf("expected fallback font, got error: %v", err)
	}
	if len(lines) != 1 || lines[0].Width <= 0 {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}
