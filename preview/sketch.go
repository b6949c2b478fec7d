package preview

import (
	"math"
	"strings"

	"github.com/ByLCY/pricelabel/layout"
)

// 字符画中各区域的填充字符。
const (
	barRune   = '▌'
	blankRune = ' '
)

// Sketch 将 VisualSpec 画成 cols×rows 的字符网格，用于终端内预览。
// 区域按层级从低到高绘制，高层覆盖低层，与导出结果的遮挡关系一致。
func Sketch(spec layout.VisualSpec, cols, rows int) []string {
	if cols <= 0 || rows <= 0 || spec.Width <= 0 || spec.Height <= 0 {
		return nil
	}
	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(string(blankRune), cols))
	}
	sx := float64(cols) / spec.Width
	sy := float64(rows) / spec.Height

	for _, zone := range spec.PaintOrder() {
		switch {
		case zone.Barcode != nil:
			paintBarcode(grid, zone, sx, sy)
		case zone.Text != nil:
			paintText(grid, zone.Text, sx, sy)
		}
	}

	out := make([]string, rows)
	for i, row := range grid {
		out[i] = string(row)
	}
	return out
}

func paintBarcode(grid [][]rune, zone layout.Zone, sx, sy float64) {
	b := zone.Bounds
	opts := zone.Barcode.Options
	if zone.Barcode.Text == "" || opts.Height <= 0 {
		return
	}
	top := int(math.Floor(b.CenterY()*sy - opts.Height*sy/2))
	bottom := int(math.Ceil(b.CenterY()*sy + opts.Height*sy/2))
	if bottom <= top {
		bottom = top + 1
	}
	// 宽度按每个字符约 11 个模块估算（CODE128）。
	width := float64(len(zone.Barcode.Text)*11+35) * opts.ModuleWidth * sx
	left := int(math.Round(b.CenterX()*sx - width/2))
	right := int(math.Round(b.CenterX()*sx + width/2))
	for y := top; y < bottom; y++ {
		for x := left; x < right; x++ {
			set(grid, x, y, barRune)
		}
	}
	// 可读文字紧贴条码下方
	writeCentered(grid, zone.Barcode.Text, int(math.Round(b.CenterX()*sx)), bottom)
}

func paintText(grid [][]rune, tb *layout.TextBox, sx, sy float64) {
	cursor := tb.Y
	for _, line := range tb.Lines {
		cursor += line.GapBefore
		h := line.Height
		if h <= 0 {
			h = tb.LineHeight
		}
		y := int(math.Floor((cursor + h/2) * sy))
		writeCentered(grid, line.Content, int(math.Round((tb.X+tb.Width/2)*sx)), y)
		cursor += h
	}
}

func writeCentered(grid [][]rune, text string, cx, y int) {
	runes := []rune(text)
	start := cx - len(runes)/2
	for i, r := range runes {
		set(grid, start+i, y, r)
	}
}

func set(grid [][]rune, x, y int, r rune) {
	if y < 0 || y >= len(grid) || x < 0 || x >= len(grid[y]) {
		return
	}
	grid[y][x] = r
}
