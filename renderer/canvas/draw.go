package canvasrenderer

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tdewolff/canvas"

	"github.com/ByLCY/pricelabel/layout"
)

const borderWidth = 0.2

func fillWhite(ctx *canvas.Context, w, h float64) {
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.SetFillColor(canvas.White)
	ctx.DrawPath(0, 0, canvas.Rectangle(w, h))
}

// drawLabel 按层级从低到高绘制区域，ox 为标签在画布上的水平偏移（mm）。
func (r *Renderer) drawLabel(ctx context.Context, cctx *canvas.Context, spec layout.VisualSpec, ox float64) error {
	for _, zone := range spec.PaintOrder() {
		switch {
		case zone.Barcode != nil:
			r.drawBarcode(ctx, cctx, zone.Barcode, ox)
		case zone.Text != nil:
			if err := r.drawTextBox(cctx, *zone.Text, ox); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) drawBorder(cctx *canvas.Context, x, y, w, h float64) {
	cctx.SetFillColor(canvas.Transparent)
	cctx.SetStrokeColor(canvas.Hex("#cbd5e1"))
	cctx.SetStrokeWidth(borderWidth)
	cctx.DrawPath(x, y, canvas.Rectangle(w, h))
	cctx.SetStrokeColor(canvas.Transparent)
}

// drawBarcode 以矢量矩形绘制条码，居中于区域的实际位置。
func (r *Renderer) drawBarcode(ctx context.Context, cctx *canvas.Context, box *layout.BarcodeBox, ox float64) {
	logger := log.FromContext(ctx)
	sym, err := r.encoder.Encode(box.Text, box.Options)
	if err != nil {
		logger.Warn("条码渲染失败，该标签不绘制条码", "barcode", box.Text, "err", err)
		return
	}
	opts := sym.Options
	textHeight := 0.0
	if opts.DisplayValue {
		textHeight = opts.FontSize
	}
	x0 := ox + box.CenterX - sym.Width()/2
	y0 := box.CenterY - sym.Height(textHeight)/2

	cctx.SetStrokeColor(canvas.Transparent)
	cctx.SetFillColor(canvas.Black)
	for _, bar := range sym.Bars() {
		cctx.DrawPath(x0+bar.X, y0+opts.Margin, canvas.Rectangle(bar.Width, opts.Height))
	}
	if !opts.DisplayValue || opts.FontSize <= 0 {
		return
	}
	face, err := r.fontFace(r.barcodeFont, toPt(opts.FontSize), layout.Black)
	if err != nil {
		logger.Warn("条码文字字体加载失败", "barcode", box.Text, "err", err)
		return
	}
	baseline := y0 + opts.Margin + opts.Height + opts.TextMargin + face.Metrics().Ascent
	cctx.DrawText(ox+box.CenterX, baseline, canvas.NewTextLine(face, sym.Text, canvas.Center))
}

func (r *Renderer) drawTextBox(cctx *canvas.Context, tb layout.TextBox, ox float64) error {
	if tb.FontSize <= 0 || len(tb.Lines) == 0 {
		return nil
	}
	// TextBox 的坐标/字号/行高均为 mm；创建字体面需要 pt，这里做一次 mm→pt。
	face, err := r.fontFace(r.fontByName(tb.Font), toPt(tb.FontSize), tb.Color)
	if err != nil {
		return err
	}

	var textAlign canvas.TextAlign
	var anchorX float64
	switch strings.ToLower(tb.Align) {
	case "center":
		textAlign = canvas.Center
		anchorX = ox + tb.X + tb.Width/2
	case "right", "end":
		textAlign = canvas.Right
		anchorX = ox + tb.X + tb.Width
	default:
		textAlign = canvas.Left
		anchorX = ox + tb.X
	}

	metrics := face.Metrics()
	cursorY := tb.Y
	for _, line := range tb.Lines {
		cursorY += line.GapBefore
		lineHeight := line.Height
		if lineHeight <= 0 {
			lineHeight = tb.LineHeight
		}
		// 行内半行距：字形（上升部 + 下降部）在行框内垂直居中
		halfLeading := (lineHeight - metrics.Ascent - metrics.Descent) / 2
		baseline := cursorY + halfLeading + metrics.Ascent
		cctx.DrawText(anchorX, baseline, canvas.NewTextLine(face, line.Content, textAlign))
		cursorY += lineHeight
	}
	return nil
}

func (r *Renderer) fontByName(name string) layout.FontResource {
	switch name {
	case r.fonts.Name.Name:
		return r.fonts.Name
	case r.fonts.Price.Name:
		return r.fonts.Price
	case r.barcodeFont.Name:
		return r.barcodeFont
	}
	return r.fonts.Name
}
