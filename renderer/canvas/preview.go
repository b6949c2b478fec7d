package canvasrenderer

import (
	"context"
	"fmt"
	"image"
	"io"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/pricelabel/label"
	"github.com/ByLCY/pricelabel/layout"
	"github.com/ByLCY/pricelabel/renderer"
)

// PreviewScale 是预览相对 CSS 像素的放大倍数。
const PreviewScale = 2.0

// PreviewOptions 控制预览输出。
type PreviewOptions struct {
	Format string  // png（默认）或 pdf
	Scale  float64 // 仅 png 使用，<=0 时为 PreviewScale
	Border bool    // 是否绘制标签外框
}

// PreviewPage 在 72×22mm 的矢量画布上并排绘制两张相同的标签，与导出页面的排布一致。
func (r *Renderer) PreviewPage(ctx context.Context, content label.Content, cfg label.LayoutConfig, border bool) (*canvas.Canvas, error) {
	r.drawMu.Lock()
	defer r.drawMu.Unlock()

	spec, err := r.engine.Compute(content, cfg, 1)
	if err != nil {
		return nil, err
	}
	gap := cfg.Gap
	if math.IsNaN(gap) || math.IsInf(gap, 0) {
		gap = 0
	}
	c := canvas.New(renderer.PageWidth, renderer.PageHeight)
	cctx := canvas.NewContext(c)
	cctx.SetCoordSystem(canvas.CartesianIV)
	fillWhite(cctx, renderer.PageWidth, renderer.PageHeight)
	for slot := 0; slot < label.SlotsPerPage; slot++ {
		ox := float64(slot) * (layout.LabelWidth + gap)
		if err := r.drawLabel(ctx, cctx, spec, ox); err != nil {
			return nil, err
		}
		if border {
			r.drawBorder(cctx, ox, 0, spec.Width, spec.Height)
		}
	}
	return c, nil
}

// PreviewImage 光栅化预览页。
func (r *Renderer) PreviewImage(ctx context.Context, content label.Content, cfg label.LayoutConfig, opts PreviewOptions) (image.Image, error) {
	c, err := r.PreviewPage(ctx, content, cfg, opts.Border)
	if err != nil {
		return nil, err
	}
	scale := opts.Scale
	if !(scale > 0) || math.IsInf(scale, 0) {
		scale = PreviewScale
	}
	return rasterizer.Draw(c, canvas.DPMM(renderer.Resolution(scale)), canvas.DefaultColorSpace), nil
}

// WritePreview 将预览写为 PNG 或矢量 PDF。
func (r *Renderer) WritePreview(ctx context.Context, w io.Writer, content label.Content, cfg label.LayoutConfig, opts PreviewOptions) error {
	switch strings.ToLower(opts.Format) {
	case "", "png":
		img, err := r.PreviewImage(ctx, content, cfg, opts)
		if err != nil {
			return err
		}
		if err := imaging.Encode(w, img, imaging.PNG); err != nil {
			return fmt.Errorf("写入 PNG 失败: %w", err)
		}
		return nil
	case "pdf":
		c, err := r.PreviewPage(ctx, content, cfg, opts.Border)
		if err != nil {
			return err
		}
		writer := pdf.New(w, c.W, c.H, nil)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return fmt.Errorf("写入 PDF 失败: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("不支持的预览格式 %q（可选 png、pdf）", opts.Format)
	}
}
