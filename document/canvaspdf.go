package document

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/pricelabel/renderer"
)

// CanvasPDF 使用 tdewolff/canvas 的 PDF 写出器，位图按页面宽度换算分辨率后铺满整页。
type CanvasPDF struct {
	buf    bytes.Buffer
	writer *pdf.PDF
	pages  int
	closed bool
}

var _ Document = (*CanvasPDF)(nil)

// NewCanvasPDF 创建空文档。
func NewCanvasPDF() *CanvasPDF { return &CanvasPDF{} }

func (d *CanvasPDF) next() (*canvas.Canvas, error) {
	if d.closed {
		return nil, fmt.Errorf("文档已写出，不能再追加页面")
	}
	if d.writer == nil {
		d.writer = pdf.New(&d.buf, renderer.PageWidth, renderer.PageHeight, nil)
	} else {
		d.writer.NewPage(renderer.PageWidth, renderer.PageHeight)
	}
	d.pages++
	return canvas.New(renderer.PageWidth, renderer.PageHeight), nil
}

// AddPage 追加一页并铺满位图。
func (d *CanvasPDF) AddPage(img image.Image) error {
	w := img.Bounds().Dx()
	if w <= 0 || img.Bounds().Dy() <= 0 {
		return fmt.Errorf("页面位图为空")
	}
	c, err := d.next()
	if err != nil {
		return err
	}
	ctx := canvas.NewContext(c)
	ctx.DrawImage(0, 0, img, canvas.DPMM(float64(w)/renderer.PageWidth))
	c.RenderTo(d.writer)
	return nil
}

// AddBlankPage 追加一张白色空白页。
func (d *CanvasPDF) AddBlankPage() error {
	c, err := d.next()
	if err != nil {
		return err
	}
	ctx := canvas.NewContext(c)
	ctx.SetFillColor(canvas.White)
	ctx.DrawPath(0, 0, canvas.Rectangle(renderer.PageWidth, renderer.PageHeight))
	c.RenderTo(d.writer)
	return nil
}

// PageCount 返回已追加的页数。
func (d *CanvasPDF) PageCount() int { return d.pages }

// Write 结束文档并输出。
func (d *CanvasPDF) Write(w io.Writer) error {
	if d.pages == 0 {
		return ErrNoPages
	}
	if !d.closed {
		if err := d.writer.Close(); err != nil {
			return fmt.Errorf("写入 PDF 失败: %w", err)
		}
		d.closed = true
	}
	_, err := w.Write(d.buf.Bytes())
	return err
}
