package document

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"

	"github.com/ByLCY/pricelabel/renderer"
)

// DefaultJPEGQuality 为页面位图的 JPEG 质量。
const DefaultJPEGQuality = 100

// FPDF 使用 github.com/jung-kurt/gofpdf 输出，页面位图以 JPEG 嵌入。
type FPDF struct {
	pdf     *gofpdf.Fpdf
	quality int
	pages   int
}

var _ Document = (*FPDF)(nil)

// gofpdf 横向页面会交换宽高，这里按纵向给出 22×72。
var pageSize = gofpdf.SizeType{Wd: renderer.PageHeight, Ht: renderer.PageWidth}

// NewFPDF 创建空文档，quality 不在 1..100 时使用 DefaultJPEGQuality。
func NewFPDF(quality int) *FPDF {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "mm",
		Size:           pageSize,
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	return &FPDF{pdf: pdf, quality: quality}
}

// AddPage 追加一页并铺满位图。
func (d *FPDF) AddPage(img image.Image) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(d.quality)); err != nil {
		return fmt.Errorf("编码页面 JPEG 失败: %w", err)
	}
	name := fmt.Sprintf("page-%d", d.pages+1)
	opts := gofpdf.ImageOptions{ImageType: "JPG"}
	d.pdf.RegisterImageOptionsReader(name, opts, &buf)
	d.pdf.AddPageFormat("L", pageSize)
	d.pdf.ImageOptions(name, 0, 0, renderer.PageWidth, renderer.PageHeight, false, opts, 0, "")
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("写入第 %d 页失败: %w", d.pages+1, err)
	}
	d.pages++
	return nil
}

// AddBlankPage 追加一张空白页。
func (d *FPDF) AddBlankPage() error {
	d.pdf.AddPageFormat("L", pageSize)
	if err := d.pdf.Error(); err != nil {
		return err
	}
	d.pages++
	return nil
}

// PageCount 返回已追加的页数。
func (d *FPDF) PageCount() int { return d.pages }

// Write 输出 PDF，之后文档不可再修改。
func (d *FPDF) Write(w io.Writer) error {
	if d.pages == 0 {
		return ErrNoPages
	}
	return d.pdf.Output(w)
}

// PageSize 返回当前页的宽高（mm）。
func (d *FPDF) PageSize() (float64, float64) {
	return d.pdf.GetPageSize()
}
