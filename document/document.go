// Package document 把渲染好的页面位图逐页组装为 72×22mm 横向 PDF。
package document

import (
	"fmt"
	"image"
	"io"
	"strings"
)

// Document 是输出文档：每页一张覆盖整页的位图，按 1:1 物理尺寸放置。
type Document interface {
	AddPage(img image.Image) error
	AddBlankPage() error
	PageCount() int
	Write(w io.Writer) error
}

// Factory 创建一个空文档。
type Factory func() (Document, error)

// 文档后端名称。
const (
	BackendFPDF   = "fpdf"
	BackendCanvas = "canvas"
)

// NewFactory 按后端名称返回文档工厂，jpegQuality 仅 fpdf 后端使用。
func NewFactory(backend string, jpegQuality int) (Factory, error) {
	switch strings.ToLower(backend) {
	case "", BackendFPDF:
		return func() (Document, error) { return NewFPDF(jpegQuality), nil }, nil
	case BackendCanvas:
		return func() (Document, error) { return NewCanvasPDF(), nil }, nil
	default:
		return nil, fmt.Errorf("未知的文档后端 %q（可选 fpdf、canvas）", backend)
	}
}
