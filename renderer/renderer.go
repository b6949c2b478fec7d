// Package renderer 定义整页标签的渲染接口与页面物理尺寸。
package renderer

import (
	"context"
	"image"

	"github.com/ByLCY/pricelabel/label"
	"github.com/ByLCY/pricelabel/layout"
)

// 输出页面的物理尺寸（mm）：两张 35mm 标签加 2mm 间距，横向。
const (
	PageWidth  = 72.0
	PageHeight = 22.0
)

// Supersample 是截取位图时相对 CSS 像素（96dpi）的放大倍数。
const Supersample = 4.0

// Resolution 返回给定放大倍数下每毫米的像素数。
func Resolution(supersample float64) float64 {
	return supersample * layout.MmToPx
}

// PageRenderer 把一页（两个标签位）渲染为白底位图。
// 空标签位留白；单个标签位的条码失败只降级该标签位，不返回错误。
type PageRenderer interface {
	RenderPage(ctx context.Context, group label.PageGroup, cfg label.LayoutConfig) (image.Image, error)
}

// Func 让普通函数满足 PageRenderer。
type Func func(ctx context.Context, group label.PageGroup, cfg label.LayoutConfig) (image.Image, error)

// RenderPage 实现 PageRenderer。
func (f Func) RenderPage(ctx context.Context, group label.PageGroup, cfg label.LayoutConfig) (image.Image, error) {
	return f(ctx, group, cfg)
}
