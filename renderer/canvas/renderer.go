// Package canvasrenderer 基于 github.com/tdewolff/canvas 绘制价签：
// 排版测量（layout.Typesetter）、单张标签的矢量绘制、整页位图截取与预览输出。
package canvasrenderer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/pricelabel/barcode"
	"github.com/ByLCY/pricelabel/label"
	"github.com/ByLCY/pricelabel/layout"
	"github.com/ByLCY/pricelabel/renderer"
)

// Renderer draws labels via github.com/tdewolff/canvas.
type Renderer struct {
	baseDir     string
	engine      *layout.Engine
	encoder     barcode.Encoder
	fonts       layout.Fonts
	barcodeFont layout.FontResource
	resolution  float64 // px/mm
	settleDelay time.Duration

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily

	// drawMu 串行化排版与矢量绘制，字体整形缓存不保证并发安全；光栅化在锁外进行。
	drawMu sync.Mutex

	active atomic.Int32
	peak   atomic.Int32
}

var (
	_ renderer.PageRenderer = (*Renderer)(nil)
	_ layout.Typesetter     = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	// BaseDir 用于解析相对路径的字体文件。
	BaseDir string
	// Fonts 为名称与价格字体，零值使用 layout.DefaultFonts。
	Fonts layout.Fonts
	// BarcodeFont 为条码下方可读文字的字体，零值使用内置 gomono。
	BarcodeFont layout.FontResource
	// Encoder 为条码编码器，nil 时使用带缓存的 CODE128 编码器。
	Encoder barcode.Encoder
	// Price 为价格格式化器，nil 时使用越南语分组 + VND。
	Price *layout.PriceFormatter
	// Supersample 为截取倍数，<=0 时为 renderer.Supersample。
	Supersample float64
	// SettleDelay 为截取前的额外等待，默认 0（条码绘制完成由 errgroup 保证）。
	SettleDelay time.Duration
}

// NewRenderer creates a renderer with default fonts and encoder.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer from opts.
func NewRendererWithOptions(opts Options) *Renderer {
	if opts.Fonts.Name.Src == "" || opts.Fonts.Price.Src == "" {
		def := layout.DefaultFonts()
		if opts.Fonts.Name.Src == "" {
			opts.Fonts.Name = def.Name
		}
		if opts.Fonts.Price.Src == "" {
			opts.Fonts.Price = def.Price
		}
	}
	if opts.BarcodeFont.Src == "" {
		opts.BarcodeFont = layout.FontResource{Name: "BarcodeMono", Src: "embed:gomono"}
	}
	if opts.Encoder == nil {
		opts.Encoder = barcode.NewCache(barcode.NewEncoder())
	}
	if !(opts.Supersample > 0) || math.IsInf(opts.Supersample, 0) {
		opts.Supersample = renderer.Supersample
	}
	r := &Renderer{
		baseDir:      opts.BaseDir,
		encoder:      opts.Encoder,
		fonts:        opts.Fonts,
		barcodeFont:  opts.BarcodeFont,
		resolution:   renderer.Resolution(opts.Supersample),
		settleDelay:  opts.SettleDelay,
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	engineOpts := []layout.Option{layout.WithFonts(opts.Fonts)}
	if opts.Price != nil {
		engineOpts = append(engineOpts, layout.WithPriceFormatter(opts.Price))
	}
	r.engine = layout.NewEngine(r, engineOpts...)
	return r
}

// Engine 返回与渲染器共用字体测量的布局引擎，预览与导出应使用同一个实例。
func (r *Renderer) Engine() *layout.Engine { return r.engine }

// Resolution 返回截取分辨率（px/mm）。
func (r *Renderer) Resolution() float64 { return r.resolution }

// Active 返回当前存活的合成区数量，正常情况下在 RenderPage 返回后为 0。
func (r *Renderer) Active() int { return int(r.active.Load()) }

// Peak 返回同时存活的合成区数量的历史最大值。
func (r *Renderer) Peak() int { return int(r.peak.Load()) }

// RenderPage 实现 renderer.PageRenderer：两个标签位并发绘制并各自光栅化，
// 全部完成后按整数像素偏移贴到白底页面上，相同内容的标签得到逐字节相同的位图。
func (r *Renderer) RenderPage(ctx context.Context, group label.PageGroup, cfg label.LayoutConfig) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	area := r.acquire()
	defer area.release()

	var slots [label.SlotsPerPage]*image.RGBA
	g, gctx := errgroup.WithContext(ctx)
	for i, inst := range group {
		if inst == nil {
			continue
		}
		g.Go(func() error {
			slotCtx := log.WithContext(gctx, log.FromContext(gctx).With("slot", i))
			img, err := r.LabelImage(slotCtx, inst.Product.Content(), cfg)
			if err != nil {
				return fmt.Errorf("标签位 %d 渲染失败: %w", i, err)
			}
			slots[i] = img
			return nil
		})
	}
	// 截取必须发生在所有标签位（含条码）绘制完成之后
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := r.settle(ctx); err != nil {
		return nil, err
	}

	page := area.page
	for i, img := range slots {
		if img == nil {
			continue
		}
		page = imaging.Paste(page, img, image.Pt(r.slotOffset(i, cfg.Gap), 0))
	}
	return page, nil
}

// LabelImage 绘制并光栅化单张标签（白底）。
func (r *Renderer) LabelImage(ctx context.Context, content label.Content, cfg label.LayoutConfig) (*image.RGBA, error) {
	c, err := r.RenderLabel(ctx, content, cfg)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rasterizer.Draw(c, canvas.DPMM(r.resolution), canvas.DefaultColorSpace), nil
}

// RenderLabel 在 35×22mm 的矢量画布上绘制单张标签。
// 条码失败只记录 WARN 并跳过条码，其余区域照常绘制。
func (r *Renderer) RenderLabel(ctx context.Context, content label.Content, cfg label.LayoutConfig) (*canvas.Canvas, error) {
	r.drawMu.Lock()
	defer r.drawMu.Unlock()

	spec, err := r.engine.Compute(content, cfg, 1)
	if err != nil {
		return nil, err
	}
	c := canvas.New(spec.Width, spec.Height)
	cctx := canvas.NewContext(c)
	cctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
	fillWhite(cctx, spec.Width, spec.Height)
	if err := r.drawLabel(ctx, cctx, spec, 0); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Renderer) slotOffset(slot int, gap float64) int {
	if slot == 0 {
		return 0
	}
	if math.IsNaN(gap) || math.IsInf(gap, 0) {
		gap = 0
	}
	return pixels(float64(slot)*(layout.LabelWidth+gap), r.resolution)
}

func (r *Renderer) settle(ctx context.Context) error {
	if r.settleDelay <= 0 {
		return nil
	}
	t := time.NewTimer(r.settleDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// compositionArea 是一页专用的离屏合成区，release 在任何返回路径上都会被调用。
type compositionArea struct {
	r        *Renderer
	page     *image.NRGBA
	released bool
}

func (r *Renderer) acquire() *compositionArea {
	n := r.active.Add(1)
	for {
		p := r.peak.Load()
		if n <= p || r.peak.CompareAndSwap(p, n) {
			break
		}
	}
	w := pixels(renderer.PageWidth, r.resolution)
	h := pixels(renderer.PageHeight, r.resolution)
	return &compositionArea{r: r, page: imaging.New(w, h, color.White)}
}

func (a *compositionArea) release() {
	if a.released {
		return
	}
	a.released = true
	a.r.active.Add(-1)
}

func pixels(mm, res float64) int {
	return int(math.Round(mm * res))
}
