// Package app 把配置、渲染器与文档组装器连接起来，供命令行、终端界面与 HTTP 服务共用。
package app

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/ByLCY/pricelabel/config"
	"github.com/ByLCY/pricelabel/document"
	"github.com/ByLCY/pricelabel/label"
	"github.com/ByLCY/pricelabel/layout"
	"github.com/ByLCY/pricelabel/queue"
	canvasrenderer "github.com/ByLCY/pricelabel/renderer/canvas"
)

var (
	// ErrEmptyQueue 表示队列中没有可打印的标签。
	ErrEmptyQueue = errors.New("队列为空，没有可导出的标签")
	// ErrBusy 表示已有导出正在进行。
	ErrBusy = errors.New("已有导出正在进行")
)

// Service 持有一套共享的渲染器与组装器。同一时间只允许一次导出。
type Service struct {
	settings  config.Settings
	renderer  *canvasrenderer.Renderer
	assembler *document.Assembler
	running   atomic.Bool
	now       func() time.Time
}

// New 按配置创建 Service。
func New(s config.Settings) (*Service, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	factory, err := document.NewFactory(s.Export.Backend, s.Export.JPEGQuality)
	if err != nil {
		return nil, err
	}
	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir:     ".",
		Fonts:       s.Fonts(),
		BarcodeFont: s.BarcodeFont(),
		Price:       s.PriceFormatter(),
		Supersample: s.Export.Scale,
		SettleDelay: s.Export.SettleDelay.Duration,
	})
	a := document.NewAssembler(r,
		document.WithFactory(factory),
		document.WithFailurePolicy(s.FailurePolicy()),
	)
	return &Service{settings: s, renderer: r, assembler: a, now: time.Now}, nil
}

// Settings 返回创建时的配置。
func (s *Service) Settings() config.Settings { return s.settings }

// Renderer 返回共享的渲染器。
func (s *Service) Renderer() *canvasrenderer.Renderer { return s.renderer }

// Engine 返回与渲染器共用测量的布局引擎。
func (s *Service) Engine() *layout.Engine { return s.renderer.Engine() }

// Running 报告是否有导出正在进行。
func (s *Service) Running() bool { return s.running.Load() }

// CanExport 与界面上导出按钮的可用条件一致：队列非空且没有导出在进行。
func (s *Service) CanExport(products []label.Product) bool {
	labels, _ := queue.Totals(products)
	return labels > 0 && !s.Running()
}

// Export 展开商品并组装文档。cfg 按值传入，作为本次导出的配置快照。
// 被拒绝的请求不会展开队列。
func (s *Service) Export(ctx context.Context, products []label.Product, cfg label.LayoutConfig, onProgress document.ProgressFunc) (*document.Result, error) {
	if labels, _ := queue.Totals(products); labels == 0 {
		return nil, ErrEmptyQueue
	}
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer s.running.Store(false)
	return s.assembler.Assemble(ctx, queue.Expand(products), cfg, onProgress)
}

// ExportFile 导出并保存到配置的输出目录，返回文件路径。
func (s *Service) ExportFile(ctx context.Context, products []label.Product, cfg label.LayoutConfig, onProgress document.ProgressFunc) (string, *document.Result, error) {
	result, err := s.Export(ctx, products, cfg, onProgress)
	if err != nil {
		return "", result, err
	}
	labels, _ := queue.Totals(products)
	path, err := document.Save(result, s.settings.Export.OutputDir, s.settings.Export.Filename, labels, s.now())
	if err != nil {
		return "", result, err
	}
	return path, result, nil
}
