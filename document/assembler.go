package document

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/pricelabel/label"
	"github.com/ByLCY/pricelabel/renderer"
)

// FailurePolicy 决定单页渲染失败后的处理方式。
type FailurePolicy string

const (
	// FailSkip 跳过失败页，最终页数减少。
	FailSkip FailurePolicy = "skip"
	// FailBlank 以空白页占位，页数与分组数一致。
	FailBlank FailurePolicy = "blank"
)

// ParseFailurePolicy 解析配置中的策略名，空字符串为 FailSkip。
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FailSkip:
		return FailSkip, nil
	case FailBlank:
		return FailBlank, nil
	default:
		return "", fmt.Errorf("未知的失败页策略 %q（可选 skip、blank）", s)
	}
}

// ProgressFunc 接收 0..100 的整数进度。
type ProgressFunc func(percent int)

// Result 是一次组装的结果。没有任何页面时 Document 为 nil。
type Result struct {
	Document Document
	Groups   int
	Pages    int
	Failures []*PageError
}

// Assembler 顺序渲染页面并追加到文档。
type Assembler struct {
	renderer    renderer.PageRenderer
	newDocument Factory
	policy      FailurePolicy
	logger      *log.Logger
}

// Option 配置 Assembler。
type Option func(*Assembler)

// WithFactory 替换文档工厂（默认 fpdf 后端）。
func WithFactory(f Factory) Option {
	return func(a *Assembler) {
		if f != nil {
			a.newDocument = f
		}
	}
}

// WithFailurePolicy 设置失败页策略。
func WithFailurePolicy(p FailurePolicy) Option {
	return func(a *Assembler) { a.policy = p }
}

// WithLogger 指定日志；未指定时使用 context 中的 logger。
func WithLogger(l *log.Logger) Option {
	return func(a *Assembler) { a.logger = l }
}

// NewAssembler 创建组装器。
func NewAssembler(r renderer.PageRenderer, opts ...Option) *Assembler {
	a := &Assembler{
		renderer:    r,
		newDocument: func() (Document, error) { return NewFPDF(DefaultJPEGQuality), nil },
		policy:      FailSkip,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble 按顺序逐页渲染：第 i 页开始前报告 round(i/total*100)，全部结束后报告 100。
// 进度只在数值变化时上报，因此严格递增。
// 单页失败按策略处理并记入 Result.Failures；取消与文档错误以 *ExportError 返回。
// cfg 按值传入，导出过程中界面对配置的修改不会影响已开始的导出。
func (a *Assembler) Assemble(ctx context.Context, groups []label.PageGroup, cfg label.LayoutConfig, onProgress ProgressFunc) (*Result, error) {
	if a.renderer == nil {
		return nil, &ExportError{Stage: StageDocument, Err: errors.New("缺少页面渲染器")}
	}
	logger := a.logger
	if logger == nil {
		logger = log.FromContext(ctx)
	}
	last := -1
	report := func(p int) {
		if onProgress != nil && p > last {
			last = p
			onProgress(p)
		}
	}

	result := &Result{Groups: len(groups)}
	total := len(groups)
	for i, group := range groups {
		if err := ctx.Err(); err != nil {
			logger.Warn("导出已取消", "page", i+1, "total", total)
			return result, &ExportError{Stage: StageCancel, Page: i + 1, Err: err}
		}
		report(int(math.Round(float64(i) / float64(total) * 100)))

		pageLogger := logger.With("page", i+1)
		img, err := a.renderer.RenderPage(log.WithContext(ctx, pageLogger), group, cfg)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, &ExportError{Stage: StageCancel, Page: i + 1, Err: ctxErr}
			}
			pageErr := &PageError{Page: i + 1, Err: err}
			result.Failures = append(result.Failures, pageErr)
			pageLogger.Error("页面渲染失败", "policy", a.policy, "err", err)
			if a.policy != FailBlank {
				continue
			}
			if err := a.ensureDocument(result); err != nil {
				return result, err
			}
			if err := result.Document.AddBlankPage(); err != nil {
				return result, &ExportError{Stage: StageAddPage, Page: i + 1, Err: err}
			}
			result.Pages++
			continue
		}

		if err := a.ensureDocument(result); err != nil {
			return result, err
		}
		if err := result.Document.AddPage(img); err != nil {
			return result, &ExportError{Stage: StageAddPage, Page: i + 1, Err: err}
		}
		result.Pages++
	}
	report(100)
	if len(result.Failures) > 0 {
		logger.Warn("部分页面渲染失败", "failed", len(result.Failures), "pages", result.Pages, "groups", total)
	}
	return result, nil
}

// ensureDocument 在第一次追加页面时才创建文档，空队列不产生任何页面。
func (a *Assembler) ensureDocument(result *Result) error {
	if result.Document != nil {
		return nil
	}
	doc, err := a.newDocument()
	if err != nil {
		return &ExportError{Stage: StageDocument, Err: err}
	}
	result.Document = doc
	return nil
}
