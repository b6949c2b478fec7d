package document

import (
	"errors"
	"fmt"
)

// ErrNoPages 表示没有任何页面可保存。
var ErrNoPages = errors.New("document: 没有可保存的页面")

// PageError 记录单页渲染失败；导出继续处理后续页面。
type PageError struct {
	Page int // 从 1 开始
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("第 %d 页渲染失败: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// 导出中止时所处的阶段。
const (
	StageCancel   = "cancel"
	StageDocument = "document"
	StageAddPage  = "add-page"
	StageWrite    = "write"
)

// ExportError 表示整批导出失败（文档组装、写出或取消），会直接返回给调用方。
type ExportError struct {
	Stage string
	Page  int // 0 表示与具体页面无关
	Err   error
}

func (e *ExportError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("导出失败（%s，第 %d 页）: %v", e.Stage, e.Page, e.Err)
	}
	return fmt.Sprintf("导出失败（%s）: %v", e.Stage, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }
