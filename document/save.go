package document

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ByLCY/pricelabel/binding"
)

// DefaultFilename 为导出文件名模板，${timestamp} 为毫秒时间戳。
const DefaultFilename = "Tem_GMart_Pro_${timestamp}.pdf"

// Save 将结果写入 dir 下按模板命名的文件，返回完整路径。
func Save(result *Result, dir, template string, labels int, now time.Time) (string, error) {
	if result == nil || result.Document == nil || result.Document.PageCount() == 0 {
		return "", ErrNoPages
	}
	if template == "" {
		template = DefaultFilename
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &ExportError{Stage: StageWrite, Err: err}
	}
	name := binding.Filename(template, binding.ExportData(now, result.Pages, labels))
	path := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, ".pricelabel-*.pdf")
	if err != nil {
		return "", &ExportError{Stage: StageWrite, Err: err}
	}
	defer os.Remove(tmp.Name())
	if err := result.Document.Write(tmp); err != nil {
		tmp.Close()
		return "", &ExportError{Stage: StageWrite, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return "", &ExportError{Stage: StageWrite, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", &ExportError{Stage: StageWrite, Err: fmt.Errorf("保存 %s 失败: %w", path, err)}
	}
	return path, nil
}
