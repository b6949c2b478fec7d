package layout

import (
	"encoding/json"
	"io"
	"os"
)

// EncodeDebugJSON 将布局结果以缩进 JSON 写入 w，便于调试或可视化。
func EncodeDebugJSON(w io.Writer, spec *VisualSpec) error {
	if spec == nil {
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(spec)
}

// WriteDebugJSON 将布局结果输出为 JSON 文件。
func WriteDebugJSON(spec *VisualSpec, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeDebugJSON(f, spec); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
