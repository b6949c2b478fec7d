package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/pricelabel/config"
	"github.com/ByLCY/pricelabel/layout"
)

func TestSetVersion(t *testing.T) {
	SetVersion("1.0.0", "abc123", "2026-01-01")
	if version != "1.0.0" || commit != "abc123" || date != "2026-01-01" {
		t.Errorf("SetVersion did not update build info: %q %q %q", version, commit, date)
	}
	SetVersion("", "", "")
}

// run 执行命令行，--config 指向临时目录中不存在的文件，从而使用默认配置。
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", filepath.Join(dir, "config.toml")}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeSheet(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "week.labels")
	src := `sheet "tuần 12" {
  layout { gap: 2mm }
  product "Bánh quy bơ" price "150000" barcode "89312345678" qty 3
  product "Sữa tươi" price "32000" barcode "8935000000017"
}
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write sheet: %v", err)
	}
	return path
}

func TestLayoutCommandPrintsJSON(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "layout", "--name", "Nước mắm")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	var spec layout.VisualSpec
	if err := json.Unmarshal([]byte(out), &spec); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	name, ok := spec.Zone(layout.ZoneName)
	if !ok || name.Text.Content != "Nước mắm" {
		t.Fatalf("unexpected name zone: %+v", name)
	}
}

func TestExportCommandWritesPDF(t *testing.T) {
	dir := t.TempDir()
	sheet := writeSheet(t, dir)
	outDir := filepath.Join(dir, "out")
	out, err := run(t, dir, "export", sheet, "--out", outDir, "--filename", "week.pdf")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "week.pdf"))
	if err != nil {
		t.Fatalf("expected PDF file: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if !strings.Contains(out, "2 pages") {
		t.Fatalf("expected page count in output, got %q", out)
	}
}

func TestExportCommandRejectsBadBackend(t *testing.T) {
	dir := t.TempDir()
	sheet := writeSheet(t, dir)
	if _, err := run(t, dir, "export", sheet, "--backend", "xps"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestPreviewCommandInfersFormat(t *testing.T) {
	dir := t.TempDir()
	sheet := writeSheet(t, dir)
	target := filepath.Join(dir, "first.pdf")
	if _, err := run(t, dir, "preview", sheet, "-o", target); err != nil {
		t.Fatalf("preview: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil || !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected a PDF preview, err=%v", err)
	}

	png := filepath.Join(dir, "sample.png")
	if _, err := run(t, dir, "preview", "-o", png); err != nil {
		t.Fatalf("preview png: %v", err)
	}
	data, err = os.ReadFile(png)
	if err != nil || !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("expected a PNG preview, err=%v", err)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, dir, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	s, err := config.Load(filepath.Join(dir, "config.toml"))
	if err != nil {
		t.Fatalf("written config should load: %v", err)
	}
	if s != config.Defaults() {
		t.Fatalf("written config differs from defaults")
	}
	if _, err := run(t, dir, "config", "init"); err == nil {
		t.Fatalf("second init without --force should fail")
	}
	out, err := run(t, dir, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "127.0.0.1:8080") {
		t.Fatalf("expected server address in output, got %q", out)
	}
}

func TestMissingSheet(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, dir, "export", filepath.Join(dir, "nope.labels")); err == nil {
		t.Fatalf("expected error for a missing sheet")
	}
}
