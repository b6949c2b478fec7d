package preview

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ByLCY/pricelabel/document"
	"github.com/ByLCY/pricelabel/label"
	"github.com/ByLCY/pricelabel/queue"
	canvasrenderer "github.com/ByLCY/pricelabel/renderer/canvas"
)

type fakeExporter struct {
	mu       sync.Mutex
	calls    int
	products []label.Product
	cfg      label.LayoutConfig
	err      error
}

func (f *fakeExporter) CanExport(products []label.Product) bool {
	labels, _ := queue.Totals(products)
	return labels > 0
}

func (f *fakeExporter) ExportFile(_ context.Context, products []label.Product, cfg label.LayoutConfig, onProgress document.ProgressFunc) (string, *document.Result, error) {
	f.mu.Lock()
	f.calls++
	f.products = products
	f.cfg = cfg
	f.mu.Unlock()
	for _, p := range []int{0, 50, 100} {
		onProgress(p)
	}
	if f.err != nil {
		return "", nil, f.err
	}
	return "/tmp/Tem.pdf", &document.Result{Pages: 1}, nil
}

func newModel(t *testing.T, exp Exporter) Model {
	t.Helper()
	engine := canvasrenderer.NewRenderer(".").Engine()
	return New(engine, exp, queue.New(), label.DefaultLayoutConfig())
}

func send(m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func typeText(s string) tea.Msg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyBack  = tea.KeyMsg{Type: tea.KeyBackspace}
	keyCtrlE = tea.KeyMsg{Type: tea.KeyCtrlE}
)

func addProduct(m Model, name, price, qty, code string) Model {
	m, _ = send(m,
		typeText(name), keyDown,
		typeText(price), keyDown,
		keyBack, typeText(qty), keyDown,
		typeText(code), keyEnter,
	)
	return m
}

func TestAddProductPrependsAndClearsForm(t *testing.T) {
	m := newModel(t, &fakeExporter{})
	m = addProduct(m, "Bánh", "15000", "2", "111")
	m = addProduct(m, "Sữa", "32000", "1", "222")

	products := m.Queue().Products()
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d (status %q)", len(products), m.Status())
	}
	if products[0].Name != "Sữa" || products[1].Name != "Bánh" || products[1].Quantity != 2 {
		t.Fatalf("unexpected queue order: %+v", products)
	}
	if m.inputs[fieldName] != "" || m.inputs[fieldQty] != "1" || m.field != fieldName {
		t.Fatalf("form should be reset, got %+v field=%d", m.inputs, m.field)
	}
}

func TestAddProductRejectsInvalidInput(t *testing.T) {
	m := newModel(t, &fakeExporter{})
	m = addProduct(m, "Bánh", "15000", "x", "111")
	if m.Queue().Len() != 0 || !m.statusErr {
		t.Fatalf("invalid quantity should be rejected")
	}
	m = newModel(t, &fakeExporter{})
	m = addProduct(m, "Bánh", "15000", "1", "")
	if m.Queue().Len() != 0 || !m.statusErr {
		t.Fatalf("missing barcode should be rejected")
	}
}

func TestDeleteFromQueue(t *testing.T) {
	m := newModel(t, &fakeExporter{})
	m = addProduct(m, "A", "1", "1", "1")
	m = addProduct(m, "B", "2", "1", "2")
	m, _ = send(m, keyTab, keyDown, typeText("d"))
	products := m.Queue().Products()
	if len(products) != 1 || products[0].Name != "B" {
		t.Fatalf("expected A removed, got %+v", products)
	}
	if m.cursor != 0 {
		t.Fatalf("cursor should move back onto the remaining row, got %d", m.cursor)
	}
}

func TestSlidersNudgeWithinRange(t *testing.T) {
	m := newModel(t, &fakeExporter{})
	before := m.Config().NameFontSize
	m, _ = send(m, keyTab, keyTab, keyRight, keyRight)
	if got := m.Config().NameFontSize; got <= before {
		t.Fatalf("expected name font size to grow, got %g (was %g)", got, before)
	}
	for i := 0; i < 200; i++ {
		m, _ = send(m, keyLeft)
	}
	if got := m.Config().NameFontSize; got != label.SliderRanges[label.FieldNameFontSize].Min {
		t.Fatalf("expected clamp at min, got %g", got)
	}
	m, _ = send(m, typeText("r"))
	if m.Config() != label.DefaultLayoutConfig() {
		t.Fatalf("reset should restore the initial layout")
	}
}

func TestExportDisabledOnEmptyQueue(t *testing.T) {
	exp := &fakeExporter{}
	m := newModel(t, exp)
	m, cmd := send(m, keyCtrlE)
	if cmd != nil || m.Exporting() {
		t.Fatalf("export must not start with an empty queue")
	}
	if !strings.Contains(m.Status(), "trống") {
		t.Fatalf("unexpected status %q", m.Status())
	}
}

// drive 执行命令并把消息送回模型，直到导出结束。
func drive(t *testing.T, m Model, cmd tea.Cmd) (Model, []int) {
	t.Helper()
	var seen []int
	for i := 0; cmd != nil && i < 200; i++ {
		msg := cmd()
		m, cmd = send(m, msg)
		if p, ok := msg.(progressMsg); ok {
			seen = append(seen, int(p))
		}
	}
	if m.Exporting() {
		t.Fatalf("export did not finish")
	}
	return m, seen
}

func TestExportReportsProgressAndResets(t *testing.T) {
	exp := &fakeExporter{}
	m := newModel(t, exp)
	m = addProduct(m, "Bánh", "15000", "3", "111")
	m, _ = send(m, keyTab, keyTab, keyRight)
	snapshot := m.Config()

	m, cmd := send(m, keyCtrlE)
	if cmd == nil || !m.Exporting() {
		t.Fatalf("export should start")
	}
	// 导出进行中再次触发应被忽略
	if _, again := send(m, keyCtrlE); again != nil {
		t.Fatalf("second export must be ignored while running")
	}

	m, seen := drive(t, m, cmd)
	if len(seen) != 3 || seen[0] != 0 || seen[2] != 100 {
		t.Fatalf("unexpected progress sequence %v", seen)
	}
	if m.Progress() != 0 {
		t.Fatalf("progress should reset after export, got %d", m.Progress())
	}
	if !strings.Contains(m.Status(), "/tmp/Tem.pdf") {
		t.Fatalf("status should name the file, got %q", m.Status())
	}
	if exp.calls != 1 || exp.cfg != snapshot || len(exp.products) != 1 {
		t.Fatalf("exporter got calls=%d cfg=%+v products=%d", exp.calls, exp.cfg, len(exp.products))
	}
}

func TestExportFailureShowsError(t *testing.T) {
	m := newModel(t, &fakeExporter{err: errors.New("disk full")})
	m = addProduct(m, "Bánh", "15000", "1", "111")
	m, cmd := send(m, keyCtrlE)
	m, _ = drive(t, m, cmd)
	if !m.statusErr || !strings.Contains(m.Status(), "disk full") {
		t.Fatalf("expected error status, got %q", m.Status())
	}
}

func TestViewShowsSketchAndTotals(t *testing.T) {
	m := newModel(t, &fakeExporter{})
	m = addProduct(m, "Bánh", "15000", "3", "111")
	out := m.View()
	for _, want := range []string{"Bánh", "3 tem", "2 trang", label.SampleBarcode, "Tên - Cỡ chữ"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}
