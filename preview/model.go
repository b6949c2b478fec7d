// Package preview 实现终端内的交互界面：录入商品、管理队列、调整布局并导出 PDF。
package preview

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ByLCY/pricelabel/document"
	"github.com/ByLCY/pricelabel/label"
	"github.com/ByLCY/pricelabel/layout"
	"github.com/ByLCY/pricelabel/queue"
)

// 字符预览的尺寸：每 mm 两列、每 2mm 一行，接近终端字符的宽高比。
const (
	sketchCols = int(layout.LabelWidth * 2)
	sketchRows = int(layout.LabelHeight / 2)
)

// Exporter 是界面依赖的导出能力，*app.Service 满足该接口。
type Exporter interface {
	CanExport(products []label.Product) bool
	ExportFile(ctx context.Context, products []label.Product, cfg label.LayoutConfig, onProgress document.ProgressFunc) (string, *document.Result, error)
}

type focusArea int

const (
	focusForm focusArea = iota
	focusQueue
	focusSliders
)

const (
	fieldName = iota
	fieldPrice
	fieldQty
	fieldBarcode
	fieldCount
)

var fieldLabels = [fieldCount]string{"Tên", "Giá", "SL", "Mã vạch"}

type progressMsg int

type exportDoneMsg struct {
	path   string
	result *document.Result
	err    error
}

// Model 是 bubbletea 模型。队列是共享指针，其余状态按值复制。
type Model struct {
	engine   *layout.Engine
	exporter Exporter
	queue    *queue.Queue
	cfg      label.LayoutConfig
	defaults label.LayoutConfig

	inputs [fieldCount]string
	focus  focusArea
	field  int
	cursor int
	slider int

	exporting bool
	progress  int
	events    chan tea.Msg
	cancel    context.CancelFunc

	status    string
	statusErr bool
	quitting  bool
}

// New 创建界面模型，cfg 为初始布局。
func New(engine *layout.Engine, exporter Exporter, q *queue.Queue, cfg label.LayoutConfig) Model {
	if q == nil {
		q = queue.New()
	}
	m := Model{
		engine:   engine,
		exporter: exporter,
		queue:    q,
		cfg:      cfg,
		defaults: cfg,
	}
	m.inputs[fieldQty] = "1"
	return m
}

// Config 返回当前布局配置。
func (m Model) Config() label.LayoutConfig { return m.cfg }

// Queue 返回界面使用的队列。
func (m Model) Queue() *queue.Queue { return m.queue }

// Progress 返回当前导出进度，空闲时为 0。
func (m Model) Progress() int { return m.progress }

// Exporting 报告导出是否在进行。
func (m Model) Exporting() bool { return m.exporting }

// Status 返回最近一条状态消息。
func (m Model) Status() string { return m.status }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case progressMsg:
		if int(msg) > m.progress {
			m.progress = int(msg)
		}
		return m, waitForEvent(m.events)
	case exportDoneMsg:
		m.exporting = false
		m.progress = 0
		m.events = nil
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		if msg.err != nil {
			m.setError(fmt.Sprintf("Xuất thất bại: %v", msg.err))
			return m, nil
		}
		text := "Đã lưu " + msg.path
		if msg.result != nil && len(msg.result.Failures) > 0 {
			text += fmt.Sprintf(" (%d trang lỗi)", len(msg.result.Failures))
		}
		m.setStatus(text)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		if m.cancel != nil {
			m.cancel()
		}
		m.quitting = true
		return m, tea.Quit
	case "tab":
		m.focus = (m.focus + 1) % 3
		return m, nil
	case "shift+tab":
		m.focus = (m.focus + 2) % 3
		return m, nil
	case "ctrl+e":
		return m.startExport()
	}

	switch m.focus {
	case focusForm:
		return m.updateForm(msg)
	case focusQueue:
		return m.updateQueue(msg)
	case focusSliders:
		return m.updateSliders(msg)
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		m.field = (m.field + fieldCount - 1) % fieldCount
	case tea.KeyDown:
		m.field = (m.field + 1) % fieldCount
	case tea.KeyBackspace:
		if r := []rune(m.inputs[m.field]); len(r) > 0 {
			m.inputs[m.field] = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.inputs[m.field] += " "
	case tea.KeyRunes:
		m.inputs[m.field] += string(msg.Runes)
	case tea.KeyEnter:
		return m.addProduct()
	}
	return m, nil
}

func (m Model) addProduct() (tea.Model, tea.Cmd) {
	qty, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldQty]))
	if err != nil {
		m.setError("Số lượng không hợp lệ")
		return m, nil
	}
	p, err := label.NewProduct(m.inputs[fieldName], m.inputs[fieldPrice], m.inputs[fieldBarcode], qty)
	if err != nil {
		m.setError(err.Error())
		return m, nil
	}
	m.queue.Add(p)
	m.inputs = [fieldCount]string{}
	m.inputs[fieldQty] = "1"
	m.field = fieldName
	m.cursor = 0
	m.setStatus("Đã thêm " + p.Name)
	return m, nil
}

func (m Model) updateQueue(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	products := m.queue.Products()
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(products)-1 {
			m.cursor++
		}
	case "d", "delete", "backspace":
		if m.cursor < len(products) {
			p := products[m.cursor]
			if m.queue.Remove(p.ID) {
				m.setStatus("Đã xoá " + p.Name)
			}
			if m.cursor >= m.queue.Len() && m.cursor > 0 {
				m.cursor--
			}
		}
	}
	return m, nil
}

func (m Model) updateSliders(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	field := label.SliderFields[m.slider]
	switch msg.String() {
	case "up", "k":
		if m.slider > 0 {
			m.slider--
		}
	case "down", "j":
		if m.slider < len(label.SliderFields)-1 {
			m.slider++
		}
	case "left", "h":
		m.cfg = m.cfg.Nudge(field, -1)
	case "right", "l":
		m.cfg = m.cfg.Nudge(field, 1)
	case "r":
		m.cfg = m.defaults
		m.setStatus("Đã khôi phục bố cục mặc định")
	}
	return m, nil
}

func (m Model) startExport() (tea.Model, tea.Cmd) {
	products := m.queue.Products()
	if m.exporting || m.exporter == nil || !m.exporter.CanExport(products) {
		if labels, _ := queue.Totals(products); labels == 0 {
			m.setError("Hàng đợi trống")
		}
		return m, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	// 进度最多 101 个值加一条完成消息，发送方不会阻塞。
	events := make(chan tea.Msg, 128)
	cfg := m.cfg
	exporter := m.exporter

	go func() {
		path, result, err := exporter.ExportFile(ctx, products, cfg, func(p int) {
			events <- progressMsg(p)
		})
		events <- exportDoneMsg{path: path, result: result, err: err}
	}()

	m.exporting = true
	m.progress = 0
	m.events = events
	m.cancel = cancel
	m.setStatus("Đang xuất...")
	return m, waitForEvent(events)
}

func waitForEvent(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg { return <-ch }
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

// Sketch 返回当前表单内容（空字段用示例补齐）的字符预览。
func (m Model) Sketch() ([]string, error) {
	content := label.PreviewContent(m.inputs[fieldName], m.inputs[fieldPrice], m.inputs[fieldBarcode])
	spec, err := m.engine.Compute(content, m.cfg, 1)
	if err != nil {
		return nil, err
	}
	return Sketch(spec, sketchCols, sketchRows), nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder

	b.WriteString(styleTitle.Render("Tem giá GMart"))
	b.WriteString("\n\n")

	b.WriteString(m.sectionTitle("Sản phẩm", focusForm))
	for i := 0; i < fieldCount; i++ {
		prefix := "  "
		style := styleNormal
		if m.focus == focusForm && i == m.field {
			prefix = "> "
			style = styleFocused
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%-8s %s", prefix, fieldLabels[i], m.inputs[i])))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	lines, err := m.Sketch()
	if err != nil {
		b.WriteString(styleError.Render("Không thể xem trước: " + err.Error()))
	} else {
		b.WriteString(styleLabelBox.Render(strings.Join(lines, "\n")))
	}
	b.WriteString("\n\n")

	b.WriteString(m.sectionTitle("Hàng đợi", focusQueue))
	products := m.queue.Products()
	if len(products) == 0 {
		b.WriteString(styleDim.Render("  (trống)"))
		b.WriteString("\n")
	}
	for i, p := range products {
		prefix := "  "
		style := styleNormal
		if m.focus == focusQueue && i == m.cursor {
			prefix = "> "
			style = styleFocused
		}
		row := fmt.Sprintf("%s%-24s %12s  %-14s x%d", prefix, p.Name, m.engine.FormatPrice(p.Price), p.Barcode, p.Quantity)
		b.WriteString(style.Render(row))
		b.WriteString("\n")
	}
	labels, pages := queue.Totals(products)
	b.WriteString(styleDim.Render(fmt.Sprintf("  %d tem · %d trang", labels, pages)))
	b.WriteString("\n\n")

	b.WriteString(m.sectionTitle("Bố cục", focusSliders))
	for i, f := range label.SliderFields {
		r := label.SliderRanges[f]
		prefix := "  "
		style := styleNormal
		if m.focus == focusSliders && i == m.slider {
			prefix = "> "
			style = styleFocused
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%-18s %6.2f", prefix, f, m.cfg.Get(f))))
		b.WriteString(styleDim.Render(fmt.Sprintf("  [%g, %g]", r.Min, r.Max)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.exporting {
		b.WriteString(styleWarning.Render(fmt.Sprintf("Đang xuất %d%%", m.progress)))
		b.WriteString("\n")
	} else if m.status != "" {
		if m.statusErr {
			b.WriteString(styleError.Render(m.status))
		} else {
			b.WriteString(styleSuccess.Render(m.status))
		}
		b.WriteString("\n")
	}

	b.WriteString(styleDim.Render("tab: chuyển vùng • enter: thêm • d: xoá • ←/→: chỉnh • r: mặc định • ctrl+e: xuất PDF • esc: thoát"))
	return b.String()
}

func (m Model) sectionTitle(title string, area focusArea) string {
	if m.focus == area {
		return styleFocused.Render("▸ "+title) + "\n"
	}
	return styleSection.Render("  "+title) + "\n"
}

// Run 启动交互界面并在退出时返回最终队列。
func Run(engine *layout.Engine, exporter Exporter, q *queue.Queue, cfg label.LayoutConfig) (Model, error) {
	final, err := tea.NewProgram(New(engine, exporter, q, cfg), tea.WithAltScreen()).Run()
	if err != nil {
		return Model{}, err
	}
	m, _ := final.(Model)
	return m, nil
}
