package layout

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ByLCY/pricelabel/barcode"
	"github.com/ByLCY/pricelabel/label"
)

const ellipsis = "…"

// Engine 把标签内容与布局配置映射为 VisualSpec。
// 交互预览与批量导出使用同一个 Engine，保证版式只有一个来源。
type Engine struct {
	typesetter Typesetter
	fonts      Fonts
	price      *PriceFormatter
}

// NewEngine 创建布局引擎，typesetter 负责文本测量与折行。
func NewEngine(ts Typesetter, opts ...Option) *Engine {
	e := &Engine{
		typesetter: ts,
		fonts:      DefaultFonts(),
		price:      defaultPriceFormatter,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FormatPrice 使用引擎配置的格式化器格式化价格。
func (e *Engine) FormatPrice(raw string) string {
	return e.price.Format(raw)
}

// Compute 计算单张标签的布局，scale 为整体缩放系数（<=0 时按 1 处理）。
// 配置中的非有限数值按 0 处理，任何数值组合都不会导致失败；
// 只有排版后端出错时才返回错误。
func (e *Engine) Compute(c label.Content, cfg label.LayoutConfig, scale float64) (VisualSpec, error) {
	if e.typesetter == nil {
		return VisualSpec{}, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	if !(scale > 0) || math.IsInf(scale, 0) {
		scale = 1
	}
	cfg = sanitize(cfg)

	spec := VisualSpec{
		Width:  LabelWidth * scale,
		Height: LabelHeight * scale,
		Scale:  scale,
		Padding: Insets{
			Top:    cfg.PaddingTop * scale,
			Right:  SideInset * scale,
			Bottom: cfg.PaddingBottom * scale,
			Left:   SideInset * scale,
		},
	}
	spec.Content = Rect{
		X:      spec.Padding.Left,
		Y:      spec.Padding.Top,
		Width:  spec.Width - spec.Padding.Left - spec.Padding.Right,
		Height: spec.Height - spec.Padding.Top - spec.Padding.Bottom,
	}

	nameH := math.Max(cfg.NameHeight*scale, 0)
	priceH := math.Max(cfg.PriceHeight*scale, 0)
	barcodeH := math.Max(spec.Content.Height-nameH-priceH, 0)

	// 名称与价格不参与收缩，条码区域占据剩余空间。
	nameBox := Rect{X: spec.Content.X, Y: spec.Content.Y, Width: spec.Content.Width, Height: nameH}
	barcodeBox := Rect{X: spec.Content.X, Y: nameBox.Bottom(), Width: spec.Content.Width, Height: barcodeH}
	priceBox := Rect{X: spec.Content.X, Y: barcodeBox.Bottom(), Width: spec.Content.Width, Height: priceH}

	nameText, err := e.nameText(c.Name, nameBox, cfg.NameFontSize*PtToMm*scale)
	if err != nil {
		return VisualSpec{}, err
	}
	nameZone := Zone{
		Kind:   ZoneName,
		Layer:  LayerName,
		Box:    nameBox,
		Bounds: nameBox,
		Text:   nameText,
	}

	barcodeOffset := cfg.BarcodeYOffset * scale
	barcodeBounds := barcodeBox.Translate(barcodeOffset)
	barcodeZone := Zone{
		Kind:   ZoneBarcode,
		Layer:  LayerBarcode,
		Box:    barcodeBox,
		Offset: barcodeOffset,
		Bounds: barcodeBounds,
		Barcode: &BarcodeBox{
			Text:    c.Barcode,
			Options: BarcodeOptions(cfg, scale),
			CenterX: barcodeBounds.CenterX(),
			CenterY: barcodeBounds.CenterY(),
		},
	}

	priceOffset := cfg.PriceYOffset * scale
	priceBounds := priceBox.Translate(priceOffset)
	priceText, err := e.priceText(c.Price, priceBounds, cfg.PriceFontSize*PtToMm*scale)
	if err != nil {
		return VisualSpec{}, err
	}
	priceZone := Zone{
		Kind:   ZonePrice,
		Layer:  LayerPrice,
		Box:    priceBox,
		Offset: priceOffset,
		Bounds: priceBounds,
		Text:   priceText,
	}

	spec.Zones = []Zone{nameZone, barcodeZone, priceZone}
	return spec, nil
}

// BarcodeOptions 把配置中的条码参数（px）换算为 mm 并乘以 scale。
func BarcodeOptions(cfg label.LayoutConfig, scale float64) barcode.Options {
	k := PxToMm * scale
	return barcode.Options{
		Format:       barcode.FormatCode128,
		ModuleWidth:  cfg.BarcodeWidth * k,
		Height:       cfg.BarcodeHeight * k,
		DisplayValue: true,
		FontSize:     cfg.BarcodeFontSize * k,
		TextMargin:   1 * k,
		Margin:       0,
	}
}

// PaintOrder 返回按层级从低到高排序的区域，渲染器按此顺序绘制。
func (s VisualSpec) PaintOrder() []Zone {
	zones := make([]Zone, len(s.Zones))
	copy(zones, s.Zones)
	sort.SliceStable(zones, func(i, j int) bool { return zones[i].Layer < zones[j].Layer })
	return zones
}

// Zone 按类型查找区域。
func (s VisualSpec) Zone(kind ZoneKind) (Zone, bool) {
	for _, z := range s.Zones {
		if z.Kind == kind {
			return z, true
		}
	}
	return Zone{}, false
}

func (e *Engine) nameText(name string, box Rect, fontSize float64) (*TextBox, error) {
	fontSize = math.Max(fontSize, 0)
	lineHeight := fontSize * LineHeightFactor
	tb := &TextBox{
		Content:    name,
		X:          box.X,
		Width:      box.Width,
		LineHeight: lineHeight,
		Font:       e.fonts.Name.Name,
		FontSize:   fontSize,
		Color:      Black,
		Align:      "center",
		Wrap:       "normal",
	}
	if strings.TrimSpace(name) == "" || fontSize == 0 {
		tb.Y = box.CenterY()
		return tb, nil
	}
	lines, err := e.typesetter.LayoutLines(name, box.Width, e.fonts.Name, fontSize, lineHeight, "normal")
	if err != nil {
		return nil, fmt.Errorf("名称排版失败: %w", err)
	}
	if len(lines) > MaxNameLines {
		last, err := e.clampLine(lines[MaxNameLines-1].Content, box.Width, e.fonts.Name, fontSize, lineHeight)
		if err != nil {
			return nil, err
		}
		lines = append(lines[:MaxNameLines-1:MaxNameLines-1], last)
		tb.Truncated = true
	}
	// 行距统一为 LineHeight，保持 Height == Σ(GapBefore + line.Height)
	for i := range lines {
		lines[i].GapBefore = 0
		lines[i].Height = lineHeight
	}
	tb.Lines = lines
	tb.Height = lineHeight * float64(len(lines))
	// 垂直居中，超出区域时向两侧溢出而不是裁剪
	tb.Y = box.CenterY() - tb.Height/2
	return tb, nil
}

// clampLine 截断最后一行并补上省略号，保证整行不超过 width。
func (e *Engine) clampLine(content string, width float64, font FontResource, fontSize, lineHeight float64) (TextLine, error) {
	runes := []rune(strings.TrimRightFunc(content, isSpace))
	for {
		text := strings.TrimRightFunc(string(runes), isSpace) + ellipsis
		measured, err := e.typesetter.LayoutLines(text, 0, font, fontSize, lineHeight, "nowrap")
		if err != nil {
			return TextLine{}, fmt.Errorf("名称截断失败: %w", err)
		}
		w := 0.0
		h := lineHeight
		if len(measured) > 0 {
			w = measured[0].Width
			h = measured[0].Height
		}
		if w <= width || len(runes) == 0 {
			return TextLine{Content: text, Width: w, Height: h}, nil
		}
		runes = runes[:len(runes)-1]
	}
}

func (e *Engine) priceText(raw string, box Rect, fontSize float64) (*TextBox, error) {
	fontSize = math.Max(fontSize, 0)
	text := e.price.Format(raw)
	tb := &TextBox{
		Content:    text,
		X:          box.X,
		Width:      box.Width,
		LineHeight: fontSize,
		Font:       e.fonts.Price.Name,
		FontSize:   fontSize,
		Color:      Black,
		Align:      "center",
		Wrap:       "nowrap",
	}
	if fontSize == 0 {
		tb.Y = box.CenterY()
		return tb, nil
	}
	lines, err := e.typesetter.LayoutLines(text, 0, e.fonts.Price, fontSize, fontSize, "nowrap")
	if err != nil {
		return nil, fmt.Errorf("价格排版失败: %w", err)
	}
	if len(lines) > 1 {
		lines = lines[:1]
	}
	if len(lines) == 1 {
		lines[0].GapBefore = 0
		lines[0].Height = tb.LineHeight
	}
	tb.Lines = lines
	tb.Height = tb.LineHeight * float64(len(lines))
	tb.Y = box.CenterY() - tb.Height/2
	return tb, nil
}

func sanitize(cfg label.LayoutConfig) label.LayoutConfig {
	for _, p := range []*float64{
		&cfg.NameFontSize, &cfg.NameHeight, &cfg.BarcodeHeight, &cfg.BarcodeWidth,
		&cfg.BarcodeFontSize, &cfg.BarcodeYOffset, &cfg.PriceFontSize, &cfg.PriceHeight,
		&cfg.PriceYOffset, &cfg.PaddingTop, &cfg.PaddingBottom, &cfg.Gap,
	} {
		if math.IsNaN(*p) || math.IsInf(*p, 0) {
			*p = 0
		}
	}
	return cfg
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }
