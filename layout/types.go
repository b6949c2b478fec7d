package layout

import "github.com/ByLCY/pricelabel/barcode"

// 该文件定义标签布局结果（VisualSpec）及其区域描述，供预览、渲染与调试 JSON 共用。

// 标签外框的物理尺寸（mm），与配置无关。
const (
	LabelWidth  = 35.0
	LabelHeight = 22.0
	// SideInset 是标签左右两侧固定的内边距（mm）。
	SideInset = 1.0
	// LineHeightFactor 是名称文本的行高倍数。
	LineHeightFactor = 1.1
	// MaxNameLines 是名称最多显示的行数，超出部分以省略号截断。
	MaxNameLines = 2
)

// ZoneKind 标识标签内的三个区域。
type ZoneKind string

const (
	ZoneName    ZoneKind = "name"
	ZoneBarcode ZoneKind = "barcode"
	ZonePrice   ZoneKind = "price"
)

// 区域的层级，数值越大越靠上。名称 > 条码 > 价格，与偏移量无关。
const (
	LayerPrice   = 5
	LayerBarcode = 10
	LayerName    = 20
)

// VisualSpec 是一张标签在物理单位（mm × Scale）下的完整布局。
type VisualSpec struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Scale   float64 `json:"scale"`
	Padding Insets  `json:"padding"`
	// Content 为去掉内边距后的排版区域。
	Content Rect   `json:"content"`
	Zones   []Zone `json:"zones"`
}

// Zone 描述一个区域：Box 为流式排版得到的名义位置，Bounds 为加上纵向偏移后的实际位置。
type Zone struct {
	Kind    ZoneKind    `json:"kind"`
	Layer   int         `json:"layer"`
	Box     Rect        `json:"box"`
	Offset  float64     `json:"offset"`
	Bounds  Rect        `json:"bounds"`
	Text    *TextBox    `json:"text,omitempty"`
	Barcode *BarcodeBox `json:"barcode,omitempty"`
}

// Rect 以左上角为原点，单位 mm。
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CenterX 返回矩形水平中心。
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }

// CenterY 返回矩形垂直中心。
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// Bottom 返回矩形下边缘。
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Translate 返回纵向平移 dy 后的矩形。
func (r Rect) Translate(dy float64) Rect {
	r.Y += dy
	return r
}

// Insets 以毫米为单位。
type Insets struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// FontResource 描述字体资源，src 可以是文件路径或内置 embed 路径。
type FontResource struct {
	Name  string `json:"name"`
	Src   string `json:"src"`
	Style string `json:"style"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Black 是标签文字与条码的颜色。
var Black = Color{}

// TextBox 表示一个已经排好坐标的文本块。
// 文本块不会被区域裁剪：两行名称超出区域高度时向上下两侧溢出，避免切掉声调符号。
type TextBox struct {
	Content    string     `json:"content"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	LineHeight float64    `json:"lineHeight"`
	Font       string     `json:"font"`
	FontSize   float64    `json:"fontSize"` // mm
	Color      Color      `json:"color"`
	Lines      []TextLine `json:"lines"`
	Height     float64    `json:"height"`
	Align      string     `json:"align,omitempty"` // left/center/right
	Wrap       string     `json:"wrap,omitempty"`  // normal/nowrap
	Truncated  bool       `json:"truncated,omitempty"`
}

// TextLine 表示排版后的一行文本内容及其宽高。
type TextLine struct {
	Content   string  `json:"content"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
}

// BarcodeBox 记录条码内容、编码参数与放置中心。
type BarcodeBox struct {
	Text    string          `json:"text"`
	Options barcode.Options `json:"options"`
	CenterX float64         `json:"centerX"`
	CenterY float64         `json:"centerY"`
}
