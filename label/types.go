package label

// 该文件定义标签数据模型：商品、布局配置、标签实例与页面分组，供布局、队列、渲染与导出共用。

// Product 是待打印的商品记录，加入队列后除按 ID 删除外不再修改。
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`   // 原始价格字符串，格式化时仅保留数字
	Barcode  string `json:"barcode"` // CODE128 内容
	Quantity int    `json:"quantity"`
}

// Content 返回绘制一张标签所需的可见内容。
func (p Product) Content() Content {
	return Content{Name: p.Name, Price: p.Price, Barcode: p.Barcode}
}

// Content 描述一张标签的可见内容（名称、价格、条码）。
type Content struct {
	Name    string `json:"name"`
	Price   string `json:"price"`
	Barcode string `json:"barcode"`
}

// LayoutConfig 控制标签三个区域（名称/条码/价格）的字号、高度与纵向偏移。
//
// 单位约定：
//   - 字号 NameFontSize/PriceFontSize 为 pt；
//   - 高度、偏移、内边距与 Gap 为 mm；
//   - 条码的 BarcodeWidth（单个模块宽度）、BarcodeHeight、BarcodeFontSize 沿用条码库的 px（CSS 像素，1px = 25.4/96 mm）。
//
// 数值范围仅由界面约束，核心流程接受任意有限值（包括负偏移）。
type LayoutConfig struct {
	NameFontSize    float64 `json:"nameFontSize" toml:"name_font_size"`
	NameHeight      float64 `json:"nameHeight" toml:"name_height"`
	BarcodeHeight   float64 `json:"barcodeHeight" toml:"barcode_height"`
	BarcodeWidth    float64 `json:"barcodeWidth" toml:"barcode_width"`
	BarcodeFontSize float64 `json:"barcodeFontSize" toml:"barcode_font_size"`
	BarcodeYOffset  float64 `json:"barcodeYOffset" toml:"barcode_y_offset"`
	PriceFontSize   float64 `json:"priceFontSize" toml:"price_font_size"`
	PriceHeight     float64 `json:"priceHeight" toml:"price_height"`
	PriceYOffset    float64 `json:"priceYOffset" toml:"price_y_offset"`
	PaddingTop      float64 `json:"paddingTop" toml:"padding_top"`
	PaddingBottom   float64 `json:"paddingBottom" toml:"padding_bottom"`
	Gap             float64 `json:"gap" toml:"gap"`
}

// DefaultLayoutConfig 返回出厂默认布局。
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		NameFontSize:    6.5,
		NameHeight:      5.5,
		BarcodeHeight:   20,
		BarcodeWidth:    0.8,
		BarcodeFontSize: 7,
		BarcodeYOffset:  2,
		PriceFontSize:   7,
		PriceHeight:     5,
		PriceYOffset:    -0.5,
		PaddingTop:      1.2,
		PaddingBottom:   1.5,
		Gap:             2,
	}
}

// Instance 是导出时为每个物理标签位物化出的一次出现。
// 同一商品数量为 n 时会产生 n 个相互独立的 Instance。
type Instance struct {
	Product Product `json:"product"`
	// Seq 为该实例在展开序列中的序号（从 0 开始）。
	Seq int `json:"seq"`
}

// SlotsPerPage 是每页的标签位数量（两联）。
const SlotsPerPage = 2

// PageGroup 是一页上的两个标签位，nil 表示空位（渲染为空白，不消耗条码资源）。
type PageGroup [SlotsPerPage]*Instance

// Filled 返回非空标签位数量。
func (g PageGroup) Filled() int {
	n := 0
	for _, inst := range g {
		if inst != nil {
			n++
		}
	}
	return n
}
