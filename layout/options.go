package layout

// Typesetter 负责根据字体与宽度约束将文本拆成可绘制的行。
// 约定：width/fontSize/lineHeight 均为 mm；width <= 0 表示不限宽度。
// wrap 取值 normal（在空白处折行，必要时词内拆分）或 nowrap（只按显式换行拆分）。
type Typesetter interface {
	LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error)
}

// Fonts 指定名称与价格使用的字体。
type Fonts struct {
	Name  FontResource
	Price FontResource
}

// DefaultFonts 使用内置的 Go Bold 字体。
func DefaultFonts() Fonts {
	bold := FontResource{Name: "LabelBold", Src: "embed:gobold", Style: "bold"}
	return Fonts{Name: bold, Price: bold}
}

// Option 配置 Engine。
type Option func(*Engine)

// WithFonts 替换名称与价格字体。
func WithFonts(f Fonts) Option {
	return func(e *Engine) { e.fonts = f }
}

// WithPriceFormatter 替换价格格式化规则（默认越南语分组 + VND）。
func WithPriceFormatter(p *PriceFormatter) Option {
	return func(e *Engine) {
		if p != nil {
			e.price = p
		}
	}
}
