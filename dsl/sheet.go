package dsl

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/pricelabel/label"
	"github.com/ByLCY/pricelabel/layout"
)

// Sheet 是解析并校验后的清单。
type Sheet struct {
	Name     string
	Config   label.LayoutConfig
	Products []label.Product
}

// SyntaxError 指出清单中出错的位置。
type SyntaxError struct {
	Pos     lexer.Position
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

type layoutKey struct {
	unit  layout.Unit
	field func(*label.LayoutConfig) *float64
}

// 字号为 pt，条码参数为 px，其余为 mm；不带单位的数值按该字段的单位读取。
var layoutKeys = map[string]layoutKey{
	"name_font_size":    {layout.UnitPT, func(c *label.LayoutConfig) *float64 { return &c.NameFontSize }},
	"name_height":       {layout.UnitMM, func(c *label.LayoutConfig) *float64 { return &c.NameHeight }},
	"barcode_height":    {layout.UnitPX, func(c *label.LayoutConfig) *float64 { return &c.BarcodeHeight }},
	"barcode_width":     {layout.UnitPX, func(c *label.LayoutConfig) *float64 { return &c.BarcodeWidth }},
	"barcode_font_size": {layout.UnitPX, func(c *label.LayoutConfig) *float64 { return &c.BarcodeFontSize }},
	"barcode_y_offset":  {layout.UnitMM, func(c *label.LayoutConfig) *float64 { return &c.BarcodeYOffset }},
	"price_font_size":   {layout.UnitPT, func(c *label.LayoutConfig) *float64 { return &c.PriceFontSize }},
	"price_height":      {layout.UnitMM, func(c *label.LayoutConfig) *float64 { return &c.PriceHeight }},
	"price_y_offset":    {layout.UnitMM, func(c *label.LayoutConfig) *float64 { return &c.PriceYOffset }},
	"padding_top":       {layout.UnitMM, func(c *label.LayoutConfig) *float64 { return &c.PaddingTop }},
	"padding_bottom":    {layout.UnitMM, func(c *label.LayoutConfig) *float64 { return &c.PaddingBottom }},
	"gap":               {layout.UnitMM, func(c *label.LayoutConfig) *float64 { return &c.Gap }},
}

// Load 把语法树转换为 Sheet，base 为 layout 块未覆盖字段的取值。
// 商品遵循新增表单的规则：名称、价格、条码必填，数量小于 1 时按 1 处理。
func Load(f *File, base label.LayoutConfig) (*Sheet, error) {
	if f == nil {
		return nil, fmt.Errorf("清单为空")
	}
	sheet := &Sheet{Name: string(f.Name), Config: base}
	for _, entry := range f.Entries {
		switch {
		case entry.Layout != nil:
			if err := applyLayout(&sheet.Config, entry.Layout.Body); err != nil {
				return nil, err
			}
		case entry.Product != nil:
			p, err := loadProduct(entry.Product)
			if err != nil {
				return nil, err
			}
			sheet.Products = append(sheet.Products, p)
		}
	}
	return sheet, nil
}

// LoadFile 读取并解析 path 指向的清单。
func LoadFile(path string, base label.LayoutConfig) (*Sheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开清单文件 %s: %w", path, err)
	}
	defer file.Close()
	ast, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("解析清单 %s 失败: %w", path, err)
	}
	return Load(ast, base)
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "-", "_")
}

func applyLayout(cfg *label.LayoutConfig, body *Body) error {
	if body == nil {
		return nil
	}
	for _, s := range body.Settings {
		key, ok := layoutKeys[normalizeKey(s.Key)]
		if !ok {
			return &SyntaxError{Pos: s.Pos, Message: fmt.Sprintf("未知的布局字段 %q", s.Key)}
		}
		if s.Value == nil || s.Value.Number == nil {
			return &SyntaxError{Pos: s.Pos, Message: fmt.Sprintf("布局字段 %s 需要数值", s.Key)}
		}
		length, err := layout.ParseLength(*s.Value.Number)
		if err != nil {
			return &SyntaxError{Pos: s.Pos, Message: fmt.Sprintf("无法解析 %s 的数值 %q", s.Key, *s.Value.Number)}
		}
		v := length.Value
		if length.Unit != layout.UnitNone && length.Unit != key.unit {
			v = length.To(key.unit)
		}
		*key.field(cfg) = v
	}
	return nil
}

func loadProduct(decl *ProductDecl) (label.Product, error) {
	fields := map[string]string{}
	set := func(pos lexer.Position, key string, v *Value) error {
		k := normalizeKey(key)
		switch k {
		case "price", "barcode":
		case "qty", "quantity":
			k = "qty"
		default:
			return &SyntaxError{Pos: pos, Message: fmt.Sprintf("未知的商品字段 %q", key)}
		}
		fields[k] = v.Text()
		return nil
	}
	for _, a := range decl.Attrs {
		if err := set(a.Pos, a.Key, a.Value); err != nil {
			return label.Product{}, err
		}
	}
	if decl.Body != nil {
		for _, s := range decl.Body.Settings {
			if err := set(s.Pos, s.Key, s.Value); err != nil {
				return label.Product{}, err
			}
		}
	}

	qty := 1
	if raw, ok := fields["qty"]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return label.Product{}, &SyntaxError{Pos: decl.Pos, Message: fmt.Sprintf("数量 %q 不是整数", raw)}
		}
		qty = n
	}
	p, err := label.NewProduct(string(decl.Name), fields["price"], fields["barcode"], qty)
	if err != nil {
		return label.Product{}, &SyntaxError{Pos: decl.Pos, Message: err.Error()}
	}
	return p, nil
}

// Write 以清单格式输出配置与商品，结果可由 Parse + Load 读回。
func Write(w io.Writer, name string, cfg label.LayoutConfig, products []label.Product) error {
	var b strings.Builder
	fmt.Fprintf(&b, "sheet %s {\n  layout {\n", strconv.Quote(name))
	for _, k := range layoutKeyOrder {
		key := layoutKeys[k]
		fmt.Fprintf(&b, "    %s: %s%s\n", k, strconv.FormatFloat(*key.field(&cfg), 'f', -1, 64), layout.UnitToString(key.unit))
	}
	b.WriteString("  }\n")
	for _, p := range products {
		fmt.Fprintf(&b, "  product %s price %s barcode %s qty %d\n",
			strconv.Quote(p.Name), strconv.Quote(p.Price), strconv.Quote(p.Barcode), p.Quantity)
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

var layoutKeyOrder = []string{
	"name_font_size", "name_height",
	"barcode_height", "barcode_width", "barcode_font_size", "barcode_y_offset",
	"price_font_size", "price_height", "price_y_offset",
	"padding_top", "padding_bottom", "gap",
}
