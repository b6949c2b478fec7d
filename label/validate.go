package label

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// ValidationError 表示新增商品时未通过校验的字段。
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MaxQuantity 是单个商品允许的最大打印数量。
const MaxQuantity = 10000

// NewProduct 按新增商品表单的规则构造 Product：
// 名称、价格、条码必须非空；数量小于 1 时按 1 处理，超过 MaxQuantity 时报错。
func NewProduct(name, price, barcode string, quantity int) (Product, error) {
	name = strings.TrimSpace(name)
	price = strings.TrimSpace(price)
	barcode = strings.TrimSpace(barcode)
	switch {
	case name == "":
		return Product{}, &ValidationError{Field: "name", Message: "商品名称不能为空"}
	case price == "":
		return Product{}, &ValidationError{Field: "price", Message: "价格不能为空"}
	case barcode == "":
		return Product{}, &ValidationError{Field: "barcode", Message: "条码不能为空"}
	}
	if quantity < 1 {
		quantity = 1
	}
	if quantity > MaxQuantity {
		return Product{}, &ValidationError{Field: "quantity", Message: fmt.Sprintf("数量不能超过 %d", MaxQuantity)}
	}
	return Product{
		ID:       uuid.NewString(),
		Name:     name,
		Price:    price,
		Barcode:  barcode,
		Quantity: quantity,
	}, nil
}

// Range 描述界面滑块的取值范围。
type Range struct {
	Min  float64
	Max  float64
	Step float64
}

// Field 标识 LayoutConfig 中可由界面调整的字段。
type Field int

const (
	FieldNameFontSize Field = iota
	FieldNameHeight
	FieldBarcodeHeight
	FieldBarcodeYOffset
	FieldBarcodeWidth
	FieldPriceFontSize
	FieldPriceHeight
	FieldPriceYOffset
)

// SliderFields 按界面顺序列出可调字段。
var SliderFields = []Field{
	FieldNameFontSize,
	FieldNameHeight,
	FieldBarcodeHeight,
	FieldBarcodeYOffset,
	FieldBarcodeWidth,
	FieldPriceFontSize,
	FieldPriceHeight,
	FieldPriceYOffset,
}

// SliderRanges 是界面强制的取值范围（仅供界面使用，核心不做硬约束）。
var SliderRanges = map[Field]Range{
	FieldNameFontSize:   {Min: 4, Max: 12, Step: 0.1},
	FieldNameHeight:     {Min: 2, Max: 12, Step: 0.1},
	FieldBarcodeHeight:  {Min: 5, Max: 25, Step: 0.1},
	FieldBarcodeYOffset: {Min: -10, Max: 15, Step: 0.5},
	FieldBarcodeWidth:   {Min: 0.3, Max: 3.5, Step: 0.1},
	FieldPriceFontSize:  {Min: 4, Max: 22, Step: 0.1},
	FieldPriceHeight:    {Min: 2, Max: 10, Step: 0.1},
	FieldPriceYOffset:   {Min: -10, Max: 10, Step: 0.5},
}

// String 返回字段的显示名。
func (f Field) String() string {
	switch f {
	case FieldNameFontSize:
		return "Tên - Cỡ chữ"
	case FieldNameHeight:
		return "Tên - Độ cao"
	case FieldBarcodeHeight:
		return "Mã - Chiều cao"
	case FieldBarcodeYOffset:
		return "Mã - Vị trí dọc"
	case FieldBarcodeWidth:
		return "Mã - Độ rộng vạch"
	case FieldPriceFontSize:
		return "Giá - Cỡ chữ"
	case FieldPriceHeight:
		return "Giá - Độ cao"
	case FieldPriceYOffset:
		return "Giá - Vị trí dọc"
	default:
		return "unknown"
	}
}

// Get 读取字段值。
func (c LayoutConfig) Get(f Field) float64 {
	if p := c.ptr(f); p != nil {
		return *p
	}
	return 0
}

// With 返回修改了某个字段的副本，值会被限制在界面范围内并按步长取整。
func (c LayoutConfig) With(f Field, v float64) LayoutConfig {
	p := c.ptr(f)
	if p == nil {
		return c
	}
	if r, ok := SliderRanges[f]; ok {
		v = r.clamp(v)
	}
	*p = v
	return c
}

// Nudge 按步长调整字段，steps 可以为负数。
func (c LayoutConfig) Nudge(f Field, steps int) LayoutConfig {
	r, ok := SliderRanges[f]
	if !ok {
		return c
	}
	return c.With(f, c.Get(f)+float64(steps)*r.Step)
}

func (c *LayoutConfig) ptr(f Field) *float64 {
	switch f {
	case FieldNameFontSize:
		return &c.NameFontSize
	case FieldNameHeight:
		return &c.NameHeight
	case FieldBarcodeHeight:
		return &c.BarcodeHeight
	case FieldBarcodeYOffset:
		return &c.BarcodeYOffset
	case FieldBarcodeWidth:
		return &c.BarcodeWidth
	case FieldPriceFontSize:
		return &c.PriceFontSize
	case FieldPriceHeight:
		return &c.PriceHeight
	case FieldPriceYOffset:
		return &c.PriceYOffset
	default:
		return nil
	}
}

func (r Range) clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Min
	}
	if r.Step > 0 {
		v = math.Round(v/r.Step) * r.Step
		// 去掉浮点步进带来的尾数，例如 0.30000000000000004
		v = math.Round(v*1e6) / 1e6
	}
	return math.Min(math.Max(v, r.Min), r.Max)
}
