package label

import "strings"

// 预览区在表单为空时使用的示例内容。
const (
	SampleName    = "Sản phẩm mẫu ABC"
	SamplePrice   = "150000"
	SampleBarcode = "89312345678"
)

// PreviewContent 用示例内容补齐空字段，保证预览始终有东西可画。
func PreviewContent(name, price, barcode string) Content {
	c := Content{Name: name, Price: price, Barcode: barcode}
	if strings.TrimSpace(c.Name) == "" {
		c.Name = SampleName
	}
	if strings.TrimSpace(c.Price) == "" {
		c.Price = SamplePrice
	}
	if strings.TrimSpace(c.Barcode) == "" {
		c.Barcode = SampleBarcode
	}
	return c
}
