package layout

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PriceFormatter 把原始价格字符串格式化为带千位分隔符和货币后缀的文本。
// 预览与导出共用同一个实例，保证两边显示一致。
type PriceFormatter struct {
	printer  *message.Printer
	sep      string
	currency string
}

// NewPriceFormatter 使用给定语言的千位分组规则与货币后缀。
func NewPriceFormatter(tag language.Tag, currency string) *PriceFormatter {
	p := message.NewPrinter(tag)
	// 从 1000 的本地化结果中取出分组符号，用于超出 int64 的长数字。
	grouped := p.Sprintf("%d", 1000)
	sep := ""
	if len(grouped) > 4 {
		sep = grouped[1 : len(grouped)-3]
	}
	return &PriceFormatter{printer: p, sep: sep, currency: currency}
}

var defaultPriceFormatter = NewPriceFormatter(language.Vietnamese, "VND")

// FormatPrice 是标签价格的唯一格式化规则：
// 去掉所有非数字字符后按整数解析（失败视为 0），按越南语习惯分组，并追加 " VND"。
//
//	FormatPrice("150000") == "150.000 VND"
//	FormatPrice("1a2b3")  == "123 VND"
//	FormatPrice("abc")    == "0 VND"
func FormatPrice(raw string) string {
	return defaultPriceFormatter.Format(raw)
}

// Format 按格式化器的语言与货币格式化 raw。
func (f *PriceFormatter) Format(raw string) string {
	return f.group(digitsOnly(raw)) + " " + f.currency
}

// Currency 返回货币后缀。
func (f *PriceFormatter) Currency() string { return f.currency }

func (f *PriceFormatter) group(digits string) string {
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return "0"
	}
	if n, err := strconv.ParseInt(digits, 10, 64); err == nil {
		return f.printer.Sprintf("%d", n)
	}
	// 超长数字按三位一组手动分组
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(f.sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
