// Package config 读取 TOML 配置文件：默认布局、导出选项、字体、服务地址与区域设置。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"

	"github.com/ByLCY/pricelabel/document"
	"github.com/ByLCY/pricelabel/label"
	"github.com/ByLCY/pricelabel/layout"
)

// Settings 是配置文件的完整结构。
type Settings struct {
	Layout label.LayoutConfig `toml:"layout"`
	Export Export             `toml:"export"`
	Font   Font               `toml:"font"`
	Server Server             `toml:"server"`
	Locale Locale             `toml:"locale"`
}

// Export 控制导出行为。
type Export struct {
	OutputDir   string   `toml:"output_dir"`
	Filename    string   `toml:"filename"`
	Backend     string   `toml:"backend"`     // fpdf | canvas
	FailedPage  string   `toml:"failed_page"` // skip | blank
	SettleDelay Duration `toml:"settle_delay"`
	Scale       float64  `toml:"scale"`
	JPEGQuality int      `toml:"jpeg_quality"`
}

// Font 指定字体来源，embed:<name> 为内置字体，其余按文件路径读取。
type Font struct {
	Regular string `toml:"regular"`
	Bold    string `toml:"bold"`
	Barcode string `toml:"barcode"`
}

// Server 为 HTTP 服务配置。
type Server struct {
	Addr string `toml:"addr"`
}

// Locale 决定价格的数字分组方式与货币后缀。
type Locale struct {
	Language string `toml:"language"`
	Currency string `toml:"currency"`
}

// Duration 以 "200ms" 这样的字符串读写。
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults 返回内置默认配置。
func Defaults() Settings {
	return Settings{
		Layout: label.DefaultLayoutConfig(),
		Export: Export{
			OutputDir:   ".",
			Filename:    document.DefaultFilename,
			Backend:     document.BackendFPDF,
			FailedPage:  string(document.FailSkip),
			Scale:       4,
			JPEGQuality: document.DefaultJPEGQuality,
		},
		Font: Font{
			Regular: "embed:goregular",
			Bold:    "embed:gobold",
			Barcode: "embed:gomono",
		},
		Server: Server{Addr: "127.0.0.1:8080"},
		Locale: Locale{Language: "vi", Currency: "VND"},
	}
}

// DefaultPath 返回 $XDG_CONFIG_HOME/pricelabel/config.toml（各平台的用户配置目录）。
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pricelabel", "config.toml"), nil
}

// Load 读取 path（为空时使用 DefaultPath），文件不存在时返回默认配置。
// 文件中未出现的字段保持默认值，未知字段视为错误。
func Load(path string) (Settings, error) {
	s := Defaults()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return s, nil
		}
		path = p
	}
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Defaults(), nil
		}
		return Settings{}, fmt.Errorf("读取配置 %s 失败: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Settings{}, fmt.Errorf("配置 %s 包含未知字段: %s", path, strings.Join(keys, ", "))
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("配置 %s 无效: %w", path, err)
	}
	return s, nil
}

// Save 将配置写回 path，必要时创建目录。
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(s); err != nil {
		f.Close()
		return fmt.Errorf("写入配置 %s 失败: %w", path, err)
	}
	return f.Close()
}

// Validate 检查取值是否合法。
func (s Settings) Validate() error {
	if _, err := document.NewFactory(s.Export.Backend, s.Export.JPEGQuality); err != nil {
		return err
	}
	if _, err := document.ParseFailurePolicy(s.Export.FailedPage); err != nil {
		return err
	}
	if s.Export.JPEGQuality < 1 || s.Export.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality 必须在 1..100 之间，当前为 %d", s.Export.JPEGQuality)
	}
	if s.Export.Scale <= 0 {
		return fmt.Errorf("scale 必须大于 0，当前为 %g", s.Export.Scale)
	}
	if s.Export.SettleDelay.Duration < 0 {
		return fmt.Errorf("settle_delay 不能为负数")
	}
	if _, err := language.Parse(s.Locale.Language); err != nil {
		return fmt.Errorf("无法识别的语言 %q: %w", s.Locale.Language, err)
	}
	return nil
}

// PriceFormatter 按区域设置创建价格格式化器。
func (s Settings) PriceFormatter() *layout.PriceFormatter {
	tag, err := language.Parse(s.Locale.Language)
	if err != nil {
		tag = language.Vietnamese
	}
	currency := s.Locale.Currency
	if currency == "" {
		currency = "VND"
	}
	return layout.NewPriceFormatter(tag, currency)
}

// Fonts 返回名称与价格使用的字体（均为粗体）。
func (s Settings) Fonts() layout.Fonts {
	bold := layout.FontResource{Name: "LabelBold", Src: s.Font.Bold, Style: "bold"}
	if bold.Src == "" {
		bold = layout.DefaultFonts().Name
	}
	return layout.Fonts{Name: bold, Price: bold}
}

// BarcodeFont 返回条码可读文字的字体。
func (s Settings) BarcodeFont() layout.FontResource {
	src := s.Font.Barcode
	if src == "" {
		src = "embed:gomono"
	}
	return layout.FontResource{Name: "BarcodeMono", Src: src}
}

// FailurePolicy 返回解析后的失败页策略，非法值按 skip 处理（Load 已校验）。
func (s Settings) FailurePolicy() document.FailurePolicy {
	p, err := document.ParseFailurePolicy(s.Export.FailedPage)
	if err != nil {
		return document.FailSkip
	}
	return p
}
