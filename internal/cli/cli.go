// Package cli 实现 pricelabel 命令行：批量导出、单张预览、布局调试、终端界面与 HTTP 服务。
//
// 所有命令支持 --verbose (-v) 输出调试日志，日志器通过 context.Context 传递。
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ByLCY/pricelabel/config"
	"github.com/ByLCY/pricelabel/dsl"
	"github.com/ByLCY/pricelabel/label"
)

var (
	version string
	commit  string
	date    string
)

// SetVersion 设置 --version 显示的版本信息，通常由 main 通过 ldflags 注入。
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// globalOpts 是所有子命令共享的参数。
type globalOpts struct {
	configPath string
	verbose    bool
}

// Execute 运行命令行，ctx 取消时正在进行的导出会尽快停止。
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	g := &globalOpts{}

	root := &cobra.Command{
		Use:          "pricelabel",
		Short:        "Print 35×22mm price labels, two per 72×22mm page",
		Long:         `pricelabel lays out product name, barcode and price on 35×22mm labels and exports them two-up as a PDF for thermal label printers.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if g.verbose {
				level = log.DebugLevel
			}
			logger := newLogger(cmd.ErrOrStderr(), level)
			cmd.SetContext(log.WithContext(cmd.Context(), logger))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("pricelabel %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "config file (default: user config dir)")

	root.AddCommand(newExportCmd(g))
	root.AddCommand(newPreviewCmd(g))
	root.AddCommand(newLayoutCmd(g))
	root.AddCommand(newTUICmd(g))
	root.AddCommand(newServeCmd(g))
	root.AddCommand(newConfigCmd(g))

	return root
}

func (g *globalOpts) settings() (config.Settings, error) {
	return config.Load(g.configPath)
}

// contentFlags 是单张标签内容的参数，未给出的字段用示例内容补齐。
type contentFlags struct {
	name    string
	price   string
	barcode string
}

func (f *contentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "product name")
	cmd.Flags().StringVar(&f.price, "price", "", "price, digits are kept")
	cmd.Flags().StringVar(&f.barcode, "barcode", "", "CODE128 content")
}

// resolve 返回要预览的内容与布局。给出清单时取第一个商品和清单中的布局，命令行参数优先。
func (f *contentFlags) resolve(args []string, base label.LayoutConfig) (label.Content, label.LayoutConfig, error) {
	content := label.Content{Name: f.name, Price: f.price, Barcode: f.barcode}
	cfg := base
	if len(args) > 0 {
		sheet, err := dsl.LoadFile(args[0], base)
		if err != nil {
			return label.Content{}, cfg, err
		}
		cfg = sheet.Config
		if len(sheet.Products) > 0 {
			first := sheet.Products[0].Content()
			if content.Name == "" {
				content.Name = first.Name
			}
			if content.Price == "" {
				content.Price = first.Price
			}
			if content.Barcode == "" {
				content.Barcode = first.Barcode
			}
		}
	}
	return label.PreviewContent(content.Name, content.Price, content.Barcode), cfg, nil
}

func createOutput(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("无法创建输出文件 %s: %w", path, err)
	}
	return f, nil
}
