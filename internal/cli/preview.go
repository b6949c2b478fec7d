package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/pricelabel/internal/app"
	"github.com/ByLCY/pricelabel/layout"
	canvasrenderer "github.com/ByLCY/pricelabel/renderer/canvas"
)

type previewOpts struct {
	content contentFlags
	output  string
	format  string
	scale   float64
	border  bool
}

func newPreviewCmd(g *globalOpts) *cobra.Command {
	opts := &previewOpts{}

	cmd := &cobra.Command{
		Use:   "preview [sheet.labels]",
		Short: "Render one page with two copies of a label",
		Long: `Preview draws a single 72×22mm page with the same label in both slots.
Empty fields fall back to sample content.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, g, args, opts)
		},
	}

	opts.content.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default preview.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: png (default), pdf; inferred from -o when omitted")
	cmd.Flags().Float64Var(&opts.scale, "scale", canvasrenderer.PreviewScale, "png scale relative to CSS pixels")
	cmd.Flags().BoolVar(&opts.border, "border", false, "draw label outlines")

	return cmd
}

func runPreview(cmd *cobra.Command, g *globalOpts, args []string, opts *previewOpts) error {
	settings, err := g.settings()
	if err != nil {
		return err
	}
	content, cfg, err := opts.content.resolve(args, settings.Layout)
	if err != nil {
		return err
	}

	format := strings.ToLower(opts.format)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.output)), ".")
	}
	if format == "" {
		format = "png"
	}
	output := opts.output
	if output == "" {
		output = "preview." + format
	}

	svc, err := app.New(settings)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	err = svc.Renderer().WritePreview(cmd.Context(), &buf, content, cfg, canvasrenderer.PreviewOptions{
		Format: format,
		Scale:  opts.scale,
		Border: opts.border,
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("写入预览失败: %w", err)
	}
	printSuccess(cmd.OutOrStdout(), "Preview written")
	printFile(cmd.OutOrStdout(), output)
	return nil
}

type layoutOpts struct {
	content contentFlags
	output  string
	scale   float64
}

func newLayoutCmd(g *globalOpts) *cobra.Command {
	opts := &layoutOpts{}

	cmd := &cobra.Command{
		Use:   "layout [sheet.labels]",
		Short: "Print the computed label layout as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(cmd, g, args, opts)
		},
	}

	opts.content.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write JSON to a file instead of stdout")
	cmd.Flags().Float64Var(&opts.scale, "scale", 1, "layout scale factor")

	return cmd
}

func runLayout(cmd *cobra.Command, g *globalOpts, args []string, opts *layoutOpts) error {
	settings, err := g.settings()
	if err != nil {
		return err
	}
	content, cfg, err := opts.content.resolve(args, settings.Layout)
	if err != nil {
		return err
	}
	svc, err := app.New(settings)
	if err != nil {
		return err
	}
	spec, err := svc.Engine().Compute(content, cfg, opts.scale)
	if err != nil {
		return err
	}
	if opts.output != "" {
		if err := layout.WriteDebugJSON(&spec, opts.output); err != nil {
			return fmt.Errorf("输出布局 JSON 失败: %w", err)
		}
		printFile(cmd.OutOrStdout(), opts.output)
		return nil
	}
	return layout.EncodeDebugJSON(cmd.OutOrStdout(), &spec)
}
