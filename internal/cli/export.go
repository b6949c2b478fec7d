package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ByLCY/pricelabel/dsl"
	"github.com/ByLCY/pricelabel/internal/app"
	"github.com/ByLCY/pricelabel/queue"
)

type exportOpts struct {
	outDir     string
	filename   string
	backend    string
	failedPage string
}

func newExportCmd(g *globalOpts) *cobra.Command {
	opts := &exportOpts{}

	cmd := &cobra.Command{
		Use:   "export <sheet.labels>",
		Short: "Export every label in a sheet to a PDF",
		Long: `Export reads a .labels sheet, expands each product by its quantity and
writes one 72×22mm page per pair of labels.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, g, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "output directory (overrides config)")
	cmd.Flags().StringVar(&opts.filename, "filename", "", "file name template, e.g. Tem_${date}.pdf")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "PDF backend: fpdf, canvas")
	cmd.Flags().StringVar(&opts.failedPage, "failed-page", "", "what to do with a page that fails: skip, blank")

	return cmd
}

func runExport(cmd *cobra.Command, g *globalOpts, path string, opts *exportOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	settings, err := g.settings()
	if err != nil {
		return err
	}
	if opts.outDir != "" {
		settings.Export.OutputDir = opts.outDir
	}
	if opts.filename != "" {
		settings.Export.Filename = opts.filename
	}
	if opts.backend != "" {
		settings.Export.Backend = opts.backend
	}
	if opts.failedPage != "" {
		settings.Export.FailedPage = opts.failedPage
	}

	sheet, err := dsl.LoadFile(path, settings.Layout)
	if err != nil {
		return err
	}
	labels, pages := queue.Totals(sheet.Products)
	logger.Info("Loaded sheet", "name", sheet.Name, "products", len(sheet.Products), "labels", labels, "pages", pages)

	svc, err := app.New(settings)
	if err != nil {
		return err
	}
	return exportWith(ctx, cmd, svc, sheet)
}

func exportWith(ctx context.Context, cmd *cobra.Command, svc *app.Service, sheet *dsl.Sheet) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	file, result, err := svc.ExportFile(ctx, sheet.Products, sheet.Config, func(p int) {
		logger.Debug("export progress", "percent", p)
	})
	if err != nil {
		return err
	}
	prog.done("Exported")

	out := cmd.OutOrStdout()
	printSuccess(out, "Exported %d pages", result.Pages)
	printFile(out, file)
	if n := len(result.Failures); n > 0 {
		printWarning(out, "%d pages failed to render", n)
		for _, f := range result.Failures {
			printError(out, "%v", f)
		}
	}
	return nil
}
