package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ByLCY/pricelabel/dsl"
	"github.com/ByLCY/pricelabel/internal/app"
	"github.com/ByLCY/pricelabel/preview"
	"github.com/ByLCY/pricelabel/queue"
	"github.com/ByLCY/pricelabel/server"
)

type tuiOpts struct {
	save string
}

func newTUICmd(g *globalOpts) *cobra.Command {
	opts := &tuiOpts{}

	cmd := &cobra.Command{
		Use:   "tui [sheet.labels]",
		Short: "Interactive queue editor with live layout preview",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, g, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.save, "save", "", "write the queue and layout to a .labels sheet on exit")
	return cmd
}

func runTUI(cmd *cobra.Command, g *globalOpts, args []string, opts *tuiOpts) error {
	settings, err := g.settings()
	if err != nil {
		return err
	}
	name := "pricelabel"
	cfg := settings.Layout
	q := queue.New()
	if len(args) > 0 {
		sheet, err := dsl.LoadFile(args[0], settings.Layout)
		if err != nil {
			return err
		}
		name, cfg = sheet.Name, sheet.Config
		q = queue.New(sheet.Products...)
	}

	svc, err := app.New(settings)
	if err != nil {
		return err
	}
	final, err := preview.Run(svc.Engine(), svc, q, cfg)
	if err != nil {
		return err
	}
	if opts.save == "" {
		return nil
	}
	var buf bytes.Buffer
	if err := dsl.Write(&buf, name, final.Config(), q.Products()); err != nil {
		return err
	}
	if err := os.WriteFile(opts.save, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("保存清单失败: %w", err)
	}
	printSuccess(cmd.OutOrStdout(), "Sheet saved")
	printFile(cmd.OutOrStdout(), opts.save)
	return nil
}

func newServeCmd(g *globalOpts) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layout, preview and export over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := g.settings()
			if err != nil {
				return err
			}
			if addr != "" {
				settings.Server.Addr = addr
			}
			svc, err := app.New(settings)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return server.New(svc, loggerFromContext(ctx)).ListenAndServe(ctx, settings.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
