package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/ByLCY/pricelabel/config"
)

func newConfigCmd(g *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the config file",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.settings()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printKeyValue(out, "output", s.Export.OutputDir)
			printKeyValue(out, "filename", s.Export.Filename)
			printKeyValue(out, "backend", s.Export.Backend)
			printKeyValue(out, "failed page", s.Export.FailedPage)
			printKeyValue(out, "scale", s.Export.Scale)
			printKeyValue(out, "locale", s.Locale.Language+"/"+s.Locale.Currency)
			printKeyValue(out, "server", s.Server.Addr)
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default settings to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := g.configPath
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("配置文件 %s 已存在（使用 --force 覆盖）", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := config.Save(path, config.Defaults()); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Config written")
			printFile(cmd.OutOrStdout(), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(show, initCmd)
	return cmd
}
