package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/myquest/pkg/config"
	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/arthur-debert/myquest/pkg/filesystem"
	"github.com/arthur-debert/myquest/pkg/ui"
	"github.com/arthur-debert/myquest/pkg/ui/display"
	"github.com/spf13/cobra"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
	}
	cmd.AddCommand(newConfigShowCmd(opts), newConfigInitCmd(opts), newConfigPathCmd(opts))
	return cmd
}

func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := opts.outputFormat(cmd)
			if err != nil {
				return err
			}
			if format == ui.FormatJSON {
				r, err := ui.NewRenderer(format, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				return r.RenderResult(&display.View{Data: opts.config})
			}

			out, err := opts.config.TOML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newConfigInitCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented configuration template",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.paths.ConfigFile()
			fsys := filesystem.NewOS()

			if _, err := fsys.Stat(path); err == nil && !force {
				return errors.Newf(errors.ErrInvalidInput, MsgConfigExists, path)
			} else if err != nil && !os.IsNotExist(err) {
				return errors.Wrap(err, errors.ErrIO, "failed to check config file").WithDetail("path", path)
			}

			if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return errors.Wrap(err, errors.ErrIO, "failed to create config directory").WithDetail("path", path)
			}
			if err := fsys.WriteFile(path, []byte(config.GenerateConfigContent()), 0644); err != nil {
				return errors.Wrap(err, errors.ErrIO, "failed to write config file").WithDetail("path", path)
			}

			r, err := opts.renderer(cmd)
			if err != nil {
				return err
			}
			return r.RenderMessage(fmt.Sprintf(MsgConfigCreated, path))
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)
	return cmd
}

func newConfigPathCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:         "paths",
		Short:       "Print where myquest reads and writes files",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.renderer(cmd)
			if err != nil {
				return err
			}
			p := opts.paths
			view := display.NewTable("Paths", "Name", "Path").
				AddRow("data", p.DataDir()).
				AddRow("config", p.ConfigFile()).
				AddRow("state", p.StateDir()).
				AddRow("log", p.LogFilePath())
			return r.RenderResult(view.WithData(map[string]string{
				"data":   p.DataDir(),
				"config": p.ConfigFile(),
				"state":  p.StateDir(),
				"log":    p.LogFilePath(),
			}))
		},
	}
}
