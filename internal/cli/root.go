package cli

import (
	"context"
	"embed"
	"io/fs"
	"os"

	"github.com/arthur-debert/myquest/internal/version"
	"github.com/arthur-debert/myquest/pkg/app"
	"github.com/arthur-debert/myquest/pkg/cobrax/topics"
	"github.com/arthur-debert/myquest/pkg/config"
	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/arthur-debert/myquest/pkg/logging"
	"github.com/arthur-debert/myquest/pkg/paths"
	"github.com/arthur-debert/myquest/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed help
var helpFS embed.FS

// annotationNoConfig marks commands that must run even when the
// configuration file is broken.
const annotationNoConfig = "myquest/no-config"

// rootOptions carries the global flags and what PersistentPreRunE resolves
// from them
type rootOptions struct {
	verbosity int
	format    string
	dataDir   string
	timeline  string

	paths  paths.Paths
	config *config.Config
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "myquest",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&opts.format, "format", "f", string(ui.FormatAuto), MsgFlagFormat)
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return ui.Formats(), cobra.ShellCompDirectiveNoFileComp
	})
	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", MsgFlagDataDir)
	rootCmd.PersistentFlags().StringVar(&opts.timeline, "timeline", "", MsgFlagTimeline)

	initTemplateFormatting()
	rootCmd.SetUsageTemplate(usageTemplate)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newHabitCmd(opts))
	rootCmd.AddCommand(newTodoCmd(opts))
	rootCmd.AddCommand(newTimelineCmd(opts))
	rootCmd.AddCommand(newStorageCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	// Topic-based help from the embedded help directory
	helpTopics, err := fs.Sub(helpFS, "help")
	if err == nil {
		tm, err := topics.InitializeWithOptions(rootCmd, helpTopics, topics.Options{
			Renderer: topics.RendererFor(ui.DetectFormat(os.Stdout) == ui.FormatTerminal),
		})
		if err == nil {
			rootCmd.AddCommand(newTopicsCmd(tm))
		}
	}

	return rootCmd
}

// setup resolves paths and configuration, then configures logging
func (o *rootOptions) setup(cmd *cobra.Command, args []string) error {
	p, err := paths.New(o.dataDir)
	if err != nil {
		_ = logging.SetupLogger(logging.Options{Verbosity: o.verbosity})
		return err
	}
	o.paths = p

	cfg, err := config.Load(config.LoadOptions{File: p.ConfigFile()})
	if err != nil {
		_ = logging.SetupLogger(logging.Options{Verbosity: o.verbosity})
		if skipsConfig(cmd) {
			log.Warn().Err(err).Str("file", p.ConfigFile()).Msg("Ignoring broken configuration")
			o.config = config.Default()
			return nil
		}
		return err
	}
	o.config = cfg

	// A missing log file is already reported on the console
	_ = logging.SetupLogger(logging.Options{
		Verbosity: o.verbosity + cfg.Logging.Verbosity,
		File:      cfg.Logging.LogFile(p.LogFilePath()),
	})
	logging.LogCommand(cmd.CommandPath(), args)
	return nil
}

func skipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationNoConfig] == "true" {
			return true
		}
	}
	return false
}

// outputFormat resolves --format against the command's output stream
func (o *rootOptions) outputFormat(cmd *cobra.Command) (ui.Format, error) {
	format, err := ui.ParseFormat(o.format)
	if err != nil {
		return format, err
	}
	if format == ui.FormatAuto {
		if f, ok := cmd.OutOrStdout().(*os.File); ok {
			return ui.DetectFormat(f), nil
		}
		return ui.FormatText, nil
	}
	return format, nil
}

func (o *rootOptions) renderer(cmd *cobra.Command) (ui.Renderer, error) {
	format, err := o.outputFormat(cmd)
	if err != nil {
		return nil, err
	}
	return ui.NewRenderer(format, cmd.OutOrStdout())
}

// rich reports whether output goes to a styled terminal
func (o *rootOptions) rich(cmd *cobra.Command) bool {
	format, err := o.outputFormat(cmd)
	return err == nil && format == ui.FormatTerminal
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

type appRunFunc func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error

// withApp opens the documents for one command and closes them afterwards,
// which flushes every pending change to disk.
func (o *rootOptions) withApp(fn appRunFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		r, err := o.renderer(cmd)
		if err != nil {
			return err
		}

		ctx := contextOf(cmd)
		a, err := app.New(ctx, app.Options{
			Config:   o.config,
			Paths:    o.paths,
			Timeline: o.timeline,
		})
		if err != nil {
			return err
		}
		defer func() {
			if cerr := a.Close(ctx); cerr != nil && err == nil {
				err = cerr
			}
		}()

		return fn(cmd, a, r, args)
	}
}

// Execute runs the root command and renders a failure in the selected
// output format. It returns the process exit code.
func Execute() int {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		name, _ := rootCmd.PersistentFlags().GetString("format")
		format, perr := ui.ParseFormat(name)
		if perr != nil {
			format = ui.FormatAuto
		}
		r, rerr := ui.NewRenderer(format, os.Stderr)
		if rerr != nil || r.RenderError(err) != nil {
			_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		}
		return errors.ExitCode(err)
	}
	return errors.ExitOK
}
