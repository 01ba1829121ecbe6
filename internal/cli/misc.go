package cli

import (
	"fmt"
	"os"

	"github.com/arthur-debert/myquest/internal/version"
	"github.com/arthur-debert/myquest/pkg/cobrax/topics"
	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       MsgVersionShort,
		Long:        MsgVersionLong,
		Annotations: map[string]string{annotationNoConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "myquest version %s\n", version.Version)
			_, _ = fmt.Fprintf(out, "Commit: %s\n", version.Commit)
			_, _ = fmt.Fprintf(out, "Built:  %s\n", version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `To load completions:

Bash:
  $ source <(myquest completion bash)

Zsh:
  $ myquest completion zsh > "${fpath[1]}/_myquest"

Fish:
  $ myquest completion fish | source

PowerShell:
  PS> myquest completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Annotations:           map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

func newManCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:         "man",
		Short:       MsgManShort,
		Args:        cobra.NoArgs,
		Hidden:      true,
		Annotations: map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.Wrap(err, errors.ErrIO, "failed to create man page directory").WithDetail("dir", dir)
			}
			header := &doc.GenManHeader{
				Title:   "MYQUEST",
				Section: "1",
			}
			if err := doc.GenManTree(cmd.Root(), header, dir); err != nil {
				return errors.Wrap(err, errors.ErrIO, "failed to generate man pages")
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), MsgManGenerated+"\n", dir)
			return err
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", MsgFlagManDir)
	return cmd
}

func newTopicsCmd(tm *topics.TopicManager) *cobra.Command {
	return &cobra.Command{
		Use:         "topics [name]",
		Short:       MsgTopicsShort,
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{annotationNoConfig: "true"},
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return tm.ListTopics(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				tm.WriteTopicList(cmd.OutOrStdout(), cmd.Root().Name())
				return nil
			}
			topic, ok := tm.GetTopic(args[0])
			if !ok {
				return errors.Newf(errors.ErrNotFound, "no help topic %q", args[0]).
					WithDetail("known", tm.ListTopics())
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), tm.Render(topic))
			return err
		},
	}
}
