package cli

import (
	"os"

	"github.com/spf13/cobra"

	"gitstack.dev/gitstack/internal/runtime"
	"gitstack.dev/gitstack/internal/tui"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	repo    string
	debug   bool
	noColor bool
}

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "git-stack",
		Short: "Stacked branch management for git",
		Long: `git-stack works out which local branches are stacked on each other and
on which protected branch the stack sits.

Protected branches come from stack.protected-branch in any gitconfig.`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			tui.ConfigureColors(!opts.noColor)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.repo, "repo", "C", ".", "Run as if started in this directory")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Print debug output")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newShowCmd(opts))
	rootCmd.AddCommand(newBaseCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd(version, commit, date))

	return rootCmd
}

// newContext opens the repository named by --repo with output going to the command
func (o *globalOptions) newContext(cmd *cobra.Command) (*runtime.Context, error) {
	splog, err := tui.NewSplogWithOptions(tui.SplogOptions{
		Out:     cmd.OutOrStdout(),
		LogFile: os.Getenv(tui.EnvLogFile),
		Debug:   o.debug || os.Getenv(tui.EnvDebug) != "",
	})
	if err != nil {
		return nil, err
	}
	ctx, err := runtime.NewContext(o.repo, splog)
	if err != nil {
		_ = splog.Close()
		return nil, err
	}
	return ctx, nil
}
