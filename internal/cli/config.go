package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gitstack.dev/gitstack/internal/git"
)

// newConfigCmd creates the config command
func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change git-stack configuration",
		Long: `Show and change git-stack configuration.

Settings live in the [stack] section of any gitconfig file.

Examples:
  git-stack config dump
  git-stack config protect 'release/*'`,
	}

	cmd.AddCommand(newConfigDumpCmd(opts))
	cmd.AddCommand(newConfigProtectCmd(opts))

	return cmd
}

// newConfigDumpCmd creates the config dump command
func newConfigDumpCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration in gitconfig syntax",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := opts.newContext(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = ctx.Splog.Close() }()

			ctx.Splog.Debug("Global config: %s", ctx.Loader.GlobalPath())
			ctx.Splog.Debug("Repository config: %s", ctx.Loader.RepoPath())
			ctx.Splog.Page(ctx.Config.String())
			return nil
		},
	}
}

// newConfigProtectCmd creates the config protect command
func newConfigProtectCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "protect <pattern>...",
		Short: "Protect branches matching the patterns in this repository",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := git.NewProtectedBranches(args); err != nil {
				return fmt.Errorf("invalid pattern: %w", err)
			}

			ctx, err := opts.newContext(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = ctx.Splog.Close() }()

			added, err := ctx.Loader.AddProtectedBranches(args)
			if err != nil {
				return err
			}
			if len(added) == 0 {
				ctx.Splog.Info("Already protected: %s", strings.Join(args, ", "))
				return nil
			}
			ctx.Splog.Info("Protected %s", strings.Join(added, ", "))
			return nil
		},
	}
}
