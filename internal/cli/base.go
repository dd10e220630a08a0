package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitstack.dev/gitstack/internal/git"
)

// newBaseCmd creates the base command
func newBaseCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "base [<rev>]",
		Short: "Show the protected branch a revision is stacked on",
		Long: `Show the protected branch a revision is stacked on.

Defaults to HEAD. Fails when no protected branch shares history with it.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := opts.newContext(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = ctx.Splog.Close() }()

			rev := "HEAD"
			if len(args) == 1 {
				rev = args[0]
			}
			commit, err := ctx.Repo.Resolve(rev)
			if err != nil {
				return err
			}

			local, err := ctx.Repo.LocalBranches()
			if err != nil {
				return err
			}
			matcher, err := git.NewProtectedBranches(ctx.Config.GetProtectedBranches())
			if err != nil {
				return fmt.Errorf("invalid protected branch pattern: %w", err)
			}

			protected := git.NewBranches(local).Protected(matcher)
			ctx.Splog.Debug("Checking %d protected branches", protected.Len())
			found, err := git.FindProtectedBase(ctx.Repo, protected, commit.ID)
			if err != nil {
				return err
			}
			if found == nil {
				return fmt.Errorf("no protected branch found for %s", rev)
			}

			ctx.Splog.Page(found.Name + "\n")
			return nil
		},
	}
	return cmd
}
