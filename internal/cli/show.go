package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gitstack.dev/gitstack/internal/config"
	"gitstack.dev/gitstack/internal/stack"
	"gitstack.dev/gitstack/internal/tui"
)

// newShowCmd creates the show command
func newShowCmd(opts *globalOptions) *cobra.Command {
	var (
		stackName  string
		base       string
		formatName string
	)

	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Show the branches in the current stack",
		Aliases: []string{"ls"},
		Long: `Show the branches in the current stack, newest first.

Protected commits are marked with ◆ and branches that could be pushed are
marked (ready). The current commit is marked with ◉.

Examples:
  git-stack show
  git-stack show --stack dependents
  git-stack show --base origin/main --format commits`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			planOpts := stack.Options{Base: base}
			if stackName != "" {
				s, err := config.ParseStack(stackName)
				if err != nil {
					return fmt.Errorf("invalid --stack: %w", err)
				}
				planOpts.Stack = &s
			}

			ctx, err := opts.newContext(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = ctx.Splog.Close() }()

			format := ctx.Config.GetShowFormat()
			if formatName != "" {
				if format, err = config.ParseFormat(formatName); err != nil {
					return fmt.Errorf("invalid --format: %w", err)
				}
			}

			plan, err := ctx.Planner().Plan(planOpts)
			if err != nil {
				return err
			}

			for _, line := range tui.RenderStack(plan, format, ctx.Config.GetShowStacked()) {
				ctx.Splog.Page(line + "\n")
			}

			if names := plan.Excluded.Names(); len(names) > 0 {
				ctx.Splog.Debug("Not in stack %s: %s", plan.Stack, strings.Join(names, ", "))
			}
			if len(plan.Protected) > 0 {
				ctx.Splog.Debug("Protected for size or age: %s", strings.Join(plan.Protected, ", "))
			}
			if format != config.FormatSilent {
				if dirty, err := ctx.Repo.IsDirty(); err == nil && dirty {
					ctx.Splog.Tip("Working tree has uncommitted changes")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&stackName, "stack", "", "Branches to include ("+strings.Join(config.StackVariants(), ", ")+")")
	cmd.Flags().StringVar(&base, "base", "", "Stack on this revision instead of the protected base")
	cmd.Flags().StringVar(&formatName, "format", "", "Output format ("+strings.Join(config.FormatVariants(), ", ")+")")
	registerShowCompletions(cmd)

	return cmd
}
