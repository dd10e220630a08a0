package cli

import (
	"github.com/spf13/cobra"

	"gitstack.dev/gitstack/internal/config"
	"gitstack.dev/gitstack/internal/git"
)

// completeBranches is a helper for cobra.ValidArgsFunction and RegisterFlagCompletionFunc
// that returns all local branch names in the repository.
func completeBranches(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	dir := "."
	if flag := cmd.Flag("repo"); flag != nil {
		dir = flag.Value.String()
	}
	repo, err := git.OpenRepository(dir)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	branches, err := repo.LocalBranches()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	names := make([]string, 0, len(branches))
	for _, branch := range branches {
		names = append(names, branch.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeValues completes a flag from a fixed list
func completeValues(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

func registerShowCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("stack", completeValues(config.StackVariants()))
	_ = cmd.RegisterFlagCompletionFunc("format", completeValues(config.FormatVariants()))
	_ = cmd.RegisterFlagCompletionFunc("base", completeBranches)
}
