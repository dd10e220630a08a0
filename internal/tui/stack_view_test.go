package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitstack.dev/gitstack/internal/config"
	"gitstack.dev/gitstack/internal/stack"
	"gitstack.dev/gitstack/testhelpers"
)

func fixturePlan(t *testing.T) *stack.Plan {
	t.Helper()
	repo := testhelpers.NewFixtureRepo(t, "../git/testdata/branches.yml")
	cfg := &config.RepoConfig{ProtectedBranches: []string{"master"}}
	plan, err := stack.NewPlanner(repo, cfg, nil).Plan(stack.Options{
		Now: time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return plan
}

func trimmed(lines []string) []string {
	result := make([]string, len(lines))
	for i, line := range lines {
		result[i] = strings.TrimSpace(line)
	}
	return result
}

func TestRenderStack(t *testing.T) {
	ConfigureColors(false)
	plan := fixturePlan(t)

	t.Run("silent", func(t *testing.T) {
		require.Empty(t, RenderStack(plan, config.FormatSilent, true))
	})

	t.Run("branches", func(t *testing.T) {
		lines := RenderStack(plan, config.FormatBranches, false)
		require.ElementsMatch(t, []string{
			"◉ feature2 (ready)",
			"◯ feature1 (ready)",
			"◯ off_master (ready)",
			"◆ master (protected)",
			"◆ base (base)",
		}, lines)
		require.Equal(t, "◆ base (base)", lines[len(lines)-1])
	})

	t.Run("stacked indents by depth", func(t *testing.T) {
		lines := RenderStack(plan, config.FormatBranches, true)
		require.Contains(t, lines, "    ◉ feature2 (ready)")
		require.Contains(t, lines, "  ◯ feature1 (ready)")
		require.Contains(t, lines, "◆ base (base)")
	})

	t.Run("branch commits", func(t *testing.T) {
		lines := trimmed(RenderStack(plan, config.FormatBranchCommits, false))
		require.Len(t, lines, 9)
		head := plan.Graph.Get(plan.HeadBranch.ID).Commit
		require.Contains(t, lines, head.ShortID()+" feature2")
	})

	t.Run("commits", func(t *testing.T) {
		lines := RenderStack(plan, config.FormatCommits, false)
		require.Len(t, lines, plan.Graph.Len())

		debug := RenderStack(plan, config.FormatDebug, false)
		require.Len(t, debug, plan.Graph.Len())
		for _, line := range debug {
			require.Contains(t, line, "action=")
		}
	})
}
