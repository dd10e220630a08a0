package cli_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gitstack.dev/gitstack/testhelpers"
	"gitstack.dev/gitstack/testhelpers/scenario"
)

func TestShowCommand(t *testing.T) {
	t.Run("stacked branches", func(t *testing.T) {
		s := scenario.NewScenario(t, testhelpers.StackSceneSetup)

		output := s.RunCli("show", "--format", "branches")
		testhelpers.ExpectLines(t, output, []string{
			"    ◉ feature2 (ready)",
			"  ◯ feature1 (ready)",
			"◆ main (base)",
		})
	})

	t.Run("flat layout from config", func(t *testing.T) {
		s := scenario.NewScenario(t, testhelpers.StackSceneSetup).
			Configure("stack.show-stacked", "false").
			Configure("stack.show-format", "branches")

		testhelpers.ExpectLines(t, s.RunCli("show"), []string{
			"◉ feature2 (ready)",
			"◯ feature1 (ready)",
			"◆ main (base)",
		})
	})

	t.Run("branch commits by default", func(t *testing.T) {
		s := scenario.NewScenario(t, testhelpers.StackSceneSetup)

		output := s.RunCli("show")
		lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
		require.Len(t, lines, 6)
		require.Equal(t, "    ◉ feature2 (ready)", lines[0])
		require.True(t, strings.HasSuffix(lines[1], " feature2 one"), lines[1])
		require.Equal(t, "  ◯ feature1 (ready)", lines[2])
		require.True(t, strings.HasSuffix(lines[3], " feature1 two"), lines[3])
		require.True(t, strings.HasSuffix(lines[4], " feature1 one"), lines[4])
		require.Equal(t, "◆ main (base)", lines[5])
	})

	t.Run("stack scope", func(t *testing.T) {
		s := scenario.NewScenario(t, testhelpers.StackSceneSetup).
			Checkout("main").
			CreateBranch("other").
			CommitChange("other", "other one").
			Checkout("feature2")

		current := s.RunCli("show", "--format", "branches", "--stack", "current")
		require.NotContains(t, current, "other")

		all := s.RunCli("show", "--format", "branches", "--stack", "all")
		require.Contains(t, all, "◯ other (ready)")
	})

	t.Run("explicit base", func(t *testing.T) {
		s := scenario.NewScenario(t, testhelpers.StackSceneSetup)

		testhelpers.ExpectLines(t, s.RunCli("show", "--format", "branches", "--base", "feature1"), []string{
			"  ◉ feature2 (ready)",
			"◆ feature1 (base)",
		})
	})

	t.Run("large branches are protected", func(t *testing.T) {
		s := scenario.NewScenario(t, testhelpers.StackSceneSetup).
			Configure("stack.protect-commit-count", "1")

		testhelpers.ExpectLines(t, s.RunCli("show", "--format", "branches"), []string{
			"    ◉ feature2 (ready)",
			"  ◆ feature1 (protected)",
			"◆ main (base)",
		})
	})

	t.Run("silent", func(t *testing.T) {
		s := scenario.NewScenario(t, testhelpers.StackSceneSetup)
		require.Empty(t, s.RunCli("show", "--format", "silent"))
	})

	t.Run("debug lists excluded branches", func(t *testing.T) {
		s := scenario.NewScenario(t, testhelpers.StackSceneSetup).
			Checkout("main").
			CreateBranch("other").
			CommitChange("other", "other one").
			Checkout("feature2")

		output := s.RunCli("--debug", "show", "--stack", "current", "--format", "branches")
		require.Contains(t, output, "Not in stack current: other")
	})

	t.Run("uncommitted changes hint", func(t *testing.T) {
		s := scenario.NewScenario(t, testhelpers.StackSceneSetup).WithUncommittedChange("dirty")
		require.Contains(t, s.RunCli("show"), "hint: Working tree has uncommitted changes")
	})

	t.Run("invalid flags", func(t *testing.T) {
		s := scenario.NewScenario(t, testhelpers.StackSceneSetup)

		require.Contains(t, s.RunExpectError("show", "--format", "fancy"), "valid values")
		require.Contains(t, s.RunExpectError("show", "--stack", "everything"), "valid values")
		s.RunExpectError("show", "--base", "does-not-exist")
	})

	t.Run("outside a repository", func(t *testing.T) {
		s := scenario.NewScenario(t, testhelpers.StackSceneSetup)
		s.RunExpectError("-C", t.TempDir(), "show")
	})
}
