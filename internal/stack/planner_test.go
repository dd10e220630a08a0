package stack_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitstack.dev/gitstack/internal/config"
	"gitstack.dev/gitstack/internal/git"
	"gitstack.dev/gitstack/internal/graph"
	"gitstack.dev/gitstack/internal/stack"
	"gitstack.dev/gitstack/testhelpers"
)

var fixtureEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Debug(string, ...interface{}) {}

func (l *recordingLogger) Warn(format string, args ...interface{}) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func protecting(names ...string) *config.RepoConfig {
	return &config.RepoConfig{ProtectedBranches: names}
}

func graphBranches(plan *stack.Plan) []string {
	var names []string
	for _, branch := range plan.Graph.Branches() {
		names = append(names, branch.Name)
	}
	return names
}

func nodeAt(t *testing.T, repo git.Repo, plan *stack.Plan, name string) *graph.Node {
	t.Helper()
	commit, err := repo.Resolve(name)
	require.NoError(t, err)
	node := plan.Graph.Get(commit.ID)
	require.NotNil(t, node, name)
	return node
}

func scope(s config.Stack) *config.Stack {
	return &s
}

func TestPlanner(t *testing.T) {
	soon := fixtureEpoch.Add(time.Hour)

	t.Run("all branches on the protected base", func(t *testing.T) {
		repo := testhelpers.NewFixtureRepo(t, "../git/testdata/branches.yml")
		plan, err := stack.NewPlanner(repo, protecting("master"), nil).Plan(stack.Options{Now: soon})
		require.NoError(t, err)

		require.Equal(t, "feature2", plan.HeadBranch.Name)
		require.Equal(t, "master", plan.Base.Name)
		require.Equal(t, nodeAt(t, repo, plan, "base").ID(), plan.BaseID)
		require.Equal(t, config.StackAll, plan.Stack)
		require.Equal(t, []string{"base", "feature1", "feature2", "master", "off_master"}, graphBranches(plan))
		require.Equal(t, []string{"initial"}, plan.Excluded.Names())

		require.True(t, nodeAt(t, repo, plan, "base").Action.IsProtected())
		require.True(t, nodeAt(t, repo, plan, "master").Action.IsProtected())
		require.True(t, nodeAt(t, repo, plan, "feature1").Action.IsPick())
		require.True(t, nodeAt(t, repo, plan, "feature1").Pushable)
		require.True(t, nodeAt(t, repo, plan, "feature2").Pushable)
		require.True(t, nodeAt(t, repo, plan, "off_master").Pushable)
		require.Empty(t, plan.Protected)
	})

	t.Run("stack scopes", func(t *testing.T) {
		tests := []struct {
			scope    config.Stack
			branches []string
		}{
			{scope: config.StackCurrent, branches: []string{"base", "feature1", "feature2"}},
			{scope: config.StackDependents, branches: []string{"base", "feature1", "feature2"}},
			{scope: config.StackDescendants, branches: []string{"base", "feature1", "feature2", "master", "off_master"}},
		}
		for _, tt := range tests {
			t.Run(tt.scope.String(), func(t *testing.T) {
				repo := testhelpers.NewFixtureRepo(t, "../git/testdata/branches.yml")
				plan, err := stack.NewPlanner(repo, protecting("master"), nil).
					Plan(stack.Options{Stack: scope(tt.scope), Now: soon})
				require.NoError(t, err)
				require.Equal(t, tt.scope, plan.Stack)
				require.Equal(t, tt.branches, graphBranches(plan))
			})
		}
	})

	t.Run("configured scope", func(t *testing.T) {
		repo := testhelpers.NewFixtureRepo(t, "../git/testdata/branches.yml")
		cfg := protecting("master")
		cfg.Stack = scope(config.StackDependents)
		plan, err := stack.NewPlanner(repo, cfg, nil).Plan(stack.Options{Now: soon})
		require.NoError(t, err)
		require.Equal(t, []string{"initial", "master", "off_master"}, plan.Excluded.Names())
	})

	t.Run("explicit base", func(t *testing.T) {
		repo := testhelpers.NewFixtureRepo(t, "../git/testdata/branches.yml")
		plan, err := stack.NewPlanner(repo, protecting("master"), nil).
			Plan(stack.Options{Base: "initial", Now: soon})
		require.NoError(t, err)
		require.Equal(t, "initial", plan.Base.Name)
		require.Equal(t, 6, plan.Graph.Len())
		require.True(t, plan.Excluded.IsEmpty())
	})

	t.Run("no protected base stacks on HEAD", func(t *testing.T) {
		repo := testhelpers.NewFixtureRepo(t, "../git/testdata/branches.yml")
		log := &recordingLogger{}
		plan, err := stack.NewPlanner(repo, protecting(), log).Plan(stack.Options{Now: soon})
		require.NoError(t, err)

		require.Nil(t, plan.Base)
		require.Equal(t, plan.Head.ID, plan.BaseID)
		require.Equal(t, 1, plan.Graph.Len())
		require.Len(t, log.warnings, 1)
		require.Contains(t, log.warnings[0], "feature2")
	})

	t.Run("stale branches are protected except HEAD", func(t *testing.T) {
		repo := testhelpers.NewFixtureRepo(t, "../git/testdata/branches.yml")
		plan, err := stack.NewPlanner(repo, protecting("master"), nil).
			Plan(stack.Options{Now: fixtureEpoch.Add(30 * 24 * time.Hour)})
		require.NoError(t, err)

		require.Equal(t, []string{"feature1", "off_master"}, plan.Protected)
		require.True(t, nodeAt(t, repo, plan, "feature2").Action.IsPick())
		require.True(t, nodeAt(t, repo, plan, "feature2").Pushable)
	})

	t.Run("unknown base", func(t *testing.T) {
		repo := testhelpers.NewFixtureRepo(t, "../git/testdata/branches.yml")
		_, err := stack.NewPlanner(repo, protecting("master"), nil).Plan(stack.Options{Base: "nope"})
		require.Error(t, err)
	})

	t.Run("empty repository", func(t *testing.T) {
		_, err := stack.NewPlanner(git.NewInMemoryRepo(), protecting("main"), nil).Plan(stack.Options{})
		require.Error(t, err)
	})
}

const fixupStack = `
head: feature
events:
  - commit: root
    branch: main
  - commit: add widget
  - commit: polish
  - commit: "fixup! add widget"
    branch: feature
`

func TestPlannerFixups(t *testing.T) {
	soon := fixtureEpoch.Add(time.Hour)

	tests := []struct {
		policy config.Fixup
		want   graph.ActionKind
		fixups int
	}{
		{policy: config.FixupIgnore, want: graph.ActionPick, fixups: 0},
		{policy: config.FixupMove, want: graph.ActionFixup, fixups: 1},
		{policy: config.FixupSquash, want: graph.ActionSquash, fixups: 1},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			repo := testhelpers.NewDagRepo(t, fixupStack)
			cfg := protecting("main")
			cfg.AutoFixup = &tt.policy

			plan, err := stack.NewPlanner(repo, cfg, nil).Plan(stack.Options{Now: soon})
			require.NoError(t, err)
			require.Equal(t, tt.fixups, plan.Fixups)

			node := nodeAt(t, repo, plan, "feature")
			require.Equal(t, tt.want, node.Action.Kind)
			require.False(t, node.Pushable)
		})
	}
}
