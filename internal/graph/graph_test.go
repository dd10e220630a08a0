package graph_test

import (
	"sort"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"

	stackerrors "gitstack.dev/gitstack/internal/errors"
	"gitstack.dev/gitstack/internal/git"
	"gitstack.dev/gitstack/internal/graph"
	"gitstack.dev/gitstack/testhelpers"
)

func allBranches(t *testing.T, repo git.Repo) *git.Branches {
	t.Helper()
	branches, err := repo.LocalBranches()
	require.NoError(t, err)
	return git.NewBranches(branches)
}

func summaries(g *graph.Graph) []string {
	var result []string
	for _, id := range g.IDs() {
		result = append(result, g.Get(id).Commit.Summary)
	}
	sort.Strings(result)
	return result
}

func branchNames(g *graph.Graph) []string {
	var names []string
	for _, branch := range g.Branches() {
		names = append(names, branch.Name)
	}
	return names
}

func nodeBySummary(t *testing.T, g *graph.Graph, summary string) *graph.Node {
	t.Helper()
	for _, id := range g.IDs() {
		if node := g.Get(id); node.Commit.Summary == summary {
			return node
		}
	}
	t.Fatalf("no commit %q in graph", summary)
	return nil
}

func TestBuild(t *testing.T) {
	t.Run("stacks on base", func(t *testing.T) {
		repo := testhelpers.NewFixtureRepo(t, "../git/testdata/branches.yml")
		base := commitOf(t, repo, "base")
		index := allBranches(t, repo)

		g, err := graph.Build(repo, base.ID, index)
		require.NoError(t, err)

		require.Equal(t, base.ID, g.Root())
		require.Equal(t,
			[]string{"base", "feature1", "feature2", "master commit", "off master"},
			summaries(g))
		require.Equal(t,
			[]string{"base", "feature1", "feature2", "master", "off_master"},
			branchNames(g))
		require.Equal(t, []string{"initial"}, index.Names())
		require.Empty(t, g.Parents(g.Root()))
	})

	t.Run("merges are followed within range", func(t *testing.T) {
		repo := testhelpers.NewFixtureRepo(t, "../git/testdata/merges.yml")
		base := commitOf(t, repo, "base")
		index := allBranches(t, repo)

		g, err := graph.Build(repo, base.ID, index)
		require.NoError(t, err)

		require.Equal(t, 9, g.Len())
		require.Equal(t,
			[]string{"base", "feature", "late", "line", "side", "tip", "unrelated"},
			branchNames(g))
		require.Equal(t, []string{"main"}, index.Names())

		remerge := nodeBySummary(t, g, "remerge side")
		require.Len(t, g.Parents(remerge.ID()), 2)
		require.False(t, g.IsBoundary(remerge.ID()))
	})

	t.Run("every branch is attributed once", func(t *testing.T) {
		repo := testhelpers.NewFixtureRepo(t, "../git/testdata/merges.yml")
		root := commitOf(t, repo, "main")
		index := allBranches(t, repo)

		g, err := graph.Build(repo, root.ID, index)
		require.NoError(t, err)

		names := branchNames(g)
		require.Equal(t, allBranches(t, repo).Names(), names)
		require.True(t, index.IsEmpty())
	})

	t.Run("merges from below base become boundary", func(t *testing.T) {
		repo := testhelpers.NewDagRepo(t, `
head: feature
events:
  - commit: root
    branch: main
  - children:
      - - commit: old
          mark: old
          branch: old
      - - commit: base
          branch: base
  - commit: pull old
    merge: [old]
  - commit: pull root
    merge: [main]
  - commit: feature
    branch: feature
`)
		base := commitOf(t, repo, "base")
		index := allBranches(t, repo)

		g, err := graph.Build(repo, base.ID, index)
		require.NoError(t, err)

		require.Equal(t, []string{"base", "feature", "pull old", "pull root"}, summaries(g))
		require.True(t, g.IsBoundary(nodeBySummary(t, g, "pull old").ID()))
		require.True(t, g.IsBoundary(nodeBySummary(t, g, "pull root").ID()))
		require.False(t, g.IsBoundary(nodeBySummary(t, g, "feature").ID()))
		require.Equal(t, []string{"main", "old"}, index.Names())
	})

	t.Run("side chains below base leave only graph commits as boundary", func(t *testing.T) {
		repo := testhelpers.NewDagRepo(t, `
head: feature
events:
  - commit: root
    branch: main
  - children:
      - - commit: old one
          branch: old1
        - commit: old two
          mark: old
          branch: old2
      - - commit: base
          branch: base
  - commit: pull old
    merge: [old]
  - commit: feature
    branch: feature
`)
		base := commitOf(t, repo, "base")
		old1 := commitOf(t, repo, "old1")
		old2 := commitOf(t, repo, "old2")

		// pruning walks a map, so repeat to cover both deletion orders
		for i := 0; i < 20; i++ {
			index := allBranches(t, repo)
			g, err := graph.Build(repo, base.ID, index)
			require.NoError(t, err)
			require.NoError(t, g.Validate())

			require.Equal(t, []string{"base", "feature", "pull old"}, summaries(g))
			require.True(t, g.IsBoundary(nodeBySummary(t, g, "pull old").ID()))
			require.False(t, g.IsBoundary(old1.ID), "iteration %d", i)
			require.False(t, g.IsBoundary(old2.ID), "iteration %d", i)
			require.Equal(t, []string{"main", "old1", "old2"}, index.Names())
		}
	})

	t.Run("unknown base", func(t *testing.T) {
		repo := testhelpers.NewFixtureRepo(t, "../git/testdata/branches.yml")
		_, err := graph.Build(repo, plumbing.NewHash("0123456789abcdef0123456789abcdef01234567"), allBranches(t, repo))
		require.ErrorIs(t, err, stackerrors.ErrInvariantViolation)
	})
}

func TestGraphMerge(t *testing.T) {
	repo := testhelpers.NewFixtureRepo(t, "../git/testdata/branches.yml")
	base := commitOf(t, repo, "base")

	build := func(names ...string) *graph.Graph {
		var branches []git.Branch
		for _, name := range names {
			branches = append(branches, git.Branch{Name: name, ID: commitOf(t, repo, name).ID})
		}
		g, err := graph.Build(repo, base.ID, git.NewBranches(branches))
		require.NoError(t, err)
		return g
	}

	t.Run("order does not matter", func(t *testing.T) {
		left := build("feature2")
		require.NoError(t, left.Merge(build("off_master")))

		right := build("off_master")
		require.NoError(t, right.Merge(build("feature2")))

		require.Equal(t, left.IDs(), right.IDs())
		for _, id := range left.IDs() {
			require.Equal(t, left.Get(id).ChildIDs(), right.Get(id).ChildIDs())
			require.Equal(t, left.Get(id).Branches, right.Get(id).Branches)
		}
		require.NoError(t, left.Validate())
	})

	t.Run("roots must match", func(t *testing.T) {
		other := graph.New(graph.NewNode(commitOf(t, repo, "feature1")))
		err := build("feature2").Merge(other)
		require.ErrorIs(t, err, stackerrors.ErrInvariantViolation)
	})

	t.Run("conflicting actions leave the graph unchanged", func(t *testing.T) {
		g := build("feature2")
		feature1 := commitOf(t, repo, "feature1")
		g.Get(feature1.ID).Action = graph.Fixup(base.ID)

		other := build("feature2")
		other.Get(feature1.ID).Action = graph.Squash(base.ID)
		other.Get(feature1.ID).Pushable = true

		err := g.Merge(other)
		require.ErrorIs(t, err, stackerrors.ErrInvariantViolation)
		require.Equal(t, graph.Fixup(base.ID), g.Get(feature1.ID).Action)
		require.False(t, g.Get(feature1.ID).Pushable)
	})
}

func TestGraphValidate(t *testing.T) {
	repo := testhelpers.NewFixtureRepo(t, "../git/testdata/branches.yml")
	root := graph.NewNode(commitOf(t, repo, "base"))
	root.AddChild(commitOf(t, repo, "feature1").ID)

	err := graph.New(root).Validate()
	require.ErrorIs(t, err, stackerrors.ErrInvariantViolation)
}

func TestGraphTopoOrder(t *testing.T) {
	repo := testhelpers.NewFixtureRepo(t, "../git/testdata/merges.yml")
	g, err := graph.Build(repo, commitOf(t, repo, "main").ID, allBranches(t, repo))
	require.NoError(t, err)

	order := g.TopoOrder()
	require.Len(t, order, g.Len())
	require.Equal(t, g.Root(), order[0])

	position := make(map[plumbing.Hash]int, len(order))
	for i, id := range order {
		position[id] = i
	}
	for _, id := range order {
		for _, parent := range g.Parents(id) {
			require.Less(t, position[parent], position[id])
		}
	}
}
