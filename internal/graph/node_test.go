package graph_test

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"

	stackerrors "gitstack.dev/gitstack/internal/errors"
	"gitstack.dev/gitstack/internal/git"
	"gitstack.dev/gitstack/internal/graph"
	"gitstack.dev/gitstack/testhelpers"
)

func commitOf(t *testing.T, repo git.Repo, name string) *git.Commit {
	t.Helper()
	commit, err := repo.Resolve(name)
	require.NoError(t, err)
	return commit
}

func TestNodeUpdate(t *testing.T) {
	repo := testhelpers.NewFixtureRepo(t, "../git/testdata/branches.yml")
	base := commitOf(t, repo, "base")
	feature1 := commitOf(t, repo, "feature1")
	master := commitOf(t, repo, "master")

	t.Run("unions branches and children", func(t *testing.T) {
		left := graph.NewNode(base)
		left.Branches = []git.Branch{{Name: "base", ID: base.ID}}
		left.AddChild(feature1.ID)

		right := graph.NewNode(base)
		right.Branches = []git.Branch{{Name: "other", ID: base.ID}}
		right.AddChild(master.ID)
		right.Pushable = true

		require.NoError(t, left.Update(right))
		require.True(t, left.HasBranch("base"))
		require.True(t, left.HasBranch("other"))
		require.ElementsMatch(t, []plumbing.Hash{feature1.ID, master.ID}, left.ChildIDs())
		require.True(t, left.Pushable)
		require.True(t, left.Action.IsPick())
	})

	t.Run("non-pick action wins either way", func(t *testing.T) {
		protected := graph.NewNode(base)
		protected.Action = graph.Protect

		first := graph.NewNode(base)
		require.NoError(t, first.Update(protected.Clone()))
		require.Equal(t, graph.Protect, first.Action)

		second := protected.Clone()
		require.NoError(t, second.Update(graph.NewNode(base)))
		require.Equal(t, graph.Protect, second.Action)
	})

	t.Run("update is commutative", func(t *testing.T) {
		a := graph.NewNode(base)
		a.AddChild(feature1.ID)
		a.Action = graph.Fixup(master.ID)

		b := graph.NewNode(base)
		b.AddChild(master.ID)
		b.Pushable = true

		ab := a.Clone()
		require.NoError(t, ab.Update(b.Clone()))
		ba := b.Clone()
		require.NoError(t, ba.Update(a.Clone()))

		require.Equal(t, ab.Action, ba.Action)
		require.Equal(t, ab.Pushable, ba.Pushable)
		require.Equal(t, ab.ChildIDs(), ba.ChildIDs())
	})

	t.Run("mismatched commits are rejected", func(t *testing.T) {
		node := graph.NewNode(base)
		err := node.Update(graph.NewNode(feature1))
		require.ErrorIs(t, err, stackerrors.ErrInvariantViolation)
	})

	t.Run("conflicting actions are rejected without changes", func(t *testing.T) {
		node := graph.NewNode(base)
		node.Action = graph.Fixup(feature1.ID)

		other := graph.NewNode(base)
		other.Action = graph.Squash(feature1.ID)
		other.AddChild(master.ID)

		err := node.Update(other)
		require.ErrorIs(t, err, stackerrors.ErrInvariantViolation)
		require.Equal(t, graph.Fixup(feature1.ID), node.Action)
		require.Empty(t, node.ChildIDs())
	})

	t.Run("matching actions merge", func(t *testing.T) {
		node := graph.NewNode(base)
		node.Action = graph.Protect
		other := graph.NewNode(base)
		other.Action = graph.Protect
		require.NoError(t, node.Update(other))
	})
}

func TestNodeWithBranches(t *testing.T) {
	repo := testhelpers.NewFixtureRepo(t, "../git/testdata/branches.yml")
	base := commitOf(t, repo, "base")

	branches, err := repo.LocalBranches()
	require.NoError(t, err)
	index := git.NewBranches(branches)
	index.Insert(git.Branch{Name: "base-alias", ID: base.ID})

	first := graph.NewNode(base).WithBranches(index)
	require.Len(t, first.Branches, 2)
	require.True(t, first.HasBranch("base"))
	require.True(t, first.HasBranch("base-alias"))
	require.False(t, index.Contains(base.ID))

	second := graph.NewNode(base).WithBranches(index)
	require.Empty(t, second.Branches)
}

func TestNodeClone(t *testing.T) {
	repo := testhelpers.NewFixtureRepo(t, "../git/testdata/branches.yml")
	base := commitOf(t, repo, "base")
	feature1 := commitOf(t, repo, "feature1")

	node := graph.NewNode(base)
	clone := node.Clone()
	clone.AddChild(feature1.ID)
	clone.Branches = append(clone.Branches, git.Branch{Name: "x", ID: base.ID})

	require.Empty(t, node.ChildIDs())
	require.Empty(t, node.Branches)
	require.Same(t, node.Commit, clone.Commit)
}
