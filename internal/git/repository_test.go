package git_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	stackerrors "gitstack.dev/gitstack/internal/errors"
	"gitstack.dev/gitstack/internal/git"
	"gitstack.dev/gitstack/testhelpers"
)

func TestGoGitRepo(t *testing.T) {
	scene := testhelpers.NewScene(t, func(s *testhelpers.Scene) error {
		return s.Repo.CreateChangeAndCommit("initial", "init")
	})

	// main -> feature1 -> feature2, main -> other
	require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature1"))
	require.NoError(t, scene.Repo.CreateChangeAndCommit("feature1 change", "f1"))
	require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature2"))
	require.NoError(t, scene.Repo.CreateChangeAndCommit("feature2 change", "f2"))
	require.NoError(t, scene.Repo.CheckoutBranch("main"))
	require.NoError(t, scene.Repo.CreateAndCheckoutBranch("other"))
	require.NoError(t, scene.Repo.CreateChangeAndCommit("other change", "o"))
	require.NoError(t, scene.Repo.CheckoutBranch("feature2"))

	repo, err := git.OpenRepository(scene.Dir)
	require.NoError(t, err)

	t.Run("lists local branches", func(t *testing.T) {
		branches, err := repo.LocalBranches()
		require.NoError(t, err)
		require.Equal(t,
			[]string{"feature1", "feature2", "main", "other"},
			git.NewBranches(branches).Names())
	})

	t.Run("reports the checked out branch", func(t *testing.T) {
		head, err := repo.HeadBranch()
		require.NoError(t, err)
		require.NotNil(t, head)
		require.Equal(t, "feature2", head.Name)
	})

	t.Run("shares commits through the arena", func(t *testing.T) {
		first, err := repo.Resolve("feature1")
		require.NoError(t, err)
		second, err := repo.Commit(first.ID)
		require.NoError(t, err)
		require.Same(t, first, second)
		require.Equal(t, "feature1 change", first.Summary)
	})

	t.Run("merge base matches git", func(t *testing.T) {
		sha, err := scene.Repo.GetRevision("main")
		require.NoError(t, err)

		fork, ok, err := repo.MergeBase(resolveID(t, repo, "other"), resolveID(t, repo, "feature2"))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, sha, fork.String())
	})

	t.Run("classifies the stack", func(t *testing.T) {
		branches, err := repo.LocalBranches()
		require.NoError(t, err)
		index := git.NewBranches(branches)

		main := resolveID(t, repo, "main")
		head := resolveID(t, repo, "feature1")

		dependents, err := index.Dependents(repo, main, head)
		require.NoError(t, err)
		require.Equal(t, []string{"feature1", "feature2", "main"}, dependents.Names())

		protected := index.Protected(protect(t, "main"))
		base, err := git.FindProtectedBase(repo, protected, resolveID(t, repo, "feature2"))
		require.NoError(t, err)
		require.Equal(t, "main", base.Name)
	})

	t.Run("unknown revisions", func(t *testing.T) {
		_, err := repo.Resolve("does-not-exist")
		require.ErrorIs(t, err, stackerrors.ErrBranchNotFound)
	})

	t.Run("dirty worktree", func(t *testing.T) {
		dirty, err := repo.IsDirty()
		require.NoError(t, err)
		require.False(t, dirty)

		require.NoError(t, scene.Repo.CreateChange("uncommitted", "dirty", true))
		dirty, err = repo.IsDirty()
		require.NoError(t, err)
		require.True(t, dirty)
	})
}
