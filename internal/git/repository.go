package git

import (
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"sort"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"

	stackerrors "gitstack.dev/gitstack/internal/errors"
)

// GoGitRepo is a Repo backed by an on-disk repository opened with go-git.
// Commits are converted once and cached, so every node in a run shares them.
type GoGitRepo struct {
	repo    *gogit.Repository
	workdir string
	gitDir  string
	arena   map[plumbing.Hash]*Commit
}

// OpenRepository opens the repository containing path
func OpenRepository(path string) (*GoGitRepo, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}

	r := &GoGitRepo{
		repo:  repo,
		arena: make(map[plumbing.Hash]*Commit),
	}
	if worktree, err := repo.Worktree(); err == nil {
		r.workdir = worktree.Filesystem.Root()
	}
	if storage, ok := repo.Storer.(*filesystem.Storage); ok {
		r.gitDir = storage.Filesystem().Root()
	}
	return r, nil
}

// Workdir returns the worktree root, empty for bare repositories
func (r *GoGitRepo) Workdir() string {
	return r.workdir
}

// GitDir returns the path of the .git directory
func (r *GoGitRepo) GitDir() string {
	return r.gitDir
}

// Resolve returns the commit a branch name or revision points at
func (r *GoGitRepo) Resolve(name string) (*Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(name))
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, stackerrors.NewBranchNotFoundError(name)
		}
		return nil, stackerrors.NewRepoError("resolve "+name, err)
	}
	return r.Commit(*hash)
}

// Commit returns the commit with the given id
func (r *GoGitRepo) Commit(id plumbing.Hash) (*Commit, error) {
	if commit, ok := r.arena[id]; ok {
		return commit, nil
	}

	obj, err := r.repo.CommitObject(id)
	if err != nil {
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, stackerrors.NewCommitNotFoundError(id.String())
		}
		return nil, stackerrors.NewRepoError("read commit "+id.String(), err)
	}

	commit := fromObject(obj)
	r.arena[id] = commit
	return commit, nil
}

func fromObject(obj *object.Commit) *Commit {
	return &Commit{
		ID:        obj.Hash,
		ParentIDs: append([]plumbing.Hash(nil), obj.ParentHashes...),
		Summary:   summaryOf(obj.Message),
		Message:   obj.Message,
		Time:      obj.Committer.When,
	}
}

// HeadID returns the commit HEAD points at
func (r *GoGitRepo) HeadID() (plumbing.Hash, error) {
	head, err := r.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, stackerrors.NewRepoError("head", err)
	}
	return head.Hash(), nil
}

// HeadBranch returns the checked out branch, or nil when HEAD is detached
func (r *GoGitRepo) HeadBranch() (*Branch, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, stackerrors.NewRepoError("head", err)
	}
	if !head.Name().IsBranch() {
		return nil, nil
	}
	return &Branch{Name: head.Name().Short(), ID: head.Hash()}, nil
}

// LocalBranches lists every local branch, sorted by name
func (r *GoGitRepo) LocalBranches() ([]Branch, error) {
	refs, err := r.repo.Branches()
	if err != nil {
		return nil, stackerrors.NewRepoError("list branches", err)
	}

	var branches []Branch
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name().IsBranch() {
			branches = append(branches, Branch{Name: ref.Name().Short(), ID: ref.Hash()})
		}
		return nil
	})
	if err != nil {
		return nil, stackerrors.NewRepoError("iterate branches", err)
	}

	sort.Slice(branches, func(i, j int) bool {
		return branches[i].Name < branches[j].Name
	})
	return branches, nil
}

// MergeBase returns the best common ancestor using go-git's merge-base search
func (r *GoGitRepo) MergeBase(a, b plumbing.Hash) (plumbing.Hash, bool, error) {
	if a == b {
		if _, err := r.Commit(a); err != nil {
			return plumbing.ZeroHash, false, err
		}
		return a, true, nil
	}

	commitA, err := r.repo.CommitObject(a)
	if err != nil {
		return plumbing.ZeroHash, false, r.lookupError(a, err)
	}
	commitB, err := r.repo.CommitObject(b)
	if err != nil {
		return plumbing.ZeroHash, false, r.lookupError(b, err)
	}

	bases, err := commitA.MergeBase(commitB)
	if err != nil {
		return plumbing.ZeroHash, false, stackerrors.NewRepoError("merge-base", err)
	}
	if len(bases) == 0 {
		return plumbing.ZeroHash, false, nil
	}

	best := fromObject(bases[0])
	for _, base := range bases[1:] {
		if candidate := fromObject(base); newestFirst(candidate, best) < 0 {
			best = candidate
		}
	}
	return best.ID, true, nil
}

func (r *GoGitRepo) lookupError(id plumbing.Hash, err error) error {
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return stackerrors.NewCommitNotFoundError(id.String())
	}
	return stackerrors.NewRepoError("read commit "+id.String(), err)
}

// CommitsFrom walks id and its ancestors, newest first
func (r *GoGitRepo) CommitsFrom(id plumbing.Hash) iter.Seq2[*Commit, error] {
	return walkFrom(r.Commit, id)
}

// IsDirty reports uncommitted changes; bare repositories are never dirty
func (r *GoGitRepo) IsDirty() (bool, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		if errors.Is(err, gogit.ErrIsBareRepository) {
			return false, nil
		}
		return false, stackerrors.NewRepoError("worktree", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return false, stackerrors.NewRepoError("status", err)
	}
	return !status.IsClean(), nil
}
