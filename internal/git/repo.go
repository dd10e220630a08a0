package git

import (
	"iter"

	"github.com/go-git/go-git/v5/plumbing"
)

// Repo is the read-only view of a repository that classification runs against.
// Implementations must be deterministic for the duration of a run.
type Repo interface {
	// Resolve returns the commit a branch name or revision points at
	Resolve(name string) (*Commit, error)
	// Commit returns the commit with the given id, or a CommitNotFoundError
	Commit(id plumbing.Hash) (*Commit, error)
	// HeadID returns the commit HEAD points at
	HeadID() (plumbing.Hash, error)
	// HeadBranch returns the checked out branch, nil when HEAD is detached
	HeadBranch() (*Branch, error)
	// LocalBranches lists every local branch
	LocalBranches() ([]Branch, error)
	// MergeBase returns the best common ancestor of a and b; ok is false when they share no history
	MergeBase(a, b plumbing.Hash) (base plumbing.Hash, ok bool, err error)
	// CommitsFrom walks id and all of its ancestors, newest first
	CommitsFrom(id plumbing.Hash) iter.Seq2[*Commit, error]
	// IsDirty reports uncommitted changes in the working tree
	IsDirty() (bool, error)
}
