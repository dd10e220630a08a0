package git

import (
	"iter"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"

	stackerrors "gitstack.dev/gitstack/internal/errors"
)

// InMemoryRepo is a Repo whose history lives entirely in memory.
// It backs fixtures and tests, and any caller that already has commit data at hand.
type InMemoryRepo struct {
	commits  map[plumbing.Hash]*Commit
	branches map[string]plumbing.Hash
	head     string
	headID   plumbing.Hash
}

// NewInMemoryRepo creates an empty repository
func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		commits:  make(map[plumbing.Hash]*Commit),
		branches: make(map[string]plumbing.Hash),
	}
}

// PushCommit adds a commit to the arena. Parents must already be present.
func (r *InMemoryRepo) PushCommit(commit *Commit) error {
	for _, parentID := range commit.ParentIDs {
		if _, ok := r.commits[parentID]; !ok {
			return stackerrors.NewCommitNotFoundError(parentID.String())
		}
	}
	if commit.Summary == "" {
		commit.Summary = summaryOf(commit.Message)
	}
	r.commits[commit.ID] = commit
	return nil
}

// MarkBranch points a branch at a commit, creating it if needed
func (r *InMemoryRepo) MarkBranch(branch Branch) error {
	if _, ok := r.commits[branch.ID]; !ok {
		return stackerrors.NewCommitNotFoundError(branch.ID.String())
	}
	r.branches[branch.Name] = branch.ID
	if r.head == branch.Name {
		r.headID = branch.ID
	}
	return nil
}

// DeleteBranch removes a branch
func (r *InMemoryRepo) DeleteBranch(name string) {
	delete(r.branches, name)
}

// SetHead checks out a branch
func (r *InMemoryRepo) SetHead(name string) error {
	id, ok := r.branches[name]
	if !ok {
		return stackerrors.NewBranchNotFoundError(name)
	}
	r.head = name
	r.headID = id
	return nil
}

// DetachHead points HEAD directly at a commit
func (r *InMemoryRepo) DetachHead(id plumbing.Hash) error {
	if _, ok := r.commits[id]; !ok {
		return stackerrors.NewCommitNotFoundError(id.String())
	}
	r.head = ""
	r.headID = id
	return nil
}

// Resolve looks up a branch name first, then a full commit hash
func (r *InMemoryRepo) Resolve(name string) (*Commit, error) {
	if id, ok := r.branches[name]; ok {
		return r.Commit(id)
	}
	if plumbing.IsHash(name) {
		return r.Commit(plumbing.NewHash(name))
	}
	return nil, stackerrors.NewBranchNotFoundError(name)
}

// Commit returns a commit from the arena
func (r *InMemoryRepo) Commit(id plumbing.Hash) (*Commit, error) {
	commit, ok := r.commits[id]
	if !ok {
		return nil, stackerrors.NewCommitNotFoundError(id.String())
	}
	return commit, nil
}

// HeadID returns the commit HEAD points at
func (r *InMemoryRepo) HeadID() (plumbing.Hash, error) {
	if r.headID.IsZero() {
		return plumbing.ZeroHash, stackerrors.NewRepoError("head", plumbing.ErrReferenceNotFound)
	}
	return r.headID, nil
}

// HeadBranch returns the checked out branch, or nil when detached
func (r *InMemoryRepo) HeadBranch() (*Branch, error) {
	if r.head == "" {
		return nil, nil
	}
	return &Branch{Name: r.head, ID: r.branches[r.head]}, nil
}

// LocalBranches lists branches sorted by name
func (r *InMemoryRepo) LocalBranches() ([]Branch, error) {
	branches := make([]Branch, 0, len(r.branches))
	for name, id := range r.branches {
		branches = append(branches, Branch{Name: name, ID: id})
	}
	sort.Slice(branches, func(i, j int) bool {
		return branches[i].Name < branches[j].Name
	})
	return branches, nil
}

// MergeBase returns the best common ancestor of a and b
func (r *InMemoryRepo) MergeBase(a, b plumbing.Hash) (plumbing.Hash, bool, error) {
	return mergeBase(r.Commit, a, b)
}

// CommitsFrom walks id and its ancestors, newest first
func (r *InMemoryRepo) CommitsFrom(id plumbing.Hash) iter.Seq2[*Commit, error] {
	return walkFrom(r.Commit, id)
}

// IsDirty is always false; there is no working tree
func (r *InMemoryRepo) IsDirty() (bool, error) {
	return false, nil
}
