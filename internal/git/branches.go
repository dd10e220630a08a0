package git

import (
	"errors"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"

	stackerrors "gitstack.dev/gitstack/internal/errors"
)

// Branches indexes local branches by the commit they point at.
// Several branches may share a commit.
type Branches struct {
	branches map[plumbing.Hash][]Branch
}

// NewBranches builds an index from a list of branches
func NewBranches(branches []Branch) *Branches {
	b := &Branches{branches: make(map[plumbing.Hash][]Branch)}
	for _, branch := range branches {
		b.Insert(branch)
	}
	return b
}

// Insert adds a branch to the index
func (b *Branches) Insert(branch Branch) {
	b.branches[branch.ID] = append(b.branches[branch.ID], branch)
}

// Contains reports whether any branch points at id
func (b *Branches) Contains(id plumbing.Hash) bool {
	return len(b.branches[id]) > 0
}

// Get returns the branches at id without claiming them
func (b *Branches) Get(id plumbing.Hash) []Branch {
	return b.branches[id]
}

// Remove detaches and returns every branch at id.
// Later calls for the same id return nil, so each branch is claimed once.
func (b *Branches) Remove(id plumbing.Hash) []Branch {
	branches := b.branches[id]
	delete(b.branches, id)
	return branches
}

// All returns a copy of the full index
func (b *Branches) All() map[plumbing.Hash][]Branch {
	all := make(map[plumbing.Hash][]Branch, len(b.branches))
	for id, branches := range b.branches {
		all[id] = append([]Branch(nil), branches...)
	}
	return all
}

// Clone returns an independent copy, so claims on one do not affect the other
func (b *Branches) Clone() *Branches {
	return &Branches{branches: b.All()}
}

// IDs returns the indexed commit ids in a stable order
func (b *Branches) IDs() []plumbing.Hash {
	ids := make([]plumbing.Hash, 0, len(b.branches))
	for id := range b.branches {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// Names returns every branch name, sorted
func (b *Branches) Names() []string {
	var names []string
	for _, branches := range b.branches {
		for _, branch := range branches {
			names = append(names, branch.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Len returns the number of branches (not commits) in the index
func (b *Branches) Len() int {
	n := 0
	for _, branches := range b.branches {
		n += len(branches)
	}
	return n
}

// IsEmpty reports whether the index holds no branches
func (b *Branches) IsEmpty() bool {
	return len(b.branches) == 0
}

func (b *Branches) filter(keep func(id plumbing.Hash, branch Branch) (bool, error)) (*Branches, error) {
	result := &Branches{branches: make(map[plumbing.Hash][]Branch)}
	for _, id := range b.IDs() {
		for _, branch := range b.branches[id] {
			ok, err := keep(id, branch)
			if err != nil {
				return nil, err
			}
			if ok {
				result.Insert(branch)
			}
		}
	}
	return result, nil
}

// Descendants returns the branches that have base as an ancestor, base included.
// Sibling lines that fork off base are part of the result.
func (b *Branches) Descendants(repo Repo, base plumbing.Hash) (*Branches, error) {
	if err := requireCommit(repo, "descendants", base); err != nil {
		return nil, err
	}
	return b.filter(func(id plumbing.Hash, _ Branch) (bool, error) {
		return isDescendant(repo, id, base)
	})
}

// Dependents narrows Descendants to the lineage continuing towards head.
// A descendant whose only shared history with head is base itself sits on an
// unrelated line and is dropped.
func (b *Branches) Dependents(repo Repo, base, head plumbing.Hash) (*Branches, error) {
	if err := requireCommit(repo, "dependents", base); err != nil {
		return nil, err
	}
	if err := requireCommit(repo, "dependents", head); err != nil {
		return nil, err
	}
	return b.filter(func(id plumbing.Hash, _ Branch) (bool, error) {
		if id != base {
			headBase, ok, err := repo.MergeBase(id, head)
			if err != nil {
				return false, err
			}
			if ok && headBase == base {
				return false, nil
			}
		}
		return isDescendant(repo, id, base)
	})
}

// Branch returns only the branches on the ancestry path from base to head, both ends included.
func (b *Branches) Branch(repo Repo, base, head plumbing.Hash) (*Branches, error) {
	if err := requireCommit(repo, "branch", base); err != nil {
		return nil, err
	}
	if err := requireCommit(repo, "branch", head); err != nil {
		return nil, err
	}
	return b.filter(func(id plumbing.Hash, _ Branch) (bool, error) {
		headBase, ok, err := repo.MergeBase(id, head)
		if err != nil {
			return false, err
		}
		if !ok || headBase != id {
			return false, nil
		}
		return isDescendant(repo, id, base)
	})
}

// Protected returns the branches whose names the matcher protects
func (b *Branches) Protected(protected *ProtectedBranches) *Branches {
	result, _ := b.filter(func(_ plumbing.Hash, branch Branch) (bool, error) {
		return protected.IsProtected(branch.Name), nil
	})
	return result
}

// FindProtectedBase walks up from head and returns the protected branch whose
// fork point with head is reached first. It returns nil when protected is empty
// or shares no history with head.
func FindProtectedBase(repo Repo, protected *Branches, head plumbing.Hash) (*Branch, error) {
	if err := requireCommit(repo, "find protected base", head); err != nil {
		return nil, err
	}
	if protected.IsEmpty() {
		return nil, nil
	}

	forkPoints := make(map[plumbing.Hash][]plumbing.Hash)
	for _, id := range protected.IDs() {
		fork, ok, err := repo.MergeBase(head, id)
		if err != nil {
			return nil, err
		}
		if ok {
			forkPoints[fork] = append(forkPoints[fork], id)
		}
	}
	if len(forkPoints) == 0 {
		return nil, nil
	}

	for commit, err := range repo.CommitsFrom(head) {
		if err != nil {
			return nil, err
		}
		ids, ok := forkPoints[commit.ID]
		if !ok {
			continue
		}
		// Prefer a protected branch sitting on the fork point itself
		for _, id := range ids {
			if id == commit.ID {
				branch := protected.Get(id)[0]
				return &branch, nil
			}
		}
		branch := protected.Get(ids[0])[0]
		return &branch, nil
	}
	return nil, nil
}

func isDescendant(repo Repo, id, base plumbing.Hash) (bool, error) {
	fork, ok, err := repo.MergeBase(id, base)
	if err != nil {
		return false, err
	}
	return ok && fork == base, nil
}

// requireCommit turns an unknown id into an invariant violation: callers resolve
// ids from real refs, so absence means a stale handle.
func requireCommit(repo Repo, op string, id plumbing.Hash) error {
	if _, err := repo.Commit(id); err != nil {
		if errors.Is(err, stackerrors.ErrCommitNotFound) {
			return stackerrors.NewInvariantError(op, "unknown commit %s", id)
		}
		return err
	}
	return nil
}
