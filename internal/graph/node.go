package graph

import (
	"sort"

	"github.com/go-git/go-git/v5/plumbing"

	stackerrors "gitstack.dev/gitstack/internal/errors"
	"gitstack.dev/gitstack/internal/git"
)

// Node is one commit in a stack graph along with the branches pointing at it,
// its planned action, and the children discovered so far.
type Node struct {
	Commit   *git.Commit
	Branches []git.Branch
	Action   Action
	Pushable bool
	Children map[plumbing.Hash]struct{}
}

// NewNode creates a node with no branches, a pick action and no children
func NewNode(commit *git.Commit) *Node {
	return &Node{
		Commit:   commit,
		Action:   Pick,
		Children: make(map[plumbing.Hash]struct{}),
	}
}

// WithBranches claims the branches indexed at this commit
func (n *Node) WithBranches(possible *git.Branches) *Node {
	n.Branches = possible.Remove(n.Commit.ID)
	return n
}

// ID returns the node's commit id
func (n *Node) ID() plumbing.Hash {
	return n.Commit.ID
}

// AddChild records a child commit
func (n *Node) AddChild(id plumbing.Hash) {
	n.Children[id] = struct{}{}
}

// ChildIDs returns the children in a stable order
func (n *Node) ChildIDs() []plumbing.Hash {
	ids := make([]plumbing.Hash, 0, len(n.Children))
	for id := range n.Children {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// HasBranch reports whether a branch with the given name points at this node
func (n *Node) HasBranch(name string) bool {
	for _, branch := range n.Branches {
		if branch.Name == name {
			return true
		}
	}
	return false
}

// Update merges other, a partial node for the same commit, into n.
// Branches append, a non-pick action wins, pushable is sticky and children union.
// On error n is left unchanged.
func (n *Node) Update(other *Node) error {
	if n.Commit.ID != other.Commit.ID {
		return stackerrors.NewInvariantError("merge node",
			"commit %s merged with %s", n.Commit.ID, other.Commit.ID)
	}
	if !n.Action.IsPick() && !other.Action.IsPick() && n.Action != other.Action {
		return stackerrors.NewInvariantError("merge node",
			"commit %s has conflicting actions %s and %s", n.Commit.ID, n.Action, other.Action)
	}

	n.Branches = append(n.Branches, other.Branches...)
	if !other.Action.IsPick() {
		n.Action = other.Action
	}
	if other.Pushable {
		n.Pushable = true
	}
	for id := range other.Children {
		n.Children[id] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy sharing the same commit
func (n *Node) Clone() *Node {
	clone := &Node{
		Commit:   n.Commit,
		Branches: append([]git.Branch(nil), n.Branches...),
		Action:   n.Action,
		Pushable: n.Pushable,
		Children: make(map[plumbing.Hash]struct{}, len(n.Children)),
	}
	for id := range n.Children {
		clone.Children[id] = struct{}{}
	}
	return clone
}
