package graph

import (
	"errors"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"

	stackerrors "gitstack.dev/gitstack/internal/errors"
	"gitstack.dev/gitstack/internal/git"
)

// Graph maps commit ids to nodes for everything between a base commit and the
// branch tips stacked on it.
//
// Boundary holds commits with a parent outside the graph (merges from below
// the base). They are marked rather than dropped.
type Graph struct {
	root     plumbing.Hash
	nodes    map[plumbing.Hash]*Node
	boundary map[plumbing.Hash]struct{}
}

// New creates a graph holding only root
func New(root *Node) *Graph {
	return &Graph{
		root:     root.ID(),
		nodes:    map[plumbing.Hash]*Node{root.ID(): root},
		boundary: make(map[plumbing.Hash]struct{}),
	}
}

// Root returns the base commit id
func (g *Graph) Root() plumbing.Hash {
	return g.root
}

// RootNode returns the base node
func (g *Graph) RootNode() *Node {
	return g.nodes[g.root]
}

// Get returns the node for id, or nil
func (g *Graph) Get(id plumbing.Hash) *Node {
	return g.nodes[id]
}

// Contains reports whether id is in the graph
func (g *Graph) Contains(id plumbing.Hash) bool {
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.nodes)
}

// IDs returns every node id in a stable order
func (g *Graph) IDs() []plumbing.Hash {
	ids := make([]plumbing.Hash, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// IsBoundary reports whether id has a parent outside the graph
func (g *Graph) IsBoundary(id plumbing.Hash) bool {
	_, ok := g.boundary[id]
	return ok
}

// Parents returns the parents of id that are part of the graph
func (g *Graph) Parents(id plumbing.Hash) []plumbing.Hash {
	node := g.nodes[id]
	if node == nil || id == g.root {
		return nil
	}
	var parents []plumbing.Hash
	for _, parentID := range node.Commit.ParentIDs {
		if _, ok := g.nodes[parentID]; ok {
			parents = append(parents, parentID)
		}
	}
	return parents
}

// Branches returns every branch attached to a node, sorted by name
func (g *Graph) Branches() []git.Branch {
	var branches []git.Branch
	for _, node := range g.nodes {
		branches = append(branches, node.Branches...)
	}
	sort.Slice(branches, func(i, j int) bool {
		return branches[i].Name < branches[j].Name
	})
	return branches
}

// Insert adds node, merging it into an existing node for the same commit
func (g *Graph) Insert(node *Node) error {
	if existing, ok := g.nodes[node.ID()]; ok {
		return existing.Update(node)
	}
	g.nodes[node.ID()] = node
	return nil
}

// Merge folds other into g. Either every node merges or g is left unchanged.
func (g *Graph) Merge(other *Graph) error {
	if g.root != other.root {
		return stackerrors.NewInvariantError("merge graph",
			"graph rooted at %s merged with graph rooted at %s", g.root, other.root)
	}
	for id, node := range other.nodes {
		existing, ok := g.nodes[id]
		if !ok {
			continue
		}
		if !existing.Action.IsPick() && !node.Action.IsPick() && existing.Action != node.Action {
			return stackerrors.NewInvariantError("merge graph",
				"commit %s has conflicting actions %s and %s", id, existing.Action, node.Action)
		}
	}

	for _, id := range other.IDs() {
		if err := g.Insert(other.nodes[id]); err != nil {
			return err
		}
	}
	for id := range other.boundary {
		g.boundary[id] = struct{}{}
	}
	return nil
}

// Validate checks that every child link points at a node in the graph
func (g *Graph) Validate() error {
	for _, id := range g.IDs() {
		for childID := range g.nodes[id].Children {
			if _, ok := g.nodes[childID]; !ok {
				return stackerrors.NewInvariantError("validate graph",
					"commit %s has dangling child %s", id, childID)
			}
		}
	}
	for id := range g.boundary {
		if _, ok := g.nodes[id]; !ok {
			return stackerrors.NewInvariantError("validate graph", "boundary commit %s is not in the graph", id)
		}
	}
	return nil
}

// TopoOrder returns node ids with every parent before its children
func (g *Graph) TopoOrder() []plumbing.Hash {
	pending := make(map[plumbing.Hash]int, len(g.nodes))
	for id := range g.nodes {
		pending[id] = len(g.Parents(id))
	}

	var ready []plumbing.Hash
	for _, id := range g.IDs() {
		if pending[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]plumbing.Hash, 0, len(g.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, childID := range g.nodes[id].ChildIDs() {
			pending[childID]--
			if pending[childID] == 0 {
				ready = append(ready, childID)
			}
		}
	}
	return order
}

// Build walks back from every branch tip in branches until it reaches base and
// merges the passes into one graph. Branches are claimed from the index as
// their commits are visited, so pass a clone when the index is still needed.
// Tips that do not descend from base are left in the index.
func Build(repo git.Repo, base plumbing.Hash, branches *git.Branches) (*Graph, error) {
	rootCommit, err := repo.Commit(base)
	if err != nil {
		if errors.Is(err, stackerrors.ErrCommitNotFound) {
			return nil, stackerrors.NewInvariantError("build graph", "unknown base %s", base)
		}
		return nil, err
	}

	below := make(map[plumbing.Hash]struct{})
	for commit, err := range repo.CommitsFrom(base) {
		if err != nil {
			return nil, err
		}
		if commit.ID != base {
			below[commit.ID] = struct{}{}
		}
	}

	g := New(NewNode(rootCommit).WithBranches(branches))
	for _, tip := range branches.IDs() {
		if g.Contains(tip) || !branches.Contains(tip) {
			continue
		}
		fork, ok, err := repo.MergeBase(tip, base)
		if err != nil {
			return nil, err
		}
		if !ok || fork != base {
			continue
		}

		partial, err := g.walk(repo, tip, below, branches)
		if err != nil {
			return nil, err
		}
		if err := g.Merge(partial); err != nil {
			return nil, err
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// walk produces the partial graph for one tip. Commits already in g are linked
// but not descended into.
func (g *Graph) walk(repo git.Repo, tip plumbing.Hash, below map[plumbing.Hash]struct{}, branches *git.Branches) (*Graph, error) {
	tipCommit, err := repo.Commit(tip)
	if err != nil {
		return nil, err
	}

	partial := &Graph{
		root:     g.root,
		nodes:    map[plumbing.Hash]*Node{tip: NewNode(tipCommit).WithBranches(branches)},
		boundary: make(map[plumbing.Hash]struct{}),
	}

	stack := []plumbing.Hash{tip}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, parentID := range partial.nodes[id].Commit.ParentIDs {
			if _, ok := below[parentID]; ok {
				partial.boundary[id] = struct{}{}
				continue
			}

			parent, ok := partial.nodes[parentID]
			if !ok {
				if known, walked := g.nodes[parentID]; walked {
					parent = NewNode(known.Commit)
				} else {
					commit, err := repo.Commit(parentID)
					if err != nil {
						return nil, err
					}
					parent = NewNode(commit).WithBranches(branches)
					stack = append(stack, parentID)
				}
				partial.nodes[parentID] = parent
			}
			parent.AddChild(id)
		}
	}

	partial.prune(g, branches)
	return partial, nil
}

// prune drops commits that do not descend from the base (side lines forking
// below it), returning their branches to the index and marking the cut as
// boundary. Commits already in merged are known to descend from the base.
func (g *Graph) prune(merged *Graph, branches *git.Branches) {
	inRange := make(map[plumbing.Hash]struct{})
	var queue []plumbing.Hash
	for id := range g.nodes {
		if merged.Contains(id) {
			inRange[id] = struct{}{}
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for childID := range g.nodes[id].Children {
			if _, ok := inRange[childID]; !ok {
				inRange[childID] = struct{}{}
				queue = append(queue, childID)
			}
		}
	}

	var pruned []*Node
	for id, node := range g.nodes {
		if _, ok := inRange[id]; ok {
			continue
		}
		for _, branch := range node.Branches {
			branches.Insert(branch)
		}
		pruned = append(pruned, node)
		delete(g.nodes, id)
		delete(g.boundary, id)
	}
	for _, node := range pruned {
		for childID := range node.Children {
			if _, ok := g.nodes[childID]; ok {
				g.boundary[childID] = struct{}{}
			}
		}
	}
}
