package graph

import (
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"

	"gitstack.dev/gitstack/internal/git"
)

// ProtectBranches protects every commit carrying a protected branch and
// everything below it in the graph.
func ProtectBranches(g *Graph, protected *git.ProtectedBranches) {
	for _, id := range g.IDs() {
		for _, branch := range g.nodes[id].Branches {
			if protected.IsProtected(branch.Name) {
				g.protectFrom(id)
				break
			}
		}
	}
}

func (g *Graph) protectFrom(id plumbing.Hash) {
	stack := []plumbing.Hash{id}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := g.nodes[current]
		if node.Action.IsProtected() && current != id {
			continue
		}
		node.Action = Protect
		stack = append(stack, g.Parents(current)...)
	}
}

// BranchCommits returns the commits that belong to the branch at id alone:
// id and its ancestors up to, not including, the next branch, protected
// commit, or the root. stops holds the commits where the walk ended.
func (g *Graph) BranchCommits(id plumbing.Hash) (commits []plumbing.Hash, stops []plumbing.Hash) {
	seen := map[plumbing.Hash]struct{}{id: {}}
	stack := []plumbing.Hash{id}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		commits = append(commits, current)

		for _, parentID := range g.Parents(current) {
			if _, ok := seen[parentID]; ok {
				continue
			}
			seen[parentID] = struct{}{}
			parent := g.nodes[parentID]
			if parentID == g.root || len(parent.Branches) > 0 || parent.Action.IsProtected() {
				stops = append(stops, parentID)
				continue
			}
			stack = append(stack, parentID)
		}
	}
	return commits, stops
}

func (g *Graph) branchNodes(exempt string) []*Node {
	var nodes []*Node
	for _, id := range g.TopoOrder() {
		node := g.nodes[id]
		if id == g.root || len(node.Branches) == 0 || node.Action.IsProtected() {
			continue
		}
		if exempt != "" && node.HasBranch(exempt) {
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func branchNames(node *Node) []string {
	names := make([]string, 0, len(node.Branches))
	for _, branch := range node.Branches {
		names = append(names, branch.Name)
	}
	return names
}

// ProtectLargeBranches protects branches with more than maxCommits commits of
// their own; they are usually someone else's work checked out locally.
// Branches named exempt are skipped. It returns the protected branch names.
func ProtectLargeBranches(g *Graph, maxCommits int, exempt string) []string {
	var protected []string
	for _, node := range g.branchNodes(exempt) {
		commits, _ := g.BranchCommits(node.ID())
		if len(commits) <= maxCommits {
			continue
		}
		for _, id := range commits {
			g.nodes[id].Action = Protect
		}
		protected = append(protected, branchNames(node)...)
	}
	return protected
}

// ProtectStaleBranches protects branches whose tip is older than maxAge.
// Branches named exempt are skipped. It returns the protected branch names.
func ProtectStaleBranches(g *Graph, maxAge time.Duration, now time.Time, exempt string) []string {
	cutoff := now.Add(-maxAge)
	var protected []string
	for _, node := range g.branchNodes(exempt) {
		if !node.Commit.Time.Before(cutoff) {
			continue
		}
		commits, _ := g.BranchCommits(node.ID())
		for _, id := range commits {
			g.nodes[id].Action = Protect
		}
		protected = append(protected, branchNames(node)...)
	}
	return protected
}

// MarkFixups points "fixup! X" and "squash! X" commits at the nearest ancestor
// titled X. With squash set, fixups are squashed instead. Protected commits are
// never marked or targeted. It returns the number of commits marked.
func MarkFixups(g *Graph, squash bool) int {
	marked := 0
	for _, id := range g.TopoOrder() {
		node := g.nodes[id]
		if !node.Action.IsPick() {
			continue
		}
		summary, isSquash, ok := node.Commit.FixupSummary()
		if !ok {
			continue
		}
		summary = stripFixupPrefixes(summary)

		target, found := g.findAncestor(id, func(candidate *Node) bool {
			return candidate.Commit.Summary == summary
		})
		if !found || g.nodes[target].Action.IsProtected() {
			continue
		}

		if squash || isSquash {
			node.Action = Squash(target)
		} else {
			node.Action = Fixup(target)
		}
		marked++
	}
	return marked
}

func stripFixupPrefixes(summary string) string {
	for {
		switch {
		case strings.HasPrefix(summary, "fixup! "):
			summary = strings.TrimPrefix(summary, "fixup! ")
		case strings.HasPrefix(summary, "squash! "):
			summary = strings.TrimPrefix(summary, "squash! ")
		default:
			return summary
		}
	}
}

// findAncestor searches id's ancestors in the graph, nearest first
func (g *Graph) findAncestor(id plumbing.Hash, match func(*Node) bool) (plumbing.Hash, bool) {
	seen := map[plumbing.Hash]struct{}{id: {}}
	queue := g.Parents(id)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, ok := seen[current]; ok {
			continue
		}
		seen[current] = struct{}{}
		if match(g.nodes[current]) {
			return current, true
		}
		queue = append(queue, g.Parents(current)...)
	}
	return plumbing.ZeroHash, false
}

// MarkPushable marks branch nodes that are ready to push: not protected, free
// of pending fixups and WIP commits, and stacked on protected or pushable commits.
func MarkPushable(g *Graph) {
	for _, node := range g.branchNodes("") {
		commits, stops := g.BranchCommits(node.ID())

		ready := true
		for _, id := range commits {
			commit := g.nodes[id]
			kind := commit.Action.Kind
			if kind == ActionFixup || kind == ActionSquash || isWIP(commit.Commit.Summary) {
				ready = false
				break
			}
		}
		for _, id := range stops {
			stop := g.nodes[id]
			if !stop.Action.IsProtected() && !stop.Pushable {
				ready = false
				break
			}
		}
		node.Pushable = ready
	}
}

func isWIP(summary string) bool {
	lower := strings.ToLower(summary)
	return strings.HasPrefix(lower, "wip") || strings.HasPrefix(lower, "fixup! ") || strings.HasPrefix(lower, "squash! ")
}
