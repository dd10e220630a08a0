package tui

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	"gitstack.dev/gitstack/internal/config"
	"gitstack.dev/gitstack/internal/graph"
	"gitstack.dev/gitstack/internal/stack"
)

// RenderStack lists a plan newest first. With stacked set, each branch is
// indented under the branch it is built on.
func RenderStack(plan *stack.Plan, format config.Format, stacked bool) []string {
	if format == config.FormatSilent {
		return nil
	}
	g := plan.Graph
	order := g.TopoOrder()

	depth := make(map[plumbing.Hash]int, len(order))
	for _, id := range order {
		if id == g.Root() || len(g.Get(id).Branches) == 0 {
			continue
		}
		_, stops := g.BranchCommits(id)
		for _, stop := range stops {
			if d := depth[stop] + 1; d > depth[id] {
				depth[id] = d
			}
		}
	}

	var lines []string
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		node := g.Get(id)
		indent := ""
		if stacked {
			indent = strings.Repeat("  ", depth[id])
		}

		switch format {
		case config.FormatCommits, config.FormatDebug:
			lines = append(lines, indent+commitLine(plan, node, format == config.FormatDebug))
		default:
			if len(node.Branches) == 0 && id != g.Root() {
				continue
			}
			lines = append(lines, indent+branchLine(plan, node))
			if format == config.FormatBranchCommits && id != g.Root() {
				commits, _ := g.BranchCommits(id)
				for _, commitID := range commits {
					lines = append(lines, indent+"    "+commitSummary(g.Get(commitID)))
				}
			}
		}
	}
	return lines
}

func symbol(plan *stack.Plan, node *graph.Node) string {
	switch {
	case node.ID() == plan.Head.ID:
		return CurrentBranchSymbol
	case node.Action.IsProtected():
		return ColorProtected(ProtectedSymbol)
	default:
		return BranchSymbol
	}
}

func branchLine(plan *stack.Plan, node *graph.Node) string {
	return symbol(plan, node) + " " + branchLabel(plan, node)
}

// branchLabel is the node's branch names followed by its markers
func branchLabel(plan *stack.Plan, node *graph.Node) string {
	var names []string
	for _, branch := range node.Branches {
		isCurrent := plan.HeadBranch != nil && plan.HeadBranch.Name == branch.Name
		names = append(names, ColorBranchName(branch.Name, isCurrent))
	}
	if len(names) == 0 {
		names = append(names, ColorDim(node.Commit.ShortID()))
	}
	return strings.Join(append([]string{strings.Join(names, ", ")}, markers(plan, node)...), " ")
}

func markers(plan *stack.Plan, node *graph.Node) []string {
	var result []string
	if node.ID() == plan.Graph.Root() {
		result = append(result, ColorDim("(base)"))
	}
	if node.Action.IsProtected() && node.ID() != plan.Graph.Root() {
		result = append(result, ColorProtected("(protected)"))
	}
	if node.Pushable {
		result = append(result, ColorPushable("(ready)"))
	}
	if plan.Graph.IsBoundary(node.ID()) {
		result = append(result, ColorYellow("(merges from below base)"))
	}
	return result
}

func commitSummary(node *graph.Node) string {
	line := ColorDim(node.Commit.ShortID()) + " " + node.Commit.Summary
	if !node.Action.IsPick() && !node.Action.IsProtected() {
		line += " " + ColorYellow(fmt.Sprintf("[%s]", node.Action))
	}
	return line
}

func commitLine(plan *stack.Plan, node *graph.Node, debug bool) string {
	line := symbol(plan, node) + " " + commitSummary(node)
	if len(node.Branches) > 0 {
		line += " " + branchLabel(plan, node)
	} else if extra := markers(plan, node); len(extra) > 0 {
		line += " " + strings.Join(extra, " ")
	}
	if debug {
		line += ColorDim(fmt.Sprintf(" id=%s action=%s children=%d", node.ID(), node.Action, len(node.Children)))
	}
	return line
}
