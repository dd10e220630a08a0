// Package stack decides which branches make up the current stack and how each
// of their commits should be treated.
package stack

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-git/go-git/v5/plumbing"

	"gitstack.dev/gitstack/internal/config"
	"gitstack.dev/gitstack/internal/git"
	"gitstack.dev/gitstack/internal/graph"
)

// Logger is the subset of tui.Splog the planner reports through
type Logger interface {
	Debug(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

// Options narrow a single planning run
type Options struct {
	// Stack overrides the configured scope when set
	Stack *config.Stack
	// Base is a revision to stack on instead of the discovered protected base
	Base string
	// Now is the reference time for stale branch detection; zero means time.Now
	Now time.Time
}

// Plan is the classified stack for HEAD
type Plan struct {
	Head       *git.Commit
	HeadBranch *git.Branch
	// Base is the protected branch the stack sits on, nil when none was found
	Base   *git.Branch
	BaseID plumbing.Hash
	Stack  config.Stack
	Graph  *graph.Graph
	// Protected lists branches protected for size or age, sorted
	Protected []string
	// Excluded holds local branches that are not part of Graph
	Excluded *git.Branches
	Fixups   int
}

// Planner classifies a repository's branches
type Planner struct {
	Repo   git.Repo
	Config *config.RepoConfig
	Log    Logger
}

// NewPlanner creates a planner
func NewPlanner(repo git.Repo, cfg *config.RepoConfig, log Logger) *Planner {
	return &Planner{Repo: repo, Config: cfg, Log: log}
}

// Plan classifies the branches around HEAD. It returns a complete plan or an error.
func (p *Planner) Plan(opts Options) (*Plan, error) {
	headID, err := p.Repo.HeadID()
	if err != nil {
		return nil, err
	}
	head, err := p.Repo.Commit(headID)
	if err != nil {
		return nil, err
	}
	headBranch, err := p.Repo.HeadBranch()
	if err != nil {
		return nil, err
	}

	local, err := p.Repo.LocalBranches()
	if err != nil {
		return nil, err
	}
	index := git.NewBranches(local)

	matcher, err := git.NewProtectedBranches(p.Config.GetProtectedBranches())
	if err != nil {
		return nil, fmt.Errorf("invalid protected branch pattern: %w", err)
	}

	plan := &Plan{
		Head:       head,
		HeadBranch: headBranch,
		Stack:      p.Config.GetStack(),
	}
	if opts.Stack != nil {
		plan.Stack = *opts.Stack
	}

	if err := p.resolveBase(plan, opts.Base, index, matcher); err != nil {
		return nil, err
	}
	p.debug("Stacking on %s", plan.BaseID)

	selected, err := selectBranches(p.Repo, index, plan.Stack, plan.BaseID, headID)
	if err != nil {
		return nil, err
	}
	p.debug("Selected %d branches for stack %s", selected.Len(), plan.Stack)

	g, err := graph.Build(p.Repo, plan.BaseID, selected.Clone())
	if err != nil {
		return nil, err
	}
	plan.Graph = g

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	p.classify(plan, matcher, now)

	inGraph := make(map[string]struct{})
	for _, branch := range g.Branches() {
		inGraph[branch.Name] = struct{}{}
	}
	plan.Excluded = git.NewBranches(nil)
	for _, branches := range index.All() {
		for _, branch := range branches {
			if _, ok := inGraph[branch.Name]; !ok {
				plan.Excluded.Insert(branch)
			}
		}
	}
	return plan, nil
}

func (p *Planner) resolveBase(plan *Plan, base string, index *git.Branches, matcher *git.ProtectedBranches) error {
	if base != "" {
		commit, err := p.Repo.Resolve(base)
		if err != nil {
			return err
		}
		plan.BaseID = commit.ID
		for _, branch := range index.Get(commit.ID) {
			if branch.Name == base {
				plan.Base = &branch
				break
			}
		}
		return nil
	}

	protected := index.Protected(matcher)
	found, err := git.FindProtectedBase(p.Repo, protected, plan.Head.ID)
	if err != nil {
		return err
	}
	if found == nil {
		p.warn("Could not find a protected branch for %s, stacking on HEAD", describeHead(plan))
		plan.BaseID = plan.Head.ID
		return nil
	}

	fork, ok, err := p.Repo.MergeBase(found.ID, plan.Head.ID)
	if err != nil {
		return err
	}
	if !ok {
		fork = found.ID
	}
	plan.Base = found
	plan.BaseID = fork
	return nil
}

func describeHead(plan *Plan) string {
	if plan.HeadBranch != nil {
		return plan.HeadBranch.Name
	}
	return plan.Head.ShortID()
}

func selectBranches(repo git.Repo, index *git.Branches, scope config.Stack, base, head plumbing.Hash) (*git.Branches, error) {
	switch scope {
	case config.StackCurrent:
		return index.Branch(repo, base, head)
	case config.StackDependents:
		return index.Dependents(repo, base, head)
	case config.StackDescendants:
		return index.Descendants(repo, base)
	case config.StackAll:
		return index.Clone(), nil
	default:
		return nil, fmt.Errorf("unknown stack %s", scope)
	}
}

// classify marks protected commits, fixups and pushable branches
func (p *Planner) classify(plan *Plan, matcher *git.ProtectedBranches, now time.Time) {
	g := plan.Graph
	g.RootNode().Action = graph.Protect
	graph.ProtectBranches(g, matcher)

	exempt := ""
	if plan.HeadBranch != nil {
		exempt = plan.HeadBranch.Name
	}
	if count, ok := p.Config.GetProtectCommitCount(); ok {
		for _, name := range graph.ProtectLargeBranches(g, count, exempt) {
			p.debug("Protecting %s: more than %d commits", name, count)
			plan.Protected = append(plan.Protected, name)
		}
	}
	if age, ok := p.Config.GetProtectCommitAge(); ok {
		for _, name := range graph.ProtectStaleBranches(g, age, now, exempt) {
			p.debug("Protecting %s: older than %s", name, config.FormatDuration(age))
			plan.Protected = append(plan.Protected, name)
		}
	}
	sort.Strings(plan.Protected)

	switch p.Config.GetAutoFixup() {
	case config.FixupMove:
		plan.Fixups = graph.MarkFixups(g, false)
	case config.FixupSquash:
		plan.Fixups = graph.MarkFixups(g, true)
	case config.FixupIgnore:
	}
	graph.MarkPushable(g)
}

func (p *Planner) debug(format string, args ...interface{}) {
	if p.Log != nil {
		p.Log.Debug(format, args...)
	}
}

func (p *Planner) warn(format string, args ...interface{}) {
	if p.Log != nil {
		p.Log.Warn(format, args...)
	}
}
