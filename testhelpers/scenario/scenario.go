// Package scenario combines a Scene with a runtime Context to provide a terse
// API for planner and CLI integration tests.
package scenario

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"gitstack.dev/gitstack/internal/graph"
	"gitstack.dev/gitstack/internal/runtime"
	"gitstack.dev/gitstack/internal/stack"
	"gitstack.dev/gitstack/internal/tui"
	"gitstack.dev/gitstack/testhelpers"
)

// Scenario is a git repository on disk plus a Context opened on it
type Scenario struct {
	T       *testing.T
	Scene   *testhelpers.Scene
	Context *runtime.Context
}

// NewScenario creates a new Scenario with an optional setup function.
// NOTE: This function is NOT safe for parallel tests as it uses t.Setenv and NewScene.
func NewScenario(t *testing.T, setup testhelpers.SceneSetup) *Scenario {
	t.Helper()

	t.Setenv("GIT_CONFIG_GLOBAL", "/dev/null")
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")

	s := &Scenario{T: t, Scene: testhelpers.NewScene(t, setup)}
	return s.Reload()
}

// Reload reopens the repository and rereads its config
func (s *Scenario) Reload() *Scenario {
	s.T.Helper()
	splog, err := tui.NewSplogWithOptions(tui.SplogOptions{Out: io.Discard})
	require.NoError(s.T, err)
	ctx, err := runtime.NewContext(s.Scene.Dir, splog)
	require.NoError(s.T, err)
	s.Context = ctx
	return s
}

// WithInitialCommit creates an initial commit on the main branch.
func (s *Scenario) WithInitialCommit() *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.CreateChangeAndCommit("initial", "init"))
	return s.Reload()
}

// WithUncommittedChange creates an uncommitted change in the repository.
func (s *Scenario) WithUncommittedChange(name string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.CreateChange("unstaged content", name, true))
	return s
}

// RunGit runs a git command in the scenario's repository.
func (s *Scenario) RunGit(args ...string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.RunGitCommand(args...))
	return s.Reload()
}

// Checkout checks out a branch.
func (s *Scenario) Checkout(branch string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.CheckoutBranch(branch))
	return s.Reload()
}

// CreateBranch creates and checks out a new branch.
func (s *Scenario) CreateBranch(name string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.CreateAndCheckoutBranch(name))
	return s.Reload()
}

// Commit creates an empty commit with the given message.
func (s *Scenario) Commit(message string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.RunGitCommand("commit", "--allow-empty", "-m", message))
	return s.Reload()
}

// CommitChange creates a file change and commits it.
func (s *Scenario) CommitChange(name, message string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.CreateChangeAndCommit(message, name))
	return s.Reload()
}

// Configure sets a key in .git/config
func (s *Scenario) Configure(key, value string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Scene.Repo.SetConfig(key, value))
	return s.Reload()
}

// WithStack builds a branch hierarchy on top of main. Keys are branch names
// and values their parents; each branch gets one commit.
func (s *Scenario) WithStack(structure map[string]string) *Scenario {
	s.T.Helper()

	if _, err := s.Scene.Repo.GetRevision("HEAD"); err != nil {
		s.WithInitialCommit()
	}

	created := map[string]bool{"main": true}
	for len(created) < len(structure)+1 {
		progress := false
		for branch, parent := range structure {
			if created[branch] || !created[parent] {
				continue
			}
			require.NoError(s.T, s.Scene.Repo.CheckoutBranch(parent))
			require.NoError(s.T, s.Scene.Repo.CreateAndCheckoutBranch(branch))
			require.NoError(s.T, s.Scene.Repo.CreateChangeAndCommit("change on "+branch, branch))
			created[branch] = true
			progress = true
		}
		if !progress {
			s.T.Fatalf("could not resolve stack structure: circular dependency or missing parent")
		}
	}
	return s.Reload()
}

// Plan runs the planner with opts
func (s *Scenario) Plan(opts stack.Options) *stack.Plan {
	s.T.Helper()
	plan, err := s.Context.Planner().Plan(opts)
	require.NoError(s.T, err)
	return plan
}

// ExpectStackBranches asserts the branches planned with opts, sorted by name
func (s *Scenario) ExpectStackBranches(opts stack.Options, expected []string) *Scenario {
	s.T.Helper()
	var names []string
	for _, branch := range s.Plan(opts).Graph.Branches() {
		names = append(names, branch.Name)
	}
	require.Equal(s.T, expected, names)
	return s
}

// Node returns the plan's node for branch
func (s *Scenario) Node(plan *stack.Plan, branch string) *graph.Node {
	s.T.Helper()
	commit, err := s.Context.Repo.Resolve(branch)
	require.NoError(s.T, err)
	node := plan.Graph.Get(commit.ID)
	require.NotNil(s.T, node, "branch %s is not in the stack", branch)
	return node
}

// RunCliAndGetOutput runs the git-stack binary and returns its combined output.
func (s *Scenario) RunCliAndGetOutput(args ...string) (string, error) {
	output, err := s.Scene.Repo.RunCliCommandAndGetOutput(args)
	s.Reload()
	return output, err
}

// RunCli runs the git-stack binary and requires it to succeed.
func (s *Scenario) RunCli(args ...string) string {
	s.T.Helper()
	output, err := s.RunCliAndGetOutput(args...)
	require.NoError(s.T, err, "git-stack %v failed\nOutput: %s", args, output)
	return output
}

// RunExpectError runs the git-stack binary and requires it to fail.
func (s *Scenario) RunExpectError(args ...string) string {
	s.T.Helper()
	output, err := s.RunCliAndGetOutput(args...)
	require.Error(s.T, err, "expected git-stack %v to fail", args)
	return output
}

// ExpectBranch asserts that the current branch is as expected.
func (s *Scenario) ExpectBranch(expected string) *Scenario {
	s.T.Helper()
	actual, err := s.Scene.Repo.CurrentBranchName()
	require.NoError(s.T, err)
	require.Equal(s.T, expected, actual)
	return s
}
