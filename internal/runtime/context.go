package runtime

import (
	"fmt"

	"gitstack.dev/gitstack/internal/config"
	"gitstack.dev/gitstack/internal/git"
	"gitstack.dev/gitstack/internal/stack"
	"gitstack.dev/gitstack/internal/tui"
)

// Context provides access to the repository, config and output for commands
type Context struct {
	Repo     *git.GoGitRepo
	Config   *config.RepoConfig
	Loader   *config.Loader
	Splog    *tui.Splog
	RepoRoot string
}

// NewContext opens the repository containing path and loads its config
func NewContext(path string, splog *tui.Splog) (*Context, error) {
	if splog == nil {
		splog = tui.NewSplog()
	}

	repo, err := git.OpenRepository(path)
	if err != nil {
		return nil, err
	}

	loader := &config.Loader{
		Workdir: repo.Workdir(),
		GitDir:  repo.GitDir(),
		Log:     splog,
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &Context{
		Repo:     repo,
		Config:   cfg,
		Loader:   loader,
		Splog:    splog,
		RepoRoot: repo.Workdir(),
	}, nil
}

// Planner returns a stack planner over the context's repository
func (c *Context) Planner() *stack.Planner {
	return stack.NewPlanner(c.Repo, c.Config, c.Splog)
}
