package testhelpers

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"gopkg.in/yaml.v3"

	"gitstack.dev/gitstack/internal/git"
)

// fixtureEpoch is the commit time of the first fixture commit; each later commit is one minute newer
var fixtureEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Dag describes a commit history declaratively.
//
//	head: feature1
//	events:
//	  - commit: initial
//	    branch: initial
//	  - children:
//	      - - commit: a
//	      - - commit: b
//	          merge: [initial]
//
// Events apply in order on top of the previous commit. Each line in children
// starts from the current commit; later events continue from the last line.
type Dag struct {
	Head   string  `yaml:"head"`
	Events []Event `yaml:"events"`
}

// Event is one step of a Dag
type Event struct {
	Commit   string    `yaml:"commit"`
	Branch   string    `yaml:"branch"`
	Mark     string    `yaml:"mark"`
	Merge    []string  `yaml:"merge"`
	Children [][]Event `yaml:"children"`
}

// LoadDag reads a Dag from a YAML file
func LoadDag(path string) (*Dag, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return ParseDag(data)
}

// ParseDag parses a Dag from YAML
func ParseDag(data []byte) (*Dag, error) {
	var dag Dag
	if err := yaml.Unmarshal(data, &dag); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &dag, nil
}

type dagBuilder struct {
	repo       *git.InMemoryRepo
	marks      map[string]plumbing.Hash
	seq        int
	lastBranch string
}

// Populate writes the Dag's commits and branches into repo
func (d *Dag) Populate(repo *git.InMemoryRepo) error {
	b := &dagBuilder{repo: repo, marks: make(map[string]plumbing.Hash)}
	if _, err := b.apply(plumbing.ZeroHash, d.Events); err != nil {
		return err
	}

	head := d.Head
	if head == "" {
		head = b.lastBranch
	}
	if head == "" {
		return nil
	}
	return repo.SetHead(head)
}

func (b *dagBuilder) apply(tip plumbing.Hash, events []Event) (plumbing.Hash, error) {
	for _, event := range events {
		if event.Commit != "" {
			var err error
			tip, err = b.commit(tip, event)
			if err != nil {
				return plumbing.ZeroHash, err
			}
		}

		if event.Branch != "" {
			if err := b.repo.MarkBranch(git.Branch{Name: event.Branch, ID: tip}); err != nil {
				return plumbing.ZeroHash, fmt.Errorf("branch %s: %w", event.Branch, err)
			}
			b.marks[event.Branch] = tip
			b.lastBranch = event.Branch
		}
		if event.Mark != "" {
			b.marks[event.Mark] = tip
		}

		if len(event.Children) > 0 {
			base := tip
			for _, line := range event.Children {
				lineTip, err := b.apply(base, line)
				if err != nil {
					return plumbing.ZeroHash, err
				}
				tip = lineTip
			}
		}
	}
	return tip, nil
}

func (b *dagBuilder) commit(tip plumbing.Hash, event Event) (plumbing.Hash, error) {
	var parents []plumbing.Hash
	if !tip.IsZero() {
		parents = append(parents, tip)
	}
	for _, mark := range event.Merge {
		id, ok := b.marks[mark]
		if !ok {
			return plumbing.ZeroHash, fmt.Errorf("commit %q merges unknown mark %q", event.Commit, mark)
		}
		parents = append(parents, id)
	}

	b.seq++
	content := fmt.Sprintf("%d\n%s\n%v", b.seq, event.Commit, parents)
	commit := &git.Commit{
		ID:        plumbing.ComputeHash(plumbing.CommitObject, []byte(content)),
		ParentIDs: parents,
		Message:   event.Commit,
		Time:      fixtureEpoch.Add(time.Duration(b.seq) * time.Minute),
	}
	if err := b.repo.PushCommit(commit); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("commit %q: %w", event.Commit, err)
	}
	return commit.ID, nil
}

// NewFixtureRepo loads a Dag fixture file into a fresh in-memory repository
func NewFixtureRepo(t *testing.T, path string) *git.InMemoryRepo {
	t.Helper()
	dag, err := LoadDag(path)
	if err != nil {
		t.Fatalf("Failed to load fixture %s: %v", path, err)
	}
	repo := git.NewInMemoryRepo()
	if err := dag.Populate(repo); err != nil {
		t.Fatalf("Failed to populate fixture %s: %v", path, err)
	}
	return repo
}

// NewDagRepo builds an in-memory repository from inline YAML
func NewDagRepo(t *testing.T, yamlText string) *git.InMemoryRepo {
	t.Helper()
	dag, err := ParseDag([]byte(yamlText))
	if err != nil {
		t.Fatalf("Failed to parse fixture: %v", err)
	}
	repo := git.NewInMemoryRepo()
	if err := dag.Populate(repo); err != nil {
		t.Fatalf("Failed to populate fixture: %v", err)
	}
	return repo
}
