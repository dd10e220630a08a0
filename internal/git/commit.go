package git

import (
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
)

// Commit is an immutable snapshot of one repository commit.
// A Repo hands out the same *Commit for an id for the whole run; callers must not modify it.
type Commit struct {
	ID        plumbing.Hash
	ParentIDs []plumbing.Hash
	Summary   string
	Message   string
	Time      time.Time
}

// ShortID returns the abbreviated commit hash
func (c *Commit) ShortID() string {
	return c.ID.String()[:7]
}

// FixupSummary reports the summary targeted by a "fixup! " or "squash! " commit.
// squash is true for "squash! " commits.
func (c *Commit) FixupSummary() (target string, squash bool, ok bool) {
	switch {
	case strings.HasPrefix(c.Summary, "fixup! "):
		return strings.TrimPrefix(c.Summary, "fixup! "), false, true
	case strings.HasPrefix(c.Summary, "squash! "):
		return strings.TrimPrefix(c.Summary, "squash! "), true, true
	default:
		return "", false, false
	}
}

// Branch is a local branch reference.
type Branch struct {
	Name string
	ID   plumbing.Hash
}

func (b Branch) String() string {
	return b.Name
}

func summaryOf(message string) string {
	return strings.TrimSpace(strings.SplitN(strings.TrimSpace(message), "\n", 2)[0])
}
