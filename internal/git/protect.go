package git

import (
	"fmt"
	"strings"

	"github.com/moby/patternmatcher"
)

// globChars mark a protected-branch entry as a pattern rather than an exact name
const globChars = "*?[\\!"

// protectRule is one protected-branch entry: an exact name or a compiled pattern
type protectRule struct {
	name    string
	pattern *patternmatcher.Pattern
}

func (r protectRule) exclusion() bool {
	return r.pattern != nil && r.pattern.Exclusion()
}

// matches reports whether the rule covers name or one of its parent paths
func (r protectRule) matches(name string) bool {
	if r.pattern == nil {
		return r.name == name
	}
	for path := name; path != ""; {
		if ok, err := r.pattern.Match(path); err == nil && ok {
			return true
		}
		i := strings.LastIndex(path, "/")
		if i < 0 {
			break
		}
		path = path[:i]
	}
	return false
}

// ProtectedBranches matches branch names that must never be rewritten.
// Plain entries match exactly (case-sensitive); entries containing glob
// characters are matched gitignore-style, with "!" negating a pattern.
// Entries apply in order and the last one that matches decides.
type ProtectedBranches struct {
	rules []protectRule
}

// NewProtectedBranches compiles a list of names and patterns
func NewProtectedBranches(entries []string) (*ProtectedBranches, error) {
	p := &ProtectedBranches{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.ContainsAny(entry, globChars) {
			p.rules = append(p.rules, protectRule{name: entry})
			continue
		}
		matcher, err := patternmatcher.New([]string{entry})
		if err != nil {
			return nil, fmt.Errorf("invalid protected branch pattern %q: %w", entry, err)
		}
		for _, pattern := range matcher.Patterns() {
			p.rules = append(p.rules, protectRule{name: entry, pattern: pattern})
		}
	}
	return p, nil
}

// IsProtected reports whether name is protected
func (p *ProtectedBranches) IsProtected(name string) bool {
	protected := false
	for _, rule := range p.rules {
		if rule.matches(name) {
			protected = !rule.exclusion()
		}
	}
	return protected
}

// IsEmpty reports whether nothing is protected
func (p *ProtectedBranches) IsEmpty() bool {
	return len(p.rules) == 0
}
