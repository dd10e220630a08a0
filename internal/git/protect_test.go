package git_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gitstack.dev/gitstack/internal/git"
)

func TestProtectedBranches(t *testing.T) {
	tests := []struct {
		name      string
		entries   []string
		branch    string
		protected bool
	}{
		{name: "exact match", entries: []string{"main"}, branch: "main", protected: true},
		{name: "case sensitive", entries: []string{"main"}, branch: "Main", protected: false},
		{name: "exact names do not match children", entries: []string{"main"}, branch: "main/topic", protected: false},
		{name: "glob", entries: []string{"release/*"}, branch: "release/1.0", protected: true},
		{name: "glob misses other prefixes", entries: []string{"release/*"}, branch: "feature/1.0", protected: false},
		{name: "negated glob", entries: []string{"release/*", "!release/wip"}, branch: "release/wip", protected: false},
		{name: "blank entries ignored", entries: []string{"", "  "}, branch: "", protected: false},
		{name: "negation frees an exact name", entries: []string{"main", "dev", "!dev"}, branch: "dev", protected: false},
		{name: "negation leaves other names", entries: []string{"main", "dev", "!dev"}, branch: "main", protected: true},
		{name: "later entry wins", entries: []string{"!dev", "dev"}, branch: "dev", protected: true},
		{name: "negated glob frees exact names", entries: []string{"release", "release/1.0", "!release/*"}, branch: "release/1.0", protected: false},
		{name: "glob matches nested names", entries: []string{"release/*"}, branch: "release/1.0/hotfix", protected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			protected, err := git.NewProtectedBranches(tt.entries)
			require.NoError(t, err)
			require.Equal(t, tt.protected, protected.IsProtected(tt.branch))
		})
	}

	t.Run("empty", func(t *testing.T) {
		protected, err := git.NewProtectedBranches(nil)
		require.NoError(t, err)
		require.True(t, protected.IsEmpty())
		require.False(t, protected.IsProtected("main"))
	})
}
