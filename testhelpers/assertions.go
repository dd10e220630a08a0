package testhelpers

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// ExpectBranches asserts the repository's local branches, in any order.
func ExpectBranches(t *testing.T, repo *GitRepo, expected []string) {
	t.Helper()

	branches, err := repo.GetLocalBranches()
	require.NoError(t, err, "Failed to list branches")

	sort.Strings(branches)
	expected = append([]string(nil), expected...)
	sort.Strings(expected)
	require.Equal(t, expected, branches, "Branches do not match")
}

// ExpectLines asserts output line by line, ignoring surrounding blank lines
// and trailing whitespace. Indentation is kept.
func ExpectLines(t *testing.T, output string, expected []string) {
	t.Helper()

	var lines []string
	for _, line := range strings.Split(strings.Trim(output, "\n"), "\n") {
		lines = append(lines, strings.TrimRight(line, " \t"))
	}
	require.Equal(t, expected, lines)
}
