// Package git provides the read-only repository view used to classify stacks.
//
// It covers:
//   - Commit and branch records shared by every graph built in a run
//   - The Repo interface with an in-memory and a go-git backed implementation
//   - The branch index and its classification queries (descendants, dependents, ...)
//   - Protected branch matching and protected base discovery
//
// Nothing in this package writes to the repository.
package git
