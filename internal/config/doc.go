// Package config loads git-stack settings from gitconfig files and the
// environment.
//
// Settings live under [stack] and [branch-stash] and are layered the way
// git layers its own config: built-in defaults, the system and global gitconfig, a
// .gitconfig at the worktree root, the repository config, then
// GIT_CONFIG_PARAMETERS and GIT_CONFIG_COUNT. Scalars take the last value
// seen; stack.protected-branch accumulates.
package config
