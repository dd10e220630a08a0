// Package tui holds git-stack's terminal output: the Splog logger, colour
// handling and the stack listing printed by show.
package tui
