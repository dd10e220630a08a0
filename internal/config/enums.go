package config

import (
	"fmt"
	"strings"
)

// Stack selects which branches a command operates on
type Stack int

const (
	// StackCurrent is the branch at HEAD and the branches it sits on
	StackCurrent Stack = iota
	// StackDependents is every branch sharing history with HEAD since the base
	StackDependents
	// StackDescendants is every branch built on the protected base
	StackDescendants
	// StackAll is every local branch
	StackAll
)

var stackNames = [...]string{"current", "dependents", "descendants", "all"}

// StackVariants returns the accepted Stack values
func StackVariants() []string {
	return append([]string(nil), stackNames[:]...)
}

func (s Stack) String() string {
	if int(s) < 0 || int(s) >= len(stackNames) {
		return fmt.Sprintf("stack(%d)", int(s))
	}
	return stackNames[s]
}

// ParseStack parses a Stack name, ignoring case
func ParseStack(value string) (Stack, error) {
	i, err := parseVariant(value, stackNames[:])
	return Stack(i), err
}

// Format selects how much detail show prints
type Format int

const (
	FormatSilent Format = iota
	FormatBranches
	FormatBranchCommits
	FormatCommits
	FormatDebug
)

var formatNames = [...]string{"silent", "branches", "branch-commits", "commits", "debug"}

// FormatVariants returns the accepted Format values
func FormatVariants() []string {
	return append([]string(nil), formatNames[:]...)
}

func (f Format) String() string {
	if int(f) < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("format(%d)", int(f))
	}
	return formatNames[f]
}

// ParseFormat parses a Format name, ignoring case
func ParseFormat(value string) (Format, error) {
	i, err := parseVariant(value, formatNames[:])
	return Format(i), err
}

// Fixup is the policy for "fixup!" and "squash!" commits
type Fixup int

const (
	// FixupIgnore leaves fixup commits where they are
	FixupIgnore Fixup = iota
	// FixupMove folds fixup commits into their targets
	FixupMove
	// FixupSquash folds fixup commits into their targets keeping their messages
	FixupSquash
)

var fixupNames = [...]string{"ignore", "move", "squash"}

// FixupVariants returns the accepted Fixup values
func FixupVariants() []string {
	return append([]string(nil), fixupNames[:]...)
}

func (f Fixup) String() string {
	if int(f) < 0 || int(f) >= len(fixupNames) {
		return fmt.Sprintf("fixup(%d)", int(f))
	}
	return fixupNames[f]
}

// ParseFixup parses a Fixup name, ignoring case
func ParseFixup(value string) (Fixup, error) {
	i, err := parseVariant(value, fixupNames[:])
	return Fixup(i), err
}

func parseVariant(value string, names []string) (int, error) {
	value = strings.TrimSpace(value)
	for i, name := range names {
		if strings.EqualFold(value, name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("valid values: %s", strings.Join(names, ", "))
}
