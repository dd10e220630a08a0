package graph

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// ActionKind identifies what the rebase planner should do with a commit
type ActionKind int

const (
	// ActionPick keeps the commit as-is; the neutral default
	ActionPick ActionKind = iota
	// ActionFixup folds the commit into Target, discarding its message
	ActionFixup
	// ActionSquash folds the commit into Target, keeping its message
	ActionSquash
	// ActionProtect marks a commit that must not be rewritten
	ActionProtect
)

// actionNames is indexed by ActionKind
var actionNames = [...]string{"pick", "fixup", "squash", "protect"}

// ActionVariants returns the valid action names
func ActionVariants() []string {
	return append([]string(nil), actionNames[:]...)
}

// Action is the planned rebase action for a commit. Target is only set for
// fixup and squash.
type Action struct {
	Kind   ActionKind
	Target plumbing.Hash
}

// Pick and Protect carry no target
var (
	Pick    = Action{Kind: ActionPick}
	Protect = Action{Kind: ActionProtect}
)

// Fixup folds a commit into target
func Fixup(target plumbing.Hash) Action {
	return Action{Kind: ActionFixup, Target: target}
}

// Squash folds a commit into target, keeping its message
func Squash(target plumbing.Hash) Action {
	return Action{Kind: ActionSquash, Target: target}
}

// IsPick reports whether the action is the neutral default
func (a Action) IsPick() bool {
	return a.Kind == ActionPick
}

// IsProtected reports whether the commit must not be rewritten
func (a Action) IsProtected() bool {
	return a.Kind == ActionProtect
}

func (a Action) String() string {
	switch a.Kind {
	case ActionFixup, ActionSquash:
		return fmt.Sprintf("%s %s", actionNames[a.Kind], a.Target)
	case ActionPick, ActionProtect:
		return actionNames[a.Kind]
	default:
		return fmt.Sprintf("action(%d)", int(a.Kind))
	}
}

// ParseAction parses the String form of an action
func ParseAction(s string) (Action, error) {
	name, target, hasTarget := strings.Cut(strings.TrimSpace(s), " ")
	for i, candidate := range actionNames {
		if name != candidate {
			continue
		}
		kind := ActionKind(i)
		switch kind {
		case ActionFixup, ActionSquash:
			target = strings.TrimSpace(target)
			if !hasTarget || !plumbing.IsHash(target) {
				return Action{}, fmt.Errorf("%s requires a commit id", name)
			}
			return Action{Kind: kind, Target: plumbing.NewHash(target)}, nil
		case ActionPick, ActionProtect:
			if hasTarget {
				return Action{}, fmt.Errorf("%s takes no commit id", name)
			}
			return Action{Kind: kind}, nil
		}
	}
	return Action{}, fmt.Errorf("valid values: %s", strings.Join(actionNames[:], ", "))
}
