package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	format "github.com/go-git/go-git/v5/plumbing/format/config"
)

const (
	stackSection       = "stack"
	branchStashSection = "branch-stash"

	keyProtectedBranch    = "protected-branch"
	keyProtectCommitCount = "protect-commit-count"
	keyProtectCommitAge   = "protect-commit-age"
	keyStack              = "stack"
	keyPushRemote         = "push-remote"
	keyPullRemote         = "pull-remote"
	keyShowFormat         = "show-format"
	keyShowStacked        = "show-stacked"
	keyAutoFixup          = "auto-fixup"
	keyAutoRepair         = "auto-repair"
	keyCapacity           = "capacity"
)

// Defaults applied by FromDefaults
const (
	DefaultProtectCommitCount = 50
	DefaultProtectCommitAge   = 14 * day
	DefaultRemote             = "origin"
	DefaultCapacity           = 30
)

// DefaultProtectedBranches are protected in every repository
var DefaultProtectedBranches = []string{"main", "master", "dev", "stable"}

// Logger receives notes about values that were skipped while loading
type Logger interface {
	Debug(format string, args ...interface{})
}

type discardLogger struct{}

func (discardLogger) Debug(string, ...interface{}) {}

// RepoConfig is one layer of git-stack settings. Nil fields are unset and
// fall through to the layer below; ProtectedBranches accumulates across layers.
type RepoConfig struct {
	ProtectedBranches  []string
	ProtectCommitCount *int
	ProtectCommitAge   *time.Duration
	Stack              *Stack
	PushRemote         *string
	PullRemote         *string
	ShowFormat         *Format
	ShowStacked        *bool
	AutoFixup          *Fixup
	AutoRepair         *bool
	Capacity           *int
}

// FromDefaults returns the built-in settings. defaultBranch is the user's
// init.defaultBranch and is protected ahead of the usual trunk names.
func FromDefaults(defaultBranch string) *RepoConfig {
	if defaultBranch == "" {
		defaultBranch = "main"
	}
	protected := []string{defaultBranch}
	for _, name := range DefaultProtectedBranches {
		if name != defaultBranch {
			protected = append(protected, name)
		}
	}

	return &RepoConfig{
		ProtectedBranches:  protected,
		ProtectCommitCount: ptr(DefaultProtectCommitCount),
		ProtectCommitAge:   ptr(DefaultProtectCommitAge),
		Stack:              ptr(StackAll),
		PushRemote:         ptr(DefaultRemote),
		ShowFormat:         ptr(FormatBranchCommits),
		ShowStacked:        ptr(true),
		AutoFixup:          ptr(FixupMove),
		AutoRepair:         ptr(true),
		Capacity:           ptr(DefaultCapacity),
	}
}

// FromGitconfig reads the stack and branch-stash sections of a parsed config.
// Unparseable values are logged and skipped.
func FromGitconfig(cfg *format.Config, log Logger) *RepoConfig {
	if log == nil {
		log = discardLogger{}
	}
	rc := &RepoConfig{}

	if cfg.HasSection(stackSection) {
		options := cfg.Section(stackSection).Options
		for _, value := range options.GetAll(keyProtectedBranch) {
			if value = strings.TrimSpace(value); value != "" {
				rc.ProtectedBranches = append(rc.ProtectedBranches, value)
			}
		}
		if options.Has(keyProtectCommitCount) {
			rc.ProtectCommitCount = parseOption(log, stackSection+"."+keyProtectCommitCount, options.Get(keyProtectCommitCount), parseCount)
		}
		if options.Has(keyProtectCommitAge) {
			rc.ProtectCommitAge = parseOption(log, stackSection+"."+keyProtectCommitAge, options.Get(keyProtectCommitAge), ParseDuration)
		}
		if options.Has(keyStack) {
			rc.Stack = parseOption(log, stackSection+"."+keyStack, options.Get(keyStack), ParseStack)
		}
		if options.Has(keyPushRemote) {
			rc.PushRemote = ptr(options.Get(keyPushRemote))
		}
		if options.Has(keyPullRemote) {
			rc.PullRemote = ptr(options.Get(keyPullRemote))
		}
		if options.Has(keyShowFormat) {
			rc.ShowFormat = parseOption(log, stackSection+"."+keyShowFormat, options.Get(keyShowFormat), ParseFormat)
		}
		if options.Has(keyShowStacked) {
			rc.ShowStacked = parseOption(log, stackSection+"."+keyShowStacked, options.Get(keyShowStacked), ParseBool)
		}
		if options.Has(keyAutoFixup) {
			rc.AutoFixup = parseOption(log, stackSection+"."+keyAutoFixup, options.Get(keyAutoFixup), ParseFixup)
		}
		if options.Has(keyAutoRepair) {
			rc.AutoRepair = parseOption(log, stackSection+"."+keyAutoRepair, options.Get(keyAutoRepair), ParseBool)
		}
	}

	if cfg.HasSection(branchStashSection) {
		options := cfg.Section(branchStashSection).Options
		if options.Has(keyCapacity) {
			rc.Capacity = parseOption(log, branchStashSection+"."+keyCapacity, options.Get(keyCapacity), parseCount)
		}
	}
	return rc
}

func parseOption[T any](log Logger, key, value string, parse func(string) (T, error)) *T {
	parsed, err := parse(value)
	if err != nil {
		log.Debug("Ignoring %s=%q: %v", key, value, err)
		return nil
	}
	return &parsed
}

func parseCount(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("expected a whole number")
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return n, nil
}

// ParseBool parses git's boolean spellings. A key with no value is true.
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("valid values: true, false")
	}
}

func ptr[T any](v T) *T {
	return &v
}

// Update layers other on top of rc: set fields in other win, protected
// branches accumulate.
func (rc *RepoConfig) Update(other *RepoConfig) *RepoConfig {
	rc.ProtectedBranches = append(rc.ProtectedBranches, other.ProtectedBranches...)
	rc.ProtectCommitCount = override(rc.ProtectCommitCount, other.ProtectCommitCount)
	rc.ProtectCommitAge = override(rc.ProtectCommitAge, other.ProtectCommitAge)
	rc.Stack = override(rc.Stack, other.Stack)
	rc.PushRemote = override(rc.PushRemote, other.PushRemote)
	rc.PullRemote = override(rc.PullRemote, other.PullRemote)
	rc.ShowFormat = override(rc.ShowFormat, other.ShowFormat)
	rc.ShowStacked = override(rc.ShowStacked, other.ShowStacked)
	rc.AutoFixup = override(rc.AutoFixup, other.AutoFixup)
	rc.AutoRepair = override(rc.AutoRepair, other.AutoRepair)
	rc.Capacity = override(rc.Capacity, other.Capacity)
	return rc
}

func override[T any](current, next *T) *T {
	if next != nil {
		return next
	}
	return current
}

// GetProtectedBranches returns the protected branch names and globs in
// order. A repeated entry keeps its last position so later negations and
// re-protections still apply in the order they were configured.
func (rc *RepoConfig) GetProtectedBranches() []string {
	seen := make(map[string]struct{}, len(rc.ProtectedBranches))
	var reversed []string
	for i := len(rc.ProtectedBranches) - 1; i >= 0; i-- {
		name := rc.ProtectedBranches[i]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		reversed = append(reversed, name)
	}
	result := make([]string, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		result = append(result, reversed[i])
	}
	return result
}

// GetProtectCommitCount returns the commit count above which a branch is
// treated as someone else's; ok is false when the check is disabled.
func (rc *RepoConfig) GetProtectCommitCount() (count int, ok bool) {
	count = value(rc.ProtectCommitCount, DefaultProtectCommitCount)
	return count, count > 0
}

// GetProtectCommitAge returns the age beyond which a branch is protected; ok
// is false when the check is disabled.
func (rc *RepoConfig) GetProtectCommitAge() (age time.Duration, ok bool) {
	age = value(rc.ProtectCommitAge, DefaultProtectCommitAge)
	return age, age > 0
}

// GetStack returns the branch selection scope
func (rc *RepoConfig) GetStack() Stack {
	return value(rc.Stack, StackAll)
}

// GetPushRemote returns the remote branches are pushed to
func (rc *RepoConfig) GetPushRemote() string {
	return value(rc.PushRemote, DefaultRemote)
}

// GetPullRemote returns the remote protected branches are pulled from,
// falling back to the push remote
func (rc *RepoConfig) GetPullRemote() string {
	if rc.PullRemote != nil {
		return *rc.PullRemote
	}
	return rc.GetPushRemote()
}

// GetShowFormat returns the detail level for show
func (rc *RepoConfig) GetShowFormat() Format {
	return value(rc.ShowFormat, FormatBranchCommits)
}

// GetShowStacked reports whether show groups branches by stack
func (rc *RepoConfig) GetShowStacked() bool {
	return value(rc.ShowStacked, true)
}

// GetAutoFixup returns the fixup commit policy
func (rc *RepoConfig) GetAutoFixup() Fixup {
	return value(rc.AutoFixup, FixupMove)
}

// GetAutoRepair reports whether stacks are repaired automatically
func (rc *RepoConfig) GetAutoRepair() bool {
	return value(rc.AutoRepair, true)
}

// GetCapacity returns how many branch stashes are kept; 0 disables stashing
func (rc *RepoConfig) GetCapacity() int {
	return value(rc.Capacity, DefaultCapacity)
}

func value[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

// Gitconfig renders the effective settings as a parsed gitconfig
func (rc *RepoConfig) Gitconfig() *format.Config {
	cfg := format.New()
	stack := cfg.Section(stackSection)
	for _, name := range rc.GetProtectedBranches() {
		stack.AddOption(keyProtectedBranch, name)
	}
	count, _ := rc.GetProtectCommitCount()
	stack.AddOption(keyProtectCommitCount, strconv.Itoa(count))
	age, _ := rc.GetProtectCommitAge()
	stack.AddOption(keyProtectCommitAge, FormatDuration(age))
	stack.AddOption(keyStack, rc.GetStack().String())
	stack.AddOption(keyPushRemote, rc.GetPushRemote())
	stack.AddOption(keyPullRemote, rc.GetPullRemote())
	stack.AddOption(keyShowFormat, rc.GetShowFormat().String())
	stack.AddOption(keyShowStacked, strconv.FormatBool(rc.GetShowStacked()))
	stack.AddOption(keyAutoFixup, rc.GetAutoFixup().String())
	stack.AddOption(keyAutoRepair, strconv.FormatBool(rc.GetAutoRepair()))

	cfg.Section(branchStashSection).AddOption(keyCapacity, strconv.Itoa(rc.GetCapacity()))
	return cfg
}

// String renders the effective settings in gitconfig syntax
func (rc *RepoConfig) String() string {
	var b strings.Builder
	if err := format.NewEncoder(&b).Encode(rc.Gitconfig()); err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return b.String()
}
