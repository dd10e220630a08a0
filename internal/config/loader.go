package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	format "github.com/go-git/go-git/v5/plumbing/format/config"
	"github.com/mattn/go-shellwords"
)

// Loader reads git-stack settings from every gitconfig layer git itself consults.
type Loader struct {
	// Workdir is the worktree root; "" for bare repositories
	Workdir string
	// GitDir holds the repository config file
	GitDir string
	// Getenv defaults to os.Getenv
	Getenv func(string) string
	// Log receives notes about skipped files and values
	Log Logger
}

func (l *Loader) getenv(key string) string {
	if l.Getenv == nil {
		return os.Getenv(key)
	}
	return l.Getenv(key)
}

func (l *Loader) logger() Logger {
	if l.Log == nil {
		return discardLogger{}
	}
	return l.Log
}

// SystemPath returns the system gitconfig path, or "" when GIT_CONFIG_NOSYSTEM is set
func (l *Loader) SystemPath() string {
	if value := l.getenv("GIT_CONFIG_NOSYSTEM"); value != "" {
		if skip, err := ParseBool(value); err == nil && skip {
			return ""
		}
	}
	if path := l.getenv("GIT_CONFIG_SYSTEM"); path != "" {
		return path
	}
	return "/etc/gitconfig"
}

// GlobalPath returns the user-level gitconfig path
func (l *Loader) GlobalPath() string {
	if path := l.getenv("GIT_CONFIG_GLOBAL"); path != "" {
		return path
	}
	home := l.getenv("HOME")
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(home, ".gitconfig")
}

// RepoPath returns the repository config file
func (l *Loader) RepoPath() string {
	return filepath.Join(l.GitDir, "config")
}

// Load layers defaults, the system and global gitconfig, <workdir>/.gitconfig,
// the repository config and the environment, later layers winning. A file
// that cannot be read or parsed is logged and skipped.
func (l *Loader) Load() (*RepoConfig, error) {
	log := l.logger()

	var files []*format.Config
	var paths []string
	for _, path := range []string{l.SystemPath(), l.GlobalPath()} {
		if path != "" {
			paths = append(paths, path)
		}
	}
	if l.Workdir != "" {
		paths = append(paths, filepath.Join(l.Workdir, ".gitconfig"))
	}
	if l.GitDir != "" {
		paths = append(paths, l.RepoPath())
	}
	for _, path := range paths {
		cfg, err := readFile(path)
		if err != nil {
			log.Debug("Skipping gitconfig: %v", err)
			continue
		}
		if cfg == nil {
			log.Debug("No gitconfig at %s", path)
			continue
		}
		log.Debug("Loaded gitconfig %s", path)
		files = append(files, cfg)
	}

	env, err := l.FromEnv()
	if err != nil {
		return nil, err
	}

	defaultBranch := ""
	for _, cfg := range append(files, env) {
		if cfg.HasSection("init") && cfg.Section("init").HasOption("defaultBranch") {
			defaultBranch = cfg.Section("init").Option("defaultBranch")
		}
	}

	rc := FromDefaults(defaultBranch)
	for _, cfg := range files {
		rc.Update(FromGitconfig(cfg, log))
	}
	return rc.Update(FromGitconfig(env, log)), nil
}

// FromEnv collects settings passed through GIT_CONFIG_PARAMETERS and
// GIT_CONFIG_COUNT/GIT_CONFIG_KEY_<n>/GIT_CONFIG_VALUE_<n>, in that order.
func (l *Loader) FromEnv() (*format.Config, error) {
	cfg := format.New()

	if params := l.getenv("GIT_CONFIG_PARAMETERS"); params != "" {
		entries, err := shellwords.Parse(params)
		if err != nil {
			return nil, fmt.Errorf("GIT_CONFIG_PARAMETERS: %w", err)
		}
		for _, entry := range entries {
			key, value, _ := strings.Cut(entry, "=")
			addKey(cfg, key, value)
		}
	}

	if countText := l.getenv("GIT_CONFIG_COUNT"); countText != "" {
		count, err := strconv.Atoi(countText)
		if err != nil || count < 0 {
			return nil, fmt.Errorf("GIT_CONFIG_COUNT: invalid count %q", countText)
		}
		for i := 0; i < count; i++ {
			key := l.getenv(fmt.Sprintf("GIT_CONFIG_KEY_%d", i))
			if key == "" {
				return nil, fmt.Errorf("GIT_CONFIG_KEY_%d: missing config key", i)
			}
			addKey(cfg, key, l.getenv(fmt.Sprintf("GIT_CONFIG_VALUE_%d", i)))
		}
	}
	return cfg, nil
}

// addKey adds section.key or section.subsection.key
func addKey(cfg *format.Config, key, value string) {
	section, rest, ok := strings.Cut(key, ".")
	if !ok {
		return
	}
	subsection := format.NoSubsection
	if i := strings.LastIndex(rest, "."); i >= 0 {
		subsection, rest = rest[:i], rest[i+1:]
	}
	cfg.AddOption(section, subsection, rest, value)
}

// readFile decodes a gitconfig file; a missing file yields nil
func readFile(path string) (*format.Config, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg := format.New()
	if err := format.NewDecoder(bytes.NewReader(data)).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// AddProtectedBranches appends patterns to stack.protected-branch in the
// repository config, skipping ones already listed there. It returns the
// patterns that were added.
func (l *Loader) AddProtectedBranches(patterns []string) ([]string, error) {
	if l.GitDir == "" {
		return nil, fmt.Errorf("no repository config to write")
	}
	path := l.RepoPath()
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = format.New()
	}

	section := cfg.Section(stackSection)
	existing := make(map[string]struct{})
	for _, name := range section.OptionAll(keyProtectedBranch) {
		existing[name] = struct{}{}
	}

	var added []string
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if _, ok := existing[pattern]; ok {
			continue
		}
		existing[pattern] = struct{}{}
		section.AddOption(keyProtectedBranch, pattern)
		added = append(added, pattern)
	}
	if len(added) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := format.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	l.logger().Debug("Protected %s in %s", strings.Join(added, ", "), path)
	return added, nil
}
