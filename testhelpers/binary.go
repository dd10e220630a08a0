// Package testhelpers provides shared test utilities: git scenes backed by the
// git CLI, declarative in-memory DAG fixtures and a prebuilt git-stack binary.
package testhelpers

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	sharedBinaryPath string
	binaryOnce       sync.Once
	binaryErr        error
	binaryCleanup    = func() {}
)

// GetSharedBinaryPath returns the git-stack binary, building it on first use
func GetSharedBinaryPath() string {
	binaryOnce.Do(func() {
		sharedBinaryPath, binaryCleanup, binaryErr = buildBinary()
	})
	return sharedBinaryPath
}

// GetBinaryError returns any error that occurred during binary building.
func GetBinaryError() error {
	return binaryErr
}

// BinaryPath returns the prebuilt binary or fails the test
func BinaryPath(t *testing.T) string {
	t.Helper()
	path := GetSharedBinaryPath()
	if path == "" {
		t.Fatalf("git-stack binary not built: %v", GetBinaryError())
	}
	return path
}

// buildBinary builds ./cmd/git-stack into a temporary directory
func buildBinary() (string, func(), error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	moduleRoot := findModuleRoot(wd)
	if moduleRoot == "" {
		return "", nil, fmt.Errorf("could not find module root (go.mod) starting from %s", wd)
	}

	tmpDir, err := os.MkdirTemp("", "git-stack-test-binary-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	binaryPath := filepath.Join(tmpDir, "git-stack")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/git-stack")
	cmd.Dir = moduleRoot
	output, err := cmd.CombinedOutput()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", nil, fmt.Errorf("failed to build: %s: %w", string(output), err)
	}

	return binaryPath, func() { _ = os.RemoveAll(tmpDir) }, nil
}

// findModuleRoot walks up from startDir to the directory holding go.mod
func findModuleRoot(startDir string) string {
	dir := startDir
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// TestMain builds the binary once, runs the package's tests and removes it.
// Packages that drive the CLI call it from their own TestMain.
func TestMain(m *testing.M, cleanup func()) {
	if GetSharedBinaryPath() == "" {
		fmt.Fprintf(os.Stderr, "Failed to build git-stack binary: %v\n", binaryErr)
		os.Exit(1)
	}

	code := m.Run()

	binaryCleanup()
	if cleanup != nil {
		cleanup()
	}
	os.Exit(code)
}
