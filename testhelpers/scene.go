package testhelpers

import (
	"os"
	"testing"
)

// Scene is a temporary directory holding a fresh git repository
type Scene struct {
	Dir  string
	Repo *GitRepo
}

// SceneSetup prepares a scene's repository.
type SceneSetup func(*Scene) error

// NewScene creates a repository in a temporary directory and changes into it.
// The directory is removed on cleanup unless DEBUG is set.
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "gitstack-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}

	repo, err := NewGitRepo(tmpDir)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		t.Fatalf("Failed to create Git repo: %v", err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		t.Fatalf("Failed to change directory: %v", err)
	}

	t.Cleanup(func() {
		_ = os.Chdir(oldDir)
		if os.Getenv("DEBUG") == "" {
			_ = os.RemoveAll(tmpDir)
		}
	})

	scene := &Scene{Dir: tmpDir, Repo: repo}
	if setup != nil {
		if err := setup(scene); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}
	}
	return scene
}

// BasicSceneSetup creates a single commit on main.
func BasicSceneSetup(scene *Scene) error {
	return scene.Repo.CreateChangeAndCommit("1", "1")
}

// StackSceneSetup builds main with two stacked branches on top:
// main <- feature1 (two commits) <- feature2 (one commit), with feature2 checked out.
func StackSceneSetup(scene *Scene) error {
	steps := []func() error{
		func() error { return scene.Repo.CreateChangeAndCommit("initial", "init") },
		func() error { return scene.Repo.CreateAndCheckoutBranch("feature1") },
		func() error { return scene.Repo.CreateChangeAndCommit("feature1 one", "f1a") },
		func() error { return scene.Repo.CreateChangeAndCommit("feature1 two", "f1b") },
		func() error { return scene.Repo.CreateAndCheckoutBranch("feature2") },
		func() error { return scene.Repo.CreateChangeAndCommit("feature2 one", "f2") },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
