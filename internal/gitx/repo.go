// Package gitx detects whether a working tree sits inside a git
// repository. Kitforge never reverts files it has written, so apply
// warns before mutating a tree that has no version control to fall
// back on.
package gitx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotRepository reports that no enclosing git repository was found.
var ErrNotRepository = errors.New("not inside a git repository")

// Repo provides an abstraction for git repository detection.
type Repo interface {
	// Discover finds the enclosing git repository root for dir.
	// Returns ErrNotRepository when dir is not under version control.
	Discover(dir string) (string, error)
}

// RealRepo implements Repo by walking the directory tree.
type RealRepo struct{}

// NewRealRepo creates a new RealRepo.
func NewRealRepo() *RealRepo {
	return &RealRepo{}
}

// Discover walks up from dir looking for a .git entry.
func (g *RealRepo) Discover(dir string) (string, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	current := absPath
	for {
		gitDir := filepath.Join(current, ".git")
		if info, err := os.Stat(gitDir); err == nil {
			// .git can be a directory or a file (for worktrees/submodules)
			if info.IsDir() || info.Mode().IsRegular() {
				return current, nil
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			// Reached root directory
			return "", ErrNotRepository
		}
		current = parent
	}
}

// FakeRepo implements Repo with predetermined values for testing.
type FakeRepo struct {
	root string
	err  error
}

// NewFakeRepo creates a FakeRepo reporting the given root.
func NewFakeRepo(root string) *FakeRepo {
	return &FakeRepo{root: root}
}

// SetError sets an error to be returned by Discover.
func (g *FakeRepo) SetError(err error) {
	g.err = err
}

// Discover returns the predetermined root.
func (g *FakeRepo) Discover(dir string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.root, nil
}
