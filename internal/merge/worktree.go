// Package merge stages and commits kit file sets into a working tree.
//
// Staging evaluates one kit's rendered files against the tree's
// ownership records and produces either a full set of writes or a
// gathered error naming every rejected path. Nothing touches disk
// until every entry in the set has been accepted, so a kit either
// lands completely or not at all.
//
// Key concepts:
//   - WorkingTree: read view over the target tree. In dry-run mode
//     committed writes land in an in-memory overlay, so later kits in
//     the same run observe earlier kits' output without the tree
//     changing.
//   - Staged: the accepted writes for one kit, ready to commit.
//   - ownership policies: exclusive paths admit a single owner,
//     appendable paths accumulate one block per kit, patch entries
//     insert below an anchor line in an existing file.
package merge

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/danieljhkim/kitforge/internal/fsops"
)

// WorkingTree is a read view over the target tree rooted at Root.
type WorkingTree struct {
	fs      fsops.FS
	root    string
	dryRun  bool
	overlay map[string][]byte
}

// NewWorkingTree returns a working tree over root. When dryRun is
// set, commits are captured in memory instead of written to disk.
func NewWorkingTree(fs fsops.FS, root string, dryRun bool) *WorkingTree {
	return &WorkingTree{
		fs:      fs,
		root:    root,
		dryRun:  dryRun,
		overlay: make(map[string][]byte),
	}
}

// Root returns the tree's root directory.
func (t *WorkingTree) Root() string {
	return t.root
}

// DryRun reports whether commits are captured in memory.
func (t *WorkingTree) DryRun() bool {
	return t.dryRun
}

// Abs returns the absolute path for a tree-relative path.
func (t *WorkingTree) Abs(relPath string) string {
	return filepath.Join(t.root, filepath.FromSlash(relPath))
}

// Read returns the current content of a tree-relative path. The
// overlay is consulted before disk so dry-run commits are visible to
// later reads. The second return reports whether the path exists.
func (t *WorkingTree) Read(relPath string) ([]byte, bool, error) {
	if content, ok := t.overlay[relPath]; ok {
		return content, true, nil
	}
	content, err := t.fs.ReadFile(t.Abs(relPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", relPath, err)
	}
	return content, true, nil
}

// Exists reports whether a tree-relative path exists in the overlay
// or on disk.
func (t *WorkingTree) Exists(relPath string) (bool, error) {
	if _, ok := t.overlay[relPath]; ok {
		return true, nil
	}
	exists, err := t.fs.Exists(t.Abs(relPath))
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", relPath, err)
	}
	return exists, nil
}
