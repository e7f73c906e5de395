// Package config manages kitforge configuration and filesystem paths.
//
// Kitforge keeps no state of its own outside the working tree: the catalog
// is a plain directory of manifest files and the tree carries its ownership
// state under .kitforge/. This package only resolves where those locations
// are for one invocation, with flag > environment > default precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultCatalogDir is the catalog location relative to the working
	// directory when neither the flag nor KITFORGE_CATALOG is set.
	DefaultCatalogDir = "kits"

	// DefaultValuesFile is the values file the engine picks up from the
	// working tree when --values is not given.
	DefaultValuesFile = "kitforge.values.jsonc"

	// StateDir is the directory inside the working tree holding engine state.
	StateDir = ".kitforge"

	// StateFile is the ownership state file name inside StateDir.
	StateFile = "state.json"

	// EnvCatalog overrides the default catalog directory.
	EnvCatalog = "KITFORGE_CATALOG"
)

// Paths contains the filesystem locations for one kitforge invocation.
type Paths struct {
	// Catalog is the directory scanned for kit manifests
	Catalog string

	// Tree is the working tree root the engine mutates
	Tree string
}

// Resolve computes the paths for one invocation. Empty flag values fall
// back to the environment and then to the defaults. The returned paths
// are absolute.
func Resolve(catalogFlag, treeFlag string) (*Paths, error) {
	catalog := catalogFlag
	if catalog == "" {
		catalog = os.Getenv(EnvCatalog)
	}
	if catalog == "" {
		catalog = DefaultCatalogDir
	}

	tree := treeFlag
	if tree == "" {
		tree = "."
	}

	absCatalog, err := filepath.Abs(catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog directory: %w", err)
	}
	absTree, err := filepath.Abs(tree)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tree directory: %w", err)
	}

	return &Paths{
		Catalog: absCatalog,
		Tree:    absTree,
	}, nil
}

// StatePath returns the ownership state file location inside a tree.
func StatePath(tree string) string {
	return filepath.Join(tree, StateDir, StateFile)
}
