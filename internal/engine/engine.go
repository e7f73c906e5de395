// Package engine provides the core business logic for kitforge
// operations.
//
// The engine package acts as the orchestration layer between CLI
// commands and lower-level operations. It coordinates catalog
// loading, plan resolution, placeholder binding, file merging, tree
// state management, and verification.
//
// Key components:
//   - Engine: Main orchestrator that coordinates all operations
//   - Apply: Executes a resolved plan kit by kit against one tree
//   - Run: Validated state machine tracking a plan execution
//   - Plan/List/Describe/Validate: Read-only catalog operations
package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danieljhkim/kitforge/internal/catalog"
	"github.com/danieljhkim/kitforge/internal/clock"
	"github.com/danieljhkim/kitforge/internal/config"
	"github.com/danieljhkim/kitforge/internal/fsops"
	"github.com/danieljhkim/kitforge/internal/gitx"
	"github.com/danieljhkim/kitforge/internal/hash"
	"github.com/danieljhkim/kitforge/internal/planner"
	"github.com/danieljhkim/kitforge/internal/state"
	"github.com/danieljhkim/kitforge/internal/vars"
	"github.com/danieljhkim/kitforge/internal/verify"
)

// Engine orchestrates all kitforge operations.
// It is the main API surface called by the CLI.
type Engine struct {
	fs      fsops.FS
	hasher  hash.Hasher
	clock   clock.Clock
	gen     vars.Generator
	prober  verify.Prober
	gitRepo gitx.Repo
}

// New creates a new Engine with the given dependencies.
func New(
	fs fsops.FS,
	hasher hash.Hasher,
	clk clock.Clock,
	gen vars.Generator,
	prober verify.Prober,
	gitRepo gitx.Repo,
) *Engine {
	return &Engine{
		fs:      fs,
		hasher:  hasher,
		clock:   clk,
		gen:     gen,
		prober:  prober,
		gitRepo: gitRepo,
	}
}

// resolvePlan loads the catalog and resolves the requested refs into
// an ordered plan.
func (e *Engine) resolvePlan(catalogDir string, rawRefs []string, strict bool) (*planner.ApplyPlan, []catalog.Ref, error) {
	cat, err := catalog.Load(e.fs, catalogDir)
	if err != nil {
		return nil, nil, err
	}
	refs, err := catalog.ParseRefs(rawRefs)
	if err != nil {
		return nil, nil, err
	}
	snap, err := cat.Snapshot(refs)
	if err != nil {
		return nil, nil, err
	}
	plan, err := planner.Resolve(snap, refs, strict)
	if err != nil {
		return nil, nil, err
	}
	return plan, refs, nil
}

// loadValues reads the values file for a run. An explicit path must
// exist; the tree's default file is read only when present.
func (e *Engine) loadValues(req *ApplyRequest) (map[string]string, error) {
	path := req.ValuesFile
	if path == "" {
		candidate := filepath.Join(req.TreeDir, config.DefaultValuesFile)
		exists, err := e.fs.Exists(candidate)
		if err != nil {
			return nil, fmt.Errorf("failed to stat values file: %w", err)
		}
		if !exists {
			return nil, nil
		}
		path = candidate
	}
	return vars.LoadValuesFile(e.fs, path)
}

// loadTreeState reads the tree's state file, creating a fresh state
// for trees kitforge has never written to.
func (e *Engine) loadTreeState(store state.Store) (*state.TreeState, error) {
	ts, err := store.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return state.NewTreeState(), nil
		}
		return nil, err
	}
	return ts, nil
}
