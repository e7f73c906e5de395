package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/danieljhkim/kitforge/internal/config"
	"github.com/danieljhkim/kitforge/internal/merge"
	"github.com/danieljhkim/kitforge/internal/state"
	"github.com/danieljhkim/kitforge/internal/vars"
	"github.com/danieljhkim/kitforge/internal/verify"
)

// Algorithm steps:
//  1. Resolve the catalog and requested refs into an ordered plan
//  2. Load tree state and placeholder values, render every pending
//     kit up front so unresolved placeholders block before any write
//  3. Warn when the tree is not under version control
//  4. Per kit in plan order: skip if already recorded, stage the file
//     set against tree and ownership state, commit, record ownership
//     and the applied id, then run verification
//  5. Persist tree state after every committed kit
//  6. Return per-kit results and the run's terminal state
func (e *Engine) Apply(ctx context.Context, req *ApplyRequest) (*ApplyResult, error) {
	run := NewRun()
	result := &ApplyResult{DryRun: req.DryRun}
	fail := func(err error) (*ApplyResult, error) {
		result.State = run.State()
		return result, err
	}

	run.To(StateResolving)
	plan, _, err := e.resolvePlan(req.CatalogDir, req.Refs, req.Strict)
	if err != nil {
		run.To(StateBlocked)
		return fail(err)
	}
	result.Plan = plan

	stateStore := state.NewFileStore(e.fs, config.StatePath(req.TreeDir))
	ts, err := e.loadTreeState(stateStore)
	if err != nil {
		run.To(StateBlocked)
		return fail(fmt.Errorf("failed to load tree state: %w", err))
	}
	result.Warnings = append(result.Warnings, e.driftWarnings(req.TreeDir, ts)...)

	fileVals, err := e.loadValues(req)
	if err != nil {
		run.To(StateBlocked)
		return fail(err)
	}
	values := vars.NewValues(fileVals, req.Vars, e.gen)

	// Rendering the whole plan before the first write surfaces every
	// unresolved placeholder while the tree is still untouched.
	rendered := make(map[string]*vars.Rendering, len(plan.Kits))
	var renderErrs []error
	for _, kit := range plan.Kits {
		if ts.IsApplied(kit.ID) {
			continue
		}
		mapping, err := values.ForKit(kit)
		if err != nil {
			run.To(StateBlocked)
			return fail(fmt.Errorf("failed to bind values for kit %s: %w", kit.ID, err))
		}
		rendering, err := vars.Render(kit, mapping)
		if err != nil {
			renderErrs = append(renderErrs, err)
			continue
		}
		rendered[kit.ID] = rendering
	}
	if len(renderErrs) > 0 {
		run.To(StateBlocked)
		return fail(errors.Join(renderErrs...))
	}

	run.To(StateReady)

	if !req.DryRun && len(rendered) > 0 {
		if _, err := e.gitRepo.Discover(req.TreeDir); err != nil {
			result.Warnings = append(result.Warnings,
				"tree is not under version control; kitforge cannot revert the files it writes")
		}
	}

	tree := merge.NewWorkingTree(e.fs, req.TreeDir, req.DryRun)
	runner := verify.NewRunner(e.clock, e.prober)
	if req.DryRun {
		runner.SkipProbes()
	}

	for _, kit := range plan.Kits {
		kr := KitResult{ID: kit.ID, Version: kit.Version}

		if ts.IsApplied(kit.ID) {
			kr.Status = StatusSkipped
			kr.Warnings = append(kr.Warnings, fmt.Sprintf("kit %s is already applied, skipping", kit.ID))
			result.Kits = append(result.Kits, kr)
			continue
		}

		run.ToApplying(kit.ID)
		rendering := rendered[kit.ID]

		staged, err := merge.Stage(tree, ts, kit.ID, rendering.Files)
		if err != nil {
			kr.Status = StatusConflictFailed
			result.Kits = append(result.Kits, kr)
			run.To(StateConflictFailed)
			run.To(StateAborted)
			return fail(err)
		}
		if err := merge.Commit(ctx, tree, staged); err != nil {
			run.To(StateAborted)
			return fail(err)
		}

		now := e.clock.Now()
		for _, w := range staged.Writes {
			ts.Paths[w.RelPath] = state.PathOwnership{
				Policy:    w.Policy,
				Kits:      w.Owners,
				Checksum:  e.hasher.HashBytes(w.Content),
				Timestamp: now,
			}
			kr.Written = append(kr.Written, w.RelPath)
		}
		ts.Applied = append(ts.Applied, state.AppliedKit{
			ID:        kit.ID,
			Version:   kit.Version,
			Timestamp: now,
		})
		if !req.DryRun {
			if err := stateStore.Save(ts); err != nil {
				run.To(StateAborted)
				return fail(fmt.Errorf("failed to save tree state: %w", err))
			}
		}

		outcome, err := runner.Run(ctx, tree, kit.ID, rendering.Criteria, kr.Written)
		if err != nil {
			run.To(StateAborted)
			return fail(fmt.Errorf("failed to verify kit %s: %w", kit.ID, err))
		}
		kr.Checks = outcome.Results

		if failures := outcome.Failures(); len(failures) > 0 {
			if req.Strict {
				kr.Status = StatusVerifyFailed
				result.Kits = append(result.Kits, kr)
				run.To(StateVerifyFailed)
				run.To(StateAborted)
				return fail(&verify.VerifyFailedError{Kit: kit.ID, Failures: failures})
			}
			for _, f := range failures {
				kr.Warnings = append(kr.Warnings,
					fmt.Sprintf("verification: %s: %s", f.Criterion.Raw, f.Detail))
			}
		}

		kr.Status = StatusApplied
		result.Kits = append(result.Kits, kr)
		run.To(StateKitApplied)
	}

	run.To(StateDone)
	result.State = run.State()
	return result, nil
}

// driftWarnings compares every managed path against the checksum
// recorded at its last write. Out-of-band edits never block a run;
// they are reported so the operator knows the tree has diverged from
// what its kits wrote.
func (e *Engine) driftWarnings(treeDir string, ts *state.TreeState) []string {
	paths := make([]string, 0, len(ts.Paths))
	for relPath := range ts.Paths {
		paths = append(paths, relPath)
	}
	sort.Strings(paths)

	var warnings []string
	for _, relPath := range paths {
		owned := ts.Paths[relPath]
		owners := strings.Join(owned.Kits, ", ")
		abs := filepath.Join(treeDir, relPath)

		exists, err := e.fs.Exists(abs)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("managed path %s could not be checked: %v", relPath, err))
			continue
		}
		if !exists {
			warnings = append(warnings, fmt.Sprintf("managed path %s (owned by %s) is missing from the tree", relPath, owners))
			continue
		}

		content, err := e.fs.ReadFile(abs)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("managed path %s could not be checked: %v", relPath, err))
			continue
		}
		if e.hasher.HashBytes(content) != owned.Checksum {
			warnings = append(warnings, fmt.Sprintf("managed path %s (owned by %s) was modified outside kitforge", relPath, owners))
		}
	}
	return warnings
}
