package engine

import (
	"github.com/danieljhkim/kitforge/internal/manifest"
	"github.com/danieljhkim/kitforge/internal/planner"
	"github.com/danieljhkim/kitforge/internal/verify"
)

// KitStatus is the final status of one kit within a run.
type KitStatus string

const (
	// StatusApplied means the kit's files committed cleanly.
	StatusApplied KitStatus = "Applied"

	// StatusSkipped means the kit was already recorded in tree state.
	StatusSkipped KitStatus = "Skipped"

	// StatusConflictFailed means staging was rejected and the kit
	// wrote nothing.
	StatusConflictFailed KitStatus = "ConflictFailed"

	// StatusVerifyFailed means the kit committed but failed a
	// verification check in strict mode.
	StatusVerifyFailed KitStatus = "VerifyFailed"
)

// KitResult is the per-kit outcome of an apply run.
type KitResult struct {
	// ID is the kit id.
	ID string

	// Version is the kit version that was applied.
	Version int

	// Status is the kit's final status.
	Status KitStatus

	// Written lists the tree-relative paths the kit committed.
	Written []string

	// Checks holds the verification outcomes in evaluation order.
	Checks []verify.Result

	// Warnings carries skipped notices and non-strict check failures.
	Warnings []string
}

// ApplyResult represents the result of applying kits.
type ApplyResult struct {
	// Plan is the resolved plan, nil when resolution failed early.
	Plan *planner.ApplyPlan

	// State is the run's terminal state.
	State RunState

	// Kits holds per-kit results in plan order, up to the point the
	// run stopped.
	Kits []KitResult

	// Warnings carries run-level warnings such as a tree without
	// version control.
	Warnings []string

	// DryRun reports whether the tree was left untouched.
	DryRun bool
}

// PlanResult represents the result of resolving without applying.
type PlanResult struct {
	// Plan is the resolved plan.
	Plan *planner.ApplyPlan
}

// KitSummary is one catalog row in a list result.
type KitSummary struct {
	// ID is the kit id.
	ID string

	// Version is the latest version.
	Version int

	// Versions lists every available version, ascending.
	Versions []int

	// IsBase marks foundation kits.
	IsBase bool

	// Tags are the kit's capability tags.
	Tags []string

	// Description is the one-line summary from the manifest.
	Description string
}

// ListResult represents a catalog summary.
type ListResult struct {
	// CatalogDir is the directory that was scanned.
	CatalogDir string

	// Kits holds one summary per id, sorted by id.
	Kits []KitSummary
}

// DescribeResult represents one kit's full detail.
type DescribeResult struct {
	// Kit is the parsed manifest.
	Kit *manifest.Kit

	// Versions lists every available version of the id, ascending.
	Versions []int
}

// ValidateResult represents the outcome of a catalog integrity check.
type ValidateResult struct {
	// CatalogDir is the directory that was checked.
	CatalogDir string

	// KitCount is the number of distinct kit ids, zero when loading
	// failed.
	KitCount int

	// Warnings carries non-fatal findings such as dropped soft edges.
	Warnings []string
}
