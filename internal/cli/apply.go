package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/kitforge/internal/engine"
	"github.com/danieljhkim/kitforge/internal/vars"
	"github.com/danieljhkim/kitforge/internal/verify"
)

var (
	applyStrict        bool
	applyDryRun        bool
	applyVars          []string
	applyValuesFile    string
	applyVerifyTimeout time.Duration
)

var applyCmd = &cobra.Command{
	Use:   "apply <kit-id>[@version]...",
	Short: "Resolve kits and merge their files into the tree",
	Long: `Apply one or more kits to the working tree.

Requested kits are resolved together with their prerequisites into a
deterministic order. Each kit's files are rendered, checked against the
recorded path ownership, and committed atomically before the next kit
starts. Verification criteria run after each commit.

A conflict or a strict verification failure aborts the remaining plan;
the tree keeps everything committed up to that point.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flagVals, err := vars.ParseVarFlags(applyVars)
		if err != nil {
			return err
		}

		paths, err := enginePaths()
		if err != nil {
			return err
		}
		eng := newEngine()

		ctx := context.Background()

		req := &engine.ApplyRequest{
			CatalogDir: paths.Catalog,
			TreeDir:    paths.Tree,
			Refs:       args,
			Strict:     applyStrict,
			DryRun:     applyDryRun,
			Vars:       flagVals,
			ValuesFile: applyValuesFile,
		}

		result, applyErr := eng.Apply(ctx, req)

		if jsonOutput {
			if result != nil {
				if err := outputJSON(result); err != nil {
					return err
				}
			}
			return applyErr
		}

		if result != nil {
			renderApply(result)
		}
		return applyErr
	},
}

func init() {
	applyCmd.Flags().BoolVar(&applyStrict, "strict", false, "Reject unrequested prerequisites and treat verification failures as fatal")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Resolve, render, and check conflicts without writing files")
	applyCmd.Flags().StringArrayVar(&applyVars, "var", nil, "Placeholder value as KEY=VALUE (repeatable)")
	applyCmd.Flags().StringVar(&applyValuesFile, "values", "", "Placeholder values file (JSONC)")
	applyCmd.Flags().DurationVar(&applyVerifyTimeout, "verify-timeout", 5*time.Second, "Timeout per HTTP verification attempt")
}

// renderApply prints the human-readable outcome of an apply run, both
// for completed runs and for runs that stopped partway.
func renderApply(result *engine.ApplyResult) {
	if result.DryRun {
		PrintSection("Dry Run")
	} else {
		PrintSection("Apply")
	}

	if result.Plan != nil && len(result.Plan.AutoIncluded) > 0 {
		PrintInfo(fmt.Sprintf("Auto-included prerequisites: %s", strings.Join(result.Plan.AutoIncluded, ", ")))
	}
	for _, w := range result.Warnings {
		PrintWarning(w)
	}

	applied := 0
	for _, kit := range result.Kits {
		ref := fmt.Sprintf("%s@%d", kit.ID, kit.Version)
		switch kit.Status {
		case engine.StatusApplied:
			applied++
			PrintSuccess(fmt.Sprintf("%s (%s)", ref, PrintCount(len(kit.Written), "file", "files")))
		case engine.StatusSkipped:
			PrintEmptyState(fmt.Sprintf("%s already applied, skipped", ref))
		case engine.StatusConflictFailed:
			PrintError(fmt.Sprintf("%s: conflicts, kit wrote nothing", ref))
		case engine.StatusVerifyFailed:
			PrintError(fmt.Sprintf("%s: verification failed, files were committed", ref))
		}

		if result.DryRun && len(kit.Written) > 0 {
			PrintList(kit.Written, 1)
		}
		if manual := manualChecks(kit.Checks); len(manual) > 0 {
			PrintList(manual, 1)
		}
		for _, w := range kit.Warnings {
			PrintWarning(w)
		}
	}

	if result.State == engine.StateDone {
		fmt.Println()
		if result.DryRun {
			PrintInfo(fmt.Sprintf("Would apply %s. No files were written.", PrintCount(applied, "kit", "kits")))
		} else if applied == 0 {
			PrintInfo("Nothing to apply.")
		} else {
			PrintSuccess(fmt.Sprintf("Applied %s", PrintCount(applied, "kit", "kits")))
		}
	}
}

// manualChecks extracts the advisory verification lines for display.
func manualChecks(checks []verify.Result) []string {
	lines := make([]string, 0, len(checks))
	for _, c := range checks {
		if c.Advisory {
			lines = append(lines, fmt.Sprintf("manual check: %s", c.Criterion.Raw))
		}
	}
	return lines
}
