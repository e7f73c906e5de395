package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/kitforge/internal/engine"
)

var planStrict bool

var planCmd = &cobra.Command{
	Use:   "plan <kit-id>[@version]...",
	Short: "Show the resolved apply order without touching the tree",
	Long: `Resolve the requested kits and print the plan that apply would follow.

The plan lists every kit in apply order, including prerequisites pulled
in beyond the request, and the resolution warnings.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := enginePaths()
		if err != nil {
			return err
		}
		eng := newEngine()

		result, err := eng.Plan(&engine.PlanRequest{
			CatalogDir: paths.Catalog,
			Refs:       args,
			Strict:     planStrict,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		PrintSection("Apply Plan")
		steps := make([]string, 0, len(result.Plan.Kits))
		for _, kit := range result.Plan.Kits {
			step := fmt.Sprintf("%s@%d", kit.ID, kit.Version)
			if kit.IsBase {
				step += " (base)"
			}
			steps = append(steps, step)
		}
		PrintNumberedList(steps, 1)

		if len(result.Plan.AutoIncluded) > 0 {
			fmt.Println()
			PrintInfo(fmt.Sprintf("Auto-included prerequisites: %s", strings.Join(result.Plan.AutoIncluded, ", ")))
		}
		for _, w := range result.Plan.Warnings {
			PrintWarning(w)
		}
		return nil
	},
}

func init() {
	planCmd.Flags().BoolVar(&planStrict, "strict", false, "Fail when the request omits prerequisites")
}
