package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/kitforge/internal/engine"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check catalog integrity",
	Long: `Load every manifest in the catalog and report all malformed documents,
duplicate id@version pairs, invalid base orderings, and dependency
cycles at once.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := enginePaths()
		if err != nil {
			return err
		}
		eng := newEngine()

		result, validateErr := eng.Validate(&engine.ValidateRequest{
			CatalogDir: paths.Catalog,
		})

		if jsonOutput {
			if result != nil {
				if err := outputJSON(result); err != nil {
					return err
				}
			}
			return validateErr
		}

		if validateErr != nil {
			return validateErr
		}

		PrintSuccess(fmt.Sprintf("Catalog %s is valid (%s)", result.CatalogDir, PrintCount(result.KitCount, "kit", "kits")))
		for _, w := range result.Warnings {
			PrintWarning(w)
		}
		return nil
	},
}
