package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/kitforge/internal/engine"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List kits in the catalog",
	Long:  `Display every kit id in the catalog at its latest version.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := enginePaths()
		if err != nil {
			return err
		}
		eng := newEngine()

		result, err := eng.List(&engine.ListRequest{
			CatalogDir: paths.Catalog,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		if len(result.Kits) == 0 {
			PrintSection("Catalog")
			PrintEmptyState("No kits found")
			return nil
		}

		PrintSection(fmt.Sprintf("Catalog (%s)", PrintCount(len(result.Kits), "kit", "kits")))
		rows := make([][]string, 0, len(result.Kits))
		for _, kit := range result.Kits {
			base := ""
			if kit.IsBase {
				base = "yes"
			}
			rows = append(rows, []string{
				kit.ID,
				strconv.Itoa(kit.Version),
				base,
				strings.Join(kit.Tags, ", "),
				kit.Description,
			})
		}
		PrintTable([]string{"ID", "Version", "Base", "Tags", "Description"}, rows)
		return nil
	},
}
