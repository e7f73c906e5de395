package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/kitforge/internal/engine"
	"github.com/danieljhkim/kitforge/internal/manifest"
)

var describeCmd = &cobra.Command{
	Use:   "describe <kit-id>[@version]",
	Short: "Show one kit's full detail",
	Long: `Display a kit's metadata, prerequisites, files, placeholders, and
verification criteria. Without a version pin the latest version is shown.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := enginePaths()
		if err != nil {
			return err
		}
		eng := newEngine()

		result, err := eng.Describe(&engine.DescribeRequest{
			CatalogDir: paths.Catalog,
			Ref:        args[0],
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		kit := result.Kit
		PrintSection(fmt.Sprintf("Kit: %s", kit.ID))
		if kit.Alias != "" {
			PrintLabelValue("Alias", kit.Alias)
		}
		PrintLabelValue("Version", versionLine(kit.Version, result.Versions))
		if kit.IsBase {
			PrintLabelValue("Base", "yes")
		}
		if len(kit.Tags) > 0 {
			PrintLabelValue("Tags", strings.Join(kit.Tags, ", "))
		}
		if kit.Description != "" {
			PrintLabelValue("Description", kit.Description)
		}

		if len(kit.Prereqs) > 0 {
			PrintSubsection("\nPrerequisites")
			PrintList(kit.Prereqs, 1)
		}
		if len(kit.EndState) > 0 {
			PrintSubsection("\nEnd State")
			PrintList(kit.EndState, 1)
		}
		if len(kit.Principles) > 0 {
			PrintSubsection("\nImplementation Principles")
			PrintList(kit.Principles, 1)
		}

		if len(kit.Files) > 0 {
			PrintSubsection(fmt.Sprintf("\nFiles (%s)", PrintCount(len(kit.Files), "entry", "entries")))
			PrintList(fileLines(kit.Files), 1)
		}
		if len(kit.Placeholders) > 0 {
			PrintSubsection(fmt.Sprintf("\nPlaceholders (%s)", PrintCount(len(kit.Placeholders), "token", "tokens")))
			PrintList(placeholderLines(kit), 1)
		}
		if len(kit.Criteria) > 0 {
			PrintSubsection("\nVerification Criteria")
			PrintList(kit.Criteria, 1)
		}
		return nil
	},
}

func versionLine(current int, versions []int) string {
	if len(versions) <= 1 {
		return strconv.Itoa(current)
	}
	all := make([]string, len(versions))
	for i, v := range versions {
		all[i] = strconv.Itoa(v)
	}
	return fmt.Sprintf("%d (available: %s)", current, strings.Join(all, ", "))
}

func fileLines(files []manifest.FileEntry) []string {
	lines := make([]string, 0, len(files))
	for _, f := range files {
		switch f.Policy {
		case manifest.PolicyAppendable:
			lines = append(lines, fmt.Sprintf("%s [appendable]", f.RelPath))
		case manifest.PolicyPatch:
			lines = append(lines, fmt.Sprintf("%s [patch: %s]", f.RelPath, f.Anchor))
		default:
			lines = append(lines, f.RelPath)
		}
	}
	return lines
}

func placeholderLines(kit *manifest.Kit) []string {
	lines := make([]string, 0, len(kit.Placeholders))
	for _, name := range kit.Placeholders {
		spec, ok := kit.Specs[name]
		switch {
		case ok && spec.Generate != "":
			lines = append(lines, fmt.Sprintf("%s (generated: %s)", name, spec.Generate))
		case ok && spec.Default != "":
			lines = append(lines, fmt.Sprintf("%s (default: %q)", name, spec.Default))
		default:
			lines = append(lines, fmt.Sprintf("%s (required)", name))
		}
	}
	return lines
}
