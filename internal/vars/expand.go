package vars

import (
	"sort"

	"github.com/danieljhkim/kitforge/internal/manifest"
)

// Expand substitutes every {{TOKEN}} in content with its mapped value
// and returns the distinct unresolved token names. Substitution is pure
// text replacement: expanding the same content with the same mapping is
// byte-identical every time.
func Expand(content string, mapping map[string]string) (string, []string) {
	seen := make(map[string]bool)
	var missing []string

	out := manifest.TokenPattern.ReplaceAllStringFunc(content, func(match string) string {
		name := match[2 : len(match)-2]
		if value, ok := mapping[name]; ok {
			return value
		}
		if !seen[name] {
			seen[name] = true
			missing = append(missing, name)
		}
		return match
	})
	return out, missing
}

// Rendering is one kit's expanded payload.
type Rendering struct {
	// Files are the kit's file entries with substituted content, in
	// manifest order.
	Files []manifest.FileEntry

	// Criteria are the kit's verification criteria with substituted
	// text.
	Criteria []string
}

// Render expands one kit's templated payload against a value mapping.
// Every distinct unresolved token across all files and criteria is
// gathered before failing with UnresolvedPlaceholderError.
func Render(kit *manifest.Kit, mapping map[string]string) (*Rendering, error) {
	rendering := &Rendering{
		Files:    make([]manifest.FileEntry, 0, len(kit.Files)),
		Criteria: make([]string, 0, len(kit.Criteria)),
	}
	missingSet := make(map[string]bool)
	collect := func(names []string) {
		for _, name := range names {
			missingSet[name] = true
		}
	}

	for _, entry := range kit.Files {
		content, missing := Expand(entry.Content, mapping)
		collect(missing)
		entry.Content = content
		rendering.Files = append(rendering.Files, entry)
	}
	for _, criterion := range kit.Criteria {
		text, missing := Expand(criterion, mapping)
		collect(missing)
		rendering.Criteria = append(rendering.Criteria, text)
	}

	if len(missingSet) > 0 {
		missing := make([]string, 0, len(missingSet))
		for name := range missingSet {
			missing = append(missing, name)
		}
		sort.Strings(missing)
		return nil, &UnresolvedPlaceholderError{Kit: kit.ID, Missing: missing}
	}
	return rendering, nil
}
