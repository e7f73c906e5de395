package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/kitforge/internal/fsops"
)

// metadata is the YAML frontmatter schema. Unknown keys are rejected so
// typos in authored manifests surface instead of silently vanishing.
type metadata struct {
	ID           string                     `yaml:"id"`
	Alias        string                     `yaml:"alias"`
	Type         string                     `yaml:"type"`
	IsBase       bool                       `yaml:"is_base"`
	Version      int                        `yaml:"version"`
	Tags         []string                   `yaml:"tags"`
	Description  string                     `yaml:"description"`
	Placeholders map[string]PlaceholderSpec `yaml:"placeholders"`
}

// Parse parses one kit document. It returns a MalformedManifestError
// gathering every problem with the document rather than stopping at the
// first: required metadata, version positivity, the type enum,
// placeholder specs, and file entry paths and policies are all checked
// in one pass. Body sections the loader does not recognize are skipped
// as opaque payload.
func Parse(path string, data []byte) (*Kit, error) {
	meta, body, splitErr := splitFrontmatter(data)
	if splitErr != nil {
		return nil, &MalformedManifestError{Path: path, Issues: []string{splitErr.Error()}}
	}

	// An empty metadata block decodes as io.EOF; the field checks below
	// report what is missing.
	var md metadata
	dec := yaml.NewDecoder(bytes.NewReader(meta))
	dec.KnownFields(true)
	if err := dec.Decode(&md); err != nil && !errors.Is(err, io.EOF) {
		return nil, &MalformedManifestError{Path: path, Issues: []string{fmt.Sprintf("invalid metadata block: %v", err)}}
	}

	var issues []string

	if md.ID == "" {
		issues = append(issues, "missing required field: id")
	} else if err := fsops.ValidateKitID(md.ID); err != nil {
		issues = append(issues, err.Error())
	}
	if md.Alias == "" {
		issues = append(issues, "missing required field: alias")
	}
	switch md.Type {
	case "":
		issues = append(issues, "missing required field: type")
	case string(TypeKit):
	default:
		issues = append(issues, fmt.Sprintf("unknown type %q: only %q is valid", md.Type, TypeKit))
	}
	if md.Version <= 0 {
		issues = append(issues, fmt.Sprintf("version must be a positive integer, got %d", md.Version))
	}

	specNames := make([]string, 0, len(md.Placeholders))
	for name := range md.Placeholders {
		specNames = append(specNames, name)
	}
	sort.Strings(specNames)
	for _, name := range specNames {
		spec := md.Placeholders[name]
		if !TokenPattern.MatchString("{{" + name + "}}") {
			issues = append(issues, fmt.Sprintf("placeholder %q: invalid token name", name))
		}
		if spec.Default != "" && spec.Generate != "" {
			issues = append(issues, fmt.Sprintf("placeholder %q: default and generate are mutually exclusive", name))
		}
		switch spec.Generate {
		case "", "secret", "uuid":
		default:
			issues = append(issues, fmt.Sprintf("placeholder %q: unknown generator %q", name, spec.Generate))
		}
	}

	kit := &Kit{
		ID:          md.ID,
		Alias:       md.Alias,
		Type:        Type(md.Type),
		IsBase:      md.IsBase,
		Version:     md.Version,
		Tags:        dedupe(md.Tags),
		Description: md.Description,
		Specs:       md.Placeholders,
		Path:        path,
	}

	issues = append(issues, parseBody(kit, body)...)
	issues = append(issues, validateFiles(kit.Files)...)

	kit.Placeholders = scrapePlaceholders(body)

	if len(issues) > 0 {
		return nil, &MalformedManifestError{Path: path, Issues: issues}
	}
	return kit, nil
}

// splitFrontmatter separates the metadata block from the markdown body.
// The document must open with a --- line; the block ends at the next one.
func splitFrontmatter(data []byte) (meta, body []byte, err error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	const fence = "---"
	lines := strings.SplitAfter(text, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\n") != fence {
		return nil, nil, fmt.Errorf("missing metadata block: document must open with a --- line")
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\n") == fence {
			meta = []byte(strings.Join(lines[1:i], ""))
			body = []byte(strings.Join(lines[i+1:], ""))
			return meta, body, nil
		}
	}
	return nil, nil, fmt.Errorf("missing metadata block: no closing --- line")
}

// validateFiles checks every file entry for path safety and rejects a
// kit that claims the same path twice. A kit's file set must be
// internally conflict-free so its writes can commit in parallel.
func validateFiles(files []FileEntry) []string {
	var issues []string
	seen := make(map[string]Policy, len(files))
	for _, f := range files {
		if err := fsops.ValidateRelPath(f.RelPath); err != nil {
			issues = append(issues, fmt.Sprintf("file %q: %v", f.RelPath, err))
			continue
		}
		if prev, ok := seen[f.RelPath]; ok {
			issues = append(issues, fmt.Sprintf("file %q: declared twice (%s and %s)", f.RelPath, prev, f.Policy))
			continue
		}
		seen[f.RelPath] = f.Policy
	}
	return issues
}

// scrapePlaceholders returns the sorted set of token names used in the body.
func scrapePlaceholders(body []byte) []string {
	matches := TokenPattern.FindAllSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		set[string(m[1])] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// dedupe removes duplicate tags preserving first-seen order.
func dedupe(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
