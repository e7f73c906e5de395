// Package manifest parses kit documents into structured records.
//
// A kit document is a YAML metadata block delimited by --- lines followed
// by a markdown body. The loader validates required metadata fields,
// extracts recognized body sections, collects the kit's file entries from
// the File Structure section, and scrapes {{TOKEN}} placeholders from the
// body. The body's prose and code payloads are carried opaquely; the
// loader never interprets them beyond section structure.
//
// Key concepts:
//   - Kit: the parsed record for one kit document
//   - FileEntry: one templated file with its ownership policy
//   - PlaceholderSpec: a declared default or generator for a token
package manifest

import "regexp"

// Type is the closed kit type enum. The corpus currently defines a
// single type; role and variant information belongs in Tags.
type Type string

// TypeKit is the only valid kit type.
const TypeKit Type = "kit"

// Policy is the file ownership policy governing how kits may modify a path.
type Policy string

const (
	// PolicyExclusive means only one kit may ever claim the path.
	PolicyExclusive Policy = "exclusive"

	// PolicyAppendable means contributions concatenate in plan order.
	PolicyAppendable Policy = "appendable"

	// PolicyPatch means the kit inserts content after an anchor line.
	PolicyPatch Policy = "patch"
)

// TokenPattern matches {{NAME}} placeholders. Only the double-braced
// form is recognized; names start with a letter or underscore and
// contain only letters, digits, and underscores.
var TokenPattern = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)

// Kit is the structured record for one kit document.
type Kit struct {
	// ID is the unique kit slug.
	ID string

	// Alias is the human-readable display name.
	Alias string

	// Type is the kit type (always TypeKit today).
	Type Type

	// IsBase marks foundation kits that order before all non-base kits.
	IsBase bool

	// Version is a positive integer; the highest version of an id is
	// visible at resolution time unless pinned.
	Version int

	// Tags carries role and variant labels; soft dependencies match on it.
	Tags []string

	// Description is the optional one-line summary.
	Description string

	// EndState holds the ordered End State section items.
	EndState []string

	// Principles holds the ordered Implementation Principles items.
	Principles []string

	// Criteria holds the ordered Verification Criteria items.
	Criteria []string

	// Prereqs holds raw prerequisite bullets. The catalog classifies
	// each bullet as a hard dependency, a soft dependency, or a note.
	Prereqs []string

	// Contracts is the opaque Interface Contracts section text.
	Contracts string

	// Placeholders is the sorted set of {{TOKEN}} names scraped from the body.
	Placeholders []string

	// Specs maps declared placeholder tokens to their default or generator.
	Specs map[string]PlaceholderSpec

	// Files holds the kit's templated file entries in document order.
	Files []FileEntry

	// HardDeps, SoftTags, and DepNotes are filled by catalog
	// classification of Prereqs, not by the loader. HardDeps are kit
	// ids, SoftTags are advisory tag references, DepNotes are
	// human-readable hints with no graph effect.
	HardDeps []string
	SoftTags []string
	DepNotes []string

	// Path is the source document location, kept for error reporting.
	Path string
}

// PlaceholderSpec declares how a placeholder resolves when the user
// supplies no value: a literal default, or a generator kind.
type PlaceholderSpec struct {
	// Default is the literal fallback value.
	Default string `yaml:"default"`

	// Generate names a generator: "secret" or "uuid". Generated values
	// are synthesized once per kit application and shared with later
	// kits in the same plan run.
	Generate string `yaml:"generate"`
}

// FileEntry is one templated file within a kit.
type FileEntry struct {
	// RelPath is the path relative to the working tree root.
	RelPath string

	// Policy is the ownership policy for this path.
	Policy Policy

	// Anchor is the sentinel line marker for PolicyPatch entries.
	Anchor string

	// Content is the templated file payload, verbatim from the manifest.
	Content string
}

// HasTag reports whether the kit carries the given tag.
func (k *Kit) HasTag(tag string) bool {
	for _, t := range k.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
