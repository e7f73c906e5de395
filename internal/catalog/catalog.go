// Package catalog loads and indexes kit manifests from a directory tree.
//
// A catalog is a directory of markdown manifests, one kit per file, in any
// nesting. Loading parses every manifest, enforces (id, version) uniqueness,
// and indexes kits by id. A Snapshot fixes one visible version per id
// (latest unless pinned) and classifies each kit's prerequisite bullets
// against that visible set.
//
// Key concepts:
//   - Catalog: every parsed manifest, indexed by id and version
//   - Ref: a requested kit id with an optional @version pin
//   - Snapshot: the visible set for one resolution, with prerequisites
//     classified into hard deps, soft tags, and advisory notes
package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/danieljhkim/kitforge/internal/fsops"
	"github.com/danieljhkim/kitforge/internal/manifest"
)

// Catalog indexes every manifest found in one load.
type Catalog struct {
	kits map[string]map[int]*manifest.Kit
}

// Load parses every *.md manifest under dir. Malformed manifests are
// gathered and reported together; a clean parse with a repeated
// (id, version) pair fails with DuplicateIdError listing every offender.
// An empty directory yields an empty catalog.
func Load(fs fsops.FS, dir string) (*Catalog, error) {
	paths, err := fs.Glob(dir, "**/*.md")
	if err != nil {
		return nil, fmt.Errorf("failed to scan catalog %s: %w", dir, err)
	}

	var malformed []error
	var all []*manifest.Kit
	for _, rel := range paths {
		data, err := fs.ReadFile(filepath.Join(dir, rel))
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest %s: %w", rel, err)
		}
		kit, err := manifest.Parse(rel, data)
		if err != nil {
			malformed = append(malformed, err)
			continue
		}
		all = append(all, kit)
	}
	if len(malformed) > 0 {
		return nil, errors.Join(malformed...)
	}

	grouped := make(map[string]map[int][]*manifest.Kit)
	for _, kit := range all {
		if grouped[kit.ID] == nil {
			grouped[kit.ID] = make(map[int][]*manifest.Kit)
		}
		grouped[kit.ID][kit.Version] = append(grouped[kit.ID][kit.Version], kit)
	}

	c := &Catalog{kits: make(map[string]map[int]*manifest.Kit, len(grouped))}
	var dups []Duplicate
	for _, id := range sortedKeys(grouped) {
		versions := grouped[id]
		c.kits[id] = make(map[int]*manifest.Kit, len(versions))
		nums := make([]int, 0, len(versions))
		for v := range versions {
			nums = append(nums, v)
		}
		sort.Ints(nums)
		for _, v := range nums {
			group := versions[v]
			if len(group) > 1 {
				paths := make([]string, 0, len(group))
				for _, k := range group {
					paths = append(paths, k.Path)
				}
				sort.Strings(paths)
				dups = append(dups, Duplicate{ID: id, Version: v, Paths: paths})
				continue
			}
			c.kits[id][v] = group[0]
		}
	}
	if len(dups) > 0 {
		return nil, &DuplicateIdError{Duplicates: dups}
	}
	return c, nil
}

// IDs returns every kit id in the catalog, sorted.
func (c *Catalog) IDs() []string {
	return sortedKeys(c.kits)
}

// Versions returns the versions available for a kit id, ascending.
func (c *Catalog) Versions(id string) []int {
	versions := c.kits[id]
	nums := make([]int, 0, len(versions))
	for v := range versions {
		nums = append(nums, v)
	}
	sort.Ints(nums)
	return nums
}

// Get returns one exact (id, version) kit.
func (c *Catalog) Get(id string, version int) (*manifest.Kit, bool) {
	kit, ok := c.kits[id][version]
	return kit, ok
}

// Latest returns the highest version of a kit id.
func (c *Catalog) Latest(id string) (*manifest.Kit, bool) {
	nums := c.Versions(id)
	if len(nums) == 0 {
		return nil, false
	}
	return c.kits[id][nums[len(nums)-1]], true
}

// Ref is one requested kit: an id plus an optional version pin.
// Version 0 means latest.
type Ref struct {
	ID      string
	Version int
}

// String renders the ref the way it was requested.
func (r Ref) String() string {
	if r.Version == 0 {
		return r.ID
	}
	return fmt.Sprintf("%s@%d", r.ID, r.Version)
}

// ParseRef parses a request argument of the form "id" or "id@version".
func ParseRef(raw string) (Ref, error) {
	id, ver, pinned := strings.Cut(raw, "@")
	if err := fsops.ValidateKitID(id); err != nil {
		return Ref{}, fmt.Errorf("invalid kit reference %q: %w", raw, err)
	}
	if !pinned {
		return Ref{ID: id}, nil
	}
	n, err := strconv.Atoi(ver)
	if err != nil || n <= 0 {
		return Ref{}, fmt.Errorf("invalid kit reference %q: version pin must be a positive integer", raw)
	}
	return Ref{ID: id, Version: n}, nil
}

// ParseRefs parses every request argument, gathering all bad references
// into one error.
func ParseRefs(raws []string) ([]Ref, error) {
	refs := make([]Ref, 0, len(raws))
	var errs []error
	for _, raw := range raws {
		ref, err := ParseRef(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		refs = append(refs, ref)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return refs, nil
}

// Snapshot is the visible kit set for one resolution: exactly one version
// per id. Kits are copies with their prerequisite bullets classified, so
// a snapshot never aliases catalog-owned records.
type Snapshot struct {
	visible map[string]*manifest.Kit
}

// Snapshot resolves the visible version per id. A pinned ref overrides
// latest-wins for its id; a pin naming a version the catalog does not
// carry simply leaves that id out of the snapshot, and resolution reports
// it as unsatisfied. Conflicting pins for one id fail immediately.
//
// After version selection every kit's prerequisite bullets are classified
// against the visible set, in order: a bullet equal to a visible kit id is
// a hard dependency; one equal to a tag carried by any visible kit is a
// soft tag; anything else is an advisory note. A kit naming itself is a
// note.
func (c *Catalog) Snapshot(refs []Ref) (*Snapshot, error) {
	pins := make(map[string]int)
	var conflicts []string
	for _, ref := range refs {
		if ref.Version == 0 {
			continue
		}
		if prev, ok := pins[ref.ID]; ok && prev != ref.Version {
			conflicts = append(conflicts, fmt.Sprintf("%s pinned to both %d and %d", ref.ID, prev, ref.Version))
			continue
		}
		pins[ref.ID] = ref.Version
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		return nil, fmt.Errorf("conflicting version pins: %s", strings.Join(conflicts, "; "))
	}

	snap := &Snapshot{visible: make(map[string]*manifest.Kit, len(c.kits))}
	for id := range c.kits {
		var picked *manifest.Kit
		if v, ok := pins[id]; ok {
			picked = c.kits[id][v]
		} else {
			picked, _ = c.Latest(id)
		}
		if picked == nil {
			continue
		}
		copied := *picked
		snap.visible[id] = &copied
	}

	tagged := make(map[string]bool)
	for _, kit := range snap.visible {
		for _, tag := range kit.Tags {
			tagged[tag] = true
		}
	}

	for _, kit := range snap.visible {
		kit.HardDeps = nil
		kit.SoftTags = nil
		kit.DepNotes = nil
		for _, bullet := range kit.Prereqs {
			switch {
			case bullet == kit.ID:
				kit.DepNotes = append(kit.DepNotes, bullet)
			case snap.visible[bullet] != nil:
				kit.HardDeps = append(kit.HardDeps, bullet)
			case tagged[bullet]:
				kit.SoftTags = append(kit.SoftTags, bullet)
			default:
				kit.DepNotes = append(kit.DepNotes, bullet)
			}
		}
	}
	return snap, nil
}

// Get returns the visible kit for an id.
func (s *Snapshot) Get(id string) (*manifest.Kit, bool) {
	kit, ok := s.visible[id]
	return kit, ok
}

// Kits returns every visible kit, sorted by id.
func (s *Snapshot) Kits() []*manifest.Kit {
	out := make([]*manifest.Kit, 0, len(s.visible))
	for _, id := range sortedKeys(s.visible) {
		out = append(out, s.visible[id])
	}
	return out
}

// Len returns the number of visible kits.
func (s *Snapshot) Len() int {
	return len(s.visible)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
