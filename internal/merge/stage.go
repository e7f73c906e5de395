package merge

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/danieljhkim/kitforge/internal/manifest"
	"github.com/danieljhkim/kitforge/internal/state"
)

// Write is one accepted file mutation, carrying the ownership record
// the tree state should hold after commit.
type Write struct {
	// RelPath is the tree-relative path to write.
	RelPath string

	// Content is the full post-merge file content.
	Content []byte

	// Policy is the ownership policy to record for the path.
	Policy manifest.Policy

	// Owners is the full owner list for the path after this write.
	Owners []string
}

// Staged holds every accepted write for one kit.
type Staged struct {
	// Kit is the id of the kit whose files were staged.
	Kit string

	// Writes are the accepted mutations in manifest order.
	Writes []Write
}

// Stage evaluates one kit's rendered files against the tree and its
// ownership records.
//
// Algorithm steps:
//  1. Skip entries whose path this kit already owns, so re-applying a
//     kit never duplicates its contribution.
//  2. Evaluate each remaining entry under its policy: exclusive paths
//     must be unowned and absent, appendable paths concatenate after
//     prior appendable owners, patch entries insert below the first
//     anchor line of an existing file.
//  3. Gather every rejected entry instead of stopping at the first,
//     so one failed kit reports all of its collisions at once.
//  4. Return the writes only when every entry was accepted. A kit
//     with any rejection stages nothing.
func Stage(tree *WorkingTree, ts *state.TreeState, kitID string, files []manifest.FileEntry) (*Staged, error) {
	staged := &Staged{Kit: kitID}
	var conflicts []Conflict
	var failures []PatchFailure

	for _, entry := range files {
		ownership, owned := ts.Paths[entry.RelPath]
		if owned && ownership.Owns(kitID) {
			continue
		}

		switch entry.Policy {
		case manifest.PolicyExclusive:
			if owned {
				conflicts = append(conflicts, Conflict{
					Path:     entry.RelPath,
					Reason:   fmt.Sprintf("exclusive claim on a path already %s-owned", ownership.Policy),
					Kit:      kitID,
					OtherKit: strings.Join(ownership.Kits, ", "),
				})
				continue
			}
			exists, err := tree.Exists(entry.RelPath)
			if err != nil {
				return nil, err
			}
			if exists {
				conflicts = append(conflicts, Conflict{
					Path:   entry.RelPath,
					Reason: "exclusive claim on an unmanaged file",
					Kit:    kitID,
				})
				continue
			}
			staged.Writes = append(staged.Writes, Write{
				RelPath: entry.RelPath,
				Content: []byte(entry.Content),
				Policy:  manifest.PolicyExclusive,
				Owners:  []string{kitID},
			})

		case manifest.PolicyAppendable:
			if owned && ownership.Policy != manifest.PolicyAppendable {
				conflicts = append(conflicts, Conflict{
					Path:     entry.RelPath,
					Reason:   fmt.Sprintf("appendable claim on a path already %s-owned", ownership.Policy),
					Kit:      kitID,
					OtherKit: strings.Join(ownership.Kits, ", "),
				})
				continue
			}
			current, _, err := tree.Read(entry.RelPath)
			if err != nil {
				return nil, err
			}
			staged.Writes = append(staged.Writes, Write{
				RelPath: entry.RelPath,
				Content: appendBlock(current, []byte(entry.Content)),
				Policy:  manifest.PolicyAppendable,
				Owners:  appendOwner(ownership.Kits, kitID),
			})

		case manifest.PolicyPatch:
			current, exists, err := tree.Read(entry.RelPath)
			if err != nil {
				return nil, err
			}
			if !exists {
				failures = append(failures, PatchFailure{
					Path:   entry.RelPath,
					Anchor: entry.Anchor,
					Reason: fmt.Sprintf("file does not exist (anchor %q)", entry.Anchor),
				})
				continue
			}
			patched, found := insertAfterAnchor(current, entry.Anchor, []byte(entry.Content))
			if !found {
				failures = append(failures, PatchFailure{
					Path:   entry.RelPath,
					Anchor: entry.Anchor,
					Reason: fmt.Sprintf("anchor %q not found", entry.Anchor),
				})
				continue
			}
			// Patching an owned path keeps the prior policy and adds this
			// kit as an owner. Patching an unmanaged file records a patch
			// ownership so the contribution is tracked.
			policy := manifest.PolicyPatch
			if owned {
				policy = ownership.Policy
			}
			staged.Writes = append(staged.Writes, Write{
				RelPath: entry.RelPath,
				Content: patched,
				Policy:  policy,
				Owners:  appendOwner(ownership.Kits, kitID),
			})

		default:
			return nil, fmt.Errorf("kit %s declares unknown policy %q for %s", kitID, entry.Policy, entry.RelPath)
		}
	}

	var errs []error
	if len(conflicts) > 0 {
		errs = append(errs, &FileOwnershipConflictError{Kit: kitID, Conflicts: conflicts})
	}
	if len(failures) > 0 {
		errs = append(errs, &MergeConflictError{Kit: kitID, Failures: failures})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return staged, nil
}

// appendBlock concatenates an addition onto the current content,
// inserting a newline separator only when the current content does
// not already end with one.
func appendBlock(current, addition []byte) []byte {
	if len(current) == 0 {
		return addition
	}
	out := make([]byte, 0, len(current)+len(addition)+1)
	out = append(out, current...)
	if current[len(current)-1] != '\n' {
		out = append(out, '\n')
	}
	return append(out, addition...)
}

// insertAfterAnchor inserts the insertion block immediately after the
// first line containing the anchor. The second return reports whether
// the anchor was found; when it is false the content is untouched.
func insertAfterAnchor(current []byte, anchor string, insertion []byte) ([]byte, bool) {
	if len(insertion) > 0 && !bytes.HasSuffix(insertion, []byte("\n")) {
		insertion = append(append([]byte{}, insertion...), '\n')
	}
	lines := strings.SplitAfter(string(current), "\n")
	for i, line := range lines {
		if !strings.Contains(line, anchor) {
			continue
		}
		var out bytes.Buffer
		for _, l := range lines[:i+1] {
			out.WriteString(l)
		}
		// The anchor line may be the last line of a file with no
		// trailing newline.
		if !strings.HasSuffix(line, "\n") {
			out.WriteByte('\n')
		}
		out.Write(insertion)
		for _, l := range lines[i+1:] {
			out.WriteString(l)
		}
		return out.Bytes(), true
	}
	return nil, false
}

func appendOwner(owners []string, kitID string) []string {
	out := make([]string, 0, len(owners)+1)
	out = append(out, owners...)
	return append(out, kitID)
}
