package merge

import (
	"fmt"
	"strings"
)

// Conflict is one path claimed by two kits whose ownership policies
// cannot be reconciled.
type Conflict struct {
	// Path is the tree-relative path in conflict.
	Path string

	// Reason explains why the claim was rejected.
	Reason string

	// Kit is the kit whose claim was rejected.
	Kit string

	// OtherKit names the prior owner(s). Empty when the collision is
	// with an unmanaged file.
	OtherKit string
}

// FileOwnershipConflictError reports every ownership conflict in one
// kit's file set, gathered before any of the kit's writes commit.
type FileOwnershipConflictError struct {
	Kit       string
	Conflicts []Conflict
}

func (e *FileOwnershipConflictError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "kit %s has ownership conflicts:", e.Kit)
	for _, c := range e.Conflicts {
		sb.WriteString(fmt.Sprintf("\n  - %s: %s", c.Path, c.Reason))
		if c.OtherKit != "" {
			sb.WriteString(fmt.Sprintf(" (owned by %s)", c.OtherKit))
		}
	}
	return sb.String()
}

// PatchFailure is one patch entry that could not land.
type PatchFailure struct {
	Path   string
	Anchor string
	Reason string
}

// MergeConflictError reports every patch in one kit's file set that
// could not land, gathered before any of the kit's writes commit.
type MergeConflictError struct {
	Kit      string
	Failures []PatchFailure
}

func (e *MergeConflictError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "kit %s has merge conflicts:", e.Kit)
	for _, f := range e.Failures {
		sb.WriteString(fmt.Sprintf("\n  - %s: %s", f.Path, f.Reason))
	}
	return sb.String()
}
