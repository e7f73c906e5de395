package catalog

import (
	"fmt"
	"strings"
)

// Duplicate records one (id, version) pair declared by more than one
// manifest in the same catalog.
type Duplicate struct {
	ID      string
	Version int
	Paths   []string
}

// DuplicateIdError reports every (id, version) pair that more than one
// manifest claims, gathered in a single load pass.
type DuplicateIdError struct {
	Duplicates []Duplicate
}

func (e *DuplicateIdError) Error() string {
	var sb strings.Builder
	sb.WriteString("duplicate kit ids in catalog:")
	for _, d := range e.Duplicates {
		sb.WriteString(fmt.Sprintf("\n  - %s v%d: %s", d.ID, d.Version, strings.Join(d.Paths, ", ")))
	}
	return sb.String()
}
