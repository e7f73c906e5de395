package planner

import (
	"strings"
)

// UnsatisfiedDependencyError reports ids a resolution could not satisfy.
// Unknown ids are absent from the catalog entirely (or pinned to a
// version it does not carry). Unrequested ids exist in the catalog but
// were not requested; they only fail strict resolutions. Each list is
// complete and sorted before the error is returned.
type UnsatisfiedDependencyError struct {
	Unknown     []string
	Unrequested []string
}

func (e *UnsatisfiedDependencyError) Error() string {
	var parts []string
	if len(e.Unknown) > 0 {
		parts = append(parts, "unknown kits: "+strings.Join(e.Unknown, ", "))
	}
	if len(e.Unrequested) > 0 {
		parts = append(parts, "dependencies not requested: "+strings.Join(e.Unrequested, ", "))
	}
	if len(parts) == 0 {
		return "unsatisfied dependencies"
	}
	return "unsatisfied dependencies: " + strings.Join(parts, "; ")
}
