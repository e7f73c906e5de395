package planner

import (
	"github.com/danieljhkim/kitforge/internal/manifest"
)

// ApplyPlan is one resolved apply request.
type ApplyPlan struct {
	// Kits is the closure in apply order.
	Kits []*manifest.Kit

	// Requested is the sorted set of requested kit ids.
	Requested []string

	// AutoIncluded is the sorted set of dependency ids pulled in beyond
	// the request. Always empty for strict resolutions.
	AutoIncluded []string

	// Warnings carries auto-include notices and dropped soft orderings.
	Warnings []string
}

// IDs returns the plan's kit ids in apply order.
func (p *ApplyPlan) IDs() []string {
	ids := make([]string, 0, len(p.Kits))
	for _, kit := range p.Kits {
		ids = append(ids, kit.ID)
	}
	return ids
}

// Includes reports whether the plan contains a kit id.
func (p *ApplyPlan) Includes(id string) bool {
	for _, kit := range p.Kits {
		if kit.ID == id {
			return true
		}
	}
	return false
}
