package state

import (
	"time"

	"github.com/danieljhkim/kitforge/internal/manifest"
)

// TreeState is the authoritative record of what kitforge has written
// into a working tree.
type TreeState struct {
	// Applied is the history of applied kits, in apply order.
	Applied []AppliedKit `json:"applied"`

	// Paths maps tree-relative paths to their ownership records.
	Paths map[string]PathOwnership `json:"paths"`
}

// AppliedKit records one applied kit.
type AppliedKit struct {
	// ID is the kit id.
	ID string `json:"id"`

	// Version is the kit version that was applied.
	Version int `json:"version"`

	// Timestamp is when the kit finished applying.
	Timestamp time.Time `json:"timestamp"`
}

// PathOwnership describes which kits own a path and under which policy.
type PathOwnership struct {
	// Policy is the merge policy the path was written under.
	Policy manifest.Policy `json:"policy"`

	// Kits lists the contributing kit ids in apply order. Exclusive
	// paths have exactly one.
	Kits []string `json:"kits"`

	// Checksum is the content hash after the last write.
	Checksum string `json:"checksum"`

	// Timestamp is when the path was last written.
	Timestamp time.Time `json:"timestamp"`
}

// NewTreeState creates a new empty TreeState.
func NewTreeState() *TreeState {
	return &TreeState{
		Applied: []AppliedKit{},
		Paths:   make(map[string]PathOwnership),
	}
}

// Find returns the applied record for a kit id.
func (s *TreeState) Find(id string) (AppliedKit, bool) {
	for _, applied := range s.Applied {
		if applied.ID == id {
			return applied, true
		}
	}
	return AppliedKit{}, false
}

// IsApplied reports whether any version of a kit id has been applied.
func (s *TreeState) IsApplied(id string) bool {
	_, ok := s.Find(id)
	return ok
}

// Owns reports whether kit id is among the owners of a path.
func (o PathOwnership) Owns(id string) bool {
	for _, kit := range o.Kits {
		if kit == id {
			return true
		}
	}
	return false
}
