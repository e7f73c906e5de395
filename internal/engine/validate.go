package engine

import (
	"github.com/danieljhkim/kitforge/internal/catalog"
	"github.com/danieljhkim/kitforge/internal/graph"
)

// Validate checks catalog integrity: manifests parse, ids are unique,
// and the full catalog at latest versions produces a legal dependency
// graph. Loading gathers every manifest and duplicate issue; graph
// construction then reports base-ordering violations or a cycle.
func (e *Engine) Validate(req *ValidateRequest) (*ValidateResult, error) {
	result := &ValidateResult{CatalogDir: req.CatalogDir}

	cat, err := catalog.Load(e.fs, req.CatalogDir)
	if err != nil {
		return result, err
	}
	result.KitCount = len(cat.IDs())

	snap, err := cat.Snapshot(nil)
	if err != nil {
		return result, err
	}
	_, warnings, err := graph.Build(snap.Kits())
	if err != nil {
		return result, err
	}
	result.Warnings = warnings
	return result, nil
}
