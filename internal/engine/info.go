package engine

import (
	"fmt"

	"github.com/danieljhkim/kitforge/internal/catalog"
	"github.com/danieljhkim/kitforge/internal/manifest"
)

// List loads the catalog and summarizes every kit id at its latest
// version.
func (e *Engine) List(req *ListRequest) (*ListResult, error) {
	cat, err := catalog.Load(e.fs, req.CatalogDir)
	if err != nil {
		return nil, err
	}

	result := &ListResult{CatalogDir: req.CatalogDir}
	for _, id := range cat.IDs() {
		kit, ok := cat.Latest(id)
		if !ok {
			continue
		}
		result.Kits = append(result.Kits, KitSummary{
			ID:          id,
			Version:     kit.Version,
			Versions:    cat.Versions(id),
			IsBase:      kit.IsBase,
			Tags:        kit.Tags,
			Description: kit.Description,
		})
	}
	return result, nil
}

// Describe returns the full manifest detail for one kit reference.
func (e *Engine) Describe(req *DescribeRequest) (*DescribeResult, error) {
	cat, err := catalog.Load(e.fs, req.CatalogDir)
	if err != nil {
		return nil, err
	}
	ref, err := catalog.ParseRef(req.Ref)
	if err != nil {
		return nil, err
	}

	var kit *manifest.Kit
	var ok bool
	if ref.Version == 0 {
		kit, ok = cat.Latest(ref.ID)
	} else {
		kit, ok = cat.Get(ref.ID, ref.Version)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", ref.String(), ErrKitNotFound)
	}
	return &DescribeResult{Kit: kit, Versions: cat.Versions(ref.ID)}, nil
}
