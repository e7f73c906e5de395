package engine

// ApplyRequest represents a request to apply kits to a working tree.
type ApplyRequest struct {
	// CatalogDir is the directory scanned for kit manifests.
	CatalogDir string

	// TreeDir is the root of the working tree to mutate.
	TreeDir string

	// Refs are the requested kit references, id or id@version.
	Refs []string

	// Strict rejects auto-included dependencies and turns
	// verification failures into hard errors.
	Strict bool

	// DryRun stages and reports everything without touching the tree.
	DryRun bool

	// Vars are placeholder values from --var flags, highest priority.
	Vars map[string]string

	// ValuesFile overrides the default values file location. Empty
	// means use the tree's default file when it exists.
	ValuesFile string
}

// PlanRequest represents a request to resolve a plan without applying.
type PlanRequest struct {
	// CatalogDir is the directory scanned for kit manifests.
	CatalogDir string

	// Refs are the requested kit references, id or id@version.
	Refs []string

	// Strict rejects auto-included dependencies.
	Strict bool
}

// ListRequest represents a request for a catalog summary.
type ListRequest struct {
	// CatalogDir is the directory scanned for kit manifests.
	CatalogDir string
}

// DescribeRequest represents a request for one kit's full detail.
type DescribeRequest struct {
	// CatalogDir is the directory scanned for kit manifests.
	CatalogDir string

	// Ref is the kit to describe, id or id@version.
	Ref string
}

// ValidateRequest represents a request to check catalog integrity.
type ValidateRequest struct {
	// CatalogDir is the directory scanned for kit manifests.
	CatalogDir string
}
