package engine

// Plan resolves the requested refs into an ordered plan without
// touching any tree. Strict mode applies the same gating as apply.
func (e *Engine) Plan(req *PlanRequest) (*PlanResult, error) {
	plan, _, err := e.resolvePlan(req.CatalogDir, req.Refs, req.Strict)
	if err != nil {
		return nil, err
	}
	return &PlanResult{Plan: plan}, nil
}
