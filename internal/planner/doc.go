// Package planner resolves apply requests into deterministic plans.
//
// Resolution takes the requested kit refs plus a catalog snapshot,
// closes over hard dependencies, and orders the closure through the
// dependency graph. The same request against the same snapshot always
// yields the same plan.
//
// Key responsibilities:
//   - Close the requested set over transitive hard dependencies
//   - Enforce strict mode (dependencies outside the request fail) or
//     auto-include with a warning per pulled-in kit
//   - Gather every unsatisfied id before failing
//   - Produce the ordered ApplyPlan the apply loop consumes
package planner
