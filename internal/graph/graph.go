// Package graph builds and orders the kit dependency graph.
//
// Nodes are the kits of one resolution set, held in canonical order:
// base kits first, then ascending id, then descending version. Edges
// point from a dependency to its dependent, so any topological order of
// the graph is a valid apply order, and the canonical order doubles as
// the tie-break between unconstrained kits.
//
// Key concepts:
//   - hard edges: declared kit-id prerequisites; violations are errors
//   - implicit edges: every base kit precedes every non-base kit
//   - soft edges: tag prerequisites; ordering advice only, dropped with
//     a warning when they would close a cycle
package graph

import (
	"fmt"
	"sort"

	"github.com/danieljhkim/kitforge/internal/manifest"
)

// Graph is an immutable, validated dependency graph. It is safe for
// concurrent read access.
type Graph struct {
	kits     []*manifest.Kit // canonical order
	index    map[string]int
	outgoing [][]int // by canonical index
	indeg    []int   // by canonical index
}

// Build constructs a validated graph over one resolution set. The set
// must be dependency-closed: every hard dependency of a member is a
// member. Returned warnings describe soft orderings that were dropped.
//
// Algorithm steps:
//  1. Sort kits into canonical order (base first, id ascending, version
//     descending).
//  2. Add one edge per hard dependency, dependency -> dependent,
//     gathering every base kit that depends on a non-base kit.
//  3. Add implicit base -> non-base edges.
//  4. Prove the graph acyclic, or report one deterministic witness.
//  5. Add soft tag edges, dropping any that would close a cycle.
func Build(kits []*manifest.Kit) (*Graph, []string, error) {
	nodes := make([]*manifest.Kit, len(kits))
	copy(nodes, kits)
	sort.Slice(nodes, func(i, j int) bool { return kitLess(nodes[i], nodes[j]) })

	g := &Graph{
		kits:     nodes,
		index:    make(map[string]int, len(nodes)),
		outgoing: make([][]int, len(nodes)),
		indeg:    make([]int, len(nodes)),
	}
	for i, kit := range nodes {
		g.index[kit.ID] = i
	}

	seen := make(map[[2]int]struct{})
	addEdge := func(from, to int) {
		key := [2]int{from, to}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		g.outgoing[from] = append(g.outgoing[from], to)
		g.indeg[to]++
	}

	var violations []BaseOrderingViolation
	for i, kit := range nodes {
		for _, dep := range kit.HardDeps {
			j, ok := g.index[dep]
			if !ok {
				return nil, nil, fmt.Errorf("kit %s depends on %s, which is not in the resolution set", kit.ID, dep)
			}
			if kit.IsBase && !nodes[j].IsBase {
				violations = append(violations, BaseOrderingViolation{Base: kit.ID, NonBase: dep})
				continue
			}
			addEdge(j, i)
		}
	}
	if len(violations) > 0 {
		sort.Slice(violations, func(a, b int) bool {
			if violations[a].Base != violations[b].Base {
				return violations[a].Base < violations[b].Base
			}
			return violations[a].NonBase < violations[b].NonBase
		})
		return nil, nil, &InvalidBaseOrderingError{Violations: violations}
	}

	for i, kit := range nodes {
		if !kit.IsBase {
			continue
		}
		for j, other := range nodes {
			if other.IsBase {
				continue
			}
			addEdge(i, j)
		}
	}

	for i := range g.outgoing {
		sort.Ints(g.outgoing[i])
	}

	if order := g.orderIndices(); len(order) != len(nodes) {
		return nil, nil, &CyclicDependencyError{Cycle: g.findCycle()}
	}

	// Soft edges go in last, one candidate at a time, so each cycle
	// check sees every edge committed before it. Iteration is canonical
	// (dependent order, then declared tag order, then candidate order),
	// which keeps the kept/dropped split deterministic.
	var warnings []string
	for i, kit := range nodes {
		for _, tag := range kit.SoftTags {
			for j, other := range nodes {
				if j == i || !other.HasTag(tag) {
					continue
				}
				if _, dup := seen[[2]int{j, i}]; dup {
					continue
				}
				if g.reaches(i, j) {
					warnings = append(warnings,
						fmt.Sprintf("soft ordering %s -> %s (tag %q) dropped: would create a cycle", other.ID, kit.ID, tag))
					continue
				}
				addEdge(j, i)
			}
		}
	}

	return g, warnings, nil
}

// Order returns the kits in deterministic apply order.
func (g *Graph) Order() []*manifest.Kit {
	indices := g.orderIndices()
	out := make([]*manifest.Kit, 0, len(indices))
	for _, i := range indices {
		out = append(out, g.kits[i])
	}
	return out
}

// Len returns the number of kits in the graph.
func (g *Graph) Len() int {
	return len(g.kits)
}

// kitLess is the canonical comparator: base kits first, then ascending
// id, then descending version.
func kitLess(a, b *manifest.Kit) bool {
	if a.IsBase != b.IsBase {
		return a.IsBase
	}
	if a.ID != b.ID {
		return a.ID < b.ID
	}
	return a.Version > b.Version
}
