package planner

import (
	"fmt"
	"sort"

	"github.com/danieljhkim/kitforge/internal/catalog"
	"github.com/danieljhkim/kitforge/internal/graph"
	"github.com/danieljhkim/kitforge/internal/manifest"
)

// Resolve turns requested refs into an ordered ApplyPlan.
//
// Algorithm steps:
//  1. Look up every requested ref in the snapshot, gathering unknowns.
//  2. Walk hard dependencies breadth-first to close the set, gathering
//     unknowns and recording who required each pulled-in kit.
//  3. Strict mode: fail if the closure grew beyond the request, listing
//     every unrequested dependency. Otherwise warn per auto-include.
//  4. Build the dependency graph over the closure and take its order.
func Resolve(snap *catalog.Snapshot, refs []catalog.Ref, strict bool) (*ApplyPlan, error) {
	requested := make(map[string]bool, len(refs))
	var unknown []string

	for _, ref := range refs {
		if requested[ref.ID] {
			continue
		}
		requested[ref.ID] = true
		if _, ok := snap.Get(ref.ID); !ok {
			unknown = append(unknown, ref.String())
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &UnsatisfiedDependencyError{Unknown: unknown}
	}

	// Breadth-first closure over hard deps. The queue starts from the
	// sorted request so discovery order is stable.
	closure := make(map[string]*manifest.Kit, len(requested))
	requiredBy := make(map[string][]string)
	queue := sortedIDs(requested)
	for _, id := range queue {
		kit, _ := snap.Get(id)
		closure[id] = kit
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		kit := closure[id]
		for _, dep := range kit.HardDeps {
			if _, ok := closure[dep]; ok {
				if !requested[dep] {
					requiredBy[dep] = append(requiredBy[dep], id)
				}
				continue
			}
			depKit, ok := snap.Get(dep)
			if !ok {
				unknown = append(unknown, dep)
				continue
			}
			closure[dep] = depKit
			requiredBy[dep] = append(requiredBy[dep], id)
			queue = append(queue, dep)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &UnsatisfiedDependencyError{Unknown: unknown}
	}

	var autoIncluded []string
	for id := range closure {
		if !requested[id] {
			autoIncluded = append(autoIncluded, id)
		}
	}
	sort.Strings(autoIncluded)

	if strict && len(autoIncluded) > 0 {
		return nil, &UnsatisfiedDependencyError{Unrequested: autoIncluded}
	}

	var warnings []string
	for _, id := range autoIncluded {
		dependents := dedupeSorted(requiredBy[id])
		warnings = append(warnings, fmt.Sprintf("auto-including %s (required by %s)", id, joinIDs(dependents)))
	}

	kits := make([]*manifest.Kit, 0, len(closure))
	for _, id := range sortedIDs(closure) {
		kits = append(kits, closure[id])
	}
	g, graphWarnings, err := graph.Build(kits)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, graphWarnings...)

	return &ApplyPlan{
		Kits:         g.Order(),
		Requested:    sortedIDs(requested),
		AutoIncluded: autoIncluded,
		Warnings:     warnings,
	}, nil
}

func sortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func dedupeSorted(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func joinIDs(ids []string) string {
	switch len(ids) {
	case 0:
		return "request"
	case 1:
		return ids[0]
	}
	out := ids[0]
	for _, id := range ids[1:] {
		out += ", " + id
	}
	return out
}
