package graph

import (
	"fmt"
	"strings"
)

// BaseOrderingViolation is one base kit hard-depending on a non-base kit.
type BaseOrderingViolation struct {
	Base    string
	NonBase string
}

// InvalidBaseOrderingError reports every base kit that hard-depends on a
// non-base kit. Base kits apply before every non-base kit, so such a
// dependency can never be satisfied.
type InvalidBaseOrderingError struct {
	Violations []BaseOrderingViolation
}

func (e *InvalidBaseOrderingError) Error() string {
	var sb strings.Builder
	sb.WriteString("base kits cannot depend on non-base kits:")
	for _, v := range e.Violations {
		sb.WriteString(fmt.Sprintf("\n  - %s -> %s", v.Base, v.NonBase))
	}
	return sb.String()
}

// CyclicDependencyError reports one deterministic cycle witness. The
// cycle is listed in dependency order and closes on its first kit.
type CyclicDependencyError struct {
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	return "cyclic dependency: " + strings.Join(e.Cycle, " -> ")
}
