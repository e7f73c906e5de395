package verify

import "strings"

// Kind classifies a verification criterion.
type Kind string

const (
	// KindFile checks that a tree-relative path exists.
	KindFile Kind = "file"

	// KindHTTP checks that a GET against a URL returns 2xx.
	KindHTTP Kind = "http"

	// KindManual is an advisory check for a human. It never fails.
	KindManual Kind = "manual"

	// KindResidual is the implicit check that no unresolved
	// placeholder remains in a file the kit wrote.
	KindResidual Kind = "placeholders"
)

// Criterion is one parsed verification check.
type Criterion struct {
	// Kind classifies how the criterion is evaluated.
	Kind Kind

	// Target is the rel path (file), URL (http), or empty (manual).
	Target string

	// Raw is the criterion text as written in the manifest.
	Raw string
}

// ParseCriterion classifies one criterion bullet. A `file:` prefix
// names a tree-relative path and an `http:` prefix names a URL to
// probe. Anything else, including a bare URL, is a manual check.
func ParseCriterion(raw string) Criterion {
	trimmed := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(trimmed, "file:"); ok {
		if target := strings.TrimSpace(rest); target != "" {
			return Criterion{Kind: KindFile, Target: target, Raw: raw}
		}
	}
	if rest, ok := strings.CutPrefix(trimmed, "http:"); ok {
		// A bare URL such as http://example.com is prose, not a
		// directive. Directives carry the URL after the prefix.
		if !strings.HasPrefix(rest, "//") {
			if target := strings.TrimSpace(rest); target != "" {
				return Criterion{Kind: KindHTTP, Target: target, Raw: raw}
			}
		}
	}
	return Criterion{Kind: KindManual, Raw: raw}
}

// ParseCriteria classifies every criterion bullet in manifest order.
func ParseCriteria(raws []string) []Criterion {
	out := make([]Criterion, 0, len(raws))
	for _, raw := range raws {
		out = append(out, ParseCriterion(raw))
	}
	return out
}
