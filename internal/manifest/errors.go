package manifest

import (
	"fmt"
	"strings"
)

// MalformedManifestError reports every problem found in one kit document.
// All issues are gathered in a single pass so authors can fix the whole
// document before re-running.
type MalformedManifestError struct {
	// Path is the document location.
	Path string

	// Issues lists every problem found, in document order.
	Issues []string
}

func (e *MalformedManifestError) Error() string {
	if len(e.Issues) == 1 {
		return fmt.Sprintf("malformed manifest %s: %s", e.Path, e.Issues[0])
	}
	return fmt.Sprintf("malformed manifest %s:\n  - %s", e.Path, strings.Join(e.Issues, "\n  - "))
}
