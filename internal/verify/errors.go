package verify

import (
	"fmt"
	"strings"
)

// VerifyFailedError reports every failed check for one kit. It is
// raised only in strict mode; the default mode downgrades failures
// to warnings.
type VerifyFailedError struct {
	Kit      string
	Failures []Result
}

func (e *VerifyFailedError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "kit %s failed verification:", e.Kit)
	for _, f := range e.Failures {
		sb.WriteString(fmt.Sprintf("\n  - %s: %s", f.Criterion.Raw, f.Detail))
	}
	return sb.String()
}
