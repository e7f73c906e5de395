package vars

import (
	"fmt"
	"strings"
)

// UnresolvedPlaceholderError reports every distinct placeholder in one
// kit's payload that no value source covered. The list is complete and
// sorted; a token used in many places appears once.
type UnresolvedPlaceholderError struct {
	Kit     string
	Missing []string
}

func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("kit %s has unresolved placeholders: %s", e.Kit, strings.Join(e.Missing, ", "))
}
