package cli

import (
	"errors"

	"github.com/danieljhkim/kitforge/internal/merge"
	"github.com/danieljhkim/kitforge/internal/verify"
)

// Process exit codes. Resolution failures of every kind share code 1;
// only merge conflicts and strict verification failures get their own.
const (
	ExitOK       = 0
	ExitError    = 1
	ExitConflict = 2
	ExitVerify   = 3
)

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var ownership *merge.FileOwnershipConflictError
	if errors.As(err, &ownership) {
		return ExitConflict
	}
	var mergeConflict *merge.MergeConflictError
	if errors.As(err, &mergeConflict) {
		return ExitConflict
	}
	var verifyFailed *verify.VerifyFailedError
	if errors.As(err, &verifyFailed) {
		return ExitVerify
	}
	return ExitError
}
