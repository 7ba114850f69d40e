package harness

import (
	"errors"
	"fmt"

	"github.com/varstore/regress/internal/digest"
	"github.com/varstore/regress/internal/invoke"
)

// Stage identifies which phase of a test case an error or result belongs to.
type Stage string

const (
	// StageLoad is the data-load invocation of a test case.
	StageLoad Stage = "load"

	// StageQuery is one query invocation of a test case.
	StageQuery Stage = "query"
)

// ProcessError reports an external tool that exited nonzero. The rendered
// message is the single-line failure identification the harness prints on
// stderr; the structured fields carry everything needed to re-run the
// command by hand.
type ProcessError struct {
	// Test is the catalog entry name.
	Test string

	// Stage is the phase the tool ran in.
	Stage Stage

	// QueryType is set for query stages only.
	QueryType invoke.QueryType

	// Command is the shell-quoted command line that failed.
	Command string

	// ExitCode is the tool's exit status.
	ExitCode int
}

// Error implements the error interface.
func (e *ProcessError) Error() string {
	if e.Stage == StageQuery {
		return fmt.Sprintf("Query test: %s-%s failed", e.Test, e.QueryType)
	}
	return fmt.Sprintf("Loader test: %s failed", e.Test)
}

// MismatchError reports captured tool output whose digest differs from the
// declared golden file. The rendered message is the single-line mismatch
// identification the harness prints on stderr.
type MismatchError struct {
	// Test is the catalog entry name.
	Test string

	// Stage is the phase whose output mismatched.
	Stage Stage

	// QueryType is set for query stages only.
	QueryType invoke.QueryType

	// GoldenPath is the golden file compared against, as declared in the
	// catalog.
	GoldenPath string

	// Want is the golden file's digest.
	Want digest.Digest

	// Got is the captured output's digest.
	Got digest.Digest
}

// Error implements the error interface.
func (e *MismatchError) Error() string {
	if e.Stage == StageQuery {
		return fmt.Sprintf("Mismatch in query test: %s-%s", e.Test, e.QueryType)
	}
	return fmt.Sprintf("Loader stdout mismatch for test: %s", e.Test)
}

// IsProcessFailure returns true if the error is a tool process failure.
// Uses errors.As to handle wrapped errors.
func IsProcessFailure(err error) bool {
	var pe *ProcessError
	return errors.As(err, &pe)
}

// IsMismatch returns true if the error is a golden output mismatch.
// Uses errors.As to handle wrapped errors.
func IsMismatch(err error) bool {
	var me *MismatchError
	return errors.As(err, &me)
}
