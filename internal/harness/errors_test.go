package harness

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/varstore/regress/internal/invoke"
)

// The failure lines are a protocol: downstream tooling greps stderr for
// them, so the wording is asserted exactly.

func TestProcessErrorMessage(t *testing.T) {
	loadErr := &ProcessError{Test: "t0_1_2", Stage: StageLoad, ExitCode: 1}
	assert.Equal(t, "Loader test: t0_1_2 failed", loadErr.Error())

	queryErr := &ProcessError{
		Test:      "t6_7_8",
		Stage:     StageQuery,
		QueryType: invoke.QueryBatchedVCF,
		ExitCode:  2,
	}
	assert.Equal(t, "Query test: t6_7_8-batched_vcf failed", queryErr.Error())
}

func TestMismatchErrorMessage(t *testing.T) {
	loadErr := &MismatchError{Test: "t0_1_2_csv", Stage: StageLoad}
	assert.Equal(t, "Loader stdout mismatch for test: t0_1_2_csv", loadErr.Error())

	queryErr := &MismatchError{
		Test:      "t0_overlapping",
		Stage:     StageQuery,
		QueryType: invoke.QueryVCF,
	}
	assert.Equal(t, "Mismatch in query test: t0_overlapping-vcf", queryErr.Error())
}

func TestErrorPredicates(t *testing.T) {
	perr := &ProcessError{Test: "t", Stage: StageLoad}
	merr := &MismatchError{Test: "t", Stage: StageLoad}

	assert.True(t, IsProcessFailure(perr))
	assert.False(t, IsProcessFailure(merr))
	assert.True(t, IsMismatch(merr))
	assert.False(t, IsMismatch(perr))

	// Wrapped errors are still recognized.
	assert.True(t, IsProcessFailure(fmt.Errorf("run aborted: %w", perr)))
	assert.True(t, IsMismatch(fmt.Errorf("run aborted: %w", merr)))

	assert.False(t, IsProcessFailure(errors.New("plain")))
	assert.False(t, IsMismatch(nil))
}
