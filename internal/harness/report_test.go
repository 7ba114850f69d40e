package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportRecord(t *testing.T) {
	r := &Report{}
	r.record(StageResult{Test: "a", Stage: StageLoad, Verdict: VerdictPassed})
	r.record(StageResult{Test: "a", Stage: StageQuery, Verdict: VerdictPassed})
	r.record(StageResult{Test: "b", Stage: StageLoad, Verdict: VerdictSkipped})
	r.record(StageResult{Test: "c", Stage: StageLoad, Verdict: VerdictUpdated})
	r.record(StageResult{Test: "d", Stage: StageLoad, Verdict: VerdictFailed})

	require.Len(t, r.Stages, 5)
	for i, s := range r.Stages {
		assert.Equal(t, i+1, s.Seq)
	}

	assert.Equal(t, 2, r.Passed)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, 1, r.Skipped)
	assert.Equal(t, 1, r.Updated)
	assert.False(t, r.Success())
}

func TestReportSuccess(t *testing.T) {
	r := &Report{}
	assert.True(t, r.Success(), "an empty run has nothing failing")

	r.record(StageResult{Verdict: VerdictPassed})
	r.record(StageResult{Verdict: VerdictSkipped})
	assert.True(t, r.Success())

	r.record(StageResult{Verdict: VerdictFailed})
	assert.False(t, r.Success())
}
