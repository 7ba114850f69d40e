package harness

import (
	"time"

	"github.com/varstore/regress/internal/digest"
	"github.com/varstore/regress/internal/invoke"
)

// Verdict is the outcome of one executed stage.
type Verdict string

const (
	// VerdictPassed means the stage ran and its output matched the golden
	// file.
	VerdictPassed Verdict = "passed"

	// VerdictFailed means the stage's tool exited nonzero, its output
	// mismatched, or its golden file could not be read.
	VerdictFailed Verdict = "failed"

	// VerdictSkipped means the stage ran successfully but declared no
	// golden file, so its output was not verified.
	VerdictSkipped Verdict = "skipped"

	// VerdictUpdated means the stage ran in update mode and its output
	// was written to the golden file instead of compared.
	VerdictUpdated Verdict = "updated"
)

// StageResult records one executed stage. Captured tool output is never
// retained here; only its digest is.
type StageResult struct {
	// Seq is the 1-based position of the stage within the run.
	Seq int `json:"seq"`

	// Test is the catalog entry name.
	Test string `json:"test"`

	// Stage is the phase that ran.
	Stage Stage `json:"stage"`

	// QueryType is set for query stages only.
	QueryType invoke.QueryType `json:"query_type,omitempty"`

	// Command is the shell-quoted command line that ran.
	Command string `json:"command"`

	// Digest is the SHA-256 digest of the captured stdout. Empty when the
	// tool failed before producing a verdict on its output.
	Digest digest.Digest `json:"digest,omitempty"`

	// GoldenPath is the golden file the stage was verified against, as
	// declared in the catalog. Empty for unverified stages.
	GoldenPath string `json:"golden,omitempty"`

	// Verdict is the stage outcome.
	Verdict Verdict `json:"verdict"`

	// DurationMS is the stage's wall-clock duration in milliseconds.
	DurationMS int64 `json:"duration_ms"`
}

// Report summarizes one harness run. Stages appear in execution order; a
// run that aborts on its first failure carries every stage executed up to
// and including the failing one.
type Report struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// Started and Finished bound the run in UTC.
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`

	// Stages lists every executed stage in order.
	Stages []StageResult `json:"stages"`

	// Per-verdict stage counts.
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Updated int `json:"updated"`
}

// Success reports whether every executed stage avoided failure.
func (r *Report) Success() bool { return r.Failed == 0 }

// record appends a finished stage, assigning its sequence number and
// updating the verdict counts.
func (r *Report) record(s StageResult) {
	s.Seq = len(r.Stages) + 1
	r.Stages = append(r.Stages, s)
	switch s.Verdict {
	case VerdictPassed:
		r.Passed++
	case VerdictFailed:
		r.Failed++
	case VerdictSkipped:
		r.Skipped++
	case VerdictUpdated:
		r.Updated++
	}
}
