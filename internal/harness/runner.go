package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/varstore/regress/internal/digest"
	"github.com/varstore/regress/internal/invoke"
	"github.com/varstore/regress/internal/synth"
	"github.com/varstore/regress/internal/workspace"
)

// Options configure a Runner.
type Options struct {
	// Toolchain locates the external tools.
	Toolchain invoke.Toolchain

	// Runner executes the tool invocations. Required.
	Runner invoke.Runner

	// Workspace is the run's scratch area. Required. The runner writes
	// generated documents into it but never releases it; disposal policy
	// belongs to the caller.
	Workspace *workspace.Workspace

	// BaseDir anchors the relative golden paths declared in the catalog.
	BaseDir string

	// LoadSegmentSize is stamped into every generated loader document.
	LoadSegmentSize int64

	// QuerySegmentSize is passed to the native query tool.
	QuerySegmentSize int64

	// Update rewrites golden files from captured output instead of
	// comparing against them.
	Update bool

	// ErrOut receives the failure identification lines and mismatch
	// dumps. Nil means the process's stderr.
	ErrOut io.Writer

	// Logger receives structured progress logs. Nil means slog.Default().
	Logger *slog.Logger
}

// Runner drives test cases through their load and query stages in strict
// catalog order, one tool invocation at a time.
//
// Thread-safety: a Runner is not safe for concurrent use. The run is
// deliberately sequential; every stage mutates the same datastore
// workspace.
type Runner struct {
	opts Options
}

// NewRunner validates the options and returns a Runner.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	if opts.Workspace == nil {
		return nil, fmt.Errorf("workspace is required")
	}
	if opts.ErrOut == nil {
		opts.ErrOut = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Runner{opts: opts}, nil
}

// Run executes the given test cases in order and returns the run report.
// The first stage failure aborts everything that follows; the returned
// report still carries every stage executed up to and including the
// failing one. The error is the failure that ended the run, nil when all
// stages passed.
func (r *Runner) Run(ctx context.Context, tests []TestCase) (*Report, error) {
	report := &Report{
		RunID:   uuid.Must(uuid.NewV7()).String(),
		Started: time.Now().UTC(),
	}
	r.opts.Logger.Info("run started",
		"run_id", report.RunID,
		"tests", len(tests),
		"workspace", r.opts.Workspace.Root)

	var runErr error
	for _, tc := range tests {
		if runErr = r.runTest(ctx, report, tc); runErr != nil {
			break
		}
	}
	report.Finished = time.Now().UTC()

	if runErr != nil {
		r.opts.Logger.Error("run aborted",
			"run_id", report.RunID,
			"error", runErr,
			"passed", report.Passed,
			"failed", report.Failed)
	} else {
		r.opts.Logger.Info("run finished",
			"run_id", report.RunID,
			"passed", report.Passed,
			"skipped", report.Skipped,
			"updated", report.Updated)
	}
	return report, runErr
}

// runTest executes one catalog entry: the load stage, then every declared
// query stage in query-type order per query param.
func (r *Runner) runTest(ctx context.Context, report *Report, tc TestCase) error {
	loaderDoc := synth.MakeLoaderConfig(r.opts.Workspace.StoreDir, tc.Name, synth.LoaderOverrides{
		CallsetMappingFile: tc.CallsetMappingFile,
		VidMappingFile:     tc.VidMappingFile,
		ColumnPartitions:   tc.ColumnPartitions,
		SegmentSize:        r.opts.LoadSegmentSize,
		CompressArray:      tc.CompressArray,
	})
	data, err := synth.Marshal(loaderDoc)
	if err != nil {
		return err
	}
	loaderPath, err := r.opts.Workspace.WriteConfig(tc.Name+".json", data)
	if err != nil {
		return err
	}
	r.opts.Logger.Debug("wrote loader config", "test", tc.Name, "path", loaderPath)

	cmd, err := r.opts.Toolchain.LoadCommand(tc.Loader, loaderPath, tc.StreamMappingFile)
	if err != nil {
		return err
	}
	stage := StageResult{Test: tc.Name, Stage: StageLoad}
	if err := r.runStage(ctx, report, stage, cmd, tc.LoadGolden); err != nil {
		return err
	}

	for _, qp := range tc.QueryParams {
		if err := r.runQueryParam(ctx, report, tc, loaderPath, qp); err != nil {
			return err
		}
	}
	return nil
}

// runQueryParam executes every query type the param declares a golden for,
// in the fixed query-type order.
func (r *Runner) runQueryParam(ctx context.Context, report *Report, tc TestCase, loaderPath string, qp QueryParam) error {
	for _, qt := range invoke.QueryTypes() {
		goldenPath, declared := qp.Golden[qt]
		if !declared {
			continue
		}

		rng := qp.Range
		queryDoc := synth.MakeQueryConfig(r.opts.Workspace.StoreDir, tc.Name, synth.QueryOverrides{
			ColumnRange: &rng,
			VCFOutput:   qt.VCFOutput(),
		})
		data, err := synth.Marshal(queryDoc)
		if err != nil {
			return err
		}
		queryPath, err := r.opts.Workspace.WriteConfig(fmt.Sprintf("%s_%s.json", tc.Name, qt), data)
		if err != nil {
			return err
		}
		r.opts.Logger.Debug("wrote query config",
			"test", tc.Name, "type", qt, "column", rng.Begin(), "path", queryPath)

		cmd, err := r.opts.Toolchain.QueryCommand(qt, r.opts.QuerySegmentSize, loaderPath, queryPath)
		if err != nil {
			return err
		}
		stage := StageResult{Test: tc.Name, Stage: StageQuery, QueryType: qt}
		if err := r.runStage(ctx, report, stage, cmd, goldenPath); err != nil {
			return err
		}
	}
	return nil
}

// runStage executes one tool invocation, applies the verification policy
// to its captured stdout, and records the stage in the report. The
// returned error, if any, is the failure that must abort the run.
func (r *Runner) runStage(ctx context.Context, report *Report, s StageResult, cmd invoke.Command, goldenPath string) error {
	s.Command = cmd.String()
	r.opts.Logger.Debug("invoking", "command", s.Command)

	start := time.Now()
	err := r.executeAndVerify(ctx, &s, cmd, goldenPath)
	s.DurationMS = time.Since(start).Milliseconds()
	report.record(s)

	attrs := []any{"test", s.Test, "stage", s.Stage}
	if s.QueryType != "" {
		attrs = append(attrs, "type", s.QueryType)
	}
	attrs = append(attrs, "verdict", s.Verdict, "duration_ms", s.DurationMS)
	if s.Verdict == VerdictFailed {
		r.opts.Logger.Error("stage failed", attrs...)
	} else {
		r.opts.Logger.Info("stage finished", attrs...)
	}
	return err
}

// executeAndVerify runs the command and fills in the stage's digest and
// verdict. Process failures print the single-line identification on
// ErrOut; mismatches additionally dump the golden and actual output.
func (r *Runner) executeAndVerify(ctx context.Context, s *StageResult, cmd invoke.Command, goldenPath string) error {
	res, err := r.opts.Runner.Run(ctx, cmd)
	if err != nil {
		s.Verdict = VerdictFailed
		return err
	}
	if !res.Succeeded() {
		s.Verdict = VerdictFailed
		perr := &ProcessError{
			Test:      s.Test,
			Stage:     s.Stage,
			QueryType: s.QueryType,
			Command:   s.Command,
			ExitCode:  res.ExitCode,
		}
		fmt.Fprintln(r.opts.ErrOut, perr.Error())
		return perr
	}
	return r.verify(s, goldenPath, res.Stdout)
}

// verify applies the stage's verification policy: skip when no golden is
// declared, rewrite the golden in update mode, otherwise compare digests.
func (r *Runner) verify(s *StageResult, goldenPath string, stdout []byte) error {
	s.Digest = digest.Sum(stdout)
	if goldenPath == "" {
		s.Verdict = VerdictSkipped
		return nil
	}
	s.GoldenPath = goldenPath

	abs := goldenPath
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(r.opts.BaseDir, abs)
	}

	if r.opts.Update {
		if err := os.WriteFile(abs, stdout, 0o644); err != nil {
			s.Verdict = VerdictFailed
			return fmt.Errorf("update golden file: %w", err)
		}
		s.Verdict = VerdictUpdated
		return nil
	}

	golden, want, err := digest.ReadFile(abs)
	if err != nil {
		s.Verdict = VerdictFailed
		return err
	}
	if want != s.Digest {
		s.Verdict = VerdictFailed
		merr := &MismatchError{
			Test:       s.Test,
			Stage:      s.Stage,
			QueryType:  s.QueryType,
			GoldenPath: goldenPath,
			Want:       want,
			Got:        s.Digest,
		}
		fmt.Fprintln(r.opts.ErrOut, merr.Error())
		digest.WriteMismatch(r.opts.ErrOut, golden, stdout)
		return merr
	}
	s.Verdict = VerdictPassed
	return nil
}
