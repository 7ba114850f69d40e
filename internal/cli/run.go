package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/varstore/regress/internal/config"
	"github.com/varstore/regress/internal/coverage"
	"github.com/varstore/regress/internal/harness"
	"github.com/varstore/regress/internal/history"
	"github.com/varstore/regress/internal/invoke"
	"github.com/varstore/regress/internal/workspace"
)

// RunOptions holds flags for the root (run) command.
type RunOptions struct {
	*RootOptions
	Catalog       string
	Filter        string
	Update        bool
	KeepWorkspace bool
	HistoryDB     string
	BaseDir       string
	BinDir        string
}

// RunSummary is the run's JSON payload.
type RunSummary struct {
	RunID   string                `json:"run_id,omitempty"`
	Stages  []harness.StageResult `json:"stages"`
	Passed  int                   `json:"passed"`
	Failed  int                   `json:"failed"`
	Skipped int                   `json:"skipped"`
	Updated int                   `json:"updated"`
	Total   int                   `json:"total"`
}

func newRunSummary(report *harness.Report) RunSummary {
	stages := report.Stages
	if stages == nil {
		stages = []harness.StageResult{}
	}
	return RunSummary{
		RunID:   report.RunID,
		Stages:  stages,
		Passed:  report.Passed,
		Failed:  report.Failed,
		Skipped: report.Skipped,
		Updated: report.Updated,
		Total:   len(stages),
	}
}

func runHarness(opts *RunOptions, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := resolveConfig(opts, cmd)
	if err != nil {
		return err
	}

	tests := harness.BuiltinCatalog()
	if opts.Catalog != "" {
		tests, err = harness.LoadCatalog(opts.Catalog)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load catalog", err)
		}
	}

	selected, err := harness.Filter(tests, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid filter", err)
	}
	if len(selected) == 0 {
		if opts.Format == "json" {
			return writeJSON(cmd.OutOrStdout(), CLIResponse{
				Status: "ok",
				Data:   newRunSummary(&harness.Report{}),
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No tests selected.")
		return nil
	}

	ws, err := workspace.Acquire()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create workspace", err)
	}
	slog.Info("workspace created", "path", ws.Root)

	// Setup signal handling so Ctrl-C stops the current tool and keeps
	// the workspace. Use the command's context if available (for testing).
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	execRunner := &invoke.ExecRunner{Dir: cfg.BaseDir, Stderr: cmd.ErrOrStderr()}

	var cov *coverage.Collector
	if cfg.Coverage.Enabled {
		cov, err = coverage.New(coverage.Options{
			SourceDir:  cfg.Coverage.SourceDir,
			OutputFile: cfg.Coverage.OutputFile,
			Exclude:    cfg.Coverage.Exclude,
			Runner:     execRunner,
			Logger:     logger,
		})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to configure coverage", err)
		}
	}

	var ledger *history.Ledger
	if cfg.HistoryDB != "" {
		ledger, err = history.Open(cfg.HistoryDB)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open history database", err)
		}
		defer func() {
			if closeErr := ledger.Close(); closeErr != nil {
				slog.Error("error closing history database", "error", closeErr)
			}
		}()
	}

	runner, err := harness.NewRunner(harness.Options{
		Toolchain: invoke.Toolchain{
			BinDir:    cfg.BinDir,
			Java:      cfg.Java,
			Classpath: cfg.Classpath,
		},
		Runner:           execRunner,
		Workspace:        ws,
		BaseDir:          cfg.BaseDir,
		LoadSegmentSize:  cfg.LoadSegmentSize,
		QuerySegmentSize: cfg.QuerySegmentSize,
		Update:           opts.Update,
		ErrOut:           cmd.ErrOrStderr(),
		Logger:           logger,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to configure runner", err)
	}

	if cov != nil {
		cov.ZeroCounters(ctx)
	}

	report, runErr := runner.Run(ctx, selected)

	if ledger != nil {
		recordHistory(ctx, ledger, report, runErr == nil)
	}
	if runErr == nil && cov != nil {
		cov.Capture(ctx)
	}

	// Success removes the workspace unless retention was requested; any
	// failure keeps it for inspection.
	if runErr == nil && !cfg.KeepWorkspace {
		if err := ws.Release(true); err != nil {
			slog.Error("error removing workspace", "error", err)
		}
	} else {
		slog.Info("workspace retained", "path", ws.Root)
	}

	if opts.Format == "json" {
		return outputRunJSON(cmd, report, runErr)
	}
	return outputRunText(cmd, report, runErr)
}

// resolveConfig layers the configuration file over the defaults and the
// command-line flags over both. A flag wins only when it was set.
func resolveConfig(opts *RunOptions, cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("base-dir") {
		cfg.BaseDir = opts.BaseDir
	}
	if flags.Changed("bin-dir") {
		cfg.BinDir = opts.BinDir
	}
	if flags.Changed("history-db") {
		cfg.HistoryDB = opts.HistoryDB
	}
	if flags.Changed("keep-workspace") {
		cfg.KeepWorkspace = opts.KeepWorkspace
	}
	return cfg, nil
}

// recordHistory persists the run to the ledger. Ledger failures must not
// change the run's outcome, so they are only logged.
func recordHistory(ctx context.Context, ledger *history.Ledger, report *harness.Report, success bool) {
	outcome := history.OutcomePassed
	if !success {
		outcome = history.OutcomeFailed
	}
	run := history.Run{
		ID:       report.RunID,
		Started:  report.Started,
		Finished: report.Finished,
		Outcome:  outcome,
		Passed:   report.Passed,
		Failed:   report.Failed,
		Skipped:  report.Skipped,
		Updated:  report.Updated,
	}

	stages := make([]history.Stage, 0, len(report.Stages))
	for _, s := range report.Stages {
		stages = append(stages, history.Stage{
			Seq:        s.Seq,
			Test:       s.Test,
			Stage:      string(s.Stage),
			QueryType:  string(s.QueryType),
			Digest:     string(s.Digest),
			Verdict:    string(s.Verdict),
			DurationMS: s.DurationMS,
		})
	}

	if err := ledger.RecordRun(ctx, run, stages); err != nil {
		slog.Error("failed to record run history", "error", err)
	}
}

// outputRunJSON outputs the run result as JSON.
func outputRunJSON(cmd *cobra.Command, report *harness.Report, runErr error) error {
	response := CLIResponse{
		Status: "ok",
		Data:   newRunSummary(report),
	}
	if runErr != nil {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_RUN_FAILED",
			Message: runErr.Error(),
		}
	}

	if err := writeJSON(cmd.OutOrStdout(), response); err != nil {
		return err
	}

	if runErr != nil {
		return WrapExitError(ExitFailure, "run failed", runErr)
	}
	return nil
}

// outputRunText outputs the run result as text.
func outputRunText(cmd *cobra.Command, report *harness.Report, runErr error) error {
	w := cmd.OutOrStdout()

	for _, s := range report.Stages {
		fmt.Fprintln(w, stageLine(s))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run Summary: %d passed, %d failed, %d skipped, %d updated, %d total\n",
		report.Passed, report.Failed, report.Skipped, report.Updated, len(report.Stages))

	if runErr != nil {
		return WrapExitError(ExitFailure, "run failed", runErr)
	}
	fmt.Fprintln(w, "✓ All verifications passed")
	return nil
}

// stageLine renders one stage for text output.
func stageLine(s harness.StageResult) string {
	label := fmt.Sprintf("%s load", s.Test)
	if s.Stage == harness.StageQuery {
		label = fmt.Sprintf("%s %s", s.Test, s.QueryType)
	}

	switch s.Verdict {
	case harness.VerdictPassed:
		return fmt.Sprintf("✓ %s", label)
	case harness.VerdictUpdated:
		return fmt.Sprintf("✓ %s (golden updated)", label)
	case harness.VerdictSkipped:
		return fmt.Sprintf("- %s (no golden)", label)
	default:
		return fmt.Sprintf("✗ %s", label)
	}
}
