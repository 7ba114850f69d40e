package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/varstore/regress/internal/config"
	"github.com/varstore/regress/internal/history"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded runs",
		Long: `Show runs recorded in the history database.

Without arguments, lists the most recent runs. With a run ID, lists that
run's stages in execution order.

Examples:
  regress history --db runs.db
  regress history --db runs.db --limit 5
  regress history --db runs.db 0198c2f4-9d7e-7c31-a642-3f6b2d1c8e55`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runHistory(opts, runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the history database")
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "maximum number of runs to list")

	return cmd
}

func runHistory(opts *HistoryOptions, runID string, cmd *cobra.Command) error {
	dbPath := opts.Database
	if dbPath == "" && opts.Config != "" {
		cfg, err := config.Load(opts.Config)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
		dbPath = cfg.HistoryDB
	}
	if dbPath == "" {
		return NewExitError(ExitCommandError, "no history database configured (use --db or history_db in the config file)")
	}

	ledger, err := history.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open history database", err)
	}
	defer ledger.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if runID != "" {
		return outputRunStages(ctx, opts, ledger, runID, cmd)
	}
	return outputRecentRuns(ctx, opts, ledger, cmd)
}

// outputRecentRuns lists the most recent runs, newest first.
func outputRecentRuns(ctx context.Context, opts *HistoryOptions, ledger *history.Ledger, cmd *cobra.Command) error {
	runs, err := ledger.RecentRuns(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read history", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: runs})
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  %-7s %d passed, %d failed, %d skipped, %d updated\n",
			r.ID, r.Started.Format(time.RFC3339), r.Outcome,
			r.Passed, r.Failed, r.Skipped, r.Updated)
	}
	return nil
}

// outputRunStages lists one run's stages in execution order.
func outputRunStages(ctx context.Context, opts *HistoryOptions, ledger *history.Ledger, runID string, cmd *cobra.Command) error {
	stages, err := ledger.RunStages(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read history", err)
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), CLIResponse{Status: "ok", Data: stages})
	}

	w := cmd.OutOrStdout()
	if len(stages) == 0 {
		fmt.Fprintf(w, "No stages recorded for run %s.\n", runID)
		return nil
	}
	for _, s := range stages {
		label := s.Test
		if s.QueryType != "" {
			label = fmt.Sprintf("%s %s", s.Test, s.QueryType)
		}
		fmt.Fprintf(w, "%3d  %-5s  %-45s %-8s %6d ms\n",
			s.Seq, s.Stage, label, s.Verdict, s.DurationMS)
	}
	return nil
}
