package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RecentRuns returns the most recent runs, newest first. The stored RFC 3339
// timestamps sort bytewise, so ordering by the started column is
// chronological.
//
// Returns an empty slice (not nil) if the ledger has no runs.
func (l *Ledger) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, started, finished, outcome, passed, failed, skipped, updated
		FROM runs
		ORDER BY started DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	if runs == nil {
		runs = []Run{}
	}

	return runs, nil
}

// RunStages returns every stage row of a run in execution order.
//
// Returns an empty slice (not nil) if the run is unknown or recorded no
// stages.
func (l *Ledger) RunStages(ctx context.Context, runID string) ([]Stage, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT seq, test, stage, query_type, digest, verdict, duration_ms
		FROM stages
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query stages: %w", err)
	}
	defer rows.Close()

	var stages []Stage
	for rows.Next() {
		var s Stage
		if err := rows.Scan(
			&s.Seq, &s.Test, &s.Stage, &s.QueryType, &s.Digest, &s.Verdict, &s.DurationMS,
		); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		stages = append(stages, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stages: %w", err)
	}

	if stages == nil {
		stages = []Stage{}
	}

	return stages, nil
}

// scanRun scans a row into a Run struct.
func scanRun(rows *sql.Rows) (Run, error) {
	var run Run
	var started, finished string

	if err := rows.Scan(
		&run.ID, &started, &finished, &run.Outcome,
		&run.Passed, &run.Failed, &run.Skipped, &run.Updated,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	var err error
	if run.Started, err = parseTimestamp(started); err != nil {
		return Run{}, err
	}
	if run.Finished, err = parseTimestamp(finished); err != nil {
		return Run{}, err
	}

	return run, nil
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
