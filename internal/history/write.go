package history

import (
	"context"
	"fmt"
	"time"
)

// RecordRun inserts a run and its stage rows in a single transaction.
// Uses ON CONFLICT DO NOTHING for idempotency - recording the same run ID
// twice is silently ignored.
//
// Timestamps are stored as RFC 3339 UTC strings so rows sort and compare
// bytewise.
func (l *Ledger) RecordRun(ctx context.Context, run Run, stages []Stage) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, started, finished, outcome, passed, failed, skipped, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Started.UTC().Format(time.RFC3339Nano),
		run.Finished.UTC().Format(time.RFC3339Nano),
		run.Outcome,
		run.Passed,
		run.Failed,
		run.Skipped,
		run.Updated,
	)
	if err != nil {
		return fmt.Errorf("record run: insert run: %w", err)
	}

	for _, s := range stages {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO stages
			(run_id, seq, test, stage, query_type, digest, verdict, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_id, seq) DO NOTHING
		`,
			run.ID,
			s.Seq,
			s.Test,
			s.Stage,
			s.QueryType,
			s.Digest,
			s.Verdict,
			s.DurationMS,
		)
		if err != nil {
			return fmt.Errorf("record run: insert stage %d: %w", s.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record run: commit: %w", err)
	}

	return nil
}
