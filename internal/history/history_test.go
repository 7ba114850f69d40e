package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openLedger(t *testing.T) *Ledger {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func sampleRun(id string, started time.Time) Run {
	return Run{
		ID:       id,
		Started:  started,
		Finished: started.Add(42 * time.Second),
		Outcome:  OutcomePassed,
		Passed:   3,
		Failed:   0,
		Skipped:  1,
		Updated:  0,
	}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer l.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	for i := 0; i < 3; i++ {
		l, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		l.Close()
	}

	l, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer l.Close()

	for _, table := range []string{"runs", "stages"} {
		var name string
		err := l.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_AppliesPragmas(t *testing.T) {
	l := openLedger(t)

	checks := map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1", // NORMAL
		"busy_timeout": "5000",
		"foreign_keys": "1",
	}
	for name, expected := range checks {
		if err := l.verifyPragma(name, expected); err != nil {
			t.Errorf("pragma check failed: %v", err)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/history.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestOpen_RefusesNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := l.db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("set user_version failed: %v", err)
	}
	l.Close()

	if _, err := Open(path); err == nil {
		t.Error("expected error for newer schema version, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	l := &Ledger{db: nil}
	if err := l.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestRecordRun_RoundTrip(t *testing.T) {
	l := openLedger(t)
	ctx := context.Background()

	started := time.Date(2026, 8, 25, 10, 0, 0, 123456789, time.UTC)
	run := sampleRun("run-1", started)
	stages := []Stage{
		{Seq: 1, Test: "t0_1_2", Stage: "load", Digest: "aaa", Verdict: "passed", DurationMS: 1200},
		{Seq: 2, Test: "t0_1_2", Stage: "query", QueryType: "calls", Digest: "bbb", Verdict: "passed", DurationMS: 310},
	}

	if err := l.RecordRun(ctx, run, stages); err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}

	runs, err := l.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("RecentRuns() returned %d runs, want 1", len(runs))
	}

	got := runs[0]
	if got.ID != run.ID {
		t.Errorf("ID = %q, want %q", got.ID, run.ID)
	}
	if !got.Started.Equal(run.Started) {
		t.Errorf("Started = %v, want %v", got.Started, run.Started)
	}
	if !got.Finished.Equal(run.Finished) {
		t.Errorf("Finished = %v, want %v", got.Finished, run.Finished)
	}
	if got.Outcome != OutcomePassed {
		t.Errorf("Outcome = %q, want %q", got.Outcome, OutcomePassed)
	}
	if got.Passed != 3 || got.Failed != 0 || got.Skipped != 1 || got.Updated != 0 {
		t.Errorf("counts = %d/%d/%d/%d, want 3/0/1/0",
			got.Passed, got.Failed, got.Skipped, got.Updated)
	}

	gotStages, err := l.RunStages(ctx, "run-1")
	if err != nil {
		t.Fatalf("RunStages() failed: %v", err)
	}
	if len(gotStages) != 2 {
		t.Fatalf("RunStages() returned %d stages, want 2", len(gotStages))
	}
	if gotStages[0] != stages[0] {
		t.Errorf("stage[0] = %+v, want %+v", gotStages[0], stages[0])
	}
	if gotStages[1] != stages[1] {
		t.Errorf("stage[1] = %+v, want %+v", gotStages[1], stages[1])
	}
}

func TestRecordRun_Idempotent(t *testing.T) {
	l := openLedger(t)
	ctx := context.Background()

	run := sampleRun("run-1", time.Now().UTC())
	stages := []Stage{
		{Seq: 1, Test: "t0_1_2", Stage: "load", Verdict: "passed", DurationMS: 5},
	}

	if err := l.RecordRun(ctx, run, stages); err != nil {
		t.Fatalf("first RecordRun() failed: %v", err)
	}
	if err := l.RecordRun(ctx, run, stages); err != nil {
		t.Fatalf("second RecordRun() failed: %v", err)
	}

	var count int
	if err := l.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count); err != nil {
		t.Fatalf("count runs failed: %v", err)
	}
	if count != 1 {
		t.Errorf("runs count = %d, want 1", count)
	}
	if err := l.db.QueryRow("SELECT COUNT(*) FROM stages").Scan(&count); err != nil {
		t.Fatalf("count stages failed: %v", err)
	}
	if count != 1 {
		t.Errorf("stages count = %d, want 1", count)
	}
}

func TestRecentRuns_OrdersNewestFirst(t *testing.T) {
	l := openLedger(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		run := sampleRun(id, base.Add(time.Duration(i)*time.Hour))
		if err := l.RecordRun(ctx, run, nil); err != nil {
			t.Fatalf("RecordRun(%s) failed: %v", id, err)
		}
	}

	runs, err := l.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("RecentRuns() returned %d runs, want 2", len(runs))
	}
	if runs[0].ID != "run-c" || runs[1].ID != "run-b" {
		t.Errorf("order = [%s %s], want [run-c run-b]", runs[0].ID, runs[1].ID)
	}
}

func TestRecentRuns_Empty(t *testing.T) {
	l := openLedger(t)

	runs, err := l.RecentRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if runs == nil {
		t.Error("RecentRuns() returned nil, want empty slice")
	}
	if len(runs) != 0 {
		t.Errorf("RecentRuns() returned %d runs, want 0", len(runs))
	}
}

func TestRunStages_UnknownRun(t *testing.T) {
	l := openLedger(t)

	stages, err := l.RunStages(context.Background(), "no-such-run")
	if err != nil {
		t.Fatalf("RunStages() failed: %v", err)
	}
	if stages == nil {
		t.Error("RunStages() returned nil, want empty slice")
	}
	if len(stages) != 0 {
		t.Errorf("RunStages() returned %d stages, want 0", len(stages))
	}
}

func TestStages_RequireRun(t *testing.T) {
	l := openLedger(t)

	_, err := l.db.Exec(`
		INSERT INTO stages
		(run_id, seq, test, stage, query_type, digest, verdict, duration_ms)
		VALUES ('orphan', 1, 't', 'load', '', '', 'passed', 0)
	`)
	if err == nil {
		t.Error("expected foreign key violation for orphan stage, got nil")
	}
}
