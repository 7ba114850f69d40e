package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varstore/regress/internal/history"
)

func seedLedger(t *testing.T) (dbPath, runID string) {
	t.Helper()
	dbPath = filepath.Join(t.TempDir(), "runs.db")
	ledger, err := history.Open(dbPath)
	require.NoError(t, err)
	defer ledger.Close()

	run := history.Run{
		ID:       "run-123",
		Started:  time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC),
		Finished: time.Date(2026, 8, 25, 9, 31, 0, 0, time.UTC),
		Outcome:  history.OutcomePassed,
		Passed:   2,
	}
	stages := []history.Stage{
		{Seq: 1, Test: "t0_1_2", Stage: "load", Verdict: "passed", DurationMS: 900},
		{Seq: 2, Test: "t0_1_2", Stage: "query", QueryType: "calls", Verdict: "passed", DurationMS: 120},
	}
	require.NoError(t, ledger.RecordRun(context.Background(), run, stages))
	return dbPath, run.ID
}

func TestHistory_ListRuns(t *testing.T) {
	dbPath, _ := seedLedger(t)

	stdout, _, err := executeCommand("history", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "run-123")
	assert.Contains(t, stdout, "passed")
	assert.Contains(t, stdout, "2 passed, 0 failed")
}

func TestHistory_RunStages(t *testing.T) {
	dbPath, runID := seedLedger(t)

	stdout, _, err := executeCommand("history", "--db", dbPath, runID)
	require.NoError(t, err)
	assert.Contains(t, stdout, "load")
	assert.Contains(t, stdout, "t0_1_2 calls")
}

func TestHistory_JSON(t *testing.T) {
	dbPath, _ := seedLedger(t)

	stdout, _, err := executeCommand("history", "--db", dbPath, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   []history.Run `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "run-123", resp.Data[0].ID)
	assert.Equal(t, history.OutcomePassed, resp.Data[0].Outcome)
}

func TestHistory_EmptyLedger(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	ledger, err := history.Open(dbPath)
	require.NoError(t, err)
	ledger.Close()

	stdout, _, err := executeCommand("history", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No runs recorded.")
}

func TestHistory_NoDatabaseConfigured(t *testing.T) {
	_, _, err := executeCommand("history")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "no history database configured")
}

func TestHistory_DatabaseFromConfig(t *testing.T) {
	dbPath, _ := seedLedger(t)
	cfgPath := filepath.Join(t.TempDir(), "regress.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("history_db: "+dbPath+"\n"), 0o644))

	stdout, _, err := executeCommand("history", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "run-123")
}

func TestHistory_UnknownRun(t *testing.T) {
	dbPath, _ := seedLedger(t)

	stdout, _, err := executeCommand("history", "--db", dbPath, "missing-run")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No stages recorded for run missing-run.")
}
