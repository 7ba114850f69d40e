package testutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varstore/regress/internal/invoke"
)

func TestPlaybackReplaysSteps(t *testing.T) {
	p := NewPlayback(
		Step{Want: "vcf2tiledb", Result: invoke.Result{Stdout: []byte("loaded\n")}},
		Step{Want: "gt_mpi_gather", Result: invoke.Result{ExitCode: 1}},
	)

	res, err := p.Run(context.Background(), invoke.Command{Path: "../bin/vcf2tiledb", Args: []string{"/run/t.json"}})
	require.NoError(t, err)
	assert.Equal(t, "loaded\n", string(res.Stdout))
	assert.False(t, p.Exhausted())

	res, err = p.Run(context.Background(), invoke.Command{Path: "../bin/gt_mpi_gather"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)
	assert.True(t, p.Exhausted())

	calls := p.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "../bin/vcf2tiledb", calls[0].Path)
}

func TestPlaybackRejectsWrongCommand(t *testing.T) {
	p := NewPlayback(Step{Want: "gt_mpi_gather"})

	_, err := p.Run(context.Background(), invoke.Command{Path: "../bin/vcf2tiledb"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not contain")
}

func TestPlaybackRejectsExtraInvocations(t *testing.T) {
	p := NewPlayback()

	_, err := p.Run(context.Background(), invoke.Command{Path: "../bin/vcf2tiledb"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected invocation")
	// The stray call is still recorded for diagnostics.
	assert.Len(t, p.Calls(), 1)
}

func TestPlaybackStepError(t *testing.T) {
	boom := errors.New("exec format error")
	p := NewPlayback(Step{Err: boom})

	_, err := p.Run(context.Background(), invoke.Command{Path: "../bin/vcf2tiledb"})
	assert.ErrorIs(t, err, boom)
}

func TestWriteTree(t *testing.T) {
	root := t.TempDir()
	WriteTree(t, root, map[string]string{
		"golden_outputs/t0_1_2_loading": "loaded\n",
		"inputs/callsets/t0_1_2.json":   "{}",
	})

	data, err := os.ReadFile(filepath.Join(root, "golden_outputs", "t0_1_2_loading"))
	require.NoError(t, err)
	assert.Equal(t, "loaded\n", string(data))

	_, err = os.Stat(filepath.Join(root, "inputs", "callsets", "t0_1_2.json"))
	assert.NoError(t, err)
}
