package coverage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varstore/regress/internal/invoke"
	"github.com/varstore/regress/internal/testutil"
)

func newCollector(t *testing.T, pb *testutil.Playback) *Collector {
	t.Helper()
	c, err := New(Options{
		SourceDir:  "../",
		OutputFile: "coverage.info",
		Exclude:    []string{"/opt*", "/usr*", "dependencies*"},
		Runner:     pb,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return c
}

func TestNewRequiresRunner(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "runner is required")
}

func TestZeroCounters(t *testing.T) {
	pb := testutil.NewPlayback(testutil.Step{Want: "--zerocounters"})
	c := newCollector(t, pb)

	c.ZeroCounters(context.Background())

	calls := pb.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "lcov --directory ../ --zerocounters", calls[0].String())
}

func TestCapture(t *testing.T) {
	pb := testutil.NewPlayback(
		testutil.Step{Want: "--capture"},
		testutil.Step{Want: "--remove"},
	)
	c := newCollector(t, pb)

	c.Capture(context.Background())

	calls := pb.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "lcov --directory ../ --capture --output-file coverage.info", calls[0].String())
	assert.Equal(t, "lcov --remove coverage.info '/opt*' '/usr*' 'dependencies*' -o coverage.info", calls[1].String())
}

func TestFailuresAreNotFatal(t *testing.T) {
	pb := testutil.NewPlayback(
		testutil.Step{Result: invoke.Result{ExitCode: 1}},
		testutil.Step{Err: errors.New("lcov: command not found")},
	)
	c := newCollector(t, pb)

	// Both steps fail; neither panics nor short-circuits the bracket.
	c.Capture(context.Background())
	assert.True(t, pb.Exhausted())
}

func TestZeroCountersToolMissing(t *testing.T) {
	pb := testutil.NewPlayback(testutil.Step{Err: errors.New("lcov: command not found")})
	c := newCollector(t, pb)

	c.ZeroCounters(context.Background())
	assert.True(t, pb.Exhausted())
}
