// Package coverage brackets a harness run with lcov counter management.
//
// The native tools under test are instrumented builds; lcov counters are
// zeroed before the run and captured into a tracefile after a fully
// successful run. Coverage collection is best effort: a missing or failing
// lcov never fails the run, it only logs a warning.
package coverage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/varstore/regress/internal/invoke"
)

const lcovBinary = "lcov"

// Options configure a Collector.
type Options struct {
	// SourceDir is the instrumented build tree handed to lcov --directory.
	SourceDir string

	// OutputFile is the tracefile written by the capture step.
	OutputFile string

	// Exclude lists path patterns stripped from the tracefile after
	// capture.
	Exclude []string

	// Runner executes the lcov invocations. Required.
	Runner invoke.Runner

	// Logger receives the warnings for failed lcov calls. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// Collector drives lcov around a harness run.
type Collector struct {
	opts Options
}

// New validates the options and returns a Collector.
func New(opts Options) (*Collector, error) {
	if opts.Runner == nil {
		return nil, fmt.Errorf("runner is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Collector{opts: opts}, nil
}

// ZeroCounters resets the instrumented tree's counters so the tracefile
// reflects only the run about to start.
func (c *Collector) ZeroCounters(ctx context.Context) {
	c.call(ctx, invoke.Command{
		Path: lcovBinary,
		Args: []string{"--directory", c.opts.SourceDir, "--zerocounters"},
	})
}

// Capture writes the tracefile and strips the excluded path patterns from
// it. Call it only after a fully successful run; a partial run's counters
// would misstate the suite's coverage.
func (c *Collector) Capture(ctx context.Context) {
	c.call(ctx, invoke.Command{
		Path: lcovBinary,
		Args: []string{"--directory", c.opts.SourceDir, "--capture", "--output-file", c.opts.OutputFile},
	})

	args := append([]string{"--remove", c.opts.OutputFile}, c.opts.Exclude...)
	args = append(args, "-o", c.opts.OutputFile)
	c.call(ctx, invoke.Command{Path: lcovBinary, Args: args})
}

// call runs one lcov invocation and downgrades every failure to a warning.
func (c *Collector) call(ctx context.Context, cmd invoke.Command) {
	res, err := c.opts.Runner.Run(ctx, cmd)
	if err != nil {
		c.opts.Logger.Warn("coverage tool failed", "command", cmd.String(), "error", err)
		return
	}
	if !res.Succeeded() {
		c.opts.Logger.Warn("coverage tool exited nonzero",
			"command", cmd.String(), "exit_code", res.ExitCode)
	}
}
