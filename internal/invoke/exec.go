package invoke

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// ExecRunner runs commands as child processes.
//
// Dir is the working directory for every child. Relative command paths and
// the relative fixture paths inside generated configuration documents both
// resolve against it, so it must be the directory holding the inputs/ and
// golden_outputs/ trees.
//
// Stderr receives the children's stderr unbuffered; nil means the calling
// process's stderr. Stdout is always captured and returned in the Result.
type ExecRunner struct {
	Dir    string
	Stderr io.Writer
}

var _ Runner = (*ExecRunner)(nil)

// Run executes cmd and waits for it to finish. A nonzero exit status is not
// an error; it is reported through Result.ExitCode. Errors are returned only
// when the process cannot be started or the context ends first.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Dir = r.Dir

	var stdout bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = r.Stderr
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}

	if err := c.Run(); err != nil {
		if ctx.Err() != nil {
			return Result{}, fmt.Errorf("run %s: %w", cmd.Path, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{Stdout: stdout.Bytes(), ExitCode: exitErr.ExitCode()}, nil
		}
		return Result{}, fmt.Errorf("run %s: %w", cmd.Path, err)
	}
	return Result{Stdout: stdout.Bytes()}, nil
}
