// Package testutil provides test doubles and fixture helpers shared by the
// harness packages' tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/varstore/regress/internal/invoke"
)

// Step scripts one expected invocation of a Playback runner.
type Step struct {
	// Want, when non-empty, is a substring the rendered command line must
	// contain. A non-matching invocation fails the run, which catches
	// stages executing out of order.
	Want string

	// Result is returned for the invocation.
	Result invoke.Result

	// Err, when set, is returned instead of Result to simulate a tool
	// that could not be started.
	Err error
}

// Playback is a scripted invoke.Runner. Each invocation consumes the next
// step in order; running past the script or failing a step's command match
// returns an error, which the harness treats as a run-aborting failure.
//
// Thread-safety: all methods are safe for concurrent use via internal
// mutex, though harness runs are sequential by design.
type Playback struct {
	mu    sync.Mutex
	steps []Step
	next  int
	calls []invoke.Command
}

var _ invoke.Runner = (*Playback)(nil)

// NewPlayback creates a Playback scripted with the given steps.
func NewPlayback(steps ...Step) *Playback {
	return &Playback{steps: steps}
}

// Run consumes the next scripted step.
func (p *Playback) Run(_ context.Context, cmd invoke.Command) (invoke.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, cmd)
	if p.next >= len(p.steps) {
		return invoke.Result{}, fmt.Errorf("unexpected invocation %d: %s", p.next, cmd)
	}
	step := p.steps[p.next]
	p.next++

	if step.Want != "" && !strings.Contains(cmd.String(), step.Want) {
		return invoke.Result{}, fmt.Errorf("invocation %d: command %q does not contain %q", p.next-1, cmd.String(), step.Want)
	}
	if step.Err != nil {
		return invoke.Result{}, step.Err
	}
	return step.Result, nil
}

// Calls returns every command run so far, in order.
func (p *Playback) Calls() []invoke.Command {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]invoke.Command(nil), p.calls...)
}

// Exhausted reports whether every scripted step has been consumed.
func (p *Playback) Exhausted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next == len(p.steps)
}
