package runner

import (
	"context"
	"fmt"
	"os"

	"momo/pkg/registry"
)

// Resolver maps test names to specs. Satisfied by *registry.Registry.
type Resolver interface {
	Resolve(name string) (registry.TestSpec, error)
}

// Recorder persists finalized run outcomes. Satisfied by *history.Store.
// Recording failures are non-fatal to the sequence.
type Recorder interface {
	Record(ctx context.Context, o Outcome) error
}

// Orchestrator sequences multiple tests through a single Runner, strictly
// one at a time, and aggregates their outcomes.
type Orchestrator struct {
	runner   *Runner
	resolver Resolver
	recorder Recorder // may be nil
}

// NewOrchestrator wires an Orchestrator. recorder may be nil to skip
// history persistence.
func NewOrchestrator(r *Runner, resolver Resolver, recorder Recorder) *Orchestrator {
	return &Orchestrator{runner: r, resolver: resolver, recorder: recorder}
}

// RunOne executes a single named test to finalization, relaying output into
// sinks. Cancelling ctx cancels the running process (global cancel).
func (o *Orchestrator) RunOne(ctx context.Context, name string, sinks ...LineSink) (Outcome, error) {
	spec, err := o.resolver.Resolve(name)
	if err != nil {
		return Outcome{Test: name, Status: StatusFailed, Err: err}, err
	}

	run, err := o.runner.Start(spec, sinks...)
	if err != nil {
		return Outcome{Test: name, Status: StatusFailed, Err: err}, err
	}

	// Propagate a global cancel to the child process. The watcher exits as
	// soon as the run finalizes.
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		select {
		case <-ctx.Done():
			_ = run.Cancel()
			<-run.Done()
		case <-run.Done():
		}
	}()

	<-run.Done()
	<-watchDone

	outcome := run.Outcome()
	// History is written even when ctx was the cancel trigger.
	o.record(context.WithoutCancel(ctx), outcome)
	return outcome, nil
}

// RunAll executes the named tests strictly sequentially and returns one
// outcome per name, in order. A Failed, Cancelled, or ToolMissing outcome
// does not stop the sequence; only a global cancel via ctx does, in which
// case the returned slice holds the outcomes reached so far.
func (o *Orchestrator) RunAll(ctx context.Context, names []string, sinks ...LineSink) []Outcome {
	outcomes := make([]Outcome, 0, len(names))
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		outcome, err := o.RunOne(ctx, name, sinks...)
		outcomes = append(outcomes, outcome)
		if err != nil {
			continue
		}
		// A run cancelled by the global ctx ends the whole sequence; a
		// per-test cancel (user pressed stop) just advances to the next.
		if outcome.Status == StatusCancelled && ctx.Err() != nil {
			break
		}
	}
	return outcomes
}

// record persists an outcome to history when a recorder is configured.
func (o *Orchestrator) record(ctx context.Context, outcome Outcome) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Record(ctx, outcome); err != nil {
		fmt.Fprintf(os.Stderr, "warning: record run history: %v\n", err)
	}
}
