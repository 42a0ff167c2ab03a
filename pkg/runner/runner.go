// Package runner owns the lifecycle of diagnostic test processes: spawn,
// line-by-line output relay, user cancellation with bounded escalation, and
// guaranteed resource release on every exit path. At most one run is active
// at a time; the view layer drives it through Start and CancelCurrent.
package runner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"momo/pkg/registry"
	"momo/pkg/sessionlog"
)

// CancelMarker is appended to the output after a cancelled run's process has
// been confirmed terminated. It is always the run's last line.
const CancelMarker = "--- Test Terminated by User ---"

// DefaultGracePeriod is how long a signalled process gets to exit before the
// whole process group is force-killed.
const DefaultGracePeriod = 3 * time.Second

// ErrRunActive is returned by Start while another run has not finalized.
var ErrRunActive = errors.New("a test is already running")

// Status is the lifecycle outcome of a run.
type Status int

const (
	// StatusRunning means the process is live and streaming output.
	StatusRunning Status = iota
	// StatusCompleted means the process exited on its own. The exit code is
	// recorded but not interpreted; reading it is up to the human.
	StatusCompleted
	// StatusFailed means the tool was present but the process never started.
	StatusFailed
	// StatusCancelled means the user stopped the run and the process was
	// confirmed terminated.
	StatusCancelled
	// StatusToolMissing means the required binary was absent and no process
	// was spawned.
	StatusToolMissing
)

// String returns the status label shown in the UI and stored in history.
func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	case StatusToolMissing:
		return "tool-missing"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// LineSink receives each relayed output line. The scrollback buffer and the
// session log record both implement it.
type LineSink interface {
	Append(line string)
}

// AvailabilityChecker reports whether a spec's required tool is installed.
// Satisfied by *registry.Registry.
type AvailabilityChecker interface {
	IsAvailable(registry.TestSpec) bool
}

// Outcome summarizes a finalized run.
type Outcome struct {
	RunID     string
	Test      string
	Status    Status
	ExitCode  int // meaningful only for StatusCompleted
	Err       error
	LogPath   string // empty when no log file was created
	LogErr    error  // non-fatal log-open failure, if any
	StartedAt time.Time
	Duration  time.Duration
	Lines     int
}

// Runner starts and supervises one diagnostic run at a time.
type Runner struct {
	avail  AvailabilityChecker
	logDir string
	grace  time.Duration

	mu      sync.Mutex
	current *Run
}

// Option configures a Runner.
type Option func(*Runner)

// WithGracePeriod overrides the SIGTERM-to-SIGKILL escalation delay.
func WithGracePeriod(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.grace = d
		}
	}
}

// New returns a Runner writing session logs under logDir.
func New(avail AvailabilityChecker, logDir string, opts ...Option) *Runner {
	r := &Runner{avail: avail, logDir: logDir, grace: DefaultGracePeriod}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run is the state of one test invocation. It is created by Start and
// reaches exactly one finalized outcome on every path.
type Run struct {
	ID        string
	Spec      registry.TestSpec
	StartedAt time.Time

	runner *Runner
	cmd    *exec.Cmd
	log    *sessionlog.Record
	logErr error
	sinks  []LineSink

	mu         sync.Mutex
	status     Status
	exitCode   int
	err        error
	lines      int
	cancelled  bool // cancel was requested before the process exited
	finishedAt time.Time

	waitDone chan struct{} // closed when cmd.Wait has returned
	done     chan struct{} // closed when the run has finalized
	updates  chan struct{} // coalesced output notifications for the view
}

// Start launches the test described by spec, relaying output into sinks.
// A missing tool or a spawn failure still yields a finalized *Run (with
// StatusToolMissing or StatusFailed); the only error returned is
// ErrRunActive when a previous run has not finalized yet.
func (r *Runner) Start(spec registry.TestSpec, sinks ...LineSink) (*Run, error) {
	r.mu.Lock()
	if r.current != nil {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrRunActive, r.current.Spec.Name)
	}

	run := &Run{
		ID:        uuid.New().String(),
		Spec:      spec,
		StartedAt: time.Now(),
		runner:    r,
		sinks:     sinks,
		status:    StatusRunning,
		waitDone:  make(chan struct{}),
		done:      make(chan struct{}),
		updates:   make(chan struct{}, 1),
	}
	r.current = run
	r.mu.Unlock()

	if !r.avail.IsAvailable(spec) {
		// Short-circuit: no process, no log file.
		run.appendLine(fmt.Sprintf("[MISSING] required tool %q is not installed", spec.Tool))
		run.finalize(StatusToolMissing, nil)
		return run, nil
	}

	if rec, err := sessionlog.Open(r.logDir, spec.Name, run.StartedAt); err != nil {
		run.logErr = err
		fmt.Fprintf(os.Stderr, "warning: %v; continuing without a log file\n", err)
	} else {
		run.log = rec
		run.sinks = append(run.sinks, rec)
	}

	cmd := exec.Command(spec.Argv[0], spec.Argv[1:]...) // #nosec G204 -- argv comes from the static catalog
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		run.failBeforeSpawn(fmt.Errorf("pipe %s: %w", spec.Name, err))
		return run, nil
	}
	cmd.Stderr = cmd.Stdout // merged stream, like 2>&1

	if err := cmd.Start(); err != nil {
		run.failBeforeSpawn(fmt.Errorf("spawn %s: %w", spec.Name, err))
		return run, nil
	}
	// run is already published as r.current, so a concurrent Cancel may be
	// reading the handle.
	run.mu.Lock()
	run.cmd = cmd
	run.mu.Unlock()

	go run.relay(stdout)

	return run, nil
}

// Current returns the active run, or nil when idle.
func (r *Runner) Current() *Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// CancelCurrent cancels the active run. A no-op when idle.
func (r *Runner) CancelCurrent() error {
	if run := r.Current(); run != nil {
		return run.Cancel()
	}
	return nil
}

// relay reads the merged output stream, reassembles it into lines, and fans
// each line out to the sinks. It then reaps the process and finalizes.
func (run *Run) relay(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		run.appendLine(scanner.Text())
	}
	scanErr := scanner.Err()
	if scanErr != nil {
		// Keep draining so the child never blocks on a full pipe while we
		// wait for it to exit.
		_, _ = io.Copy(io.Discard, stdout)
	}

	// A non-zero exit reports Completed too; the code lands in the outcome
	// and the log, where the human interprets it.
	_ = run.cmd.Wait()
	close(run.waitDone)

	if scanErr != nil {
		run.appendLine(fmt.Sprintf("ERROR: reading output: %v", scanErr))
	}

	run.mu.Lock()
	cancelled := run.cancelled
	run.mu.Unlock()

	if cancelled {
		run.appendLine(CancelMarker)
		run.finalize(StatusCancelled, nil)
		return
	}

	code := 0
	if run.cmd.ProcessState != nil {
		code = run.cmd.ProcessState.ExitCode()
	}
	run.mu.Lock()
	run.exitCode = code
	run.mu.Unlock()
	run.finalize(StatusCompleted, nil)
}

// Cancel requests termination of the run's process group: SIGTERM first,
// then SIGKILL once the grace period expires. It returns after the process
// has been confirmed dead. Cancelling a run that has already exited or
// finalized is a no-op.
func (run *Run) Cancel() error {
	run.mu.Lock()
	if run.status != StatusRunning || run.cmd == nil || run.cancelled {
		run.mu.Unlock()
		return nil
	}
	select {
	case <-run.waitDone:
		// Already exited naturally; cancel is a no-op.
		run.mu.Unlock()
		return nil
	default:
	}
	run.cancelled = true
	proc := run.cmd.Process
	run.mu.Unlock()

	// Negative PID addresses the whole process group so descendants die too.
	pgid := proc.Pid
	if err := syscall.Kill(-pgid, syscall.SIGTERM); err != nil {
		// The process beat us to a natural exit; report Completed, not
		// Cancelled, and let the relay goroutine finalize.
		run.mu.Lock()
		run.cancelled = false
		run.mu.Unlock()
		<-run.waitDone
		return nil
	}

	select {
	case <-run.waitDone:
	case <-time.After(run.runner.grace):
		_ = syscall.Kill(-pgid, syscall.SIGKILL)
		<-run.waitDone
	}

	return nil
}

// failBeforeSpawn finalizes a run whose process never started.
func (run *Run) failBeforeSpawn(err error) {
	run.appendLine(fmt.Sprintf("ERROR: %v", err))
	run.finalize(StatusFailed, err)
}

// finalize releases the log record, publishes the terminal status, clears
// the runner's single run slot, and wakes any waiters. Called exactly once
// per run.
func (run *Run) finalize(status Status, err error) {
	if run.log != nil {
		if cerr := run.log.Close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", cerr)
		}
	}

	run.mu.Lock()
	run.status = status
	run.finishedAt = time.Now()
	if err != nil {
		run.err = err
	}
	run.mu.Unlock()

	run.runner.mu.Lock()
	if run.runner.current == run {
		run.runner.current = nil
	}
	run.runner.mu.Unlock()

	close(run.done)
	run.notify()
}

// appendLine fans a line out to every sink and signals the view.
func (run *Run) appendLine(line string) {
	for _, sink := range run.sinks {
		sink.Append(line)
	}
	run.mu.Lock()
	run.lines++
	run.mu.Unlock()
	run.notify()
}

// notify coalesces update signals; a full channel already implies a pending
// wakeup.
func (run *Run) notify() {
	select {
	case run.updates <- struct{}{}:
	default:
	}
}

// Status returns the run's current status.
func (run *Run) Status() Status {
	run.mu.Lock()
	defer run.mu.Unlock()
	return run.status
}

// Lines returns how many lines have been relayed so far.
func (run *Run) Lines() int {
	run.mu.Lock()
	defer run.mu.Unlock()
	return run.lines
}

// Done is closed when the run has finalized.
func (run *Run) Done() <-chan struct{} {
	return run.done
}

// Updates signals new output or state changes. Receivers should re-render
// and wait again; signals are coalesced, not one-per-line.
func (run *Run) Updates() <-chan struct{} {
	return run.updates
}

// Finalized reports whether the run has reached its terminal state.
func (run *Run) Finalized() bool {
	select {
	case <-run.done:
		return true
	default:
		return false
	}
}

// LogPath returns the session log path, or empty when no log was created.
func (run *Run) LogPath() string {
	if run.log == nil {
		return ""
	}
	return run.log.Path
}

// Outcome returns the run summary. Meaningful once Done is closed.
func (run *Run) Outcome() Outcome {
	run.mu.Lock()
	defer run.mu.Unlock()
	duration := time.Duration(0)
	if !run.finishedAt.IsZero() {
		duration = run.finishedAt.Sub(run.StartedAt)
	}
	return Outcome{
		RunID:     run.ID,
		Test:      run.Spec.Name,
		Status:    run.status,
		ExitCode:  run.exitCode,
		Err:       run.err,
		LogPath:   run.LogPath(),
		LogErr:    run.logErr,
		StartedAt: run.StartedAt,
		Duration:  duration,
		Lines:     run.lines,
	}
}
