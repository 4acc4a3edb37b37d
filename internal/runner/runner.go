package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/quill/internal/dispatch"
)

// Result describes a finished run. Delivered as a queued action on the
// drain-loop goroutine.
type Result struct {
	// ID is the run's unique identifier.
	ID string

	// Name is the label lines were tagged with.
	Name string

	// ExitCode is the process exit code, or -1 if it never ran.
	ExitCode int

	// Killed is true if the process died from a signal.
	Killed bool

	// Err is the start or wait error, if any.
	Err error

	// Duration is wall time from start to exit.
	Duration time.Duration
}

// Ok returns true for a clean zero exit.
func (r Result) Ok() bool {
	return r.Err == nil && !r.Killed && r.ExitCode == 0
}

// Run is one live or finished command execution.
type Run struct {
	// ID is the unique run identifier.
	ID string

	// Name labels the run's output lines.
	Name string

	cmd     *exec.Cmd
	started time.Time
	done    chan struct{}
	running atomic.Bool
}

// Done is closed when the run's result has been enqueued.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// IsRunning returns true while the process is alive.
func (r *Run) IsRunning() bool {
	return r.running.Load()
}

// Signal sends sig to the process.
func (r *Run) Signal(sig syscall.Signal) error {
	if !r.running.Load() || r.cmd.Process == nil {
		return ErrNotRunning
	}
	return r.cmd.Process.Signal(sig)
}

// Runner starts and tracks command runs.
//
// Thread-safety: all methods are safe for concurrent use, though runs are
// normally started from the drain-loop goroutine.
type Runner struct {
	queue *dispatch.Queue

	dir     string
	env     []string
	bufSize int

	mu   sync.Mutex
	runs map[string]*Run
}

// Option configures a Runner.
type Option func(*Runner)

// WithDir sets the working directory for commands.
func WithDir(dir string) Option {
	return func(r *Runner) {
		r.dir = dir
	}
}

// WithEnv sets the environment for commands. Nil inherits the parent's.
func WithEnv(env []string) Option {
	return func(r *Runner) {
		r.env = env
	}
}

// WithBufferSize sets the per-line scanner buffer limit in bytes.
func WithBufferSize(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.bufSize = n
		}
	}
}

// New creates a runner that reports through queue.
func New(queue *dispatch.Queue, opts ...Option) *Runner {
	r := &Runner{
		queue:   queue,
		bufSize: 256 * 1024,
		runs:    make(map[string]*Run),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches name's command and returns immediately. Output lines are
// pushed to the queue tagged with name; when the process exits, onDone (if
// non-nil) is enqueued with the Result. ctx cancellation kills the process.
func (r *Runner) Start(ctx context.Context, name string, command []string, onDone func(Result)) (*Run, error) {
	if len(command) == 0 {
		return nil, ErrEmptyCommand
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = r.dir
	if r.env != nil {
		cmd.Env = r.env
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	run := &Run{
		ID:   uuid.New().String(),
		Name: name,
		cmd:  cmd,
		done: make(chan struct{}),
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", command[0], err)
	}
	run.started = time.Now()
	run.running.Store(true)

	r.mu.Lock()
	r.runs[run.ID] = run
	r.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go r.scan(&wg, stdout, name, dispatch.StreamStdout)
	go r.scan(&wg, stderr, name, dispatch.StreamStderr)

	go r.wait(run, &wg, onDone)

	return run, nil
}

// scan pushes one queue line per scanned line until the pipe closes.
func (r *Runner) scan(wg *sync.WaitGroup, pipe io.Reader, source string, stream dispatch.Stream) {
	defer wg.Done()

	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 64*1024), r.bufSize)
	for scanner.Scan() {
		r.queue.PushLine(source, stream, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		r.queue.PushLine(source, dispatch.StreamStderr, fmt.Sprintf("output error: %v", err))
	}
}

// wait blocks until the pipes drain and the process exits, then enqueues
// the result.
func (r *Runner) wait(run *Run, wg *sync.WaitGroup, onDone func(Result)) {
	// Pipes must be drained before Wait closes them.
	wg.Wait()
	err := run.cmd.Wait()

	run.running.Store(false)

	res := Result{
		ID:       run.ID,
		Name:     run.Name,
		ExitCode: 0,
		Duration: time.Since(run.started),
	}
	if err != nil {
		res.Err = err
		res.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			res.Err = nil
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
				res.Killed = true
			}
		}
	}

	r.mu.Lock()
	delete(r.runs, run.ID)
	r.mu.Unlock()

	if onDone != nil {
		r.queue.PushAction(func() {
			onDone(res)
		})
	}
	close(run.done)
}

// Get returns the live run with the given ID.
func (r *Runner) Get(id string) (*Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return run, nil
}

// Running returns the IDs of all live runs.
func (r *Runner) Running() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.runs))
	for id := range r.runs {
		ids = append(ids, id)
	}
	return ids
}

// Stop sends SIGTERM to the run.
func (r *Runner) Stop(id string) error {
	run, err := r.Get(id)
	if err != nil {
		return err
	}
	return run.Signal(syscall.SIGTERM)
}

// Kill sends SIGKILL to the run.
func (r *Runner) Kill(id string) error {
	run, err := r.Get(id)
	if err != nil {
		return err
	}
	return run.Signal(syscall.SIGKILL)
}

// StopAll terminates every live run. Best effort.
func (r *Runner) StopAll() {
	for _, id := range r.Running() {
		_ = r.Stop(id)
	}
}
