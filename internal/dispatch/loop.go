package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is the drain cadence used when none is configured.
const DefaultInterval = 25 * time.Millisecond

// Loop drains a Queue at a fixed cadence on the goroutine that calls Run.
// That goroutine becomes the UI-owning goroutine: all background-originated
// state changes are applied from it and nowhere else.
type Loop struct {
	queue    *Queue
	interval time.Duration
	sink     LineSink
	onTick   func()

	running  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once

	ticks atomic.Uint64
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithInterval sets the drain cadence.
func WithInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithLineSink sets the consumer for drained output lines.
func WithLineSink(sink LineSink) LoopOption {
	return func(l *Loop) {
		l.sink = sink
	}
}

// WithOnTick sets a callback invoked after every drain tick, on the loop
// goroutine. Used for post-drain work such as redrawing.
func WithOnTick(fn func()) LoopOption {
	return func(l *Loop) {
		l.onTick = fn
	}
}

// NewLoop creates a drain loop over the given queue.
func NewLoop(queue *Queue, opts ...LoopOption) *Loop {
	l := &Loop{
		queue:    queue,
		interval: DefaultInterval,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run blocks, draining the queue every interval until Stop is called or the
// context is cancelled. The calling goroutine is the only one that may
// mutate presentation state.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer l.running.Store(false)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.Tick()
			return ctx.Err()
		case <-l.stop:
			// Final drain so nothing enqueued before Stop is lost.
			l.Tick()
			return nil
		case <-ticker.C:
			l.Tick()
		}
	}
}

// Tick performs a single drain pass. It must be called from the same
// goroutine as Run, or in place of Run by callers embedding their own loop.
func (l *Loop) Tick() int {
	n := l.queue.DrainOnce(l.sink)
	l.ticks.Add(1)
	if l.onTick != nil {
		l.onTick()
	}
	return n
}

// Stop ends the loop after one final drain. Safe to call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
}

// IsRunning returns true while Run is active.
func (l *Loop) IsRunning() bool {
	return l.running.Load()
}

// Ticks returns how many drain passes have executed.
func (l *Loop) Ticks() uint64 {
	return l.ticks.Load()
}
