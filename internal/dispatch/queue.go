package dispatch

import (
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// Stream identifies which output stream a line came from.
type Stream int

const (
	// StreamStdout is standard output.
	StreamStdout Stream = iota
	// StreamStderr is standard error.
	StreamStderr
)

// String returns the stream name.
func (s Stream) String() string {
	switch s {
	case StreamStdout:
		return "stdout"
	case StreamStderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// Line is a single line of output from a background producer.
type Line struct {
	// Source names the producer (task name, "git", server language ID).
	Source string

	// Stream identifies stdout or stderr.
	Stream Stream

	// Text is the line content without the trailing newline.
	Text string

	// Time is when the line was received.
	Time time.Time
}

// Item is a queued unit of work: either a Line or a deferred Action.
// Items are consumed exactly once, in FIFO order, and never mutated.
type Item struct {
	line   Line
	action func()
	isLine bool
}

// LineItem wraps a Line as a queue item.
func LineItem(l Line) Item {
	return Item{line: l, isLine: true}
}

// ActionItem wraps a deferred action as a queue item.
func ActionItem(fn func()) Item {
	return Item{action: fn}
}

// IsLine returns true if the item carries a Line.
func (it Item) IsLine() bool {
	return it.isLine
}

// Line returns the carried line. Only meaningful when IsLine is true.
func (it Item) Line() Line {
	return it.line
}

// PanicHandler receives panics recovered while executing a queued item.
type PanicHandler func(item Item, recovered any, stack []byte)

// LineSink consumes drained output lines on the UI goroutine.
type LineSink func(Line)

// Queue is a multi-producer, single-consumer FIFO carrying output lines and
// deferred actions from background goroutines to the UI goroutine.
//
// Thread-safety: Push methods are safe from any goroutine and never block.
// DrainOnce must only be called from the single goroutine that owns
// presentation state.
type Queue struct {
	mu    sync.Mutex
	items []Item

	panicHandler PanicHandler

	// Stats
	pushed   atomic.Uint64
	drained  atomic.Uint64
	panicked atomic.Uint64
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithPanicHandler sets the handler invoked when a drained item panics.
func WithPanicHandler(h PanicHandler) QueueOption {
	return func(q *Queue) {
		q.panicHandler = h
	}
}

// NewQueue creates an empty queue.
func NewQueue(opts ...QueueOption) *Queue {
	q := &Queue{}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Push appends items to the queue. It never blocks and never fails; the
// queue grows as needed.
func (q *Queue) Push(items ...Item) {
	q.mu.Lock()
	q.items = append(q.items, items...)
	q.mu.Unlock()
	q.pushed.Add(uint64(len(items)))
}

// PushLine appends a single output line.
func (q *Queue) PushLine(source string, stream Stream, text string) {
	q.Push(LineItem(Line{
		Source: source,
		Stream: stream,
		Text:   text,
		Time:   time.Now(),
	}))
}

// PushAction appends a deferred action. Nil actions are ignored.
func (q *Queue) PushAction(fn func()) {
	if fn == nil {
		return
	}
	q.Push(ActionItem(fn))
}

// Len returns the current number of queued items.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// DrainOnce pops everything currently queued and executes it in FIFO order.
// Items enqueued while the drain is running are left for the next drain,
// bounding the latency of a single tick.
//
// Lines are delivered to sink (which may be nil), actions are invoked
// directly. Every item runs inside a panic guard; a recovered panic is
// routed to the configured PanicHandler and the drain continues.
//
// Returns the number of items executed.
func (q *Queue) DrainOnce(sink LineSink) int {
	q.mu.Lock()
	batch := q.items
	q.items = nil
	q.mu.Unlock()

	for _, it := range batch {
		q.runGuarded(it, sink)
	}
	q.drained.Add(uint64(len(batch)))
	return len(batch)
}

// runGuarded executes one item with panic recovery.
func (q *Queue) runGuarded(it Item, sink LineSink) {
	defer func() {
		if r := recover(); r != nil {
			q.panicked.Add(1)
			if q.panicHandler != nil {
				stack := debug.Stack()
				func() {
					defer func() { _ = recover() }()
					q.panicHandler(it, r, stack)
				}()
			}
		}
	}()

	if it.isLine {
		if sink != nil {
			sink(it.line)
		}
		return
	}
	if it.action != nil {
		it.action()
	}
}

// Stats returns queue counters.
func (q *Queue) Stats() QueueStats {
	return QueueStats{
		Pushed:   q.pushed.Load(),
		Drained:  q.drained.Load(),
		Panicked: q.panicked.Load(),
		Depth:    q.Len(),
	}
}

// QueueStats contains queue counters.
type QueueStats struct {
	// Pushed is the total number of items enqueued.
	Pushed uint64

	// Drained is the number of items executed.
	Drained uint64

	// Panicked is the number of items that panicked during execution.
	Panicked uint64

	// Depth is the current number of waiting items.
	Depth int
}
