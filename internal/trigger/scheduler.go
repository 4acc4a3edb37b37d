package trigger

import (
	"sync"
	"time"

	"github.com/dshills/quill/internal/dispatch"
)

// Scheduler coalesces rapid repeated triggers into a single delayed action
// per category. Actions fire through the dispatch queue, never directly from
// the timer goroutine.
//
// Thread-safety: all methods are safe for concurrent use.
type Scheduler struct {
	mu     sync.Mutex
	queue  *dispatch.Queue
	timers map[string]*time.Timer
	seqs   map[string]uint64
}

// NewScheduler creates a scheduler that delivers fired actions through queue.
func NewScheduler(queue *dispatch.Queue) *Scheduler {
	return &Scheduler{
		queue:  queue,
		timers: make(map[string]*time.Timer),
		seqs:   make(map[string]uint64),
	}
}

// Schedule arms a timer for the category, cancelling any previous
// not-yet-fired timer for the same category. When the delay elapses without
// a newer Schedule or Cancel, fn is enqueued onto the dispatch queue.
func (s *Scheduler) Schedule(category string, delay time.Duration, fn func()) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seqs[category]++
	seq := s.seqs[category]

	if t, ok := s.timers[category]; ok {
		t.Stop()
	}

	s.timers[category] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		// A newer Schedule or a Cancel invalidates this firing.
		if s.seqs[category] != seq {
			s.mu.Unlock()
			return
		}
		delete(s.timers, category)
		s.mu.Unlock()

		s.queue.PushAction(fn)
	})
}

// Cancel drops any pending timer for the category. Idempotent.
func (s *Scheduler) Cancel(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(category)
}

// CancelAll drops every pending timer. Idempotent.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for category := range s.timers {
		s.cancelLocked(category)
	}
}

// cancelLocked stops and invalidates the category's timer (must hold lock).
func (s *Scheduler) cancelLocked(category string) {
	if t, ok := s.timers[category]; ok {
		t.Stop()
		delete(s.timers, category)
	}
	// Invalidate any timer callback already past Stop.
	s.seqs[category]++
}

// Pending returns true if a timer is armed for the category.
func (s *Scheduler) Pending(category string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[category]
	return ok
}
