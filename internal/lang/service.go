package lang

import (
	"context"
	"time"

	"github.com/dshills/quill/internal/dispatch"
	"github.com/dshills/quill/internal/textedit"
	"github.com/dshills/quill/internal/trigger"
)

// Request categories. Each category holds at most one pending trigger timer
// and one honored outstanding request.
const (
	CategoryCompletion = "completion"
	CategoryHover      = "hover"
	CategoryDefinition = "definition"
	CategoryReferences = "references"
	CategoryRename     = "rename"
	CategoryFormat     = "format"
)

// ErrorHandler receives provider failures on the drain-loop goroutine.
// Failures are status-line material, never fatal.
type ErrorHandler func(op string, err error)

// Service drives the request lifecycle: debounced triggering, snapshot
// capture, the provider call off the UI goroutine, and staleness-checked
// delivery back through the dispatch queue.
//
// All deliver callbacks run on the drain-loop goroutine and only after the
// request's ticket has passed its staleness check.
type Service struct {
	provider   Provider
	queue      *dispatch.Queue
	sched      *trigger.Scheduler
	correlator *Correlator

	timeout         time.Duration
	completionDelay time.Duration
	hoverDelay      time.Duration

	onError ErrorHandler
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithTimeout sets the per-request deadline.
func WithTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithCompletionDelay sets the completion debounce quiet period.
func WithCompletionDelay(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.completionDelay = d
	}
}

// WithHoverDelay sets the hover debounce quiet period.
func WithHoverDelay(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.hoverDelay = d
	}
}

// WithErrorHandler sets the failure callback.
func WithErrorHandler(h ErrorHandler) ServiceOption {
	return func(s *Service) {
		s.onError = h
	}
}

// NewService creates a service over the given provider.
func NewService(provider Provider, doc DocumentState, queue *dispatch.Queue, sched *trigger.Scheduler, opts ...ServiceOption) *Service {
	s := &Service{
		provider:        provider,
		queue:           queue,
		sched:           sched,
		correlator:      NewCorrelator(doc),
		timeout:         10 * time.Second,
		completionDelay: 150 * time.Millisecond,
		hoverDelay:      300 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Correlator exposes the staleness guard for callers that issue their own
// requests.
func (s *Service) Correlator() *Correlator {
	return s.correlator
}

// TriggerCompletion schedules a debounced completion request. Repeated
// keystrokes within the quiet period restart the delay; only the final call
// issues a request. The snapshot passed to deliver is the context the
// request was issued against (its column marks the trigger point).
func (s *Service) TriggerCompletion(deliver func([]CompletionItem, Snapshot)) {
	s.sched.Schedule(CategoryCompletion, s.completionDelay, func() {
		s.requestCompletion(deliver)
	})
}

// requestCompletion runs on the drain goroutine (via the scheduler) so the
// snapshot it captures is consistent with what the user last saw.
func (s *Service) requestCompletion(deliver func([]CompletionItem, Snapshot)) {
	t := s.correlator.Begin(CategoryCompletion, PolicyLine)
	snap := t.Issued()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		items, err := s.provider.Completion(ctx, snap.Path, Position{Line: snap.Line, Col: snap.Col})
		if err != nil {
			s.reportError("completion", err)
			return
		}
		s.queue.PushAction(func() {
			if !t.Valid() {
				return
			}
			deliver(items, snap)
		})
	}()
}

// TriggerHover schedules a debounced hover request.
func (s *Service) TriggerHover(deliver func(*Hover, Snapshot)) {
	s.sched.Schedule(CategoryHover, s.hoverDelay, func() {
		t := s.correlator.Begin(CategoryHover, PolicyExact)
		snap := t.Issued()

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()

			hover, err := s.provider.Hover(ctx, snap.Path, Position{Line: snap.Line, Col: snap.Col})
			if err != nil {
				s.reportError("hover", err)
				return
			}
			s.queue.PushAction(func() {
				if !t.Valid() {
					return
				}
				deliver(hover, snap)
			})
		}()
	})
}

// RequestDefinition issues an immediate definition request. Any edit or
// caret movement before the response arrives discards the result.
func (s *Service) RequestDefinition(deliver func([]Location)) {
	s.requestLocations(CategoryDefinition, s.provider.Definition, deliver)
}

// RequestReferences issues an immediate references request.
func (s *Service) RequestReferences(deliver func([]Location)) {
	s.requestLocations(CategoryReferences, s.provider.References, deliver)
}

// requestLocations is the shared path for location-producing requests.
func (s *Service) requestLocations(category string, call func(context.Context, string, Position) ([]Location, error), deliver func([]Location)) {
	t := s.correlator.Begin(category, PolicyExact)
	snap := t.Issued()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		locs, err := call(ctx, snap.Path, Position{Line: snap.Line, Col: snap.Col})
		if err != nil {
			s.reportError(category, err)
			return
		}
		s.queue.PushAction(func() {
			if !t.Valid() {
				return
			}
			deliver(locs)
		})
	}()
}

// RequestRename issues a rename request. The result is document-scoped: any
// version bump before the response discards it.
func (s *Service) RequestRename(newName string, deliver func(WorkspaceEdit)) {
	t := s.correlator.Begin(CategoryRename, PolicyDocument)
	snap := t.Issued()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		edit, err := s.provider.Rename(ctx, snap.Path, Position{Line: snap.Line, Col: snap.Col}, newName)
		if err != nil {
			s.reportError("rename", err)
			return
		}
		s.queue.PushAction(func() {
			if !t.Valid() {
				return
			}
			deliver(edit)
		})
	}()
}

// RequestFormatting issues a whole-document formatting request. Edits are
// delivered in the buffer applier's form; a version bump before the
// response discards them, since they would target lines that moved.
func (s *Service) RequestFormatting(deliver func([]textedit.Edit)) {
	t := s.correlator.Begin(CategoryFormat, PolicyDocument)
	snap := t.Issued()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		edits, err := s.provider.Formatting(ctx, snap.Path)
		if err != nil {
			s.reportError("format", err)
			return
		}
		s.queue.PushAction(func() {
			if !t.Valid() {
				return
			}
			deliver(BufferEdits(edits))
		})
	}()
}

// CancelPending drops any not-yet-fired trigger timers. Called when the
// user accepts or dismisses an overlay so a stale timer cannot reopen one.
func (s *Service) CancelPending() {
	s.sched.Cancel(CategoryCompletion)
	s.sched.Cancel(CategoryHover)
}

// reportError routes a provider failure to the error handler on the drain
// goroutine.
func (s *Service) reportError(op string, err error) {
	if s.onError == nil {
		return
	}
	s.queue.PushAction(func() {
		s.onError(op, err)
	})
}
