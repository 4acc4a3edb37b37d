package vcs

import (
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/quill/internal/trigger"
)

// watchCategory keys the watcher's debounce timer.
const watchCategory = "vcs-refresh"

// DefaultDebounce coalesces the event bursts a single git command emits.
const DefaultDebounce = 200 * time.Millisecond

// Watcher triggers a repository refresh when the .git directory changes.
// Git operations touch many files in quick succession, so raw events are
// debounced through the trigger scheduler before a refresh runs.
type Watcher struct {
	repo     *Repo
	sched    *trigger.Scheduler
	debounce time.Duration
	fsw      *fsnotify.Watcher
	refresh  func()
	done     chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a refresh fires.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watch starts watching repo's .git directory. refresh runs on the
// drain-loop goroutine after each debounced change burst.
func Watch(repo *Repo, sched *trigger.Scheduler, refresh func(), opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		repo:     repo,
		sched:    sched,
		debounce: DefaultDebounce,
		fsw:      fsw,
		refresh:  refresh,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := fsw.Add(repo.GitDir()); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

// loop converts raw filesystem events into debounced refresh triggers.
func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ignoreEvent(ev) {
				continue
			}
			w.sched.Schedule(watchCategory, w.debounce, w.refresh)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		case <-w.done:
			return
		}
	}
}

// ignoreEvent filters the lock-file churn every git command produces.
func ignoreEvent(ev fsnotify.Event) bool {
	return strings.HasSuffix(ev.Name, ".lock") || ev.Op == fsnotify.Chmod
}

// Close stops the watcher and drops any pending refresh.
func (w *Watcher) Close() error {
	close(w.done)
	w.sched.Cancel(watchCategory)
	return w.fsw.Close()
}
