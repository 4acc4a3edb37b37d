// Package app wires the editor together: the dispatch queue and drain
// loop, debounced language requests, overlays, task runs, git status, and
// user hooks. It owns all presentation state and mutates it only on the
// drain-loop goroutine.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/quill/internal/config"
	"github.com/dshills/quill/internal/dispatch"
	"github.com/dshills/quill/internal/lang"
	"github.com/dshills/quill/internal/overlay"
	"github.com/dshills/quill/internal/portal"
	"github.com/dshills/quill/internal/runner"
	"github.com/dshills/quill/internal/script"
	"github.com/dshills/quill/internal/surface"
	"github.com/dshills/quill/internal/textedit"
	"github.com/dshills/quill/internal/trigger"
	"github.com/dshills/quill/internal/vcs"
)

// App coordinates every component around a single document view.
//
// Thread-safety: Snapshot is safe from any goroutine. Everything else must
// run on the drain-loop goroutine; background work reaches the App by
// enqueuing actions.
type App struct {
	cfg config.Config

	queue *dispatch.Queue
	loop  *dispatch.Loop
	sched *trigger.Scheduler

	surf     surface.Surface
	overlays *overlay.Controller
	svc      *lang.Service
	runner   *runner.Runner
	repo     *vcs.Repo
	hooks    *script.Engine

	// snapMu guards the published snapshot, read by request goroutines.
	snapMu sync.Mutex
	snap   lang.Snapshot

	// undo holds inverse batches, newest last.
	undo [][]textedit.Edit

	// prompt is a one-line status bar input. While active it captures
	// every key.
	promptActive bool
	promptLabel  string
	promptText   []rune
	promptDone   func(string)

	dirty bool
}

// Option configures an App.
type Option func(*App)

// WithRunner attaches a task runner.
func WithRunner(r *runner.Runner) Option {
	return func(a *App) {
		a.runner = r
	}
}

// WithRepo attaches a git repository for status reporting.
func WithRepo(r *vcs.Repo) Option {
	return func(a *App) {
		a.repo = r
	}
}

// WithHooks attaches a hook script engine.
func WithHooks(h *script.Engine) Option {
	return func(a *App) {
		a.hooks = h
	}
}

// SetRunner attaches a task runner after construction. Components built
// around the App's own queue attach this way.
func (a *App) SetRunner(r *runner.Runner) {
	a.runner = r
}

// SetRepo attaches a git repository after construction.
func (a *App) SetRepo(r *vcs.Repo) {
	a.repo = r
}

// SetHooks attaches a hook script engine after construction.
func (a *App) SetHooks(h *script.Engine) {
	a.hooks = h
}

// New creates the coordinator. provider may be nil when no language server
// is configured; completion and friends become no-ops.
func New(cfg config.Config, surf surface.Surface, provider lang.Provider, opts ...Option) *App {
	a := &App{
		cfg:      cfg,
		surf:     surf,
		overlays: overlay.NewController(),
	}

	a.queue = dispatch.NewQueue(dispatch.WithPanicHandler(a.onPanic))
	a.sched = trigger.NewScheduler(a.queue)
	a.loop = dispatch.NewLoop(a.queue,
		dispatch.WithInterval(cfg.Drain.Interval()),
		dispatch.WithLineSink(a.onLine),
		dispatch.WithOnTick(a.onTick),
	)

	if provider != nil {
		a.svc = lang.NewService(provider, a, a.queue, a.sched,
			lang.WithTimeout(cfg.Lang.Timeout()),
			lang.WithCompletionDelay(cfg.Trigger.Completion()),
			lang.WithHoverDelay(cfg.Trigger.Hover()),
			lang.WithErrorHandler(func(op string, err error) {
				a.setStatus(fmt.Sprintf("%s failed: %v", op, err))
			}),
		)
	}

	for _, opt := range opts {
		opt(a)
	}

	a.publishSnapshot()
	return a
}

// Queue returns the dispatch queue. Producers push lines and actions here.
func (a *App) Queue() *dispatch.Queue {
	return a.queue
}

// Scheduler returns the shared trigger scheduler.
func (a *App) Scheduler() *trigger.Scheduler {
	return a.sched
}

// Run drives the drain loop until ctx is cancelled or Stop is called. It
// blocks and must run on the goroutine that owns the surface.
func (a *App) Run(ctx context.Context) error {
	return a.loop.Run(ctx)
}

// Stop halts the drain loop after a final drain.
func (a *App) Stop() {
	a.loop.Stop()
}

// OpenDocument loads lines under path and resets history.
func (a *App) OpenDocument(path string, lines []string) {
	a.surf.SetLines(lines)
	a.surf.SetCursor(0, 0)
	a.overlays.DismissAll()
	a.surf.ClearOverlay()
	a.undo = nil

	a.snapMu.Lock()
	a.snap = lang.Snapshot{Path: path, Version: a.snap.Version + 1}
	a.snapMu.Unlock()

	a.fireHook("open", map[string]string{"path": path})
	a.markDirty()
}

// Snapshot implements lang.DocumentState.
func (a *App) Snapshot() lang.Snapshot {
	a.snapMu.Lock()
	defer a.snapMu.Unlock()
	return a.snap
}

// publishSnapshot copies cursor position into the published snapshot.
// Call after every cursor or buffer mutation.
func (a *App) publishSnapshot() {
	a.snapMu.Lock()
	a.snap.Line = a.surf.CurrentLine()
	a.snap.Col = a.surf.CurrentColumn()
	a.snapMu.Unlock()
}

// bumpVersion records one buffer mutation.
func (a *App) bumpVersion() {
	a.snapMu.Lock()
	a.snap.Version++
	a.snapMu.Unlock()
}

// Apply executes one intent on the drain-loop goroutine.
func (a *App) Apply(intent Intent) {
	switch in := intent.(type) {
	case OpenOverlay:
		a.openOverlay(in)
	case CloseOverlay:
		a.closeOverlay(in.Kind)
	case ApplyEdits:
		a.applyEdits(in.Edits, in.Record)
	case NavigateTo:
		a.navigateTo(in)
	case ShowStatus:
		a.setStatus(in.Text)
	}
}

// openOverlay places and shows a pop-up for the items.
func (a *App) openOverlay(in OpenOverlay) {
	ov := overlay.New(in.Kind, in.Items, in.TriggerLine, in.TriggerCol)

	// Re-filter against text typed since the trigger.
	if in.Kind == overlay.KindCompletion {
		if prefix, ok := a.typedSince(in.TriggerLine, in.TriggerCol); ok {
			if !ov.Filter(prefix) {
				return
			}
		}
	}

	a.overlays.Open(ov)
	a.layoutOverlay(ov)
	a.fireHook("overlay_open", map[string]string{"kind": in.Kind.String()})
	a.markDirty()
}

// typedSince returns the text between the trigger column and the caret.
// Returns false if the caret left the trigger line or moved before it.
func (a *App) typedSince(line, col int) (string, bool) {
	if a.surf.CurrentLine() != line || a.surf.CurrentColumn() < col {
		return "", false
	}
	runes := []rune(a.surf.Lines()[line])
	end := a.surf.CurrentColumn()
	if col > len(runes) || end > len(runes) {
		return "", false
	}
	return string(runes[col:end]), true
}

// layoutOverlay solves placement and pushes the box to the surface.
func (a *App) layoutOverlay(ov *overlay.Overlay) {
	items := ov.Filtered()
	labels := make([]string, len(items))
	width := 0
	for i, it := range items {
		labels[i] = it.Label
		if it.Detail != "" {
			labels[i] += "  " + it.Detail
		}
		if n := len([]rune(labels[i])); n > width {
			width = n
		}
	}

	desired := portal.Size{Width: width + 2, Height: len(labels)}
	if desired.Width > a.cfg.Overlay.MaxWidth {
		desired.Width = a.cfg.Overlay.MaxWidth
	}
	if desired.Height > a.cfg.Overlay.MaxHeight {
		desired.Height = a.cfg.Overlay.MaxHeight
	}

	anchor := surface.Anchor(a.surf, ov.TriggerLine(), ov.TriggerCol())
	rect := portal.Place(anchor, desired, surface.Viewport(a.surf), false)
	ov.SetBounds(rect)

	// Window the list so the selection stays visible when the box is
	// shorter than the filtered set.
	first := 0
	sel := ov.Selection()
	if rect.Height > 0 && sel >= rect.Height {
		first = sel - rect.Height + 1
	}
	last := first + rect.Height
	if last > len(labels) {
		last = len(labels)
	}

	a.surf.SetOverlay(rect, labels[first:last], sel-first)
}

// closeOverlay force-dismisses one kind.
func (a *App) closeOverlay(kind overlay.Kind) {
	if a.overlays.Active(kind) == nil {
		return
	}
	a.overlays.Dismiss(kind)
	a.refreshOverlayBox()
	a.markDirty()
}

// refreshOverlayBox redraws whichever overlay remains, or clears the box.
func (a *App) refreshOverlayBox() {
	for _, kind := range []overlay.Kind{overlay.KindCompletion, overlay.KindLocations, overlay.KindTooltip} {
		if ov := a.overlays.Active(kind); ov != nil {
			a.layoutOverlay(ov)
			return
		}
	}
	a.surf.ClearOverlay()
}

// applyEdits mutates the buffer and records the inverse batch for undo.
func (a *App) applyEdits(edits []textedit.Edit, record bool) {
	if len(edits) == 0 {
		return
	}

	lines := a.surf.Lines()
	if record {
		a.undo = append(a.undo, textedit.Invert(lines, edits))
	}
	a.surf.SetLines(textedit.Apply(lines, edits))
	a.bumpVersion()
	a.publishSnapshot()
	a.fireHook("edits_applied", map[string]string{
		"count": fmt.Sprintf("%d", len(edits)),
	})
	a.markDirty()
}

// Undo reverts the most recent recorded edit batch.
func (a *App) Undo() {
	if len(a.undo) == 0 {
		a.setStatus("nothing to undo")
		return
	}
	batch := a.undo[len(a.undo)-1]
	a.undo = a.undo[:len(a.undo)-1]
	a.applyEdits(batch, false)
}

// navigateTo jumps the caret. Cross-file targets only report for now; the
// view holds one document.
func (a *App) navigateTo(in NavigateTo) {
	if in.Path != "" && in.Path != a.Snapshot().Path {
		a.setStatus(fmt.Sprintf("%s:%d:%d", in.Path, in.Line+1, in.Col+1))
		return
	}
	a.moveCursor(in.Line, in.Col)
}

// moveCursor repositions the caret and applies overlay dismissal rules.
func (a *App) moveCursor(line, col int) {
	a.surf.SetCursor(line, col)
	a.publishSnapshot()

	before := a.overlays.AnyOpen()
	a.overlays.CursorMoved(a.surf.CurrentLine(), a.surf.CurrentColumn())
	if before != a.overlays.AnyOpen() {
		a.refreshOverlayBox()
	}
	a.markDirty()
}

// setStatus updates the status line.
func (a *App) setStatus(text string) {
	a.surf.SetStatus(text)
	a.markDirty()
}

// showNotice shows a transient tooltip at the caret. Any caret movement
// dismisses it.
func (a *App) showNotice(text string) {
	a.Apply(OpenOverlay{
		Kind:        overlay.KindTooltip,
		Items:       []overlay.Item{{Label: text}},
		TriggerLine: a.surf.CurrentLine(),
		TriggerCol:  a.surf.CurrentColumn(),
	})
}

// noProvider reports whether language commands have no server to talk to,
// surfacing that on the status line. Only explicit commands call this;
// implicit typing triggers stay silent.
func (a *App) noProvider() bool {
	if a.svc != nil {
		return false
	}
	a.setStatus("no language server configured")
	return true
}

// startPrompt opens a status-line input. done runs on the drain goroutine
// with the committed text.
func (a *App) startPrompt(label string, done func(string)) {
	a.promptActive = true
	a.promptLabel = label
	a.promptText = nil
	a.promptDone = done
	a.setStatus(label)
}

// endPrompt clears prompt state and the status line.
func (a *App) endPrompt() {
	a.promptActive = false
	a.promptLabel = ""
	a.promptText = nil
	a.promptDone = nil
	a.setStatus("")
}

// onLine presents one drained producer line.
func (a *App) onLine(l dispatch.Line) {
	a.setStatus(fmt.Sprintf("[%s] %s", l.Source, l.Text))
}

// onTick flushes the surface once per drain when something changed.
func (a *App) onTick() {
	if !a.dirty {
		return
	}
	a.dirty = false
	a.surf.Invalidate()
}

// markDirty schedules a surface flush on the next tick.
func (a *App) markDirty() {
	a.dirty = true
}

// Redraw schedules a full surface flush. Called after terminal resizes.
func (a *App) Redraw() {
	a.markDirty()
}

// onPanic reports a recovered queue item panic without crashing the UI.
func (a *App) onPanic(_ dispatch.Item, recovered any, _ []byte) {
	a.setStatus(fmt.Sprintf("internal error: %v", recovered))
}

// fireHook forwards an event to the hook engine, if one is attached.
func (a *App) fireHook(event string, payload map[string]string) {
	if a.hooks == nil {
		return
	}
	a.hooks.Fire(event, payload)
}

// RunTask starts the named configured task.
func (a *App) RunTask(ctx context.Context, name string) error {
	if a.runner == nil {
		return fmt.Errorf("no task runner attached")
	}
	command, ok := a.cfg.Tasks[name]
	if !ok {
		return fmt.Errorf("task %q not configured", name)
	}

	_, err := a.runner.Start(ctx, name, command, func(res runner.Result) {
		if res.Ok() {
			a.setStatus(fmt.Sprintf("%s: ok (%s)", res.Name, res.Duration.Round(time.Millisecond)))
		} else {
			a.setStatus(fmt.Sprintf("%s: exit %d", res.Name, res.ExitCode))
		}
		a.fireHook("task_finished", map[string]string{
			"name": res.Name,
			"ok":   fmt.Sprintf("%t", res.Ok()),
		})
	})
	if err != nil {
		a.setStatus(fmt.Sprintf("%s: %v", name, err))
	}
	return err
}

// RefreshVCS updates the status line from git, if a repository is attached.
func (a *App) RefreshVCS() {
	if a.repo == nil {
		return
	}
	a.repo.Refresh(
		func(s vcs.Status) {
			a.setStatus(s.Summary())
			a.fireHook("vcs_status", map[string]string{"branch": s.Branch})
		},
		func(err error) {
			a.setStatus(fmt.Sprintf("git: %v", err))
		},
	)
}

// completionTriggers are the rune classes that start or narrow completion.
func completionTrigger(r rune) bool {
	return r == '.' || r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// wordStart returns the column where the identifier containing col begins.
func wordStart(line string, col int) int {
	runes := []rune(line)
	if col > len(runes) {
		col = len(runes)
	}
	start := col
	for start > 0 {
		r := runes[start-1]
		if r == '.' || !completionTrigger(r) {
			break
		}
		start--
	}
	return start
}
