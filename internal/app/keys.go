package app

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/quill/internal/lang"
	"github.com/dshills/quill/internal/overlay"
	"github.com/dshills/quill/internal/textedit"
)

// HandleKey processes one key event on the drain-loop goroutine. The input
// goroutine enqueues a call to this per event.
func (a *App) HandleKey(ev *tcell.EventKey) {
	// An active prompt owns the keyboard until committed or cancelled.
	if a.promptActive {
		a.handlePromptKey(ev)
		return
	}

	// An open list overlay captures navigation and accept keys.
	if ov := a.listOverlay(); ov != nil {
		if a.handleOverlayKey(ov, ev) {
			return
		}
	}

	switch ev.Key() {
	case tcell.KeyRune:
		a.InsertRune(ev.Rune())
	case tcell.KeyEnter:
		a.InsertNewline()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.DeleteBack()
	case tcell.KeyLeft:
		a.moveCursor(a.surf.CurrentLine(), a.surf.CurrentColumn()-1)
	case tcell.KeyRight:
		a.moveCursor(a.surf.CurrentLine(), a.surf.CurrentColumn()+1)
	case tcell.KeyUp:
		a.moveCursor(a.surf.CurrentLine()-1, a.surf.CurrentColumn())
	case tcell.KeyDown:
		a.moveCursor(a.surf.CurrentLine()+1, a.surf.CurrentColumn())
	case tcell.KeyEscape:
		a.overlays.DismissAll()
		a.surf.ClearOverlay()
		a.markDirty()
	case tcell.KeyCtrlZ:
		a.Undo()
	case tcell.KeyCtrlSpace:
		if !a.noProvider() {
			a.requestCompletion()
		}
	case tcell.KeyF12:
		a.RequestDefinition()
	case tcell.KeyCtrlR:
		a.RequestReferences()
	case tcell.KeyCtrlK:
		a.RequestHover()
	case tcell.KeyF2:
		a.StartRename()
	case tcell.KeyCtrlF:
		a.FormatDocument()
	}
}

// listOverlay returns the open overlay that owns navigation keys, preferring
// completion over locations. Tooltips never capture input.
func (a *App) listOverlay() *overlay.Overlay {
	if ov := a.overlays.Active(overlay.KindCompletion); ov != nil {
		return ov
	}
	return a.overlays.Active(overlay.KindLocations)
}

// handleOverlayKey routes one key to the active list overlay. Returns false
// for keys the overlay does not consume.
func (a *App) handleOverlayKey(ov *overlay.Overlay, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyDown, tcell.KeyCtrlN:
		ov.SelectNext()
		a.layoutOverlay(ov)
		a.markDirty()
	case tcell.KeyUp, tcell.KeyCtrlP:
		ov.SelectPrev()
		a.layoutOverlay(ov)
		a.markDirty()
	case tcell.KeyEnter, tcell.KeyTab:
		if ov.Kind() == overlay.KindCompletion {
			a.AcceptCompletion()
		} else {
			a.AcceptLocation()
		}
	case tcell.KeyEscape:
		kind := ov.Kind()
		a.closeOverlay(kind)
		if kind == overlay.KindCompletion && a.svc != nil {
			a.svc.CancelPending()
		}
	default:
		return false
	}
	return true
}

// handlePromptKey edits the status-line prompt.
func (a *App) handlePromptKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyRune:
		a.promptText = append(a.promptText, ev.Rune())
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(a.promptText) > 0 {
			a.promptText = a.promptText[:len(a.promptText)-1]
		}
	case tcell.KeyEnter:
		done := a.promptDone
		text := string(a.promptText)
		a.endPrompt()
		if done != nil {
			done(text)
		}
		return
	case tcell.KeyEscape:
		a.endPrompt()
		return
	default:
		return
	}
	a.setStatus(a.promptLabel + string(a.promptText))
}

// RequestHover asks for documentation at the caret and shows it as a
// tooltip.
func (a *App) RequestHover() {
	if a.noProvider() {
		return
	}
	a.svc.TriggerHover(func(h *lang.Hover, snap lang.Snapshot) {
		if h == nil || h.Contents == "" {
			return
		}
		items := make([]overlay.Item, 0, 8)
		for _, line := range strings.Split(h.Contents, "\n") {
			items = append(items, overlay.Item{Label: line})
		}
		a.Apply(OpenOverlay{
			Kind:        overlay.KindTooltip,
			Items:       items,
			TriggerLine: snap.Line,
			TriggerCol:  snap.Col,
		})
	})
}

// InsertRune types one character at the caret.
func (a *App) InsertRune(r rune) {
	line, col := a.surf.CurrentLine(), a.surf.CurrentColumn()
	a.applyEdits([]textedit.Edit{{
		StartLine: line, StartCol: col,
		EndLine: line, EndCol: col,
		Text: string(r),
	}}, true)
	a.moveCursor(line, col+1)

	a.afterTyping(r)
}

// afterTyping refilters a live completion overlay or triggers a new
// request.
func (a *App) afterTyping(r rune) {
	if a.overlays.Active(overlay.KindCompletion) != nil {
		a.refilterCompletion()
		return
	}
	if completionTrigger(r) {
		a.requestCompletion()
	}
}

// refilterCompletion re-derives the overlay's filter from the text between
// the trigger column and the caret.
func (a *App) refilterCompletion() {
	ov := a.overlays.Active(overlay.KindCompletion)
	if ov == nil {
		return
	}
	prefix, ok := a.typedSince(ov.TriggerLine(), ov.TriggerCol())
	if !ok || !ov.Filter(prefix) {
		a.refreshOverlayBox()
		return
	}
	a.layoutOverlay(ov)
	a.markDirty()
}

// requestCompletion schedules a debounced completion request.
func (a *App) requestCompletion() {
	if a.svc == nil {
		return
	}
	a.svc.TriggerCompletion(a.deliverCompletion)
}

// deliverCompletion turns provider items into an overlay intent. Runs on
// the drain goroutine after the staleness check passed.
func (a *App) deliverCompletion(items []lang.CompletionItem, snap lang.Snapshot) {
	if len(items) == 0 {
		a.showNotice("no completions")
		return
	}

	line := snap.Line
	start := wordStart(lineAt(a.surf.Lines(), line), snap.Col)

	ovItems := make([]overlay.Item, len(items))
	for i, it := range items {
		ovItems[i] = overlay.Item{
			Label:      it.Label,
			Detail:     it.Detail,
			InsertText: it.InsertText,
			FilterText: it.FilterText,
		}
	}

	a.Apply(OpenOverlay{
		Kind:        overlay.KindCompletion,
		Items:       ovItems,
		TriggerLine: line,
		TriggerCol:  start,
	})
}

// AcceptCompletion commits the selected completion item: the text typed
// since the trigger is replaced by the item's insertion text in one edit.
func (a *App) AcceptCompletion() {
	ov := a.overlays.Active(overlay.KindCompletion)
	if ov == nil {
		return
	}
	item, ok := ov.Accept()
	if !ok {
		a.closeOverlay(overlay.KindCompletion)
		return
	}

	line := ov.TriggerLine()
	start := ov.TriggerCol()
	end := a.surf.CurrentColumn()
	insert := item.Insert()

	a.overlays.Dismiss(overlay.KindCompletion)
	a.refreshOverlayBox()

	a.applyEdits([]textedit.Edit{{
		StartLine: line, StartCol: start,
		EndLine: line, EndCol: end,
		Text: insert,
	}}, true)
	a.moveCursor(line, start+len([]rune(insert)))

	if a.svc != nil {
		a.svc.CancelPending()
	}
	a.fireHook("completion_accepted", map[string]string{"label": item.Label})
}

// AcceptLocation jumps to the selected entry of the locations overlay.
func (a *App) AcceptLocation() {
	ov := a.overlays.Active(overlay.KindLocations)
	if ov == nil {
		return
	}
	item, ok := ov.Accept()
	a.overlays.Dismiss(overlay.KindLocations)
	a.refreshOverlayBox()
	a.markDirty()
	if !ok {
		return
	}
	a.Apply(NavigateTo{Path: item.Path, Line: item.Line, Col: item.Col})
}

// InsertNewline splits the line at the caret.
func (a *App) InsertNewline() {
	line, col := a.surf.CurrentLine(), a.surf.CurrentColumn()
	a.applyEdits([]textedit.Edit{{
		StartLine: line, StartCol: col,
		EndLine: line, EndCol: col,
		Text: "\n",
	}}, true)
	a.moveCursor(line+1, 0)
}

// DeleteBack removes the character before the caret, joining lines at
// column zero.
func (a *App) DeleteBack() {
	line, col := a.surf.CurrentLine(), a.surf.CurrentColumn()
	switch {
	case col > 0:
		a.applyEdits([]textedit.Edit{{
			StartLine: line, StartCol: col - 1,
			EndLine: line, EndCol: col,
		}}, true)
		a.moveCursor(line, col-1)
		a.refilterCompletion()
	case line > 0:
		prevLen := len([]rune(lineAt(a.surf.Lines(), line-1)))
		a.applyEdits([]textedit.Edit{{
			StartLine: line - 1, StartCol: prevLen,
			EndLine: line, EndCol: 0,
		}}, true)
		a.moveCursor(line-1, prevLen)
	}
}

// RequestDefinition asks for definitions at the caret and shows them as a
// locations overlay, jumping directly when there is exactly one.
func (a *App) RequestDefinition() {
	if a.noProvider() {
		return
	}
	a.svc.RequestDefinition(func(locs []lang.Location) {
		a.deliverLocations(locs)
	})
}

// RequestReferences asks for references at the caret.
func (a *App) RequestReferences() {
	if a.noProvider() {
		return
	}
	a.svc.RequestReferences(func(locs []lang.Location) {
		a.deliverLocations(locs)
	})
}

// StartRename prompts for the new name, then issues the rename request.
func (a *App) StartRename() {
	if a.noProvider() {
		return
	}
	a.startPrompt("rename to: ", func(name string) {
		if name == "" {
			return
		}
		a.svc.RequestRename(name, a.deliverWorkspaceEdit)
	})
}

// deliverWorkspaceEdit applies the rename edits for the open document and
// reports what else the rename touched.
func (a *App) deliverWorkspaceEdit(we lang.WorkspaceEdit) {
	path := a.Snapshot().Path
	edits, ok := we[path]
	if ok && len(edits) > 0 {
		a.Apply(ApplyEdits{Edits: lang.BufferEdits(edits), Record: true})
	}

	others := len(we)
	if ok {
		others--
	}
	switch {
	case others > 0:
		a.setStatus(fmt.Sprintf("renamed; %d other file(s) not applied", others))
	case ok && len(edits) > 0:
		a.setStatus("renamed")
	default:
		a.setStatus("rename produced no edits")
	}
}

// FormatDocument requests whole-document formatting.
func (a *App) FormatDocument() {
	if a.noProvider() {
		return
	}
	a.svc.RequestFormatting(func(edits []textedit.Edit) {
		if len(edits) == 0 {
			a.setStatus("already formatted")
			return
		}
		a.Apply(ApplyEdits{Edits: edits, Record: true})
		a.setStatus("formatted")
	})
}

// deliverLocations presents navigation targets.
func (a *App) deliverLocations(locs []lang.Location) {
	switch len(locs) {
	case 0:
		a.showNotice("no results")
	case 1:
		a.Apply(NavigateTo{
			Path: locs[0].Path,
			Line: locs[0].Range.Start.Line,
			Col:  locs[0].Range.Start.Col,
		})
	default:
		items := make([]overlay.Item, len(locs))
		for i, loc := range locs {
			items[i] = overlay.Item{
				Label:   loc.Path,
				Detail:  loc.Snippet,
				Path:    loc.Path,
				Line:    loc.Range.Start.Line,
				Col:     loc.Range.Start.Col,
				Snippet: loc.Snippet,
			}
		}
		a.Apply(OpenOverlay{
			Kind:        overlay.KindLocations,
			Items:       items,
			TriggerLine: a.surf.CurrentLine(),
			TriggerCol:  a.surf.CurrentColumn(),
		})
	}
}

// lineAt returns lines[i], or empty when out of range.
func lineAt(lines []string, i int) string {
	if i < 0 || i >= len(lines) {
		return ""
	}
	return lines[i]
}
