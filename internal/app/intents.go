package app

import (
	"github.com/dshills/quill/internal/overlay"
	"github.com/dshills/quill/internal/textedit"
)

// Intent is a UI mutation requested by background work. Intents are
// produced anywhere but applied only on the drain-loop goroutine, which
// keeps presentation state single-writer.
type Intent interface {
	isIntent()
}

// OpenOverlay requests a pop-up showing items anchored at the trigger
// position.
type OpenOverlay struct {
	Kind        overlay.Kind
	Items       []overlay.Item
	TriggerLine int
	TriggerCol  int
}

// CloseOverlay requests dismissal of the overlay of the given kind.
type CloseOverlay struct {
	Kind overlay.Kind
}

// ApplyEdits requests a batch of buffer edits.
type ApplyEdits struct {
	Edits []textedit.Edit

	// Record is false for edits that must not enter the undo history,
	// such as undo itself.
	Record bool
}

// NavigateTo requests a caret jump.
type NavigateTo struct {
	Path string
	Line int
	Col  int
}

// ShowStatus requests a status line update.
type ShowStatus struct {
	Text string
}

func (OpenOverlay) isIntent()  {}
func (CloseOverlay) isIntent() {}
func (ApplyEdits) isIntent()   {}
func (NavigateTo) isIntent()   {}
func (ShowStatus) isIntent()   {}
