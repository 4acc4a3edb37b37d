package lang

import "github.com/dshills/quill/internal/textedit"

// Position is a 0-based line/column buffer position. Columns count runes,
// not bytes.
type Position struct {
	Line int
	Col  int
}

// Before returns true if p precedes other lexicographically.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Col < other.Col
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position
	End   Position
}

// IsEmpty returns true if the range spans nothing.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// TextEdit is a range-addressed replacement returned by a server.
type TextEdit struct {
	Range   Range
	NewText string
}

// BufferEdit converts a server edit into the buffer applier's form.
func (e TextEdit) BufferEdit() textedit.Edit {
	return textedit.Edit{
		StartLine: e.Range.Start.Line,
		StartCol:  e.Range.Start.Col,
		EndLine:   e.Range.End.Line,
		EndCol:    e.Range.End.Col,
		Text:      e.NewText,
	}
}

// BufferEdits converts a batch of server edits.
func BufferEdits(edits []TextEdit) []textedit.Edit {
	out := make([]textedit.Edit, len(edits))
	for i, e := range edits {
		out[i] = e.BufferEdit()
	}
	return out
}

// WorkspaceEdit maps file paths to the edits a rename produced for them.
type WorkspaceEdit map[string][]TextEdit

// ItemKind categorizes a completion item.
type ItemKind int

const (
	ItemKindText ItemKind = iota
	ItemKindFunction
	ItemKindMethod
	ItemKindField
	ItemKindVariable
	ItemKindStruct
	ItemKindConstant
	ItemKindKeyword
	ItemKindModule
)

// String returns the kind name.
func (k ItemKind) String() string {
	switch k {
	case ItemKindText:
		return "text"
	case ItemKindFunction:
		return "function"
	case ItemKindMethod:
		return "method"
	case ItemKindField:
		return "field"
	case ItemKindVariable:
		return "variable"
	case ItemKindStruct:
		return "struct"
	case ItemKindConstant:
		return "constant"
	case ItemKindKeyword:
		return "keyword"
	case ItemKindModule:
		return "module"
	default:
		return "unknown"
	}
}

// CompletionItem is a single completion candidate.
type CompletionItem struct {
	// Label is the displayed text.
	Label string

	// Detail is optional secondary text such as a type signature.
	Detail string

	// InsertText is the canonical insertion text. Empty means Label.
	InsertText string

	// FilterText overrides Label when filtering. Empty means Label.
	FilterText string

	// Kind categorizes the candidate.
	Kind ItemKind
}

// Location is a navigable target in some file.
type Location struct {
	Path  string
	Range Range

	// Snippet is the target's context line, when the server supplies one.
	Snippet string
}

// Hover is documentation for the symbol under the caret.
type Hover struct {
	// Contents is plain-text documentation, possibly multi-line.
	Contents string

	// Range is the symbol span the hover describes, if reported.
	Range *Range
}
