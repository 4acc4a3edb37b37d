package textedit

import (
	"sort"
	"strings"
)

// Invert derives the batch of edits that undoes applying edits to lines.
// The returned edits are addressed against the post-apply buffer; applying
// them to Apply(lines, edits) restores the original buffer.
//
// Inversion assumes the batch is non-overlapping, which holds for the edit
// sets produced by formatting and rename responses. Malformed edits are
// skipped, matching Apply.
func Invert(lines []string, edits []Edit) []Edit {
	if len(edits) == 0 {
		return nil
	}
	work := lines
	if len(work) == 0 {
		work = []string{""}
	}

	ordered := make([]Edit, 0, len(edits))
	for _, e := range edits {
		if !e.IsMalformed() {
			ordered = append(ordered, e)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].StartLine != ordered[j].StartLine {
			return ordered[i].StartLine < ordered[j].StartLine
		}
		return ordered[i].StartCol < ordered[j].StartCol
	})

	// Track how earlier (lower-offset) edits shift the coordinates of later
	// ones in the result document. lineShift accumulates net added lines;
	// colShift maps original columns on colShiftLine past the previous
	// edit's end onto result columns.
	lineShift := 0
	colShiftLine := -1
	colShift := 0

	inverse := make([]Edit, 0, len(ordered))
	for _, e := range ordered {
		startLine := clamp(e.StartLine, 0, len(work)-1)
		endLine := clamp(e.EndLine, 0, len(work)-1)
		if endLine < startLine {
			endLine = startLine
		}
		startCol := clamp(e.StartCol, 0, len([]rune(work[startLine])))
		endCol := clamp(e.EndCol, 0, len([]rune(work[endLine])))
		if startLine == endLine && endCol < startCol {
			endCol = startCol
		}

		origText := SpanText(work, Edit{
			StartLine: startLine, StartCol: startCol,
			EndLine: endLine, EndCol: endCol,
		})

		adjStartLine := startLine + lineShift
		adjStartCol := startCol
		if startLine == colShiftLine {
			adjStartCol += colShift
		}

		segs := strings.Split(e.Text, "\n")
		added := len(segs) - 1
		var newEndLine, newEndCol int
		if added == 0 {
			newEndLine = adjStartLine
			newEndCol = adjStartCol + len([]rune(e.Text))
		} else {
			newEndLine = adjStartLine + added
			newEndCol = len([]rune(segs[added]))
		}

		inverse = append(inverse, Edit{
			StartLine: adjStartLine,
			StartCol:  adjStartCol,
			EndLine:   newEndLine,
			EndCol:    newEndCol,
			Text:      origText,
		})

		lineShift += added - (endLine - startLine)
		colShiftLine = endLine
		colShift = newEndCol - endCol
	}

	return inverse
}
