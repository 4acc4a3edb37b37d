package textedit

import (
	"sort"
	"strings"
)

// Edit is a single range-addressed replacement. The range is half-open and
// must satisfy start <= end lexicographically; columns are 0-based rune
// offsets within a line, not byte offsets.
type Edit struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int

	// Text replaces the addressed range. It may contain newlines, which
	// expand into additional buffer lines.
	Text string
}

// IsMalformed returns true if the edit's end precedes its start. Malformed
// edits are skipped individually; they never abort a batch.
func (e Edit) IsMalformed() bool {
	if e.EndLine < e.StartLine {
		return true
	}
	return e.EndLine == e.StartLine && e.EndCol < e.StartCol
}

// Apply returns a new line array with all edits applied as if simultaneous.
//
// Edits are sorted descending by (start line, start col) and applied
// back-to-front, so replacements at higher document offsets cannot shift the
// coordinates of edits still to be processed. Line and column references
// beyond the buffer are clipped to the last valid position. A multi-line
// range collapses to the start line's prefix, the replacement text, and the
// end line's suffix, re-expanded on embedded newlines.
//
// The input slice is never mutated. An empty edit list returns a copy.
func Apply(lines []string, edits []Edit) []string {
	out := make([]string, len(lines))
	copy(out, lines)
	if len(edits) == 0 {
		return out
	}
	if len(out) == 0 {
		out = []string{""}
	}

	ordered := make([]Edit, len(edits))
	copy(ordered, edits)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].StartLine != ordered[j].StartLine {
			return ordered[i].StartLine > ordered[j].StartLine
		}
		return ordered[i].StartCol > ordered[j].StartCol
	})

	for _, e := range ordered {
		if e.IsMalformed() {
			continue
		}
		out = applyOne(out, e)
	}
	return out
}

// applyOne applies a single edit to lines, returning the new slice.
func applyOne(lines []string, e Edit) []string {
	startLine := clamp(e.StartLine, 0, len(lines)-1)
	endLine := clamp(e.EndLine, 0, len(lines)-1)
	if endLine < startLine {
		endLine = startLine
	}

	startRunes := []rune(lines[startLine])
	endRunes := []rune(lines[endLine])
	startCol := clamp(e.StartCol, 0, len(startRunes))
	endCol := clamp(e.EndCol, 0, len(endRunes))
	if startLine == endLine && endCol < startCol {
		endCol = startCol
	}

	prefix := string(startRunes[:startCol])
	suffix := string(endRunes[endCol:])
	replacement := strings.Split(prefix+e.Text+suffix, "\n")

	result := make([]string, 0, len(lines)-(endLine-startLine+1)+len(replacement))
	result = append(result, lines[:startLine]...)
	result = append(result, replacement...)
	result = append(result, lines[endLine+1:]...)
	return result
}

// SpanText returns the text currently occupying the edit's range, joined
// with newlines. References outside the buffer are clipped, mirroring Apply.
func SpanText(lines []string, e Edit) string {
	if len(lines) == 0 || e.IsMalformed() {
		return ""
	}

	startLine := clamp(e.StartLine, 0, len(lines)-1)
	endLine := clamp(e.EndLine, 0, len(lines)-1)
	if endLine < startLine {
		endLine = startLine
	}

	startRunes := []rune(lines[startLine])
	endRunes := []rune(lines[endLine])
	startCol := clamp(e.StartCol, 0, len(startRunes))
	endCol := clamp(e.EndCol, 0, len(endRunes))

	if startLine == endLine {
		if endCol < startCol {
			endCol = startCol
		}
		return string(startRunes[startCol:endCol])
	}

	var b strings.Builder
	b.WriteString(string(startRunes[startCol:]))
	b.WriteByte('\n')
	for line := startLine + 1; line < endLine; line++ {
		b.WriteString(lines[line])
		b.WriteByte('\n')
	}
	b.WriteString(string(endRunes[:endCol]))
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
