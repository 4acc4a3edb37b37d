package vcs

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// ChangeCode classifies one file's change.
type ChangeCode int

const (
	ChangeModified ChangeCode = iota
	ChangeAdded
	ChangeDeleted
	ChangeRenamed
	ChangeCopied
	ChangeUnknown
)

// String returns the change name.
func (c ChangeCode) String() string {
	switch c {
	case ChangeModified:
		return "modified"
	case ChangeAdded:
		return "added"
	case ChangeDeleted:
		return "deleted"
	case ChangeRenamed:
		return "renamed"
	case ChangeCopied:
		return "copied"
	default:
		return "unknown"
	}
}

// FileChange is one changed path in the working tree or index.
type FileChange struct {
	// Path is relative to the repository root.
	Path string

	// OldPath is set for renames and copies.
	OldPath string

	// Code classifies the change.
	Code ChangeCode

	// Staged is true for index changes.
	Staged bool
}

// Status is a parsed snapshot of the working tree.
type Status struct {
	// Branch is the current branch name, or "(detached)" with no branch.
	Branch string

	// Upstream is the tracking branch, if any.
	Upstream string

	// Ahead and Behind count commits relative to the upstream.
	Ahead  int
	Behind int

	// Staged and Unstaged hold changed files by location.
	Staged   []FileChange
	Unstaged []FileChange

	// Untracked holds paths git does not track.
	Untracked []string

	// Conflicts holds unmerged paths.
	Conflicts []string
}

// Dirty returns true if anything differs from HEAD.
func (s Status) Dirty() bool {
	return len(s.Staged) > 0 || len(s.Unstaged) > 0 ||
		len(s.Untracked) > 0 || len(s.Conflicts) > 0
}

// Summary renders a compact status-line form, e.g. "main ↑2 ↓1 +3 ~2 ?1".
func (s Status) Summary() string {
	var b strings.Builder
	b.WriteString(s.Branch)
	if s.Ahead > 0 {
		fmt.Fprintf(&b, " ↑%d", s.Ahead)
	}
	if s.Behind > 0 {
		fmt.Fprintf(&b, " ↓%d", s.Behind)
	}
	if n := len(s.Staged); n > 0 {
		fmt.Fprintf(&b, " +%d", n)
	}
	if n := len(s.Unstaged); n > 0 {
		fmt.Fprintf(&b, " ~%d", n)
	}
	if n := len(s.Untracked); n > 0 {
		fmt.Fprintf(&b, " ?%d", n)
	}
	if n := len(s.Conflicts); n > 0 {
		fmt.Fprintf(&b, " !%d", n)
	}
	return b.String()
}

// ParseStatus parses `git status --porcelain=v2 --branch` output.
func ParseStatus(output string) (Status, error) {
	var status Status

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		switch line[0] {
		case '#':
			parseHeader(line, &status)
		case '1':
			for _, fc := range parseOrdinary(line) {
				status.add(fc)
			}
		case '2':
			if fc, ok := parseRenamed(line); ok {
				status.add(fc)
			}
		case 'u':
			if path := parseUnmerged(line); path != "" {
				status.Conflicts = append(status.Conflicts, path)
			}
		case '?':
			if len(line) > 2 {
				status.Untracked = append(status.Untracked, line[2:])
			}
		}
	}
	return status, scanner.Err()
}

func (s *Status) add(fc FileChange) {
	if fc.Staged {
		s.Staged = append(s.Staged, fc)
	} else {
		s.Unstaged = append(s.Unstaged, fc)
	}
}

// parseHeader handles the "# branch.*" lines.
func parseHeader(line string, status *Status) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return
	}
	switch fields[1] {
	case "branch.head":
		status.Branch = fields[2]
	case "branch.upstream":
		status.Upstream = fields[2]
	case "branch.ab":
		if len(fields) >= 4 {
			status.Ahead, _ = strconv.Atoi(strings.TrimPrefix(fields[2], "+"))
			status.Behind, _ = strconv.Atoi(strings.TrimPrefix(fields[3], "-"))
		}
	}
}

// parseOrdinary handles an ordinary changed entry.
// Format: 1 <XY> <sub> <mH> <mI> <mW> <hH> <hI> <path>
func parseOrdinary(line string) []FileChange {
	fields := strings.Fields(line)
	if len(fields) < 9 {
		return nil
	}

	xy := fields[1]
	path := fields[8]
	// Paths with spaces run to end of line.
	if idx := strings.Index(line, fields[8]); idx > 0 {
		path = line[idx:]
	}

	var out []FileChange
	if xy[0] != '.' {
		out = append(out, FileChange{Path: path, Code: charToCode(xy[0]), Staged: true})
	}
	if xy[1] != '.' {
		out = append(out, FileChange{Path: path, Code: charToCode(xy[1])})
	}
	return out
}

// parseRenamed handles a renamed or copied entry.
// Format: 2 <XY> <sub> <mH> <mI> <mW> <hH> <hI> <X><score> <path><tab><origPath>
func parseRenamed(line string) (FileChange, bool) {
	tabIdx := strings.LastIndex(line, "\t")
	if tabIdx == -1 {
		return FileChange{}, false
	}

	fields := strings.Fields(line[:tabIdx])
	if len(fields) < 10 {
		return FileChange{}, false
	}

	xy := fields[1]
	newPath := fields[9]
	if idx := strings.Index(line[:tabIdx], fields[9]); idx > 0 {
		newPath = line[idx:tabIdx]
	}

	code := ChangeRenamed
	if fields[8][0] == 'C' {
		code = ChangeCopied
	}

	return FileChange{
		Path:    newPath,
		OldPath: line[tabIdx+1:],
		Code:    code,
		Staged:  xy[0] != '.',
	}, true
}

// parseUnmerged handles a conflict entry.
// Format: u <XY> <sub> <m1> <m2> <m3> <mW> <h1> <h2> <h3> <path>
func parseUnmerged(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 11 {
		return ""
	}
	path := fields[10]
	if idx := strings.Index(line, fields[10]); idx > 0 {
		path = line[idx:]
	}
	return path
}

// charToCode converts a porcelain status character.
func charToCode(c byte) ChangeCode {
	switch c {
	case 'M', 'T':
		return ChangeModified
	case 'A':
		return ChangeAdded
	case 'D':
		return ChangeDeleted
	case 'R':
		return ChangeRenamed
	case 'C':
		return ChangeCopied
	default:
		return ChangeUnknown
	}
}
