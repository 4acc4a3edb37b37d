package lang

import "sync"

// Snapshot captures the document context that justified a request: which
// document, where the caret was, and the monotonically increasing version
// counter at issue time. Snapshots are immutable once created.
type Snapshot struct {
	Path    string
	Line    int
	Col     int
	Version int
}

// DocumentState supplies the live document context. Implemented by the
// editor surface owner; Snapshot may be called from any goroutine.
type DocumentState interface {
	Snapshot() Snapshot
}

// Policy decides how strictly an issued snapshot must match the live one
// for a response to still be honored.
type Policy uint8

const (
	// PolicyExact requires path, line, column, and version to all match.
	// Used for hover and signature help, where the result describes one
	// precise caret position.
	PolicyExact Policy = iota

	// PolicyLine allows the caret to have advanced rightward on the same
	// line, provided every intervening version bump is accounted for by
	// that column movement. The user narrowing a completion prefix keeps
	// the result useful; a paste, undo, or newline on the same line does
	// not.
	PolicyLine

	// PolicyDocument requires path and version to match but ignores the
	// caret. Used for whole-document operations such as formatting.
	PolicyDocument
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case PolicyExact:
		return "exact"
	case PolicyLine:
		return "line"
	case PolicyDocument:
		return "document"
	default:
		return "unknown"
	}
}

// Allows reports whether a result issued against issued may still be acted
// on given the current live snapshot.
func (p Policy) Allows(issued, current Snapshot) bool {
	if issued.Path != current.Path {
		return false
	}
	switch p {
	case PolicyExact:
		return issued.Line == current.Line &&
			issued.Col == current.Col &&
			issued.Version == current.Version
	case PolicyLine:
		if issued.Line != current.Line {
			return false
		}
		colDelta := current.Col - issued.Col
		versionDelta := current.Version - issued.Version
		return colDelta >= 0 && versionDelta >= 0 && versionDelta <= colDelta
	case PolicyDocument:
		return issued.Version == current.Version
	default:
		return false
	}
}

// Correlator tracks outstanding requests per category and decides, at
// response time, whether each result is still worth acting on.
//
// Two rules neutralize late results: a newer request in the same category
// supersedes older tickets outright, and the category's Policy compares the
// issued snapshot against the live one. Discards are silent — no error, no
// UI change.
//
// Thread-safety: all methods are safe for concurrent use.
type Correlator struct {
	doc DocumentState

	mu     sync.Mutex
	latest map[string]uint64
}

// NewCorrelator creates a correlator reading live context from doc.
func NewCorrelator(doc DocumentState) *Correlator {
	return &Correlator{
		doc:    doc,
		latest: make(map[string]uint64),
	}
}

// Ticket identifies one outstanding request and the context it was issued
// against. Discarded after its single Valid check on the response path.
type Ticket struct {
	c        *Correlator
	category string
	id       uint64
	issued   Snapshot
	policy   Policy
}

// Begin captures the live snapshot and registers a new outstanding request
// for the category, superseding any earlier ticket in the same category.
func (c *Correlator) Begin(category string, policy Policy) Ticket {
	snap := c.doc.Snapshot()

	c.mu.Lock()
	c.latest[category]++
	id := c.latest[category]
	c.mu.Unlock()

	return Ticket{
		c:        c,
		category: category,
		id:       id,
		issued:   snap,
		policy:   policy,
	}
}

// Issued returns the snapshot captured when the ticket was begun.
func (t Ticket) Issued() Snapshot {
	return t.issued
}

// Valid reports whether the ticket's result should still be acted on: it
// must be the newest request in its category and its policy must accept the
// live snapshot.
func (t Ticket) Valid() bool {
	if t.c == nil {
		return false
	}

	t.c.mu.Lock()
	superseded := t.c.latest[t.category] != t.id
	t.c.mu.Unlock()
	if superseded {
		return false
	}

	return t.policy.Allows(t.issued, t.c.doc.Snapshot())
}
