package lang

import "context"

// Provider is the asynchronous facade over a language-intelligence server.
//
// Implementations run requests on their own goroutines and may block; the
// Service never calls them from the drain-loop goroutine. A nil-and-nil
// return (or an empty slice) is a valid empty result, not an error.
// Requests are not hard-cancelled beyond context cancellation: late results
// are neutralized by the Correlator instead.
type Provider interface {
	// Completion returns candidates at the position.
	Completion(ctx context.Context, path string, pos Position) ([]CompletionItem, error)

	// Hover returns documentation for the symbol at the position.
	Hover(ctx context.Context, path string, pos Position) (*Hover, error)

	// Definition returns the definition sites of the symbol at the position.
	Definition(ctx context.Context, path string, pos Position) ([]Location, error)

	// References returns every reference to the symbol at the position.
	References(ctx context.Context, path string, pos Position) ([]Location, error)

	// Rename returns the edits, grouped by file, that rename the symbol.
	Rename(ctx context.Context, path string, pos Position, newName string) (WorkspaceEdit, error)

	// Formatting returns whole-document formatting edits.
	Formatting(ctx context.Context, path string) ([]TextEdit, error)
}
