package reader

import "context"

// LineSource provides an iterator over decoded GEDCOM lines.
// Implementations must be safe for sequential access (not concurrent).
type LineSource interface {
	// Next returns the next logical line without its terminator.
	// Returns io.EOF when no more lines are available or reading was
	// cancelled.
	Next(ctx context.Context) (string, error)

	// Close releases any resources held by the source.
	Close() error
}

var _ LineSource = (*Reader)(nil)
