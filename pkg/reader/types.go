// Package reader turns a GEDCOM byte stream into logical text lines.
package reader

import (
	"fmt"
	"sync/atomic"

	"github.com/ccollicutt/gedline/pkg/encoding"
)

// Signal is a cancellation flag shared between a reader and whoever owns
// it. It may be set from any goroutine and is never cleared.
type Signal struct {
	cancelled atomic.Bool
}

// Cancel sets the flag. Calling it more than once has no further effect.
func (s *Signal) Cancel() {
	s.cancelled.Store(true)
}

// Cancelled reports whether Cancel has been called.
func (s *Signal) Cancelled() bool {
	return s.cancelled.Load()
}

// Kind classifies a read failure.
type Kind int

const (
	// KindIO means the byte source itself failed.
	KindIO Kind = iota + 1

	// KindDecode means the bytes are not legal in the configured encoding.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "I/O"
	case KindDecode:
		return "decoding"
	default:
		return "unknown"
	}
}

// ReadError is returned by Reader.Next when a line cannot be produced.
type ReadError struct {
	Kind     Kind
	Encoding encoding.Encoding

	// Line is the 1-based number of the line being read when the
	// failure occurred.
	Line int

	// Offset is the byte offset of the fault, or -1 if unknown.
	Offset int64

	Err error
}

func (e *ReadError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s failure reading %s at line %d (byte offset %d): %v",
			e.Kind, e.Encoding, e.Line, e.Offset, e.Err)
	}
	return fmt.Sprintf("%s failure reading %s at line %d: %v", e.Kind, e.Encoding, e.Line, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
