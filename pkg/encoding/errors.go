package encoding

import "fmt"

// DecodeError reports bytes that are not legal in the configured encoding.
type DecodeError struct {
	// Encoding is the encoding the bytes were decoded as.
	Encoding Encoding

	// Offset is the absolute byte offset of the fault in the stream.
	Offset int64

	// Reason describes what was wrong with the bytes.
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid %s at byte offset %d: %s", e.Encoding, e.Offset, e.Reason)
}

func decodeError(enc Encoding, offset int64, format string, args ...interface{}) *DecodeError {
	return &DecodeError{
		Encoding: enc,
		Offset:   offset,
		Reason:   fmt.Sprintf(format, args...),
	}
}
