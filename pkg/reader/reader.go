package reader

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/transform"

	"github.com/ccollicutt/gedline/pkg/encoding"
)

// Default scanner sizing.
const (
	DefaultBufferSize    = 64 * 1024
	DefaultMaxLineLength = 1024 * 1024
)

// ErrLineTooLong is wrapped in the ReadError returned for a line longer
// than the configured maximum.
var ErrLineTooLong = bufio.ErrTooLong

// Reader decodes a byte stream in a fixed encoding and returns one logical
// line per call to Next. Lines end at CR, LF or CRLF.
type Reader struct {
	src    io.Reader
	enc    encoding.Encoding
	signal *Signal

	input         *failureRecorder
	scanner       *bufio.Scanner
	maxLineLength int

	linesRead int
	complete  bool
}

// Option configures a Reader.
type Option func(*config)

type config struct {
	bufferSize    int
	maxLineLength int
}

// WithBufferSize sets the initial line buffer size (default 64 KiB).
func WithBufferSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.bufferSize = n
		}
	}
}

// WithMaxLineLength sets the longest decoded line accepted (default 1 MiB).
func WithMaxLineLength(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxLineLength = n
		}
	}
}

// New creates a Reader over src. The reader takes ownership of src and
// closes it in Close if it is an io.Closer. A nil signal gets a private one.
func New(src io.Reader, enc encoding.Encoding, signal *Signal, opts ...Option) (*Reader, error) {
	dec, err := encoding.NewDecoder(enc)
	if err != nil {
		return nil, err
	}

	cfg := config{
		bufferSize:    DefaultBufferSize,
		maxLineLength: DefaultMaxLineLength,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.bufferSize > cfg.maxLineLength {
		cfg.bufferSize = cfg.maxLineLength
	}

	if signal == nil {
		signal = &Signal{}
	}

	r := &Reader{
		src:    src,
		enc:    enc,
		signal: signal,
		input:  &failureRecorder{r: transform.NewReader(src, dec)},

		maxLineLength: cfg.maxLineLength,
	}
	r.scanner = bufio.NewScanner(r.input)
	// The scanner needs room for the terminator as well as the line.
	r.scanner.Buffer(make([]byte, 0, cfg.bufferSize), cfg.maxLineLength+2)
	r.scanner.Split(r.splitLines)
	return r, nil
}

// Next returns the next line. It returns io.EOF at end of stream, and also
// once cancellation has been observed; cancellation is never an error.
// Failures are returned as *ReadError, after which the reader is complete.
func (r *Reader) Next(ctx context.Context) (string, error) {
	if r.complete {
		return "", io.EOF
	}

	select {
	case <-ctx.Done():
		r.signal.Cancel()
	default:
	}
	if r.signal.Cancelled() {
		r.complete = true
		return "", io.EOF
	}

	if r.scanner.Scan() {
		r.linesRead++
		return Intern(r.scanner.Bytes()), nil
	}

	r.complete = true
	if err := r.scanner.Err(); err != nil {
		return "", r.failure(err)
	}
	return "", io.EOF
}

// Cancel marks the shared signal. The next call to Next returns io.EOF.
func (r *Reader) Cancel() {
	r.signal.Cancel()
}

// LinesRead returns the number of lines returned so far.
func (r *Reader) LinesRead() int {
	return r.linesRead
}

// Complete reports whether the reader has reached end of stream, observed
// cancellation, or failed.
func (r *Reader) Complete() bool {
	return r.complete
}

// Encoding returns the encoding the reader decodes.
func (r *Reader) Encoding() encoding.Encoding {
	return r.enc
}

// Close releases the byte source.
func (r *Reader) Close() error {
	r.complete = true
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (r *Reader) failure(err error) error {
	re := &ReadError{
		Kind:     KindIO,
		Encoding: r.enc,
		Line:     r.linesRead + 1,
		Offset:   -1,
		Err:      err,
	}
	var de *encoding.DecodeError
	if errors.As(err, &de) {
		re.Kind = KindDecode
		re.Offset = de.Offset
	} else if errors.Is(err, bufio.ErrTooLong) {
		re.Err = fmt.Errorf("line longer than %d bytes: %w", r.maxLineLength, err)
	}
	return re
}

// splitLines is a bufio.SplitFunc for CR, LF and CRLF terminated lines no
// longer than maxLineLength.
func (r *Reader) splitLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	advance, token, err = r.scanLine(data, atEOF)
	if err != nil {
		return 0, nil, err
	}
	if len(token) > r.maxLineLength {
		return 0, nil, bufio.ErrTooLong
	}
	// Room for a CR that may start a CRLF, but no more.
	if advance == 0 && len(data) > r.maxLineLength+1 {
		return 0, nil, bufio.ErrTooLong
	}
	return advance, token, nil
}

func (r *Reader) scanLine(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		// A CR at the end of the buffer may be the first half of a CRLF.
		if !atEOF {
			return 0, nil, nil
		}
		return i + 1, data[:i], nil
	}

	if !atEOF {
		return 0, nil, nil
	}
	// An unterminated fragment cut short by a failure is not a line.
	if r.input.err != nil {
		return 0, nil, r.input.err
	}
	return len(data), data, nil
}

// failureRecorder remembers the first non-EOF error from the decoded
// stream so the split function can tell a failure from end of input.
type failureRecorder struct {
	r   io.Reader
	err error
}

func (f *failureRecorder) Read(p []byte) (int, error) {
	n, err := f.r.Read(p)
	if err != nil && err != io.EOF && f.err == nil {
		f.err = err
	}
	return n, err
}
