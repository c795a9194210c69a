// Package session loads a GEDCOM file: it owns the byte source, chooses the
// encoding, drives a line reader, and hands each line downstream.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ccollicutt/gedline/pkg/detector"
	"github.com/ccollicutt/gedline/pkg/encoding"
	"github.com/ccollicutt/gedline/pkg/reader"
)

// LineHandler receives decoded lines in file order. It stands in for the
// tree builder that interprets levels, tags and values.
type LineHandler interface {
	HandleLine(ctx context.Context, lineNum int, line string) error
}

// LineHandlerFunc adapts a function to LineHandler.
type LineHandlerFunc func(ctx context.Context, lineNum int, line string) error

// HandleLine calls f.
func (f LineHandlerFunc) HandleLine(ctx context.Context, lineNum int, line string) error {
	return f(ctx, lineNum, line)
}

// Session loads one or more files. Cancel may be called from any goroutine;
// once cancelled a session stays cancelled.
type Session struct {
	signal *reader.Signal

	// Options
	encoding   encoding.Encoding // zero means detect
	handler    LineHandler
	readerOpts []reader.Option
	detector   *detector.Detector
}

// Option configures session behavior.
type Option func(*Session)

// WithEncoding skips detection and reads every file as enc.
func WithEncoding(enc encoding.Encoding) Option {
	return func(s *Session) {
		s.encoding = enc
	}
}

// WithHandler sets the receiver of decoded lines.
func WithHandler(h LineHandler) Option {
	return func(s *Session) {
		s.handler = h
	}
}

// WithReaderOptions passes options through to every reader.
func WithReaderOptions(opts ...reader.Option) Option {
	return func(s *Session) {
		s.readerOpts = append(s.readerOpts, opts...)
	}
}

// WithDetector replaces the default encoding detector.
func WithDetector(d *detector.Detector) Option {
	return func(s *Session) {
		if d != nil {
			s.detector = d
		}
	}
}

// New creates a session.
func New(opts ...Option) *Session {
	s := &Session{
		signal:   &reader.Signal{},
		detector: detector.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cancel asks any load in progress to stop after its current line.
func (s *Session) Cancel() {
	s.signal.Cancel()
}

// Cancelled reports whether Cancel has been called.
func (s *Session) Cancelled() bool {
	return s.signal.Cancelled()
}

// Result describes one loaded file.
type Result struct {
	// Source is the file path, or a caller supplied name.
	Source string

	// Encoding is the encoding the file was read as.
	Encoding encoding.Encoding

	// Detection is how the encoding was chosen; nil when it was configured.
	Detection *detector.DetectionResult

	// LinesRead is the number of lines decoded.
	LinesRead int

	// Records counts level 0 lines.
	Records int

	// Cancelled is true when the load stopped because of Cancel.
	Cancelled bool

	StartTime time.Time
	EndTime   time.Time
}

// Duration returns how long the load took.
func (r *Result) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Load reads the file at path. The file is closed on every return path.
func (s *Session) Load(ctx context.Context, path string) (*Result, error) {
	var detection *detector.DetectionResult
	enc := s.encoding
	if !enc.Valid() {
		var err error
		detection, err = s.detector.DetectFromFile(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("detecting encoding of %s: %w", path, err)
		}
		enc = detection.Encoding
	}

	// #nosec G304 -- user-provided paths are expected
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	result, err := s.read(ctx, path, f, enc)
	if result != nil {
		result.Detection = detection
	}
	return result, err
}

// LoadReader reads src as enc, detecting the encoding from its head when
// enc is not valid. src is closed if it is an io.Closer.
func (s *Session) LoadReader(ctx context.Context, name string, src io.Reader, enc encoding.Encoding) (*Result, error) {
	if !enc.Valid() {
		enc = s.encoding
	}
	var detection *detector.DetectionResult
	if !enc.Valid() {
		var head bytes.Buffer
		var err error
		detection, err = s.detector.DetectFromReader(ctx, io.TeeReader(src, &head))
		if err != nil {
			closeSource(src)
			return nil, fmt.Errorf("detecting encoding of %s: %w", name, err)
		}
		enc = detection.Encoding
		src = &prefixedSource{Reader: io.MultiReader(&head, src), closer: src}
	}

	result, err := s.read(ctx, name, src, enc)
	if result != nil {
		result.Detection = detection
	}
	return result, err
}

func (s *Session) read(ctx context.Context, name string, src io.Reader, enc encoding.Encoding) (result *Result, err error) {
	r, err := reader.New(src, enc, s.signal, s.readerOpts...)
	if err != nil {
		closeSource(src)
		return nil, err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", name, cerr)
		}
	}()

	result = &Result{
		Source:    name,
		Encoding:  enc,
		StartTime: time.Now(),
	}

	for {
		line, err := r.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			result.LinesRead = r.LinesRead()
			result.EndTime = time.Now()
			return result, fmt.Errorf("reading %s as %s: %w", name, enc, err)
		}

		if len(line) > 1 && line[0] == '0' && line[1] == ' ' {
			result.Records++
		}

		if s.handler != nil {
			if err := s.handler.HandleLine(ctx, r.LinesRead(), line); err != nil {
				result.LinesRead = r.LinesRead()
				result.EndTime = time.Now()
				return result, fmt.Errorf("%s line %d: %w", name, r.LinesRead(), err)
			}
		}
	}

	result.LinesRead = r.LinesRead()
	result.Cancelled = s.signal.Cancelled()
	result.EndTime = time.Now()
	return result, nil
}

// IsDecodeError reports whether err came from bytes that were not legal in
// the encoding being read.
func IsDecodeError(err error) bool {
	var re *reader.ReadError
	return errors.As(err, &re) && re.Kind == reader.KindDecode
}

func closeSource(src io.Reader) {
	if c, ok := src.(io.Closer); ok {
		_ = c.Close()
	}
}

// prefixedSource replays the bytes consumed by detection before the rest
// of the stream, and still closes the original source.
type prefixedSource struct {
	io.Reader
	closer io.Reader
}

func (p *prefixedSource) Close() error {
	if c, ok := p.closer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
