// Package detector provides automatic encoding detection for GEDCOM files.
package detector

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ccollicutt/gedline/pkg/encoding"
)

// Method records how an encoding was chosen.
type Method string

const (
	MethodByteOrderMark Method = "byte-order mark"
	MethodZeroBytes     Method = "zero-byte pattern"
	MethodCharTag       Method = "CHAR tag"
	MethodDefault       Method = "default"
)

// DefaultEncoding is used when a file gives no indication of its encoding.
// GEDCOM 5.5 makes ANSEL the default.
const DefaultEncoding = encoding.ANSEL

// DefaultSampleSize is the number of header lines searched for a CHAR line.
const DefaultSampleSize = 100

// DetectionResult holds the result of analyzing a GEDCOM file.
type DetectionResult struct {
	Encoding     encoding.Encoding
	Method       Method
	CharValue    string // Value of the header's CHAR line, if one was found
	SampledLines int    // Number of header lines examined
	Note         string // Explanation when the default was used
}

// Detector inspects the start of a file to choose its encoding.
type Detector struct {
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of header lines searched for a CHAR
// line.
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// New creates a new Detector.
func New(opts ...Option) *Detector {
	d := &Detector{
		sampleSize: DefaultSampleSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile opens path and detects its encoding.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	// #nosec G304 - path is provided by user via CLI
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return d.DetectFromReader(ctx, file)
}

// DetectFromReader reads the head of r and detects its encoding. Only the
// header is consumed; callers that need the whole stream should reopen or
// seek it.
func (d *Detector) DetectFromReader(_ context.Context, r io.Reader) (*DetectionResult, error) {
	// GEDCOM header lines are short, so a generous fixed budget per line
	// bounds how much is read.
	head := make([]byte, d.sampleSize*256)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	return d.DetectFromBytes(head[:n]), nil
}

// DetectFromBytes detects the encoding of a file that starts with head.
func (d *Detector) DetectFromBytes(head []byte) *DetectionResult {
	switch {
	case bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}):
		return &DetectionResult{Encoding: encoding.UTF8, Method: MethodByteOrderMark}
	case bytes.HasPrefix(head, []byte{0xFF, 0xFE}):
		return &DetectionResult{Encoding: encoding.UnicodeLittleEndian, Method: MethodByteOrderMark}
	case bytes.HasPrefix(head, []byte{0xFE, 0xFF}):
		return &DetectionResult{Encoding: encoding.UnicodeBigEndian, Method: MethodByteOrderMark}
	case bytes.HasPrefix(head, []byte{'0', 0x00}):
		return &DetectionResult{Encoding: encoding.UnicodeLittleEndian, Method: MethodZeroBytes}
	case bytes.HasPrefix(head, []byte{0x00, '0'}):
		return &DetectionResult{Encoding: encoding.UnicodeBigEndian, Method: MethodZeroBytes}
	}

	result := &DetectionResult{}
	value, sampled := d.findCharValue(head)
	result.SampledLines = sampled
	result.CharValue = value

	if value != "" {
		if enc, err := encoding.Parse(value); err == nil {
			result.Encoding = enc
			result.Method = MethodCharTag
			return result
		}
		result.Note = fmt.Sprintf("CHAR value %q is not supported; assuming %s", value, DefaultEncoding)
	} else {
		result.Note = fmt.Sprintf("no CHAR line in the header; assuming %s", DefaultEncoding)
	}
	result.Encoding = DefaultEncoding
	result.Method = MethodDefault
	return result
}

// findCharValue scans header lines for "1 CHAR <value>". The header is
// read as raw bytes, which works for every supported 8-bit encoding since
// the tag itself is ASCII.
func (d *Detector) findCharValue(head []byte) (string, int) {
	scanner := bufio.NewScanner(bytes.NewReader(head))
	scanner.Split(scanAnyLine)

	sampled := 0
	for sampled < d.sampleSize && scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		sampled++
		fields := bytes.Fields(line)
		if len(fields) >= 3 && string(fields[0]) == "1" && string(fields[1]) == "CHAR" {
			return string(bytes.Join(fields[2:], []byte(" "))), sampled
		}
		// The header ends at the first level 0 record after HEAD.
		if sampled > 1 && len(fields) > 0 && string(fields[0]) == "0" {
			break
		}
	}
	return "", sampled
}

// scanAnyLine splits on CR or LF.
func scanAnyLine(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
