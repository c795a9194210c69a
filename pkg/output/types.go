// Package output provides formatting and output generation for load reports.
package output

import (
	"errors"
	"time"

	"github.com/ccollicutt/gedline/pkg/reader"
	"github.com/ccollicutt/gedline/pkg/session"
)

// File status values.
const (
	StatusOK        = "ok"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Report is the complete output of a run over one or more files.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary

	// Files holds one entry per file, in load order.
	Files []*FileReport

	// Metadata provides context about the run.
	Metadata Metadata
}

// FileReport describes how one file was read.
type FileReport struct {
	Source string
	Status string

	// Encoding is empty when the file failed before its encoding was chosen.
	Encoding string

	// DetectionMethod is empty when the encoding was configured.
	DetectionMethod string
	CharValue       string
	Note            string

	LinesRead int
	Records   int

	// Error and ErrorKind are set for failed files. ErrorKind is "I/O",
	// "decoding" or empty for other failures.
	Error     string
	ErrorKind string

	Duration time.Duration
}

// Summary provides aggregate statistics.
type Summary struct {
	FilesRead   int
	FilesFailed int
	LinesRead   int
	Records     int
	Cancelled   bool
}

// Metadata provides context about the run.
type Metadata struct {
	// ConfigFile is the path to the configuration file used, if any.
	ConfigFile string

	// Sources lists the files that were loaded.
	Sources []string

	// GeneratedAt is when the report was finished.
	GeneratedAt time.Time

	// Duration is how long the run took.
	Duration time.Duration
}

// NewReport creates an empty report.
func NewReport(configFile string) *Report {
	return &Report{
		Files:    []*FileReport{},
		Metadata: Metadata{ConfigFile: configFile, Sources: []string{}},
	}
}

// Add records the outcome of loading source. result may be nil when the
// load failed before reading began.
func (r *Report) Add(source string, result *session.Result, err error) *FileReport {
	fr := &FileReport{Source: source, Status: StatusOK}

	if result != nil {
		fr.Encoding = result.Encoding.String()
		fr.LinesRead = result.LinesRead
		fr.Records = result.Records
		fr.Duration = result.Duration()
		if result.Detection != nil {
			fr.DetectionMethod = string(result.Detection.Method)
			fr.CharValue = result.Detection.CharValue
			fr.Note = result.Detection.Note
		}
		if result.Cancelled {
			fr.Status = StatusCancelled
			r.Summary.Cancelled = true
		}
	}

	if err != nil {
		fr.Status = StatusFailed
		fr.Error = err.Error()
		var re *reader.ReadError
		if errors.As(err, &re) {
			fr.ErrorKind = re.Kind.String()
		}
		r.Summary.FilesFailed++
	}

	r.Summary.FilesRead++
	r.Summary.LinesRead += fr.LinesRead
	r.Summary.Records += fr.Records
	r.Files = append(r.Files, fr)
	r.Metadata.Sources = append(r.Metadata.Sources, source)
	return fr
}

// Finish stamps the report with the run's duration.
func (r *Report) Finish(start time.Time) {
	r.Metadata.GeneratedAt = time.Now()
	r.Metadata.Duration = r.Metadata.GeneratedAt.Sub(start)
}

// HasFailures returns true if any file failed to load.
func (r *Report) HasFailures() bool {
	return r.Summary.FilesFailed > 0
}
