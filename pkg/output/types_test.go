package output

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ccollicutt/gedline/pkg/detector"
	"github.com/ccollicutt/gedline/pkg/encoding"
	"github.com/ccollicutt/gedline/pkg/reader"
	"github.com/ccollicutt/gedline/pkg/session"
)

// createTestReport builds a report with one clean file, one decode failure
// and one file that could not be opened.
func createTestReport() *Report {
	start := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	report := NewReport("gedline.yaml")

	report.Add("family.ged", &session.Result{
		Source:   "family.ged",
		Encoding: encoding.ANSEL,
		Detection: &detector.DetectionResult{
			Encoding:  encoding.ANSEL,
			Method:    detector.MethodCharTag,
			CharValue: "ANSEL",
		},
		LinesRead: 120,
		Records:   14,
		StartTime: start,
		EndTime:   start.Add(3 * time.Millisecond),
	}, nil)

	decodeErr := &reader.ReadError{
		Kind:     reader.KindDecode,
		Encoding: encoding.UTF8,
		Line:     3,
		Offset:   24,
		Err:      errors.New("truncated sequence"),
	}
	report.Add("broken.ged", &session.Result{
		Source:    "broken.ged",
		Encoding:  encoding.UTF8,
		LinesRead: 2,
		Records:   1,
		StartTime: start,
		EndTime:   start,
	}, fmt.Errorf("reading broken.ged as UTF-8: %w", decodeErr))

	report.Add("missing.ged", nil, errors.New("opening missing.ged: no such file or directory"))
	return report
}

func TestReport_Add(t *testing.T) {
	report := createTestReport()

	if report.Summary.FilesRead != 3 {
		t.Errorf("FilesRead = %d, want 3", report.Summary.FilesRead)
	}
	if report.Summary.FilesFailed != 2 {
		t.Errorf("FilesFailed = %d, want 2", report.Summary.FilesFailed)
	}
	if report.Summary.LinesRead != 122 {
		t.Errorf("LinesRead = %d, want 122", report.Summary.LinesRead)
	}
	if report.Summary.Records != 15 {
		t.Errorf("Records = %d, want 15", report.Summary.Records)
	}
	if !report.HasFailures() {
		t.Error("HasFailures() = false")
	}
	if len(report.Metadata.Sources) != 3 {
		t.Errorf("Sources = %v", report.Metadata.Sources)
	}

	ok := report.Files[0]
	if ok.Status != StatusOK || ok.Encoding != "ANSEL" || ok.DetectionMethod != string(detector.MethodCharTag) {
		t.Errorf("file 0 = %+v", ok)
	}
	if ok.Duration != 3*time.Millisecond {
		t.Errorf("Duration = %v, want 3ms", ok.Duration)
	}

	failed := report.Files[1]
	if failed.Status != StatusFailed || failed.ErrorKind != "decoding" {
		t.Errorf("file 1 = %+v", failed)
	}

	missing := report.Files[2]
	if missing.Status != StatusFailed || missing.Encoding != "" || missing.ErrorKind != "" {
		t.Errorf("file 2 = %+v", missing)
	}
}

func TestReport_Add_Cancelled(t *testing.T) {
	report := NewReport("")
	fr := report.Add("family.ged", &session.Result{Encoding: encoding.UTF8, LinesRead: 5, Cancelled: true}, nil)

	if fr.Status != StatusCancelled {
		t.Errorf("Status = %q, want %q", fr.Status, StatusCancelled)
	}
	if !report.Summary.Cancelled {
		t.Error("Summary.Cancelled = false")
	}
	if report.HasFailures() {
		t.Error("cancellation counted as a failure")
	}
}

func TestReport_Finish(t *testing.T) {
	report := NewReport("")
	start := time.Now().Add(-time.Second)
	report.Finish(start)

	if report.Metadata.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not set")
	}
	if report.Metadata.Duration < time.Second {
		t.Errorf("Duration = %v, want at least 1s", report.Metadata.Duration)
	}
}

func TestNewFormatter(t *testing.T) {
	for _, name := range []string{"text", "json"} {
		f, ok := NewFormatter(name, FormatOptions{})
		if !ok || f.Name() != name {
			t.Errorf("NewFormatter(%q) = %v, %v", name, f, ok)
		}
	}
	if _, ok := NewFormatter("xml", FormatOptions{}); ok {
		t.Error("NewFormatter(xml) should fail")
	}
}
