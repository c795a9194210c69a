package output

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "gedline: %d files read, %d failed, %d lines, %d records\n",
		report.Summary.FilesRead,
		report.Summary.FilesFailed,
		report.Summary.LinesRead,
		report.Summary.Records)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	fmt.Fprintln(w, "=== gedline Load Report ===")
	fmt.Fprintln(w)

	for _, file := range report.Files {
		f.formatFile(file, w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d files read, %d failed, %d lines, %d records\n",
		report.Summary.FilesRead,
		report.Summary.FilesFailed,
		report.Summary.LinesRead,
		report.Summary.Records)
	if report.Summary.Cancelled {
		fmt.Fprintln(w, "Interrupted before all input was read")
	}

	if f.opts.Verbose {
		if report.Metadata.ConfigFile != "" {
			fmt.Fprintf(w, "Config: %s\n", report.Metadata.ConfigFile)
		}
		_, err := fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(time.Millisecond))
		return err
	}

	return nil
}

func (f *TextFormatter) formatFile(file *FileReport, w io.Writer) {
	fmt.Fprintf(w, "[%s] %s\n", strings.ToUpper(file.Status), file.Source)

	if file.Encoding != "" {
		if file.DetectionMethod != "" {
			fmt.Fprintf(w, "  Encoding: %s (%s)\n", file.Encoding, file.DetectionMethod)
		} else {
			fmt.Fprintf(w, "  Encoding: %s (configured)\n", file.Encoding)
		}
	}
	fmt.Fprintf(w, "  Lines: %d, records: %d\n", file.LinesRead, file.Records)

	if file.Error != "" {
		fmt.Fprintf(w, "  Error: %s\n", file.Error)
	}

	if f.opts.Verbose {
		if file.CharValue != "" {
			fmt.Fprintf(w, "  CHAR: %s\n", file.CharValue)
		}
		if file.Note != "" {
			fmt.Fprintf(w, "  Note: %s\n", file.Note)
		}
		fmt.Fprintf(w, "  Duration: %s\n", file.Duration.Round(time.Microsecond))
	}

	fmt.Fprintln(w)
}
