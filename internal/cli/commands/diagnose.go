package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/gedline/pkg/config"
	"github.com/ccollicutt/gedline/pkg/detector"
	"github.com/ccollicutt/gedline/pkg/reader"
	"github.com/ccollicutt/gedline/pkg/session"
)

// Diagnostic statuses.
const (
	statusOK      = "ok"
	statusWarning = "warning"
	statusError   = "error"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <config-file>",
		Short: "Diagnose configuration and encoding problems",
		Long: `Diagnose common configuration and encoding problems.

This command checks:
- Config file syntax and structure
- Source file existence and accessibility
- Each file's detected encoding against the configured one
- That each file decodes completely
- Webhook configuration (and reachability with -v)

Example:
  gedline diagnose gedline.yaml
  gedline diagnose -v gedline.yaml  # verbose output`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(commandContext(cmd.Context()), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, configPath string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}
	defer func() {
		if printDiagnostics(w, results, opts) > 0 {
			ExitCode = 1
		}
	}()

	result := checkConfigExists(configPath)
	results = append(results, result)
	if result.Status == statusError {
		return nil
	}

	cfg, result := checkConfigParseable(ctx, configPath)
	results = append(results, result)
	if result.Status == statusError {
		return nil
	}

	sourceResults, files := checkSources(cfg)
	results = append(results, sourceResults...)

	results = append(results, checkEncodings(ctx, cfg, files)...)
	results = append(results, checkDecoding(ctx, cfg, files, opts)...)
	results = append(results, checkWebhooks(ctx, cfg, opts)...)

	return nil
}

func checkConfigExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Config File",
	}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		result.Status = statusError
		result.Message = fmt.Sprintf("Config file not found: %s", path)
		result.Suggests = []string{
			"Check the file path is correct",
			"Use 'gedline detect <gedcom-file> --write-config gedline.yaml' to generate a starter config",
		}
	case err != nil:
		result.Status = statusError
		result.Message = fmt.Sprintf("Cannot access config file: %v", err)
		result.Suggests = []string{"Check file permissions"}
	case info.IsDir():
		result.Status = statusError
		result.Message = "Path is a directory, not a file"
	case info.Size() == 0:
		result.Status = statusError
		result.Message = "Config file is empty"
		result.Suggests = []string{
			"Use 'gedline detect <gedcom-file> --write-config gedline.yaml' to generate a starter config",
		}
	default:
		result.Status = statusOK
		result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	}
	return result
}

func checkConfigParseable(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config Syntax",
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = statusError
		result.Message = fmt.Sprintf("Failed to parse config: %v", err)
		switch {
		case strings.Contains(err.Error(), "yaml"):
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		case strings.Contains(err.Error(), "encoding"):
			result.Suggests = []string{
				"Use auto, ascii, ansel, utf-8, utf-16le or utf-16be",
			}
		}
		return nil, result
	}

	encodingDesc := "auto"
	if enc := cfg.ResolvedEncoding(); enc.Valid() {
		encodingDesc = enc.String()
	}

	result.Status = statusOK
	result.Message = "Config file parsed successfully"
	result.Details = []string{
		fmt.Sprintf("Sources: %d", len(cfg.Sources)),
		fmt.Sprintf("Encoding: %s", encodingDesc),
	}
	return cfg, result
}

// checkSources reports on each source and returns the readable files.
func checkSources(cfg *config.Config) ([]DiagnosticResult, []string) {
	results := []DiagnosticResult{}
	var files []string

	for _, source := range cfg.Sources {
		result := DiagnosticResult{
			Check: fmt.Sprintf("Source: %s", source),
		}

		if strings.ContainsAny(source, "*?[") {
			matches, err := filepath.Glob(source)
			switch {
			case err != nil:
				result.Status = statusError
				result.Message = fmt.Sprintf("Invalid glob pattern: %v", err)
			case len(matches) == 0:
				result.Status = statusWarning
				result.Message = "Glob pattern matches no files"
				result.Suggests = []string{
					"Check if the GEDCOM files exist at this path",
					"Verify the glob pattern syntax",
				}
			default:
				result.Status = statusOK
				result.Message = fmt.Sprintf("Matches %d file(s)", len(matches))
				result.Details = append(result.Details, matches...)
				for _, m := range matches {
					if fileExists(m) {
						files = append(files, m)
					}
				}
			}
			results = append(results, result)
			continue
		}

		info, err := os.Stat(source)
		switch {
		case os.IsNotExist(err):
			result.Status = statusError
			result.Message = "File does not exist"
			result.Suggests = []string{"Check if the file path is correct"}
		case err != nil:
			result.Status = statusError
			result.Message = fmt.Sprintf("Cannot access file: %v", err)
			result.Suggests = []string{"Check file permissions"}
		case info.IsDir():
			result.Status = statusError
			result.Message = "Path is a directory, not a file"
			result.Suggests = []string{"Use a glob pattern such as /data/genealogy/*.ged"}
		case info.Size() == 0:
			result.Status = statusWarning
			result.Message = "File is empty (0 bytes)"
		default:
			result.Status = statusOK
			result.Message = fmt.Sprintf("File exists (%d bytes)", info.Size())
			files = append(files, source)
		}
		results = append(results, result)
	}

	if len(files) == 0 {
		results = append(results, DiagnosticResult{
			Check:    "Sources Summary",
			Status:   statusError,
			Message:  "No readable GEDCOM files found",
			Suggests: []string{"Ensure at least one source file exists and is readable"},
		})
	}

	return results, files
}

// checkEncodings compares each file's detected encoding with the
// configured one.
func checkEncodings(ctx context.Context, cfg *config.Config, files []string) []DiagnosticResult {
	results := []DiagnosticResult{}
	configured := cfg.ResolvedEncoding()
	d := detector.New(detector.WithSampleSize(cfg.SampleSize))

	for _, file := range files {
		result := DiagnosticResult{
			Check: fmt.Sprintf("Encoding: %s", filepath.Base(file)),
		}

		detected, err := d.DetectFromFile(ctx, file)
		if err != nil {
			result.Status = statusWarning
			result.Message = fmt.Sprintf("Cannot read file: %v", err)
			results = append(results, result)
			continue
		}

		result.Details = []string{fmt.Sprintf("Method: %s", detected.Method)}
		if detected.CharValue != "" {
			result.Details = append(result.Details, fmt.Sprintf("CHAR: %s", detected.CharValue))
		}

		switch {
		case configured.Valid() && detected.Method != detector.MethodDefault && configured != detected.Encoding:
			result.Status = statusWarning
			result.Message = fmt.Sprintf("Configured as %s but the file indicates %s", configured, detected.Encoding)
			result.Suggests = []string{"Set encoding: auto, or remove the encoding setting"}
		case detected.Method == detector.MethodDefault && !configured.Valid():
			result.Status = statusWarning
			result.Message = fmt.Sprintf("Detected %s by default", detected.Encoding)
			result.Details = append(result.Details, detected.Note)
			result.Suggests = []string{"Set encoding in the config if the file is not ANSEL"}
		default:
			result.Status = statusOK
			result.Message = fmt.Sprintf("Detected %s", detected.Encoding)
		}
		results = append(results, result)
	}

	return results
}

// checkDecoding reads every file to the end.
func checkDecoding(ctx context.Context, cfg *config.Config, files []string, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}
	s := newSession(cfg, nil)

	for _, file := range files {
		result := DiagnosticResult{
			Check: fmt.Sprintf("Decode: %s", filepath.Base(file)),
		}

		res, err := s.Load(ctx, file)
		switch {
		case err != nil:
			result.Status = statusError
			result.Message = err.Error()
			result.Suggests = decodeSuggestions(err)
		case res.Cancelled:
			result.Status = statusWarning
			result.Message = fmt.Sprintf("Stopped after %d lines", res.LinesRead)
		default:
			result.Status = statusOK
			result.Message = fmt.Sprintf("%d lines, %d records as %s", res.LinesRead, res.Records, res.Encoding)
			if opts.Verbose {
				result.Details = []string{fmt.Sprintf("Read in %s", res.Duration().Round(time.Millisecond))}
			}
		}
		results = append(results, result)
	}

	return results
}

func decodeSuggestions(err error) []string {
	switch {
	case errors.Is(err, reader.ErrLineTooLong):
		return []string{"Raise max_line_length in the config"}
	case session.IsDecodeError(err):
		return []string{
			"Run 'gedline detect <file>' to check the encoding",
			"Set encoding in the config if the header's CHAR line is wrong",
		}
	default:
		return nil
	}
}

func checkWebhooks(ctx context.Context, cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}
		result := DiagnosticResult{
			Check:   fmt.Sprintf("Webhook: %s", name),
			Status:  statusOK,
			Message: fmt.Sprintf("Trigger: %s", wh.Trigger),
		}

		if wh.Trigger == config.WebhookTriggerNever {
			result.Status = statusWarning
			result.Message = "Webhook is disabled (trigger: never)"
		}
		if opts.Verbose {
			result.Details = []string{
				fmt.Sprintf("URL: %s", wh.URL),
				fmt.Sprintf("Timeout: %s", wh.Timeout),
			}
			if wh.Token != "" {
				result.Details = append(result.Details, "Token: configured")
			}
		}
		results = append(results, result)

		if opts.Verbose {
			conn := checkWebhookConnectivity(ctx, wh)
			conn.Check = fmt.Sprintf("Webhook Connectivity: %s", name)
			results = append(results, conn)
		}
	}

	return results
}

func checkWebhookConnectivity(ctx context.Context, wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = statusWarning
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}
	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Status = statusWarning
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	// Any response means the server is reachable
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = statusOK
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = statusWarning
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may only accept POST, which is what reports use",
			"Check authentication if using a token",
		}
	}
	return result
}

// printDiagnostics writes the results and returns the number of errors.
func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) int {
	fmt.Fprintln(w, "=== gedline Diagnostics ===")
	fmt.Fprintln(w)

	okCount, warnCount, errCount := 0, 0, 0
	for _, r := range results {
		var icon string
		switch r.Status {
		case statusOK:
			icon = "OK"
			okCount++
		case statusWarning:
			icon = "WARN"
			warnCount++
		default:
			icon = "ERROR"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if len(r.Details) > 0 && (opts.Verbose || r.Status != statusOK) {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}
		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	switch {
	case errCount > 0:
		fmt.Fprintln(w, "\nFix the errors above before reading these files.")
	case warnCount > 0:
		fmt.Fprintln(w, "\nConfiguration is usable but has warnings.")
	default:
		fmt.Fprintln(w, "\nConfiguration looks good!")
	}
	return errCount
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
