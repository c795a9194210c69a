package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/gedline/pkg/config"
	"github.com/ccollicutt/gedline/pkg/detector"
	"github.com/ccollicutt/gedline/pkg/encoding"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <gedcom-file>",
		Short: "Detect the character encoding of a GEDCOM file",
		Long: `Inspect the start of a GEDCOM file and report its character encoding.

Rules, in order:
  - A byte-order mark selects UTF-8 or UTF-16 (little or big endian)
  - A leading "0" followed or preceded by a zero byte selects UTF-16
  - The value of the header's "1 CHAR" line
  - Otherwise ANSEL, the GEDCOM 5.5 default

Optionally writes a starter config file with --write-config.

Example:
  gedline detect family.ged
  gedline detect --sample 500 family.ged
  gedline detect --write-config gedline.yaml family.ged`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", detector.DefaultSampleSize, "Number of header lines searched for CHAR")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, path string, opts *DetectOptions) error {
	ctx := commandContext(cmd.Context())

	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
	if opts.SampleSize <= 0 {
		return fmt.Errorf("--sample must be positive, got %d", opts.SampleSize)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", path)
	}

	d := detector.New(detector.WithSampleSize(opts.SampleSize))
	result, err := d.DetectFromFile(ctx, path)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if opts.WriteConfig != "" {
		if err := writeStarterConfig(result, path, opts.WriteConfig); err != nil {
			return err
		}
		if opts.Output == "text" {
			fmt.Fprintf(out, "Wrote starter config to: %s\n\n", opts.WriteConfig)
		}
	}

	if opts.Output == "json" {
		return outputDetectJSON(out, result, path)
	}
	return outputDetectText(out, result, path)
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, path string) error {
	fmt.Fprintln(w, "=== Encoding Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File: %s\n", path)
	fmt.Fprintf(w, "Encoding: %s\n", result.Encoding)
	fmt.Fprintf(w, "Method: %s\n", result.Method)
	if result.CharValue != "" {
		fmt.Fprintf(w, "CHAR value: %s\n", result.CharValue)
	}
	if result.SampledLines > 0 {
		fmt.Fprintf(w, "Header lines sampled: %d\n", result.SampledLines)
	}
	if result.Note != "" {
		fmt.Fprintf(w, "Note: %s\n", result.Note)
	}
	fmt.Fprintln(w)

	snippet, err := encodingSnippet(result.Encoding)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "--- Configuration snippet (copy to your config file) ---")
	fmt.Fprintln(w)
	_, err = fmt.Fprint(w, snippet)
	return err
}

// DetectJSONOutput is the JSON form of a detection result.
type DetectJSONOutput struct {
	File         string `json:"file"`
	Encoding     string `json:"encoding"`
	Method       string `json:"method"`
	CharValue    string `json:"char_value,omitempty"`
	SampledLines int    `json:"sampled_lines"`
	Note         string `json:"note,omitempty"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, path string) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(DetectJSONOutput{
		File:         path,
		Encoding:     result.Encoding.String(),
		Method:       string(result.Method),
		CharValue:    result.CharValue,
		SampledLines: result.SampledLines,
		Note:         result.Note,
	})
}

// encodingSnippet renders the config line that selects enc.
func encodingSnippet(enc encoding.Encoding) (string, error) {
	data, err := yaml.Marshal(struct {
		Encoding encoding.Encoding `yaml:"encoding"`
	}{enc})
	if err != nil {
		return "", fmt.Errorf("rendering config snippet: %w", err)
	}
	return string(data), nil
}

// writeStarterConfig generates a starter config file for the detected encoding.
func writeStarterConfig(result *detector.DetectionResult, gedcomFile, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	content, err := generateStarterConfig(gedcomFile, result)
	if err != nil {
		return err
	}

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// generateStarterConfig creates a YAML config template.
func generateStarterConfig(gedcomFile string, result *detector.DetectionResult) (string, error) {
	absFile := gedcomFile
	if abs, err := filepath.Abs(gedcomFile); err == nil {
		absFile = abs
	}

	snippet, err := encodingSnippet(result.Encoding)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`# gedline configuration
# Generated by: gedline detect
# Detected encoding: %s (%s)

sources:
  - %s
  # Add more files or use globs:
  # - /data/genealogy/*.ged

# Use "auto" to detect the encoding of each file instead.
%s
# max_line_length: %d
# sample_size: %d

# webhooks:
#   - name: archive
#     url: https://example.com/gedline
#     trigger: on_failure
`, result.Encoding, result.Method, absFile, snippet, config.DefaultMaxLineLength, detector.DefaultSampleSize), nil
}
