package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/gedline/pkg/config"
	"github.com/ccollicutt/gedline/pkg/session"
)

// LinesOptions holds command-line options for the lines command.
type LinesOptions struct {
	Encoding      string
	Number        bool
	Limit         int
	MaxLineLength int
}

// NewLinesCommand creates the lines command.
func NewLinesCommand() *cobra.Command {
	opts := &LinesOptions{}

	cmd := &cobra.Command{
		Use:   "lines <gedcom-file>",
		Short: "Print the decoded lines of a GEDCOM file",
		Long: `Decode a GEDCOM file and print its lines as UTF-8, one per output line.

Line terminators (CR, LF or CRLF) are normalised. Use "-" to read standard
input. Interrupting with Ctrl-C stops after the current line.

Exit codes:
  0 - File read completely (or stopped by --limit or an interrupt)
  1 - Decoding or I/O failure
  2 - Usage error

Example:
  gedline lines family.ged
  gedline lines --encoding ansel --number family.ged
  gedline lines --limit 20 - < family.ged`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLines(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Encoding, "encoding", "e", config.EncodingAuto, "Encoding (auto|ascii|ansel|utf-8|utf-16le|utf-16be)")
	cmd.Flags().BoolVarP(&opts.Number, "number", "n", false, "Prefix each line with its line number")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "l", 0, "Stop after this many lines (0 for no limit)")
	cmd.Flags().IntVar(&opts.MaxLineLength, "max-line-length", config.DefaultMaxLineLength, "Longest line accepted, in bytes")

	return cmd
}

func runLines(cmd *cobra.Command, path string, opts *LinesOptions) error {
	ctx := commandContext(cmd.Context())

	cfg := config.DefaultConfig()
	cfg.Sources = []string{path}
	cfg.Encoding = opts.Encoding
	cfg.MaxLineLength = opts.MaxLineLength
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if opts.Limit < 0 {
		return fmt.Errorf("--limit must not be negative, got %d", opts.Limit)
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()

	var s *session.Session
	handler := session.LineHandlerFunc(func(_ context.Context, lineNum int, line string) error {
		if opts.Number {
			out.WriteString(strconv.Itoa(lineNum))
			out.WriteByte('\t')
		}
		out.WriteString(line)
		if err := out.WriteByte('\n'); err != nil {
			return err
		}
		if opts.Limit > 0 && lineNum >= opts.Limit {
			s.Cancel()
		}
		return nil
	})
	s = newSession(cfg, handler)

	stop := cancelOnInterrupt(s)
	defer stop()

	var (
		result *session.Result
		err    error
	)
	if path == "-" {
		result, err = s.LoadReader(ctx, "stdin", os.Stdin, cfg.ResolvedEncoding())
	} else {
		result, err = s.Load(ctx, path)
	}
	if err != nil {
		// Lines read before the failure have been printed.
		if ferr := out.Flush(); ferr != nil {
			return ferr
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		ExitCode = 1
		return nil
	}

	level.Debug(logger).Log("msg", "read", "file", result.Source, "lines", result.LinesRead,
		"encoding", result.Encoding, "duration", result.Duration())
	return out.Flush()
}
