package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/ccollicutt/gedline/pkg/config"
	"github.com/ccollicutt/gedline/pkg/output"
	"github.com/ccollicutt/gedline/pkg/webhook"
)

// StatOptions holds command-line options for the stat command.
type StatOptions struct {
	Output   string
	Encoding string
	Verbose  bool
	Quiet    bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewStatCommand creates the stat command.
func NewStatCommand() *cobra.Command {
	opts := &StatOptions{}

	cmd := &cobra.Command{
		Use:   "stat <config-file | gedcom-file...>",
		Short: "Read GEDCOM files and report how each one decoded",
		Long: `Read every file named by a configuration file, or the files given as
arguments, and report the encoding used, the lines and level 0 records read,
and any decoding or I/O failure with its line and byte offset.

A single argument ending in .yaml or .yml is read as a configuration file.

Exit codes:
  0 - Every file was read
  1 - At least one file failed
  2 - Configuration or usage error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStat(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVarP(&opts.Encoding, "encoding", "e", "", "Override the encoding (auto|ascii|ansel|utf-8|utf-16le|utf-16be)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detection details and timings")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")

	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", string(config.WebhookTriggerOnFailure), "When to fire webhook (on_failure|always|never)")

	return cmd
}

func isConfigPath(args []string) bool {
	if len(args) != 1 {
		return false
	}
	ext := strings.ToLower(filepath.Ext(args[0]))
	return ext == ".yaml" || ext == ".yml"
}

// loadStatConfig reads the config file named by args, or builds one that
// lists args as sources.
func loadStatConfig(ctx context.Context, args []string, opts *StatOptions) (*config.Config, string, error) {
	var cfg *config.Config
	var configPath string

	if isConfigPath(args) {
		configPath = args[0]
		loaded, err := config.Load(ctx, configPath)
		if err != nil {
			return nil, "", fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
		cfg.Sources = args
	}

	// Command-line flags override the config file
	if opts.Encoding != "" {
		cfg.Encoding = opts.Encoding
	}
	if opts.WebhookURL != "" {
		cfg.Webhooks = append(cfg.Webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: config.WebhookTrigger(opts.WebhookTrigger),
		})
	}
	if err := config.Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, configPath, nil
}

func runStat(cmd *cobra.Command, args []string, opts *StatOptions) error {
	ctx := commandContext(cmd.Context())
	start := time.Now()

	formatter, err := createFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	cfg, configPath, err := loadStatConfig(ctx, args, opts)
	if err != nil {
		return err
	}

	files, err := cfg.Files()
	if err != nil {
		return fmt.Errorf("expanding sources: %w", err)
	}

	s := newSession(cfg, nil)
	stop := cancelOnInterrupt(s)
	defer stop()

	// Read files one at a time; an interrupt stops before the next file
	report := output.NewReport(configPath)
	for _, file := range files {
		if s.Cancelled() {
			break
		}
		level.Debug(logger).Log("msg", "reading", "file", file)
		result, err := s.Load(ctx, file)
		fr := report.Add(file, result, err)
		level.Debug(logger).Log("msg", "read", "file", file, "status", fr.Status, "lines", fr.LinesRead)
	}
	report.Finish(start)

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	// Send webhooks if configured
	sendWebhooks(ctx, cmd, cfg, report)

	if report.HasFailures() {
		ExitCode = 1
	}
	return nil
}

// sendWebhooks delivers the report. Failures are reported on stderr but do
// not change the exit code.
func sendWebhooks(ctx context.Context, cmd *cobra.Command, cfg *config.Config, report *output.Report) {
	if len(cfg.Webhooks) == 0 {
		return
	}

	for _, resp := range webhook.NewClient().Deliver(ctx, report, cfg.Webhooks) {
		if resp.Success() {
			fmt.Fprintf(cmd.ErrOrStderr(), "Webhook %s: sent (%d, %s)\n", resp.Name, resp.StatusCode, resp.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "Webhook %s: failed (%v)\n", resp.Name, resp.Error)
		}
	}
}
