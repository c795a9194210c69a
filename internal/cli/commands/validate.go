package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/gedline/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a gedline configuration file without reading any GEDCOM data.

Checks:
  - YAML syntax
  - Required fields
  - Encoding name
  - Buffer, line length and sample sizes
  - Webhook URLs and triggers
  - Source file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := commandContext(cmd.Context())
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	encodingDesc := "auto (detected per file)"
	if enc := cfg.ResolvedEncoding(); enc.Valid() {
		encodingDesc = enc.String()
	}

	fmt.Fprintf(out, "\nConfiguration valid!\n")
	fmt.Fprintf(out, "  Sources:         %d pattern(s)\n", len(cfg.Sources))
	fmt.Fprintf(out, "  Encoding:        %s\n", encodingDesc)
	fmt.Fprintf(out, "  Buffer size:     %d\n", cfg.BufferSize)
	fmt.Fprintf(out, "  Max line length: %d\n", cfg.MaxLineLength)
	fmt.Fprintf(out, "  Sample size:     %d\n", cfg.SampleSize)
	if len(cfg.Webhooks) > 0 {
		fmt.Fprintf(out, "  Webhooks:        %d\n", len(cfg.Webhooks))
	}

	// Missing files are warnings only
	files, err := cfg.Files()
	if err != nil {
		fmt.Fprintf(out, "\nWarning: %v\n", err)
		return nil
	}
	fmt.Fprintf(out, "\nFiles: %d\n", len(files))
	for _, f := range files {
		if !fileExists(f) {
			fmt.Fprintf(out, "  - %s (warning: not found)\n", f)
			continue
		}
		fmt.Fprintf(out, "  - %s\n", f)
	}

	return nil
}
