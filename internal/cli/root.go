// Package cli provides the command-line interface for gedline.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/gedline/internal/cli/commands"
	"github.com/ccollicutt/gedline/internal/cli/plugins"
)

// Execute runs the root command with os.Args and returns the exit code.
func Execute() int {
	return run(os.Args[1:])
}

func run(args []string) int {
	commands.ExitCode = 0
	rootCmd := NewRootCommand()

	// An unknown first word may name a plugin.
	if len(args) > 0 && isCommandWord(args[0]) && !isBuiltinCommand(rootCmd, args[0]) {
		if pluginPath, err := plugins.FindPlugin(args[0]); err == nil {
			return plugins.Execute(pluginPath, args[1:])
		}
		_, _ = fmt.Fprintln(os.Stderr, plugins.FormatNotFoundError(args[0]))
		return 2
	}

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors stops cobra from printing this itself
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return commands.ExitCode
}

func isCommandWord(arg string) bool {
	return arg != "" && arg[0] != '-'
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "gedline",
		Short: "Read GEDCOM files as clean lines of text",
		Long: `gedline reads genealogical GEDCOM files stored as ASCII, ANSEL, UTF-8 or
UTF-16 ("UNICODE") and turns them into a clean sequence of lines.

The encoding of each file is detected from its byte-order mark, its zero-byte
pattern or the CHAR line of its header, or can be set explicitly.

PLUGINS:
  Unknown commands are looked up as standalone binaries named
  gedline-<command>, searched for in:
    1. The directory holding the gedline binary
    2. ~/.gedline/plugins/
    3. Anywhere in PATH`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commands.EnableDebugLog(debug, cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log progress to stderr")

	rootCmd.AddCommand(commands.NewLinesCommand())
	rootCmd.AddCommand(commands.NewStatCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
