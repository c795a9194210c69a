// Package plugins runs external gedline-<command> binaries for commands
// gedline does not provide itself, the way git and kubectl do.
package plugins

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Prefix is prepended to a command name to form the plugin binary name.
const Prefix = "gedline-"

// ErrPluginNotFound is returned when no plugin binary can be located.
var ErrPluginNotFound = errors.New("plugin not found")

// Finder locates plugin binaries. Dirs are searched in order before PATH.
type Finder struct {
	Dirs []string

	// SkipPath disables the PATH lookup.
	SkipPath bool
}

// DefaultDirs returns the directory holding the gedline binary and
// ~/.gedline/plugins, when they can be determined.
func DefaultDirs() []string {
	var dirs []string
	if execPath, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(execPath))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(homeDir, ".gedline", "plugins"))
	}
	return dirs
}

// FindPlugin searches the default locations for gedline-<command>.
func FindPlugin(command string) (string, error) {
	return (&Finder{Dirs: DefaultDirs()}).Find(command)
}

// Find returns the full path of the plugin binary for command.
func (f *Finder) Find(command string) (string, error) {
	// A command naming a path would escape the search directories
	if command == "" || strings.ContainsAny(command, `/\`) {
		return "", ErrPluginNotFound
	}
	name := Prefix + command

	// 1. Check the configured directories in order
	for _, dir := range f.Dirs {
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	// 2. Check PATH
	if !f.SkipPath {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}

	return "", ErrPluginNotFound
}

// Execute runs a plugin with the given arguments, connected to the
// current stdin, stdout and stderr, and returns its exit code.
func Execute(pluginPath string, args []string) int {
	cmd := exec.Command(pluginPath, args...) // #nosec G204 -- plugin path comes from a fixed search
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		// Extract exit code from error if available
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		// The plugin never ran, so report it as a usage error
		fmt.Fprintf(os.Stderr, "Error executing plugin: %v\n", err)
		return 2
	}
	return 0
}

// FormatNotFoundError explains where a plugin for command would be found.
func FormatNotFoundError(command string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "unknown command %q for \"gedline\"\n", command)
	// Show installation locations
	sb.WriteString("\nIf this is a plugin, install the binary as one of:\n")
	fmt.Fprintf(&sb, "  - %s%s in the same directory as gedline\n", Prefix, command)
	fmt.Fprintf(&sb, "  - ~/.gedline/plugins/%s%s\n", Prefix, command)
	fmt.Fprintf(&sb, "  - %s%s anywhere in your PATH\n", Prefix, command)
	sb.WriteString("\nRun 'gedline --help' for usage.")

	return sb.String()
}

// isExecutable checks if a regular file exists with an execute bit set.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	// Check if any execute bit is set
	return info.Mode().IsRegular() && info.Mode()&0111 != 0
}
