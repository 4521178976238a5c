package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nucore/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "nucore",
	Short: "Structured values, types and plugin wire formats",
	Long: `nucore inspects, type-checks and converts structured documents
using the value model, type system and plugin wire protocol of the shell core`,
	SilenceUsage: true,
}

// main registers subcommands and persistent flags, then executes the root command.
// If command execution returns an error, the process exits with status code 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(typeCmd)

	registerGlobalFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerGlobalFlags adds the persistent flags every subcommand reads.
func registerGlobalFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.String("config", "", "path to nucore.toml (default: search upwards from the working directory)")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	pf.Bool("timings", false, "show timing information")
	pf.String("trace", "", "write trace events to file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|info|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "ring buffer size for ring trace mode")
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
