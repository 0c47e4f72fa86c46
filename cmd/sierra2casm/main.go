package main

import (
	"os"

	"github.com/spf13/cobra"

	"sierra2casm/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "sierra2casm",
	Short:         "Sierra to CASM compiler",
	Long:          `sierra2casm lowers Sierra programs to CASM instructions and checks their gas usage`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// main registers subcommands and persistent flags and runs the root command.
// Any error exits with status 1.
func main() {
	rootCmd.Version = version.Current().Version

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(libfuncsCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("config", "", "path to "+configFileName+" (default: search upward from the working directory)")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-format", "", "trace format (auto|text|ndjson)")

	if err := rootCmd.Execute(); err != nil {
		if !isReported(err) {
			errorf(rootCmd.ErrOrStderr(), "%v\n", err)
		}
		os.Exit(1)
	}
}
