package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// setupColor applies --color to fatih/color's global switch and reports
// whether colored output is on.
func setupColor(cmd *cobra.Command) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	var on bool
	switch strings.ToLower(mode) {
	case "on", "always":
		on = true
	case "off", "never":
		on = false
	case "auto", "":
		on = isTerminal(os.Stderr)
	default:
		return false, fmt.Errorf("invalid color mode %q (expected auto|on|off)", mode)
	}
	color.NoColor = !on
	return on, nil
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func errorf(w io.Writer, format string, args ...any) {
	prefix := color.New(color.FgRed, color.Bold).Sprint("error:")
	fmt.Fprintf(w, "%s "+format, append([]any{prefix}, args...)...)
}

// reportedError marks a failure whose diagnostics were already printed.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func isReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}
