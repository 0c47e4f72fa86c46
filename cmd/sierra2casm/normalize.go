package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sierra2casm/internal/diag"
	"sierra2casm/internal/lowering"
	"sierra2casm/internal/observ"
	"sierra2casm/internal/program"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <flat-ir>",
	Short: "Replace gotos to the next block with fallthroughs",
	Args:  cobra.ExactArgs(1),
	RunE:  runNormalize,
}

func init() {
	normalizeCmd.Flags().StringP("output", "o", "", "write output to file instead of stdout")
	normalizeCmd.Flags().String("format", "text", "output format (text|toml|msgpack)")
}

func runNormalize(cmd *cobra.Command, args []string) (err error) {
	path := args[0]
	useColor, err := setupColor(cmd)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	var encoding program.Format
	if format != "text" {
		if encoding, err = program.ParseFormat(format); err != nil {
			return err
		}
	}

	timer := observ.NewTimer()
	defer printTimings(cmd, timer)

	var f *lowering.FlatLowered
	if err := timer.Track("decode", func() error {
		var loadErr error
		f, loadErr = program.LoadFlat(path)
		return loadErr
	}); err != nil {
		return report(cmd, path, diag.IOLoadFailed, err, useColor)
	}
	if err := lowering.Validate(f); err != nil {
		return report(cmd, path, diag.LowMalformedCFG, err, useColor)
	}
	if err := timer.Track("fallthroughs", func() error { return addFallthroughs(f) }); err != nil {
		return report(cmd, path, diag.LowMalformedCFG, err, useColor)
	}
	if err := lowering.Validate(f); err != nil {
		return report(cmd, path, diag.LowMalformedCFG, err, useColor)
	}

	out, closeOut, err := openOutput(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if format == "text" {
		return lowering.Dump(out, f)
	}
	return program.Encode(out, encoding, program.FromLowered(f))
}

// addFallthroughs turns the panic AddFallthroughs raises on a malformed CFG
// into an error.
func addFallthroughs(f *lowering.FlatLowered) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	lowering.AddFallthroughs(f)
	return nil
}
