package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sierra2casm/internal/config"
	"sierra2casm/internal/trace"
)

// setupTracing creates the tracer described by cfg and attaches it to the
// command context. The cleanup function flushes and closes it; on failure
// it first dumps an in-memory ring to stderr.
func setupTracing(cmd *cobra.Command, cfg config.Config) (func(failed bool), error) {
	tc, err := cfg.TraceOptions()
	if err != nil {
		return nil, fmt.Errorf("invalid trace settings: %w", err)
	}
	if tc.Level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func(bool) {}, nil
	}

	tracer, err := trace.New(tc)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	cleanup := func(failed bool) {
		if ring, ok := tracer.(*trace.RingTracer); ok && failed {
			format := tc.Format
			if format == trace.FormatAuto {
				format = trace.FormatText
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "trace (most recent events):")
			if err := ring.Dump(cmd.ErrOrStderr(), format); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
			}
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}
