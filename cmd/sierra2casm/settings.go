package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sierra2casm/internal/config"
)

const configFileName = config.FileName

// loadConfig reads --config, or the nearest sierra2casm.toml, or the defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		return config.Load(path)
	}
	cfg, _, err := config.Discover(".")
	return cfg, err
}

// overrideTrace applies the --trace* flags that were set on top of cfg.
func overrideTrace(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Root().PersistentFlags()
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{"trace", &cfg.Trace.Output},
		{"trace-level", &cfg.Trace.Level},
		{"trace-format", &cfg.Trace.Format},
	} {
		if !flags.Changed(f.name) {
			continue
		}
		v, err := flags.GetString(f.name)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", f.name, err)
		}
		*f.dst = v
	}
	// --trace alone means "trace the phases"
	if flags.Changed("trace") && !flags.Changed("trace-level") && cfg.Trace.Level == "off" {
		cfg.Trace.Level = "phase"
	}
	return cfg.Validate()
}
