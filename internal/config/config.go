// Package config loads sierra2casm.toml, the per-project defaults for the
// command line.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"sierra2casm/internal/trace"
)

// FileName is looked up from the working directory towards the root.
const FileName = "sierra2casm.toml"

type Config struct {
	Compiler CompilerConfig `toml:"compiler"`
	Trace    TraceConfig    `toml:"trace"`
}

// CompilerConfig mirrors compiler.Options. Jobs 0 means GOMAXPROCS and
// MaxGas 0 means unlimited.
type CompilerConfig struct {
	Jobs     int   `toml:"jobs"`
	CheckGas bool  `toml:"check_gas"`
	MaxGas   int64 `toml:"max_gas"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
	Format string `toml:"format"`
}

// Default is the configuration used when no file is found.
func Default() Config {
	return Config{
		Compiler: CompilerConfig{CheckGas: true},
		Trace:    TraceConfig{Level: "off", Output: "-", Format: "text"},
	}
}

// Find returns the nearest sierra2casm.toml at or above startDir.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads path over Default. Keys missing from the file keep their
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover finds and loads the nearest file, or returns Default with an
// empty path when there is none.
func Discover(startDir string) (Config, string, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return Config{}, path, err
	}
	return cfg, path, nil
}

// Validate checks ranges and trace settings.
func (c Config) Validate() error {
	var errs []error
	if c.Compiler.Jobs < 0 {
		errs = append(errs, fmt.Errorf("[compiler].jobs must be >= 0, got %d", c.Compiler.Jobs))
	}
	if c.Compiler.MaxGas < 0 {
		errs = append(errs, fmt.Errorf("[compiler].max_gas must be >= 0, got %d", c.Compiler.MaxGas))
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		errs = append(errs, fmt.Errorf("[trace].level: %w", err))
	}
	if _, err := trace.ParseFormat(c.Trace.Format); err != nil {
		errs = append(errs, fmt.Errorf("[trace].format: %w", err))
	}
	return errors.Join(errs...)
}

// TraceOptions converts the [trace] section for trace.New.
func (c Config) TraceOptions() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, err
	}
	format, err := trace.ParseFormat(c.Trace.Format)
	if err != nil {
		return trace.Config{}, err
	}
	return trace.Config{
		Level:      level,
		Mode:       trace.ModeStream,
		Format:     format,
		OutputPath: c.Trace.Output,
	}, nil
}
