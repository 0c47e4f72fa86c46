package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Tracer receives events. Implementations must be safe for concurrent use:
// functions are compiled in parallel and all of them emit.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// StorageMode selects where events go.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // written as they happen
	ModeRing                          // kept in memory
)

func (m StorageMode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	default:
		return "unknown"
	}
}

func ParseMode(s string) (StorageMode, error) {
	switch strings.ToLower(s) {
	case "stream":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	default:
		return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring)", s)
	}
}

// Config describes a tracer for New.
type Config struct {
	Level      Level
	Mode       StorageMode // 0 picks stream when an output is set; LevelError forces the ring
	Format     Format      // FormatAuto picks NDJSON for .ndjson and .jsonl paths
	Output     io.Writer   // takes precedence over OutputPath
	OutputPath string      // "-" or "" is stderr
	RingSize   int
}

func (c Config) mode() StorageMode {
	switch {
	case c.Level == LevelError:
		return ModeRing
	case c.Mode != 0:
		return c.Mode
	case c.Output == nil && c.OutputPath == "":
		return ModeRing
	default:
		return ModeStream
	}
}

func (c Config) format() Format {
	if c.Format != FormatAuto {
		return c.Format
	}
	switch filepath.Ext(c.OutputPath) {
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	default:
		return FormatText
	}
}

// New builds the tracer cfg describes. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	switch mode := cfg.mode(); mode {
	case ModeRing:
		return NewRingTracer(cfg.RingSize, cfg.Level), nil
	case ModeStream:
		w, err := cfg.open()
		if err != nil {
			return nil, err
		}
		return NewStreamTracer(w, cfg.Level, cfg.format()), nil
	default:
		return nil, fmt.Errorf("unknown storage mode: %v", mode)
	}
}

func (c Config) open() (io.Writer, error) {
	if c.Output != nil {
		return c.Output, nil
	}
	if c.OutputPath == "" || c.OutputPath == "-" {
		return stderr{os.Stderr}, nil
	}
	f, err := os.Create(c.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

// stderr hides os.Stderr's Close from StreamTracer.Close.
type stderr struct{ io.Writer }
