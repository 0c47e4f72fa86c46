// Package program reads and writes the on-disk forms of Sierra programs and
// flat lowered functions. Both TOML and msgpack encodings share one schema.
package program

import (
	"fmt"
	"path/filepath"
	"strings"
)

// File is the serialized form of compiler.Program.
type File struct {
	Functions  []FunctionEntry  `toml:"functions" msgpack:"functions"`
	Statements []StatementEntry `toml:"statements" msgpack:"statements"`
}

type FunctionEntry struct {
	Name    string       `toml:"name" msgpack:"name"`
	Entry   int          `toml:"entry" msgpack:"entry"`
	Params  []ParamEntry `toml:"params" msgpack:"params"`
	Returns []string     `toml:"returns" msgpack:"returns"`
}

type ParamEntry struct {
	Var  string `toml:"var" msgpack:"var"`
	Type string `toml:"type" msgpack:"type"`
}

// StatementEntry is an invocation when Libfunc is set, a return otherwise.
type StatementEntry struct {
	Libfunc  string        `toml:"libfunc,omitempty" msgpack:"libfunc,omitempty"`
	Args     []string      `toml:"args,omitempty" msgpack:"args,omitempty"`
	Inputs   []string      `toml:"inputs,omitempty" msgpack:"inputs,omitempty"`
	Branches []BranchEntry `toml:"branches,omitempty" msgpack:"branches,omitempty"`
	Return   []string      `toml:"return,omitempty" msgpack:"return,omitempty"`
}

// BranchEntry targets "fallthrough" (or nothing) or a statement index.
type BranchEntry struct {
	Target  string   `toml:"target,omitempty" msgpack:"target,omitempty"`
	Results []string `toml:"results" msgpack:"results"`
}

// FlatFile is the serialized form of a lowering.FlatLowered.
type FlatFile struct {
	Name   string      `toml:"name" msgpack:"name"`
	Params []int       `toml:"params" msgpack:"params"`
	Blocks []FlatBlock `toml:"blocks" msgpack:"blocks"`
}

type FlatBlock struct {
	Statements []FlatStatement `toml:"statements,omitempty" msgpack:"statements,omitempty"`
	End        FlatEnd         `toml:"end" msgpack:"end"`
}

type FlatStatement struct {
	Op      string `toml:"op" msgpack:"op"`
	Inputs  []int  `toml:"inputs" msgpack:"inputs"`
	Outputs []int  `toml:"outputs" msgpack:"outputs"`
}

// FlatEnd.Kind is one of "fallthrough", "goto", "return", "unreachable".
type FlatEnd struct {
	Kind      string      `toml:"kind" msgpack:"kind"`
	Target    int         `toml:"target,omitempty" msgpack:"target,omitempty"`
	Remapping []FlatRemap `toml:"remapping,omitempty" msgpack:"remapping,omitempty"`
	Returns   []int       `toml:"returns,omitempty" msgpack:"returns,omitempty"`
}

type FlatRemap struct {
	Dst int `toml:"dst" msgpack:"dst"`
	Src int `toml:"src" msgpack:"src"`
}

// Format selects an encoding.
type Format uint8

const (
	FormatTOML Format = iota
	FormatMsgpack
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "format?"
	}
}

// ParseFormat accepts "toml", "msgpack" or "mp".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "toml":
		return FormatTOML, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	default:
		return FormatTOML, fmt.Errorf("unknown format %q (expected toml|msgpack)", s)
	}
}

// FormatFromPath picks the encoding by file extension; anything that is not
// .mp or .msgpack is read as TOML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp", ".msgpack":
		return FormatMsgpack
	default:
		return FormatTOML
	}
}
