package program

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"

	"sierra2casm/internal/compiler"
	"sierra2casm/internal/invocations"
	"sierra2casm/internal/lowering"
	"sierra2casm/internal/sierra"
)

const fallthroughTarget = "fallthrough"

// Decode reads one value of either schema from r. TOML keys that do not map
// onto the schema are rejected.
func Decode(r io.Reader, format Format, out any) error {
	switch format {
	case FormatTOML:
		meta, err := toml.NewDecoder(r).Decode(out)
		if err != nil {
			return fmt.Errorf("failed to parse TOML: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
		return nil
	case FormatMsgpack:
		dec := msgpack.NewDecoder(r)
		if err := dec.Decode(out); err != nil {
			return fmt.Errorf("failed to decode msgpack: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %s", format)
	}
}

// Encode writes v in the given format.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(v)
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported format %s", format)
	}
}

func decodeFile(path string, out any) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	if err := Decode(bufio.NewReader(f), FormatFromPath(path), out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Load reads a program file and converts it.
func Load(path string) (*compiler.Program, error) {
	var file File
	if err := decodeFile(path, &file); err != nil {
		return nil, err
	}
	p, err := file.Program()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// LoadFlat reads a flat IR file and converts it.
func LoadFlat(path string) (*lowering.FlatLowered, error) {
	var file FlatFile
	if err := decodeFile(path, &file); err != nil {
		return nil, err
	}
	f, err := file.Lowered()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Program converts the file, parsing every type and template argument.
// All malformed entries are reported together.
func (file *File) Program() (*compiler.Program, error) {
	p := &compiler.Program{
		Functions:  make([]compiler.Function, 0, len(file.Functions)),
		Statements: make([]compiler.Statement, 0, len(file.Statements)),
	}
	var errs []error
	for i, fe := range file.Functions {
		fn, err := fe.function()
		if err != nil {
			errs = append(errs, fmt.Errorf("function %d (%s): %w", i, fe.Name, err))
			continue
		}
		p.Functions = append(p.Functions, fn)
	}
	for i, se := range file.Statements {
		st, err := se.statement()
		if err != nil {
			errs = append(errs, fmt.Errorf("statement %d: %w", i, err))
		}
		p.Statements = append(p.Statements, st)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return p, nil
}

func (fe FunctionEntry) function() (compiler.Function, error) {
	if strings.TrimSpace(fe.Name) == "" {
		return compiler.Function{}, errors.New("missing name")
	}
	if fe.Entry < 0 {
		return compiler.Function{}, fmt.Errorf("negative entry %d", fe.Entry)
	}
	fn := compiler.Function{Name: fe.Name, Entry: compiler.StatementID(fe.Entry)}
	for _, pe := range fe.Params {
		ty, err := sierra.ParseType(pe.Type)
		if err != nil {
			return compiler.Function{}, fmt.Errorf("param %s: %w", pe.Var, err)
		}
		fn.Params = append(fn.Params, compiler.Param{Var: compiler.VarID(pe.Var), Type: ty})
	}
	for _, r := range fe.Returns {
		ty, err := sierra.ParseType(r)
		if err != nil {
			return compiler.Function{}, fmt.Errorf("return type: %w", err)
		}
		fn.Returns = append(fn.Returns, ty)
	}
	return fn, nil
}

func (se StatementEntry) statement() (compiler.Statement, error) {
	if se.Libfunc == "" {
		if len(se.Args) > 0 || len(se.Inputs) > 0 || len(se.Branches) > 0 {
			return compiler.Statement{}, errors.New("return statement with libfunc fields")
		}
		return compiler.Statement{Kind: compiler.StmtReturn, Returns: toVars(se.Return)}, nil
	}
	if len(se.Return) > 0 {
		return compiler.Statement{}, fmt.Errorf("%s: invocation with return list", se.Libfunc)
	}
	args, err := sierra.ParseTemplateArgs(se.Args)
	if err != nil {
		return compiler.Statement{}, fmt.Errorf("%s: %w", se.Libfunc, err)
	}
	st := compiler.Statement{
		Kind:    compiler.StmtInvocation,
		Libfunc: se.Libfunc,
		Args:    args,
		Inputs:  toVars(se.Inputs),
	}
	for i, be := range se.Branches {
		target, err := parseTarget(be.Target)
		if err != nil {
			return compiler.Statement{}, fmt.Errorf("%s: branch %d: %w", se.Libfunc, i, err)
		}
		st.Branches = append(st.Branches, compiler.Branch{Target: target, Results: toVars(be.Results)})
	}
	return st, nil
}

func parseTarget(s string) (invocations.BranchTarget, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, fallthroughTarget) {
		return invocations.FallthroughTarget(), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return invocations.BranchTarget{}, fmt.Errorf("bad target %q", s)
	}
	return invocations.StatementTarget(invocations.StatementID(n)), nil
}

func toVars(names []string) []compiler.VarID {
	if len(names) == 0 {
		return nil
	}
	out := make([]compiler.VarID, len(names))
	for i, n := range names {
		out[i] = compiler.VarID(n)
	}
	return out
}

// FromProgram is the inverse of File.Program.
func FromProgram(p *compiler.Program) *File {
	file := &File{}
	for _, fn := range p.Functions {
		fe := FunctionEntry{Name: fn.Name, Entry: int(fn.Entry)}
		for _, prm := range fn.Params {
			fe.Params = append(fe.Params, ParamEntry{Var: string(prm.Var), Type: prm.Type.String()})
		}
		for _, r := range fn.Returns {
			fe.Returns = append(fe.Returns, r.String())
		}
		file.Functions = append(file.Functions, fe)
	}
	for _, st := range p.Statements {
		if st.Kind == compiler.StmtReturn {
			file.Statements = append(file.Statements, StatementEntry{Return: fromVars(st.Returns)})
			continue
		}
		se := StatementEntry{Libfunc: st.Libfunc, Inputs: fromVars(st.Inputs)}
		for _, a := range st.Args {
			se.Args = append(se.Args, a.String())
		}
		for _, b := range st.Branches {
			be := BranchEntry{Target: fallthroughTarget, Results: fromVars(b.Results)}
			if !b.Target.Fallthrough {
				be.Target = strconv.Itoa(int(b.Target.Statement))
			}
			se.Branches = append(se.Branches, be)
		}
		file.Statements = append(file.Statements, se)
	}
	return file
}

func fromVars(vs []compiler.VarID) []string {
	if len(vs) == 0 {
		return nil
	}
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}
