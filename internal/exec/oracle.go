// Package exec cross-checks the symbolic reference model of libfuncs against
// their concrete reference interpreter.
package exec

import (
	"fmt"

	"sierra2casm/internal/extensions"
	"sierra2casm/internal/layout"
	"sierra2casm/internal/sierra"
)

// Oracle runs libfuncs on concrete memory.
type Oracle struct {
	Extensions *extensions.Registry
	Types      *layout.Registry
	Syscalls   extensions.SyscallHandler
}

// New returns an oracle over the built-in libfuncs and types.
func New() *Oracle {
	return &Oracle{Extensions: extensions.NewRegistry(), Types: layout.Builtin()}
}

// Outcome is the result of one concrete execution.
type Outcome struct {
	Branch  int
	Outputs [][]int64
}

// Mismatch reports a result on which the symbolic model and Exec disagree.
type Mismatch struct {
	Libfunc  string
	Branch   int
	Result   int
	Exec     []int64
	Symbolic []int64
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("%s: branch %d result %d: exec produced %v, references denote %v",
		m.Libfunc, m.Branch, m.Result, m.Exec, m.Symbolic)
}

type prepared struct {
	ext extensions.Extension
	sig sierra.Signature
}

func (o *Oracle) prepare(libfunc string, args []sierra.TemplateArg) (prepared, error) {
	ext, ok := o.Extensions.Lookup(libfunc)
	if !ok {
		return prepared{}, fmt.Errorf("unknown libfunc %q", libfunc)
	}
	sig, err := ext.Signature(args)
	if err != nil {
		return prepared{}, fmt.Errorf("%s%s: %w", libfunc, sierra.FormatArgs(args), err)
	}
	return prepared{ext: ext, sig: sig}, nil
}

// Run executes libfunc and validates that the outputs match the declared
// result sizes of the taken branch.
func (o *Oracle) Run(libfunc string, args []sierra.TemplateArg, inputs [][]int64) (Outcome, error) {
	p, err := o.prepare(libfunc, args)
	if err != nil {
		return Outcome{}, err
	}
	return o.run(libfunc, p, args, inputs)
}

func (o *Oracle) run(libfunc string, p prepared, args []sierra.TemplateArg, inputs [][]int64) (Outcome, error) {
	outputs, branch, err := p.ext.Exec(args, extensions.Env{Types: o.Types, Syscalls: o.Syscalls}, inputs)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", libfunc, err)
	}
	if branch < 0 || branch >= len(p.sig.Branches) {
		return Outcome{}, fmt.Errorf("%s: exec took branch %d of %d", libfunc, branch, len(p.sig.Branches))
	}
	sizes, err := o.Types.Sizes(p.sig.Branches[branch])
	if err != nil {
		return Outcome{}, err
	}
	if len(outputs) != len(sizes) {
		return Outcome{}, fmt.Errorf("%s: %w", libfunc, sierra.Errorf(sierra.KindUnexpectedMemoryStructure,
			"branch %d produced %d results, expected %d", branch, len(outputs), len(sizes)))
	}
	for i, size := range sizes {
		if len(outputs[i]) != size {
			return Outcome{}, fmt.Errorf("%s: %w", libfunc, sierra.Errorf(sierra.KindUnexpectedMemoryStructure,
				"result %d has %d cells, expected %d", i, len(outputs[i]), size))
		}
	}
	return Outcome{Branch: branch, Outputs: outputs}, nil
}

// Check lays inputs into memory at the locations refs name, executes the
// libfunc, and verifies that the references RefValues returns for the taken
// branch evaluate to the concrete outputs. Libfuncs whose results live in
// cells the environment writes (call_contract, store_temp) cannot be checked
// this way; use Run for them.
func (o *Oracle) Check(libfunc string, args []sierra.TemplateArg, refs []sierra.RefValue, inputs [][]int64) (Outcome, error) {
	p, err := o.prepare(libfunc, args)
	if err != nil {
		return Outcome{}, err
	}
	if len(refs) != len(inputs) || len(refs) != len(p.sig.Args) {
		return Outcome{}, fmt.Errorf("%s: %d references and %d inputs for %d arguments", libfunc, len(refs), len(inputs), len(p.sig.Args))
	}
	mem := NewMemory()
	for i, ref := range refs {
		if err := mem.Place(ref, inputs[i]); err != nil {
			return Outcome{}, fmt.Errorf("%s: argument %d: %w", libfunc, i, err)
		}
	}
	outcome, err := o.run(libfunc, p, args, inputs)
	if err != nil {
		return Outcome{}, err
	}
	symbolic, err := p.ext.RefValues(args, o.Types, refs)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", libfunc, err)
	}
	if err := extensions.CheckRefArity(p.sig, symbolic); err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", libfunc, err)
	}
	for i, ref := range symbolic[outcome.Branch] {
		if ref.Kind == sierra.RefTransient && len(outcome.Outputs[i]) > 0 {
			// not materialized yet; nothing in memory to compare against
			continue
		}
		words, err := mem.Eval(ref, len(outcome.Outputs[i]))
		if err != nil {
			return Outcome{}, fmt.Errorf("%s: result %d: %w", libfunc, i, err)
		}
		if !equalWords(words, outcome.Outputs[i]) {
			return Outcome{}, &Mismatch{Libfunc: libfunc, Branch: outcome.Branch, Result: i, Exec: outcome.Outputs[i], Symbolic: words}
		}
	}
	return outcome, nil
}

// RoundTrip packs values into Tuple<elems...> and unpacks them again.
func (o *Oracle) RoundTrip(elems []sierra.Type, values [][]int64) ([][]int64, error) {
	args := make([]sierra.TemplateArg, 0, len(elems))
	for _, t := range elems {
		args = append(args, sierra.TypeArg(t))
	}
	packed, err := o.Run(extensions.TuplePack, args, values)
	if err != nil {
		return nil, err
	}
	unpacked, err := o.Run(extensions.TupleUnpack, args, packed.Outputs)
	if err != nil {
		return nil, err
	}
	return unpacked.Outputs, nil
}

func equalWords(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
