package extensions

import (
	"fmt"

	"sierra2casm/internal/layout"
	"sierra2casm/internal/sierra"
)

// Env is the context of a concrete Exec call.
type Env struct {
	Types    *layout.Registry
	Syscalls SyscallHandler
}

// Extension is a possibly branching libfunc.
type Extension interface {
	Signature(args []sierra.TemplateArg) (sierra.Signature, error)
	RefValues(args []sierra.TemplateArg, types *layout.Registry, refs []sierra.RefValue) ([][]sierra.RefValue, error)
	Effects(args []sierra.TemplateArg, types *layout.Registry) ([]sierra.Effects, error)
	Exec(args []sierra.TemplateArg, env Env, inputs [][]int64) ([][]int64, int, error)
}

// NonBranch is a libfunc with exactly one outcome.
type NonBranch interface {
	Signature(args []sierra.TemplateArg) (params, results []sierra.Type, err error)
	RefValues(args []sierra.TemplateArg, types *layout.Registry, refs []sierra.RefValue) ([]sierra.RefValue, error)
	Effects(args []sierra.TemplateArg, types *layout.Registry) (sierra.Effects, error)
	Exec(args []sierra.TemplateArg, env Env, inputs [][]int64) ([][]int64, error)
}

// WrapNonBranch adapts nb to Extension with a single fallthrough branch.
func WrapNonBranch(nb NonBranch) Extension {
	return nonBranch{nb}
}

type nonBranch struct {
	inner NonBranch
}

func (w nonBranch) Signature(args []sierra.TemplateArg) (sierra.Signature, error) {
	params, results, err := w.inner.Signature(args)
	if err != nil {
		return sierra.Signature{}, err
	}
	return sierra.NonBranchSignature(params, results), nil
}

func (w nonBranch) RefValues(args []sierra.TemplateArg, types *layout.Registry, refs []sierra.RefValue) ([][]sierra.RefValue, error) {
	out, err := w.inner.RefValues(args, types, refs)
	if err != nil {
		return nil, err
	}
	return [][]sierra.RefValue{out}, nil
}

func (w nonBranch) Effects(args []sierra.TemplateArg, types *layout.Registry) ([]sierra.Effects, error) {
	e, err := w.inner.Effects(args, types)
	if err != nil {
		return nil, err
	}
	return []sierra.Effects{e}, nil
}

func (w nonBranch) Exec(args []sierra.TemplateArg, env Env, inputs [][]int64) ([][]int64, int, error) {
	out, err := w.inner.Exec(args, env, inputs)
	if err != nil {
		return nil, 0, err
	}
	return out, 0, nil
}

// validateMemSizes checks the number and length of concrete inputs.
func validateMemSizes(inputs [][]int64, sizes ...int) error {
	if len(inputs) != len(sizes) {
		return sierra.Errorf(sierra.KindUnexpectedMemoryStructure, "expected %d inputs, got %d", len(sizes), len(inputs))
	}
	for i, size := range sizes {
		if len(inputs[i]) != size {
			return sierra.Errorf(sierra.KindUnexpectedMemoryStructure, "input %d: expected %d cells, got %d", i, size, len(inputs[i]))
		}
	}
	return nil
}

// validateRefCount checks that one reference was passed per argument slot.
func validateRefCount(refs []sierra.RefValue, n int) error {
	if len(refs) != n {
		return sierra.Errorf(sierra.KindIllegalArgsLocation, "expected %d references, got %d", n, len(refs))
	}
	return nil
}

// CheckRefArity verifies that RefValues returned one reference per declared
// result on every branch.
func CheckRefArity(sig sierra.Signature, refs [][]sierra.RefValue) error {
	if len(refs) != len(sig.Branches) {
		return fmt.Errorf("references cover %d branches, signature declares %d", len(refs), len(sig.Branches))
	}
	for i := range refs {
		if len(refs[i]) != len(sig.Branches[i]) {
			return fmt.Errorf("branch %d: %d references for %d results", i, len(refs[i]), len(sig.Branches[i]))
		}
	}
	return nil
}
