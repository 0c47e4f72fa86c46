package invocations

import (
	"sierra2casm/internal/casm"
)

// buildStoreTemp pushes every cell of the value onto the ap stack.
func buildStoreTemp(b *Builder) (CompiledInvocation, error) {
	refs, err := b.TryGetRefs(1)
	if err != nil {
		return CompiledInvocation{}, err
	}
	size, err := b.types.Size(b.sig.Branches[0][0])
	if err != nil {
		return CompiledInvocation{}, err
	}
	cells, err := refs[0].TryUnpack(size)
	if err != nil {
		return CompiledInvocation{}, err
	}
	cb := casm.NewBuilder()
	in := make([]casm.Var, 0, len(cells))
	for _, c := range cells {
		in = append(in, cb.AddVar(c))
	}
	out := make([]casm.Var, 0, len(in))
	for _, v := range in {
		out = append(out, cb.TempVar(v))
	}
	return b.BuildFromCasm(cb, []BranchSpec{
		{Label: casm.Fallthrough, Outputs: [][]casm.Var{out}},
	}), nil
}
