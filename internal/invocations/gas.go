package invocations

import (
	"sierra2casm/internal/casm"
	"sierra2casm/internal/sierra"
)

// buildGetGas asks the prover whether the counter covers the cost and
// branches on the answer. The success branch carries the decremented counter
// as a deferred expression and jumps away; the fallthrough keeps it intact.
func buildGetGas(b *Builder) (CompiledInvocation, error) {
	cost, err := sierra.SingleValueArg(b.inv.Args)
	if err != nil {
		return CompiledInvocation{}, &InvocationError{Kind: InvalidGenericArg, Err: err}
	}
	refs, err := b.TryGetRefs(1)
	if err != nil {
		return CompiledInvocation{}, err
	}
	cell, err := refs[0].TryUnpackSingle()
	if err != nil {
		return CompiledInvocation{}, err
	}
	counter, err := ToDeref(cell)
	if err != nil {
		return CompiledInvocation{}, err
	}

	cb := casm.NewBuilder()
	gas := cb.AddVar(casm.Deref(counter))
	remaining := cb.AddVar(casm.BinOp(casm.OpAdd, counter, casm.ImmOperandInt(-cost)))
	requested := cb.Const(casm.FeltFromInt64(cost))
	hasEnough := cb.NextTemp()
	cb.Hint(casm.HintTestLessThanOrEqual, requested, gas, hasEnough)
	cb.BumpAp(1)
	cb.JumpIfNonZero("Success", hasEnough)

	return b.BuildFromCasm(cb, []BranchSpec{
		{Label: "Success", Outputs: [][]casm.Var{{remaining}}, Target: b.NonFallthroughStatement(), HasTarget: true},
		{Label: casm.Fallthrough, Outputs: [][]casm.Var{{gas}}},
	}), nil
}
