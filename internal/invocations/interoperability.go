package invocations

import (
	"sierra2casm/internal/casm"
	"sierra2casm/internal/sierra"
)

// callContractSelector is "call_contract" read as a little-endian integer.
var callContractSelector = casm.FeltFromBytesLE([]byte("call_contract"))

// buildCallContract writes the request into the system buffer, lets the
// runner perform the call, and reads the response back. A nonzero revert
// reason jumps to the failure branch.
func buildCallContract(b *Builder) (CompiledInvocation, error) {
	failure := b.NonFallthroughStatement()
	refs, err := b.TryGetRefs(4)
	if err != nil {
		return CompiledInvocation{}, err
	}
	gasCell, err := refs[0].TryUnpackSingle()
	if err != nil {
		return CompiledInvocation{}, err
	}
	gasBuiltin, err := ToDeref(gasCell)
	if err != nil {
		return CompiledInvocation{}, err
	}
	sysCell, err := refs[1].TryUnpackSingle()
	if err != nil {
		return CompiledInvocation{}, err
	}
	systemBuf, err := ToBuffer(sysCell, 8)
	if err != nil {
		return CompiledInvocation{}, err
	}
	addrCell, err := refs[2].TryUnpackSingle()
	if err != nil {
		return CompiledInvocation{}, err
	}
	address, err := ToDeref(addrCell)
	if err != nil {
		return CompiledInvocation{}, err
	}
	arr, err := refs[3].TryUnpack(2)
	if err != nil {
		return CompiledInvocation{}, err
	}
	start, err := ToDeref(arr[0])
	if err != nil {
		return CompiledInvocation{}, err
	}
	end, err := ToDeref(arr[1])
	if err != nil {
		return CompiledInvocation{}, err
	}

	cb := casm.NewBuilder()
	system := cb.AddVar(systemBuf)
	gas := cb.AddVar(casm.Deref(gasBuiltin))
	contract := cb.AddVar(casm.Deref(address))
	dataStart := cb.AddVar(casm.Deref(start))
	dataEnd := cb.AddVar(casm.Deref(end))

	selector := cb.TempVar(cb.Const(callContractSelector))
	original := cb.Alias(system)
	cb.AssertToBuffer(selector, system)
	cb.AssertToBuffer(gas, system)
	cb.AssertToBuffer(contract, system)
	cb.AssertToBuffer(dataStart, system)
	cb.AssertToBuffer(dataEnd, system)
	cb.Hint(casm.HintSystemCall, original)

	updatedGas := cb.LetFromBuffer(system)
	// zero on success
	revertReason := cb.TempVarFromBuffer(system)
	resStart := cb.LetFromBuffer(system)
	resEnd := cb.LetFromBuffer(system)
	cb.JumpIfNonZero("Failure", revertReason)

	return b.BuildFromCasm(cb, []BranchSpec{
		{Label: casm.Fallthrough, Outputs: [][]casm.Var{{updatedGas}, {system}, {resStart, resEnd}}},
		{Label: "Failure", Outputs: [][]casm.Var{{updatedGas}, {system}, {revertReason}, {resStart, resEnd}}, Target: failure, HasTarget: true},
	}), nil
}

// buildContractAddressConst materializes an address as an immediate. The
// address must lie in (0, AddressBound).
func buildContractAddressConst(b *Builder) (CompiledInvocation, error) {
	c, err := sierra.SingleValueArg(b.inv.Args)
	if err != nil {
		return CompiledInvocation{}, &InvocationError{Kind: InvalidGenericArg, Err: err}
	}
	if _, err := b.TryGetRefs(0); err != nil {
		return CompiledInvocation{}, err
	}
	addr := casm.FeltFromInt64(c)
	if addr.IsZero() || !addr.Lt(casm.AddressBound) {
		return CompiledInvocation{}, &InvocationError{Kind: InvalidGenericArg, Detail: "address " + addr.String() + " out of range"}
	}
	return b.BuildOnlyReferenceChanges([]ReferenceExpression{FromCell(casm.Immediate(addr))}), nil
}
