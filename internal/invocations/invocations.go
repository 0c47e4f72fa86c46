// Package invocations lowers libfunc invocations into CASM.
package invocations

import (
	"errors"
	"fmt"

	"sierra2casm/internal/extensions"
	"sierra2casm/internal/layout"
	"sierra2casm/internal/sierra"
)

// Context holds the registries a lowering may consult.
type Context struct {
	Extensions *extensions.Registry
	Types      *layout.Registry
}

// DefaultContext uses the built-in libfuncs and types.
func DefaultContext() Context {
	return Context{Extensions: extensions.NewRegistry(), Types: layout.Builtin()}
}

type lowerFunc func(b *Builder) (CompiledInvocation, error)

var lowerings = map[string]lowerFunc{
	extensions.CallContract:         buildCallContract,
	extensions.ContractAddressConst: buildContractAddressConst,
	extensions.GetGas:               buildGetGas,
	extensions.RefundGas:            buildFromRefValues,
	extensions.TuplePack:            buildFromRefValues,
	extensions.TupleUnpack:          buildFromRefValues,
	extensions.StoreTemp:            buildStoreTemp,
}

// Lowered reports whether name has a lowering.
func Lowered(name string) bool {
	_, ok := lowerings[name]
	return ok
}

// Compile lowers one invocation.
func Compile(ctx Context, inv Invocation) (CompiledInvocation, error) {
	ext, ok := ctx.Extensions.Lookup(inv.Libfunc)
	if !ok {
		return CompiledInvocation{}, &InvocationError{Kind: UnknownLibfunc, Libfunc: inv.Libfunc}
	}
	sig, err := ext.Signature(inv.Args)
	if err != nil {
		return CompiledInvocation{}, &InvocationError{Kind: InvalidGenericArg, Libfunc: inv.Libfunc, Err: err}
	}
	if len(inv.Refs) != len(sig.Args) {
		return CompiledInvocation{}, &InvocationError{
			Kind:    WrongNumberOfArguments,
			Libfunc: inv.Libfunc,
			Detail:  fmt.Sprintf("expected %d, got %d", len(sig.Args), len(inv.Refs)),
		}
	}
	if len(inv.Branches) != len(sig.Branches) {
		return CompiledInvocation{}, fmt.Errorf("%s: %d branch targets for %d branches", inv.Libfunc, len(inv.Branches), len(sig.Branches))
	}
	for i, t := range inv.Branches {
		if t.Fallthrough != (i == sig.Fallthrough) {
			return CompiledInvocation{}, fmt.Errorf("%s: branch %d goes to %s", inv.Libfunc, i, t)
		}
	}
	lower, ok := lowerings[inv.Libfunc]
	if !ok {
		return CompiledInvocation{}, &InvocationError{Kind: NotImplemented, Libfunc: inv.Libfunc}
	}
	out, err := lower(&Builder{inv: inv, ext: ext, sig: sig, types: ctx.Types})
	if err != nil {
		var ie *InvocationError
		if errors.As(err, &ie) && ie.Libfunc == "" {
			ie.Libfunc = inv.Libfunc
		}
		return CompiledInvocation{}, err
	}
	return out, nil
}

// buildFromRefValues lowers a libfunc whose outputs are fully described by
// its symbolic references.
func buildFromRefValues(b *Builder) (CompiledInvocation, error) {
	in := make([]sierra.RefValue, 0, len(b.inv.Refs))
	for _, r := range b.inv.Refs {
		v, err := ToRefValue(r)
		if err != nil {
			return CompiledInvocation{}, err
		}
		in = append(in, v)
	}
	outs, err := b.ext.RefValues(b.inv.Args, b.types, in)
	if err != nil {
		return CompiledInvocation{}, &InvocationError{Kind: InvalidReferenceExpression, Err: err}
	}
	if err := extensions.CheckRefArity(b.sig, outs); err != nil {
		return CompiledInvocation{}, err
	}
	sizes, err := b.types.Sizes(b.sig.Branches[0])
	if err != nil {
		return CompiledInvocation{}, err
	}
	refs := make([]ReferenceExpression, 0, len(outs[0]))
	for i, v := range outs[0] {
		r, err := FromRefValue(v, sizes[i])
		if err != nil {
			return CompiledInvocation{}, err
		}
		refs = append(refs, r)
	}
	return b.BuildOnlyReferenceChanges(refs), nil
}
