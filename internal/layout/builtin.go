package layout

import "sierra2casm/internal/sierra"

// Builtin returns the registry of the core types:
//
//	felt, GasBuiltin, System, ContractAddress  1 cell
//	Array<T>                                   2 cells (start, end)
//	Tuple<T1..Tn>                              sum of element sizes
//	Deferred<T>                                size of T
func Builtin() *Registry {
	return New(map[string]Provider{
		sierra.TypeFelt:            FixedSize(1),
		sierra.TypeGasBuiltin:      FixedSize(1),
		sierra.TypeSystem:          FixedSize(1),
		sierra.TypeContractAddress: FixedSize(1),
		sierra.TypeArray:           ProviderFunc(arrayInfo),
		sierra.TypeTuple:           ProviderFunc(tupleInfo),
		sierra.TypeDeferred:        ProviderFunc(deferredInfo),
	})
}

// FixedSize is a provider for non-generic types of a constant size.
func FixedSize(size int) Provider {
	return ProviderFunc(func(args []sierra.TemplateArg, _ Sizer) (TypeInfo, error) {
		if err := sierra.ValidateArgCount(args, 0); err != nil {
			return TypeInfo{}, err
		}
		return TypeInfo{Size: size}, nil
	})
}

func arrayInfo(args []sierra.TemplateArg, types Sizer) (TypeInfo, error) {
	elem, err := sierra.SingleTypeArg(args)
	if err != nil {
		return TypeInfo{}, err
	}
	if _, err := types.Info(elem); err != nil {
		return TypeInfo{}, err
	}
	return TypeInfo{Size: 2}, nil
}

func tupleInfo(args []sierra.TemplateArg, types Sizer) (TypeInfo, error) {
	size := 0
	for _, a := range args {
		t, err := sierra.UnwrapType(a)
		if err != nil {
			return TypeInfo{}, err
		}
		ti, err := types.Info(t)
		if err != nil {
			return TypeInfo{}, err
		}
		size += ti.Size
	}
	return TypeInfo{Size: size}, nil
}

func deferredInfo(args []sierra.TemplateArg, types Sizer) (TypeInfo, error) {
	inner, err := sierra.SingleTypeArg(args)
	if err != nil {
		return TypeInfo{}, err
	}
	return types.Info(inner)
}
