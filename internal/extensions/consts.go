package extensions

import (
	"sierra2casm/internal/layout"
	"sierra2casm/internal/sierra"
)

// contractAddressConst produces a ContractAddress constant. The value is an
// immediate and occupies no memory, so its reference is Transient; the range
// of legal addresses is enforced when the invocation is lowered.
type contractAddressConst struct{}

func (contractAddressConst) Signature(args []sierra.TemplateArg) ([]sierra.Type, []sierra.Type, error) {
	if _, err := sierra.SingleValueArg(args); err != nil {
		return nil, nil, err
	}
	return nil, []sierra.Type{sierra.ContractAddressType()}, nil
}

func (contractAddressConst) RefValues(args []sierra.TemplateArg, _ *layout.Registry, refs []sierra.RefValue) ([]sierra.RefValue, error) {
	if _, err := sierra.SingleValueArg(args); err != nil {
		return nil, err
	}
	if err := validateRefCount(refs, 0); err != nil {
		return nil, err
	}
	return []sierra.RefValue{sierra.Transient()}, nil
}

func (contractAddressConst) Effects([]sierra.TemplateArg, *layout.Registry) (sierra.Effects, error) {
	return sierra.NoEffects(), nil
}

func (contractAddressConst) Exec(args []sierra.TemplateArg, _ Env, inputs [][]int64) ([][]int64, error) {
	c, err := sierra.SingleValueArg(args)
	if err != nil {
		return nil, err
	}
	if err := validateMemSizes(inputs); err != nil {
		return nil, err
	}
	return [][]int64{{c}}, nil
}
