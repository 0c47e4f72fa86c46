package extensions

import (
	"sierra2casm/internal/layout"
	"sierra2casm/internal/sierra"
)

// getGas tries to withdraw a fixed amount from the gas counter. Branch 0 is
// taken when the counter covers the amount and yields the deferred
// decremented counter; branch 1, the fallthrough, leaves the counter intact.
type getGas struct{}

func (getGas) Signature(args []sierra.TemplateArg) (sierra.Signature, error) {
	if _, err := gasValueArg(args); err != nil {
		return sierra.Signature{}, err
	}
	gas := sierra.GasBuiltinType()
	return sierra.Signature{
		Args: []sierra.Type{gas},
		Branches: [][]sierra.Type{
			{sierra.AsDeferred(gas)},
			{gas},
		},
		Fallthrough: 1,
	}, nil
}

func (getGas) RefValues(args []sierra.TemplateArg, _ *layout.Registry, refs []sierra.RefValue) ([][]sierra.RefValue, error) {
	cost, err := gasValueArg(args)
	if err != nil {
		return nil, err
	}
	if err := validateRefCount(refs, 1); err != nil {
		return nil, err
	}
	loc, err := sierra.AsFinal(refs[0])
	if err != nil {
		return nil, err
	}
	return [][]sierra.RefValue{
		{sierra.OpWithConst(loc, sierra.OpSub, cost)},
		{refs[0]},
	}, nil
}

func (getGas) Effects(args []sierra.TemplateArg, _ *layout.Registry) ([]sierra.Effects, error) {
	cost, err := gasValueArg(args)
	if err != nil {
		return nil, err
	}
	return []sierra.Effects{
		sierra.GasUsage(-cost + 1),
		sierra.GasUsage(1),
	}, nil
}

func (getGas) Exec(args []sierra.TemplateArg, _ Env, inputs [][]int64) ([][]int64, int, error) {
	cost, err := gasValueArg(args)
	if err != nil {
		return nil, 0, err
	}
	if err := validateMemSizes(inputs, 1); err != nil {
		return nil, 0, err
	}
	if inputs[0][0] >= cost {
		return [][]int64{{inputs[0][0] - cost}}, 0, nil
	}
	return [][]int64{{inputs[0][0]}}, 1, nil
}

// refundGas returns a fixed amount to the gas counter.
type refundGas struct{}

func (refundGas) Signature(args []sierra.TemplateArg) ([]sierra.Type, []sierra.Type, error) {
	if _, err := gasValueArg(args); err != nil {
		return nil, nil, err
	}
	gas := sierra.GasBuiltinType()
	return []sierra.Type{gas}, []sierra.Type{sierra.AsDeferred(gas)}, nil
}

func (refundGas) RefValues(args []sierra.TemplateArg, _ *layout.Registry, refs []sierra.RefValue) ([]sierra.RefValue, error) {
	amount, err := gasValueArg(args)
	if err != nil {
		return nil, err
	}
	if err := validateRefCount(refs, 1); err != nil {
		return nil, err
	}
	loc, err := sierra.AsFinal(refs[0])
	if err != nil {
		return nil, err
	}
	return []sierra.RefValue{sierra.OpWithConst(loc, sierra.OpAdd, amount)}, nil
}

func (refundGas) Effects(args []sierra.TemplateArg, _ *layout.Registry) (sierra.Effects, error) {
	amount, err := gasValueArg(args)
	if err != nil {
		return sierra.Effects{}, err
	}
	return sierra.GasUsage(amount), nil
}

func (refundGas) Exec(args []sierra.TemplateArg, _ Env, inputs [][]int64) ([][]int64, error) {
	amount, err := gasValueArg(args)
	if err != nil {
		return nil, err
	}
	if err := validateMemSizes(inputs, 1); err != nil {
		return nil, err
	}
	return [][]int64{{inputs[0][0] + amount}}, nil
}

// gasValueArg reads the single gas amount, which must be strictly positive.
func gasValueArg(args []sierra.TemplateArg) (int64, error) {
	gas, err := sierra.SingleValueArg(args)
	if err != nil {
		return 0, err
	}
	if gas <= 0 {
		return 0, sierra.Errorf(sierra.KindUnsupportedTypeArg, "gas amount must be positive, got %d", gas)
	}
	return gas, nil
}
