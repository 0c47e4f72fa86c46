package extensions

import (
	"sierra2casm/internal/layout"
	"sierra2casm/internal/sierra"
)

// storeTemp materializes a (possibly deferred) value into fresh temp cells.
// Its result lives in the last size(T) cells below the advanced ap.
type storeTemp struct{}

func (storeTemp) Signature(args []sierra.TemplateArg) ([]sierra.Type, []sierra.Type, error) {
	t, err := sierra.SingleTypeArg(args)
	if err != nil {
		return nil, nil, err
	}
	return []sierra.Type{sierra.AsDeferred(t)}, []sierra.Type{t}, nil
}

func (storeTemp) RefValues(args []sierra.TemplateArg, types *layout.Registry, refs []sierra.RefValue) ([]sierra.RefValue, error) {
	size, err := storedSize(args, types)
	if err != nil {
		return nil, err
	}
	if err := validateRefCount(refs, 1); err != nil {
		return nil, err
	}
	if size == 0 {
		return []sierra.RefValue{sierra.Transient()}, nil
	}
	return []sierra.RefValue{sierra.Final(sierra.Temp(-int64(size)))}, nil
}

func (storeTemp) Effects(args []sierra.TemplateArg, types *layout.Registry) (sierra.Effects, error) {
	size, err := storedSize(args, types)
	if err != nil {
		return sierra.Effects{}, err
	}
	return sierra.GasUsage(int64(size)), nil
}

func (storeTemp) Exec(args []sierra.TemplateArg, env Env, inputs [][]int64) ([][]int64, error) {
	size, err := storedSize(args, env.Types)
	if err != nil {
		return nil, err
	}
	if err := validateMemSizes(inputs, size); err != nil {
		return nil, err
	}
	return [][]int64{append([]int64{}, inputs[0]...)}, nil
}

func storedSize(args []sierra.TemplateArg, types *layout.Registry) (int, error) {
	t, err := sierra.SingleTypeArg(args)
	if err != nil {
		return 0, err
	}
	return types.Size(t)
}
