package extensions

import (
	"sierra2casm/internal/layout"
	"sierra2casm/internal/sierra"
)

// tuplePack aggregates N values into Tuple<T1..Tn>.
type tuplePack struct{}

func (tuplePack) Signature(args []sierra.TemplateArg) ([]sierra.Type, []sierra.Type, error) {
	elems, err := sierra.UnwrapTypes(args)
	if err != nil {
		return nil, nil, err
	}
	return elems, []sierra.Type{sierra.AsTuple(args)}, nil
}

func (tuplePack) RefValues(args []sierra.TemplateArg, types *layout.Registry, refs []sierra.RefValue) ([]sierra.RefValue, error) {
	sizes, err := elementSizes(args, types)
	if err != nil {
		return nil, err
	}
	packed, err := sierra.ReduceSpans(refs, sizes)
	if err != nil {
		return nil, err
	}
	return []sierra.RefValue{packed}, nil
}

func (tuplePack) Effects([]sierra.TemplateArg, *layout.Registry) (sierra.Effects, error) {
	return sierra.NoEffects(), nil
}

func (tuplePack) Exec(args []sierra.TemplateArg, env Env, inputs [][]int64) ([][]int64, error) {
	sizes, err := elementSizes(args, env.Types)
	if err != nil {
		return nil, err
	}
	if err := validateMemSizes(inputs, sizes...); err != nil {
		return nil, err
	}
	var out []int64
	for _, in := range inputs {
		out = append(out, in...)
	}
	return [][]int64{out}, nil
}

// tupleUnpack splits Tuple<T1..Tn> into its elements.
type tupleUnpack struct{}

func (tupleUnpack) Signature(args []sierra.TemplateArg) ([]sierra.Type, []sierra.Type, error) {
	elems, err := sierra.UnwrapTypes(args)
	if err != nil {
		return nil, nil, err
	}
	return []sierra.Type{sierra.AsTuple(args)}, elems, nil
}

func (tupleUnpack) RefValues(args []sierra.TemplateArg, types *layout.Registry, refs []sierra.RefValue) ([]sierra.RefValue, error) {
	sizes, err := elementSizes(args, types)
	if err != nil {
		return nil, err
	}
	if err := validateRefCount(refs, 1); err != nil {
		return nil, err
	}
	return sierra.SliceLocation(refs[0], sizes)
}

func (tupleUnpack) Effects([]sierra.TemplateArg, *layout.Registry) (sierra.Effects, error) {
	return sierra.NoEffects(), nil
}

func (tupleUnpack) Exec(args []sierra.TemplateArg, env Env, inputs [][]int64) ([][]int64, error) {
	sizes, err := elementSizes(args, env.Types)
	if err != nil {
		return nil, err
	}
	if len(inputs) != 1 {
		return nil, sierra.Errorf(sierra.KindUnexpectedMemoryStructure, "expected 1 input, got %d", len(inputs))
	}
	in := inputs[0]
	outputs := make([][]int64, 0, len(sizes))
	offset := 0
	for _, size := range sizes {
		if offset+size > len(in) {
			return nil, sierra.Errorf(sierra.KindUnexpectedMemoryStructure, "tuple of %d cells is too short", len(in))
		}
		outputs = append(outputs, append([]int64{}, in[offset:offset+size]...))
		offset += size
	}
	if offset != len(in) {
		return nil, sierra.Errorf(sierra.KindUnexpectedMemoryStructure, "tuple has %d trailing cells", len(in)-offset)
	}
	return outputs, nil
}

func elementSizes(args []sierra.TemplateArg, types *layout.Registry) ([]int, error) {
	elems, err := sierra.UnwrapTypes(args)
	if err != nil {
		return nil, err
	}
	return types.Sizes(elems)
}
