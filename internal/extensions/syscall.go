package extensions

import (
	"sierra2casm/internal/layout"
	"sierra2casm/internal/sierra"
)

const (
	// SyscallFrameCells is how far one call_contract advances the system
	// pointer: five request cells followed by four response cells.
	SyscallFrameCells = 9
	// SyscallCost is the gas charged on either outcome of a system call.
	SyscallCost = 10
)

// CallContractRequest is what call_contract writes into the system buffer.
type CallContractRequest struct {
	Gas           int64
	Address       int64
	CalldataStart int64
	CalldataEnd   int64
}

// CallContractResponse is what the environment writes back.
type CallContractResponse struct {
	Gas          int64
	RevertReason int64 // 0 on success
	ResultStart  int64
	ResultEnd    int64
}

// SyscallHandler plays the environment for Exec.
type SyscallHandler interface {
	CallContract(req CallContractRequest) CallContractResponse
}

// SyscallFunc adapts a function to SyscallHandler.
type SyscallFunc func(req CallContractRequest) CallContractResponse

func (f SyscallFunc) CallContract(req CallContractRequest) CallContractResponse { return f(req) }

// callContract invokes another contract through the system handle.
//
//	args:    GasBuiltin, System, ContractAddress, Array<felt>
//	branch0: GasBuiltin, System, Array<felt>          (success, fallthrough)
//	branch1: GasBuiltin, System, felt, Array<felt>    (failure: revert reason)
//
// The reference model treats the call as a black box: its outputs are the
// cells the environment pushed last, and the system handle always advances
// by SyscallFrameCells.
type callContract struct{}

func (callContract) Signature(args []sierra.TemplateArg) (sierra.Signature, error) {
	if err := sierra.ValidateArgCount(args, 0); err != nil {
		return sierra.Signature{}, err
	}
	gas, system, arr := sierra.GasBuiltinType(), sierra.SystemType(), sierra.ArrayType(sierra.FeltType())
	return sierra.Signature{
		Args: []sierra.Type{gas, system, sierra.ContractAddressType(), arr},
		Branches: [][]sierra.Type{
			{gas, system, arr},
			{gas, system, sierra.FeltType(), arr},
		},
		Fallthrough: 0,
	}, nil
}

func (callContract) RefValues(args []sierra.TemplateArg, _ *layout.Registry, refs []sierra.RefValue) ([][]sierra.RefValue, error) {
	if err := sierra.ValidateArgCount(args, 0); err != nil {
		return nil, err
	}
	if err := validateRefCount(refs, 4); err != nil {
		return nil, err
	}
	system, err := sierra.AsFinal(refs[1])
	if err != nil {
		return nil, err
	}
	advanced := sierra.OpWithConst(system, sierra.OpAdd, SyscallFrameCells)
	return [][]sierra.RefValue{
		{sierra.Final(sierra.Temp(-3)), advanced, sierra.Final(sierra.Temp(-2))},
		{sierra.Final(sierra.Temp(-4)), advanced, sierra.Final(sierra.Temp(-3)), sierra.Final(sierra.Temp(-2))},
	}, nil
}

func (callContract) Effects(args []sierra.TemplateArg, _ *layout.Registry) ([]sierra.Effects, error) {
	if err := sierra.ValidateArgCount(args, 0); err != nil {
		return nil, err
	}
	return []sierra.Effects{sierra.GasUsage(SyscallCost), sierra.GasUsage(SyscallCost)}, nil
}

func (callContract) Exec(args []sierra.TemplateArg, env Env, inputs [][]int64) ([][]int64, int, error) {
	if err := sierra.ValidateArgCount(args, 0); err != nil {
		return nil, 0, err
	}
	if err := validateMemSizes(inputs, 1, 1, 1, 2); err != nil {
		return nil, 0, err
	}
	req := CallContractRequest{
		Gas:           inputs[0][0],
		Address:       inputs[2][0],
		CalldataStart: inputs[3][0],
		CalldataEnd:   inputs[3][1],
	}
	resp := CallContractResponse{Gas: req.Gas, ResultStart: req.CalldataEnd, ResultEnd: req.CalldataEnd}
	if env.Syscalls != nil {
		resp = env.Syscalls.CallContract(req)
	}
	system := inputs[1][0] + SyscallFrameCells
	result := []int64{resp.ResultStart, resp.ResultEnd}
	if resp.RevertReason == 0 {
		return [][]int64{{resp.Gas}, {system}, result}, 0, nil
	}
	return [][]int64{{resp.Gas}, {system}, {resp.RevertReason}, result}, 1, nil
}
