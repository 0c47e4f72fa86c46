package extensions

import (
	"reflect"
	"testing"

	"sierra2casm/internal/sierra"
)

func TestCallContractExecBranches(t *testing.T) {
	inputs := [][]int64{{100}, {40}, {0x1234}, {10, 12}}

	out, branch, err := (callContract{}).Exec(nil, Env{}, inputs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if branch != 0 || !reflect.DeepEqual(out, [][]int64{{100}, {40 + SyscallFrameCells}, {12, 12}}) {
		t.Fatalf("default environment: branch %d, outputs %v", branch, out)
	}

	var seen CallContractRequest
	failing := SyscallFunc(func(req CallContractRequest) CallContractResponse {
		seen = req
		return CallContractResponse{Gas: req.Gas - 30, RevertReason: 77, ResultStart: 50, ResultEnd: 51}
	})
	out, branch, err = (callContract{}).Exec(nil, Env{Syscalls: failing}, inputs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != (CallContractRequest{Gas: 100, Address: 0x1234, CalldataStart: 10, CalldataEnd: 12}) {
		t.Fatalf("handler saw %+v", seen)
	}
	if branch != 1 || !reflect.DeepEqual(out, [][]int64{{70}, {49}, {77}, {50, 51}}) {
		t.Fatalf("failing environment: branch %d, outputs %v", branch, out)
	}
}

func TestCallContractRefValuesArity(t *testing.T) {
	sig, err := (callContract{}).Signature(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	refs, err := (callContract{}).RefValues(nil, nil, []sierra.RefValue{
		sierra.Final(sierra.Local(-6)),
		sierra.Final(sierra.Local(-5)),
		sierra.Final(sierra.Local(-4)),
		sierra.Final(sierra.Local(-3)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckRefArity(sig, refs); err != nil {
		t.Fatalf("arity: %v", err)
	}
	want := sierra.OpWithConst(sierra.Local(-5), sierra.OpAdd, SyscallFrameCells)
	if refs[0][1] != want || refs[1][1] != want {
		t.Fatalf("system handle must advance on both branches: %v", refs)
	}
}
