package extensions

import (
	"errors"
	"testing"

	"sierra2casm/internal/sierra"
)

func TestRefundGasSignature(t *testing.T) {
	sig, err := WrapNonBranch(refundGas{}).Signature([]sierra.TemplateArg{sierra.ValueArg(5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := sierra.NonBranchSignature(
		[]sierra.Type{sierra.GasBuiltinType()},
		[]sierra.Type{sierra.AsDeferred(sierra.GasBuiltinType())},
	)
	if !sig.Equal(want) {
		t.Fatalf("got %+v, want %+v", sig, want)
	}
}

func TestGasCostMustBePositive(t *testing.T) {
	for _, cost := range []int64{0, -1, -100} {
		args := []sierra.TemplateArg{sierra.ValueArg(cost)}
		if _, err := (getGas{}).Signature(args); !errors.Is(err, sierra.ErrUnsupportedTypeArg) {
			t.Errorf("get_gas<%d>: expected UnsupportedTypeArg, got %v", cost, err)
		}
		if _, _, err := (refundGas{}).Signature(args); !errors.Is(err, sierra.ErrUnsupportedTypeArg) {
			t.Errorf("refund_gas<%d>: expected UnsupportedTypeArg, got %v", cost, err)
		}
	}
}

func TestGetGasExec(t *testing.T) {
	args := []sierra.TemplateArg{sierra.ValueArg(5)}

	out, branch, err := (getGas{}).Exec(args, Env{}, [][]int64{{10}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if branch != 0 || len(out) != 1 || len(out[0]) != 1 || out[0][0] != 5 {
		t.Fatalf("sufficient gas: got branch %d, outputs %v", branch, out)
	}

	out, branch, err = (getGas{}).Exec(args, Env{}, [][]int64{{3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if branch != 1 || out[0][0] != 3 {
		t.Fatalf("insufficient gas: got branch %d, outputs %v", branch, out)
	}

	if _, _, err := (getGas{}).Exec(args, Env{}, [][]int64{{3, 4}}); !errors.Is(err, sierra.ErrUnexpectedMemoryStructure) {
		t.Fatalf("expected UnexpectedMemoryStructure, got %v", err)
	}
}

func TestGetGasRefValuesAndEffects(t *testing.T) {
	args := []sierra.TemplateArg{sierra.ValueArg(5)}
	refs, err := (getGas{}).RefValues(args, nil, []sierra.RefValue{sierra.Final(sierra.Local(-3))})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refs[0][0] != sierra.OpWithConst(sierra.Local(-3), sierra.OpSub, 5) {
		t.Errorf("success branch: got %v", refs[0][0])
	}
	if refs[1][0] != sierra.Final(sierra.Local(-3)) {
		t.Errorf("failure branch: got %v", refs[1][0])
	}

	_, err = (getGas{}).RefValues(args, nil, []sierra.RefValue{sierra.OpWithConst(sierra.Local(-3), sierra.OpSub, 1)})
	if !errors.Is(err, sierra.ErrIllegalArgsLocation) {
		t.Fatalf("deferred counter must be rejected, got %v", err)
	}

	effects, err := (getGas{}).Effects(args, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if effects[0].GasUsage != -4 || effects[1].GasUsage != 1 {
		t.Fatalf("got %+v", effects)
	}
}

func TestRefundGasExec(t *testing.T) {
	out, err := (refundGas{}).Exec([]sierra.TemplateArg{sierra.ValueArg(7)}, Env{}, [][]int64{{1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0][0] != 8 {
		t.Fatalf("got %v", out)
	}
}
