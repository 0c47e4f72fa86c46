package invocations

import (
	"errors"
	"testing"

	"sierra2casm/internal/casm"
	"sierra2casm/internal/sierra"
)

func TestRefValueBridge(t *testing.T) {
	cases := []struct {
		ref  sierra.RefValue
		size int
		want ReferenceExpression
	}{
		{sierra.Final(sierra.Temp(-3)), 2, FromCells(casm.Deref(ap(-3)), casm.Deref(ap(-2)))},
		{sierra.Final(sierra.Local(1)), 1, deref(fp(1))},
		{sierra.OpWithConst(sierra.Temp(-1), sierra.OpSub, 4), 1, FromCell(casm.BinOp(casm.OpAdd, ap(-1), casm.ImmOperandInt(-4)))},
		{sierra.Transient(), 0, ReferenceExpression{}},
	}
	for _, tc := range cases {
		got, err := FromRefValue(tc.ref, tc.size)
		if err != nil {
			t.Fatalf("%s: %v", tc.ref, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("%s: got %s, want %s", tc.ref, got, tc.want)
		}
		back, err := ToRefValue(got)
		if err != nil {
			t.Fatalf("%s: back: %v", tc.ref, err)
		}
		if back != tc.ref {
			t.Fatalf("round trip of %s gave %s", tc.ref, back)
		}
	}
}

func TestRefValueBridgeErrors(t *testing.T) {
	if _, err := FromRefValue(sierra.Transient(), 1); !errors.Is(err, ErrInvalidReferenceExpression) {
		t.Fatalf("transient of size 1: %v", err)
	}
	if _, err := FromRefValue(sierra.Final(sierra.Temp(40000)), 1); !errors.Is(err, ErrInvalidReferenceExpression) {
		t.Fatalf("offset overflow: %v", err)
	}
	if _, err := ToRefValue(FromCells(casm.Deref(ap(-3)), casm.Deref(fp(-2)))); !errors.Is(err, ErrInvalidReferenceExpression) {
		t.Fatalf("mixed registers: %v", err)
	}
	if _, err := ToRefValue(FromCell(casm.DoubleDeref(ap(-1), 0))); !errors.Is(err, ErrInvalidReferenceExpression) {
		t.Fatalf("double deref: %v", err)
	}
}

func TestToBuffer(t *testing.T) {
	if _, err := ToBuffer(casm.Deref(fp(-3)), 8); err != nil {
		t.Fatalf("plain cell: %v", err)
	}
	if _, err := ToBuffer(casm.BinOp(casm.OpAdd, fp(-3), casm.ImmOperandInt(9)), 8); err != nil {
		t.Fatalf("offset cell: %v", err)
	}
	if _, err := ToBuffer(casm.BinOp(casm.OpAdd, fp(-3), casm.ImmOperandInt(32760)), 8); err == nil {
		t.Fatalf("expected overflow error")
	}
	if _, err := ToBuffer(casm.BinOp(casm.OpMul, fp(-3), casm.ImmOperandInt(2)), 8); err == nil {
		t.Fatalf("expected error for multiplication")
	}
}

func TestApplyApChange(t *testing.T) {
	r := FromCells(casm.Deref(ap(-1)), casm.Deref(fp(-1)), casm.BinOp(casm.OpAdd, ap(0), casm.DerefOperand(ap(-2))))
	got, err := r.ApplyApChange(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := FromCells(casm.Deref(ap(-4)), casm.Deref(fp(-1)), casm.BinOp(casm.OpAdd, ap(-3), casm.DerefOperand(ap(-5))))
	if !got.Equal(want) {
		t.Fatalf("got %s, want %s", got, want)
	}
}
